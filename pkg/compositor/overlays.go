package compositor

import (
	"slicecompositor/internal/models"
	"slicecompositor/pkg/viewport"
)

// Crosshair marks the cursor voxel with a horizontal and a vertical line
// across the slice. It is meant to be added as a tiled overlay.
type Crosshair struct {
	// Cursor returns the cursor position in voxel coordinates of the slice
	Cursor func() models.Vec2
	Style  LineStyle
}

func (c Crosshair) Paint(p Pass) error {
	if p.Mode == ModeGlobal || c.Cursor == nil {
		return nil
	}
	cur := c.Cursor()
	w, h := float64(p.View.SliceSize.W), float64(p.View.SliceSize.H)
	x, y := cur.X+0.5, cur.Y+0.5
	if x < 0 || y < 0 || x > w || y > h {
		return nil
	}
	if err := p.Surface.Stroke([]models.Vec2{{X: 0, Y: y}, {X: w, Y: y}}, false, p.Transform, c.Style); err != nil {
		return err
	}
	return p.Surface.Stroke([]models.Vec2{{X: x, Y: 0}, {X: x, Y: h}}, false, p.Transform, c.Style)
}

// TileBorders draws the separators between tiles. It is meant to be added as
// a global overlay.
type TileBorders struct {
	Grid  GridProvider
	Style LineStyle
}

func (b TileBorders) Paint(p Pass) error {
	if p.Mode != ModeGlobal {
		return nil
	}
	grid := b.Grid.Grid()
	if !grid.Valid() || grid.Single() {
		return nil
	}
	size := p.Surface.Size()
	tile, err := viewport.TileSize(size, grid)
	if err != nil {
		return err
	}
	w, h := float64(tile.W*grid.Cols), float64(tile.H*grid.Rows)
	for col := 1; col < grid.Cols; col++ {
		x := float64(col * tile.W)
		if err := p.Surface.Stroke([]models.Vec2{{X: x, Y: 0}, {X: x, Y: h}}, false, p.Transform, b.Style); err != nil {
			return err
		}
	}
	for row := 1; row < grid.Rows; row++ {
		y := float64(row * tile.H)
		if err := p.Surface.Stroke([]models.Vec2{{X: 0, Y: y}, {X: w, Y: y}}, false, p.Transform, b.Style); err != nil {
			return err
		}
	}
	return nil
}
