package viewport

import (
	"errors"
	"fmt"
	"image"
	"math"

	"slicecompositor/internal/models"
)

var (
	// ErrInvalidZoom is returned for a zoom that is not a positive finite number
	ErrInvalidZoom = errors.New("zoom must be a positive finite number")

	// ErrBadGrid is returned for a layout with fewer than one row or column
	ErrBadGrid = errors.New("grid must have at least one row and one column")
)

// Tile is one cell of the display grid, recomputed on every paint
type Tile struct {
	Row, Col int

	// Viewport is the tile rectangle in bottom-left origin screen pixels
	Viewport image.Rectangle

	// Transform maps slice voxel coordinates to tile-local pixels
	Transform Affine
}

// TileSize splits a viewport evenly across the grid
func TileSize(viewport models.Size, grid models.GridLayout) (models.Size, error) {
	if !grid.Valid() {
		return models.Size{}, fmt.Errorf("tile size for %dx%d: %w", grid.Rows, grid.Cols, ErrBadGrid)
	}
	return models.Size{W: viewport.W / grid.Cols, H: viewport.H / grid.Rows}, nil
}

// TileOrigin returns the bottom-left corner of tile (row, col). Row 0 is the
// top of the screen, so rows are laid out from the top down.
func TileOrigin(row, col int, grid models.GridLayout, tile models.Size) image.Point {
	return image.Point{
		X: col * tile.W,
		Y: (grid.Rows - 1 - row) * tile.H,
	}
}

// TileTransform builds the chain
//
//	translate(tile centre) . scale(zoom) . translate(-pan) . scale(spacing)
//
// mapping voxel coordinates of the slice to tile-local pixels. It is the
// same for every tile of the grid.
func TileTransform(view models.ViewState) (Affine, error) {
	if !view.ValidZoom() {
		return Affine{}, fmt.Errorf("tile transform with zoom %g: %w", view.Zoom, ErrInvalidZoom)
	}
	return Translation(0.5*float64(view.TileSize.W), 0.5*float64(view.TileSize.H)).
		Then(Scaling(view.Zoom, view.Zoom)).
		Then(Translation(-view.Pan.X, -view.Pan.Y)).
		Then(Scaling(view.Spacing.X, view.Spacing.Y)), nil
}

// Tiles lays out every tile of the grid in row-major order
func Tiles(view models.ViewState, grid models.GridLayout) ([]Tile, error) {
	if !grid.Valid() {
		return nil, fmt.Errorf("layout %dx%d: %w", grid.Rows, grid.Cols, ErrBadGrid)
	}
	m, err := TileTransform(view)
	if err != nil {
		return nil, err
	}
	tiles := make([]Tile, 0, grid.Tiles())
	for row := 0; row < grid.Rows; row++ {
		for col := 0; col < grid.Cols; col++ {
			o := TileOrigin(row, col, grid, view.TileSize)
			tiles = append(tiles, Tile{
				Row:       row,
				Col:       col,
				Viewport:  image.Rect(o.X, o.Y, o.X+view.TileSize.W, o.Y+view.TileSize.H),
				Transform: m,
			})
		}
	}
	return tiles, nil
}

// ScreenToSlice maps a tile-local pixel back to voxel coordinates
func ScreenToSlice(view models.ViewState, p models.Vec2) (models.Vec2, error) {
	m, err := TileTransform(view)
	if err != nil {
		return models.Vec2{}, err
	}
	inv, err := m.Invert()
	if err != nil {
		return models.Vec2{}, fmt.Errorf("screen to slice: %w", err)
	}
	return inv.Apply(p), nil
}

// OptimalZoom is the zoom at which the whole slice just fits in a tile
func OptimalZoom(view models.ViewState) float64 {
	world := view.WorldSize()
	if world.X <= 0 || world.Y <= 0 || view.TileSize.Empty() {
		return 0
	}
	return math.Min(float64(view.TileSize.W)/world.X, float64(view.TileSize.H)/world.Y)
}

// CenterPan is the pan that centres the slice in the tile
func CenterPan(view models.ViewState) models.Vec2 {
	world := view.WorldSize()
	return models.Vec2{X: 0.5 * world.X, Y: 0.5 * world.Y}
}
