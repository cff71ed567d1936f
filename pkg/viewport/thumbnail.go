package viewport

import (
	"fmt"
	"math"

	"slicecompositor/internal/models"
)

// ThumbnailSettings size and place the zoom thumbnail
type ThumbnailSettings struct {
	// SizePercent is the largest share of the viewport the thumbnail may cover
	SizePercent float64

	// MaxSize caps the thumbnail's longest side in pixels; 0 means no cap
	MaxSize int

	// Margin is the inset from the bottom-left corner in pixels
	Margin int
}

// Thumbnail is the placement of the reduced-scale overview
type Thumbnail struct {
	// Position is the bottom-left corner in viewport pixels
	Position models.Vec2

	// Zoom is screen pixels per physical unit inside the thumbnail
	Zoom float64
}

// ComputeThumbnail fits the whole slice into SizePercent of the viewport,
// keeping its aspect ratio, and anchors it in the bottom-left corner.
func ComputeThumbnail(view models.ViewState, viewport models.Size, s ThumbnailSettings) (Thumbnail, error) {
	world := view.WorldSize()
	if world.X <= 0 || world.Y <= 0 {
		return Thumbnail{}, fmt.Errorf("thumbnail for empty slice %dx%d", view.SliceSize.W, view.SliceSize.H)
	}
	if viewport.Empty() {
		return Thumbnail{}, fmt.Errorf("thumbnail for empty viewport %dx%d", viewport.W, viewport.H)
	}

	fraction := s.SizePercent / 100
	zoom := math.Min(fraction*float64(viewport.W)/world.X, fraction*float64(viewport.H)/world.Y)

	if s.MaxSize > 0 {
		limit := float64(s.MaxSize)
		if longest := math.Max(world.X, world.Y) * zoom; longest > limit {
			zoom = limit / math.Max(world.X, world.Y)
		}
	}

	return Thumbnail{
		Position: models.Vec2{X: float64(s.Margin), Y: float64(s.Margin)},
		Zoom:     zoom,
	}, nil
}

// Transform maps physical slice coordinates into viewport pixels
func (t Thumbnail) Transform() Affine {
	return Translation(t.Position.X, t.Position.Y).Then(Scaling(t.Zoom, t.Zoom))
}

// SliceTransform maps voxel coordinates into viewport pixels
func (t Thumbnail) SliceTransform(spacing models.Vec2) Affine {
	return t.Transform().Then(Scaling(spacing.X, spacing.Y))
}

// ExtentHalfSize is the half width and half height, in physical units, of
// the region visible in one tile: tile * 0.5 / zoom.
func ExtentHalfSize(view models.ViewState) (models.Vec2, error) {
	if !view.ValidZoom() {
		return models.Vec2{}, fmt.Errorf("extent box with zoom %g: %w", view.Zoom, ErrInvalidZoom)
	}
	return models.Vec2{
		X: float64(view.TileSize.W) * 0.5 / view.Zoom,
		Y: float64(view.TileSize.H) * 0.5 / view.Zoom,
	}, nil
}

// ExtentBox returns the corners, in physical units, of the region visible in
// one tile, centred on the pan position.
func ExtentBox(view models.ViewState) ([]models.Vec2, error) {
	half, err := ExtentHalfSize(view)
	if err != nil {
		return nil, err
	}
	c := view.Pan
	return []models.Vec2{
		{X: c.X - half.X, Y: c.Y - half.Y},
		{X: c.X - half.X, Y: c.Y + half.Y},
		{X: c.X + half.X, Y: c.Y + half.Y},
		{X: c.X + half.X, Y: c.Y - half.Y},
	}, nil
}

// SliceBorder returns the corners of the slice in voxel coordinates
func SliceBorder(size models.Size) []models.Vec2 {
	w, h := float64(size.W), float64(size.H)
	return []models.Vec2{{X: 0, Y: 0}, {X: 0, Y: h}, {X: w, Y: h}, {X: w, Y: 0}}
}

// ThumbnailOn reports whether the thumbnail is useful: only once the view is
// zoomed in past the fit-to-tile zoom.
func ThumbnailOn(view models.ViewState) bool {
	return view.ValidZoom() && view.Zoom > OptimalZoom(view)
}
