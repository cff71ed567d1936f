package viewport

import (
	"fmt"

	"slicecompositor/internal/models"
)

// Camera holds the view state of a slice view and applies navigation to it.
// The renderer only reads it.
type Camera struct {
	state models.ViewState
}

// NewCamera centres a slice of the given size and spacing at zoom 1
func NewCamera(sliceSize models.Size, spacing models.Vec2) *Camera {
	c := &Camera{state: models.ViewState{
		Zoom:      1,
		Spacing:   spacing,
		SliceSize: sliceSize,
	}}
	c.state.Pan = CenterPan(c.state)
	return c
}

// View returns a copy of the current view state
func (c *Camera) View() models.ViewState {
	return c.state
}

// SetZoom sets screen pixels per physical unit
func (c *Camera) SetZoom(zoom float64) error {
	next := c.state
	next.Zoom = zoom
	if !next.ValidZoom() {
		return fmt.Errorf("set zoom %g: %w", zoom, ErrInvalidZoom)
	}
	c.state = next
	return nil
}

// ZoomBy multiplies the zoom by factor
func (c *Camera) ZoomBy(factor float64) error {
	return c.SetZoom(c.state.Zoom * factor)
}

// PanTo centres the view on a physical point
func (c *Camera) PanTo(p models.Vec2) {
	c.state.Pan = p
}

// PanByPixels moves the view by a screen displacement
func (c *Camera) PanByPixels(dx, dy float64) {
	c.state.Pan.X -= dx / c.state.Zoom
	c.state.Pan.Y -= dy / c.state.Zoom
}

// Fit zooms so the slice fills a tile and centres it
func (c *Camera) Fit(tile models.Size) error {
	probe := c.state
	probe.TileSize = tile
	zoom := OptimalZoom(probe)
	if zoom <= 0 {
		return fmt.Errorf("fit %dx%d slice into %dx%d tile: %w",
			c.state.SliceSize.W, c.state.SliceSize.H, tile.W, tile.H, ErrInvalidZoom)
	}
	c.state.Zoom = zoom
	c.state.Pan = CenterPan(c.state)
	return nil
}

// SetSlice records the displayed slice and its geometry
func (c *Camera) SetSlice(index int, size models.Size, spacing models.Vec2) {
	c.state.SliceIndex = index
	c.state.SliceSize = size
	c.state.Spacing = spacing
}
