// Package compositor renders a stack of image layers into a tiled slice view
// with a thumbnail locator, one immediate-mode pass per paint.
package compositor

import (
	"image"

	"slicecompositor/internal/models"
	"slicecompositor/pkg/texture"
	"slicecompositor/pkg/viewport"
)

// RenderMode tells draw routines which sub-pass they are part of
type RenderMode int

const (
	// ModeTile draws one cell of the grid
	ModeTile RenderMode = iota

	// ModeThumbnail draws the reduced-scale overview; only the main layer is shown
	ModeThumbnail

	// ModeGlobal draws over the whole viewport after the tiles
	ModeGlobal
)

func (m RenderMode) String() string {
	switch m {
	case ModeTile:
		return "tile"
	case ModeThumbnail:
		return "thumbnail"
	case ModeGlobal:
		return "global"
	}
	return "unknown"
}

// DrawOptions control how a texture is blended
type DrawOptions struct {
	// Transparent draws are blended at Opacity. Opaque draws first fill the
	// slice extent with Background.
	Transparent bool
	Opacity     float64
	Background  models.Color
}

// LineStyle is the pen used by Stroke
type LineStyle struct {
	Color models.Color
	Width float64
}

// Surface receives the draw calls of a paint pass. Coordinates passed in are
// mapped by m into the current viewport, whose origin is its bottom-left corner.
type Surface interface {
	// Size is the full drawable area in pixels
	Size() models.Size

	// Clear fills the current viewport
	Clear(c models.Color)

	// SetViewport restricts drawing to r, given with a bottom-left origin
	SetViewport(r image.Rectangle)

	// DrawTexture draws tex with texel (i, j) covering [i, i+1] x [j, j+1] before m
	DrawTexture(tex *texture.Texture, m viewport.Affine, opts DrawOptions) error

	// Stroke draws a polyline through pts, closing it when closed is set
	Stroke(pts []models.Vec2, closed bool, m viewport.Affine, style LineStyle) error
}
