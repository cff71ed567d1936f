// Package layers holds the image data registry: the ordered stack of layers
// a slice view composites, and the iterator used to walk it.
package layers

import (
	"image"
	"math"

	"slicecompositor/internal/models"
)

// ImageLayer is a registry-owned layer backed by a pixel source
type ImageLayer struct {
	id      models.LayerID
	name    string
	role    models.Role
	visible bool
	opacity float64
	sticky  bool
	source  models.PixelSource
}

// Options are the user-facing display attributes of a layer
type Options struct {
	Name    string
	Hidden  bool
	Opacity float64
	Sticky  bool
}

func newImageLayer(id models.LayerID, role models.Role, src models.PixelSource, opts Options) *ImageLayer {
	return &ImageLayer{
		id:      id,
		name:    opts.Name,
		role:    role,
		visible: !opts.Hidden,
		opacity: clampOpacity(opts.Opacity),
		sticky:  opts.Sticky && role == models.RoleOverlay,
		source:  src,
	}
}

func clampOpacity(a float64) float64 {
	if math.IsNaN(a) {
		return 0
	}
	return math.Max(0, math.Min(1, a))
}

func (l *ImageLayer) ID() models.LayerID { return l.id }
func (l *ImageLayer) Name() string       { return l.name }
func (l *ImageLayer) Role() models.Role  { return l.role }
func (l *ImageLayer) Visible() bool      { return l.visible }
func (l *ImageLayer) Opacity() float64   { return l.opacity }
func (l *ImageLayer) Sticky() bool       { return l.sticky }

// Drawable is true once the layer is visible and has pixel data
func (l *ImageLayer) Drawable() bool {
	return l.visible && l.Initialized()
}

func (l *ImageLayer) Initialized() bool {
	return l.source != nil && l.source.Initialized()
}

func (l *ImageLayer) Version() uint64 {
	if l.source == nil {
		return 0
	}
	return l.source.Version()
}

func (l *ImageLayer) DisplaySlice() image.Image {
	if !l.Initialized() {
		return nil
	}
	return l.source.DisplaySlice()
}

// SetVisible toggles the layer's visibility
func (l *ImageLayer) SetVisible(v bool) { l.visible = v }

// SetOpacity sets the blend opacity, clamped to [0, 1]
func (l *ImageLayer) SetOpacity(a float64) { l.opacity = clampOpacity(a) }

// SetSticky switches an overlay between tile-owning and drawn-over-every-tile.
// Other roles are never sticky.
func (l *ImageLayer) SetSticky(s bool) { l.sticky = s && l.role == models.RoleOverlay }

// SetSource replaces the pixel source; the texture cache notices through the version
func (l *ImageLayer) SetSource(src models.PixelSource) { l.source = src }

// Source returns the pixel source backing the layer
func (l *ImageLayer) Source() models.PixelSource { return l.source }
