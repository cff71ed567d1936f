package layers

import (
	"errors"
	"fmt"
	"slices"

	"slicecompositor/internal/models"
)

var (
	// ErrNoLayer is returned when an id is not in the registry
	ErrNoLayer = errors.New("layer not found")

	// ErrMainRemoval is returned when removing the main layer while others remain
	ErrMainRemoval = errors.New("main layer cannot be removed while other layers are loaded")
)

// Registry owns the layers of one image data set. The compositor only keeps
// layer ids between frames and re-reads the stack on every paint.
//
// Registry is not safe for concurrent use; it must not change during a paint pass.
type Registry struct {
	nextID       models.LayerID
	main         *ImageLayer
	overlays     []*ImageLayer
	labels       []*ImageLayer
	segmentation *ImageLayer
}

// NewRegistry creates an empty registry
func NewRegistry() *Registry {
	return &Registry{nextID: 1}
}

func (r *Registry) allocate(role models.Role, src models.PixelSource, opts Options) *ImageLayer {
	l := newImageLayer(r.nextID, role, src, opts)
	r.nextID++
	return l
}

// SetMain installs the main image, replacing any previous main layer.
// The main layer is always opaque.
func (r *Registry) SetMain(src models.PixelSource, opts Options) *ImageLayer {
	opts.Opacity = 1
	r.main = r.allocate(models.RoleMain, src, opts)
	return r.main
}

// AddOverlay appends an overlay after the existing ones
func (r *Registry) AddOverlay(src models.PixelSource, opts Options) (*ImageLayer, error) {
	if r.main == nil {
		return nil, fmt.Errorf("add overlay %q: no main image loaded", opts.Name)
	}
	l := r.allocate(models.RoleOverlay, src, opts)
	r.overlays = append(r.overlays, l)
	return l, nil
}

// SetSegmentation installs the segmentation layer. Its opacity is taken
// from the display settings at draw time, not from opts, and opts.Sticky is
// ignored.
func (r *Registry) SetSegmentation(src models.PixelSource, opts Options) (*ImageLayer, error) {
	if r.main == nil {
		return nil, fmt.Errorf("set segmentation: no main image loaded")
	}
	opts.Sticky = false
	r.segmentation = r.allocate(models.RoleSegmentation, src, opts)
	return r.segmentation, nil
}

// AddLabel registers a label field. Labels are never composited as images.
func (r *Registry) AddLabel(src models.PixelSource, opts Options) *ImageLayer {
	l := r.allocate(models.RoleLabel, src, opts)
	r.labels = append(r.labels, l)
	return l
}

// Remove drops a layer by id
func (r *Registry) Remove(id models.LayerID) error {
	if r.main != nil && r.main.id == id {
		if len(r.overlays) > 0 || r.segmentation != nil {
			return ErrMainRemoval
		}
		r.main = nil
		return nil
	}
	if r.segmentation != nil && r.segmentation.id == id {
		r.segmentation = nil
		return nil
	}
	match := func(l *ImageLayer) bool { return l.id == id }
	if i := slices.IndexFunc(r.overlays, match); i >= 0 {
		r.overlays = slices.Delete(r.overlays, i, i+1)
		return nil
	}
	if i := slices.IndexFunc(r.labels, match); i >= 0 {
		r.labels = slices.Delete(r.labels, i, i+1)
		return nil
	}
	return fmt.Errorf("remove layer %d: %w", id, ErrNoLayer)
}

// MoveOverlay moves an overlay to position pos among the overlays
func (r *Registry) MoveOverlay(id models.LayerID, pos int) error {
	i := slices.IndexFunc(r.overlays, func(l *ImageLayer) bool { return l.id == id })
	if i < 0 {
		return fmt.Errorf("move overlay %d: %w", id, ErrNoLayer)
	}
	if pos < 0 || pos >= len(r.overlays) {
		return fmt.Errorf("move overlay %d: position %d out of range [0, %d)", id, pos, len(r.overlays))
	}
	l := r.overlays[i]
	r.overlays = slices.Insert(slices.Delete(r.overlays, i, i+1), pos, l)
	return nil
}

// Main returns the main layer, or nil
func (r *Registry) Main() models.Layer {
	if r.main == nil {
		return nil
	}
	return r.main
}

// Segmentation returns the segmentation layer, or nil
func (r *Registry) Segmentation() models.Layer {
	if r.segmentation == nil {
		return nil
	}
	return r.segmentation
}

// IsMainLoaded reports whether the main layer has pixel data
func (r *Registry) IsMainLoaded() bool {
	return r.main != nil && r.main.Initialized()
}

// IsSegmentationLoaded reports whether the segmentation layer has pixel data
func (r *Registry) IsSegmentationLoaded() bool {
	return r.segmentation != nil && r.segmentation.Initialized()
}

// Get looks a layer up by id
func (r *Registry) Get(id models.LayerID) (models.Layer, bool) {
	for _, l := range r.stack(true) {
		if l.id == id {
			return l, true
		}
	}
	return nil, false
}

// IDs returns the ids of every layer, labels included
func (r *Registry) IDs() []models.LayerID {
	stack := r.stack(true)
	ids := make([]models.LayerID, 0, len(stack))
	for _, l := range stack {
		ids = append(ids, l.id)
	}
	return ids
}

// Iterate starts a new iterator over the layers in compositing order
func (r *Registry) Iterate(filters ...Filter) *Iterator {
	return newIterator(r, filters...)
}

// stack lists layers in precedence order: main, overlays, segmentation, then labels
func (r *Registry) stack(withLabels bool) []*ImageLayer {
	out := make([]*ImageLayer, 0, 2+len(r.overlays)+len(r.labels))
	if r.main != nil {
		out = append(out, r.main)
	}
	out = append(out, r.overlays...)
	if r.segmentation != nil {
		out = append(out, r.segmentation)
	}
	if withLabels {
		out = append(out, r.labels...)
	}
	return out
}

// count is the length of the compositing sequence without labels, plus labels if asked
func (r *Registry) count(withLabels bool) int {
	n := len(r.overlays)
	if r.main != nil {
		n++
	}
	if r.segmentation != nil {
		n++
	}
	if withLabels {
		n += len(r.labels)
	}
	return n
}

// at returns the i-th layer of the precedence order used by stack
func (r *Registry) at(i int) *ImageLayer {
	if r.main != nil {
		if i == 0 {
			return r.main
		}
		i--
	}
	if i < len(r.overlays) {
		return r.overlays[i]
	}
	i -= len(r.overlays)
	if r.segmentation != nil {
		if i == 0 {
			return r.segmentation
		}
		i--
	}
	if i < len(r.labels) {
		return r.labels[i]
	}
	return nil
}
