package layers

import (
	"iter"
	"slices"

	"slicecompositor/internal/models"
)

// Predicate selects layers during iteration
type Predicate func(models.Layer) bool

// Filter restricts what an Iterator yields
type Filter struct {
	roles []models.Role
	pred  Predicate
}

// WithRoles yields only the given roles. This is the only way to iterate label layers.
func WithRoles(roles ...models.Role) Filter {
	return Filter{roles: roles}
}

// Where yields only layers matching pred
func Where(pred Predicate) Filter {
	return Filter{pred: pred}
}

// Drawable matches visible layers with pixel data
func Drawable(l models.Layer) bool {
	return l.Drawable()
}

// StickyOverlay matches overlays drawn over every tile. Segmentation has its
// own pass and never matches.
func StickyOverlay(l models.Layer) bool {
	return l.Role() == models.RoleOverlay && l.Sticky() && l.Drawable() && l.Opacity() > 0
}

// NonSticky matches the layers that own a tile: the main layer and non-sticky overlays
func NonSticky(l models.Layer) bool {
	switch l.Role() {
	case models.RoleMain:
		return true
	case models.RoleOverlay:
		return !l.Sticky()
	}
	return false
}

// Iterator walks the registry in precedence order: main, overlays in
// registration order, segmentation. Layers are read from the registry as
// the iterator advances. An Iterator is restartable with Reset.
type Iterator struct {
	reg    *Registry
	roles  []models.Role
	preds  []Predicate
	pos    int
	cur    *ImageLayer
	labels bool
}

func newIterator(r *Registry, filters ...Filter) *Iterator {
	it := &Iterator{reg: r}
	for _, f := range filters {
		if f.roles != nil {
			it.roles = append(it.roles, f.roles...)
		}
		if f.pred != nil {
			it.preds = append(it.preds, f.pred)
		}
	}
	it.labels = slices.Contains(it.roles, models.RoleLabel)
	return it
}

// Next advances to the next matching layer and reports whether there is one
func (it *Iterator) Next() bool {
	for it.pos < it.reg.count(it.labels) {
		l := it.reg.at(it.pos)
		it.pos++
		if l == nil || !it.match(l) {
			continue
		}
		it.cur = l
		return true
	}
	it.cur = nil
	return false
}

// Layer returns the current layer; valid after Next returned true
func (it *Iterator) Layer() models.Layer {
	if it.cur == nil {
		return nil
	}
	return it.cur
}

// Role returns the role of the current layer
func (it *Iterator) Role() models.Role {
	return it.cur.role
}

// Reset rewinds the iterator to the start of the stack
func (it *Iterator) Reset() {
	it.pos = 0
	it.cur = nil
}

// All rewinds the iterator and yields every matching layer
func (it *Iterator) All() iter.Seq[models.Layer] {
	return func(yield func(models.Layer) bool) {
		it.Reset()
		for it.Next() {
			if !yield(it.cur) {
				return
			}
		}
	}
}

// Collect rewinds and returns the remaining matching layers as a slice
func (it *Iterator) Collect() []models.Layer {
	return slices.Collect(it.All())
}

func (it *Iterator) match(l *ImageLayer) bool {
	if it.roles != nil {
		if !slices.Contains(it.roles, l.role) {
			return false
		}
	} else if l.role == models.RoleLabel {
		return false
	}
	for _, p := range it.preds {
		if !p(l) {
			return false
		}
	}
	return true
}
