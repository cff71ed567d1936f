package models

import (
	"fmt"
	"image"
)

// Role is the semantic role a layer plays in the image stack
type Role int

const (
	RoleMain Role = iota
	RoleOverlay
	RoleSegmentation
	RoleLabel
)

func (r Role) String() string {
	switch r {
	case RoleMain:
		return "main"
	case RoleOverlay:
		return "overlay"
	case RoleSegmentation:
		return "segmentation"
	case RoleLabel:
		return "label"
	default:
		return fmt.Sprintf("Role(%d)", int(r))
	}
}

// LayerID is a stable handle for a layer, assigned by the registry that owns it.
// It is never reused within one registry.
type LayerID uint64

// PixelSource provides the current 2D display slice of a layer
type PixelSource interface {
	// Initialized reports whether pixel data is available
	Initialized() bool

	// Version changes every time the display slice changes
	Version() uint64

	// DisplaySlice returns the current slice, with pixel (x, y) holding voxel (x, y)
	// of the slice plane. Row 0 is the bottom of the displayed slice.
	DisplaySlice() image.Image
}

// Layer is one image plane in the compositing stack
type Layer interface {
	PixelSource

	ID() LayerID
	Name() string
	Role() Role

	// Visible is the user visibility toggle
	Visible() bool

	// Drawable is true when the layer is visible and its pixel data is ready
	Drawable() bool

	// Opacity is in [0, 1]
	Opacity() float64

	// Sticky layers are drawn over every tile instead of owning a tile
	Sticky() bool
}
