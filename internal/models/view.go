package models

import "math"

// Vec2 is a 2D vector in physical or pixel units
type Vec2 struct {
	X, Y float64
}

// Size is a width/height pair in pixels or voxels
type Size struct {
	W, H int
}

// Empty reports whether either dimension is non-positive
func (s Size) Empty() bool {
	return s.W <= 0 || s.H <= 0
}

// GridLayout is the number of tile rows and columns in the slice view
type GridLayout struct {
	Rows, Cols int
}

// Single reports whether the layout has exactly one tile
func (g GridLayout) Single() bool {
	return g.Rows == 1 && g.Cols == 1
}

// Valid reports whether both dimensions are at least one
func (g GridLayout) Valid() bool {
	return g.Rows >= 1 && g.Cols >= 1
}

// Tiles returns rows*cols
func (g GridLayout) Tiles() int {
	return g.Rows * g.Cols
}

// ViewState is the camera of a slice view. It is shared across all tiles.
type ViewState struct {
	// Zoom is the number of screen pixels per physical unit, must be > 0
	Zoom float64

	// Pan is the physical point shown at the tile centre
	Pan Vec2

	// SliceIndex is the slice currently displayed
	SliceIndex int

	// Spacing is the physical voxel size within the slice plane
	Spacing Vec2

	// SliceSize is the slice extent in voxels
	SliceSize Size

	// TileSize is the pixel size of one tile
	TileSize Size
}

// WorldSize returns the physical extent of the slice
func (v ViewState) WorldSize() Vec2 {
	return Vec2{
		X: float64(v.SliceSize.W) * v.Spacing.X,
		Y: float64(v.SliceSize.H) * v.Spacing.Y,
	}
}

// ValidZoom reports whether Zoom is a finite positive number
func (v ViewState) ValidZoom() bool {
	return v.Zoom > 0 && !math.IsInf(v.Zoom, 0) && !math.IsNaN(v.Zoom)
}

// Interpolation selects how textures are sampled when scaled
type Interpolation int

const (
	InterpolationNearest Interpolation = iota
	InterpolationLinear
)

func (i Interpolation) String() string {
	if i == InterpolationLinear {
		return "linear"
	}
	return "nearest"
}

// ParseInterpolation converts "nearest" or "linear" to an Interpolation
func ParseInterpolation(s string) (Interpolation, bool) {
	switch s {
	case "nearest", "":
		return InterpolationNearest, true
	case "linear":
		return InterpolationLinear, true
	}
	return InterpolationNearest, false
}

// Color is an RGB colour with components in [0, 1]
type Color struct {
	R, G, B float64
}

// White is the default background of an opaque texture draw
var White = Color{1, 1, 1}

// UIElementKind names an element whose appearance is configurable
type UIElementKind string

const (
	ElementBackground2D  UIElementKind = "background2D"
	ElementZoomThumbnail UIElementKind = "zoomThumbnail"
)

// UIElement is the appearance of one display element
type UIElement struct {
	NormalColor Color
	ActiveColor Color
	LineWidth   float64
	Visible     bool
}
