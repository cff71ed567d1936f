package volume

import (
	"fmt"
	"image"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"slicecompositor/internal/models"
)

// Source is a pixel source that shows one orthogonal slice of a volume.
// Every change to what DisplaySlice would return bumps Version.
type Source struct {
	vol     *models.Volume
	axis    Axis
	index   int
	cmap    ColorMap
	version uint64
	slice   *image.NRGBA
}

// NewSource creates a source positioned on the middle slice along axis
func NewSource(vol *models.Volume, axis Axis, cmap ColorMap) *Source {
	s := &Source{vol: vol, axis: axis, cmap: cmap, version: 1}
	if vol != nil {
		s.index = Extent(vol, axis) / 2
	}
	if s.cmap == nil && vol != nil {
		s.cmap = AutoWindow(vol.Data, 0.01)
	}
	return s
}

// Initialized reports whether the volume holds voxels
func (s *Source) Initialized() bool {
	return s.vol != nil && len(s.vol.Data) > 0 && Extent(s.vol, s.axis) > 0
}

func (s *Source) Version() uint64 { return s.version }

// DisplaySlice returns the coloured slice, rebuilding it after a change
func (s *Source) DisplaySlice() image.Image {
	if !s.Initialized() {
		return nil
	}
	if s.slice == nil {
		img, err := s.render()
		if err != nil {
			return nil
		}
		s.slice = img
	}
	return s.slice
}

func (s *Source) render() (*image.NRGBA, error) {
	plane, size, err := ExtractPlane(s.vol, s.axis, s.index)
	if err != nil {
		return nil, err
	}
	img := image.NewNRGBA(image.Rect(0, 0, size.W, size.H))
	for y := 0; y < size.H; y++ {
		for x := 0; x < size.W; x++ {
			img.SetNRGBA(x, y, s.cmap.Map(plane[y*size.W+x]))
		}
	}
	return img, nil
}

func (s *Source) invalidate() {
	s.slice = nil
	s.version++
}

// Touch marks the voxel data as modified
func (s *Source) Touch() {
	s.invalidate()
}

// SetSlice moves to another slice along the current axis
func (s *Source) SetSlice(index int) error {
	if !s.Initialized() {
		return fmt.Errorf("set slice %d: volume not loaded", index)
	}
	if n := Extent(s.vol, s.axis); index < 0 || index >= n {
		return fmt.Errorf("slice %d out of range [0, %d)", index, n)
	}
	if index != s.index {
		s.index = index
		s.invalidate()
	}
	return nil
}

// SetAxis switches the slicing direction and moves to its middle slice
func (s *Source) SetAxis(axis Axis) {
	if axis == s.axis {
		return
	}
	s.axis = axis
	if s.vol != nil {
		s.index = Extent(s.vol, axis) / 2
	}
	s.invalidate()
}

// SetColorMap replaces the intensity to colour mapping
func (s *Source) SetColorMap(cmap ColorMap) {
	s.cmap = cmap
	s.invalidate()
}

// Slice returns the current slice index
func (s *Source) Slice() int { return s.index }

// Axis returns the current slicing axis
func (s *Source) Axis() Axis { return s.axis }

// SliceSize is the display slice size in voxels
func (s *Source) SliceSize() models.Size {
	if s.vol == nil {
		return models.Size{}
	}
	return PlaneSize(s.vol, s.axis)
}

// Spacing is the in-plane voxel spacing of the display slice
func (s *Source) Spacing() models.Vec2 {
	if s.vol == nil {
		return models.Vec2{X: 1, Y: 1}
	}
	return PlaneSpacing(s.vol, s.axis)
}

// Info summarises a volume for display in an information panel
type Info struct {
	Dimensions [3]int
	Spacing    [3]float64
	Extent     [3]float64
	Min, Max   float64
	Mean       float64
	StdDev     float64
	Voxels     int
}

// Describe computes dimensions, physical extent and intensity statistics
func Describe(v *models.Volume) (Info, error) {
	if v == nil || len(v.Data) == 0 {
		return Info{}, fmt.Errorf("describe: empty volume")
	}
	info := Info{
		Dimensions: [3]int{v.Width, v.Height, v.Depth},
		Spacing:    [3]float64{v.VoxelSize.X, v.VoxelSize.Y, v.VoxelSize.Z},
		Voxels:     len(v.Data),
		Min:        floats.Min(v.Data),
		Max:        floats.Max(v.Data),
	}
	for i := range info.Extent {
		info.Extent[i] = float64(info.Dimensions[i]) * info.Spacing[i]
	}
	info.Mean, info.StdDev = stat.MeanStdDev(v.Data, nil)
	return info, nil
}
