// Package volume turns 3D voxel data into the 2D display slices that the
// slice compositor uploads as textures.
package volume

import (
	"fmt"
	"strings"

	"slicecompositor/internal/models"
)

// Axis is the axis orthogonal to a display slice
type Axis int

const (
	AxisX Axis = iota
	AxisY
	AxisZ
)

func (a Axis) String() string {
	return [...]string{"x", "y", "z"}[a]
}

// ParseAxis accepts x, y or z in either case
func ParseAxis(s string) (Axis, error) {
	switch strings.ToLower(s) {
	case "x":
		return AxisX, nil
	case "y":
		return AxisY, nil
	case "z":
		return AxisZ, nil
	}
	return AxisZ, fmt.Errorf("invalid axis: %s (must be x, y, or z)", s)
}

// Extent returns the number of slices along the axis
func Extent(v *models.Volume, axis Axis) int {
	switch axis {
	case AxisX:
		return v.Width
	case AxisY:
		return v.Height
	default:
		return v.Depth
	}
}

// PlaneSize returns the slice dimensions in voxels for the axis.
// X slices are depth by height, Y slices width by depth, Z slices width by height.
func PlaneSize(v *models.Volume, axis Axis) models.Size {
	switch axis {
	case AxisX:
		return models.Size{W: v.Depth, H: v.Height}
	case AxisY:
		return models.Size{W: v.Width, H: v.Depth}
	default:
		return models.Size{W: v.Width, H: v.Height}
	}
}

// PlaneSpacing returns the in-plane voxel spacing for slices along axis
func PlaneSpacing(v *models.Volume, axis Axis) models.Vec2 {
	switch axis {
	case AxisX:
		return models.Vec2{X: v.VoxelSize.Z, Y: v.VoxelSize.Y}
	case AxisY:
		return models.Vec2{X: v.VoxelSize.X, Y: v.VoxelSize.Z}
	default:
		return models.Vec2{X: v.VoxelSize.X, Y: v.VoxelSize.Y}
	}
}

// ExtractPlane copies the slice at position along axis into a row-major
// buffer of PlaneSize(v, axis).
func ExtractPlane(v *models.Volume, axis Axis, position int) ([]float64, models.Size, error) {
	if position < 0 {
		return nil, models.Size{}, fmt.Errorf("position must be non-negative")
	}
	if n := Extent(v, axis); position >= n {
		return nil, models.Size{}, fmt.Errorf("position %d exceeds %s extent %d", position, axis, n)
	}

	size := PlaneSize(v, axis)
	plane := make([]float64, size.W*size.H)

	switch axis {
	case AxisX:
		// YZ plane
		for y := 0; y < v.Height; y++ {
			for z := 0; z < v.Depth; z++ {
				plane[y*size.W+z] = v.At(position, y, z)
			}
		}
	case AxisY:
		// XZ plane
		for z := 0; z < v.Depth; z++ {
			for x := 0; x < v.Width; x++ {
				plane[z*size.W+x] = v.At(x, position, z)
			}
		}
	default:
		// XY plane
		base := position * v.Width * v.Height
		end := base + v.Width*v.Height
		if end <= len(v.Data) {
			copy(plane, v.Data[base:end])
		} else {
			for y := 0; y < v.Height; y++ {
				for x := 0; x < v.Width; x++ {
					plane[y*size.W+x] = v.At(x, y, position)
				}
			}
		}
	}

	return plane, size, nil
}
