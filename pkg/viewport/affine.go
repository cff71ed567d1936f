// Package viewport holds the arithmetic of the slice view: the affine chain
// from voxel to screen coordinates for each tile, and the thumbnail locator.
//
// Screen coordinates follow the bottom-left origin convention: x grows to
// the right, y grows upward, and tile row 0 is the topmost row.
package viewport

import (
	"errors"

	"golang.org/x/image/math/f64"
	"gonum.org/v1/gonum/mat"

	"slicecompositor/internal/models"
)

// ErrSingular is returned when inverting a degenerate transform
var ErrSingular = errors.New("transform is not invertible")

// Affine is a 2D affine map stored row-major as
//
//	| A[0] A[1] A[2] |
//	| A[3] A[4] A[5] |
//
// so that x' = A[0]*x + A[1]*y + A[2] and y' = A[3]*x + A[4]*y + A[5].
// The layout matches f64.Aff3, which the raster backend consumes directly.
type Affine f64.Aff3

// Identity is the identity map
func Identity() Affine {
	return Affine{1, 0, 0, 0, 1, 0}
}

// Translation moves by (tx, ty)
func Translation(tx, ty float64) Affine {
	return Affine{1, 0, tx, 0, 1, ty}
}

// Scaling scales x by sx and y by sy
func Scaling(sx, sy float64) Affine {
	return Affine{sx, 0, 0, 0, sy, 0}
}

// Then returns m followed by n applied in m's local frame: p -> m(n(p)).
// Chaining a.Then(b).Then(c) reads like a sequence of glTranslate/glScale calls.
func (m Affine) Then(n Affine) Affine {
	return Affine{
		m[0]*n[0] + m[1]*n[3],
		m[0]*n[1] + m[1]*n[4],
		m[0]*n[2] + m[1]*n[5] + m[2],
		m[3]*n[0] + m[4]*n[3],
		m[3]*n[1] + m[4]*n[4],
		m[3]*n[2] + m[4]*n[5] + m[5],
	}
}

// Apply maps a point
func (m Affine) Apply(p models.Vec2) models.Vec2 {
	return models.Vec2{
		X: m[0]*p.X + m[1]*p.Y + m[2],
		Y: m[3]*p.X + m[4]*p.Y + m[5],
	}
}

// Aff3 returns the matrix in the form used by golang.org/x/image/draw
func (m Affine) Aff3() f64.Aff3 {
	return f64.Aff3(m)
}

// Invert returns the inverse map
func (m Affine) Invert() (Affine, error) {
	h := mat.NewDense(3, 3, []float64{
		m[0], m[1], m[2],
		m[3], m[4], m[5],
		0, 0, 1,
	})
	if mat.Det(h) == 0 {
		return Affine{}, ErrSingular
	}
	var inv mat.Dense
	if err := inv.Inverse(h); err != nil {
		return Affine{}, ErrSingular
	}
	return Affine{
		inv.At(0, 0), inv.At(0, 1), inv.At(0, 2),
		inv.At(1, 0), inv.At(1, 1), inv.At(1, 2),
	}, nil
}
