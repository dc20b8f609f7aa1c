// Package spatialmath provides small stateless helpers for the 3-D rigid body
// geometry used by the contact solver.
package spatialmath

import "gonum.org/v1/gonum/mat"

// Skew returns the skew-symmetric cross-product matrix of a 3-vector v,
// such that Skew(v) * w == v × w for any 3-vector w.
func Skew(v *mat.VecDense) *mat.Dense {
	x, y, z := v.AtVec(0), v.AtVec(1), v.AtVec(2)
	return mat.NewDense(3, 3, []float64{
		0, -z, y,
		z, 0, -x,
		-y, x, 0,
	})
}
