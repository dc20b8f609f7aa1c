package contact

import (
	"gonum.org/v1/gonum/mat"

	"go.viam.com/groundcontact/spatialmath"
)

// generalizedWrench maps the resolved vertex forces through Jᵀ and adds the
// externally applied wrench.
func (s *ContactSolver) generalizedWrench(jFeet *mat.Dense, force *mat.VecDense, externalWrench []float64) []float64 {
	w := mat.NewVecDense(s.dof, nil)
	w.MulVec(jFeet.T(), force)
	out := make([]float64, s.dof)
	for i := range out {
		out[i] = externalWrench[i] + w.AtVec(i)
	}
	return out
}

// footWrench accumulates one foot's vertex forces into a 6-vector wrench
// expressed in the sole frame: each force is rotated into the sole frame and
// its moment about the sole origin is taken through the vertex offset.
func (s *ContactSolver) footWrench(footTransform *mat.Dense, force *mat.VecDense, foot int) []float64 {
	rotT := spatialmath.RotationOf(footTransform).T()
	wrench := make([]float64, 6)
	for v := 0; v < verticesPerFoot; v++ {
		idx := 3 * (foot*verticesPerFoot + v)
		soleForce := mat.NewVecDense(3, nil)
		soleForce.MulVec(rotT, force.SliceVec(idx, idx+3))

		moment := mat.NewVecDense(3, nil)
		moment.MulVec(spatialmath.Skew(s.footprint[v]), soleForce)

		for i := 0; i < 3; i++ {
			wrench[i] += soleForce.AtVec(i)
			wrench[3+i] -= moment.AtVec(i)
		}
	}
	return wrench
}
