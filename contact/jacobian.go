package contact

import (
	"gonum.org/v1/gonum/mat"

	"go.viam.com/groundcontact/spatialmath"
)

// assembleVertexJacobians derives the linear Jacobian of every sole vertex
// from the whole-foot Jacobians and stacks them into a 24×n matrix, together
// with the matching 24-vector J̇ν contraction. A vertex carries a pure force,
// so only its linear rows are needed; the foot's angular block enters through
// the vertex offset via the cross-product operator:
//
//	J_vertex = J_lin − skew(R·p) · J_ang
func (s *ContactSolver) assembleVertexJacobians(
	leftJ, rightJ *mat.Dense,
	leftJDotNu, rightJDotNu *mat.VecDense,
	leftH, rightH *mat.Dense,
) (*mat.Dense, *mat.VecDense) {
	jFeet := mat.NewDense(forceDim, s.dof, nil)
	jDotNuFeet := mat.NewVecDense(forceDim, nil)

	for foot := 0; foot < numFeet; foot++ {
		j, jDotNu, h := leftJ, leftJDotNu, leftH
		if foot == 1 {
			j, jDotNu, h = rightJ, rightJDotNu, rightH
		}
		rot := spatialmath.RotationOf(h)
		jLin := j.Slice(0, 3, 0, s.dof)
		jAng := j.Slice(3, 6, 0, s.dof)

		for v := 0; v < verticesPerFoot; v++ {
			worldOffset := mat.NewVecDense(3, nil)
			worldOffset.MulVec(rot, s.footprint[v])
			offsetSkew := spatialmath.Skew(worldOffset)

			var vertexJ mat.Dense
			vertexJ.Mul(offsetSkew, jAng)
			vertexJ.Sub(jLin, &vertexJ)

			var angTerm mat.VecDense
			angTerm.MulVec(offsetSkew, jDotNu.SliceVec(3, 6))

			row := 3 * (foot*verticesPerFoot + v)
			for r := 0; r < 3; r++ {
				for c := 0; c < s.dof; c++ {
					jFeet.Set(row+r, c, vertexJ.At(r, c))
				}
				jDotNuFeet.SetVec(row+r, jDotNu.AtVec(r)-angTerm.AtVec(r))
			}
		}
	}
	return jFeet, jDotNuFeet
}

// vertexHeight returns the world z-coordinate of a sole-frame vertex under
// the foot's world transform; the ground plane sits at z = 0.
func vertexHeight(footTransform *mat.Dense, vertex *mat.VecDense) float64 {
	return spatialmath.TransformPoint(footTransform, vertex).AtVec(2)
}
