package contact

import (
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"
)

// Relative singular-value cutoff for the rank of the impact Gram matrix.
const projectorRankTolerance = 1e-12

var errSingularProjector = errors.New("impact projector is degenerate: contact constraints span no direction")

// correctImpactVelocity applies the rigid-impact law when vertices touch down
// this step. A vertex moving Free→Contact is an impact event; if none
// occurred the input velocity passes through unchanged. On impact, the
// Jacobian rows of the newly contacting vertices and of every vertex already
// in contact before this step are stacked into J, and the generalized
// velocity is projected onto its mass-weighted null space,
//
//	ν⁺ = (I − M⁻¹Jᵀ(J·M⁻¹·Jᵀ)⁺J) ν⁻
//
// zeroing the post-impact velocity of all constrained contact points, an
// instantaneous plastic impact. Coplanar vertices of a rigid foot make the
// Gram matrix J·M⁻¹·Jᵀ rank deficient, so the solve is rank revealing; a
// Gram matrix with no usable rank at all fails the step.
func (s *ContactSolver) correctImpactVelocity(
	jFeet, massInv *mat.Dense,
	baseVelocity, jointVelocity []float64,
) ([]float64, []float64, error) {
	impacted, constrained := s.impactRows()
	if !impacted {
		return baseVelocity, jointVelocity, nil
	}

	jImpact := mat.NewDense(3*len(constrained), s.dof, nil)
	for i, v := range constrained {
		for r := 0; r < 3; r++ {
			for c := 0; c < s.dof; c++ {
				jImpact.Set(3*i+r, c, jFeet.At(3*v+r, c))
			}
		}
	}

	var jmInv, gram mat.Dense
	jmInv.Mul(jImpact, massInv)
	gram.Mul(&jmInv, jImpact.T())

	var svd mat.SVD
	if !svd.Factorize(&gram, mat.SVDThin) {
		return nil, nil, errSingularProjector
	}
	values := svd.Values(nil)
	rank := 0
	for _, v := range values {
		if v > values[0]*projectorRankTolerance {
			rank++
		}
	}
	if rank == 0 {
		return nil, nil, errSingularProjector
	}
	var gramInvJ mat.Dense
	svd.SolveTo(&gramInvJ, jImpact, rank)

	var pulled, projector mat.Dense
	pulled.Mul(jImpact.T(), &gramInvJ)
	projector.Mul(massInv, &pulled)
	projector.Scale(-1, &projector)
	for i := 0; i < s.dof; i++ {
		projector.Set(i, i, projector.At(i, i)+1)
	}

	velocity := mat.NewVecDense(s.dof, nil)
	for i := 0; i < baseDOF; i++ {
		velocity.SetVec(i, baseVelocity[i])
	}
	for i := 0; i < s.actuatedDOF; i++ {
		velocity.SetVec(baseDOF+i, jointVelocity[i])
	}

	corrected := mat.NewVecDense(s.dof, nil)
	corrected.MulVec(&projector, velocity)

	baseOut := make([]float64, baseDOF)
	jointOut := make([]float64, s.actuatedDOF)
	for i := range baseOut {
		baseOut[i] = corrected.AtVec(i)
	}
	for i := range jointOut {
		jointOut[i] = corrected.AtVec(baseDOF + i)
	}
	s.logger.Debugw("impact velocity correction applied", "constrainedVertices", len(constrained))
	return baseOut, jointOut, nil
}

// impactRows reports whether any vertex touched down this step and collects
// the vertices the impact projection must constrain: the newly contacting
// ones plus every vertex already in contact before this step, which stays
// pinned at zero velocity through the impact.
func (s *ContactSolver) impactRows() (bool, []int) {
	impacted := false
	var constrained []int
	for v := 0; v < numVertices; v++ {
		switch {
		case s.currentContact[v] && !s.previousContact[v]:
			impacted = true
			constrained = append(constrained, v)
		case s.previousContact[v]:
			constrained = append(constrained, v)
		}
	}
	return impacted, constrained
}
