package contact

import "gonum.org/v1/gonum/mat"

const (
	coneRowsPerVertex = 5

	// Fixed warm-start value for every force component handed to the solver.
	// Deliberately uncorrelated with the previous step's solution; see the
	// package design notes.
	warmStartForce = 10.0
)

// frictionCone is the time-invariant inequality system A·f ≤ b over the 24
// stacked force components: per vertex, four faces of the pyramidal Coulomb
// cone approximation plus the unilateral non-negativity row on fz. Built once
// at construction and never modified.
type frictionCone struct {
	a *mat.Dense
	b *mat.VecDense
}

func newFrictionCone(mu float64) *frictionCone {
	a := mat.NewDense(coneRowsPerVertex*numVertices, forceDim, nil)
	for v := 0; v < numVertices; v++ {
		row, col := coneRowsPerVertex*v, 3*v
		// fx − μ·fz ≤ 0
		a.Set(row, col, 1)
		a.Set(row, col+2, -mu)
		// fy − μ·fz ≤ 0
		a.Set(row+1, col+1, 1)
		a.Set(row+1, col+2, -mu)
		// −fx − μ·fz ≤ 0
		a.Set(row+2, col, -1)
		a.Set(row+2, col+2, -mu)
		// −fy − μ·fz ≤ 0
		a.Set(row+3, col+1, -1)
		a.Set(row+3, col+2, -mu)
		// −fz ≤ 0
		a.Set(row+4, col+2, -1)
	}
	return &frictionCone{a: a, b: mat.NewVecDense(coneRowsPerVertex*numVertices, nil)}
}

// forceProblem is the per-step quadratic program over the 24 vertex-force
// unknowns: minimize ½fᵀHf + fᵀg subject to the fixed cone inequalities and
// the per-step equality rows zeroing the force at non-contacting vertices.
type forceProblem struct {
	hessian   *mat.Dense
	linear    *mat.VecDense
	ineqA     *mat.Dense
	ineqB     *mat.VecDense
	eqA       *mat.Dense
	eqB       *mat.VecDense
	warmStart []float64
}

// buildForceProblem assembles H = J·M⁻¹·Jᵀ and the constraint systems for the
// current contact configuration. H is symmetrized in place against
// floating-point asymmetry before it reaches the solver.
func (s *ContactSolver) buildForceProblem(jFeet, massInv *mat.Dense, aFree *mat.VecDense) *forceProblem {
	var jmInv, hessian mat.Dense
	jmInv.Mul(jFeet, massInv)
	hessian.Mul(&jmInv, jFeet.T())
	symmetrize(&hessian)

	warm := make([]float64, forceDim)
	for i := range warm {
		warm[i] = warmStartForce
	}

	return &forceProblem{
		hessian:   &hessian,
		linear:    aFree,
		ineqA:     s.cone.a,
		ineqB:     s.cone.b,
		eqA:       s.equalityRows(),
		eqB:       mat.NewVecDense(numVertices, nil),
		warmStart: warm,
	}
}

// equalityRows builds one row per vertex selecting that vertex's vertical
// force component: coefficient 1 iff the vertex is not currently in contact,
// forcing its force to zero, 0 (unconstrained) otherwise.
func (s *ContactSolver) equalityRows() *mat.Dense {
	eq := mat.NewDense(numVertices, forceDim, nil)
	for v := 0; v < numVertices; v++ {
		if !s.currentContact[v] {
			eq.Set(v, 3*v+2, 1)
		}
	}
	return eq
}

// activeEqualityRows strips all-zero rows; returns nil when no row is active.
func activeEqualityRows(a *mat.Dense, b *mat.VecDense) (*mat.Dense, *mat.VecDense) {
	rows, cols := a.Dims()
	var keep []int
	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			if a.At(r, c) != 0 {
				keep = append(keep, r)
				break
			}
		}
	}
	if len(keep) == 0 {
		return nil, nil
	}
	active := mat.NewDense(len(keep), cols, nil)
	rhs := mat.NewVecDense(len(keep), nil)
	for i, r := range keep {
		for c := 0; c < cols; c++ {
			active.Set(i, c, a.At(r, c))
		}
		rhs.SetVec(i, b.AtVec(r))
	}
	return active, rhs
}

// symmetrize replaces m with (m+mᵀ)/2.
func symmetrize(m *mat.Dense) {
	r, _ := m.Dims()
	for i := 0; i < r; i++ {
		for j := i + 1; j < r; j++ {
			avg := (m.At(i, j) + m.At(j, i)) / 2
			m.Set(i, j, avg)
			m.Set(j, i, avg)
		}
	}
}
