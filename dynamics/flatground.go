package dynamics

import (
	"gonum.org/v1/gonum/mat"

	"go.viam.com/groundcontact/spatialmath"
)

// GravityAcceleration is the standard gravity used by FlatGroundModel, m/s².
const GravityAcceleration = 9.80665

// FlatGroundModel is a minimal Robot implementation: a single floating rigid
// body with decoupled actuated joints hovering over flat ground at z = 0.
// Both sole frames stay axis-aligned with the world; the per-foot sole
// heights move them vertically and Separation spaces them laterally about
// the body origin. It exists so the solver can be exercised end to end
// without a full rigid-body-dynamics library behind it.
type FlatGroundModel struct {
	Mass            float64
	Inertia         float64
	JointInertia    float64
	ActuatedDOF     int
	LeftSoleHeight  float64
	RightSoleHeight float64
	Separation      float64
}

// NewFlatGroundModel returns a model with unit rotational and joint inertias
// and both soles at ground level.
func NewFlatGroundModel(mass float64, actuatedDOF int) *FlatGroundModel {
	return &FlatGroundModel{
		Mass:         mass,
		Inertia:      1.0,
		JointInertia: 1.0,
		ActuatedDOF:  actuatedDOF,
		Separation:   0.2,
	}
}

// MassMatrix returns a diagonal inertia matrix; the base translational block
// carries the body mass, the rotational block and each joint a fixed inertia.
func (m *FlatGroundModel) MassMatrix() *mat.Dense {
	n := 6 + m.ActuatedDOF
	mm := mat.NewDense(n, n, nil)
	for i := 0; i < 3; i++ {
		mm.Set(i, i, m.Mass)
		mm.Set(i+3, i+3, m.Inertia)
	}
	for i := 6; i < n; i++ {
		mm.Set(i, i, m.JointInertia)
	}
	return mm
}

// BiasForces returns the gravity term only; the model has no velocity state,
// so Coriolis and centrifugal contributions are zero.
func (m *FlatGroundModel) BiasForces() *mat.VecDense {
	h := mat.NewVecDense(6+m.ActuatedDOF, nil)
	h.SetVec(2, m.Mass*GravityAcceleration)
	return h
}

// FeetTransforms places the soles at their configured heights, offset by
// ±Separation/2 along y, with identity rotation.
func (m *FlatGroundModel) FeetTransforms() (*mat.Dense, *mat.Dense) {
	return m.soleTransform(m.Separation/2, m.LeftSoleHeight),
		m.soleTransform(-m.Separation/2, m.RightSoleHeight)
}

func (m *FlatGroundModel) soleTransform(y, z float64) *mat.Dense {
	h := mat.NewDense(4, 4, nil)
	for i := 0; i < 3; i++ {
		h.Set(i, i, 1)
	}
	h.Set(1, 3, y)
	h.Set(2, 3, z)
	h.Set(3, 3, 1)
	return h
}

// FeetJacobians returns the rigid-body point Jacobians of the sole frames.
// The joints are decoupled from the feet in this model, so their columns are
// zero; the angular columns of the linear block carry the −skew(t) coupling
// of each sole's offset t from the base origin.
func (m *FlatGroundModel) FeetJacobians() (*mat.Dense, *mat.Dense) {
	return m.soleJacobian(m.Separation/2, m.LeftSoleHeight),
		m.soleJacobian(-m.Separation/2, m.RightSoleHeight)
}

func (m *FlatGroundModel) soleJacobian(y, z float64) *mat.Dense {
	j := mat.NewDense(6, 6+m.ActuatedDOF, nil)
	for i := 0; i < 6; i++ {
		j.Set(i, i, 1)
	}
	offset := spatialmath.Skew(mat.NewVecDense(3, []float64{0, y, z}))
	for r := 0; r < 3; r++ {
		for c := 0; c < 3; c++ {
			j.Set(r, 3+c, -offset.At(r, c))
		}
	}
	return j
}

// FeetJacobianDotNu is zero for a rigid body with constant Jacobians.
func (m *FlatGroundModel) FeetJacobianDotNu() (*mat.VecDense, *mat.VecDense) {
	return mat.NewVecDense(6, nil), mat.NewVecDense(6, nil)
}
