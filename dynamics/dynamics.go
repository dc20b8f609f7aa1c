// Package dynamics defines the read-only interface through which the contact
// solver queries the rigid body dynamics of a two-footed floating-base robot.
package dynamics

import "gonum.org/v1/gonum/mat"

// Robot exposes the dynamic quantities the contact solver needs each timestep.
// Implementations are queried read-only and never mutated by the solver.
// All generalized-coordinate dimensions are n = 6 + actuated DOF, with the
// floating base occupying the first six coordinates. Foot Jacobians stack the
// linear block on rows 0-2 and the angular block on rows 3-5.
type Robot interface {
	// MassMatrix returns the n×n generalized inertia matrix.
	MassMatrix() *mat.Dense
	// BiasForces returns the n-vector of Coriolis, centrifugal and gravity
	// generalized forces.
	BiasForces() *mat.VecDense
	// FeetTransforms returns the 4×4 world←sole homogeneous transforms of the
	// left and right foot.
	FeetTransforms() (left, right *mat.Dense)
	// FeetJacobians returns the 6×n mixed-velocity Jacobians of the left and
	// right sole frames.
	FeetJacobians() (left, right *mat.Dense)
	// FeetJacobianDotNu returns the 6-vector products J̇ν for the left and
	// right sole frames.
	FeetJacobianDotNu() (left, right *mat.VecDense)
}
