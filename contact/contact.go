// Package contact resolves the ground-contact forces acting on the feet of a
// two-footed floating-base rigid body, once per simulation timestep. Each
// step derives per-vertex contact Jacobians, detects which sole vertices
// touch the ground plane, solves a convex quadratic program for the contact
// forces under friction-cone and non-penetration constraints, assembles the
// resulting generalized and per-foot wrenches, and applies a rigid-impact
// velocity projection when vertices touch down.
package contact

import (
	"context"

	"github.com/edaniels/golog"
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"

	"go.viam.com/groundcontact/dynamics"
)

const (
	verticesPerFoot = 4
	numFeet         = 2
	numVertices     = verticesPerFoot * numFeet
	forceDim        = 3 * numVertices
	baseDOF         = 6
)

var (
	errFootprintShape = errors.New("footprint must contain exactly 4 three-dimensional vertices")
	errFriction       = errors.New("friction coefficient must be positive")
	errActuatedDOF    = errors.New("actuated degrees of freedom must be positive")
	errNilRobot       = errors.New("robot dynamics provider is nil")
)

// ContactSolver owns the fixed foot geometry, the friction model and the
// per-vertex contact-state history. One instance serves one simulation run;
// ComputeContact is invoked once per timestep and is the only mutation point
// of the contact history.
type ContactSolver struct {
	robot  dynamics.Robot
	logger golog.Logger

	footprint   []*mat.VecDense
	actuatedDOF int
	dof         int

	selector *mat.Dense
	cone     *frictionCone

	// Vertex index i covers the left foot for i < 4 and the right foot
	// otherwise. previousContact is rewritten from currentContact at the very
	// end of each step, after the impact test consumed the pair.
	previousContact [numVertices]bool
	currentContact  [numVertices]bool
}

// NewContactSolver validates the footprint and builds the time-invariant
// pieces of the optimization problem. The footprint lists the 4 contact
// vertices of a sole in its own frame; the same geometry serves both feet.
//
// The contact history starts with every vertex marked as already in contact,
// so a touchdown during the very first step does not trigger the impact
// velocity correction. This mirrors the behavior of the original simulator
// and is kept for reproducibility.
func NewContactSolver(
	footprint [][]float64,
	actuatedDOF int,
	frictionCoefficient float64,
	robot dynamics.Robot,
	logger golog.Logger,
) (*ContactSolver, error) {
	if len(footprint) != verticesPerFoot {
		return nil, errFootprintShape
	}
	vertices := make([]*mat.VecDense, 0, verticesPerFoot)
	for _, v := range footprint {
		if len(v) != 3 {
			return nil, errFootprintShape
		}
		vertices = append(vertices, mat.NewVecDense(3, []float64{v[0], v[1], v[2]}))
	}
	if frictionCoefficient <= 0 {
		return nil, errFriction
	}
	if actuatedDOF <= 0 {
		return nil, errActuatedDOF
	}
	if robot == nil {
		return nil, errNilRobot
	}

	s := &ContactSolver{
		robot:       robot,
		logger:      logger,
		footprint:   vertices,
		actuatedDOF: actuatedDOF,
		dof:         baseDOF + actuatedDOF,
		selector:    newActuationSelector(actuatedDOF),
		cone:        newFrictionCone(frictionCoefficient),
	}
	for i := range s.previousContact {
		s.previousContact[i] = true
		s.currentContact[i] = true
	}
	return s, nil
}

// StepResult holds the outputs of one contact resolution step. Wrenches stack
// force on top of moment; foot wrenches are expressed in the sole frames.
type StepResult struct {
	TotalWrench     []float64 // 6 + actuated DOF
	LeftFootWrench  []float64 // 6
	RightFootWrench []float64 // 6
	BaseVelocity    []float64 // 6, post impact correction
	JointVelocity   []float64 // actuated DOF, post impact correction
	ContactForces   []float64 // 3 per vertex, world frame, left foot first
}

// ComputeContact runs one timestep of the contact pipeline. It queries the
// dynamics provider read-only, solves for the vertex forces, and returns the
// total generalized wrench, both sole-frame foot wrenches, and the
// generalized velocity after any impact correction. The contact history is
// advanced as a side effect; no other state is mutated. A quadratic-program
// failure or a singular impact projector aborts the step with an error.
func (s *ContactSolver) ComputeContact(
	ctx context.Context,
	torque, externalWrench, baseVelocity, jointVelocity []float64,
) (*StepResult, error) {
	if err := s.checkInputDims(torque, externalWrench, baseVelocity, jointVelocity); err != nil {
		return nil, err
	}

	massMatrix := s.robot.MassMatrix()
	bias := s.robot.BiasForces()
	leftH, rightH := s.robot.FeetTransforms()
	leftJ, rightJ := s.robot.FeetJacobians()
	leftJDotNu, rightJDotNu := s.robot.FeetJacobianDotNu()

	var massInv mat.Dense
	if err := massInv.Inverse(massMatrix); err != nil {
		return nil, errors.Wrap(err, "mass matrix is singular")
	}

	jFeet, jDotNuFeet := s.assembleVertexJacobians(leftJ, rightJ, leftJDotNu, rightJDotNu, leftH, rightH)

	heights := s.detectContacts(leftH, rightH)

	qddotFree := s.freeAcceleration(&massInv, bias, torque, externalWrench)
	aFree := mat.NewVecDense(forceDim, nil)
	aFree.MulVec(jFeet, qddotFree)
	aFree.AddVec(aFree, jDotNuFeet)

	prob := s.buildForceProblem(jFeet, &massInv, aFree)
	force, err := solveQP(ctx, prob)
	if err != nil {
		return nil, errors.Wrap(err, "contact force resolution failed")
	}
	forceVec := mat.NewVecDense(forceDim, force)

	result := &StepResult{
		TotalWrench:     s.generalizedWrench(jFeet, forceVec, externalWrench),
		LeftFootWrench:  s.footWrench(leftH, forceVec, 0),
		RightFootWrench: s.footWrench(rightH, forceVec, 1),
		ContactForces:   force,
	}

	baseOut, jointOut, err := s.correctImpactVelocity(jFeet, &massInv, baseVelocity, jointVelocity)
	if err != nil {
		return nil, err
	}
	result.BaseVelocity = baseOut
	result.JointVelocity = jointOut

	s.commitContactState(heights)

	return result, nil
}

// ContactState returns copies of the previous and current per-vertex contact
// flags, vertices 0-3 for the left foot and 4-7 for the right.
func (s *ContactSolver) ContactState() (previous, current []bool) {
	previous = make([]bool, numVertices)
	current = make([]bool, numVertices)
	copy(previous, s.previousContact[:])
	copy(current, s.currentContact[:])
	return previous, current
}

func (s *ContactSolver) checkInputDims(torque, externalWrench, baseVelocity, jointVelocity []float64) error {
	if len(torque) != s.actuatedDOF {
		return errors.Errorf("expected %d joint torques, got %d", s.actuatedDOF, len(torque))
	}
	if len(externalWrench) != s.dof {
		return errors.Errorf("expected external wrench of dimension %d, got %d", s.dof, len(externalWrench))
	}
	if len(baseVelocity) != baseDOF {
		return errors.Errorf("expected base velocity of dimension %d, got %d", baseDOF, len(baseVelocity))
	}
	if len(jointVelocity) != s.actuatedDOF {
		return errors.Errorf("expected %d joint velocities, got %d", s.actuatedDOF, len(jointVelocity))
	}
	return nil
}

// freeAcceleration computes the unconstrained generalized acceleration
// M⁻¹(Sτ + f_ext − h).
func (s *ContactSolver) freeAcceleration(massInv *mat.Dense, bias *mat.VecDense, torque, externalWrench []float64) *mat.VecDense {
	generalized := mat.NewVecDense(s.dof, nil)
	generalized.MulVec(s.selector, mat.NewVecDense(s.actuatedDOF, torque))
	generalized.AddVec(generalized, mat.NewVecDense(s.dof, externalWrench))
	generalized.SubVec(generalized, bias)

	qddot := mat.NewVecDense(s.dof, nil)
	qddot.MulVec(massInv, generalized)
	return qddot
}

// detectContacts computes the world height of every vertex and rewrites
// currentContact; previousContact stays untouched until the end-of-step
// commit. A vertex is contacting iff its height is non-positive.
func (s *ContactSolver) detectContacts(leftH, rightH *mat.Dense) []float64 {
	heights := make([]float64, numVertices)
	for i := 0; i < numVertices; i++ {
		h := leftH
		if i >= verticesPerFoot {
			h = rightH
		}
		heights[i] = vertexHeight(h, s.footprint[i%verticesPerFoot])
		s.currentContact[i] = heights[i] <= 0
	}
	return heights
}

func (s *ContactSolver) commitContactState(heights []float64) {
	contacting := 0
	for i := range s.currentContact {
		if s.currentContact[i] {
			contacting++
		}
		s.previousContact[i] = s.currentContact[i]
	}
	s.logger.Debugw("contact step complete", "contacting", contacting, "heights", heights)
}

// newActuationSelector builds the (6+n)×n matrix mapping joint torques into
// generalized forces: zero rows for the unactuated floating base, identity
// for the joints.
func newActuationSelector(actuatedDOF int) *mat.Dense {
	sel := mat.NewDense(baseDOF+actuatedDOF, actuatedDOF, nil)
	for i := 0; i < actuatedDOF; i++ {
		sel.Set(baseDOF+i, i, 1)
	}
	return sel
}
