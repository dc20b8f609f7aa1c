package contact

import (
	"context"
	"math"
	"testing"

	"github.com/edaniels/golog"
	"go.viam.com/test"

	"go.viam.com/groundcontact/dynamics"
)

const testMu = 1.0 / 3.0

// rectFootprint is a flat rectangular sole, vertices in the sole frame.
func rectFootprint() [][]float64 {
	return [][]float64{
		{0.1, 0.05, 0},
		{0.1, -0.05, 0},
		{-0.1, -0.05, 0},
		{-0.1, 0.05, 0},
	}
}

func zeros(n int) []float64 {
	return make([]float64, n)
}

func TestNewContactSolver(t *testing.T) {
	logger := golog.NewTestLogger(t)
	model := dynamics.NewFlatGroundModel(50, 4)
	for _, c := range []struct {
		name      string
		footprint [][]float64
		dof       int
		mu        float64
		robot     dynamics.Robot
		err       string
	}{
		{"valid", rectFootprint(), 4, testMu, model, ""},
		{"three vertices", rectFootprint()[:3], 4, testMu, model, "exactly 4"},
		{"two-dimensional vertex", [][]float64{{0.1, 0.05}, {0.1, -0.05, 0}, {-0.1, -0.05, 0}, {-0.1, 0.05, 0}}, 4, testMu, model, "exactly 4"},
		{"zero friction", rectFootprint(), 4, 0, model, "friction coefficient"},
		{"negative friction", rectFootprint(), 4, -0.5, model, "friction coefficient"},
		{"no actuated DOF", rectFootprint(), 0, testMu, model, "actuated degrees"},
		{"nil robot", rectFootprint(), 4, testMu, nil, "nil"},
	} {
		t.Run(c.name, func(t *testing.T) {
			s, err := NewContactSolver(c.footprint, c.dof, c.mu, c.robot, logger)
			if c.err == "" {
				test.That(t, err, test.ShouldBeNil)
				test.That(t, s, test.ShouldNotBeNil)
			} else {
				test.That(t, err, test.ShouldNotBeNil)
				test.That(t, err.Error(), test.ShouldContainSubstring, c.err)
			}
		})
	}
}

func TestInitialContactState(t *testing.T) {
	logger := golog.NewTestLogger(t)
	model := dynamics.NewFlatGroundModel(50, 4)
	s, err := NewContactSolver(rectFootprint(), 4, testMu, model, logger)
	test.That(t, err, test.ShouldBeNil)

	// Every vertex starts marked as contacting, before any detection has run.
	previous, current := s.ContactState()
	for i := 0; i < numVertices; i++ {
		test.That(t, previous[i], test.ShouldBeTrue)
		test.That(t, current[i], test.ShouldBeTrue)
	}
}

func TestInputDimensionChecks(t *testing.T) {
	logger := golog.NewTestLogger(t)
	model := dynamics.NewFlatGroundModel(50, 4)
	s, err := NewContactSolver(rectFootprint(), 4, testMu, model, logger)
	test.That(t, err, test.ShouldBeNil)

	ctx := context.Background()
	_, err = s.ComputeContact(ctx, zeros(3), zeros(10), zeros(6), zeros(4))
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, "joint torques")

	_, err = s.ComputeContact(ctx, zeros(4), zeros(9), zeros(6), zeros(4))
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, "external wrench")

	_, err = s.ComputeContact(ctx, zeros(4), zeros(10), zeros(5), zeros(4))
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, "base velocity")

	_, err = s.ComputeContact(ctx, zeros(4), zeros(10), zeros(6), zeros(3))
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, "joint velocities")
}

func TestFlatRestWeightBalance(t *testing.T) {
	logger := golog.NewTestLogger(t)
	mass := 52.0
	model := dynamics.NewFlatGroundModel(mass, 4)
	s, err := NewContactSolver(rectFootprint(), 4, testMu, model, logger)
	test.That(t, err, test.ShouldBeNil)

	res, err := s.ComputeContact(context.Background(), zeros(4), zeros(10), zeros(6), zeros(4))
	test.That(t, err, test.ShouldBeNil)

	weight := mass * dynamics.GravityAcceleration
	sumFz := 0.0
	for v := 0; v < numVertices; v++ {
		fx, fy, fz := res.ContactForces[3*v], res.ContactForces[3*v+1], res.ContactForces[3*v+2]
		test.That(t, fz, test.ShouldBeGreaterThanOrEqualTo, -1e-6)
		test.That(t, math.Abs(fx), test.ShouldBeLessThanOrEqualTo, testMu*fz+1e-6)
		test.That(t, math.Abs(fy), test.ShouldBeLessThanOrEqualTo, testMu*fz+1e-6)
		sumFz += fz
	}
	test.That(t, sumFz, test.ShouldAlmostEqual, weight, weight*1e-3)

	// Standing still in balance: the total wrench carries the full weight and
	// no base moment.
	test.That(t, res.TotalWrench[2], test.ShouldAlmostEqual, weight, weight*1e-3)
	test.That(t, res.TotalWrench[3], test.ShouldAlmostEqual, 0, 0.5)
	test.That(t, res.TotalWrench[4], test.ShouldAlmostEqual, 0, 0.5)

	// Both sole frames are world-aligned, so per-foot vertical forces add
	// back up to the weight.
	test.That(t, res.LeftFootWrench[2]+res.RightFootWrench[2], test.ShouldAlmostEqual, weight, weight*1e-3)

	// No impact occurred, so velocities pass through untouched.
	test.That(t, res.BaseVelocity, test.ShouldResemble, zeros(6))
	test.That(t, res.JointVelocity, test.ShouldResemble, zeros(4))
}

func TestAirborneNoContact(t *testing.T) {
	logger := golog.NewTestLogger(t)
	model := dynamics.NewFlatGroundModel(50, 4)
	model.LeftSoleHeight = 0.5
	model.RightSoleHeight = 0.5
	s, err := NewContactSolver(rectFootprint(), 4, testMu, model, logger)
	test.That(t, err, test.ShouldBeNil)

	external := []float64{1, -2, 3, 0.5, 0, 0, 0, 0, 0, 0}
	res, err := s.ComputeContact(context.Background(), zeros(4), external, zeros(6), zeros(4))
	test.That(t, err, test.ShouldBeNil)

	for _, f := range res.ContactForces {
		test.That(t, f, test.ShouldAlmostEqual, 0, 1e-4)
	}
	for i := range external {
		test.That(t, res.TotalWrench[i], test.ShouldAlmostEqual, external[i], 1e-3)
	}
	_, current := s.ContactState()
	for i := 0; i < numVertices; i++ {
		test.That(t, current[i], test.ShouldBeFalse)
	}
}

func TestMixedContactZeroForceAtAirborneVertices(t *testing.T) {
	logger := golog.NewTestLogger(t)
	model := dynamics.NewFlatGroundModel(50, 4)
	model.RightSoleHeight = 0.3
	s, err := NewContactSolver(rectFootprint(), 4, testMu, model, logger)
	test.That(t, err, test.ShouldBeNil)

	res, err := s.ComputeContact(context.Background(), zeros(4), zeros(10), zeros(6), zeros(4))
	test.That(t, err, test.ShouldBeNil)

	// Right foot vertices are above ground: their forces solve to zero.
	for v := verticesPerFoot; v < numVertices; v++ {
		for i := 0; i < 3; i++ {
			test.That(t, res.ContactForces[3*v+i], test.ShouldAlmostEqual, 0, 1e-4)
		}
	}
	// Left foot vertices stay unilateral.
	for v := 0; v < verticesPerFoot; v++ {
		test.That(t, res.ContactForces[3*v+2], test.ShouldBeGreaterThanOrEqualTo, -1e-6)
	}
}

func TestStateCommitOrdering(t *testing.T) {
	logger := golog.NewTestLogger(t)
	model := dynamics.NewFlatGroundModel(50, 4)
	model.LeftSoleHeight = 0.5
	model.RightSoleHeight = 0.5
	s, err := NewContactSolver(rectFootprint(), 4, testMu, model, logger)
	test.That(t, err, test.ShouldBeNil)

	_, err = s.ComputeContact(context.Background(), zeros(4), zeros(10), zeros(6), zeros(4))
	test.That(t, err, test.ShouldBeNil)

	// After a step, the committed previous state equals the detection result
	// of that same step.
	previous, current := s.ContactState()
	test.That(t, previous, test.ShouldResemble, current)
	for i := 0; i < numVertices; i++ {
		test.That(t, previous[i], test.ShouldBeFalse)
	}

	// Bring both feet to the ground: the committed state flips with the next
	// detection.
	model.LeftSoleHeight = 0
	model.RightSoleHeight = 0
	_, err = s.ComputeContact(context.Background(), zeros(4), zeros(10), zeros(6), zeros(4))
	test.That(t, err, test.ShouldBeNil)
	previous, current = s.ContactState()
	test.That(t, previous, test.ShouldResemble, current)
	for i := 0; i < numVertices; i++ {
		test.That(t, previous[i], test.ShouldBeTrue)
	}
}
