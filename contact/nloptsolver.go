//go:build !windows && !no_cgo

package contact

import (
	"context"
	"sync"

	"github.com/go-nlopt/nlopt"
	"github.com/pkg/errors"
	"go.uber.org/multierr"
	"go.viam.com/utils"
	"gonum.org/v1/gonum/mat"
)

const (
	solverMaxEvals      = 4001
	solverTolerance     = 1e-10
	constraintTolerance = 1e-8
)

var errNoSolve = errors.New("quadratic program did not converge to a force solution")

type solveResult struct {
	solution []float64
	score    float64
	err      error
}

// solveQP minimizes ½fᵀHf + fᵀg over the admissible contact-force set using
// SLSQP with analytic gradients. The warm start seeds the search but imposes
// no bound. The solve blocks until completion; cancelling the context force
// stops the optimizer and fails the step.
func solveQP(ctx context.Context, prob *forceProblem) ([]float64, error) {
	dim := len(prob.warmStart)
	opt, err := nlopt.NewNLopt(nlopt.LD_SLSQP, uint(dim))
	if err != nil {
		return nil, errors.Wrap(err, "nlopt creation error")
	}
	defer opt.Destroy()

	objective := func(x, gradient []float64) float64 {
		xv := mat.NewVecDense(dim, x)
		hx := mat.NewVecDense(dim, nil)
		hx.MulVec(prob.hessian, xv)
		for i := range gradient {
			gradient[i] = hx.AtVec(i) + prob.linear.AtVec(i)
		}
		return 0.5*mat.Dot(hx, xv) + mat.Dot(prob.linear, xv)
	}

	err = multierr.Combine(
		opt.SetMinObjective(objective),
		opt.AddInequalityMConstraint(linearMConstraint(prob.ineqA, prob.ineqB), constraintTolerances(prob.ineqA)),
		opt.SetFtolRel(solverTolerance),
		opt.SetXtolRel(solverTolerance),
		opt.SetMaxEval(solverMaxEvals),
	)

	// Rows with a zero coefficient are vertices left unconstrained; they are
	// degenerate for SLSQP's least-squares subproblem, so only active rows
	// reach the optimizer.
	if eqA, eqB := activeEqualityRows(prob.eqA, prob.eqB); eqA != nil {
		err = multierr.Append(err, opt.AddEqualityMConstraint(linearMConstraint(eqA, eqB), constraintTolerances(eqA)))
	}
	if err != nil {
		return nil, errors.Wrap(err, "nlopt setup error")
	}

	seed := make([]float64, dim)
	copy(seed, prob.warmStart)

	solveChan := make(chan *solveResult, 1)
	var activeSolvers sync.WaitGroup
	activeSolvers.Add(1)
	utils.PanicCapturingGo(func() {
		defer activeSolvers.Done()
		solution, score, optErr := opt.Optimize(seed)
		solveChan <- &solveResult{solution, score, optErr}
	})

	select {
	case <-ctx.Done():
		err = opt.ForceStop()
		activeSolvers.Wait()
		return nil, multierr.Combine(ctx.Err(), err)
	case res := <-solveChan:
		if res.err != nil {
			return nil, multierr.Combine(errNoSolve, res.err)
		}
		if res.solution == nil {
			return nil, errNoSolve
		}
		return res.solution, nil
	}
}

// linearMConstraint adapts a linear system into an nlopt vector constraint
// c(x) = A·x − b with constant gradient A, laid out row-major.
func linearMConstraint(a *mat.Dense, b *mat.VecDense) nlopt.Mfunc {
	rows, cols := a.Dims()
	return func(result, x, gradient []float64) {
		xv := mat.NewVecDense(cols, x)
		for r := 0; r < rows; r++ {
			result[r] = mat.Dot(a.RowView(r), xv) - b.AtVec(r)
		}
		for r := 0; r < rows && len(gradient) > 0; r++ {
			for c := 0; c < cols; c++ {
				gradient[r*cols+c] = a.At(r, c)
			}
		}
	}
}

func constraintTolerances(a *mat.Dense) []float64 {
	rows, _ := a.Dims()
	tol := make([]float64, rows)
	for i := range tol {
		tol[i] = constraintTolerance
	}
	return tol
}
