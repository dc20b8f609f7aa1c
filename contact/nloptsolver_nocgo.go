//go:build windows || no_cgo

package contact

import (
	"context"

	"github.com/pkg/errors"
)

// solveQP refuses to solve the contact force program without cgo.
func solveQP(ctx context.Context, prob *forceProblem) ([]float64, error) {
	return nil, errors.New("nlopt is not supported on this build")
}
