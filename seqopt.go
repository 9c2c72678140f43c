// Package seqopt minimizes expensive black-box functions over mixed
// continuous, integer and categorical search spaces using sequential
// model-based optimization: a Gaussian process surrogate is fitted to the
// observations so far, and an acquisition function decides which point is
// worth evaluating next.
//
// The two entry points are Minimize, which drives the whole loop, and
// Optimizer, which exposes the loop as Ask/Tell for callers that control
// evaluation themselves.
package seqopt

import (
	"context"

	"github.com/seqopt/seqopt/space"
)

// Minimize runs the full optimization loop over the space and returns the
// result. It is shorthand for NewOptimizer followed by Run.
func Minimize(ctx context.Context, sp *space.Space, objective Objective, settings Settings) (*Result, error) {
	opt, err := NewOptimizer(sp, settings)
	if err != nil {
		return nil, err
	}
	return opt.Run(ctx, objective)
}
