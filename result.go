package seqopt

import (
	"github.com/seqopt/seqopt/space"
	"github.com/seqopt/seqopt/surrogate"
)

// Result is a snapshot of an optimization run: every evaluated point with
// its objective value, the incumbent, and the retained surrogate
// snapshots in fit order.
type Result struct {
	// BestPoint minimizes the observed objective values.
	BestPoint space.Point

	// BestValue is the objective value at BestPoint.
	BestValue float64

	// Points holds all evaluated points in evaluation order.
	Points []space.Point

	// Values holds the objective values, aligned with Points.
	Values []float64

	// Models holds the retained surrogate snapshots, oldest first. The
	// queue is bounded by Settings.ModelQueueSize.
	Models []surrogate.Model

	// Space is the search space the run optimized over.
	Space *space.Space
}

// Named returns the value of the named dimension in BestPoint. The
// second return is false when the run has no incumbent yet or the name
// does not match any dimension.
func (r *Result) Named(name string) (any, bool) {
	if r.BestPoint == nil {
		return nil, false
	}
	for i, n := range r.Space.Names() {
		if n == name {
			return r.BestPoint[i], true
		}
	}
	return nil, false
}
