package seqopt

import (
	"math"
	"math/rand"

	"go.uber.org/zap"
	"gonum.org/v1/gonum/diff/fd"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/optimize"

	"github.com/seqopt/seqopt/acquisition"
	"github.com/seqopt/seqopt/opterr"
	"github.com/seqopt/seqopt/space"
	"github.com/seqopt/seqopt/surrogate"
)

// maximizer finds the point maximizing the acquisition surface under the
// current model. Implementations return a native point inside the space.
type maximizer interface {
	Maximize(acq acquisition.Function, model surrogate.Model, sp *space.Space, best float64, bestPoint space.Point, rng *rand.Rand) (space.Point, error)
}

// samplingMaximizer scores a pool of random candidates and returns the
// arg-max. It works for any space, categorical-only ones included.
type samplingMaximizer struct {
	nCandidates int
}

func (m *samplingMaximizer) Maximize(acq acquisition.Function, model surrogate.Model, sp *space.Space, best float64, _ space.Point, rng *rand.Rand) (space.Point, error) {
	const op = "seqopt.samplingMaximizer.Maximize"

	candidates := sp.Sample(m.nCandidates, rng)
	X, err := sp.TransformMatrix(candidates)
	if err != nil {
		return nil, opterr.Wrap(err, opterr.KindDomain, op)
	}
	mean, std, err := model.Predict(X)
	if err != nil {
		return nil, err
	}

	bestIdx := 0
	bestScore := math.Inf(-1)
	for i := range candidates {
		if score := acq.Score(mean[i], std[i], best); score > bestScore {
			bestScore = score
			bestIdx = i
		}
	}
	return candidates[bestIdx], nil
}

// gradientMaximizer runs multi-restart LBFGS on the negated acquisition in
// transformed coordinates, with finite-difference gradients. Restarts are
// random points in the transformed box plus the current incumbent. It
// falls back to sampling when the space is purely categorical or when
// every restart fails.
type gradientMaximizer struct {
	nRestarts int
	sampling  *samplingMaximizer
	logger    *zap.Logger
}

func (m *gradientMaximizer) Maximize(acq acquisition.Function, model surrogate.Model, sp *space.Space, best float64, bestPoint space.Point, rng *rand.Rand) (space.Point, error) {
	if sp.AllCategorical() {
		return m.sampling.Maximize(acq, model, sp, best, bestPoint, rng)
	}

	bounds := sp.TransformedBounds()
	dim := len(bounds)

	f := func(x []float64) float64 {
		clamped := clampToBounds(x, bounds)
		X := mat.NewDense(1, dim, clamped)
		mean, std, err := model.Predict(X)
		if err != nil {
			return math.Inf(1)
		}
		return -acq.Score(mean[0], std[0], best)
	}
	problem := optimize.Problem{
		Func: f,
		Grad: func(grad, x []float64) {
			fd.Gradient(grad, f, x, nil)
		},
	}
	settings := &optimize.Settings{
		Converger: &optimize.FunctionConverge{
			Absolute:   1e-9,
			Relative:   1e-9,
			Iterations: 20,
		},
	}

	starts := make([][]float64, 0, m.nRestarts+1)
	for i := 0; i < m.nRestarts; i++ {
		start := make([]float64, dim)
		for j, b := range bounds {
			start[j] = b[0] + rng.Float64()*(b[1]-b[0])
		}
		starts = append(starts, start)
	}
	if bestPoint != nil {
		if x, err := sp.Transform(bestPoint); err == nil {
			starts = append(starts, x)
		}
	}

	var bestX []float64
	bestF := math.Inf(1)
	for _, start := range starts {
		result, err := optimize.Minimize(problem, start, settings, &optimize.LBFGS{})
		if err != nil || result == nil {
			continue
		}
		if result.F < bestF {
			bestF = result.F
			bestX = clampToBounds(result.X, bounds)
		}
	}
	if bestX == nil {
		m.logger.Warn("acquisition gradient search failed on every restart, falling back to sampling",
			zap.Int("restarts", len(starts)),
		)
		return m.sampling.Maximize(acq, model, sp, best, bestPoint, rng)
	}
	return sp.InverseTransform(bestX)
}

func clampToBounds(x []float64, bounds [][2]float64) []float64 {
	out := make([]float64, len(x))
	for i, v := range x {
		switch {
		case v < bounds[i][0]:
			out[i] = bounds[i][0]
		case v > bounds[i][1]:
			out[i] = bounds[i][1]
		default:
			out[i] = v
		}
	}
	return out
}
