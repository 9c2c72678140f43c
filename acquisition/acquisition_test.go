package acquisition

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExpectedImprovement(t *testing.T) {
	ei := ExpectedImprovement{Xi: 0.01}

	t.Run("zero std scores zero", func(t *testing.T) {
		assert.Equal(t, 0.0, ei.Score(0.5, 0, 1.0))
		assert.Equal(t, 0.0, ei.Score(2.0, 0, 1.0))
	})

	t.Run("improvement scores positive", func(t *testing.T) {
		score := ei.Score(0.0, 0.5, 1.0)
		assert.Greater(t, score, 0.0)
	})

	t.Run("never negative", func(t *testing.T) {
		score := ei.Score(10.0, 0.01, 0.0)
		assert.GreaterOrEqual(t, score, 0.0)
	})

	t.Run("closer means score higher", func(t *testing.T) {
		near := ei.Score(0.2, 0.3, 1.0)
		far := ei.Score(0.8, 0.3, 1.0)
		assert.Greater(t, near, far)
	})

	t.Run("uncertainty adds value at equal mean", func(t *testing.T) {
		confident := ei.Score(1.0, 0.1, 1.0)
		uncertain := ei.Score(1.0, 0.5, 1.0)
		assert.Greater(t, uncertain, confident)
	})
}

func TestProbabilityOfImprovement(t *testing.T) {
	pi := ProbabilityOfImprovement{Xi: 0.01}

	t.Run("zero std is a point mass", func(t *testing.T) {
		assert.Equal(t, 1.0, pi.Score(0.0, 0, 1.0))
		assert.Equal(t, 0.0, pi.Score(2.0, 0, 1.0))
	})

	t.Run("probability bounds", func(t *testing.T) {
		for _, mean := range []float64{-2, 0, 0.5, 1, 3} {
			score := pi.Score(mean, 0.4, 1.0)
			assert.GreaterOrEqual(t, score, 0.0)
			assert.LessOrEqual(t, score, 1.0)
		}
	})

	t.Run("half probability at the margin", func(t *testing.T) {
		// mean = best - xi puts the improvement threshold at the center of
		// the predictive distribution.
		assert.InDelta(t, 0.5, pi.Score(0.99, 0.2, 1.0), 1e-12)
	})
}

func TestLowerConfidenceBound(t *testing.T) {
	lcb := LowerConfidenceBound{Kappa: 1.96}

	t.Run("formula", func(t *testing.T) {
		assert.InDelta(t, 1.96*0.5-0.3, lcb.Score(0.3, 0.5, 0.0), 1e-12)
	})

	t.Run("ignores best", func(t *testing.T) {
		assert.Equal(t, lcb.Score(0.3, 0.5, -100.0), lcb.Score(0.3, 0.5, 100.0))
	})

	t.Run("prefers lower mean and higher uncertainty", func(t *testing.T) {
		assert.Greater(t, lcb.Score(0.1, 0.5, 0), lcb.Score(0.9, 0.5, 0))
		assert.Greater(t, lcb.Score(0.5, 0.9, 0), lcb.Score(0.5, 0.1, 0))
	})
}
