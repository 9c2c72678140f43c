// Package acquisition scores candidate points by how promising they are
// to evaluate next, trading exploration against exploitation under the
// surrogate's Gaussian predictive distribution. All scores follow the
// convention that higher is more promising, with the objective being
// minimized.
package acquisition

import (
	"gonum.org/v1/gonum/stat/distuv"
)

// zeroStd is the threshold below which the predictive distribution is
// treated as a point mass.
const zeroStd = 1e-12

// Function scores one candidate given the model's predictive mean and
// standard deviation and the best observed objective value.
type Function interface {
	Score(mean, std, best float64) float64
}

// ExpectedImprovement is the closed-form expectation of improvement over
// the current best. Xi shifts how much improvement is demanded before a
// candidate scores.
type ExpectedImprovement struct {
	Xi float64
}

// Score implements Function. The score decays to 0 as std approaches 0:
// a certain prediction can contribute no expected improvement.
func (a ExpectedImprovement) Score(mean, std, best float64) float64 {
	if std <= zeroStd {
		return 0
	}
	improvement := best - mean - a.Xi
	z := improvement / std
	n := distuv.UnitNormal
	ei := improvement*n.CDF(z) + std*n.Prob(z)
	if ei < 0 {
		return 0
	}
	return ei
}

// ProbabilityOfImprovement is the probability mass of the predictive
// distribution below the current best (minus Xi).
type ProbabilityOfImprovement struct {
	Xi float64
}

// Score implements Function. With std = 0 the distribution is a point
// mass: the score is 1 if the mean already improves on best, else 0.
func (a ProbabilityOfImprovement) Score(mean, std, best float64) float64 {
	improvement := best - mean - a.Xi
	if std <= zeroStd {
		if improvement > 0 {
			return 1
		}
		return 0
	}
	return distuv.UnitNormal.CDF(improvement / std)
}

// LowerConfidenceBound scores by the negated lower confidence bound
// mean - kappa*std, so that maximizing the score minimizes the bound.
// Kappa controls exploration; it ignores the best observed value.
type LowerConfidenceBound struct {
	Kappa float64
}

// Score implements Function.
func (a LowerConfidenceBound) Score(mean, std, _ float64) float64 {
	return a.Kappa*std - mean
}
