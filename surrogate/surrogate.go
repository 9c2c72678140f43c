// Package surrogate provides the probabilistic regression models that
// stand in for an expensive objective function: a Gaussian process with
// selectable kernels and noise handling, and a factory that picks a
// sensible default model for a given search space.
package surrogate

import (
	"gonum.org/v1/gonum/mat"

	"github.com/seqopt/seqopt/space"
)

// Model is a regression model exposing mean and uncertainty prediction.
// Fit and Predict operate on transformed points (one row per point).
type Model interface {
	// Fit trains the model on the observations.
	Fit(X *mat.Dense, y []float64) error

	// Predict returns the predictive mean and standard deviation for
	// each row of X.
	Predict(X *mat.Dense) (mean, std []float64, err error)

	// Clone returns an unfitted copy carrying the same configuration.
	// The optimization loop fits a fresh clone per round so that
	// retained snapshots stay immutable.
	Clone() Model
}

// CookEstimator builds a default Gaussian process appropriate to the
// space's type mix: a Hamming kernel when every dimension is categorical
// (one-hot distances carry no gradient), a Matérn 5/2 kernel otherwise.
// The estimated flag selects noise estimation instead of a fixed level.
func CookEstimator(sp *space.Space, noise float64, estimated bool) *GaussianProcess {
	var k Kernel
	if sp.AllCategorical() {
		k = NewHamming(1.0, 1.0)
	} else {
		k = NewMatern52(1.0, 1.0)
	}
	gp := NewGaussianProcess(k, noise)
	if estimated {
		gp.estimateNoise = true
	}
	return gp
}
