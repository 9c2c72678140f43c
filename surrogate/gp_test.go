package surrogate

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"github.com/seqopt/seqopt/opterr"
	"github.com/seqopt/seqopt/space"
)

func trainingData() (*mat.Dense, []float64) {
	X := mat.NewDense(5, 1, []float64{0.0, 0.25, 0.5, 0.75, 1.0})
	y := make([]float64, 5)
	for i := 0; i < 5; i++ {
		v := X.At(i, 0)
		y[i] = (v - 0.3) * (v - 0.3)
	}
	return X, y
}

func TestGPFitPredictInterpolates(t *testing.T) {
	gp := NewGaussianProcess(NewMatern52(1.0, 1.0), 1e-10)
	X, y := trainingData()
	require.NoError(t, gp.Fit(X, y))

	mean, std, err := gp.Predict(X)
	require.NoError(t, err)
	for i := range y {
		assert.InDelta(t, y[i], mean[i], 1e-3, "training point %d", i)
		assert.Less(t, std[i], 1e-2, "uncertainty at training point %d", i)
	}
}

func TestGPUncertaintyGrowsAwayFromData(t *testing.T) {
	gp := NewGaussianProcess(NewMatern52(0.2, 1.0), 1e-10)
	X, y := trainingData()
	require.NoError(t, gp.Fit(X, y))

	query := mat.NewDense(2, 1, []float64{0.5, 3.0})
	_, std, err := gp.Predict(query)
	require.NoError(t, err)
	assert.Greater(t, std[1], std[0], "std far from data should exceed std at a training point")
}

func TestGPFitErrors(t *testing.T) {
	gp := NewGaussianProcess(NewMatern52(1.0, 1.0), 1e-10)

	err := gp.Fit(nil, nil)
	assert.True(t, opterr.IsFit(err))

	err = gp.Fit(mat.NewDense(2, 1, []float64{0, 1}), []float64{1.0})
	assert.True(t, opterr.IsFit(err), "row/value mismatch")

	err = gp.Fit(mat.NewDense(2, 1, []float64{0, 1}), []float64{1.0, math.NaN()})
	assert.True(t, opterr.IsFit(err), "non-finite target")

	err = gp.Fit(mat.NewDense(3, 2, []float64{
		0.5, 0.5,
		0.5, 0.5,
		0.5, 0.5,
	}), []float64{1, 2, 3})
	assert.True(t, opterr.IsFit(err), "degenerate design")
}

func TestGPFitSingleObservation(t *testing.T) {
	gp := NewGaussianProcess(NewMatern52(1.0, 1.0), 1e-10)
	require.NoError(t, gp.Fit(mat.NewDense(1, 1, []float64{0.5}), []float64{2.0}))

	mean, _, err := gp.Predict(mat.NewDense(1, 1, []float64{0.5}))
	require.NoError(t, err)
	assert.InDelta(t, 2.0, mean[0], 1e-6)
}

func TestGPPredictBeforeFit(t *testing.T) {
	gp := NewGaussianProcess(NewMatern52(1.0, 1.0), 1e-10)
	_, _, err := gp.Predict(mat.NewDense(1, 1, []float64{0.5}))
	assert.True(t, opterr.IsFit(err))
}

func TestGPPredictDimensionMismatch(t *testing.T) {
	gp := NewGaussianProcess(NewMatern52(1.0, 1.0), 1e-10)
	X, y := trainingData()
	require.NoError(t, gp.Fit(X, y))

	_, _, err := gp.Predict(mat.NewDense(1, 2, []float64{0.5, 0.5}))
	assert.True(t, opterr.IsFit(err))
}

func TestGPCloneKeepsNoiseConfiguration(t *testing.T) {
	gp := NewGaussianProcess(NewMatern52(1.0, 1.0), 1e-3)
	clone := gp.Clone().(*GaussianProcess)
	assert.InDelta(t, 1e-3, clone.Noise(), 1e-15, "a clone keeps the configured noise")

	X, y := trainingData()
	require.NoError(t, clone.Fit(X, y))
	assert.InDelta(t, 1e-3, clone.Noise(), 1e-15, "fitting a fixed-noise model must not change its noise")

	// The clone is unfitted and independent of the original.
	_, _, err := gp.Predict(X)
	assert.True(t, opterr.IsFit(err))
}

func TestGPEstimatedNoiseFromGrid(t *testing.T) {
	gp := NewGaussianProcessEstimatedNoise(NewMatern52(1.0, 1.0))
	X, y := trainingData()
	require.NoError(t, gp.Fit(X, y))

	found := false
	for _, level := range noiseGrid {
		if gp.Noise() == level {
			found = true
			break
		}
	}
	assert.True(t, found, "estimated noise %v should be one of the grid levels", gp.Noise())

	clone := gp.Clone().(*GaussianProcess)
	assert.True(t, clone.estimateNoise, "clones keep estimation mode")
}

func TestGPMeanRevertsToPriorFarAway(t *testing.T) {
	gp := NewGaussianProcess(NewMatern52(0.1, 1.0), 1e-10)
	X, y := trainingData()
	require.NoError(t, gp.Fit(X, y))

	var yMean float64
	for _, v := range y {
		yMean += v
	}
	yMean /= float64(len(y))

	mean, _, err := gp.Predict(mat.NewDense(1, 1, []float64{50.0}))
	require.NoError(t, err)
	assert.InDelta(t, yMean, mean[0], 1e-6, "far from data the posterior reverts to the sample mean")
}

func TestCookEstimatorKernelSelection(t *testing.T) {
	mixed, err := space.FromSpec([2]float64{0, 1}, []string{"a", "b"})
	require.NoError(t, err)
	gp := CookEstimator(mixed, 1e-10, false)
	_, isMatern := gp.Kernel().(*Matern52)
	assert.True(t, isMatern, "mixed spaces get a Matérn 5/2 kernel")

	cats, err := space.FromSpec([]string{"a", "b"}, []string{"x", "y"})
	require.NoError(t, err)
	gp = CookEstimator(cats, 1e-10, false)
	_, isHamming := gp.Kernel().(*Hamming)
	assert.True(t, isHamming, "purely categorical spaces get a Hamming kernel")

	est := CookEstimator(mixed, 1e-10, true)
	assert.True(t, est.estimateNoise)
}

func TestMatrixPoolReusesBySize(t *testing.T) {
	pool := newMatrixPool()

	m3 := pool.getSym(3)
	m3.SetSym(0, 0, 42)
	pool.putSym(m3)

	got5 := pool.getSym(5)
	assert.Equal(t, 5, got5.SymmetricDim())

	got3 := pool.getSym(3)
	assert.Equal(t, 3, got3.SymmetricDim())
	assert.Equal(t, 0.0, got3.At(0, 0), "reused matrices are zeroed")
}
