package benchmark

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/seqopt/seqopt/opterr"
	"github.com/seqopt/seqopt/space"
)

func TestSphere(t *testing.T) {
	assert.Equal(t, 0.0, Sphere([]float64{0, 0, 0}))
	assert.InDelta(t, 14.0, Sphere([]float64{1, 2, 3}), 1e-12)
}

func TestParabola(t *testing.T) {
	assert.Equal(t, 0.0, Parabola(0))
	assert.Equal(t, 4.0, Parabola(-2))
}

func TestDoubleWell(t *testing.T) {
	assert.Equal(t, 0.0, DoubleWell(0))
	assert.Equal(t, -5.0, DoubleWell(5), "global minimum")
	assert.Equal(t, 4.0, DoubleWell(-2))
	assert.Greater(t, DoubleWell(-1), DoubleWell(5))
}

func TestDampedSine(t *testing.T) {
	assert.Equal(t, 0.0, DampedSine(0))
	// The damping term kills the oscillation far from the origin.
	assert.InDelta(t, 0.0, DampedSine(10), 1e-6)
	// Global minimum is near -0.9.
	assert.Less(t, DampedSine(-0.3), -0.8)
}

func TestDigitQuadratic(t *testing.T) {
	v, err := DigitQuadratic("3")
	require.NoError(t, err)
	assert.Equal(t, 9.0, v)

	v, err = DigitQuadratic("0")
	require.NoError(t, err)
	assert.Equal(t, 0.0, v)

	_, err = DigitQuadratic("x")
	assert.True(t, opterr.IsDomain(err))
}

func TestBraninMinima(t *testing.T) {
	minima := [][]float64{
		{-3.141592653589793, 12.275},
		{3.141592653589793, 2.275},
		{9.42478, 2.475},
	}
	for _, m := range minima {
		assert.InDelta(t, 0.397887, Branin(m), 1e-4)
	}
}

func TestHartmann6Minimum(t *testing.T) {
	argmin := []float64{0.20169, 0.150011, 0.476874, 0.275332, 0.311652, 0.6573}
	assert.InDelta(t, -3.32237, Hartmann6(argmin), 1e-4)
	assert.Greater(t, Hartmann6([]float64{0.9, 0.9, 0.9, 0.9, 0.9, 0.9}), -3.32237)
}

func TestFloatsAdapter(t *testing.T) {
	obj := Floats(Sphere)

	v, err := obj(space.Point{1.0, 2.0})
	require.NoError(t, err)
	assert.Equal(t, 5.0, v)

	_, err = obj(space.Point{"a"})
	assert.True(t, opterr.IsDomain(err))
}

func TestScalarAdapter(t *testing.T) {
	obj := Scalar(Parabola)

	v, err := obj(space.Point{3.0})
	require.NoError(t, err)
	assert.Equal(t, 9.0, v)

	_, err = obj(space.Point{1.0, 2.0})
	assert.True(t, opterr.IsDomain(err))

	_, err = obj(space.Point{1})
	assert.True(t, opterr.IsDomain(err))
}
