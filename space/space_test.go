package space

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/seqopt/seqopt/opterr"
)

func TestNewRealValidation(t *testing.T) {
	_, err := NewReal("x", 1, 1)
	assert.True(t, opterr.IsDomain(err), "low == high should be rejected")

	_, err = NewReal("x", 2, 1)
	assert.True(t, opterr.IsDomain(err))

	_, err = NewRealPrior("x", -1, 1, LogUniform)
	assert.True(t, opterr.IsDomain(err), "log-uniform needs positive bounds")

	_, err = NewRealPrior("x", 0.1, 10, LogUniform)
	assert.NoError(t, err)
}

func TestRealTransformRoundTrip(t *testing.T) {
	d, err := NewReal("x", -2, 2)
	require.NoError(t, err)

	x, err := d.Transform(0.5)
	require.NoError(t, err)
	require.Len(t, x, 1)
	assert.InDelta(t, 0.625, x[0], 1e-12)

	back, err := d.InverseTransform(x)
	require.NoError(t, err)
	assert.InDelta(t, 0.5, back.(float64), 1e-12)

	_, err = d.Transform(3.0)
	assert.True(t, opterr.IsDomain(err))
}

func TestRealLogUniformTransform(t *testing.T) {
	d, err := NewRealPrior("lr", 1e-4, 1e-1, LogUniform)
	require.NoError(t, err)

	// Geometric midpoint maps to the middle of the unit interval.
	mid := math.Sqrt(1e-4 * 1e-1)
	x, err := d.Transform(mid)
	require.NoError(t, err)
	assert.InDelta(t, 0.5, x[0], 1e-9)

	back, err := d.InverseTransform(x)
	require.NoError(t, err)
	assert.InDelta(t, mid, back.(float64), 1e-12)
}

func TestRealLogUniformSampleInBounds(t *testing.T) {
	d, err := NewRealPrior("lr", 1e-6, 1.0, LogUniform)
	require.NoError(t, err)

	rng := rand.New(rand.NewSource(1))
	for i := 0; i < 200; i++ {
		v := d.Sample(rng).(float64)
		assert.GreaterOrEqual(t, v, 1e-6)
		assert.LessOrEqual(t, v, 1.0)
	}
}

func TestIntegerTransformRoundTrip(t *testing.T) {
	d, err := NewInteger("n", 1, 9)
	require.NoError(t, err)

	for _, v := range []int{1, 4, 9} {
		x, err := d.Transform(v)
		require.NoError(t, err)
		back, err := d.InverseTransform(x)
		require.NoError(t, err)
		assert.Equal(t, v, back)
	}

	_, err = d.Transform(10)
	assert.True(t, opterr.IsDomain(err))
}

func TestIntegerSingleton(t *testing.T) {
	d, err := NewInteger("n", 1, 1)
	require.NoError(t, err)

	rng := rand.New(rand.NewSource(2))
	assert.Equal(t, 1, d.Sample(rng))

	x, err := d.Transform(1)
	require.NoError(t, err)
	assert.Equal(t, []float64{0}, x)

	back, err := d.InverseTransform(x)
	require.NoError(t, err)
	assert.Equal(t, 1, back)
}

func TestCategoricalOneHot(t *testing.T) {
	d, err := NewCategorical("opt", "adam", "sgd", "rmsprop")
	require.NoError(t, err)
	assert.Equal(t, 3, d.TransformedSize())

	x, err := d.Transform("sgd")
	require.NoError(t, err)
	assert.Equal(t, []float64{0, 1, 0}, x)

	back, err := d.InverseTransform([]float64{0.2, 0.1, 0.9})
	require.NoError(t, err)
	assert.Equal(t, "rmsprop", back)

	_, err = d.Transform("adagrad")
	assert.True(t, opterr.IsDomain(err))
}

func TestCategoricalValidation(t *testing.T) {
	_, err := NewCategorical("c")
	assert.True(t, opterr.IsDomain(err))

	_, err = NewCategorical("c", "a", "a")
	assert.True(t, opterr.IsDomain(err))
}

func TestCategoricalMixedValues(t *testing.T) {
	d, err := NewCategorical("c", "1", 4, 1.0)
	require.NoError(t, err)

	assert.True(t, d.Contains("1"))
	assert.True(t, d.Contains(4))
	assert.True(t, d.Contains(1.0))
	assert.False(t, d.Contains("4"))

	x, err := d.Transform(4)
	require.NoError(t, err)
	back, err := d.InverseTransform(x)
	require.NoError(t, err)
	assert.Equal(t, 4, back)
}

func TestSpaceAutoNames(t *testing.T) {
	sp, err := FromSpec([2]float64{0, 1}, [2]int{1, 5}, []string{"a", "b"})
	require.NoError(t, err)
	assert.Equal(t, []string{"x0", "x1", "x2"}, sp.Names())
}

func TestSpaceDuplicateNames(t *testing.T) {
	a, err := NewReal("x", 0, 1)
	require.NoError(t, err)
	b, err := NewReal("x", 0, 1)
	require.NoError(t, err)
	_, err = New(a, b)
	assert.True(t, opterr.IsDomain(err))
}

func TestSpaceOwnsDimensionCopies(t *testing.T) {
	d, err := NewReal("", 0, 2)
	require.NoError(t, err)

	a, err := New(d)
	require.NoError(t, err)
	b, err := New(d)
	require.NoError(t, err)

	// Both spaces assign their own positional name; the caller's
	// dimension is untouched and reusable.
	assert.Equal(t, "", d.Name())
	assert.Equal(t, []string{"x0"}, a.Names())
	assert.Equal(t, []string{"x0"}, b.Names())

	// Switching one space's transformer does not leak into the other.
	require.NoError(t, a.SetTransformer(Identity))
	xa, err := a.Transform(Point{1.0})
	require.NoError(t, err)
	xb, err := b.Transform(Point{1.0})
	require.NoError(t, err)
	assert.Equal(t, []float64{1.0}, xa)
	assert.Equal(t, []float64{0.5}, xb)
}

func TestFromSpecRejectsUnknownShape(t *testing.T) {
	_, err := FromSpec("not a dimension")
	assert.True(t, opterr.IsDomain(err))

	_, err = FromSpec([]float64{1, 2, 3})
	assert.True(t, opterr.IsDomain(err))
}

func TestSpaceTransformRoundTrip(t *testing.T) {
	sp, err := FromSpec([2]float64{-5, 5}, [2]int{0, 10}, []string{"a", "b", "c"})
	require.NoError(t, err)
	assert.Equal(t, 5, sp.TransformedDim())

	p := Point{2.5, 7, "b"}
	x, err := sp.Transform(p)
	require.NoError(t, err)
	require.Len(t, x, 5)

	back, err := sp.InverseTransform(x)
	require.NoError(t, err)
	assert.InDelta(t, 2.5, back[0].(float64), 1e-12)
	assert.Equal(t, 7, back[1])
	assert.Equal(t, "b", back[2])
}

func TestSpaceIdentityTransformer(t *testing.T) {
	sp, err := FromSpec([2]float64{-5, 5}, []string{"a", "b", "c"})
	require.NoError(t, err)
	require.NoError(t, sp.SetTransformer(Identity))
	assert.Equal(t, 2, sp.TransformedDim())

	x, err := sp.Transform(Point{3.0, "c"})
	require.NoError(t, err)
	assert.Equal(t, []float64{3, 2}, x)

	back, err := sp.InverseTransform(x)
	require.NoError(t, err)
	assert.InDelta(t, 3.0, back[0].(float64), 1e-12)
	assert.Equal(t, "c", back[1])

	assert.True(t, opterr.IsConfiguration(sp.SetTransformer("bogus")))
}

func TestSpaceContains(t *testing.T) {
	sp, err := FromSpec([2]float64{0, 1}, []string{"a", "b"})
	require.NoError(t, err)

	assert.True(t, sp.Contains(Point{0.5, "a"}))
	assert.False(t, sp.Contains(Point{1.5, "a"}))
	assert.False(t, sp.Contains(Point{0.5, "z"}))
	assert.False(t, sp.Contains(Point{0.5}))
}

func TestSpaceSampleInDomain(t *testing.T) {
	sp, err := FromSpec([2]float64{-1, 1}, [2]int{0, 3}, []string{"a", "b"})
	require.NoError(t, err)

	rng := rand.New(rand.NewSource(4))
	for _, p := range sp.Sample(100, rng) {
		assert.True(t, sp.Contains(p))
	}
}

func TestSpaceKindPredicates(t *testing.T) {
	mixed, err := FromSpec([2]float64{0, 1}, []string{"a", "b"})
	require.NoError(t, err)
	assert.True(t, mixed.HasContinuous())
	assert.False(t, mixed.AllCategorical())

	cats, err := FromSpec([]string{"a", "b"}, []string{"x", "y"})
	require.NoError(t, err)
	assert.True(t, cats.AllCategorical())
}

func TestPointFromUnit(t *testing.T) {
	sp, err := FromSpec([2]float64{-2, 2}, [2]int{0, 3}, []string{"a", "b"})
	require.NoError(t, err)

	p, err := sp.PointFromUnit([]float64{0.5, 0.99, 0.9})
	require.NoError(t, err)
	assert.InDelta(t, 0.0, p[0].(float64), 1e-12)
	assert.Equal(t, 3, p[1])
	assert.Equal(t, "b", p[2])

	p, err = sp.PointFromUnit([]float64{0, 0, 0})
	require.NoError(t, err)
	assert.InDelta(t, -2.0, p[0].(float64), 1e-12)
	assert.Equal(t, 0, p[1])
	assert.Equal(t, "a", p[2])

	_, err = sp.PointFromUnit([]float64{0.5})
	assert.True(t, opterr.IsDomain(err))
}

func TestPointFromUnitLogPrior(t *testing.T) {
	d, err := NewRealPrior("lr", 1e-4, 1e-1, LogUniform)
	require.NoError(t, err)
	sp, err := New(d)
	require.NoError(t, err)

	p, err := sp.PointFromUnit([]float64{0.5})
	require.NoError(t, err)
	assert.InDelta(t, math.Sqrt(1e-4*1e-1), p[0].(float64), 1e-9)
}

func TestTransformMatrix(t *testing.T) {
	sp, err := FromSpec([2]float64{0, 1}, []string{"a", "b"})
	require.NoError(t, err)

	X, err := sp.TransformMatrix([]Point{{0.25, "a"}, {0.75, "b"}})
	require.NoError(t, err)
	r, c := X.Dims()
	assert.Equal(t, 2, r)
	assert.Equal(t, 3, c)
	assert.InDelta(t, 0.25, X.At(0, 0), 1e-12)
	assert.InDelta(t, 1.0, X.At(1, 2), 1e-12)

	_, err = sp.TransformMatrix(nil)
	assert.True(t, opterr.IsDomain(err))
}

func TestTransformedBounds(t *testing.T) {
	sp, err := FromSpec([2]float64{0, 1}, []string{"a", "b"})
	require.NoError(t, err)

	bounds := sp.TransformedBounds()
	require.Len(t, bounds, 3)
	for _, b := range bounds {
		assert.Equal(t, [2]float64{0, 1}, b)
	}
}
