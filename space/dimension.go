package space

import (
	"math"
	"math/rand"

	"golang.org/x/exp/constraints"

	"github.com/seqopt/seqopt/opterr"
)

// Transformer selects how native values map to model coordinates.
type Transformer string

const (
	// Normalize maps numeric dimensions onto [0, 1] and categorical
	// dimensions onto one-hot vectors.
	Normalize Transformer = "normalize"
	// Identity keeps numeric values unchanged; categorical dimensions
	// fall back to label (index) encoding since transformed points are
	// numeric vectors.
	Identity Transformer = "identity"
)

// Prior selects the sampling distribution of a Real dimension.
type Prior string

const (
	Uniform    Prior = "uniform"
	LogUniform Prior = "log-uniform"
)

// Dimension is one axis of a search space. The concrete kinds are Real,
// Integer and Categorical; each owns its native-to-transformed mapping.
type Dimension interface {
	Name() string
	// Contains reports whether v is a legal native value.
	Contains(v any) bool
	// Sample draws one native value honoring the dimension's prior.
	Sample(rng *rand.Rand) any
	// Transform maps a native value to transformed coordinates.
	Transform(v any) ([]float64, error)
	// InverseTransform maps transformed coordinates back to a native value.
	InverseTransform(x []float64) (any, error)
	// TransformedSize is the number of transformed coordinates.
	TransformedSize() int
	// TransformedBounds are per-coordinate [low, high] bounds in
	// transformed space.
	TransformedBounds() [][2]float64

	setTransformer(t Transformer)
	setName(name string)
	clone() Dimension
}

func clamp[T constraints.Ordered](v, lo, hi T) T {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// toFloat coerces the numeric types a caller may plausibly hand us.
func toFloat(v any) (float64, bool) {
	switch x := v.(type) {
	case float64:
		return x, true
	case float32:
		return float64(x), true
	case int:
		return float64(x), true
	case int64:
		return float64(x), true
	case int32:
		return float64(x), true
	}
	return 0, false
}

// Real is a continuous dimension on [low, high].
type Real struct {
	name        string
	low, high   float64
	prior       Prior
	transformer Transformer
}

// NewReal creates a continuous dimension with a uniform prior.
func NewReal(name string, low, high float64) (*Real, error) {
	return NewRealPrior(name, low, high, Uniform)
}

// NewRealPrior creates a continuous dimension with the given prior.
// A log-uniform prior requires strictly positive bounds.
func NewRealPrior(name string, low, high float64, prior Prior) (*Real, error) {
	if !(low < high) {
		return nil, opterr.Domain("real dimension %q: low (%v) must be less than high (%v)", name, low, high)
	}
	if prior != Uniform && prior != LogUniform {
		return nil, opterr.Domain("real dimension %q: unknown prior %q", name, prior)
	}
	if prior == LogUniform && low <= 0 {
		return nil, opterr.Domain("real dimension %q: log-uniform prior requires low > 0, got %v", name, low)
	}
	return &Real{name: name, low: low, high: high, prior: prior, transformer: Normalize}, nil
}

func (d *Real) Name() string             { return d.name }
func (d *Real) Low() float64             { return d.low }
func (d *Real) High() float64            { return d.high }
func (d *Real) TransformedSize() int     { return 1 }
func (d *Real) setName(name string)      { d.name = name }
func (d *Real) setTransformer(t Transformer) { d.transformer = t }

func (d *Real) clone() Dimension {
	c := *d
	return &c
}

func (d *Real) Contains(v any) bool {
	f, ok := toFloat(v)
	return ok && f >= d.low && f <= d.high
}

func (d *Real) Sample(rng *rand.Rand) any {
	u := rng.Float64()
	if d.prior == LogUniform {
		lo, hi := math.Log(d.low), math.Log(d.high)
		return math.Exp(lo + u*(hi-lo))
	}
	return d.low + u*(d.high-d.low)
}

func (d *Real) Transform(v any) ([]float64, error) {
	f, ok := toFloat(v)
	if !ok || !d.Contains(f) {
		return nil, opterr.Domain("value %v outside real dimension %q [%v, %v]", v, d.name, d.low, d.high)
	}
	if d.transformer == Identity {
		return []float64{f}, nil
	}
	if d.prior == LogUniform {
		lo, hi := math.Log(d.low), math.Log(d.high)
		return []float64{(math.Log(f) - lo) / (hi - lo)}, nil
	}
	return []float64{(f - d.low) / (d.high - d.low)}, nil
}

func (d *Real) InverseTransform(x []float64) (any, error) {
	if len(x) != 1 {
		return nil, opterr.Domain("real dimension %q: expected 1 coordinate, got %d", d.name, len(x))
	}
	if d.transformer == Identity {
		return clamp(x[0], d.low, d.high), nil
	}
	u := clamp(x[0], 0, 1)
	if d.prior == LogUniform {
		lo, hi := math.Log(d.low), math.Log(d.high)
		return clamp(math.Exp(lo+u*(hi-lo)), d.low, d.high), nil
	}
	return d.low + u*(d.high-d.low), nil
}

func (d *Real) TransformedBounds() [][2]float64 {
	if d.transformer == Identity {
		return [][2]float64{{d.low, d.high}}
	}
	return [][2]float64{{0, 1}}
}

// Integer is a discrete dimension on {low, ..., high}. Single-valued
// dimensions (low == high) are allowed and always yield that value.
type Integer struct {
	name        string
	low, high   int
	transformer Transformer
}

// NewInteger creates a discrete dimension on the inclusive range [low, high].
func NewInteger(name string, low, high int) (*Integer, error) {
	if low > high {
		return nil, opterr.Domain("integer dimension %q: low (%d) must not exceed high (%d)", name, low, high)
	}
	return &Integer{name: name, low: low, high: high, transformer: Normalize}, nil
}

func (d *Integer) Name() string             { return d.name }
func (d *Integer) Low() int                 { return d.low }
func (d *Integer) High() int                { return d.high }
func (d *Integer) TransformedSize() int     { return 1 }
func (d *Integer) setName(name string)      { d.name = name }
func (d *Integer) setTransformer(t Transformer) { d.transformer = t }

func (d *Integer) clone() Dimension {
	c := *d
	return &c
}

func (d *Integer) intValue(v any) (int, bool) {
	switch x := v.(type) {
	case int:
		return x, true
	case int64:
		return int(x), true
	case int32:
		return int(x), true
	case float64:
		if x == math.Trunc(x) {
			return int(x), true
		}
	}
	return 0, false
}

func (d *Integer) Contains(v any) bool {
	i, ok := d.intValue(v)
	return ok && i >= d.low && i <= d.high
}

func (d *Integer) Sample(rng *rand.Rand) any {
	return d.low + rng.Intn(d.high-d.low+1)
}

func (d *Integer) Transform(v any) ([]float64, error) {
	i, ok := d.intValue(v)
	if !ok || i < d.low || i > d.high {
		return nil, opterr.Domain("value %v outside integer dimension %q [%d, %d]", v, d.name, d.low, d.high)
	}
	if d.transformer == Identity {
		return []float64{float64(i)}, nil
	}
	if d.low == d.high {
		return []float64{0}, nil
	}
	return []float64{float64(i-d.low) / float64(d.high-d.low)}, nil
}

func (d *Integer) InverseTransform(x []float64) (any, error) {
	if len(x) != 1 {
		return nil, opterr.Domain("integer dimension %q: expected 1 coordinate, got %d", d.name, len(x))
	}
	if d.transformer == Identity {
		return clamp(int(math.Round(x[0])), d.low, d.high), nil
	}
	u := clamp(x[0], 0, 1)
	return clamp(d.low+int(math.Round(u*float64(d.high-d.low))), d.low, d.high), nil
}

func (d *Integer) TransformedBounds() [][2]float64 {
	if d.transformer == Identity {
		return [][2]float64{{float64(d.low), float64(d.high)}}
	}
	return [][2]float64{{0, 1}}
}

// Categorical is an unordered dimension over an explicit set of values.
type Categorical struct {
	name        string
	categories  []any
	transformer Transformer
}

// NewCategorical creates a categorical dimension. The category set must be
// non-empty with unique members.
func NewCategorical(name string, categories ...any) (*Categorical, error) {
	if len(categories) == 0 {
		return nil, opterr.Domain("categorical dimension %q: empty category set", name)
	}
	for i := 0; i < len(categories); i++ {
		for j := i + 1; j < len(categories); j++ {
			if categories[i] == categories[j] {
				return nil, opterr.Domain("categorical dimension %q: duplicate category %v", name, categories[i])
			}
		}
	}
	cats := make([]any, len(categories))
	copy(cats, categories)
	return &Categorical{name: name, categories: cats, transformer: Normalize}, nil
}

func (d *Categorical) Name() string             { return d.name }
func (d *Categorical) Categories() []any        { return append([]any(nil), d.categories...) }
func (d *Categorical) setName(name string)      { d.name = name }
func (d *Categorical) setTransformer(t Transformer) { d.transformer = t }

func (d *Categorical) clone() Dimension {
	c := *d
	c.categories = append([]any(nil), d.categories...)
	return &c
}

// TransformedSize is the one-hot width under Normalize and 1 under Identity.
func (d *Categorical) TransformedSize() int {
	if d.transformer == Identity {
		return 1
	}
	return len(d.categories)
}

func (d *Categorical) index(v any) int {
	for i, c := range d.categories {
		if c == v {
			return i
		}
	}
	// JSON decoding turns ints into float64; accept integral floats for
	// integer-valued categories.
	if f, ok := v.(float64); ok && f == math.Trunc(f) {
		for i, c := range d.categories {
			if ci, ok := c.(int); ok && ci == int(f) {
				return i
			}
		}
	}
	return -1
}

func (d *Categorical) Contains(v any) bool { return d.index(v) >= 0 }

func (d *Categorical) Sample(rng *rand.Rand) any {
	return d.categories[rng.Intn(len(d.categories))]
}

func (d *Categorical) Transform(v any) ([]float64, error) {
	i := d.index(v)
	if i < 0 {
		return nil, opterr.Domain("value %v not in categorical dimension %q", v, d.name)
	}
	if d.transformer == Identity {
		return []float64{float64(i)}, nil
	}
	onehot := make([]float64, len(d.categories))
	onehot[i] = 1
	return onehot, nil
}

func (d *Categorical) InverseTransform(x []float64) (any, error) {
	if len(x) != d.TransformedSize() {
		return nil, opterr.Domain("categorical dimension %q: expected %d coordinates, got %d", d.name, d.TransformedSize(), len(x))
	}
	if d.transformer == Identity {
		i := clamp(int(math.Round(x[0])), 0, len(d.categories)-1)
		return d.categories[i], nil
	}
	best := 0
	for i, v := range x {
		if v > x[best] {
			best = i
		}
	}
	return d.categories[best], nil
}

func (d *Categorical) TransformedBounds() [][2]float64 {
	bounds := make([][2]float64, d.TransformedSize())
	for i := range bounds {
		if d.transformer == Identity {
			bounds[i] = [2]float64{0, float64(len(d.categories) - 1)}
		} else {
			bounds[i] = [2]float64{0, 1}
		}
	}
	return bounds
}
