// Package space encodes mixed continuous/integer/categorical search
// domains and their mapping into the numeric coordinates used for model
// fitting. A Space is constructed once and is immutable afterwards except
// for its transformer mode.
package space

import (
	"fmt"
	"math"
	"math/rand"

	"gonum.org/v1/gonum/mat"

	"github.com/seqopt/seqopt/opterr"
)

// Point is one native value per dimension, in dimension order.
type Point []any

// Clone returns a copy of the point.
func (p Point) Clone() Point {
	return append(Point(nil), p...)
}

// Space is the joint domain formed by an ordered sequence of dimensions.
// Dimension order is stable and defines the coordinate order used for
// points, transformed points and results.
type Space struct {
	dims []Dimension
}

// New creates a Space from explicit dimensions. Unnamed dimensions are
// assigned positional names x0, x1, ... The space works on its own
// copies, so the caller's dimensions are never modified and may be
// reused across spaces.
func New(dims ...Dimension) (*Space, error) {
	if len(dims) == 0 {
		return nil, opterr.Domain("space requires at least one dimension")
	}
	owned := make([]Dimension, len(dims))
	seen := make(map[string]bool, len(dims))
	for i, d := range dims {
		if d == nil {
			return nil, opterr.Domain("dimension %d is nil", i)
		}
		d = d.clone()
		if d.Name() == "" {
			d.setName(fmt.Sprintf("x%d", i))
		}
		if seen[d.Name()] {
			return nil, opterr.Domain("duplicate dimension name %q", d.Name())
		}
		seen[d.Name()] = true
		owned[i] = d
	}
	return &Space{dims: owned}, nil
}

// FromSpec builds a Space from convenience dimension specifications.
// Accepted shapes per entry:
//
//	Dimension           used as-is
//	[2]float64, []float64{lo, hi}   Real(lo, hi)
//	[2]int, []int{lo, hi}           Integer(lo, hi)
//	[]string{...}                   Categorical over the strings
//	[]any{...}                      Categorical over the values
//
// Anything else is a domain error; there is no best-effort coercion.
func FromSpec(specs ...any) (*Space, error) {
	dims := make([]Dimension, 0, len(specs))
	for i, spec := range specs {
		d, err := dimensionFromSpec(i, spec)
		if err != nil {
			return nil, err
		}
		dims = append(dims, d)
	}
	return New(dims...)
}

func dimensionFromSpec(i int, spec any) (Dimension, error) {
	switch s := spec.(type) {
	case Dimension:
		return s, nil
	case [2]float64:
		return NewReal("", s[0], s[1])
	case []float64:
		if len(s) != 2 {
			return nil, opterr.Domain("dimension %d: float bounds need exactly 2 values, got %d", i, len(s))
		}
		return NewReal("", s[0], s[1])
	case [2]int:
		return NewInteger("", s[0], s[1])
	case []int:
		if len(s) != 2 {
			return nil, opterr.Domain("dimension %d: integer bounds need exactly 2 values, got %d", i, len(s))
		}
		return NewInteger("", s[0], s[1])
	case []string:
		cats := make([]any, len(s))
		for j, v := range s {
			cats[j] = v
		}
		return NewCategorical("", cats...)
	case []any:
		return NewCategorical("", s...)
	default:
		return nil, opterr.Domain("dimension %d: unsupported specification %T", i, spec)
	}
}

// Dimensions returns the space's dimensions in order.
func (s *Space) Dimensions() []Dimension {
	return append([]Dimension(nil), s.dims...)
}

// NumDims is the number of native dimensions.
func (s *Space) NumDims() int { return len(s.dims) }

// TransformedDim is the width of a transformed point.
func (s *Space) TransformedDim() int {
	n := 0
	for _, d := range s.dims {
		n += d.TransformedSize()
	}
	return n
}

// Names returns the dimension names in order.
func (s *Space) Names() []string {
	names := make([]string, len(s.dims))
	for i, d := range s.dims {
		names[i] = d.Name()
	}
	return names
}

// SetTransformer switches the transform mode for the whole space.
// It affects Transform and InverseTransform only; native-typed points
// recorded earlier keep their values.
func (s *Space) SetTransformer(t Transformer) error {
	if t != Normalize && t != Identity {
		return opterr.Configuration("unknown transformer %q", t)
	}
	for _, d := range s.dims {
		d.setTransformer(t)
	}
	return nil
}

// HasContinuous reports whether at least one dimension is Real or Integer.
func (s *Space) HasContinuous() bool {
	for _, d := range s.dims {
		if _, ok := d.(*Categorical); !ok {
			return true
		}
	}
	return false
}

// AllCategorical reports whether every dimension is categorical.
func (s *Space) AllCategorical() bool { return !s.HasContinuous() }

// Contains reports whether every value of p is legal for its dimension.
func (s *Space) Contains(p Point) bool {
	if len(p) != len(s.dims) {
		return false
	}
	for i, d := range s.dims {
		if !d.Contains(p[i]) {
			return false
		}
	}
	return true
}

// Transform maps a native point to its transformed vector. It fails with
// a domain error if any value is outside its dimension.
func (s *Space) Transform(p Point) ([]float64, error) {
	if len(p) != len(s.dims) {
		return nil, opterr.Domain("point has %d values, space has %d dimensions", len(p), len(s.dims))
	}
	out := make([]float64, 0, s.TransformedDim())
	for i, d := range s.dims {
		coords, err := d.Transform(p[i])
		if err != nil {
			return nil, err
		}
		out = append(out, coords...)
	}
	return out, nil
}

// InverseTransform maps a transformed vector back to a native point.
func (s *Space) InverseTransform(x []float64) (Point, error) {
	if len(x) != s.TransformedDim() {
		return nil, opterr.Domain("transformed point has %d coordinates, space expects %d", len(x), s.TransformedDim())
	}
	p := make(Point, 0, len(s.dims))
	off := 0
	for _, d := range s.dims {
		w := d.TransformedSize()
		v, err := d.InverseTransform(x[off : off+w])
		if err != nil {
			return nil, err
		}
		p = append(p, v)
		off += w
	}
	return p, nil
}

// TransformMatrix stacks the transformed points into a row-major matrix
// suitable for model fitting.
func (s *Space) TransformMatrix(points []Point) (*mat.Dense, error) {
	if len(points) == 0 {
		return nil, opterr.Domain("no points to transform")
	}
	X := mat.NewDense(len(points), s.TransformedDim(), nil)
	for i, p := range points {
		row, err := s.Transform(p)
		if err != nil {
			return nil, err
		}
		X.SetRow(i, row)
	}
	return X, nil
}

// TransformedBounds are per-coordinate [low, high] bounds of the
// transformed space, concatenated in dimension order.
func (s *Space) TransformedBounds() [][2]float64 {
	bounds := make([][2]float64, 0, s.TransformedDim())
	for _, d := range s.dims {
		bounds = append(bounds, d.TransformedBounds()...)
	}
	return bounds
}

// Sample draws n independent points, each dimension honoring its prior.
func (s *Space) Sample(n int, rng *rand.Rand) []Point {
	points := make([]Point, n)
	for i := range points {
		p := make(Point, len(s.dims))
		for j, d := range s.dims {
			p[j] = d.Sample(rng)
		}
		points[i] = p
	}
	return points
}

// PointFromUnit maps one unit-hypercube coordinate per dimension to a
// native point. Initial-design samplers produce unit coordinates; this is
// the bridge into native space: numeric dimensions scale their range,
// categorical dimensions bin the coordinate into a category.
func (s *Space) PointFromUnit(u []float64) (Point, error) {
	if len(u) != len(s.dims) {
		return nil, opterr.Domain("unit point has %d coordinates, space has %d dimensions", len(u), len(s.dims))
	}
	p := make(Point, len(s.dims))
	for i, d := range s.dims {
		v := clamp(u[i], 0, 1)
		switch dim := d.(type) {
		case *Real:
			if dim.prior == LogUniform {
				lo, hi := math.Log(dim.low), math.Log(dim.high)
				p[i] = clamp(math.Exp(lo+v*(hi-lo)), dim.low, dim.high)
			} else {
				p[i] = dim.low + v*(dim.high-dim.low)
			}
		case *Integer:
			p[i] = dim.low + int(v*float64(dim.high-dim.low+1))
			if p[i].(int) > dim.high {
				p[i] = dim.high
			}
		case *Categorical:
			k := int(v * float64(len(dim.categories)))
			if k >= len(dim.categories) {
				k = len(dim.categories) - 1
			}
			p[i] = dim.categories[k]
		default:
			return nil, opterr.Domain("dimension %d: unsupported dimension type %T", i, d)
		}
	}
	return p, nil
}
