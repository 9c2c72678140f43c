// Package benchmark provides standard synthetic objectives for exercising
// and testing the optimization loop. All functions are minimization
// targets; the doc comment of each states its minimum.
package benchmark

import (
	"math"
	"strconv"

	"github.com/seqopt/seqopt/opterr"
	"github.com/seqopt/seqopt/space"
)

// Sphere is the n-dimensional sum of squares. Minimum 0 at the origin.
func Sphere(x []float64) float64 {
	var s float64
	for _, v := range x {
		s += v * v
	}
	return s
}

// Parabola is the one-dimensional quadratic x². Minimum 0 at x = 0.
func Parabola(x float64) float64 {
	return x * x
}

// DoubleWell has a local minimum of 0 at x = 0 and the global minimum of
// -5 at x = 5.
func DoubleWell(x float64) float64 {
	if x < 0 {
		return x * x
	}
	return (x-5)*(x-5) - 5
}

// DampedSine is sin(5x) damped by (1 - tanh(x²)), a multimodal
// one-dimensional function with global minimum near -0.9 around x = -0.3.
func DampedSine(x float64) float64 {
	return math.Sin(5*x) * (1 - math.Tanh(x*x))
}

// DigitQuadratic is a quadratic over decimal digit strings, for purely
// categorical spaces. Minimum 0 at "0".
func DigitQuadratic(digit string) (float64, error) {
	v, err := strconv.ParseFloat(digit, 64)
	if err != nil {
		return 0, opterr.Domain("not a numeric category: %q", digit)
	}
	return v * v, nil
}

// Branin is the two-dimensional Branin-Hoo function on the usual domain
// x0 in [-5, 10], x1 in [0, 15]. Its three global minima share the value
// 0.397887.
func Branin(x []float64) float64 {
	const (
		a = 1.0
		b = 5.1 / (4 * math.Pi * math.Pi)
		c = 5.0 / math.Pi
		r = 6.0
		s = 10.0
		t = 1.0 / (8 * math.Pi)
	)
	u := x[1] - b*x[0]*x[0] + c*x[0] - r
	return a*u*u + s*(1-t)*math.Cos(x[0]) + s
}

var hartmann6Alpha = [4]float64{1.0, 1.2, 3.0, 3.2}

var hartmann6A = [4][6]float64{
	{10, 3, 17, 3.5, 1.7, 8},
	{0.05, 10, 17, 0.1, 8, 14},
	{3, 3.5, 1.7, 10, 17, 8},
	{17, 8, 0.05, 10, 0.1, 14},
}

var hartmann6P = [4][6]float64{
	{0.1312, 0.1696, 0.5569, 0.0124, 0.8283, 0.5886},
	{0.2329, 0.4135, 0.8307, 0.3736, 0.1004, 0.9991},
	{0.2348, 0.1451, 0.3522, 0.2883, 0.3047, 0.6650},
	{0.4047, 0.8828, 0.8732, 0.5743, 0.1091, 0.0381},
}

// Hartmann6 is the six-dimensional Hartmann function on [0, 1]^6.
// Global minimum -3.32237.
func Hartmann6(x []float64) float64 {
	var outer float64
	for i := 0; i < 4; i++ {
		var inner float64
		for j := 0; j < 6; j++ {
			d := x[j] - hartmann6P[i][j]
			inner += hartmann6A[i][j] * d * d
		}
		outer += hartmann6Alpha[i] * math.Exp(-inner)
	}
	return -outer
}

// Floats adapts a function of float64 coordinates to a point objective.
// Every dimension of the point must be a Real.
func Floats(f func([]float64) float64) func(space.Point) (float64, error) {
	return func(p space.Point) (float64, error) {
		x := make([]float64, len(p))
		for i, v := range p {
			fv, ok := v.(float64)
			if !ok {
				return 0, opterr.Domain("coordinate %d is %T, want float64", i, v)
			}
			x[i] = fv
		}
		return f(x), nil
	}
}

// Scalar adapts a one-dimensional function to a point objective.
func Scalar(f func(float64) float64) func(space.Point) (float64, error) {
	return func(p space.Point) (float64, error) {
		if len(p) != 1 {
			return 0, opterr.Domain("want a 1-dimensional point, got %d", len(p))
		}
		v, ok := p[0].(float64)
		if !ok {
			return 0, opterr.Domain("coordinate is %T, want float64", p[0])
		}
		return f(v), nil
	}
}
