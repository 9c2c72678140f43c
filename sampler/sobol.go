package sampler

import (
	"math/bits"
	"math/rand"

	"github.com/seqopt/seqopt/opterr"
)

// Direction-number parameters for the first dimensions of the Sobol
// sequence (primitive polynomial degree, coefficient bits, initial m
// values). Dimension 1 is the van der Corput sequence in base 2 and needs
// no entry. An array, so len is usable in constant expressions.
var sobolParams = [20]struct {
	s uint
	a uint32
	m []uint32
}{
	{1, 0, []uint32{1}},
	{2, 1, []uint32{1, 3}},
	{3, 1, []uint32{1, 3, 1}},
	{3, 2, []uint32{1, 1, 1}},
	{4, 1, []uint32{1, 1, 3, 3}},
	{4, 4, []uint32{1, 3, 5, 13}},
	{5, 2, []uint32{1, 1, 5, 5, 17}},
	{5, 4, []uint32{1, 1, 5, 5, 5}},
	{5, 7, []uint32{1, 1, 7, 11, 19}},
	{5, 11, []uint32{1, 1, 5, 1, 1}},
	{5, 13, []uint32{1, 1, 1, 3, 11}},
	{5, 14, []uint32{1, 3, 5, 5, 31}},
	{6, 1, []uint32{1, 3, 3, 9, 7, 49}},
	{6, 13, []uint32{1, 1, 1, 15, 21, 21}},
	{6, 16, []uint32{1, 3, 1, 13, 27, 49}},
	{6, 19, []uint32{1, 1, 1, 15, 7, 5}},
	{6, 22, []uint32{1, 3, 1, 15, 13, 25}},
	{6, 25, []uint32{1, 1, 5, 5, 19, 61}},
	{7, 1, []uint32{1, 3, 7, 11, 23, 15, 103}},
	{7, 4, []uint32{1, 3, 7, 13, 13, 15, 69}},
}

// MaxSobolDims is the highest dimensionality the built-in direction
// numbers support.
const MaxSobolDims = len(sobolParams) + 1

const sobolBits = 32

// Sobol generates the base-2 low-discrepancy sequence via Gray-code
// updates. It is fully deterministic given Skip; the rng argument is
// ignored.
type Sobol struct {
	// Skip discards the first Skip points of the sequence.
	Skip int
}

// Generate implements Generator.
func (s Sobol) Generate(nDims, nSamples int, _ *rand.Rand) ([][]float64, error) {
	if err := checkArgs(nDims, nSamples); err != nil {
		return nil, err
	}
	if nDims > MaxSobolDims {
		return nil, opterr.Configuration("sobol supports up to %d dimensions, got %d", MaxSobolDims, nDims)
	}

	v := directionNumbers(nDims)
	state := make([]uint32, nDims)
	out := make([][]float64, 0, nSamples)

	// Point index n is derived from index n-1 by XORing the direction
	// number selected by the lowest zero bit of n-1 (Gray code order).
	// Index 0 is the origin.
	for n := 0; n < s.Skip+nSamples; n++ {
		if n >= s.Skip {
			p := make([]float64, nDims)
			for d := 0; d < nDims; d++ {
				p[d] = float64(state[d]) / (1 << sobolBits)
			}
			out = append(out, p)
		}
		c := uint(bits.TrailingZeros32(^uint32(n)))
		for d := 0; d < nDims; d++ {
			state[d] ^= v[d][c]
		}
	}
	return out, nil
}

// directionNumbers builds the per-dimension direction integers, scaled so
// bit 31 corresponds to the first binary digit.
func directionNumbers(nDims int) [][]uint32 {
	v := make([][]uint32, nDims)
	for d := range v {
		v[d] = make([]uint32, sobolBits)
		if d == 0 {
			for k := 0; k < sobolBits; k++ {
				v[d][k] = 1 << (sobolBits - 1 - k)
			}
			continue
		}
		p := sobolParams[d-1]
		m := make([]uint32, sobolBits)
		copy(m, p.m)
		for k := int(p.s); k < sobolBits; k++ {
			m[k] = m[k-int(p.s)] ^ (m[k-int(p.s)] << p.s)
			for i := 1; i < int(p.s); i++ {
				if (p.a>>(p.s-1-uint(i)))&1 == 1 {
					m[k] ^= m[k-i] << uint(i)
				}
			}
		}
		for k := 0; k < sobolBits; k++ {
			v[d][k] = m[k] << (sobolBits - 1 - uint(k))
		}
	}
	return v
}
