package sampler

import (
	"math/rand"
)

// Halton generates the deterministic low-discrepancy sequence whose d-th
// axis is the van der Corput digit-reversal sequence in the d-th prime
// base. The rng argument is ignored.
type Halton struct {
	// Skip discards the first Skip points of the sequence.
	Skip int
}

// Generate implements Generator.
func (h Halton) Generate(nDims, nSamples int, _ *rand.Rand) ([][]float64, error) {
	if err := checkArgs(nDims, nSamples); err != nil {
		return nil, err
	}
	bases := firstPrimes(nDims)
	out := make([][]float64, nSamples)
	for i := range out {
		p := make([]float64, nDims)
		for d := 0; d < nDims; d++ {
			p[d] = vanDerCorput(h.Skip+i+1, bases[d])
		}
		out[i] = p
	}
	return out, nil
}

// Hammersley generates the Hammersley point set: the first nDims-1 axes
// are van der Corput sequences in coprime prime bases and the last axis
// is linear, i/nSamples. Deterministic; the rng argument is ignored.
type Hammersley struct{}

// Generate implements Generator.
func (Hammersley) Generate(nDims, nSamples int, _ *rand.Rand) ([][]float64, error) {
	if err := checkArgs(nDims, nSamples); err != nil {
		return nil, err
	}
	if nDims == 1 {
		out := make([][]float64, nSamples)
		for i := range out {
			out[i] = []float64{float64(i) / float64(nSamples)}
		}
		return out, nil
	}
	bases := firstPrimes(nDims - 1)
	out := make([][]float64, nSamples)
	for i := range out {
		p := make([]float64, nDims)
		for d := 0; d < nDims-1; d++ {
			p[d] = vanDerCorput(i+1, bases[d])
		}
		p[nDims-1] = float64(i) / float64(nSamples)
		out[i] = p
	}
	return out, nil
}

// vanDerCorput is the radical inverse of n in the given base: the base-b
// digits of n mirrored around the radix point.
func vanDerCorput(n, base int) float64 {
	var out float64
	denom := 1.0
	for n > 0 {
		denom *= float64(base)
		out += float64(n%base) / denom
		n /= base
	}
	return out
}

func firstPrimes(n int) []int {
	primes := make([]int, 0, n)
	for candidate := 2; len(primes) < n; candidate++ {
		isPrime := true
		for _, p := range primes {
			if p*p > candidate {
				break
			}
			if candidate%p == 0 {
				isPrime = false
				break
			}
		}
		if isPrime {
			primes = append(primes, candidate)
		}
	}
	return primes
}
