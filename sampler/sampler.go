// Package sampler provides initial point generators that spread samples
// evenly across the unit hypercube before a surrogate model has enough
// data. All generators produce coordinates in [0, 1); mapping them into a
// native search space is the caller's job (space.PointFromUnit).
package sampler

import (
	"math/rand"

	"github.com/seqopt/seqopt/opterr"
)

// Generator produces nSamples points in [0, 1)^nDims. Pseudo-random
// generators draw from rng so a seeded run is reproducible; deterministic
// low-discrepancy sequences ignore it.
type Generator interface {
	Generate(nDims, nSamples int, rng *rand.Rand) ([][]float64, error)
}

// Random draws each coordinate independently uniform in [0, 1).
type Random struct{}

// Generate implements Generator.
func (Random) Generate(nDims, nSamples int, rng *rand.Rand) ([][]float64, error) {
	if err := checkArgs(nDims, nSamples); err != nil {
		return nil, err
	}
	out := make([][]float64, nSamples)
	for i := range out {
		p := make([]float64, nDims)
		for j := range p {
			p[j] = rng.Float64()
		}
		out[i] = p
	}
	return out, nil
}

func checkArgs(nDims, nSamples int) error {
	if nDims < 1 {
		return opterr.Configuration("sampler: nDims must be at least 1, got %d", nDims)
	}
	if nSamples < 1 {
		return opterr.Configuration("sampler: nSamples must be at least 1, got %d", nSamples)
	}
	return nil
}
