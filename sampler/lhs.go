package sampler

import (
	"math"
	"math/rand"

	"github.com/montanaflynn/stats"
)

// LHSKind selects how a sample is placed inside its stratum.
type LHSKind string

const (
	// Classic places one uniform random sample per stratum.
	Classic LHSKind = "classic"
	// Centered places each sample at its stratum midpoint.
	Centered LHSKind = "centered"
)

// LHSCriterion selects an optional design-improvement objective applied
// after the initial Latin hypercube is generated.
type LHSCriterion string

const (
	// CriterionNone keeps the initial design.
	CriterionNone LHSCriterion = ""
	// CriterionMaximin maximizes the minimum pairwise distance.
	CriterionMaximin LHSCriterion = "maximin"
	// CriterionCorrelation minimizes the largest absolute inter-column
	// correlation.
	CriterionCorrelation LHSCriterion = "correlation"
	// CriterionRatio maximizes min(pairwise distance)/max(pairwise
	// distance).
	CriterionRatio LHSCriterion = "ratio"
)

// LHS is a Latin hypercube sampler: each axis is split into nSamples
// equal strata and every stratum holds exactly one sample, so no two
// samples collide in any axis projection.
type LHS struct {
	Kind      LHSKind
	Criterion LHSCriterion
	// Iterations bounds the criterion search. Zero means 1000.
	Iterations int
}

// Generate implements Generator.
func (l LHS) Generate(nDims, nSamples int, rng *rand.Rand) ([][]float64, error) {
	if err := checkArgs(nDims, nSamples); err != nil {
		return nil, err
	}
	kind := l.Kind
	if kind == "" {
		kind = Classic
	}

	out := l.hypercube(kind, nDims, nSamples, rng)
	if l.Criterion == CriterionNone {
		return out, nil
	}

	iters := l.Iterations
	if iters <= 0 {
		iters = 1000
	}
	bestScore := criterionScore(l.Criterion, out)
	for it := 0; it < iters; it++ {
		// Swap two samples' stratum positions in one random dimension
		// and keep the swap only if the criterion improves.
		d := rng.Intn(nDims)
		a, b := rng.Intn(nSamples), rng.Intn(nSamples)
		if a == b {
			continue
		}
		out[a][d], out[b][d] = out[b][d], out[a][d]
		if score := criterionScore(l.Criterion, out); score > bestScore {
			bestScore = score
		} else {
			out[a][d], out[b][d] = out[b][d], out[a][d]
		}
	}
	return out, nil
}

func (l LHS) hypercube(kind LHSKind, nDims, nSamples int, rng *rand.Rand) [][]float64 {
	out := make([][]float64, nSamples)
	for i := range out {
		out[i] = make([]float64, nDims)
	}
	for d := 0; d < nDims; d++ {
		perm := rng.Perm(nSamples)
		for i := 0; i < nSamples; i++ {
			if kind == Centered {
				out[i][d] = (float64(perm[i]) + 0.5) / float64(nSamples)
			} else {
				out[i][d] = (float64(perm[i]) + rng.Float64()) / float64(nSamples)
			}
		}
	}
	return out
}

// criterionScore maps every criterion onto "higher is better".
func criterionScore(c LHSCriterion, pts [][]float64) float64 {
	switch c {
	case CriterionMaximin:
		minD, _ := pairwiseDistanceRange(pts)
		return minD
	case CriterionCorrelation:
		return -maxAbsColumnCorrelation(pts)
	case CriterionRatio:
		minD, maxD := pairwiseDistanceRange(pts)
		if maxD == 0 {
			return 0
		}
		return minD / maxD
	default:
		return 0
	}
}

func pairwiseDistanceRange(pts [][]float64) (minD, maxD float64) {
	minD = math.Inf(1)
	for i := 0; i < len(pts); i++ {
		for j := i + 1; j < len(pts); j++ {
			var sum float64
			for k := range pts[i] {
				diff := pts[i][k] - pts[j][k]
				sum += diff * diff
			}
			d := math.Sqrt(sum)
			if d < minD {
				minD = d
			}
			if d > maxD {
				maxD = d
			}
		}
	}
	if math.IsInf(minD, 1) {
		minD = 0
	}
	return minD, maxD
}

func maxAbsColumnCorrelation(pts [][]float64) float64 {
	if len(pts) < 2 {
		return 0
	}
	nDims := len(pts[0])
	cols := make([][]float64, nDims)
	for d := 0; d < nDims; d++ {
		col := make([]float64, len(pts))
		for i := range pts {
			col[i] = pts[i][d]
		}
		cols[d] = col
	}
	var worst float64
	for i := 0; i < nDims; i++ {
		for j := i + 1; j < nDims; j++ {
			r, err := stats.Correlation(cols[i], cols[j])
			if err != nil {
				continue
			}
			if a := math.Abs(r); a > worst {
				worst = a
			}
		}
	}
	return worst
}
