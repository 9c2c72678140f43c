package seqopt

import (
	"go.uber.org/zap"

	"github.com/seqopt/seqopt/opterr"
	"github.com/seqopt/seqopt/sampler"
	"github.com/seqopt/seqopt/surrogate"
)

// AcquisitionFunc names the candidate-scoring strategy.
type AcquisitionFunc string

const (
	// EI scores by expected improvement over the current best.
	EI AcquisitionFunc = "EI"
	// LCB scores by the negated lower confidence bound mean - kappa*std.
	LCB AcquisitionFunc = "LCB"
	// PI scores by probability of improvement over the current best.
	PI AcquisitionFunc = "PI"
)

// AcquisitionOptimizer names the strategy that maximizes the acquisition
// surface each round.
type AcquisitionOptimizer string

const (
	// AcqOptimizerAuto picks LBFGS when the space has continuous
	// dimensions and sampling otherwise.
	AcqOptimizerAuto AcquisitionOptimizer = "auto"
	// AcqOptimizerSampling scores a random candidate pool and takes the
	// arg-max.
	AcqOptimizerSampling AcquisitionOptimizer = "sampling"
	// AcqOptimizerLBFGS runs multi-restart gradient descent on the
	// negated acquisition in transformed space.
	AcqOptimizerLBFGS AcquisitionOptimizer = "lbfgs"
)

// Settings configures an optimization run. The zero value of every field
// is replaced by a sensible default; see the field comments.
type Settings struct {
	// NCalls is the total evaluation budget. Default 100.
	NCalls int

	// NInitialPoints is the number of initial-design evaluations before
	// the surrogate takes over. Default 10.
	NInitialPoints int

	// InitialPointGenerator produces the initial design in unit-cube
	// coordinates. Default sampler.Random.
	InitialPointGenerator sampler.Generator

	// AcqFunc selects the acquisition function. Default EI.
	AcqFunc AcquisitionFunc

	// AcqOptimizer selects the acquisition maximization strategy.
	// Default AcqOptimizerAuto.
	AcqOptimizer AcquisitionOptimizer

	// Xi is the improvement margin for EI and PI. Default 0.01.
	Xi float64

	// Kappa is the exploration weight for LCB. Default 1.96.
	Kappa float64

	// RandomSeed seeds the run's single random generator. Zero means
	// seeded from the clock.
	RandomSeed int64

	// Noise is the fixed observation-noise variance for the default
	// surrogate. Default 1e-10.
	Noise float64

	// EstimateNoise selects noise estimation instead of the fixed level.
	EstimateNoise bool

	// NJobs is the number of proposals evaluated in parallel per round.
	// Proposals are diversified with a constant liar before dispatch, so
	// parallelism affects scheduling only. Default 1.
	NJobs int

	// ModelQueueSize bounds how many surrogate snapshots the result
	// retains, oldest evicted first. Zero retains all.
	ModelQueueSize int

	// BaseEstimator, when set, is used instead of the cooked default
	// model. It is cloned and refit each round; its configuration (noise
	// handling included) is never replaced.
	BaseEstimator surrogate.Model

	// NCandidates is the pool size for the sampling maximizer.
	// Default 1000.
	NCandidates int

	// NRestarts is the number of LBFGS restarts. Default 5.
	NRestarts int

	// Logger receives fit and fallback diagnostics. Default no-op.
	Logger *zap.Logger
}

func (s Settings) withDefaults() Settings {
	if s.NCalls == 0 {
		s.NCalls = 100
	}
	if s.NInitialPoints == 0 {
		s.NInitialPoints = 10
	}
	if s.InitialPointGenerator == nil {
		s.InitialPointGenerator = sampler.Random{}
	}
	if s.AcqFunc == "" {
		s.AcqFunc = EI
	}
	if s.AcqOptimizer == "" {
		s.AcqOptimizer = AcqOptimizerAuto
	}
	if s.Xi == 0 {
		s.Xi = 0.01
	}
	if s.Kappa == 0 {
		s.Kappa = 1.96
	}
	if s.Noise == 0 {
		s.Noise = 1e-10
	}
	if s.NJobs == 0 {
		s.NJobs = 1
	}
	if s.NCandidates == 0 {
		s.NCandidates = 1000
	}
	if s.NRestarts == 0 {
		s.NRestarts = 5
	}
	if s.Logger == nil {
		s.Logger = zap.NewNop()
	}
	return s
}

func (s Settings) validate() error {
	if s.NCalls < 1 {
		return opterr.Configuration("NCalls must be at least 1, got %d", s.NCalls)
	}
	if s.NInitialPoints < 0 {
		return opterr.Configuration("NInitialPoints must not be negative, got %d", s.NInitialPoints)
	}
	if s.NCalls < s.NInitialPoints {
		return opterr.Configuration("NCalls (%d) must cover the initial design (%d points)", s.NCalls, s.NInitialPoints)
	}
	switch s.AcqFunc {
	case EI, LCB, PI:
	default:
		return opterr.Configuration("unknown acquisition function %q", s.AcqFunc)
	}
	switch s.AcqOptimizer {
	case AcqOptimizerAuto, AcqOptimizerSampling, AcqOptimizerLBFGS:
	default:
		return opterr.Configuration("unknown acquisition optimizer %q", s.AcqOptimizer)
	}
	if s.NJobs < 1 {
		return opterr.Configuration("NJobs must be at least 1, got %d", s.NJobs)
	}
	if s.ModelQueueSize < 0 {
		return opterr.Configuration("ModelQueueSize must not be negative, got %d", s.ModelQueueSize)
	}
	return nil
}
