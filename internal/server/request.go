package server

import (
	"fmt"
	"strings"

	"github.com/seqopt/seqopt"
	"github.com/seqopt/seqopt/benchmark"
	"github.com/seqopt/seqopt/sampler"
	"github.com/seqopt/seqopt/space"
)

// DimensionSpec is the wire form of one search-space dimension.
type DimensionSpec struct {
	Type       string        `json:"type"` // "real", "integer", "categorical"
	Name       string        `json:"name,omitempty"`
	Low        float64       `json:"low,omitempty"`
	High       float64       `json:"high,omitempty"`
	Prior      string        `json:"prior,omitempty"` // "uniform" (default), "log-uniform"
	Categories []interface{} `json:"categories,omitempty"`
}

// JobRequest is the submission payload for an optimization job. The
// objective names one of the built-in benchmark functions.
type JobRequest struct {
	Objective             string          `json:"objective"`
	Space                 []DimensionSpec `json:"space"`
	NCalls                int             `json:"n_calls,omitempty"`
	NInitialPoints        int             `json:"n_initial_points,omitempty"`
	InitialPointGenerator string          `json:"initial_point_generator,omitempty"`
	AcqFunc               string          `json:"acq_func,omitempty"`
	AcqOptimizer          string          `json:"acq_optimizer,omitempty"`
	NJobs                 int             `json:"n_jobs,omitempty"`
	RandomSeed            int64           `json:"random_seed,omitempty"`
	ModelQueueSize        int             `json:"model_queue_size,omitempty"`
}

func buildSpace(specs []DimensionSpec) (*space.Space, error) {
	if len(specs) == 0 {
		return nil, fmt.Errorf("space is required")
	}
	dims := make([]space.Dimension, 0, len(specs))
	for i, spec := range specs {
		switch strings.ToLower(spec.Type) {
		case "real":
			prior := space.Uniform
			switch spec.Prior {
			case "", "uniform":
			case "log-uniform":
				prior = space.LogUniform
			default:
				return nil, fmt.Errorf("dimension %d: unknown prior %q", i, spec.Prior)
			}
			d, err := space.NewRealPrior(spec.Name, spec.Low, spec.High, prior)
			if err != nil {
				return nil, err
			}
			dims = append(dims, d)
		case "integer":
			d, err := space.NewInteger(spec.Name, int(spec.Low), int(spec.High))
			if err != nil {
				return nil, err
			}
			dims = append(dims, d)
		case "categorical":
			d, err := space.NewCategorical(spec.Name, spec.Categories...)
			if err != nil {
				return nil, err
			}
			dims = append(dims, d)
		default:
			return nil, fmt.Errorf("dimension %d: unknown type %q", i, spec.Type)
		}
	}
	return space.New(dims...)
}

func objectiveByName(name string) (seqopt.Objective, error) {
	switch strings.ToLower(name) {
	case "sphere":
		return benchmark.Floats(benchmark.Sphere), nil
	case "parabola":
		return benchmark.Scalar(benchmark.Parabola), nil
	case "double_well":
		return benchmark.Scalar(benchmark.DoubleWell), nil
	case "damped_sine":
		return benchmark.Scalar(benchmark.DampedSine), nil
	case "branin":
		return benchmark.Floats(benchmark.Branin), nil
	case "hartmann6":
		return benchmark.Floats(benchmark.Hartmann6), nil
	case "":
		return nil, fmt.Errorf("objective is required")
	default:
		return nil, fmt.Errorf("unknown objective %q", name)
	}
}

func buildGenerator(name string) (sampler.Generator, error) {
	switch strings.ToLower(name) {
	case "", "random":
		return sampler.Random{}, nil
	case "sobol":
		return sampler.Sobol{}, nil
	case "halton":
		return sampler.Halton{}, nil
	case "hammersley":
		return sampler.Hammersley{}, nil
	case "lhs":
		return sampler.LHS{}, nil
	case "lhs_centered":
		return sampler.LHS{Kind: sampler.Centered}, nil
	case "lhs_maximin":
		return sampler.LHS{Criterion: sampler.CriterionMaximin}, nil
	default:
		return nil, fmt.Errorf("unknown initial point generator %q", name)
	}
}

func (s *Server) buildSettings(req JobRequest) (seqopt.Settings, error) {
	gen, err := buildGenerator(req.InitialPointGenerator)
	if err != nil {
		return seqopt.Settings{}, err
	}

	nCalls := req.NCalls
	if nCalls == 0 {
		nCalls = s.cfg.Optimization.DefaultNCalls
	}
	nInitial := req.NInitialPoints
	if nInitial == 0 {
		nInitial = s.cfg.Optimization.DefaultNInitialPoints
	}

	return seqopt.Settings{
		NCalls:                nCalls,
		NInitialPoints:        nInitial,
		InitialPointGenerator: gen,
		AcqFunc:               seqopt.AcquisitionFunc(req.AcqFunc),
		AcqOptimizer:          seqopt.AcquisitionOptimizer(req.AcqOptimizer),
		NJobs:                 req.NJobs,
		RandomSeed:            req.RandomSeed,
		ModelQueueSize:        req.ModelQueueSize,
	}, nil
}
