package seqopt

import (
	"context"
	"math"
	"math/rand"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/floats"

	"github.com/seqopt/seqopt/acquisition"
	"github.com/seqopt/seqopt/opterr"
	"github.com/seqopt/seqopt/space"
	"github.com/seqopt/seqopt/surrogate"
)

// State is the phase of the ask/tell loop.
type State int

const (
	// StateInitializing means proposals still come from the initial
	// design.
	StateInitializing State = iota
	// StateModeling means proposals come from maximizing the acquisition
	// under a fitted surrogate.
	StateModeling
	// StateDone means the evaluation budget is exhausted.
	StateDone
)

// String implements fmt.Stringer.
func (s State) String() string {
	switch s {
	case StateInitializing:
		return "initializing"
	case StateModeling:
		return "modeling"
	case StateDone:
		return "done"
	default:
		return "unknown"
	}
}

// Objective evaluates one point. Run treats an error as fatal and returns
// it together with the partial result.
type Objective func(p space.Point) (float64, error)

// Optimizer drives sequential model-based minimization over a space via
// an ask/tell interface. It is not safe for concurrent use; Run
// parallelizes objective evaluations internally.
type Optimizer struct {
	space    *space.Space
	settings Settings
	rng      *rand.Rand
	acq      acquisition.Function
	maxer    maximizer
	base     surrogate.Model
	logger   *zap.Logger

	state       State
	initial     []space.Point
	nextInitial int

	points    []space.Point
	values    []float64
	models    []surrogate.Model
	bestPoint space.Point
	bestValue float64
}

// NewOptimizer validates the settings, generates the initial design and
// returns an optimizer ready for Ask/Tell or Run.
func NewOptimizer(sp *space.Space, settings Settings) (*Optimizer, error) {
	if sp == nil {
		return nil, opterr.Configuration("nil space")
	}
	settings = settings.withDefaults()
	if err := settings.validate(); err != nil {
		return nil, err
	}

	seed := settings.RandomSeed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	rng := rand.New(rand.NewSource(seed))

	base := settings.BaseEstimator
	if base == nil {
		base = surrogate.CookEstimator(sp, settings.Noise, settings.EstimateNoise)
	}

	var acq acquisition.Function
	switch settings.AcqFunc {
	case EI:
		acq = acquisition.ExpectedImprovement{Xi: settings.Xi}
	case LCB:
		acq = acquisition.LowerConfidenceBound{Kappa: settings.Kappa}
	case PI:
		acq = acquisition.ProbabilityOfImprovement{Xi: settings.Xi}
	}

	sampling := &samplingMaximizer{nCandidates: settings.NCandidates}
	var maxer maximizer
	switch settings.AcqOptimizer {
	case AcqOptimizerSampling:
		maxer = sampling
	case AcqOptimizerLBFGS:
		maxer = &gradientMaximizer{nRestarts: settings.NRestarts, sampling: sampling, logger: settings.Logger}
	case AcqOptimizerAuto:
		if sp.AllCategorical() {
			maxer = sampling
		} else {
			maxer = &gradientMaximizer{nRestarts: settings.NRestarts, sampling: sampling, logger: settings.Logger}
		}
	}

	var initial []space.Point
	if settings.NInitialPoints > 0 {
		units, err := settings.InitialPointGenerator.Generate(sp.NumDims(), settings.NInitialPoints, rng)
		if err != nil {
			return nil, err
		}
		initial = make([]space.Point, len(units))
		for i, u := range units {
			p, err := sp.PointFromUnit(u)
			if err != nil {
				return nil, err
			}
			initial[i] = p
		}
	}

	return &Optimizer{
		space:     sp,
		settings:  settings,
		rng:       rng,
		acq:       acq,
		maxer:     maxer,
		base:      base,
		logger:    settings.Logger,
		state:     StateInitializing,
		initial:   initial,
		bestValue: math.Inf(1),
	}, nil
}

// State returns the current loop phase.
func (o *Optimizer) State() State { return o.state }

// Space returns the search space.
func (o *Optimizer) Space() *space.Space { return o.space }

// Ask proposes the next point to evaluate: the next initial-design point
// while the design is pending, the acquisition maximizer afterwards.
// Without a fitted model it falls back to a random sample.
func (o *Optimizer) Ask() (space.Point, error) {
	if o.nextInitial < len(o.initial) && len(o.points) < o.settings.NInitialPoints {
		p := o.initial[o.nextInitial]
		o.nextInitial++
		return p.Clone(), nil
	}
	model := o.latestModel()
	if model == nil {
		return o.space.Sample(1, o.rng)[0], nil
	}
	return o.maximize(model, o.bestValue, o.bestPoint)
}

// AskBatch proposes n points for parallel evaluation. The first proposal
// is exactly what Ask would return; each further one is diversified by
// refitting on the pending proposals with their predictive means standing
// in for the unknown objective values.
func (o *Optimizer) AskBatch(n int) ([]space.Point, error) {
	if n < 1 {
		return nil, opterr.Configuration("batch size must be at least 1, got %d", n)
	}
	if n == 1 {
		p, err := o.Ask()
		if err != nil {
			return nil, err
		}
		return []space.Point{p}, nil
	}

	proposals := make([]space.Point, 0, n)
	scratchPoints := append([]space.Point(nil), o.points...)
	scratchValues := append([]float64(nil), o.values...)
	scratchModel := o.latestModel()
	scratchBest, scratchBestPoint := o.bestValue, o.bestPoint

	for i := 0; i < n; i++ {
		var p space.Point
		switch {
		case o.nextInitial < len(o.initial) && len(scratchPoints) < o.settings.NInitialPoints:
			p = o.initial[o.nextInitial].Clone()
			o.nextInitial++
		case scratchModel == nil:
			p = o.space.Sample(1, o.rng)[0]
		default:
			var err error
			p, err = o.maximize(scratchModel, scratchBest, scratchBestPoint)
			if err != nil {
				return nil, err
			}
		}
		proposals = append(proposals, p)
		if i == n-1 {
			break
		}

		lie := o.lieFor(p, scratchModel, scratchValues)
		scratchPoints = append(scratchPoints, p)
		scratchValues = append(scratchValues, lie)
		if lie < scratchBest {
			scratchBest = lie
			scratchBestPoint = p
		}
		if len(scratchPoints) >= o.settings.NInitialPoints {
			m, err := o.fit(scratchPoints, scratchValues)
			if err != nil {
				return nil, err
			}
			scratchModel = m
		}
	}
	return proposals, nil
}

// lieFor is the stand-in objective value for a pending proposal: the
// model's predictive mean where a model exists, otherwise the best value
// seen so far.
func (o *Optimizer) lieFor(p space.Point, model surrogate.Model, values []float64) float64 {
	if model != nil {
		if X, err := o.space.TransformMatrix([]space.Point{p}); err == nil {
			if mean, _, err := model.Predict(X); err == nil {
				return mean[0]
			}
		}
	}
	if len(values) == 0 {
		return 0
	}
	return floats.Min(values)
}

// Tell records one observation. Once the history covers the initial
// design a fresh surrogate snapshot is fitted and pushed onto the model
// queue; a fit failure is returned to the caller.
func (o *Optimizer) Tell(p space.Point, y float64) error {
	const op = "seqopt.Optimizer.Tell"

	if _, err := o.space.Transform(p); err != nil {
		return err
	}
	if math.IsNaN(y) || math.IsInf(y, 0) {
		return opterr.Domain("non-finite objective value %v", y).WithOp(op)
	}

	o.points = append(o.points, p.Clone())
	o.values = append(o.values, y)
	if y < o.bestValue {
		o.bestValue = y
		o.bestPoint = p.Clone()
	}

	if len(o.points) < o.settings.NInitialPoints {
		return nil
	}
	model, err := o.fit(o.points, o.values)
	if err != nil {
		return err
	}
	o.models = append(o.models, model)
	if q := o.settings.ModelQueueSize; q > 0 && len(o.models) > q {
		o.models = o.models[len(o.models)-q:]
	}
	o.state = StateModeling
	return nil
}

// TellMany records a batch of observations, typically to warm-start a run
// from prior evaluations.
func (o *Optimizer) TellMany(points []space.Point, values []float64) error {
	if len(points) != len(values) {
		return opterr.Domain("got %d points but %d values", len(points), len(values))
	}
	for i, p := range points {
		if err := o.Tell(p, values[i]); err != nil {
			return err
		}
	}
	return nil
}

func (o *Optimizer) fit(points []space.Point, values []float64) (surrogate.Model, error) {
	X, err := o.space.TransformMatrix(points)
	if err != nil {
		return nil, err
	}
	model := o.base.Clone()
	if err := model.Fit(X, values); err != nil {
		return nil, err
	}
	return model, nil
}

func (o *Optimizer) latestModel() surrogate.Model {
	if len(o.models) == 0 {
		return nil
	}
	return o.models[len(o.models)-1]
}

func (o *Optimizer) maximize(model surrogate.Model, best float64, bestPoint space.Point) (space.Point, error) {
	return o.maxer.Maximize(o.acq, model, o.space, best, bestPoint, o.rng)
}

// Run drives the full loop until NCalls observations have been recorded,
// evaluating up to NJobs proposals concurrently per round. On objective
// error or context cancellation it returns the partial result together
// with the error.
func (o *Optimizer) Run(ctx context.Context, objective Objective) (*Result, error) {
	if objective == nil {
		return o.Result(), opterr.Configuration("nil objective")
	}
	if ctx == nil {
		ctx = context.Background()
	}

	for len(o.values) < o.settings.NCalls {
		select {
		case <-ctx.Done():
			return o.Result(), ctx.Err()
		default:
		}

		batch := 1
		if o.settings.NJobs > 1 {
			if remaining := o.settings.NCalls - len(o.values); remaining < o.settings.NJobs {
				batch = remaining
			} else {
				batch = o.settings.NJobs
			}
		}

		proposals, err := o.AskBatch(batch)
		if err != nil {
			return o.Result(), err
		}

		ys := make([]float64, len(proposals))
		if len(proposals) == 1 {
			y, err := objective(proposals[0])
			if err != nil {
				return o.Result(), err
			}
			ys[0] = y
		} else {
			g, gctx := errgroup.WithContext(ctx)
			for i, p := range proposals {
				i, p := i, p
				g.Go(func() error {
					select {
					case <-gctx.Done():
						return gctx.Err()
					default:
					}
					y, err := objective(p)
					if err != nil {
						return err
					}
					ys[i] = y
					return nil
				})
			}
			if err := g.Wait(); err != nil {
				return o.Result(), err
			}
		}

		for i, p := range proposals {
			if err := o.Tell(p, ys[i]); err != nil {
				return o.Result(), err
			}
		}
		o.logger.Debug("optimization round complete",
			zap.Int("evaluated", len(o.values)),
			zap.Int("budget", o.settings.NCalls),
			zap.Float64("best", o.bestValue),
		)
	}
	o.state = StateDone
	return o.Result(), nil
}

// Result snapshots the current run state. It is safe to call at any
// point, including after an aborted Run.
func (o *Optimizer) Result() *Result {
	points := make([]space.Point, len(o.points))
	for i, p := range o.points {
		points[i] = p.Clone()
	}
	var bestPoint space.Point
	if o.bestPoint != nil {
		bestPoint = o.bestPoint.Clone()
	}
	return &Result{
		BestPoint: bestPoint,
		BestValue: o.bestValue,
		Points:    points,
		Values:    append([]float64(nil), o.values...),
		Models:    append([]surrogate.Model(nil), o.models...),
		Space:     o.space,
	}
}
