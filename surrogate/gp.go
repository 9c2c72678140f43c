package surrogate

import (
	"math"

	"go.uber.org/zap"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"github.com/seqopt/seqopt/opterr"
)

// noiseGrid holds the candidate observation-noise levels tried when the
// noise is estimated rather than fixed.
var noiseGrid = []float64{1e-10, 1e-8, 1e-6, 1e-4, 1e-3, 1e-2, 1e-1}

// GaussianProcess is a GP regression model with a configurable kernel and
// observation-noise handling. The target is mean-centered internally; the
// prior mean is the sample mean of the observed values.
type GaussianProcess struct {
	kernel        Kernel
	noise         float64
	estimateNoise bool

	// Fitted state.
	fittedNoise float64
	X           *mat.Dense
	y           *mat.VecDense
	yMean       float64
	chol        *mat.Cholesky
	alpha       *mat.VecDense

	pool   *matrixPool
	logger *zap.Logger
}

// NewGaussianProcess creates a GP with a fixed observation-noise variance.
func NewGaussianProcess(kernel Kernel, noise float64) *GaussianProcess {
	return &GaussianProcess{
		kernel:      kernel,
		noise:       noise,
		fittedNoise: noise,
		pool:        newMatrixPool(),
		logger:      zap.NewNop(),
	}
}

// NewGaussianProcessEstimatedNoise creates a GP that selects its noise
// level by log-marginal-likelihood over a fixed grid at fit time.
func NewGaussianProcessEstimatedNoise(kernel Kernel) *GaussianProcess {
	gp := NewGaussianProcess(kernel, noiseGrid[0])
	gp.estimateNoise = true
	return gp
}

// SetLogger installs a structured logger for fit diagnostics.
func (gp *GaussianProcess) SetLogger(logger *zap.Logger) {
	if logger != nil {
		gp.logger = logger
	}
}

// Kernel returns the model's covariance function.
func (gp *GaussianProcess) Kernel() Kernel { return gp.kernel }

// Noise returns the observation-noise variance in effect: the configured
// value, or the estimated one after a fit in estimation mode.
func (gp *GaussianProcess) Noise() float64 { return gp.fittedNoise }

// Clone returns an unfitted copy with the same kernel and noise
// configuration.
func (gp *GaussianProcess) Clone() Model {
	c := NewGaussianProcess(cloneKernel(gp.kernel), gp.noise)
	c.estimateNoise = gp.estimateNoise
	c.logger = gp.logger
	return c
}

// Fit trains the GP on the observations. It fails with a fit error when
// there is nothing to train on or when the design is degenerate (two or
// more observations, all at the same point).
func (gp *GaussianProcess) Fit(X *mat.Dense, y []float64) error {
	const op = "surrogate.GaussianProcess.Fit"

	if X == nil {
		return opterr.Fit("no training inputs").WithOp(op)
	}
	n, d := X.Dims()
	if n == 0 || d == 0 {
		return opterr.Fit("empty training matrix").WithOp(op)
	}
	if n != len(y) {
		return opterr.Fit("dimension mismatch: %d rows but %d values", n, len(y)).WithOp(op)
	}
	for _, v := range y {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return opterr.Fit("non-finite target value %v", v).WithOp(op)
		}
	}
	if n >= 2 && allRowsIdentical(X) {
		return opterr.Fit("degenerate design: all %d points identical", n).WithOp(op)
	}

	gp.X = mat.DenseCopyOf(X)
	gp.yMean = floats.Sum(y) / float64(n)
	gp.y = mat.NewVecDense(n, nil)
	for i, v := range y {
		gp.y.SetVec(i, v-gp.yMean)
	}

	noise := gp.noise
	if gp.estimateNoise {
		noise = gp.selectNoise(n)
	}

	chol, alpha, err := gp.factorize(noise, n)
	if err != nil {
		return err
	}
	gp.fittedNoise = noise
	gp.chol = chol
	gp.alpha = alpha

	gp.logger.Debug("fitted gaussian process",
		zap.Int("samples", n),
		zap.Int("features", d),
		zap.Float64("noise", noise),
	)
	return nil
}

// selectNoise picks the grid noise level maximizing the log marginal
// likelihood of the centered targets.
func (gp *GaussianProcess) selectNoise(n int) float64 {
	best := noiseGrid[0]
	bestLML := math.Inf(-1)
	for _, candidate := range noiseGrid {
		chol, alpha, err := gp.factorize(candidate, n)
		if err != nil {
			continue
		}
		lml := -0.5*mat.Dot(gp.y, alpha) - 0.5*chol.LogDet() - 0.5*float64(n)*math.Log(2*math.Pi)
		if lml > bestLML {
			bestLML = lml
			best = candidate
		}
	}
	gp.logger.Debug("estimated observation noise",
		zap.Float64("noise", best),
		zap.Float64("log_marginal_likelihood", bestLML),
	)
	return best
}

// factorize builds the kernel matrix with the given noise on the
// diagonal and Cholesky-factorizes it, escalating a jitter term until the
// factorization succeeds.
func (gp *GaussianProcess) factorize(noise float64, n int) (*mat.Cholesky, *mat.VecDense, error) {
	const op = "surrogate.GaussianProcess.factorize"

	K := gp.pool.getSym(n)
	defer gp.pool.putSym(K)
	for i := 0; i < n; i++ {
		xi := gp.X.RawRowView(i)
		K.SetSym(i, i, gp.kernel.Eval(xi, xi)+noise)
		for j := i + 1; j < n; j++ {
			K.SetSym(i, j, gp.kernel.Eval(xi, gp.X.RawRowView(j)))
		}
	}

	jitter := 0.0
	for attempt := 0; attempt < 8; attempt++ {
		Kj := mat.NewSymDense(n, nil)
		Kj.CopySym(K)
		if jitter > 0 {
			for i := 0; i < n; i++ {
				Kj.SetSym(i, i, Kj.At(i, i)+jitter)
			}
		}
		var chol mat.Cholesky
		if ok := chol.Factorize(Kj); !ok {
			if jitter == 0 {
				jitter = 1e-10
			} else {
				jitter *= 100
			}
			gp.logger.Debug("cholesky factorization failed, escalating jitter",
				zap.Int("attempt", attempt+1),
				zap.Float64("jitter", jitter),
			)
			continue
		}
		alpha := mat.NewVecDense(n, nil)
		if err := chol.SolveVecTo(alpha, gp.y); err != nil {
			jitter = math.Max(jitter*100, 1e-10)
			continue
		}
		return &chol, alpha, nil
	}
	return nil, nil, opterr.Fit("kernel matrix is not positive definite after jitter escalation").WithOp(op)
}

// Predict returns the posterior predictive mean and standard deviation of
// the latent function at each row of X.
func (gp *GaussianProcess) Predict(X *mat.Dense) (mean, std []float64, err error) {
	const op = "surrogate.GaussianProcess.Predict"

	if X == nil {
		return nil, nil, opterr.Fit("nil query matrix").WithOp(op)
	}
	if gp.X == nil || gp.alpha == nil || gp.chol == nil {
		return nil, nil, opterr.Fit("model is not fitted").WithOp(op)
	}
	nTest, d := X.Dims()
	nTrain, dTrain := gp.X.Dims()
	if d != dTrain {
		return nil, nil, opterr.Fit("query has %d features, model was fitted on %d", d, dTrain).WithOp(op)
	}

	Kstar := mat.NewDense(nTest, nTrain, nil)
	kss := make([]float64, nTest)
	for i := 0; i < nTest; i++ {
		xs := X.RawRowView(i)
		kss[i] = gp.kernel.Eval(xs, xs)
		for j := 0; j < nTrain; j++ {
			Kstar.Set(i, j, gp.kernel.Eval(xs, gp.X.RawRowView(j)))
		}
	}

	mv := mat.NewVecDense(nTest, nil)
	mv.MulVec(Kstar, gp.alpha)

	// Posterior variance via the Cholesky factor: kss - ||v||² where
	// K v = k*.
	V := mat.NewDense(nTrain, nTest, nil)
	if err := gp.chol.SolveTo(V, Kstar.T()); err != nil {
		return nil, nil, opterr.Wrap(err, opterr.KindFit, op)
	}

	mean = make([]float64, nTest)
	std = make([]float64, nTest)
	for i := 0; i < nTest; i++ {
		mean[i] = mv.AtVec(i) + gp.yMean
		var reduction float64
		for j := 0; j < nTrain; j++ {
			reduction += V.At(j, i) * Kstar.At(i, j)
		}
		variance := kss[i] - reduction
		if variance < 0 {
			variance = 0
		}
		std[i] = math.Sqrt(variance)
	}
	return mean, std, nil
}

func allRowsIdentical(X *mat.Dense) bool {
	n, d := X.Dims()
	first := X.RawRowView(0)
	for i := 1; i < n; i++ {
		row := X.RawRowView(i)
		for j := 0; j < d; j++ {
			if row[j] != first[j] {
				return false
			}
		}
	}
	return true
}
