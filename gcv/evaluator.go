// SPDX-License-Identifier: MIT
package gcv

import (
	"math"
	"sync"

	"go.uber.org/zap"
	"gonum.org/v1/gonum/floats"

	"github.com/katalvlaran/fesmooth/carrier"
	"github.com/katalvlaran/fesmooth/matrix"
	"github.com/katalvlaran/fesmooth/optdata"
)

const opNew = "New"

// Evaluation is the result of one GCV evaluation.
type Evaluation struct {
	Lambda float64
	Score  float64 // GCV(λ); +Inf when Degenerate
	Grad   float64 // dGCV/dλ
	Hess   float64 // d²GCV/dλ²
	DOF    float64 // q + tr S
	RSS    float64 // ‖z − ẑ‖²
	// Degenerate marks a λ where the fit is undefined.
	Degenerate bool
}

// Output summarizes an evaluator's activity.
type Output struct {
	Last        Evaluation
	Evaluations int
	Degenerate  int
}

// Evaluator computes GCV and its derivatives for a fixed carrier.
type Evaluator interface {
	// Evaluate returns the score at λ. Degenerate λ are reported in the
	// Evaluation, not as errors.
	Evaluate(lambda float64) (Evaluation, error)
	// Mode returns the DOF evaluation mode.
	Mode() optdata.DOFEvaluation
	// Carrier returns the evaluated carrier.
	Carrier() carrier.Carrier
	// Output returns the last evaluation and counters.
	Output() Output
}

// Option configures an evaluator.
type Option func(*options)

type options struct {
	logger *zap.Logger
	probes int
	seed   int64
	cgOpts []matrix.Option
}

// WithLogger sets the logger for per-evaluation debug records.
func WithLogger(l *zap.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithProbes overrides the probe count from the configuration.
func WithProbes(p int) Option {
	return func(o *options) {
		if p > 0 {
			o.probes = p
		}
	}
}

// WithSeed overrides the probe seed from the configuration.
func WithSeed(seed int64) Option {
	return func(o *options) { o.seed = seed }
}

// WithCGOptions passes options to the stochastic evaluator's CG solves.
func WithCGOptions(opts ...matrix.Option) Option {
	return func(o *options) { o.cgOpts = append(o.cgOpts, opts...) }
}

func gatherOptions(cfg optdata.Config, opts []Option) options {
	o := options{logger: zap.NewNop(), probes: cfg.NumProbes(), seed: cfg.Seed}
	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}
	return o
}

// New returns the evaluator selected by the carrier's DOF mode.
func New(c carrier.Carrier, opts ...Option) (Evaluator, error) {
	if c == nil {
		return nil, gcvErrorf(opNew, ErrNilCarrier)
	}
	switch c.OptData().DOF {
	case optdata.Exact:
		return NewExact(c, opts...), nil
	case optdata.Stochastic:
		return NewStochastic(c, opts...), nil
	default:
		return nil, gcvErrorf(opNew, ErrUnsupportedDOF)
	}
}

// DefaultLambda returns tr(T)/tr(R) restricted to non-boundary nodes, the
// λ that balances data fit and penalty on average. It falls back to 1 when
// either trace vanishes or c is nil.
func DefaultLambda(c carrier.Carrier) float64 {
	if c == nil {
		return 1
	}
	bc := make(map[int]struct{}, len(c.BoundaryIndices()))
	for _, id := range c.BoundaryIndices() {
		bc[id] = struct{}{}
	}
	t, r := c.T().Diag(), c.Penalty().Diag()
	var trT, trR float64
	for i := range t {
		if _, ok := bc[i]; ok {
			continue
		}
		trT += t[i]
		trR += r[i]
	}
	if !(trT > 0) || !(trR > 0) {
		return 1
	}
	l := trT / trR
	if math.IsInf(l, 0) || math.IsNaN(l) {
		return 1
	}
	return l
}

// degenerate is the Evaluation reported for an undefined fit.
func degenerate(lambda float64) Evaluation {
	return Evaluation{Lambda: lambda, Score: math.Inf(1), Degenerate: true}
}

// validLambda reports whether λ can be evaluated at all.
func validLambda(lambda float64) bool {
	return lambda >= 0 && !math.IsInf(lambda, 0)
}

// smootherMoments gathers what both evaluators produce before scoring.
type smootherMoments struct {
	trS, trdS, trddS float64   // tr S, tr dS, tr d²S
	sz, dsz, ddsz    []float64 // S·z, dS·z, d²S·z
}

// chainFunc returns M⁻¹b, K·M⁻¹b and K²·M⁻¹b with K = M⁻¹R.
type chainFunc func(b []float64) (v, w, x []float64, err error)

// addOffset adds the fixed and forcing terms of the carrier's right-hand
// side to the fitted moments, so they describe the fit Apply returns. With
// y = M⁻¹(c₀ + λg) and a = M⁻¹g:
//
//	dy = −K·y + a,   d²y = 2K²·y − 2K·a
func addOffset(c carrier.Carrier, lambda float64, m *smootherMoments, chain chainFunc) error {
	fixed, forcing := c.Offset()
	if fixed == nil && forcing == nil {
		return nil
	}
	rhs := make([]float64, c.NumNodes())
	if fixed != nil {
		copy(rhs, fixed)
	}
	if forcing != nil {
		floats.AddScaled(rhs, lambda, forcing)
	}
	y, ky, kky, err := chain(rhs)
	if err != nil {
		return err
	}
	dy := make([]float64, len(y))
	floats.ScaleTo(dy, -1, ky)
	ddy := make([]float64, len(y))
	floats.ScaleTo(ddy, 2, kky)
	if forcing != nil {
		a, ka, _, err := chain(forcing)
		if err != nil {
			return err
		}
		floats.Add(dy, a)
		floats.AddScaled(ddy, -2, ka)
	}

	psi := c.Psi()
	for _, t := range []struct{ dst, v []float64 }{{m.sz, y}, {m.dsz, dy}, {m.ddsz, ddy}} {
		pv, err := psi.MulVec(t.v)
		if err != nil {
			return err
		}
		floats.Add(t.dst, pv)
	}

	return nil
}

// score turns smoother moments into the GCV value and its derivatives.
func score(c carrier.Carrier, lambda float64, m smootherMoments) (Evaluation, error) {
	z := c.Observations()
	s := float64(len(z))
	dof := float64(c.NumCovariates()) + m.trS
	dor := s - dof
	if !(dor > 0) {
		return degenerate(lambda), nil
	}

	zhat, err := c.Fitted(m.sz)
	if err != nil {
		return Evaluation{}, err
	}
	dz, err := c.Project(m.dsz)
	if err != nil {
		return Evaluation{}, err
	}
	ddz, err := c.Project(m.ddsz)
	if err != nil {
		return Evaluation{}, err
	}

	eps := make([]float64, len(z))
	floats.SubTo(eps, z, zhat)
	rss := floats.Dot(eps, eps)
	drss := -2 * floats.Dot(eps, dz)
	ddrss := 2*floats.Dot(dz, dz) - 2*floats.Dot(eps, ddz)

	dor2 := dor * dor
	dor3 := dor2 * dor
	dof1, dof2 := m.trdS, m.trddS

	ev := Evaluation{
		Lambda: lambda,
		Score:  s * rss / dor2,
		Grad:   s * (drss/dor2 + 2*rss*dof1/dor3),
		Hess:   s * (ddrss/dor2 + 4*drss*dof1/dor3 + 2*rss*dof2/dor3 + 6*rss*dof1*dof1/(dor3*dor)),
		DOF:    dof,
		RSS:    rss,
	}
	if math.IsNaN(ev.Score) || math.IsInf(ev.Score, 0) {
		return degenerate(lambda), nil
	}

	return ev, nil
}

// recorder keeps the Output of an evaluator.
type recorder struct {
	mu  sync.Mutex
	out Output
}

func (r *recorder) record(ev Evaluation) {
	r.mu.Lock()
	r.out.Last = ev
	r.out.Evaluations++
	if ev.Degenerate {
		r.out.Degenerate++
	}
	r.mu.Unlock()
}

func (r *recorder) Output() Output {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.out
}

func logEvaluation(l *zap.Logger, mode optdata.DOFEvaluation, ev Evaluation) {
	l.Debug("gcv evaluated",
		zap.Stringer("mode", mode),
		zap.Float64("lambda", ev.Lambda),
		zap.Float64("score", ev.Score),
		zap.Float64("grad", ev.Grad),
		zap.Float64("hess", ev.Hess),
		zap.Float64("dof", ev.DOF),
		zap.Bool("degenerate", ev.Degenerate),
	)
}
