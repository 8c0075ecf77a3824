// SPDX-License-Identifier: MIT
package optim

import (
	"context"
	"math"
	"time"

	"go.uber.org/zap"

	"github.com/katalvlaran/fesmooth/gcv"
	"github.com/katalvlaran/fesmooth/optdata"
)

const (
	opNewton = "Newton.Optimize"

	// maxGrowth caps λ_{k+1}/λ_k.
	maxGrowth = 10.0
	// maxLambda bounds the search; beyond it the search diverged.
	maxLambda = 1e15
	// fdRelStep is the relative finite-difference step h = fdRelStep·λ.
	fdRelStep = 1e-4
)

// Newton is the safeguarded Newton search.
type Newton struct {
	// InitialLambda ≤ 0 or NaN selects gcv.DefaultLambda.
	InitialLambda float64
	Tolerance     float64
	MaxIter       int
	// FiniteDifference replaces analytic derivatives by central differences.
	FiniteDifference bool

	logger *zap.Logger
}

var _ Strategy = (*Newton)(nil)

// NewNewton configures a Newton search from cfg.
func NewNewton(cfg optdata.Config, opts ...Option) *Newton {
	o := gatherOptions(opts)
	n := &Newton{
		InitialLambda:    cfg.InitialLambda,
		Tolerance:        cfg.Tolerance,
		MaxIter:          cfg.MaxIter,
		FiniteDifference: cfg.Criterion == optdata.NewtonFD,
		logger:           o.logger,
	}
	if !(n.Tolerance > 0) {
		n.Tolerance = optdata.DefaultTolerance
	}
	if n.MaxIter < 1 {
		n.MaxIter = optdata.DefaultMaxIter
	}
	return n
}

// search holds the mutable state of one Optimize call.
type search struct {
	ev    gcv.Evaluator
	ck    *Checker
	res   Result
	best  gcv.Evaluation
	count int
}

func (s *search) eval(lambda float64) (gcv.Evaluation, error) {
	s.count++
	e, err := s.ev.Evaluate(lambda)
	if err != nil {
		return gcv.Evaluation{}, err
	}
	if !e.Degenerate && (s.best.Degenerate || e.Score < s.best.Score) {
		s.best = e
	}
	return e, nil
}

// Optimize runs Newton's method from the configured start.
//
// Rules per iteration, from the current λ with derivatives g, h:
//   - h > 0: candidate λ − g/h; otherwise 2λ when g < 0, else λ/2.
//   - a non-positive or NaN candidate becomes λ/2; growth is capped at ×10.
//   - while the candidate raises the score and |Δλ| > tol·λ, the step is halved.
//
// It stops Converged when |Δλ| ≤ tol·λ or no step lowers the score,
// MaxIterReached after MaxIter iterations and Diverged when λ exceeds 1e15 or
// no non-degenerate start exists. The best λ seen is returned in every case.
func (n *Newton) Optimize(ctx context.Context, ev gcv.Evaluator) (Result, error) {
	if ev == nil {
		return Result{}, optimErrorf(opNewton, ErrNilEvaluator)
	}
	start := time.Now()
	s := &search{ev: ev, ck: NewChecker(), best: gcv.Evaluation{Degenerate: true, Score: math.Inf(1)}}

	lambda := n.InitialLambda
	if !(lambda > 0) || math.IsInf(lambda, 0) {
		lambda = gcv.DefaultLambda(ev.Carrier())
	}

	cur, err := s.eval(lambda)
	if err != nil {
		return Result{}, optimErrorf(opNewton, err)
	}
	// A degenerate start (typically s − dof ≤ 0 at tiny λ) moves up.
	for tries := 0; cur.Degenerate; tries++ {
		if tries == n.MaxIter || lambda*maxGrowth > maxLambda {
			s.ck.Stop(ReasonNoStart)
			return n.finish(s, start, lambda), nil
		}
		lambda *= maxGrowth
		if cur, err = s.eval(lambda); err != nil {
			return Result{}, optimErrorf(opNewton, err)
		}
	}
	s.res.Trajectory.add(lambda, cur.Score)

	for !s.ck.State().Terminal() {
		if err = ctx.Err(); err != nil {
			return n.finish(s, start, lambda), optimErrorf(opNewton, err)
		}
		if s.ck.Iterations() == n.MaxIter {
			s.ck.Stop(ReasonMaxIter)
			break
		}
		s.ck.Step()

		g, h, err := n.derivatives(s, cur)
		if err != nil {
			return Result{}, optimErrorf(opNewton, err)
		}
		next := newtonCandidate(lambda, g, h)

		cand, err := s.eval(next)
		if err != nil {
			return Result{}, optimErrorf(opNewton, err)
		}
		for worse(cand, cur) && math.Abs(next-lambda) > n.Tolerance*lambda {
			next = lambda + (next-lambda)/2
			if cand, err = s.eval(next); err != nil {
				return Result{}, optimErrorf(opNewton, err)
			}
		}
		if worse(cand, cur) {
			s.ck.Stop(ReasonNoDescent)
			break
		}

		delta := math.Abs(next - lambda)
		prev := lambda
		lambda, cur = next, cand
		s.res.Trajectory.add(lambda, cur.Score)
		orNop(n.logger).Debug("newton iteration",
			zap.Int("iter", s.ck.Iterations()),
			zap.Float64("lambda", lambda),
			zap.Float64("score", cur.Score),
			zap.Float64("grad", g),
			zap.Float64("hess", h),
		)

		switch {
		case delta <= n.Tolerance*prev:
			s.ck.Stop(ReasonTolerance)
		case lambda > maxLambda || math.IsInf(lambda, 0):
			s.ck.Stop(ReasonUnbounded)
		}
	}

	return n.finish(s, start, lambda), nil
}

// derivatives returns the score's first and second derivative at cur.
func (n *Newton) derivatives(s *search, cur gcv.Evaluation) (float64, float64, error) {
	if !n.FiniteDifference {
		return cur.Grad, cur.Hess, nil
	}
	l := cur.Lambda
	d := fdRelStep * l
	lo, err := s.eval(l - d)
	if err != nil {
		return 0, 0, err
	}
	hi, err := s.eval(l + d)
	if err != nil {
		return 0, 0, err
	}
	switch {
	case !lo.Degenerate && !hi.Degenerate:
		return (hi.Score - lo.Score) / (2 * d), (hi.Score - 2*cur.Score + lo.Score) / (d * d), nil
	case !hi.Degenerate:
		// One-sided slope; no curvature information.
		return (hi.Score - cur.Score) / d, math.NaN(), nil
	default:
		return math.NaN(), math.NaN(), nil
	}
}

// newtonCandidate applies the safeguarded step rule.
func newtonCandidate(lambda, g, h float64) float64 {
	var next float64
	switch {
	case h > 0 && !math.IsInf(h, 0) && !math.IsNaN(g):
		next = lambda - g/h
	case g < 0:
		next = 2 * lambda
	default:
		next = lambda / 2
	}
	if !(next > 0) {
		next = lambda / 2
	}
	if next > maxGrowth*lambda {
		next = maxGrowth * lambda
	}
	return next
}

// worse reports whether cand does not improve on cur.
func worse(cand, cur gcv.Evaluation) bool {
	return cand.Degenerate || cand.Score > cur.Score
}

func (n *Newton) finish(s *search, start time.Time, last float64) Result {
	r := s.res
	r.Evaluations = s.count
	r.Iterations = s.ck.Iterations()
	r.State = s.ck.State()
	r.Reason = s.ck.Which()
	r.Elapsed = time.Since(start)
	if s.best.Degenerate {
		r.Lambda, r.Score = last, math.Inf(1)
	} else {
		r.Lambda, r.Score, r.DOF = s.best.Lambda, s.best.Score, s.best.DOF
	}
	orNop(n.logger).Debug("newton finished",
		zap.Stringer("state", r.State),
		zap.Stringer("reason", r.Reason),
		zap.Float64("lambda", r.Lambda),
		zap.Int("evaluations", r.Evaluations),
	)
	return r
}
