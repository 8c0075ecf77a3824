// SPDX-License-Identifier: MIT
package optim

import (
	"context"
	"math"
	"runtime"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/katalvlaran/fesmooth/gcv"
	"github.com/katalvlaran/fesmooth/optdata"
)

const opBatch = "Batch.Optimize"

// Batch evaluates every λ of a grid and keeps the minimizer.
type Batch struct {
	Lambdas []float64
	// Parallel evaluates grid points concurrently; results keep grid order.
	Parallel bool
	// Workers bounds the concurrency (default GOMAXPROCS).
	Workers int

	logger *zap.Logger
}

var _ Strategy = (*Batch)(nil)

// NewBatch configures a grid search from cfg.
func NewBatch(cfg optdata.Config, opts ...Option) *Batch {
	o := gatherOptions(opts)
	return &Batch{
		Lambdas:  append([]float64(nil), cfg.Lambdas...),
		Parallel: cfg.Parallel,
		logger:   o.logger,
	}
}

// Optimize evaluates the grid. The trajectory has one entry per grid point in
// grid order; the returned λ is the first point with the lowest score. When
// every point is degenerate the search is Diverged and the first point is
// returned with score +Inf.
func (b *Batch) Optimize(ctx context.Context, ev gcv.Evaluator) (Result, error) {
	if ev == nil {
		return Result{}, optimErrorf(opBatch, ErrNilEvaluator)
	}
	if len(b.Lambdas) == 0 {
		return Result{}, optimErrorf(opBatch, optdata.ErrEmptyGrid)
	}
	start := time.Now()
	ck := NewChecker()
	ck.Step()

	evals := make([]gcv.Evaluation, len(b.Lambdas))
	var err error
	if b.Parallel {
		err = b.evaluateParallel(ctx, ev, evals)
	} else {
		err = b.evaluateSequential(ctx, ev, evals)
	}
	if err != nil {
		return Result{}, optimErrorf(opBatch, err)
	}

	res := Result{Evaluations: len(evals), Iterations: 1}
	best := -1
	for i, e := range evals {
		res.Trajectory.add(b.Lambdas[i], e.Score)
		if e.Degenerate {
			continue
		}
		if best < 0 || e.Score < evals[best].Score {
			best = i
		}
	}
	if best < 0 {
		ck.Stop(ReasonNoStart)
		res.Lambda, res.Score = b.Lambdas[0], math.Inf(1)
	} else {
		ck.Stop(ReasonGrid)
		res.Lambda, res.Score, res.DOF = b.Lambdas[best], evals[best].Score, evals[best].DOF
	}
	res.State, res.Reason = ck.State(), ck.Which()
	res.Elapsed = time.Since(start)

	orNop(b.logger).Debug("batch finished",
		zap.Int("grid", len(b.Lambdas)),
		zap.Float64("lambda", res.Lambda),
		zap.Float64("score", res.Score),
		zap.Bool("parallel", b.Parallel),
	)

	return res, nil
}

func (b *Batch) evaluateSequential(ctx context.Context, ev gcv.Evaluator, out []gcv.Evaluation) error {
	for i, l := range b.Lambdas {
		if err := ctx.Err(); err != nil {
			return err
		}
		e, err := ev.Evaluate(l)
		if err != nil {
			return err
		}
		out[i] = e
	}
	return nil
}

// evaluateParallel fans the grid out over an errgroup; each goroutine writes
// only its own slot of out.
func (b *Batch) evaluateParallel(ctx context.Context, ev gcv.Evaluator, out []gcv.Evaluation) error {
	g, gctx := errgroup.WithContext(ctx)
	workers := b.Workers
	if workers < 1 {
		workers = runtime.GOMAXPROCS(0)
	}
	g.SetLimit(workers)
	for i, l := range b.Lambdas {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			e, err := ev.Evaluate(l)
			if err != nil {
				return err
			}
			out[i] = e
			return nil
		})
	}
	return g.Wait()
}
