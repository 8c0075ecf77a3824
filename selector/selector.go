// SPDX-License-Identifier: MIT
package selector

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/katalvlaran/fesmooth/carrier"
	"github.com/katalvlaran/fesmooth/gcv"
	"github.com/katalvlaran/fesmooth/optdata"
	"github.com/katalvlaran/fesmooth/optim"
	"github.com/katalvlaran/fesmooth/regression"
)

// Diagnostics describes one search.
type Diagnostics struct {
	RunID     uuid.UUID
	Variant   carrier.Variant
	Loss      optdata.LossFunction
	DOFMode   optdata.DOFEvaluation
	Criterion optdata.Criterion

	Lambda float64 // selected λ
	Score  float64 // GCV at Lambda
	DOF    float64 // equivalent degrees of freedom at Lambda

	Lambdas []float64 // visited λ
	Scores  []float64 // GCV at Lambdas

	Evaluations int
	Iterations  int
	Elapsed     time.Duration // search time, excluding the final solve
	State       optim.State
	Reason      optim.StopReason

	Betas            []float64 // covariate coefficients at Lambda; nil without covariates
	SpatiallyVarying bool
}

// Solution is the fitted field at the selected λ.
type Solution struct {
	Coefficients []float64
	Diagnostics  Diagnostics
}

// Option configures Run.
type Option func(*options)

type options struct {
	logger     *zap.Logger
	carrierOps []carrier.Option
	gcvOps     []gcv.Option
}

// WithLogger sets the logger passed to every stage.
func WithLogger(l *zap.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithCarrierOptions forwards options to carrier construction.
func WithCarrierOptions(opts ...carrier.Option) Option {
	return func(o *options) { o.carrierOps = append(o.carrierOps, opts...) }
}

// WithEvaluatorOptions forwards options to the evaluator.
func WithEvaluatorOptions(opts ...gcv.Option) Option {
	return func(o *options) { o.gcvOps = append(o.gcvOps, opts...) }
}

// Run selects λ for model on data under cfg and returns the solution at λ.
//
// A search that stops in MaxIterReached or Diverged still yields a solution
// at the best λ seen; the state is in the diagnostics.
func Run(ctx context.Context, data *regression.Data, model regression.Model, cfg optdata.Config, opts ...Option) (Solution, error) {
	o := options{logger: zap.NewNop()}
	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}
	if err := cfg.Validate(); err != nil {
		return Solution{}, fmt.Errorf("selector: %w", err)
	}
	runID := uuid.New()
	log := o.logger.With(zap.String("run_id", runID.String()))

	c, err := carrier.Build(data, model, cfg, append([]carrier.Option{carrier.WithLogger(log)}, o.carrierOps...)...)
	if err != nil {
		return Solution{}, fmt.Errorf("selector: %w", err)
	}
	ev, err := gcv.New(c, append([]gcv.Option{gcv.WithLogger(log)}, o.gcvOps...)...)
	if err != nil {
		return Solution{}, fmt.Errorf("selector: %w", err)
	}
	strategy, err := optim.Select(cfg, optim.WithLogger(log))
	if err != nil {
		return Solution{}, fmt.Errorf("selector: %w", err)
	}

	res, err := strategy.Optimize(ctx, ev)
	if err != nil {
		return Solution{}, fmt.Errorf("selector: %w", err)
	}
	f, err := c.Apply(res.Lambda)
	if err != nil {
		return Solution{}, fmt.Errorf("selector: apply λ=%g: %w", res.Lambda, err)
	}

	d := Diagnostics{
		RunID:            runID,
		Variant:          c.Variant(),
		Loss:             cfg.Loss,
		DOFMode:          cfg.DOF,
		Criterion:        cfg.Criterion,
		Lambda:           res.Lambda,
		Score:            res.Score,
		DOF:              res.DOF,
		Lambdas:          res.Trajectory.Lambdas,
		Scores:           res.Trajectory.Scores,
		Evaluations:      res.Evaluations,
		Iterations:       res.Iterations,
		Elapsed:          res.Elapsed,
		State:            res.State,
		Reason:           res.Reason,
		Betas:            c.Model().Beta(),
		SpatiallyVarying: c.Model().IsSpatiallyVarying(),
	}
	log.Info("smoothing parameter selected",
		zap.Stringer("variant", d.Variant),
		zap.Stringer("dof_evaluation", d.DOFMode),
		zap.Stringer("criterion", d.Criterion),
		zap.Float64("lambda", d.Lambda),
		zap.Float64("gcv", d.Score),
		zap.Float64("dof", d.DOF),
		zap.Stringer("state", d.State),
		zap.Int("evaluations", d.Evaluations),
		zap.Duration("elapsed", d.Elapsed),
	)

	return Solution{Coefficients: f, Diagnostics: d}, nil
}
