// SPDX-License-Identifier: MIT
package optim

import (
	"context"

	"go.uber.org/zap"

	"github.com/katalvlaran/fesmooth/gcv"
	"github.com/katalvlaran/fesmooth/optdata"
)

// Strategy searches λ over an evaluator.
type Strategy interface {
	Optimize(ctx context.Context, ev gcv.Evaluator) (Result, error)
}

// Option configures a strategy.
type Option func(*options)

type options struct {
	logger *zap.Logger
}

// WithLogger sets the logger for per-iteration debug records.
func WithLogger(l *zap.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

func gatherOptions(opts []Option) options {
	o := options{logger: zap.NewNop()}
	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}
	return o
}

// Select returns the strategy named by cfg.Criterion.
func Select(cfg optdata.Config, opts ...Option) (Strategy, error) {
	switch cfg.Criterion {
	case optdata.Batch:
		return NewBatch(cfg, opts...), nil
	case optdata.NewtonExact, optdata.NewtonFD:
		return NewNewton(cfg, opts...), nil
	default:
		return nil, optimErrorf("Select", ErrUnsupportedCriterion)
	}
}

// orNop returns l, or a no-op logger for strategies built without a constructor.
func orNop(l *zap.Logger) *zap.Logger {
	if l == nil {
		return zap.NewNop()
	}
	return l
}
