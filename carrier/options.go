// SPDX-License-Identifier: MIT
package carrier

import (
	"go.uber.org/zap"

	"github.com/katalvlaran/fesmooth/blocks"
)

// Option configures carrier construction.
type Option func(*options)

type options struct {
	logger  *zap.Logger
	penalty float64
}

func gatherOptions(opts []Option) options {
	o := options{logger: zap.NewNop(), penalty: blocks.Penalty}
	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}
	return o
}

// WithLogger sets the logger for construction and Apply records.
func WithLogger(l *zap.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithBoundaryPenalty overrides the Dirichlet diagonal weight of T.
// It must match the penalty the model solves with.
func WithBoundaryPenalty(pen float64) Option {
	return func(o *options) {
		if pen > 0 {
			o.penalty = pen
		}
	}
}
