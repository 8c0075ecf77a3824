// SPDX-License-Identifier: MIT
package optim

import (
	"errors"
	"fmt"
)

var (
	// ErrNilEvaluator is returned when Optimize receives no evaluator.
	ErrNilEvaluator = errors.New("optim: nil evaluator")

	// ErrUnsupportedCriterion is returned by Select for an unknown criterion.
	ErrUnsupportedCriterion = errors.New("optim: unsupported criterion")
)

func optimErrorf(op string, err error) error {
	return fmt.Errorf("optim.%s: %w", op, err)
}
