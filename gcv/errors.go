// SPDX-License-Identifier: MIT
package gcv

import (
	"errors"
	"fmt"
)

var (
	// ErrUnsupportedDOF is returned by New for a DOF mode without an evaluator.
	ErrUnsupportedDOF = errors.New("gcv: unsupported degrees-of-freedom evaluation")

	// ErrNilCarrier is returned when no carrier is given.
	ErrNilCarrier = errors.New("gcv: nil carrier")
)

func gcvErrorf(op string, err error) error {
	return fmt.Errorf("gcv.%s: %w", op, err)
}
