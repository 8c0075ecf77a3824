// SPDX-License-Identifier: MIT
package blocks

import (
	"errors"
	"fmt"
)

var (
	// ErrIndexOutOfRange is returned when a node map or boundary index falls outside [0, n).
	ErrIndexOutOfRange = errors.New("blocks: index out of range")

	// ErrDimensionMismatch is returned when operand shapes are inconsistent.
	ErrDimensionMismatch = errors.New("blocks: dimension mismatch")

	// ErrNilInput is returned for a missing matrix or vector operand.
	ErrNilInput = errors.New("blocks: nil input")
)

// blockErrorf tags err with the builder name, keeping the sentinel for errors.Is.
func blockErrorf(op string, err error) error {
	return fmt.Errorf("blocks.%s: %w", op, err)
}
