// SPDX-License-Identifier: MIT

package optdata

import (
	"errors"
	"fmt"
)

var (
	// ErrUnsupportedCombination is returned for a (loss, dof, criterion)
	// triple that has no implementation.
	ErrUnsupportedCombination = errors.New("optdata: unsupported configuration combination")

	// ErrEmptyGrid is returned when the batch criterion has no λ grid.
	ErrEmptyGrid = errors.New("optdata: empty lambda grid")

	// ErrBadGrid is returned for a negative or non-finite grid value.
	ErrBadGrid = errors.New("optdata: invalid lambda grid value")

	// ErrBadTolerance is returned for a non-positive or non-finite tolerance.
	ErrBadTolerance = errors.New("optdata: tolerance must be finite and > 0")

	// ErrBadMaxIter is returned when MaxIter < 1.
	ErrBadMaxIter = errors.New("optdata: max_iter must be >= 1")

	// ErrBadProbes is returned when a negative probe count is requested.
	ErrBadProbes = errors.New("optdata: probes must be >= 0")

	// ErrUnknownEnum is returned when a textual enum value is not recognized.
	ErrUnknownEnum = errors.New("optdata: unknown enum value")
)

// optdataErrorf wraps err with the operation tag.
func optdataErrorf(tag string, err error) error {
	return fmt.Errorf("%s: %w", tag, err)
}
