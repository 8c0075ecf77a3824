// SPDX-License-Identifier: MIT
package carrier

import (
	"errors"
	"fmt"
)

var (
	// ErrUnknownVariant is returned when a variant value outside the closed set is requested.
	ErrUnknownVariant = errors.New("carrier: unknown variant")

	// ErrVariantMismatch is returned when a typed constructor receives data of another variant.
	ErrVariantMismatch = errors.New("carrier: data does not match variant")

	// ErrBoundaryOutOfRange is returned for a boundary index outside [0, n).
	ErrBoundaryOutOfRange = errors.New("carrier: boundary index out of range")

	// ErrDimensionMismatch is returned when Ψ, Q or the areas disagree with the data.
	ErrDimensionMismatch = errors.New("carrier: dimension mismatch")

	// ErrNilInput is returned for a nil data, model or operator.
	ErrNilInput = errors.New("carrier: nil input")
)

func carrierErrorf(op string, err error) error {
	return fmt.Errorf("carrier.%s: %w", op, err)
}
