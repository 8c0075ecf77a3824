// SPDX-License-Identifier: MIT
package regression

import (
	"errors"
	"fmt"
)

var (
	// ErrNoObservations is returned when the observation vector is empty.
	ErrNoObservations = errors.New("regression: no observations")

	// ErrDimensionMismatch is returned when data and operators disagree on shape.
	ErrDimensionMismatch = errors.New("regression: dimension mismatch")

	// ErrBoundaryMismatch is returned when boundary indices and values differ in length.
	ErrBoundaryMismatch = errors.New("regression: boundary indices and values differ in length")

	// ErrBoundaryOutOfRange is returned for a boundary index outside the mesh.
	ErrBoundaryOutOfRange = errors.New("regression: boundary index out of range")

	// ErrSingularCovariates is returned when WᵗW is not positive definite.
	ErrSingularCovariates = errors.New("regression: covariate matrix is rank deficient")

	// ErrInvalidMesh is returned for degenerate mesh parameters.
	ErrInvalidMesh = errors.New("regression: invalid mesh")

	// ErrEmptyRegion is returned when a region covers no mesh element.
	ErrEmptyRegion = errors.New("regression: region has zero area")

	// ErrNonFinite is returned for NaN or Inf inputs.
	ErrNonFinite = errors.New("regression: non-finite value")

	// ErrNegativeLambda is returned by Solve for λ < 0 or non-finite λ.
	ErrNegativeLambda = errors.New("regression: lambda must be finite and non-negative")
)

func regressionErrorf(op string, err error) error {
	return fmt.Errorf("regression.%s: %w", op, err)
}
