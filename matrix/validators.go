// SPDX-License-Identifier: MIT
// Package matrix: shared guards for kernels, factorizations and block builders.
//
// Every validator returns a sentinel wrapped with its own name, so callers can
// add their operation tag and still match with errors.Is. None of them allocate.

package matrix

import (
	"fmt"
	"math"
)

const (
	tagNotNil       = "ValidateNotNil"
	tagSameShape    = "ValidateSameShape"
	tagSquare       = "ValidateSquare"
	tagVecLen       = "ValidateVecLen"
	tagBinaryShape  = "ValidateBinarySameShape"
	tagSquareNonNil = "ValidateSquareNonNil"
	tagSymmetric    = "ValidateSymmetric"
	tagMul          = "ValidateMulCompatible"
)

func validatorErrorf(tag string, err error) error {
	return fmt.Errorf("%s: %w", tag, err)
}

// ValidateNotNil returns ErrNilMatrix for a nil matrix.
func ValidateNotNil(m Matrix) error {
	if m == nil {
		return validatorErrorf(tagNotNil, ErrNilMatrix)
	}

	return nil
}

// ValidateSameShape requires equal dimensions (Add, Sub, AllClose).
func ValidateSameShape(a, b Matrix) error {
	if a == nil || b == nil {
		return validatorErrorf(tagSameShape, ErrNilMatrix)
	}
	if a.Rows() != b.Rows() || a.Cols() != b.Cols() {
		return validatorErrorf(tagSameShape, ErrDimensionMismatch)
	}

	return nil
}

// ValidateSquare requires Rows == Cols (system matrices, T blocks).
func ValidateSquare(m Matrix) error {
	if m == nil {
		return validatorErrorf(tagSquare, ErrNilMatrix)
	}
	if m.Rows() != m.Cols() {
		return validatorErrorf(tagSquare, ErrDimensionMismatch)
	}

	return nil
}

// ValidateVecLen requires a non-nil vector of length n.
func ValidateVecLen(x []float64, n int) error {
	if x == nil {
		return validatorErrorf(tagVecLen, ErrNilMatrix)
	}
	if len(x) != n {
		return validatorErrorf(tagVecLen, ErrDimensionMismatch)
	}

	return nil
}

// ValidateBinarySameShape is NotNil on both operands followed by SameShape.
func ValidateBinarySameShape(a, b Matrix) error {
	for _, m := range []Matrix{a, b} {
		if err := ValidateNotNil(m); err != nil {
			return validatorErrorf(tagBinaryShape, err)
		}
	}
	if err := ValidateSameShape(a, b); err != nil {
		return validatorErrorf(tagBinaryShape, err)
	}

	return nil
}

// ValidateSquareNonNil is NotNil followed by Square.
func ValidateSquareNonNil(m Matrix) error {
	if err := ValidateNotNil(m); err != nil {
		return validatorErrorf(tagSquareNonNil, err)
	}
	if err := ValidateSquare(m); err != nil {
		return validatorErrorf(tagSquareNonNil, err)
	}

	return nil
}

// ValidateSymmetric requires |m[i,j] − m[j,i]| ≤ |tol| over the upper triangle.
// A non-finite tol is ErrNaNInf.
// Complexity: O(n²).
func ValidateSymmetric(m Matrix, tol float64) error {
	if m == nil {
		return validatorErrorf(tagSymmetric, ErrNilMatrix)
	}
	if m.Rows() != m.Cols() {
		return validatorErrorf(tagSymmetric, ErrDimensionMismatch)
	}
	if math.IsNaN(tol) || math.IsInf(tol, 0) {
		return validatorErrorf(tagSymmetric, ErrNaNInf)
	}
	tol = math.Abs(tol)

	n := m.Rows()
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			aij, _ := m.At(i, j)
			aji, _ := m.At(j, i)
			if math.Abs(aij-aji) > tol {
				return validatorErrorf(tagSymmetric, ErrAsymmetry)
			}
		}
	}

	return nil
}

// ValidateMulCompatible requires a.Cols == b.Rows.
func ValidateMulCompatible(a, b Matrix) error {
	if err := ValidateNotNil(a); err != nil {
		return validatorErrorf(tagMul, err)
	}
	if err := ValidateNotNil(b); err != nil {
		return validatorErrorf(tagMul, err)
	}
	if a.Cols() != b.Rows() {
		return validatorErrorf(tagMul, ErrDimensionMismatch)
	}

	return nil
}
