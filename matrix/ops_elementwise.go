// SPDX-License-Identifier: MIT
// Package: matrix
//
// Purpose:
//   - Diagonal scaling kernels (D·X and X·D by a weight vector) used to apply
//     region areas and Jacobi scalings without materializing diag(d).
//   - AllClose, the tolerance comparison shared by tests and consistency checks.
//
// Determinism & Performance:
//   - Fixed loop orders (i→j or flat 0..n-1).
//   - Dense fast-path operates on a single flat buffer (row-major).
//   - No hidden allocations beyond the output Dense; O(r*c) time and space.

package matrix

import (
	"math"
)

const (
	opMulDiagLeft  = "MulDiagLeft"
	opMulDiagRight = "MulDiagRight"
	opAllClose     = "AllClose"
)

// MulDiagRight computes out = X·diag(d), i.e. out[i,j] = X[i,j] * d[j].
// Time: O(r*c). Space: O(r*c). Deterministic i→j loops.
//
// AI-Hint: Ψᵗ·diag(A) for areal cross blocks is MulDiagRight(Ψᵗ, A).
func MulDiagRight(X Matrix, d []float64) (*Dense, error) {
	if err := ValidateNotNil(X); err != nil {
		return nil, matrixErrorf(opMulDiagRight, err)
	}
	r, c := X.Rows(), X.Cols()
	if len(d) != c {
		return nil, matrixErrorf(opMulDiagRight, ErrDimensionMismatch)
	}
	out, err := NewDense(r, c)
	if err != nil {
		return nil, matrixErrorf(opMulDiagRight, err)
	}

	// Dense fast-path.
	if src, ok := X.(*Dense); ok {
		for i := 0; i < r; i++ {
			base := i * c // row base offset
			for j := 0; j < c; j++ {
				out.data[base+j] = src.data[base+j] * d[j]
			}
		}
		return out, nil
	}

	// Generic fallback.
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			v, e := X.At(i, j)
			if e != nil {
				return nil, matrixErrorf(opMulDiagRight, e)
			}
			out.data[i*c+j] = v * d[j]
		}
	}
	return out, nil
}

// MulDiagLeft computes out = diag(d)·X, i.e. out[i,j] = d[i] * X[i,j].
// Time: O(r*c). Space: O(r*c). Deterministic i→j loops.
func MulDiagLeft(d []float64, X Matrix) (*Dense, error) {
	if err := ValidateNotNil(X); err != nil {
		return nil, matrixErrorf(opMulDiagLeft, err)
	}
	r, c := X.Rows(), X.Cols()
	if len(d) != r {
		return nil, matrixErrorf(opMulDiagLeft, ErrDimensionMismatch)
	}
	out, err := NewDense(r, c)
	if err != nil {
		return nil, matrixErrorf(opMulDiagLeft, err)
	}

	// Dense fast-path.
	if src, ok := X.(*Dense); ok {
		for i := 0; i < r; i++ {
			base := i * c // row base offset
			sf := d[i]    // scale factor for row i
			for j := 0; j < c; j++ {
				out.data[base+j] = src.data[base+j] * sf
			}
		}
		return out, nil
	}

	// Generic fallback.
	for i := 0; i < r; i++ {
		sf := d[i]
		for j := 0; j < c; j++ {
			v, e := X.At(i, j)
			if e != nil {
				return nil, matrixErrorf(opMulDiagLeft, e)
			}
			out.data[i*c+j] = v * sf
		}
	}
	return out, nil
}

// AllClose checks element-wise |a-b| ≤ atol + rtol*|b| for identical shapes.
// Returns (true,nil) if all elements satisfy the relation; (false,nil) otherwise.
// Time: O(r*c). Space: O(1). Deterministic.
//
// Policy:
//   - NaN/Inf tolerances are rejected with ErrNaNInf; negative tolerances are abs-ed.
//   - Any NaN element compares as not close.
func AllClose(a, b Matrix, rtol, atol float64) (bool, error) {
	if math.IsNaN(rtol) || math.IsNaN(atol) || math.IsInf(rtol, 0) || math.IsInf(atol, 0) {
		return false, matrixErrorf(opAllClose, ErrNaNInf)
	}
	rtol, atol = math.Abs(rtol), math.Abs(atol)

	if err := ValidateNotNil(a); err != nil {
		return false, matrixErrorf(opAllClose, err)
	}
	if err := ValidateNotNil(b); err != nil {
		return false, matrixErrorf(opAllClose, err)
	}
	if err := ValidateSameShape(a, b); err != nil {
		return false, matrixErrorf(opAllClose, err)
	}

	r, c := a.Rows(), a.Cols()

	// Dense fast-path: operate over flat slices when both are *Dense.
	if da, okA := a.(*Dense); okA {
		if db, okB := b.(*Dense); okB {
			for idx := range da.data {
				if !closeTo(da.data[idx], db.data[idx], rtol, atol) {
					return false, nil // early-exit on first violation
				}
			}
			return true, nil
		}
	}

	// Generic fallback via At (bounds-safe; still deterministic).
	var av, bv float64
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			av, _ = a.At(i, j)
			bv, _ = b.At(i, j)
			if !closeTo(av, bv, rtol, atol) {
				return false, nil
			}
		}
	}

	return true, nil
}

// closeTo reports |a-b| ≤ atol + rtol*|b|; NaN never compares close.
func closeTo(a, b, rtol, atol float64) bool {
	return math.Abs(a-b) <= atol+rtol*math.Abs(b)
}
