// SPDX-License-Identifier: MIT
// Package matrix_test contains unit tests for the dense kernels.
package matrix_test

import (
	"testing"

	"github.com/katalvlaran/fesmooth/matrix"
	"github.com/stretchr/testify/require"
)

// TestAddSubAddScaled checks the elementwise family on a small fixture.
func TestAddSubAddScaled(t *testing.T) {
	a := NewFilledDense(t, 2, 2, []float64{1, 2, 3, 4})
	b := NewFilledDense(t, 2, 2, []float64{10, 20, 30, 40})

	sum, err := matrix.Add(a, b)
	require.NoError(t, err)
	CompareExact(t, [][]float64{{11, 22}, {33, 44}}, sum)

	diff, err := matrix.Sub(b, a)
	require.NoError(t, err)
	CompareExact(t, [][]float64{{9, 18}, {27, 36}}, diff)

	m, err := matrix.AddScaled(a, b, 0.5)
	require.NoError(t, err)
	CompareExact(t, [][]float64{{6, 12}, {18, 24}}, m)

	// Operands stay untouched.
	CompareExact(t, [][]float64{{1, 2}, {3, 4}}, a)
}

// TestAddShapeMismatch surfaces ErrDimensionMismatch.
func TestAddShapeMismatch(t *testing.T) {
	_, err := matrix.Add(MustDense(t, 2, 2), MustDense(t, 2, 3))
	require.ErrorIs(t, err, matrix.ErrDimensionMismatch)

	_, err = matrix.Add(nil, MustDense(t, 2, 3))
	require.ErrorIs(t, err, matrix.ErrNilMatrix)
}

// TestMul_FastPathMatchesFallback compares *Dense and wrapped operands.
func TestMul_FastPathMatchesFallback(t *testing.T) {
	a := RandFilledDense(t, 4, 3, 1)
	b := RandFilledDense(t, 3, 5, 2)

	fast, err := matrix.Mul(a, b)
	require.NoError(t, err)
	slow, err := matrix.Mul(hide{a}, hide{b})
	require.NoError(t, err)
	require.Equal(t, 4, fast.Rows())
	require.Equal(t, 5, fast.Cols())
	CompareClose(t, fast, slow, 1e-14, 1e-14)

	_, err = matrix.Mul(a, a)
	require.ErrorIs(t, err, matrix.ErrDimensionMismatch)
}

// TestTransposeScaleTrace covers the remaining unary kernels.
func TestTransposeScaleTrace(t *testing.T) {
	a := NewFilledDense(t, 2, 3, []float64{1, 2, 3, 4, 5, 6})

	at, err := matrix.Transpose(a)
	require.NoError(t, err)
	CompareExact(t, [][]float64{{1, 4}, {2, 5}, {3, 6}}, at)

	s, err := matrix.Scale(a, -2)
	require.NoError(t, err)
	CompareExact(t, [][]float64{{-2, -4, -6}, {-8, -10, -12}}, s)

	sq := NewFilledDense(t, 2, 2, []float64{3, 9, 9, 4})
	tr, err := matrix.Trace(sq)
	require.NoError(t, err)
	require.Equal(t, 7.0, tr)

	tr, err = matrix.Trace(hide{sq})
	require.NoError(t, err)
	require.Equal(t, 7.0, tr)

	_, err = matrix.Trace(a)
	require.ErrorIs(t, err, matrix.ErrDimensionMismatch)
}

// TestMatVec checks y = A·x and the length guard.
func TestMatVec(t *testing.T) {
	a := NewFilledDense(t, 2, 3, []float64{1, 0, 2, 0, 3, 0})
	y, err := matrix.MatVec(a, []float64{1, 1, 1})
	require.NoError(t, err)
	require.Equal(t, []float64{3, 3}, y)

	y, err = matrix.MatVec(hide{a}, []float64{1, 1, 1})
	require.NoError(t, err)
	require.Equal(t, []float64{3, 3}, y)

	_, err = matrix.MatVec(a, []float64{1, 1})
	require.ErrorIs(t, err, matrix.ErrDimensionMismatch)
}

// TestMulDiag checks both diagonal scalings against explicit products.
func TestMulDiag(t *testing.T) {
	x := RandFilledDense(t, 3, 4, 7)
	left := []float64{1, 2, 3}
	right := []float64{0.5, 1, 2, 4}

	dl := MustDense(t, 3, 3)
	for i, v := range left {
		require.NoError(t, dl.Set(i, i, v))
	}
	dr := MustDense(t, 4, 4)
	for i, v := range right {
		require.NoError(t, dr.Set(i, i, v))
	}

	got, err := matrix.MulDiagLeft(left, x)
	require.NoError(t, err)
	want, err := matrix.Mul(dl, x)
	require.NoError(t, err)
	CompareClose(t, got, want, 1e-15, 0)

	got, err = matrix.MulDiagRight(x, right)
	require.NoError(t, err)
	want, err = matrix.Mul(x, dr)
	require.NoError(t, err)
	CompareClose(t, got, want, 1e-15, 0)

	_, err = matrix.MulDiagLeft(right, x)
	require.ErrorIs(t, err, matrix.ErrDimensionMismatch)
}

// TestAllClose covers tolerance semantics and shape checks.
func TestAllClose(t *testing.T) {
	a := NewFilledDense(t, 1, 2, []float64{1, 100})
	b := NewFilledDense(t, 1, 2, []float64{1 + 1e-10, 100 + 1e-7})

	ok, err := matrix.AllClose(a, b, 1e-8, 1e-9)
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = matrix.AllClose(a, b, 0, 0)
	require.NoError(t, err)
	require.False(t, ok)

	_, err = matrix.AllClose(a, MustDense(t, 2, 1), 0, 0)
	require.ErrorIs(t, err, matrix.ErrDimensionMismatch)
}
