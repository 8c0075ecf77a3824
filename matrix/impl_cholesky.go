// SPDX-License-Identifier: MIT

// Package matrix - SPD factorization backed by gonum's Cholesky.
//
// Purpose:
//   - Factor the penalized system M(λ) = T + λR once per trial λ and reuse the
//     factor for every right-hand side (E, R, the observation vector).
//   - Translate gonum's outcomes into the package sentinels: a failed
//     factorization is ErrSingular; a large condition number is tolerated
//     because Dirichlet penalties of 1e20 make it the normal case.
//
// AI-Hints:
//   - Only the upper triangle of the input is read. Callers need not symmetrize.
//   - Solve and SolveVec return fresh storage; the factor is read-only and safe
//     to share between goroutines once built.

package matrix

import (
	"errors"

	"gonum.org/v1/gonum/mat"
)

const (
	opFactorizeSPD = "FactorizeSPD"
	opSolve        = "SPDFactor.Solve"
	opSolveVec     = "SPDFactor.SolveVec"
)

// SPDFactor is a Cholesky factorization of a symmetric positive-definite matrix.
type SPDFactor struct {
	n    int
	chol mat.Cholesky
}

// FactorizeSPD factors the symmetric matrix whose upper triangle is held by a.
//
// Errors:
//   - ErrNilMatrix, ErrDimensionMismatch (not square).
//   - ErrSingular when a is not numerically positive definite.
func FactorizeSPD(a *Dense) (*SPDFactor, error) {
	if a == nil {
		return nil, matrixErrorf(opFactorizeSPD, ErrNilMatrix)
	}
	if a.r != a.c {
		return nil, matrixErrorf(opFactorizeSPD, ErrDimensionMismatch)
	}

	// mat.NewSymDense reads the upper triangle of the row-major buffer; the
	// buffer is copied so later writes to a do not alias the factor input.
	sym := mat.NewSymDense(a.r, append([]float64(nil), a.data...))
	f := &SPDFactor{n: a.r}
	if ok := f.chol.Factorize(sym); !ok {
		return nil, matrixErrorf(opFactorizeSPD, ErrSingular)
	}

	return f, nil
}

// Cond returns the estimated 2-norm condition number of the factored matrix.
func (f *SPDFactor) Cond() float64 { return f.chol.Cond() }

// Solve returns X with A·X = B for an n×k right-hand side.
func (f *SPDFactor) Solve(b *Dense) (*Dense, error) {
	if b == nil {
		return nil, matrixErrorf(opSolve, ErrNilMatrix)
	}
	if b.r != f.n {
		return nil, matrixErrorf(opSolve, ErrDimensionMismatch)
	}

	var x mat.Dense
	if err := acceptIllConditioned(f.chol.SolveTo(&x, mat.NewDense(b.r, b.c, b.data))); err != nil {
		return nil, matrixErrorf(opSolve, err)
	}
	out, err := NewDense(b.r, b.c)
	if err != nil {
		return nil, matrixErrorf(opSolve, err)
	}
	for i := 0; i < b.r; i++ {
		for j := 0; j < b.c; j++ {
			out.data[i*b.c+j] = x.At(i, j)
		}
	}

	return out, nil
}

// SolveVec returns x with A·x = b.
func (f *SPDFactor) SolveVec(b []float64) ([]float64, error) {
	if err := ValidateVecLen(b, f.n); err != nil {
		return nil, matrixErrorf(opSolveVec, err)
	}

	var x mat.VecDense
	if err := acceptIllConditioned(f.chol.SolveVecTo(&x, mat.NewVecDense(f.n, append([]float64(nil), b...)))); err != nil {
		return nil, matrixErrorf(opSolveVec, err)
	}
	out := make([]float64, f.n)
	for i := range out {
		out[i] = x.AtVec(i)
	}

	return out, nil
}

// acceptIllConditioned drops gonum's mat.Condition warning (the solve result is
// still written) and passes any other error through.
func acceptIllConditioned(err error) error {
	if err == nil {
		return nil
	}
	var cond mat.Condition
	if errors.As(err, &cond) {
		return nil
	}

	return err
}
