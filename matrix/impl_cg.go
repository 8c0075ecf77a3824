// SPDX-License-Identifier: MIT

// Package matrix - Jacobi-preconditioned conjugate gradient.
//
// Purpose:
//   - Solve SPD systems M·x = b without a factorization (stochastic GCV path).
//   - Jacobi scaling neutralizes the 1e20 Dirichlet rows: after preconditioning
//     those rows decouple and CG spends no iterations on them.
//
// Stopping rule: ‖b − M·x‖₂ ≤ tol·‖b‖₂ (tol from WithTolerance), at most
// maxIter iterations (WithMaxIter, default DefaultCGMaxIterFactor·n).

package matrix

import (
	"gonum.org/v1/gonum/floats"
)

const opCG = "CG"

// CGResult reports the outcome of a CG solve.
type CGResult struct {
	X          []float64 // solution estimate
	Iterations int       // iterations performed
	Residual   float64   // final ‖b − M·x‖₂ / ‖b‖₂ (0 when b = 0)
}

// CG solves a·x = b for symmetric positive-definite a.
//
// Errors:
//   - ErrNilMatrix, ErrDimensionMismatch on bad shapes.
//   - ErrSingular when a non-positive diagonal or curvature is met.
//   - ErrNotConverged when the tolerance is not reached in maxIter steps;
//     the partial result is still returned.
func CG(a *Dense, b []float64, opts ...Option) (CGResult, error) {
	if a == nil {
		return CGResult{}, matrixErrorf(opCG, ErrNilMatrix)
	}
	if a.r != a.c {
		return CGResult{}, matrixErrorf(opCG, ErrDimensionMismatch)
	}
	n := a.r
	if err := ValidateVecLen(b, n); err != nil {
		return CGResult{}, matrixErrorf(opCG, err)
	}
	o := gatherOptions(opts...)
	maxIter := o.maxIter
	if maxIter == 0 {
		maxIter = DefaultCGMaxIterFactor * n
	}

	x := make([]float64, n)
	bnorm := floats.Norm(b, 2)
	if bnorm == 0 {
		return CGResult{X: x}, nil
	}

	// Inverse diagonal for the Jacobi preconditioner.
	inv := make([]float64, n)
	for i := 0; i < n; i++ {
		d := a.data[i*n+i]
		if d <= 0 {
			return CGResult{X: x}, matrixErrorf(opCG, ErrSingular)
		}
		inv[i] = 1 / d
		if o.jacobiOff {
			inv[i] = 1
		}
	}

	r := append([]float64(nil), b...) // x0 = 0 ⇒ r0 = b
	z := make([]float64, n)
	floats.MulTo(z, inv, r)
	p := append([]float64(nil), z...)
	ap := make([]float64, n)
	rz := floats.Dot(r, z)

	res := CGResult{X: x, Residual: 1}
	for it := 1; it <= maxIter; it++ {
		denseMulVecTo(ap, a, p)
		pAp := floats.Dot(p, ap)
		if pAp <= 0 {
			return res, matrixErrorf(opCG, ErrSingular)
		}
		alpha := rz / pAp
		floats.AddScaled(x, alpha, p)
		floats.AddScaled(r, -alpha, ap)

		res.Iterations = it
		res.Residual = floats.Norm(r, 2) / bnorm
		if res.Residual <= o.tol {
			return res, nil
		}

		floats.MulTo(z, inv, r)
		rzNext := floats.Dot(r, z)
		beta := rzNext / rz
		rz = rzNext
		// p = z + beta*p
		floats.AddScaledTo(p, z, beta, p)
	}

	return res, matrixErrorf(opCG, ErrNotConverged)
}

// denseMulVecTo writes a·x into dst without allocating.
func denseMulVecTo(dst []float64, a *Dense, x []float64) {
	for i := 0; i < a.r; i++ {
		dst[i] = floats.Dot(a.data[i*a.c:(i+1)*a.c], x)
	}
}
