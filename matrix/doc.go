// Package matrix is the linear-algebra substrate of fesmooth.
//
// The matrix package provides:
//
//   - Dense: a row-major float64 matrix with error-returning accessors and an
//     optional finite-only numeric policy.
//   - Kernels on any Matrix: Add, Sub, Mul, Transpose, Scale, MatVec, MulDiag,
//     Trace, AllClose. Every kernel has a *Dense fast path and a generic
//     At/Set fallback with identical results.
//   - Sparse: a CSR matrix for tall, very sparse observation operators
//     (rows = observations, cols = mesh nodes), with transposed products and
//     detection of the 0/1 "one stored one per row" permutation structure.
//   - SPDFactor: Cholesky factorization of symmetric positive definite
//     systems (backed by gonum/mat) with matrix and vector solves.
//   - CG: Jacobi-preconditioned conjugate gradients for SPD systems when a
//     factorization is too expensive to repeat.
//
// All user-triggered failures are reported through the sentinel errors in
// errors.go; callers match them with errors.Is.
package matrix
