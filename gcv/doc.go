// SPDX-License-Identifier: MIT

// Package gcv evaluates the generalized cross-validation score of a
// penalized finite-element fit and its first two derivatives in λ.
//
// For a carrier with s observations, q covariates and blocks T, E, R:
//
//	M(λ) = T + λR
//	S(λ) = Ψ·M⁻¹·E                  smoother
//	dof  = q + tr S                  equivalent degrees of freedom
//	GCV  = s·‖z − ẑ‖² / (s − dof)²
//
// with dS = −Ψ·M⁻¹R·M⁻¹E and d²S = 2·Ψ·(M⁻¹R)²·M⁻¹E.
//
// Two evaluators share the Evaluator contract:
//
//   - Exact factors M(λ) (Cholesky) and forms S, dS, d²S densely. Results are
//     deterministic bit for bit.
//   - Stochastic never factors M: traces come from Hutchinson estimates over
//     fixed Rademacher probes and every solve is a Jacobi-preconditioned CG.
//     Probes are drawn once from the configured seed, so repeated runs agree.
//
// A λ for which the fit is undefined (λ < 0, non-finite λ, singular M, or
// s − dof ≤ 0) is not an error: Evaluate returns Degenerate with Score +Inf,
// which any minimizer naturally avoids.
//
// Evaluators only read the carrier and are safe for concurrent Evaluate calls.
package gcv
