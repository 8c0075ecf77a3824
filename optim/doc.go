// SPDX-License-Identifier: MIT

// Package optim searches the smoothing parameter λ that minimizes a GCV
// evaluator.
//
// Strategies:
//
//   - Newton: Newton's method on the score's analytic derivatives, or on
//     central finite differences (optdata.NewtonFD). Steps are safeguarded:
//     non-convex curvature moves downhill by doubling or halving λ, candidates
//     stay positive, growth per step is capped at ×10 and a step that raises
//     the score is halved until it does not or falls under the tolerance.
//   - Batch: evaluates a fixed grid, optionally in parallel, and keeps the
//     minimizer (first on ties).
//
// A search walks the state machine Init → Iterating → {Converged,
// MaxIterReached, Diverged}; a Checker records which stopping rule fired.
// Neither MaxIterReached nor Diverged is an error: the best λ seen is
// returned together with the state.
package optim
