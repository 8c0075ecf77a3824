// SPDX-License-Identifier: MIT

// Package matrix: functional configuration for numeric policy and iterative
// solvers. This file defines:
//   - documented defaults (constants),
//   - Option / Options (functional options with internal state),
//   - WithX constructors with strong validation (panic on nonsensical values),
//   - gatherOptions helper (internal) that enforces invariants.
//
// Design goals:
//   - Deterministic behavior: no global state, no implicit randomness.
//   - No dead switches: each flag impacts behavior and is covered by tests.
//   - Safe by construction: panic only on invalid parameters (programmer error).
package matrix

import "math"

// ---------- Defaults (single source of truth) ----------

// Numeric policy.
const (
	// DefaultEpsilon defines the non-negative tolerance used by structural checks
	// (symmetry of weighting matrices, 0/1 detection in Sparse.PermutationIndex).
	DefaultEpsilon = 1e-9

	// DefaultValidateNaNInf toggles strict finite-value validation on Set/AddAt.
	DefaultValidateNaNInf = true
)

// Iterative solver policy (CG).
const (
	// DefaultCGTolerance is the relative residual ‖r‖/‖b‖ at which CG stops.
	DefaultCGTolerance = 1e-10

	// DefaultCGMaxIterFactor bounds CG iterations to factor*n for an n×n system.
	// In exact arithmetic CG terminates in n steps; the slack absorbs rounding.
	DefaultCGMaxIterFactor = 10
)

// ---------- Internal panic messages (no magic strings) ----------

const (
	panicEpsilonInvalid   = "matrix: WithEpsilon: eps must be finite, non-negative"
	panicToleranceInvalid = "matrix: WithTolerance: tol must be finite and > 0"
	panicMaxIterInvalid   = "matrix: WithMaxIter: maxIter must be > 0"
)

// ---------- Public option type (functional) ----------

// Option mutates internal options. Safe to apply repeatedly (idempotent).
// Constructors MUST panic only on nonsensical values (programmer error).
type Option func(*Options)

// Options stores the effective configuration after applying Option setters.
// Fields are unexported; public entry points accept `...Option`.
type Options struct {
	eps       float64 // >= 0; DefaultEpsilon
	tol       float64 // > 0; DefaultCGTolerance
	maxIter   int     // 0 ⇒ DefaultCGMaxIterFactor*n
	jacobiOff bool    // disable Jacobi preconditioning (plain CG)
}

// WithEpsilon sets the numeric tolerance eps used by structural checks.
// Panics with a stable message when eps is negative or non-finite.
func WithEpsilon(eps float64) Option {
	if math.IsNaN(eps) || math.IsInf(eps, 0) || eps < 0 {
		panic(panicEpsilonInvalid)
	}

	return func(o *Options) { o.eps = eps }
}

// WithTolerance sets the CG relative residual tolerance.
// Panics when tol is not a finite positive number.
func WithTolerance(tol float64) Option {
	if math.IsNaN(tol) || math.IsInf(tol, 0) || tol <= 0 {
		panic(panicToleranceInvalid)
	}

	return func(o *Options) { o.tol = tol }
}

// WithMaxIter caps the number of CG iterations.
// Panics when maxIter <= 0.
func WithMaxIter(maxIter int) Option {
	if maxIter <= 0 {
		panic(panicMaxIterInvalid)
	}

	return func(o *Options) { o.maxIter = maxIter }
}

// WithoutPreconditioner runs plain (unpreconditioned) CG.
// Intended for tests comparing preconditioned and plain iterations.
func WithoutPreconditioner() Option {
	return func(o *Options) { o.jacobiOff = true }
}

// defaultOptions returns the documented defaults.
func defaultOptions() Options {
	return Options{
		eps: DefaultEpsilon,
		tol: DefaultCGTolerance,
	}
}

// gatherOptions applies opts over defaults in order; later options win.
// Nil options are skipped.
func gatherOptions(opts ...Option) Options {
	o := defaultOptions()
	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}

	return o
}
