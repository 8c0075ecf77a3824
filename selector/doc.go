// SPDX-License-Identifier: MIT

// Package selector is the composition point of a smoothing-parameter search:
// it validates the optimization configuration, builds the carrier variant
// matching the data, picks the evaluator (exact or stochastic) and the
// strategy (batch, Newton, Newton with finite differences), runs the search,
// and applies the chosen λ to the model.
//
// Configuration errors are reported before any matrix is built.
package selector
