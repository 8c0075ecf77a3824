// SPDX-License-Identifier: MIT

// Package optdata holds the optimization configuration of the smoothing-parameter
// search: which loss is minimized, how the degrees of freedom are evaluated,
// which strategy drives the search, and the numeric knobs of each strategy.
//
// Configuration is a plain value (Config) that callers build in code, start
// from DefaultConfig, or read from YAML with ParseConfig / LoadConfig:
//
//	loss: GCV
//	dof_evaluation: stochastic
//	criterion: newton
//	tolerance: 0.05
//	max_iter: 40
//	seed: 7
//	probes: 200
//
// Validate rejects (loss, dof, criterion) combinations that have no
// implementation before any matrix work is done.
package optdata
