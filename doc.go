// Package fesmooth selects the smoothing parameter λ of penalized
// finite-element regression by generalized cross-validation (GCV).
//
// A model fits nodal coefficients f to observations z by minimizing
//
//	Σ A_i (z_i − (Ψf)_i − w_iᵗβ)² + λ‖Δf‖²
//
// on a mesh. For each candidate λ the package evaluates
//
//	GCV(λ) = s·‖z − ẑ(λ)‖² / (s − (q + tr S(λ)))²
//
// together with its first two derivatives, and drives a search over λ.
//
// Packages, bottom-up:
//
//	matrix/      dense kernels, sparse observation operators, Cholesky and CG solvers
//	blocks/      λ-free system blocks T and E with boundary penalization
//	regression/  interval mesh, observation operators, covariate projection, FE model
//	optdata/     optimization configuration and its YAML form
//	carrier/     per-problem view (plain, weighted, areal, weighted areal)
//	gcv/         exact and stochastic (Hutchinson) GCV evaluators
//	optim/       batch grid search and safeguarded Newton with a stop-state machine
//	selector/    composition: validate, build, evaluate, search, apply
//	cmd/fesmooth  command-line front end reading a YAML problem file
//
// Quick example:
//
//	mesh, _ := regression.NewInterval(10, 1)
//	psi, _ := regression.NodeObservationOperator([]int{0, 2, 3, 5, 7, 9}, 10)
//	data := &regression.Data{Observations: z}
//	model, _ := regression.NewFEModel(data, regression.Operators{
//		Psi: psi, Mass: mesh.Mass(), Stiffness: mesh.Stiffness(),
//	})
//	sol, _ := selector.Run(ctx, data, model, optdata.DefaultConfig())
//	fmt.Println(sol.Diagnostics.Lambda, sol.Diagnostics.State)
//
//	go get github.com/katalvlaran/fesmooth
package fesmooth
