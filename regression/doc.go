// Package regression holds the collaborators that the smoothing-parameter
// search consumes: the regression data (observations, covariates, regional
// incidence, Dirichlet boundary conditions), the Model contract of a fitted
// finite-element regression, and a reference FEModel implementing it.
//
// The penalized problem solved by FEModel for a given λ is
//
//	(Ψᵗ·diag(A)·Q·Ψ + λ·P) f = Ψᵗ·diag(A)·Q·z + λ·R1ᵗu
//
// with P = R1ᵗ·R0⁻¹·R1 (R0 mass, R1 stiffness), Q = I − W(WᵗW)⁻¹Wᵗ when
// covariates W are present (Q = I otherwise), A the region areas for areal
// data (A = 1 otherwise) and u an optional space-varying forcing term.
// Boundary rows carry the Dirichlet penalty of package blocks.
//
// Interval provides P1 operators on a uniform 1D mesh. It is the assembly
// used by tests, examples and the command-line tool; real meshes plug in
// through Operators.
package regression
