// SPDX-License-Identifier: MIT

package regression

import (
	"github.com/katalvlaran/fesmooth/matrix"
)

// Model is a fitted finite-element regression model as seen by the
// smoothing-parameter search.
type Model interface {
	// IsSpatiallyVarying reports whether the PDE carries a space-varying forcing term.
	IsSpatiallyVarying() bool
	// NumNodes returns the number of mesh nodes n.
	NumNodes() int
	// Psi returns the s×n observation operator.
	Psi() *matrix.Sparse
	// Penalty returns the n×n penalty matrix P = R1ᵗR0⁻¹R1.
	Penalty() *matrix.Dense
	// RegionAreas returns the areal weights A (nil for pointwise data).
	RegionAreas() []float64
	// Solve solves the penalized system for λ and returns the nodal coefficients f.
	Solve(lambda float64) ([]float64, error)
	// Beta returns the covariate coefficients of the last Solve (nil without covariates).
	Beta() []float64
	// Forcing returns g = R1ᵗu with boundary rows cleared, the vector Solve
	// adds as λ·g to the right-hand side (nil for a homogeneous PDE).
	Forcing() []float64
}

// Operators are the assembled finite-element matrices of a mesh.
type Operators struct {
	Psi       *matrix.Sparse // s×n observation operator
	Mass      *matrix.Dense  // R0, n×n
	Stiffness *matrix.Dense  // R1, n×n
	Areas     []float64      // region areas, len s; nil for pointwise data
	Forcing   []float64      // u, len n; nil for a homogeneous PDE
}
