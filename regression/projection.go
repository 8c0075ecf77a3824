// SPDX-License-Identifier: MIT

package regression

import (
	"github.com/katalvlaran/fesmooth/matrix"
)

const (
	opProjection = "Projection"

	// maxCovariateCond bounds cond(WᵗW); beyond it the columns are treated as dependent.
	maxCovariateCond = 1e12
)

// Projection holds the covariate hat matrix H = W(WᵗW)⁻¹Wᵗ, its complement
// Q = I − H and the factor of WᵗW used to recover coefficients.
type Projection struct {
	W   *matrix.Dense
	H   *matrix.Dense
	Q   *matrix.Dense
	wtw *matrix.SPDFactor
}

// NewProjection builds the projection for the s×q covariate matrix W.
// Returns ErrSingularCovariates when W has dependent columns.
func NewProjection(W *matrix.Dense) (*Projection, error) {
	if W == nil {
		return nil, regressionErrorf(opProjection, ErrDimensionMismatch)
	}
	Wt, err := matrix.Transpose(W)
	if err != nil {
		return nil, regressionErrorf(opProjection, err)
	}
	WtW, err := matrix.Mul(Wt, W)
	if err != nil {
		return nil, regressionErrorf(opProjection, err)
	}
	f, err := matrix.FactorizeSPD(WtW)
	if err != nil || f.Cond() > maxCovariateCond {
		return nil, regressionErrorf(opProjection, ErrSingularCovariates)
	}
	// (WᵗW)⁻¹Wᵗ, q×s
	X, err := f.Solve(Wt)
	if err != nil {
		return nil, regressionErrorf(opProjection, err)
	}
	H, err := matrix.Mul(W, X)
	if err != nil {
		return nil, regressionErrorf(opProjection, err)
	}
	I, err := matrix.NewIdentity(W.Rows())
	if err != nil {
		return nil, regressionErrorf(opProjection, err)
	}
	Q, err := matrix.Sub(I, H)
	if err != nil {
		return nil, regressionErrorf(opProjection, err)
	}

	return &Projection{W: W, H: H, Q: Q, wtw: f}, nil
}

// Coefficients returns β = (WᵗW)⁻¹Wᵗr for a residual-like vector r.
func (p *Projection) Coefficients(r []float64) ([]float64, error) {
	Wt, err := matrix.Transpose(p.W)
	if err != nil {
		return nil, regressionErrorf(opProjection, err)
	}
	wtr, err := matrix.MatVec(Wt, r)
	if err != nil {
		return nil, regressionErrorf(opProjection, err)
	}

	return p.wtw.SolveVec(wtr)
}
