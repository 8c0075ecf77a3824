// SPDX-License-Identifier: MIT

package regression

import (
	"math"
	"sync"

	"go.uber.org/zap"

	"github.com/katalvlaran/fesmooth/blocks"
	"github.com/katalvlaran/fesmooth/matrix"
)

const (
	opNewFEModel = "NewFEModel"
	opSolve      = "FEModel.Solve"
)

// Option configures an FEModel.
type Option func(*modelOptions)

type modelOptions struct {
	logger  *zap.Logger
	penalty float64
}

// WithLogger sets the logger used for per-solve debug records.
func WithLogger(l *zap.Logger) Option {
	return func(o *modelOptions) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithBoundaryPenalty overrides the Dirichlet penalty (default blocks.Penalty).
func WithBoundaryPenalty(pen float64) Option {
	return func(o *modelOptions) { o.penalty = pen }
}

// FEModel is the reference Model: it assembles the λ-free system once and
// solves (B + λP) f = b + λg for each requested λ.
type FEModel struct {
	data    *Data
	ops     Operators
	proj    *Projection   // nil without covariates
	penalty *matrix.Dense // P
	block   *matrix.Dense // B = Ψᵗ·diag(A)·Q·Ψ with boundary rows
	rhs     []float64     // b = Ψᵗ·diag(A)·Q·z with boundary values
	forcing []float64     // g = R1ᵗu, zero on boundary rows; nil when homogeneous
	logger  *zap.Logger

	mu   sync.Mutex
	beta []float64
}

var _ Model = (*FEModel)(nil)

// NewFEModel validates data against ops and assembles the λ-free blocks.
//
// Errors:
//   - Data.Validate failures.
//   - ErrDimensionMismatch when Ψ, R0, R1, areas or forcing disagree with data.
//   - ErrBoundaryOutOfRange for a boundary node outside [0, n).
//   - ErrSingularCovariates, matrix.ErrSingular (mass matrix not SPD).
func NewFEModel(data *Data, ops Operators, opts ...Option) (*FEModel, error) {
	o := modelOptions{logger: zap.NewNop()}
	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}
	if data == nil {
		return nil, regressionErrorf(opNewFEModel, ErrNoObservations)
	}
	if err := data.Validate(); err != nil {
		return nil, err
	}
	if err := checkOperators(data, ops); err != nil {
		return nil, regressionErrorf(opNewFEModel, err)
	}
	n := ops.Psi.Cols()
	for _, id := range data.BCIndices {
		if id < 0 || id >= n {
			return nil, regressionErrorf(opNewFEModel, ErrBoundaryOutOfRange)
		}
	}

	P, err := PenaltyMatrix(ops.Mass, ops.Stiffness)
	if err != nil {
		return nil, regressionErrorf(opNewFEModel, err)
	}

	m := &FEModel{data: data, ops: ops, penalty: P, logger: o.logger}
	if data.HasCovariates() {
		if m.proj, err = NewProjection(data.Covariates); err != nil {
			return nil, err
		}
	}
	if err = m.assemble(o.penalty); err != nil {
		return nil, regressionErrorf(opNewFEModel, err)
	}

	return m, nil
}

// checkOperators validates operator shapes against the data.
func checkOperators(data *Data, ops Operators) error {
	if ops.Psi == nil || ops.Mass == nil || ops.Stiffness == nil {
		return ErrDimensionMismatch
	}
	s, n := data.NumObservations(), ops.Psi.Cols()
	if ops.Psi.Rows() != s {
		return ErrDimensionMismatch
	}
	for _, op := range []*matrix.Dense{ops.Mass, ops.Stiffness} {
		if op.Rows() != n || op.Cols() != n {
			return ErrDimensionMismatch
		}
	}
	if data.NumberOfRegions() > 0 && len(ops.Areas) != s {
		return ErrDimensionMismatch
	}
	if ops.Forcing != nil && len(ops.Forcing) != n {
		return ErrDimensionMismatch
	}

	return nil
}

// PenaltyMatrix returns P = R1ᵗ·R0⁻¹·R1.
func PenaltyMatrix(mass, stiffness *matrix.Dense) (*matrix.Dense, error) {
	f, err := matrix.FactorizeSPD(mass)
	if err != nil {
		return nil, err
	}
	X, err := f.Solve(stiffness)
	if err != nil {
		return nil, err
	}
	R1t, err := matrix.Transpose(stiffness)
	if err != nil {
		return nil, err
	}

	return matrix.Mul(R1t, X)
}

// assemble builds B, b and g.
func (m *FEModel) assemble(pen float64) error {
	n := m.NumNodes()
	areas := m.ops.Areas
	if areas == nil {
		areas = make([]float64, m.data.NumObservations())
		for i := range areas {
			areas[i] = 1
		}
	}
	bc := blocks.Boundary{Indices: m.data.BCIndices, Weight: pen}

	B, err := matrix.NewDense(n, n)
	if err != nil {
		return err
	}
	// b = Ψᵗ·(A ∘ Q·z), formed without the dense cross block.
	w := append([]float64(nil), m.data.Observations...)
	if m.proj != nil {
		if err = blocks.AddTWeightedAreal(B, m.ops.Psi, areas, m.proj.Q, bc); err != nil {
			return err
		}
		if w, err = matrix.MatVec(m.proj.Q, w); err != nil {
			return err
		}
	} else if err = blocks.AddTAreal(B, m.ops.Psi, areas, bc); err != nil {
		return err
	}
	for i := range w {
		w[i] *= areas[i]
	}
	rhs, err := m.ops.Psi.MulTransVec(w)
	if err != nil {
		return err
	}
	for i, id := range m.data.BCIndices {
		rhs[id] = bc.Pen() * m.data.BCValues[i]
	}

	if m.ops.Forcing != nil {
		R1t, err := matrix.Transpose(m.ops.Stiffness)
		if err != nil {
			return err
		}
		if m.forcing, err = matrix.MatVec(R1t, m.ops.Forcing); err != nil {
			return err
		}
		for _, id := range m.data.BCIndices {
			m.forcing[id] = 0
		}
	}

	m.block, m.rhs = B, rhs

	return nil
}

// IsSpatiallyVarying reports whether a forcing term is present.
func (m *FEModel) IsSpatiallyVarying() bool { return m.ops.Forcing != nil }

// Forcing returns a copy of g (nil when homogeneous).
func (m *FEModel) Forcing() []float64 {
	if m.forcing == nil {
		return nil
	}
	return append([]float64(nil), m.forcing...)
}

// NumNodes returns n.
func (m *FEModel) NumNodes() int { return m.ops.Psi.Cols() }

// Psi returns the observation operator.
func (m *FEModel) Psi() *matrix.Sparse { return m.ops.Psi }

// Penalty returns P.
func (m *FEModel) Penalty() *matrix.Dense { return m.penalty }

// RegionAreas returns the areal weights (nil for pointwise data).
func (m *FEModel) RegionAreas() []float64 { return m.ops.Areas }

// Solve returns f(λ). When covariates are present, β(λ) = (WᵗW)⁻¹Wᵗ(z − Ψf)
// is stored for Beta. Repeated calls with the same λ return identical results.
func (m *FEModel) Solve(lambda float64) ([]float64, error) {
	if lambda < 0 || math.IsNaN(lambda) || math.IsInf(lambda, 0) {
		return nil, regressionErrorf(opSolve, ErrNegativeLambda)
	}
	M, err := matrix.AddScaled(m.block, m.penalty, lambda)
	if err != nil {
		return nil, regressionErrorf(opSolve, err)
	}
	b := append([]float64(nil), m.rhs...)
	for i, g := range m.forcing {
		b[i] += lambda * g
	}
	F, err := matrix.FactorizeSPD(M)
	if err != nil {
		return nil, regressionErrorf(opSolve, err)
	}
	f, err := F.SolveVec(b)
	if err != nil {
		return nil, regressionErrorf(opSolve, err)
	}

	var beta []float64
	if m.proj != nil {
		fit, err := m.ops.Psi.MulVec(f)
		if err != nil {
			return nil, regressionErrorf(opSolve, err)
		}
		r := make([]float64, len(fit))
		for i := range r {
			r[i] = m.data.Observations[i] - fit[i]
		}
		if beta, err = m.proj.Coefficients(r); err != nil {
			return nil, regressionErrorf(opSolve, err)
		}
	}
	m.mu.Lock()
	m.beta = beta
	m.mu.Unlock()

	m.logger.Debug("penalized system solved",
		zap.Float64("lambda", lambda),
		zap.Int("nodes", len(f)),
		zap.Float64("cond", F.Cond()),
	)

	return f, nil
}

// Beta returns a copy of the coefficients from the last Solve.
func (m *FEModel) Beta() []float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.beta == nil {
		return nil
	}
	return append([]float64(nil), m.beta...)
}
