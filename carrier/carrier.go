// SPDX-License-Identifier: MIT
package carrier

import (
	"go.uber.org/zap"

	"github.com/katalvlaran/fesmooth/blocks"
	"github.com/katalvlaran/fesmooth/matrix"
	"github.com/katalvlaran/fesmooth/optdata"
	"github.com/katalvlaran/fesmooth/regression"
)

// Carrier is the read-only view of one smoothing problem.
//
// Matrices returned by the accessors are owned by the carrier and must not
// be modified; they are safe for concurrent reads.
type Carrier interface {
	// Variant returns the structural configuration.
	Variant() Variant
	// Apply solves the penalized system for λ and returns the nodal coefficients.
	Apply(lambda float64) ([]float64, error)
	// Model returns the underlying regression model (betas after Apply).
	Model() regression.Model
	// OptData returns the optimization configuration.
	OptData() optdata.Config

	Observations() []float64
	NumObservations() int
	NumNodes() int
	NumCovariates() int
	BoundaryIndices() []int

	// Psi returns the s×n observation operator.
	Psi() *matrix.Sparse
	// Penalty returns R = R1ᵗR0⁻¹R1.
	Penalty() *matrix.Dense
	// T returns the n×n data block with boundary penalties.
	T() *matrix.Dense
	// E returns the n×s cross block.
	E() *matrix.Dense
	// Offset returns the terms of the right-hand side E·z + fixed + λ·forcing
	// that Apply solves: fixed moves boundary rows to pen·value and forcing
	// is the model's g. Either is nil when zero.
	Offset() (fixed, forcing []float64)

	// ZHat returns the fitted vector for an explicit smoother S.
	ZHat(S *matrix.Dense) ([]float64, error)
	// Fitted returns the fitted vector given sz = S·z.
	Fitted(sz []float64) ([]float64, error)
	// Project maps a smoother product to fitted-value space (Q·v when
	// weighted, v otherwise). Fitted-value derivatives use it.
	Project(v []float64) ([]float64, error)
}

// WeightedCarrier is implemented by the covariate variants.
type WeightedCarrier interface {
	Carrier
	Q() *matrix.Dense
	H() *matrix.Dense
}

// ArealCarrier is implemented by the regional variants.
type ArealCarrier interface {
	Carrier
	Areas() []float64
}

// base holds what every variant shares.
type base struct {
	model   regression.Model
	data    *regression.Data
	cfg     optdata.Config
	psi     *matrix.Sparse
	penalty *matrix.Dense
	t       *matrix.Dense
	e       *matrix.Dense
	bc      blocks.Boundary
	nodeMap []int // non-nil when the shortcut path built T and E
	fixed   []float64
	forcing []float64
	logger  *zap.Logger
}

// newBase runs the construction-time checks common to all variants.
func newBase(op string, data *regression.Data, model regression.Model, cfg optdata.Config, o options) (base, error) {
	if data == nil || model == nil {
		return base{}, carrierErrorf(op, ErrNilInput)
	}
	if err := data.Validate(); err != nil {
		return base{}, carrierErrorf(op, err)
	}
	psi, R := model.Psi(), model.Penalty()
	if psi == nil || R == nil {
		return base{}, carrierErrorf(op, ErrNilInput)
	}
	n := model.NumNodes()
	if psi.Rows() != data.NumObservations() || psi.Cols() != n {
		return base{}, carrierErrorf(op, ErrDimensionMismatch)
	}
	if R.Rows() != n || R.Cols() != n {
		return base{}, carrierErrorf(op, ErrDimensionMismatch)
	}
	for _, id := range data.BCIndices {
		if id < 0 || id >= n {
			return base{}, carrierErrorf(op, ErrBoundaryOutOfRange)
		}
	}
	t, err := matrix.NewDense(n, n)
	if err != nil {
		return base{}, carrierErrorf(op, err)
	}

	return base{
		model:   model,
		data:    data,
		cfg:     cfg,
		psi:     psi,
		penalty: R,
		t:       t,
		bc:      blocks.Boundary{Indices: data.BCIndices, Weight: o.penalty},
		logger:  o.logger,
	}, nil
}

func (b *base) Model() regression.Model { return b.model }
func (b *base) OptData() optdata.Config { return b.cfg }
func (b *base) Observations() []float64 { return b.data.Observations }
func (b *base) NumObservations() int { return b.data.NumObservations() }
func (b *base) NumNodes() int { return b.model.NumNodes() }
func (b *base) NumCovariates() int { return b.data.NumCovariates() }
func (b *base) BoundaryIndices() []int { return b.bc.Indices }
func (b *base) Psi() *matrix.Sparse { return b.psi }
func (b *base) Penalty() *matrix.Dense { return b.penalty }
func (b *base) T() *matrix.Dense { return b.t }
func (b *base) E() *matrix.Dense { return b.e }
func (b *base) Offset() ([]float64, []float64) { return b.fixed, b.forcing }

// buildOffset derives the fixed and forcing terms once E is known.
func (b *base) buildOffset() error {
	b.forcing = b.model.Forcing()
	if b.bc.Empty() {
		return nil
	}
	ez, err := matrix.MatVec(b.e, b.data.Observations)
	if err != nil {
		return err
	}
	b.fixed = make([]float64, len(ez))
	pen := b.bc.Pen()
	for i, id := range b.bc.Indices {
		b.fixed[id] = pen*b.data.BCValues[i] - ez[id]
	}
	return nil
}

// NodeMap returns k and true when T and E were built on the node-map shortcut.
func (b *base) NodeMap() ([]int, bool) { return b.nodeMap, b.nodeMap != nil }

// Apply delegates to the model. Equal λ give bit-identical results.
func (b *base) Apply(lambda float64) ([]float64, error) {
	f, err := b.model.Solve(lambda)
	if err != nil {
		return nil, carrierErrorf("Apply", err)
	}
	b.logger.Debug("carrier applied", zap.Float64("lambda", lambda), zap.Int("nodes", len(f)))

	return f, nil
}

// unweighted supplies the fitted-value operations without Q.
type unweighted struct {
	z []float64
}

func (u unweighted) ZHat(S *matrix.Dense) ([]float64, error) {
	return blocks.ZHatPlain(S, u.z)
}

func (u unweighted) Fitted(sz []float64) ([]float64, error) {
	if len(sz) != len(u.z) {
		return nil, carrierErrorf("Fitted", ErrDimensionMismatch)
	}
	return append([]float64(nil), sz...), nil
}

func (u unweighted) Project(v []float64) ([]float64, error) {
	if len(v) != len(u.z) {
		return nil, carrierErrorf("Project", ErrDimensionMismatch)
	}
	return append([]float64(nil), v...), nil
}

// weighting supplies Q, H and the weighted fitted-value operations.
type weighting struct {
	z    []float64
	proj *regression.Projection
}

func newWeighting(op string, data *regression.Data) (weighting, error) {
	proj, err := regression.NewProjection(data.Covariates)
	if err != nil {
		return weighting{}, carrierErrorf(op, err)
	}
	if proj.Q.Rows() != data.NumObservations() {
		return weighting{}, carrierErrorf(op, ErrDimensionMismatch)
	}
	return weighting{z: data.Observations, proj: proj}, nil
}

// Q returns I − H.
func (w weighting) Q() *matrix.Dense { return w.proj.Q }

// H returns W(WᵗW)⁻¹Wᵗ.
func (w weighting) H() *matrix.Dense { return w.proj.H }

func (w weighting) ZHat(S *matrix.Dense) ([]float64, error) {
	return blocks.ZHatWeighted(w.proj.H, w.proj.Q, S, w.z)
}

func (w weighting) Fitted(sz []float64) ([]float64, error) {
	return blocks.FittedWeighted(w.proj.H, w.proj.Q, sz, w.z)
}

func (w weighting) Project(v []float64) ([]float64, error) {
	return matrix.MatVec(w.proj.Q, v)
}

// regional supplies A.
type regional struct {
	areas []float64
}

// Areas returns the region areas.
func (r regional) Areas() []float64 { return r.areas }

func newRegional(op string, data *regression.Data, model regression.Model) (regional, error) {
	areas := model.RegionAreas()
	if len(areas) != data.NumberOfRegions() {
		return regional{}, carrierErrorf(op, ErrDimensionMismatch)
	}
	return regional{areas: areas}, nil
}
