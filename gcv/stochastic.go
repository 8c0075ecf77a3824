// SPDX-License-Identifier: MIT
package gcv

import (
	"errors"

	"go.uber.org/zap"
	"gonum.org/v1/gonum/floats"

	"github.com/katalvlaran/fesmooth/carrier"
	"github.com/katalvlaran/fesmooth/matrix"
	"github.com/katalvlaran/fesmooth/optdata"
)

const opStochastic = "Stochastic.Evaluate"

// Stochastic evaluates GCV with Hutchinson trace estimates:
//
//	tr S ≈ (1/p) Σ uᵢᵗ S uᵢ,   uᵢ ∈ {−1, +1}ˢ
//
// and likewise for dS and d²S. Each probe costs three CG solves with M(λ)
// (v = M⁻¹Eu, w = M⁻¹Rv, x = M⁻¹Rw); the fitted values use three more
// solves on E·z. No factorization is formed.
type Stochastic struct {
	c      carrier.Carrier
	logger *zap.Logger
	probes [][]float64
	cgOpts []matrix.Option
	recorder
}

var _ Evaluator = (*Stochastic)(nil)

// NewStochastic draws the probes once from the configured (or overridden)
// seed; they stay fixed across λ.
func NewStochastic(c carrier.Carrier, opts ...Option) *Stochastic {
	o := gatherOptions(c.OptData(), opts)
	return &Stochastic{
		c:      c,
		logger: o.logger,
		probes: rademacherProbes(o.seed, c.NumObservations(), o.probes),
		cgOpts: o.cgOpts,
	}
}

// Mode returns optdata.Stochastic.
func (st *Stochastic) Mode() optdata.DOFEvaluation { return optdata.Stochastic }

// Carrier returns the evaluated carrier.
func (st *Stochastic) Carrier() carrier.Carrier { return st.c }

// NumProbes returns the number of probe vectors.
func (st *Stochastic) NumProbes() int { return len(st.probes) }

// Evaluate computes estimated GCV(λ), its derivatives and the degrees of freedom.
func (st *Stochastic) Evaluate(lambda float64) (Evaluation, error) {
	ev, err := st.evaluate(lambda)
	if err != nil {
		return Evaluation{}, gcvErrorf(opStochastic, err)
	}
	st.record(ev)
	logEvaluation(st.logger, optdata.Stochastic, ev)

	return ev, nil
}

// errDegenerate short-circuits a chain of solves.
var errDegenerate = errors.New("gcv: degenerate system")

// chain returns M⁻¹b, M⁻¹R·M⁻¹b and (M⁻¹R)²·M⁻¹b.
func (st *Stochastic) chain(M *matrix.Dense, b []float64) (v, w, x []float64, err error) {
	R := st.c.Penalty()
	solve := func(rhs []float64) ([]float64, error) {
		res, err := matrix.CG(M, rhs, st.cgOpts...)
		if errors.Is(err, matrix.ErrSingular) || errors.Is(err, matrix.ErrNotConverged) {
			return nil, errDegenerate
		}
		return res.X, err
	}
	if v, err = solve(b); err != nil {
		return nil, nil, nil, err
	}
	rv, err := matrix.MatVec(R, v)
	if err != nil {
		return nil, nil, nil, err
	}
	if w, err = solve(rv); err != nil {
		return nil, nil, nil, err
	}
	rw, err := matrix.MatVec(R, w)
	if err != nil {
		return nil, nil, nil, err
	}
	if x, err = solve(rw); err != nil {
		return nil, nil, nil, err
	}

	return v, w, x, nil
}

func (st *Stochastic) evaluate(lambda float64) (Evaluation, error) {
	if !validLambda(lambda) {
		return degenerate(lambda), nil
	}
	c := st.c
	M, err := matrix.AddScaled(c.T(), c.Penalty(), lambda)
	if err != nil {
		return Evaluation{}, err
	}
	psi, E := c.Psi(), c.E()

	var m smootherMoments
	for _, u := range st.probes {
		eu, err := matrix.MatVec(E, u)
		if err != nil {
			return Evaluation{}, err
		}
		v, w, x, err := st.chain(M, eu)
		if errors.Is(err, errDegenerate) {
			return degenerate(lambda), nil
		}
		if err != nil {
			return Evaluation{}, err
		}
		su, dsu, ddsu, err := observe(psi, v, w, x)
		if err != nil {
			return Evaluation{}, err
		}
		m.trS += floats.Dot(u, su)
		m.trdS += floats.Dot(u, dsu)
		m.trddS += floats.Dot(u, ddsu)
	}
	p := float64(len(st.probes))
	m.trS /= p
	m.trdS /= p
	m.trddS /= p

	ez, err := matrix.MatVec(E, c.Observations())
	if err != nil {
		return Evaluation{}, err
	}
	v, w, x, err := st.chain(M, ez)
	if errors.Is(err, errDegenerate) {
		return degenerate(lambda), nil
	}
	if err != nil {
		return Evaluation{}, err
	}
	if m.sz, m.dsz, m.ddsz, err = observe(psi, v, w, x); err != nil {
		return Evaluation{}, err
	}
	err = addOffset(c, lambda, &m, func(b []float64) ([]float64, []float64, []float64, error) {
		return st.chain(M, b)
	})
	if errors.Is(err, errDegenerate) {
		return degenerate(lambda), nil
	}
	if err != nil {
		return Evaluation{}, err
	}

	return score(c, lambda, m)
}

// observe maps a solve chain to observation space: (Ψv, −Ψw, 2Ψx).
func observe(psi *matrix.Sparse, v, w, x []float64) (s, ds, dds []float64, err error) {
	if s, err = psi.MulVec(v); err != nil {
		return nil, nil, nil, err
	}
	if ds, err = psi.MulVec(w); err != nil {
		return nil, nil, nil, err
	}
	floats.Scale(-1, ds)
	if dds, err = psi.MulVec(x); err != nil {
		return nil, nil, nil, err
	}
	floats.Scale(2, dds)

	return s, ds, dds, nil
}
