// SPDX-License-Identifier: MIT
package gcv

import (
	"errors"

	"go.uber.org/zap"

	"github.com/katalvlaran/fesmooth/carrier"
	"github.com/katalvlaran/fesmooth/matrix"
	"github.com/katalvlaran/fesmooth/optdata"
)

const opExact = "Exact.Evaluate"

// Exact evaluates GCV through a Cholesky factorization of M(λ).
//
// Per λ: one n×n factorization, solves against E (n×s) and R (n×n), and the
// dense products K·V and K·K·V with K = M⁻¹R, V = M⁻¹E. Complexity O(n³ + n²s).
type Exact struct {
	c      carrier.Carrier
	logger *zap.Logger
	recorder
}

var _ Evaluator = (*Exact)(nil)

// NewExact returns an exact evaluator over c.
func NewExact(c carrier.Carrier, opts ...Option) *Exact {
	o := gatherOptions(c.OptData(), opts)
	return &Exact{c: c, logger: o.logger}
}

// Mode returns optdata.Exact.
func (e *Exact) Mode() optdata.DOFEvaluation { return optdata.Exact }

// Carrier returns the evaluated carrier.
func (e *Exact) Carrier() carrier.Carrier { return e.c }

// Evaluate computes GCV(λ), its derivatives and the degrees of freedom.
func (e *Exact) Evaluate(lambda float64) (Evaluation, error) {
	ev, err := e.evaluate(lambda)
	if err != nil {
		return Evaluation{}, gcvErrorf(opExact, err)
	}
	e.record(ev)
	logEvaluation(e.logger, optdata.Exact, ev)

	return ev, nil
}

func (e *Exact) evaluate(lambda float64) (Evaluation, error) {
	if !validLambda(lambda) {
		return degenerate(lambda), nil
	}
	c := e.c
	M, err := matrix.AddScaled(c.T(), c.Penalty(), lambda)
	if err != nil {
		return Evaluation{}, err
	}
	F, err := matrix.FactorizeSPD(M)
	if errors.Is(err, matrix.ErrSingular) {
		return degenerate(lambda), nil
	}
	if err != nil {
		return Evaluation{}, err
	}

	V, err := F.Solve(c.E())
	if err != nil {
		return Evaluation{}, err
	}
	K, err := F.Solve(c.Penalty())
	if err != nil {
		return Evaluation{}, err
	}
	KV, err := matrix.Mul(K, V)
	if err != nil {
		return Evaluation{}, err
	}
	KKV, err := matrix.Mul(K, KV)
	if err != nil {
		return Evaluation{}, err
	}

	psi := c.Psi()
	S, err := psi.MulDense(V)
	if err != nil {
		return Evaluation{}, err
	}
	dS, err := psi.MulDense(KV)
	if err != nil {
		return Evaluation{}, err
	}
	if dS, err = matrix.Scale(dS, -1); err != nil {
		return Evaluation{}, err
	}
	ddS, err := psi.MulDense(KKV)
	if err != nil {
		return Evaluation{}, err
	}
	if ddS, err = matrix.Scale(ddS, 2); err != nil {
		return Evaluation{}, err
	}

	var m smootherMoments
	if m.trS, err = matrix.Trace(S); err != nil {
		return Evaluation{}, err
	}
	if m.trdS, err = matrix.Trace(dS); err != nil {
		return Evaluation{}, err
	}
	if m.trddS, err = matrix.Trace(ddS); err != nil {
		return Evaluation{}, err
	}
	z := c.Observations()
	if m.sz, err = matrix.MatVec(S, z); err != nil {
		return Evaluation{}, err
	}
	if m.dsz, err = matrix.MatVec(dS, z); err != nil {
		return Evaluation{}, err
	}
	if m.ddsz, err = matrix.MatVec(ddS, z); err != nil {
		return Evaluation{}, err
	}
	err = addOffset(c, lambda, &m, func(b []float64) (v, w, x []float64, err error) {
		if v, err = F.SolveVec(b); err != nil {
			return nil, nil, nil, err
		}
		if w, err = matrix.MatVec(K, v); err != nil {
			return nil, nil, nil, err
		}
		if x, err = matrix.MatVec(K, w); err != nil {
			return nil, nil, nil, err
		}
		return v, w, x, nil
	})
	if err != nil {
		return Evaluation{}, err
	}

	return score(c, lambda, m)
}

// Smoother returns S(λ) = Ψ·M(λ)⁻¹·E.
func (e *Exact) Smoother(lambda float64) (*matrix.Dense, error) {
	M, err := matrix.AddScaled(e.c.T(), e.c.Penalty(), lambda)
	if err != nil {
		return nil, gcvErrorf("Exact.Smoother", err)
	}
	F, err := matrix.FactorizeSPD(M)
	if err != nil {
		return nil, gcvErrorf("Exact.Smoother", err)
	}
	V, err := F.Solve(e.c.E())
	if err != nil {
		return nil, gcvErrorf("Exact.Smoother", err)
	}
	S, err := e.c.Psi().MulDense(V)
	if err != nil {
		return nil, gcvErrorf("Exact.Smoother", err)
	}
	return S, nil
}
