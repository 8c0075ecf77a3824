// SPDX-License-Identifier: MIT

package blocks

import (
	"github.com/katalvlaran/fesmooth/matrix"
)

const (
	opEPlain                = "EPlain"
	opEInterpolated         = "EInterpolated"
	opEWeighted             = "EWeighted"
	opEWeightedInterpolated = "EWeightedInterpolated"
	opEAreal                = "EAreal"
	opEWeightedAreal        = "EWeightedAreal"
)

// EPlain returns E = Ψᵗ (n×s) for a unit-row Ψ described by k.
func EPlain(k []int, n int) (*matrix.Dense, error) {
	if len(k) == 0 {
		return nil, blockErrorf(opEPlain, ErrNilInput)
	}
	if err := validateNodeMap(k, n); err != nil {
		return nil, blockErrorf(opEPlain, err)
	}
	E, err := matrix.NewDense(n, len(k))
	if err != nil {
		return nil, blockErrorf(opEPlain, err)
	}
	for i, node := range k {
		if err = E.Set(node, i, 1); err != nil {
			return nil, blockErrorf(opEPlain, err)
		}
	}

	return E, nil
}

// EInterpolated returns E = Ψᵗ for a general pointwise Ψ.
func EInterpolated(psi *matrix.Sparse) (*matrix.Dense, error) {
	if psi == nil {
		return nil, blockErrorf(opEInterpolated, ErrNilInput)
	}
	E, err := matrix.Transpose(psi.ToDense())
	if err != nil {
		return nil, blockErrorf(opEInterpolated, err)
	}

	return E, nil
}

// EWeighted returns E = ΨᵗQ (n×s) for a unit-row Ψ: E[k(i), j] += Q[i,j].
// At most s² entries are touched.
func EWeighted(k []int, Q *matrix.Dense, n int) (*matrix.Dense, error) {
	if Q == nil {
		return nil, blockErrorf(opEWeighted, ErrNilInput)
	}
	s := len(k)
	if s == 0 || Q.Rows() != s || Q.Cols() != s {
		return nil, blockErrorf(opEWeighted, ErrDimensionMismatch)
	}
	if err := validateNodeMap(k, n); err != nil {
		return nil, blockErrorf(opEWeighted, err)
	}
	E, err := matrix.NewDense(n, s)
	if err != nil {
		return nil, blockErrorf(opEWeighted, err)
	}

	e, q := E.RawData(), Q.RawData()
	for i := 0; i < s; i++ {
		row := k[i] * s
		for j := 0; j < s; j++ {
			e[row+j] += q[i*s+j]
		}
	}

	return E, nil
}

// EWeightedInterpolated returns E = ΨᵗQ for a general pointwise Ψ.
func EWeightedInterpolated(psi *matrix.Sparse, Q *matrix.Dense) (*matrix.Dense, error) {
	if psi == nil || Q == nil {
		return nil, blockErrorf(opEWeightedInterpolated, ErrNilInput)
	}
	E, err := psi.TMulDense(Q)
	if err != nil {
		return nil, blockErrorf(opEWeightedInterpolated, err)
	}

	return E, nil
}

// EAreal returns E = Ψᵗ·diag(A).
func EAreal(psi *matrix.Sparse, areas []float64) (*matrix.Dense, error) {
	if psi == nil {
		return nil, blockErrorf(opEAreal, ErrNilInput)
	}
	psiT, err := matrix.Transpose(psi.ToDense())
	if err != nil {
		return nil, blockErrorf(opEAreal, err)
	}
	E, err := matrix.MulDiagRight(psiT, areas)
	if err != nil {
		return nil, blockErrorf(opEAreal, err)
	}

	return E, nil
}

// EWeightedAreal returns E = Ψᵗ·diag(A)·Q.
func EWeightedAreal(psi *matrix.Sparse, areas []float64, Q *matrix.Dense) (*matrix.Dense, error) {
	if psi == nil || Q == nil {
		return nil, blockErrorf(opEWeightedAreal, ErrNilInput)
	}
	aq, err := matrix.MulDiagLeft(areas, Q)
	if err != nil {
		return nil, blockErrorf(opEWeightedAreal, err)
	}
	E, err := psi.TMulDense(aq)
	if err != nil {
		return nil, blockErrorf(opEWeightedAreal, err)
	}

	return E, nil
}
