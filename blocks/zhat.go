// SPDX-License-Identifier: MIT

package blocks

import (
	"github.com/katalvlaran/fesmooth/matrix"
	"gonum.org/v1/gonum/floats"
)

const (
	opZHatWeighted = "ZHatWeighted"
	opZHatPlain    = "ZHatPlain"
	opFitted       = "FittedWeighted"
)

// ZHatWeighted returns ẑ = (H + Q·S)·z.
func ZHatWeighted(H, Q, S *matrix.Dense, z []float64) ([]float64, error) {
	if S == nil {
		return nil, blockErrorf(opZHatWeighted, ErrNilInput)
	}
	sz, err := matrix.MatVec(S, z)
	if err != nil {
		return nil, blockErrorf(opZHatWeighted, err)
	}

	return FittedWeighted(H, Q, sz, z)
}

// ZHatPlain returns ẑ = S·z.
func ZHatPlain(S *matrix.Dense, z []float64) ([]float64, error) {
	if S == nil {
		return nil, blockErrorf(opZHatPlain, ErrNilInput)
	}
	zh, err := matrix.MatVec(S, z)
	if err != nil {
		return nil, blockErrorf(opZHatPlain, err)
	}

	return zh, nil
}

// FittedWeighted returns H·z + Q·sz, the weighted fitted vector for a
// precomputed smoother product sz = S·z (as produced by iterative solves).
func FittedWeighted(H, Q *matrix.Dense, sz, z []float64) ([]float64, error) {
	if H == nil || Q == nil {
		return nil, blockErrorf(opFitted, ErrNilInput)
	}
	hz, err := matrix.MatVec(H, z)
	if err != nil {
		return nil, blockErrorf(opFitted, err)
	}
	qsz, err := matrix.MatVec(Q, sz)
	if err != nil {
		return nil, blockErrorf(opFitted, err)
	}
	if len(hz) != len(qsz) {
		return nil, blockErrorf(opFitted, ErrDimensionMismatch)
	}
	floats.Add(hz, qsz)

	return hz, nil
}
