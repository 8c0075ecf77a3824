// SPDX-License-Identifier: MIT

package blocks

import (
	"github.com/katalvlaran/fesmooth/matrix"
)

// Penalty is the diagonal weight that enforces a Dirichlet condition.
const Penalty = 1e20

const (
	opAddTPlain                 = "AddTPlain"
	opAddTWeighted              = "AddTWeighted"
	opAddTInterpolated          = "AddTInterpolated"
	opAddTWeightedInterpolated  = "AddTWeightedInterpolated"
	opAddTAreal                 = "AddTAreal"
	opAddTWeightedAreal         = "AddTWeightedAreal"
	opValidateNodeMap           = "nodeMap"
	opValidateBoundaryContainer = "boundary"
)

// Boundary lists the Dirichlet nodes of a problem.
// A zero Weight means Penalty.
type Boundary struct {
	Indices []int
	Weight  float64
}

// NewBoundary returns a Boundary with the default penalty.
func NewBoundary(indices ...int) Boundary {
	return Boundary{Indices: indices}
}

// Pen returns the effective penalty weight.
func (b Boundary) Pen() float64 {
	if b.Weight == 0 {
		return Penalty
	}
	return b.Weight
}

// Empty reports whether no boundary node is present.
func (b Boundary) Empty() bool { return len(b.Indices) == 0 }

// validate checks every index against [0, n).
func (b Boundary) validate(n int) error {
	for _, id := range b.Indices {
		if id < 0 || id >= n {
			return blockErrorf(opValidateBoundaryContainer, ErrIndexOutOfRange)
		}
	}
	return nil
}

// boundaryCounts returns a zeroed accumulator keyed by boundary node.
func boundaryCounts(bc Boundary) map[int]float64 {
	m := make(map[int]float64, len(bc.Indices))
	for _, id := range bc.Indices {
		m[id] = 0
	}
	return m
}

// squareT checks the destination block and returns its order.
func squareT(op string, T *matrix.Dense) (int, error) {
	if T == nil {
		return 0, blockErrorf(op, ErrNilInput)
	}
	if T.Rows() != T.Cols() {
		return 0, blockErrorf(op, ErrDimensionMismatch)
	}
	return T.Rows(), nil
}

// validateNodeMap checks k against [0, n).
func validateNodeMap(k []int, n int) error {
	for _, node := range k {
		if node < 0 || node >= n {
			return blockErrorf(opValidateNodeMap, ErrIndexOutOfRange)
		}
	}
	return nil
}

// AddTPlain adds ΨᵗΨ for a unit-row Ψ described by k: T[k(i),k(i)] += 1.
// Boundary node id then receives pen minus the number of observations on it,
// so T[id,id] ends at prior + pen (pen−1 for one coincident observation).
// Complexity: O(s + |bc|).
func AddTPlain(T *matrix.Dense, k []int, bc Boundary) error {
	n, err := squareT(opAddTPlain, T)
	if err != nil {
		return err
	}
	if err = validateNodeMap(k, n); err != nil {
		return blockErrorf(opAddTPlain, err)
	}
	if err = bc.validate(n); err != nil {
		return blockErrorf(opAddTPlain, err)
	}

	for _, node := range k {
		if err = T.AddAt(node, node, 1); err != nil {
			return blockErrorf(opAddTPlain, err)
		}
	}
	if bc.Empty() {
		return nil
	}

	hits := boundaryCounts(bc)
	for _, node := range k {
		if _, ok := hits[node]; ok {
			hits[node]++
		}
	}
	pen := bc.Pen()
	for _, id := range bc.Indices {
		if err = T.AddAt(id, id, pen-hits[id]); err != nil {
			return blockErrorf(opAddTPlain, err)
		}
	}

	return nil
}

// AddTWeighted adds ΨᵗQΨ for a unit-row Ψ: T[k(i),k(j)] += Q[i,j].
// A boundary node id receives pen minus the weight already accumulated at
// (id,id), i.e. Σ Q[i,j] over k(i)=k(j)=id (Q[j,j] for one observation j).
// Complexity: O(s² + |bc|).
func AddTWeighted(T *matrix.Dense, k []int, Q *matrix.Dense, bc Boundary) error {
	n, err := squareT(opAddTWeighted, T)
	if err != nil {
		return err
	}
	if Q == nil {
		return blockErrorf(opAddTWeighted, ErrNilInput)
	}
	s := len(k)
	if Q.Rows() != s || Q.Cols() != s {
		return blockErrorf(opAddTWeighted, ErrDimensionMismatch)
	}
	if err = validateNodeMap(k, n); err != nil {
		return blockErrorf(opAddTWeighted, err)
	}
	if err = bc.validate(n); err != nil {
		return blockErrorf(opAddTWeighted, err)
	}

	existing := boundaryCounts(bc)
	q := Q.RawData()
	for i := 0; i < s; i++ {
		_, onBoundary := existing[k[i]]
		for j := 0; j < s; j++ {
			if err = T.AddAt(k[i], k[j], q[i*s+j]); err != nil {
				return blockErrorf(opAddTWeighted, err)
			}
			if onBoundary && k[j] == k[i] {
				existing[k[i]] += q[i*s+j]
			}
		}
	}
	if bc.Empty() {
		return nil
	}

	pen := bc.Pen()
	for _, id := range bc.Indices {
		if err = T.AddAt(id, id, pen-existing[id]); err != nil {
			return blockErrorf(opAddTWeighted, err)
		}
	}

	return nil
}

// AddTInterpolated adds ΨᵗΨ for a general pointwise Ψ.
// The product is formed densely; boundary diagonals are overwritten with pen
// before accumulation.
func AddTInterpolated(T *matrix.Dense, psi *matrix.Sparse, bc Boundary) error {
	if psi == nil {
		return blockErrorf(opAddTInterpolated, ErrNilInput)
	}
	temp, err := psi.TMulDense(psi.ToDense())
	if err != nil {
		return blockErrorf(opAddTInterpolated, err)
	}

	return accumulate(opAddTInterpolated, T, temp, bc)
}

// AddTWeightedInterpolated adds ΨᵗQΨ for a general pointwise Ψ.
func AddTWeightedInterpolated(T *matrix.Dense, psi *matrix.Sparse, Q *matrix.Dense, bc Boundary) error {
	if psi == nil || Q == nil {
		return blockErrorf(opAddTWeightedInterpolated, ErrNilInput)
	}
	if Q.Rows() != psi.Rows() || Q.Cols() != psi.Rows() {
		return blockErrorf(opAddTWeightedInterpolated, ErrDimensionMismatch)
	}
	qpsi, err := matrix.Mul(Q, psi.ToDense())
	if err != nil {
		return blockErrorf(opAddTWeightedInterpolated, err)
	}
	temp, err := psi.TMulDense(qpsi)
	if err != nil {
		return blockErrorf(opAddTWeightedInterpolated, err)
	}

	return accumulate(opAddTWeightedInterpolated, T, temp, bc)
}

// AddTAreal adds Ψᵗ·diag(A)·Ψ for areal observations.
func AddTAreal(T *matrix.Dense, psi *matrix.Sparse, areas []float64, bc Boundary) error {
	if psi == nil {
		return blockErrorf(opAddTAreal, ErrNilInput)
	}
	if len(areas) != psi.Rows() {
		return blockErrorf(opAddTAreal, ErrDimensionMismatch)
	}
	apsi, err := matrix.MulDiagLeft(areas, psi.ToDense())
	if err != nil {
		return blockErrorf(opAddTAreal, err)
	}
	temp, err := psi.TMulDense(apsi)
	if err != nil {
		return blockErrorf(opAddTAreal, err)
	}

	return accumulate(opAddTAreal, T, temp, bc)
}

// AddTWeightedAreal adds Ψᵗ·diag(A)·Q·Ψ for areal observations.
func AddTWeightedAreal(T *matrix.Dense, psi *matrix.Sparse, areas []float64, Q *matrix.Dense, bc Boundary) error {
	if psi == nil || Q == nil {
		return blockErrorf(opAddTWeightedAreal, ErrNilInput)
	}
	s := psi.Rows()
	if len(areas) != s || Q.Rows() != s || Q.Cols() != s {
		return blockErrorf(opAddTWeightedAreal, ErrDimensionMismatch)
	}
	aq, err := matrix.MulDiagLeft(areas, Q)
	if err != nil {
		return blockErrorf(opAddTWeightedAreal, err)
	}
	aqpsi, err := matrix.Mul(aq, psi.ToDense())
	if err != nil {
		return blockErrorf(opAddTWeightedAreal, err)
	}
	temp, err := psi.TMulDense(aqpsi)
	if err != nil {
		return blockErrorf(opAddTWeightedAreal, err)
	}

	return accumulate(opAddTWeightedAreal, T, temp, bc)
}

// accumulate overwrites the boundary diagonal of temp with pen and adds temp into T.
func accumulate(op string, T, temp *matrix.Dense, bc Boundary) error {
	n, err := squareT(op, T)
	if err != nil {
		return err
	}
	if temp.Rows() != n || temp.Cols() != n {
		return blockErrorf(op, ErrDimensionMismatch)
	}
	if err = bc.validate(n); err != nil {
		return blockErrorf(op, err)
	}

	if !bc.Empty() {
		pen := bc.Pen()
		for _, id := range bc.Indices {
			if err = temp.Set(id, id, pen); err != nil {
				return blockErrorf(op, err)
			}
		}
	}

	dst, src := T.RawData(), temp.RawData()
	for i := range dst {
		dst[i] += src[i]
	}

	return nil
}
