// SPDX-License-Identifier: MIT

// Package matrix - compressed sparse row (CSR) storage for observation operators.
//
// Purpose:
//   - Hold tall, mostly-zero operators (Ψ: observations × nodes) without dense storage.
//   - Provide the products the block builders need: Ψ·x, Ψᵗ·x, Ψ·B and Ψᵗ·B.
//   - Detect the 0/1 "one entry per row" structure that enables the diagonal shortcut.
//
// AI-Hints:
//   - Build once from triplets; the pattern is frozen afterwards (Set on an
//     unstored position returns ErrStructural).
//   - Rows are kept sorted by column, so At is a binary search within a row.
//
// Complexity quicksheet:
//   - NewSparse: O(nnz log nnz); At: O(log rowNNZ); MulVec/MulTransVec: O(nnz);
//     MulDense/TMulDense: O(nnz*k) for k right-hand columns.

package matrix

import (
	"cmp"
	"fmt"
	"math"
	"slices"
)

const (
	ctxSparseAt  = "At"
	ctxSparseSet = "Set"

	opNewSparse   = "NewSparse"
	opMulVec      = "Sparse.MulVec"
	opMulTransVec = "Sparse.MulTransVec"
	opMulDense    = "Sparse.MulDense"
	opTMulDense   = "Sparse.TMulDense"
)

// sparseErrorf mirrors denseErrorf for the CSR container.
func sparseErrorf(method string, row, col int, err error) error {
	return fmt.Errorf("Sparse.%s(%d,%d): %w", method, row, col, err)
}

// Triplet is one (row, col, value) entry used to assemble a Sparse.
type Triplet struct {
	Row, Col int
	Value    float64
}

// Sparse is a row-compressed matrix.
//   - indptr has length r+1; row i occupies indices[indptr[i]:indptr[i+1]].
//   - indices are strictly increasing within a row.
//   - values has the same length as indices.
type Sparse struct {
	r, c    int
	indptr  []int
	indices []int
	values  []float64
}

var _ Matrix = (*Sparse)(nil)

// NewSparse assembles a rows×cols CSR matrix from triplets.
// Duplicate (row, col) pairs are summed; entries that sum to exactly zero are dropped.
//
// Errors:
//   - ErrInvalidDimensions for non-positive shape.
//   - ErrOutOfRange for a triplet outside the shape.
//   - ErrNaNInf for a non-finite value.
func NewSparse(rows, cols int, triplets []Triplet) (*Sparse, error) {
	if rows <= 0 || cols <= 0 {
		return nil, matrixErrorf(opNewSparse, ErrInvalidDimensions)
	}
	for _, t := range triplets {
		if t.Row < 0 || t.Row >= rows || t.Col < 0 || t.Col >= cols {
			return nil, sparseErrorf(opNewSparse, t.Row, t.Col, ErrOutOfRange)
		}
		if math.IsNaN(t.Value) || math.IsInf(t.Value, 0) {
			return nil, sparseErrorf(opNewSparse, t.Row, t.Col, ErrNaNInf)
		}
	}

	sorted := slices.Clone(triplets)
	slices.SortStableFunc(sorted, func(a, b Triplet) int {
		if c := cmp.Compare(a.Row, b.Row); c != 0 {
			return c
		}
		return cmp.Compare(a.Col, b.Col)
	})

	s := &Sparse{
		r:       rows,
		c:       cols,
		indptr:  make([]int, rows+1),
		indices: make([]int, 0, len(sorted)),
		values:  make([]float64, 0, len(sorted)),
	}
	for k := 0; k < len(sorted); {
		t := sorted[k]
		sum := t.Value
		k++
		// Sum duplicates of the same position.
		for k < len(sorted) && sorted[k].Row == t.Row && sorted[k].Col == t.Col {
			sum += sorted[k].Value
			k++
		}
		if sum == 0 {
			continue
		}
		s.indices = append(s.indices, t.Col)
		s.values = append(s.values, sum)
		s.indptr[t.Row+1]++
	}
	for i := 0; i < rows; i++ {
		s.indptr[i+1] += s.indptr[i]
	}

	return s, nil
}

// Rows returns the row count.
func (s *Sparse) Rows() int { return s.r }

// Cols returns the column count.
func (s *Sparse) Cols() int { return s.c }

// NNZ returns the number of stored entries.
func (s *Sparse) NNZ() int { return len(s.values) }

// RowNNZ returns the number of stored entries in row i (0 when out of range).
func (s *Sparse) RowNNZ(i int) int {
	if i < 0 || i >= s.r {
		return 0
	}
	return s.indptr[i+1] - s.indptr[i]
}

// find returns the storage offset of (row, col) and whether it is stored.
func (s *Sparse) find(row, col int) (int, bool) {
	lo, hi := s.indptr[row], s.indptr[row+1]
	off, ok := slices.BinarySearch(s.indices[lo:hi], col)
	return lo + off, ok
}

// At returns the value at (row, col); unstored positions read as zero.
func (s *Sparse) At(row, col int) (float64, error) {
	if row < 0 || row >= s.r || col < 0 || col >= s.c {
		return 0, sparseErrorf(ctxSparseAt, row, col, ErrOutOfRange)
	}
	if off, ok := s.find(row, col); ok {
		return s.values[off], nil
	}

	return 0, nil
}

// Set overwrites a stored entry. The sparsity pattern is fixed: writing to an
// unstored position returns ErrStructural.
func (s *Sparse) Set(row, col int, v float64) error {
	if row < 0 || row >= s.r || col < 0 || col >= s.c {
		return sparseErrorf(ctxSparseSet, row, col, ErrOutOfRange)
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return sparseErrorf(ctxSparseSet, row, col, ErrNaNInf)
	}
	off, ok := s.find(row, col)
	if !ok {
		return sparseErrorf(ctxSparseSet, row, col, ErrStructural)
	}
	s.values[off] = v

	return nil
}

// Clone returns a deep copy.
func (s *Sparse) Clone() Matrix {
	return &Sparse{
		r:       s.r,
		c:       s.c,
		indptr:  slices.Clone(s.indptr),
		indices: slices.Clone(s.indices),
		values:  slices.Clone(s.values),
	}
}

// ToDense expands s into a fresh *Dense.
func (s *Sparse) ToDense() *Dense {
	d, _ := NewDense(s.r, s.c) // shape already validated at construction
	for i := 0; i < s.r; i++ {
		for p := s.indptr[i]; p < s.indptr[i+1]; p++ {
			d.data[i*s.c+s.indices[p]] = s.values[p]
		}
	}

	return d
}

// MulVec returns s·x (length Rows()).
func (s *Sparse) MulVec(x []float64) ([]float64, error) {
	if err := ValidateVecLen(x, s.c); err != nil {
		return nil, matrixErrorf(opMulVec, err)
	}
	y := make([]float64, s.r)
	for i := 0; i < s.r; i++ {
		sum := ZeroSum
		for p := s.indptr[i]; p < s.indptr[i+1]; p++ {
			sum += s.values[p] * x[s.indices[p]]
		}
		y[i] = sum
	}

	return y, nil
}

// MulTransVec returns sᵗ·x (length Cols()).
func (s *Sparse) MulTransVec(x []float64) ([]float64, error) {
	if err := ValidateVecLen(x, s.r); err != nil {
		return nil, matrixErrorf(opMulTransVec, err)
	}
	y := make([]float64, s.c)
	for i := 0; i < s.r; i++ {
		xi := x[i]
		if xi == 0 {
			continue
		}
		for p := s.indptr[i]; p < s.indptr[i+1]; p++ {
			y[s.indices[p]] += s.values[p] * xi
		}
	}

	return y, nil
}

// MulDense returns s·B where B has Cols() rows. Result is Rows()×B.Cols().
func (s *Sparse) MulDense(b *Dense) (*Dense, error) {
	if b == nil {
		return nil, matrixErrorf(opMulDense, ErrNilMatrix)
	}
	if b.r != s.c {
		return nil, matrixErrorf(opMulDense, ErrDimensionMismatch)
	}
	out, err := NewDense(s.r, b.c)
	if err != nil {
		return nil, matrixErrorf(opMulDense, err)
	}
	for i := 0; i < s.r; i++ {
		dst := out.data[i*b.c : (i+1)*b.c]
		for p := s.indptr[i]; p < s.indptr[i+1]; p++ {
			v := s.values[p]
			src := b.data[s.indices[p]*b.c : (s.indices[p]+1)*b.c]
			for j := range dst {
				dst[j] += v * src[j]
			}
		}
	}

	return out, nil
}

// TMulDense returns sᵗ·B where B has Rows() rows. Result is Cols()×B.Cols().
func (s *Sparse) TMulDense(b *Dense) (*Dense, error) {
	if b == nil {
		return nil, matrixErrorf(opTMulDense, ErrNilMatrix)
	}
	if b.r != s.r {
		return nil, matrixErrorf(opTMulDense, ErrDimensionMismatch)
	}
	out, err := NewDense(s.c, b.c)
	if err != nil {
		return nil, matrixErrorf(opTMulDense, err)
	}
	for i := 0; i < s.r; i++ {
		src := b.data[i*b.c : (i+1)*b.c]
		for p := s.indptr[i]; p < s.indptr[i+1]; p++ {
			v := s.values[p]
			dst := out.data[s.indices[p]*b.c : (s.indices[p]+1)*b.c]
			for j := range dst {
				dst[j] += v * src[j]
			}
		}
	}

	return out, nil
}

// PermutationIndex returns k with k[i] = the single column stored in row i,
// when every row holds exactly one entry equal to 1 (within eps, see WithEpsilon).
// Several rows may share a column. ok is false for any other structure.
func (s *Sparse) PermutationIndex(opts ...Option) ([]int, bool) {
	o := gatherOptions(opts...)
	k := make([]int, s.r)
	for i := 0; i < s.r; i++ {
		if s.indptr[i+1]-s.indptr[i] != 1 {
			return nil, false
		}
		p := s.indptr[i]
		if math.Abs(s.values[p]-1) > o.eps {
			return nil, false
		}
		k[i] = s.indices[p]
	}

	return k, true
}
