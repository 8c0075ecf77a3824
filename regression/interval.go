// SPDX-License-Identifier: MIT

package regression

import (
	"math"

	"github.com/katalvlaran/fesmooth/matrix"
)

const (
	opNewInterval     = "NewInterval"
	opPointOperator   = "Interval.PointOperator"
	opRegionOperator  = "Interval.RegionOperator"
	opNodeObservation = "NodeObservationOperator"

	// nodeSnap is the relative distance under which a point is treated as a node.
	nodeSnap = 1e-12
)

// Interval is a uniform P1 mesh of [0, Length] with n nodes and n−1 elements.
type Interval struct {
	Length float64
	nodes  []float64
	h      float64
}

// NewInterval builds a mesh with n ≥ 2 nodes on [0, length].
func NewInterval(n int, length float64) (*Interval, error) {
	if n < 2 || !(length > 0) || math.IsInf(length, 0) {
		return nil, regressionErrorf(opNewInterval, ErrInvalidMesh)
	}
	h := length / float64(n-1)
	nodes := make([]float64, n)
	for i := range nodes {
		nodes[i] = float64(i) * h
	}
	nodes[n-1] = length

	return &Interval{Length: length, nodes: nodes, h: h}, nil
}

// NumNodes returns n.
func (m *Interval) NumNodes() int { return len(m.nodes) }

// NumElements returns n−1.
func (m *Interval) NumElements() int { return len(m.nodes) - 1 }

// Nodes returns a copy of the node coordinates.
func (m *Interval) Nodes() []float64 { return append([]float64(nil), m.nodes...) }

// Mass returns the P1 mass matrix R0 (h/6·[2 1; 1 2] per element).
func (m *Interval) Mass() *matrix.Dense {
	return m.assemble(2*m.h/6, m.h/6)
}

// Stiffness returns the P1 stiffness matrix R1 (1/h·[1 −1; −1 1] per element).
func (m *Interval) Stiffness() *matrix.Dense {
	return m.assemble(1/m.h, -1/m.h)
}

// assemble sums the 2×2 element matrix [d o; o d] over all elements.
func (m *Interval) assemble(d, o float64) *matrix.Dense {
	n := len(m.nodes)
	A, _ := matrix.NewDense(n, n) // n ≥ 2 by construction
	for e := 0; e < n-1; e++ {
		_ = A.AddAt(e, e, d)
		_ = A.AddAt(e+1, e+1, d)
		_ = A.AddAt(e, e+1, o)
		_ = A.AddAt(e+1, e, o)
	}

	return A
}

// PointOperator evaluates the hat basis at points: row i holds φ_j(x_i).
// A point on a node yields a single unit entry, so node-located data gets
// the permutation structure.
func (m *Interval) PointOperator(points []float64) (*matrix.Sparse, error) {
	if len(points) == 0 {
		return nil, regressionErrorf(opPointOperator, ErrNoObservations)
	}
	n := len(m.nodes)
	trips := make([]matrix.Triplet, 0, 2*len(points))
	for i, x := range points {
		if math.IsNaN(x) || x < 0 || x > m.Length {
			return nil, regressionErrorf(opPointOperator, ErrDimensionMismatch)
		}
		pos := x / m.h
		e := int(math.Floor(pos))
		if e > n-2 {
			e = n - 2
		}
		t := pos - float64(e)
		switch {
		case t <= nodeSnap:
			trips = append(trips, matrix.Triplet{Row: i, Col: e, Value: 1})
		case t >= 1-nodeSnap:
			trips = append(trips, matrix.Triplet{Row: i, Col: e + 1, Value: 1})
		default:
			trips = append(trips,
				matrix.Triplet{Row: i, Col: e, Value: 1 - t},
				matrix.Triplet{Row: i, Col: e + 1, Value: t},
			)
		}
	}

	return matrix.NewSparse(len(points), n, trips)
}

// RegionOperator builds the areal operator for a regions×elements incidence
// matrix. Row r is the region average of the basis,
// Ψ[r,j] = Σ_e inc[r,e]·∫_e φ_j / |D_r|, and the returned areas are |D_r|.
func (m *Interval) RegionOperator(incidence *matrix.Dense) (*matrix.Sparse, []float64, error) {
	if incidence == nil || incidence.Cols() != m.NumElements() {
		return nil, nil, regressionErrorf(opRegionOperator, ErrDimensionMismatch)
	}
	regions := incidence.Rows()
	inc := incidence.RawData()
	ne := m.NumElements()
	areas := make([]float64, regions)
	var trips []matrix.Triplet
	for r := 0; r < regions; r++ {
		for e := 0; e < ne; e++ {
			areas[r] += inc[r*ne+e] * m.h
		}
		if !(areas[r] > 0) {
			return nil, nil, regressionErrorf(opRegionOperator, ErrEmptyRegion)
		}
		for e := 0; e < ne; e++ {
			w := inc[r*ne+e]
			if w == 0 {
				continue
			}
			half := w * m.h / 2 / areas[r]
			trips = append(trips,
				matrix.Triplet{Row: r, Col: e, Value: half},
				matrix.Triplet{Row: r, Col: e + 1, Value: half},
			)
		}
	}
	psi, err := matrix.NewSparse(regions, len(m.nodes), trips)
	if err != nil {
		return nil, nil, regressionErrorf(opRegionOperator, err)
	}

	return psi, areas, nil
}

// NodeObservationOperator returns the unit-row Ψ (len(nodes)×n) that observes
// node nodes[i] in row i.
func NodeObservationOperator(nodes []int, n int) (*matrix.Sparse, error) {
	if len(nodes) == 0 {
		return nil, regressionErrorf(opNodeObservation, ErrNoObservations)
	}
	trips := make([]matrix.Triplet, len(nodes))
	for i, node := range nodes {
		trips[i] = matrix.Triplet{Row: i, Col: node, Value: 1}
	}
	psi, err := matrix.NewSparse(len(nodes), n, trips)
	if err != nil {
		return nil, regressionErrorf(opNodeObservation, err)
	}

	return psi, nil
}
