// SPDX-License-Identifier: MIT
package regression_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/katalvlaran/fesmooth/matrix"
	"github.com/katalvlaran/fesmooth/regression"
)

func mustInterval(t *testing.T, n int, length float64) *regression.Interval {
	t.Helper()
	m, err := regression.NewInterval(n, length)
	require.NoError(t, err)
	return m
}

func sumAll(m *matrix.Dense) float64 {
	var s float64
	for _, v := range m.RawData() {
		s += v
	}
	return s
}

// TestInterval_Operators checks the classic P1 identities.
func TestInterval_Operators(t *testing.T) {
	mesh := mustInterval(t, 5, 2)
	require.Equal(t, 5, mesh.NumNodes())
	require.Equal(t, 4, mesh.NumElements())

	// 1ᵗ R0 1 = |Ω|, R1 1 = 0.
	require.InDelta(t, 2.0, sumAll(mesh.Mass()), 1e-14)
	ones := []float64{1, 1, 1, 1, 1}
	r1, err := matrix.MatVec(mesh.Stiffness(), ones)
	require.NoError(t, err)
	for _, v := range r1 {
		require.InDelta(t, 0, v, 1e-13)
	}

	_, err = regression.NewInterval(1, 1)
	require.ErrorIs(t, err, regression.ErrInvalidMesh)
	_, err = regression.NewInterval(3, 0)
	require.ErrorIs(t, err, regression.ErrInvalidMesh)
}

// TestInterval_PointOperator distinguishes node-located and interpolated data.
func TestInterval_PointOperator(t *testing.T) {
	mesh := mustInterval(t, 11, 1)

	psi, err := mesh.PointOperator([]float64{0, 0.3, 0.7, 1})
	require.NoError(t, err)
	k, ok := psi.PermutationIndex()
	require.True(t, ok)
	require.Equal(t, []int{0, 3, 7, 10}, k)

	psi, err = mesh.PointOperator([]float64{0.05})
	require.NoError(t, err)
	_, ok = psi.PermutationIndex()
	require.False(t, ok)
	v0, _ := psi.At(0, 0)
	v1, _ := psi.At(0, 1)
	require.InDelta(t, 0.5, v0, 1e-12)
	require.InDelta(t, 0.5, v1, 1e-12)

	_, err = mesh.PointOperator([]float64{1.5})
	require.ErrorIs(t, err, regression.ErrDimensionMismatch)
}

// TestInterval_RegionOperator checks region averages and areas.
func TestInterval_RegionOperator(t *testing.T) {
	mesh := mustInterval(t, 5, 4) // h = 1
	inc, err := matrix.NewDenseFrom(2, 4, []float64{
		1, 1, 0, 0,
		0, 0, 0, 1,
	})
	require.NoError(t, err)

	psi, areas, err := mesh.RegionOperator(inc)
	require.NoError(t, err)
	require.Equal(t, []float64{2, 1}, areas)

	// Averaging the constant 1 gives 1 in each region.
	avg, err := psi.MulVec([]float64{1, 1, 1, 1, 1})
	require.NoError(t, err)
	require.InDeltaSlice(t, []float64{1, 1}, avg, 1e-14)
	mid, _ := psi.At(0, 1)
	require.InDelta(t, 0.5, mid, 1e-14)

	empty, err := matrix.NewDense(1, 4)
	require.NoError(t, err)
	_, _, err = mesh.RegionOperator(empty)
	require.ErrorIs(t, err, regression.ErrEmptyRegion)
}

// TestProjection_Properties checks HW = W, Q² = Q and the coefficient solve.
func TestProjection_Properties(t *testing.T) {
	W, err := matrix.NewDenseFrom(4, 2, []float64{
		1, 0.5,
		1, -1,
		1, 2,
		1, 0,
	})
	require.NoError(t, err)
	p, err := regression.NewProjection(W)
	require.NoError(t, err)

	HW, err := matrix.Mul(p.H, W)
	require.NoError(t, err)
	ok, err := matrix.AllClose(HW, W, 1e-12, 1e-12)
	require.NoError(t, err)
	require.True(t, ok)

	QQ, err := matrix.Mul(p.Q, p.Q)
	require.NoError(t, err)
	ok, err = matrix.AllClose(QQ, p.Q, 1e-12, 1e-12)
	require.NoError(t, err)
	require.True(t, ok)
	require.NoError(t, matrix.ValidateSymmetric(p.Q, 1e-12))

	beta, err := p.Coefficients([]float64{1 + 0.5*3, 1 - 3, 1 + 2*3, 1})
	require.NoError(t, err)
	require.InDeltaSlice(t, []float64{1, 3}, beta, 1e-12)

	rank1, err := matrix.NewDenseFrom(3, 2, []float64{1, 2, 1, 2, 1, 2})
	require.NoError(t, err)
	_, err = regression.NewProjection(rank1)
	require.ErrorIs(t, err, regression.ErrSingularCovariates)
}

// TestData_Validate covers the data contract.
func TestData_Validate(t *testing.T) {
	cov, err := matrix.NewDense(2, 1)
	require.NoError(t, err)

	cases := []struct {
		name string
		data regression.Data
		want error
	}{
		{"empty", regression.Data{}, regression.ErrNoObservations},
		{"nan", regression.Data{Observations: []float64{math.NaN()}}, regression.ErrNonFinite},
		{"covariate rows", regression.Data{Observations: []float64{1, 2, 3}, Covariates: cov}, regression.ErrDimensionMismatch},
		{"bc lengths", regression.Data{Observations: []float64{1}, BCIndices: []int{0}}, regression.ErrBoundaryMismatch},
		{"ok", regression.Data{Observations: []float64{1, 2}, Covariates: cov}, nil},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.data.Validate()
			if tc.want == nil {
				require.NoError(t, err)
				return
			}
			require.ErrorIs(t, err, tc.want)
		})
	}

	d := regression.Data{Observations: []float64{1, 2}, Covariates: cov}
	require.True(t, d.HasCovariates())
	require.Equal(t, 1, d.NumCovariates())
	require.Equal(t, 0, d.NumberOfRegions())
}

// pointwiseModel builds an FEModel with data on the given nodes of a 10-node mesh.
func pointwiseModel(t *testing.T, data *regression.Data, nodes []int, opts ...regression.Option) *regression.FEModel {
	t.Helper()
	mesh := mustInterval(t, 10, 1)
	psi, err := regression.NodeObservationOperator(nodes, mesh.NumNodes())
	require.NoError(t, err)
	m, err := regression.NewFEModel(data, regression.Operators{
		Psi:       psi,
		Mass:      mesh.Mass(),
		Stiffness: mesh.Stiffness(),
	}, opts...)
	require.NoError(t, err)
	return m
}

// TestFEModel_SolveIsIdempotent checks bit-identical repeated solves.
func TestFEModel_SolveIsIdempotent(t *testing.T) {
	data := &regression.Data{Observations: []float64{0.1, 0.9, 0.4, -0.3, -0.8, 0.2}}
	m := pointwiseModel(t, data, []int{0, 2, 3, 5, 7, 9})
	require.False(t, m.IsSpatiallyVarying())
	require.Equal(t, 10, m.NumNodes())
	require.Nil(t, m.RegionAreas())

	f1, err := m.Solve(0.01)
	require.NoError(t, err)
	f2, err := m.Solve(0.01)
	require.NoError(t, err)
	require.Equal(t, f1, f2)
	require.Nil(t, m.Beta())

	_, err = m.Solve(-1)
	require.ErrorIs(t, err, regression.ErrNegativeLambda)
}

// TestFEModel_Smoothing checks the two limits of λ.
func TestFEModel_Smoothing(t *testing.T) {
	z := []float64{0.1, 0.9, 0.4, -0.3, -0.8, 0.2}
	nodes := []int{0, 2, 3, 5, 7, 9}
	m := pointwiseModel(t, &regression.Data{Observations: z}, nodes)

	// Small λ: near interpolation of the data.
	f, err := m.Solve(1e-10)
	require.NoError(t, err)
	for i, node := range nodes {
		require.InDelta(t, z[i], f[node], 1e-4)
	}

	// Large λ: the penalty's null space (constants) wins, f → mean(z).
	f, err = m.Solve(1e6)
	require.NoError(t, err)
	mean := 0.0
	for _, v := range z {
		mean += v / float64(len(z))
	}
	for _, v := range f {
		require.InDelta(t, mean, v, 1e-4)
	}
}

// TestFEModel_Boundary pins boundary nodes to their prescribed values.
func TestFEModel_Boundary(t *testing.T) {
	data := &regression.Data{
		Observations: []float64{0.1, 0.9, 0.4, -0.3, -0.8, 0.2},
		BCIndices:    []int{0, 4},
		BCValues:     []float64{2, -1},
	}
	m := pointwiseModel(t, data, []int{0, 2, 3, 5, 7, 9})
	f, err := m.Solve(0.1)
	require.NoError(t, err)
	require.InDelta(t, 2.0, f[0], 1e-9)
	require.InDelta(t, -1.0, f[4], 1e-9)

	bad := &regression.Data{Observations: []float64{1}, BCIndices: []int{12}, BCValues: []float64{0}}
	mesh := mustInterval(t, 10, 1)
	psi, err := regression.NodeObservationOperator([]int{1}, 10)
	require.NoError(t, err)
	_, err = regression.NewFEModel(bad, regression.Operators{Psi: psi, Mass: mesh.Mass(), Stiffness: mesh.Stiffness()})
	require.ErrorIs(t, err, regression.ErrBoundaryOutOfRange)
}

// TestFEModel_Beta recovers the covariate effect of pure-covariate data.
func TestFEModel_Beta(t *testing.T) {
	w := []float64{0.3, -1.2, 0.8, 2.0, -0.5, 1.1}
	W, err := matrix.NewDenseFrom(6, 1, w)
	require.NoError(t, err)
	z := make([]float64, len(w))
	for i := range w {
		z[i] = 3 * w[i]
	}
	m := pointwiseModel(t, &regression.Data{Observations: z, Covariates: W}, []int{0, 2, 3, 5, 7, 9})

	f, err := m.Solve(0.5)
	require.NoError(t, err)
	for _, v := range f {
		require.InDelta(t, 0, v, 1e-10)
	}
	require.InDeltaSlice(t, []float64{3}, m.Beta(), 1e-10)
}

// TestFEModel_Forcing checks that a forcing term changes the solution.
func TestFEModel_Forcing(t *testing.T) {
	mesh := mustInterval(t, 10, 1)
	psi, err := regression.NodeObservationOperator([]int{1, 4, 8}, 10)
	require.NoError(t, err)
	u := make([]float64, 10)
	for i := range u {
		u[i] = 1
	}
	ops := regression.Operators{Psi: psi, Mass: mesh.Mass(), Stiffness: mesh.Stiffness()}
	data := &regression.Data{Observations: []float64{1, 2, 1}}

	plain, err := regression.NewFEModel(data, ops)
	require.NoError(t, err)
	ops.Forcing = u
	forced, err := regression.NewFEModel(data, ops)
	require.NoError(t, err)
	require.True(t, forced.IsSpatiallyVarying())

	// R1ᵗ·1 = 0, so a constant forcing leaves the solution unchanged.
	f0, err := plain.Solve(1)
	require.NoError(t, err)
	f1, err := forced.Solve(1)
	require.NoError(t, err)
	require.InDeltaSlice(t, f0, f1, 1e-9)

	ops.Forcing[0] = 5
	bumped, err := regression.NewFEModel(data, ops)
	require.NoError(t, err)
	f2, err := bumped.Solve(1)
	require.NoError(t, err)
	require.NotEqual(t, f0, f2)
}
