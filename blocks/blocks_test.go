// SPDX-License-Identifier: MIT
package blocks_test

import (
	"math/rand"
	"testing"

	"github.com/katalvlaran/fesmooth/blocks"
	"github.com/katalvlaran/fesmooth/matrix"
	"github.com/stretchr/testify/require"
)

// unitPsi builds a unit-row Ψ (s×n) mapping observation i to node k[i].
func unitPsi(t *testing.T, k []int, n int) *matrix.Sparse {
	t.Helper()
	trips := make([]matrix.Triplet, len(k))
	for i, node := range k {
		trips[i] = matrix.Triplet{Row: i, Col: node, Value: 1}
	}
	psi, err := matrix.NewSparse(len(k), n, trips)
	require.NoError(t, err)

	return psi
}

// randomNodeMap draws s node indices in [0,n), repeats allowed.
func randomNodeMap(s, n int, seed int64) []int {
	rng := rand.New(rand.NewSource(seed))
	k := make([]int, s)
	for i := range k {
		k[i] = rng.Intn(n)
	}
	return k
}

// randomSymmetric returns a dense symmetric s×s matrix with entries in (-1,1).
func randomSymmetric(t *testing.T, s int, seed int64) *matrix.Dense {
	t.Helper()
	rng := rand.New(rand.NewSource(seed))
	q, err := matrix.NewDense(s, s)
	require.NoError(t, err)
	for i := 0; i < s; i++ {
		for j := i; j < s; j++ {
			v := rng.Float64()*2 - 1
			require.NoError(t, q.Set(i, j, v))
			require.NoError(t, q.Set(j, i, v))
		}
	}
	return q
}

func zeros(t *testing.T, n int) *matrix.Dense {
	t.Helper()
	d, err := matrix.NewDense(n, n)
	require.NoError(t, err)
	return d
}

func requireClose(t *testing.T, want, got matrix.Matrix, tol float64) {
	t.Helper()
	ok, err := matrix.AllClose(got, want, tol, tol)
	require.NoError(t, err)
	require.True(t, ok, "want\n%v\ngot\n%v", want, got)
}

// TestAddTPlain_EqualsPsiTPsi checks the diagonal shortcut against the sparse product.
func TestAddTPlain_EqualsPsiTPsi(t *testing.T) {
	for _, tc := range []struct{ s, n int }{{1, 1}, {6, 10}, {40, 25}, {200, 300}} {
		k := randomNodeMap(tc.s, tc.n, int64(tc.s*tc.n))
		psi := unitPsi(t, k, tc.n)

		shortcut := zeros(t, tc.n)
		require.NoError(t, blocks.AddTPlain(shortcut, k, blocks.Boundary{}))

		want, err := psi.TMulDense(psi.ToDense())
		require.NoError(t, err)
		requireClose(t, want, shortcut, 0)

		dense := zeros(t, tc.n)
		require.NoError(t, blocks.AddTInterpolated(dense, psi, blocks.Boundary{}))
		requireClose(t, want, dense, 0)
	}
}

// TestWeighted_ShortcutsEqualDenseProducts compares T and E shortcuts with ΨᵗQΨ and ΨᵗQ.
func TestWeighted_ShortcutsEqualDenseProducts(t *testing.T) {
	for _, tc := range []struct{ s, n int }{{3, 5}, {50, 40}, {200, 250}} {
		k := randomNodeMap(tc.s, tc.n, int64(tc.s+tc.n))
		psi := unitPsi(t, k, tc.n)
		Q := randomSymmetric(t, tc.s, int64(tc.s))

		E, err := blocks.EWeighted(k, Q, tc.n)
		require.NoError(t, err)
		wantE, err := psi.TMulDense(Q)
		require.NoError(t, err)
		requireClose(t, wantE, E, 1e-12)

		Einterp, err := blocks.EWeightedInterpolated(psi, Q)
		require.NoError(t, err)
		requireClose(t, wantE, Einterp, 1e-12)

		T := zeros(t, tc.n)
		require.NoError(t, blocks.AddTWeighted(T, k, Q, blocks.Boundary{}))
		dense := zeros(t, tc.n)
		require.NoError(t, blocks.AddTWeightedInterpolated(dense, psi, Q, blocks.Boundary{}))
		requireClose(t, dense, T, 1e-12)
	}
}

// TestAddTPlain_BoundaryBranches checks pen−1 (observed node) and pen (free node).
func TestAddTPlain_BoundaryBranches(t *testing.T) {
	const n = 6
	k := []int{1, 3, 4}
	bc := blocks.Boundary{Indices: []int{3, 5}, Weight: 100}

	base := zeros(t, n)
	require.NoError(t, blocks.AddTPlain(base, k, blocks.Boundary{}))
	withBC := zeros(t, n)
	require.NoError(t, blocks.AddTPlain(withBC, k, bc))

	require.Equal(t, 100.0-1, at(t, withBC, 3, 3)-at(t, base, 3, 3))
	require.Equal(t, 100.0, at(t, withBC, 5, 5)-at(t, base, 5, 5))
	require.Equal(t, 100.0, at(t, withBC, 3, 3))
	require.Equal(t, 1.0, at(t, withBC, 1, 1))

	// Default penalty: the diagonal lands exactly on Penalty.
	def := zeros(t, n)
	require.NoError(t, blocks.AddTPlain(def, k, blocks.NewBoundary(3, 5)))
	require.Equal(t, blocks.Penalty, at(t, def, 3, 3))
	require.Equal(t, blocks.Penalty, at(t, def, 5, 5))
}

// TestAddTWeighted_BoundaryBranches checks pen−Q[j,j] (observed node) and pen (free node).
func TestAddTWeighted_BoundaryBranches(t *testing.T) {
	const n = 6
	k := []int{1, 3, 4}
	Q := randomSymmetric(t, 3, 42)
	bc := blocks.Boundary{Indices: []int{3, 5}, Weight: 100}

	base := zeros(t, n)
	require.NoError(t, blocks.AddTWeighted(base, k, Q, blocks.Boundary{}))
	withBC := zeros(t, n)
	require.NoError(t, blocks.AddTWeighted(withBC, k, Q, bc))

	// Observation 1 sits on node 3.
	require.InDelta(t, 100-at(t, Q, 1, 1), at(t, withBC, 3, 3)-at(t, base, 3, 3), 1e-12)
	require.Equal(t, 100.0, at(t, withBC, 5, 5)-at(t, base, 5, 5))
	require.InDelta(t, 100.0, at(t, withBC, 3, 3), 1e-12)
	// Off-diagonal coupling is left untouched.
	require.Equal(t, at(t, base, 3, 4), at(t, withBC, 3, 4))
}

// TestBoundary_RepeatedObservations lands on the penalty when several
// observations share a boundary node, on both shortcut paths.
func TestBoundary_RepeatedObservations(t *testing.T) {
	const n = 5
	k := []int{2, 0, 2, 4, 2}
	bc := blocks.Boundary{Indices: []int{2, 4, 1}, Weight: 1e6}

	plain := zeros(t, n)
	require.NoError(t, blocks.AddTPlain(plain, k, bc))
	for _, id := range bc.Indices {
		require.Equal(t, 1e6, at(t, plain, id, id), "node %d", id)
	}
	require.Equal(t, 1.0, at(t, plain, 0, 0))

	Q := randomSymmetric(t, len(k), 3)
	weighted := zeros(t, n)
	require.NoError(t, blocks.AddTWeighted(weighted, k, Q, bc))
	for _, id := range bc.Indices {
		require.InDelta(t, 1e6, at(t, weighted, id, id), 1e-8, "node %d", id)
	}
	require.InDelta(t, at(t, Q, 1, 1), at(t, weighted, 0, 0), 1e-12)
}

// TestDensePaths_OverwriteBoundaryDiagonal checks the overwrite semantics and accumulation.
func TestDensePaths_OverwriteBoundaryDiagonal(t *testing.T) {
	const n = 4
	psi, err := matrix.NewSparse(2, n, []matrix.Triplet{
		{Row: 0, Col: 0, Value: 0.5}, {Row: 0, Col: 1, Value: 0.5},
		{Row: 1, Col: 2, Value: 0.25}, {Row: 1, Col: 3, Value: 0.75},
	})
	require.NoError(t, err)
	areas := []float64{2, 3}
	Q := randomSymmetric(t, 2, 7)
	bc := blocks.Boundary{Indices: []int{1}, Weight: 50}

	cases := map[string]func(T *matrix.Dense) error{
		"interpolated": func(T *matrix.Dense) error { return blocks.AddTInterpolated(T, psi, bc) },
		"weighted interpolated": func(T *matrix.Dense) error {
			return blocks.AddTWeightedInterpolated(T, psi, Q, bc)
		},
		"areal":          func(T *matrix.Dense) error { return blocks.AddTAreal(T, psi, areas, bc) },
		"weighted areal": func(T *matrix.Dense) error { return blocks.AddTWeightedAreal(T, psi, areas, Q, bc) },
	}
	for name, build := range cases {
		t.Run(name, func(t *testing.T) {
			fresh := zeros(t, n)
			require.NoError(t, build(fresh))
			require.Equal(t, 50.0, at(t, fresh, 1, 1))

			// Prior content must be preserved: T += temp.
			T := zeros(t, n)
			require.NoError(t, T.Set(1, 1, 7))
			require.NoError(t, T.Set(0, 0, 1))
			require.NoError(t, build(T))
			require.Equal(t, 57.0, at(t, T, 1, 1))
			require.InDelta(t, at(t, fresh, 0, 0)+1, at(t, T, 0, 0), 1e-15)
		})
	}
}

// TestAddTAreal_MatchesExplicitProduct checks Ψᵗ·diag(A)·Ψ.
func TestAddTAreal_MatchesExplicitProduct(t *testing.T) {
	psi, err := matrix.NewSparse(2, 3, []matrix.Triplet{
		{Row: 0, Col: 0, Value: 1}, {Row: 0, Col: 1, Value: 2},
		{Row: 1, Col: 1, Value: 1}, {Row: 1, Col: 2, Value: 1},
	})
	require.NoError(t, err)
	T := zeros(t, 3)
	require.NoError(t, blocks.AddTAreal(T, psi, []float64{2, 5}, blocks.Boundary{}))

	want, err := matrix.NewDenseFrom(3, 3, []float64{
		2, 4, 0,
		4, 13, 5,
		0, 5, 5,
	})
	require.NoError(t, err)
	requireClose(t, want, T, 0)

	E, err := blocks.EAreal(psi, []float64{2, 5})
	require.NoError(t, err)
	wantE, err := matrix.NewDenseFrom(3, 2, []float64{2, 0, 4, 5, 0, 5})
	require.NoError(t, err)
	requireClose(t, wantE, E, 0)

	I, err := matrix.NewIdentity(2)
	require.NoError(t, err)
	EW, err := blocks.EWeightedAreal(psi, []float64{2, 5}, I)
	require.NoError(t, err)
	requireClose(t, wantE, EW, 0)
}

// TestEPlain_IsPsiTranspose compares with the interpolated form.
func TestEPlain_IsPsiTranspose(t *testing.T) {
	k := []int{2, 0, 2}
	E, err := blocks.EPlain(k, 4)
	require.NoError(t, err)
	E2, err := blocks.EInterpolated(unitPsi(t, k, 4))
	require.NoError(t, err)
	requireClose(t, E2, E, 0)
}

// TestZHat checks both fitted-vector forms.
func TestZHat(t *testing.T) {
	S, err := matrix.NewDenseFrom(2, 2, []float64{0.5, 0.5, 0.5, 0.5})
	require.NoError(t, err)
	z := []float64{1, 3}

	zh, err := blocks.ZHatPlain(S, z)
	require.NoError(t, err)
	require.Equal(t, []float64{2, 2}, zh)

	H, err := matrix.NewDenseFrom(2, 2, []float64{1, 0, 0, 0})
	require.NoError(t, err)
	Q, err := matrix.NewDenseFrom(2, 2, []float64{0, 0, 0, 1})
	require.NoError(t, err)
	zw, err := blocks.ZHatWeighted(H, Q, S, z)
	require.NoError(t, err)
	require.Equal(t, []float64{1, 2}, zw)
}

// TestBuilders_RejectMalformedInput covers the structural guards.
func TestBuilders_RejectMalformedInput(t *testing.T) {
	T := zeros(t, 3)
	require.ErrorIs(t, blocks.AddTPlain(T, []int{3}, blocks.Boundary{}), blocks.ErrIndexOutOfRange)
	require.ErrorIs(t, blocks.AddTPlain(T, []int{0}, blocks.NewBoundary(-1)), blocks.ErrIndexOutOfRange)
	require.ErrorIs(t, blocks.AddTWeighted(T, []int{0, 1}, zeros(t, 3), blocks.Boundary{}), blocks.ErrDimensionMismatch)
	require.ErrorIs(t, blocks.AddTAreal(T, unitPsi(t, []int{0}, 3), []float64{1, 2}, blocks.Boundary{}), blocks.ErrDimensionMismatch)
	require.ErrorIs(t, blocks.AddTPlain(nil, []int{0}, blocks.Boundary{}), blocks.ErrNilInput)

	rect, err := matrix.NewDense(3, 2)
	require.NoError(t, err)
	require.ErrorIs(t, blocks.AddTPlain(rect, []int{0}, blocks.Boundary{}), blocks.ErrDimensionMismatch)

	_, err = blocks.EWeighted([]int{0, 5}, zeros(t, 2), 3)
	require.ErrorIs(t, err, blocks.ErrIndexOutOfRange)

	// Empty boundary is a no-op.
	before := T.CloneDense()
	require.NoError(t, blocks.AddTPlain(T, nil, blocks.Boundary{}))
	requireClose(t, before, T, 0)
}

func at(t *testing.T, m matrix.Matrix, i, j int) float64 {
	t.Helper()
	v, err := m.At(i, j)
	require.NoError(t, err)
	return v
}
