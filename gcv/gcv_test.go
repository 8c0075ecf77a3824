// SPDX-License-Identifier: MIT
package gcv_test

import (
	"math"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/katalvlaran/fesmooth/carrier"
	"github.com/katalvlaran/fesmooth/gcv"
	"github.com/katalvlaran/fesmooth/matrix"
	"github.com/katalvlaran/fesmooth/optdata"
	"github.com/katalvlaran/fesmooth/regression"
)

var (
	testZ     = []float64{0.1, 0.9, 0.4, -0.3, -0.8, 0.2}
	testNodes = []int{0, 2, 3, 5, 7, 9}
)

// newCarrier builds 6 pointwise observations on a 10-node unit interval.
func newCarrier(t *testing.T, cfg optdata.Config, covariates []float64) carrier.Carrier {
	t.Helper()
	data := &regression.Data{Observations: testZ}
	if covariates != nil {
		W, err := matrix.NewDenseFrom(len(covariates), 1, covariates)
		require.NoError(t, err)
		data.Covariates = W
	}
	mesh, err := regression.NewInterval(10, 1)
	require.NoError(t, err)
	psi, err := regression.NodeObservationOperator(testNodes, mesh.NumNodes())
	require.NoError(t, err)
	m, err := regression.NewFEModel(data, regression.Operators{Psi: psi, Mass: mesh.Mass(), Stiffness: mesh.Stiffness()})
	require.NoError(t, err)
	c, err := carrier.Build(data, m, cfg)
	require.NoError(t, err)
	return c
}

// TestNew_SelectsMode verifies evaluator selection from the DOF mode.
func TestNew_SelectsMode(t *testing.T) {
	cfg := optdata.DefaultConfig()
	ev, err := gcv.New(newCarrier(t, cfg, nil))
	require.NoError(t, err)
	require.Equal(t, optdata.Exact, ev.Mode())

	cfg.DOF = optdata.Stochastic
	ev, err = gcv.New(newCarrier(t, cfg, nil))
	require.NoError(t, err)
	require.Equal(t, optdata.Stochastic, ev.Mode())
	require.Equal(t, optdata.DefaultProbes, ev.(*gcv.Stochastic).NumProbes())

	cfg.DOF = optdata.NotRequired
	_, err = gcv.New(newCarrier(t, cfg, nil))
	require.ErrorIs(t, err, gcv.ErrUnsupportedDOF)

	_, err = gcv.New(nil)
	require.ErrorIs(t, err, gcv.ErrNilCarrier)
}

// TestExact_Degenerate covers λ values for which the fit is undefined.
func TestExact_Degenerate(t *testing.T) {
	ev := gcv.NewExact(newCarrier(t, optdata.DefaultConfig(), nil))
	for _, l := range []float64{0, -1, math.NaN(), math.Inf(1)} {
		got, err := ev.Evaluate(l)
		require.NoError(t, err)
		require.True(t, got.Degenerate, "λ=%v", l)
		require.True(t, math.IsInf(got.Score, 1))
		require.Zero(t, got.Grad)
		require.Zero(t, got.Hess)
	}
	out := ev.Output()
	require.Equal(t, 4, out.Evaluations)
	require.Equal(t, 4, out.Degenerate)
}

// TestExact_DOFMonotone verifies that the degrees of freedom decrease with λ.
func TestExact_DOFMonotone(t *testing.T) {
	ev := gcv.NewExact(newCarrier(t, optdata.DefaultConfig(), nil))
	prev := math.Inf(1)
	for _, l := range []float64{1e-3, 1e-2, 1e-1, 1, 10, 100, 1000} {
		got, err := ev.Evaluate(l)
		require.NoError(t, err)
		require.False(t, got.Degenerate, "λ=%v", l)
		require.LessOrEqual(t, got.DOF, prev+1e-9, "λ=%v", l)
		require.Greater(t, got.DOF, 0.0)
		require.Less(t, got.DOF, float64(len(testZ)))
		prev = got.DOF
	}
}

// TestExact_DerivativesMatchFiniteDifferences checks Grad and Hess against
// central differences of Score and Grad.
func TestExact_DerivativesMatchFiniteDifferences(t *testing.T) {
	ev := gcv.NewExact(newCarrier(t, optdata.DefaultConfig(), nil))
	for _, l := range []float64{0.003, 0.05} {
		h := 1e-4 * l
		mid, err := ev.Evaluate(l)
		require.NoError(t, err)
		lo, err := ev.Evaluate(l - h)
		require.NoError(t, err)
		hi, err := ev.Evaluate(l + h)
		require.NoError(t, err)

		// Score/λ and Score/λ² set the natural scale of the derivatives.
		fdGrad := (hi.Score - lo.Score) / (2 * h)
		fdHess := (hi.Grad - lo.Grad) / (2 * h)
		require.InDelta(t, fdGrad, mid.Grad, 1e-4*math.Max(math.Abs(fdGrad), mid.Score/l), "grad at λ=%v", l)
		require.InDelta(t, fdHess, mid.Hess, 1e-4*math.Max(math.Abs(fdHess), mid.Score/(l*l)), "hess at λ=%v", l)
	}
}

// TestExact_WeightedCountsCovariates checks dof = q + tr S > q.
func TestExact_WeightedCountsCovariates(t *testing.T) {
	c := newCarrier(t, optdata.DefaultConfig(), []float64{0.3, -1.2, 0.8, 2.0, -0.5, 1.1})
	require.Equal(t, carrier.Weighted, c.Variant())
	ev := gcv.NewExact(c)

	got, err := ev.Evaluate(0.05)
	require.NoError(t, err)
	require.False(t, got.Degenerate)
	require.Greater(t, got.DOF, 1.0)

	S, err := ev.Smoother(0.05)
	require.NoError(t, err)
	trS, err := matrix.Trace(S)
	require.NoError(t, err)
	require.InDelta(t, 1+trS, got.DOF, 1e-10)

	// RSS agrees with the fitted vector built from the explicit smoother.
	zhat, err := c.ZHat(S)
	require.NoError(t, err)
	var rss float64
	for i := range testZ {
		d := testZ[i] - zhat[i]
		rss += d * d
	}
	require.InDelta(t, rss, got.RSS, 1e-10)
}

// TestStochastic_CloseToExact compares the estimates with the exact values.
func TestStochastic_CloseToExact(t *testing.T) {
	cfg := optdata.DefaultConfig()
	cfg.DOF = optdata.Stochastic
	cfg.Seed = 42
	cfg.Probes = 2000
	c := newCarrier(t, cfg, nil)

	exact, err := gcv.NewExact(c).Evaluate(0.01)
	require.NoError(t, err)
	est, err := gcv.NewStochastic(c, gcv.WithCGOptions(matrix.WithTolerance(1e-12))).Evaluate(0.01)
	require.NoError(t, err)

	require.False(t, est.Degenerate)
	require.InEpsilon(t, exact.DOF, est.DOF, 0.1)
	require.InEpsilon(t, exact.Score, est.Score, 0.15)
	// Fitted values come from converged solves, not from probes.
	require.InEpsilon(t, exact.RSS, est.RSS, 1e-4)

	zero, err := gcv.NewStochastic(c).Evaluate(0)
	require.NoError(t, err)
	require.True(t, zero.Degenerate)
}

// TestStochastic_SeedDeterminism checks reproducibility under a fixed seed.
func TestStochastic_SeedDeterminism(t *testing.T) {
	cfg := optdata.DefaultConfig()
	cfg.DOF = optdata.Stochastic
	c := newCarrier(t, cfg, nil)

	a, err := gcv.NewStochastic(c, gcv.WithSeed(7), gcv.WithProbes(50)).Evaluate(0.02)
	require.NoError(t, err)
	b, err := gcv.NewStochastic(c, gcv.WithSeed(7), gcv.WithProbes(50)).Evaluate(0.02)
	require.NoError(t, err)
	require.Equal(t, a, b)

	// Seed 0 selects the fixed default seed.
	d0, err := gcv.NewStochastic(c, gcv.WithSeed(0), gcv.WithProbes(50)).Evaluate(0.02)
	require.NoError(t, err)
	d1, err := gcv.NewStochastic(c, gcv.WithSeed(1), gcv.WithProbes(50)).Evaluate(0.02)
	require.NoError(t, err)
	require.Equal(t, d0, d1)
}

// TestRademacherProbes checks ±1 entries and stable prefixes.
func TestRademacherProbes(t *testing.T) {
	long := gcv.RademacherProbes(3, 8, 20)
	short := gcv.RademacherProbes(3, 8, 5)
	require.Len(t, long, 20)
	require.Equal(t, short, long[:5])
	for _, u := range long {
		require.Len(t, u, 8)
		for _, v := range u {
			require.Contains(t, []float64{-1, 1}, v)
		}
	}
}

// TestEvaluate_Concurrent runs evaluations from several goroutines.
func TestEvaluate_Concurrent(t *testing.T) {
	ev := gcv.NewExact(newCarrier(t, optdata.DefaultConfig(), nil))
	want, err := ev.Evaluate(0.1)
	require.NoError(t, err)

	var wg sync.WaitGroup
	results := make([]gcv.Evaluation, 8)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], _ = ev.Evaluate(0.1)
		}(i)
	}
	wg.Wait()
	for _, r := range results {
		require.Equal(t, want, r)
	}
	require.Equal(t, 9, ev.Output().Evaluations)
}

// TestDefaultLambda verifies the trace-ratio starting point.
func TestDefaultLambda(t *testing.T) {
	c := newCarrier(t, optdata.DefaultConfig(), nil)
	l := gcv.DefaultLambda(c)
	require.Greater(t, l, 0.0)
	trT, err := matrix.Trace(c.T())
	require.NoError(t, err)
	trR, err := matrix.Trace(c.Penalty())
	require.NoError(t, err)
	require.InEpsilon(t, trT/trR, l, 1e-12)
}

// TestEvaluate_RSSMatchesApply checks that the scored fit is the one Apply
// returns when the right-hand side carries forcing and boundary values.
func TestEvaluate_RSSMatchesApply(t *testing.T) {
	u := make([]float64, 10)
	for i := range u {
		u[i] = float64(i*i) - 20
	}
	w := []float64{0.3, -1.2, 0.8, 2.0, -0.5, 1.1}

	cases := []struct {
		name       string
		covariates []float64
		bcIndices  []int
		bcValues   []float64
	}{
		{name: "forcing"},
		{name: "forcing with boundary values", bcIndices: []int{0, 9}, bcValues: []float64{0.5, -0.25}},
		{name: "forcing with covariate", covariates: w},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			data := &regression.Data{Observations: testZ, BCIndices: tc.bcIndices, BCValues: tc.bcValues}
			if tc.covariates != nil {
				W, err := matrix.NewDenseFrom(len(tc.covariates), 1, tc.covariates)
				require.NoError(t, err)
				data.Covariates = W
			}
			mesh, err := regression.NewInterval(10, 1)
			require.NoError(t, err)
			psi, err := regression.NodeObservationOperator(testNodes, mesh.NumNodes())
			require.NoError(t, err)
			m, err := regression.NewFEModel(data, regression.Operators{
				Psi: psi, Mass: mesh.Mass(), Stiffness: mesh.Stiffness(), Forcing: u,
			})
			require.NoError(t, err)
			c, err := carrier.Build(data, m, optdata.DefaultConfig())
			require.NoError(t, err)
			ev := gcv.NewExact(c)

			for _, l := range []float64{0.01, 1} {
				got, err := ev.Evaluate(l)
				require.NoError(t, err)
				require.False(t, got.Degenerate)

				f, err := c.Apply(l)
				require.NoError(t, err)
				fit, err := psi.MulVec(f)
				require.NoError(t, err)
				beta := c.Model().Beta()
				var rss float64
				for i := range testZ {
					if beta != nil {
						fit[i] += tc.covariates[i] * beta[0]
					}
					d := testZ[i] - fit[i]
					rss += d * d
				}
				require.InDelta(t, rss, got.RSS, 1e-9*math.Max(1, rss), "λ=%v", l)
			}

			// The forcing term moves with λ, so Grad must track it too.
			l, h := 0.05, 5e-6
			mid, err := ev.Evaluate(l)
			require.NoError(t, err)
			lo, err := ev.Evaluate(l - h)
			require.NoError(t, err)
			hi, err := ev.Evaluate(l + h)
			require.NoError(t, err)
			fdGrad := (hi.Score - lo.Score) / (2 * h)
			fdHess := (hi.Grad - lo.Grad) / (2 * h)
			require.InDelta(t, fdGrad, mid.Grad, 1e-4*math.Max(math.Abs(fdGrad), mid.Score/l))
			require.InDelta(t, fdHess, mid.Hess, 1e-4*math.Max(math.Abs(fdHess), mid.Score/(l*l)))
		})
	}
}

// TestStochastic_RSSWithForcing compares stochastic and exact fits under forcing.
func TestStochastic_RSSWithForcing(t *testing.T) {
	u := make([]float64, 10)
	for i := range u {
		u[i] = float64(i*i) - 20
	}
	data := &regression.Data{Observations: testZ}
	mesh, err := regression.NewInterval(10, 1)
	require.NoError(t, err)
	psi, err := regression.NodeObservationOperator(testNodes, mesh.NumNodes())
	require.NoError(t, err)
	m, err := regression.NewFEModel(data, regression.Operators{
		Psi: psi, Mass: mesh.Mass(), Stiffness: mesh.Stiffness(), Forcing: u,
	})
	require.NoError(t, err)
	cfg := optdata.DefaultConfig()
	cfg.DOF = optdata.Stochastic
	c, err := carrier.Build(data, m, cfg)
	require.NoError(t, err)

	exact, err := gcv.NewExact(c).Evaluate(0.1)
	require.NoError(t, err)
	est, err := gcv.NewStochastic(c, gcv.WithCGOptions(matrix.WithTolerance(1e-12))).Evaluate(0.1)
	require.NoError(t, err)
	require.InEpsilon(t, exact.RSS, est.RSS, 1e-6)
}
