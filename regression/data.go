// SPDX-License-Identifier: MIT

package regression

import (
	"math"

	"github.com/katalvlaran/fesmooth/matrix"
)

const opValidate = "Data.Validate"

// Data is the regression configuration of one problem.
//   - Observations: z, one value per location (pointwise) or region (areal).
//   - Covariates: W, s×q; nil when the model has no covariates.
//   - Incidence: regions×elements membership weights; nil for pointwise data.
//   - BCIndices/BCValues: Dirichlet nodes and their prescribed values.
type Data struct {
	Observations []float64
	Covariates   *matrix.Dense
	Incidence    *matrix.Dense
	BCIndices    []int
	BCValues     []float64
}

// NumObservations returns s.
func (d *Data) NumObservations() int { return len(d.Observations) }

// NumberOfRegions returns the number of areal regions (0 for pointwise data).
func (d *Data) NumberOfRegions() int {
	if d.Incidence == nil {
		return 0
	}
	return d.Incidence.Rows()
}

// HasCovariates reports whether a covariate matrix is present.
func (d *Data) HasCovariates() bool { return d.Covariates != nil }

// NumCovariates returns q (0 without covariates).
func (d *Data) NumCovariates() int {
	if d.Covariates == nil {
		return 0
	}
	return d.Covariates.Cols()
}

// Validate checks internal consistency. Mesh-dependent checks (boundary
// index range, operator shapes) happen where the mesh size is known.
func (d *Data) Validate() error {
	s := len(d.Observations)
	if s == 0 {
		return regressionErrorf(opValidate, ErrNoObservations)
	}
	for _, z := range d.Observations {
		if math.IsNaN(z) || math.IsInf(z, 0) {
			return regressionErrorf(opValidate, ErrNonFinite)
		}
	}
	if d.Covariates != nil && d.Covariates.Rows() != s {
		return regressionErrorf(opValidate, ErrDimensionMismatch)
	}
	if d.Incidence != nil && d.Incidence.Rows() != s {
		return regressionErrorf(opValidate, ErrDimensionMismatch)
	}
	if len(d.BCIndices) != len(d.BCValues) {
		return regressionErrorf(opValidate, ErrBoundaryMismatch)
	}
	for _, v := range d.BCValues {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return regressionErrorf(opValidate, ErrNonFinite)
		}
	}

	return nil
}
