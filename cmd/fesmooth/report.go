// SPDX-License-Identifier: MIT
package main

import (
	"github.com/katalvlaran/fesmooth/selector"
)

type point struct {
	Lambda float64 `yaml:"lambda"`
	GCV    float64 `yaml:"gcv"`
}

// report is the YAML document printed after a run.
type report struct {
	RunID            string    `yaml:"run_id"`
	Variant          string    `yaml:"variant"`
	DOFEvaluation    string    `yaml:"dof_evaluation"`
	Criterion        string    `yaml:"criterion"`
	Lambda           float64   `yaml:"lambda"`
	GCV              float64   `yaml:"gcv"`
	DOF              float64   `yaml:"dof"`
	State            string    `yaml:"state"`
	Reason           string    `yaml:"reason"`
	Iterations       int       `yaml:"iterations"`
	Evaluations      int       `yaml:"evaluations"`
	Elapsed          string    `yaml:"elapsed"`
	SpatiallyVarying bool      `yaml:"spatially_varying"`
	Betas            []float64 `yaml:"betas,omitempty"`
	Trajectory       []point   `yaml:"trajectory"`
	Coefficients     []float64 `yaml:"coefficients"`
}

func newReport(sol selector.Solution) report {
	d := sol.Diagnostics
	r := report{
		RunID:            d.RunID.String(),
		Variant:          d.Variant.String(),
		DOFEvaluation:    d.DOFMode.String(),
		Criterion:        d.Criterion.String(),
		Lambda:           d.Lambda,
		GCV:              d.Score,
		DOF:              d.DOF,
		State:            d.State.String(),
		Reason:           d.Reason.String(),
		Iterations:       d.Iterations,
		Evaluations:      d.Evaluations,
		Elapsed:          d.Elapsed.String(),
		SpatiallyVarying: d.SpatiallyVarying,
		Betas:            d.Betas,
		Coefficients:     sol.Coefficients,
	}
	for i, l := range d.Lambdas {
		r.Trajectory = append(r.Trajectory, point{Lambda: l, GCV: d.Scores[i]})
	}

	return r
}
