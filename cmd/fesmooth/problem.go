// SPDX-License-Identifier: MIT
package main

import (
	"errors"
	"fmt"
	"os"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/katalvlaran/fesmooth/matrix"
	"github.com/katalvlaran/fesmooth/optdata"
	"github.com/katalvlaran/fesmooth/regression"
)

var (
	errLocations = errors.New("observations: exactly one of nodes, points or regions is required")
	errShape     = errors.New("ragged matrix")
)

// problem is the YAML problem file.
//
//	mesh: {nodes: 11, length: 1}
//	observations:
//	  points: [0.05, 0.3, 0.5]    # or nodes: [...], or regions: [[incidence row], ...]
//	  values: [0.1, 0.9, 0.4]
//	covariates: [[0.3], [-1.2], [0.8]]
//	forcing: [...]                # one value per node
//	boundary: {indices: [0], values: [0]}
//	optimization: {criterion: newton, dof_evaluation: exact}
type problem struct {
	Mesh struct {
		Nodes  int     `yaml:"nodes"`
		Length float64 `yaml:"length"`
	} `yaml:"mesh"`
	Observations struct {
		Nodes   []int       `yaml:"nodes,omitempty"`
		Points  []float64   `yaml:"points,omitempty"`
		Regions [][]float64 `yaml:"regions,omitempty"`
		Values  []float64   `yaml:"values"`
	} `yaml:"observations"`
	Covariates [][]float64 `yaml:"covariates,omitempty"`
	Forcing    []float64   `yaml:"forcing,omitempty"`
	Boundary   struct {
		Indices []int     `yaml:"indices,omitempty"`
		Values  []float64 `yaml:"values,omitempty"`
	} `yaml:"boundary"`
	Optimization optdata.Config `yaml:"optimization"`
}

// parseProblem decodes a problem; the optimization block starts from
// optdata.DefaultConfig so omitted keys keep their defaults.
func parseProblem(b []byte) (*problem, error) {
	p := &problem{Optimization: optdata.DefaultConfig()}
	if err := yaml.Unmarshal(b, p); err != nil {
		return nil, fmt.Errorf("parse problem: %w", err)
	}

	return p, nil
}

func loadProblem(path string) (*problem, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read problem: %w", err)
	}

	return parseProblem(b)
}

// build assembles the mesh operators, the regression data and the model.
func (p *problem) build(logger *zap.Logger) (*regression.Data, regression.Model, error) {
	mesh, err := regression.NewInterval(p.Mesh.Nodes, p.Mesh.Length)
	if err != nil {
		return nil, nil, err
	}
	data := &regression.Data{
		Observations: p.Observations.Values,
		BCIndices:    p.Boundary.Indices,
		BCValues:     p.Boundary.Values,
	}
	if len(p.Covariates) > 0 {
		if data.Covariates, err = denseFromRows(p.Covariates); err != nil {
			return nil, nil, fmt.Errorf("covariates: %w", err)
		}
	}

	ops := regression.Operators{
		Mass:      mesh.Mass(),
		Stiffness: mesh.Stiffness(),
		Forcing:   p.Forcing,
	}
	obs := p.Observations
	set := 0
	for _, ok := range []bool{len(obs.Nodes) > 0, len(obs.Points) > 0, len(obs.Regions) > 0} {
		if ok {
			set++
		}
	}
	switch {
	case set != 1:
		return nil, nil, errLocations
	case len(obs.Nodes) > 0:
		ops.Psi, err = regression.NodeObservationOperator(obs.Nodes, mesh.NumNodes())
	case len(obs.Points) > 0:
		ops.Psi, err = mesh.PointOperator(obs.Points)
	default:
		if data.Incidence, err = denseFromRows(obs.Regions); err != nil {
			return nil, nil, fmt.Errorf("regions: %w", err)
		}
		ops.Psi, ops.Areas, err = mesh.RegionOperator(data.Incidence)
	}
	if err != nil {
		return nil, nil, err
	}

	model, err := regression.NewFEModel(data, ops, regression.WithLogger(logger))
	if err != nil {
		return nil, nil, err
	}

	return data, model, nil
}

func denseFromRows(rows [][]float64) (*matrix.Dense, error) {
	cols := len(rows[0])
	flat := make([]float64, 0, len(rows)*cols)
	for _, r := range rows {
		if len(r) != cols {
			return nil, errShape
		}
		flat = append(flat, r...)
	}

	return matrix.NewDenseFrom(len(rows), cols, flat)
}
