// SPDX-License-Identifier: MIT

package optdata

import (
	"fmt"
	"math"
	"os"

	"gopkg.in/yaml.v3"
)

// Defaults applied by DefaultConfig and by ParseConfig for omitted keys.
const (
	// DefaultTolerance is the relative step tolerance |Δλ| ≤ tol·λ.
	DefaultTolerance = 5e-2

	// DefaultMaxIter bounds the Newton iterations.
	DefaultMaxIter = 40

	// DefaultProbes is the Rademacher probe count of the stochastic evaluator.
	DefaultProbes = 100

	// UnsetLambda is the sentinel initial λ: the strategy picks its own start.
	UnsetLambda = -1.0
)

const (
	opValidate    = "Config.Validate"
	opParseConfig = "ParseConfig"
	opLoadConfig  = "LoadConfig"
)

// Config is the optimization configuration.
//
// Fields:
//   - Loss, DOF, Criterion: the strategy triple; see Validate for the supported set.
//   - InitialLambda: Newton start; ≤ 0 or NaN means "choose a default".
//   - Lambdas: batch grid, evaluated in order.
//   - Tolerance, MaxIter: Newton stopping rules.
//   - Seed, Probes: stochastic evaluator; Seed 0 selects a fixed default seed,
//     Probes 0 selects DefaultProbes.
//   - Parallel: evaluate the batch grid concurrently.
type Config struct {
	Loss          LossFunction  `yaml:"loss"`
	DOF           DOFEvaluation `yaml:"dof_evaluation"`
	Criterion     Criterion     `yaml:"criterion"`
	InitialLambda float64       `yaml:"initial_lambda"`
	Lambdas       []float64     `yaml:"lambdas,omitempty"`
	Tolerance     float64       `yaml:"tolerance"`
	MaxIter       int           `yaml:"max_iter"`
	Seed          int64         `yaml:"seed"`
	Probes        int           `yaml:"probes"`
	Parallel      bool          `yaml:"parallel"`
}

// DefaultConfig returns GCV with exact DOF and Newton's method.
func DefaultConfig() Config {
	return Config{
		Loss:          GCV,
		DOF:           Exact,
		Criterion:     NewtonExact,
		InitialLambda: UnsetLambda,
		Tolerance:     DefaultTolerance,
		MaxIter:       DefaultMaxIter,
		Probes:        DefaultProbes,
	}
}

// Validate checks the configuration before any carrier is built.
//
// Supported: loss GCV with dof exact or stochastic, under any criterion.
// Loss Unused and dof NotRequired have no implementation.
//
// Errors: ErrUnsupportedCombination, ErrEmptyGrid, ErrBadGrid, ErrBadTolerance,
// ErrBadMaxIter, ErrBadProbes.
func (c Config) Validate() error {
	if !c.Loss.Valid() || !c.DOF.Valid() || !c.Criterion.Valid() {
		return optdataErrorf(opValidate, ErrUnsupportedCombination)
	}
	if c.Loss != GCV || c.DOF == NotRequired {
		return fmt.Errorf("%s: %w (%s, %s, %s)", opValidate, ErrUnsupportedCombination, c.Loss, c.DOF, c.Criterion)
	}

	if c.Criterion == Batch {
		if len(c.Lambdas) == 0 {
			return optdataErrorf(opValidate, ErrEmptyGrid)
		}
		for _, l := range c.Lambdas {
			if l < 0 || math.IsNaN(l) || math.IsInf(l, 0) {
				return fmt.Errorf("%s: %w: %v", opValidate, ErrBadGrid, l)
			}
		}
	} else {
		if !(c.Tolerance > 0) || math.IsInf(c.Tolerance, 0) {
			return optdataErrorf(opValidate, ErrBadTolerance)
		}
		if c.MaxIter < 1 {
			return optdataErrorf(opValidate, ErrBadMaxIter)
		}
	}
	if c.Probes < 0 {
		return optdataErrorf(opValidate, ErrBadProbes)
	}

	return nil
}

// NumProbes returns Probes, or DefaultProbes when unset.
func (c Config) NumProbes() int {
	if c.Probes == 0 {
		return DefaultProbes
	}
	return c.Probes
}

// HasInitialLambda reports whether InitialLambda is a usable start (> 0, finite).
func (c Config) HasInitialLambda() bool {
	return c.InitialLambda > 0 && !math.IsInf(c.InitialLambda, 0)
}

// ParseConfig decodes YAML over DefaultConfig and validates the result.
func ParseConfig(b []byte) (Config, error) {
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return Config{}, optdataErrorf(opParseConfig, err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

// LoadConfig reads and parses a YAML configuration file.
func LoadConfig(path string) (Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return Config{}, optdataErrorf(opLoadConfig, err)
	}

	return ParseConfig(b)
}

// Marshal encodes c as YAML.
func (c Config) Marshal() ([]byte, error) {
	return yaml.Marshal(c)
}
