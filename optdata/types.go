// SPDX-License-Identifier: MIT

package optdata

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// LossFunction selects the criterion minimized over λ.
type LossFunction int

const (
	// GCV is generalized cross-validation, the only implemented loss.
	GCV LossFunction = iota

	// Unused marks a configuration that does not minimize any loss.
	Unused
)

// DOFEvaluation selects how tr(S) and its λ-derivatives are obtained.
//
//   - Exact: dense smoothing matrix and its derivatives.
//   - Stochastic: Hutchinson trace estimates with Rademacher probes.
//   - NotRequired: no DOF at all (not usable with GCV).
type DOFEvaluation int

const (
	Exact DOFEvaluation = iota
	Stochastic
	NotRequired
)

// Criterion selects the search strategy.
type Criterion int

const (
	// Batch evaluates a fixed grid and keeps the minimizer.
	Batch Criterion = iota

	// NewtonExact runs Newton's method on analytic derivatives.
	NewtonExact

	// NewtonFD runs Newton's method on central finite differences of the score.
	NewtonFD
)

var (
	lossNames      = [...]string{GCV: "GCV", Unused: "unused"}
	dofNames       = [...]string{Exact: "exact", Stochastic: "stochastic", NotRequired: "not_required"}
	criterionNames = [...]string{Batch: "batch", NewtonExact: "newton", NewtonFD: "newton_fd"}
)

func enumName(names []string, v int, kind string) string {
	if v < 0 || v >= len(names) {
		return fmt.Sprintf("%s(%d)", kind, v)
	}
	return names[v]
}

func enumValue(names []string, s string) (int, bool) {
	for i, n := range names {
		if n == s {
			return i, true
		}
	}
	return 0, false
}

func (l LossFunction) String() string  { return enumName(lossNames[:], int(l), "LossFunction") }
func (d DOFEvaluation) String() string { return enumName(dofNames[:], int(d), "DOFEvaluation") }
func (c Criterion) String() string     { return enumName(criterionNames[:], int(c), "Criterion") }

// Valid reports whether l is a declared value.
func (l LossFunction) Valid() bool { return l >= GCV && l <= Unused }

// Valid reports whether d is a declared value.
func (d DOFEvaluation) Valid() bool { return d >= Exact && d <= NotRequired }

// Valid reports whether c is a declared value.
func (c Criterion) Valid() bool { return c >= Batch && c <= NewtonFD }

// IsNewton reports whether c belongs to the Newton family.
func (c Criterion) IsNewton() bool { return c == NewtonExact || c == NewtonFD }

// ParseLossFunction maps "GCV" / "unused" to a LossFunction.
func ParseLossFunction(s string) (LossFunction, error) {
	v, ok := enumValue(lossNames[:], s)
	if !ok {
		return 0, fmt.Errorf("%w: loss %q", ErrUnknownEnum, s)
	}
	return LossFunction(v), nil
}

// ParseDOFEvaluation maps "exact" / "stochastic" / "not_required".
func ParseDOFEvaluation(s string) (DOFEvaluation, error) {
	v, ok := enumValue(dofNames[:], s)
	if !ok {
		return 0, fmt.Errorf("%w: dof_evaluation %q", ErrUnknownEnum, s)
	}
	return DOFEvaluation(v), nil
}

// ParseCriterion maps "batch" / "newton" / "newton_fd".
func ParseCriterion(s string) (Criterion, error) {
	v, ok := enumValue(criterionNames[:], s)
	if !ok {
		return 0, fmt.Errorf("%w: criterion %q", ErrUnknownEnum, s)
	}
	return Criterion(v), nil
}

// MarshalYAML encodes the loss by name.
func (l LossFunction) MarshalYAML() (interface{}, error) { return l.String(), nil }

// UnmarshalYAML decodes the loss from its name.
func (l *LossFunction) UnmarshalYAML(node *yaml.Node) error {
	v, err := ParseLossFunction(node.Value)
	if err != nil {
		return err
	}
	*l = v
	return nil
}

// MarshalYAML encodes the DOF evaluation by name.
func (d DOFEvaluation) MarshalYAML() (interface{}, error) { return d.String(), nil }

// UnmarshalYAML decodes the DOF evaluation from its name.
func (d *DOFEvaluation) UnmarshalYAML(node *yaml.Node) error {
	v, err := ParseDOFEvaluation(node.Value)
	if err != nil {
		return err
	}
	*d = v
	return nil
}

// MarshalYAML encodes the criterion by name.
func (c Criterion) MarshalYAML() (interface{}, error) { return c.String(), nil }

// UnmarshalYAML decodes the criterion from its name.
func (c *Criterion) UnmarshalYAML(node *yaml.Node) error {
	v, err := ParseCriterion(node.Value)
	if err != nil {
		return err
	}
	*c = v
	return nil
}
