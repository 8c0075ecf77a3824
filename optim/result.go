// SPDX-License-Identifier: MIT
package optim

import (
	"time"
)

// Trajectory is the sequence of (λ, score) pairs visited by a search.
type Trajectory struct {
	Lambdas []float64
	Scores  []float64
}

func (t *Trajectory) add(lambda, score float64) {
	t.Lambdas = append(t.Lambdas, lambda)
	t.Scores = append(t.Scores, score)
}

// Len returns the number of recorded points.
func (t Trajectory) Len() int { return len(t.Lambdas) }

// Result is the outcome of a search.
type Result struct {
	Lambda      float64 // best λ
	Score       float64 // GCV at Lambda
	DOF         float64 // degrees of freedom at Lambda
	Evaluations int     // evaluator calls, including line-search and FD probes
	Iterations  int
	Trajectory  Trajectory
	Elapsed     time.Duration
	State       State
	Reason      StopReason
}
