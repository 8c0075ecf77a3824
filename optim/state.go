// SPDX-License-Identifier: MIT
package optim

import "fmt"

// State is a node of the search state machine.
type State int

const (
	Init State = iota
	Iterating
	Converged
	MaxIterReached
	Diverged
)

var stateNames = [...]string{
	Init:           "init",
	Iterating:      "iterating",
	Converged:      "converged",
	MaxIterReached: "max_iter_reached",
	Diverged:       "diverged",
}

func (s State) String() string {
	if s < Init || s > Diverged {
		return fmt.Sprintf("State(%d)", int(s))
	}
	return stateNames[s]
}

// Terminal reports whether s ends a search.
func (s State) Terminal() bool { return s >= Converged }

// StopReason names the stopping rule that ended a search.
type StopReason int

const (
	// ReasonNone: the search has not stopped.
	ReasonNone StopReason = iota
	// ReasonTolerance: |Δλ| ≤ tol·λ.
	ReasonTolerance
	// ReasonNoDescent: no step above the tolerance lowers the score.
	ReasonNoDescent
	// ReasonMaxIter: the iteration bound was hit.
	ReasonMaxIter
	// ReasonUnbounded: λ left the representable range.
	ReasonUnbounded
	// ReasonNoStart: no non-degenerate starting λ was found.
	ReasonNoStart
	// ReasonGrid: every grid point was evaluated.
	ReasonGrid
)

var reasonNames = [...]string{
	ReasonNone:      "none",
	ReasonTolerance: "tolerance",
	ReasonNoDescent: "no_descent",
	ReasonMaxIter:   "max_iter",
	ReasonUnbounded: "unbounded",
	ReasonNoStart:   "no_start",
	ReasonGrid:      "grid",
}

func (r StopReason) String() string {
	if r < ReasonNone || r > ReasonGrid {
		return fmt.Sprintf("StopReason(%d)", int(r))
	}
	return reasonNames[r]
}

// Checker tracks the state of one search and records the rule that stopped it.
type Checker struct {
	state      State
	reason     StopReason
	iterations int
}

// NewChecker returns a checker in Init.
func NewChecker() *Checker { return &Checker{} }

// Step moves the checker into Iterating and counts one iteration.
func (c *Checker) Step() {
	c.state = Iterating
	c.iterations++
}

// Stop ends the search for reason r; the state follows from r.
// A checker that already stopped keeps its first reason.
func (c *Checker) Stop(r StopReason) {
	if c.state.Terminal() {
		return
	}
	c.reason = r
	switch r {
	case ReasonTolerance, ReasonNoDescent, ReasonGrid:
		c.state = Converged
	case ReasonMaxIter:
		c.state = MaxIterReached
	default:
		c.state = Diverged
	}
}

// Which returns the stopping rule that fired (ReasonNone while running).
func (c *Checker) Which() StopReason { return c.reason }

// State returns the current state.
func (c *Checker) State() State { return c.state }

// Iterations returns the number of Step calls.
func (c *Checker) Iterations() int { return c.iterations }
