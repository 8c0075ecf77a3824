// SPDX-License-Identifier: MIT

// Command fesmooth fits a penalized finite-element regression on an interval
// mesh and selects the smoothing parameter by generalized cross-validation.
//
// Usage:
//
//	fesmooth problem.yaml [--criterion newton|newton_fd|batch] [--dof exact|stochastic] ...
//
// Flags override the optimization block of the problem file. Every flag can
// also be set from a FESMOOTH_-prefixed environment variable or from a
// fesmooth.yaml file in the working directory.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
