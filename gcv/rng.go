// SPDX-License-Identifier: MIT

// Package gcv - deterministic Rademacher probes.
//
// Probe j is drawn from its own stream derived from the seed and j, so the
// first p probes are the same whatever the total count.
package gcv

import "math/rand"

// defaultProbeSeed replaces seed 0.
const defaultProbeSeed int64 = 1

// rngFromSeed returns a deterministic source; seed 0 selects defaultProbeSeed.
func rngFromSeed(seed int64) *rand.Rand {
	if seed == 0 {
		seed = defaultProbeSeed
	}
	return rand.New(rand.NewSource(seed))
}

// deriveSeed mixes a parent seed with a stream id (SplitMix64 finalizer).
func deriveSeed(parent int64, stream uint64) int64 {
	x := uint64(parent) ^ (stream + 0x9e3779b97f4a7c15)
	x += 0x9e3779b97f4a7c15
	x = (x ^ (x >> 30)) * 0xbf58476d1ce4e5b9
	x = (x ^ (x >> 27)) * 0x94d049bb133111eb
	x ^= x >> 31
	return int64(x)
}

// rademacherProbes returns p vectors of length s with ±1 entries.
func rademacherProbes(seed int64, s, p int) [][]float64 {
	if seed == 0 {
		seed = defaultProbeSeed
	}
	probes := make([][]float64, p)
	for j := range probes {
		rng := rngFromSeed(deriveSeed(seed, uint64(j)))
		u := make([]float64, s)
		for i := range u {
			if rng.Int63()&1 == 0 {
				u[i] = -1
			} else {
				u[i] = 1
			}
		}
		probes[j] = u
	}
	return probes
}
