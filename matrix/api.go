// SPDX-License-Identifier: MIT
// Package matrix: small facades composed from the kernels.

package matrix

// NewIdentity returns the n×n identity.
// Complexity: O(n²) zeroing + O(n) diagonal writes.
func NewIdentity(n int) (*Dense, error) {
	I, err := NewDense(n, n)
	if err != nil {
		return nil, err
	}
	for i := 0; i < n; i++ {
		I.data[i*n+i] = 1
	}

	return I, nil
}

// Solve returns X with a·X = b for symmetric positive-definite a.
// Keep an SPDFactor instead when several right-hand sides share a.
// Complexity: O(n³) factorization + O(n²k) substitution.
func Solve(a, b *Dense) (*Dense, error) {
	f, err := FactorizeSPD(a)
	if err != nil {
		return nil, err
	}

	return f.Solve(b)
}
