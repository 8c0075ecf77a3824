// SPDX-License-Identifier: MIT

// Package carrier binds a fitted regression model, its data and the
// optimization configuration into one read-only object that the GCV
// evaluators consume.
//
// A carrier comes in exactly one of four variants, fixed for its lifetime:
//
//	            pointwise   areal
//	unweighted  Plain       Areal
//	weighted    Weighted    WeightedAreal
//
// "Weighted" means covariates are present, so the projection Q = I − H
// enters every block; "areal" means observations are region averages with
// area weights A. Each variant is a distinct concrete type. Capabilities that
// only some variants have are separate interfaces (WeightedCarrier for Q and
// H, ArealCarrier for A), so an unweighted carrier has no Q accessor at all.
//
// The λ-free blocks T and E are built once by the constructor through the
// blocks package. Pointwise variants take the node-map shortcut whenever Ψ is
// a 0/1 row selection and fall back to dense products otherwise.
//
// Build inspects the data and returns the matching variant; the typed
// constructors (NewPlain, NewWeighted, NewAreal, NewWeightedAreal) reject data
// of another shape with ErrVariantMismatch.
package carrier
