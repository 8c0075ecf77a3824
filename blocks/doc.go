// Package blocks builds the λ-free matrix blocks of penalized finite-element
// regression: the data block T, the cross block E and the fitted vector ẑ.
//
// Every builder exists in the shape its observation structure allows:
//
//   - Plain / Weighted: pointwise observations that sit exactly on mesh nodes.
//     Ψ has one stored 1 per row, described by the node map k, and ΨᵗΨ or
//     ΨᵗQΨ reduce to index updates (O(s) and O(s²) instead of sparse products).
//   - Interpolated / WeightedInterpolated: pointwise observations between nodes;
//     the products are formed densely.
//   - Areal / WeightedAreal: regional observations weighted by region areas A.
//
// T builders accumulate into a caller-owned *matrix.Dense (T += …) and never
// assume it is zeroed. Dirichlet boundary nodes receive a large diagonal
// penalty (Penalty, 1e20) so that the solved field is pinned at those nodes.
// On the shortcut paths the penalty is corrected by the data contribution
// already added at (id, id); on the dense paths the temporary product's
// diagonal is overwritten before accumulation. Either way the final diagonal
// entry is the prior value plus exactly the penalty.
//
// Builders are pure: they read their inputs, write only the destination and
// return errors (never panic) on malformed indices or shapes.
package blocks
