// SPDX-License-Identifier: MIT
package carrier

import (
	"fmt"

	"github.com/katalvlaran/fesmooth/regression"
)

// Variant enumerates the structural configurations.
type Variant int

const (
	// Plain: pointwise observations, no covariates.
	Plain Variant = iota
	// Weighted: pointwise observations with covariates.
	Weighted
	// Areal: regional observations, no covariates.
	Areal
	// WeightedAreal: regional observations with covariates.
	WeightedAreal
)

var variantNames = [...]string{
	Plain:         "plain",
	Weighted:      "weighted",
	Areal:         "areal",
	WeightedAreal: "weighted_areal",
}

// String returns the lower-case variant name.
func (v Variant) String() string {
	if v < Plain || v > WeightedAreal {
		return fmt.Sprintf("Variant(%d)", int(v))
	}
	return variantNames[v]
}

// IsWeighted reports whether the variant carries Q.
func (v Variant) IsWeighted() bool { return v == Weighted || v == WeightedAreal }

// IsAreal reports whether the variant carries A.
func (v Variant) IsAreal() bool { return v == Areal || v == WeightedAreal }

// DetectVariant derives the variant from the data: weighted iff covariates
// are present, areal iff the data has regions.
func DetectVariant(data *regression.Data) Variant {
	weighted := data.HasCovariates()
	areal := data.NumberOfRegions() > 0
	switch {
	case weighted && areal:
		return WeightedAreal
	case weighted:
		return Weighted
	case areal:
		return Areal
	default:
		return Plain
	}
}
