// SPDX-License-Identifier: MIT
package carrier

import (
	"go.uber.org/zap"

	"github.com/katalvlaran/fesmooth/blocks"
	"github.com/katalvlaran/fesmooth/optdata"
	"github.com/katalvlaran/fesmooth/regression"
)

const (
	opNewPlain         = "NewPlain"
	opNewWeighted      = "NewWeighted"
	opNewAreal         = "NewAreal"
	opNewWeightedAreal = "NewWeightedAreal"
	opBuild            = "Build"
)

// PlainCarrier is the unweighted pointwise variant.
type PlainCarrier struct {
	base
	unweighted
}

// WeightedPointCarrier is the weighted pointwise variant.
type WeightedPointCarrier struct {
	base
	weighting
}

// ArealRegionCarrier is the unweighted areal variant.
type ArealRegionCarrier struct {
	base
	unweighted
	regional
}

// WeightedArealCarrier is the weighted areal variant.
type WeightedArealCarrier struct {
	base
	weighting
	regional
}

var (
	_ Carrier         = (*PlainCarrier)(nil)
	_ WeightedCarrier = (*WeightedPointCarrier)(nil)
	_ ArealCarrier    = (*ArealRegionCarrier)(nil)
	_ WeightedCarrier = (*WeightedArealCarrier)(nil)
	_ ArealCarrier    = (*WeightedArealCarrier)(nil)
)

func (*PlainCarrier) Variant() Variant { return Plain }
func (*WeightedPointCarrier) Variant() Variant { return Weighted }
func (*ArealRegionCarrier) Variant() Variant { return Areal }
func (*WeightedArealCarrier) Variant() Variant { return WeightedAreal }

// checkVariant rejects data whose shape belongs to another variant.
func checkVariant(op string, data *regression.Data, want Variant) error {
	if data == nil {
		return carrierErrorf(op, ErrNilInput)
	}
	if got := DetectVariant(data); got != want {
		return carrierErrorf(op, ErrVariantMismatch)
	}
	return nil
}

// NewPlain builds T = ΨᵗΨ (+ boundary) and E = Ψᵗ.
func NewPlain(data *regression.Data, model regression.Model, cfg optdata.Config, opts ...Option) (*PlainCarrier, error) {
	if err := checkVariant(opNewPlain, data, Plain); err != nil {
		return nil, err
	}
	o := gatherOptions(opts)
	b, err := newBase(opNewPlain, data, model, cfg, o)
	if err != nil {
		return nil, err
	}
	if k, ok := b.psi.PermutationIndex(); ok {
		b.nodeMap = k
		err = blocks.AddTPlain(b.t, k, b.bc)
		if err == nil {
			b.e, err = blocks.EPlain(k, b.NumNodes())
		}
	} else {
		err = blocks.AddTInterpolated(b.t, b.psi, b.bc)
		if err == nil {
			b.e, err = blocks.EInterpolated(b.psi)
		}
	}
	if err == nil {
		err = b.buildOffset()
	}
	if err != nil {
		return nil, carrierErrorf(opNewPlain, err)
	}
	c := &PlainCarrier{base: b, unweighted: unweighted{z: data.Observations}}
	c.logBuilt()

	return c, nil
}

// NewWeighted builds T = ΨᵗQΨ (+ boundary) and E = ΨᵗQ.
func NewWeighted(data *regression.Data, model regression.Model, cfg optdata.Config, opts ...Option) (*WeightedPointCarrier, error) {
	if err := checkVariant(opNewWeighted, data, Weighted); err != nil {
		return nil, err
	}
	o := gatherOptions(opts)
	b, err := newBase(opNewWeighted, data, model, cfg, o)
	if err != nil {
		return nil, err
	}
	w, err := newWeighting(opNewWeighted, data)
	if err != nil {
		return nil, err
	}
	Q := w.proj.Q
	if k, ok := b.psi.PermutationIndex(); ok {
		b.nodeMap = k
		err = blocks.AddTWeighted(b.t, k, Q, b.bc)
		if err == nil {
			b.e, err = blocks.EWeighted(k, Q, b.NumNodes())
		}
	} else {
		err = blocks.AddTWeightedInterpolated(b.t, b.psi, Q, b.bc)
		if err == nil {
			b.e, err = blocks.EWeightedInterpolated(b.psi, Q)
		}
	}
	if err == nil {
		err = b.buildOffset()
	}
	if err != nil {
		return nil, carrierErrorf(opNewWeighted, err)
	}
	c := &WeightedPointCarrier{base: b, weighting: w}
	c.logBuilt()

	return c, nil
}

// NewAreal builds T = Ψᵗdiag(A)Ψ (+ boundary) and E = Ψᵗdiag(A).
func NewAreal(data *regression.Data, model regression.Model, cfg optdata.Config, opts ...Option) (*ArealRegionCarrier, error) {
	if err := checkVariant(opNewAreal, data, Areal); err != nil {
		return nil, err
	}
	o := gatherOptions(opts)
	b, err := newBase(opNewAreal, data, model, cfg, o)
	if err != nil {
		return nil, err
	}
	r, err := newRegional(opNewAreal, data, model)
	if err != nil {
		return nil, err
	}
	if err = blocks.AddTAreal(b.t, b.psi, r.areas, b.bc); err != nil {
		return nil, carrierErrorf(opNewAreal, err)
	}
	if b.e, err = blocks.EAreal(b.psi, r.areas); err != nil {
		return nil, carrierErrorf(opNewAreal, err)
	}
	if err = b.buildOffset(); err != nil {
		return nil, carrierErrorf(opNewAreal, err)
	}
	c := &ArealRegionCarrier{base: b, unweighted: unweighted{z: data.Observations}, regional: r}
	c.logBuilt()

	return c, nil
}

// NewWeightedAreal builds T = Ψᵗdiag(A)QΨ (+ boundary) and E = Ψᵗdiag(A)Q.
func NewWeightedAreal(data *regression.Data, model regression.Model, cfg optdata.Config, opts ...Option) (*WeightedArealCarrier, error) {
	if err := checkVariant(opNewWeightedAreal, data, WeightedAreal); err != nil {
		return nil, err
	}
	o := gatherOptions(opts)
	b, err := newBase(opNewWeightedAreal, data, model, cfg, o)
	if err != nil {
		return nil, err
	}
	w, err := newWeighting(opNewWeightedAreal, data)
	if err != nil {
		return nil, err
	}
	r, err := newRegional(opNewWeightedAreal, data, model)
	if err != nil {
		return nil, err
	}
	if err = blocks.AddTWeightedAreal(b.t, b.psi, r.areas, w.proj.Q, b.bc); err != nil {
		return nil, carrierErrorf(opNewWeightedAreal, err)
	}
	if b.e, err = blocks.EWeightedAreal(b.psi, r.areas, w.proj.Q); err != nil {
		return nil, carrierErrorf(opNewWeightedAreal, err)
	}
	if err = b.buildOffset(); err != nil {
		return nil, carrierErrorf(opNewWeightedAreal, err)
	}
	c := &WeightedArealCarrier{base: b, weighting: w, regional: r}
	c.logBuilt()

	return c, nil
}

// Build detects the variant of data and constructs it.
func Build(data *regression.Data, model regression.Model, cfg optdata.Config, opts ...Option) (Carrier, error) {
	if data == nil {
		return nil, carrierErrorf(opBuild, ErrNilInput)
	}
	return BuildVariant(DetectVariant(data), data, model, cfg, opts...)
}

// BuildVariant constructs the requested variant. Values outside the closed
// set yield ErrUnknownVariant.
func BuildVariant(v Variant, data *regression.Data, model regression.Model, cfg optdata.Config, opts ...Option) (Carrier, error) {
	switch v {
	case Plain:
		c, err := NewPlain(data, model, cfg, opts...)
		if err != nil {
			return nil, err
		}
		return c, nil
	case Weighted:
		c, err := NewWeighted(data, model, cfg, opts...)
		if err != nil {
			return nil, err
		}
		return c, nil
	case Areal:
		c, err := NewAreal(data, model, cfg, opts...)
		if err != nil {
			return nil, err
		}
		return c, nil
	case WeightedAreal:
		c, err := NewWeightedAreal(data, model, cfg, opts...)
		if err != nil {
			return nil, err
		}
		return c, nil
	default:
		return nil, carrierErrorf(opBuild, ErrUnknownVariant)
	}
}

func (b *base) logBuiltAs(v Variant) {
	b.logger.Debug("carrier built",
		zap.Stringer("variant", v),
		zap.Int("observations", b.NumObservations()),
		zap.Int("nodes", b.NumNodes()),
		zap.Int("boundary", len(b.bc.Indices)),
		zap.Bool("node_map", b.nodeMap != nil),
	)
}

func (c *PlainCarrier) logBuilt() { c.logBuiltAs(Plain) }
func (c *WeightedPointCarrier) logBuilt() { c.logBuiltAs(Weighted) }
func (c *ArealRegionCarrier) logBuilt() { c.logBuiltAs(Areal) }
func (c *WeightedArealCarrier) logBuilt() { c.logBuiltAs(WeightedAreal) }
