package chem

import (
	"fmt"
	"math"

	"github.com/cx-luo/chem-lang/numeric"
	"github.com/cx-luo/chem-lang/units"
)

// Quantity is a magnitude/unit pair annotated with the FormulaUnit it
// belongs to, ported from CHQuantity.
type Quantity struct {
	FormulaUnit *FormulaUnit
	Magnitude   numeric.SigFig
	Unit        units.Unit
}

// NewQuantity builds a Quantity, defaulting a nil FormulaUnit to
// Formulaless.
func NewQuantity(fu *FormulaUnit, mag numeric.SigFig, u units.Unit) *Quantity {
	if fu == nil {
		fu = Formulaless
	}
	return &Quantity{FormulaUnit: fu, Magnitude: mag, Unit: u}
}

func (q *Quantity) String() string {
	s := q.Magnitude.String()
	if q.Unit.Symbol != "" {
		s += " " + q.Unit.String()
	}
	if q.FormulaUnit.Bool() {
		s += " " + q.FormulaUnit.String()
	}
	return s
}

// Bool reports truthiness as "is the magnitude non-zero", mirroring
// __bool__.
func (q *Quantity) Bool() bool { return q.Magnitude.Sign() != 0 }

// ReactionContext maps an (numerator, denominator) FormulaUnit pair to the
// molar ratio used when converting between reaction participants, the Go
// analogue of Reaction.context's dict.
type ReactionContext map[RatioKey]numeric.SigFig

// RatioKey identifies one entry of a ReactionContext; FormulaUnits compare
// by value via Equal, so the key is the pair's string rendering (stable
// and collision-free for the formulas this interpreter can construct).
type RatioKey struct {
	From string
	To   string
}

// ensureQuantity coerces a plain SigFig into a dimensionless, formula-less
// Quantity, mirroring ensure_quantity's handling of bare numbers.
func ensureQuantity(v numeric.SigFig) *Quantity {
	return NewQuantity(Formulaless, v, units.Dimensionless)
}

// matchQuantity aligns two quantities' formulas and units before a binary
// operation, mirroring match_quantity. reactionCtx may be nil when no
// reaction is in scope.
func matchQuantity(a, b *Quantity, reactionCtx ReactionContext) (*Quantity, *Quantity, error) {
	if !a.FormulaUnit.Equal(b.FormulaUnit) {
		switch {
		case !b.FormulaUnit.Bool():
			b = NewQuantity(a.FormulaUnit, b.Magnitude, b.Unit)
		case !a.FormulaUnit.Bool():
			a = NewQuantity(b.FormulaUnit, a.Magnitude, a.Unit)
		case reactionCtx == nil:
			return nil, nil, fmt.Errorf("cannot convert %s to %s without context", a.FormulaUnit, b.FormulaUnit)
		default:
			converted, err := b.To(a.FormulaUnit, reactionCtx)
			if err != nil {
				return nil, nil, err
			}
			b = converted
		}
	}
	if a.Unit.Symbol == b.Unit.Symbol && unitsDimsEqual(a.Unit, b.Unit) {
		return a, b, nil
	}
	if b.Unit.Dims.Matches(units.Dimensionless.Dims) {
		return a, NewQuantity(a.FormulaUnit, b.Magnitude, a.Unit), nil
	}
	if a.Unit.Dims.Matches(units.Dimensionless.Dims) {
		return NewQuantity(b.FormulaUnit, a.Magnitude, b.Unit), b, nil
	}
	converted, err := b.ToUnit(a.Unit)
	if err != nil {
		return nil, nil, err
	}
	return a, converted, nil
}

func unitsDimsEqual(a, b units.Unit) bool {
	return a.Dims.Matches(b.Dims) && a.Factor == b.Factor
}

// Add mirrors __add__.
func (q *Quantity) Add(other numeric.SigFig, ctx ReactionContext) (*Quantity, error) {
	return q.AddQ(ensureQuantity(other), ctx)
}

// AddQ is Add for an already-built Quantity operand.
func (q *Quantity) AddQ(other *Quantity, ctx ReactionContext) (*Quantity, error) {
	a, b, err := matchQuantity(q, other, ctx)
	if err != nil {
		return nil, err
	}
	fu := a.FormulaUnit
	if other.FormulaUnit.Bool() {
		merged, err := a.FormulaUnit.Add(other.FormulaUnit)
		if err != nil {
			return nil, err
		}
		fu = merged
	}
	return NewQuantity(fu, a.Magnitude.Add(b.Magnitude), a.Unit), nil
}

// Sub mirrors __sub__.
func (q *Quantity) Sub(other numeric.SigFig, ctx ReactionContext) (*Quantity, error) {
	return q.SubQ(ensureQuantity(other), ctx)
}

// SubQ is Sub for an already-built Quantity operand.
func (q *Quantity) SubQ(other *Quantity, ctx ReactionContext) (*Quantity, error) {
	a, b, err := matchQuantity(q, other, ctx)
	if err != nil {
		return nil, err
	}
	fu := a.FormulaUnit
	if other.FormulaUnit.Bool() {
		merged, err := a.FormulaUnit.Sub(other.FormulaUnit)
		if err != nil {
			return nil, err
		}
		fu = merged
	}
	return NewQuantity(fu, a.Magnitude.Sub(b.Magnitude), a.Unit), nil
}

// MulQ mirrors __mul__.
func (q *Quantity) MulQ(other *Quantity, ctx ReactionContext) (*Quantity, error) {
	a, b, err := matchQuantity(q, other, ctx)
	if err != nil {
		return nil, err
	}
	fu := a.FormulaUnit
	if other.FormulaUnit.Bool() {
		fu = a.FormulaUnit.Mul(other.FormulaUnit)
	}
	return NewQuantity(fu, a.Magnitude.Mul(b.Magnitude), units.Mul(a.Unit, b.Unit)), nil
}

// Mul mirrors __mul__ for a bare number operand.
func (q *Quantity) Mul(other numeric.SigFig, ctx ReactionContext) (*Quantity, error) {
	return q.MulQ(ensureQuantity(other), ctx)
}

// DivQ mirrors __truediv__.
func (q *Quantity) DivQ(other *Quantity, ctx ReactionContext) (*Quantity, error) {
	a, b, err := matchQuantity(q, other, ctx)
	if err != nil {
		return nil, err
	}
	fu := a.FormulaUnit
	if other.FormulaUnit.Bool() {
		var err error
		fu, err = a.FormulaUnit.Div(other.FormulaUnit)
		if err != nil {
			return nil, err
		}
	}
	mag, err := a.Magnitude.Div(b.Magnitude)
	if err != nil {
		return nil, err
	}
	return NewQuantity(fu, mag, units.Div(a.Unit, b.Unit)), nil
}

// Div mirrors __truediv__ for a bare number operand.
func (q *Quantity) Div(other numeric.SigFig, ctx ReactionContext) (*Quantity, error) {
	return q.DivQ(ensureQuantity(other), ctx)
}

// ModQ mirrors __mod__.
func (q *Quantity) ModQ(other *Quantity, ctx ReactionContext) (*Quantity, error) {
	a, b, err := matchQuantity(q, other, ctx)
	if err != nil {
		return nil, err
	}
	mag, err := a.Magnitude.Mod(b.Magnitude)
	if err != nil {
		return nil, err
	}
	return NewQuantity(a.FormulaUnit, mag, a.Unit), nil
}

// Mod mirrors __mod__ for a bare number operand.
func (q *Quantity) Mod(other numeric.SigFig, ctx ReactionContext) (*Quantity, error) {
	return q.ModQ(ensureQuantity(other), ctx)
}

// Pow mirrors __pow__: the exponent must be a dimensionless, integer-valued
// quantity, and the result is computed by repeated multiplication. Negative
// exponents are left undefined (DESIGN NOTES §9's open question) since the
// repeated-multiplication loop the original implements can't run a negative
// number of iterations.
func (q *Quantity) Pow(exponent *Quantity, ctx ReactionContext) (*Quantity, error) {
	if !exponent.Unit.Dims.Matches(units.Dimensionless.Dims) {
		return nil, fmt.Errorf("cannot raise to power %s", exponent.Unit)
	}
	mag := exponent.Magnitude.Float64()
	if math.Abs(mag-math.Trunc(mag)) >= 0.0001 {
		return nil, fmt.Errorf("cannot raise to power %v", mag)
	}
	n := int(mag)
	if n < 0 {
		return nil, fmt.Errorf("negative exponents are not supported")
	}
	result := ensureQuantity(numeric.FromInt(1))
	for i := 0; i < n; i++ {
		var err error
		result, err = result.MulQ(q, ctx)
		if err != nil {
			return nil, err
		}
	}
	return result, nil
}

// Neg, Pos, Abs mirror their dunder counterparts.
func (q *Quantity) Neg() *Quantity { return NewQuantity(q.FormulaUnit, q.Magnitude.Neg(), q.Unit) }
func (q *Quantity) Pos() *Quantity { return q }
func (q *Quantity) Abs() *Quantity { return NewQuantity(q.FormulaUnit, q.Magnitude.Abs(), q.Unit) }

// Cmp compares two quantities' magnitudes after matching units/formulas.
func (q *Quantity) Cmp(other *Quantity, ctx ReactionContext) (int, error) {
	a, b, err := matchQuantity(q, other, ctx)
	if err != nil {
		return 0, err
	}
	return a.Magnitude.Cmp(b.Magnitude), nil
}

// EqualQ mirrors __eq__.
func (q *Quantity) EqualQ(other *Quantity, ctx ReactionContext) (bool, error) {
	c, err := q.Cmp(other, ctx)
	if err != nil {
		return false, err
	}
	return c == 0, nil
}

// ToUnit converts the quantity to another unit of the same dimension.
func (q *Quantity) ToUnit(target units.Unit) (*Quantity, error) {
	if unitsDimsEqual(q.Unit, target) {
		return q, nil
	}
	mag, err := units.Convert(q.Magnitude.Float64(), q.Unit, target)
	if err != nil {
		return nil, fmt.Errorf("cannot convert %s to %s", q.Unit, target)
	}
	return NewQuantity(q.FormulaUnit, numeric.SigFig{Value: numeric.FromFloat64(mag), Figs: q.Magnitude.Figs}, target), nil
}

// To converts the quantity to a target FormulaUnit using a reaction's
// molar-ratio context, applying an implicit mass->mole step first when
// the quantity is currently a mass, mirroring CHQuantity.to.
func (q *Quantity) To(target *FormulaUnit, ctx ReactionContext) (*Quantity, error) {
	if q.FormulaUnit.Equal(target) {
		return q, nil
	}
	if ctx == nil {
		return nil, fmt.Errorf("cannot convert %s to %s without reaction context", q.FormulaUnit, target)
	}
	moleUnit, err := units.Parse("mol")
	if err != nil {
		return nil, err
	}
	gramUnit, err := units.Parse("g")
	if err != nil {
		return nil, err
	}
	magnitude := q.Magnitude
	unit := q.Unit
	switch {
	case units.Matches(q.Unit, moleUnit):
		converted, err := q.ToUnit(moleUnit)
		if err != nil {
			return nil, err
		}
		magnitude = converted.Magnitude
		unit = moleUnit
	case units.Matches(q.Unit, gramUnit):
		converted, err := q.ToUnit(gramUnit)
		if err != nil {
			return nil, err
		}
		transform, err := q.FormulaUnit.Context()
		if err != nil {
			return nil, fmt.Errorf("cannot convert %s to %s without mole dimension", q.Unit, target)
		}
		moles, err := transform.MassToMoles(converted.Magnitude)
		if err != nil {
			return nil, err
		}
		magnitude = moles
		unit = moleUnit
	default:
		return nil, fmt.Errorf("cannot convert %s to %s without mole dimension", q.Unit, target)
	}
	ratio, ok := ctx[RatioKey{From: q.FormulaUnit.String(), To: target.String()}]
	if !ok {
		return nil, fmt.Errorf("cannot convert %s to %s", q.Unit, target)
	}
	magnitude = magnitude.Mul(ratio)
	return NewQuantity(target, magnitude, unit), nil
}
