package chem

import (
	"fmt"
	"strings"
)

// FormulaUnit is the unit-of-accounting container a Quantity's "formula"
// field actually holds: a (possibly empty) multiset of Formulas, ordered
// as given. Ported from FormulaUnit in ch_chemistry.py.
type FormulaUnit struct {
	Formulas []*Formula
}

// Formulaless is the empty FormulaUnit a dimensionless/formula-free
// Quantity carries, mirroring FormulaUnit.formulaless.
var Formulaless = &FormulaUnit{}

// NewFormulaUnit builds a FormulaUnit from a slice of formulas.
func NewFormulaUnit(formulas []*Formula) *FormulaUnit {
	return &FormulaUnit{Formulas: formulas}
}

func (u *FormulaUnit) String() string {
	if u == nil || len(u.Formulas) == 0 {
		return "formulaless"
	}
	parts := make([]string, len(u.Formulas))
	for i, f := range u.Formulas {
		parts[i] = f.String()
	}
	return strings.Join(parts, ", ")
}

// Bool reports whether this unit carries any formula at all.
func (u *FormulaUnit) Bool() bool { return u != nil && len(u.Formulas) > 0 }

// Equal compares two FormulaUnits positionally, as the original's tuple
// equality does.
func (u *FormulaUnit) Equal(o *FormulaUnit) bool {
	if u == nil {
		u = Formulaless
	}
	if o == nil {
		o = Formulaless
	}
	if len(u.Formulas) != len(o.Formulas) {
		return false
	}
	for i := range u.Formulas {
		if !formulaEqual(u.Formulas[i], o.Formulas[i]) {
			return false
		}
	}
	return true
}

// Add requires both sides describe the same formula set (FormulaUnit
// addition has no other sensible meaning); ported from __add__.
func (u *FormulaUnit) Add(o *FormulaUnit) (*FormulaUnit, error) {
	if u.Equal(o) {
		return u, nil
	}
	return nil, fmt.Errorf("can not add %s and %s", u, o)
}

// Sub mirrors __sub__ (self + (-other), and negation is the identity).
func (u *FormulaUnit) Sub(o *FormulaUnit) (*FormulaUnit, error) { return u.Add(o) }

// Mul concatenates both units' formula lists.
func (u *FormulaUnit) Mul(o *FormulaUnit) *FormulaUnit {
	combined := append(append([]*Formula{}, u.Formulas...), o.Formulas...)
	return &FormulaUnit{Formulas: combined}
}

// Div removes each of o's formulas from u, one at a time, erroring if one
// isn't present.
func (u *FormulaUnit) Div(o *FormulaUnit) (*FormulaUnit, error) {
	remaining := append([]*Formula{}, u.Formulas...)
	for _, target := range o.Formulas {
		idx := -1
		for i, f := range remaining {
			if formulaEqual(f, target) {
				idx = i
				break
			}
		}
		if idx == -1 {
			return nil, fmt.Errorf("can not divide %s by %s", u, o)
		}
		remaining = append(remaining[:idx], remaining[idx+1:]...)
	}
	return &FormulaUnit{Formulas: remaining}, nil
}

// Pow repeats the formula list n times for a non-negative integer n; n of
// 0 yields an empty (formulaless) unit.
func (u *FormulaUnit) Pow(n int) *FormulaUnit {
	result := make([]*Formula, 0, len(u.Formulas)*n)
	for i := 0; i < n; i++ {
		result = append(result, u.Formulas...)
	}
	return &FormulaUnit{Formulas: result}
}

// Context delegates to the sole formula's Context when this unit wraps
// exactly one formula, per the original's property.
func (u *FormulaUnit) Context() (*TransformContext, error) {
	if len(u.Formulas) != 1 {
		return nil, fmt.Errorf("can not get context of %s", u)
	}
	return u.Formulas[0].Context()
}

func formulaEqual(a, b *Formula) bool {
	if a == nil || b == nil {
		return a == b
	}
	if a.Partial != b.Partial || !a.Number.Equal(b.Number) || !a.Charge.Equal(b.Charge) {
		return false
	}
	if len(a.Terms) != len(b.Terms) {
		return false
	}
	for i := range a.Terms {
		if !termEqual(a.Terms[i], b.Terms[i]) {
			return false
		}
	}
	return true
}

func termEqual(a, b Term) bool {
	switch av := a.(type) {
	case Element:
		bv, ok := b.(Element)
		return ok && av.Symbol == bv.Symbol && av.Number.Equal(bv.Number)
	case *Formula:
		bv, ok := b.(*Formula)
		return ok && formulaEqual(av, bv)
	default:
		return false
	}
}
