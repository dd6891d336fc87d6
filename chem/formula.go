package chem

import (
	"fmt"
	"strings"

	"github.com/cx-luo/chem-lang/numeric"
	"github.com/cx-luo/chem-lang/units"
)

// Formula is a chemical formula: a sequence of terms (elements or nested
// formulas) with a leading coefficient and an optional charge. Partial
// marks a parenthesized nested formula like (PO4)2, matching
// CHPartialFormula's rendering; everything else about the two is
// identical, the way CHPartialFormula inherits CHFormula unchanged.
type Formula struct {
	Terms   []Term
	Number  numeric.SigFig
	Charge  numeric.SigFig
	Partial bool

	// NumberExpr/ChargeExpr hold raw source text for a `_{...}`/`^{...}`
	// script on a parenthesized group, e.g. `(SO4)_{n}^{2-}`, left for
	// ResolveDeferred to evaluate. Empty when already resolved.
	NumberExpr string
	ChargeExpr string
}

// NewFormula builds a top-level formula with an implicit coefficient of 1
// and no charge.
func NewFormula(terms []Term) *Formula {
	return &Formula{Terms: terms, Number: one(), Charge: numeric.FromInt(0)}
}

// SigFigEvaluator evaluates a raw expression snippet (the text of a
// `_{...}`/`^{...}` script that wasn't a plain number) into a concrete
// value. The interpreter supplies the real implementation; chem takes it
// as a function value rather than importing interp, which would cycle
// back through ast into chem.
type SigFigEvaluator func(expr string) (numeric.SigFig, error)

// HasDeferred reports whether this formula, or anything nested in it,
// still has an unresolved subscript/superscript expression.
func (f *Formula) HasDeferred() bool {
	if f.NumberExpr != "" || f.ChargeExpr != "" {
		return true
	}
	for _, t := range f.Terms {
		switch v := t.(type) {
		case Element:
			if v.hasDeferred() {
				return true
			}
		case *Formula:
			if v.HasDeferred() {
				return true
			}
		}
	}
	return false
}

// ResolveDeferred returns a copy of f with every deferred subscript and
// superscript expression (on f itself, its elements, and any nested
// parenthesized group) evaluated via eval, mirroring ch_objs.py's
// EvalDecimal descriptor being read: the raw text is stored at scan time
// and evaluated against the caller's environment, not the scanner's.
func (f *Formula) ResolveDeferred(eval SigFigEvaluator) (*Formula, error) {
	out := &Formula{Number: f.Number, Charge: f.Charge, Partial: f.Partial}
	if f.NumberExpr != "" {
		n, err := eval(f.NumberExpr)
		if err != nil {
			return nil, err
		}
		out.Number = n
	}
	if f.ChargeExpr != "" {
		c, err := eval(f.ChargeExpr)
		if err != nil {
			return nil, err
		}
		out.Charge = c
	}
	out.Terms = make([]Term, len(f.Terms))
	for i, t := range f.Terms {
		resolved, err := resolveTerm(t, eval)
		if err != nil {
			return nil, err
		}
		out.Terms[i] = resolved
	}
	return out, nil
}

func resolveTerm(t Term, eval SigFigEvaluator) (Term, error) {
	switch v := t.(type) {
	case Element:
		return v.resolveDeferred(eval)
	case *Formula:
		return v.ResolveDeferred(eval)
	default:
		return t, nil
	}
}

// CountDict totals each element symbol's atom count across this formula's
// own terms (not scaled by the formula's own Number — a nested Formula's
// parent applies that scaling, per Term's contract).
func (f *Formula) CountDict() map[string]numeric.SigFig {
	result := map[string]numeric.SigFig{}
	for _, term := range f.Terms {
		n := term.GetNumber()
		for symbol, count := range term.CountDict() {
			contribution := count.Mul(n)
			if existing, ok := result[symbol]; ok {
				result[symbol] = existing.Add(contribution)
			} else {
				result[symbol] = contribution
			}
		}
	}
	return result
}

// GetNumber returns the formula's own coefficient/subscript.
func (f *Formula) GetNumber() numeric.SigFig { return f.Number }

// Count returns how many atoms of symbol this formula contains, 0 if
// absent.
func (f *Formula) Count(symbol string) numeric.SigFig {
	if n, ok := f.CountDict()[symbol]; ok {
		return n
	}
	return numeric.FromInt(0)
}

// Contains reports whether the formula has any atoms of symbol.
func (f *Formula) Contains(symbol string) bool {
	_, ok := f.CountDict()[symbol]
	return ok
}

func (f *Formula) String() string {
	var b strings.Builder
	if f.Partial {
		if f.Number.Cmp(numeric.FromInt(0)) != 0 {
			b.WriteByte('(')
			for _, t := range f.Terms {
				b.WriteString(t.String())
			}
			b.WriteByte(')')
		} else {
			for _, t := range f.Terms {
				b.WriteString(t.String())
			}
		}
		if f.Number.Cmp(one()) != 0 {
			b.WriteString(sub(f.Number.String()))
		}
		if f.Charge.Sign() != 0 {
			b.WriteString(sup(f.Charge.String()))
		}
		return b.String()
	}
	if f.Number.Cmp(one()) != 0 {
		b.WriteString(f.Number.String())
	}
	for _, t := range f.Terms {
		b.WriteString(t.String())
	}
	if f.Charge.Sign() != 0 {
		b.WriteString(sup(f.Charge.String()))
	}
	return b.String()
}

// MolecularMass sums each element's AtomicMass * count, wrapped as a
// Quantity in grams per mole with this formula's FormulaUnit, mirroring
// the cached_property of the same name.
func (f *Formula) MolecularMass() (*Quantity, error) {
	total := numeric.FromInt(0)
	for symbol, count := range f.CountDict() {
		row, err := atomicMassLookup(symbol)
		if err != nil {
			return nil, err
		}
		total = total.Add(row.Mul(count))
	}
	u, err := units.Parse("g/mol")
	if err != nil {
		return nil, err
	}
	return &Quantity{
		FormulaUnit: NewFormulaUnit([]*Formula{f}),
		Magnitude:   total,
		Unit:        u,
	}, nil
}

// Context builds the mass<->mole transformation for this formula, the Go
// analogue of the cached_property returning a pint Context with two
// registered transformations.
func (f *Formula) Context() (*TransformContext, error) {
	mass, err := f.MolecularMass()
	if err != nil {
		return nil, err
	}
	return &TransformContext{MolarMass: mass}, nil
}

// TransformContext carries the one piece of state a mass<->mole
// conversion needs: the formula's molecular mass (g/mol).
type TransformContext struct {
	MolarMass *Quantity
}

// MassToMoles divides a mass magnitude by the molar mass, the [mass] ->
// [substance] transformation.
func (c *TransformContext) MassToMoles(massGrams numeric.SigFig) (numeric.SigFig, error) {
	return massGrams.Div(c.MolarMass.Magnitude)
}

// MolesToMass multiplies a mole count by the molar mass, the [substance]
// -> [mass] transformation.
func (c *TransformContext) MolesToMass(moles numeric.SigFig) numeric.SigFig {
	return moles.Mul(c.MolarMass.Magnitude)
}

var atomicMassLookup = func(symbol string) (numeric.SigFig, error) {
	e := NewElement(symbol)
	mass, err := e.AtomicMass()
	if err != nil {
		return numeric.SigFig{}, fmt.Errorf("unknown element %q in formula: %w", symbol, err)
	}
	return mass, nil
}
