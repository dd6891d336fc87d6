// Package chem is the chemistry value model (CVM): Element, Formula,
// FormulaUnit, Reaction, and Quantity, ported from
// chemistry_lang/objs/ch_chemistry.py and ch_quantity.py.
package chem

import (
	"strings"

	"github.com/cx-luo/chem-lang/numeric"
	"github.com/cx-luo/chem-lang/periodic"
)

// supReplacer and subReplacer transliterate ASCII digits/signs into
// Unicode super/subscript glyphs, ported verbatim from the original's
// `sup`/`sub` helpers.
var (
	supReplacer = strings.NewReplacer(
		"0", "⁰", "1", "¹", "2", "²", "3", "³", "4", "⁴", "5", "⁵", "6", "⁶",
		"7", "⁷", "8", "⁸", "9", "⁹", ".", ".", "e", "ᵉ", "E", "ᴱ", "+", "⁺", "-", "⁻",
	)
	subReplacer = strings.NewReplacer(
		"0", "₀", "1", "₁", "2", "₂", "3", "₃", "4", "₄", "5", "₅", "6", "₆",
		"7", "₇", "8", "₈", "9", "₉", ".", ".", "e", "ₑ", "E", "ₑ", "+", "₊", "-", "₋",
	)
)

func sup(s string) string { return supReplacer.Replace(s) }
func sub(s string) string { return subReplacer.Replace(s) }

// Term is anything that can appear in a Formula's term list: an Element
// or a nested Formula (CHPartialFormula in the original). CountDict
// reports the term's own per-element atom counts, not yet scaled by its
// own Number — the parent Formula applies that scaling uniformly.
type Term interface {
	CountDict() map[string]numeric.SigFig
	GetNumber() numeric.SigFig
	String() string
}

// Element is a single chemical symbol with a subscript count and an
// optional charge, e.g. the H in H2O (symbol "H", number 2) or the Na in
// Na+ (symbol "Na", number 1, charge 1).
type Element struct {
	Symbol string
	Number numeric.SigFig
	Charge numeric.SigFig

	// NumberExpr/ChargeExpr hold raw source text for a `_{...}`/`^{...}`
	// script that wasn't a plain number literal (e.g. `C_{x+1}`), left for
	// ResolveDeferred to evaluate once an environment exists. Empty when
	// Number/Charge are already resolved.
	NumberExpr string
	ChargeExpr string
}

// NewElement builds an Element with an implicit subscript of 1 and no
// charge.
func NewElement(symbol string) Element {
	return Element{Symbol: symbol, Number: numeric.FromInt(1), Charge: numeric.FromInt(0)}
}

// hasDeferred reports whether this element's subscript or charge still
// needs evaluating.
func (e Element) hasDeferred() bool { return e.NumberExpr != "" || e.ChargeExpr != "" }

// resolveDeferred evaluates any pending NumberExpr/ChargeExpr via eval,
// returning an Element with concrete values.
func (e Element) resolveDeferred(eval SigFigEvaluator) (Element, error) {
	if e.NumberExpr != "" {
		n, err := eval(e.NumberExpr)
		if err != nil {
			return Element{}, err
		}
		e.Number = n
		e.NumberExpr = ""
	}
	if e.ChargeExpr != "" {
		c, err := eval(e.ChargeExpr)
		if err != nil {
			return Element{}, err
		}
		e.Charge = c
		e.ChargeExpr = ""
	}
	return e, nil
}

func one() numeric.SigFig { return numeric.FromInt(1) }

// CountDict reports this element contributes one atom of itself; the
// caller scales by GetNumber().
func (e Element) CountDict() map[string]numeric.SigFig {
	return map[string]numeric.SigFig{e.Symbol: one()}
}

// GetNumber returns the element's subscript.
func (e Element) GetNumber() numeric.SigFig { return e.Number }

func (e Element) String() string {
	suffix := ""
	if e.Number.Cmp(one()) != 0 {
		suffix = sub(e.Number.String())
	}
	if e.Charge.Sign() != 0 {
		suffix += sup(e.Charge.String())
	}
	return e.Symbol + suffix
}

// Attr resolves arbitrary attribute access against the element's
// periodic-table row (`Na.AtomicMass`, `Cl.Group`, ...), mirroring
// Element.__getattr__.
func (e Element) Attr(name string) (string, bool) {
	return periodic.Attr(e.Symbol, name)
}

// AtomicMass is the shorthand most Formula/Quantity code needs.
func (e Element) AtomicMass() (numeric.SigFig, error) {
	row, err := periodic.Lookup(e.Symbol)
	if err != nil {
		return numeric.SigFig{}, err
	}
	return row.AtomicMass, nil
}
