package lexer

import (
	"testing"

	"github.com/cx-luo/chem-lang/chem"
	"github.com/cx-luo/chem-lang/cherr"
	"github.com/cx-luo/chem-lang/numeric"
	"github.com/cx-luo/chem-lang/token"
)

func scan(t *testing.T, src string) ([]token.Token, *cherr.Handler) {
	t.Helper()
	errs := cherr.New("")
	s := New(src, errs)
	return s.ScanTokens(), errs
}

func typesOf(tokens []token.Token) []token.Type {
	out := make([]token.Type, len(tokens))
	for i, tok := range tokens {
		out[i] = tok.Type
	}
	return out
}

func TestScanNumberLiteral(t *testing.T) {
	tokens, errs := scan(t, "1.2e3\n")
	if errs.HadError {
		t.Fatalf("unexpected scan error")
	}
	if tokens[0].Type != token.Num {
		t.Fatalf("expected a Num token, got %s", tokens[0].Type)
	}
}

func TestScanUnitToken(t *testing.T) {
	tokens, errs := scan(t, "g\n")
	if errs.HadError {
		t.Fatalf("unexpected scan error")
	}
	if tokens[0].Type != token.Unit {
		t.Fatalf("expected a Unit token for 'g', got %s", tokens[0].Type)
	}
}

func TestScanFormulaToken(t *testing.T) {
	tokens, errs := scan(t, "H2O\n")
	if errs.HadError {
		t.Fatalf("unexpected scan error")
	}
	if tokens[0].Type != token.Formula {
		t.Fatalf("expected a Formula token for H2O, got %s", tokens[0].Type)
	}
}

func TestScanElementWithChargeSuperscript(t *testing.T) {
	tokens, errs := scan(t, "Na^1\n")
	if errs.HadError {
		t.Fatalf("unexpected scan error")
	}
	formula, ok := tokens[0].Val.(*chem.Formula)
	if !ok {
		t.Fatalf("expected a *chem.Formula value, got %T", tokens[0].Val)
	}
	el, ok := formula.Terms[0].(chem.Element)
	if !ok {
		t.Fatalf("expected an Element term, got %T", formula.Terms[0])
	}
	if el.Charge.Cmp(numeric.FromInt(1)) != 0 {
		t.Fatalf("expected a charge of 1, got %v", el.Charge)
	}
}

func TestScanElementDeferredChargeExpression(t *testing.T) {
	tokens, errs := scan(t, "Na^{x+1}\n")
	if errs.HadError {
		t.Fatalf("unexpected scan error")
	}
	formula := tokens[0].Val.(*chem.Formula)
	el := formula.Terms[0].(chem.Element)
	if el.ChargeExpr != "x+1" {
		t.Fatalf("expected the unresolved charge expression to be carried as raw text, got %q", el.ChargeExpr)
	}
}

func TestScanKeyword(t *testing.T) {
	tokens, errs := scan(t, "during\n")
	if errs.HadError {
		t.Fatalf("unexpected scan error")
	}
	if tokens[0].Type != token.During {
		t.Fatalf("expected During keyword token, got %s", tokens[0].Type)
	}
}

func TestScanIdentifierNotUnit(t *testing.T) {
	tokens, errs := scan(t, "moles\n")
	if errs.HadError {
		t.Fatalf("unexpected scan error")
	}
	if tokens[0].Type != token.ID {
		t.Fatalf("expected ID for a non-unit identifier, got %s", tokens[0].Type)
	}
}

func TestScanInterpolatedString(t *testing.T) {
	tokens, errs := scan(t, "s'hi {x}'\n")
	if errs.HadError {
		t.Fatalf("unexpected scan error")
	}
	if tokens[0].Type != token.Str || !tokens[0].Attr.Interpolate {
		t.Fatalf("expected an interpolated Str token, got %+v", tokens[0])
	}
}

func TestScanPlainStringNotInterpolated(t *testing.T) {
	tokens, errs := scan(t, "'hi'\n")
	if errs.HadError {
		t.Fatalf("unexpected scan error")
	}
	if tokens[0].Type != token.Str || tokens[0].Attr.Interpolate {
		t.Fatalf("expected a non-interpolated Str token, got %+v", tokens[0])
	}
}

func TestIndentDedentBalance(t *testing.T) {
	src := "during pass\n    x = 1\n"
	tokens, errs := scan(t, src)
	if errs.HadError {
		t.Fatalf("unexpected scan error")
	}
	indents, dedents := 0, 0
	for _, tok := range tokens {
		switch tok.Type {
		case token.Indent:
			indents++
		case token.Dedent:
			dedents++
		}
	}
	if indents != dedents {
		t.Fatalf("expected balanced indent/dedent counts, got %d indents and %d dedents", indents, dedents)
	}
	if indents == 0 {
		t.Fatalf("expected at least one indent for an indented block")
	}
}

func TestScanEndsInEOF(t *testing.T) {
	tokens, _ := scan(t, "1\n")
	if tokens[len(tokens)-1].Type != token.EOF {
		t.Fatalf("expected the final token to be EOF, got %s", tokens[len(tokens)-1].Type)
	}
}

func TestScanInvalidCharacterReportsError(t *testing.T) {
	_, errs := scan(t, "@\n")
	if !errs.HadError {
		t.Fatalf("expected an error for an unrecognized character")
	}
}

func TestScanCompoundAssignment(t *testing.T) {
	tokens, errs := scan(t, "x += 1\n")
	if errs.HadError {
		t.Fatalf("unexpected scan error")
	}
	types := typesOf(tokens)
	found := false
	for _, ty := range types {
		if ty == token.AddEq {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected an AddEq token, got %v", types)
	}
}
