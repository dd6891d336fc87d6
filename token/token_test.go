package token

import "testing"

func TestTypeStringKnown(t *testing.T) {
	if Add.String() != "+" {
		t.Fatalf("expected Add to stringify as '+', got %q", Add.String())
	}
	if During.String() != "during" {
		t.Fatalf("expected During to stringify as 'during', got %q", During.String())
	}
}

func TestTypeStringUnknownFallsBackToNumeric(t *testing.T) {
	unknown := Type(9999)
	if got := unknown.String(); got != "Type(9999)" {
		t.Fatalf("expected an unrecognized type to render as Type(9999), got %q", got)
	}
}

func TestKeywordsRoundTripIntoNames(t *testing.T) {
	for word, ty := range Keywords {
		if names[ty] != word {
			t.Fatalf("keyword %q maps to %v, whose name is %q, not %q", word, ty, names[ty], word)
		}
	}
}

func TestCompoundAssignTargetsAreArithmeticOps(t *testing.T) {
	arithmetic := map[Type]bool{Add: true, Sub: true, Div: true, Mul: true, Mod: true, MulMul: true, Caret: true}
	for compound, plain := range CompoundAssign {
		if !arithmetic[plain] {
			t.Fatalf("compound assignment %v desugars to non-arithmetic %v", compound, plain)
		}
		if names[compound] != names[plain]+"=" {
			t.Fatalf("expected %v's spelling to be %s=, got %s", compound, names[plain], names[compound])
		}
	}
}

func TestTokenStringPrefersValueOverType(t *testing.T) {
	tok := New(ID, "water", 1)
	if tok.String() != "water" {
		t.Fatalf("expected a token with a value to stringify as its value, got %q", tok.String())
	}
}

func TestTokenStringFallsBackToType(t *testing.T) {
	tok := New(Arrow, nil, 1)
	if tok.String() != "->" {
		t.Fatalf("expected a valueless token to stringify as its type, got %q", tok.String())
	}
}
