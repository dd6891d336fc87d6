package periodic

import "testing"

func TestLookupKnownElement(t *testing.T) {
	row, err := Lookup("H")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if row.Name != "Hydrogen" {
		t.Fatalf("expected Hydrogen, got %q", row.Name)
	}
	if row.AtomicNumber != 1 {
		t.Fatalf("expected atomic number 1, got %d", row.AtomicNumber)
	}
	if row.AtomicMass.Cmp(row.AtomicMass) != 0 {
		t.Fatalf("mass should compare equal to itself")
	}
}

func TestLookupUnknownElement(t *testing.T) {
	if _, err := Lookup("Zz"); err == nil {
		t.Fatalf("expected an error for an unknown symbol")
	}
}

func TestAttrResolvesArbitraryKey(t *testing.T) {
	v, ok := Attr("Na", "Group")
	if !ok {
		t.Fatalf("expected Group attribute to exist for Na")
	}
	if v != "1" {
		t.Fatalf("expected Na's group to be 1, got %q", v)
	}
	if _, ok := Attr("Na", "NoSuchAttr"); ok {
		t.Fatalf("expected missing attribute to report false")
	}
}

func TestExists(t *testing.T) {
	if !Exists("C") {
		t.Fatalf("expected C to exist")
	}
	if Exists("Zz") {
		t.Fatalf("expected Zz not to exist")
	}
}
