package interp

import (
	"bytes"
	"strings"
	"testing"

	"github.com/cx-luo/chem-lang/cherr"
	"github.com/cx-luo/chem-lang/lexer"
	"github.com/cx-luo/chem-lang/parser"
)

func run(t *testing.T, src string) (string, *Interpreter, *bytes.Buffer) {
	t.Helper()
	errs := cherr.New("")
	scanner := lexer.New(src, errs)
	tokens := scanner.ScanTokens()
	p := parser.New(tokens, errs)
	program := p.Parse()
	if errs.HadError {
		t.Fatalf("scan/parse errors for %q", src)
	}
	it := New(errs)
	var out bytes.Buffer
	it.Out = &out
	result, err := it.Run(program)
	if err != nil {
		t.Fatalf("run error for %q: %v", src, err)
	}
	return result, it, &out
}

func TestArithmeticAddsMatchingUnits(t *testing.T) {
	result, _, _ := run(t, "1 g + 2 g\n")
	if !strings.Contains(result, "3") {
		t.Fatalf("expected magnitude 3, got %q", result)
	}
}

func TestAssignAndLookup(t *testing.T) {
	result, _, _ := run(t, "x = 5 g\nx\n")
	if !strings.Contains(result, "5") {
		t.Fatalf("expected 5, got %q", result)
	}
}

func TestExamPassBranch(t *testing.T) {
	result, _, _ := run(t, "exam pass\n    submit 1 g\n")
	if !strings.Contains(result, "1") {
		t.Fatalf("expected 1, got %q", result)
	}
}

func TestExamFailBranch(t *testing.T) {
	result, _, _ := run(t, "exam fail\n    submit 1 g\nfail\n    submit 2 g\n")
	if !strings.Contains(result, "2") {
		t.Fatalf("expected the fail branch's 2, got %q", result)
	}
}

func TestDuringLoopAccumulates(t *testing.T) {
	_, _, out := run(t, "i = 0 g\nduring i <= 2 g\n    print(i)\n    i = i + 1 g\n")
	for _, want := range []string{"0", "1", "2"} {
		if !strings.Contains(out.String(), want) {
			t.Fatalf("expected loop to print %s, got %q", want, out.String())
		}
	}
}

func TestWorkDefinitionAndCall(t *testing.T) {
	result, _, _ := run(t, "work double(x)\n    submit x * 2\ndouble(3 g)\n")
	if !strings.Contains(result, "6") {
		t.Fatalf("expected 6, got %q", result)
	}
}

func TestStringInterpolation(t *testing.T) {
	result, _, _ := run(t, "x = 5 g\ns'x is {x}'\n")
	if !strings.Contains(result, "x is") || !strings.Contains(result, "5") {
		t.Fatalf("expected interpolated string, got %q", result)
	}
}

func TestNaAndBooleanStringify(t *testing.T) {
	result, _, _ := run(t, "na\n")
	if result != "na" {
		t.Fatalf("expected na, got %q", result)
	}
	result, _, _ = run(t, "pass\n")
	if result != "pass" {
		t.Fatalf("expected pass, got %q", result)
	}
}
