package cherr

import (
	"errors"
	"io"
	"os"
	"strings"
	"testing"

	"github.com/cx-luo/chem-lang/token"
)

// captureStderr redirects os.Stderr for the duration of fn and returns
// whatever was written to it.
func captureStderr(t *testing.T, fn func()) string {
	t.Helper()
	r, w, err := os.Pipe()
	if err != nil {
		t.Fatalf("failed to open pipe: %v", err)
	}
	orig := os.Stderr
	os.Stderr = w
	defer func() { os.Stderr = orig }()

	fn()

	w.Close()
	out, _ := io.ReadAll(r)
	return string(out)
}

func TestErrorSetsHadErrorAndFormatsWithLine(t *testing.T) {
	h := New("")
	var out string
	out = captureStderr(t, func() {
		h.Error(ErrType, "bad operand", 7)
	})
	if !h.HadError {
		t.Fatalf("expected HadError to be set")
	}
	if !strings.Contains(out, "7: bad operand") {
		t.Fatalf("expected the diagnostic to be prefixed with its line, got %q", out)
	}
}

func TestErrorOmitsPrefixForZeroLine(t *testing.T) {
	h := New("")
	out := captureStderr(t, func() {
		h.Error(ErrName, "unknown name", 0)
	})
	if strings.Contains(out, "0: unknown name") {
		t.Fatalf("expected no line prefix for line 0, got %q", out)
	}
	if !strings.Contains(out, "unknown name") {
		t.Fatalf("expected the message itself to still be reported, got %q", out)
	}
}

func TestErrorWrapsKindForErrorsIs(t *testing.T) {
	h := New("")
	var err *CHError
	captureStderr(t, func() {
		err = h.Error(ErrDimensionality, "mismatched units", 3)
	})
	if !errors.Is(err, ErrDimensionality) {
		t.Fatalf("expected errors.Is to recognize the wrapped kind")
	}
	if errors.Is(err, ErrConversion) {
		t.Fatalf("expected errors.Is to reject an unrelated kind")
	}
}

func TestAtTokenUsesTokenLine(t *testing.T) {
	h := New("")
	tok := token.New(token.ID, "x", 42)
	out := captureStderr(t, func() {
		h.AtToken(ErrName, "undefined variable", tok)
	})
	if !strings.Contains(out, "42: undefined variable") {
		t.Fatalf("expected the token's line to be used, got %q", out)
	}
}

func TestResetClearsHadError(t *testing.T) {
	h := New("")
	captureStderr(t, func() {
		h.Error(ErrScan, "bad character", 1)
	})
	if !h.HadError {
		t.Fatalf("expected HadError to be set before Reset")
	}
	h.Reset()
	if h.HadError {
		t.Fatalf("expected Reset to clear HadError")
	}
}
