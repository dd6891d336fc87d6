package main

import (
	"testing"

	"github.com/cx-luo/chem-lang/cherr"
)

func TestExecSourceRunsSuccessfully(t *testing.T) {
	errs := cherr.New("")
	code := execSource(errs, "1 g + 2 g\n")
	if code != 0 {
		t.Fatalf("expected exit 0, got %d", code)
	}
}

func TestExecSourceReturns1OnScanError(t *testing.T) {
	errs := cherr.New("")
	code := execSource(errs, "@@@not a token@@@\n")
	if code != 1 {
		t.Fatalf("expected exit 1 for a scan error, got %d", code)
	}
}

func TestExecSourceReturnsNeg1OnRuntimeError(t *testing.T) {
	errs := cherr.New("")
	code := execSource(errs, "1 g + 1 mol\n")
	if code != -1 {
		t.Fatalf("expected exit -1 for a dimensionality mismatch, got %d", code)
	}
}
