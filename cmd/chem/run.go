package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/cx-luo/chem-lang/cherr"
	"github.com/cx-luo/chem-lang/lexer"
	"github.com/cx-luo/chem-lang/parser"
)

// execSource mirrors CH.run: scan, parse, and interpret a whole program,
// returning the process exit code the original's sys.exit calls would
// have used (0 success, 1 scan/parse error, -1 a runtime CHError). It
// takes no paths or os.Exit calls so it can be exercised directly from a
// test.
func execSource(errs *cherr.Handler, source string) int {
	scanner := lexer.New(strings.TrimRight(source, "\n"), errs)
	tokens := scanner.ScanTokens()
	if errs.HadError {
		return 1
	}
	p := parser.New(tokens, errs)
	program := p.Parse()
	if errs.HadError {
		return 1
	}

	it := newInterpreter(errs)
	if _, err := it.Run(program); err != nil {
		return -1
	}
	return 0
}

// runFile mirrors CH.main's single-argument branch: read the named file
// and run it, exiting 1 if it can't be opened, matching the original's
// IOError handling.
func runFile(path string) error {
	contents, err := os.ReadFile(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Could not open file %s\n", path)
		os.Exit(1)
	}
	os.Exit(execSource(newHandler(), string(contents)))
	return nil
}
