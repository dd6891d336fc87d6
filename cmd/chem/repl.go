package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"

	"github.com/cx-luo/chem-lang/cherr"
	"github.com/cx-luo/chem-lang/interp"
	"github.com/cx-luo/chem-lang/lexer"
	"github.com/cx-luo/chem-lang/parser"
)

const banner = `
Welcome to the Chemistry Language!
Type in your code
    - Ctrl+D + Enter to execute.
    - Enter, nothing will happen but a newline will be added.
    - Ctrl+C, the program will exit.
`

// lineOrEOF is one line read from stdin, or io.EOF signaling the current
// block is done (mirroring input()'s EOFError on Ctrl+D/Ctrl+Z).
type lineOrEOF struct {
	line string
	err  error
}

// repl mirrors CH.repl: it reads blocks of lines terminated by EOF,
// scans/parses/interprets each block, prints the result, and resets the
// error handler between blocks so one bad block doesn't sour the next.
// A line-reading goroutine feeding a channel lets Ctrl+C (SIGINT) break
// the loop even while a blocking read is outstanding, since Go has no
// direct equivalent of Python's KeyboardInterrupt unwinding input().
func repl() {
	fmt.Println(banner)

	lines := make(chan lineOrEOF)
	go func() {
		reader := bufio.NewReader(os.Stdin)
		for {
			line, err := reader.ReadString('\n')
			if err != nil {
				if line != "" {
					lines <- lineOrEOF{line: line}
				}
				lines <- lineOrEOF{err: io.EOF}
				continue
			}
			lines <- lineOrEOF{line: line}
		}
	}()

	sigint := make(chan os.Signal, 1)
	signal.Notify(sigint, os.Interrupt)
	defer signal.Stop(sigint)

	errs := newHandler()
	it := newInterpreter(errs)

	for {
		fmt.Print(">>> ")
		var block strings.Builder
		blockDone := false
		for !blockDone {
			select {
			case <-sigint:
				return
			case lm, ok := <-lines:
				if !ok {
					return
				}
				if lm.err == io.EOF {
					blockDone = true
					break
				}
				block.WriteString(lm.line)
			}
		}
		if block.Len() == 0 {
			return
		}
		runBlock(errs, it, block.String())
	}
}

func runBlock(errs *cherr.Handler, it *interp.Interpreter, code string) {
	scanner := lexer.New(strings.TrimRight(code, "\n")+"\n", errs)
	tokens := scanner.ScanTokens()
	if errs.HadError {
		errs.Reset()
		return
	}
	p := parser.New(tokens, errs)
	program := p.Parse()
	if errs.HadError {
		errs.Reset()
		return
	}
	result, err := it.Run(program)
	if err != nil {
		errs.Reset()
		return
	}
	fmt.Println(result)
}
