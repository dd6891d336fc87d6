// Package cherr collects the diagnostic kinds the interpreter pipeline can
// raise and the handler that reports them, mirroring
// chemistry_lang/ch_handler.py and ch_error.py.
package cherr

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/sirupsen/logrus"

	"github.com/cx-luo/chem-lang/token"
)

// Sentinel error kinds. Every diagnostic reported through a Handler comes
// back as a *CHError whose Kind is exactly one of these (CHError unwraps to
// it), so callers can classify such a failure with errors.Is without
// string-matching a message.
var (
	ErrScan           = errors.New("scan error")
	ErrParse          = errors.New("parse error")
	ErrName           = errors.New("name error")
	ErrType           = errors.New("type error")
	ErrDimensionality = errors.New("dimensionality error")
	ErrConversion     = errors.New("conversion error")
	ErrArity          = errors.New("arity error")
	ErrIO             = errors.New("io error")
)

// CHError is the error value raised by the pipeline; it carries the message
// already formatted with its originating line, if one was known.
type CHError struct {
	Kind error
	Msg  string
}

func (e *CHError) Error() string { return e.Msg }

func (e *CHError) Unwrap() error { return e.Kind }

func new_(kind error, msg string) *CHError {
	return &CHError{Kind: kind, Msg: fmt.Sprintf("%s: %s", kind, msg)}
}

// diagStyle renders diagnostics in red, matching colorama.Fore.RED in the
// original's ErrorStream.
var diagStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))

// Handler accumulates the "had error" flag across a scan/parse/eval pass
// and writes one line per diagnostic to stderr (colorized) and to a log
// trail, mirroring CHErrorHandler + the module-level logrus-equivalent
// logger in the original.
type Handler struct {
	HadError bool
	out      io.Writer
	log      *logrus.Logger
}

// New builds a Handler that writes colorized diagnostics to stderr and a
// structured trail to logPath (opened append-only, created if absent).
func New(logPath string) *Handler {
	h := &Handler{log: logrus.New()}
	h.log.SetFormatter(&logrus.TextFormatter{DisableColors: true, FullTimestamp: true})
	h.log.SetLevel(logrus.DebugLevel)
	if logPath != "" {
		if f, err := os.OpenFile(logPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644); err == nil {
			h.log.SetOutput(io.MultiWriter(f))
		}
	}
	return h
}

// Error reports a diagnostic. line, when non-zero, is prefixed as
// "<line>: <message>"; a zero line (or a Token with Line==0) omits the
// prefix, matching the original's `match token: case Token() | case int()`.
func (h *Handler) Error(kind error, msg string, line int) *CHError {
	formatted := msg
	if line > 0 {
		formatted = fmt.Sprintf("%d: %s", line, msg)
	}
	h.HadError = true
	h.log.Error(formatted)
	out := h.out
	if out == nil {
		out = os.Stderr
	}
	fmt.Fprintln(out, diagStyle.Render(formatted))
	return new_(kind, msg)
}

// AtToken reports a diagnostic anchored to a token's source line.
func (h *Handler) AtToken(kind error, msg string, tok token.Token) *CHError {
	return h.Error(kind, msg, tok.Line)
}

// AtLine reports a diagnostic anchored to a raw line number.
func (h *Handler) AtLine(kind error, msg string, line int) *CHError {
	return h.Error(kind, msg, line)
}

// Reset clears the had-error flag, as the REPL does between inputs.
func (h *Handler) Reset() { h.HadError = false }
