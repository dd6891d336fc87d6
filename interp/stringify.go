package interp

import (
	"fmt"
	"strings"

	"github.com/cx-luo/chem-lang/chem"
	"github.com/cx-luo/chem-lang/lexer"
	"github.com/cx-luo/chem-lang/numeric"
	"github.com/cx-luo/chem-lang/parser"
	"github.com/cx-luo/chem-lang/token"
	"github.com/cx-luo/chem-lang/units"
)

// Stringify renders any value the way `print`/REPL output does, mirroring
// Interpreter.stringify.
func (it *Interpreter) Stringify(v any) string {
	switch t := v.(type) {
	case nil:
		return "na"
	case bool:
		if t {
			return "pass"
		}
		return "fail"
	case string:
		return t
	case []any:
		parts := make([]string, len(t))
		for i, e := range t {
			parts[i] = it.Stringify(e)
		}
		return "[" + strings.Join(parts, ", ") + "]"
	case fmt.Stringer:
		return t.String()
	default:
		return fmt.Sprintf("%v", t)
	}
}

// substitute implements CHString.substituted: every unescaped `{...}` run
// is re-scanned, re-parsed as a single expression, evaluated in the
// current environment, and stringified back into the output; `\{`/`\}`
// are then unescaped.
func (it *Interpreter) substitute(raw string) (string, error) {
	subs, err := extractSubs(raw)
	if err != nil {
		return "", err
	}
	runes := []rune(raw)
	var b strings.Builder
	prev := 0
	for _, sub := range subs {
		b.WriteString(string(runes[prev : sub.start-1]))
		result, err := it.evalSnippet(string(runes[sub.start:sub.end]))
		if err != nil {
			return "", err
		}
		b.WriteString(it.Stringify(result))
		prev = sub.end + 1
	}
	b.WriteString(string(runes[prev:]))
	out := b.String()
	out = strings.ReplaceAll(out, `\}`, "}")
	out = strings.ReplaceAll(out, `\{`, "{")
	return out, nil
}

type subRange struct{ start, end int }

// extractSubs finds every `{...}` span not itself escaped, mirroring
// CHString.extract_subs's brace-matching stack.
func extractSubs(s string) ([]subRange, error) {
	type open struct{ idx int }
	var stack []open
	var subs []subRange
	runes := []rune(s)
	for idx, r := range runes {
		switch r {
		case '{':
			if idx == 0 || runes[idx-1] != '\\' {
				stack = append(stack, open{idx})
			}
		case '}':
			if idx == 0 || runes[idx-1] != '\\' {
				if len(stack) == 0 {
					return nil, fmt.Errorf("unmatched braces")
				}
				top := stack[len(stack)-1]
				stack = stack[:len(stack)-1]
				subs = append(subs, subRange{start: top.idx + 1, end: idx})
			}
		}
	}
	if len(stack) != 0 {
		return nil, fmt.Errorf("unmatched braces")
	}
	return subs, nil
}

// evalSnippet re-enters the scan/parse/eval pipeline for one interpolated
// expression, in the interpreter's current environment. A nested `doc`
// string is rejected outright (DESIGN NOTES §9's recursion guard) rather
// than allowed to recurse into its own substitution pass.
func (it *Interpreter) evalSnippet(src string) (any, error) {
	scanner := lexer.New(src, it.errs)
	tokens := scanner.ScanTokens()
	for _, t := range tokens {
		if t.Type == token.Doc {
			return nil, fmt.Errorf("doc strings are not allowed inside string interpolation")
		}
	}
	p := parser.New(tokens, it.errs)
	expr, err := p.ParseExpr()
	if err != nil {
		return nil, err
	}
	result, err := it.eval(expr)
	if err != nil {
		return nil, err
	}
	if q, ok := result.value.(*chem.Quantity); ok {
		return q, nil
	}
	return result.value, nil
}

// evalSigFig evaluates a raw subscript/superscript expression (the text
// of a formula's `_{...}`/`^{...}` script that wasn't a plain number
// literal) and coerces the result to a plain magnitude, matching
// chem.SigFigEvaluator. It's how chem.Formula.ResolveDeferred reaches back
// into the full interpreter without chem importing it.
func (it *Interpreter) evalSigFig(src string) (numeric.SigFig, error) {
	result, err := it.evalSnippet(src)
	if err != nil {
		return numeric.SigFig{}, err
	}
	q, ok := result.(*chem.Quantity)
	if !ok {
		return numeric.SigFig{}, fmt.Errorf("expected a number in formula script, got %v", it.Stringify(result))
	}
	if !units.Matches(q.Unit, units.Dimensionless) {
		return numeric.SigFig{}, fmt.Errorf("expected a dimensionless number in formula script, got %s", q.Unit)
	}
	return q.Magnitude, nil
}
