// Package lexer is the indentation-sensitive scanner (SC), ported from
// chemistry_lang/ch_scanner.py.
package lexer

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/cx-luo/chem-lang/chem"
	"github.com/cx-luo/chem-lang/cherr"
	"github.com/cx-luo/chem-lang/numeric"
	"github.com/cx-luo/chem-lang/periodic"
	"github.com/cx-luo/chem-lang/token"
	"github.com/cx-luo/chem-lang/units"
)

// whitespaceDepth mirrors Scanner.WHITESPACE: a space costs one
// indentation unit, a tab costs four.
var whitespaceDepth = map[rune]int{' ': 1, '\t': 4}

// Scanner turns source text into a token stream.
type Scanner struct {
	input       []rune
	current     int
	start       int
	line        int
	startOfLine bool
	indentStack []int
	tokens      []token.Token
	errs        *cherr.Handler
}

// New builds a Scanner over src, reporting diagnostics through errs.
func New(src string, errs *cherr.Handler) *Scanner {
	return &Scanner{
		input:       []rune(strings.TrimSpace(src)),
		line:        1,
		startOfLine: true,
		errs:        errs,
	}
}

func (s *Scanner) end() bool { return s.current >= len(s.input) }

func (s *Scanner) previous() rune {
	if s.current > 0 {
		return s.input[s.current-1]
	}
	return 0
}

func (s *Scanner) peek() rune {
	if s.end() {
		return 0
	}
	return s.input[s.current]
}

func (s *Scanner) peekAt(offset int) rune {
	if s.current+offset >= len(s.input) || s.current+offset < 0 {
		return 0
	}
	return s.input[s.current+offset]
}

func (s *Scanner) advance() rune {
	if s.end() {
		return 0
	}
	r := s.input[s.current]
	s.current++
	return r
}

func (s *Scanner) match(chars ...rune) bool {
	p := s.peek()
	for _, c := range chars {
		if p == c {
			s.current++
			return true
		}
	}
	return false
}

func (s *Scanner) proceed() { s.start = s.current }

func (s *Scanner) text() string { return string(s.input[s.start:s.current]) }

func (s *Scanner) addToken(t token.Type, val any) {
	s.tokens = append(s.tokens, token.New(t, val, s.line))
}

func (s *Scanner) errorf(format string, args ...any) {
	s.errs.AtLine(cherr.ErrScan, fmt.Sprintf(format, args...), s.line)
}

// ScanTokens runs the scanner to completion and returns every token,
// terminated by an EOF.
func (s *Scanner) ScanTokens() []token.Token {
	for !s.end() {
		s.scanToken()
		s.start = s.current
	}
	if len(s.input) == 0 || s.input[len(s.input)-1] != '\n' {
		s.addToken(token.Sep, nil)
	}
	for len(s.indentStack) > 0 {
		depth := s.indentStack[len(s.indentStack)-1]
		s.indentStack = s.indentStack[:len(s.indentStack)-1]
		s.addToken(token.Dedent, depth)
	}
	s.addToken(token.EOF, nil)
	return s.tokens
}

func (s *Scanner) scanToken() {
	s.indent()
	if s.end() {
		return
	}
	prev := s.advance()
	switch prev {
	case ' ', '\t':
		return
	case '(':
		s.addToken(token.LParen, nil)
	case ')':
		s.addToken(token.RParen, nil)
	case '{':
		s.addToken(token.LBrace, nil)
	case '}':
		s.addToken(token.RBrace, nil)
	case ',':
		s.addToken(token.Comma, nil)
	case '_':
		s.addToken(token.Underscore, nil)
	case '?':
		s.addToken(token.Quest, nil)
	case ':':
		s.addToken(token.Colon, nil)
	case '~':
		s.addToken(token.Tilde, nil)
	case '+':
		s.addTwoChar(token.Add, token.AddEq)
	case '!':
		s.addTwoChar(token.Not, token.NotEq)
	case '%':
		s.addTwoChar(token.Mod, token.ModEq)
	case '<':
		s.addTwoChar(token.Lt, token.Le)
	case '>':
		s.addTwoChar(token.Gt, token.Ge)
	case '=':
		s.addTwoChar(token.Eq, token.EqEq)
	case '^':
		s.addTwoChar(token.Caret, token.CaretEq)
	case '/':
		s.addTwoChar(token.Div, token.DivEq)
	case '-':
		switch {
		case s.match('>'):
			s.addToken(token.Arrow, nil)
		case s.match('='):
			s.addToken(token.SubEq, nil)
		default:
			s.addToken(token.Sub, nil)
		}
	case '*':
		if s.match('*') {
			if s.match('=') {
				s.addToken(token.MulMulEq, nil)
			} else {
				s.addToken(token.MulMul, nil)
			}
		} else {
			s.addToken(token.Mul, nil)
		}
	case '&':
		if !s.match('&') {
			s.errorf("expect '&' to be followed by '&'")
		}
		s.addToken(token.And, nil)
	case '|':
		if s.match('|') {
			s.addToken(token.Or, nil)
		} else if !s.path() {
			s.errorf("invalid character '|'")
		}
	case '\n':
		s.startOfLine = true
		s.line++
		s.addToken(token.Sep, nil)
	case '`':
		if !s.id() {
			s.errorf("expect identifier")
		}
	case '"', '\'':
		s.string(false)
	case 's':
		if s.match('"') || s.match('\'') {
			s.start++
			s.string(true)
		} else if !s.id() {
			s.path()
		}
	case '.':
		if s.match('.') && s.match('.') {
			s.addToken(token.Interval, nil)
		} else {
			s.errorf("invalid character '.'")
		}
	case 'p':
		if s.match('s') {
			s.ps()
		} else if !s.id() {
			s.path()
		}
	default:
		switch {
		case unicode.IsDigit(prev):
			s.number()
		case isFormulaStartLetter(prev):
			s.current--
			if formula, ok := s.formula(); ok {
				s.addToken(token.Formula, formula)
			} else if !s.id() {
				s.path()
			}
		case unicode.IsLetter(prev):
			if s.id() {
				if len(s.tokens) > 0 && s.tokens[len(s.tokens)-1].Type == token.Doc {
					s.tokens = s.tokens[:len(s.tokens)-1]
					s.docstring()
				}
				return
			}
			s.path()
		default:
			s.errorf("invalid character %q", string(prev))
		}
	}
}

func (s *Scanner) addTwoChar(base, withEq token.Type) {
	if s.match('=') {
		s.addToken(withEq, nil)
	} else {
		s.addToken(base, nil)
	}
}

// indent runs once per physical line: it measures leading whitespace
// depth, emits DEDENTs for every stacked depth greater than the new one,
// and pushes+emits an INDENT when depth increases.
func (s *Scanner) indent() {
	if !s.startOfLine {
		return
	}
	depth := 0
	for !s.end() {
		d, ok := whitespaceDepth[s.peek()]
		if !ok || d == 0 {
			break
		}
		s.current++
		depth += d
	}
	s.start = s.current
	s.startOfLine = false

	for len(s.indentStack) > 0 && s.indentStack[len(s.indentStack)-1] > depth {
		top := s.indentStack[len(s.indentStack)-1]
		s.indentStack = s.indentStack[:len(s.indentStack)-1]
		s.addToken(token.Dedent, top)
	}
	if depth != 0 && (len(s.indentStack) == 0 || depth > s.indentStack[len(s.indentStack)-1]) {
		s.indentStack = append(s.indentStack, depth)
		s.addToken(token.Indent, depth)
	}
}

func (s *Scanner) number() {
	for unicode.IsDigit(s.peek()) || s.peek() == '_' {
		s.advance()
	}
	if s.peek() == '.' && unicode.IsDigit(s.peekAt(1)) {
		s.advance()
		for unicode.IsDigit(s.peek()) || s.peek() == '_' {
			s.advance()
		}
		if s.match('e', 'E') {
			s.match('+', '-')
			for unicode.IsDigit(s.peek()) {
				s.advance()
			}
		}
	}
	lit := s.text()
	n, err := numeric.Parse(lit)
	if err != nil {
		s.errorf("invalid number %s", lit)
		return
	}
	s.addToken(token.Num, n)
}

// between consumes characters while predicate holds, tracking line
// numbers across embedded newlines, mirroring the predicate form of the
// original's between().
func (s *Scanner) between(predicate func(rune) bool) {
	for !s.end() && predicate(s.peek()) {
		if s.peek() == '\n' {
			s.line++
		}
		s.advance()
	}
}

// betweenDelim consumes up to (and including, via the caller's expect) a
// closing delimiter, honoring backslash escapes, mirroring the
// start==end branch of the original's between().
func (s *Scanner) betweenDelim(delim rune) {
	for !s.end() && (s.peek() != delim || s.previous() == '\\') {
		if s.peek() == '\n' {
			s.line++
		}
		s.advance()
	}
}

func (s *Scanner) string(sub bool) {
	pair := s.previous()
	s.betweenDelim(pair)
	if !s.match(pair) {
		s.errorf("unterminated string literal, expect %q", string(pair))
		return
	}
	lit := string(s.input[s.start+1 : s.current-1])
	tok := token.New(token.Str, lit, s.line)
	tok.Attr.Interpolate = sub
	s.tokens = append(s.tokens, tok)
}

func (s *Scanner) docstring() {
	doneIdx := indexFrom(s.input, []rune("done"), s.current)
	if doneIdx == -1 {
		s.errorf("unterminated docstring")
		return
	}
	s.between(func(r rune) bool { return unicode.IsSpace(r) })
	end := doneIdx - 1
	lineOffset := 0
	for end >= 0 && unicode.IsSpace(s.input[end]) {
		if s.input[end] == '\n' {
			lineOffset++
		}
		end--
	}
	raw := string(s.input[s.current : end+1])
	lines := strings.Split(raw, "\n")
	minWS := -1
	for _, line := range lines {
		w := countLeadingWhitespace(line)
		if minWS == -1 || w < minWS {
			minWS = w
		}
	}
	if minWS < 0 {
		minWS = 0
	}
	trimmed := make([]string, len(lines))
	for i, line := range lines {
		trimmed[i] = trimLeadingWhitespace(line, minWS)
	}
	doc := strings.Join(trimmed, "\n")
	tok := token.New(token.Str, doc, s.line)
	tok.Attr.Interpolate = true
	s.tokens = append(s.tokens, tok)
	s.line += lineOffset
	s.current = doneIdx + 4
}

func countLeadingWhitespace(line string) int {
	total := 0
	for _, r := range line {
		switch r {
		case ' ':
			total++
		case '\t':
			total += 4
		default:
			return total
		}
	}
	return total
}

func trimLeadingWhitespace(line string, n int) string {
	count := 0
	for i, r := range line {
		if count >= n {
			return line[i:]
		}
		switch r {
		case ' ':
			count++
		case '\t':
			count += 4
		default:
			return line[i:]
		}
	}
	return ""
}

func indexFrom(haystack, needle []rune, from int) int {
	if from > len(haystack) {
		return -1
	}
	for i := from; i+len(needle) <= len(haystack); i++ {
		match := true
		for j := range needle {
			if haystack[i+j] != needle[j] {
				match = false
				break
			}
		}
		if match {
			return i
		}
	}
	return -1
}

func (s *Scanner) id() bool {
	if s.previous() == '`' {
		s.betweenDelim('`')
		if !s.match('`') {
			s.errorf("expect '`' to be followed by '`'. unterminated identifier")
			return true
		}
		raw := string(s.input[s.start+1 : s.current-1])
		s.addToken(token.ID, strings.ReplaceAll(raw, "\\`", "`"))
		return true
	}

	backtrack := s.current
	s.between(func(r rune) bool { return unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_' })
	if s.peek() == '\\' {
		s.current = backtrack
		return false
	}
	identifier := s.text()
	if kw, ok := token.Keywords[identifier]; ok {
		s.addToken(kw, identifier)
		return true
	}
	if u, err := units.Parse(identifier); err == nil && identifier != "" && isKnownUnitName(identifier) {
		s.addToken(token.Unit, u)
		return true
	}
	s.addToken(token.ID, identifier)
	return true
}

// isKnownUnitName reports whether identifier names a single recognized
// unit atom, so a plain variable named e.g. "moles" isn't misread as a
// unit and generic identifiers don't silently resolve as "unitless".
func isKnownUnitName(identifier string) bool {
	switch identifier {
	case "g", "kg", "mg", "ug", "lb", "m", "cm", "mm", "km",
		"s", "min", "hr", "K", "mol", "atom", "rad", "A", "cd",
		"L", "mL", "uL":
		return true
	default:
		return false
	}
}

func (s *Scanner) ps() {
	s.between(func(r rune) bool { return r != '\n' })
	s.addToken(token.Sep, nil)
	if !s.end() {
		s.current++
	}
	s.line++
	s.startOfLine = true
}

func isPathChar(r rune) bool {
	if unicode.IsSpace(r) {
		return false
	}
	switch r {
	case '<', '>', '"', '/', '|', '?', '*', '(', ')', '{', '}':
		return false
	}
	return true
}

func (s *Scanner) path() bool {
	if s.previous() == '|' {
		s.betweenDelim('|')
		if !s.match('|') {
			s.errorf("unterminated path")
			return true
		}
		s.addToken(token.Path, string(s.input[s.start+1:s.current-1]))
		return true
	}
	s.between(isPathChar)
	end := s.current
	if s.start != end {
		res := string(s.input[s.start:end])
		if strings.Contains(res, `\`) || strings.Contains(res, ":") {
			s.addToken(token.Path, res)
			return true
		}
	}
	return false
}

// isFormulaStartLetter reports whether r is the first letter of some
// element symbol, mirroring the original's hard-coded case arm of
// candidate first letters.
func isFormulaStartLetter(r rune) bool {
	switch r {
	case 'V', 'N', 'X', 'B', 'K', 'W', 'U', 'G', 'M', 'P', 'S', 'Y',
		'A', 'T', 'E', 'F', 'Z', 'O', 'D', 'H', 'R', 'C', 'L', 'I':
		return true
	default:
		return false
	}
}

// formula attempts to scan a run of element/sub-formula terms. On
// failure to find even one element it backtracks entirely, matching the
// original's current/start-saving behavior.
func (s *Scanner) formula() (*chem.Formula, bool) {
	backtrackCurrent, backtrackStart := s.current, s.start
	terms, ok := s.formulaTerms()
	if !ok {
		s.current, s.start = backtrackCurrent, backtrackStart
		return nil, false
	}
	return &chem.Formula{Terms: terms, Number: numeric.FromInt(1), Charge: numeric.FromInt(0)}, true
}

func (s *Scanner) formulaTerms() ([]chem.Term, bool) {
	var terms []chem.Term
	for !s.end() {
		switch {
		case s.peek() == '(':
			s.advance()
			s.proceed()
			inner, ok := s.formulaTerms()
			if !ok {
				return nil, false
			}
			if !s.match(')') {
				s.errorf("expect ')'. unmatched '('")
				return nil, false
			}
			s.proceed()
			subscript, subscriptExpr := s.scriptOrDefault('_', numeric.FromInt(1))
			s.proceed()
			superscript, superscriptExpr := s.scriptOrDefault('^', numeric.FromInt(0))
			s.proceed()
			terms = append(terms, &chem.Formula{
				Terms: inner, Partial: true,
				Number: subscript, NumberExpr: subscriptExpr,
				Charge: superscript, ChargeExpr: superscriptExpr,
			})
		case s.peek() == ')':
			return terms, true
		case isElementStart(s.peek()):
			el, ok := s.element()
			if !ok {
				return terms, len(terms) > 0
			}
			terms = append(terms, el)
		default:
			return terms, len(terms) > 0
		}
	}
	if unicode.IsLetter(s.peek()) || unicode.IsDigit(s.peek()) || s.peek() == '_' {
		return nil, false
	}
	return terms, len(terms) > 0
}

func isElementStart(r rune) bool { return unicode.IsUpper(r) }

// element scans one <Symbol><subscript?><superscript?> run, choosing the
// longest periodic-table symbol (two letters, then one) that matches.
func (s *Scanner) element() (chem.Element, bool) {
	backtrack := s.current
	symbol := ""
	if s.current+1 < len(s.input) {
		candidate := string(s.input[s.current : s.current+2])
		if len(candidate) == 2 && unicode.IsLower(rune(candidate[1])) && periodic.Exists(candidate) {
			symbol = candidate
		}
	}
	if symbol == "" {
		candidate := string(s.input[s.current : s.current+1])
		if periodic.Exists(candidate) {
			symbol = candidate
		}
	}
	if symbol == "" {
		s.current = backtrack
		return chem.Element{}, false
	}
	s.current += len([]rune(symbol))
	s.proceed()
	subscript, subscriptExpr := s.scriptOrDefault('_', numeric.FromInt(1))
	s.proceed()
	superscript, superscriptExpr := s.scriptOrDefault('^', numeric.FromInt(0))
	s.proceed()
	return chem.Element{
		Symbol: symbol,
		Number: subscript, NumberExpr: subscriptExpr,
		Charge: superscript, ChargeExpr: superscriptExpr,
	}, true
}

// scriptOrDefault scans an optional _n / _{n} or ^n / ^{n} suffix. The
// brace form may hold any balanced-brace text, not just a number literal
// (e.g. `C_{x+1}`); when the text doesn't parse as a plain number, it's
// returned as a deferred expression for the interpreter to evaluate later
// against its own environment, mirroring ch_objs.py's EvalDecimal
// descriptor rather than silently falling back to def.
func (s *Scanner) scriptOrDefault(marker rune, def numeric.SigFig) (value numeric.SigFig, deferredExpr string) {
	if !s.match(marker) {
		if n, ok := s.tryNumber(); ok {
			return n, ""
		}
		return def, ""
	}
	s.start++
	if s.match('{') {
		s.start++
		for s.peek() != '}' && !s.end() {
			s.advance()
		}
		lit := s.text()
		if !s.match('}') {
			s.errorf("unterminated script")
		}
		if n, err := numeric.Parse(lit); err == nil {
			return n, ""
		}
		return def, lit
	}
	if n, ok := s.tryNumber(); ok {
		return n, ""
	}
	s.errorf("expect number after %q", string(marker))
	return def, ""
}

func (s *Scanner) tryNumber() (numeric.SigFig, bool) {
	if !unicode.IsDigit(s.peek()) {
		return numeric.SigFig{}, false
	}
	s.number()
	last := s.tokens[len(s.tokens)-1]
	s.tokens = s.tokens[:len(s.tokens)-1]
	return last.Val.(numeric.SigFig), true
}

