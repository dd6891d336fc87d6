// Package token defines the lexical tokens produced by the lexer and
// consumed by the parser.
package token

import "fmt"

// Type tags every token the scanner can produce.
type Type int

const (
	// grouping
	LParen Type = iota
	RParen
	LBrace
	RBrace

	// punctuation
	Comma
	Colon
	Quest
	Tilde
	Underscore

	// arithmetic, each with an optional compound-assignment twin
	Add
	AddEq
	Sub
	SubEq
	Mul
	MulEq
	Div
	DivEq
	Mod
	ModEq
	MulMul
	MulMulEq
	Caret
	CaretEq

	// comparison / equality / assignment
	Eq
	EqEq
	Not
	NotEq
	Lt
	Le
	Gt
	Ge

	// logical
	And
	Or

	// misc operators
	Arrow    // ->
	Interval // ...
	Pipe     // |

	// separators / structure
	Sep // newline
	Indent
	Dedent
	EOF

	// literals
	Num
	Str
	Path
	ID
	Unit
	Formula

	// keywords
	Na
	Exam
	Done
	Submit
	Pass
	Fail
	Redo
	During
	Makeup
	Of
	Work
	Doc
)

var names = map[Type]string{
	LParen: "(", RParen: ")", LBrace: "{", RBrace: "}",
	Comma: ",", Colon: ":", Quest: "?", Tilde: "~", Underscore: "_",
	Add: "+", AddEq: "+=", Sub: "-", SubEq: "-=",
	Mul: "*", MulEq: "*=", Div: "/", DivEq: "/=",
	Mod: "%", ModEq: "%=", MulMul: "**", MulMulEq: "**=",
	Caret: "^", CaretEq: "^=",
	Eq: "=", EqEq: "==", Not: "!", NotEq: "!=",
	Lt: "<", Le: "<=", Gt: ">", Ge: ">=",
	And: "&&", Or: "||",
	Arrow: "->", Interval: "...", Pipe: "|",
	Sep: "\\n", Indent: "indent", Dedent: "dedent", EOF: "eof",
	Num: "number", Str: "string", Path: "path", ID: "identifier",
	Unit: "unit", Formula: "formula",
	Na: "na", Exam: "exam", Done: "done", Submit: "submit",
	Pass: "pass", Fail: "fail", Redo: "redo", During: "during",
	Makeup: "makeup", Of: "of", Work: "work", Doc: "doc",
}

// Keywords maps a reserved word's spelling to its token type.
var Keywords = map[string]Type{
	"na": Na, "exam": Exam, "done": Done, "submit": Submit,
	"pass": Pass, "fail": Fail, "redo": Redo, "during": During,
	"makeup": Makeup, "of": Of, "work": Work, "doc": Doc,
}

// CompoundAssign maps a compound-assignment token to the underlying binary
// operator it desugars to (e.g. ADDEQ -> ADD for `x += y` => `x = x + y`).
var CompoundAssign = map[Type]Type{
	AddEq: Add, SubEq: Sub, DivEq: Div, MulEq: Mul,
	ModEq: Mod, MulMulEq: MulMul, CaretEq: Caret,
}

func (t Type) String() string {
	if s, ok := names[t]; ok {
		return s
	}
	return fmt.Sprintf("Type(%d)", int(t))
}

// Attr carries side-channel information a token needs beyond its literal
// value, e.g. whether a string literal wants interpolation.
type Attr struct {
	Interpolate bool
}

// Token is one lexical unit: its kind, literal value, source line, and any
// attributes. Tokens are produced once by the scanner and never mutated.
type Token struct {
	Type Type
	Val  any
	Line int
	Attr Attr
}

// New constructs a token at the given line.
func New(t Type, val any, line int) Token {
	return Token{Type: t, Val: val, Line: line}
}

func (t Token) String() string {
	if t.Val != nil {
		return fmt.Sprintf("%v", t.Val)
	}
	return t.Type.String()
}
