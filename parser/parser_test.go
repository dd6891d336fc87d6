package parser

import (
	"fmt"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/cx-luo/chem-lang/ast"
	"github.com/cx-luo/chem-lang/chem"
	"github.com/cx-luo/chem-lang/cherr"
	"github.com/cx-luo/chem-lang/lexer"
	"github.com/cx-luo/chem-lang/token"
)

func parse(t *testing.T, src string) (ast.Block, *cherr.Handler) {
	t.Helper()
	errs := cherr.New("")
	scanner := lexer.New(src, errs)
	tokens := scanner.ScanTokens()
	p := New(tokens, errs)
	return p.Parse(), errs
}

func TestParseSimpleArithmetic(t *testing.T) {
	program, errs := parse(t, "1 + 2\n")
	if errs.HadError {
		t.Fatalf("unexpected parse error")
	}
	if len(program.Body) != 1 {
		t.Fatalf("expected one statement, got %d", len(program.Body))
	}
	stmt, ok := program.Body[0].(ast.ExprStmt)
	if !ok {
		t.Fatalf("expected an ExprStmt, got %T", program.Body[0])
	}
	bin, ok := stmt.Expr.(ast.Binary)
	if !ok {
		t.Fatalf("expected a Binary expression, got %T", stmt.Expr)
	}
	if bin.Op.Type != token.Add {
		t.Fatalf("expected Add, got %s", bin.Op.Type)
	}
}

func TestParseAssignment(t *testing.T) {
	program, errs := parse(t, "x = 5\n")
	if errs.HadError {
		t.Fatalf("unexpected parse error")
	}
	stmt := program.Body[0].(ast.ExprStmt)
	assign, ok := stmt.Expr.(ast.Assign)
	if !ok {
		t.Fatalf("expected an Assign expression, got %T", stmt.Expr)
	}
	if assign.Name.Val.(string) != "x" {
		t.Fatalf("expected assignment target x, got %v", assign.Name.Val)
	}
}

func TestParseCompoundAssignmentDesugarsToBinary(t *testing.T) {
	program, errs := parse(t, "x += 1\n")
	if errs.HadError {
		t.Fatalf("unexpected parse error")
	}
	stmt := program.Body[0].(ast.ExprStmt)
	assign := stmt.Expr.(ast.Assign)
	bin, ok := assign.Val.(ast.Binary)
	if !ok {
		t.Fatalf("expected x += 1 to desugar to a Binary RHS, got %T", assign.Val)
	}
	if bin.Op.Type != token.Add {
		t.Fatalf("expected the desugared operator to be Add, got %s", bin.Op.Type)
	}
}

func TestParseExamMakeupFailChain(t *testing.T) {
	src := "exam pass\n    submit 1\nmakeup fail\n    submit 2\nfail\n    submit 3\n"
	program, errs := parse(t, src)
	if errs.HadError {
		t.Fatalf("unexpected parse error")
	}
	exam, ok := program.Body[0].(ast.Exam)
	if !ok {
		t.Fatalf("expected an Exam statement, got %T", program.Body[0])
	}
	if exam.Fail == nil {
		t.Fatalf("expected a chained makeup/fail clause")
	}
}

func TestParseWorkDeclaration(t *testing.T) {
	program, errs := parse(t, "work double(x)\n    submit x * 2\n")
	if errs.HadError {
		t.Fatalf("unexpected parse error")
	}
	work, ok := program.Body[0].(ast.Work)
	if !ok {
		t.Fatalf("expected a Work statement, got %T", program.Body[0])
	}
	if work.Name != "double" || len(work.Params) != 1 || work.Params[0] != "x" {
		t.Fatalf("unexpected work signature: %+v", work)
	}
}

func TestParseBareFormulaLiteral(t *testing.T) {
	program, errs := parse(t, "H2O\n")
	if errs.HadError {
		t.Fatalf("unexpected parse error")
	}
	lit, ok := program.Body[0].(ast.ExprStmt).Expr.(ast.Literal)
	if !ok {
		t.Fatalf("expected a Literal, got %T", program.Body[0].(ast.ExprStmt).Expr)
	}
	if _, ok := lit.Value.(*chem.Formula); !ok {
		t.Fatalf("expected a bare formula literal to hold *chem.Formula, got %T", lit.Value)
	}
}

func TestParseSyntaxErrorRecoversAtNextStatement(t *testing.T) {
	program, errs := parse(t, ")\n1 + 2\n")
	if !errs.HadError {
		t.Fatalf("expected the stray ')' to report a parse error")
	}
	found := false
	for _, stmt := range program.Body {
		if es, ok := stmt.(ast.ExprStmt); ok {
			if _, ok := es.Expr.(ast.Binary); ok {
				found = true
			}
		}
	}
	if !found {
		t.Fatalf("expected synchronize() to recover and still parse the following statement")
	}
}

// The following implements the round-trip testable property from spec.md
// §8: parsing a program, rendering it back to source, and re-parsing
// should produce an equivalent AST. Grouping nodes are parse-time-only
// parenthesization markers with no evaluation effect (interp.eval's
// Grouping case is a pure pass-through), so they're stripped before
// comparing — that's the definition of "equivalent" this test uses.

func render(e ast.Expr) string {
	switch n := e.(type) {
	case ast.Literal:
		switch v := n.Value.(type) {
		case nil:
			return "na"
		case bool:
			if v {
				return "pass"
			}
			return "fail"
		case ast.StringLiteral:
			if v.Interpolate {
				return "s'" + v.Text + "'"
			}
			return "'" + v.Text + "'"
		case fmt.Stringer:
			return v.String()
		default:
			return fmt.Sprintf("%v", v)
		}
	case ast.Variable:
		return n.Name.Val.(string)
	case ast.Assign:
		return n.Name.Val.(string) + " = " + render(n.Val)
	case ast.Binary:
		return renderOperand(n.Left) + " " + n.Op.Type.String() + " " + renderOperand(n.Right)
	case ast.Unary:
		return n.Op.Type.String() + renderOperand(n.Right)
	case ast.Grouping:
		return "(" + render(n.Value) + ")"
	default:
		panic(fmt.Sprintf("render: unsupported node %T", e))
	}
}

// renderOperand wraps a Binary/Unary child in parens so re-parsing
// recovers the same nesting regardless of operator precedence.
func renderOperand(e ast.Expr) string {
	switch e.(type) {
	case ast.Binary, ast.Unary:
		return "(" + render(e) + ")"
	default:
		return render(e)
	}
}

func renderStmt(s ast.Stmt) string {
	switch n := s.(type) {
	case ast.ExprStmt:
		return render(n.Expr) + "\n"
	default:
		panic(fmt.Sprintf("renderStmt: unsupported node %T", s))
	}
}

func unwrapGroupings(e ast.Expr) ast.Expr {
	switch n := e.(type) {
	case ast.Grouping:
		return unwrapGroupings(n.Value)
	case ast.Binary:
		n.Left = unwrapGroupings(n.Left)
		n.Right = unwrapGroupings(n.Right)
		return n
	case ast.Unary:
		n.Right = unwrapGroupings(n.Right)
		return n
	case ast.Assign:
		n.Val = unwrapGroupings(n.Val)
		return n
	default:
		return e
	}
}

func normalizeBlock(b ast.Block) ast.Block {
	out := ast.Block{Body: make([]ast.Stmt, len(b.Body))}
	for i, s := range b.Body {
		if es, ok := s.(ast.ExprStmt); ok {
			es.Expr = unwrapGroupings(es.Expr)
			out.Body[i] = es
			continue
		}
		out.Body[i] = s
	}
	return out
}

var cmpOpts = cmp.Options{
	cmp.Comparer(func(a, b token.Token) bool {
		return a.Type == b.Type && a.String() == b.String()
	}),
	cmp.Comparer(func(a, b *chem.Quantity) bool {
		if a == nil || b == nil {
			return a == b
		}
		return a.String() == b.String()
	}),
}

func TestRoundTripArithmeticExpression(t *testing.T) {
	original, errs := parse(t, "1 + 2 * 3\n")
	if errs.HadError {
		t.Fatalf("unexpected parse error")
	}

	var rendered string
	for _, stmt := range original.Body {
		rendered += renderStmt(stmt)
	}

	reparsed, errs2 := parse(t, rendered)
	if errs2.HadError {
		t.Fatalf("unexpected parse error re-parsing rendered source %q", rendered)
	}

	a := normalizeBlock(original)
	b := normalizeBlock(reparsed)
	if diff := cmp.Diff(a, b, cmpOpts); diff != "" {
		t.Fatalf("round-trip produced a non-equivalent AST (-original +reparsed):\n%s\nrendered: %q", diff, rendered)
	}
}

func TestRoundTripAssignmentExpression(t *testing.T) {
	original, errs := parse(t, "x = 1 + 2\n")
	if errs.HadError {
		t.Fatalf("unexpected parse error")
	}

	var rendered string
	for _, stmt := range original.Body {
		rendered += renderStmt(stmt)
	}

	reparsed, errs2 := parse(t, rendered)
	if errs2.HadError {
		t.Fatalf("unexpected parse error re-parsing rendered source %q", rendered)
	}

	a := normalizeBlock(original)
	b := normalizeBlock(reparsed)
	if diff := cmp.Diff(a, b, cmpOpts); diff != "" {
		t.Fatalf("round-trip produced a non-equivalent AST (-original +reparsed):\n%s\nrendered: %q", diff, rendered)
	}
}
