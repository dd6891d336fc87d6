// Package interp is the tree-walking evaluator (IN), ported from
// chemistry_lang/ch_interpreter.py. Python's singledispatchmethod becomes a
// type switch; Submit's non-local exit becomes a value returned up the
// call stack instead of a caught exception, per DESIGN NOTES §9.
package interp

import (
	"fmt"
	"io"
	"os"

	"github.com/cx-luo/chem-lang/ast"
	"github.com/cx-luo/chem-lang/chem"
	"github.com/cx-luo/chem-lang/chenv"
	"github.com/cx-luo/chem-lang/cherr"
	"github.com/cx-luo/chem-lang/numeric"
	"github.com/cx-luo/chem-lang/token"
	"github.com/cx-luo/chem-lang/units"
)

// ctrl is the Normal(value)|Submit(value) sum type evaluate produces.
type ctrl struct {
	value  any
	submit bool
}

func normal(v any) ctrl { return ctrl{value: v} }
func submitted(v any) ctrl { return ctrl{value: v, submit: true} }

// Interpreter walks an AST against an arena-backed environment.
type Interpreter struct {
	arena  *chenv.Arena
	global chenv.Handle
	env    chenv.Handle
	errs   *cherr.Handler

	Out io.Writer
	In  io.Reader
	in  lineReader
}

// lineReader is the narrow seam globals.go's lazy *bufio.Reader
// construction needs, so interp.go doesn't import "bufio" just for a
// field type.
type lineReader interface {
	ReadString(delim byte) (string, error)
}

// New builds an Interpreter with a fresh global environment, reading from
// stdin and writing to stdout by default.
func New(errs *cherr.Handler) *Interpreter {
	arena := chenv.NewArena()
	root := arena.Root()
	it := &Interpreter{arena: arena, global: root, env: root, errs: errs, Out: os.Stdout, In: os.Stdin}
	it.initGlobalEnv()
	return it
}

// Reset rebuilds the global environment, mirroring Interpreter.reset. The
// REPL does not call it: globals persist across REPL inputs.
func (it *Interpreter) Reset() {
	it.arena = chenv.NewArena()
	it.global = it.arena.Root()
	it.env = it.global
	it.in = nil
	it.initGlobalEnv()
}

// Run executes every statement of a program, returning the stringified
// result of the final statement, mirroring Interpreter.interpret applied
// to a whole Block.
func (it *Interpreter) Run(program ast.Block) (string, error) {
	result, err := it.execStmt(program)
	if err != nil {
		return "", err
	}
	return it.Stringify(result.value), nil
}

// Print mirrors Interpreter.print: it looks up the (possibly rebound)
// global "print" work and calls it, rather than writing directly.
func (it *Interpreter) Print(content any) error {
	fn, ok := it.arena.Lookup(it.env, "print")
	if !ok {
		return fmt.Errorf("print is not defined")
	}
	work, ok := fn.(Work)
	if !ok {
		return fmt.Errorf("print is not callable")
	}
	_, err := work.Call(it, []any{content})
	return err
}

func (it *Interpreter) withScope(fn func() (ctrl, error)) (ctrl, error) {
	prev := it.env
	it.env = it.arena.Child(prev)
	result, err := fn()
	it.env = prev
	return result, err
}

// execStmt runs a statement for its side effects and final value,
// mirroring Interpreter.execute.
func (it *Interpreter) execStmt(s ast.Stmt) (ctrl, error) {
	return it.eval(s)
}

// eval dispatches on a node's concrete type, mirroring the
// @evaluate.register family of methods.
func (it *Interpreter) eval(node any) (ctrl, error) {
	switch n := node.(type) {
	case ast.Block:
		var result ctrl
		for _, stmt := range n.Body {
			res, err := it.eval(stmt)
			if err != nil {
				return ctrl{}, err
			}
			result = res
			if result.submit {
				return result, nil
			}
		}
		return result, nil
	case ast.ExprStmt:
		return it.eval(n.Expr)
	case ast.Write:
		return it.evalWrite(n)
	case ast.During:
		return it.evalDuring(n)
	case ast.Call:
		return it.evalCall(n)
	case ast.Exam:
		return it.evalExam(n)
	case ast.Submit:
		val, err := it.eval(n.Expr)
		if err != nil {
			return ctrl{}, err
		}
		return submitted(val.value), nil
	case ast.Work:
		return it.evalWork(n)
	case ast.Redo:
		return it.evalRedo(n)
	case ast.Interval:
		return it.evalInterval(n)
	case ast.Conversion:
		return it.evalConversion(n)
	case ast.Assign:
		val, err := it.eval(n.Val)
		if err != nil {
			return ctrl{}, err
		}
		it.env = it.arena.Assign(it.env, n.Name.Val.(string), val.value)
		return normal(val.value), nil
	case ast.Variable:
		name := n.Name.Val.(string)
		v, ok := it.arena.Lookup(it.env, name)
		if !ok {
			return ctrl{}, it.errs.AtToken(cherr.ErrName, fmt.Sprintf("variable %q not found", name), n.Name)
		}
		return normal(v), nil
	case ast.Grouping:
		return it.eval(n.Value)
	case ast.Literal:
		return it.evalLiteral(n)
	case ast.Unary:
		return it.evalUnary(n)
	case ast.Binary:
		return it.evalBinary(n)
	default:
		return ctrl{}, fmt.Errorf("no evaluator registered for %T", node)
	}
}

func (it *Interpreter) evalWrite(n ast.Write) (ctrl, error) {
	val, err := it.eval(n.Value)
	if err != nil {
		return ctrl{}, err
	}
	f, err := os.OpenFile(n.Path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return ctrl{}, it.errs.AtToken(cherr.ErrIO, fmt.Sprintf("could not open file %s", n.Path), n.To)
	}
	defer f.Close()
	if _, err := f.WriteString(it.Stringify(val.value)); err != nil {
		return ctrl{}, it.errs.AtToken(cherr.ErrIO, fmt.Sprintf("could not write file %s", n.Path), n.To)
	}
	return val, nil
}

func (it *Interpreter) evalDuring(n ast.During) (ctrl, error) {
	var results []any
	result, err := it.withScope(func() (ctrl, error) {
		for {
			cond, err := it.eval(n.Cond)
			if err != nil {
				return ctrl{}, err
			}
			if !truthy(cond.value) {
				break
			}
			res, err := it.execStmt(n.Body)
			if err != nil {
				return ctrl{}, err
			}
			results = append(results, res.value)
			if res.submit {
				return res, nil
			}
		}
		return normal(results), nil
	})
	return result, err
}

func (it *Interpreter) evalCall(n ast.Call) (ctrl, error) {
	calleeVal, err := it.eval(n.Callee)
	if err != nil {
		return ctrl{}, err
	}
	work, ok := calleeVal.value.(Work)
	if !ok {
		return ctrl{}, it.errs.AtToken(cherr.ErrType, fmt.Sprintf("call to non-function %v", calleeVal.value), n.Paren)
	}
	if len(n.Args) != work.Arity() {
		return ctrl{}, it.errs.AtToken(cherr.ErrArity, "wrong number of arguments", n.Paren)
	}
	args := make([]any, len(n.Args))
	for i, a := range n.Args {
		v, err := it.eval(a)
		if err != nil {
			return ctrl{}, err
		}
		args[i] = v.value
	}
	result, err := work.Call(it, args)
	if err != nil {
		return ctrl{}, err
	}
	return normal(result), nil
}

func (it *Interpreter) evalExam(n ast.Exam) (ctrl, error) {
	cond, err := it.eval(n.Cond)
	if err != nil {
		return ctrl{}, err
	}
	branch := func(s ast.Stmt) (ctrl, error) {
		if _, ok := s.(ast.Block); ok {
			return it.withScope(func() (ctrl, error) { return it.execStmt(s) })
		}
		return it.execStmt(s)
	}
	if truthy(cond.value) {
		return branch(n.Pass)
	}
	if n.Fail != nil {
		return branch(n.Fail)
	}
	return normal(nil), nil
}

func (it *Interpreter) evalWork(n ast.Work) (ctrl, error) {
	work := &UserWork{Decl: n}
	closure := it.arena.New(it.env, map[string]any{n.Name: work})
	work.Closure = closure
	it.env = it.arena.Assign(it.env, n.Name, work)
	return normal(work), nil
}

func (it *Interpreter) evalRedo(n ast.Redo) (ctrl, error) {
	var results []any
	result, err := it.withScope(func() (ctrl, error) {
		items, err := it.intervalValues(n.Interval)
		if err != nil {
			return ctrl{}, err
		}
		for _, i := range items {
			loopFrame := it.arena.Child(it.env)
			it.env = it.arena.Assign(loopFrame, n.Name, i)
			res, err := it.execStmt(n.Body)
			if err != nil {
				return ctrl{}, err
			}
			results = append(results, res.value)
			if res.submit {
				return res, nil
			}
		}
		return normal(results), nil
	})
	return result, err
}

// evalInterval evaluates an Interval node to the Quantity pair it spans,
// mirroring _eval_interval's sum+unpack-unit trick but returning the pair
// rather than a generator, since evalRedo needs it materialized anyway.
func (it *Interpreter) evalInterval(n ast.Interval) (ctrl, error) {
	start, err := it.eval(n.Start)
	if err != nil {
		return ctrl{}, err
	}
	end, err := it.eval(n.End)
	if err != nil {
		return ctrl{}, err
	}
	startQ, ok1 := start.value.(*chem.Quantity)
	endQ, ok2 := end.value.(*chem.Quantity)
	if !ok1 || !ok2 {
		return ctrl{}, it.errs.AtToken(cherr.ErrType, "start and end must be quantities", n.Dots)
	}
	return normal([2]*chem.Quantity{startQ, endQ}), nil
}

// intervalValues materializes the [start, end) quantity range, the eager
// Go analogue of the original's generator expression.
func (it *Interpreter) intervalValues(n ast.Interval) ([]any, error) {
	res, err := it.evalInterval(n)
	if err != nil {
		return nil, err
	}
	pair := res.value.([2]*chem.Quantity)
	startQ, endQ := pair[0], pair[1]
	sum, err := startQ.AddQ(endQ, nil)
	if err != nil {
		return nil, err
	}
	unit := sum.Unit
	formula := sum.FormulaUnit
	lo := int(startQ.Magnitude.Float64())
	hi := int(endQ.Magnitude.Float64())
	items := make([]any, 0, hi-lo)
	for i := lo; i < hi; i++ {
		items = append(items, chem.NewQuantity(formula, numeric.FromInt(int64(i)), unit))
	}
	return items, nil
}

func (it *Interpreter) evalConversion(n ast.Conversion) (ctrl, error) {
	context := chem.ReactionContext{}
	for _, rxn := range n.Reactions {
		balanced, err := rxn.Balanced()
		if err != nil {
			return ctrl{}, err
		}
		if show, ok := it.arena.Lookup(it.env, "show_balanced_equation"); ok && truthy(show) {
			if err := it.Print(balanced.String()); err != nil {
				return ctrl{}, err
			}
		}
		rctx, err := balanced.Context()
		if err != nil {
			return ctrl{}, err
		}
		for k, v := range rctx {
			context[k] = v
		}
	}
	val, err := it.eval(n.Value)
	if err != nil {
		return ctrl{}, err
	}
	q, ok := val.value.(*chem.Quantity)
	if !ok {
		return ctrl{}, it.errs.AtToken(cherr.ErrType, "conversion target must be a quantity", n.To)
	}
	switch target := n.Unit.(type) {
	case units.Unit:
		converted, err := q.ToUnit(target)
		if err != nil {
			return ctrl{}, err
		}
		return normal(converted), nil
	case *chem.Formula:
		fu := chem.NewFormulaUnit([]*chem.Formula{target})
		converted, err := q.To(fu, context)
		if err != nil {
			return ctrl{}, err
		}
		return normal(converted), nil
	default:
		return ctrl{}, it.errs.AtToken(cherr.ErrType, "invalid conversion target", n.To)
	}
}

func (it *Interpreter) evalLiteral(n ast.Literal) (ctrl, error) {
	switch v := n.Value.(type) {
	case ast.StringLiteral:
		if !v.Interpolate {
			return normal(v.Text), nil
		}
		s, err := it.substitute(v.Text)
		if err != nil {
			return ctrl{}, err
		}
		return normal(s), nil
	case *chem.Formula:
		formula := v
		if v.HasDeferred() {
			resolved, err := v.ResolveDeferred(it.evalSigFig)
			if err != nil {
				return ctrl{}, err
			}
			formula = resolved
		}
		mass, err := formula.MolecularMass()
		if err != nil {
			return ctrl{}, err
		}
		return normal(mass), nil
	default:
		return normal(v), nil
	}
}

func (it *Interpreter) evalUnary(n ast.Unary) (ctrl, error) {
	right, err := it.eval(n.Right)
	if err != nil {
		return ctrl{}, err
	}
	switch n.Op.Type {
	case token.Add:
		return pos(right.value)
	case token.Sub:
		return neg(right.value)
	case token.Tilde:
		return ctrl{}, it.errs.AtToken(cherr.ErrType, "bad operand type for unary ~", n.Op)
	case token.Not:
		return normal(!truthy(right.value)), nil
	default:
		return ctrl{}, it.errs.AtToken(cherr.ErrParse, "invalid unary operator", n.Op)
	}
}

func pos(v any) (ctrl, error) {
	if q, ok := v.(*chem.Quantity); ok {
		return normal(q.Pos()), nil
	}
	return normal(v), nil
}

func neg(v any) (ctrl, error) {
	if q, ok := v.(*chem.Quantity); ok {
		return normal(q.Neg()), nil
	}
	return ctrl{}, fmt.Errorf("bad operand type for unary -: %T", v)
}

func (it *Interpreter) evalBinary(n ast.Binary) (ctrl, error) {
	left, err := it.eval(n.Left)
	if err != nil {
		return ctrl{}, err
	}
	if n.Op.Type == token.And {
		if !truthy(left.value) {
			return left, nil
		}
		return it.eval(n.Right)
	}
	if n.Op.Type == token.Or {
		if truthy(left.value) {
			return left, nil
		}
		return it.eval(n.Right)
	}
	right, err := it.eval(n.Right)
	if err != nil {
		return ctrl{}, err
	}
	result, err := it.applyBinary(n.Op, left.value, right.value)
	if err != nil {
		return ctrl{}, it.errs.AtToken(cherr.ErrType, err.Error(), n.Op)
	}
	return normal(result), nil
}

func (it *Interpreter) applyBinary(op token.Token, left, right any) (any, error) {
	if lq, ok := left.(*chem.Quantity); ok {
		return applyQuantityBinary(op, lq, right)
	}
	if ls, ok := left.(string); ok {
		return applyStringBinary(op, ls, right)
	}
	return nil, fmt.Errorf("unsupported operand type %T for %s", left, op.Type)
}

func applyStringBinary(op token.Token, left string, right any) (any, error) {
	rs, ok := right.(string)
	if !ok {
		return nil, fmt.Errorf("cannot combine string with %T", right)
	}
	switch op.Type {
	case token.Add:
		return left + rs, nil
	case token.EqEq:
		return left == rs, nil
	case token.NotEq:
		return left != rs, nil
	case token.Lt:
		return left < rs, nil
	case token.Le:
		return left <= rs, nil
	case token.Gt:
		return left > rs, nil
	case token.Ge:
		return left >= rs, nil
	default:
		return nil, fmt.Errorf("unsupported string operator %s", op.Type)
	}
}

func applyQuantityBinary(op token.Token, left *chem.Quantity, right any) (any, error) {
	rq, err := asQuantity(right)
	if err != nil {
		return nil, err
	}
	switch op.Type {
	case token.Add:
		return left.AddQ(rq, nil)
	case token.Sub:
		return left.SubQ(rq, nil)
	case token.Mul:
		return left.MulQ(rq, nil)
	case token.Div:
		return left.DivQ(rq, nil)
	case token.Mod:
		return left.ModQ(rq, nil)
	case token.Caret, token.MulMul:
		return left.Pow(rq, nil)
	case token.Le, token.Lt, token.Ge, token.Gt:
		c, err := left.Cmp(rq, nil)
		if err != nil {
			return nil, err
		}
		switch op.Type {
		case token.Le:
			return c <= 0, nil
		case token.Lt:
			return c < 0, nil
		case token.Ge:
			return c >= 0, nil
		default:
			return c > 0, nil
		}
	case token.EqEq:
		return left.EqualQ(rq, nil)
	case token.NotEq:
		eq, err := left.EqualQ(rq, nil)
		if err != nil {
			return nil, err
		}
		return !eq, nil
	default:
		return nil, fmt.Errorf("unsupported quantity operator %s", op.Type)
	}
}

func asQuantity(v any) (*chem.Quantity, error) {
	switch t := v.(type) {
	case *chem.Quantity:
		return t, nil
	case numeric.SigFig:
		return chem.NewQuantity(nil, t, units.Dimensionless), nil
	default:
		return nil, fmt.Errorf("cannot convert %T to a quantity", v)
	}
}

// truthy mirrors Python's generic truthiness resolution for the value
// kinds this language's expressions can produce.
func truthy(v any) bool {
	switch t := v.(type) {
	case nil:
		return false
	case bool:
		return t
	case *chem.Quantity:
		return t.Bool()
	case string:
		return t != ""
	case []any:
		return len(t) != 0
	default:
		return true
	}
}
