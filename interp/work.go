package interp

import (
	"github.com/cx-luo/chem-lang/ast"
	"github.com/cx-luo/chem-lang/chenv"
)

// Work is anything callable from chem-lang source, the Go analogue of
// CHWork/NativeWork sharing a __call__ protocol.
type Work interface {
	Arity() int
	Call(it *Interpreter, args []any) (any, error)
	String() string
}

// NativeFn is a host-implemented Work, ported from NativeWork.
type NativeFn struct {
	Name  string
	arity int
	Fn    func(it *Interpreter, args []any) (any, error)
}

// NewNativeFn builds a one-argument native, the only arity the original's
// math-function wrapping and print/input natives need.
func NewNativeFn(name string, fn func(it *Interpreter, args []any) (any, error)) *NativeFn {
	return &NativeFn{Name: name, arity: 1, Fn: fn}
}

func (n *NativeFn) Arity() int { return n.arity }
func (n *NativeFn) Call(it *Interpreter, args []any) (any, error) {
	return n.Fn(it, args)
}
func (n *NativeFn) String() string { return "<NativeWork: " + n.Name + ">" }

// UserWork is a `work` declaration bound to its defining closure, ported
// from CHWork.
type UserWork struct {
	Closure chenv.Handle
	Decl    ast.Work
}

func (w *UserWork) Arity() int { return len(w.Decl.Params) }

func (w *UserWork) Call(it *Interpreter, args []any) (any, error) {
	vars := make(map[string]any, len(w.Decl.Params))
	for i, p := range w.Decl.Params {
		vars[p] = args[i]
	}
	frame := it.arena.New(w.Closure, vars)
	prevEnv := it.env
	it.env = frame
	result, err := it.execStmt(w.Decl.Body)
	it.env = prevEnv
	if err != nil {
		return nil, err
	}
	return result.value, nil
}

func (w *UserWork) String() string { return "<CHWork: " + w.Decl.Name + ">" }
