package interp

import (
	"bufio"
	"fmt"
	"math"

	"github.com/cx-luo/chem-lang/chem"
	"github.com/cx-luo/chem-lang/numeric"
)

// oneArgMath lists the single-argument math/* functions wired into the
// global environment as natives, the Go stand-in for
// `inspect.getmembers(math)` — Go has no runtime reflection over a
// package's exported functions, so the registry is enumerated by hand.
var oneArgMath = map[string]func(float64) float64{
	"sqrt": math.Sqrt, "cbrt": math.Cbrt,
	"sin": math.Sin, "cos": math.Cos, "tan": math.Tan,
	"asin": math.Asin, "acos": math.Acos, "atan": math.Atan,
	"sinh": math.Sinh, "cosh": math.Cosh, "tanh": math.Tanh,
	"asinh": math.Asinh, "acosh": math.Acosh, "atanh": math.Atanh,
	"exp": math.Exp, "exp2": math.Exp2, "expm1": math.Expm1,
	"log": math.Log, "log2": math.Log2, "log10": math.Log10, "log1p": math.Log1p,
	"fabs": math.Abs, "ceil": math.Ceil, "floor": math.Floor, "trunc": math.Trunc,
	"gamma": math.Gamma, "erf": math.Erf, "erfc": math.Erfc,
	"degrees": func(r float64) float64 { return r * 180 / math.Pi },
	"radians": func(d float64) float64 { return d * math.Pi / 180 },
}

// initGlobalEnv seeds the root frame, mirroring Interpreter.init_global_env.
func (it *Interpreter) initGlobalEnv() {
	it.arena.Define(it.global, "attribute_to_evaluate_element", "AtomicMass")
	it.arena.Define(it.global, "show_balanced_equation", false)
	it.arena.Define(it.global, "print", NewNativeFn("print", it.nativePrint))
	it.arena.Define(it.global, "input", NewNativeFn("input", it.nativeInput))

	for name, fn := range oneArgMath {
		it.arena.Define(it.global, name, wrapMathFn(name, fn))
	}
}

// wrapMathFn adapts a float64->float64 math function into a Work that
// accepts a Quantity (or a bare SigFig), mirroring wrap_fn — except that,
// unlike the original (which reassigns `arg` to its own magnitude and then
// reads `.formula`/`.unit` off that magnitude, an AttributeError waiting to
// happen), the quantity's formula and unit are captured before unwrapping
// the magnitude and reattached to the result.
func wrapMathFn(name string, fn func(float64) float64) *NativeFn {
	return NewNativeFn(name, func(it *Interpreter, args []any) (any, error) {
		q, err := asQuantity(args[0])
		if err != nil {
			return nil, fmt.Errorf("%s expects a quantity argument", name)
		}
		result := fn(q.Magnitude.Float64())
		return chem.NewQuantity(q.FormulaUnit, numeric.FromFloat(result), q.Unit), nil
	})
}

func (it *Interpreter) nativePrint(inner *Interpreter, args []any) (any, error) {
	fmt.Fprintln(inner.Out, inner.Stringify(args[0]))
	return nil, nil
}

func (it *Interpreter) nativeInput(inner *Interpreter, args []any) (any, error) {
	if s, ok := args[0].(string); ok && s != "" {
		fmt.Fprint(inner.Out, s)
	}
	if inner.in == nil {
		inner.in = bufio.NewReader(inner.In)
	}
	line, err := inner.in.ReadString('\n')
	if err != nil && line == "" {
		return nil, err
	}
	for len(line) > 0 && (line[len(line)-1] == '\n' || line[len(line)-1] == '\r') {
		line = line[:len(line)-1]
	}
	return line, nil
}
