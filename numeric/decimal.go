// Package numeric implements the interpreter's significant-digit number
// type, ported from chemistry_lang/objs/ch_number.py's SignificantDigits.
//
// There is no arbitrary-precision decimal library anywhere in the
// retrieval pack, so the underlying magnitude is carried in a
// high-precision math/big.Float (stdlib) alongside an explicit "scale"
// (decimal-place count) that is bookkept through arithmetic the same way
// Python's decimal.Decimal tracks it, rather than re-derived from the
// float's binary representation on every read. See DESIGN.md for why this
// is the documented standard-library exception for this package.
package numeric

import (
	"fmt"
	"math/big"
	"strconv"
	"strings"
)

// precision is the working precision (in bits) for the big.Float backing
// every Decimal. ~256 bits comfortably exceeds the handful of significant
// decimal digits chemistry problems need, mirroring the generous default
// context precision (28 digits) Python's decimal module uses.
const precision = 256

// divScale is the decimal-place bookkeeping assigned to an inexact
// division's result, standing in for the scale Python's decimal context
// would settle on after rounding to its default precision.
const divScale = 34

// Decimal is a magnitude held in a 256-bit binary big.Float together with
// the number of digits that appear after its decimal point, as literally
// written or propagated through arithmetic. Integers are held exactly;
// decimal fractions such as 0.1 are held to that binary precision, not
// exactly.
type Decimal struct {
	val   *big.Float
	scale int // digits after the decimal point
}

// ParseDecimal parses a numeric literal (integer, decimal, or scientific
// form; underscores as digit separators) into a Decimal, tracking its
// written scale.
func ParseDecimal(s string) (Decimal, error) {
	s = strings.ReplaceAll(s, "_", "")
	if s == "" {
		return Decimal{}, fmt.Errorf("empty numeric literal")
	}

	mantissa := s
	sciExp := 0
	if idx := strings.IndexAny(s, "eE"); idx >= 0 {
		mantissa = s[:idx]
		e, err := strconv.Atoi(s[idx+1:])
		if err != nil {
			return Decimal{}, fmt.Errorf("invalid exponent in %q", s)
		}
		sciExp = e
	}

	fracLen := 0
	if dot := strings.IndexByte(mantissa, '.'); dot >= 0 {
		fracLen = len(mantissa) - dot - 1
	}

	val, _, err := big.ParseFloat(s, 10, precision, big.ToNearestEven)
	if err != nil {
		return Decimal{}, fmt.Errorf("invalid number %q", s)
	}

	scale := fracLen - sciExp
	if scale < 0 {
		scale = 0
	}
	return Decimal{val: val, scale: scale}, nil
}

// FromInt64 builds an exact, zero-scale Decimal from an integer.
func FromInt64(n int64) Decimal {
	return Decimal{val: new(big.Float).SetPrec(precision).SetInt64(n), scale: 0}
}

// FromFloat64 builds a Decimal from a float64, inferring scale from the
// float's shortest exact decimal rendering.
func FromFloat64(f float64) Decimal {
	s := strconv.FormatFloat(f, 'f', -1, 64)
	d, err := ParseDecimal(s)
	if err != nil {
		return Decimal{val: new(big.Float).SetPrec(precision).SetFloat64(f), scale: 0}
	}
	return d
}

// Scale returns the number of digits after the decimal point this value
// carries.
func (d Decimal) Scale() int { return d.scale }

// bigFloat returns the wrapped *big.Float, treating the zero-value
// Decimal{} (val == nil) as zero rather than panicking, so a Decimal left
// unset in a struct literal behaves like any other Go zero value.
func (d Decimal) bigFloat() *big.Float {
	if d.val == nil {
		return new(big.Float).SetPrec(precision)
	}
	return d.val
}

// IsZero reports whether the magnitude is exactly zero.
func (d Decimal) IsZero() bool { return d.bigFloat().Sign() == 0 }

// Sign returns -1, 0, or 1.
func (d Decimal) Sign() int { return d.bigFloat().Sign() }

// Cmp compares two decimals by magnitude only (ignoring scale).
func (d Decimal) Cmp(o Decimal) int { return d.bigFloat().Cmp(o.bigFloat()) }

// Neg returns -d, preserving scale.
func (d Decimal) Neg() Decimal {
	return Decimal{val: new(big.Float).SetPrec(precision).Neg(d.bigFloat()), scale: d.scale}
}

// Abs returns |d|, preserving scale.
func (d Decimal) Abs() Decimal {
	return Decimal{val: new(big.Float).SetPrec(precision).Abs(d.bigFloat()), scale: d.scale}
}

// Add returns the sum at the working precision; its scale is the finer
// (larger) of the two
// written scales, matching aligned decimal addition.
func (d Decimal) Add(o Decimal) Decimal {
	sum := new(big.Float).SetPrec(precision).Add(d.bigFloat(), o.bigFloat())
	return Decimal{val: sum, scale: maxInt(d.scale, o.scale)}
}

// Sub returns the difference at the working precision; scale as in Add.
func (d Decimal) Sub(o Decimal) Decimal {
	diff := new(big.Float).SetPrec(precision).Sub(d.bigFloat(), o.bigFloat())
	return Decimal{val: diff, scale: maxInt(d.scale, o.scale)}
}

// Mul returns the product at the working precision; scale is the sum of
// the operand scales,
// matching exact decimal multiplication.
func (d Decimal) Mul(o Decimal) Decimal {
	prod := new(big.Float).SetPrec(precision).Mul(d.bigFloat(), o.bigFloat())
	return Decimal{val: prod, scale: d.scale + o.scale}
}

// Quo returns a high-precision quotient. True terminating-decimal
// exactness isn't tracked (see package doc); the result's scale is set to
// a generous constant standing in for default decimal-context rounding.
func (d Decimal) Quo(o Decimal) (Decimal, error) {
	if o.bigFloat().Sign() == 0 {
		return Decimal{}, fmt.Errorf("division by zero")
	}
	q := new(big.Float).SetPrec(precision).Quo(d.bigFloat(), o.bigFloat())
	return Decimal{val: q, scale: divScale}, nil
}

// Mod returns the truncated-division remainder d - o*trunc(d/o), matching
// Python's decimal.Decimal.__mod__ for same-sign operands (the language
// has no documented behavior for mixed-sign modulus, so none is special-cased).
func (d Decimal) Mod(o Decimal) (Decimal, error) {
	if o.bigFloat().Sign() == 0 {
		return Decimal{}, fmt.Errorf("division by zero")
	}
	q := new(big.Float).SetPrec(precision).Quo(d.bigFloat(), o.bigFloat())
	truncated, _ := q.Int(nil)
	qTrunc := new(big.Float).SetPrec(precision).SetInt(truncated)
	rem := new(big.Float).SetPrec(precision).Sub(d.bigFloat(), new(big.Float).SetPrec(precision).Mul(qTrunc, o.bigFloat()))
	return Decimal{val: rem, scale: maxInt(d.scale, o.scale)}, nil
}

// RoundToScale rounds the value to `scale` digits after the decimal point
// using round-half-to-even, the same rounding Python's decimal module
// defaults to.
func (d Decimal) RoundToScale(scale int) Decimal {
	text := d.Text('f', scale)
	rounded, _, _ := big.ParseFloat(text, 10, precision, big.ToNearestEven)
	return Decimal{val: rounded, scale: scale}
}

// Text formats the raw magnitude using math/big.Float's format verbs:
// 'f' with prec digits after the decimal point, 'g'/'G' with prec
// significant digits (prec<0 picks the smallest number of digits that
// round-trips).
func (d Decimal) Text(format byte, prec int) string {
	return d.bigFloat().Text(format, prec)
}

// Float64 returns the nearest float64 approximation.
func (d Decimal) Float64() float64 {
	f, _ := d.bigFloat().Float64()
	return f
}

// Int64 truncates toward zero.
func (d Decimal) Int64() int64 {
	i, _ := d.bigFloat().Int64()
	return i
}

func (d Decimal) String() string { return d.Text('f', -1) }

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}
