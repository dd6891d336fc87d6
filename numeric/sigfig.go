package numeric

import "strings"

// SigFig is a significant-digit number (SDN): a Decimal magnitude paired
// with how many of its digits are meaningful. A Figs of 0 means "not
// useful" and renders as "NA", mirroring
// chemistry_lang/objs/ch_number.py's SignificantDigits.
type SigFig struct {
	Value Decimal
	Figs  int
}

// Parse builds a SigFig from a numeric literal's source text, the way the
// scanner hands token text straight to SignificantDigits(value).
func Parse(s string) (SigFig, error) {
	d, err := ParseDecimal(s)
	if err != nil {
		return SigFig{}, err
	}
	return SigFig{Value: d, Figs: ParseSigFigs(s)}, nil
}

// FromInt coerces a plain integer to an SDN with its natural sig-fig
// count, the way an ordinary number is coerced when mixed into SDN
// arithmetic.
func FromInt(n int64) SigFig {
	d := FromInt64(n)
	return SigFig{Value: d, Figs: ParseSigFigs(d.Text('f', 0))}
}

// FromFloat coerces a plain float to an SDN with its natural sig-fig
// count.
func FromFloat(f float64) SigFig {
	d := FromFloat64(f)
	return SigFig{Value: d, Figs: ParseSigFigs(d.Text('f', -1))}
}

// ParseSigFigs counts the significant digits in a numeral's literal text,
// ported digit-for-digit from _parse_significant_digits:
//   - scientific notation: every digit of the mantissa counts (leading
//     zeros and all);
//   - no decimal point: trailing zeros don't count (ambiguous magnitude);
//   - a leading "0.xxx": leading zeros in the fraction don't count;
//   - otherwise: every digit of the integer part (sans leading zeros) plus
//     every digit of the fraction counts, trailing zeros included.
func ParseSigFigs(s string) int {
	s = strings.ReplaceAll(s, "_", "")
	s = strings.TrimPrefix(s, "-")
	s = strings.TrimPrefix(s, "+")

	if idx := strings.IndexAny(s, "eE"); idx >= 0 {
		mantissa := strings.ReplaceAll(s[:idx], ".", "")
		return len(mantissa)
	}

	dot := strings.IndexByte(s, '.')
	if dot < 0 {
		return len(strings.TrimRight(s, "0"))
	}

	intPart, fracPart := s[:dot], s[dot+1:]
	if intPart == "0" || intPart == "" {
		return len(strings.TrimLeft(fracPart, "0"))
	}
	return len(strings.TrimLeft(intPart, "0")) + len(fracPart)
}

// Neg negates the value, keeping sig figs.
func (s SigFig) Neg() SigFig { return SigFig{Value: s.Value.Neg(), Figs: s.Figs} }

// Abs absolute-values the value, keeping sig figs.
func (s SigFig) Abs() SigFig { return SigFig{Value: s.Value.Abs(), Figs: s.Figs} }

// Add implements addition's "round to the fewest decimal places" rule:
// the raw sum is kept exactly, but its displayed sig-fig count comes from
// reformatting the sum at the coarser (smaller) of the two operands'
// decimal-place counts and counting digits in that rendering.
func (s SigFig) Add(o SigFig) SigFig {
	sum := s.Value.Add(o.Value)
	precision := minInt(s.Value.Scale(), o.Value.Scale())
	return SigFig{Value: sum, Figs: ParseSigFigs(sum.Text('f', precision))}
}

// Sub mirrors Add.
func (s SigFig) Sub(o SigFig) SigFig {
	diff := s.Value.Sub(o.Value)
	precision := minInt(s.Value.Scale(), o.Value.Scale())
	return SigFig{Value: diff, Figs: ParseSigFigs(diff.Text('f', precision))}
}

// Mul implements multiplication's "round to the fewest significant
// figures" rule directly: the result carries whichever operand's sig-fig
// count is smaller.
func (s SigFig) Mul(o SigFig) SigFig {
	return SigFig{Value: s.Value.Mul(o.Value), Figs: minInt(s.Figs, o.Figs)}
}

// Div mirrors Mul.
func (s SigFig) Div(o SigFig) (SigFig, error) {
	q, err := s.Value.Quo(o.Value)
	if err != nil {
		return SigFig{}, err
	}
	return SigFig{Value: q, Figs: minInt(s.Figs, o.Figs)}, nil
}

// Mod mirrors Add's sig-fig rule, applied to the truncated remainder.
func (s SigFig) Mod(o SigFig) (SigFig, error) {
	rem, err := s.Value.Mod(o.Value)
	if err != nil {
		return SigFig{}, err
	}
	precision := minInt(s.Value.Scale(), o.Value.Scale())
	return SigFig{Value: rem, Figs: ParseSigFigs(rem.Text('f', precision))}, nil
}

// Cmp orders two SDNs by magnitude only; sig-fig counts don't participate
// in ordering.
func (s SigFig) Cmp(o SigFig) int { return s.Value.Cmp(o.Value) }

// Equal requires both the magnitude and the sig-fig count to match.
func (s SigFig) Equal(o SigFig) bool { return s.Figs == o.Figs && s.Value.Cmp(o.Value) == 0 }

// String renders "NA" for a zero sig-fig count, otherwise the value
// rounded to exactly Figs significant digits.
func (s SigFig) String() string {
	if s.Figs == 0 {
		return "NA"
	}
	return s.Value.Text('g', s.Figs)
}

// Float64 exposes the raw magnitude for contexts (unit conversion factors,
// math natives) that need an ordinary float.
func (s SigFig) Float64() float64 { return s.Value.Float64() }
