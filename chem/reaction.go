package chem

import (
	"fmt"
	"math/big"
	"sort"

	"github.com/cx-luo/chem-lang/numeric"
)

// Reaction is a chemical equation: reactants on the left, products on the
// right. Ported from the Reaction dataclass in ch_chemistry.py.
type Reaction struct {
	Reactants []*Formula
	Products  []*Formula
}

func (r *Reaction) String() string {
	return joinFormulas(r.Reactants) + " -> " + joinFormulas(r.Products)
}

func joinFormulas(fs []*Formula) string {
	s := ""
	for i, f := range fs {
		if i > 0 {
			s += " + "
		}
		s += f.String()
	}
	return s
}

// Balanced solves the reaction's stoichiometric linear system and returns
// a new Reaction whose formulas carry integer coefficients, mirroring the
// cached_property of the same name. Gaussian elimination runs over
// math/big.Rat for exactness — see DESIGN.md for why no pack library
// covers rational linear algebra.
func (r *Reaction) Balanced() (*Reaction, error) {
	participants := append(append([]*Formula{}, r.Reactants...), r.Products...)
	n := len(participants)
	if n == 0 {
		return nil, fmt.Errorf("can not balance %s", r)
	}

	elements := map[string]bool{}
	for _, f := range participants {
		for symbol := range f.CountDict() {
			elements[symbol] = true
		}
	}
	symbols := make([]string, 0, len(elements))
	for s := range elements {
		symbols = append(symbols, s)
	}
	sort.Strings(symbols)

	matrix := make([][]*big.Rat, len(symbols))
	for i, symbol := range symbols {
		row := make([]*big.Rat, n)
		for j, f := range participants {
			count := f.Count(symbol)
			val := decimalToRat(count)
			if j >= len(r.Reactants) {
				val.Neg(val)
			}
			row[j] = val
		}
		matrix[i] = row
	}

	solution, err := solveHomogeneous(matrix, n)
	if err != nil {
		return nil, fmt.Errorf("can not balance %s: %w", r, err)
	}

	lcm := big.NewInt(1)
	for _, v := range solution {
		lcm = lcmInt(lcm, new(big.Int).Set(v.Denom()))
	}
	scaled := make([]*big.Int, n)
	for i, v := range solution {
		num := new(big.Rat).Mul(v, new(big.Rat).SetInt(lcm))
		if !num.IsInt() {
			return nil, fmt.Errorf("can not balance %s", r)
		}
		scaled[i] = num.Num()
	}

	newReactants := make([]*Formula, len(r.Reactants))
	for i, f := range r.Reactants {
		newReactants[i] = withCoefficient(f, scaled[i])
	}
	newProducts := make([]*Formula, len(r.Products))
	for i, f := range r.Products {
		newProducts[i] = withCoefficient(f, scaled[len(r.Reactants)+i])
	}
	return &Reaction{Reactants: newReactants, Products: newProducts}, nil
}

func withCoefficient(f *Formula, n *big.Int) *Formula {
	return &Formula{Terms: f.Terms, Number: numeric.FromInt(n.Int64()), Charge: f.Charge, Partial: f.Partial}
}

func decimalToRat(s numeric.SigFig) *big.Rat {
	r := new(big.Rat)
	r.SetString(s.Value.Text('f', -1))
	return r
}

func lcmInt(a, b *big.Int) *big.Int {
	if a.Sign() == 0 {
		return new(big.Int).Abs(b)
	}
	if b.Sign() == 0 {
		return new(big.Int).Abs(a)
	}
	gcd := new(big.Int).GCD(nil, nil, new(big.Int).Abs(a), new(big.Int).Abs(b))
	result := new(big.Int).Div(new(big.Int).Abs(a), gcd)
	return result.Mul(result, new(big.Int).Abs(b))
}

// solveHomogeneous row-reduces matrix (an m x n system, implicitly
// A*x=0) and returns one particular non-trivial solution, treating the
// last free column as 1 and back-substituting the pivot variables — the
// Go analogue of sympy's solve_linear_system followed by substituting the
// last symbol with the least common multiple.
func solveHomogeneous(matrix [][]*big.Rat, n int) ([]*big.Rat, error) {
	m := len(matrix)
	rows := make([][]*big.Rat, m)
	for i, row := range matrix {
		rows[i] = append([]*big.Rat{}, row...)
	}

	pivotCol := make([]int, 0, m)
	r := 0
	for c := 0; c < n && r < m; c++ {
		pivot := -1
		for i := r; i < m; i++ {
			if rows[i][c].Sign() != 0 {
				pivot = i
				break
			}
		}
		if pivot == -1 {
			continue
		}
		rows[r], rows[pivot] = rows[pivot], rows[r]
		inv := new(big.Rat).Inv(rows[r][c])
		for k := 0; k < n; k++ {
			rows[r][k].Mul(rows[r][k], inv)
		}
		for i := 0; i < m; i++ {
			if i == r || rows[i][c].Sign() == 0 {
				continue
			}
			factor := new(big.Rat).Set(rows[i][c])
			for k := 0; k < n; k++ {
				rows[i][k].Sub(rows[i][k], new(big.Rat).Mul(factor, rows[r][k]))
			}
		}
		pivotCol = append(pivotCol, c)
		r++
	}

	isPivot := make([]bool, n)
	for _, c := range pivotCol {
		isPivot[c] = true
	}
	free := -1
	for c := n - 1; c >= 0; c-- {
		if !isPivot[c] {
			free = c
			break
		}
	}
	if free == -1 {
		return nil, fmt.Errorf("reaction has no free coefficient to normalize")
	}

	solution := make([]*big.Rat, n)
	for i := range solution {
		solution[i] = new(big.Rat)
	}
	solution[free].SetInt64(1)

	for i, c := range pivotCol {
		val := new(big.Rat)
		row := rows[i]
		for k := 0; k < n; k++ {
			if k == c {
				continue
			}
			val.Add(val, new(big.Rat).Mul(row[k], solution[k]))
		}
		solution[c] = val.Neg(val)
	}
	return solution, nil
}

// Context builds the molar-ratio table between every ordered pair of
// reaction participants, mirroring the cached_property of the same name.
// The ratio carries 999 significant figures, standing in for the
// original's comment that a molar ratio has "infinite" significant
// digits.
func (r *Reaction) Context() (ReactionContext, error) {
	participants := append(append([]*Formula{}, r.Reactants...), r.Products...)
	ctx := ReactionContext{}
	for _, numerator := range participants {
		for _, denominator := range participants {
			if numerator == denominator {
				continue
			}
			ratio, err := denominator.Number.Div(numerator.Number)
			if err != nil {
				return nil, err
			}
			ratio.Figs = 999
			from := NewFormulaUnit([]*Formula{{Terms: numerator.Terms, Number: one(), Charge: numeric.FromInt(0)}})
			to := NewFormulaUnit([]*Formula{{Terms: denominator.Terms, Number: one(), Charge: numeric.FromInt(0)}})
			ctx[RatioKey{From: from.String(), To: to.String()}] = ratio
		}
	}
	return ctx, nil
}
