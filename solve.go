package symcalc

import (
	"fmt"
	"math/cmplx"
)

// ============================================================
// Equation and linear systems
// ============================================================

type Equation struct{ LHS, RHS Expr }

func Eq(lhs, rhs Expr) *Equation { return &Equation{LHS: lhs, RHS: rhs} }
func (e *Equation) String() string {
	return e.LHS.String() + " = " + e.RHS.String()
}
func (e *Equation) LaTeX() string { return e.LHS.LaTeX() + " = " + e.RHS.LaTeX() }
func (e *Equation) Residual() Expr {
	return subtract(e.LHS, e.RHS)
}

// SolveLinearSystem solves eqs for unknowns by Gauss-Jordan elimination with
// partial pivoting on numeric entries. Symbolic coefficients are allowed as
// long as they do not mention an unknown.
func SolveLinearSystem(eqs []*Equation, unknowns []string) (map[string]Expr, error) {
	n, m := len(unknowns), len(eqs)
	if n == 0 {
		return map[string]Expr{}, nil
	}
	aug := NewMatrix(m, n+1)
	for i, eq := range eqs {
		res := Expand(eq.Residual())
		constant := res
		for _, u := range unknowns {
			constant = constant.Sub(u, N(0))
		}
		for j, u := range unknowns {
			coeffs := PolyCoeffs(res, u)
			for d, c := range coeffs {
				if (d > 1 || d < 0) && !isZero(c) {
					return nil, fmt.Errorf("equation %d: %s appears with power %d: %w", i+1, u, d, ErrNonLinear)
				}
			}
			c, ok := coeffs[1]
			if !ok {
				c = N(0)
			}
			for _, other := range unknowns {
				if DependsOn(c, other) {
					return nil, fmt.Errorf("equation %d: coefficient of %s mentions %s: %w", i+1, u, other, ErrNonLinear)
				}
			}
			aug.Set(i, j, c)
		}
		aug.Set(i, n, neg(constant.Simplify()))
	}

	row := 0
	pivotCols := make([]int, 0, n)
	for col := 0; col < n && row < m; col++ {
		p := choosePivot(aug, row, col)
		if p < 0 {
			continue
		}
		aug.swapRows(row, p)
		pv := aug.Get(row, col)
		for j := col; j <= n; j++ {
			aug.Set(row, j, div(aug.Get(row, j), pv))
		}
		for i := 0; i < m; i++ {
			if i == row {
				continue
			}
			f := aug.Get(i, col)
			if isZero(f) {
				continue
			}
			for j := col; j <= n; j++ {
				aug.Set(i, j, subtract(aug.Get(i, j), MulOf(f, aug.Get(row, j))))
			}
		}
		pivotCols = append(pivotCols, col)
		row++
	}
	for i := row; i < m; i++ {
		if !isZero(aug.Get(i, n)) {
			return nil, fmt.Errorf("equation %d is inconsistent: %w", i+1, ErrSingularSystem)
		}
	}
	if len(pivotCols) < n {
		return nil, fmt.Errorf("%d equations determine %d of %d unknowns: %w", m, len(pivotCols), n, ErrSingularSystem)
	}
	sol := make(map[string]Expr, n)
	for i, col := range pivotCols {
		sol[unknowns[col]] = aug.Get(i, n)
	}
	return sol, nil
}

// choosePivot prefers the numeric entry of largest magnitude in column col
// at or below row, falling back to the first non-zero symbolic entry.
func choosePivot(aug *Matrix, row, col int) int {
	best, bestMag := -1, 0.0
	symbolic := -1
	for i := row; i < aug.Rows(); i++ {
		e := aug.Get(i, col)
		if isZero(e) {
			continue
		}
		if v, ok := e.(*Num); ok {
			if mag := cmplx.Abs(v.complex()); mag > bestMag {
				best, bestMag = i, mag
			}
			continue
		}
		if symbolic < 0 {
			symbolic = i
		}
	}
	if best >= 0 {
		return best
	}
	return symbolic
}
