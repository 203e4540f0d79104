package symcalc_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/njchilds90/symcalc"
)

func TestApart(t *testing.T) {
	tests := []struct {
		name     string
		num, den symcalc.Expr
	}{
		{"distinct linear", num(1), symcalc.AddOf(pow(x, 2), num(-1))},
		{"repeated root", symcalc.AddOf(x, num(3)), pow(symcalc.AddOf(x, num(-1)), 2)},
		{"irreducible quadratic", num(1), symcalc.MulOf(x, symcalc.AddOf(pow(x, 2), num(1)))},
		{"improper", symcalc.AddOf(pow(x, 3), num(1)), symcalc.AddOf(x, num(2))},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, err := symcalc.Apart(tt.num, tt.den, "x")
			require.NoError(t, err)
			orig := symcalc.MulOf(tt.num, recip(tt.den))
			for _, v := range []float64{2.5, 3.5, 5} {
				assert.InDelta(t, atX(t, orig, v), atX(t, r, v), 1e-9, "%s at %v", r, v)
			}
		})
	}

	_, err := symcalc.Apart(num(1), symcalc.SinOf(x), "x")
	assert.ErrorIs(t, err, symcalc.ErrInvalidExpr)
}

func TestFactor(t *testing.T) {
	// 2x^3 - 2x = 2x(x - 1)(x + 1)
	p := symcalc.AddOf(symcalc.MulOf(num(2), pow(x, 3)), symcalc.MulOf(num(-2), x))
	r := symcalc.Factor(p, "x")
	assert.True(t, r.Success)
	assert.True(t, r.Leading.Equal(num(2)))
	assert.Len(t, r.Factors, 3)
	for _, v := range []float64{-1.5, 0.5, 4} {
		assert.InDelta(t, atX(t, p, v), atX(t, r.Expr(), v), 1e-9)
	}
}

func TestSolveLinearSystem(t *testing.T) {
	a := symcalc.S("a")
	// 2x + y = a, x - y = 0
	sol, err := symcalc.SolveLinearSystem([]*symcalc.Equation{
		symcalc.Eq(symcalc.AddOf(symcalc.MulOf(num(2), x), y), a),
		symcalc.Eq(x, y),
	}, []string{"x", "y"})
	require.NoError(t, err)
	assert.InDelta(t, 2.0, at(t, sol["x"], map[string]float64{"a": 6}), 1e-12)
	assert.InDelta(t, 2.0, at(t, sol["y"], map[string]float64{"a": 6}), 1e-12)

	_, err = symcalc.SolveLinearSystem([]*symcalc.Equation{
		symcalc.Eq(symcalc.AddOf(x, y), num(1)),
		symcalc.Eq(symcalc.AddOf(symcalc.MulOf(num(2), x), symcalc.MulOf(num(2), y)), num(2)),
	}, []string{"x", "y"})
	assert.ErrorIs(t, err, symcalc.ErrSingularSystem)

	_, err = symcalc.SolveLinearSystem([]*symcalc.Equation{symcalc.Eq(pow(x, 2), num(4))}, []string{"x"})
	assert.ErrorIs(t, err, symcalc.ErrNonLinear)
}

func TestSplitFraction(t *testing.T) {
	e := symcalc.MulOf(x, symcalc.ExpOf(symcalc.MulOf(num(-1), x)), recip(symcalc.AddOf(x, num(1))))
	n, d := symcalc.SplitFraction(e)
	assert.True(t, n.Equal(x), "numerator %s", n)
	assert.InDelta(t, 2*1.0*1.0*2.718281828459045, atX(t, d, 1), 1e-9, "denominator %s", d)
}

func TestExpandAndDegree(t *testing.T) {
	e := symcalc.Expand(pow(symcalc.AddOf(x, num(1)), 3))
	assert.Equal(t, 3, symcalc.Degree(e, "x"))
	assert.Len(t, symcalc.Terms(e), 4)
	assert.Equal(t, 0, symcalc.Degree(num(5), "x"))
}

func TestPolyDegree(t *testing.T) {
	d, err := symcalc.PolyDegree(pow(symcalc.AddOf(x, num(1)), 3), "x")
	require.NoError(t, err)
	assert.Equal(t, 3, d)

	d, err = symcalc.PolyDegree(symcalc.MulOf(y, pow(x, 2)), "x")
	require.NoError(t, err)
	assert.Equal(t, 2, d)

	for _, e := range []symcalc.Expr{symcalc.SqrtOf(x), recip(x), symcalc.SinOf(x)} {
		_, err := symcalc.PolyDegree(e, "x")
		assert.ErrorIs(t, err, symcalc.ErrNotPolynomial, "%s", e)
	}
}

func TestEquation(t *testing.T) {
	eq := symcalc.Eq(x, num(5))
	assert.Equal(t, "x = 5", eq.String())
	assert.InDelta(t, -2.0, atX(t, eq.Residual(), 3), 1e-12)
}
