package symcalc_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/njchilds90/symcalc"
)

func TestNum_Format(t *testing.T) {
	tests := []struct {
		n     *symcalc.Num
		str   string
		latex string
	}{
		{num(42), "42", "42"},
		{symcalc.F(1, 3), "1/3", `\frac{1}{3}`},
		{symcalc.F(-2, 5), "-2/5", `-\frac{2}{5}`},
		{symcalc.Inf(), "Infinity", `\infty`},
		{symcalc.NegInf(), "-Infinity", `-\infty`},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.str, tt.n.String())
		assert.Equal(t, tt.latex, tt.n.LaTeX())
	}
	assert.Equal(t, "undefined", symcalc.Undefined().String())
	assert.Equal(t, "1 - 2i", symcalc.NComplex(1, -2).String())
}

func TestParseNum(t *testing.T) {
	tests := map[string]func(*symcalc.Num) bool{
		"3":         func(n *symcalc.Num) bool { return n.Equal(num(3)) },
		" 3/4 ":     func(n *symcalc.Num) bool { return n.Equal(symcalc.F(3, 4)) },
		"-0.25":     func(n *symcalc.Num) bool { return n.Equal(symcalc.F(-1, 4)) },
		"Infinity":  (*symcalc.Num).IsPosInf,
		"-Infinity": (*symcalc.Num).IsNegInf,
		"undefined": (*symcalc.Num).IsUndefined,
		"1/0":       (*symcalc.Num).IsUndefined,
	}
	for in, check := range tests {
		n, err := symcalc.ParseNum(in)
		require.NoError(t, err, in)
		assert.True(t, check(n), "%q parsed as %s", in, n)
	}
	_, err := symcalc.ParseNum("x")
	assert.Error(t, err)
}

func TestConstructors_Normalize(t *testing.T) {
	assert.Equal(t, "2*x", symcalc.AddOf(x, x).String())
	assert.True(t, symcalc.AddOf(x, symcalc.MulOf(num(-1), x)).Equal(num(0)))
	assert.True(t, symcalc.MulOf(num(0), x).Equal(num(0)))
	assert.True(t, symcalc.MulOf(num(1), x).Equal(x))
	assert.True(t, symcalc.PowOf(x, num(0)).Equal(num(1)))
	assert.True(t, symcalc.PowOf(x, num(1)).Equal(x))
	assert.Equal(t, "x^2 + x + 1", symcalc.AddOf(num(1), x, pow(x, 2)).String())
	assert.Equal(t, "x^2 - 1", symcalc.AddOf(pow(x, 2), num(-1)).String())
	assert.True(t, symcalc.AddOf(num(2), num(3)).Equal(num(5)))
}

func TestSimplify_Idempotent(t *testing.T) {
	exprs := []symcalc.Expr{
		symcalc.AddOf(x, x, num(3), symcalc.MulOf(num(-1), x)),
		symcalc.MulOf(x, pow(x, 2), recip(x), y),
		pow(pow(x, 2), 3),
		symcalc.PowOf(symcalc.MulOf(num(4), pow(x, 2)), symcalc.F(1, 2)),
		symcalc.MulOf(symcalc.ExpOf(x), symcalc.ExpOf(symcalc.MulOf(num(-1), x))),
		symcalc.AddOf(pow(symcalc.SinOf(x), 2), pow(symcalc.CosOf(x), 2)),
		symcalc.LnOf(symcalc.ExpOf(symcalc.AddOf(x, y))),
		symcalc.MulOf(symcalc.AddOf(x, num(1)), recip(symcalc.AddOf(x, num(1)))),
		symcalc.VectorOf(symcalc.AddOf(y, y), symcalc.MulOf(num(0), x)),
		symcalc.IntegralOf(symcalc.AddOf(x, x), "x"),
		symcalc.DerivativeOf(symcalc.MulOf(num(2), x, x), "x", 2),
		symcalc.LimitOf(symcalc.MulOf(symcalc.SinOf(x), recip(x)), "x", num(0)),
	}
	for _, e := range exprs {
		once := e.Simplify()
		twice := once.Simplify()
		assert.True(t, twice.Equal(once), "%s: %s then %s", e, once, twice)
	}
}

func TestEqual_IsStructural(t *testing.T) {
	a := symcalc.AddOf(symcalc.SinOf(x), pow(y, 2))
	b := symcalc.AddOf(pow(y, 2), symcalc.SinOf(x))
	assert.True(t, a.Equal(b))
	assert.False(t, a.Equal(symcalc.AddOf(symcalc.CosOf(x), pow(y, 2))))
	assert.False(t, x.Equal(num(1)))
}

func TestSubAndEval(t *testing.T) {
	e := symcalc.AddOf(symcalc.MulOf(num(3), pow(x, 2)), symcalc.SinOf(y))
	_, ok := e.Eval()
	assert.False(t, ok)
	assert.InDelta(t, 12+math.Sin(0.5), at(t, e, map[string]float64{"x": 2, "y": 0.5}), 1e-12)

	partial := symcalc.Sub(e, "x", num(1))
	assert.True(t, symcalc.DependsOn(partial, "y"))
	assert.False(t, symcalc.DependsOn(partial, "x"))

	// bound variables are not substituted
	in := symcalc.IntegralOf(x, "x")
	assert.True(t, in.Sub("x", num(2)).Equal(in))
}

func TestFreeSymbols(t *testing.T) {
	e := symcalc.AddOf(symcalc.MulOf(symcalc.S("a"), x), symcalc.Pi)
	fs := symcalc.FreeSymbols(e)
	assert.Len(t, fs, 2)
	assert.Contains(t, fs, "a")
	assert.Contains(t, fs, "x")
	assert.NotContains(t, fs, "pi")
}

func TestFunc_Eval(t *testing.T) {
	v, ok := symcalc.SinOf(symcalc.NFloat(0.3)).Eval()
	require.True(t, ok)
	assert.InDelta(t, math.Sin(0.3), v.Real(), 1e-12)

	assert.True(t, symcalc.LnOf(num(1)).Equal(num(0)))
	assert.True(t, symcalc.ExpOf(num(0)).Equal(num(1)))
	assert.Equal(t, "sin(x)", symcalc.SinOf(x).String())
	assert.Equal(t, `\sin\left(x\right)`, symcalc.SinOf(x).LaTeX())
}

func TestTrace_Rollback(t *testing.T) {
	tr := symcalc.NewTrace()
	tr.Enter(x, "outer")
	cp := tr.Checkpoint()
	tr.Enter(y, "speculative")
	tr.Add(nil, "inner")
	tr.Rollback(cp)
	tr.Add(num(1), "kept")
	tr.Return()

	steps := tr.Steps()
	require.Len(t, steps, 2)
	assert.Equal(t, "outer", steps[0].Explanation)
	assert.Equal(t, 0, steps[0].Depth)
	assert.Equal(t, "kept", steps[1].Explanation)
	assert.Equal(t, 1, steps[1].Depth)
	assert.Equal(t, "1", steps[1].Expr)
	assert.Equal(t, 0, tr.Depth())
	assert.Contains(t, tr.String(), "2. kept: 1")
}

func TestContext_SharedTrace(t *testing.T) {
	tr := symcalc.NewTrace()
	symcalc.Differentiate(symcalc.NewContext(symcalc.WithTrace(tr)), pow(x, 2), "x", 1, false)
	n := tr.Len()
	assert.Positive(t, n)
	symcalc.Differentiate(symcalc.NewContext(symcalc.WithTrace(tr)), pow(x, 3), "x", 1, false)
	assert.Greater(t, tr.Len(), n)
}
