package symcalc_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/njchilds90/symcalc"
)

func TestDifferentiate_PowerRule(t *testing.T) {
	ctx := symcalc.NewContext()
	d := symcalc.Differentiate(ctx, pow(x, 3), "x", 1, false)
	assert.Equal(t, "3*x^2", d.String())
	require.NotEmpty(t, ctx.Steps())
	assert.Equal(t, "3*x^2", ctx.Steps()[len(ctx.Steps())-1].Expr)
	assert.Empty(t, ctx.Failures())
}

func TestDifferentiate_Constant(t *testing.T) {
	assert.True(t, symcalc.Diff(symcalc.AddOf(y, num(4)), "x").Equal(num(0)))
	assert.True(t, symcalc.Diff(x, "x").Equal(num(1)))
}

func TestDifferentiate_Rules(t *testing.T) {
	tests := []struct {
		name string
		f    symcalc.Expr
		want func(float64) float64
	}{
		{
			name: "linearity",
			f:    symcalc.AddOf(symcalc.MulOf(num(3), pow(x, 2)), symcalc.SinOf(x)),
			want: func(v float64) float64 { return 6*v + math.Cos(v) },
		},
		{
			name: "product",
			f:    symcalc.MulOf(pow(x, 2), symcalc.SinOf(x)),
			want: func(v float64) float64 { return 2*v*math.Sin(v) + v*v*math.Cos(v) },
		},
		{
			name: "quotient",
			f:    symcalc.MulOf(symcalc.SinOf(x), recip(x)),
			want: func(v float64) float64 { return (v*math.Cos(v) - math.Sin(v)) / (v * v) },
		},
		{
			name: "chain",
			f:    symcalc.ExpOf(pow(x, 2)),
			want: func(v float64) float64 { return 2 * v * math.Exp(v*v) },
		},
		{
			name: "log",
			f:    symcalc.LnOf(symcalc.AddOf(pow(x, 2), num(1))),
			want: func(v float64) float64 { return 2 * v / (v*v + 1) },
		},
		{
			name: "variable exponent",
			f:    symcalc.PowOf(x, x),
			want: func(v float64) float64 { return math.Pow(v, v) * (math.Log(v) + 1) },
		},
		{
			name: "exponential base",
			f:    symcalc.PowOf(num(2), x),
			want: func(v float64) float64 { return math.Pow(2, v) * math.Ln2 },
		},
		{
			name: "arctangent",
			f:    symcalc.AtanOf(x),
			want: func(v float64) float64 { return 1 / (1 + v*v) },
		},
		{
			name: "square root",
			f:    symcalc.SqrtOf(x),
			want: func(v float64) float64 { return 0.5 / math.Sqrt(v) },
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := symcalc.NewContext()
			d := symcalc.Differentiate(ctx, tt.f, "x", 1, false)
			for _, v := range []float64{0.4, 1.1, 2.5} {
				assert.InDelta(t, tt.want(v), atX(t, d, v), 1e-9, "at %v: %s", v, d)
			}
			assert.NotEmpty(t, ctx.Steps())
		})
	}
}

func TestDifferentiate_HigherOrder(t *testing.T) {
	d := symcalc.DiffN(pow(x, 4), "x", 2)
	assert.InDelta(t, 12*1.5*1.5, atX(t, d, 1.5), 1e-9)

	d = symcalc.DiffN(symcalc.SinOf(x), "x", 4)
	assert.InDelta(t, math.Sin(0.7), atX(t, d, 0.7), 1e-12)
}

func TestDifferentiate_OrderBounds(t *testing.T) {
	ctx := symcalc.NewContext()
	d := symcalc.Differentiate(ctx, pow(x, 3), "x", 9, false)
	node, ok := d.(*symcalc.Derivative)
	require.True(t, ok, "got %T", d)
	assert.Equal(t, 9, node.Order())
	require.Len(t, ctx.Failures(), 1)
	assert.Contains(t, ctx.Failures()[0], symcalc.ErrUnsolved.Error())

	// raising the order of an unevaluated node respects the same limit
	ctx = symcalc.NewContext()
	top := symcalc.DerivativeOf(pow(x, 3), "x", symcalc.DefaultConfig().MaxDerivOrder)
	d = symcalc.Differentiate(ctx, top, "x", 1, false)
	node, ok = d.(*symcalc.Derivative)
	require.True(t, ok, "got %T", d)
	assert.Equal(t, top.Order()+1, node.Order())
	require.Len(t, ctx.Failures(), 1)
	assert.Contains(t, ctx.Failures()[0], symcalc.ErrUnsolved.Error())

	ctx = symcalc.NewContext()
	inner := symcalc.DerivativeOf(pow(x, 3), "x", 2)
	d = symcalc.Differentiate(ctx, inner, "x", 1, false)
	node, ok = d.(*symcalc.Derivative)
	require.True(t, ok, "got %T", d)
	assert.Equal(t, 3, node.Order())
	assert.Empty(t, ctx.Failures())

	ctx = symcalc.NewContext()
	d = symcalc.Differentiate(ctx, pow(x, 3), "x", 0, false)
	n, ok := d.(*symcalc.Num)
	require.True(t, ok)
	assert.True(t, n.IsUndefined())
}

func TestDifferentiate_Partial(t *testing.T) {
	f := symcalc.MulOf(x, pow(y, 2))
	dy := symcalc.PDiff(f, "y")
	assert.InDelta(t, 2*3.0*2.0, at(t, dy, map[string]float64{"x": 3, "y": 2}), 1e-12)

	grad := symcalc.Gradient(f, []string{"x", "y"})
	require.Len(t, grad, 2)
	assert.InDelta(t, 4.0, at(t, grad[0], map[string]float64{"x": 3, "y": 2}), 1e-12)

	jac := symcalc.Jacobian([]symcalc.Expr{f, symcalc.AddOf(x, y)}, []string{"x", "y"})
	assert.Equal(t, 2, jac.Rows())
	assert.True(t, jac.Get(1, 0).Equal(num(1)))
}

func TestDifferentiate_Implicit(t *testing.T) {
	ctx := symcalc.NewContext(symcalc.WithImplicit("y"))
	d := symcalc.Differentiate(ctx, symcalc.AddOf(pow(x, 2), pow(y, 2)), "x", 1, false)
	assert.Contains(t, d.String(), "d/dx[y]")

	// the partial form ignores the implicit dependency
	ctx = symcalc.NewContext(symcalc.WithImplicit("y"))
	d = symcalc.Differentiate(ctx, pow(y, 2), "x", 1, true)
	assert.True(t, d.Equal(num(0)))
}

func TestEvaluateDerivative_AtPoint(t *testing.T) {
	ctx := symcalc.NewContext()
	r := symcalc.EvaluateDerivative(ctx, symcalc.DerivativeOf(pow(x, 3), "x", 1).At(num(2)))
	assert.True(t, r.Equal(num(12)), "got %s", r)
}

type countingRecorder map[string]int

func (c countingRecorder) RecordTechnique(name string) { c[name]++ }

func TestDifferentiate_RecordsTechniques(t *testing.T) {
	rec := countingRecorder{}
	ctx := symcalc.NewContext(symcalc.WithRecorder(rec))
	symcalc.Differentiate(ctx, symcalc.SinOf(pow(x, 2)), "x", 1, false)
	assert.Positive(t, rec[symcalc.TechniqueChainRule])
	assert.Positive(t, rec[symcalc.TechniquePowerRule])
}
