package symcalc_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/njchilds90/symcalc"
)

func TestAntiderivative_RoundTrip(t *testing.T) {
	tests := []struct {
		name      string
		f         symcalc.Expr
		technique string
		points    []float64
	}{
		{"constant", num(5), symcalc.TechniqueConstantRule, []float64{0.3, 1.3}},
		{"power", pow(x, 3), symcalc.TechniquePowerRule, []float64{0.3, 0.7, 1.3}},
		{"reciprocal", recip(x), symcalc.TechniquePowerRule, []float64{0.3, 0.7, 1.3}},
		{"polynomial", symcalc.AddOf(symcalc.MulOf(num(3), pow(x, 2)), symcalc.MulOf(num(-2), x), num(7)), "", []float64{0.3, 1.3}},
		{"sine", symcalc.SinOf(x), symcalc.TechniqueDirectForm, []float64{0.3, 0.7, 1.3}},
		{"exponential", symcalc.ExpOf(x), symcalc.TechniqueExponential, []float64{0.3, 1.3}},
		{"linear argument", symcalc.CosOf(symcalc.MulOf(num(3), x)), "", []float64{0.3, 0.7}},
		{"arctangent form", recip(symcalc.AddOf(num(1), pow(x, 2))), "", []float64{0.3, 0.7, 1.3}},
		{"u-substitution", symcalc.MulOf(num(2), x, symcalc.CosOf(pow(x, 2))), symcalc.TechniqueUSub, []float64{0.3, 0.7, 1.3}},
		{"by parts", symcalc.MulOf(x, symcalc.ExpOf(x)), symcalc.TechniqueByParts, []float64{0.3, 0.7, 1.3}},
		{"by parts with a log", symcalc.MulOf(x, symcalc.LnOf(x)), symcalc.TechniqueByParts, []float64{0.3, 0.7, 1.3}},
		{"cyclic parts", symcalc.MulOf(symcalc.ExpOf(x), symcalc.SinOf(x)), symcalc.TechniqueCyclicParts, []float64{0.3, 0.7, 1.3}},
		{"trig power", pow(symcalc.SinOf(x), 2), symcalc.TechniqueTrigPower, []float64{0.3, 0.7, 1.3}},
		{"partial fractions", recip(symcalc.AddOf(pow(x, 2), num(-1))), symcalc.TechniquePartialFrac, []float64{2, 3, 4}},
		{"trig substitution", symcalc.SqrtOf(symcalc.AddOf(num(1), symcalc.MulOf(num(-1), pow(x, 2)))), symcalc.TechniqueTrigSub, []float64{0.2, 0.5}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := countingRecorder{}
			ctx := symcalc.NewContext(symcalc.WithRecorder(rec))
			F, ok := symcalc.Antiderivative(ctx, tt.f, "x", nil)
			require.True(t, ok, "no antiderivative for %s", tt.f)
			requireAntiderivative(t, tt.f, F, tt.points...)
			assert.NotEmpty(t, ctx.Steps())
			if tt.technique != "" {
				assert.Positive(t, rec[tt.technique], "techniques: %v", rec)
			}
		})
	}
}

func TestAntiderivative_ByPartsShapes(t *testing.T) {
	F, ok := symcalc.Integrate(symcalc.MulOf(x, symcalc.ExpOf(x)), "x")
	require.True(t, ok)
	// (x - 1)e^x
	want := symcalc.MulOf(symcalc.AddOf(x, num(-1)), symcalc.ExpOf(x))
	for _, v := range []float64{-1, 0, 0.5, 2} {
		assert.InDelta(t, atX(t, want, v), atX(t, F, v), 1e-9)
	}

	F, ok = symcalc.Integrate(symcalc.MulOf(num(2), x, symcalc.CosOf(pow(x, 2))), "x")
	require.True(t, ok)
	for _, v := range []float64{0, 0.5, 1.2} {
		assert.InDelta(t, atX(t, symcalc.SinOf(pow(x, 2)), v), atX(t, F, v), 1e-9)
	}
}

func TestAntiderivative_SharedBudget(t *testing.T) {
	info := &symcalc.IntegrationInfo{}
	ctx := symcalc.NewContext()
	_, ok := symcalc.Antiderivative(ctx, symcalc.MulOf(x, symcalc.ExpOf(x)), "x", info)
	require.True(t, ok)
	assert.Equal(t, 1, info.ByPartsCount)

	ctx = symcalc.NewContext()
	_, ok = symcalc.Antiderivative(ctx, symcalc.MulOf(x, symcalc.ExpOf(x)), "x", &symcalc.IntegrationInfo{ByPartsCount: 3})
	assert.False(t, ok, "an exhausted budget must stop integration by parts")
}

func TestAntiderivative_RepeatedByParts(t *testing.T) {
	tests := []struct {
		name  string
		f     symcalc.Expr
		parts int
	}{
		{"x^2 e^x", symcalc.MulOf(pow(x, 2), symcalc.ExpOf(x)), 2},
		{"x^3 e^x", symcalc.MulOf(pow(x, 3), symcalc.ExpOf(x)), 3},
		{"x^2 sin x", symcalc.MulOf(pow(x, 2), symcalc.SinOf(x)), 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			info := &symcalc.IntegrationInfo{}
			F, ok := symcalc.Antiderivative(symcalc.NewContext(), tt.f, "x", info)
			require.True(t, ok, "no antiderivative for %s (budget %+v)", tt.f, *info)
			requireAntiderivative(t, tt.f, F, -0.5, 0.3, 1.1)
			assert.Equal(t, tt.parts, info.ByPartsCount)
		})
	}

	// x^2 e^x = (x^2 - 2x + 2)e^x
	F, ok := symcalc.Integrate(symcalc.MulOf(pow(x, 2), symcalc.ExpOf(x)), "x")
	require.True(t, ok)
	want := symcalc.MulOf(symcalc.AddOf(pow(x, 2), symcalc.MulOf(num(-2), x), num(2)), symcalc.ExpOf(x))
	for _, v := range []float64{-1, 0, 2} {
		assert.InDelta(t, atX(t, want, v), atX(t, F, v), 1e-9)
	}
}

func TestAntiderivative_BudgetFromConfig(t *testing.T) {
	cfg := symcalc.DefaultConfig()
	cfg.MaxByPartsCount = 0
	ctx := symcalc.NewContext(symcalc.WithConfig(cfg))
	_, ok := symcalc.Antiderivative(ctx, symcalc.MulOf(x, symcalc.ExpOf(x)), "x", nil)
	assert.False(t, ok)
}

func TestAntiderivative_FailureLeavesNoTrace(t *testing.T) {
	ctx := symcalc.NewContext()
	_, ok := symcalc.Antiderivative(ctx, symcalc.ExpOf(pow(x, 2)), "x", nil)
	assert.False(t, ok)
	assert.Empty(t, ctx.Steps())
}

func TestEvaluateIntegral_Unsolvable(t *testing.T) {
	ctx := symcalc.NewContext()
	in := symcalc.IntegralOf(symcalc.ExpOf(pow(x, 2)), "x")
	r := symcalc.EvaluateIntegral(ctx, in, nil)
	assert.True(t, r.Equal(in), "got %s", r)
	require.Len(t, ctx.Failures(), 1)
	assert.Contains(t, ctx.Failures()[0], symcalc.ErrUnsolved.Error())
	require.NotEmpty(t, ctx.Steps())
	assert.Contains(t, ctx.Steps()[len(ctx.Steps())-1].Explanation, "left unevaluated")
}

func TestEvaluateIntegral_Constant(t *testing.T) {
	ctx := symcalc.NewContext()
	r := symcalc.EvaluateIntegral(ctx, symcalc.IntegralOf(x, "x"), nil)
	_, hasC := symcalc.FreeSymbols(r)["C"]
	assert.True(t, hasC, "got %s", r)
	assert.InDelta(t, 2.0, at(t, r, map[string]float64{"x": 2, "C": 0}), 1e-12)

	// C already in use picks a fresh name
	ctx = symcalc.NewContext()
	r = symcalc.EvaluateIntegral(ctx, symcalc.IntegralOf(symcalc.S("C"), "x"), nil)
	assert.Len(t, symcalc.FreeSymbols(r), 3, "got %s", r)

	ctx = symcalc.NewContext()
	r = symcalc.EvaluateIntegral(ctx, symcalc.IntegralOf(x, "x").WithoutConstant(), nil)
	assert.Equal(t, []string{"x"}, keys(symcalc.FreeSymbols(r)))
}

func TestEvaluateIntegral_Vector(t *testing.T) {
	v := symcalc.VectorOf(num(1), x)
	F, ok := symcalc.Integrate(v, "x")
	require.True(t, ok)
	vec, ok := F.(*symcalc.Vector)
	require.True(t, ok, "got %T", F)
	assert.True(t, vec.Elems()[0].Equal(x))
}

func keys(m map[string]struct{}) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	return out
}
