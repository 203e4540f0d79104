package symcalc_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/njchilds90/symcalc"
)

func limitValue(t *testing.T, e symcalc.Expr, p symcalc.Expr) *symcalc.Num {
	t.Helper()
	ctx := symcalc.NewContext()
	r := symcalc.Limit(ctx, e, "x", p)
	n, ok := r.Eval()
	require.True(t, ok, "limit of %s unresolved: %s (failures %v)", e, r, ctx.Failures())
	assert.Empty(t, ctx.Failures())
	return n
}

func TestLimit_Finite(t *testing.T) {
	tests := []struct {
		name  string
		f     symcalc.Expr
		point symcalc.Expr
		want  float64
	}{
		{"direct substitution", symcalc.AddOf(pow(x, 2), num(1)), num(2), 5},
		{"sinc", symcalc.MulOf(symcalc.SinOf(x), recip(x)), num(0), 1},
		{"removable hole", symcalc.MulOf(symcalc.AddOf(pow(x, 2), num(-1)), recip(symcalc.AddOf(x, num(-1)))), num(1), 2},
		{"double L'Hopital", symcalc.MulOf(symcalc.AddOf(num(1), symcalc.MulOf(num(-1), symcalc.CosOf(x))), recip(pow(x, 2))), num(0), 0.5},
		{"x ln x", symcalc.MulOf(x, symcalc.LnOf(x)), num(0), 0},
		{"radical", symcalc.MulOf(symcalc.AddOf(symcalc.SqrtOf(symcalc.AddOf(x, num(4))), num(-2)), recip(x)), num(0), 0.25},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, limitValue(t, tt.f, tt.point).Real(), 1e-9)
		})
	}
}

func TestLimit_Infinity(t *testing.T) {
	rational := symcalc.MulOf(
		symcalc.AddOf(symcalc.MulOf(num(3), pow(x, 2)), num(1)),
		recip(symcalc.AddOf(pow(x, 2), num(-5))),
	)
	tests := []struct {
		name  string
		f     symcalc.Expr
		point symcalc.Expr
		want  float64
	}{
		{"rational equal degree", rational, symcalc.Inf(), 3},
		{"rational lower degree", symcalc.MulOf(x, recip(symcalc.AddOf(pow(x, 2), num(1)))), symcalc.Inf(), 0},
		{"decaying exponential", symcalc.ExpOf(symcalc.MulOf(num(-1), x)), symcalc.Inf(), 0},
		{"x e^-x", symcalc.MulOf(x, symcalc.ExpOf(symcalc.MulOf(num(-1), x))), symcalc.Inf(), 0},
		{"reciprocal", recip(x), symcalc.Inf(), 0},
		{"one to the infinity", symcalc.PowOf(symcalc.AddOf(num(1), recip(x)), x), symcalc.Inf(), math.E},
		{"conjugate", symcalc.AddOf(symcalc.SqrtOf(symcalc.AddOf(pow(x, 2), x)), symcalc.MulOf(num(-1), x)), symcalc.Inf(), 0.5},
		{"arctangent", symcalc.AtanOf(x), symcalc.Inf(), math.Pi / 2},
		{"negative infinity", symcalc.ExpOf(x), symcalc.NegInf(), 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, limitValue(t, tt.f, tt.point).Real(), 1e-9)
		})
	}
}

func TestLimit_Divergent(t *testing.T) {
	assert.True(t, limitValue(t, recip(pow(x, 2)), num(0)).IsPosInf())
	assert.True(t, limitValue(t, symcalc.LnOf(x), num(0)).IsNegInf())
	assert.True(t, limitValue(t, symcalc.AddOf(pow(x, 3), symcalc.MulOf(num(-1), x)), symcalc.Inf()).IsPosInf())
	assert.True(t, limitValue(t, x, symcalc.NegInf()).IsNegInf())
	assert.True(t, limitValue(t, symcalc.ExpOf(x), symcalc.Inf()).IsPosInf())
}

func TestLimit_ExponentialOverPolynomial(t *testing.T) {
	two := symcalc.PowOf(num(2), x)
	tests := []struct {
		name string
		f    symcalc.Expr
	}{
		{"e^x / x", symcalc.MulOf(symcalc.ExpOf(x), recip(x))},
		{"e^x / x^2", symcalc.MulOf(symcalc.ExpOf(x), recip(pow(x, 2)))},
		{"e^x / x^3", symcalc.MulOf(symcalc.ExpOf(x), recip(pow(x, 3)))},
		{"2^x / x", symcalc.MulOf(two, recip(x))},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := symcalc.NewContext()
			r := symcalc.Limit(ctx, tt.f, "x", symcalc.Inf())
			n, ok := r.Eval()
			require.True(t, ok, "unresolved: %s (failures %v)", r, ctx.Failures())
			assert.True(t, n.IsPosInf(), "got %s", r)
			for _, st := range ctx.Steps() {
				assert.NotContains(t, st.Explanation, "substitute x = Infinity")
			}
		})
	}

	// the reciprocals still vanish
	assert.InDelta(t, 0, limitValue(t, symcalc.MulOf(pow(x, 2), symcalc.ExpOf(symcalc.MulOf(num(-1), x))), symcalc.Inf()).Real(), 1e-12)
	// x sin(1/x) is 0*Infinity, not 0
	assert.InDelta(t, 1, limitValue(t, symcalc.MulOf(x, symcalc.SinOf(recip(x))), symcalc.Inf()).Real(), 1e-9)
}

func TestLimit_LogarithmFixesTheSide(t *testing.T) {
	ctx := symcalc.NewContext()
	r := symcalc.Limit(ctx, symcalc.MulOf(x, symcalc.LnOf(x)), "x", num(0))
	assert.True(t, r.Equal(num(0)), "got %s (failures %v)", r, ctx.Failures())

	rec := countingRecorder{}
	ctx = symcalc.NewContext(symcalc.WithRecorder(rec))
	r = symcalc.Limit(ctx, symcalc.MulOf(pow(x, 2), symcalc.LnOf(x)), "x", num(0))
	assert.True(t, r.Equal(num(0)), "got %s", r)
	assert.Positive(t, rec[symcalc.TechniqueLHopital])

	// without a logarithm 1/x keeps its two-sided behaviour
	assert.True(t, limitValue(t, recip(x), num(0)).IsUndefined())
}

func TestLimit_DoesNotExist(t *testing.T) {
	tests := []struct {
		name  string
		f     symcalc.Expr
		point symcalc.Expr
	}{
		{"sign change at a pole", recip(x), num(0)},
		{"oscillation", symcalc.SinOf(x), symcalc.Inf()},
		{"jump", symcalc.MulOf(symcalc.AbsOf(x), recip(x)), num(0)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.True(t, limitValue(t, tt.f, tt.point).IsUndefined())
		})
	}
}

func TestLimit_Unresolved(t *testing.T) {
	cfg := symcalc.DefaultConfig()
	cfg.MaxLHopitalCount = 1
	ctx := symcalc.NewContext(symcalc.WithConfig(cfg))
	f := symcalc.MulOf(symcalc.AddOf(num(1), symcalc.MulOf(num(-1), symcalc.CosOf(x))), recip(pow(x, 2)))

	r := symcalc.Limit(ctx, f, "x", num(0))
	l, ok := r.(*symcalc.LimitExpr)
	require.True(t, ok, "got %s", r)
	assert.Equal(t, 1, l.HopitalDepth())
	assert.Equal(t, "x", l.Var())
	require.Len(t, ctx.Failures(), 1)
	assert.Contains(t, ctx.Failures()[0], symcalc.ErrUnsolved.Error())

	// a speculative L'Hopital attempt leaves no steps behind
	for _, st := range ctx.Steps() {
		assert.NotContains(t, st.Explanation, "L'Hopital")
	}

	// with the default budget the same node resolves
	v := symcalc.EvaluateLimit(symcalc.NewContext(), l)
	assert.True(t, v.Equal(symcalc.F(1, 2)), "got %s", v)
}

func TestLimit_Constant(t *testing.T) {
	ctx := symcalc.NewContext()
	r := symcalc.Limit(ctx, y, "x", num(0))
	assert.True(t, r.Equal(y))
}

func TestLimit_RecordsTechnique(t *testing.T) {
	rec := countingRecorder{}
	ctx := symcalc.NewContext(symcalc.WithRecorder(rec))
	symcalc.Limit(ctx, symcalc.MulOf(symcalc.SinOf(x), recip(x)), "x", num(0))
	assert.Equal(t, 1, rec[symcalc.TechniqueLHopital])

	var explained bool
	for _, st := range ctx.Steps() {
		if st.Depth > 0 && st.Explanation != "" {
			explained = true
		}
	}
	assert.True(t, explained)
}
