package symcalc_test

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/njchilds90/symcalc"
)

func TestDefiniteIntegrate_Exact(t *testing.T) {
	ctx := symcalc.NewContext()
	r, err := symcalc.DefiniteIntegrate(ctx, x, "x", num(0), num(1), nil)
	require.NoError(t, err)
	assert.Equal(t, "1/2", r.String())

	rec := countingRecorder{}
	ctx = symcalc.NewContext(symcalc.WithRecorder(rec))
	r = symcalc.EvaluateIntegral(ctx, symcalc.DefiniteIntegralOf(pow(x, 2), "x", num(0), num(3)), nil)
	assert.True(t, r.Equal(num(9)), "got %s", r)
	assert.Equal(t, 1, rec[symcalc.TechniqueDefiniteBound])
}

func TestDefiniteIntegrate_Numeric(t *testing.T) {
	tests := []struct {
		name         string
		f            symcalc.Expr
		lower, upper symcalc.Expr
		want         float64
	}{
		{"sine over half a period", symcalc.SinOf(x), num(0), symcalc.Pi, 2},
		{"exponential", symcalc.ExpOf(x), num(0), num(1), math.E - 1},
		{"by parts", symcalc.MulOf(x, symcalc.ExpOf(x)), num(0), num(1), 1},
		{"reversed bounds", x, num(1), num(0), -0.5},
		{"symbolic free parameter", symcalc.MulOf(y, x), num(0), num(2), 2 * 1.5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, err := symcalc.DefiniteIntegrate(symcalc.NewContext(), tt.f, "x", tt.lower, tt.upper, nil)
			require.NoError(t, err)
			assert.InDelta(t, tt.want, at(t, r, map[string]float64{"y": 1.5}), 1e-9, "got %s", r)
		})
	}
}

func TestDefiniteIntegrate_Additive(t *testing.T) {
	f := symcalc.AddOf(pow(x, 3), symcalc.CosOf(x))
	whole, err := symcalc.DefiniteIntegrate(symcalc.NewContext(), f, "x", num(0), num(3), nil)
	require.NoError(t, err)
	left, err := symcalc.DefiniteIntegrate(symcalc.NewContext(), f, "x", num(0), num(1), nil)
	require.NoError(t, err)
	right, err := symcalc.DefiniteIntegrate(symcalc.NewContext(), f, "x", num(1), num(3), nil)
	require.NoError(t, err)
	assert.InDelta(t, atX(t, whole, 0), atX(t, left, 0)+atX(t, right, 0), 1e-9)
}

func TestDefiniteIntegrate_EqualBounds(t *testing.T) {
	// the integrand has no antiderivative but equal bounds short-circuit
	r, err := symcalc.DefiniteIntegrate(symcalc.NewContext(), symcalc.ExpOf(pow(x, 2)), "x", num(2), num(2), nil)
	require.NoError(t, err)
	assert.True(t, r.Equal(num(0)))
}

func TestDefiniteIntegrate_InfiniteBound(t *testing.T) {
	r, err := symcalc.DefiniteIntegrate(symcalc.NewContext(), symcalc.ExpOf(symcalc.MulOf(num(-1), x)), "x", num(0), symcalc.Inf(), nil)
	require.NoError(t, err)
	assert.True(t, r.Equal(num(1)), "got %s", r)
}

func TestDefiniteIntegrate_Unsolvable(t *testing.T) {
	ctx := symcalc.NewContext()
	_, err := symcalc.DefiniteIntegrate(ctx, symcalc.ExpOf(pow(x, 2)), "x", num(0), num(1), nil)
	assert.True(t, errors.Is(err, symcalc.ErrUnsolved))
	assert.NotEmpty(t, ctx.Failures())

	ctx = symcalc.NewContext()
	in := symcalc.DefiniteIntegralOf(symcalc.ExpOf(pow(x, 2)), "x", num(0), num(1))
	r := symcalc.EvaluateIntegral(ctx, in, nil)
	assert.True(t, r.Equal(in))
}

func TestDefiniteIntegrate_InteriorPole(t *testing.T) {
	tests := []struct {
		name         string
		f            symcalc.Expr
		lower, upper symcalc.Expr
	}{
		{"1/x across 0", recip(x), num(-1), num(1)},
		{"double pole", recip(pow(symcalc.AddOf(x, symcalc.F(-1, 2)), 2)), num(0), num(1)},
		{"tangent across pi/2", symcalc.TanOf(x), num(0), num(2)},
		{"logarithm outside its domain", symcalc.LnOf(x), num(-1), num(1)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := symcalc.NewContext()
			_, err := symcalc.DefiniteIntegrate(ctx, tt.f, "x", tt.lower, tt.upper, nil)
			require.ErrorIs(t, err, symcalc.ErrUnsolved)
			require.Len(t, ctx.Failures(), 1)

			in := symcalc.DefiniteIntegralOf(tt.f, "x", tt.lower, tt.upper)
			assert.True(t, symcalc.EvaluateIntegral(symcalc.NewContext(), in, nil).Equal(in))
		})
	}

	// an integrable singularity at a bound still goes through the antiderivative
	r, err := symcalc.DefiniteIntegrate(symcalc.NewContext(), symcalc.PowOf(x, symcalc.F(-1, 2)), "x", num(0), num(1), nil)
	require.NoError(t, err)
	assert.True(t, r.Equal(num(2)), "got %s", r)

	// a large smooth peak is not a pole
	r, err = symcalc.DefiniteIntegrate(symcalc.NewContext(), symcalc.MulOf(num(100000), symcalc.SinOf(x)), "x", num(0), symcalc.Pi, nil)
	require.NoError(t, err)
	assert.InDelta(t, 200000, at(t, r, nil), 1e-6)
}

func TestDefiniteIntegrate_BoundVariableRemains(t *testing.T) {
	ctx := symcalc.NewContext()
	_, err := symcalc.DefiniteIntegrate(ctx, num(1), "x", num(0), x, nil)
	assert.ErrorIs(t, err, symcalc.ErrBoundVariableRemains)
}

func TestDifferentiate_IntegralWithVariableBound(t *testing.T) {
	t0 := symcalc.S("t")
	in := symcalc.DefiniteIntegralOf(pow(t0, 2), "t", num(0), pow(x, 2))
	d := symcalc.Differentiate(symcalc.NewContext(), in, "x", 1, false)
	// x^4 * 2x
	assert.InDelta(t, 2*math.Pow(1.3, 5), atX(t, d, 1.3), 1e-9, "got %s", d)
}
