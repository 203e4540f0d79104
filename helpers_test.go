package symcalc_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/njchilds90/symcalc"
)

var (
	x = symcalc.S("x")
	y = symcalc.S("y")
)

func at(t *testing.T, e symcalc.Expr, vals map[string]float64) float64 {
	t.Helper()
	for name, v := range vals {
		e = symcalc.Sub(e, name, symcalc.NFloat(v))
	}
	n, ok := e.Eval()
	require.True(t, ok, "%s does not evaluate", e)
	return n.Real()
}

func atX(t *testing.T, e symcalc.Expr, v float64) float64 {
	t.Helper()
	return at(t, e, map[string]float64{"x": v})
}

// slope is the central difference of F at v.
func slope(t *testing.T, F symcalc.Expr, v float64) float64 {
	t.Helper()
	const h = 1e-5
	return (atX(t, F, v+h) - atX(t, F, v-h)) / (2 * h)
}

// requireAntiderivative checks F' = f at each point.
func requireAntiderivative(t *testing.T, f, F symcalc.Expr, points ...float64) {
	t.Helper()
	for _, p := range points {
		require.InDelta(t, atX(t, f, p), slope(t, F, p), 1e-4, "d/dx[%s] at %v", F, p)
	}
}

func pow(b symcalc.Expr, n int64) symcalc.Expr { return symcalc.PowOf(b, symcalc.N(n)) }

func recip(e symcalc.Expr) symcalc.Expr { return symcalc.PowOf(e, symcalc.N(-1)) }

func num(v int64) *symcalc.Num { return symcalc.N(v) }
