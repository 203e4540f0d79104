package symcalc

import (
	"fmt"
	"math"
)

// ============================================================
// Integral nodes and definite integrals
// ============================================================

// EvaluateIntegral resolves an Integral node. An indefinite integral gains
// the constant C when the node carries one; an integral no strategy solves
// comes back unchanged and the failure is recorded on ctx.
func EvaluateIntegral(ctx *Context, in *Integral, info *IntegrationInfo) Expr {
	defer ctx.flush()
	if info == nil {
		info = &IntegrationInfo{}
	}
	if in.IsDefinite() {
		r, err := definiteIntegrate(ctx, in.inner, in.varName, in.lower, in.upper, info)
		if err != nil {
			ctx.step(in, "left unevaluated")
			return in
		}
		return r
	}
	r, ok := antiderivative(ctx, in.inner.Simplify(), in.varName, info)
	if !ok {
		ctx.fail(fmt.Errorf("integral of %s d%s: %w", in.inner, in.varName, ErrUnsolved))
		ctx.step(in, "no integration strategy applies; left unevaluated")
		return in
	}
	if in.addConstant {
		c := "C"
		if DependsOn(r, c) {
			c = ctx.freshVar("C", r)
		}
		r = AddOf(r, S(c))
		ctx.step(r, "add the constant of integration")
	}
	return r
}

// DefiniteIntegrate evaluates the integral of f from lower to upper by the
// fundamental theorem of calculus. Infinite bounds are taken as limits of
// the antiderivative.
func DefiniteIntegrate(ctx *Context, f Expr, x string, lower, upper Expr, info *IntegrationInfo) (Expr, error) {
	defer ctx.flush()
	if info == nil {
		info = &IntegrationInfo{}
	}
	return definiteIntegrate(ctx, f, x, lower, upper, info)
}

func definiteIntegrate(ctx *Context, f Expr, x string, lower, upper Expr, info *IntegrationInfo) (Expr, error) {
	lower, upper = lower.Simplify(), upper.Simplify()
	if lower.Equal(upper) {
		ctx.step(N(0), "equal bounds")
		return N(0), nil
	}
	if at, ok := interiorSingularity(f, x, lower, upper); ok {
		err := fmt.Errorf("integral of %s from %s to %s: integrand is not integrable near %s = %g: %w", f, lower, upper, x, at, ErrUnsolved)
		ctx.fail(err)
		return nil, err
	}
	F, ok := antiderivative(ctx, f.Simplify(), x, info)
	if !ok {
		err := fmt.Errorf("integral of %s d%s: %w", f, x, ErrUnsolved)
		ctx.fail(err)
		return nil, err
	}
	ctx.enter(F, "fundamental theorem: F(%s) - F(%s)", upper, lower)
	hi, ok1 := boundValue(ctx, F, x, upper)
	lo, ok2 := boundValue(ctx, F, x, lower)
	ctx.leave()
	if !ok1 || !ok2 {
		err := fmt.Errorf("integral of %s from %s to %s: antiderivative has no limit at the bounds: %w", f, lower, upper, ErrUnsolved)
		ctx.fail(err)
		return nil, err
	}
	res := subtract(hi, lo)
	if DependsOn(res, x) {
		err := fmt.Errorf("integral of %s from %s to %s: %w", f, lower, upper, ErrBoundVariableRemains)
		ctx.fail(err)
		return nil, err
	}
	ctx.step(res, "definite integral")
	ctx.use(TechniqueDefiniteBound)
	return res, nil
}

// boundValue is F at b, or its limit when b is infinite.
func boundValue(ctx *Context, F Expr, x string, b Expr) (Expr, bool) {
	if n, ok := b.(*Num); ok && n.IsInf() {
		v, ok := limit(ctx, F, x, b, newLimitState())
		if !ok {
			return nil, false
		}
		ctx.step(v, "F(%s) as a limit", b)
		return v, true
	}
	v := Sub(F, x, b)
	ctx.step(v, "F(%s)", b)
	return v, true
}

const singularSamples = 64

// interiorSingularity looks for a point strictly between finite numeric
// bounds where f leaves its real domain or grows without bound. Each local
// maximum of |f| over a grid is refined by ternary search and tested with
// growsNear. Singularities at the bounds themselves are left to the limits of
// the antiderivative.
func interiorSingularity(f Expr, x string, lower, upper Expr) (float64, bool) {
	a, ok1 := lower.Eval()
	b, ok2 := upper.Eval()
	if !ok1 || !ok2 || !a.IsReal() || !b.IsReal() || !a.IsFinite() || !b.IsFinite() {
		return 0, false
	}
	lo, hi := math.Min(a.re, b.re), math.Max(a.re, b.re)
	h := (hi - lo) / singularSamples
	mags := make([]float64, singularSamples)
	for i := range mags {
		s := lo + (float64(i)+0.5)*h
		n, ok := Sub(f, x, NFloat(s)).Eval()
		if !ok {
			return 0, false
		}
		if n.IsUndefined() || n.IsInf() || !n.IsReal() {
			return s, true
		}
		mags[i] = math.Abs(n.re)
	}
	margin := 1e-6 * (hi - lo)
	for i, m := range mags {
		if (i > 0 && mags[i-1] > m) || (i < len(mags)-1 && mags[i+1] > m) {
			continue
		}
		l := math.Max(lo, lo+(float64(i)-0.5)*h)
		r := math.Min(hi, lo+(float64(i)+1.5)*h)
		p := peak(f, x, l, r)
		if p-lo <= margin || hi-p <= margin {
			continue
		}
		if growsNear(f, x, p) {
			return p, true
		}
	}
	return 0, false
}

// growsNear reports whether |f| at least doubles with each approach step
// towards p from some side and ends above 1e4.
func growsNear(f Expr, x string, p float64) bool {
	for _, dir := range []float64{1, -1} {
		prev, grows := 0.0, true
		for _, d := range approachSteps {
			v, ok := sampleAt(f, x, p+dir*d)
			if !ok || (prev != 0 && math.Abs(v) < 2*prev) {
				grows = false
				break
			}
			prev = math.Abs(v)
		}
		if grows && prev > 1e4 {
			return true
		}
	}
	return false
}

// peak ternary-searches [l, r] for the maximum of |f|.
func peak(f Expr, x string, l, r float64) float64 {
	mag := func(v float64) float64 {
		n, ok := sampleAt(f, x, v)
		if !ok {
			return math.Inf(1)
		}
		return math.Abs(n)
	}
	for i := 0; i < 100 && r-l > 1e-13; i++ {
		m1, m2 := l+(r-l)/3, r-(r-l)/3
		if mag(m1) < mag(m2) {
			l = m1
		} else {
			r = m2
		}
	}
	return (l + r) / 2
}
