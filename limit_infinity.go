package symcalc

import "math"

// ============================================================
// Limits at infinity
// ============================================================

func limitAtInfinity(ctx *Context, e Expr, x string, st limitState) (Expr, bool) {
	p := Inf()
	if v, ok := directInfinity(e, x); ok {
		ctx.step(v, "substitute %s = Infinity", x)
		ctx.use(TechniqueDirectSub)
		return v, true
	}
	if v, ok := limitRationalInfinity(ctx, e, x); ok {
		return v, true
	}
	if v, ok := limitLeadingTerm(ctx, e, x); ok {
		return v, true
	}
	if a, ok := e.(*Add); ok {
		cp := ctx.checkpoint()
		if v, ok := limitConjugate(ctx, e, x, p, st); ok {
			return v, true
		}
		ctx.rollback(cp)
		return limitSum(ctx, a, x, p, st)
	}
	for _, s := range []func(*Context, Expr, string, Expr, limitState) (Expr, bool){
		limitComposite,
		limitConjugate,
		limitLHopital,
	} {
		cp := ctx.checkpoint()
		if v, ok := s(ctx, e, x, p, st); ok {
			return v, true
		}
		ctx.rollback(cp)
	}
	return nil, false
}

// directInfinity substitutes Infinity for x. It is skipped for u^v with both
// u and v depending on x, where the arithmetic of Infinity would settle the
// indeterminate forms 1^Infinity and Infinity^0 too early, and for products
// that meet as 0*Infinity.
func directInfinity(e Expr, x string) (Expr, bool) {
	if containsNode(e, func(n Expr) bool {
		p, ok := n.(*Pow)
		return ok && DependsOn(p.base, x) && DependsOn(p.exp, x)
	}) || productClash(e, x) {
		return nil, false
	}
	v := Sub(e, x, Inf())
	if n, ok := v.Eval(); ok {
		if n.IsUndefined() || !n.IsReal() {
			return nil, false
		}
		return normalizeLimit(v), true
	}
	if containsNode(v, isBadNum) {
		return nil, false
	}
	return v, true
}

// productClash reports whether some product in e has a factor that
// vanishes at x = Infinity next to one that grows or has no value there.
// MulOf folds a zero coefficient before it sees the other factors.
func productClash(e Expr, x string) bool {
	return containsNode(e, func(n Expr) bool {
		m, ok := n.(*Mul)
		if !ok {
			return false
		}
		zero, big := false, false
		for _, f := range m.factors {
			if !DependsOn(f, x) {
				continue
			}
			switch k := classify(Sub(f, x, Inf())); {
			case k == kindZero:
				zero = true
			case k.infinite() || k == kindUndefined:
				big = true
			}
		}
		return zero && big
	})
}

// limitRationalInfinity compares the degrees of numerator and denominator
// polynomials.
func limitRationalInfinity(ctx *Context, e Expr, x string) (Expr, bool) {
	num, den := SplitFraction(e)
	np, ok1 := polyOf(num, x)
	dp, ok2 := polyOf(den, x)
	if !ok1 || !ok2 || np.isZero() || dp.isZero() {
		return nil, false
	}
	n, d := np.degree(), dp.degree()
	ratio := np.lead() / dp.lead()
	var r Expr
	switch {
	case n > d:
		r = Inf()
		if ratio < 0 {
			r = NegInf()
		}
		ctx.step(r, "degree %d over degree %d: the numerator dominates", n, d)
	case n == d:
		r = NFloat(ratio)
		ctx.step(r, "equal degrees: ratio of leading coefficients %s/%s", NFloat(np.lead()), NFloat(dp.lead()))
	default:
		r = N(0)
		ctx.step(r, "degree %d over degree %d: the denominator dominates", n, d)
	}
	ctx.use(TechniqueLeadingTerm)
	return r, true
}

// limitLeadingTerm reduces e to its dominant power c*x^k.
func limitLeadingTerm(ctx *Context, e Expr, x string) (Expr, bool) {
	c, k, ok := leading(e, x)
	if !ok {
		return nil, false
	}
	cn, ok := c.Eval()
	if !ok || !cn.IsReal() || cn.IsZero() {
		return nil, false
	}
	var r Expr
	switch {
	case k > 0:
		r = Inf()
		if cn.IsNegative() {
			r = NegInf()
		}
	case k == 0:
		r = c
	default:
		r = N(0)
	}
	ctx.step(r, "leading term %s", MulOf(c, PowOf(S(x), NFloat(k))))
	ctx.use(TechniqueLeadingTerm)
	return r, true
}

// leading returns c and k with e ~ c*x^k as x -> Infinity. It fails on
// functions other than powers and when the dominant terms of a sum cancel.
func leading(e Expr, x string) (Expr, float64, bool) {
	if !DependsOn(e, x) {
		return e, 0, true
	}
	switch v := e.(type) {
	case *Sym:
		return N(1), 1, true
	case *Pow:
		r, ok := v.exp.(*Num)
		if !ok || !r.IsReal() {
			return nil, 0, false
		}
		c, k, ok := leading(v.base, x)
		if !ok {
			return nil, 0, false
		}
		if cn, ok := c.Eval(); !ok || (cn.IsNegative() && !r.IsInteger()) {
			return nil, 0, false
		}
		return PowOf(c, r), k * r.re, true
	case *Mul:
		cs := make([]Expr, 0, len(v.factors))
		k := 0.0
		for _, f := range v.factors {
			c, fk, ok := leading(f, x)
			if !ok {
				return nil, 0, false
			}
			cs = append(cs, c)
			k += fk
		}
		return MulOf(cs...), k, true
	case *Add:
		top := math.Inf(-1)
		var cs []Expr
		for _, t := range v.terms {
			c, k, ok := leading(t, x)
			if !ok {
				return nil, 0, false
			}
			switch {
			case k > top+1e-12:
				top, cs = k, []Expr{c}
			case math.Abs(k-top) <= 1e-12:
				cs = append(cs, c)
			}
		}
		c := AddOf(cs...)
		if isZero(c) {
			return nil, 0, false
		}
		return c, top, true
	}
	return nil, 0, false
}
