package symcalc

import "math"

// ============================================================
// Closed-form antiderivatives
// ============================================================

func integrateClosedForm(ctx *Context, e Expr, x string, info *IntegrationInfo) (Expr, bool) {
	switch v := e.(type) {
	case *Sym:
		r := MulOf(F(1, 2), PowOf(v, N(2)))
		ctx.step(r, "power rule: the integral of %s is %s^2/2", x, x)
		ctx.use(TechniquePowerRule)
		return r, true
	case *Pow:
		return integratePower(ctx, v, x, info)
	case *Func:
		return integrateFunc(ctx, v, x)
	}
	return nil, false
}

func integratePower(ctx *Context, p *Pow, x string, info *IntegrationInfo) (Expr, bool) {
	baseDep, expDep := DependsOn(p.base, x), DependsOn(p.exp, x)
	switch {
	case baseDep && !expDep:
		if fn, ok := p.base.(*Func); ok && fn.kind.isTrig() {
			if n, ok := p.exp.(*Num); ok && n.IsInteger() {
				return integrateTrigPower(ctx, fn, int(n.Int64()), x, info)
			}
			return nil, false
		}
		if a, _, lin := linearCoeffs(p.base, x); lin {
			if isNumEqual(p.exp, -1) {
				r := div(LnOf(AbsOf(p.base)), a)
				ctx.step(r, "power rule for u^-1: the integral is ln|u|")
				ctx.use(TechniquePowerRule)
				return r, true
			}
			n1 := AddOf(p.exp, N(1))
			r := div(PowOf(p.base, n1), MulOf(n1, a))
			ctx.step(r, "power rule: the integral of u^n is u^(n+1)/(n+1)")
			ctx.use(TechniquePowerRule)
			return r, true
		}
		return integrateQuadraticPower(ctx, p, x)
	case expDep && !baseDep:
		a, _, lin := linearCoeffs(p.exp, x)
		if !lin {
			return nil, false
		}
		if isE(p.base) {
			r := div(p, a)
			ctx.step(r, "exponential rule: the integral of e^u is e^u")
			ctx.use(TechniqueExponential)
			return r, true
		}
		if bn, ok := p.base.(*Num); ok && (!bn.IsPositive() || bn.IsOne()) {
			return nil, false
		}
		r := div(p, MulOf(a, LnOf(p.base)))
		ctx.step(r, "exponential rule: the integral of c^u is c^u/ln(c)")
		ctx.use(TechniqueExponential)
		return r, true
	}
	return nil, false
}

// integrateQuadraticPower handles 1/(ax^2+bx+c) with no real roots (atan)
// and 1/sqrt(ax^2+bx+c) with a < 0 (asin).
func integrateQuadraticPower(ctx *Context, p *Pow, x string) (Expr, bool) {
	q, ok := polyOf(p.base, x)
	if !ok || q.degree() != 2 {
		return nil, false
	}
	c0, c1, c2 := q[0], q[1], q[2]
	disc := c1*c1 - 4*c2*c0
	lin := AddOf(MulOf(NFloat(2*c2), S(x)), NFloat(c1))
	switch {
	case isNumEqual(p.exp, -1) && disc < 0:
		root := SqrtOf(NFloat(-disc))
		r := MulOf(N(2), recip(root), AtanOf(div(lin, root)))
		ctx.step(r, "complete the square: the integral of 1/(1+u^2) is atan(u)")
		ctx.use(TechniqueDirectForm)
		return r, true
	case p.exp.Equal(F(-1, 2)) && c2 < 0 && disc > 0:
		r := MulOf(recip(SqrtOf(NFloat(-c2))), AsinOf(div(neg(lin), SqrtOf(NFloat(disc)))))
		ctx.step(r, "complete the square: the integral of 1/sqrt(1-u^2) is asin(u)")
		ctx.use(TechniqueDirectForm)
		return r, true
	}
	return nil, false
}

func integrateFunc(ctx *Context, f *Func, x string) (Expr, bool) {
	a, _, lin := linearCoeffs(f.arg, x)
	if !lin {
		return nil, false
	}
	u := f.arg
	var r Expr
	switch f.kind {
	case FuncSin:
		r = neg(CosOf(u))
	case FuncCos:
		r = SinOf(u)
	case FuncTan:
		r = neg(LnOf(AbsOf(CosOf(u))))
	case FuncCot:
		r = LnOf(AbsOf(SinOf(u)))
	case FuncSec:
		r = LnOf(AbsOf(AddOf(SecOf(u), TanOf(u))))
	case FuncCsc:
		r = neg(LnOf(AbsOf(AddOf(CscOf(u), CotOf(u)))))
	case FuncSinh:
		r = CoshOf(u)
	case FuncCosh:
		r = SinhOf(u)
	case FuncTanh:
		r = LnOf(CoshOf(u))
	default:
		return nil, false
	}
	r = div(r, a)
	ctx.step(r, "standard integral of %s(u)", f.kind)
	ctx.use(TechniqueDirectForm)
	return r, true
}

// reciprocalKind pairs sin/csc, cos/sec and tan/cot.
func reciprocalKind(k FuncKind) (FuncKind, bool) {
	switch k {
	case FuncSin:
		return FuncCsc, true
	case FuncCsc:
		return FuncSin, true
	case FuncCos:
		return FuncSec, true
	case FuncSec:
		return FuncCos, true
	case FuncTan:
		return FuncCot, true
	case FuncCot:
		return FuncTan, true
	}
	return 0, false
}

func integrateTrigPower(ctx *Context, fn *Func, n int, x string, info *IntegrationInfo) (Expr, bool) {
	a, _, lin := linearCoeffs(fn.arg, x)
	if !lin || n == 0 {
		return nil, false
	}
	u := fn.arg
	if n < 0 {
		rk, _ := reciprocalKind(fn.kind)
		rw := PowOf(funcOf(rk, u).Simplify(), N(int64(-n)))
		ctx.enter(rw, "rewrite with the reciprocal function")
		defer ctx.leave()
		return antiderivative(ctx, rw, x, info)
	}
	ni := N(int64(n))
	switch fn.kind {
	case FuncSec, FuncCsc:
		if n == 2 {
			r := div(TanOf(u), a)
			if fn.kind == FuncCsc {
				r = neg(div(CotOf(u), a))
			}
			ctx.step(r, "standard integral of %s^2(u)", fn.kind)
			ctx.use(TechniqueDirectForm)
			return r, true
		}
		// sec^n: sec^(n-2)*tan/(n-1) + (n-2)/(n-1) * integral of sec^(n-2)
		var head Expr
		if fn.kind == FuncSec {
			head = MulOf(PowOf(SecOf(u), N(int64(n-2))), TanOf(u))
		} else {
			head = neg(MulOf(PowOf(CscOf(u), N(int64(n-2))), CotOf(u)))
		}
		head = div(head, MulOf(N(int64(n-1)), a))
		lower := PowOf(funcOf(fn.kind, u).Simplify(), N(int64(n-2)))
		ctx.enter(head, "reduction formula for %s^%d", fn.kind, n)
		rest, ok := antiderivative(ctx, lower, x, info)
		ctx.leave()
		if !ok {
			return nil, false
		}
		ctx.use(TechniqueTrigPower)
		return AddOf(head, MulOf(F(int64(n-2), int64(n-1)), rest)), true
	case FuncTan, FuncCot:
		// tan^n = tan^(n-2)*(sec^2 - 1)
		head := div(PowOf(TanOf(u), N(int64(n-1))), MulOf(N(int64(n-1)), a))
		if fn.kind == FuncCot {
			head = neg(div(PowOf(CotOf(u), N(int64(n-1))), MulOf(N(int64(n-1)), a)))
		}
		ctx.enter(head, "reduction formula for %s^%d using the Pythagorean identity", fn.kind, n)
		var rest Expr
		if n == 2 {
			rest = S(x)
		} else {
			var ok bool
			rest, ok = antiderivative(ctx, PowOf(funcOf(fn.kind, u).Simplify(), N(int64(n-2))), x, info)
			if !ok {
				ctx.leave()
				return nil, false
			}
		}
		ctx.leave()
		ctx.use(TechniqueTrigPower)
		return subtract(head, rest), true
	case FuncSin, FuncCos:
		if n%2 == 0 {
			half := halfAngle(fn.kind, u)
			rw := Expand(PowOf(half, N(int64(n/2))))
			ctx.enter(rw, "half-angle identity: %s^2(u) = %s", fn.kind, half)
			defer ctx.leave()
			ctx.use(TechniqueTrigPower)
			return antiderivative(ctx, rw, x, info)
		}
		// odd power: peel one factor and substitute the co-function
		t := ctx.freshVar("t", fn, S(x))
		ts := S(t)
		body := Expand(PowOf(subtract(N(1), PowOf(ts, N(2))), N(int64((n-1)/2))))
		if fn.kind == FuncSin {
			return pythagoreanSub(ctx, body, t, CosOf(u), neg(recip(a)), info,
				"sin^%s(u) = sin(u)*(1 - cos^2(u))^%d; let t = cos(u)", ni, (n-1)/2)
		}
		return pythagoreanSub(ctx, body, t, SinOf(u), recip(a), info,
			"cos^%s(u) = cos(u)*(1 - sin^2(u))^%d; let t = sin(u)", ni, (n-1)/2)
	}
	return nil, false
}

func halfAngle(kind FuncKind, u Expr) Expr {
	c := CosOf(MulOf(N(2), u))
	if kind == FuncSin {
		return MulOf(F(1, 2), subtract(N(1), c))
	}
	return MulOf(F(1, 2), AddOf(N(1), c))
}

// pythagoreanSub integrates body in t, substitutes t = back and scales.
func pythagoreanSub(ctx *Context, body Expr, t string, back, scale Expr, info *IntegrationInfo, format string, args ...interface{}) (Expr, bool) {
	ctx.enter(body, format, args...)
	r, ok := antiderivative(ctx, body, t, info)
	ctx.leave()
	if !ok {
		return nil, false
	}
	res := MulOf(scale, Sub(r, t, back))
	ctx.step(res, "substitute back t = %s", back)
	ctx.use(TechniqueTrigPower)
	return res, true
}

// ============================================================
// Two-factor trig products
// ============================================================

type trigFactor struct {
	kind FuncKind
	arg  Expr
	n    int
}

func asTrigFactor(f Expr) (trigFactor, bool) {
	if fn, ok := f.(*Func); ok && fn.kind.isTrig() {
		return trigFactor{kind: fn.kind, arg: fn.arg, n: 1}, true
	}
	if p, ok := f.(*Pow); ok {
		fn, ok := p.base.(*Func)
		n, isNum := p.exp.(*Num)
		if ok && isNum && fn.kind.isTrig() && n.IsInteger() {
			return trigFactor{kind: fn.kind, arg: fn.arg, n: int(n.Int64())}, true
		}
	}
	return trigFactor{}, false
}

func integrateTrigProduct(ctx *Context, e Expr, x string, info *IntegrationInfo) (Expr, bool) {
	m, ok := e.(*Mul)
	if !ok || len(m.factors) != 2 {
		return nil, false
	}
	f, ok1 := asTrigFactor(m.factors[0])
	g, ok2 := asTrigFactor(m.factors[1])
	if !ok1 || !ok2 || !f.arg.Equal(g.arg) {
		return nil, false
	}
	a, _, lin := linearCoeffs(f.arg, x)
	if !lin {
		return nil, false
	}
	u := f.arg
	byKind := map[FuncKind]int{f.kind: f.n, g.kind: g.n}
	pair := func(k1, k2 FuncKind) (int, int, bool) {
		n1, ok1 := byKind[k1]
		n2, ok2 := byKind[k2]
		return n1, n2, ok1 && ok2
	}
	t := ctx.freshVar("t", e)
	ts := S(t)
	one := N(1)
	oneMinusT2 := func(k int) Expr { return PowOf(subtract(one, PowOf(ts, N(2))), N(int64(k))) }
	t2MinusOne := func(k int) Expr { return PowOf(subtract(PowOf(ts, N(2)), one), N(int64(k))) }
	onePlusT2 := func(k int) Expr { return PowOf(AddOf(one, PowOf(ts, N(2))), N(int64(k))) }

	if s, c, ok := pair(FuncSec, FuncTan); ok {
		switch {
		case s == 1 && c == 1:
			r := div(SecOf(u), a)
			ctx.step(r, "standard integral: the integral of sec(u)*tan(u) is sec(u)")
			ctx.use(TechniqueDirectForm)
			return r, true
		case c > 0 && c%2 == 1 && s >= 1:
			body := Expand(MulOf(PowOf(ts, N(int64(s-1))), t2MinusOne((c-1)/2)))
			return pythagoreanSub(ctx, body, t, SecOf(u), recip(a), info,
				"odd power of tan: tan^2(u) = sec^2(u) - 1; let t = sec(u)")
		case s >= 2 && s%2 == 0:
			body := Expand(MulOf(onePlusT2((s-2)/2), PowOf(ts, N(int64(c)))))
			return pythagoreanSub(ctx, body, t, TanOf(u), recip(a), info,
				"even power of sec: sec^2(u) = 1 + tan^2(u); let t = tan(u)")
		}
		return nil, false
	}
	if s, c, ok := pair(FuncCsc, FuncCot); ok {
		switch {
		case s == 1 && c == 1:
			r := neg(div(CscOf(u), a))
			ctx.step(r, "standard integral: the integral of csc(u)*cot(u) is -csc(u)")
			ctx.use(TechniqueDirectForm)
			return r, true
		case c > 0 && c%2 == 1 && s >= 1:
			body := Expand(MulOf(PowOf(ts, N(int64(s-1))), t2MinusOne((c-1)/2)))
			return pythagoreanSub(ctx, body, t, CscOf(u), neg(recip(a)), info,
				"odd power of cot: cot^2(u) = csc^2(u) - 1; let t = csc(u)")
		case s >= 2 && s%2 == 0:
			body := Expand(MulOf(onePlusT2((s-2)/2), PowOf(ts, N(int64(c)))))
			return pythagoreanSub(ctx, body, t, CotOf(u), neg(recip(a)), info,
				"even power of csc: csc^2(u) = 1 + cot^2(u); let t = cot(u)")
		}
		return nil, false
	}
	if sn, cn, ok := pair(FuncSin, FuncCos); ok {
		switch {
		case sn > 0 && sn%2 != 0:
			body := Expand(MulOf(oneMinusT2((sn-1)/2), PowOf(ts, N(int64(cn)))))
			return pythagoreanSub(ctx, body, t, CosOf(u), neg(recip(a)), info,
				"odd power of sin: sin^2(u) = 1 - cos^2(u); let t = cos(u)")
		case cn > 0 && cn%2 != 0:
			body := Expand(MulOf(PowOf(ts, N(int64(sn))), oneMinusT2((cn-1)/2)))
			return pythagoreanSub(ctx, body, t, SinOf(u), recip(a), info,
				"odd power of cos: cos^2(u) = 1 - sin^2(u); let t = sin(u)")
		case sn > 0 && cn > 0:
			rw := Expand(MulOf(PowOf(halfAngle(FuncSin, u), N(int64(sn/2))), PowOf(halfAngle(FuncCos, u), N(int64(cn/2)))))
			ctx.enter(rw, "half-angle identities for sin^%d(u)*cos^%d(u)", sn, cn)
			defer ctx.leave()
			ctx.use(TechniqueTrigPower)
			return antiderivative(ctx, rw, x, info)
		}
	}
	return nil, false
}

// sqrtNum is the exact square root of |v| when it has one, else a radical.
func sqrtNum(v float64) Expr { return SqrtOf(NFloat(math.Abs(v))) }
