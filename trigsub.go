package symcalc

// ============================================================
// Trigonometric substitution
// ============================================================

type trigSubKind int

const (
	subSin trigSubKind = iota // a^2 - b^2x^2, x = (a/b) sin t
	subTan                    // a^2 + b^2x^2, x = (a/b) tan t
	subSec                    // b^2x^2 - a^2, x = (a/b) sec t
)

// radicand finds a factor Q^k of e with Q = A + B*x^2 and k a half-integer,
// or a negative integer when A and B are both positive.
func radicand(e Expr, x string) (q Expr, A, B float64, ok bool) {
	for _, f := range Factors(e) {
		p, isPow := f.(*Pow)
		if !isPow {
			continue
		}
		k, isNum := p.exp.(*Num)
		if !isNum || !k.IsReal() {
			continue
		}
		c, isPoly := polyOf(p.base, x)
		if !isPoly || c.degree() != 2 || c[1] != 0 || c[0] == 0 {
			continue
		}
		half := k.re*2 == float64(int64(k.re*2)) && int64(k.re*2)%2 != 0
		recipInt := k.IsInteger() && k.IsNegative() && c[0] > 0 && c[2] > 0
		if half || recipInt {
			return p.base, c[0], c[2], true
		}
	}
	return nil, 0, 0, false
}

func integrateTrigSub(ctx *Context, e Expr, x string, info *IntegrationInfo) (Expr, bool) {
	q, A, B, ok := radicand(e, x)
	if !ok {
		return nil, false
	}
	var kind trigSubKind
	switch {
	case A > 0 && B < 0:
		kind = subSin
	case A > 0 && B > 0:
		kind = subTan
	case A < 0 && B > 0:
		kind = subSec
	default:
		return nil, false
	}
	a, b := sqrtNum(A), sqrtNum(B)
	ratio := div(a, b)
	th := ctx.freshVar("theta", e)
	t := S(th)

	var xSub, dx, root Expr
	var identity string
	switch kind {
	case subSin:
		xSub = MulOf(ratio, SinOf(t))
		dx = MulOf(ratio, CosOf(t))
		root = MulOf(a, CosOf(t))
		identity = "1 - sin^2 = cos^2"
	case subTan:
		xSub = MulOf(ratio, TanOf(t))
		dx = MulOf(ratio, PowOf(SecOf(t), N(2)))
		root = MulOf(a, SecOf(t))
		identity = "1 + tan^2 = sec^2"
	case subSec:
		xSub = MulOf(ratio, SecOf(t))
		dx = MulOf(ratio, SecOf(t), TanOf(t))
		root = MulOf(a, TanOf(t))
		identity = "sec^2 - 1 = tan^2"
	}

	// Q^k becomes root^(2k) by the identity; every other x is substituted.
	rw := mapExpr(e, func(n Expr) (Expr, bool) {
		if n.Equal(q) {
			return PowOf(root, N(2)), true
		}
		if p, ok := n.(*Pow); ok && p.base.Equal(q) {
			return PowOf(root, MulOf(N(2), p.exp)), true
		}
		return nil, false
	})
	body := TrigSimplify(MulOf(rw.Sub(x, xSub), dx))
	if DependsOn(body, x) {
		return nil, false
	}
	ctx.enter(body, "trig substitution %s = %s, d%s = %s d%s; %s", x, xSub, x, dx, th, identity)
	r, ok := antiderivative(ctx, body, th, info)
	ctx.leave()
	if !ok {
		return nil, false
	}
	res, ok := triangleBack(r, kind, th, x, q, a, b)
	if !ok {
		return nil, false
	}
	ctx.step(res, "back-substitute with the right triangle for %s", xSub)
	ctx.use(TechniqueTrigSub)
	return res, true
}

// triangleBack rewrites trig functions of th as side ratios of the right
// triangle fixed by the substitution, then th itself by the inverse.
func triangleBack(r Expr, kind trigSubKind, th, x string, q, a, b Expr) (Expr, bool) {
	bx := MulOf(b, S(x))
	side := SqrtOf(q)
	var opp, adj, hyp, angle Expr
	switch kind {
	case subSin:
		opp, adj, hyp = bx, side, a
		angle = AsinOf(div(bx, a))
	case subTan:
		opp, adj, hyp = bx, a, side
		angle = AtanOf(div(bx, a))
	case subSec:
		opp, adj, hyp = side, a, bx
		angle = AsecOf(div(bx, a))
	}
	ratios := map[FuncKind]Expr{
		FuncSin: div(opp, hyp),
		FuncCos: div(adj, hyp),
		FuncTan: div(opp, adj),
		FuncCot: div(adj, opp),
		FuncSec: div(hyp, adj),
		FuncCsc: div(hyp, opp),
	}
	out := mapExpr(expandMultipleAngle(r), func(n Expr) (Expr, bool) {
		f, ok := n.(*Func)
		if !ok || !isVar(f.arg, th) {
			return nil, false
		}
		v, found := ratios[f.kind]
		return v, found
	})
	out = Sub(out, th, angle)
	if DependsOn(out, th) {
		return nil, false
	}
	return out, true
}
