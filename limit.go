package symcalc

import (
	"fmt"
	"math"
)

// ============================================================
// Limits
// ============================================================

// Limit returns the limit of expr as x approaches point; use Inf() and
// NegInf() for the infinities. A limit that does not exist is Undefined. A
// limit no strategy resolves comes back as an unevaluated LimitExpr.
func Limit(ctx *Context, expr Expr, x string, point Expr) Expr {
	defer ctx.flush()
	e, p := expr.Simplify(), point.Simplify()
	st := newLimitState()
	ctx.enter(LimitOf(e, x, p), "limit as %s -> %s", x, p)
	r, ok := limit(ctx, e, x, p, st)
	ctx.leave()
	if !ok {
		l := LimitOf(e, x, p)
		l.hopital = st.run.maxHop
		ctx.fail(fmt.Errorf("limit of %s as %s -> %s: %w", e, x, p, ErrUnsolved))
		ctx.step(l, "no strategy resolves the limit; left unevaluated")
		return l
	}
	ctx.step(r, "limit")
	return r
}

// EvaluateLimit resolves a LimitExpr node.
func EvaluateLimit(ctx *Context, l *LimitExpr) Expr {
	return Limit(ctx, l.inner, l.varName, l.point)
}

type limitRun struct{ maxHop int }

// limitState is copied on every recursive call; run is shared. A nonzero
// side restricts a finite limit to x -> p+ (1) or x -> p- (-1).
type limitState struct {
	depth     int
	hop       int
	side      float64
	conjugate bool
	run       *limitRun
}

func newLimitState() limitState { return limitState{run: &limitRun{}} }

func (s limitState) next() limitState {
	s.depth++
	return s
}

func limit(ctx *Context, e Expr, x string, p Expr, st limitState) (Expr, bool) {
	if st.depth > ctx.cfg.MaxLimitDepth {
		return nil, false
	}
	st = st.next()
	if !DependsOn(e, x) {
		return e, true
	}
	if n, ok := p.(*Num); ok && n.IsInf() {
		if n.IsNegInf() {
			t := ctx.freshVar("t", e)
			flipped := Sub(e, x, neg(S(t)))
			ctx.step(flipped, "substitute %s = -%s and let %s -> Infinity", x, t, t)
			return limitAtInfinity(ctx, flipped, t, st)
		}
		return limitAtInfinity(ctx, e, x, st)
	}
	return limitFinite(ctx, e, x, p, st)
}

func limitFinite(ctx *Context, e Expr, x string, p Expr, st limitState) (Expr, bool) {
	if v, ok := directValue(e, x, p); ok {
		ctx.step(v, "direct substitution %s = %s", x, p)
		ctx.use(TechniqueDirectSub)
		return v, true
	}
	if a, ok := e.(*Add); ok {
		return limitSum(ctx, a, x, p, st)
	}
	steps := []func(*Context, Expr, string, Expr, limitState) (Expr, bool){
		limitComposite,
		limitAbsSplit,
		limitDivergent,
		limitConjugate,
		limitLHopital,
	}
	for _, s := range steps {
		cp := ctx.checkpoint()
		if v, ok := s(ctx, e, x, p, st); ok {
			return v, true
		}
		ctx.rollback(cp)
	}
	return nil, false
}

// directValue substitutes p for x, rejecting undefined, infinite and
// non-real results.
func directValue(e Expr, x string, p Expr) (Expr, bool) {
	v := Sub(e, x, p)
	if n, ok := v.Eval(); ok {
		if n.IsUndefined() || n.IsInf() || !n.IsReal() {
			return nil, false
		}
		return v, true
	}
	if containsNode(v, isBadNum) {
		return nil, false
	}
	return v, true
}

func isBadNum(n Expr) bool {
	v, ok := n.(*Num)
	return ok && (v.IsUndefined() || v.IsInf())
}

type limitKind int

const (
	kindFinite limitKind = iota
	kindZero
	kindPosInf
	kindNegInf
	kindUndefined
)

func classify(v Expr) limitKind {
	if n, ok := v.Eval(); ok {
		switch {
		case n.IsUndefined() || !n.IsReal():
			return kindUndefined
		case n.IsPosInf():
			return kindPosInf
		case n.IsNegInf():
			return kindNegInf
		case n.IsZero():
			return kindZero
		}
		return kindFinite
	}
	if containsNode(v, isBadNum) {
		return kindUndefined
	}
	return kindFinite
}

func (k limitKind) infinite() bool { return k == kindPosInf || k == kindNegInf }

// normalizeLimit folds values that evaluate to 0 or an infinity.
func normalizeLimit(v Expr) Expr {
	switch classify(v) {
	case kindZero:
		return N(0)
	case kindPosInf:
		return Inf()
	case kindNegInf:
		return NegInf()
	case kindUndefined:
		return Undefined()
	}
	return v
}

// limitSum adds the limits of the terms. An undefined term makes the sum
// undefined only when every other term is finite; opposite infinities are
// unresolved.
func limitSum(ctx *Context, a *Add, x string, p Expr, st limitState) (Expr, bool) {
	ctx.enter(a, "limit of a sum: take each term separately")
	defer ctx.leave()
	vals := make([]Expr, len(a.terms))
	var pos, negInf, undef int
	for i, t := range a.terms {
		v, ok := limit(ctx, t, x, p, st)
		if !ok {
			return nil, false
		}
		vals[i] = v
		switch classify(v) {
		case kindPosInf:
			pos++
		case kindNegInf:
			negInf++
		case kindUndefined:
			undef++
		}
	}
	switch {
	case undef > 0 && (undef > 1 || pos > 0 || negInf > 0):
		return nil, false
	case undef > 0:
		ctx.step(Undefined(), "one term has no limit")
		return Undefined(), true
	case pos > 0 && negInf > 0:
		ctx.step(nil, "Infinity - Infinity is indeterminate")
		return nil, false
	case pos > 0:
		return Inf(), true
	case negInf > 0:
		return NegInf(), true
	}
	r := AddOf(vals...)
	ctx.step(r, "sum of the limits")
	return r, true
}

// limitComposite takes limits of function arguments, power bases and
// exponents, and product factors, concluding only when the combination is
// determinate.
func limitComposite(ctx *Context, e Expr, x string, p Expr, st limitState) (Expr, bool) {
	switch v := e.(type) {
	case *Func:
		return limitFunc(ctx, v, x, p, st)
	case *Pow:
		return limitPow(ctx, v, x, p, st)
	case *Mul:
		return limitProduct(ctx, v, x, p, st)
	}
	return nil, false
}

func limitFunc(ctx *Context, f *Func, x string, p Expr, st limitState) (Expr, bool) {
	if f.base != nil && DependsOn(f.base, x) {
		return nil, false
	}
	u, ok := limit(ctx, f.arg, x, p, st)
	if !ok {
		return nil, false
	}
	switch classify(u) {
	case kindUndefined:
		return nil, false
	case kindZero:
		if f.kind == FuncLn || f.kind == FuncLog {
			// ln(u) -> -Infinity on any side where u -> 0 from above; the
			// other side is outside the real domain
			if positiveSide(f.arg, x, p) {
				ctx.step(NegInf(), "ln(u) -> -Infinity as u -> 0+")
				ctx.use(TechniqueLimitClosed)
				return NegInf(), true
			}
			return nil, false
		}
	}
	r := normalizeLimit((&Func{kind: f.kind, arg: u, base: f.base}).Simplify())
	if classify(r) == kindUndefined {
		if !classify(u).infinite() {
			return nil, false
		}
		ctx.step(r, "%s oscillates without a limit", f.kind)
	} else {
		ctx.step(r, "%s applied to the limit of its argument", f.kind)
	}
	ctx.use(TechniqueLimitClosed)
	return r, true
}

func limitPow(ctx *Context, pw *Pow, x string, p Expr, st limitState) (Expr, bool) {
	b, ok := limit(ctx, pw.base, x, p, st)
	if !ok {
		return nil, false
	}
	k := pw.exp
	if DependsOn(k, x) {
		if k, ok = limit(ctx, pw.exp, x, p, st); !ok {
			return nil, false
		}
	}
	bk, kk := classify(b), classify(k)
	if bk == kindUndefined || kk == kindUndefined {
		return nil, false
	}
	indeterminate := (isOne(b) && kk.infinite()) ||
		(bk == kindZero && kk == kindZero) ||
		(bk.infinite() && kk == kindZero)
	if indeterminate {
		rw := MulOf(pw.exp, LnOf(pw.base))
		ctx.enter(rw, "indeterminate power: write u^v as e^(v ln u)")
		l, ok := limit(ctx, rw, x, p, st)
		ctx.leave()
		if !ok {
			return nil, false
		}
		r := normalizeLimit(ExpOf(l))
		ctx.step(r, "e raised to the limit of the exponent")
		ctx.use(TechniqueLimitClosed)
		return r, true
	}
	if bk == kindZero {
		switch {
		case kk == kindPosInf:
			return N(0), true
		case kk == kindNegInf:
			return nil, false
		}
		if n, ok := k.Eval(); ok && n.IsNegative() {
			return nil, false
		}
	}
	r := normalizeLimit(PowOf(b, k))
	if classify(r) == kindUndefined {
		return nil, false
	}
	ctx.step(r, "limit of the base raised to the limit of the exponent")
	ctx.use(TechniqueLimitClosed)
	return r, true
}

func limitProduct(ctx *Context, m *Mul, x string, p Expr, st limitState) (Expr, bool) {
	vals := make([]Expr, len(m.factors))
	var zeros, infs int
	sign := 1.0
	symbolic := false
	for i, f := range m.factors {
		v, ok := limit(ctx, f, x, p, st)
		if !ok {
			return nil, false
		}
		vals[i] = v
		switch classify(v) {
		case kindUndefined:
			return nil, false
		case kindZero:
			zeros++
		case kindPosInf:
			infs++
		case kindNegInf:
			infs++
			sign = -sign
		default:
			if n, ok := v.Eval(); ok {
				if n.IsNegative() {
					sign = -sign
				}
			} else {
				symbolic = true
			}
		}
	}
	if zeros > 0 && infs > 0 {
		return nil, false
	}
	var r Expr
	switch {
	case zeros > 0:
		r = N(0)
	case infs > 0:
		if symbolic {
			return nil, false
		}
		r = Inf()
		if sign < 0 {
			r = NegInf()
		}
	default:
		r = MulOf(vals...)
	}
	ctx.step(r, "product of the limits")
	ctx.use(TechniqueLimitClosed)
	return r, true
}

// ============================================================
// One-sided behaviour
// ============================================================

var approachSteps = []float64{1e-3, 1e-5, 1e-7}

// sampleAt evaluates e at x = at.
func sampleAt(e Expr, x string, at float64) (float64, bool) {
	n, ok := Sub(e, x, NFloat(at)).Eval()
	if !ok || n.IsUndefined() || !n.IsReal() {
		return 0, false
	}
	return n.re, true
}

// positiveSide reports whether e stays positive on at least one side of p.
func positiveSide(e Expr, x string, p Expr) bool {
	return len(positiveSides(e, x, p)) > 0
}

// positiveSides lists the directions from p on which e stays positive.
func positiveSides(e Expr, x string, p Expr) []float64 {
	pn, ok := p.Eval()
	if !ok || !pn.IsReal() || pn.IsInf() {
		return nil
	}
	var sides []float64
	for _, dir := range []float64{1, -1} {
		pos := true
		for _, d := range approachSteps {
			if v, ok := sampleAt(e, x, pn.re+dir*d); !ok || v <= 0 {
				pos = false
				break
			}
		}
		if pos {
			sides = append(sides, dir)
		}
	}
	return sides
}

// domainSide returns the only side of p on which every logarithm of e that
// vanishes at p is defined, or 0 when there is no such restriction.
func domainSide(e Expr, x string, p Expr) float64 {
	side := 0.0
	containsNode(e, func(n Expr) bool {
		f, ok := n.(*Func)
		if !ok || (f.kind != FuncLn && f.kind != FuncLog) || !DependsOn(f.arg, x) {
			return false
		}
		if v, ok := Sub(f.arg, x, p).Eval(); !ok || !v.IsZero() {
			return false
		}
		if sides := positiveSides(f.arg, x, p); len(sides) == 1 {
			side = sides[0]
			return true
		}
		return false
	})
	return side
}

// sides lists the directions a finite limit is taken from.
func (s limitState) sides() []float64 {
	if s.side != 0 {
		return []float64{s.side}
	}
	return []float64{1, -1}
}

// limitAbsSplit replaces |u| with u approaching p from each side, where u
// vanishes at p, and compares the one-sided limits.
func limitAbsSplit(ctx *Context, e Expr, x string, p Expr, st limitState) (Expr, bool) {
	pn, ok := p.Eval()
	if !ok || !pn.IsReal() {
		return nil, false
	}
	var abs *Func
	containsNode(e, func(n Expr) bool {
		f, ok := n.(*Func)
		if ok && f.kind == FuncAbs && DependsOn(f.arg, x) {
			if v, ok := Sub(f.arg, x, p).Eval(); ok && v.IsZero() {
				abs = f
				return true
			}
		}
		return false
	})
	if abs == nil {
		return nil, false
	}
	side := func(dir float64) (Expr, bool) {
		v, ok := sampleAt(abs.arg, x, pn.re+dir*approachSteps[1])
		if !ok || v == 0 {
			return nil, false
		}
		rw := replaceNode(e, abs, MulOf(NFloat(math.Copysign(1, v)), abs.arg))
		return limit(ctx, rw, x, p, st)
	}
	ctx.enter(e, "split |%s| by the side of %s", abs.arg, p)
	var vals []Expr
	for _, dir := range st.sides() {
		v, ok := side(dir)
		if !ok {
			ctx.leave()
			return nil, false
		}
		vals = append(vals, v)
	}
	ctx.leave()
	ctx.use(TechniqueOneSided)
	if len(vals) == 1 {
		ctx.step(vals[0], "one-sided limit")
		return vals[0], true
	}
	right, left := vals[0], vals[1]
	if IsEqualTo(left, right) {
		ctx.step(right, "both one-sided limits agree")
		return right, true
	}
	ctx.step(Undefined(), "one-sided limits %s and %s differ", left, right)
	return Undefined(), true
}

// limitDivergent detects c/0 behaviour: the expression grows without bound
// on both sides of p.
func limitDivergent(ctx *Context, e Expr, x string, p Expr, st limitState) (Expr, bool) {
	pn, ok := p.Eval()
	if !ok || !pn.IsReal() {
		return nil, false
	}
	num, den := SplitFraction(e)
	if !DependsOn(den, x) {
		return nil, false
	}
	d, ok := limit(ctx, den, x, p, st)
	if !ok || classify(d) != kindZero {
		return nil, false
	}
	n, ok := limit(ctx, num, x, p, st)
	if !ok {
		return nil, false
	}
	if k := classify(n); k == kindZero || k == kindUndefined {
		return nil, false
	}
	var signs []float64
	for _, dir := range st.sides() {
		s, ok := blowUp(e, x, pn.re, dir)
		if !ok {
			return nil, false
		}
		signs = append(signs, s)
	}
	ctx.use(TechniqueOneSided)
	if len(signs) == 2 && signs[0] != signs[1] {
		ctx.step(Undefined(), "nonzero over zero: the one-sided limits are -Infinity and Infinity")
		return Undefined(), true
	}
	r := Expr(Inf())
	if signs[0] < 0 {
		r = NegInf()
	}
	ctx.step(r, "nonzero over zero with a constant sign near %s", p)
	return r, true
}

// blowUp reports the sign of e near p on side dir when |e| grows as x
// closes in.
func blowUp(e Expr, x string, p, dir float64) (float64, bool) {
	prev := 0.0
	sign := 0.0
	for _, d := range approachSteps {
		v, ok := sampleAt(e, x, p+dir*d)
		if !ok || math.Abs(v) <= math.Abs(prev) {
			return 0, false
		}
		s := math.Copysign(1, v)
		if sign != 0 && s != sign {
			return 0, false
		}
		prev, sign = v, s
	}
	return sign, math.Abs(prev) > 1e4
}

// ============================================================
// Algebraic rewrites: conjugates and L'Hopital
// ============================================================

func isRadical(e Expr) bool {
	_, inner := extractCoefficient(e)
	p, ok := inner.(*Pow)
	if !ok {
		return false
	}
	n, ok := p.exp.(*Num)
	return ok && !n.IsInteger() && n.IsReal()
}

// conjugateOf returns a - b for a two-term sum a + b containing a radical.
func conjugateOf(e Expr) (Expr, bool) {
	a, ok := e.(*Add)
	if !ok || len(a.terms) != 2 {
		return nil, false
	}
	if !isRadical(a.terms[0]) && !isRadical(a.terms[1]) {
		return nil, false
	}
	return subtract(a.terms[0], a.terms[1]), true
}

// rationalize multiplies num and den by the conjugate of whichever is a
// two-term radical sum.
func rationalize(num, den Expr) (Expr, bool) {
	if c, ok := conjugateOf(num); ok {
		return div(Expand(MulOf(num, c)), MulOf(den, c)), true
	}
	if c, ok := conjugateOf(den); ok {
		return div(MulOf(num, c), Expand(MulOf(den, c))), true
	}
	return nil, false
}

func limitConjugate(ctx *Context, e Expr, x string, p Expr, st limitState) (Expr, bool) {
	if st.conjugate {
		return nil, false
	}
	num, den := SplitFraction(e)
	rw, ok := rationalize(num, den)
	if !ok {
		return nil, false
	}
	st.conjugate = true
	ctx.enter(rw, "multiply numerator and denominator by the conjugate")
	r, ok := limit(ctx, rw, x, p, st)
	ctx.leave()
	if !ok {
		return nil, false
	}
	ctx.use(TechniqueConjugate)
	return r, true
}

// limitLHopital differentiates numerator and denominator of a 0/0 or
// Infinity/Infinity quotient. A product 0*Infinity is first written as
// 0/(1/Infinity).
func limitLHopital(ctx *Context, e Expr, x string, p Expr, st limitState) (Expr, bool) {
	if st.hop >= ctx.cfg.MaxLHopitalCount {
		return nil, false
	}
	if st.side == 0 {
		// a logarithm at the boundary of its domain fixes the side for
		// numerator and denominator alike
		st.side = domainSide(e, x, p)
	}
	num, den := SplitFraction(e)
	if !DependsOn(den, x) {
		var ok bool
		if num, den, ok = zeroTimesInfinity(ctx, e, x, p, st); !ok {
			return nil, false
		}
	}
	n, ok1 := limit(ctx, num, x, p, st)
	d, ok2 := limit(ctx, den, x, p, st)
	if !ok1 || !ok2 {
		return nil, false
	}
	nk, dk := classify(n), classify(d)
	zeroOverZero := nk == kindZero && dk == kindZero
	infOverInf := nk.infinite() && dk.infinite()
	if !zeroOverZero && !infOverInf {
		return nil, false
	}
	dn, dd := ctx.derivative(num, x), ctx.derivative(den, x)
	if isZero(dd) {
		return nil, false
	}
	st.hop++
	if st.hop > st.run.maxHop {
		st.run.maxHop = st.hop
	}
	form := "0/0"
	if infOverInf {
		form = "Infinity/Infinity"
	}
	q := div(dn, dd)
	ctx.enter(q, "L'Hopital's rule on %s: differentiate %s and %s", form, num, den)
	r, ok := limit(ctx, q, x, p, st)
	ctx.leave()
	if !ok {
		return nil, false
	}
	ctx.use(TechniqueLHopital)
	return r, true
}

// zeroTimesInfinity splits a 0*Infinity product into a quotient. A
// logarithm stays in the numerator so that differentiating removes it.
func zeroTimesInfinity(ctx *Context, e Expr, x string, p Expr, st limitState) (Expr, Expr, bool) {
	m, ok := e.(*Mul)
	if !ok {
		return nil, nil, false
	}
	var zeros, others []Expr
	infinite, logarithmic := false, false
	for _, f := range m.factors {
		v, ok := limit(ctx, f, x, p, st)
		if !ok {
			return nil, nil, false
		}
		switch k := classify(v); {
		case k == kindZero:
			zeros = append(zeros, f)
		case k.infinite():
			infinite = true
			logarithmic = logarithmic || liateRank(f, x) <= 1
			others = append(others, f)
		default:
			others = append(others, f)
		}
	}
	if len(zeros) == 0 || !infinite {
		return nil, nil, false
	}
	if logarithmic {
		return MulOf(others...), recip(MulOf(zeros...)), true
	}
	return MulOf(zeros...), recip(MulOf(others...)), true
}
