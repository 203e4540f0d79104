package symcalc

import (
	"fmt"
	"math"
)

// ============================================================
// Rational functions: long division and partial fractions
// ============================================================

// fraction is one partial fraction: (coeff*x + constant) / factor^power.
type fraction struct {
	factor poly
	power  int
	linear Expr // coefficient of x, quadratic factors only
	coeff  Expr
}

func (f fraction) expr(x string) Expr {
	num := f.coeff
	if f.linear != nil {
		num = AddOf(MulOf(f.linear, S(x)), f.coeff)
	}
	return div(num, PowOf(f.factor.expr(x), N(int64(f.power))))
}

// Apart decomposes num/den into a polynomial part plus partial fractions
// over the rational-root factorization of den.
func Apart(num, den Expr, x string) (Expr, error) {
	np, ok1 := polyOf(num, x)
	dp, ok2 := polyOf(den, x)
	if !ok1 || !ok2 || dp.isZero() {
		return nil, fmt.Errorf("apart: %s / %s is not a ratio of polynomials in %s: %w", num, den, x, ErrInvalidExpr)
	}
	var quot poly
	if np.degree() >= dp.degree() {
		quot, np = polyDivMod(np, dp)
	}
	parts := []Expr{quot.expr(x)}
	if np.isZero() {
		return AddOf(parts...), nil
	}
	fracs, err := decompose(np, dp)
	if err != nil {
		return nil, err
	}
	for _, f := range fracs {
		parts = append(parts, f.expr(x))
	}
	return AddOf(parts...), nil
}

// decompose solves for the partial fractions of np/dp, deg np < deg dp.
func decompose(np, dp poly) ([]fraction, error) {
	lead, factors, complete := factorPoly(dp)
	if !complete {
		return nil, fmt.Errorf("denominator does not split into linear and quadratic factors: %w", ErrUnsolved)
	}
	monic := poly{1}
	for _, f := range factors {
		monic = polyMul(monic, polyPow(f.p, f.Multiplicity))
	}

	type pending struct {
		fraction
		coeffName, linearName string
	}
	var fracs []pending
	var unknowns []string
	fresh := func() string {
		name := fmt.Sprintf("A%d", len(unknowns)+1)
		unknowns = append(unknowns, name)
		return name
	}
	// rows[d] collects the coefficient of x^d in the decomposition identity
	rows := make([][]Expr, monic.degree())
	addTo := func(cof poly, name string, shift int) {
		for d, c := range cof {
			if c != 0 && d+shift < len(rows) {
				rows[d+shift] = append(rows[d+shift], MulOf(NFloat(c), S(name)))
			}
		}
	}
	for _, f := range factors {
		for k := 1; k <= f.Multiplicity; k++ {
			cof, _ := polyDivMod(monic, polyPow(f.p, k))
			pf := pending{fraction: fraction{factor: f.p, power: k}, coeffName: fresh()}
			addTo(cof, pf.coeffName, 0)
			if f.p.degree() == 2 {
				pf.linearName = fresh()
				addTo(cof, pf.linearName, 1)
			}
			fracs = append(fracs, pf)
		}
	}
	eqs := make([]*Equation, len(rows))
	for d := range rows {
		target := 0.0
		if d < len(np) {
			target = np[d] / lead
		}
		eqs[d] = Eq(AddOf(rows[d]...), NFloat(target))
	}
	sol, err := SolveLinearSystem(eqs, unknowns)
	if err != nil {
		return nil, fmt.Errorf("partial fraction coefficients: %w", err)
	}
	out := make([]fraction, len(fracs))
	for i, pf := range fracs {
		out[i] = pf.fraction
		out[i].coeff = sol[pf.coeffName]
		if pf.linearName != "" {
			out[i].linear = sol[pf.linearName]
		}
	}
	return out, nil
}

func integrateRational(ctx *Context, e Expr, x string, info *IntegrationInfo) (Expr, bool) {
	num, den := SplitFraction(e)
	np, ok1 := polyOf(num, x)
	dp, ok2 := polyOf(den, x)
	if !ok1 || !ok2 || dp.degree() < 1 {
		return nil, false
	}
	var out []Expr
	if np.degree() >= dp.degree() {
		q, r := polyDivMod(np, dp)
		ctx.step(AddOf(q.expr(x), div(r.expr(x), dp.expr(x))), "polynomial long division")
		ctx.use(TechniqueLongDivision)
		qi, ok := antiderivative(ctx, q.expr(x), x, info)
		if !ok {
			return nil, false
		}
		out = append(out, qi)
		np = r
		if np.isZero() {
			return AddOf(out...), true
		}
		if dp.degree() == 1 {
			// remainder over a linear factor is already a simple fraction
			ri, ok := antiderivative(ctx, div(np.expr(x), dp.expr(x)), x, info)
			if !ok {
				return nil, false
			}
			return AddOf(append(out, ri)...), true
		}
	}
	if dp.degree() < 2 {
		return nil, false
	}
	fracs, err := decompose(np, dp)
	if err != nil {
		ctx.debug("partial fractions failed", "error", err)
		return nil, false
	}
	terms := make([]Expr, len(fracs))
	for i, f := range fracs {
		terms[i] = f.expr(x)
	}
	ctx.enter(AddOf(terms...), "partial fraction decomposition")
	defer ctx.leave()
	for _, f := range fracs {
		r, ok := integrateFraction(ctx, f, x, info)
		if !ok {
			return nil, false
		}
		out = append(out, r)
	}
	ctx.use(TechniquePartialFrac)
	return AddOf(out...), true
}

// integrateFraction integrates one simple fraction; repeated quadratic
// factors go back through the cascade.
func integrateFraction(ctx *Context, f fraction, x string, info *IntegrationInfo) (Expr, bool) {
	fx := f.factor.expr(x)
	if isZero(f.coeff) && (f.linear == nil || isZero(f.linear)) {
		return N(0), true
	}
	if f.factor.degree() == 1 {
		var r Expr
		if f.power == 1 {
			r = MulOf(f.coeff, LnOf(AbsOf(fx)))
		} else {
			k := int64(1 - f.power)
			r = MulOf(f.coeff, PowOf(fx, N(k)), recip(N(k)))
		}
		ctx.step(r, "integral of %s", f.expr(x))
		return r, true
	}
	if f.power > 1 {
		return antiderivative(ctx, f.expr(x), x, info)
	}
	// (Bx + C)/(x^2 + px + q) = (B/2)(2x + p)/Q + (C - Bp/2)/Q
	p, q := f.factor[1], f.factor[0]
	B := f.linear
	rest := subtract(f.coeff, MulOf(B, NFloat(p/2)))
	logPart := MulOf(B, F(1, 2), LnOf(AbsOf(fx)))
	var inv Expr
	if s2 := q - p*p/4; s2 > 0 {
		s := SqrtOf(NFloat(s2))
		inv = div(AtanOf(div(AddOf(S(x), NFloat(p/2)), s)), s)
	} else {
		d := math.Sqrt(-s2)
		r1, r2 := -p/2+d, -p/2-d
		inv = div(LnOf(AbsOf(div(subtract(S(x), NFloat(r1)), subtract(S(x), NFloat(r2))))), NFloat(r1-r2))
	}
	r := AddOf(logPart, MulOf(rest, inv))
	ctx.step(r, "integral of %s by completing the square", f.expr(x))
	return r, true
}
