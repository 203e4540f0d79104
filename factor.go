package symcalc

import "math"

// ============================================================
// Rational-root factoring
// ============================================================

// PolyFactor is one monic irreducible factor with its multiplicity.
type PolyFactor struct {
	Expr         Expr
	Multiplicity int
	p            poly
}

// FactorResult is Leading * Π Factors[i]^Multiplicity. Success is false when
// some factor of degree three or more could not be split.
type FactorResult struct {
	Leading *Num
	Factors []PolyFactor
	Success bool
}

func (r FactorResult) Expr() Expr {
	fs := []Expr{r.Leading}
	for _, f := range r.Factors {
		fs = append(fs, PowOf(f.Expr, N(int64(f.Multiplicity))))
	}
	return MulOf(fs...)
}

// Factor splits a polynomial with numeric coefficients into linear factors
// at its rational roots and monic quadratics.
func Factor(expr Expr, varName string) FactorResult {
	p, ok := polyOf(expr, varName)
	if !ok {
		return FactorResult{Leading: N(1), Factors: []PolyFactor{{Expr: expr.Simplify(), Multiplicity: 1}}}
	}
	if p.degree() < 1 {
		return FactorResult{Leading: NFloat(p.lead()), Success: true}
	}
	lead, factors, complete := factorPoly(p)
	for i := range factors {
		factors[i].Expr = factors[i].p.expr(varName)
	}
	return FactorResult{Leading: NFloat(lead), Factors: factors, Success: complete}
}

func factorPoly(p poly) (float64, []PolyFactor, bool) {
	lead := p.lead()
	q := p.scale(1 / lead)
	var factors []PolyFactor

	zeros := 0
	for q.degree() >= 1 && math.Abs(q[0]) < epsilon {
		q = q[1:]
		zeros++
	}
	if zeros > 0 {
		factors = append(factors, PolyFactor{p: poly{0, 1}, Multiplicity: zeros})
	}

	for q.degree() >= 1 {
		r, found := rationalRoot(q)
		if !found {
			break
		}
		lin := poly{-r, 1}
		mult := 0
		for q.degree() >= 1 {
			quot, rem := polyDivMod(q, lin)
			if !rem.isZero() {
				break
			}
			q = quot
			mult++
		}
		if mult == 0 {
			break
		}
		factors = append(factors, PolyFactor{p: lin, Multiplicity: mult})
	}

	switch q.degree() {
	case 0, -1:
		return lead, factors, true
	case 2:
		return lead, append(factors, PolyFactor{p: q, Multiplicity: 1}), true
	case 4:
		if s := polyGCD(q, q.derivative()); s.degree() == 2 {
			if _, rem := polyDivMod(q, polyMul(s, s)); rem.isZero() {
				return lead, append(factors, PolyFactor{p: s, Multiplicity: 2}), true
			}
		}
	}
	return lead, append(factors, PolyFactor{p: q, Multiplicity: 1}), false
}

func (p poly) derivative() poly {
	if len(p) <= 1 {
		return nil
	}
	out := make(poly, len(p)-1)
	for i := 1; i < len(p); i++ {
		out[i-1] = float64(i) * p[i]
	}
	return out.trim()
}

// rationalRoot finds a rational root of a monic q by the rational root
// theorem after scaling q to integer coefficients.
func rationalRoot(q poly) (float64, bool) {
	scale := int64(1)
	for _, c := range q {
		_, den, ok := ratioOf(c, maxDenominator)
		if !ok {
			return 0, false
		}
		scale = scale / gcdInt(scale, den) * den
		if scale > 1e6 {
			return 0, false
		}
	}
	a0 := int64(math.Round(q[0] * float64(scale)))
	if a0 == 0 {
		return 0, true
	}
	if a0 > 1e8 || a0 < -1e8 {
		return 0, false
	}
	for _, num := range divisors(a0) {
		for _, den := range divisors(scale) {
			for _, sign := range []float64{1, -1} {
				r := sign * float64(num) / float64(den)
				if isRoot(q, r) {
					return r, true
				}
			}
		}
	}
	return 0, false
}

func isRoot(q poly, r float64) bool {
	mag := 0.0
	pw := 1.0
	for _, c := range q {
		mag += math.Abs(c) * pw
		pw *= math.Abs(r)
	}
	return math.Abs(q.eval(r)) <= epsilon*math.Max(1, mag)
}

func divisors(n int64) []int64 {
	if n < 0 {
		n = -n
	}
	var small, large []int64
	for d := int64(1); d*d <= n; d++ {
		if n%d == 0 {
			small = append(small, d)
			if d != n/d {
				large = append([]int64{n / d}, large...)
			}
		}
	}
	return append(small, large...)
}
