package symcalc

import (
	"fmt"
	"math"
)

// ============================================================
// Polynomial utilities
// ============================================================

// Degree is the highest integer power of varName in expr.
func Degree(expr Expr, varName string) int {
	expr = expr.Simplify()
	switch v := expr.(type) {
	case *Sym:
		if v.name == varName {
			return 1
		}
		return 0
	case *Pow:
		if sym, ok := v.base.(*Sym); ok && sym.name == varName {
			if n, ok2 := v.exp.(*Num); ok2 && n.IsInteger() {
				return int(n.Int64())
			}
		}
		return 0
	case *Add:
		maxDeg := 0
		for _, t := range v.terms {
			if d := Degree(t, varName); d > maxDeg {
				maxDeg = d
			}
		}
		return maxDeg
	case *Mul:
		totalDeg := 0
		for _, f := range v.factors {
			totalDeg += Degree(f, varName)
		}
		return totalDeg
	}
	return 0
}

// PolyDegree is the degree of expr as a polynomial in varName after
// expansion. Coefficients may be symbolic.
func PolyDegree(expr Expr, varName string) (int, error) {
	e := Expand(expr.Simplify())
	if !isPolynomialIn(e, varName) {
		return 0, fmt.Errorf("degree of %s in %s: %w", expr, varName, ErrNotPolynomial)
	}
	return Degree(e, varName), nil
}

func isPolynomialIn(e Expr, x string) bool {
	if !DependsOn(e, x) {
		return true
	}
	switch v := e.(type) {
	case *Sym:
		return true
	case *Pow:
		n, ok := v.exp.(*Num)
		return ok && n.IsInteger() && !n.IsNegative() && isPolynomialIn(v.base, x)
	case *Add:
		for _, t := range v.terms {
			if !isPolynomialIn(t, x) {
				return false
			}
		}
		return true
	case *Mul:
		for _, f := range v.factors {
			if !isPolynomialIn(f, x) {
				return false
			}
		}
		return true
	}
	return false
}

type PolyCoeffsResult map[int]Expr

// PolyCoeffs maps each power of varName to its (possibly symbolic)
// coefficient. Non-polynomial parts land in the constant coefficient.
func PolyCoeffs(expr Expr, varName string) PolyCoeffsResult {
	result := PolyCoeffsResult{}
	extractCoeffs(expr.Simplify(), varName, result)
	return result
}

func extractCoeffs(e Expr, varName string, out PolyCoeffsResult) {
	switch v := e.(type) {
	case *Sym:
		if v.name == varName {
			addCoeff(out, 1, N(1))
		} else {
			addCoeff(out, 0, v)
		}
	case *Pow:
		if sym, ok := v.base.(*Sym); ok && sym.name == varName {
			if n, ok2 := v.exp.(*Num); ok2 && n.IsInteger() {
				addCoeff(out, int(n.Int64()), N(1))
				return
			}
		}
		addCoeff(out, 0, e)
	case *Mul:
		deg := 0
		coeffFactors := []Expr{}
		for _, f := range v.factors {
			if d := Degree(f, varName); d != 0 {
				deg += d
			} else {
				coeffFactors = append(coeffFactors, f)
			}
		}
		addCoeff(out, deg, MulOf(coeffFactors...))
	case *Add:
		for _, t := range v.terms {
			extractCoeffs(t, varName, out)
		}
	default:
		addCoeff(out, 0, e)
	}
}

func addCoeff(out PolyCoeffsResult, deg int, val Expr) {
	if existing, ok := out[deg]; ok {
		out[deg] = AddOf(existing, val)
	} else {
		out[deg] = val.Simplify()
	}
}

// ============================================================
// poly: dense numeric polynomial, ascending degree
// ============================================================

type poly []float64

// polyOf reads e as a polynomial in x with real numeric coefficients.
func polyOf(e Expr, x string) (poly, bool) {
	var p poly
	for _, t := range Terms(Expand(e)) {
		coeff, rest := extractCoefficient(t)
		if !coeff.IsReal() || !coeff.IsFinite() {
			return nil, false
		}
		deg := 0
		if !isOne(rest) {
			for _, f := range Factors(rest) {
				d, ok := monomialDegree(f, x)
				if !ok {
					if val, closed := f.Eval(); closed && val.IsReal() && val.IsFinite() {
						coeff = numMul(coeff, val)
						continue
					}
					return nil, false
				}
				deg += d
			}
		}
		for len(p) <= deg {
			p = append(p, 0)
		}
		p[deg] += coeff.re
	}
	return p.trim(), true
}

func monomialDegree(f Expr, x string) (int, bool) {
	switch v := f.(type) {
	case *Sym:
		return 1, v.name == x
	case *Pow:
		if s, ok := v.base.(*Sym); ok && s.name == x {
			if n, ok := v.exp.(*Num); ok && n.IsInteger() && n.re > 0 {
				return int(n.re), true
			}
		}
	}
	return 0, false
}

func (p poly) trim() poly {
	n := len(p)
	for n > 0 && math.Abs(p[n-1]) < epsilon {
		n--
	}
	out := make(poly, n)
	for i := 0; i < n; i++ {
		out[i] = snapFloat(p[i])
	}
	return out
}

func (p poly) degree() int {
	if len(p) == 0 {
		return -1
	}
	return len(p) - 1
}

func (p poly) lead() float64 {
	if len(p) == 0 {
		return 0
	}
	return p[len(p)-1]
}

func (p poly) isZero() bool { return len(p) == 0 }

func (p poly) eval(v float64) float64 {
	acc := 0.0
	for i := len(p) - 1; i >= 0; i-- {
		acc = acc*v + p[i]
	}
	return acc
}

func (p poly) expr(x string) Expr {
	terms := make([]Expr, 0, len(p))
	for i, c := range p {
		if c == 0 {
			continue
		}
		switch i {
		case 0:
			terms = append(terms, NFloat(c))
		case 1:
			terms = append(terms, MulOf(NFloat(c), S(x)))
		default:
			terms = append(terms, MulOf(NFloat(c), PowOf(S(x), N(int64(i)))))
		}
	}
	return AddOf(terms...)
}

func (p poly) scale(c float64) poly {
	out := make(poly, len(p))
	for i, v := range p {
		out[i] = v * c
	}
	return out.trim()
}

func polyMul(a, b poly) poly {
	if a.isZero() || b.isZero() {
		return nil
	}
	out := make(poly, len(a)+len(b)-1)
	for i, x := range a {
		for j, y := range b {
			out[i+j] += x * y
		}
	}
	return out.trim()
}

// polyDivMod is polynomial long division: a = q*b + r, deg r < deg b.
func polyDivMod(a, b poly) (q, r poly) {
	if b.isZero() {
		return nil, a
	}
	r = append(poly(nil), a...)
	if a.degree() < b.degree() {
		return nil, r.trim()
	}
	q = make(poly, a.degree()-b.degree()+1)
	for r.degree() >= b.degree() && !r.isZero() {
		shift := r.degree() - b.degree()
		c := r.lead() / b.lead()
		q[shift] = c
		for i, v := range b {
			r[i+shift] -= c * v
		}
		r = r[:len(r)-1].trim()
	}
	return q.trim(), r
}

// polyGCD is the monic greatest common divisor of a and b.
func polyGCD(a, b poly) poly {
	for !b.isZero() {
		_, r := polyDivMod(a, b)
		a, b = b, r
	}
	if a.isZero() {
		return a
	}
	return a.scale(1 / a.lead())
}

// polyPow raises p to a non-negative integer power.
func polyPow(p poly, k int) poly {
	out := poly{1}
	for i := 0; i < k; i++ {
		out = polyMul(out, p)
	}
	return out
}
