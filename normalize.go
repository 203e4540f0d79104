package symcalc

import (
	"sort"
)

// ============================================================
// Top-level convenience functions
// ============================================================

func Simplify(e Expr) Expr { return e.Simplify() }
func String(e Expr) string { return e.String() }
func LaTeX(e Expr) string  { return e.LaTeX() }

func Sub(expr Expr, varName string, value Expr) Expr {
	return expr.Sub(varName, value).Simplify()
}

func neg(e Expr) Expr         { return MulOf(N(-1), e) }
func subtract(a, b Expr) Expr { return AddOf(a, neg(b)) }
func recip(e Expr) Expr       { return PowOf(e, N(-1)) }
func div(a, b Expr) Expr      { return MulOf(a, recip(b)) }

// IsEqualTo compares a and b after normalization, then after expansion, and
// finally checks whether their expanded difference vanishes.
func IsEqualTo(a, b Expr) bool {
	sa, sb := a.Simplify(), b.Simplify()
	if sa.Equal(sb) {
		return true
	}
	ea, eb := Expand(sa), Expand(sb)
	if ea.Equal(eb) {
		return true
	}
	return isZero(Expand(subtract(ea, eb)))
}

func isZero(e Expr) bool {
	n, ok := e.(*Num)
	return ok && n.IsZero()
}

func isOne(e Expr) bool {
	n, ok := e.(*Num)
	return ok && n.IsOne()
}

func isUndefined(e Expr) bool {
	n, ok := e.(*Num)
	return ok && n.IsUndefined()
}

// Terms views e as a sum.
func Terms(e Expr) []Expr {
	if a, ok := e.(*Add); ok {
		return a.terms
	}
	return []Expr{e}
}

// Factors views e as a product.
func Factors(e Expr) []Expr {
	if m, ok := e.(*Mul); ok {
		return m.factors
	}
	return []Expr{e}
}

func extractCoefficient(e Expr) (*Num, Expr) {
	if n, ok := e.(*Num); ok {
		return n, N(1)
	}
	if m, ok := e.(*Mul); ok && len(m.factors) >= 2 {
		if coeff, ok2 := m.factors[0].(*Num); ok2 {
			rest := m.factors[1:]
			if len(rest) == 1 {
				return coeff, rest[0]
			}
			return coeff, &Mul{factors: rest, simplified: true}
		}
	}
	return N(1), e
}

// SplitFraction separates e into numerator and denominator. Factors with a
// negative numeric exponent, and exponentials whose exponent carries a
// negative coefficient, move to the denominator.
func SplitFraction(e Expr) (num, den Expr) {
	e = e.Simplify()
	var ns, ds []Expr
	if m, ok := e.(*Mul); ok {
		ns, ds = splitFactors(m)
	} else {
		ns, ds = splitFactors(&Mul{factors: []Expr{e}})
	}
	num, den = N(1), N(1)
	if len(ns) > 0 {
		num = MulOf(ns...)
	}
	if len(ds) > 0 {
		den = MulOf(ds...)
	}
	return num, den
}

// splitFactors returns fresh slices; callers may modify them.
func splitFactors(m *Mul) (num, den []Expr) {
	for _, f := range m.factors {
		p, ok := f.(*Pow)
		if !ok {
			num = append(num, f)
			continue
		}
		if en, ok := p.exp.(*Num); ok {
			if en.IsNegative() {
				den = append(den, PowOf(p.base, numNeg(en)))
			} else {
				num = append(num, f)
			}
			continue
		}
		if inner, isNeg := negated(p.exp); isNeg && isE(p.base) {
			den = append(den, PowOf(p.base, inner))
			continue
		}
		num = append(num, f)
	}
	return num, den
}

// GCF returns the greatest common factor of groups and each group divided
// by it. Integer coefficients contribute their gcd; shared bases contribute
// their smallest positive numeric exponent.
func GCF(groups []Expr) (Expr, []Expr) {
	if len(groups) == 0 {
		return N(1), nil
	}
	var coeffGCD int64
	allInt, allNeg := true, true
	var common []gcfUnit
	for i, g := range groups {
		c, _ := extractCoefficient(g)
		if !c.IsInteger() || c.IsZero() {
			allInt = false
		} else {
			coeffGCD = gcdInt(coeffGCD, c.Int64())
		}
		if !c.IsNegative() {
			allNeg = false
		}
		units := gcfUnits(g)
		if i == 0 {
			common = units
			continue
		}
		byKey := map[string]gcfUnit{}
		for _, u := range units {
			byKey[u.key] = u
		}
		kept := make([]gcfUnit, 0, len(common))
		for _, u := range common {
			other, ok := byKey[u.key]
			if !ok {
				continue
			}
			if numCmp(other.exp, u.exp) < 0 {
				u.exp = other.exp
			}
			kept = append(kept, u)
		}
		common = kept
	}
	factors := []Expr{}
	if allInt && coeffGCD > 1 {
		factors = append(factors, N(coeffGCD))
	}
	if allNeg {
		factors = append(factors, N(-1))
	}
	for _, u := range common {
		factors = append(factors, PowOf(u.base, u.exp))
	}
	gcf := MulOf(factors...)
	rest := make([]Expr, len(groups))
	for i, g := range groups {
		rest[i] = div(g, gcf)
	}
	return gcf, rest
}

type gcfUnit struct {
	base Expr
	exp  *Num
	key  string
}

// gcfUnits lists the non-numeric factors of g as base^exp with a positive
// numeric exponent; other factors count as their own base.
func gcfUnits(g Expr) []gcfUnit {
	var units []gcfUnit
	for _, f := range Factors(g) {
		if _, isNum := f.(*Num); isNum {
			continue
		}
		b, e := asPower(f)
		en, ok := e.(*Num)
		if !ok || !en.IsPositive() {
			b, en = f, N(1)
		}
		units = append(units, gcfUnit{base: b, exp: en, key: b.String()})
	}
	return units
}

// FactorGCF pulls the greatest common factor out of a sum:
// x*e^x - e^x becomes e^x*(x - 1).
func FactorGCF(e Expr) Expr {
	a, ok := e.Simplify().(*Add)
	if !ok {
		return e.Simplify()
	}
	gcf, rest := GCF(a.terms)
	if isOne(gcf) {
		return a
	}
	return MulOf(gcf, AddOf(rest...))
}

// ============================================================
// Expansion, Collect, Cancel
// ============================================================

func Expand(e Expr) Expr { return expandExpr(e.Simplify()).Simplify() }

// Canonicalize expands and fully simplifies an expression.
func Canonicalize(e Expr) Expr { return Expand(e) }

func expandExpr(e Expr) Expr {
	switch v := e.(type) {
	case *Mul:
		result := Expr(N(1))
		for _, f := range v.factors {
			result = distribute(result, expandExpr(f))
		}
		return result
	case *Add:
		newTerms := make([]Expr, len(v.terms))
		for i, t := range v.terms {
			newTerms[i] = expandExpr(t)
		}
		return AddOf(newTerms...)
	case *Pow:
		base := expandExpr(v.base)
		if n, ok := v.exp.(*Num); ok && n.IsInteger() {
			if exp := n.Int64(); exp >= 2 && exp <= 10 {
				if _, isAdd := base.(*Add); isAdd {
					result := base
					for i := int64(1); i < exp; i++ {
						result = distribute(result, base)
					}
					return result
				}
			}
		}
		return PowOf(base, v.exp)
	}
	return e
}

// distribute multiplies two expanded expressions term by term.
func distribute(a, b Expr) Expr {
	ta, tb := Terms(a), Terms(b)
	if len(ta) == 1 && len(tb) == 1 {
		return MulOf(a, b)
	}
	out := make([]Expr, 0, len(ta)*len(tb))
	for _, x := range ta {
		for _, y := range tb {
			out = append(out, MulOf(x, y))
		}
	}
	return AddOf(out...)
}

// Collect groups terms by powers of varName.
func Collect(expr Expr, varName string) Expr {
	coeffs := PolyCoeffs(Expand(expr), varName)
	if len(coeffs) == 0 {
		return N(0)
	}
	degrees := make([]int, 0, len(coeffs))
	for d := range coeffs {
		degrees = append(degrees, d)
	}
	sort.Sort(sort.Reverse(sort.IntSlice(degrees)))
	terms := make([]Expr, 0, len(degrees))
	for _, d := range degrees {
		c := coeffs[d]
		if isZero(c) {
			continue
		}
		switch d {
		case 0:
			terms = append(terms, c)
		case 1:
			terms = append(terms, MulOf(c, S(varName)))
		default:
			terms = append(terms, MulOf(c, PowOf(S(varName), N(int64(d)))))
		}
	}
	return AddOf(terms...)
}

// Cancel simplifies num/denom, dividing out common polynomial factors when
// both are polynomials in a single symbol. A zero denominator is Undefined.
func Cancel(num, denom Expr) Expr {
	num = num.Simplify()
	denom = denom.Simplify()
	if dn, ok := denom.Eval(); ok && dn.IsZero() {
		return Undefined()
	}
	if nn, ok := num.Eval(); ok {
		if dn, ok2 := denom.Eval(); ok2 {
			return numDiv(nn, dn)
		}
	}
	if isOne(denom) {
		return num
	}
	numCoeff, numRest := extractCoefficient(num)
	denCoeff, denRest := extractCoefficient(denom)
	if numRest.Equal(denRest) {
		return numDiv(numCoeff, denCoeff)
	}
	syms := FreeSymbols(AddOf(num, denom))
	if len(syms) == 1 {
		for x := range syms {
			np, ok1 := polyOf(num, x)
			dp, ok2 := polyOf(denom, x)
			if ok1 && ok2 {
				g := polyGCD(np, dp)
				if g.degree() > 0 {
					nq, _ := polyDivMod(np, g)
					dq, _ := polyDivMod(dp, g)
					return div(nq.expr(x), dq.expr(x))
				}
			}
		}
	}
	return div(num, denom)
}

// ============================================================
// Free Symbols
// ============================================================

// FreeSymbols lists the symbols e depends on. Variables bound by a definite
// integral, an evaluated derivative or a limit are excluded.
func FreeSymbols(e Expr) map[string]struct{} {
	result := map[string]struct{}{}
	collectSymbols(e, result)
	return result
}

func collectSymbols(e Expr, out map[string]struct{}) {
	switch v := e.(type) {
	case *Sym:
		out[v.name] = struct{}{}
	case *Add:
		for _, t := range v.terms {
			collectSymbols(t, out)
		}
	case *Mul:
		for _, f := range v.factors {
			collectSymbols(f, out)
		}
	case *Pow:
		collectSymbols(v.base, out)
		collectSymbols(v.exp, out)
	case *Func:
		collectSymbols(v.arg, out)
		if v.base != nil {
			collectSymbols(v.base, out)
		}
	case *Vector:
		for _, el := range v.elems {
			collectSymbols(el, out)
		}
	case *Derivative:
		collectBound(v.inner, v.varName, v.at != nil, out)
		if v.at != nil {
			collectSymbols(v.at, out)
		}
	case *Integral:
		collectBound(v.inner, v.varName, v.IsDefinite(), out)
		if v.IsDefinite() {
			collectSymbols(v.lower, out)
			collectSymbols(v.upper, out)
		}
	case *LimitExpr:
		collectBound(v.inner, v.varName, true, out)
		collectSymbols(v.point, out)
	}
}

func collectBound(inner Expr, varName string, bound bool, out map[string]struct{}) {
	if !bound {
		collectSymbols(inner, out)
		return
	}
	innerSyms := FreeSymbols(inner)
	delete(innerSyms, varName)
	for s := range innerSyms {
		out[s] = struct{}{}
	}
}

// DependsOn reports whether varName occurs free in e.
func DependsOn(e Expr, varName string) bool {
	switch v := e.(type) {
	case *Num, *Const:
		return false
	case *Sym:
		return v.name == varName
	case *Add:
		for _, t := range v.terms {
			if DependsOn(t, varName) {
				return true
			}
		}
		return false
	case *Mul:
		for _, f := range v.factors {
			if DependsOn(f, varName) {
				return true
			}
		}
		return false
	case *Pow:
		return DependsOn(v.base, varName) || DependsOn(v.exp, varName)
	case *Func:
		return DependsOn(v.arg, varName) || (v.base != nil && DependsOn(v.base, varName))
	}
	_, ok := FreeSymbols(e)[varName]
	return ok
}

// exprSize counts the nodes of e.
func exprSize(e Expr) int {
	switch v := e.(type) {
	case *Add:
		n := 1
		for _, t := range v.terms {
			n += exprSize(t)
		}
		return n
	case *Mul:
		n := 1
		for _, f := range v.factors {
			n += exprSize(f)
		}
		return n
	case *Pow:
		return 1 + exprSize(v.base) + exprSize(v.exp)
	case *Func:
		n := 1 + exprSize(v.arg)
		if v.base != nil {
			n += exprSize(v.base)
		}
		return n
	}
	return 1
}

// containsNode reports whether any node of e satisfies pred.
func containsNode(e Expr, pred func(Expr) bool) bool {
	if pred(e) {
		return true
	}
	switch v := e.(type) {
	case *Add:
		for _, t := range v.terms {
			if containsNode(t, pred) {
				return true
			}
		}
	case *Mul:
		for _, f := range v.factors {
			if containsNode(f, pred) {
				return true
			}
		}
	case *Pow:
		return containsNode(v.base, pred) || containsNode(v.exp, pred)
	case *Func:
		return containsNode(v.arg, pred) || (v.base != nil && containsNode(v.base, pred))
	case *Vector:
		for _, el := range v.elems {
			if containsNode(el, pred) {
				return true
			}
		}
	}
	return false
}

// replaceNode substitutes every occurrence of target (up to Equal) in e.
func replaceNode(e, target, with Expr) Expr {
	return mapExpr(e, func(n Expr) (Expr, bool) {
		if n.Equal(target) {
			return with, true
		}
		return nil, false
	})
}

// mapExpr rebuilds e top-down, replacing each node for which fn reports a
// replacement and recursing into the others.
func mapExpr(e Expr, fn func(Expr) (Expr, bool)) Expr {
	if r, ok := fn(e); ok {
		return r
	}
	switch v := e.(type) {
	case *Add:
		ts := make([]Expr, len(v.terms))
		for i, t := range v.terms {
			ts[i] = mapExpr(t, fn)
		}
		return AddOf(ts...)
	case *Mul:
		fs := make([]Expr, len(v.factors))
		for i, f := range v.factors {
			fs[i] = mapExpr(f, fn)
		}
		return MulOf(fs...)
	case *Pow:
		return PowOf(mapExpr(v.base, fn), mapExpr(v.exp, fn))
	case *Func:
		var base Expr
		if v.base != nil {
			base = mapExpr(v.base, fn)
		}
		return (&Func{kind: v.kind, arg: mapExpr(v.arg, fn), base: base}).Simplify()
	}
	return e
}
