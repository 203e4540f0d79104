package symcalc

import (
	"math"
	"sort"
	"strings"
)

// ============================================================
// Core Interface
// ============================================================

// Expr is an immutable expression node. Rewrites always build new nodes.
//
// Eval reports the numeric value of a closed expression (one without free
// symbols); the value may be Inf, NegInf or Undefined.
type Expr interface {
	Simplify() Expr
	String() string
	LaTeX() string
	Sub(varName string, value Expr) Expr
	Eval() (*Num, bool)
	Equal(other Expr) bool
	exprType() string
	toJSON() map[string]interface{}
}

// ============================================================
// Sym: symbolic variable
// ============================================================

type Sym struct{ name string }

func S(name string) *Sym             { return &Sym{name: name} }
func (s *Sym) Simplify() Expr        { return s }
func (s *Sym) String() string        { return s.name }
func (s *Sym) LaTeX() string         { return s.name }
func (s *Sym) Eval() (*Num, bool)    { return nil, false }
func (s *Sym) Equal(other Expr) bool { o, ok := other.(*Sym); return ok && s.name == o.name }
func (s *Sym) exprType() string      { return "sym" }
func (s *Sym) Name() string          { return s.name }
func (s *Sym) toJSON() map[string]interface{} {
	return map[string]interface{}{"type": "sym", "name": s.name}
}
func (s *Sym) Sub(varName string, value Expr) Expr {
	if s.name == varName {
		return value
	}
	return s
}

// ============================================================
// Const: named constant bound to a value
// ============================================================

type Const struct {
	name  string
	latex string
	value float64
}

var (
	E  = &Const{name: "e", latex: "e", value: math.E}
	Pi = &Const{name: "pi", latex: "\\pi", value: math.Pi}
)

// ConstNamed resolves "e" and "pi".
func ConstNamed(name string) (*Const, bool) {
	switch name {
	case E.name:
		return E, true
	case Pi.name:
		return Pi, true
	}
	return nil, false
}

func (c *Const) Simplify() Expr        { return c }
func (c *Const) String() string        { return c.name }
func (c *Const) LaTeX() string         { return c.latex }
func (c *Const) Sub(string, Expr) Expr { return c }
func (c *Const) Eval() (*Num, bool)    { return NFloat(c.value), true }
func (c *Const) Equal(other Expr) bool { o, ok := other.(*Const); return ok && c.name == o.name }
func (c *Const) exprType() string      { return "const" }
func (c *Const) Name() string          { return c.name }
func (c *Const) Value() float64        { return c.value }
func (c *Const) toJSON() map[string]interface{} {
	return map[string]interface{}{"type": "const", "name": c.name}
}

func isE(e Expr) bool {
	c, ok := e.(*Const)
	return ok && c.name == E.name
}

// ============================================================
// Add: sum of terms
// ============================================================

type Add struct {
	terms      []Expr
	simplified bool
}

func AddOf(terms ...Expr) Expr { return (&Add{terms: terms}).Simplify() }

// Simplify flattens nested sums, folds numbers and collects like terms by
// their non-numeric part. Terms are ordered by descending degree, then by
// their printed form, with the numeric constant last.
func (a *Add) Simplify() Expr {
	if a.simplified {
		return a
	}
	flat := make([]Expr, 0, len(a.terms))
	for _, t := range a.terms {
		s := t.Simplify()
		if inner, ok := s.(*Add); ok {
			flat = append(flat, inner.terms...)
		} else {
			flat = append(flat, s)
		}
	}
	type like struct {
		coeff  *Num
		rest   Expr
		key    string
		degree float64
	}
	numAccum := N(0)
	likes := map[string]*like{}
	order := []*like{}
	for _, t := range flat {
		if v, ok := t.(*Num); ok {
			numAccum = numAdd(numAccum, v)
			continue
		}
		coeff, rest := extractCoefficient(t)
		key := rest.String()
		if l, seen := likes[key]; seen {
			l.coeff = numAdd(l.coeff, coeff)
			continue
		}
		l := &like{coeff: coeff, rest: rest, key: key, degree: termDegree(rest)}
		likes[key] = l
		order = append(order, l)
	}
	if numAccum.IsUndefined() {
		return Undefined()
	}
	sort.SliceStable(order, func(i, j int) bool {
		if order[i].degree != order[j].degree {
			return order[i].degree > order[j].degree
		}
		return order[i].key < order[j].key
	})
	result := make([]Expr, 0, len(order)+1)
	for _, l := range order {
		if l.coeff.IsUndefined() {
			return Undefined()
		}
		if l.coeff.IsZero() {
			continue
		}
		result = append(result, scaleTerm(l.coeff, l.rest))
	}
	if !numAccum.IsZero() {
		result = append(result, numAccum)
	}
	switch len(result) {
	case 0:
		return N(0)
	case 1:
		return result[0]
	}
	return &Add{terms: result, simplified: true}
}

// scaleTerm rebuilds coeff*rest in canonical group order without
// re-simplifying rest.
func scaleTerm(coeff *Num, rest Expr) Expr {
	if coeff.IsOne() {
		return rest
	}
	if m, ok := rest.(*Mul); ok {
		return &Mul{factors: append([]Expr{coeff}, m.factors...), simplified: true}
	}
	return &Mul{factors: []Expr{coeff, rest}, simplified: true}
}

// termDegree is the total numeric degree of the symbol factors of a term.
func termDegree(e Expr) float64 {
	switch v := e.(type) {
	case *Sym:
		return 1
	case *Pow:
		if _, ok := v.base.(*Sym); ok {
			if n, ok := v.exp.(*Num); ok && n.IsReal() && n.IsFinite() {
				return n.re
			}
		}
	case *Mul:
		d := 0.0
		for _, f := range v.factors {
			d += termDegree(f)
		}
		return d
	}
	return 0
}

func (a *Add) String() string {
	if len(a.terms) == 0 {
		return "0"
	}
	var sb strings.Builder
	for i, t := range a.terms {
		s := t.String()
		switch {
		case i == 0:
			sb.WriteString(s)
		case strings.HasPrefix(s, "-"):
			sb.WriteString(" - " + s[1:])
		default:
			sb.WriteString(" + " + s)
		}
	}
	return sb.String()
}

func (a *Add) LaTeX() string {
	var sb strings.Builder
	for i, t := range a.terms {
		s := t.LaTeX()
		switch {
		case i == 0:
			sb.WriteString(s)
		case strings.HasPrefix(s, "-"):
			sb.WriteString(" - " + s[1:])
		default:
			sb.WriteString(" + " + s)
		}
	}
	return sb.String()
}

func (a *Add) Sub(varName string, value Expr) Expr {
	newTerms := make([]Expr, len(a.terms))
	for i, t := range a.terms {
		newTerms[i] = t.Sub(varName, value)
	}
	return AddOf(newTerms...)
}

func (a *Add) Eval() (*Num, bool) {
	acc := N(0)
	for _, t := range a.terms {
		v, ok := t.Eval()
		if !ok {
			return nil, false
		}
		acc = numAdd(acc, v)
	}
	return acc, true
}

func (a *Add) Equal(other Expr) bool {
	o, ok := other.(*Add)
	if !ok || len(a.terms) != len(o.terms) {
		return false
	}
	for i := range a.terms {
		if !a.terms[i].Equal(o.terms[i]) {
			return false
		}
	}
	return true
}

func (a *Add) exprType() string { return "add" }
func (a *Add) toJSON() map[string]interface{} {
	ts := make([]map[string]interface{}, len(a.terms))
	for i, t := range a.terms {
		ts[i] = t.toJSON()
	}
	return map[string]interface{}{"type": "add", "terms": ts}
}
func (a *Add) Terms() []Expr { return a.terms }

// ============================================================
// Mul: product of factors
// ============================================================

type Mul struct {
	factors    []Expr
	simplified bool
}

func MulOf(factors ...Expr) Expr { return (&Mul{factors: factors}).Simplify() }

// Simplify flattens nested products, folds the numeric coefficient to the
// front and merges like bases by adding exponents.
func (m *Mul) Simplify() Expr {
	if m.simplified {
		return m
	}
	flat := make([]Expr, 0, len(m.factors))
	for _, f := range m.factors {
		s := f.Simplify()
		if inner, ok := s.(*Mul); ok {
			flat = append(flat, inner.factors...)
		} else {
			flat = append(flat, s)
		}
	}
	type group struct {
		base Expr
		exps []Expr
	}
	coeff := N(1)
	groups := map[string]*group{}
	order := []*group{}
	for _, f := range flat {
		if v, ok := f.(*Num); ok {
			coeff = numMul(coeff, v)
			continue
		}
		base, exp := asPower(f)
		key := base.String()
		if g, seen := groups[key]; seen {
			g.exps = append(g.exps, exp)
			continue
		}
		g := &group{base: base, exps: []Expr{exp}}
		groups[key] = g
		order = append(order, g)
	}
	if coeff.IsUndefined() {
		return Undefined()
	}
	if coeff.IsZero() {
		return N(0)
	}

	others := make([]Expr, 0, len(order))
	for _, g := range order {
		exp := g.exps[0]
		if len(g.exps) > 1 {
			exp = AddOf(g.exps...)
		}
		p := simplifyPow(g.base, exp)
		switch pv := p.(type) {
		case *Num:
			coeff = numMul(coeff, pv)
		case *Mul:
			for _, f := range pv.factors {
				if n, ok := f.(*Num); ok {
					coeff = numMul(coeff, n)
				} else {
					others = append(others, f)
				}
			}
		default:
			others = append(others, p)
		}
	}
	if coeff.IsUndefined() {
		return Undefined()
	}
	if coeff.IsZero() {
		return N(0)
	}
	if len(others) == 0 {
		return coeff
	}

	// Precompute sort keys to avoid repeated String() calls in comparator.
	type keyed struct {
		e   Expr
		key string
	}
	ks := make([]keyed, len(others))
	for i, e := range others {
		ks[i] = keyed{e: e, key: e.String()}
	}
	sort.SliceStable(ks, func(i, j int) bool { return ks[i].key < ks[j].key })
	sorted := make([]Expr, len(ks))
	for i := range ks {
		sorted[i] = ks[i].e
	}

	if coeff.IsOne() {
		if len(sorted) == 1 {
			return sorted[0]
		}
		return &Mul{factors: sorted, simplified: true}
	}
	return &Mul{factors: append([]Expr{coeff}, sorted...), simplified: true}
}

// asPower views e as base^exp, with exp 1 for non-powers.
func asPower(e Expr) (Expr, Expr) {
	if p, ok := e.(*Pow); ok {
		return p.base, p.exp
	}
	return e, N(1)
}

func (m *Mul) String() string {
	if len(m.factors) == 0 {
		return "1"
	}
	factors := m.factors
	prefix := ""
	if n, ok := factors[0].(*Num); ok && n.IsNegOne() && len(factors) > 1 {
		prefix = "-"
		factors = factors[1:]
	}
	parts := make([]string, len(factors))
	for i, f := range factors {
		if _, isAdd := f.(*Add); isAdd {
			parts[i] = "(" + f.String() + ")"
		} else {
			parts[i] = f.String()
		}
	}
	return prefix + strings.Join(parts, "*")
}

func (m *Mul) LaTeX() string {
	num, den := splitFactors(m)
	if len(den) > 0 {
		sign := ""
		if len(num) > 0 {
			if n, ok := num[0].(*Num); ok && n.IsNegative() {
				sign = "-"
				num[0] = numNeg(n)
			}
		}
		return sign + "\\frac{" + latexProduct(num) + "}{" + latexProduct(den) + "}"
	}
	factors := m.factors
	prefix := ""
	if n, ok := factors[0].(*Num); ok && n.IsNegOne() && len(factors) > 1 {
		prefix = "-"
		factors = factors[1:]
	}
	return prefix + latexProduct(factors)
}

func latexProduct(factors []Expr) string {
	if len(factors) == 0 {
		return "1"
	}
	parts := make([]string, 0, len(factors))
	for _, f := range factors {
		if n, ok := f.(*Num); ok && n.IsOne() && len(factors) > 1 {
			continue
		}
		if _, isAdd := f.(*Add); isAdd && len(factors) > 1 {
			parts = append(parts, "\\left("+f.LaTeX()+"\\right)")
		} else {
			parts = append(parts, f.LaTeX())
		}
	}
	return strings.Join(parts, " ")
}

func (m *Mul) Sub(varName string, value Expr) Expr {
	newFactors := make([]Expr, len(m.factors))
	for i, f := range m.factors {
		newFactors[i] = f.Sub(varName, value)
	}
	return MulOf(newFactors...)
}

func (m *Mul) Eval() (*Num, bool) {
	acc := N(1)
	for _, f := range m.factors {
		v, ok := f.Eval()
		if !ok {
			return nil, false
		}
		acc = numMul(acc, v)
	}
	return acc, true
}

func (m *Mul) Equal(other Expr) bool {
	o, ok := other.(*Mul)
	if !ok || len(m.factors) != len(o.factors) {
		return false
	}
	for i := range m.factors {
		if !m.factors[i].Equal(o.factors[i]) {
			return false
		}
	}
	return true
}

func (m *Mul) exprType() string { return "mul" }
func (m *Mul) toJSON() map[string]interface{} {
	fs := make([]map[string]interface{}, len(m.factors))
	for i, f := range m.factors {
		fs[i] = f.toJSON()
	}
	return map[string]interface{}{"type": "mul", "factors": fs}
}
func (m *Mul) Factors() []Expr { return m.factors }

// ============================================================
// Pow: base^exponent
// ============================================================

type Pow struct {
	base, exp  Expr
	simplified bool
}

func PowOf(base, exp Expr) Expr { return (&Pow{base: base, exp: exp}).Simplify() }
func ExpOf(arg Expr) Expr       { return PowOf(E, arg) }
func SqrtOf(arg Expr) Expr      { return PowOf(arg, F(1, 2)) }

func (p *Pow) Simplify() Expr {
	if p.simplified {
		return p
	}
	return simplifyPow(p.base.Simplify(), p.exp.Simplify())
}

func simplifyPow(base, exp Expr) Expr {
	en, expIsNum := exp.(*Num)
	bn, baseIsNum := base.(*Num)
	if (expIsNum && en.IsUndefined()) || (baseIsNum && bn.IsUndefined()) {
		return Undefined()
	}
	if expIsNum && en.IsZero() {
		if baseIsNum && bn.IsZero() {
			return Undefined()
		}
		return N(1)
	}
	if expIsNum && en.IsOne() {
		return base
	}
	if baseIsNum && bn.IsZero() {
		if expIsNum && en.IsReal() {
			if en.IsNegative() {
				return Undefined()
			}
			return N(0)
		}
		return &Pow{base: base, exp: exp, simplified: true}
	}
	if baseIsNum && bn.IsOne() {
		return N(1)
	}
	if baseIsNum && expIsNum {
		if v, ok := exactPow(bn, en); ok {
			return v
		}
		return &Pow{base: base, exp: exp, simplified: true}
	}
	if isE(base) {
		if f, ok := exp.(*Func); ok && f.kind == FuncLn {
			return f.arg
		}
		if m, ok := exp.(*Mul); ok && len(m.factors) == 2 {
			if c, ok := m.factors[0].(*Num); ok {
				if f, ok := m.factors[1].(*Func); ok && f.kind == FuncLn {
					return PowOf(f.arg, c)
				}
			}
		}
	}
	if inner, ok := base.(*Pow); ok {
		return PowOf(inner.base, MulOf(inner.exp, exp))
	}
	if m, ok := base.(*Mul); ok && expIsNum && distributable(m, en) {
		fs := make([]Expr, len(m.factors))
		for i, f := range m.factors {
			fs[i] = PowOf(f, en)
		}
		return MulOf(fs...)
	}
	return &Pow{base: base, exp: exp, simplified: true}
}

// exactPow folds b^e when the result is exact: integer exponents, or
// fractional exponents of positive bases whose result is a small fraction.
func exactPow(b, e *Num) (*Num, bool) {
	if !e.IsReal() {
		return nil, false
	}
	if b.IsInf() {
		return numPow(b, e), true
	}
	if e.IsInteger() && math.Abs(e.re) <= 64 {
		return numPow(b, e), true
	}
	if b.IsPositive() {
		r := numPow(b, e)
		if _, _, ok := ratioOf(r.re, 100); ok && r.IsReal() {
			return r, true
		}
	}
	return nil, false
}

// distributable reports whether (a*b)^e == a^e * b^e holds for every value
// of the symbols in m.
func distributable(m *Mul, e *Num) bool {
	if e.IsInteger() {
		return true
	}
	for _, f := range m.factors {
		n, ok := f.(*Num)
		if !ok {
			if c, isConst := f.(*Const); isConst && c.value > 0 {
				continue
			}
			return false
		}
		if !n.IsPositive() {
			return false
		}
	}
	return true
}

func (p *Pow) String() string {
	baseStr := p.base.String()
	if needsPowParens(p.base, true) {
		baseStr = "(" + baseStr + ")"
	}
	expStr := p.exp.String()
	if needsPowParens(p.exp, false) {
		expStr = "(" + expStr + ")"
	}
	return baseStr + "^" + expStr
}

func needsPowParens(e Expr, isBase bool) bool {
	switch v := e.(type) {
	case *Add, *Mul, *Pow:
		return true
	case *Num:
		return !v.IsInteger() || v.IsNegative() || (isBase && !v.IsReal())
	}
	return false
}

func (p *Pow) LaTeX() string {
	if en, ok := p.exp.(*Num); ok && en.IsNegative() {
		return "\\frac{1}{" + PowOf(p.base, numNeg(en)).LaTeX() + "}"
	}
	if en, ok := p.exp.(*Num); ok && en.re == 0.5 && en.IsReal() {
		return "\\sqrt{" + p.base.LaTeX() + "}"
	}
	baseStr := p.base.LaTeX()
	if needsPowParens(p.base, true) {
		baseStr = "\\left(" + baseStr + "\\right)"
	}
	if _, ok := p.base.(*Func); ok {
		baseStr = "\\left(" + baseStr + "\\right)"
	}
	return baseStr + "^{" + p.exp.LaTeX() + "}"
}

func (p *Pow) Sub(varName string, value Expr) Expr {
	return PowOf(p.base.Sub(varName, value), p.exp.Sub(varName, value))
}

func (p *Pow) Eval() (*Num, bool) {
	b, ok := p.base.Eval()
	if !ok {
		return nil, false
	}
	e, ok := p.exp.Eval()
	if !ok {
		return nil, false
	}
	return numPow(b, e), true
}

func (p *Pow) Equal(other Expr) bool {
	o, ok := other.(*Pow)
	return ok && p.base.Equal(o.base) && p.exp.Equal(o.exp)
}

func (p *Pow) exprType() string { return "pow" }
func (p *Pow) toJSON() map[string]interface{} {
	return map[string]interface{}{"type": "pow", "base": p.base.toJSON(), "exp": p.exp.toJSON()}
}
func (p *Pow) Base() Expr    { return p.base }
func (p *Pow) ExpExpr() Expr { return p.exp }

func isNumEqual(e Expr, v int64) bool {
	n, ok := e.(*Num)
	return ok && n.Equal(N(v))
}
