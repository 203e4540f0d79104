package symcalc

import (
	"fmt"
	"strings"
)

// ============================================================
// Derivative: unevaluated d^n/dx^n node
// ============================================================

// Derivative is an unevaluated derivative. fn names the function it stands
// for (f in f'(x)); at is an optional evaluation point for the variable.
type Derivative struct {
	inner   Expr
	varName string
	order   int
	fn      string
	at      Expr
}

func DerivativeOf(inner Expr, varName string, order int) *Derivative {
	return &Derivative{inner: inner, varName: varName, order: order}
}

// WithFunction names the function the node stands for.
func (d *Derivative) WithFunction(name string) *Derivative {
	c := *d
	c.fn = name
	return &c
}

// At binds the variable to an evaluation point.
func (d *Derivative) At(point Expr) *Derivative {
	c := *d
	c.at = point
	return &c
}

func (d *Derivative) Inner() Expr      { return d.inner }
func (d *Derivative) Var() string      { return d.varName }
func (d *Derivative) Order() int       { return d.order }
func (d *Derivative) Function() string { return d.fn }
func (d *Derivative) Point() Expr      { return d.at }

func (d *Derivative) Simplify() Expr {
	c := *d
	c.inner = d.inner.Simplify()
	if d.at != nil {
		c.at = d.at.Simplify()
	}
	return &c
}

func (d *Derivative) String() string {
	var s string
	if d.fn != "" {
		s = d.fn + strings.Repeat("'", d.order) + "(" + d.varName + ")"
	} else if d.order == 1 {
		s = fmt.Sprintf("d/d%s[%s]", d.varName, d.inner.String())
	} else {
		s = fmt.Sprintf("d^%d/d%s^%d[%s]", d.order, d.varName, d.order, d.inner.String())
	}
	if d.at != nil {
		s += "|" + d.varName + "=" + d.at.String()
	}
	return s
}

func (d *Derivative) LaTeX() string {
	var s string
	switch {
	case d.fn != "":
		s = d.fn + strings.Repeat("'", d.order) + "\\left(" + d.varName + "\\right)"
	case d.order == 1:
		s = "\\frac{d}{d" + d.varName + "}\\left[" + d.inner.LaTeX() + "\\right]"
	default:
		s = fmt.Sprintf("\\frac{d^{%d}}{d%s^{%d}}\\left[%s\\right]", d.order, d.varName, d.order, d.inner.LaTeX())
	}
	if d.at != nil {
		s += "\\Big|_{" + d.varName + "=" + d.at.LaTeX() + "}"
	}
	return s
}

// Sub on the differentiation variable binds the evaluation point.
func (d *Derivative) Sub(varName string, value Expr) Expr {
	if varName == d.varName {
		if d.at != nil {
			return d
		}
		return d.At(value)
	}
	c := *d
	c.inner = d.inner.Sub(varName, value)
	if d.at != nil {
		c.at = d.at.Sub(varName, value)
	}
	return &c
}

func (d *Derivative) Eval() (*Num, bool) { return nil, false }

func (d *Derivative) Equal(other Expr) bool {
	o, ok := other.(*Derivative)
	return ok && d.varName == o.varName && d.order == o.order && d.fn == o.fn &&
		d.inner.Equal(o.inner) && optionalEqual(d.at, o.at)
}

func (d *Derivative) exprType() string { return "derivative" }
func (d *Derivative) toJSON() map[string]interface{} {
	m := map[string]interface{}{"type": "derivative", "expr": d.inner.toJSON(), "var": d.varName, "order": d.order}
	if d.fn != "" {
		m["function"] = d.fn
	}
	if d.at != nil {
		m["at"] = d.at.toJSON()
	}
	return m
}

func optionalEqual(a, b Expr) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return a.Equal(b)
}

// ============================================================
// Integral: unevaluated integral node
// ============================================================

type Integral struct {
	inner        Expr
	varName      string
	lower, upper Expr
	addConstant  bool
}

// IntegralOf is the indefinite integral; its antiderivative carries "+ C".
func IntegralOf(inner Expr, varName string) *Integral {
	return &Integral{inner: inner, varName: varName, addConstant: true}
}

func DefiniteIntegralOf(inner Expr, varName string, lower, upper Expr) *Integral {
	return &Integral{inner: inner, varName: varName, lower: lower, upper: upper}
}

// WithoutConstant drops the "+ C" from the printed antiderivative.
func (i *Integral) WithoutConstant() *Integral {
	c := *i
	c.addConstant = false
	return &c
}

func (i *Integral) Inner() Expr       { return i.inner }
func (i *Integral) Var() string       { return i.varName }
func (i *Integral) Lower() Expr       { return i.lower }
func (i *Integral) Upper() Expr       { return i.upper }
func (i *Integral) IsDefinite() bool  { return i.lower != nil && i.upper != nil }
func (i *Integral) AddConstant() bool { return i.addConstant }

func (i *Integral) Simplify() Expr {
	c := *i
	c.inner = i.inner.Simplify()
	if i.IsDefinite() {
		c.lower = i.lower.Simplify()
		c.upper = i.upper.Simplify()
	}
	return &c
}

func (i *Integral) String() string {
	if i.IsDefinite() {
		return fmt.Sprintf("integral(%s, %s, %s, %s)", i.inner, i.varName, i.lower, i.upper)
	}
	return fmt.Sprintf("integral(%s, %s)", i.inner, i.varName)
}

func (i *Integral) LaTeX() string {
	if i.IsDefinite() {
		return fmt.Sprintf("\\int_{%s}^{%s} %s \\, d%s", i.lower.LaTeX(), i.upper.LaTeX(), i.inner.LaTeX(), i.varName)
	}
	return fmt.Sprintf("\\int %s \\, d%s", i.inner.LaTeX(), i.varName)
}

// Sub leaves the bound integration variable alone.
func (i *Integral) Sub(varName string, value Expr) Expr {
	c := *i
	if i.IsDefinite() {
		c.lower = i.lower.Sub(varName, value)
		c.upper = i.upper.Sub(varName, value)
	}
	if varName != i.varName {
		c.inner = i.inner.Sub(varName, value)
	}
	return &c
}

func (i *Integral) Eval() (*Num, bool) { return nil, false }

func (i *Integral) Equal(other Expr) bool {
	o, ok := other.(*Integral)
	return ok && i.varName == o.varName && i.inner.Equal(o.inner) &&
		optionalEqual(i.lower, o.lower) && optionalEqual(i.upper, o.upper)
}

func (i *Integral) exprType() string { return "integral" }
func (i *Integral) toJSON() map[string]interface{} {
	m := map[string]interface{}{"type": "integral", "expr": i.inner.toJSON(), "var": i.varName}
	if i.IsDefinite() {
		m["lower"] = i.lower.toJSON()
		m["upper"] = i.upper.toJSON()
	} else if !i.addConstant {
		m["constant"] = false
	}
	return m
}

// ============================================================
// LimitExpr: unevaluated limit node
// ============================================================

type LimitExpr struct {
	inner   Expr
	varName string
	point   Expr
	hopital int
}

func LimitOf(inner Expr, varName string, point Expr) *LimitExpr {
	return &LimitExpr{inner: inner, varName: varName, point: point}
}

func (l *LimitExpr) Inner() Expr       { return l.inner }
func (l *LimitExpr) Var() string       { return l.varName }
func (l *LimitExpr) Point() Expr       { return l.point }
func (l *LimitExpr) HopitalDepth() int { return l.hopital }

func (l *LimitExpr) Simplify() Expr {
	c := *l
	c.inner = l.inner.Simplify()
	c.point = l.point.Simplify()
	return &c
}

func (l *LimitExpr) String() string {
	return fmt.Sprintf("lim(%s->%s, %s)", l.varName, l.point, l.inner)
}

func (l *LimitExpr) LaTeX() string {
	return fmt.Sprintf("\\lim_{%s \\to %s} %s", l.varName, l.point.LaTeX(), l.inner.LaTeX())
}

func (l *LimitExpr) Sub(varName string, value Expr) Expr {
	c := *l
	c.point = l.point.Sub(varName, value)
	if varName != l.varName {
		c.inner = l.inner.Sub(varName, value)
	}
	return &c
}

func (l *LimitExpr) Eval() (*Num, bool) { return nil, false }

func (l *LimitExpr) Equal(other Expr) bool {
	o, ok := other.(*LimitExpr)
	return ok && l.varName == o.varName && l.inner.Equal(o.inner) && l.point.Equal(o.point)
}

func (l *LimitExpr) exprType() string { return "limit" }
func (l *LimitExpr) toJSON() map[string]interface{} {
	return map[string]interface{}{"type": "limit", "expr": l.inner.toJSON(), "var": l.varName, "point": l.point.toJSON()}
}

// ============================================================
// Vector: ordered components
// ============================================================

type Vector struct{ elems []Expr }

func VectorOf(elems ...Expr) *Vector { return &Vector{elems: elems} }

func (v *Vector) Elems() []Expr { return v.elems }
func (v *Vector) Len() int      { return len(v.elems) }

func (v *Vector) mapElems(fn func(Expr) Expr) *Vector {
	out := make([]Expr, len(v.elems))
	for i, e := range v.elems {
		out[i] = fn(e)
	}
	return &Vector{elems: out}
}

func (v *Vector) Simplify() Expr {
	return v.mapElems(func(e Expr) Expr { return e.Simplify() })
}

func (v *Vector) String() string {
	parts := make([]string, len(v.elems))
	for i, e := range v.elems {
		parts[i] = e.String()
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

func (v *Vector) LaTeX() string {
	parts := make([]string, len(v.elems))
	for i, e := range v.elems {
		parts[i] = e.LaTeX()
	}
	return "\\left\\langle " + strings.Join(parts, ", ") + " \\right\\rangle"
}

func (v *Vector) Sub(varName string, value Expr) Expr {
	return v.mapElems(func(e Expr) Expr { return e.Sub(varName, value) })
}

func (v *Vector) Eval() (*Num, bool) { return nil, false }

func (v *Vector) Equal(other Expr) bool {
	o, ok := other.(*Vector)
	if !ok || len(v.elems) != len(o.elems) {
		return false
	}
	for i := range v.elems {
		if !v.elems[i].Equal(o.elems[i]) {
			return false
		}
	}
	return true
}

func (v *Vector) exprType() string { return "vector" }
func (v *Vector) toJSON() map[string]interface{} {
	es := make([]map[string]interface{}, len(v.elems))
	for i, e := range v.elems {
		es[i] = e.toJSON()
	}
	return map[string]interface{}{"type": "vector", "elems": es}
}
