package symcalc

import (
	"math"
	"math/cmplx"
)

// ============================================================
// Func: elementary function applications
// ============================================================

type FuncKind int

const (
	FuncSin FuncKind = iota
	FuncCos
	FuncTan
	FuncCot
	FuncSec
	FuncCsc
	FuncAsin
	FuncAcos
	FuncAtan
	FuncAcot
	FuncAsec
	FuncAcsc
	FuncSinh
	FuncCosh
	FuncTanh
	FuncLn
	FuncLog
	FuncAbs
)

var funcNames = [...]string{
	FuncSin:  "sin",
	FuncCos:  "cos",
	FuncTan:  "tan",
	FuncCot:  "cot",
	FuncSec:  "sec",
	FuncCsc:  "csc",
	FuncAsin: "asin",
	FuncAcos: "acos",
	FuncAtan: "atan",
	FuncAcot: "acot",
	FuncAsec: "asec",
	FuncAcsc: "acsc",
	FuncSinh: "sinh",
	FuncCosh: "cosh",
	FuncTanh: "tanh",
	FuncLn:   "ln",
	FuncLog:  "log",
	FuncAbs:  "abs",
}

func (k FuncKind) String() string {
	if int(k) < len(funcNames) {
		return funcNames[k]
	}
	return "unknown"
}

// FuncKindByName resolves a printed function name.
func FuncKindByName(name string) (FuncKind, bool) {
	for k, n := range funcNames {
		if n == name {
			return FuncKind(k), true
		}
	}
	return 0, false
}

func (k FuncKind) isTrig() bool        { return k <= FuncCsc }
func (k FuncKind) isInverseTrig() bool { return k >= FuncAsin && k <= FuncAcsc }
func (k FuncKind) isHyperbolic() bool  { return k >= FuncSinh && k <= FuncTanh }

// Func applies kind to arg. base is only set for FuncLog.
type Func struct {
	kind       FuncKind
	arg        Expr
	base       Expr
	simplified bool
}

func funcOf(kind FuncKind, arg Expr) *Func { return &Func{kind: kind, arg: arg} }

func SinOf(arg Expr) Expr  { return funcOf(FuncSin, arg).Simplify() }
func CosOf(arg Expr) Expr  { return funcOf(FuncCos, arg).Simplify() }
func TanOf(arg Expr) Expr  { return funcOf(FuncTan, arg).Simplify() }
func CotOf(arg Expr) Expr  { return funcOf(FuncCot, arg).Simplify() }
func SecOf(arg Expr) Expr  { return funcOf(FuncSec, arg).Simplify() }
func CscOf(arg Expr) Expr  { return funcOf(FuncCsc, arg).Simplify() }
func AsinOf(arg Expr) Expr { return funcOf(FuncAsin, arg).Simplify() }
func AcosOf(arg Expr) Expr { return funcOf(FuncAcos, arg).Simplify() }
func AtanOf(arg Expr) Expr { return funcOf(FuncAtan, arg).Simplify() }
func AcotOf(arg Expr) Expr { return funcOf(FuncAcot, arg).Simplify() }
func AsecOf(arg Expr) Expr { return funcOf(FuncAsec, arg).Simplify() }
func AcscOf(arg Expr) Expr { return funcOf(FuncAcsc, arg).Simplify() }
func SinhOf(arg Expr) Expr { return funcOf(FuncSinh, arg).Simplify() }
func CoshOf(arg Expr) Expr { return funcOf(FuncCosh, arg).Simplify() }
func TanhOf(arg Expr) Expr { return funcOf(FuncTanh, arg).Simplify() }
func LnOf(arg Expr) Expr   { return funcOf(FuncLn, arg).Simplify() }
func AbsOf(arg Expr) Expr  { return funcOf(FuncAbs, arg).Simplify() }

// LogOf is the logarithm of arg to the given base.
func LogOf(base, arg Expr) Expr {
	return (&Func{kind: FuncLog, arg: arg, base: base}).Simplify()
}

// FuncOf applies any unary kind; FuncLog defaults to base 10.
func FuncOf(kind FuncKind, arg Expr) Expr {
	if kind == FuncLog {
		return LogOf(N(10), arg)
	}
	return funcOf(kind, arg).Simplify()
}

func (f *Func) Kind() FuncKind { return f.kind }
func (f *Func) Arg() Expr      { return f.arg }
func (f *Func) LogBase() Expr  { return f.base }

func (f *Func) Simplify() Expr {
	if f.simplified {
		return f
	}
	arg := f.arg.Simplify()
	var base Expr
	if f.base != nil {
		base = f.base.Simplify()
	}
	if n, ok := arg.(*Num); ok && n.IsUndefined() {
		return Undefined()
	}
	if v, ok := specialValue(f.kind, arg, base); ok {
		return v
	}
	switch f.kind {
	case FuncSin, FuncTan, FuncCot, FuncCsc, FuncAsin, FuncAtan, FuncAcot, FuncAcsc, FuncSinh, FuncTanh:
		if inner, neg := negated(arg); neg {
			return MulOf(N(-1), funcOf(f.kind, inner).Simplify())
		}
	case FuncCos, FuncSec, FuncCosh:
		if inner, neg := negated(arg); neg {
			return funcOf(f.kind, inner).Simplify()
		}
	case FuncAbs:
		if inner, neg := negated(arg); neg {
			return AbsOf(inner)
		}
		if inner, ok := arg.(*Func); ok && inner.kind == FuncAbs {
			return inner
		}
		if p, ok := arg.(*Pow); ok && isE(p.base) {
			return arg
		}
		if p, ok := arg.(*Pow); ok {
			if en, ok := p.exp.(*Num); ok && en.IsInteger() && int64(en.re)%2 == 0 {
				return arg
			}
		}
	case FuncLn:
		if isE(arg) {
			return N(1)
		}
		if p, ok := arg.(*Pow); ok && isE(p.base) {
			return p.exp
		}
	case FuncLog:
		if arg.Equal(base) {
			return N(1)
		}
	}
	return &Func{kind: f.kind, arg: arg, base: base, simplified: true}
}

// negated reports whether e carries a negative numeric coefficient and
// returns its negation.
func negated(e Expr) (Expr, bool) {
	switch v := e.(type) {
	case *Num:
		if v.IsNegative() {
			return numNeg(v), true
		}
	case *Mul:
		if c, ok := v.factors[0].(*Num); ok && c.IsNegative() {
			fs := make([]Expr, len(v.factors))
			copy(fs, v.factors)
			fs[0] = numNeg(c)
			return MulOf(fs...), true
		}
	}
	return nil, false
}

// piMultiple reports e as q*pi for a numeric q.
func piMultiple(e Expr) (*Num, bool) {
	if c, ok := e.(*Const); ok && c.name == Pi.name {
		return N(1), true
	}
	if m, ok := e.(*Mul); ok && len(m.factors) == 2 {
		if q, ok := m.factors[0].(*Num); ok && q.IsReal() {
			if c, ok := m.factors[1].(*Const); ok && c.name == Pi.name {
				return q, true
			}
		}
	}
	return nil, false
}

// exactTrigValue turns a float trig value into 0, ±1, ±1/2 or ±sqrt(p)/q.
func exactTrigValue(v float64) (Expr, bool) {
	if math.IsNaN(v) || math.Abs(v) > 1e12 {
		return Undefined(), true
	}
	if p, q, ok := ratioOf(v, 2); ok {
		return F(p, q), true
	}
	sq := v * v
	if p, q, ok := ratioOf(sq, 4); ok {
		sign := int64(1)
		if v < 0 {
			sign = -1
		}
		return sqrtRational(p, q, sign), true
	}
	return nil, false
}

// sqrtRational writes sign*sqrt(p/q) as (k/q)*sqrt(s) with s square-free.
func sqrtRational(p, q, sign int64) Expr {
	s := p * q
	outer := int64(1)
	for k := int64(2); k*k <= s; k++ {
		for s%(k*k) == 0 {
			s /= k * k
			outer *= k
		}
	}
	coeff := F(sign*outer, q)
	if s == 1 {
		return coeff
	}
	return MulOf(coeff, PowOf(N(s), F(1, 2)))
}

func specialValue(kind FuncKind, arg, base Expr) (Expr, bool) {
	if kind.isTrig() {
		if q, ok := piMultiple(arg); ok {
			if twelve := snapFloat(q.re * 12); twelve == math.Trunc(twelve) {
				return exactTrigValue(evalReal(kind, q.re*math.Pi))
			}
		}
	}
	n, ok := arg.(*Num)
	if !ok {
		return nil, false
	}
	if !n.IsReal() {
		return nil, false
	}
	v := n.re
	if math.IsInf(v, 0) {
		return infiniteValue(kind, v)
	}
	switch kind {
	case FuncSin, FuncTan, FuncSinh, FuncTanh, FuncAtan:
		if v == 0 {
			return N(0), true
		}
	case FuncCos, FuncSec, FuncCosh:
		if v == 0 {
			return N(1), true
		}
	case FuncCot, FuncCsc:
		if v == 0 {
			return Undefined(), true
		}
	case FuncAbs:
		return numAbs(n), true
	case FuncLn:
		if v <= 0 {
			return Undefined(), true
		}
		if v == 1 {
			return N(0), true
		}
	case FuncLog:
		b, ok := base.(*Num)
		if v <= 0 || (ok && (b.re <= 0 || b.IsOne())) {
			return Undefined(), true
		}
		if v == 1 {
			return N(0), true
		}
		if ok && b.IsReal() {
			k := math.Log(v) / math.Log(b.re)
			if r := snapFloat(k); r == math.Trunc(r) {
				return NFloat(r), true
			}
		}
	case FuncAsin, FuncAcos, FuncAcot, FuncAsec, FuncAcsc:
		return inverseTrigValue(kind, v)
	}
	if kind == FuncAtan {
		return inverseTrigValue(kind, v)
	}
	return nil, false
}

// inverseTrigValue folds inverse trig at 0, ±1/2 and ±1 into multiples of
// pi. Arguments outside the real domain are Undefined.
func inverseTrigValue(kind FuncKind, v float64) (Expr, bool) {
	switch kind {
	case FuncAsin, FuncAcos:
		if math.Abs(v) > 1 {
			return Undefined(), true
		}
	case FuncAsec, FuncAcsc:
		if math.Abs(v) < 1 {
			return Undefined(), true
		}
	}
	if v != 0 && math.Abs(v) != 0.5 && math.Abs(v) != 1 {
		return nil, false
	}
	r := evalReal(kind, v)
	if math.IsNaN(r) {
		return Undefined(), true
	}
	p, q, ok := ratioOf(r/math.Pi, 12)
	if !ok {
		return nil, false
	}
	return MulOf(F(p, q), Pi), true
}

func infiniteValue(kind FuncKind, v float64) (Expr, bool) {
	sign := 1.0
	if v < 0 {
		sign = -1
	}
	switch kind {
	case FuncAtan:
		return MulOf(F(int64(sign), 2), Pi), true
	case FuncAcot:
		if sign > 0 {
			return N(0), true
		}
		return Pi, true
	case FuncAsec:
		return MulOf(F(1, 2), Pi), true
	case FuncAcsc:
		return N(0), true
	case FuncTanh:
		return NFloat(sign), true
	case FuncAbs:
		return Inf(), true
	case FuncLn, FuncLog:
		if sign > 0 {
			return Inf(), true
		}
		return Undefined(), true
	case FuncSinh:
		return NFloat(v), true
	case FuncCosh:
		return Inf(), true
	}
	return Undefined(), true
}

func evalReal(kind FuncKind, v float64) float64 {
	switch kind {
	case FuncSin:
		return math.Sin(v)
	case FuncCos:
		return math.Cos(v)
	case FuncTan:
		return math.Tan(v)
	case FuncCot:
		return 1 / math.Tan(v)
	case FuncSec:
		return 1 / math.Cos(v)
	case FuncCsc:
		return 1 / math.Sin(v)
	case FuncAsin:
		return math.Asin(v)
	case FuncAcos:
		return math.Acos(v)
	case FuncAtan:
		return math.Atan(v)
	case FuncAcot:
		if v == 0 {
			return math.Pi / 2
		}
		return math.Atan(1 / v)
	case FuncAsec:
		return math.Acos(1 / v)
	case FuncAcsc:
		return math.Asin(1 / v)
	case FuncSinh:
		return math.Sinh(v)
	case FuncCosh:
		return math.Cosh(v)
	case FuncTanh:
		return math.Tanh(v)
	case FuncLn:
		if v <= 0 {
			return math.NaN()
		}
		return math.Log(v)
	case FuncAbs:
		return math.Abs(v)
	}
	return math.NaN()
}

func evalComplex(kind FuncKind, z complex128) complex128 {
	switch kind {
	case FuncSin:
		return cmplx.Sin(z)
	case FuncCos:
		return cmplx.Cos(z)
	case FuncTan:
		return cmplx.Tan(z)
	case FuncCot:
		return cmplx.Cot(z)
	case FuncSec:
		return 1 / cmplx.Cos(z)
	case FuncCsc:
		return 1 / cmplx.Sin(z)
	case FuncAsin:
		return cmplx.Asin(z)
	case FuncAcos:
		return cmplx.Acos(z)
	case FuncAtan:
		return cmplx.Atan(z)
	case FuncAcot:
		return cmplx.Atan(1 / z)
	case FuncAsec:
		return cmplx.Acos(1 / z)
	case FuncAcsc:
		return cmplx.Asin(1 / z)
	case FuncSinh:
		return cmplx.Sinh(z)
	case FuncCosh:
		return cmplx.Cosh(z)
	case FuncTanh:
		return cmplx.Tanh(z)
	case FuncLn:
		return cmplx.Log(z)
	case FuncAbs:
		return complex(cmplx.Abs(z), 0)
	}
	return cmplx.NaN()
}

func (f *Func) Eval() (*Num, bool) {
	n, ok := f.arg.Eval()
	if !ok {
		return nil, false
	}
	if n.IsUndefined() {
		return Undefined(), true
	}
	if f.kind == FuncLog {
		b, ok := f.base.Eval()
		if !ok {
			return nil, false
		}
		num := (&Func{kind: FuncLn, arg: n}).mustEval()
		den := (&Func{kind: FuncLn, arg: b}).mustEval()
		return numDiv(num, den), true
	}
	if n.IsReal() {
		if math.IsInf(n.re, 0) {
			v, _ := infiniteValue(f.kind, n.re)
			r, _ := v.Eval()
			return r, true
		}
		return NFloat(evalReal(f.kind, n.re)), true
	}
	return fromComplex(evalComplex(f.kind, n.complex())), true
}

func (f *Func) mustEval() *Num {
	v, ok := f.Eval()
	if !ok {
		return Undefined()
	}
	return v
}

func (f *Func) String() string {
	if f.kind == FuncLog {
		return "log(" + f.base.String() + ", " + f.arg.String() + ")"
	}
	return f.kind.String() + "(" + f.arg.String() + ")"
}

func (f *Func) LaTeX() string {
	arg := "\\left(" + f.arg.LaTeX() + "\\right)"
	switch f.kind {
	case FuncSin, FuncCos, FuncTan, FuncCot, FuncSec, FuncCsc, FuncSinh, FuncCosh, FuncTanh, FuncLn:
		return "\\" + f.kind.String() + arg
	case FuncAsin:
		return "\\arcsin" + arg
	case FuncAcos:
		return "\\arccos" + arg
	case FuncAtan:
		return "\\arctan" + arg
	case FuncAcot, FuncAsec, FuncAcsc:
		return "\\operatorname{arc" + f.kind.String()[1:] + "}" + arg
	case FuncLog:
		return "\\log_{" + f.base.LaTeX() + "}" + arg
	case FuncAbs:
		return "\\left|" + f.arg.LaTeX() + "\\right|"
	}
	return "\\operatorname{" + f.kind.String() + "}" + arg
}

func (f *Func) Sub(varName string, value Expr) Expr {
	var base Expr
	if f.base != nil {
		base = f.base.Sub(varName, value)
	}
	return (&Func{kind: f.kind, arg: f.arg.Sub(varName, value), base: base}).Simplify()
}

func (f *Func) Equal(other Expr) bool {
	o, ok := other.(*Func)
	if !ok || f.kind != o.kind || !f.arg.Equal(o.arg) {
		return false
	}
	if f.base == nil || o.base == nil {
		return f.base == nil && o.base == nil
	}
	return f.base.Equal(o.base)
}

func (f *Func) exprType() string { return "func" }
func (f *Func) toJSON() map[string]interface{} {
	m := map[string]interface{}{"type": "func", "name": f.kind.String(), "arg": f.arg.toJSON()}
	if f.base != nil {
		m["base"] = f.base.toJSON()
	}
	return m
}
