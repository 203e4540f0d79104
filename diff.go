package symcalc

import "fmt"

// ============================================================
// Differentiation
// ============================================================

// Differentiate returns the order-th derivative of expr with respect to x,
// recording every rule applied in ctx's trace. Symbols registered with
// WithImplicit depend on x unless partial is set. An order below 1 yields
// Undefined; an order above Config.MaxDerivOrder yields an unevaluated
// Derivative node.
func Differentiate(ctx *Context, expr Expr, x string, order int, partial bool) Expr {
	defer ctx.flush()
	return differentiate(ctx, expr, x, order, partial)
}

func differentiate(ctx *Context, expr Expr, x string, order int, partial bool) Expr {
	if order < 1 {
		ctx.step(nil, "derivative order %d is not positive", order)
		return Undefined()
	}
	if order > ctx.cfg.MaxDerivOrder {
		d := DerivativeOf(expr, x, order)
		ctx.fail(fmt.Errorf("derivative of order %d exceeds %d: %w", order, ctx.cfg.MaxDerivOrder, ErrUnsolved))
		ctx.step(d, "order %d exceeds the limit of %d; left unevaluated", order, ctx.cfg.MaxDerivOrder)
		return d
	}
	cur := expr.Simplify()
	for i := 1; i <= order; i++ {
		if order > 1 {
			ctx.enter(cur, "derivative %d of %d with respect to %s", i, order, x)
		} else {
			ctx.enter(cur, "differentiate with respect to %s", x)
		}
		cur = derive(ctx, cur, x, partial)
		ctx.leave()
		ctx.step(cur, "result")
	}
	return cur
}

// dependsOn also treats implicit symbols as depending on x.
func (c *Context) dependsOn(e Expr, x string, partial bool) bool {
	if DependsOn(e, x) {
		return true
	}
	if partial || len(c.implicit) == 0 {
		return false
	}
	for name := range FreeSymbols(e) {
		if c.implicit[name] {
			return true
		}
	}
	return false
}

func derive(ctx *Context, e Expr, x string, partial bool) Expr {
	ctx.debug("derive", "expr", e, "var", x)
	if !ctx.dependsOn(e, x, partial) {
		if _, isVec := e.(*Vector); !isVec {
			ctx.step(N(0), "%s does not depend on %s: constant rule", e, x)
			ctx.use(TechniqueConstantRule)
			return N(0)
		}
	}
	switch v := e.(type) {
	case *Sym:
		if v.name == x {
			ctx.step(N(1), "d/d%s[%s] = 1", x, x)
			ctx.use(TechniquePowerRule)
			return N(1)
		}
		d := DerivativeOf(v, x, 1)
		ctx.step(d, "%s depends implicitly on %s", v.name, x)
		ctx.use(TechniqueImplicit)
		return d
	case *Add:
		return deriveSum(ctx, v, x, partial)
	case *Mul:
		return deriveProduct(ctx, v, x, partial)
	case *Pow:
		return derivePow(ctx, v, x, partial)
	case *Func:
		return deriveFunc(ctx, v, x, partial)
	case *Vector:
		ctx.step(nil, "differentiate each component")
		return v.mapElems(func(el Expr) Expr { return derive(ctx, el, x, partial) })
	case *Integral:
		return deriveIntegral(ctx, v, x, partial)
	case *Derivative:
		if v.varName == x && v.at == nil {
			d := DerivativeOf(v.inner, x, v.order+1).WithFunction(v.fn)
			if d.order > ctx.cfg.MaxDerivOrder {
				ctx.fail(fmt.Errorf("derivative of order %d exceeds %d: %w", d.order, ctx.cfg.MaxDerivOrder, ErrUnsolved))
				ctx.step(d, "order %d exceeds the limit of %d; left unevaluated", d.order, ctx.cfg.MaxDerivOrder)
				return d
			}
			ctx.step(d, "raise the order of the unevaluated derivative")
			return d
		}
	}
	d := DerivativeOf(e, x, 1)
	ctx.step(d, "no rule applies; left unevaluated")
	return d
}

func deriveSum(ctx *Context, a *Add, x string, partial bool) Expr {
	ctx.enter(a, "sum rule: differentiate term by term")
	out := make([]Expr, 0, len(a.terms))
	for _, t := range a.terms {
		if !ctx.dependsOn(t, x, partial) {
			continue
		}
		if d := derive(ctx, t, x, partial); !isZero(d) {
			out = append(out, d)
		}
	}
	ctx.leave()
	return AddOf(out...)
}

func deriveProduct(ctx *Context, m *Mul, x string, partial bool) Expr {
	var consts, deps []Expr
	for _, f := range m.factors {
		if ctx.dependsOn(f, x, partial) {
			deps = append(deps, f)
		} else {
			consts = append(consts, f)
		}
	}
	if len(consts) > 0 {
		c := MulOf(consts...)
		inner := MulOf(deps...)
		ctx.enter(inner, "constant multiple rule: factor out %s", c)
		d := derive(ctx, inner, x, partial)
		ctx.leave()
		return MulOf(c, d)
	}

	num, den := splitFactors(m)
	if len(den) > 0 && len(num) > 0 {
		u, w := MulOf(num...), MulOf(den...)
		if ctx.dependsOn(u, x, partial) && ctx.dependsOn(w, x, partial) {
			ctx.enter(div(u, w), "quotient rule: (u'v - uv')/v^2 with u = %s, v = %s", u, w)
			du := derive(ctx, u, x, partial)
			dw := derive(ctx, w, x, partial)
			ctx.leave()
			ctx.use(TechniqueQuotientRule)
			return div(subtract(MulOf(du, w), MulOf(u, dw)), PowOf(w, N(2)))
		}
	}

	f := deps[0]
	g := MulOf(deps[1:]...)
	ctx.enter(m, "product rule: (fg)' = f'g + fg' with f = %s, g = %s", f, g)
	df := derive(ctx, f, x, partial)
	dg := derive(ctx, g, x, partial)
	ctx.leave()
	ctx.use(TechniqueProductRule)
	return AddOf(MulOf(df, g), MulOf(f, dg))
}

// chain multiplies an outer derivative by the derivative of its argument,
// skipping the step when the argument is the variable itself.
func chain(ctx *Context, outer, arg Expr, x string, partial bool) Expr {
	if s, ok := arg.(*Sym); ok && s.name == x {
		return outer
	}
	ctx.enter(arg, "chain rule: multiply by the derivative of the inner function")
	du := derive(ctx, arg, x, partial)
	ctx.leave()
	ctx.use(TechniqueChainRule)
	return MulOf(outer, du)
}

func derivePow(ctx *Context, p *Pow, x string, partial bool) Expr {
	baseDep := ctx.dependsOn(p.base, x, partial)
	expDep := ctx.dependsOn(p.exp, x, partial)
	switch {
	case baseDep && !expDep:
		outer := MulOf(p.exp, PowOf(p.base, AddOf(p.exp, N(-1))))
		if isNumEqual(p.exp, -1) {
			ctx.step(outer, "power rule on a reciprocal: d/du[u^-1] = -u^-2")
		} else {
			ctx.step(outer, "power rule: d/du[u^n] = n*u^(n-1)")
		}
		ctx.use(TechniquePowerRule)
		return chain(ctx, outer, p.base, x, partial)
	case expDep && !baseDep:
		var outer Expr
		if isE(p.base) {
			outer = p
			ctx.step(outer, "exponential rule: d/du[e^u] = e^u")
		} else {
			outer = MulOf(p, LnOf(p.base))
			ctx.step(outer, "exponential rule: d/du[c^u] = c^u*ln(c)")
		}
		ctx.use(TechniqueExponential)
		return chain(ctx, outer, p.exp, x, partial)
	}
	// u^v with both depending: d/dx[e^(v ln u)].
	ctx.enter(p, "logarithmic differentiation: d/dx[u^v] = u^v*(v'*ln(u) + v*u'/u)")
	du := derive(ctx, p.base, x, partial)
	dv := derive(ctx, p.exp, x, partial)
	ctx.leave()
	ctx.use(TechniqueLogDiff)
	return MulOf(p, AddOf(MulOf(dv, LnOf(p.base)), MulOf(p.exp, du, recip(p.base))))
}

// funcDerivative is d/du[f(u)] for every unary kind.
func funcDerivative(kind FuncKind, u Expr) Expr {
	one := N(1)
	switch kind {
	case FuncSin:
		return CosOf(u)
	case FuncCos:
		return neg(SinOf(u))
	case FuncTan:
		return PowOf(SecOf(u), N(2))
	case FuncCot:
		return neg(PowOf(CscOf(u), N(2)))
	case FuncSec:
		return MulOf(SecOf(u), TanOf(u))
	case FuncCsc:
		return neg(MulOf(CscOf(u), CotOf(u)))
	case FuncAsin:
		return PowOf(subtract(one, PowOf(u, N(2))), F(-1, 2))
	case FuncAcos:
		return neg(PowOf(subtract(one, PowOf(u, N(2))), F(-1, 2)))
	case FuncAtan:
		return recip(AddOf(one, PowOf(u, N(2))))
	case FuncAcot:
		return neg(recip(AddOf(one, PowOf(u, N(2)))))
	case FuncAsec:
		return recip(MulOf(AbsOf(u), SqrtOf(subtract(PowOf(u, N(2)), one))))
	case FuncAcsc:
		return neg(recip(MulOf(AbsOf(u), SqrtOf(subtract(PowOf(u, N(2)), one)))))
	case FuncSinh:
		return CoshOf(u)
	case FuncCosh:
		return SinhOf(u)
	case FuncTanh:
		return subtract(one, PowOf(TanhOf(u), N(2)))
	case FuncLn:
		return recip(u)
	case FuncAbs:
		return div(u, AbsOf(u))
	}
	return nil
}

func deriveFunc(ctx *Context, f *Func, x string, partial bool) Expr {
	if f.kind == FuncLog {
		asLn := div(LnOf(f.arg), LnOf(f.base))
		ctx.enter(asLn, "change of base: log_b(u) = ln(u)/ln(b)")
		d := derive(ctx, asLn, x, partial)
		ctx.leave()
		return d
	}
	outer := funcDerivative(f.kind, f.arg)
	if outer == nil {
		d := DerivativeOf(f, x, 1)
		ctx.step(d, "no rule for %s; left unevaluated", f.kind)
		return d
	}
	ctx.step(outer, "d/du[%s(u)] = %s", f.kind, outer)
	return chain(ctx, outer, f.arg, x, partial)
}

// deriveIntegral applies the fundamental theorem of calculus.
func deriveIntegral(ctx *Context, in *Integral, x string, partial bool) Expr {
	if !in.IsDefinite() {
		if in.varName == x {
			ctx.step(in.inner, "fundamental theorem: d/d%s of an antiderivative in %s is the integrand", x, x)
			ctx.use(TechniqueFTC)
			return in.inner
		}
		inner := derive(ctx, in.inner, x, true)
		r := IntegralOf(inner, in.varName)
		ctx.step(r, "differentiate under the integral sign")
		return r
	}
	t := in.varName
	upperDep := ctx.dependsOn(in.upper, x, partial)
	lowerDep := ctx.dependsOn(in.lower, x, partial)
	if upperDep && lowerDep {
		ctx.step(nil, "split at 0: integral from %s to %s = integral from 0 to %s - integral from 0 to %s",
			in.lower, in.upper, in.upper, in.lower)
	}
	var terms []Expr
	if upperDep {
		f := Sub(in.inner, t, in.upper)
		ctx.enter(f, "fundamental theorem on the upper bound: f(%s) * d/d%s[%s]", in.upper, x, in.upper)
		terms = append(terms, chainBound(ctx, f, in.upper, x, partial))
		ctx.leave()
	}
	if lowerDep {
		f := Sub(in.inner, t, in.lower)
		ctx.enter(f, "fundamental theorem on the lower bound: -f(%s) * d/d%s[%s]", in.lower, x, in.lower)
		terms = append(terms, neg(chainBound(ctx, f, in.lower, x, partial)))
		ctx.leave()
	}
	if t != x && ctx.dependsOn(in.inner, x, partial) {
		inner := derive(ctx, in.inner, x, partial)
		terms = append(terms, DefiniteIntegralOf(inner, t, in.lower, in.upper))
		ctx.step(terms[len(terms)-1], "differentiate under the integral sign")
	}
	ctx.use(TechniqueFTC)
	return AddOf(terms...)
}

func chainBound(ctx *Context, f, bound Expr, x string, partial bool) Expr {
	if s, ok := bound.(*Sym); ok && s.name == x {
		return f
	}
	return MulOf(f, derive(ctx, bound, x, partial))
}

// EvaluateDerivative differentiates d's inner expression and applies its
// evaluation point, if any.
func EvaluateDerivative(ctx *Context, d *Derivative) Expr {
	defer ctx.flush()
	r := differentiate(ctx, d.inner, d.varName, d.order, false)
	if d.at == nil {
		return r
	}
	v := Sub(r, d.varName, d.at)
	ctx.step(v, "evaluate at %s = %s", d.varName, d.at)
	return v
}

// ============================================================
// Convenience wrappers
// ============================================================

func Diff(expr Expr, varName string) Expr {
	return Differentiate(NewContext(), expr, varName, 1, false)
}

func Diff2(expr Expr, varName string) Expr {
	return Differentiate(NewContext(), expr, varName, 2, false)
}

func DiffN(expr Expr, varName string, n int) Expr {
	return Differentiate(NewContext(), expr, varName, n, false)
}

// PDiff is the partial derivative: implicit dependencies are ignored.
func PDiff(expr Expr, varName string) Expr {
	return Differentiate(NewContext(), expr, varName, 1, true)
}

func Gradient(expr Expr, varNames []string) []Expr {
	out := make([]Expr, len(varNames))
	for i, v := range varNames {
		out[i] = PDiff(expr, v)
	}
	return out
}

func Jacobian(exprs []Expr, varNames []string) *Matrix {
	m := NewMatrix(len(exprs), len(varNames))
	for i, e := range exprs {
		for j, v := range varNames {
			m.Set(i, j, PDiff(e, v))
		}
	}
	return m
}
