package symcalc

// ============================================================
// Integration: strategy cascade
// ============================================================

// Integrate returns an antiderivative of expr in varName, without the
// constant of integration.
func Integrate(expr Expr, varName string) (Expr, bool) {
	return Antiderivative(NewContext(), expr, varName, nil)
}

// Antiderivative runs the integration cascade on expr. info carries the
// u-substitution and integration-by-parts budget; pass the caller's value
// to share it with a nested integral, or nil to start a fresh one. A false
// result means no strategy applied and nothing was added to the trace.
func Antiderivative(ctx *Context, expr Expr, x string, info *IntegrationInfo) (Expr, bool) {
	defer ctx.flush()
	if info == nil {
		info = &IntegrationInfo{}
	}
	return antiderivative(ctx, expr.Simplify(), x, info)
}

type strategy func(ctx *Context, e Expr, x string, info *IntegrationInfo) (Expr, bool)

// cascade is tried in order; the first success wins. It is assigned in
// init because its strategies recurse into integrate.
var cascade []strategy

func init() {
	cascade = []strategy{
		integrateClosedForm,
		integrateTrigProduct,
		integrateUSub,
		integrateByParts,
		integrateTrigSub,
		integrateRational,
	}
}

func antiderivative(ctx *Context, e Expr, x string, info *IntegrationInfo) (Expr, bool) {
	ctx.debug("integrate", "expr", e, "var", x, "usub", info.USubCount, "parts", info.ByPartsCount)
	cp := ctx.checkpoint()
	ctx.enter(e, "integrate with respect to %s", x)
	r, ok := integrate(ctx, e, x, info)
	ctx.leave()
	if !ok {
		ctx.rollback(cp)
		return nil, false
	}
	ctx.step(r, "antiderivative of %s", e)
	return r, true
}

func integrate(ctx *Context, e Expr, x string, info *IntegrationInfo) (Expr, bool) {
	if !DependsOn(e, x) {
		r := MulOf(e, S(x))
		ctx.step(r, "constant rule: the integral of c is c*%s", x)
		ctx.use(TechniqueConstantRule)
		return r, true
	}
	switch v := e.(type) {
	case *Add:
		return integrateSum(ctx, v.terms, x, info, "sum rule: integrate term by term")
	case *Vector:
		out := make([]Expr, len(v.elems))
		for i, el := range v.elems {
			r, ok := antiderivative(ctx, el, x, info)
			if !ok {
				return nil, false
			}
			out[i] = r
		}
		return VectorOf(out...), true
	}

	if c, rest := splitConstant(e, x); !isOne(c) {
		ctx.enter(rest, "constant multiple rule: factor out %s", c)
		r, ok := antiderivative(ctx, rest, x, info)
		ctx.leave()
		if !ok {
			return nil, false
		}
		return MulOf(c, r), true
	}

	if expanded, ok := expandForIntegration(e, x); ok {
		ctx.step(expanded, "expand the polynomial")
		return integrateSum(ctx, Terms(expanded), x, info, "sum rule: integrate term by term")
	}

	for _, s := range cascade {
		cp := ctx.checkpoint()
		if r, ok := s(ctx, e, x, info); ok {
			return r, true
		}
		ctx.rollback(cp)
	}
	return nil, false
}

func integrateSum(ctx *Context, terms []Expr, x string, info *IntegrationInfo, msg string) (Expr, bool) {
	ctx.enter(AddOf(terms...), "%s", msg)
	defer ctx.leave()
	out := make([]Expr, 0, len(terms))
	for _, t := range terms {
		r, ok := antiderivative(ctx, t, x, info)
		if !ok {
			return nil, false
		}
		out = append(out, r)
	}
	return AddOf(out...), true
}

// splitConstant separates the factors of e that do not depend on x.
func splitConstant(e Expr, x string) (Expr, Expr) {
	m, ok := e.(*Mul)
	if !ok {
		return N(1), e
	}
	var consts, deps []Expr
	for _, f := range m.factors {
		if DependsOn(f, x) {
			deps = append(deps, f)
		} else {
			consts = append(consts, f)
		}
	}
	if len(consts) == 0 {
		return N(1), e
	}
	return MulOf(consts...), MulOf(deps...)
}

// expandForIntegration expands polynomial products and powers into sums.
// A power of a linear base is left for the power rule.
func expandForIntegration(e Expr, x string) (Expr, bool) {
	if p, ok := e.(*Pow); ok {
		if _, _, lin := linearCoeffs(p.base, x); lin {
			return nil, false
		}
	}
	if _, ok := polyOf(e, x); !ok {
		return nil, false
	}
	ex := Expand(e)
	if _, ok := ex.(*Add); !ok {
		return nil, false
	}
	return ex, true
}

// linearCoeffs reads u as a*x + b with a non-zero a free of x.
func linearCoeffs(u Expr, x string) (a, b Expr, ok bool) {
	a, b = N(0), N(0)
	for _, t := range Terms(Expand(u)) {
		if !DependsOn(t, x) {
			b = AddOf(b, t)
			continue
		}
		c := div(t, S(x))
		if DependsOn(c, x) {
			return nil, nil, false
		}
		a = AddOf(a, c)
	}
	if isZero(a) {
		return nil, nil, false
	}
	return a, b, true
}

func isVar(e Expr, x string) bool {
	s, ok := e.(*Sym)
	return ok && s.name == x
}

// scratch returns a Context with c's configuration whose trace and
// techniques are thrown away.
func (c *Context) scratch() *Context {
	return &Context{
		cfg:      c.cfg,
		trace:    NewTrace(),
		logger:   c.logger,
		recorder: nopRecorder{},
		implicit: map[string]bool{},
	}
}

// derivative differentiates without recording steps.
func (c *Context) derivative(e Expr, x string) Expr {
	return differentiate(c.scratch(), e, x, 1, true)
}
