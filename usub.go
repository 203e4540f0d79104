package symcalc

// ============================================================
// U-substitution
// ============================================================

func integrateUSub(ctx *Context, e Expr, x string, info *IntegrationInfo) (Expr, bool) {
	if info.USubCount >= ctx.cfg.MaxUSubCount {
		return nil, false
	}
	info.USubCount++
	for _, u := range usubCandidates(e, x, ctx.cfg.MaxCandidateSize) {
		cp := ctx.checkpoint()
		if r, ok := substitute(ctx, e, x, u, info); ok {
			ctx.use(TechniqueUSub)
			return r, true
		}
		ctx.rollback(cp)
	}
	return nil, false
}

// usubCandidates lists the inner expressions worth substituting, outermost
// first: dependent bases and exponents of powers, applied functions and
// their arguments, and integer powers of x.
func usubCandidates(e Expr, x string, maxSize int) []Expr {
	var out, powers []Expr
	seen := map[string]bool{}
	add := func(c Expr) {
		if !DependsOn(c, x) || isVar(c, x) || exprSize(c) > maxSize {
			return
		}
		if key := c.String(); !seen[key] {
			seen[key] = true
			out = append(out, c)
		}
	}
	var walk func(n Expr)
	walk = func(n Expr) {
		switch v := n.(type) {
		case *Add:
			for _, t := range v.terms {
				walk(t)
			}
		case *Mul:
			for _, f := range v.factors {
				walk(f)
			}
		case *Pow:
			if isVar(v.base, x) {
				if en, ok := v.exp.(*Num); ok && en.IsInteger() && en.re >= 2 {
					powers = append(powers, v)
				}
			}
			if !DependsOn(v.base, x) {
				add(v)
			}
			add(v.base)
			add(v.exp)
			walk(v.base)
			walk(v.exp)
		case *Func:
			add(v)
			add(v.arg)
			walk(v.arg)
		}
	}
	walk(e)
	for _, p := range powers {
		add(p)
	}
	return out
}

// substitute tries u = candidate: the integrand divided by du must become
// an expression in u alone.
func substitute(ctx *Context, e Expr, x string, u Expr, info *IntegrationInfo) (Expr, bool) {
	du := FactorGCF(ctx.derivative(u, x))
	if isZero(du) || isUndefined(du) {
		return nil, false
	}
	t := ctx.freshVar("u", e, u)
	ratio := div(e, du)
	body := replaceU(ratio, u, S(t), x)
	if DependsOn(body, x) {
		inv, ok := invertLinear(u, x, S(t))
		if !ok {
			return nil, false
		}
		body = Sub(body, x, inv)
		if DependsOn(body, x) {
			return nil, false
		}
	}
	ctx.debug("u-substitution", "u", u, "body", body)
	ctx.enter(body, "u-substitution: let %s = %s, d%s = %s d%s", t, u, t, du, x)
	r, ok := antiderivative(ctx, body, t, info)
	ctx.leave()
	if !ok {
		return nil, false
	}
	res := Sub(r, t, u)
	ctx.step(res, "substitute back %s = %s", t, u)
	return res, true
}

// replaceU replaces u by t. When u is c^v for a constant c, every c^w with
// w a numeric multiple k of v also becomes t^k.
func replaceU(e, u, t Expr, x string) Expr {
	out := replaceNode(e, u, t)
	p, ok := u.(*Pow)
	if !ok || DependsOn(p.base, x) {
		return out
	}
	return mapExpr(out, func(n Expr) (Expr, bool) {
		q, ok := n.(*Pow)
		if !ok || !q.base.Equal(p.base) {
			return nil, false
		}
		k, ok := div(q.exp, p.exp).(*Num)
		if !ok {
			return nil, false
		}
		return PowOf(t, k), true
	})
}

// invertLinear solves u = a*x + b for x.
func invertLinear(u Expr, x string, t Expr) (Expr, bool) {
	a, b, ok := linearCoeffs(u, x)
	if !ok {
		return nil, false
	}
	return div(subtract(t, b), a), true
}
