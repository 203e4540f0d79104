package symcalc

// ============================================================
// Integration by parts
// ============================================================

// partsFrame is one active integration by parts. When a sub-integral comes
// back as a numeric multiple of an enclosing frame's integrand, that
// integral is replaced by the frame's placeholder symbol and the frame
// solves I = A + B*I for I once its own result is known.
type partsFrame struct {
	integrand   Expr
	x           string
	placeholder *Sym
	used        bool
}

// liateRank orders factors by how good a choice of u they are: logarithms,
// inverse trig, algebraic, trig, exponential.
func liateRank(f Expr, x string) int {
	if p, ok := f.(*Pow); ok {
		if DependsOn(p.exp, x) {
			return 4
		}
		f = p.base
	}
	switch v := f.(type) {
	case *Func:
		switch {
		case v.kind == FuncLn || v.kind == FuncLog:
			return 0
		case v.kind.isInverseTrig():
			return 1
		case v.kind.isTrig() || v.kind.isHyperbolic():
			return 3
		}
	}
	return 2
}

func isTranscendental(f Expr, x string) bool {
	r := liateRank(f, x)
	return r != 2
}

func integrateByParts(ctx *Context, e Expr, x string, info *IntegrationInfo) (Expr, bool) {
	if info.ByPartsCount >= ctx.cfg.MaxByPartsCount {
		return nil, false
	}
	factors := Factors(e)
	transcendental := false
	for _, f := range factors {
		if isTranscendental(f, x) {
			transcendental = true
			break
		}
	}
	if !transcendental {
		return nil, false
	}
	info.ByPartsCount++

	best := 0
	for i, f := range factors {
		if liateRank(f, x) < liateRank(factors[best], x) {
			best = i
		}
	}
	u := factors[best]
	rest := make([]Expr, 0, len(factors)-1)
	rest = append(rest, factors[:best]...)
	rest = append(rest, factors[best+1:]...)
	dv := MulOf(rest...)

	if r, ok := partsWith(ctx, e, x, u, dv, info); ok {
		return r, true
	}
	if !DependsOn(dv, x) {
		return nil, false
	}
	ctx.debug("integration by parts: swapping u and dv", "u", dv, "dv", u)
	return partsWith(ctx, e, x, dv, u, info)
}

func partsWith(ctx *Context, e Expr, x string, u, dv Expr, info *IntegrationInfo) (Expr, bool) {
	cp := ctx.checkpoint()
	frame := &partsFrame{integrand: e, x: x, placeholder: S(ctx.freshVar("I", e))}
	ctx.parts = append(ctx.parts, frame)
	defer func() { ctx.parts = ctx.parts[:len(ctx.parts)-1] }()

	ctx.enter(e, "integration by parts with u = %s, dv = %s d%s", u, dv, x)
	r, ok := partsBody(ctx, x, u, dv, info)
	ctx.leave()
	if !ok {
		ctx.rollback(cp)
		return nil, false
	}
	if frame.used {
		r, ok = solveCyclic(ctx, r, frame)
		if !ok {
			ctx.rollback(cp)
			return nil, false
		}
	}
	if !containsPlaceholder(r, ctx.parts) {
		r = FactorGCF(r)
	}
	ctx.use(TechniqueByParts)
	return r, true
}

func partsBody(ctx *Context, x string, u, dv Expr, info *IntegrationInfo) (Expr, bool) {
	v, ok := antiderivative(ctx, dv, x, info)
	if !ok {
		return nil, false
	}
	du := ctx.derivative(u, x)
	ctx.step(du, "du = d/d%s[%s] d%s", x, u, x)
	w := MulOf(v, du)
	uv := MulOf(u, v)
	ctx.step(subtract(uv, IntegralOf(w, x).WithoutConstant()), "uv - integral of v du")

	var sub Expr
	if c, frame, found := matchFrame(ctx, w, x); found {
		frame.used = true
		sub = MulOf(c, frame.placeholder)
		ctx.step(sub, "the integral of %s reappears; call the original integral %s", w, frame.placeholder)
	} else if isZero(w) {
		sub = N(0)
	} else {
		sub, ok = antiderivative(ctx, w, x, info)
		if !ok {
			return nil, false
		}
	}
	r := subtract(uv, sub)
	ctx.step(r, "combine uv - integral of v du")
	return r, true
}

// matchFrame looks for an active frame whose integrand is a constant
// multiple of w.
func matchFrame(ctx *Context, w Expr, x string) (*Num, *partsFrame, bool) {
	for i := len(ctx.parts) - 1; i >= 0; i-- {
		f := ctx.parts[i]
		if f.x != x {
			continue
		}
		if c, ok := div(w, f.integrand).(*Num); ok && c.IsFinite() && !c.IsZero() {
			return c, f, true
		}
	}
	return nil, nil, false
}

// solveCyclic solves I = A + B*I for the frame's placeholder I.
func solveCyclic(ctx *Context, r Expr, frame *partsFrame) (Expr, bool) {
	p := frame.placeholder.name
	coeffs := PolyCoeffs(Expand(r), p)
	for d := range coeffs {
		if d != 0 && d != 1 {
			return nil, false
		}
	}
	a, b := coeffs[0], coeffs[1]
	if a == nil {
		a = N(0)
	}
	if b == nil {
		return r, true
	}
	den := subtract(N(1), b)
	if isZero(den) || DependsOn(b, frame.x) {
		return nil, false
	}
	res := FactorGCF(Expand(div(a, den)))
	ctx.step(res, "solve %s = %s for %s", frame.placeholder, r, frame.placeholder)
	ctx.use(TechniqueCyclicParts)
	return res, true
}

func containsPlaceholder(e Expr, frames []*partsFrame) bool {
	for _, f := range frames {
		if DependsOn(e, f.placeholder.name) {
			return true
		}
	}
	return false
}
