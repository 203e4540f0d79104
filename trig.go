package symcalc

// ============================================================
// Deep Simplification and Trig Identities
// ============================================================

// TrigSimplify applies the Pythagorean identities: sin²+cos²=1,
// 1-sin²=cos², 1-cos²=sin², 1+tan²=sec², sec²-1=tan², 1+cot²=csc² and
// csc²-1=cot², scaled by any common numeric factor.
func TrigSimplify(e Expr) Expr {
	return trigSimplifyExpr(e.Simplify())
}

func trigSimplifyExpr(e Expr) Expr {
	switch v := e.(type) {
	case *Add:
		newTerms := make([]Expr, len(v.terms))
		for i, t := range v.terms {
			newTerms[i] = trigSimplifyExpr(t)
		}
		return trigFindPythagorean(AddOf(newTerms...))
	case *Mul:
		newFactors := make([]Expr, len(v.factors))
		for i, f := range v.factors {
			newFactors[i] = trigSimplifyExpr(f)
		}
		return MulOf(newFactors...)
	case *Pow:
		return PowOf(trigSimplifyExpr(v.base), v.exp)
	case *Func:
		return (&Func{kind: v.kind, arg: trigSimplifyExpr(v.arg), base: v.base}).Simplify()
	}
	return e
}

type trigSquare struct {
	kind  FuncKind
	arg   Expr
	coeff *Num
	idx   int
}

// squaredTrig matches c*f(u)^2 for a trig function f.
func squaredTrig(t Expr) (FuncKind, Expr, *Num, bool) {
	coeff, inner := extractCoefficient(t)
	p, ok := inner.(*Pow)
	if !ok || !isNumEqual(p.exp, 2) {
		return 0, nil, nil, false
	}
	fn, ok := p.base.(*Func)
	if !ok || !fn.kind.isTrig() {
		return 0, nil, nil, false
	}
	return fn.kind, fn.arg, coeff, true
}

func trigFindPythagorean(e Expr) Expr {
	add, ok := e.(*Add)
	if !ok {
		return e
	}
	var squares []trigSquare
	constIdx := -1
	var k *Num
	for idx, t := range add.terms {
		if n, ok := t.(*Num); ok {
			constIdx, k = idx, n
			continue
		}
		if kind, arg, coeff, ok := squaredTrig(t); ok {
			squares = append(squares, trigSquare{kind: kind, arg: arg, coeff: coeff, idx: idx})
		}
	}
	without := func(skip ...int) []Expr {
		out := []Expr{}
	next:
		for idx, t := range add.terms {
			for _, s := range skip {
				if idx == s {
					continue next
				}
			}
			out = append(out, t)
		}
		return out
	}

	for i := 0; i < len(squares); i++ {
		for j := i + 1; j < len(squares); j++ {
			si, sj := squares[i], squares[j]
			pair := (si.kind == FuncSin && sj.kind == FuncCos) || (si.kind == FuncCos && sj.kind == FuncSin)
			if pair && si.arg.Equal(sj.arg) && numEqual(si.coeff, sj.coeff) {
				return AddOf(append(without(si.idx, sj.idx), si.coeff)...)
			}
		}
	}
	if constIdx < 0 {
		return e
	}
	for _, s := range squares {
		var kind FuncKind
		var coeff *Num
		switch {
		case s.kind == FuncSin && numEqual(s.coeff, numNeg(k)):
			kind, coeff = FuncCos, k
		case s.kind == FuncCos && numEqual(s.coeff, numNeg(k)):
			kind, coeff = FuncSin, k
		case s.kind == FuncTan && numEqual(s.coeff, k):
			kind, coeff = FuncSec, k
		case s.kind == FuncCot && numEqual(s.coeff, k):
			kind, coeff = FuncCsc, k
		case s.kind == FuncSec && numEqual(s.coeff, numNeg(k)):
			kind, coeff = FuncTan, s.coeff
		case s.kind == FuncCsc && numEqual(s.coeff, numNeg(k)):
			kind, coeff = FuncCot, s.coeff
		default:
			continue
		}
		replaced := MulOf(coeff, PowOf(funcOf(kind, s.arg).Simplify(), N(2)))
		return AddOf(append(without(constIdx, s.idx), replaced)...)
	}
	return e
}

// DeepSimplify applies repeated simplification+trig passes until stable.
func DeepSimplify(e Expr) Expr {
	prev := ""
	curr := e.Simplify()
	for i := 0; i < 10; i++ {
		str := curr.String()
		if str == prev {
			break
		}
		prev = str
		curr = TrigSimplify(curr)
	}
	return curr
}

// expandMultipleAngle rewrites sin(n*u) and cos(n*u) for integer n in 2..8
// in terms of sin(u) and cos(u).
func expandMultipleAngle(e Expr) Expr {
	switch v := e.(type) {
	case *Add:
		ts := make([]Expr, len(v.terms))
		for i, t := range v.terms {
			ts[i] = expandMultipleAngle(t)
		}
		return AddOf(ts...)
	case *Mul:
		fs := make([]Expr, len(v.factors))
		for i, f := range v.factors {
			fs[i] = expandMultipleAngle(f)
		}
		return MulOf(fs...)
	case *Pow:
		return PowOf(expandMultipleAngle(v.base), v.exp)
	case *Func:
		if v.kind != FuncSin && v.kind != FuncCos {
			return e
		}
		c, u := extractCoefficient(v.arg)
		if !c.IsInteger() || c.re < 2 || c.re > 8 {
			return e
		}
		return multipleAngle(v.kind, int(c.re), u)
	}
	return e
}

func multipleAngle(kind FuncKind, n int, u Expr) Expr {
	if n == 1 {
		return funcOf(kind, u).Simplify()
	}
	s1, c1 := SinOf(u), CosOf(u)
	sn, cn := multipleAngle(FuncSin, n-1, u), multipleAngle(FuncCos, n-1, u)
	if kind == FuncSin {
		return Expand(AddOf(MulOf(s1, cn), MulOf(c1, sn)))
	}
	return Expand(subtract(MulOf(c1, cn), MulOf(s1, sn)))
}
