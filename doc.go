// Package symcalc is a calculus engine over symbolic expression trees.
//
// It computes exact derivatives, indefinite and definite integrals and
// limits, and records every rule it applied as an ordered list of work
// steps.
//
// Design goals:
//   - Simplification at construction: AddOf, MulOf and PowOf return
//     normalized trees, so structural equality is equality up to
//     normalization
//   - Bounded search: u-substitution, integration by parts, L'Hopital and
//     limit recursion stop at the limits in Config
//   - Failure is a value: an unsolvable derivative, integral or limit comes
//     back as the unevaluated node, with the reason on the Context
//   - JSON codec and an MCP-style tool dispatcher for agent backends
//
// A Context carries one request's configuration, trace and failure log:
//
//	ctx := symcalc.NewContext()
//	x := symcalc.S("x")
//	r := symcalc.EvaluateIntegral(ctx, symcalc.IntegralOf(symcalc.MulOf(x, symcalc.ExpOf(x)), "x"), nil)
//	for _, st := range ctx.Steps() {
//		fmt.Println(st.Explanation, st.Expr)
//	}
package symcalc
