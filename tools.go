package symcalc

import (
	"encoding/json"
	"fmt"
	"sort"
)

// ============================================================
// MCP tool interface
// ============================================================

type ToolRequest struct {
	Tool   string                 `json:"tool" yaml:"tool"`
	Params map[string]interface{} `json:"params" yaml:"params"`
}

// ToolResponse carries the result in three renderings plus the derivation
// steps and any failures the engine recorded while producing it.
type ToolResponse struct {
	Result   interface{} `json:"result,omitempty" yaml:"result,omitempty"`
	LaTeX    string      `json:"latex,omitempty" yaml:"latex,omitempty"`
	String   string      `json:"string,omitempty" yaml:"string,omitempty"`
	Steps    []Step      `json:"steps,omitempty" yaml:"steps,omitempty"`
	Failures []string    `json:"failures,omitempty" yaml:"failures,omitempty"`
	Error    string      `json:"error,omitempty" yaml:"error,omitempty"`
}

// params reads typed values out of a request.
type params map[string]interface{}

func (p params) expr(key string) (Expr, error) {
	v, ok := p[key]
	if !ok {
		return nil, fmt.Errorf("missing param: %s", key)
	}
	m, ok := v.(map[string]interface{})
	if !ok {
		return nil, fmt.Errorf("param %s must be an expression object", key)
	}
	return FromJSON(m)
}

func (p params) str(key string) (string, error) {
	v, ok := p[key]
	if !ok {
		return "", fmt.Errorf("missing param: %s", key)
	}
	s, ok := v.(string)
	if !ok || s == "" {
		return "", fmt.Errorf("param %s must be a non-empty string", key)
	}
	return s, nil
}

func (p params) strs(key string) ([]string, error) {
	raw, ok := p[key].([]interface{})
	if !ok {
		return nil, fmt.Errorf("param %s must be an array of strings", key)
	}
	out := make([]string, len(raw))
	for i, r := range raw {
		s, ok := r.(string)
		if !ok {
			return nil, fmt.Errorf("param %s[%d] must be a string", key, i)
		}
		out[i] = s
	}
	return out, nil
}

func (p params) exprList(key string) ([]Expr, error) {
	raw, ok := p[key].([]interface{})
	if !ok {
		return nil, fmt.Errorf("param %s must be an array of expressions", key)
	}
	out := make([]Expr, len(raw))
	for i, r := range raw {
		m, ok := r.(map[string]interface{})
		if !ok {
			return nil, fmt.Errorf("param %s[%d] must be an expression object", key, i)
		}
		e, err := FromJSON(m)
		if err != nil {
			return nil, fmt.Errorf("param %s[%d]: %w", key, i, err)
		}
		out[i] = e
	}
	return out, nil
}

func (p params) integer(key string, def int) (int, error) {
	v, ok := p[key]
	if !ok {
		return def, nil
	}
	switch n := v.(type) {
	case float64:
		return int(n), nil
	case int:
		return n, nil
	}
	return 0, fmt.Errorf("param %s must be an integer", key)
}

func (p params) equations(key string) ([]*Equation, error) {
	raw, ok := p[key].([]interface{})
	if !ok {
		return nil, fmt.Errorf("param %s must be an array of {lhs, rhs} objects", key)
	}
	out := make([]*Equation, len(raw))
	for i, r := range raw {
		m, ok := r.(map[string]interface{})
		if !ok {
			return nil, fmt.Errorf("param %s[%d] must be an object", key, i)
		}
		side := params(m)
		lhs, err := side.expr("lhs")
		if err != nil {
			return nil, fmt.Errorf("%s[%d]: %w", key, i, err)
		}
		rhs, err := side.expr("rhs")
		if err != nil {
			return nil, fmt.Errorf("%s[%d]: %w", key, i, err)
		}
		out[i] = Eq(lhs, rhs)
	}
	return out, nil
}

// HandleToolCall runs one tool on a fresh Context built from opts.
func HandleToolCall(req ToolRequest, opts ...Option) ToolResponse {
	ctx := NewContext(opts...)
	resp := dispatch(ctx, req)
	if resp.Error == "" {
		resp.Steps = ctx.Steps()
		resp.Failures = append(ctx.Failures(), resp.Failures...)
	}
	return resp
}

func respond(e Expr) ToolResponse {
	return ToolResponse{Result: e.toJSON(), LaTeX: e.LaTeX(), String: e.String()}
}

func respondErr(err error) ToolResponse { return ToolResponse{Error: err.Error()} }

func respondList(es []Expr) ToolResponse {
	v := VectorOf(es...)
	return ToolResponse{Result: v.toJSON(), LaTeX: v.LaTeX(), String: v.String()}
}

func respondMatrix(m *Matrix) ToolResponse {
	entries := make([][]map[string]interface{}, m.Rows())
	for i, row := range m.Entries() {
		entries[i] = make([]map[string]interface{}, len(row))
		for j, e := range row {
			entries[i][j] = e.toJSON()
		}
	}
	return ToolResponse{
		Result: map[string]interface{}{"rows": m.Rows(), "cols": m.Cols(), "entries": entries},
		LaTeX:  m.LaTeX(),
		String: m.String(),
	}
}

func dispatch(ctx *Context, req ToolRequest) ToolResponse {
	p := params(req.Params)
	// most tools take an expression and a variable
	exprVar := func() (Expr, string, error) {
		e, err := p.expr("expr")
		if err != nil {
			return nil, "", err
		}
		v, err := p.str("var")
		if err != nil {
			return nil, "", err
		}
		return e, v, nil
	}

	switch req.Tool {
	case "simplify":
		e, err := p.expr("expr")
		if err != nil {
			return respondErr(err)
		}
		return respond(DeepSimplify(e))

	case "expand":
		e, err := p.expr("expr")
		if err != nil {
			return respondErr(err)
		}
		return respond(Expand(e))

	case "factor":
		e, v, err := exprVar()
		if err != nil {
			return respondErr(err)
		}
		r := Factor(e, v)
		resp := respond(r.Expr())
		if !r.Success {
			resp.Failures = append(resp.Failures, "some factors could not be split over the rationals")
		}
		return resp

	case "apart":
		num, err := p.expr("num")
		if err != nil {
			return respondErr(err)
		}
		den, err := p.expr("denom")
		if err != nil {
			return respondErr(err)
		}
		v, err := p.str("var")
		if err != nil {
			return respondErr(err)
		}
		r, err := Apart(num, den, v)
		if err != nil {
			return respondErr(err)
		}
		return respond(r)

	case "substitute":
		e, v, err := exprVar()
		if err != nil {
			return respondErr(err)
		}
		val, err := p.expr("value")
		if err != nil {
			return respondErr(err)
		}
		return respond(Sub(e, v, val))

	case "to_latex":
		e, err := p.expr("expr")
		if err != nil {
			return respondErr(err)
		}
		return ToolResponse{Result: e.LaTeX(), LaTeX: e.LaTeX(), String: e.String()}

	case "free_symbols":
		e, err := p.expr("expr")
		if err != nil {
			return respondErr(err)
		}
		names := make([]string, 0)
		for s := range FreeSymbols(e) {
			names = append(names, s)
		}
		sort.Strings(names)
		return ToolResponse{Result: names, String: fmt.Sprint(names)}

	case "degree":
		e, v, err := exprVar()
		if err != nil {
			return respondErr(err)
		}
		d, err := PolyDegree(e, v)
		if err != nil {
			return respondErr(err)
		}
		return ToolResponse{Result: d, String: fmt.Sprint(d)}

	case "diff", "diffn", "pdiff":
		e, v, err := exprVar()
		if err != nil {
			return respondErr(err)
		}
		n, err := p.integer("n", 1)
		if err != nil {
			return respondErr(err)
		}
		return respond(Differentiate(ctx, e, v, n, req.Tool == "pdiff"))

	case "gradient":
		e, err := p.expr("expr")
		if err != nil {
			return respondErr(err)
		}
		vars, err := p.strs("vars")
		if err != nil {
			return respondErr(err)
		}
		out := make([]Expr, len(vars))
		for i, v := range vars {
			out[i] = Differentiate(ctx, e, v, 1, true)
		}
		return respondList(out)

	case "jacobian":
		exprs, err := p.exprList("exprs")
		if err != nil {
			return respondErr(err)
		}
		vars, err := p.strs("vars")
		if err != nil {
			return respondErr(err)
		}
		m := NewMatrix(len(exprs), len(vars))
		for i, e := range exprs {
			for j, v := range vars {
				m.Set(i, j, Differentiate(ctx, e, v, 1, true))
			}
		}
		return respondMatrix(m)

	case "integrate":
		e, v, err := exprVar()
		if err != nil {
			return respondErr(err)
		}
		in := IntegralOf(e, v)
		if c, ok := p["constant"].(bool); ok && !c {
			in = in.WithoutConstant()
		}
		return respond(EvaluateIntegral(ctx, in, nil))

	case "definite_integrate":
		e, v, err := exprVar()
		if err != nil {
			return respondErr(err)
		}
		lo, err := p.expr("lower")
		if err != nil {
			return respondErr(err)
		}
		hi, err := p.expr("upper")
		if err != nil {
			return respondErr(err)
		}
		r, err := DefiniteIntegrate(ctx, e, v, lo, hi, nil)
		if err != nil {
			return respond(DefiniteIntegralOf(e, v, lo, hi))
		}
		return respond(r)

	case "limit":
		e, v, err := exprVar()
		if err != nil {
			return respondErr(err)
		}
		pt, err := p.expr("point")
		if err != nil {
			return respondErr(err)
		}
		return respond(Limit(ctx, e, v, pt))

	case "evaluate":
		e, err := p.expr("expr")
		if err != nil {
			return respondErr(err)
		}
		return respond(Evaluate(ctx, e))

	case "solve_linear_system":
		eqs, err := p.equations("equations")
		if err != nil {
			return respondErr(err)
		}
		unknowns, err := p.strs("unknowns")
		if err != nil {
			return respondErr(err)
		}
		sol, err := SolveLinearSystem(eqs, unknowns)
		if err != nil {
			return respondErr(err)
		}
		out := make(map[string]interface{}, len(sol))
		vals := make([]Expr, len(unknowns))
		for i, u := range unknowns {
			out[u] = sol[u].toJSON()
			vals[i] = sol[u]
		}
		v := VectorOf(vals...)
		return ToolResponse{Result: out, LaTeX: v.LaTeX(), String: v.String()}

	case "mcp_spec":
		return ToolResponse{Result: MCPToolSpec(), String: "MCP tool specification"}
	}
	return respondErr(fmt.Errorf("%w: %s", ErrUnknownTool, req.Tool))
}

// Evaluate resolves every Derivative, Integral and LimitExpr node in e,
// innermost first.
func Evaluate(ctx *Context, e Expr) Expr {
	var eval func(Expr) Expr
	eval = func(e Expr) Expr {
		return mapExpr(e, func(n Expr) (Expr, bool) {
			switch v := n.(type) {
			case *Derivative:
				inner := *v
				inner.inner = eval(v.inner)
				return EvaluateDerivative(ctx, &inner), true
			case *Integral:
				inner := *v
				inner.inner = eval(v.inner)
				return EvaluateIntegral(ctx, &inner, nil), true
			case *LimitExpr:
				return Limit(ctx, eval(v.inner), v.varName, v.point), true
			case *Vector:
				return v.mapElems(eval), true
			}
			return nil, false
		})
	}
	return eval(e)
}

// MCPToolSpec describes every tool in the JSON schema form MCP clients read.
func MCPToolSpec() string {
	b, _ := json.MarshalIndent(map[string]interface{}{"tools": ToolSchemas()}, "", "  ")
	return string(b)
}

// ToolSchemas lists the tools HandleToolCall accepts.
func ToolSchemas() []map[string]interface{} {
	exprVar := map[string]string{"expr": "object", "var": "string"}
	return []map[string]interface{}{
		toolSchema("simplify", "Simplify an expression, including trig identities", []string{"expr"}, map[string]string{"expr": "object"}),
		toolSchema("expand", "Algebraically expand an expression", []string{"expr"}, map[string]string{"expr": "object"}),
		toolSchema("factor", "Factor a polynomial over its rational roots", []string{"expr", "var"}, exprVar),
		toolSchema("apart", "Partial fraction decomposition of num/denom", []string{"num", "denom", "var"}, map[string]string{"num": "object", "denom": "object", "var": "string"}),
		toolSchema("substitute", "Replace var with value", []string{"expr", "var", "value"}, map[string]string{"expr": "object", "var": "string", "value": "object"}),
		toolSchema("to_latex", "Render as LaTeX", []string{"expr"}, map[string]string{"expr": "object"}),
		toolSchema("free_symbols", "Names of the free symbols", []string{"expr"}, map[string]string{"expr": "object"}),
		toolSchema("degree", "Polynomial degree in var", []string{"expr", "var"}, exprVar),
		toolSchema("diff", "Derivative d/dvar with work steps", []string{"expr", "var"}, exprVar),
		toolSchema("diffn", "nth derivative, n at most 7", []string{"expr", "var", "n"}, map[string]string{"expr": "object", "var": "string", "n": "integer"}),
		toolSchema("pdiff", "Partial derivative", []string{"expr", "var"}, exprVar),
		toolSchema("gradient", "Vector of partial derivatives", []string{"expr", "vars"}, map[string]string{"expr": "object", "vars": "array"}),
		toolSchema("jacobian", "Jacobian matrix of exprs over vars", []string{"exprs", "vars"}, map[string]string{"exprs": "array", "vars": "array"}),
		toolSchema("integrate", "Indefinite integral with work steps; constant=false drops + C", []string{"expr", "var"}, map[string]string{"expr": "object", "var": "string", "constant": "boolean"}),
		toolSchema("definite_integrate", "Exact definite integral; bounds may be Infinity", []string{"expr", "var", "lower", "upper"}, map[string]string{"expr": "object", "var": "string", "lower": "object", "upper": "object"}),
		toolSchema("limit", "Limit of expr as var approaches point", []string{"expr", "var", "point"}, map[string]string{"expr": "object", "var": "string", "point": "object"}),
		toolSchema("evaluate", "Resolve derivative, integral and limit nodes", []string{"expr"}, map[string]string{"expr": "object"}),
		toolSchema("solve_linear_system", "Solve equations [{lhs, rhs}] for unknowns", []string{"equations", "unknowns"}, map[string]string{"equations": "array", "unknowns": "array"}),
		toolSchema("mcp_spec", "Return this tool schema", []string{}, map[string]string{}),
	}
}

func toolSchema(name, description string, required []string, props map[string]string) map[string]interface{} {
	properties := map[string]interface{}{}
	for k, typ := range props {
		properties[k] = map[string]interface{}{"type": typ}
	}
	return map[string]interface{}{
		"name":        name,
		"description": description,
		"inputSchema": map[string]interface{}{
			"type":       "object",
			"properties": properties,
			"required":   required,
		},
	}
}
