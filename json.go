package symcalc

import (
	"encoding/json"
	"fmt"
	"strconv"
)

// ============================================================
// JSON codec
// ============================================================

// ToJSON encodes e as a tree of {"type": ...} objects.
func ToJSON(e Expr) (string, error) {
	b, err := json.Marshal(e.toJSON())
	return string(b), err
}

// ToMap returns the object form of e, ready to embed in a larger document.
func ToMap(e Expr) map[string]interface{} { return e.toJSON() }

// ParseJSON decodes the text produced by ToJSON.
func ParseJSON(data []byte) (Expr, error) {
	var m map[string]interface{}
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidExpr, err)
	}
	return FromJSON(m)
}

// node is one decoded object; its accessors report errors prefixed with the
// node type.
type node struct {
	typ  string
	data map[string]interface{}
}

func (n node) errorf(format string, args ...interface{}) error {
	return fmt.Errorf("%s: %s: %w", n.typ, fmt.Sprintf(format, args...), ErrInvalidExpr)
}

func (n node) expr(field string) (Expr, error) {
	v, ok := n.data[field]
	if !ok {
		return nil, n.errorf("missing %q", field)
	}
	m, ok := v.(map[string]interface{})
	if !ok {
		return nil, n.errorf("%q must be an object", field)
	}
	e, err := FromJSON(m)
	if err != nil {
		return nil, fmt.Errorf("%s: %s: %w", n.typ, field, err)
	}
	return e, nil
}

// optionalExpr returns nil when field is absent.
func (n node) optionalExpr(field string) (Expr, error) {
	if _, ok := n.data[field]; !ok {
		return nil, nil
	}
	return n.expr(field)
}

func (n node) exprs(field string) ([]Expr, error) {
	v, ok := n.data[field]
	if !ok {
		return nil, n.errorf("missing %q", field)
	}
	var raw []interface{}
	switch arr := v.(type) {
	case []interface{}:
		raw = arr
	case []map[string]interface{}:
		// as built by ToMap
		for _, m := range arr {
			raw = append(raw, m)
		}
	default:
		return nil, n.errorf("%q must be an array", field)
	}
	out := make([]Expr, len(raw))
	for i, it := range raw {
		m, ok := it.(map[string]interface{})
		if !ok {
			return nil, n.errorf("%q[%d] must be an object", field, i)
		}
		e, err := FromJSON(m)
		if err != nil {
			return nil, fmt.Errorf("%s: %s[%d]: %w", n.typ, field, i, err)
		}
		out[i] = e
	}
	return out, nil
}

func (n node) str(field string) (string, error) {
	v, ok := n.data[field]
	if !ok {
		return "", n.errorf("missing %q", field)
	}
	s, ok := v.(string)
	if !ok || s == "" {
		return "", n.errorf("%q must be a non-empty string", field)
	}
	return s, nil
}

func (n node) integer(field string, def int) (int, error) {
	v, ok := n.data[field]
	if !ok {
		return def, nil
	}
	switch x := v.(type) {
	case float64:
		return int(x), nil
	case int:
		return x, nil
	}
	return 0, n.errorf("%q must be a number", field)
}

// number accepts the string forms of ParseNum as well as plain JSON numbers.
func (n node) number(field string) (*Num, error) {
	v, ok := n.data[field]
	if !ok {
		return nil, n.errorf("missing %q", field)
	}
	switch x := v.(type) {
	case float64:
		return NFloat(x), nil
	case int:
		return N(int64(x)), nil
	case string:
		num, err := ParseNum(x)
		if err != nil {
			return nil, n.errorf("%v", err)
		}
		return num, nil
	}
	return nil, n.errorf("%q must be a number or numeric string", field)
}

// FromJSON decodes the object form of an expression. Decoded nodes are
// simplified as if built with the constructors.
func FromJSON(data map[string]interface{}) (Expr, error) {
	if data == nil {
		return nil, fmt.Errorf("expression must be an object: %w", ErrInvalidExpr)
	}
	typ, ok := data["type"].(string)
	if !ok || typ == "" {
		return nil, fmt.Errorf("field 'type' must be a non-empty string: %w", ErrInvalidExpr)
	}
	n := node{typ: typ, data: data}

	switch typ {
	case "num":
		re, err := n.number("value")
		if err != nil {
			return nil, err
		}
		if _, ok := data["im"]; !ok {
			return re, nil
		}
		im, err := n.number("im")
		if err != nil {
			return nil, err
		}
		return NComplex(re.re, im.re), nil

	case "sym":
		name, err := n.str("name")
		if err != nil {
			return nil, err
		}
		return S(name), nil

	case "const":
		name, err := n.str("name")
		if err != nil {
			return nil, err
		}
		c, ok := ConstNamed(name)
		if !ok {
			return nil, n.errorf("unknown constant %q", name)
		}
		return c, nil

	case "add":
		terms, err := n.exprs("terms")
		if err != nil {
			return nil, err
		}
		return AddOf(terms...), nil

	case "mul":
		factors, err := n.exprs("factors")
		if err != nil {
			return nil, err
		}
		return MulOf(factors...), nil

	case "pow":
		base, err := n.expr("base")
		if err != nil {
			return nil, err
		}
		exp, err := n.expr("exp")
		if err != nil {
			return nil, err
		}
		return PowOf(base, exp), nil

	case "func":
		name, err := n.str("name")
		if err != nil {
			return nil, err
		}
		kind, ok := FuncKindByName(name)
		if !ok {
			return nil, n.errorf("unknown function %q", name)
		}
		arg, err := n.expr("arg")
		if err != nil {
			return nil, err
		}
		if kind == FuncLog {
			base, err := n.optionalExpr("base")
			if err != nil {
				return nil, err
			}
			if base == nil {
				base = N(10)
			}
			return LogOf(base, arg), nil
		}
		return FuncOf(kind, arg), nil

	case "derivative":
		inner, err := n.expr("expr")
		if err != nil {
			return nil, err
		}
		v, err := n.str("var")
		if err != nil {
			return nil, err
		}
		order, err := n.integer("order", 1)
		if err != nil {
			return nil, err
		}
		if order < 1 {
			return nil, n.errorf("order must be at least 1, got %d", order)
		}
		d := DerivativeOf(inner, v, order)
		if fn, ok := data["function"].(string); ok && fn != "" {
			d = d.WithFunction(fn)
		}
		at, err := n.optionalExpr("at")
		if err != nil {
			return nil, err
		}
		if at != nil {
			d = d.At(at)
		}
		return d, nil

	case "integral":
		inner, err := n.expr("expr")
		if err != nil {
			return nil, err
		}
		v, err := n.str("var")
		if err != nil {
			return nil, err
		}
		lower, err := n.optionalExpr("lower")
		if err != nil {
			return nil, err
		}
		upper, err := n.optionalExpr("upper")
		if err != nil {
			return nil, err
		}
		if (lower == nil) != (upper == nil) {
			return nil, n.errorf("lower and upper must be given together")
		}
		if lower != nil {
			return DefiniteIntegralOf(inner, v, lower, upper), nil
		}
		in := IntegralOf(inner, v)
		if c, ok := data["constant"].(bool); ok && !c {
			in = in.WithoutConstant()
		}
		return in, nil

	case "limit":
		inner, err := n.expr("expr")
		if err != nil {
			return nil, err
		}
		v, err := n.str("var")
		if err != nil {
			return nil, err
		}
		point, err := n.expr("point")
		if err != nil {
			return nil, err
		}
		return LimitOf(inner, v, point), nil

	case "vector":
		elems, err := n.exprs("elems")
		if err != nil {
			return nil, err
		}
		return VectorOf(elems...), nil
	}
	return nil, fmt.Errorf("unknown expression type %s: %w", strconv.Quote(typ), ErrInvalidExpr)
}
