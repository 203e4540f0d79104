package symcalc

import (
	"fmt"
	"math"
	"math/cmplx"
	"strconv"
	"strings"
)

// ============================================================
// Num: real+imaginary float pair with infinity/undefined sentinels
// ============================================================

// epsilon is the snapping tolerance: arithmetic results within epsilon of an
// integer become that integer, and printing treats values within epsilon of
// p/q (q <= maxDenominator) as that fraction.
const (
	epsilon        = 1e-9
	maxDenominator = 1000
)

type Num struct{ re, im float64 }

func N(n int64) *Num { return &Num{re: float64(n)} }

// F returns p/q. A zero denominator yields Undefined rather than a panic.
func F(p, q int64) *Num {
	if q == 0 {
		return Undefined()
	}
	return NFloat(float64(p) / float64(q))
}

func NFloat(f float64) *Num        { return newNum(f, 0) }
func NComplex(re, im float64) *Num { return newNum(re, im) }
func Inf() *Num                    { return &Num{re: math.Inf(1)} }
func NegInf() *Num                 { return &Num{re: math.Inf(-1)} }
func Undefined() *Num              { return &Num{re: math.NaN()} }

func newNum(re, im float64) *Num {
	if math.IsNaN(re) || math.IsNaN(im) {
		return Undefined()
	}
	return &Num{re: snapFloat(re), im: snapFloat(im)}
}

func snapFloat(f float64) float64 {
	if math.IsInf(f, 0) {
		return f
	}
	r := math.Round(f)
	tol := epsilon * math.Max(1, math.Abs(f))
	if tol < 0.25 && math.Abs(f-r) < tol {
		if r == 0 {
			return 0
		}
		return r
	}
	return f
}

func (n *Num) Simplify() Expr        { return n }
func (n *Num) Sub(string, Expr) Expr { return n }
func (n *Num) Eval() (*Num, bool)    { return n, true }
func (n *Num) Equal(other Expr) bool { o, ok := other.(*Num); return ok && numEqual(n, o) }
func (n *Num) exprType() string      { return "num" }
func (n *Num) Float64() float64      { return n.re }
func (n *Num) Real() float64         { return n.re }
func (n *Num) Imag() float64         { return n.im }
func (n *Num) IsReal() bool          { return n.im == 0 }
func (n *Num) IsZero() bool          { return n.re == 0 && n.im == 0 }
func (n *Num) IsOne() bool           { return n.re == 1 && n.im == 0 }
func (n *Num) IsNegOne() bool        { return n.re == -1 && n.im == 0 }
func (n *Num) IsUndefined() bool     { return math.IsNaN(n.re) || math.IsNaN(n.im) }
func (n *Num) IsInf() bool           { return n.im == 0 && math.IsInf(n.re, 0) }
func (n *Num) IsPosInf() bool        { return n.im == 0 && math.IsInf(n.re, 1) }
func (n *Num) IsNegInf() bool        { return n.im == 0 && math.IsInf(n.re, -1) }
func (n *Num) IsPositive() bool      { return n.im == 0 && n.re > 0 }
func (n *Num) IsNegative() bool      { return n.im == 0 && n.re < 0 }

func (n *Num) IsFinite() bool {
	return !n.IsUndefined() && !math.IsInf(n.re, 0) && !math.IsInf(n.im, 0)
}

func (n *Num) IsInteger() bool {
	return n.IsReal() && n.IsFinite() && n.re == math.Trunc(n.re)
}

func (n *Num) Int64() int64 { return int64(n.re) }

// Ratio reports n as p/q when it is a real value within epsilon of a fraction
// with a denominator of at most maxDenominator.
func (n *Num) Ratio() (p, q int64, ok bool) {
	if !n.IsReal() || !n.IsFinite() {
		return 0, 0, false
	}
	return ratioOf(n.re, maxDenominator)
}

func ratioOf(f float64, maxQ int64) (p, q int64, ok bool) {
	if math.Abs(f) > 1e15 {
		return 0, 0, false
	}
	tol := epsilon * math.Max(1, math.Abs(f))
	for q = 1; q <= maxQ; q++ {
		pf := math.Round(f * float64(q))
		if math.Abs(f-pf/float64(q)) < tol {
			return int64(pf), q, true
		}
	}
	return 0, 0, false
}

func formatReal(f float64) string {
	switch {
	case math.IsInf(f, 1):
		return "Infinity"
	case math.IsInf(f, -1):
		return "-Infinity"
	}
	if p, q, ok := ratioOf(f, maxDenominator); ok {
		if q == 1 {
			return strconv.FormatInt(p, 10)
		}
		return fmt.Sprintf("%d/%d", p, q)
	}
	return strconv.FormatFloat(f, 'g', -1, 64)
}

func (n *Num) String() string {
	if n.IsUndefined() {
		return "undefined"
	}
	if n.im == 0 {
		return formatReal(n.re)
	}
	imag := formatReal(math.Abs(n.im)) + "i"
	if n.re == 0 {
		if n.im < 0 {
			return "-" + imag
		}
		return imag
	}
	sign := " + "
	if n.im < 0 {
		sign = " - "
	}
	return formatReal(n.re) + sign + imag
}

func latexReal(f float64) string {
	switch {
	case math.IsInf(f, 1):
		return "\\infty"
	case math.IsInf(f, -1):
		return "-\\infty"
	}
	p, q, ok := ratioOf(f, maxDenominator)
	if !ok {
		return strconv.FormatFloat(f, 'g', -1, 64)
	}
	if q == 1 {
		return strconv.FormatInt(p, 10)
	}
	sign := ""
	if p < 0 {
		sign = "-"
		p = -p
	}
	return fmt.Sprintf("%s\\frac{%d}{%d}", sign, p, q)
}

func (n *Num) LaTeX() string {
	if n.IsUndefined() {
		return "\\text{undefined}"
	}
	if n.im == 0 {
		return latexReal(n.re)
	}
	imag := latexReal(math.Abs(n.im)) + "i"
	if n.re == 0 {
		if n.im < 0 {
			return "-" + imag
		}
		return imag
	}
	sign := " + "
	if n.im < 0 {
		sign = " - "
	}
	return latexReal(n.re) + sign + imag
}

func (n *Num) toJSON() map[string]interface{} {
	m := map[string]interface{}{"type": "num", "value": formatReal(n.re)}
	if n.IsUndefined() {
		m["value"] = "undefined"
	} else if n.im != 0 {
		m["im"] = formatReal(n.im)
	}
	return m
}

// ParseNum reads the textual forms produced by Num.String for real values:
// integers, p/q fractions, decimals, "Infinity", "-Infinity" and "undefined".
func ParseNum(s string) (*Num, error) {
	s = strings.TrimSpace(s)
	switch strings.ToLower(s) {
	case "undefined", "nan":
		return Undefined(), nil
	case "infinity", "+infinity", "inf", "oo":
		return Inf(), nil
	case "-infinity", "-inf", "-oo":
		return NegInf(), nil
	}
	if p, q, found := strings.Cut(s, "/"); found {
		pv, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return nil, fmt.Errorf("invalid numerator %q: %w", p, err)
		}
		qv, err := strconv.ParseFloat(strings.TrimSpace(q), 64)
		if err != nil {
			return nil, fmt.Errorf("invalid denominator %q: %w", q, err)
		}
		if qv == 0 {
			return Undefined(), nil
		}
		return NFloat(pv / qv), nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid number %q: %w", s, err)
	}
	return NFloat(v), nil
}

func (n *Num) complex() complex128 { return complex(n.re, n.im) }

func fromComplex(c complex128) *Num { return NComplex(real(c), imag(c)) }

func numAdd(a, b *Num) *Num { return NComplex(a.re+b.re, a.im+b.im) }
func numNeg(a *Num) *Num    { return NComplex(-a.re, -a.im) }

func numMul(a, b *Num) *Num {
	if a.im == 0 && b.im == 0 {
		return NFloat(a.re * b.re)
	}
	return fromComplex(a.complex() * b.complex())
}

// numRecip maps 0 to Undefined and ±Infinity to 0.
func numRecip(a *Num) *Num {
	switch {
	case a.IsUndefined() || a.IsZero():
		return Undefined()
	case a.IsInf():
		return N(0)
	case a.im == 0:
		return NFloat(1 / a.re)
	}
	return fromComplex(1 / a.complex())
}

func numDiv(a, b *Num) *Num { return numMul(a, numRecip(b)) }

func numAbs(a *Num) *Num {
	if a.im == 0 {
		return NFloat(math.Abs(a.re))
	}
	return NFloat(cmplx.Abs(a.complex()))
}

// numPow keeps real arithmetic whenever the result is real. 0^0 and 0^-k are
// Undefined.
func numPow(a, b *Num) *Num {
	if a.IsUndefined() || b.IsUndefined() {
		return Undefined()
	}
	if a.IsZero() {
		if b.IsReal() && b.re > 0 {
			return N(0)
		}
		return Undefined()
	}
	if a.IsReal() && b.IsReal() {
		if a.re > 0 || b.re == math.Trunc(b.re) || math.IsInf(a.re, 0) {
			return NFloat(math.Pow(a.re, b.re))
		}
	}
	return fromComplex(cmplx.Pow(a.complex(), b.complex()))
}

func numCmp(a, b *Num) int {
	switch {
	case a.re < b.re:
		return -1
	case a.re > b.re:
		return 1
	}
	return 0
}

func numEqual(a, b *Num) bool {
	if a.IsUndefined() || b.IsUndefined() {
		return a.IsUndefined() && b.IsUndefined()
	}
	if a.IsInf() || b.IsInf() {
		return a.re == b.re && a.im == b.im
	}
	tol := epsilon * math.Max(1, math.Max(cmplx.Abs(a.complex()), cmplx.Abs(b.complex())))
	return math.Abs(a.re-b.re) <= tol && math.Abs(a.im-b.im) <= tol
}

func gcdInt(a, b int64) int64 {
	if a < 0 {
		a = -a
	}
	if b < 0 {
		b = -b
	}
	for b != 0 {
		a, b = b, a%b
	}
	return a
}
