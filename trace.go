package symcalc

import (
	"fmt"
	"strings"
)

// ============================================================
// Trace: ordered derivation steps
// ============================================================

// Step is one line of work: the expression reached, its LaTeX rendering,
// a human-readable explanation and its nesting depth.
type Step struct {
	Expr        string `json:"expr,omitempty" yaml:"expr,omitempty"`
	LaTeX       string `json:"latex,omitempty" yaml:"latex,omitempty"`
	Explanation string `json:"explanation" yaml:"explanation"`
	Depth       int    `json:"depth" yaml:"depth"`
}

// Trace is an append-only list of steps with Enter/Return nesting.
// Speculative work takes a Checkpoint and calls Rollback when it fails, so
// the trace only ever shows strategies that succeeded.
type Trace struct {
	steps []Step
	depth int
}

// Checkpoint marks a trace position for Rollback.
type Checkpoint struct {
	steps int
	depth int
}

func NewTrace() *Trace { return &Trace{} }

// Add records a step at the current depth. e may be nil for pure prose.
func (t *Trace) Add(e Expr, format string, args ...interface{}) {
	st := Step{Explanation: fmt.Sprintf(format, args...), Depth: t.depth}
	if e != nil {
		st.Expr = e.String()
		st.LaTeX = e.LaTeX()
	}
	t.steps = append(t.steps, st)
}

// Enter records a step and nests subsequent steps under it.
func (t *Trace) Enter(e Expr, format string, args ...interface{}) {
	t.Add(e, format, args...)
	t.depth++
}

// Return closes the innermost Enter.
func (t *Trace) Return() {
	if t.depth > 0 {
		t.depth--
	}
}

func (t *Trace) Len() int   { return len(t.steps) }
func (t *Trace) Depth() int { return t.depth }

func (t *Trace) Checkpoint() Checkpoint { return Checkpoint{steps: len(t.steps), depth: t.depth} }

// Rollback discards every step recorded since cp and restores its depth.
func (t *Trace) Rollback(cp Checkpoint) {
	if cp.steps < len(t.steps) {
		t.steps = t.steps[:cp.steps]
	}
	t.depth = cp.depth
}

// Steps returns a copy of the recorded steps.
func (t *Trace) Steps() []Step {
	out := make([]Step, len(t.steps))
	copy(out, t.steps)
	return out
}

func (t *Trace) String() string {
	var sb strings.Builder
	for i, st := range t.steps {
		sb.WriteString(strings.Repeat("  ", st.Depth))
		fmt.Fprintf(&sb, "%d. %s", i+1, st.Explanation)
		if st.Expr != "" {
			sb.WriteString(": " + st.Expr)
		}
		sb.WriteByte('\n')
	}
	return sb.String()
}
