package symcalc

import (
	"fmt"
	"log/slog"
	"strconv"
)

// ============================================================
// Context: per-request engine state
// ============================================================

// Config bounds the recursive strategies. Exceeding a bound makes the
// strategy fail silently so the next one can run.
type Config struct {
	MaxUSubCount     int
	MaxByPartsCount  int
	MaxLHopitalCount int
	MaxDerivOrder    int
	MaxLimitDepth    int
	MaxCandidateSize int
}

func DefaultConfig() Config {
	return Config{
		MaxUSubCount:     3,
		MaxByPartsCount:  3,
		MaxLHopitalCount: 3,
		MaxDerivOrder:    7,
		MaxLimitDepth:    48,
		MaxCandidateSize: 40,
	}
}

// TechniqueRecorder receives the name of every technique that contributed
// to a successful result.
type TechniqueRecorder interface {
	RecordTechnique(technique string)
}

type nopRecorder struct{}

func (nopRecorder) RecordTechnique(string) {}

// Technique names reported to a TechniqueRecorder.
const (
	TechniqueConstantRule  = "constant_rule"
	TechniquePowerRule     = "power_rule"
	TechniqueExponential   = "exponential_rule"
	TechniqueLogDiff       = "logarithmic_differentiation"
	TechniqueChainRule     = "chain_rule"
	TechniqueProductRule   = "product_rule"
	TechniqueQuotientRule  = "quotient_rule"
	TechniqueImplicit      = "implicit_differentiation"
	TechniqueFTC           = "fundamental_theorem"
	TechniqueDirectForm    = "direct_integration"
	TechniqueTrigPower     = "trig_power_reduction"
	TechniqueUSub          = "u_substitution"
	TechniqueByParts       = "integration_by_parts"
	TechniqueCyclicParts   = "cyclic_integration_by_parts"
	TechniqueTrigSub       = "trig_substitution"
	TechniquePartialFrac   = "partial_fractions"
	TechniqueLongDivision  = "polynomial_long_division"
	TechniqueDirectSub     = "direct_substitution"
	TechniqueLHopital      = "lhopital"
	TechniqueConjugate     = "radical_conjugate"
	TechniqueLeadingTerm   = "leading_term_analysis"
	TechniqueOneSided      = "one_sided_divergence"
	TechniqueLimitClosed   = "limit_closed_form"
	TechniqueDefiniteBound = "definite_bounds"
)

// IntegrationInfo counts the recursive strategies used by one top-level
// integration. A single value is shared by the whole call tree and never
// reset by sub-calls.
type IntegrationInfo struct {
	USubCount    int
	ByPartsCount int
}

// Option configures a Context.
type Option func(*Context)

func WithConfig(cfg Config) Option { return func(c *Context) { c.cfg = cfg } }

func WithLogger(l *slog.Logger) Option {
	return func(c *Context) {
		if l != nil {
			c.logger = l
		}
	}
}

func WithRecorder(r TechniqueRecorder) Option {
	return func(c *Context) {
		if r != nil {
			c.recorder = r
		}
	}
}

// WithTrace makes the Context append to an existing trace.
func WithTrace(t *Trace) Option {
	return func(c *Context) {
		if t != nil {
			c.trace = t
		}
	}
}

// WithImplicit registers symbols that implicitly depend on every
// differentiation variable (y in d/dx[y^2]).
func WithImplicit(names ...string) Option {
	return func(c *Context) {
		for _, n := range names {
			c.implicit[n] = true
		}
	}
}

// Context carries configuration, the trace and failure log of one request.
// It is not safe for concurrent use.
type Context struct {
	cfg        Config
	trace      *Trace
	logger     *slog.Logger
	recorder   TechniqueRecorder
	implicit   map[string]bool
	failures   []string
	techniques []string
	fresh      int
	parts      []*partsFrame
}

func NewContext(opts ...Option) *Context {
	c := &Context{
		cfg:      DefaultConfig(),
		trace:    NewTrace(),
		logger:   slog.New(slog.DiscardHandler),
		recorder: nopRecorder{},
		implicit: map[string]bool{},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Context) Config() Config       { return c.cfg }
func (c *Context) Trace() *Trace        { return c.trace }
func (c *Context) Logger() *slog.Logger { return c.logger }
func (c *Context) Steps() []Step        { return c.trace.Steps() }

// Failures lists the structural failures recorded during the request.
func (c *Context) Failures() []string {
	out := make([]string, len(c.failures))
	copy(out, c.failures)
	return out
}

func (c *Context) step(e Expr, format string, args ...interface{}) {
	c.trace.Add(e, format, args...)
}

func (c *Context) enter(e Expr, format string, args ...interface{}) {
	c.trace.Enter(e, format, args...)
}

func (c *Context) leave() { c.trace.Return() }

func (c *Context) fail(err error) {
	c.failures = append(c.failures, err.Error())
	c.logger.Debug("engine failure", "error", err)
}

func (c *Context) use(technique string) {
	c.techniques = append(c.techniques, technique)
}

// ctxCheckpoint extends a trace checkpoint with the pending technique log.
type ctxCheckpoint struct {
	trace      Checkpoint
	techniques int
}

func (c *Context) checkpoint() ctxCheckpoint {
	return ctxCheckpoint{trace: c.trace.Checkpoint(), techniques: len(c.techniques)}
}

func (c *Context) rollback(cp ctxCheckpoint) {
	c.trace.Rollback(cp.trace)
	if cp.techniques < len(c.techniques) {
		c.techniques = c.techniques[:cp.techniques]
	}
}

// flush hands the techniques of a finished request to the recorder.
func (c *Context) flush() {
	for _, t := range c.techniques {
		c.recorder.RecordTechnique(t)
	}
	c.techniques = c.techniques[:0]
}

// freshVar returns a symbol name absent from every expression in avoid.
func (c *Context) freshVar(prefix string, avoid ...Expr) string {
	for {
		c.fresh++
		name := prefix + strconv.Itoa(c.fresh)
		clash := false
		for _, e := range avoid {
			if DependsOn(e, name) {
				clash = true
				break
			}
		}
		if !clash {
			return name
		}
	}
}

func (c *Context) debug(msg string, args ...any) {
	c.logger.Debug(msg, args...)
}

func (c *Context) String() string {
	return fmt.Sprintf("Context{steps: %d, failures: %d}", c.trace.Len(), len(c.failures))
}
