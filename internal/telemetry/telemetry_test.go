package telemetry

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/njchilds90/symcalc"
)

func TestRecorder_Techniques(t *testing.T) {
	reg := prometheus.NewRegistry()
	rec := NewRecorder(reg)

	ctx := symcalc.NewContext(symcalc.WithRecorder(rec))
	x := symcalc.S("x")
	_, ok := symcalc.Antiderivative(ctx, symcalc.MulOf(x, symcalc.ExpOf(x)), "x", nil)
	require.True(t, ok)

	assert.Equal(t, 1.0, testutil.ToFloat64(rec.techniques.WithLabelValues(symcalc.TechniqueByParts)))
}

func TestRecorder_ObserveCall(t *testing.T) {
	reg := prometheus.NewRegistry()
	rec := NewRecorder(reg)

	rec.ObserveCall("diff", ResultOK, 4, 2*time.Millisecond)
	rec.ObserveCall("diff", ResultOK, 3, time.Millisecond)
	rec.ObserveCall("limit", ResultUnsolved, 9, time.Millisecond)

	assert.Equal(t, 2.0, testutil.ToFloat64(rec.calls.WithLabelValues("diff", ResultOK)))
	assert.Equal(t, 1.0, testutil.ToFloat64(rec.calls.WithLabelValues("limit", ResultUnsolved)))
	assert.Equal(t, 2, testutil.CollectAndCount(rec.duration))
}

func TestNewRecorder_DuplicateRegistrationPanics(t *testing.T) {
	reg := prometheus.NewRegistry()
	NewRecorder(reg)
	assert.Panics(t, func() { NewRecorder(reg) })
}

func TestOutcome(t *testing.T) {
	assert.Equal(t, ResultOK, Outcome(symcalc.ToolResponse{String: "1"}))
	assert.Equal(t, ResultUnsolved, Outcome(symcalc.ToolResponse{Failures: []string{"no closed form found"}}))
	assert.Equal(t, ResultError, Outcome(symcalc.ToolResponse{Error: "unknown tool", Failures: []string{"x"}}))
}
