// Package telemetry exports engine and tool-server metrics to Prometheus.
package telemetry

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/njchilds90/symcalc"
)

// Recorder counts solving techniques and tool calls. It implements
// symcalc.TechniqueRecorder and is safe for concurrent use.
type Recorder struct {
	techniques *prometheus.CounterVec
	calls      *prometheus.CounterVec
	duration   *prometheus.HistogramVec
	steps      prometheus.Histogram
}

// NewRecorder registers the metrics on reg.
func NewRecorder(reg prometheus.Registerer) *Recorder {
	f := promauto.With(reg)
	return &Recorder{
		// techniques counts every technique that contributed to a result
		techniques: f.NewCounterVec(prometheus.CounterOpts{
			Name: "symcalc_techniques_total",
			Help: "Solving techniques used in successful derivations",
		}, []string{"technique"}),

		calls: f.NewCounterVec(prometheus.CounterOpts{
			Name: "symcalc_tool_calls_total",
			Help: "Tool calls by tool and result",
		}, []string{"tool", "result"}),

		duration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "symcalc_tool_duration_seconds",
			Help:    "Tool call duration in seconds",
			Buckets: prometheus.ExponentialBuckets(0.0001, 2, 14), // 0.1ms to ~800ms
		}, []string{"tool"}),

		steps: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "symcalc_trace_steps",
			Help:    "Number of work steps per tool call",
			Buckets: []float64{1, 5, 10, 25, 50, 100, 250},
		}),
	}
}

func (r *Recorder) RecordTechnique(technique string) {
	r.techniques.WithLabelValues(technique).Inc()
}

// Result labels for ObserveCall.
const (
	ResultOK       = "ok"
	ResultUnsolved = "unsolved"
	ResultError    = "error"
)

// Outcome classifies a tool response for the result label.
func Outcome(resp symcalc.ToolResponse) string {
	switch {
	case resp.Error != "":
		return ResultError
	case len(resp.Failures) > 0:
		return ResultUnsolved
	}
	return ResultOK
}

// ObserveCall records one finished tool call.
func (r *Recorder) ObserveCall(tool, result string, steps int, took time.Duration) {
	r.calls.WithLabelValues(tool, result).Inc()
	r.duration.WithLabelValues(tool).Observe(took.Seconds())
	r.steps.Observe(float64(steps))
}
