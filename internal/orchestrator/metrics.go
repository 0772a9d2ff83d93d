package orchestrator

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// metrics holds the Prometheus instrumentation described in
// SPEC_FULL.md §4.5.1, grounded on
// jinterlante1206-AleutianLocal's services/code_buddy/cancel/metrics.go
// (promauto-registered CounterVec/HistogramVec pairs per operation).
// These are ambient observability only: nothing in the orchestrator's
// API surface reads them back.
type metrics struct {
	duration *prometheus.HistogramVec
	calls    *prometheus.CounterVec
}

var defaultMetrics = newMetrics()

func newMetrics() *metrics {
	return &metrics{
		duration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "codekg",
				Subsystem: "orchestrator",
				Name:      "operation_duration_seconds",
				Help:      "Duration of build/query/pack operations.",
				Buckets:   []float64{0.001, 0.01, 0.1, 0.5, 1, 5, 30, 120},
			},
			[]string{"operation"},
		),
		calls: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "codekg",
				Subsystem: "orchestrator",
				Name:      "operation_total",
				Help:      "Total build/query/pack operations by outcome.",
			},
			[]string{"operation", "outcome"},
		),
	}
}

func (m *metrics) observe(operation string, start time.Time, err error) {
	m.duration.WithLabelValues(operation).Observe(time.Since(start).Seconds())
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	m.calls.WithLabelValues(operation, outcome).Inc()
}
