package telemetry

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// PrometheusRecorder implements MetricsRecorder on top of a prometheus
// registry. Operations become the "operation" label; outcomes the "status"
// label.
type PrometheusRecorder struct {
	durations *prometheus.HistogramVec
	results   *prometheus.CounterVec
}

// NewPrometheusRecorder registers the validation metrics with the supplied
// registry. A nil registry allocates a private one.
func NewPrometheusRecorder(registry *prometheus.Registry) *PrometheusRecorder {
	if registry == nil {
		registry = prometheus.NewRegistry()
	}
	r := &PrometheusRecorder{
		durations: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "sampleval",
			Name:      "operation_duration_seconds",
			Help:      "Duration of validation operations and external service calls.",
			Buckets:   []float64{0.005, 0.025, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		}, []string{"operation", "status"}),
		results: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "sampleval",
			Name:      "operation_results_total",
			Help:      "Count of validation operation outcomes.",
		}, []string{"operation", "status"}),
	}
	registry.MustRegister(r.durations, r.results)
	return r
}

// Observe implements MetricsRecorder.
func (r *PrometheusRecorder) Observe(_ context.Context, operation string, success bool, duration time.Duration) {
	if operation == "" {
		return
	}
	status := "error"
	if success {
		status = "success"
	}
	r.durations.WithLabelValues(operation, status).Observe(duration.Seconds())
	r.results.WithLabelValues(operation, status).Inc()
}
