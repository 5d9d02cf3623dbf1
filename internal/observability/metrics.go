// Package observability provides Prometheus metrics for monitoring.
package observability

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics for the application.
type Metrics struct {
	// Swap metrics
	SwapsTotal    *prometheus.CounterVec
	SwapErrors    *prometheus.CounterVec
	SwapDuration  prometheus.Histogram
	StageDuration *prometheus.HistogramVec

	// Endpoint metrics
	EndpointProbes   *prometheus.CounterVec
	EndpointAcquired *prometheus.CounterVec

	// Confirmation metrics
	Confirmations       *prometheus.CounterVec
	ConfirmationLatency prometheus.Histogram

	// Database metrics
	DBQueryErrors *prometheus.CounterVec

	// Health metrics
	LastSuccessfulSwap prometheus.Gauge
}

// NewMetrics creates a new Metrics instance with all metrics registered.
func NewMetrics(namespace string) *Metrics {
	if namespace == "" {
		namespace = "hyperbot"
	}

	return &Metrics{
		// Swap metrics
		SwapsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "swap",
			Name:      "executions_total",
			Help:      "Total number of swap executions by terminal status",
		}, []string{"status"}),
		SwapErrors: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "swap",
			Name:      "errors_total",
			Help:      "Total number of swap failures by error code",
		}, []string{"code"}),
		SwapDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "swap",
			Name:      "duration_seconds",
			Help:      "End-to-end swap execution duration",
			Buckets:   []float64{0.5, 1, 2, 5, 10, 20, 30, 60},
		}),
		StageDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "swap",
			Name:      "stage_duration_seconds",
			Help:      "Per-stage swap execution duration",
			Buckets:   prometheus.DefBuckets,
		}, []string{"stage"}),

		// Endpoint metrics
		EndpointProbes: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "rpc",
			Name:      "endpoint_probes_total",
			Help:      "Total number of endpoint health probes by result",
		}, []string{"endpoint", "result"}),
		EndpointAcquired: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "rpc",
			Name:      "endpoint_acquired_total",
			Help:      "Total number of times each endpoint was selected",
		}, []string{"endpoint"}),

		// Confirmation metrics
		Confirmations: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "confirm",
			Name:      "outcomes_total",
			Help:      "Total number of confirmation waits by outcome",
		}, []string{"outcome"}),
		ConfirmationLatency: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "confirm",
			Name:      "latency_seconds",
			Help:      "Time from submission to confirmation",
			Buckets:   []float64{0.5, 1, 2, 5, 10, 20},
		}),

		// Database metrics
		DBQueryErrors: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "database",
			Name:      "query_errors_total",
			Help:      "Total number of database query errors",
		}, []string{"database", "operation"}),

		// Health metrics
		LastSuccessfulSwap: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "health",
			Name:      "last_successful_swap_timestamp",
			Help:      "Unix timestamp of last successful swap",
		}),
	}
}

// Handler returns an HTTP handler for the /metrics endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}

// DefaultMetrics is the default metrics instance.
var DefaultMetrics = NewMetrics("")

// RecordSwap records a finished swap execution.
func RecordSwap(status string, durationSeconds float64) {
	DefaultMetrics.SwapsTotal.WithLabelValues(status).Inc()
	DefaultMetrics.SwapDuration.Observe(durationSeconds)
}

// RecordSwapSuccess stamps the last-successful-swap health gauge.
func RecordSwapSuccess() {
	DefaultMetrics.LastSuccessfulSwap.SetToCurrentTime()
}

// RecordSwapError increments the failure counter for an error code.
func RecordSwapError(code string) {
	DefaultMetrics.SwapErrors.WithLabelValues(code).Inc()
}

// RecordStage records the duration of one swap stage.
func RecordStage(stage string, durationSeconds float64) {
	DefaultMetrics.StageDuration.WithLabelValues(stage).Observe(durationSeconds)
}

// RecordEndpointProbe records an endpoint health probe result.
func RecordEndpointProbe(endpoint string, live bool) {
	result := "dead"
	if live {
		result = "live"
	}
	DefaultMetrics.EndpointProbes.WithLabelValues(endpoint, result).Inc()
}

// RecordEndpointAcquired records an endpoint selection.
func RecordEndpointAcquired(endpoint string) {
	DefaultMetrics.EndpointAcquired.WithLabelValues(endpoint).Inc()
}

// RecordConfirmation records a confirmation outcome.
func RecordConfirmation(outcome string, latencySeconds float64) {
	DefaultMetrics.Confirmations.WithLabelValues(outcome).Inc()
	if outcome == "confirmed" {
		DefaultMetrics.ConfirmationLatency.Observe(latencySeconds)
	}
}

// RecordDBError records a database query error.
func RecordDBError(database, operation string) {
	DefaultMetrics.DBQueryErrors.WithLabelValues(database, operation).Inc()
}
