// Package metrics exposes Prometheus collectors for the channel layer.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Registry holds the application-specific Prometheus collectors.
	Registry = prometheus.NewRegistry()

	httpInFlight = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "channel_layer",
			Subsystem: "http",
			Name:      "inflight_requests",
			Help:      "Current number of in-flight HTTP requests.",
		},
	)

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "channel_layer",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests handled.",
		},
		[]string{"method", "path", "status"},
	)

	httpDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "channel_layer",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Duration of HTTP requests.",
			Buckets:   prometheus.ExponentialBuckets(0.005, 2, 10), // 5ms to ~5s
		},
		[]string{"method", "path"},
	)

	channelRegistrations = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "channel_layer",
			Subsystem: "registry",
			Name:      "registrations_total",
			Help:      "Total number of channel registration attempts.",
		},
		[]string{"status"},
	)

	transactionBuilds = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "channel_layer",
			Subsystem: "payment",
			Name:      "transaction_builds_total",
			Help:      "Total number of payment transaction builds.",
		},
		[]string{"status"},
	)
)

func init() {
	Registry.MustRegister(
		httpInFlight,
		httpRequests,
		httpDuration,
		channelRegistrations,
		transactionBuilds,
	)
}

// Handler serves the collected metrics.
func Handler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{})
}

// IncrementInFlight tracks a request entering the stack.
func IncrementInFlight() { httpInFlight.Inc() }

// DecrementInFlight tracks a request leaving the stack.
func DecrementInFlight() { httpInFlight.Dec() }

// RecordHTTPRequest records one handled request.
func RecordHTTPRequest(method, path, status string, duration time.Duration) {
	httpRequests.WithLabelValues(method, path, status).Inc()
	httpDuration.WithLabelValues(method, path).Observe(duration.Seconds())
}

// RecordRegistration records a registration attempt outcome.
func RecordRegistration(status string) {
	channelRegistrations.WithLabelValues(status).Inc()
}

// RecordTransactionBuild records a transaction build outcome.
func RecordTransactionBuild(status string) {
	transactionBuilds.WithLabelValues(status).Inc()
}
