// Package metrics records client-side API call metrics.
//
// The CLI is short-lived, so instead of serving /metrics it can dump the
// registry in the node_exporter textfile format when a command finishes.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// StatusNetworkError is the status label used when no response was received.
const StatusNetworkError = "network_error"

type Metrics struct {
	registry *prometheus.Registry

	RequestsTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec
	SessionWrites   *prometheus.CounterVec
}

// New creates a Metrics instance backed by its own registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		RequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "calmora_client_requests_total",
				Help: "Total number of backend API requests",
			},
			[]string{"method", "path", "status"},
		),
		RequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "calmora_client_request_duration_seconds",
				Help:    "Duration of backend API requests in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "path"},
		),
		SessionWrites: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "calmora_client_session_writes_total",
				Help: "Session token writes by operation",
			},
			[]string{"op"},
		),
	}
}

// Registry exposes the underlying registry as a Gatherer.
func (m *Metrics) Registry() prometheus.Gatherer {
	return m.registry
}

// ObserveRequest records one API call. A zero status means the request never got a response.
func (m *Metrics) ObserveRequest(method, path string, status int, d time.Duration) {
	if m == nil {
		return
	}
	label := StatusNetworkError
	if status > 0 {
		label = strconv.Itoa(status)
	}
	m.RequestsTotal.WithLabelValues(method, path, label).Inc()
	m.RequestDuration.WithLabelValues(method, path).Observe(d.Seconds())
}

// ObserveSession records a session token write ("set" or "clear").
func (m *Metrics) ObserveSession(op string) {
	if m == nil {
		return
	}
	m.SessionWrites.WithLabelValues(op).Inc()
}

// WriteTextfile writes the registry to path atomically.
func (m *Metrics) WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, m.registry)
}
