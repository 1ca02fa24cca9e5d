// Package metrics exposes prometheus instrumentation for message handling.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Route labels for handled messages.
const (
	RouteDialogue = "dialogue"
	RouteList     = "list"
	RouteChat     = "chat"
	RouteAuth     = "auth"
	RouteCommand  = "command"
)

// Status labels.
const (
	StatusOK      = "ok"
	StatusError   = "error"
	StatusLimited = "rate_limited"
)

// Metrics holds the registry and collectors for one bot process.
type Metrics struct {
	registry *prometheus.Registry

	messagesTotal  *prometheus.CounterVec
	handleLatency  *prometheus.HistogramVec
	activeSessions prometheus.GaugeFunc
}

// New creates a Metrics instance. sessionCount feeds the active-sessions
// gauge and may be nil.
func New(sessionCount func() int) *Metrics {
	registry := prometheus.NewRegistry()

	m := &Metrics{registry: registry}

	m.messagesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "remo",
			Subsystem: "bot",
			Name:      "messages_total",
			Help:      "Total number of handled chat messages",
		},
		[]string{"route", "status"},
	)

	m.handleLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "remo",
			Subsystem: "bot",
			Name:      "handle_latency_seconds",
			Help:      "Message handling latency in seconds",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.5, 1, 2, 5, 10, 30},
		},
		[]string{"route"},
	)

	if sessionCount != nil {
		m.activeSessions = prometheus.NewGaugeFunc(
			prometheus.GaugeOpts{
				Namespace: "remo",
				Subsystem: "bot",
				Name:      "active_sessions",
				Help:      "Number of scheduling dialogues in progress",
			},
			func() float64 { return float64(sessionCount()) },
		)
		registry.MustRegister(m.activeSessions)
	}

	registry.MustRegister(m.messagesTotal, m.handleLatency)
	return m
}

// RecordMessage records one handled message.
func (m *Metrics) RecordMessage(route, status string, duration time.Duration) {
	m.messagesTotal.WithLabelValues(route, status).Inc()
	m.handleLatency.WithLabelValues(route).Observe(duration.Seconds())
}

// Handler returns the /metrics HTTP handler for this registry.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
