// Package metrics registers the prometheus collectors shared by the HTTP layer and services.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics groups the application collectors. A nil *Metrics is a valid no-op.
type Metrics struct {
	registry        *prometheus.Registry
	derivations     *prometheus.CounterVec
	skippedRecords  *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	messagesSent    *prometheus.CounterVec
}

// New creates collectors on a dedicated registry.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		derivations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "piggery",
			Name:      "derivation_passes_total",
			Help:      "Number of dashboard/calendar derivation passes.",
		}, []string{"view"}),
		skippedRecords: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "piggery",
			Name:      "skipped_records_total",
			Help:      "Records excluded from a derivation pass because of invalid data.",
		}, []string{"kind"}),
		requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "piggery",
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by route and status.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route", "status"}),
		messagesSent: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "piggery",
			Name:      "messages_sent_total",
			Help:      "Outbound messages by result.",
		}, []string{"result"}),
	}

	m.registry.MustRegister(
		m.derivations,
		m.skippedRecords,
		m.requestDuration,
		m.messagesSent,
		collectors.NewGoCollector(),
	)
	return m
}

// Handler exposes the registry in the prometheus text format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Registry returns the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// ObserveDerivation counts one derivation pass.
func (m *Metrics) ObserveDerivation(view string) {
	if m == nil {
		return
	}
	m.derivations.WithLabelValues(view).Inc()
}

// ObserveSkipped counts records excluded from a derivation.
func (m *Metrics) ObserveSkipped(kind string, n int) {
	if m == nil || n <= 0 {
		return
	}
	m.skippedRecords.WithLabelValues(kind).Add(float64(n))
}

// ObserveRequest records one HTTP request.
func (m *Metrics) ObserveRequest(method, route string, status int, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.requestDuration.WithLabelValues(method, route, strconv.Itoa(status)).Observe(elapsed.Seconds())
}

// ObserveMessage counts one outbound message attempt.
func (m *Metrics) ObserveMessage(err error) {
	if m == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.messagesSent.WithLabelValues(result).Inc()
}
