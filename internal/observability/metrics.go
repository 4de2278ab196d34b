package observability

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics exposes the service's Prometheus collectors.
type Metrics struct {
	registry *prometheus.Registry

	httpRequestsTotal   *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
	httpErrorsTotal     *prometheus.CounterVec
	incidentsTotal      *prometheus.CounterVec
	incidentDuration    *prometheus.HistogramVec
	filesProcessedTotal *prometheus.CounterVec
	activeRequestsGauge prometheus.Gauge
}

// NewMetrics registers all collectors on a fresh registry.
func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()
	factory := promauto.With(registry)

	return &Metrics{
		registry: registry,
		httpRequestsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "oet_http_requests_total",
			Help: "Total number of HTTP requests",
		}, []string{"method", "route", "status_code"}),
		httpRequestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "oet_http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: []float64{0.1, 0.3, 0.5, 0.7, 1, 3, 5, 7, 10},
		}, []string{"method", "route", "status_code"}),
		httpErrorsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "oet_http_errors_total",
			Help: "Total number of HTTP requests that ended in an error body",
		}, []string{"method", "route", "code"}),
		incidentsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "oet_incidents_created_total",
			Help: "Total number of incident submissions by outcome",
		}, []string{"status"}),
		incidentDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "oet_incident_duration_seconds",
			Help:    "Duration of incident creation in seconds",
			Buckets: []float64{0.5, 1, 2, 5, 10, 15, 30},
		}, []string{"status"}),
		filesProcessedTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "oet_files_processed_total",
			Help: "Total number of attachment files processed",
		}, []string{"status"}),
		activeRequestsGauge: factory.NewGauge(prometheus.GaugeOpts{
			Name: "oet_active_requests",
			Help: "Number of active requests",
		}),
	}
}

// Handler returns the exposition endpoint handler.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// RecordRequest observes one finished HTTP request.
func (m *Metrics) RecordRequest(route, method string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	code := strconv.Itoa(status)
	m.httpRequestsTotal.WithLabelValues(method, route, code).Inc()
	m.httpRequestDuration.WithLabelValues(method, route, code).Observe(duration.Seconds())
}

// RecordError counts a request that ended in a structured error body.
func (m *Metrics) RecordError(route, method, code string) {
	if m == nil {
		return
	}
	m.httpErrorsTotal.WithLabelValues(method, route, code).Inc()
}

// RecordIncident observes one completed submission pipeline run.
func (m *Metrics) RecordIncident(status string, duration time.Duration) {
	if m == nil {
		return
	}
	m.incidentsTotal.WithLabelValues(status).Inc()
	m.incidentDuration.WithLabelValues(status).Observe(duration.Seconds())
}

// RecordFilesProcessed counts materialized or failed attachment files.
func (m *Metrics) RecordFilesProcessed(status string, count int) {
	if m == nil || count <= 0 {
		return
	}
	m.filesProcessedTotal.WithLabelValues(status).Add(float64(count))
}

// ActiveRequestsInc marks one request in flight.
func (m *Metrics) ActiveRequestsInc() {
	if m == nil {
		return
	}
	m.activeRequestsGauge.Inc()
}

// ActiveRequestsDec marks one request finished.
func (m *Metrics) ActiveRequestsDec() {
	if m == nil {
		return
	}
	m.activeRequestsGauge.Dec()
}
