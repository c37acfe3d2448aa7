package observability

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const metricsNamespace = "managersync"

// Metrics groups the Prometheus collectors of the admin server. A nil
// *Metrics is valid and records nothing.
type Metrics struct {
	gatherer prometheus.Gatherer

	httpRequests    *prometheus.CounterVec
	httpDuration    *prometheus.HistogramVec
	referenceLoads  *prometheus.CounterVec
	referenceTiming *prometheus.HistogramVec
	remoteFailures  *prometheus.CounterVec
	cacheLookups    *prometheus.CounterVec
}

// NewMetrics registers the collectors on reg. A fresh registry is created when reg is nil.
func NewMetrics(reg *prometheus.Registry) *Metrics {
	if reg == nil {
		reg = prometheus.NewRegistry()
		reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	}
	factory := promauto.With(reg)
	return &Metrics{
		gatherer: reg,
		httpRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "HTTP requests processed by the admin server.",
		}, []string{"method", "route", "status"}),
		httpDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request latency in seconds.",
			Buckets:   []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		}, []string{"method", "route"}),
		referenceLoads: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: "reference",
			Name:      "loads_total",
			Help:      "Reference data loads by source and outcome.",
		}, []string{"source", "outcome"}),
		referenceTiming: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Subsystem: "reference",
			Name:      "load_duration_seconds",
			Help:      "Duration of reference data loads.",
			Buckets:   []float64{0.1, 0.5, 1, 2, 5, 10, 20, 30},
		}, []string{"source"}),
		remoteFailures: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: "remote",
			Name:      "failures_total",
			Help:      "Failed calls to external collaborators.",
		}, []string{"service"}),
		cacheLookups: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: "cache",
			Name:      "lookups_total",
			Help:      "Cache lookups by result.",
		}, []string{"cache", "result"}),
	}
}

// Handler exposes the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}

// ObserveRequest records a completed HTTP request.
func (m *Metrics) ObserveRequest(method, route string, status int, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.httpDuration.WithLabelValues(method, route).Observe(elapsed.Seconds())
}

// ObserveReferenceLoad records the outcome of a reference data load.
func (m *Metrics) ObserveReferenceLoad(source, outcome string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.referenceLoads.WithLabelValues(source, outcome).Inc()
	m.referenceTiming.WithLabelValues(source).Observe(elapsed.Seconds())
}

// RemoteFailure counts a failed call to an external service.
func (m *Metrics) RemoteFailure(service string) {
	if m == nil {
		return
	}
	m.remoteFailures.WithLabelValues(service).Inc()
}

// CacheLookup counts a cache hit or miss.
func (m *Metrics) CacheLookup(cache string, hit bool) {
	if m == nil {
		return
	}
	result := "miss"
	if hit {
		result = "hit"
	}
	m.cacheLookups.WithLabelValues(cache, result).Inc()
}
