// Package metrics exposes Prometheus instruments for buyer operations and
// HTTP traffic. All methods are safe on a nil *Metrics.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Outcome labels.
const (
	OutcomeOK          = "ok"
	OutcomeInvalid     = "invalid"
	OutcomeRateLimited = "rate_limited"
	OutcomeConflict    = "conflict"
	OutcomeForbidden   = "forbidden"
	OutcomeNotFound    = "not_found"
	OutcomeError       = "error"
)

type Metrics struct {
	Operations        *prometheus.CounterVec
	OperationDuration *prometheus.HistogramVec
	ImportedRows      prometheus.Counter
	ActiveImports     prometheus.Gauge
	HTTPRequests      *prometheus.CounterVec
	HTTPDuration      *prometheus.HistogramVec

	gatherer prometheus.Gatherer
}

// New registers instruments on the default registry.
func New() *Metrics {
	return NewWithRegistry(prometheus.DefaultRegisterer, prometheus.DefaultGatherer)
}

// NewWithRegistry registers instruments on reg and serves them from g.
func NewWithRegistry(reg prometheus.Registerer, g prometheus.Gatherer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		Operations: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "buyerleads_operations_total",
			Help: "Buyer operations by kind and outcome",
		}, []string{"operation", "outcome"}),
		OperationDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "buyerleads_operation_duration_seconds",
			Help:    "Duration of buyer operations",
			Buckets: prometheus.DefBuckets,
		}, []string{"operation"}),
		ImportedRows: factory.NewCounter(prometheus.CounterOpts{
			Name: "buyerleads_imported_rows_total",
			Help: "Rows inserted by bulk import",
		}),
		ActiveImports: factory.NewGauge(prometheus.GaugeOpts{
			Name: "buyerleads_active_imports",
			Help: "Imports currently holding a slot",
		}),
		HTTPRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "buyerleads_http_requests_total",
			Help: "HTTP requests by method, route and status",
		}, []string{"method", "route", "status"}),
		HTTPDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "buyerleads_http_request_duration_seconds",
			Help:    "HTTP request latency",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route"}),
		gatherer: g,
	}
}

// ObserveOperation records one finished operation.
func (m *Metrics) ObserveOperation(operation, outcome string, d time.Duration) {
	if m == nil {
		return
	}
	m.Operations.WithLabelValues(operation, outcome).Inc()
	m.OperationDuration.WithLabelValues(operation).Observe(d.Seconds())
}

func (m *Metrics) AddImportedRows(n int) {
	if m == nil {
		return
	}
	m.ImportedRows.Add(float64(n))
}

func (m *Metrics) SetActiveImports(n int) {
	if m == nil {
		return
	}
	m.ActiveImports.Set(float64(n))
}

// ObserveRequest records one HTTP response. route is the chi route pattern,
// not the raw path, to keep label cardinality bounded.
func (m *Metrics) ObserveRequest(method, route string, status int, d time.Duration) {
	if m == nil {
		return
	}
	m.HTTPRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.HTTPDuration.WithLabelValues(method, route).Observe(d.Seconds())
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	if m == nil || m.gatherer == nil {
		return promhttp.Handler()
	}
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}
