package observability

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the Prometheus collectors of the portal.
type Metrics struct {
	registry *prometheus.Registry

	requests        *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	errors          *prometheus.CounterVec
	loanDecisions   *prometheus.CounterVec
	customerCache   *prometheus.CounterVec
}

// NewMetrics registers all collectors on a dedicated registry.
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		requests: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "loan_portal_http_requests_total",
			Help: "HTTP requests by route, method and status",
		}, []string{"route", "method", "status"}),
		requestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "loan_portal_http_request_duration_seconds",
			Help:    "HTTP request latency by route and method",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		}, []string{"route", "method"}),
		errors: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "loan_portal_http_errors_total",
			Help: "Error responses by route, method and error code",
		}, []string{"route", "method", "code"}),
		loanDecisions: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "loan_portal_loan_decisions_total",
			Help: "Loan evaluations by outcome",
		}, []string{"outcome"}),
		customerCache: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "loan_portal_customer_cache_total",
			Help: "Customer cache lookups by result",
		}, []string{"result"}),
	}
}

// Registry exposes the gatherer for the /metrics endpoint.
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// RecordRequest increments counters for requests.
func (m *Metrics) RecordRequest(route, method string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	m.requests.WithLabelValues(route, method, strconv.Itoa(status)).Inc()
	m.requestDuration.WithLabelValues(route, method).Observe(duration.Seconds())
}

// RecordError increments error counters.
func (m *Metrics) RecordError(route, method, code string) {
	if m == nil {
		return
	}
	m.errors.WithLabelValues(route, method, code).Inc()
}

// RecordLoanDecision counts a loan evaluation outcome.
func (m *Metrics) RecordLoanDecision(outcome string) {
	if m == nil {
		return
	}
	m.loanDecisions.WithLabelValues(outcome).Inc()
}

// RecordCacheLookup counts a customer cache hit, miss or error.
func (m *Metrics) RecordCacheLookup(result string) {
	if m == nil {
		return
	}
	m.customerCache.WithLabelValues(result).Inc()
}
