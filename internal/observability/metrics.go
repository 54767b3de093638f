// Package observability collects Prometheus metrics for the booking platform.
package observability

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics aggregates the HTTP and booking-domain metrics.
type Metrics struct {
	registry        *prometheus.Registry
	handler         http.Handler
	requestsTotal   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec

	quotationsCreated prometheus.Counter
	transitionsTotal  *prometheus.CounterVec
	invoicesCreated   *prometheus.CounterVec
	emailsTotal       *prometheus.CounterVec
}

// NewMetrics initialises the registry and all collectors.
func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()

	requests := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "horizon_http_requests_total",
		Help: "HTTP requests by route and status code.",
	}, []string{"route", "code"})
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "horizon_http_request_duration_seconds",
		Help:    "HTTP request duration by route.",
		Buckets: prometheus.DefBuckets,
	}, []string{"route"})

	quotations := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "horizon_quotations_created_total",
		Help: "Quotations created.",
	})
	transitions := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "horizon_quotation_transitions_total",
		Help: "Quotation lifecycle transitions by action.",
	}, []string{"action"})
	invoices := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "horizon_invoices_created_total",
		Help: "Invoices created by reconciliation status.",
	}, []string{"status"})
	emails := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "horizon_emails_dispatched_total",
		Help: "Email dispatch attempts by kind and outcome.",
	}, []string{"kind", "outcome"})

	registry.MustRegister(requests, duration, quotations, transitions, invoices, emails)

	return &Metrics{
		registry:          registry,
		handler:           promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		requestsTotal:     requests,
		requestDuration:   duration,
		quotationsCreated: quotations,
		transitionsTotal:  transitions,
		invoicesCreated:   invoices,
		emailsTotal:       emails,
	}
}

// Handler returns the http.Handler for the /metrics endpoint.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, http.StatusText(http.StatusServiceUnavailable), http.StatusServiceUnavailable)
		})
	}
	return m.handler
}

// Middleware records request counts and durations.
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	if m == nil {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		recorder := statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(&recorder, r)
		route := routePattern(r)
		m.requestsTotal.WithLabelValues(route, strconv.Itoa(recorder.status)).Inc()
		m.requestDuration.WithLabelValues(route).Observe(time.Since(start).Seconds())
	})
}

// QuotationCreated counts a new quotation.
func (m *Metrics) QuotationCreated() {
	if m != nil {
		m.quotationsCreated.Inc()
	}
}

// TransitionApplied counts a lifecycle transition by action name.
func (m *Metrics) TransitionApplied(action string) {
	if m != nil {
		m.transitionsTotal.WithLabelValues(action).Inc()
	}
}

// InvoiceCreated counts a new invoice by its reconciliation status.
func (m *Metrics) InvoiceCreated(status string) {
	if m != nil {
		m.invoicesCreated.WithLabelValues(status).Inc()
	}
}

// EmailDispatched counts an email attempt by kind and outcome.
func (m *Metrics) EmailDispatched(kind string, ok bool) {
	if m == nil {
		return
	}
	outcome := "failure"
	if ok {
		outcome = "success"
	}
	m.emailsTotal.WithLabelValues(kind, outcome).Inc()
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func routePattern(r *http.Request) string {
	if ctx := chi.RouteContext(r.Context()); ctx != nil {
		if pattern := ctx.RoutePattern(); pattern != "" {
			return pattern
		}
	}
	return r.URL.Path
}
