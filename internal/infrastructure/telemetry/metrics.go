package telemetry

import (
	"database/sql"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const metricsNamespace = "storefront"

// Metrics holds the Prometheus collectors of the service.
// All recording methods are safe on a nil receiver.
type Metrics struct {
	registry *prometheus.Registry

	httpRequests      *prometheus.CounterVec
	httpDuration      *prometheus.HistogramVec
	checkouts         *prometheus.CounterVec
	paymentInitiation *prometheus.CounterVec
	paymentOutcomes   *prometheus.CounterVec
	webhookEvents     *prometheus.CounterVec
	eventHandlers     *prometheus.CounterVec
}

// NewMetrics creates the collectors on a private registry
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by route and status code.",
		}, []string{"method", "route", "status"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
		checkouts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "checkout_orders_total",
			Help:      "Checkout reconciliations by outcome (created, existing, failed).",
		}, []string{"payment_method", "outcome"}),
		paymentInitiation: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "payment_initiations_total",
			Help:      "Payment adapter calls by method and result.",
		}, []string{"payment_method", "result"}),
		paymentOutcomes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "payment_outcomes_total",
			Help:      "Confirmed payment outcomes by method and status.",
		}, []string{"payment_method", "status"}),
		webhookEvents: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "webhook_events_total",
			Help:      "Gateway webhook deliveries by provider and result.",
		}, []string{"provider", "result"}),
		eventHandlers: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "domain_event_dispatch_total",
			Help:      "Domain event handler invocations by event type and result.",
		}, []string{"event_type", "result"}),
	}
	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.httpRequests, m.httpDuration, m.checkouts, m.paymentInitiation,
		m.paymentOutcomes, m.webhookEvents, m.eventHandlers,
	)
	return m
}

// Registry exposes the registry, mainly for tests
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// RegisterDBStats exports the connection pool statistics of db as
// go_sql_* series labelled db_name="storefront"
func (m *Metrics) RegisterDBStats(db *sql.DB) error {
	if m == nil || db == nil {
		return nil
	}
	return m.registry.Register(collectors.NewDBStatsCollector(db, metricsNamespace))
}

// Handler serves the registry in the Prometheus text format
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// GinMiddleware records request counts and latency by route template
func (m *Metrics) GinMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		if m == nil {
			return
		}
		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		m.httpRequests.WithLabelValues(c.Request.Method, route, strconv.Itoa(c.Writer.Status())).Inc()
		m.httpDuration.WithLabelValues(c.Request.Method, route).Observe(time.Since(start).Seconds())
	}
}

// Checkout outcomes
const (
	CheckoutCreated  = "created"
	CheckoutExisting = "existing"
	CheckoutFailed   = "failed"
)

// RecordCheckout counts one reconciliation
func (m *Metrics) RecordCheckout(method, outcome string) {
	if m == nil {
		return
	}
	m.checkouts.WithLabelValues(method, outcome).Inc()
}

// RecordPaymentInitiation counts one adapter call
func (m *Metrics) RecordPaymentInitiation(method string, err error) {
	if m == nil {
		return
	}
	m.paymentInitiation.WithLabelValues(method, result(err)).Inc()
}

// RecordPaymentOutcome counts a confirmed payment status change
func (m *Metrics) RecordPaymentOutcome(method, status string) {
	if m == nil {
		return
	}
	m.paymentOutcomes.WithLabelValues(method, status).Inc()
}

// RecordWebhook counts a webhook delivery
func (m *Metrics) RecordWebhook(provider, outcome string) {
	if m == nil {
		return
	}
	m.webhookEvents.WithLabelValues(provider, outcome).Inc()
}

// ObserveEventDispatch counts a domain event handler invocation
func (m *Metrics) ObserveEventDispatch(eventType string, err error) {
	if m == nil {
		return
	}
	m.eventHandlers.WithLabelValues(eventType, result(err)).Inc()
}

func result(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}
