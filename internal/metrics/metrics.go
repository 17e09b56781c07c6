// Package metrics exposes submission and payment counters in Prometheus
// format.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/mrlokans/quotebuy/internal/payment"
	"github.com/mrlokans/quotebuy/internal/submission"
)

const namespace = "quotebuy"

// Metrics owns a private registry so tests can build as many as they like.
type Metrics struct {
	registry       *prometheus.Registry
	submissions    *prometheus.CounterVec
	chargeFailures *prometheus.CounterVec
	conflicts      prometheus.Gauge
	requests       *prometheus.HistogramVec
}

func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		submissions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "submissions_total",
			Help:      "Finished submissions by terminal state.",
		}, []string{"outcome"}),
		chargeFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "charge_failures_total",
			Help:      "Rejected charges by failure kind.",
		}, []string{"kind"}),
		conflicts: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "unresolved_conflicts",
			Help:      "Paid submissions that could not be stored and are not yet reconciled.",
		}),
		requests: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by route.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route", "status"}),
	}

	m.registry.MustRegister(
		m.submissions,
		m.chargeFailures,
		m.conflicts,
		m.requests,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// ObserveOutcome counts a finished submission.
func (m *Metrics) ObserveOutcome(state submission.State) {
	m.submissions.WithLabelValues(string(state)).Inc()
}

// ObserveChargeFailure counts a rejected charge.
func (m *Metrics) ObserveChargeFailure(kind payment.FailureKind) {
	m.chargeFailures.WithLabelValues(string(kind)).Inc()
}

func (m *Metrics) SetUnresolvedConflicts(n int) {
	m.conflicts.Set(float64(n))
}

// Registry returns the registry the metrics are registered on.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Middleware records request latency labelled by the matched route pattern,
// so /view/id/1 and /view/id/2 share a series.
func (m *Metrics) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		m.requests.WithLabelValues(c.Request.Method, route, strconv.Itoa(c.Writer.Status())).
			Observe(time.Since(start).Seconds())
	}
}
