// Package metrics exposes prometheus instruments for the payment lifecycle
// and the HTTP surface.
package metrics

import (
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics exposes application-level instruments.
type Metrics struct {
	paymentsConfirmed *prometheus.CounterVec
	verifications     *prometheus.CounterVec
	revealsStarted    prometheus.Counter
}

func New() *Metrics {
	return &Metrics{
		paymentsConfirmed: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "subshare_payments_confirmed_total",
			Help: "Payment confirmations committed by the lifecycle engine.",
		}, []string{"method"}),
		verifications: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "subshare_verifications_total",
			Help: "Receipt verification attempts by terminal outcome.",
		}, []string{"outcome"}),
		revealsStarted: promauto.NewCounter(prometheus.CounterOpts{
			Name: "subshare_credential_reveals_total",
			Help: "Credential reveal windows opened.",
		}),
	}
}

func (m *Metrics) PaymentConfirmed(method string) {
	m.paymentsConfirmed.WithLabelValues(method).Inc()
}

func (m *Metrics) VerificationFinished(outcome string) {
	m.verifications.WithLabelValues(outcome).Inc()
}

func (m *Metrics) RevealStarted() {
	m.revealsStarted.Inc()
}

// HTTPMetrics instruments inbound requests.
type HTTPMetrics struct {
	duration *prometheus.HistogramVec
}

func NewHTTPMetrics() *HTTPMetrics {
	return &HTTPMetrics{
		duration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "subshare_http_request_duration_seconds",
			Help:    "HTTP request latency by route and status.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route", "status"}),
	}
}

// GinMiddleware records request latency per route.
func GinMiddleware(m *HTTPMetrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if strings.TrimSpace(route) == "" {
			route = "unknown"
		}
		m.duration.WithLabelValues(
			c.Request.Method,
			route,
			strings.ToLower(statusClass(c.Writer.Status())),
		).Observe(time.Since(start).Seconds())
	}
}

func statusClass(status int) string {
	switch {
	case status >= 500:
		return "5xx"
	case status >= 400:
		return "4xx"
	case status >= 300:
		return "3xx"
	default:
		return "2xx"
	}
}
