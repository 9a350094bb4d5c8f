package monitoring

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics manages the Prometheus metrics for the admission layer.
type Metrics struct {
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec
	AdmissionDecisions  *prometheus.CounterVec
	SessionValidations  *prometheus.CounterVec
	RateLimitChecks     *prometheus.CounterVec
	RateLimitFallbacks  prometheus.Counter
}

// NewMetrics creates the Prometheus metrics and registers them with the
// default registry.
func NewMetrics() *Metrics {
	return NewMetricsWith(prometheus.DefaultRegisterer)
}

// NewMetricsWith creates the Prometheus metrics against a specific
// registerer. Tests use isolated registries to avoid duplicate registration.
func NewMetricsWith(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		HTTPRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "admission_http_requests_total",
				Help: "Total number of HTTP requests.",
			},
			[]string{"method", "path", "status"},
		),
		HTTPRequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "admission_http_request_duration_seconds",
				Help:    "Latency of HTTP requests.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "path"},
		),
		AdmissionDecisions: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "admission_edge_decisions_total",
				Help: "Total number of edge admission decisions.",
			},
			[]string{"class", "allowed"},
		),
		SessionValidations: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "admission_session_validations_total",
				Help: "Total number of authoritative session validations.",
			},
			[]string{"result"},
		),
		RateLimitChecks: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "admission_rate_limit_checks_total",
				Help: "Total number of rate limit checks.",
			},
			[]string{"strategy", "allowed"},
		),
		RateLimitFallbacks: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "admission_rate_limit_fallbacks_total",
				Help: "Total number of rate limit checks served by the local fallback.",
			},
		),
	}
}

// RecordRequest records metrics for a completed HTTP request.
func (m *Metrics) RecordRequest(method, path, status string, duration time.Duration) {
	m.HTTPRequestsTotal.WithLabelValues(method, path, status).Inc()
	m.HTTPRequestDuration.WithLabelValues(method, path).Observe(duration.Seconds())
}

// RecordAdmission records an edge admission decision.
func (m *Metrics) RecordAdmission(class string, allowed bool) {
	m.AdmissionDecisions.WithLabelValues(class, boolLabel(allowed)).Inc()
}

// RecordValidation records an authoritative validation outcome.
func (m *Metrics) RecordValidation(result string) {
	m.SessionValidations.WithLabelValues(result).Inc()
}

// RecordRateLimit records a rate limit check.
func (m *Metrics) RecordRateLimit(strategy string, allowed, fallback bool) {
	m.RateLimitChecks.WithLabelValues(strategy, boolLabel(allowed)).Inc()
	if fallback {
		m.RateLimitFallbacks.Inc()
	}
}

func boolLabel(b bool) string {
	if b {
		return "true"
	}
	return "false"
}
