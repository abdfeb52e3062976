package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// APIMetrics holds all Prometheus metrics for the API service.
type APIMetrics struct {
	RequestsTotal      *prometheus.CounterVec
	RequestDuration    *prometheus.HistogramVec
	InvitationsTotal   *prometheus.CounterVec
	DigestRunsTotal    *prometheus.CounterVec
	DigestEmailsSent   prometheus.Counter
	DigestTenantErrors prometheus.Counter
}

// NewAPIMetrics initializes and registers the Prometheus metrics.
func NewAPIMetrics() *APIMetrics {
	return &APIMetrics{
		RequestsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: "anchor",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests by method, route and status.",
		}, []string{"method", "route", "status"}),
		RequestDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "anchor",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request latency by route.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route"}),
		InvitationsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: "anchor",
			Subsystem: "invitations",
			Name:      "events_total",
			Help:      "Total invitation lifecycle events by outcome.",
		}, []string{"outcome"}), // outcome: created, delivery_failed, revoked, resent, accepted
		DigestRunsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: "anchor",
			Subsystem: "digest",
			Name:      "runs_total",
			Help:      "Total digest scheduler runs by status.",
		}, []string{"status"}), // status: ok, partial, error
		DigestEmailsSent: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: "anchor",
			Subsystem: "digest",
			Name:      "emails_sent_total",
			Help:      "Total digest emails delivered.",
		}),
		DigestTenantErrors: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: "anchor",
			Subsystem: "digest",
			Name:      "tenant_errors_total",
			Help:      "Total per-tenant digest failures that were isolated and skipped.",
		}),
	}
}
