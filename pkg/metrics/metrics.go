package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the prometheus collectors exposed by the service.
type Metrics struct {
	service string

	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec

	CommitsTotal         *prometheus.CounterVec
	CommitConflictsTotal prometheus.Counter
	ActiveSessions       prometheus.Gauge
}

// New registers and returns the service metrics on the default registry.
func New(serviceName string) *Metrics {
	constLabels := prometheus.Labels{"service": serviceName}

	return &Metrics{
		service: serviceName,
		HTTPRequestsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name:        "http_requests_total",
			Help:        "Total number of HTTP requests",
			ConstLabels: constLabels,
		}, []string{"method", "path", "status"}),
		HTTPRequestDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:        "http_request_duration_seconds",
			Help:        "HTTP request duration in seconds",
			ConstLabels: constLabels,
			Buckets:     prometheus.DefBuckets,
		}, []string{"method", "path"}),
		CommitsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name:        "booking_commits_total",
			Help:        "Booking commit attempts by result",
			ConstLabels: constLabels,
		}, []string{"result"}),
		CommitConflictsTotal: promauto.NewCounter(prometheus.CounterOpts{
			Name:        "booking_commit_conflicts_total",
			Help:        "Commits rejected by the authoritative availability recheck",
			ConstLabels: constLabels,
		}),
		ActiveSessions: promauto.NewGauge(prometheus.GaugeOpts{
			Name:        "checkout_active_sessions",
			Help:        "Number of live checkout sessions in the registry",
			ConstLabels: constLabels,
		}),
	}
}

// ObserveCommit records a commit attempt outcome: "success", "conflict"
// or "failed".
func (m *Metrics) ObserveCommit(result string) {
	m.CommitsTotal.WithLabelValues(result).Inc()
	if result == "conflict" {
		m.CommitConflictsTotal.Inc()
	}
}
