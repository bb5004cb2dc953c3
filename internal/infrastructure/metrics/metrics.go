package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the auth service
type Metrics struct {
	// QR login lifecycle metrics
	SessionsStarted    prometheus.Counter
	SessionsAuthorized prometheus.Counter
	SessionsCompleted  prometheus.Counter
	SessionsExpired    prometheus.Counter
	SessionsCancelled  prometheus.Counter
	ActiveSessions     prometheus.Gauge

	// Verifier metrics
	VerifierMismatches prometheus.Counter
	RateLimited        prometheus.Counter

	// Operation duration metrics
	FinalizeDuration prometheus.Histogram

	// Event mirror metrics
	EventsMirrored    prometheus.Counter
	EventMirrorErrors *prometheus.CounterVec
}

var (
	// DefaultMetrics is the default metrics instance
	DefaultMetrics *Metrics
	once           sync.Once
)

// GetDefaultMetrics returns the singleton metrics instance
func GetDefaultMetrics() *Metrics {
	once.Do(func() {
		DefaultMetrics = NewMetrics()
	})
	return DefaultMetrics
}

// NewMetrics creates a new Metrics instance with all counters and gauges
func NewMetrics() *Metrics {
	return &Metrics{
		SessionsStarted: promauto.NewCounter(prometheus.CounterOpts{
			Name: "auth_service_qr_sessions_started_total",
			Help: "Total number of QR login sessions created",
		}),
		SessionsAuthorized: promauto.NewCounter(prometheus.CounterOpts{
			Name: "auth_service_qr_sessions_authorized_total",
			Help: "Total number of sessions authorized from a phone",
		}),
		SessionsCompleted: promauto.NewCounter(prometheus.CounterOpts{
			Name: "auth_service_qr_sessions_completed_total",
			Help: "Total number of sessions finalized into a login",
		}),
		SessionsExpired: promauto.NewCounter(prometheus.CounterOpts{
			Name: "auth_service_qr_sessions_expired_total",
			Help: "Total number of sessions that hit their deadline",
		}),
		SessionsCancelled: promauto.NewCounter(prometheus.CounterOpts{
			Name: "auth_service_qr_sessions_cancelled_total",
			Help: "Total number of sessions cancelled by the desktop",
		}),
		ActiveSessions: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "auth_service_qr_active_sessions",
			Help: "Number of login sessions currently held in the store",
		}),
		VerifierMismatches: promauto.NewCounter(prometheus.CounterOpts{
			Name: "auth_service_qr_verifier_mismatch_total",
			Help: "Total number of wrong verifier codes submitted",
		}),
		RateLimited: promauto.NewCounter(prometheus.CounterOpts{
			Name: "auth_service_qr_rate_limited_total",
			Help: "Total number of finalize attempts rejected by the attempt cap",
		}),
		FinalizeDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "auth_service_qr_finalize_duration_seconds",
			Help:    "Duration of finalize operations",
			Buckets: prometheus.DefBuckets,
		}),
		EventsMirrored: promauto.NewCounter(prometheus.CounterOpts{
			Name: "auth_service_events_mirrored_total",
			Help: "Total number of lifecycle events mirrored to Kafka",
		}),
		EventMirrorErrors: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "auth_service_event_mirror_errors_total",
				Help: "Total number of event mirror failures",
			},
			[]string{"error_type"},
		),
	}
}
