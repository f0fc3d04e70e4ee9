package metrics

import "github.com/prometheus/client_golang/prometheus"

// Refresh outcomes.
const (
	RefreshSuccess      = "success"
	RefreshNoSession    = "no_session"
	RefreshUnauthorized = "unauthorized"
	RefreshError        = "error"
)

// Authorization results.
const (
	AuthorizationCached    = "cached"
	AuthorizationRefreshed = "refreshed"
	AuthorizationSkipped   = "skipped"
	AuthorizationFailed    = "failed"
)

// SessionMetrics holds Prometheus metrics for the session coordinator.
type SessionMetrics struct {
	Refreshes       *prometheus.CounterVec
	RefreshDuration prometheus.Histogram
	CoalescedWaits  prometheus.Counter
	Authorizations  *prometheus.CounterVec
	LoginRedirects  prometheus.Counter
	Authenticated   prometheus.Gauge
}

// NewSessionMetrics creates and registers session metrics on the given registry.
func NewSessionMetrics(reg prometheus.Registerer) *SessionMetrics {
	m := &SessionMetrics{
		Refreshes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "session",
			Name:      "refreshes_total",
			Help:      "Total number of refresh calls sent to the backend, by outcome.",
		}, []string{"outcome"}),
		RefreshDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "session",
			Name:      "refresh_duration_seconds",
			Help:      "Duration of refresh calls in seconds.",
			Buckets:   prometheus.DefBuckets,
		}),
		CoalescedWaits: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "session",
			Name:      "coalesced_waits_total",
			Help:      "Total number of authorization calls that shared an in-flight refresh.",
		}),
		Authorizations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "session",
			Name:      "authorizations_total",
			Help:      "Total number of authorization requests, by result.",
		}, []string{"result"}),
		LoginRedirects: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "session",
			Name:      "login_redirects_total",
			Help:      "Total number of redirects to the login page.",
		}),
		Authenticated: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "session",
			Name:      "authenticated",
			Help:      "1 while a session is installed, 0 while anonymous.",
		}),
	}

	reg.MustRegister(m.Refreshes, m.RefreshDuration, m.CoalescedWaits, m.Authorizations, m.LoginRedirects, m.Authenticated)
	return m
}
