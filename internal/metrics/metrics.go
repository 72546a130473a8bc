// Package metrics exposes Prometheus metrics for the console's authorization
// path: guard decisions, login attempts, session teardowns and backend calls.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "autogest"

var (
	// GuardDecisionsTotal counts route guard outcomes by route and state.
	GuardDecisionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "guard_decisions_total",
			Help:      "Route guard decisions by route and resulting state",
		},
		[]string{"route", "state"},
	)

	// LoginAttemptsTotal counts login exchanges by outcome.
	LoginAttemptsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "login_attempts_total",
			Help:      "Login attempts by outcome (success, rejected, error, superseded)",
		},
		[]string{"outcome"},
	)

	// SessionTeardownsTotal counts session destruction by reason.
	SessionTeardownsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "session_teardowns_total",
			Help:      "Sessions destroyed by reason (logout, rejected, expired, malformed)",
		},
		[]string{"reason"},
	)

	// BackendRequestsTotal counts outbound backend calls by method and status class.
	BackendRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "backend_requests_total",
			Help:      "Requests sent to the rental backend",
		},
		[]string{"method", "status"},
	)

	// BackendRequestDuration tracks backend call latency.
	BackendRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "backend_request_duration_seconds",
			Help:      "Latency of requests sent to the rental backend",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method"},
	)

	// CircuitBreakerState reports the backend breaker state (0 closed, 1 half-open, 2 open).
	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "circuit_breaker_state",
			Help:      "Backend circuit breaker state",
		},
		[]string{"name"},
	)

	// CatalogCacheLookupsTotal counts vehicle listing cache lookups by result.
	CatalogCacheLookupsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "catalog_cache_lookups_total",
			Help:      "Vehicle listing cache lookups (hit, miss)",
		},
		[]string{"result"},
	)
)

// RecordGuardDecision records one guard evaluation.
func RecordGuardDecision(route, state string) {
	GuardDecisionsTotal.WithLabelValues(route, state).Inc()
}

// RecordLogin records one login attempt outcome.
func RecordLogin(outcome string) {
	LoginAttemptsTotal.WithLabelValues(outcome).Inc()
}

// RecordTeardown records one session teardown.
func RecordTeardown(reason string) {
	SessionTeardownsTotal.WithLabelValues(reason).Inc()
}

// RecordBackendRequest records one backend call. status is a class such as
// "2xx", "4xx" or "error".
func RecordBackendRequest(method, status string, elapsed time.Duration) {
	BackendRequestsTotal.WithLabelValues(method, status).Inc()
	BackendRequestDuration.WithLabelValues(method).Observe(elapsed.Seconds())
}

// RecordCacheLookup records one catalog cache lookup.
func RecordCacheLookup(hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	CatalogCacheLookupsTotal.WithLabelValues(result).Inc()
}
