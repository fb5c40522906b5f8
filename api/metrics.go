package api

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// metrics exposes the abuse-control counters. Cardinality is fixed: labels
// are small enums, never identifiers.
type metrics struct {
	rateLimited     *prometheus.CounterVec
	validations     *prometheus.CounterVec
	bindingMismatch *prometheus.CounterVec
	loginAttempts   *prometheus.CounterVec
	activeSessions  prometheus.GaugeFunc
}

func newMetrics(reg prometheus.Registerer, sessionCount func() float64) *metrics {
	factory := promauto.With(reg)
	return &metrics{
		rateLimited: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "clubpoint_rate_limited_total",
			Help: "Requests denied by a rate limiter, by scope.",
		}, []string{"scope"}),
		validations: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "clubpoint_session_validations_total",
			Help: "Session validation outcomes.",
		}, []string{"result"}),
		bindingMismatch: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "clubpoint_binding_mismatch_total",
			Help: "Soft-binding anomalies on otherwise valid sessions.",
		}, []string{"kind"}),
		loginAttempts: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "clubpoint_login_attempts_total",
			Help: "Login attempts by outcome.",
		}, []string{"outcome"}),
		activeSessions: factory.NewGaugeFunc(prometheus.GaugeOpts{
			Name: "clubpoint_active_sessions",
			Help: "Session records currently held in memory.",
		}, sessionCount),
	}
}
