package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Session registry metrics
	ActiveSessions = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "door1_sessions_active",
		Help: "The current number of registered device sessions.",
	})
	RegistrationsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "door1_registrations_total",
		Help: "The total number of device registrations accepted.",
	})
	StaleEvictionsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "door1_stale_evictions_total",
		Help: "The total number of sessions evicted by the liveness sweeper.",
	})

	// Dispatch metrics
	DispatchesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "door1_dispatches_total",
		Help: "The total number of trigger dispatches by mode and outcome.",
	}, []string{"mode", "outcome"})
	FeedbackTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "door1_feedback_total",
		Help: "The total number of door-opened feedback events reported by devices.",
	})
)

// Handler returns the HTTP handler exposing the prometheus registry.
func Handler() http.Handler {
	return promhttp.Handler()
}
