package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Backend client metrics
var (
	BackendRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "anihub",
			Name:      "backend_requests_total",
			Help:      "Requests sent to the AniHub backend, by operation and outcome.",
		},
		[]string{"operation", "outcome"},
	)

	BackendRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "anihub",
			Name:      "backend_request_duration_seconds",
			Help:      "Latency of AniHub backend requests, retries included.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"operation"},
	)
)

// Web front metrics
var (
	PageRendersTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "anihub",
			Name:      "page_renders_total",
			Help:      "Rendered pages and fragments, by template.",
		},
		[]string{"page"},
	)

	RouletteSpinsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "anihub",
			Name:      "roulette_spins_total",
			Help:      "Roulette spins, by result (ok, empty, error).",
		},
		[]string{"result"},
	)

	LiveSearchConnections = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "anihub",
			Name:      "live_search_connections",
			Help:      "Open live search WebSocket connections.",
		},
	)
)

// Outcome labels for BackendRequestsTotal.
const (
	OutcomeSuccess      = "success"
	OutcomeNotFound     = "not_found"
	OutcomeUnauthorized = "unauthorized"
	OutcomeError        = "error"
)

func init() {
	prometheus.MustRegister(
		BackendRequestsTotal,
		BackendRequestDuration,
		PageRendersTotal,
		RouletteSpinsTotal,
		LiveSearchConnections,
	)
}
