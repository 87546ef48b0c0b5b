package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Label value constants to prevent typos
const (
	// Planner transition events
	EventAssign = "assign"
	EventLock   = "lock"
	EventUnlock = "unlock"
	EventRemove = "remove"
	EventFinish = "finish"

	// Transition results
	ResultApplied  = "applied"
	ResultRejected = "rejected"
	ResultError    = "error"
)

// HTTP Metrics
var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"route", "method", "status_code"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latency in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"route", "method", "status_code"},
	)
)

// Business Metrics
var (
	PlannerTransitionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "planner_transitions_total",
			Help: "Planner day state-machine transitions by event and result",
		},
		[]string{"event", "result"},
	)

	WorkoutLogUpsertsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "workout_log_upserts_total",
			Help: "Total number of per-set log upserts",
		},
	)
)

// Parse Service Metrics
var (
	ParseRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "parse_requests_total",
			Help: "Total number of parse-service calls by outcome",
		},
		[]string{"result"},
	)
)
