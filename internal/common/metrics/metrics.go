// internal/common/metrics/metrics.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	RequestsFulfilled = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "intake_requests_fulfilled_total",
			Help: "Total number of prediction requests fulfilled, by route and provenance",
		},
		[]string{"route", "provenance"},
	)

	RequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "intake_request_duration_seconds",
			Help: "Duration of request fulfillment in seconds",
		},
		[]string{"route"},
	)

	TurnsProcessed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "intake_turns_processed_total",
			Help: "Total number of conversation turns processed, by route and resulting state",
		},
		[]string{"route", "state"},
	)

	ExtractionFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "intake_extraction_failures_total",
			Help: "Total number of failed extraction calls",
		},
		[]string{"route"},
	)

	HealthProbes = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "intake_health_probes_total",
			Help: "Total number of backend liveness probes, by backend and result",
		},
		[]string{"backend", "result"},
	)

	ActiveSessions = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "intake_active_sessions",
			Help: "Number of sessions currently collecting fields",
		},
	)
)
