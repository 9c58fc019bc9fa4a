// internal/orchestrator/stats.go
package orchestrator

import "sync/atomic"

// stats tracks fulfillment outcomes for the operator status surface.
// Prometheus counters carry the same signal for scraping; this snapshot
// form backs the /status endpoint.
type stats struct {
	backendCalls  atomic.Int64
	fallbackCalls atomic.Int64
	errors        atomic.Int64
}

// StatsSnapshot is a point-in-time copy of the usage counters.
type StatsSnapshot struct {
	BackendCalls  int64 `json:"backend_calls"`
	FallbackCalls int64 `json:"fallback_calls"`
	Errors        int64 `json:"errors"`
}

func (s *stats) snapshot() StatsSnapshot {
	return StatsSnapshot{
		BackendCalls:  s.backendCalls.Load(),
		FallbackCalls: s.fallbackCalls.Load(),
		Errors:        s.errors.Load(),
	}
}
