// Package health caches backend liveness so routing decisions don't
// probe on every request.
package health

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"mobility-intake/internal/common/logger"
	"mobility-intake/internal/common/metrics"
)

// Prober is a backend whose liveness can be checked. CheckLiveness must
// treat every failure mode as "down" and never panic through.
type Prober interface {
	Name() string
	CheckLiveness(ctx context.Context) bool
}

type snapshot struct {
	status    map[string]bool
	checkedAt time.Time
}

// Monitor keeps a time-bounded cache of backend health. Reads inside the
// TTL are lock-free; at most one caller refreshes at a time, with a
// double check after acquiring the refresh lock so concurrent callers
// piggyback on the winner's result.
type Monitor struct {
	probers      []Prober
	ttl          time.Duration
	probeTimeout time.Duration
	logger       logger.Logger

	refreshMu sync.Mutex
	current   atomic.Value // *snapshot
}

func NewMonitor(ttl, probeTimeout time.Duration, probers []Prober, log logger.Logger) *Monitor {
	return &Monitor{
		probers:      probers,
		ttl:          ttl,
		probeTimeout: probeTimeout,
		logger:       log.With(map[string]interface{}{"component": "health"}),
	}
}

// Healthy reports whether the named backend was up as of the last probe
// cycle, refreshing the cache when it is older than the TTL. Unknown
// backends are never healthy.
func (m *Monitor) Healthy(ctx context.Context, name string) bool {
	if snap := m.load(); m.valid(snap) {
		return snap.status[name]
	}

	m.refreshMu.Lock()
	defer m.refreshMu.Unlock()

	// Another caller may have refreshed while we waited on the lock.
	if snap := m.load(); m.valid(snap) {
		return snap.status[name]
	}

	snap := m.refresh(ctx)
	return snap.status[name]
}

// Status returns a copy of the cached health map, refreshing it first if
// stale.
func (m *Monitor) Status(ctx context.Context) map[string]bool {
	snap := m.load()
	if !m.valid(snap) {
		m.refreshMu.Lock()
		if snap = m.load(); !m.valid(snap) {
			snap = m.refresh(ctx)
		}
		m.refreshMu.Unlock()
	}

	out := make(map[string]bool, len(snap.status))
	for k, v := range snap.status {
		out[k] = v
	}
	return out
}

// Invalidate drops the cache so the next check probes immediately.
func (m *Monitor) Invalidate() {
	m.current.Store(&snapshot{})
}

func (m *Monitor) load() *snapshot {
	snap, _ := m.current.Load().(*snapshot)
	return snap
}

func (m *Monitor) valid(snap *snapshot) bool {
	return snap != nil && snap.status != nil && time.Since(snap.checkedAt) < m.ttl
}

// refresh probes every backend concurrently and publishes a fresh
// snapshot. Callers must hold refreshMu.
func (m *Monitor) refresh(ctx context.Context) *snapshot {
	results := make([]bool, len(m.probers))

	var wg sync.WaitGroup
	for i, p := range m.probers {
		wg.Add(1)
		go func(i int, p Prober) {
			defer wg.Done()
			results[i] = m.probe(ctx, p)
		}(i, p)
	}
	wg.Wait()

	snap := &snapshot{
		status:    make(map[string]bool, len(m.probers)),
		checkedAt: time.Now(),
	}
	for i, p := range m.probers {
		snap.status[p.Name()] = results[i]
		result := "down"
		if results[i] {
			result = "up"
		}
		metrics.HealthProbes.WithLabelValues(p.Name(), result).Inc()
	}
	m.current.Store(snap)
	return snap
}

// probe checks a single backend under the probe timeout. A misbehaving
// prober must cost at most one probe window and one "down" verdict.
func (m *Monitor) probe(ctx context.Context, p Prober) (up bool) {
	defer func() {
		if r := recover(); r != nil {
			m.logger.Error("health probe panicked", map[string]interface{}{
				"backend": p.Name(),
				"panic":   r,
			})
			up = false
		}
	}()

	ctx, cancel := context.WithTimeout(ctx, m.probeTimeout)
	defer cancel()
	return p.CheckLiveness(ctx)
}
