// Package session provides the session-keyed stores the collector runs
// against. A session's record is only ever accessed by one turn at a
// time (the gateway serializes turns per session), so stores guard their
// own maps but never the records themselves.
package session

import (
	"context"
	"sync"
	"time"

	"mobility-intake/internal/collector"
	"mobility-intake/internal/common/metrics"
)

type memoryEntry struct {
	rec     *collector.Record
	touched time.Time
}

// MemoryStore is the default single-instance store. Records expire after
// the abandonment TTL; expiry is enforced lazily on Get and by Sweep.
// The store keeps the active-session gauge in step with its occupancy,
// so reaped sessions leave the gauge too.
type MemoryStore struct {
	mu      sync.RWMutex
	ttl     time.Duration
	entries map[string]*memoryEntry
}

func NewMemoryStore(ttl time.Duration) *MemoryStore {
	return &MemoryStore{
		ttl:     ttl,
		entries: make(map[string]*memoryEntry),
	}
}

func (s *MemoryStore) Get(_ context.Context, sessionID string) (*collector.Record, error) {
	s.mu.RLock()
	e, ok := s.entries[sessionID]
	s.mu.RUnlock()
	if !ok {
		return nil, nil
	}
	if s.expired(e) {
		s.mu.Lock()
		delete(s.entries, sessionID)
		s.updateGauge()
		s.mu.Unlock()
		return nil, nil
	}
	return e.rec, nil
}

func (s *MemoryStore) Put(_ context.Context, sessionID string, rec *collector.Record) error {
	s.mu.Lock()
	s.entries[sessionID] = &memoryEntry{rec: rec, touched: time.Now()}
	s.updateGauge()
	s.mu.Unlock()
	return nil
}

func (s *MemoryStore) Delete(_ context.Context, sessionID string) error {
	s.mu.Lock()
	delete(s.entries, sessionID)
	s.updateGauge()
	s.mu.Unlock()
	return nil
}

// Sweep removes abandoned sessions. Called periodically by the server.
func (s *MemoryStore) Sweep() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	removed := 0
	for id, e := range s.entries {
		if s.expired(e) {
			delete(s.entries, id)
			removed++
		}
	}
	s.updateGauge()
	return removed
}

// Len reports the number of live sessions.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

func (s *MemoryStore) expired(e *memoryEntry) bool {
	return s.ttl > 0 && time.Since(e.touched) > s.ttl
}

// updateGauge must be called with mu held.
func (s *MemoryStore) updateGauge() {
	metrics.ActiveSessions.Set(float64(len(s.entries)))
}
