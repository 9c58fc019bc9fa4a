package health

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"mobility-intake/internal/common/logger"
)

type fakeProber struct {
	name   string
	up     atomic.Bool
	calls  atomic.Int32
	block  bool
	panics bool
}

func (f *fakeProber) Name() string { return f.name }

func (f *fakeProber) CheckLiveness(ctx context.Context) bool {
	f.calls.Add(1)
	if f.panics {
		panic("prober exploded")
	}
	if f.block {
		<-ctx.Done()
		return false
	}
	return f.up.Load()
}

func upProber(name string) *fakeProber {
	p := &fakeProber{name: name}
	p.up.Store(true)
	return p
}

func newMonitor(t *testing.T, ttl time.Duration, probers ...Prober) *Monitor {
	t.Helper()
	return NewMonitor(ttl, 500*time.Millisecond, probers, logger.NewTestLogger(t))
}

func TestHealthyReflectsProbeResult(t *testing.T) {
	comp := upProber("compensation")
	pol := &fakeProber{name: "policy"}
	m := newMonitor(t, time.Minute, comp, pol)
	ctx := context.Background()

	assert.True(t, m.Healthy(ctx, "compensation"))
	assert.False(t, m.Healthy(ctx, "policy"))
	assert.False(t, m.Healthy(ctx, "unknown"), "unconfigured backends are never healthy")
}

func TestCacheBoundsProbeRate(t *testing.T) {
	comp := upProber("compensation")
	m := newMonitor(t, time.Minute, comp)
	ctx := context.Background()

	for i := 0; i < 20; i++ {
		m.Healthy(ctx, "compensation")
	}
	assert.Equal(t, int32(1), comp.calls.Load(), "checks within the TTL must not reprobe")
}

func TestConcurrentChecksSingleRefresh(t *testing.T) {
	comp := upProber("compensation")
	pol := upProber("policy")
	m := newMonitor(t, time.Minute, comp, pol)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.True(t, m.Healthy(context.Background(), "compensation"))
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), comp.calls.Load(), "concurrent callers must share one refresh")
	assert.Equal(t, int32(1), pol.calls.Load(), "a refresh probes every backend once")
}

func TestExpiryTriggersReprobe(t *testing.T) {
	comp := upProber("compensation")
	m := newMonitor(t, 20*time.Millisecond, comp)
	ctx := context.Background()

	assert.True(t, m.Healthy(ctx, "compensation"))
	comp.up.Store(false)

	assert.True(t, m.Healthy(ctx, "compensation"), "stale result holds until the TTL lapses")
	time.Sleep(30 * time.Millisecond)
	assert.False(t, m.Healthy(ctx, "compensation"))
	assert.Equal(t, int32(2), comp.calls.Load())
}

func TestInvalidateForcesReprobe(t *testing.T) {
	comp := upProber("compensation")
	m := newMonitor(t, time.Minute, comp)
	ctx := context.Background()

	assert.True(t, m.Healthy(ctx, "compensation"))
	comp.up.Store(false)
	m.Invalidate()
	assert.False(t, m.Healthy(ctx, "compensation"))
}

func TestPanickingProberReadsDown(t *testing.T) {
	bad := &fakeProber{name: "compensation", panics: true}
	good := upProber("policy")
	m := newMonitor(t, time.Minute, bad, good)
	ctx := context.Background()

	assert.False(t, m.Healthy(ctx, "compensation"))
	assert.True(t, m.Healthy(ctx, "policy"), "one backend's failure must not poison the others")
}

func TestBlockedProberBoundedByTimeout(t *testing.T) {
	slow := &fakeProber{name: "compensation", block: true}
	m := NewMonitor(time.Minute, 30*time.Millisecond, []Prober{slow}, logger.NewTestLogger(t))

	start := time.Now()
	up := m.Healthy(context.Background(), "compensation")
	assert.False(t, up)
	assert.Less(t, time.Since(start), 500*time.Millisecond)
}

func TestStatusReturnsCopy(t *testing.T) {
	comp := upProber("compensation")
	m := newMonitor(t, time.Minute, comp)
	ctx := context.Background()

	status := m.Status(ctx)
	assert.Equal(t, map[string]bool{"compensation": true}, status)

	status["compensation"] = false
	assert.True(t, m.Healthy(ctx, "compensation"), "mutating the returned map must not affect the cache")
}
