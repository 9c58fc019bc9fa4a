package session

import (
	"context"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mobility-intake/internal/collector"
	"mobility-intake/internal/common/metrics"
	"mobility-intake/internal/schema"
)

func testRecord(route string) *collector.Record {
	return &collector.Record{
		Route:  route,
		State:  collector.StateCollecting,
		Fields: map[string]collector.Value{"job_level": {Type: schema.TypeText, Raw: "Senior", Text: "Senior"}},
	}
}

func TestMemoryStoreRoundTrip(t *testing.T) {
	store := NewMemoryStore(time.Minute)
	ctx := context.Background()

	got, err := store.Get(ctx, "s-1")
	require.NoError(t, err)
	assert.Nil(t, got, "absent session must yield nil, nil")

	require.NoError(t, store.Put(ctx, "s-1", testRecord("compensation")))

	got, err = store.Get(ctx, "s-1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "compensation", got.Route)
	assert.Equal(t, collector.StateCollecting, got.State)
	assert.Equal(t, "Senior", got.Fields["job_level"].Text)

	require.NoError(t, store.Delete(ctx, "s-1"))
	got, err = store.Get(ctx, "s-1")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestMemoryStoreExpiry(t *testing.T) {
	store := NewMemoryStore(10 * time.Millisecond)
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, "s-1", testRecord("policy")))
	time.Sleep(25 * time.Millisecond)

	got, err := store.Get(ctx, "s-1")
	require.NoError(t, err)
	assert.Nil(t, got, "abandoned session must read as absent")
	assert.Equal(t, 0, store.Len())
}

func TestMemoryStoreSweep(t *testing.T) {
	store := NewMemoryStore(10 * time.Millisecond)
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, "s-1", testRecord("policy")))
	require.NoError(t, store.Put(ctx, "s-2", testRecord("compensation")))
	time.Sleep(25 * time.Millisecond)
	require.NoError(t, store.Put(ctx, "s-3", testRecord("compensation")))

	removed := store.Sweep()
	assert.Equal(t, 2, removed)
	assert.Equal(t, 1, store.Len())

	got, err := store.Get(ctx, "s-3")
	require.NoError(t, err)
	assert.NotNil(t, got, "fresh session must survive the sweep")
}

func TestMemoryStoreGaugeFollowsOccupancy(t *testing.T) {
	store := NewMemoryStore(10 * time.Millisecond)
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, "s-1", testRecord("policy")))
	require.NoError(t, store.Put(ctx, "s-2", testRecord("compensation")))
	assert.Equal(t, float64(2), testutil.ToFloat64(metrics.ActiveSessions))

	require.NoError(t, store.Delete(ctx, "s-1"))
	assert.Equal(t, float64(1), testutil.ToFloat64(metrics.ActiveSessions))

	time.Sleep(25 * time.Millisecond)
	store.Sweep()
	assert.Equal(t, float64(0), testutil.ToFloat64(metrics.ActiveSessions),
		"reaped sessions must not inflate the gauge")
}

func TestMemoryStoreZeroTTLNeverExpires(t *testing.T) {
	store := NewMemoryStore(0)
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, "s-1", testRecord("policy")))
	time.Sleep(5 * time.Millisecond)

	got, err := store.Get(ctx, "s-1")
	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Equal(t, 0, store.Sweep())
}
