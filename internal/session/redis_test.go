package session

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redismock/v9"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mobility-intake/internal/collector"
)

func newRedisStore(t *testing.T, ttl time.Duration) (*RedisStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewRedisStore(client, ttl), mr
}

func TestRedisStoreRoundTrip(t *testing.T) {
	store, _ := newRedisStore(t, time.Minute)
	ctx := context.Background()

	got, err := store.Get(ctx, "s-1")
	require.NoError(t, err)
	assert.Nil(t, got, "absent session must yield nil, nil")

	rec := testRecord("compensation")
	rec.State = collector.StateConfirming
	require.NoError(t, store.Put(ctx, "s-1", rec))

	got, err = store.Get(ctx, "s-1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "compensation", got.Route)
	assert.Equal(t, collector.StateConfirming, got.State)
	assert.Equal(t, "Senior", got.Fields["job_level"].Text)

	require.NoError(t, store.Delete(ctx, "s-1"))
	got, err = store.Get(ctx, "s-1")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestRedisStoreAbandonmentTTL(t *testing.T) {
	store, mr := newRedisStore(t, 30*time.Minute)
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, "s-1", testRecord("policy")))
	assert.Equal(t, 30*time.Minute, mr.TTL(keyPrefix+"s-1"))

	mr.FastForward(31 * time.Minute)
	got, err := store.Get(ctx, "s-1")
	require.NoError(t, err)
	assert.Nil(t, got, "abandoned session must read as absent")
}

func TestRedisStorePutRefreshesTTL(t *testing.T) {
	store, mr := newRedisStore(t, 30*time.Minute)
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, "s-1", testRecord("policy")))
	mr.FastForward(20 * time.Minute)
	require.NoError(t, store.Put(ctx, "s-1", testRecord("policy")))

	assert.Equal(t, 30*time.Minute, mr.TTL(keyPrefix+"s-1"))
}

func TestRedisStoreCountDropsExpiredKeys(t *testing.T) {
	store, mr := newRedisStore(t, 30*time.Minute)
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, "s-1", testRecord("policy")))
	require.NoError(t, store.Put(ctx, "s-2", testRecord("compensation")))

	n, err := store.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	mr.FastForward(31 * time.Minute)
	n, err = store.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, n, "expired sessions must drop out of the count")
}

func TestRedisStoreGetPropagatesErrors(t *testing.T) {
	client, mock := redismock.NewClientMock()
	store := NewRedisStore(client, time.Minute)

	mock.ExpectGet(keyPrefix + "s-1").SetErr(assert.AnError)

	got, err := store.Get(context.Background(), "s-1")
	assert.Error(t, err)
	assert.Nil(t, got)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRedisStoreCorruptPayload(t *testing.T) {
	store, mr := newRedisStore(t, time.Minute)
	require.NoError(t, mr.Set(keyPrefix+"s-1", "{not json"))

	got, err := store.Get(context.Background(), "s-1")
	assert.Error(t, err)
	assert.Nil(t, got)
}
