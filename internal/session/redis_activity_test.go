package session

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRedisStore(t *testing.T) (*RedisActivityStore, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	return NewRedisActivityStore(client), mr
}

func TestRedisActivityStoreRoundTrip(t *testing.T) {
	store, _ := newRedisStore(t)
	ctx := context.Background()
	at := time.Date(2026, 3, 1, 12, 30, 0, 0, time.UTC)

	require.NoError(t, store.Touch(ctx, "user:1", at))

	got, ok, err := store.LastActivity(ctx, "user:1")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, at.UnixMilli(), got.UnixMilli())
}

func TestRedisActivityStoreMissingKey(t *testing.T) {
	store, _ := newRedisStore(t)

	_, ok, err := store.LastActivity(context.Background(), "user:404")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRedisActivityStoreCorruptedValue(t *testing.T) {
	store, mr := newRedisStore(t)
	require.NoError(t, mr.Set(redisActivityPrefix+"user:1", "garbage"))

	_, ok, err := store.LastActivity(context.Background(), "user:1")
	require.NoError(t, err)
	assert.False(t, ok, "unparseable timestamps must read as absent")
}

func TestRedisActivityStoreRemove(t *testing.T) {
	store, _ := newRedisStore(t)
	ctx := context.Background()

	require.NoError(t, store.Touch(ctx, "user:1", time.Now()))
	require.NoError(t, store.Remove(ctx, "user:1"))

	_, ok, err := store.LastActivity(ctx, "user:1")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRedisActivityStoreKeysHaveTTL(t *testing.T) {
	store, mr := newRedisStore(t)

	require.NoError(t, store.Touch(context.Background(), "user:1", time.Now()))
	assert.Greater(t, mr.TTL(redisActivityPrefix+"user:1"), time.Duration(0),
		"activity keys must expire on their own")
}

func TestRedisActivityStoreSubscribe(t *testing.T) {
	store, _ := newRedisStore(t)
	ctx := context.Background()

	ch, cancel := store.Subscribe("user:1")
	defer cancel()

	// Subscription setup races the first publish; give it a moment.
	time.Sleep(50 * time.Millisecond)

	at := time.Date(2026, 3, 1, 12, 30, 0, 0, time.UTC)
	require.NoError(t, store.Touch(ctx, "user:1", at))

	select {
	case got := <-ch:
		assert.Equal(t, at.UnixMilli(), got.UnixMilli())
	case <-time.After(2 * time.Second):
		t.Fatal("expected a notification for the touched key")
	}
}
