package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T, ttl time.Duration) (*IdempotencyStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewIdempotencyStore(client, ttl), mr
}

func TestIdempotencyStore_ReserveFreshKey(t *testing.T) {
	store, mr := newTestStore(t, time.Hour)

	id, reserved, err := store.Reserve(context.Background(), "u1", "k")
	require.NoError(t, err)
	assert.True(t, reserved)
	assert.Empty(t, id)

	val, err := mr.Get("idem:task:u1:k")
	require.NoError(t, err)
	assert.Equal(t, pendingValue, val)
	assert.Equal(t, pendingTTL, mr.TTL("idem:task:u1:k"))
}

func TestIdempotencyStore_SecondReserveSeesPending(t *testing.T) {
	store, _ := newTestStore(t, time.Hour)
	ctx := context.Background()

	_, reserved, err := store.Reserve(ctx, "u1", "k")
	require.NoError(t, err)
	require.True(t, reserved)

	id, reserved, err := store.Reserve(ctx, "u1", "k")
	require.NoError(t, err)
	assert.False(t, reserved, "only one request may hold the key")
	assert.Empty(t, id, "a running request has no task id yet")
}

func TestIdempotencyStore_CompleteThenReserve(t *testing.T) {
	store, mr := newTestStore(t, time.Hour)
	ctx := context.Background()

	_, _, err := store.Reserve(ctx, "u1", "k")
	require.NoError(t, err)
	require.NoError(t, store.Complete(ctx, "u1", "k", "task-1"))
	assert.Equal(t, time.Hour, mr.TTL("idem:task:u1:k"))

	id, reserved, err := store.Reserve(ctx, "u1", "k")
	require.NoError(t, err)
	assert.False(t, reserved)
	assert.Equal(t, "task-1", id)
}

func TestIdempotencyStore_CompleteWithoutReservation(t *testing.T) {
	store, _ := newTestStore(t, time.Hour)

	assert.Error(t, store.Complete(context.Background(), "u1", "k", "task-1"))
}

func TestIdempotencyStore_KeysArePerActor(t *testing.T) {
	store, _ := newTestStore(t, time.Hour)
	ctx := context.Background()

	_, _, err := store.Reserve(ctx, "u1", "k")
	require.NoError(t, err)
	require.NoError(t, store.Complete(ctx, "u1", "k", "task-1"))

	_, reserved, err := store.Reserve(ctx, "u2", "k")
	require.NoError(t, err)
	assert.True(t, reserved)
}

func TestIdempotencyStore_Release(t *testing.T) {
	store, mr := newTestStore(t, time.Hour)
	ctx := context.Background()

	_, _, err := store.Reserve(ctx, "u1", "k")
	require.NoError(t, err)
	require.NoError(t, store.Release(ctx, "u1", "k"))
	assert.False(t, mr.Exists("idem:task:u1:k"))

	_, reserved, err := store.Reserve(ctx, "u1", "k")
	require.NoError(t, err)
	assert.True(t, reserved)
}

func TestIdempotencyStore_ReleaseKeepsCompletedKey(t *testing.T) {
	store, mr := newTestStore(t, time.Hour)
	ctx := context.Background()

	_, _, err := store.Reserve(ctx, "u1", "k")
	require.NoError(t, err)
	require.NoError(t, store.Complete(ctx, "u1", "k", "task-1"))
	require.NoError(t, store.Release(ctx, "u1", "k"))

	val, err := mr.Get("idem:task:u1:k")
	require.NoError(t, err)
	assert.Equal(t, "task-1", val)
}

func TestIdempotencyStore_Reclaim(t *testing.T) {
	store, _ := newTestStore(t, time.Hour)
	ctx := context.Background()

	_, _, err := store.Reserve(ctx, "u1", "k")
	require.NoError(t, err)
	require.NoError(t, store.Complete(ctx, "u1", "k", "task-1"))

	ok, err := store.Reclaim(ctx, "u1", "k", "task-1")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = store.Reclaim(ctx, "u1", "k", "task-1")
	require.NoError(t, err)
	assert.False(t, ok, "a second reclaim of the same stale id must lose")
}

func TestIdempotencyStore_PendingExpires(t *testing.T) {
	store, mr := newTestStore(t, time.Hour)
	ctx := context.Background()

	_, _, err := store.Reserve(ctx, "u1", "k")
	require.NoError(t, err)
	mr.FastForward(pendingTTL + time.Second)

	_, reserved, err := store.Reserve(ctx, "u1", "k")
	require.NoError(t, err)
	assert.True(t, reserved, "an abandoned reservation must not block the key forever")
}

func TestIdempotencyStore_Expires(t *testing.T) {
	store, mr := newTestStore(t, time.Minute)
	ctx := context.Background()

	_, _, err := store.Reserve(ctx, "u1", "k")
	require.NoError(t, err)
	require.NoError(t, store.Complete(ctx, "u1", "k", "task-1"))
	mr.FastForward(2 * time.Minute)

	_, reserved, err := store.Reserve(ctx, "u1", "k")
	require.NoError(t, err)
	assert.True(t, reserved)
}

func TestIdempotencyStore_DefaultTTL(t *testing.T) {
	store, _ := newTestStore(t, 0)
	assert.Equal(t, defaultIdempotencyTTL, store.ttl)
}

func TestIdempotencyStore_BackendDown(t *testing.T) {
	store, mr := newTestStore(t, time.Hour)
	mr.Close()

	_, _, err := store.Reserve(context.Background(), "u1", "k")
	assert.Error(t, err)
}

func TestConnect(t *testing.T) {
	mr := miniredis.RunT(t)

	client, err := Connect(context.Background(), Config{Addr: mr.Addr()})
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })

	assert.NoError(t, client.Ping(context.Background()).Err())
}

func TestConnect_Unreachable(t *testing.T) {
	_, err := Connect(context.Background(), Config{Addr: "127.0.0.1:1", Timeout: 200 * time.Millisecond})
	assert.Error(t, err)
}
