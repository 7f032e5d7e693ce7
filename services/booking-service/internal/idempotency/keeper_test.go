package idempotency

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func exerciseKeeper(t *testing.T, k Keeper) {
	t.Helper()
	ctx := context.Background()

	id, reserved, err := k.Reserve(ctx, "k1", "fp-a")
	require.NoError(t, err)
	assert.True(t, reserved)
	assert.Empty(t, id)

	_, reserved, err = k.Reserve(ctx, "k1", "fp-a")
	assert.ErrorIs(t, err, ErrInFlight)
	assert.False(t, reserved)

	_, _, err = k.Reserve(ctx, "k1", "fp-b")
	assert.ErrorIs(t, err, ErrKeyReused, "in-flight key with other content")

	require.NoError(t, k.Complete(ctx, "k1", "fp-a", "appt-1"))
	id, reserved, err = k.Reserve(ctx, "k1", "fp-a")
	require.NoError(t, err)
	assert.False(t, reserved)
	assert.Equal(t, "appt-1", id)

	id, reserved, err = k.Reserve(ctx, "k1", "fp-b")
	assert.ErrorIs(t, err, ErrKeyReused)
	assert.False(t, reserved)
	assert.Empty(t, id, "another submission must not see the stored appointment")

	_, reserved, err = k.Reserve(ctx, "k2", "fp-a")
	require.NoError(t, err)
	require.True(t, reserved)
	require.NoError(t, k.Release(ctx, "k2"))
	_, reserved, err = k.Reserve(ctx, "k2", "fp-b")
	require.NoError(t, err)
	assert.True(t, reserved, "released key can be reserved again")
}

func TestMemoryKeeper(t *testing.T) {
	exerciseKeeper(t, NewMemoryKeeper(time.Minute))
}

func TestMemoryKeeperExpiry(t *testing.T) {
	k := NewMemoryKeeper(time.Minute)
	now := time.Date(2024, 7, 17, 9, 0, 0, 0, time.UTC)
	k.now = func() time.Time { return now }

	ctx := context.Background()
	_, _, _ = k.Reserve(ctx, "k", "fp-a")
	require.NoError(t, k.Complete(ctx, "k", "fp-a", "appt"))

	now = now.Add(2 * time.Minute)
	_, reserved, err := k.Reserve(ctx, "k", "fp-b")
	require.NoError(t, err)
	assert.True(t, reserved)
}

func TestRedisKeeper(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	k := NewRedisKeeper(rdb, time.Minute, "test:")
	exerciseKeeper(t, k)

	assert.Equal(t, "fp-a appt-1", mustGet(t, mr, "test:k1"))
	mr.FastForward(2 * time.Minute)
	assert.False(t, mr.Exists("test:k1"))
}

func TestRedisKeeperUnavailable(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	mr.Close()

	_, _, err := NewRedisKeeper(rdb, time.Minute, "").Reserve(context.Background(), "k", "fp")
	assert.Error(t, err)
}

func mustGet(t *testing.T, mr *miniredis.Miniredis, key string) string {
	t.Helper()
	v, err := mr.Get(key)
	require.NoError(t, err)
	return v
}
