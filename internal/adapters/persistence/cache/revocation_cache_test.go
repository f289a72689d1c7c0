package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCache(t *testing.T) (*RevocationCache, *miniredis.Miniredis) {
	t.Helper()

	srv := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: srv.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	return NewRevocationCache(client), srv
}

func TestRevocationCache_Miss(t *testing.T) {
	c, _ := newTestCache(t)

	revoked, found, err := c.Get(context.Background(), "jti-1")
	require.NoError(t, err)
	assert.False(t, found)
	assert.False(t, revoked)
}

func TestRevocationCache_SetAndGet(t *testing.T) {
	c, srv := newTestCache(t)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "jti-1", true, time.Hour))
	require.NoError(t, c.Set(ctx, "jti-2", false, time.Minute))

	revoked, found, err := c.Get(ctx, "jti-1")
	require.NoError(t, err)
	assert.True(t, found)
	assert.True(t, revoked)

	revoked, found, err = c.Get(ctx, "jti-2")
	require.NoError(t, err)
	assert.True(t, found)
	assert.False(t, revoked)

	// raw token ids never appear in keys
	for _, key := range srv.Keys() {
		assert.NotContains(t, key, "jti-1")
	}
}

func TestRevocationCache_Expires(t *testing.T) {
	c, srv := newTestCache(t)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "jti-1", true, time.Minute))
	srv.FastForward(2 * time.Minute)

	_, found, err := c.Get(ctx, "jti-1")
	require.NoError(t, err)
	assert.False(t, found)
}

func TestRevocationCache_IgnoresNonPositiveTTL(t *testing.T) {
	c, srv := newTestCache(t)

	require.NoError(t, c.Set(context.Background(), "jti-1", true, 0))
	assert.Empty(t, srv.Keys())
}

func TestRevocationCache_ServerDown(t *testing.T) {
	c, srv := newTestCache(t)
	srv.Close()

	_, _, err := c.Get(context.Background(), "jti-1")
	assert.Error(t, err)
}

func TestRedis_Ping(t *testing.T) {
	srv := miniredis.RunT(t)
	r := &Redis{Client: redis.NewClient(&redis.Options{Addr: srv.Addr()})}
	defer r.Close()

	assert.NoError(t, r.Ping(context.Background()))

	var missing *Redis
	assert.Error(t, missing.Ping(context.Background()))
}
