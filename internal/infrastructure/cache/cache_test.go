package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func setupTestCache(t *testing.T) (*RedisCache, *miniredis.Miniredis) {
	t.Helper()

	s, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(s.Close)

	client := redis.NewClient(&redis.Options{Addr: s.Addr()})
	c := NewRedisCacheWithClient(client, zaptest.NewLogger(t))
	t.Cleanup(func() { _ = c.Close() })

	return c, s
}

type payload struct {
	Name  string  `json:"name"`
	Score float64 `json:"score"`
}

func TestGetSetRoundTrip(t *testing.T) {
	c, _ := setupTestCache(t)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "summary", payload{Name: "acme", Score: 82.5}, time.Minute))

	var got payload
	hit, err := c.Get(ctx, "summary", &got)
	require.NoError(t, err)
	assert.True(t, hit)
	assert.Equal(t, "acme", got.Name)
	assert.InDelta(t, 82.5, got.Score, 0.001)
}

func TestGetMiss(t *testing.T) {
	c, _ := setupTestCache(t)

	var got payload
	hit, err := c.Get(context.Background(), "absent", &got)
	require.NoError(t, err)
	assert.False(t, hit)
}

func TestExpiry(t *testing.T) {
	c, s := setupTestCache(t)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "short", payload{Name: "x"}, time.Second))
	s.FastForward(2 * time.Second)

	var got payload
	hit, err := c.Get(ctx, "short", &got)
	require.NoError(t, err)
	assert.False(t, hit)
}

func TestCorruptEntryBehavesLikeMiss(t *testing.T) {
	c, s := setupTestCache(t)
	ctx := context.Background()

	require.NoError(t, s.Set("pcx:bad", "not json"))

	var got payload
	hit, err := c.Get(ctx, "bad", &got)
	require.NoError(t, err)
	assert.False(t, hit)

	// the corrupt entry is evicted
	assert.False(t, s.Exists("pcx:bad"))
}

func TestDelete(t *testing.T) {
	c, _ := setupTestCache(t)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "gone", payload{Name: "x"}, time.Minute))
	require.NoError(t, c.Delete(ctx, "gone"))

	var got payload
	hit, err := c.Get(ctx, "gone", &got)
	require.NoError(t, err)
	assert.False(t, hit)
}
