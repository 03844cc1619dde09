package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

type payload struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

func newCache(t *testing.T, ttl time.Duration) (*Cache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return New(client, ttl), mr
}

func TestSetAndGetJSON(t *testing.T) {
	c, _ := newCache(t, time.Minute)
	ctx := context.Background()

	require.NoError(t, c.SetJSON(ctx, "k", payload{Name: "a", Count: 2}))

	var got payload
	ok, err := c.GetJSON(ctx, "k", &got)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, payload{Name: "a", Count: 2}, got)
}

func TestGetJSONMiss(t *testing.T) {
	c, _ := newCache(t, time.Minute)

	var got payload
	ok, err := c.GetJSON(context.Background(), "absent", &got)
	require.NoError(t, err)
	require.False(t, ok)
}

func TestEntriesExpire(t *testing.T) {
	c, mr := newCache(t, time.Second)
	ctx := context.Background()

	require.NoError(t, c.SetJSON(ctx, "k", payload{Name: "a"}))
	mr.FastForward(2 * time.Second)

	var got payload
	ok, err := c.GetJSON(ctx, "k", &got)
	require.NoError(t, err)
	require.False(t, ok)
}

func TestNilCacheIsSilent(t *testing.T) {
	var c *Cache
	ok, err := c.GetJSON(context.Background(), "k", &payload{})
	require.NoError(t, err)
	require.False(t, ok)
	require.NoError(t, c.SetJSON(context.Background(), "k", payload{}))
	require.NoError(t, c.Delete(context.Background(), "k"))
}
