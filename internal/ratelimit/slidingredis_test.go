package ratelimit

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/checkout-api/internal/common"
)

func newLimiter(t *testing.T) Limiter {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return Limiter{Client: client, Prefix: "rl:"}
}

func TestAllowWithinLimit(t *testing.T) {
	l := newLimiter(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		allowed, _, _, err := l.Allow(ctx, "client:a", time.Minute, 3)
		require.NoError(t, err)
		require.True(t, allowed, "request %d should pass", i)
	}

	allowed, remaining, _, err := l.Allow(ctx, "client:a", time.Minute, 3)
	require.NoError(t, err)
	require.False(t, allowed)
	require.Zero(t, remaining)
}

func TestAllowKeysAreIndependent(t *testing.T) {
	l := newLimiter(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, _, _, err := l.Allow(ctx, "client:a", time.Minute, 3)
		require.NoError(t, err)
	}
	allowed, _, _, err := l.Allow(ctx, "client:b", time.Minute, 3)
	require.NoError(t, err)
	require.True(t, allowed)
}

func TestAllowDisabledWithoutClient(t *testing.T) {
	allowed, _, _, err := Limiter{}.Allow(context.Background(), "x", time.Minute, 3)
	require.NoError(t, err)
	require.True(t, allowed)
}

func TestMiddlewareReturns429(t *testing.T) {
	l := newLimiter(t)
	h := Handler{
		Limiter: l,
		Config:  Config{Key: ClientKey, Window: time.Minute, Max: 1},
	}
	next := h.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	ctx := common.WithClientID(context.Background(), "abc")
	for i, want := range []int{http.StatusNoContent, http.StatusTooManyRequests} {
		req := httptest.NewRequest(http.MethodPost, "/v1/checkout", nil).WithContext(ctx)
		rec := httptest.NewRecorder()
		next.ServeHTTP(rec, req)
		require.Equal(t, want, rec.Code, "request %d", i)
	}
}
