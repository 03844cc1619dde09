package lock

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

func newLocker(t *testing.T) Locker {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return Locker{R: client, TTL: time.Minute}
}

func TestTryAcquireAndRelease(t *testing.T) {
	l := newLocker(t)
	ctx := context.Background()

	release, err := l.Try(ctx, "checkout:cart:abc")
	require.NoError(t, err)

	_, err = l.Try(ctx, "checkout:cart:abc")
	require.ErrorIs(t, err, ErrHeld)

	release()

	release2, err := l.Try(ctx, "checkout:cart:abc")
	require.NoError(t, err)
	release2()
}

func TestTryIndependentKeys(t *testing.T) {
	l := newLocker(t)
	ctx := context.Background()

	r1, err := l.Try(ctx, "checkout:cart:a")
	require.NoError(t, err)
	defer r1()

	r2, err := l.Try(ctx, "checkout:cart:b")
	require.NoError(t, err)
	defer r2()
}
