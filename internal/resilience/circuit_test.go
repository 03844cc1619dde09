package resilience_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/noah-isme/checkout-api/internal/resilience"
)

func TestBreakerOpensOnFailureRatio(t *testing.T) {
	t.Parallel()

	b := resilience.NewBreaker(4, 0.5, time.Minute)
	for i := 0; i < 2; i++ {
		require.True(t, b.Allow())
		b.Report(true)
	}
	for i := 0; i < 2; i++ {
		require.True(t, b.Allow())
		b.Report(false)
	}
	require.Equal(t, resilience.Open, b.CurrentState())
	require.False(t, b.Allow())
}

func TestBreakerHalfOpenRecovers(t *testing.T) {
	t.Parallel()

	b := resilience.NewBreaker(1, 0.5, 10*time.Millisecond)
	require.True(t, b.Allow())
	b.Report(false)
	require.Equal(t, resilience.Open, b.CurrentState())

	time.Sleep(20 * time.Millisecond)
	require.True(t, b.Allow())
	require.Equal(t, resilience.HalfOpen, b.CurrentState())
	b.Report(true)
	require.Equal(t, resilience.Closed, b.CurrentState())
}

func TestBackoffGrowsWithAttempts(t *testing.T) {
	t.Parallel()

	base := 100 * time.Millisecond
	first := resilience.Backoff(base, 1, 0)
	third := resilience.Backoff(base, 3, 0)
	require.Equal(t, base, first)
	require.Equal(t, 4*base, third)
}
