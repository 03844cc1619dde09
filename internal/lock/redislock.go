package lock

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// ErrHeld is returned by Try when another holder owns the key.
var ErrHeld = errors.New("lock: already held")

// Locker provides a Redis-backed distributed lock keyed per cart so two
// concurrent finalize requests for the same cart never race the gateways.
type Locker struct {
	R   *redis.Client
	TTL time.Duration
}

// Try acquires the lock for key without waiting. On success it returns a
// release function; when the key is already held it returns ErrHeld.
func (l Locker) Try(ctx context.Context, key string) (func(), error) {
	if l.R == nil {
		return nil, errors.New("lock: redis client not configured")
	}
	ttl := l.TTL
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	token := uuid.NewString()
	ok, err := l.R.SetNX(ctx, key, token, ttl).Result()
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrHeld
	}
	return func() { l.release(context.Background(), key, token) }, nil
}

// release deletes the key only when it still carries our token, so an expired
// lock reacquired by someone else is never removed.
func (l Locker) release(ctx context.Context, key, token string) {
	const script = `if redis.call("get", KEYS[1]) == ARGV[1] then
  return redis.call("del", KEYS[1])
else
  return 0
end`
	if err := l.R.Eval(ctx, script, []string{key}, token).Err(); err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "unknown command") {
			_ = l.R.Del(ctx, key).Err()
		}
	}
}
