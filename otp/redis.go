package otp

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// verifyScript compares and deletes in one round trip so a code can only be consumed once.
var verifyScript = redis.NewScript(`
local stored = redis.call("GET", KEYS[1])
if not stored then
  return 0
end
if stored ~= ARGV[1] then
  return -1
end
redis.call("DEL", KEYS[1])
return 1
`)

// RedisLedger shares pending codes between instances. Expiry is enforced by
// the key TTL, so an expired code is indistinguishable from a missing one.
type RedisLedger struct {
	client *redis.Client
	prefix string
}

func NewRedisLedger(client *redis.Client, prefix string) *RedisLedger {
	if prefix == "" {
		prefix = "otp"
	}
	return &RedisLedger{client: client, prefix: prefix}
}

func (l *RedisLedger) key(mobile string) string {
	return l.prefix + ":" + mobile
}

func (l *RedisLedger) Issue(ctx context.Context, mobile, code string, ttl time.Duration) (time.Time, error) {
	if err := l.client.Set(ctx, l.key(mobile), code, ttl).Err(); err != nil {
		return time.Time{}, err
	}
	return time.Now().Add(ttl), nil
}

func (l *RedisLedger) Verify(ctx context.Context, mobile, code string) error {
	res, err := verifyScript.Run(ctx, l.client, []string{l.key(mobile)}, code).Int()
	if err != nil {
		return err
	}
	switch res {
	case 1:
		return nil
	case -1:
		return ErrMismatch
	default:
		return ErrNotFound
	}
}

// Sweep is a no-op; Redis expires keys on its own.
func (l *RedisLedger) Sweep(context.Context) (int, error) {
	return 0, nil
}
