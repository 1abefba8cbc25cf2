package store

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	apperrors "github.com/hdtickets/admission/internal/errors"
)

// incrementScript adds delta to a counter and sets the TTL only when the key
// has none, so the first increment of a window starts its clock and later
// increments never extend it. Running as a script keeps the increment and the
// TTL assignment atomic.
var incrementScript = redis.NewScript(`
local value = redis.call('INCRBY', KEYS[1], ARGV[1])
local ttl = tonumber(ARGV[2])
if ttl > 0 and redis.call('PTTL', KEYS[1]) < 0 then
	redis.call('PEXPIRE', KEYS[1], ttl)
end
local remaining = redis.call('PTTL', KEYS[1])
if remaining < 0 then
	remaining = 0
end
return {value, remaining}
`)

// Redis is a Store backed by a shared Redis instance. This is the production
// backend: all admission state must live outside the process so any replica
// can serve any request.
type Redis struct {
	client  *redis.Client
	timeout time.Duration
}

// NewRedis creates a Redis store from a connection URL (redis://host:port/db).
func NewRedis(url string, timeout time.Duration) (*Redis, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to parse redis url")
	}
	return &Redis{
		client:  redis.NewClient(opts),
		timeout: timeout,
	}, nil
}

// Get returns the value for key.
func (r *Redis) Get(ctx context.Context, key string) (string, bool, error) {
	ctx, cancel := r.bound(ctx)
	defer cancel()

	value, err := r.client.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, r.wrap(err, "get", key)
	}
	return value, true, nil
}

// Put stores value under key with the given TTL.
func (r *Redis) Put(ctx context.Context, key, value string, ttl time.Duration) error {
	ctx, cancel := r.bound(ctx)
	defer cancel()

	if err := r.client.Set(ctx, key, value, ttl).Err(); err != nil {
		return r.wrap(err, "put", key)
	}
	return nil
}

// Increment atomically adds delta to the counter at key and returns the
// post-increment value with the key's remaining TTL, both read inside one
// script execution.
func (r *Redis) Increment(ctx context.Context, key string, delta int64, ttl time.Duration) (int64, time.Duration, error) {
	ctx, cancel := r.bound(ctx)
	defer cancel()

	result, err := incrementScript.Run(ctx, r.client, []string{key}, delta, ttl.Milliseconds()).Int64Slice()
	if err != nil {
		return 0, 0, r.wrap(err, "increment", key)
	}
	if len(result) != 2 {
		return 0, 0, apperrors.Wrapf(apperrors.ErrStoreUnavailable, "redis increment %q: unexpected script reply", key)
	}
	return result[0], time.Duration(result[1]) * time.Millisecond, nil
}

// Forget removes key.
func (r *Redis) Forget(ctx context.Context, key string) error {
	ctx, cancel := r.bound(ctx)
	defer cancel()

	if err := r.client.Del(ctx, key).Err(); err != nil {
		return r.wrap(err, "forget", key)
	}
	return nil
}

// RemainingTTL returns the remaining lifetime of key, or zero when the key is
// missing or has no expiry.
func (r *Redis) RemainingTTL(ctx context.Context, key string) (time.Duration, error) {
	ctx, cancel := r.bound(ctx)
	defer cancel()

	ttl, err := r.client.PTTL(ctx, key).Result()
	if err != nil {
		return 0, r.wrap(err, "ttl", key)
	}
	if ttl < 0 {
		// -1 (no expiry) and -2 (missing key) both report as zero.
		return 0, nil
	}
	return ttl, nil
}

// Close releases the underlying connection pool.
func (r *Redis) Close() error {
	return r.client.Close()
}

// bound derives a context with the configured store timeout.
func (r *Redis) bound(ctx context.Context) (context.Context, context.CancelFunc) {
	if r.timeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, r.timeout)
}

// wrap marks any transport failure as ErrStoreUnavailable so callers can
// apply the fail-closed contract with errors.Is.
func (r *Redis) wrap(err error, op, key string) error {
	return apperrors.Wrapf(apperrors.ErrStoreUnavailable, "redis %s %q: %v", op, key, err)
}
