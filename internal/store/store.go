// Package store defines the shared TTL key-value store that holds all
// cross-request admission state (counters, credentials, tokens, devices,
// cached permissions). Correctness of the rate limiter depends on Increment
// being atomic; a plain read-modify-write would under-count concurrent
// requests and allow limit bypass.
package store

import (
	"context"
	"encoding/json"
	"time"

	apperrors "github.com/hdtickets/admission/internal/errors"
)

// Store is the TTL key-value collaborator consumed by every admission component.
type Store interface {
	// Get returns the value for key. The second return value reports whether
	// the key exists.
	Get(ctx context.Context, key string) (string, bool, error)

	// Put stores value under key. A zero ttl stores the value without expiry.
	Put(ctx context.Context, key, value string, ttl time.Duration) error

	// Increment atomically adds delta to the integer counter at key and
	// returns the post-increment value together with the key's remaining TTL.
	// When the increment creates the key and ttl is positive, the key's TTL is
	// set to ttl; an existing TTL is never extended. Both return values come
	// from the same atomic operation: a separate read after the increment
	// races under concurrency.
	Increment(ctx context.Context, key string, delta int64, ttl time.Duration) (int64, time.Duration, error)

	// Forget removes key. Removing a missing key is not an error.
	Forget(ctx context.Context, key string) error

	// RemainingTTL returns the remaining lifetime of key. It returns zero when
	// the key does not exist or has no expiry.
	RemainingTTL(ctx context.Context, key string) (time.Duration, error)
}

// GetJSON reads key and unmarshals it into out. The second return value
// reports whether the key exists.
func GetJSON(ctx context.Context, s Store, key string, out any) (bool, error) {
	raw, ok, err := s.Get(ctx, key)
	if err != nil || !ok {
		return false, err
	}
	if err := json.Unmarshal([]byte(raw), out); err != nil {
		return false, apperrors.Wrapf(err, "failed to decode stored value for %q", key)
	}
	return true, nil
}

// PutJSON marshals value and stores it under key.
func PutJSON(ctx context.Context, s Store, key string, value any, ttl time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return apperrors.Wrapf(err, "failed to encode value for %q", key)
	}
	return s.Put(ctx, key, string(raw), ttl)
}
