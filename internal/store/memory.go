package store

import (
	"context"
	"strconv"
	"sync"
	"time"

	apperrors "github.com/hdtickets/admission/internal/errors"
)

// entry holds a stored value with its absolute expiry. A zero expiry means the
// entry never expires.
type entry struct {
	value     string
	expiresAt time.Time
}

// Memory is an in-process Store used by tests and local development. All
// operations hold a single mutex, which makes Increment atomic with the same
// semantics the Redis backend provides.
type Memory struct {
	mu      sync.Mutex
	entries map[string]entry

	// Now is the clock used for expiry checks. Tests override it to move
	// through rate-limit windows without sleeping.
	Now func() time.Time
}

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{
		entries: make(map[string]entry),
		Now:     time.Now,
	}
}

// Get returns the value for key if present and not expired.
func (m *Memory) Get(_ context.Context, key string) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.live(key)
	if !ok {
		return "", false, nil
	}
	return e.value, true, nil
}

// Put stores value under key with the given TTL.
func (m *Memory) Put(_ context.Context, key, value string, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.entries[key] = entry{value: value, expiresAt: m.expiry(ttl)}
	return nil
}

// Increment atomically adds delta to the counter at key, creating it with the
// given TTL when absent or expired. The remaining TTL is read under the same
// lock as the increment.
func (m *Memory) Increment(_ context.Context, key string, delta int64, ttl time.Duration) (int64, time.Duration, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.live(key)
	if !ok {
		m.entries[key] = entry{value: strconv.FormatInt(delta, 10), expiresAt: m.expiry(ttl)}
		return delta, ttl, nil
	}

	current, err := strconv.ParseInt(e.value, 10, 64)
	if err != nil {
		return 0, 0, apperrors.Wrapf(err, "key %q does not hold an integer", key)
	}

	current += delta
	e.value = strconv.FormatInt(current, 10)
	m.entries[key] = e

	var remaining time.Duration
	if !e.expiresAt.IsZero() {
		remaining = e.expiresAt.Sub(m.Now())
	}
	return current, remaining, nil
}

// Forget removes key.
func (m *Memory) Forget(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.entries, key)
	return nil
}

// RemainingTTL returns the remaining lifetime of key, or zero when the key is
// missing or has no expiry.
func (m *Memory) RemainingTTL(_ context.Context, key string) (time.Duration, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.live(key)
	if !ok || e.expiresAt.IsZero() {
		return 0, nil
	}
	return e.expiresAt.Sub(m.Now()), nil
}

// live returns the entry for key, dropping it when expired. Callers must hold mu.
func (m *Memory) live(key string) (entry, bool) {
	e, ok := m.entries[key]
	if !ok {
		return entry{}, false
	}
	if !e.expiresAt.IsZero() && !e.expiresAt.After(m.Now()) {
		delete(m.entries, key)
		return entry{}, false
	}
	return e, true
}

// expiry converts a TTL into an absolute expiry. Callers must hold mu.
func (m *Memory) expiry(ttl time.Duration) time.Time {
	if ttl <= 0 {
		return time.Time{}
	}
	return m.Now().Add(ttl)
}
