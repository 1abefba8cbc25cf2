package store

import (
	"context"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemory_PutGet(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	t.Run("ReturnsStoredValue", func(t *testing.T) {
		require.NoError(t, m.Put(ctx, "key", "value", 0))

		value, ok, err := m.Get(ctx, "key")
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, "value", value)
	})

	t.Run("MissingKey", func(t *testing.T) {
		_, ok, err := m.Get(ctx, "missing")
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("ExpiredKeyIsGone", func(t *testing.T) {
		now := time.Now()
		m := NewMemory()
		m.Now = func() time.Time { return now }

		require.NoError(t, m.Put(ctx, "key", "value", time.Minute))

		now = now.Add(2 * time.Minute)
		_, ok, err := m.Get(ctx, "key")
		require.NoError(t, err)
		assert.False(t, ok)
	})
}

func TestMemory_Increment(t *testing.T) {
	ctx := context.Background()

	t.Run("CreatesCounterWithTTL", func(t *testing.T) {
		now := time.Now()
		m := NewMemory()
		m.Now = func() time.Time { return now }

		value, ttl, err := m.Increment(ctx, "counter", 1, time.Minute)
		require.NoError(t, err)
		assert.Equal(t, int64(1), value)
		assert.Equal(t, time.Minute, ttl)
	})

	t.Run("LaterIncrementsKeepTheWindowTTL", func(t *testing.T) {
		now := time.Now()
		m := NewMemory()
		m.Now = func() time.Time { return now }

		_, _, err := m.Increment(ctx, "counter", 1, time.Minute)
		require.NoError(t, err)

		now = now.Add(30 * time.Second)
		value, ttl, err := m.Increment(ctx, "counter", 1, time.Minute)
		require.NoError(t, err)
		assert.Equal(t, int64(2), value)
		assert.Equal(t, 30*time.Second, ttl, "the window TTL is never extended")
	})

	t.Run("CounterResetsAfterExpiry", func(t *testing.T) {
		now := time.Now()
		m := NewMemory()
		m.Now = func() time.Time { return now }

		for i := 0; i < 5; i++ {
			_, _, err := m.Increment(ctx, "counter", 1, time.Minute)
			require.NoError(t, err)
		}

		now = now.Add(61 * time.Second)
		value, _, err := m.Increment(ctx, "counter", 1, time.Minute)
		require.NoError(t, err)
		assert.Equal(t, int64(1), value)
	})

	t.Run("NonIntegerValueFails", func(t *testing.T) {
		m := NewMemory()
		require.NoError(t, m.Put(ctx, "key", "not-a-number", 0))

		_, _, err := m.Increment(ctx, "key", 1, 0)
		assert.Error(t, err)
	})

	t.Run("ConcurrentIncrementsDoNotLoseUpdates", func(t *testing.T) {
		m := NewMemory()
		const workers = 50

		var wg sync.WaitGroup
		wg.Add(workers)
		for i := 0; i < workers; i++ {
			go func() {
				defer wg.Done()
				_, _, _ = m.Increment(ctx, "counter", 1, time.Minute)
			}()
		}
		wg.Wait()

		value, ok, err := m.Get(ctx, "counter")
		require.NoError(t, err)
		require.True(t, ok)
		assert.Equal(t, strconv.Itoa(workers), value)
	})
}

func TestMemory_Forget(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	require.NoError(t, m.Put(ctx, "key", "value", 0))
	require.NoError(t, m.Forget(ctx, "key"))

	_, ok, err := m.Get(ctx, "key")
	require.NoError(t, err)
	assert.False(t, ok)

	// Forgetting a missing key is not an error.
	assert.NoError(t, m.Forget(ctx, "missing"))
}

func TestGetJSON(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	type record struct {
		Name  string `json:"name"`
		Count int    `json:"count"`
	}

	t.Run("RoundTrip", func(t *testing.T) {
		require.NoError(t, PutJSON(ctx, m, "record", record{Name: "ticket", Count: 3}, 0))

		var out record
		ok, err := GetJSON(ctx, m, "record", &out)
		require.NoError(t, err)
		require.True(t, ok)
		assert.Equal(t, record{Name: "ticket", Count: 3}, out)
	})

	t.Run("MissingKey", func(t *testing.T) {
		var out record
		ok, err := GetJSON(ctx, m, "missing", &out)
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("CorruptValue", func(t *testing.T) {
		require.NoError(t, m.Put(ctx, "corrupt", "{", 0))

		var out record
		_, err := GetJSON(ctx, m, "corrupt", &out)
		assert.Error(t, err)
	})
}
