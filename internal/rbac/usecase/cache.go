package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"

	apperrors "github.com/hdtickets/admission/internal/errors"
	"github.com/hdtickets/admission/internal/store"
)

// StorePermissionCache is a read-through cache over the shared store.
// Concurrent misses for the same user are collapsed into one computation via
// singleflight; Invalidate drops the entry synchronously so revocations take
// effect immediately rather than at TTL expiry.
type StorePermissionCache struct {
	store store.Store
	ttl   time.Duration
	group singleflight.Group
}

func permissionCacheKey(userID uuid.UUID) string {
	return "user_permissions:" + userID.String()
}

// GetOrCompute returns the cached permission set or computes and stores it.
// A failed cache write does not fail the lookup; the computed set is still
// returned.
func (c *StorePermissionCache) GetOrCompute(
	ctx context.Context,
	userID uuid.UUID,
	compute func(context.Context) ([]string, error),
) ([]string, error) {
	key := permissionCacheKey(userID)

	var cached []string
	found, err := store.GetJSON(ctx, c.store, key, &cached)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to read permission cache")
	}
	if found {
		return cached, nil
	}

	result, err, _ := c.group.Do(key, func() (any, error) {
		permissions, err := compute(ctx)
		if err != nil {
			return nil, err
		}
		_ = store.PutJSON(ctx, c.store, key, permissions, c.ttl)
		return permissions, nil
	})
	if err != nil {
		return nil, err
	}
	return result.([]string), nil
}

// Invalidate drops the cached set for a user.
func (c *StorePermissionCache) Invalidate(ctx context.Context, userID uuid.UUID) error {
	c.group.Forget(permissionCacheKey(userID))
	if err := c.store.Forget(ctx, permissionCacheKey(userID)); err != nil {
		return apperrors.Wrap(err, "failed to invalidate permission cache")
	}
	return nil
}

// NewStorePermissionCache creates a permission cache with the given TTL.
func NewStorePermissionCache(s store.Store, ttl time.Duration) *StorePermissionCache {
	return &StorePermissionCache{store: s, ttl: ttl}
}
