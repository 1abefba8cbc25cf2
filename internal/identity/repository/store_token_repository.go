package repository

import (
	"context"
	"time"

	apperrors "github.com/hdtickets/admission/internal/errors"
	"github.com/hdtickets/admission/internal/identity/domain"
	"github.com/hdtickets/admission/internal/store"
)

// StoreTokenRepository persists JWT metadata keyed by jti. Deleting the
// record revokes the token; expiry is handled by the store TTL.
type StoreTokenRepository struct {
	store store.Store
}

func tokenKey(jti string) string {
	return "jwt:" + jti
}

// Create stores metadata for a newly issued token with a TTL matching the
// token's own expiration.
func (r *StoreTokenRepository) Create(ctx context.Context, metadata *domain.TokenMetadata, ttl time.Duration) error {
	if err := store.PutJSON(ctx, r.store, tokenKey(metadata.JTI), metadata, ttl); err != nil {
		return apperrors.Wrap(err, "failed to store token metadata")
	}
	return nil
}

// Get retrieves token metadata by jti. A missing record means the token was
// revoked or has expired; callers receive ErrTokenRevoked.
func (r *StoreTokenRepository) Get(ctx context.Context, jti string) (*domain.TokenMetadata, error) {
	var metadata domain.TokenMetadata
	found, err := store.GetJSON(ctx, r.store, tokenKey(jti), &metadata)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to load token metadata")
	}
	if !found {
		return nil, domain.ErrTokenRevoked
	}
	return &metadata, nil
}

// Update rewrites token metadata preserving the remaining TTL so that
// last-used bookkeeping never extends a token's life.
func (r *StoreTokenRepository) Update(ctx context.Context, metadata *domain.TokenMetadata) error {
	key := tokenKey(metadata.JTI)
	remaining, err := r.store.RemainingTTL(ctx, key)
	if err != nil {
		return apperrors.Wrap(err, "failed to read token ttl")
	}
	if remaining <= 0 {
		return domain.ErrTokenRevoked
	}
	if err := store.PutJSON(ctx, r.store, key, metadata, remaining); err != nil {
		return apperrors.Wrap(err, "failed to update token metadata")
	}
	return nil
}

// Delete removes token metadata, revoking the token immediately.
func (r *StoreTokenRepository) Delete(ctx context.Context, jti string) error {
	if err := r.store.Forget(ctx, tokenKey(jti)); err != nil {
		return apperrors.Wrap(err, "failed to delete token metadata")
	}
	return nil
}

// NewStoreTokenRepository creates a token metadata repository backed by the
// given store.
func NewStoreTokenRepository(s store.Store) *StoreTokenRepository {
	return &StoreTokenRepository{store: s}
}
