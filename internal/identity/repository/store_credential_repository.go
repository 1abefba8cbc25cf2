// Package repository implements identity persistence on top of the TTL
// key/value store. Credentials and token metadata are stored as JSON values
// with expirations matching their lifecycle.
package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	apperrors "github.com/hdtickets/admission/internal/errors"
	"github.com/hdtickets/admission/internal/identity/domain"
	"github.com/hdtickets/admission/internal/store"
)

const (
	// credentialTTL bounds how long an API key record lives without rotation.
	credentialTTL = 5 * 365 * 24 * time.Hour
	// archivedCredentialTTL keeps rotated/revoked records for forensics.
	archivedCredentialTTL = 180 * 24 * time.Hour
	// invalidAttemptTTL is the counting window for failed secret checks.
	invalidAttemptTTL = time.Hour
)

// StoreCredentialRepository persists ApiCredential records in the key/value
// store, keyed by credential ID, with a per-user index for listing.
type StoreCredentialRepository struct {
	store store.Store
}

func credentialKey(id uuid.UUID) string {
	return "api_key:" + id.String()
}

func userCredentialsKey(userID uuid.UUID) string {
	return "user_api_keys:" + userID.String()
}

func invalidAttemptsKey(id uuid.UUID) string {
	return "invalid_api_key_attempts:" + id.String()
}

// Create stores a new credential and adds it to the owner's index.
func (r *StoreCredentialRepository) Create(ctx context.Context, credential *domain.ApiCredential) error {
	if err := store.PutJSON(ctx, r.store, credentialKey(credential.ID), credential, credentialTTL); err != nil {
		return apperrors.Wrap(err, "failed to store credential")
	}
	return r.addToIndex(ctx, credential.UserID, credential.ID)
}

// Get retrieves a credential by ID. Returns ErrCredentialNotFound when no
// record exists.
func (r *StoreCredentialRepository) Get(ctx context.Context, id uuid.UUID) (*domain.ApiCredential, error) {
	var credential domain.ApiCredential
	found, err := store.GetJSON(ctx, r.store, credentialKey(id), &credential)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to load credential")
	}
	if !found {
		return nil, domain.ErrCredentialNotFound
	}
	return &credential, nil
}

// Update overwrites an existing credential record.
func (r *StoreCredentialRepository) Update(ctx context.Context, credential *domain.ApiCredential) error {
	if err := store.PutJSON(ctx, r.store, credentialKey(credential.ID), credential, credentialTTL); err != nil {
		return apperrors.Wrap(err, "failed to update credential")
	}
	return nil
}

// ListByUser returns all live credentials owned by the given user. Index
// entries whose records have expired are skipped.
func (r *StoreCredentialRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]*domain.ApiCredential, error) {
	var ids []uuid.UUID
	found, err := store.GetJSON(ctx, r.store, userCredentialsKey(userID), &ids)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to load credential index")
	}
	if !found {
		return nil, nil
	}

	credentials := make([]*domain.ApiCredential, 0, len(ids))
	for _, id := range ids {
		credential, err := r.Get(ctx, id)
		if err != nil {
			if apperrors.Is(err, domain.ErrCredentialNotFound) {
				continue
			}
			return nil, err
		}
		credentials = append(credentials, credential)
	}
	return credentials, nil
}

// Archive moves a credential record out of its primary key so that the old
// secret stops validating while the record remains inspectable.
func (r *StoreCredentialRepository) Archive(ctx context.Context, credential *domain.ApiCredential, now time.Time) error {
	archiveKey := fmt.Sprintf("api_key_archived:%s:%d", credential.ID, now.Unix())
	if err := store.PutJSON(ctx, r.store, archiveKey, credential, archivedCredentialTTL); err != nil {
		return apperrors.Wrap(err, "failed to archive credential")
	}
	return nil
}

// IncrementInvalidAttempts bumps the failed-validation counter for a key ID
// and returns the count within the current window.
func (r *StoreCredentialRepository) IncrementInvalidAttempts(ctx context.Context, id uuid.UUID) (int64, error) {
	count, _, err := r.store.Increment(ctx, invalidAttemptsKey(id), 1, invalidAttemptTTL)
	if err != nil {
		return 0, apperrors.Wrap(err, "failed to count invalid attempts")
	}
	return count, nil
}

func (r *StoreCredentialRepository) addToIndex(ctx context.Context, userID, credentialID uuid.UUID) error {
	var ids []uuid.UUID
	if _, err := store.GetJSON(ctx, r.store, userCredentialsKey(userID), &ids); err != nil {
		return apperrors.Wrap(err, "failed to load credential index")
	}
	for _, id := range ids {
		if id == credentialID {
			return nil
		}
	}
	ids = append(ids, credentialID)
	if err := store.PutJSON(ctx, r.store, userCredentialsKey(userID), ids, credentialTTL); err != nil {
		return apperrors.Wrap(err, "failed to update credential index")
	}
	return nil
}

// NewStoreCredentialRepository creates a credential repository backed by the
// given store.
func NewStoreCredentialRepository(s store.Store) *StoreCredentialRepository {
	return &StoreCredentialRepository{store: s}
}
