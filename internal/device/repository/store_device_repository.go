// Package repository implements device persistence on top of the TTL
// key/value store. Each user's devices live in one JSON document keyed by
// fingerprint.
package repository

import (
	"context"
	"time"

	"github.com/google/uuid"

	deviceDomain "github.com/hdtickets/admission/internal/device/domain"
	apperrors "github.com/hdtickets/admission/internal/errors"
	"github.com/hdtickets/admission/internal/store"
)

// StoreDeviceRepository persists a user's device set as a single JSON map.
// The TTL of the document matches the longest-lived device's expiry.
type StoreDeviceRepository struct {
	store store.Store
	ttl   time.Duration
}

func devicesKey(userID uuid.UUID) string {
	return "devices:" + userID.String()
}

// GetAll loads the full device set for a user, including expired entries.
// Callers decide whether expired devices still count.
func (r *StoreDeviceRepository) GetAll(ctx context.Context, userID uuid.UUID) (map[string]*deviceDomain.Device, error) {
	devices := map[string]*deviceDomain.Device{}
	if _, err := store.GetJSON(ctx, r.store, devicesKey(userID), &devices); err != nil {
		return nil, apperrors.Wrap(err, "failed to load devices")
	}
	return devices, nil
}

// SaveAll rewrites the full device set for a user.
func (r *StoreDeviceRepository) SaveAll(ctx context.Context, userID uuid.UUID, devices map[string]*deviceDomain.Device) error {
	if len(devices) == 0 {
		return r.DeleteAll(ctx, userID)
	}
	if err := store.PutJSON(ctx, r.store, devicesKey(userID), devices, r.ttl); err != nil {
		return apperrors.Wrap(err, "failed to store devices")
	}
	return nil
}

// DeleteAll removes every device record for a user.
func (r *StoreDeviceRepository) DeleteAll(ctx context.Context, userID uuid.UUID) error {
	if err := r.store.Forget(ctx, devicesKey(userID)); err != nil {
		return apperrors.Wrap(err, "failed to delete devices")
	}
	return nil
}

// NewStoreDeviceRepository creates a device repository backed by the given
// store. The document TTL should match the device trust expiration.
func NewStoreDeviceRepository(s store.Store, ttl time.Duration) *StoreDeviceRepository {
	return &StoreDeviceRepository{store: s, ttl: ttl}
}
