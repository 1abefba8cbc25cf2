// Package repository implements RBAC persistence on top of the TTL
// key/value store.
package repository

import (
	"context"
	"time"

	apperrors "github.com/hdtickets/admission/internal/errors"
	rbacDomain "github.com/hdtickets/admission/internal/rbac/domain"
	"github.com/hdtickets/admission/internal/store"
)

// dynamicRolesKey holds the full dynamic role set as one JSON document.
const dynamicRolesKey = "dynamic_roles"

// dynamicRolesTTL bounds how long runtime roles survive without re-creation.
const dynamicRolesTTL = 30 * 24 * time.Hour

// StoreDynamicRoleRepository persists runtime-created roles in the store.
type StoreDynamicRoleRepository struct {
	store store.Store
}

// GetAll loads the dynamic role set. A missing document yields an empty map.
func (r *StoreDynamicRoleRepository) GetAll(ctx context.Context) (map[string]*rbacDomain.DynamicRole, error) {
	roles := map[string]*rbacDomain.DynamicRole{}
	if _, err := store.GetJSON(ctx, r.store, dynamicRolesKey, &roles); err != nil {
		return nil, apperrors.Wrap(err, "failed to load dynamic roles")
	}
	return roles, nil
}

// SaveAll rewrites the dynamic role set, restarting its 30-day TTL.
func (r *StoreDynamicRoleRepository) SaveAll(ctx context.Context, roles map[string]*rbacDomain.DynamicRole) error {
	if err := store.PutJSON(ctx, r.store, dynamicRolesKey, roles, dynamicRolesTTL); err != nil {
		return apperrors.Wrap(err, "failed to store dynamic roles")
	}
	return nil
}

// NewStoreDynamicRoleRepository creates a dynamic role repository backed by
// the given store.
func NewStoreDynamicRoleRepository(s store.Store) *StoreDynamicRoleRepository {
	return &StoreDynamicRoleRepository{store: s}
}
