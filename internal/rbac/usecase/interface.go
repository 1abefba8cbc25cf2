// Package usecase defines business logic interfaces for permission
// resolution and RBAC mutations.
package usecase

import (
	"context"

	"github.com/google/uuid"

	identityDomain "github.com/hdtickets/admission/internal/identity/domain"
	rbacDomain "github.com/hdtickets/admission/internal/rbac/domain"
	userDomain "github.com/hdtickets/admission/internal/user/domain"
)

// UserDirectory resolves and mutates user accounts for RBAC operations.
type UserDirectory interface {
	// FindByID retrieves a user by ID. Returns ErrUserNotFound if not found.
	FindByID(ctx context.Context, id uuid.UUID) (*userDomain.User, error)

	// UpdateCustomPermissions replaces a user's custom grant list.
	UpdateCustomPermissions(ctx context.Context, id uuid.UUID, permissions []string) error

	// UpdateRole changes a user's role.
	UpdateRole(ctx context.Context, id uuid.UUID, role string) error
}

// DynamicRoleRepository persists runtime-created roles.
type DynamicRoleRepository interface {
	// GetAll loads the dynamic role set.
	GetAll(ctx context.Context) (map[string]*rbacDomain.DynamicRole, error)

	// SaveAll rewrites the dynamic role set.
	SaveAll(ctx context.Context, roles map[string]*rbacDomain.DynamicRole) error
}

// PermissionCache caches effective permission sets per user with explicit
// invalidation.
type PermissionCache interface {
	// GetOrCompute returns the cached set or computes, stores, and returns it.
	GetOrCompute(ctx context.Context, userID uuid.UUID, compute func(context.Context) ([]string, error)) ([]string, error)

	// Invalidate drops the cached set for a user.
	Invalidate(ctx context.Context, userID uuid.UUID) error
}

// ResourcePolicy decides resource-scoped access for one resource type.
type ResourcePolicy interface {
	// ResourceType names the resource this policy covers.
	ResourceType() string

	// Allows reports whether the principal may perform the action on the
	// resource described by rctx.
	Allows(principal *identityDomain.Principal, action string, rctx *rbacDomain.ResourceContext) bool
}

// ResolverUseCase defines permission resolution and RBAC mutation operations.
type ResolverUseCase interface {
	// EffectivePermissions returns the principal's deduplicated, expanded
	// grant set: role grants, custom grants, and dynamic-role grants.
	EffectivePermissions(ctx context.Context, principal *identityDomain.Principal) ([]string, error)

	// HasPermission reports whether the principal holds the permission
	// directly, via inheritance, or via a resource policy.
	HasPermission(ctx context.Context, principal *identityDomain.Principal, permission string, rctx *rbacDomain.ResourceContext) (bool, error)

	// Require is HasPermission returning ErrMissingPermission or ErrNotOwner
	// instead of false.
	Require(ctx context.Context, principal *identityDomain.Principal, permission string, rctx *rbacDomain.ResourceContext) error

	// Grant adds a custom permission to a user. Unknown permissions are
	// rejected at the boundary.
	Grant(ctx context.Context, userID uuid.UUID, permission string, grantedBy uuid.UUID) error

	// Revoke removes a custom permission from a user.
	Revoke(ctx context.Context, userID uuid.UUID, permission string, revokedBy uuid.UUID) error

	// AssignRole changes a user's role. The role must exist in the static
	// catalog or as a dynamic role.
	AssignRole(ctx context.Context, userID uuid.UUID, role string, assignedBy uuid.UUID) error

	// CreateDynamicRole registers a runtime role with the given grants.
	CreateDynamicRole(ctx context.Context, name string, permissions []string, createdBy uuid.UUID) error

	// ValidateCatalog reports every structural defect in the catalog.
	ValidateCatalog() []rbacDomain.Issue
}
