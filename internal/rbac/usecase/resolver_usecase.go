// Package usecase implements permission resolution over the static catalog,
// user custom grants, and dynamic roles.
package usecase

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/hdtickets/admission/internal/audit"
	identityDomain "github.com/hdtickets/admission/internal/identity/domain"
	rbacDomain "github.com/hdtickets/admission/internal/rbac/domain"
)

// resolverUseCase implements ResolverUseCase.
type resolverUseCase struct {
	catalog       *rbacDomain.Catalog
	userDirectory UserDirectory
	dynamicRoles  DynamicRoleRepository
	cache         PermissionCache
	policies      map[string]ResourcePolicy
	auditRecorder audit.Recorder
}

// EffectivePermissions returns the principal's deduplicated grant set:
// expanded role grants, expanded custom grants, and dynamic-role grants.
// The computed set is cached per user; mutations invalidate synchronously.
func (r *resolverUseCase) EffectivePermissions(
	ctx context.Context,
	principal *identityDomain.Principal,
) ([]string, error) {
	return r.cache.GetOrCompute(ctx, principal.UserID, func(ctx context.Context) ([]string, error) {
		return r.computePermissions(ctx, principal)
	})
}

func (r *resolverUseCase) computePermissions(
	ctx context.Context,
	principal *identityDomain.Principal,
) ([]string, error) {
	set := map[string]bool{}

	if r.catalog.HasRoleDef(principal.Role) {
		rolePermissions, err := r.catalog.RolePermissions(principal.Role)
		if err != nil {
			return nil, err
		}
		for _, permission := range rolePermissions {
			set[permission] = true
		}
	}

	for _, custom := range principal.CustomPermissions {
		expanded, err := r.catalog.Expand(custom)
		if err != nil {
			// Grants are validated at the boundary; an unknown custom grant
			// here is stale data and is skipped rather than fatal.
			continue
		}
		for _, permission := range expanded {
			set[permission] = true
		}
	}

	dynamic, err := r.dynamicRoles.GetAll(ctx)
	if err != nil {
		return nil, err
	}
	if role, ok := dynamic[principal.Role]; ok {
		for _, grant := range role.Permissions {
			expanded, err := r.catalog.Expand(grant)
			if err != nil {
				continue
			}
			for _, permission := range expanded {
				set[permission] = true
			}
		}
	}

	permissions := make([]string, 0, len(set))
	for permission := range set {
		permissions = append(permissions, permission)
	}
	sort.Strings(permissions)
	return permissions, nil
}

// HasPermission reports whether the principal holds the permission. The
// effective set already contains every inherited grant, so membership covers
// both direct and inherited access; a registered resource policy may grant
// ownership-scoped access beyond that. Store errors deny.
func (r *resolverUseCase) HasPermission(
	ctx context.Context,
	principal *identityDomain.Principal,
	permission string,
	rctx *rbacDomain.ResourceContext,
) (bool, error) {
	permissions, err := r.EffectivePermissions(ctx, principal)
	if err != nil {
		return false, err
	}

	for _, granted := range permissions {
		if granted == permission {
			return true, nil
		}
	}

	if rctx != nil {
		if policy, ok := r.policies[rctx.Type]; ok {
			if policy.Allows(principal, permissionAction(permission), rctx) {
				return true, nil
			}
		}
	}

	return false, nil
}

// Require is HasPermission reporting denial as an error.
func (r *resolverUseCase) Require(
	ctx context.Context,
	principal *identityDomain.Principal,
	permission string,
	rctx *rbacDomain.ResourceContext,
) error {
	allowed, err := r.HasPermission(ctx, principal, permission, rctx)
	if err != nil {
		return err
	}
	if allowed {
		return nil
	}
	if rctx != nil {
		return rbacDomain.ErrNotOwner
	}
	return rbacDomain.ErrMissingPermission
}

// Grant adds a custom permission to a user and invalidates their cache.
func (r *resolverUseCase) Grant(ctx context.Context, userID uuid.UUID, permission string, grantedBy uuid.UUID) error {
	if !r.catalog.HasPermissionDef(permission) {
		return rbacDomain.ErrUnknownPermission
	}

	target, err := r.userDirectory.FindByID(ctx, userID)
	if err != nil {
		return err
	}

	for _, existing := range target.CustomPermissions {
		if existing == permission {
			return nil
		}
	}

	updated := append(append([]string{}, target.CustomPermissions...), permission)
	if err := r.userDirectory.UpdateCustomPermissions(ctx, userID, updated); err != nil {
		return err
	}
	if err := r.cache.Invalidate(ctx, userID); err != nil {
		return err
	}

	r.recordAudit(ctx, audit.EventPermissionGranted, map[string]any{
		"permission":     permission,
		"target_user_id": userID.String(),
		"granted_by":     grantedBy.String(),
	})
	return nil
}

// Revoke removes a custom permission from a user and invalidates their cache.
func (r *resolverUseCase) Revoke(ctx context.Context, userID uuid.UUID, permission string, revokedBy uuid.UUID) error {
	target, err := r.userDirectory.FindByID(ctx, userID)
	if err != nil {
		return err
	}

	updated := make([]string, 0, len(target.CustomPermissions))
	removed := false
	for _, existing := range target.CustomPermissions {
		if existing == permission {
			removed = true
			continue
		}
		updated = append(updated, existing)
	}
	if !removed {
		return nil
	}

	if err := r.userDirectory.UpdateCustomPermissions(ctx, userID, updated); err != nil {
		return err
	}
	if err := r.cache.Invalidate(ctx, userID); err != nil {
		return err
	}

	r.recordAudit(ctx, audit.EventPermissionRevoked, map[string]any{
		"permission":     permission,
		"target_user_id": userID.String(),
		"revoked_by":     revokedBy.String(),
	})
	return nil
}

// AssignRole changes a user's role and invalidates their cache. The role
// must exist in the static catalog or as a live dynamic role.
func (r *resolverUseCase) AssignRole(ctx context.Context, userID uuid.UUID, role string, assignedBy uuid.UUID) error {
	if !r.catalog.HasRoleDef(role) {
		dynamic, err := r.dynamicRoles.GetAll(ctx)
		if err != nil {
			return err
		}
		if _, ok := dynamic[role]; !ok {
			return rbacDomain.ErrUnknownRole
		}
	}

	target, err := r.userDirectory.FindByID(ctx, userID)
	if err != nil {
		return err
	}
	oldRole := target.Role

	if err := r.userDirectory.UpdateRole(ctx, userID, role); err != nil {
		return err
	}
	if err := r.cache.Invalidate(ctx, userID); err != nil {
		return err
	}

	r.recordAudit(ctx, audit.EventRoleAssigned, map[string]any{
		"old_role":       oldRole,
		"new_role":       role,
		"target_user_id": userID.String(),
		"assigned_by":    assignedBy.String(),
	})
	return nil
}

// CreateDynamicRole registers a runtime role. Every grant must exist in the
// permission catalog.
func (r *resolverUseCase) CreateDynamicRole(ctx context.Context, name string, permissions []string, createdBy uuid.UUID) error {
	for _, permission := range permissions {
		if !r.catalog.HasPermissionDef(permission) {
			return rbacDomain.ErrUnknownPermission
		}
	}

	roles, err := r.dynamicRoles.GetAll(ctx)
	if err != nil {
		return err
	}
	roles[name] = &rbacDomain.DynamicRole{
		Name:        name,
		Description: "Dynamic role: " + name,
		Permissions: permissions,
		CreatedBy:   createdBy.String(),
		CreatedAt:   time.Now().UTC(),
	}
	if err := r.dynamicRoles.SaveAll(ctx, roles); err != nil {
		return err
	}

	r.recordAudit(ctx, audit.EventDynamicRoleCreated, map[string]any{
		"role_name":   name,
		"permissions": permissions,
		"created_by":  createdBy.String(),
	})
	return nil
}

// ValidateCatalog reports every structural defect in the catalog.
func (r *resolverUseCase) ValidateCatalog() []rbacDomain.Issue {
	return r.catalog.Validate()
}

// permissionAction extracts the action segment of "resource.action".
func permissionAction(permission string) string {
	if _, action, found := strings.Cut(permission, "."); found {
		return action
	}
	return "view"
}

func (r *resolverUseCase) recordAudit(ctx context.Context, eventType string, eventContext map[string]any) {
	if r.auditRecorder == nil {
		return
	}
	_ = r.auditRecorder.Record(ctx, eventType, eventContext)
}

// NewResolverUseCase creates a ResolverUseCase with its dependencies.
func NewResolverUseCase(
	catalog *rbacDomain.Catalog,
	userDirectory UserDirectory,
	dynamicRoles DynamicRoleRepository,
	cache PermissionCache,
	policies []ResourcePolicy,
	auditRecorder audit.Recorder,
) ResolverUseCase {
	indexed := make(map[string]ResourcePolicy, len(policies))
	for _, policy := range policies {
		indexed[policy.ResourceType()] = policy
	}
	return &resolverUseCase{
		catalog:       catalog,
		userDirectory: userDirectory,
		dynamicRoles:  dynamicRoles,
		cache:         cache,
		policies:      indexed,
		auditRecorder: auditRecorder,
	}
}
