// Package domain defines the RBAC permission and role catalogs, inheritance
// expansion, and structural validation.
package domain

import (
	"fmt"
	"sort"
	"time"

	"github.com/hdtickets/admission/internal/errors"
)

// maxExpandDepth bounds inheritance traversal. The visited set already
// prevents loops; the cap is a hard stop for pathological graphs.
const maxExpandDepth = 32

// Permission is one catalog entry. Inherits lists permissions implied by
// holding this one.
type Permission struct {
	Description string
	Category    string
	Level       string
	Inherits    []string
}

// Role maps a role name to its base permission grants.
type Role struct {
	Description string
	Grants      []string
}

// DynamicRole is a runtime-created role with its own grant set.
type DynamicRole struct {
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Permissions []string  `json:"permissions"`
	CreatedBy   string    `json:"created_by"`
	CreatedAt   time.Time `json:"created_at"`
}

// Catalog holds the static permission and role definitions. It is built once
// at startup and never mutated afterwards.
type Catalog struct {
	permissions map[string]Permission
	roles       map[string]Role
}

// NewCatalog builds a catalog from permission and role definitions.
func NewCatalog(permissions map[string]Permission, roles map[string]Role) *Catalog {
	return &Catalog{permissions: permissions, roles: roles}
}

// HasPermissionDef reports whether the permission exists in the catalog.
func (c *Catalog) HasPermissionDef(permission string) bool {
	_, ok := c.permissions[permission]
	return ok
}

// HasRoleDef reports whether the role exists in the static catalog.
func (c *Catalog) HasRoleDef(role string) bool {
	_, ok := c.roles[role]
	return ok
}

// PermissionDef returns a permission's definition.
func (c *Catalog) PermissionDef(permission string) (Permission, bool) {
	def, ok := c.permissions[permission]
	return def, ok
}

// Permissions returns the sorted permission names.
func (c *Catalog) Permissions() []string {
	names := make([]string, 0, len(c.permissions))
	for name := range c.permissions {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Roles returns the sorted role names.
func (c *Catalog) Roles() []string {
	names := make([]string, 0, len(c.roles))
	for name := range c.roles {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// RoleGrants returns a role's base grants, unexpanded. Unknown roles yield
// nil.
func (c *Catalog) RoleGrants(role string) []string {
	def, ok := c.roles[role]
	if !ok {
		return nil
	}
	return def.Grants
}

// Expand computes the transitive closure of a permission's inheritance: the
// permission itself plus everything reachable through Inherits. Traversal is
// iterative with an explicit visited set and depth cap, so a malformed graph
// produces a structural error instead of an infinite loop.
func (c *Catalog) Expand(permission string) ([]string, error) {
	if !c.HasPermissionDef(permission) {
		return nil, ErrUnknownPermission
	}

	// DFS with explicit frames. inPath marks the current chain so a back
	// edge is recognized as a cycle; done marks finished subtrees.
	type frame struct {
		name string
		next int
	}
	inPath := map[string]bool{}
	done := map[string]bool{}
	closure := []string{}

	stack := []frame{{name: permission}}
	inPath[permission] = true

	for len(stack) > 0 {
		if len(stack) > maxExpandDepth {
			return nil, errors.Wrapf(ErrStructuralViolation, "inheritance deeper than %d under %q", maxExpandDepth, permission)
		}

		top := &stack[len(stack)-1]
		def, ok := c.permissions[top.name]
		if !ok {
			return nil, errors.Wrapf(ErrStructuralViolation, "permission %q inherits undefined %q", permission, top.name)
		}

		if top.next < len(def.Inherits) {
			child := def.Inherits[top.next]
			top.next++
			if inPath[child] {
				return nil, errors.Wrapf(ErrStructuralViolation, "inheritance cycle through %q", child)
			}
			if !done[child] {
				inPath[child] = true
				stack = append(stack, frame{name: child})
			}
			continue
		}

		inPath[top.name] = false
		if !done[top.name] {
			done[top.name] = true
			closure = append(closure, top.name)
		}
		stack = stack[:len(stack)-1]
	}

	sort.Strings(closure)
	return closure, nil
}

// RolePermissions returns a role's grants with every grant expanded.
func (c *Catalog) RolePermissions(role string) ([]string, error) {
	def, ok := c.roles[role]
	if !ok {
		return nil, ErrUnknownRole
	}

	set := map[string]bool{}
	for _, grant := range def.Grants {
		expanded, err := c.Expand(grant)
		if err != nil {
			return nil, fmt.Errorf("role %q grant %q: %w", role, grant, err)
		}
		for _, permission := range expanded {
			set[permission] = true
		}
	}

	permissions := make([]string, 0, len(set))
	for permission := range set {
		permissions = append(permissions, permission)
	}
	sort.Strings(permissions)
	return permissions, nil
}
