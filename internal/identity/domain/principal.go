package domain

import (
	"slices"

	"github.com/google/uuid"
)

// Principal is the resolved identity a request acts as. It is created per
// request by the identity resolver and never persisted.
type Principal struct {
	UserID uuid.UUID
	Role   string
	// Scopes are the scopes carried by the presenting credential, not the
	// user's permissions. Permission resolution happens in the RBAC resolver.
	Scopes []string
	// CustomPermissions are the user's directory-level grants outside the role
	// catalog.
	CustomPermissions []string
	// Tier is the rate-limit tier of the presenting credential.
	Tier string
	// CredentialID identifies the presenting credential: the API key ID or the
	// token's jti.
	CredentialID string
	// Method records how the principal was resolved.
	Method Method
	// DeviceFingerprint carries the fingerprint bound into the token, when present.
	DeviceFingerprint string
}

// HasScope reports whether the presenting credential carries the given scope.
// A credential with the wildcard scope "*" carries every scope.
func (p *Principal) HasScope(scope string) bool {
	return slices.Contains(p.Scopes, "*") || slices.Contains(p.Scopes, scope)
}
