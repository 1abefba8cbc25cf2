package http

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/hdtickets/admission/internal/admission"
	identityDomain "github.com/hdtickets/admission/internal/identity/domain"
)

// principalKey is a context key type for storing resolved principals.
type principalKey struct{}

// admissionKey is a context key type for storing the admission result.
type admissionKey struct{}

// WithPrincipal stores the resolved principal in the context.
// This is typically called by the admission middleware after a successful admission.
func WithPrincipal(ctx context.Context, principal *identityDomain.Principal) context.Context {
	return context.WithValue(ctx, principalKey{}, principal)
}

// GetPrincipal retrieves the resolved principal from the context.
// Returns (principal, true) if one is present, or (nil, false) for anonymous requests.
func GetPrincipal(ctx context.Context) (*identityDomain.Principal, bool) {
	principal, ok := ctx.Value(principalKey{}).(*identityDomain.Principal)
	return principal, ok
}

// WithAdmission stores the full admission result in the context.
func WithAdmission(ctx context.Context, result *admission.Result) context.Context {
	return context.WithValue(ctx, admissionKey{}, result)
}

// GetAdmission retrieves the admission result from the context.
func GetAdmission(ctx context.Context) (*admission.Result, bool) {
	result, ok := ctx.Value(admissionKey{}).(*admission.Result)
	return result, ok
}

// MustPrincipal returns the principal from a gin request context. Handlers
// registered behind the admission middleware on authenticated endpoints can
// assume it is present.
func MustPrincipal(c *gin.Context) (*identityDomain.Principal, bool) {
	return GetPrincipal(c.Request.Context())
}
