// Package usecase defines business logic interfaces for identity resolution
// and credential lifecycle operations.
package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"

	identityDomain "github.com/hdtickets/admission/internal/identity/domain"
	"github.com/hdtickets/admission/internal/request"
	userDomain "github.com/hdtickets/admission/internal/user/domain"
)

// CredentialRepository defines persistence operations for API key credentials.
type CredentialRepository interface {
	// Create stores a new credential in the repository.
	Create(ctx context.Context, credential *identityDomain.ApiCredential) error

	// Update modifies an existing credential in the repository.
	Update(ctx context.Context, credential *identityDomain.ApiCredential) error

	// Get retrieves a credential by ID. Returns ErrCredentialNotFound if not found.
	Get(ctx context.Context, id uuid.UUID) (*identityDomain.ApiCredential, error)

	// ListByUser returns all live credentials owned by the given user.
	ListByUser(ctx context.Context, userID uuid.UUID) ([]*identityDomain.ApiCredential, error)

	// Archive snapshots a credential record before rotation or revocation.
	Archive(ctx context.Context, credential *identityDomain.ApiCredential, now time.Time) error

	// IncrementInvalidAttempts counts a failed secret check against a key ID.
	IncrementInvalidAttempts(ctx context.Context, id uuid.UUID) (int64, error)
}

// TokenRepository defines persistence operations for session token metadata.
type TokenRepository interface {
	// Create stores metadata for a newly issued token.
	Create(ctx context.Context, metadata *identityDomain.TokenMetadata, ttl time.Duration) error

	// Get retrieves metadata by jti. Returns ErrTokenRevoked if absent.
	Get(ctx context.Context, jti string) (*identityDomain.TokenMetadata, error)

	// Update rewrites metadata without extending the token's life.
	Update(ctx context.Context, metadata *identityDomain.TokenMetadata) error

	// Delete removes metadata, revoking the token.
	Delete(ctx context.Context, jti string) error
}

// UserDirectory resolves user accounts referenced by credentials and tokens.
type UserDirectory interface {
	// FindByID retrieves a user by ID. Returns ErrUserNotFound if not found.
	FindByID(ctx context.Context, id uuid.UUID) (*userDomain.User, error)
}

// CredentialUseCase defines business logic operations for API key lifecycle
// and validation.
type CredentialUseCase interface {
	// Issue creates a new API key for a user. The returned PlainKey embeds
	// the secret and is only returned once; the stored record holds only the
	// Argon2id hash.
	Issue(
		ctx context.Context,
		input *identityDomain.IssueCredentialInput,
	) (*identityDomain.IssueCredentialOutput, error)

	// Validate authenticates a presented API key and returns the resolved
	// principal. Failures map to specific domain errors, all of which
	// unwrap to ErrUnauthorized or ErrForbidden.
	Validate(ctx context.Context, apiKey string, sourceIP string) (*identityDomain.Principal, error)

	// Rotate replaces a credential's secret. The previous record is archived
	// and the old key stops validating immediately. Only the owner may rotate.
	Rotate(ctx context.Context, userID, credentialID uuid.UUID) (*identityDomain.RotateCredentialOutput, error)

	// Revoke deactivates a credential. Only the owner may revoke.
	Revoke(ctx context.Context, userID, credentialID uuid.UUID) error

	// VerifySignedRequest checks the HMAC signature of a high-security
	// request against the secret embedded in the presented API key.
	VerifySignedRequest(ctx context.Context, apiKey string, req *request.Request) error
}

// TokenUseCase defines business logic operations for session tokens.
type TokenUseCase interface {
	// Issue creates a signed JWT for a user with per-token metadata stored
	// for revocation checks.
	Issue(
		ctx context.Context,
		input *identityDomain.IssueTokenInput,
	) (*identityDomain.IssueTokenOutput, error)

	// Validate verifies a presented JWT, confirms it has not been revoked,
	// and returns the resolved principal.
	Validate(ctx context.Context, tokenString string) (*identityDomain.Principal, error)

	// Revoke invalidates a token by jti before its natural expiry.
	Revoke(ctx context.Context, jti string) error
}
