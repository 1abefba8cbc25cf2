package domain

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// TokenMetadata is the server-side record for an issued JWT, keyed by jti.
// Its presence in the store means the token has not been revoked.
type TokenMetadata struct {
	JTI         string     `json:"jti"`
	UserID      uuid.UUID  `json:"user_id"`
	Scopes      []string   `json:"scopes"`
	IssuedAt    time.Time  `json:"issued_at"`
	ExpiresAt   time.Time  `json:"expires_at"`
	LastUsedAt  *time.Time `json:"last_used_at,omitempty"`
	Fingerprint string     `json:"fingerprint,omitempty"`
}

// Claims is the JWT payload issued and verified by the token service.
type Claims struct {
	jwt.RegisteredClaims
	Scopes            []string `json:"scopes"`
	Role              string   `json:"role"`
	DeviceFingerprint string   `json:"device_fingerprint,omitempty"`
}

// IssueTokenInput contains the parameters for issuing a session token.
type IssueTokenInput struct {
	UserID            uuid.UUID
	Scopes            []string
	DeviceFingerprint string
}

// IssueTokenOutput contains the signed token and its metadata.
type IssueTokenOutput struct {
	AccessToken string
	TokenType   string
	ExpiresIn   int64
	JTI         string
}
