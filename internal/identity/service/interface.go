// Package service provides technical services for identity operations.
//
// This package implements reusable services for API key secret generation and
// hashing, JWT signing and verification, and HMAC request signature checks
// using industry-standard cryptographic practices.
package service

import (
	"time"

	"github.com/hdtickets/admission/internal/identity/domain"
	"github.com/hdtickets/admission/internal/request"
)

// SecretService defines operations for API key secret generation and validation.
// Implementations must use cryptographically secure random generation and
// industry-standard hashing algorithms (e.g., bcrypt, argon2).
type SecretService interface {
	// GenerateSecret creates a new cryptographically secure random secret.
	// Returns both the plain text secret (embedded in the presented API key)
	// and the hashed version (the only form that is persisted).
	//
	// The plain secret should be treated as sensitive data and is only
	// recoverable from the API key itself.
	GenerateSecret() (plainSecret string, hashedSecret string, error error)

	// HashSecret hashes a plain text secret using a secure hashing algorithm.
	// Used when credentials are rotated.
	HashSecret(plainSecret string) (hashedSecret string, error error)

	// CompareSecret compares a plain text secret against a hashed secret.
	// Returns true if the plain secret matches the hash, false otherwise.
	// This is constant-time to prevent timing attacks.
	CompareSecret(plainSecret string, hashedSecret string) bool
}

// JWTService defines operations for signing and verifying session tokens.
type JWTService interface {
	// Sign produces a signed compact JWT from the given claims.
	Sign(claims *domain.Claims) (string, error)

	// Parse verifies the signature and registered claims of a compact JWT
	// and returns its claims. Expired or otherwise invalid tokens return
	// an error wrapping ErrUnauthorized.
	Parse(tokenString string) (*domain.Claims, error)
}

// SignatureService verifies HMAC request signatures for high-security
// operations. The signature covers the request method, path, sorted query
// string, body, and timestamp.
type SignatureService interface {
	// Verify checks the X-Signature header of the request against the given
	// shared secret. The X-Timestamp header must be within the configured
	// tolerance of the current time.
	Verify(req *request.Request, secret string, now time.Time) error

	// Sign computes the signature a client would attach to the request.
	// Exposed for clients and tests.
	Sign(req *request.Request, secret string, timestamp time.Time) string
}
