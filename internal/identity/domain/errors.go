package domain

import (
	"github.com/hdtickets/admission/internal/errors"
)

// Identity resolution errors. All authentication failures wrap ErrUnauthorized
// so they map to the same HTTP status; the distinct sentinels exist for audit
// records and tests, not for the caller-visible response.
var (
	// ErrMalformedCredential indicates the presented credential could not be parsed.
	ErrMalformedCredential = errors.Wrap(errors.ErrUnauthorized, "malformed credential")

	// ErrCredentialNotFound indicates no active credential matches the presented key.
	// Inactive (revoked) credentials report this error too, so callers cannot
	// distinguish a revoked key from one that never existed.
	ErrCredentialNotFound = errors.Wrap(errors.ErrUnauthorized, "credential not found")

	// ErrCredentialExpired indicates the credential exists but is past its expiry.
	ErrCredentialExpired = errors.Wrap(errors.ErrUnauthorized, "credential expired")

	// ErrSecretMismatch indicates the presented secret does not match the stored hash.
	ErrSecretMismatch = errors.Wrap(errors.ErrUnauthorized, "secret mismatch")

	// ErrTokenRevoked indicates a token whose signature verifies but whose
	// store entry is gone: revoked or naturally expired out of the store.
	ErrTokenRevoked = errors.Wrap(errors.ErrUnauthorized, "token revoked")

	// ErrPrincipalInactive indicates the credential resolves to a deactivated user.
	ErrPrincipalInactive = errors.Wrap(errors.ErrUnauthorized, "principal inactive")

	// ErrSignatureInvalid indicates a signed request failed HMAC verification.
	ErrSignatureInvalid = errors.Wrap(errors.ErrUnauthorized, "request signature invalid")

	// ErrTimestampSkewed indicates a signed request carried a missing or stale
	// timestamp, the replay-mitigation boundary.
	ErrTimestampSkewed = errors.Wrap(errors.ErrUnauthorized, "request timestamp missing or skewed")

	// ErrIPNotWhitelisted indicates the credential restricts source IPs and the
	// request came from elsewhere.
	ErrIPNotWhitelisted = errors.Wrap(errors.ErrForbidden, "ip not whitelisted for credential")

	// ErrNotCredentialOwner indicates a rotate/revoke attempt by a user who
	// does not own the credential.
	ErrNotCredentialOwner = errors.Wrap(errors.ErrForbidden, "credential belongs to another user")
)
