// Package domain defines identity resolution models: API credentials, token
// metadata, and the Principal every admitted request acts as.
package domain

// KeyPrefix is the marketplace-wide prefix on presented API keys. The rest of
// the key is base64url(keyID:secret).
const KeyPrefix = "hdt_"

// Credential tiers select rate-limit treatment and issuance policy.
const (
	TierStandard = "standard"
	TierPremium  = "premium"
	TierInternal = "internal"
)

// Method identifies how a Principal was resolved.
type Method string

const (
	// MethodAPIKey marks principals resolved from an API key.
	MethodAPIKey Method = "api_key"

	// MethodJWT marks principals resolved from a bearer token.
	MethodJWT Method = "jwt"
)
