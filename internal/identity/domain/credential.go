package domain

import (
	"encoding/base64"
	"net"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
)

// ApiCredential is a long-lived API key record. The secret is stored only as
// an Argon2id hash; the plaintext is embedded in the presented key and shown
// once at issuance.
type ApiCredential struct {
	ID         uuid.UUID  `json:"id"`
	UserID     uuid.UUID  `json:"user_id"`
	Name       string     `json:"name"`
	SecretHash string     `json:"secret_hash"`
	Scopes     []string   `json:"scopes"`
	Tier       string     `json:"tier"`
	// IPWhitelist restricts source addresses. Entries may be exact IPs,
	// wildcard patterns ("10.1.*") or CIDR ranges ("10.1.0.0/16"). An empty
	// list allows any source.
	IPWhitelist []string   `json:"ip_whitelist,omitempty"`
	ExpiresAt   *time.Time `json:"expires_at,omitempty"`
	LastUsedAt  *time.Time `json:"last_used_at,omitempty"`
	RotatedAt   *time.Time `json:"rotated_at,omitempty"`
	RevokedAt   *time.Time `json:"revoked_at,omitempty"`
	IsActive    bool       `json:"is_active"`
	CreatedAt   time.Time  `json:"created_at"`
}

// IsExpired reports whether the credential is past its expiry at the given time.
func (c *ApiCredential) IsExpired(now time.Time) bool {
	return c.ExpiresAt != nil && c.ExpiresAt.Before(now)
}

// IPAllowed reports whether the given source IP satisfies the credential's
// whitelist. An empty whitelist allows everything.
func (c *ApiCredential) IPAllowed(ip string) bool {
	if len(c.IPWhitelist) == 0 {
		return true
	}
	for _, pattern := range c.IPWhitelist {
		if ipMatches(ip, pattern) {
			return true
		}
	}
	return false
}

// ipMatches checks a single whitelist entry: CIDR range, wildcard pattern, or
// exact address.
func ipMatches(ip, pattern string) bool {
	if strings.Contains(pattern, "/") {
		_, network, err := net.ParseCIDR(pattern)
		if err != nil {
			return false
		}
		parsed := net.ParseIP(ip)
		return parsed != nil && network.Contains(parsed)
	}

	if strings.Contains(pattern, "*") {
		ok, err := path.Match(pattern, ip)
		return err == nil && ok
	}

	return ip == pattern
}

// EncodeAPIKey builds the presentable API key from a key ID and plaintext
// secret: KeyPrefix + base64url(id:secret).
func EncodeAPIKey(id uuid.UUID, secret string) string {
	return KeyPrefix + base64.URLEncoding.EncodeToString([]byte(id.String()+":"+secret))
}

// ParseAPIKey splits a presented API key into its key ID and plaintext secret.
// Returns ErrMalformedCredential when the prefix, encoding, or structure is wrong.
func ParseAPIKey(apiKey string) (uuid.UUID, string, error) {
	if !strings.HasPrefix(apiKey, KeyPrefix) {
		return uuid.Nil, "", ErrMalformedCredential
	}

	decoded, err := base64.URLEncoding.DecodeString(strings.TrimPrefix(apiKey, KeyPrefix))
	if err != nil {
		return uuid.Nil, "", ErrMalformedCredential
	}

	idPart, secret, found := strings.Cut(string(decoded), ":")
	if !found || secret == "" {
		return uuid.Nil, "", ErrMalformedCredential
	}

	id, err := uuid.Parse(idPart)
	if err != nil {
		return uuid.Nil, "", ErrMalformedCredential
	}

	return id, secret, nil
}

// IssueCredentialInput contains the parameters for issuing a new API key.
type IssueCredentialInput struct {
	UserID      uuid.UUID
	Name        string
	Scopes      []string
	Tier        string
	IPWhitelist []string
	ExpiresAt   *time.Time
}

// IssueCredentialOutput contains the result of issuing an API key.
// SECURITY: PlainKey embeds the secret and is only returned once; it must be
// transmitted securely and never logged.
type IssueCredentialOutput struct {
	ID        uuid.UUID
	PlainKey  string
	Scopes    []string
	Tier      string
	CreatedAt time.Time
}

// RotateCredentialOutput contains the result of rotating an API key's secret.
// The previous record is archived and the old secret stops validating.
type RotateCredentialOutput struct {
	ID        uuid.UUID
	PlainKey  string
	RotatedAt time.Time
}
