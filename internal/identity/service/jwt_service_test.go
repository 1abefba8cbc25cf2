package service

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/hdtickets/admission/internal/errors"
	"github.com/hdtickets/admission/internal/identity/domain"
)

func newTestClaims(issuer string, lifetime time.Duration) *domain.Claims {
	now := time.Now().UTC()
	return &domain.Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   uuid.Must(uuid.NewV7()).String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(lifetime)),
			ID:        uuid.Must(uuid.NewV7()).String(),
		},
		Scopes: []string{"tickets.search", "tickets.purchase"},
		Role:   "customer",
	}
}

func TestJWTService_SignAndParse(t *testing.T) {
	svc := NewJWTService("test-signing-key", "https://api.test")

	t.Run("Success_RoundTrip", func(t *testing.T) {
		claims := newTestClaims("https://api.test", time.Hour)
		signed, err := svc.Sign(claims)
		require.NoError(t, err)
		require.NotEmpty(t, signed)

		parsed, err := svc.Parse(signed)
		require.NoError(t, err)
		assert.Equal(t, claims.Subject, parsed.Subject)
		assert.Equal(t, claims.ID, parsed.ID)
		assert.Equal(t, claims.Scopes, parsed.Scopes)
		assert.Equal(t, "customer", parsed.Role)
	})

	t.Run("Error_ExpiredToken", func(t *testing.T) {
		claims := newTestClaims("https://api.test", -time.Minute)
		signed, err := svc.Sign(claims)
		require.NoError(t, err)

		_, err = svc.Parse(signed)
		assert.ErrorIs(t, err, domain.ErrCredentialExpired)
		assert.ErrorIs(t, err, apperrors.ErrUnauthorized)
	})

	t.Run("Error_WrongSigningKey", func(t *testing.T) {
		other := NewJWTService("other-key", "https://api.test")
		claims := newTestClaims("https://api.test", time.Hour)
		signed, err := other.Sign(claims)
		require.NoError(t, err)

		_, err = svc.Parse(signed)
		assert.ErrorIs(t, err, domain.ErrMalformedCredential)
	})

	t.Run("Error_WrongIssuer", func(t *testing.T) {
		claims := newTestClaims("https://rogue.test", time.Hour)
		signed, err := svc.Sign(claims)
		require.NoError(t, err)

		_, err = svc.Parse(signed)
		assert.ErrorIs(t, err, domain.ErrMalformedCredential)
	})

	t.Run("Error_Garbage", func(t *testing.T) {
		_, err := svc.Parse("not.a.jwt")
		assert.ErrorIs(t, err, domain.ErrMalformedCredential)
	})

	t.Run("Error_TamperedPayload", func(t *testing.T) {
		claims := newTestClaims("https://api.test", time.Hour)
		signed, err := svc.Sign(claims)
		require.NoError(t, err)

		tampered := signed[:len(signed)-2] + "xx"
		_, err = svc.Parse(tampered)
		assert.Error(t, err)
	})
}
