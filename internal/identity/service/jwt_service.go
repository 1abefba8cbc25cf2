package service

import (
	"errors"

	"github.com/golang-jwt/jwt/v5"

	apperrors "github.com/hdtickets/admission/internal/errors"
	"github.com/hdtickets/admission/internal/identity/domain"
)

// jwtService implements JWTService using HMAC-SHA256 signatures.
type jwtService struct {
	signingKey []byte
	issuer     string
}

// Sign produces a signed compact JWT from the given claims.
func (j *jwtService) Sign(claims *domain.Claims) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(j.signingKey)
	if err != nil {
		return "", apperrors.Wrap(err, "failed to sign token")
	}
	return signed, nil
}

// Parse verifies the signature, issuer, and time-based claims of a compact
// JWT. Expired tokens map to ErrCredentialExpired; everything else invalid
// maps to ErrMalformedCredential.
func (j *jwtService) Parse(tokenString string) (*domain.Claims, error) {
	claims := &domain.Claims{}
	_, err := jwt.ParseWithClaims(
		tokenString,
		claims,
		func(token *jwt.Token) (any, error) {
			return j.signingKey, nil
		},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(j.issuer),
		jwt.WithIssuedAt(),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, domain.ErrCredentialExpired
		}
		return nil, apperrors.Wrap(domain.ErrMalformedCredential, err.Error())
	}
	return claims, nil
}

// NewJWTService creates a JWTService with the given HMAC signing key and
// expected issuer.
func NewJWTService(signingKey, issuer string) JWTService {
	return &jwtService{
		signingKey: []byte(signingKey),
		issuer:     issuer,
	}
}
