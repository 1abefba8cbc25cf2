package usecase

import (
	"context"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/hdtickets/admission/internal/audit"
	"github.com/hdtickets/admission/internal/config"
	identityDomain "github.com/hdtickets/admission/internal/identity/domain"
	identityService "github.com/hdtickets/admission/internal/identity/service"
)

// tokenUseCase implements TokenUseCase for session JWTs.
type tokenUseCase struct {
	config        *config.Config
	tokenRepo     TokenRepository
	userDirectory UserDirectory
	jwtService    identityService.JWTService
	auditRecorder audit.Recorder
}

// Issue creates a signed JWT for a user.
//
// This method:
// 1. Validates the user exists and is active
// 2. Builds claims with a fresh jti and expiration from config
// 3. Signs the token and stores its metadata for revocation checks
//
// Security Notes:
//   - The metadata record's TTL matches the token expiration, so a revoked
//     or expired token is indistinguishable from a never-issued one
//   - The signed token is only returned once
func (t *tokenUseCase) Issue(
	ctx context.Context,
	input *identityDomain.IssueTokenInput,
) (*identityDomain.IssueTokenOutput, error) {
	owner, err := t.userDirectory.FindByID(ctx, input.UserID)
	if err != nil {
		return nil, err
	}
	if !owner.IsActive {
		return nil, identityDomain.ErrPrincipalInactive
	}

	now := time.Now().UTC()
	expiresAt := now.Add(t.config.JWTExpiration)
	jti := uuid.Must(uuid.NewV7()).String()

	claims := &identityDomain.Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    t.config.JWTIssuer,
			Subject:   owner.ID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			ID:        jti,
		},
		Scopes:            input.Scopes,
		Role:              owner.Role,
		DeviceFingerprint: input.DeviceFingerprint,
	}

	signed, err := t.jwtService.Sign(claims)
	if err != nil {
		return nil, err
	}

	metadata := &identityDomain.TokenMetadata{
		JTI:         jti,
		UserID:      owner.ID,
		Scopes:      input.Scopes,
		IssuedAt:    now,
		ExpiresAt:   expiresAt,
		Fingerprint: input.DeviceFingerprint,
	}
	if err := t.tokenRepo.Create(ctx, metadata, t.config.JWTExpiration); err != nil {
		return nil, err
	}

	t.recordAudit(ctx, audit.EventTokenIssued, map[string]any{
		"jti":     jti,
		"user_id": owner.ID.String(),
	})

	return &identityDomain.IssueTokenOutput{
		AccessToken: signed,
		TokenType:   "Bearer",
		ExpiresIn:   int64(t.config.JWTExpiration.Seconds()),
		JTI:         jti,
	}, nil
}

// Validate verifies a presented JWT and returns the resolved principal.
//
// This method:
// 1. Verifies the signature, issuer, and expiry of the token
// 2. Confirms the jti still has a metadata record (revocation check)
// 3. Resolves the subject user and builds the principal
//
// Security Notes:
//   - A revoked token fails with ErrTokenRevoked even when its signature
//     and expiry are valid
//   - Last-used bookkeeping never blocks an otherwise valid token
func (t *tokenUseCase) Validate(
	ctx context.Context,
	tokenString string,
) (*identityDomain.Principal, error) {
	claims, err := t.jwtService.Parse(tokenString)
	if err != nil {
		return nil, err
	}

	metadata, err := t.tokenRepo.Get(ctx, claims.ID)
	if err != nil {
		return nil, err
	}

	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return nil, identityDomain.ErrMalformedCredential
	}

	owner, err := t.userDirectory.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !owner.IsActive {
		return nil, identityDomain.ErrPrincipalInactive
	}

	now := time.Now().UTC()
	metadata.LastUsedAt = &now
	_ = t.tokenRepo.Update(ctx, metadata)

	return &identityDomain.Principal{
		UserID:            owner.ID,
		Role:              claims.Role,
		Scopes:            claims.Scopes,
		CustomPermissions: owner.CustomPermissions,
		Tier:              identityDomain.TierStandard,
		CredentialID:      claims.ID,
		Method:            identityDomain.MethodJWT,
		DeviceFingerprint: claims.DeviceFingerprint,
	}, nil
}

// Revoke invalidates a token by jti before its natural expiry.
func (t *tokenUseCase) Revoke(ctx context.Context, jti string) error {
	if _, err := t.tokenRepo.Get(ctx, jti); err != nil {
		return err
	}
	if err := t.tokenRepo.Delete(ctx, jti); err != nil {
		return err
	}

	t.recordAudit(ctx, audit.EventTokenRevoked, map[string]any{
		"jti": jti,
	})

	return nil
}

func (t *tokenUseCase) recordAudit(ctx context.Context, eventType string, eventContext map[string]any) {
	if t.auditRecorder == nil {
		return
	}
	_ = t.auditRecorder.Record(ctx, eventType, eventContext)
}

// NewTokenUseCase creates a TokenUseCase with its dependencies.
func NewTokenUseCase(
	cfg *config.Config,
	tokenRepo TokenRepository,
	userDirectory UserDirectory,
	jwtService identityService.JWTService,
	auditRecorder audit.Recorder,
) TokenUseCase {
	return &tokenUseCase{
		config:        cfg,
		tokenRepo:     tokenRepo,
		userDirectory: userDirectory,
		jwtService:    jwtService,
		auditRecorder: auditRecorder,
	}
}
