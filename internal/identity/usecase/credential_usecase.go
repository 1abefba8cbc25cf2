// Package usecase implements business logic orchestration for identity
// resolution and credential lifecycle.
package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/hdtickets/admission/internal/audit"
	"github.com/hdtickets/admission/internal/config"
	identityDomain "github.com/hdtickets/admission/internal/identity/domain"
	identityService "github.com/hdtickets/admission/internal/identity/service"
	"github.com/hdtickets/admission/internal/request"
)

// credentialUseCase implements CredentialUseCase.
type credentialUseCase struct {
	config           *config.Config
	credentialRepo   CredentialRepository
	userDirectory    UserDirectory
	secretService    identityService.SecretService
	signatureService identityService.SignatureService
	auditRecorder    audit.Recorder
}

// Issue creates a new API key for a user.
//
// Security Notes:
//   - The plain key embeds the secret and is only returned once
//   - Only the Argon2id hash of the secret is persisted
//   - Issuance is recorded in the audit trail
func (c *credentialUseCase) Issue(
	ctx context.Context,
	input *identityDomain.IssueCredentialInput,
) (*identityDomain.IssueCredentialOutput, error) {
	if _, err := c.userDirectory.FindByID(ctx, input.UserID); err != nil {
		return nil, err
	}

	plainSecret, hashedSecret, err := c.secretService.GenerateSecret()
	if err != nil {
		return nil, err
	}

	tier := input.Tier
	if tier == "" {
		tier = identityDomain.TierStandard
	}

	credential := &identityDomain.ApiCredential{
		ID:          uuid.Must(uuid.NewV7()),
		UserID:      input.UserID,
		Name:        input.Name,
		SecretHash:  hashedSecret,
		Scopes:      input.Scopes,
		Tier:        tier,
		IPWhitelist: input.IPWhitelist,
		ExpiresAt:   input.ExpiresAt,
		IsActive:    true,
		CreatedAt:   time.Now().UTC(),
	}

	if err := c.credentialRepo.Create(ctx, credential); err != nil {
		return nil, err
	}

	c.recordAudit(ctx, audit.EventAPIKeyIssued, map[string]any{
		"credential_id": credential.ID.String(),
		"user_id":       credential.UserID.String(),
		"tier":          credential.Tier,
	})

	return &identityDomain.IssueCredentialOutput{
		ID:        credential.ID,
		PlainKey:  identityDomain.EncodeAPIKey(credential.ID, plainSecret),
		Scopes:    credential.Scopes,
		Tier:      credential.Tier,
		CreatedAt: credential.CreatedAt,
	}, nil
}

// Validate authenticates a presented API key and returns the resolved principal.
//
// This method:
// 1. Parses the key into its ID and embedded secret
// 2. Loads the credential record and checks activity and expiry
// 3. Verifies the secret against the stored Argon2id hash
// 4. Enforces the credential's IP whitelist
// 5. Resolves the owning user and builds the principal
//
// Security Notes:
//   - Inactive credentials report ErrCredentialNotFound to prevent probing
//     of revoked keys
//   - Failed secret checks increment a per-key forensic counter and are
//     recorded in the audit trail; counter failures never block validation
func (c *credentialUseCase) Validate(
	ctx context.Context,
	apiKey string,
	sourceIP string,
) (*identityDomain.Principal, error) {
	keyID, secret, err := identityDomain.ParseAPIKey(apiKey)
	if err != nil {
		return nil, err
	}

	credential, err := c.credentialRepo.Get(ctx, keyID)
	if err != nil {
		return nil, err
	}

	if !credential.IsActive {
		return nil, identityDomain.ErrCredentialNotFound
	}

	now := time.Now().UTC()
	if credential.IsExpired(now) {
		return nil, identityDomain.ErrCredentialExpired
	}

	if !c.secretService.CompareSecret(secret, credential.SecretHash) {
		c.recordInvalidAttempt(ctx, keyID, sourceIP)
		return nil, identityDomain.ErrSecretMismatch
	}

	if !credential.IPAllowed(sourceIP) {
		return nil, identityDomain.ErrIPNotWhitelisted
	}

	owner, err := c.userDirectory.FindByID(ctx, credential.UserID)
	if err != nil {
		return nil, err
	}
	if !owner.IsActive {
		return nil, identityDomain.ErrPrincipalInactive
	}

	// Last-used bookkeeping must not block an otherwise valid request.
	credential.LastUsedAt = &now
	_ = c.credentialRepo.Update(ctx, credential)

	return &identityDomain.Principal{
		UserID:            owner.ID,
		Role:              owner.Role,
		Scopes:            credential.Scopes,
		CustomPermissions: owner.CustomPermissions,
		Tier:              credential.Tier,
		CredentialID:      credential.ID.String(),
		Method:            identityDomain.MethodAPIKey,
	}, nil
}

// Rotate replaces a credential's secret. The previous record is archived so
// the old secret stops validating while forensic history is retained.
func (c *credentialUseCase) Rotate(
	ctx context.Context,
	userID, credentialID uuid.UUID,
) (*identityDomain.RotateCredentialOutput, error) {
	credential, err := c.credentialRepo.Get(ctx, credentialID)
	if err != nil {
		return nil, err
	}
	if credential.UserID != userID {
		return nil, identityDomain.ErrNotCredentialOwner
	}
	if !credential.IsActive {
		return nil, identityDomain.ErrCredentialNotFound
	}

	now := time.Now().UTC()
	if err := c.credentialRepo.Archive(ctx, credential, now); err != nil {
		return nil, err
	}

	plainSecret, hashedSecret, err := c.secretService.GenerateSecret()
	if err != nil {
		return nil, err
	}

	credential.SecretHash = hashedSecret
	credential.RotatedAt = &now
	if err := c.credentialRepo.Update(ctx, credential); err != nil {
		return nil, err
	}

	c.recordAudit(ctx, audit.EventAPIKeyRotated, map[string]any{
		"credential_id": credential.ID.String(),
		"user_id":       credential.UserID.String(),
	})

	return &identityDomain.RotateCredentialOutput{
		ID:        credential.ID,
		PlainKey:  identityDomain.EncodeAPIKey(credential.ID, plainSecret),
		RotatedAt: now,
	}, nil
}

// Revoke deactivates a credential. The record is archived and kept inactive
// so subsequent validations fail without revealing the revocation.
func (c *credentialUseCase) Revoke(ctx context.Context, userID, credentialID uuid.UUID) error {
	credential, err := c.credentialRepo.Get(ctx, credentialID)
	if err != nil {
		return err
	}
	if credential.UserID != userID {
		return identityDomain.ErrNotCredentialOwner
	}
	if !credential.IsActive {
		return identityDomain.ErrCredentialNotFound
	}

	now := time.Now().UTC()
	if err := c.credentialRepo.Archive(ctx, credential, now); err != nil {
		return err
	}

	credential.IsActive = false
	credential.RevokedAt = &now
	if err := c.credentialRepo.Update(ctx, credential); err != nil {
		return err
	}

	c.recordAudit(ctx, audit.EventAPIKeyRevoked, map[string]any{
		"credential_id": credential.ID.String(),
		"user_id":       credential.UserID.String(),
	})

	return nil
}

// VerifySignedRequest checks the HMAC signature of a request using the secret
// embedded in the presented API key. The key must also validate against the
// stored hash; a signature check never substitutes for authentication.
func (c *credentialUseCase) VerifySignedRequest(
	ctx context.Context,
	apiKey string,
	req *request.Request,
) error {
	keyID, secret, err := identityDomain.ParseAPIKey(apiKey)
	if err != nil {
		return err
	}

	credential, err := c.credentialRepo.Get(ctx, keyID)
	if err != nil {
		return err
	}
	if !credential.IsActive {
		return identityDomain.ErrCredentialNotFound
	}
	if !c.secretService.CompareSecret(secret, credential.SecretHash) {
		c.recordInvalidAttempt(ctx, keyID, req.IP)
		return identityDomain.ErrSecretMismatch
	}

	return c.signatureService.Verify(req, secret, time.Now().UTC())
}

// recordInvalidAttempt counts a failed secret check and emits an audit event.
// Both paths fail open.
func (c *credentialUseCase) recordInvalidAttempt(ctx context.Context, keyID uuid.UUID, sourceIP string) {
	attempts, err := c.credentialRepo.IncrementInvalidAttempts(ctx, keyID)
	if err != nil {
		attempts = 0
	}
	c.recordAudit(ctx, audit.EventInvalidAPIKey, map[string]any{
		"credential_id": keyID.String(),
		"source_ip":     sourceIP,
		"attempts":      attempts,
	})
}

func (c *credentialUseCase) recordAudit(ctx context.Context, eventType string, eventContext map[string]any) {
	if c.auditRecorder == nil {
		return
	}
	_ = c.auditRecorder.Record(ctx, eventType, eventContext)
}

// NewCredentialUseCase creates a CredentialUseCase with its dependencies.
func NewCredentialUseCase(
	cfg *config.Config,
	credentialRepo CredentialRepository,
	userDirectory UserDirectory,
	secretService identityService.SecretService,
	signatureService identityService.SignatureService,
	auditRecorder audit.Recorder,
) CredentialUseCase {
	return &credentialUseCase{
		config:           cfg,
		credentialRepo:   credentialRepo,
		userDirectory:    userDirectory,
		secretService:    secretService,
		signatureService: signatureService,
		auditRecorder:    auditRecorder,
	}
}
