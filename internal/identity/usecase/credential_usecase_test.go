package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/hdtickets/admission/internal/audit"
	"github.com/hdtickets/admission/internal/config"
	apperrors "github.com/hdtickets/admission/internal/errors"
	identityDomain "github.com/hdtickets/admission/internal/identity/domain"
	"github.com/hdtickets/admission/internal/request"
	userDomain "github.com/hdtickets/admission/internal/user/domain"
)

// mockCredentialRepository is a mock implementation of CredentialRepository for testing.
type mockCredentialRepository struct {
	mock.Mock
}

func (m *mockCredentialRepository) Create(ctx context.Context, credential *identityDomain.ApiCredential) error {
	args := m.Called(ctx, credential)
	return args.Error(0)
}

func (m *mockCredentialRepository) Update(ctx context.Context, credential *identityDomain.ApiCredential) error {
	args := m.Called(ctx, credential)
	return args.Error(0)
}

func (m *mockCredentialRepository) Get(ctx context.Context, id uuid.UUID) (*identityDomain.ApiCredential, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identityDomain.ApiCredential), args.Error(1)
}

func (m *mockCredentialRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]*identityDomain.ApiCredential, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*identityDomain.ApiCredential), args.Error(1)
}

func (m *mockCredentialRepository) Archive(ctx context.Context, credential *identityDomain.ApiCredential, now time.Time) error {
	args := m.Called(ctx, credential, now)
	return args.Error(0)
}

func (m *mockCredentialRepository) IncrementInvalidAttempts(ctx context.Context, id uuid.UUID) (int64, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(int64), args.Error(1)
}

// mockUserDirectory is a mock implementation of UserDirectory for testing.
type mockUserDirectory struct {
	mock.Mock
}

func (m *mockUserDirectory) FindByID(ctx context.Context, id uuid.UUID) (*userDomain.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*userDomain.User), args.Error(1)
}

// mockSecretService is a mock implementation of SecretService for testing.
type mockSecretService struct {
	mock.Mock
}

func (m *mockSecretService) GenerateSecret() (plainSecret string, hashedSecret string, error error) {
	args := m.Called()
	return args.String(0), args.String(1), args.Error(2)
}

func (m *mockSecretService) HashSecret(plainSecret string) (hashedSecret string, error error) {
	args := m.Called(plainSecret)
	return args.String(0), args.Error(1)
}

func (m *mockSecretService) CompareSecret(plainSecret string, hashedSecret string) bool {
	args := m.Called(plainSecret, hashedSecret)
	return args.Bool(0)
}

// mockSignatureService is a mock implementation of SignatureService for testing.
type mockSignatureService struct {
	mock.Mock
}

func (m *mockSignatureService) Verify(req *request.Request, secret string, now time.Time) error {
	args := m.Called(req, secret, now)
	return args.Error(0)
}

func (m *mockSignatureService) Sign(req *request.Request, secret string, timestamp time.Time) string {
	args := m.Called(req, secret, timestamp)
	return args.String(0)
}

func TestCredentialUseCase_Issue(t *testing.T) {
	ctx := context.Background()

	t.Run("Success_IssueKeyForActiveUser", func(t *testing.T) {
		mockConfig := &config.Config{}
		mockRepo := &mockCredentialRepository{}
		mockDirectory := &mockUserDirectory{}
		mockSecrets := &mockSecretService{}
		recorder := audit.NewMemoryRecorder()

		userID := uuid.Must(uuid.NewV7())
		owner := &userDomain.User{
			ID:       userID,
			Email:    "agent@example.com",
			Role:     userDomain.RoleAgent,
			IsActive: true,
		}

		mockDirectory.On("FindByID", ctx, userID).Return(owner, nil).Once()
		mockSecrets.On("GenerateSecret").
			Return("plain-secret", "$argon2id$hashed", nil).Once()
		mockRepo.On("Create", ctx, mock.AnythingOfType("*domain.ApiCredential")).
			Return(nil).Once()

		uc := NewCredentialUseCase(mockConfig, mockRepo, mockDirectory, mockSecrets, nil, recorder)
		output, err := uc.Issue(ctx, &identityDomain.IssueCredentialInput{
			UserID: userID,
			Name:   "ci-runner",
			Scopes: []string{"tickets.search"},
		})

		assert.NoError(t, err)
		assert.NotNil(t, output)
		assert.NotEqual(t, uuid.Nil, output.ID)
		assert.Equal(t, identityDomain.TierStandard, output.Tier)

		// The plain key must round-trip back to the generated secret.
		parsedID, parsedSecret, parseErr := identityDomain.ParseAPIKey(output.PlainKey)
		assert.NoError(t, parseErr)
		assert.Equal(t, output.ID, parsedID)
		assert.Equal(t, "plain-secret", parsedSecret)

		assert.Len(t, recorder.EventsOfType(audit.EventAPIKeyIssued), 1)
		mockRepo.AssertExpectations(t)
		mockDirectory.AssertExpectations(t)
		mockSecrets.AssertExpectations(t)
	})

	t.Run("Error_UserNotFound", func(t *testing.T) {
		mockConfig := &config.Config{}
		mockRepo := &mockCredentialRepository{}
		mockDirectory := &mockUserDirectory{}
		mockSecrets := &mockSecretService{}

		userID := uuid.Must(uuid.NewV7())
		mockDirectory.On("FindByID", ctx, userID).
			Return(nil, userDomain.ErrUserNotFound).Once()

		uc := NewCredentialUseCase(mockConfig, mockRepo, mockDirectory, mockSecrets, nil, nil)
		output, err := uc.Issue(ctx, &identityDomain.IssueCredentialInput{UserID: userID})

		assert.Nil(t, output)
		assert.ErrorIs(t, err, userDomain.ErrUserNotFound)
		mockRepo.AssertNotCalled(t, "Create")
	})
}

func TestCredentialUseCase_Validate(t *testing.T) {
	ctx := context.Background()
	userID := uuid.Must(uuid.NewV7())
	keyID := uuid.Must(uuid.NewV7())
	apiKey := identityDomain.EncodeAPIKey(keyID, "plain-secret")

	activeCredential := func() *identityDomain.ApiCredential {
		return &identityDomain.ApiCredential{
			ID:         keyID,
			UserID:     userID,
			SecretHash: "$argon2id$hashed",
			Scopes:     []string{"tickets.search"},
			Tier:       identityDomain.TierPremium,
			IsActive:   true,
			CreatedAt:  time.Now().UTC().Add(-time.Hour),
		}
	}
	activeOwner := &userDomain.User{
		ID:       userID,
		Role:     userDomain.RoleCustomer,
		IsActive: true,
	}

	t.Run("Success_ValidKey", func(t *testing.T) {
		mockRepo := &mockCredentialRepository{}
		mockDirectory := &mockUserDirectory{}
		mockSecrets := &mockSecretService{}

		mockRepo.On("Get", ctx, keyID).Return(activeCredential(), nil).Once()
		mockSecrets.On("CompareSecret", "plain-secret", "$argon2id$hashed").
			Return(true).Once()
		mockDirectory.On("FindByID", ctx, userID).Return(activeOwner, nil).Once()
		mockRepo.On("Update", ctx, mock.AnythingOfType("*domain.ApiCredential")).
			Return(nil).Once()

		uc := NewCredentialUseCase(&config.Config{}, mockRepo, mockDirectory, mockSecrets, nil, nil)
		principal, err := uc.Validate(ctx, apiKey, "203.0.113.10")

		assert.NoError(t, err)
		assert.Equal(t, userID, principal.UserID)
		assert.Equal(t, userDomain.RoleCustomer, principal.Role)
		assert.Equal(t, identityDomain.TierPremium, principal.Tier)
		assert.Equal(t, identityDomain.MethodAPIKey, principal.Method)
		mockRepo.AssertExpectations(t)
	})

	t.Run("Error_MalformedKey", func(t *testing.T) {
		uc := NewCredentialUseCase(&config.Config{}, &mockCredentialRepository{}, &mockUserDirectory{}, &mockSecretService{}, nil, nil)

		for _, bad := range []string{"", "not-a-key", "hdt_%%%", "hdt_" } {
			principal, err := uc.Validate(ctx, bad, "203.0.113.10")
			assert.Nil(t, principal)
			assert.ErrorIs(t, err, identityDomain.ErrMalformedCredential)
			assert.ErrorIs(t, err, apperrors.ErrUnauthorized)
		}
	})

	t.Run("Error_InactiveCredentialReportsNotFound", func(t *testing.T) {
		mockRepo := &mockCredentialRepository{}
		credential := activeCredential()
		credential.IsActive = false
		mockRepo.On("Get", ctx, keyID).Return(credential, nil).Once()

		uc := NewCredentialUseCase(&config.Config{}, mockRepo, &mockUserDirectory{}, &mockSecretService{}, nil, nil)
		principal, err := uc.Validate(ctx, apiKey, "203.0.113.10")

		assert.Nil(t, principal)
		assert.ErrorIs(t, err, identityDomain.ErrCredentialNotFound)
	})

	t.Run("Error_ExpiredCredential", func(t *testing.T) {
		mockRepo := &mockCredentialRepository{}
		credential := activeCredential()
		expired := time.Now().UTC().Add(-time.Minute)
		credential.ExpiresAt = &expired
		mockRepo.On("Get", ctx, keyID).Return(credential, nil).Once()

		uc := NewCredentialUseCase(&config.Config{}, mockRepo, &mockUserDirectory{}, &mockSecretService{}, nil, nil)
		_, err := uc.Validate(ctx, apiKey, "203.0.113.10")

		assert.ErrorIs(t, err, identityDomain.ErrCredentialExpired)
	})

	t.Run("Error_SecretMismatchCountsAttempt", func(t *testing.T) {
		mockRepo := &mockCredentialRepository{}
		mockSecrets := &mockSecretService{}
		recorder := audit.NewMemoryRecorder()

		mockRepo.On("Get", ctx, keyID).Return(activeCredential(), nil).Once()
		mockSecrets.On("CompareSecret", "plain-secret", "$argon2id$hashed").
			Return(false).Once()
		mockRepo.On("IncrementInvalidAttempts", ctx, keyID).
			Return(int64(3), nil).Once()

		uc := NewCredentialUseCase(&config.Config{}, mockRepo, &mockUserDirectory{}, mockSecrets, nil, recorder)
		_, err := uc.Validate(ctx, apiKey, "203.0.113.10")

		assert.ErrorIs(t, err, identityDomain.ErrSecretMismatch)
		assert.Len(t, recorder.EventsOfType(audit.EventInvalidAPIKey), 1)
		mockRepo.AssertExpectations(t)
	})

	t.Run("Error_IPNotWhitelisted", func(t *testing.T) {
		mockRepo := &mockCredentialRepository{}
		mockSecrets := &mockSecretService{}

		credential := activeCredential()
		credential.IPWhitelist = []string{"10.0.0.0/8"}
		mockRepo.On("Get", ctx, keyID).Return(credential, nil).Once()
		mockSecrets.On("CompareSecret", "plain-secret", "$argon2id$hashed").
			Return(true).Once()

		uc := NewCredentialUseCase(&config.Config{}, mockRepo, &mockUserDirectory{}, mockSecrets, nil, nil)
		_, err := uc.Validate(ctx, apiKey, "203.0.113.10")

		assert.ErrorIs(t, err, identityDomain.ErrIPNotWhitelisted)
		assert.ErrorIs(t, err, apperrors.ErrForbidden)
	})

	t.Run("Error_InactiveOwner", func(t *testing.T) {
		mockRepo := &mockCredentialRepository{}
		mockDirectory := &mockUserDirectory{}
		mockSecrets := &mockSecretService{}

		mockRepo.On("Get", ctx, keyID).Return(activeCredential(), nil).Once()
		mockSecrets.On("CompareSecret", "plain-secret", "$argon2id$hashed").
			Return(true).Once()
		mockDirectory.On("FindByID", ctx, userID).
			Return(&userDomain.User{ID: userID, IsActive: false}, nil).Once()

		uc := NewCredentialUseCase(&config.Config{}, mockRepo, mockDirectory, mockSecrets, nil, nil)
		_, err := uc.Validate(ctx, apiKey, "203.0.113.10")

		assert.ErrorIs(t, err, identityDomain.ErrPrincipalInactive)
	})

	t.Run("Error_StoreUnavailableFailsClosed", func(t *testing.T) {
		mockRepo := &mockCredentialRepository{}
		mockRepo.On("Get", ctx, keyID).
			Return(nil, apperrors.Wrap(apperrors.ErrStoreUnavailable, "redis down")).Once()

		uc := NewCredentialUseCase(&config.Config{}, mockRepo, &mockUserDirectory{}, &mockSecretService{}, nil, nil)
		principal, err := uc.Validate(ctx, apiKey, "203.0.113.10")

		assert.Nil(t, principal)
		assert.ErrorIs(t, err, apperrors.ErrStoreUnavailable)
	})
}

func TestCredentialUseCase_Rotate(t *testing.T) {
	ctx := context.Background()
	userID := uuid.Must(uuid.NewV7())
	keyID := uuid.Must(uuid.NewV7())

	t.Run("Success_RotateOwnKey", func(t *testing.T) {
		mockRepo := &mockCredentialRepository{}
		mockSecrets := &mockSecretService{}
		recorder := audit.NewMemoryRecorder()

		credential := &identityDomain.ApiCredential{
			ID:         keyID,
			UserID:     userID,
			SecretHash: "$argon2id$old",
			IsActive:   true,
		}
		mockRepo.On("Get", ctx, keyID).Return(credential, nil).Once()
		mockRepo.On("Archive", ctx, credential, mock.AnythingOfType("time.Time")).
			Return(nil).Once()
		mockSecrets.On("GenerateSecret").
			Return("new-secret", "$argon2id$new", nil).Once()
		mockRepo.On("Update", ctx, credential).Return(nil).Once()

		uc := NewCredentialUseCase(&config.Config{}, mockRepo, &mockUserDirectory{}, mockSecrets, nil, recorder)
		output, err := uc.Rotate(ctx, userID, keyID)

		assert.NoError(t, err)
		assert.Equal(t, "$argon2id$new", credential.SecretHash)
		assert.NotNil(t, credential.RotatedAt)

		_, parsedSecret, parseErr := identityDomain.ParseAPIKey(output.PlainKey)
		assert.NoError(t, parseErr)
		assert.Equal(t, "new-secret", parsedSecret)
		assert.Len(t, recorder.EventsOfType(audit.EventAPIKeyRotated), 1)
	})

	t.Run("Error_NotOwner", func(t *testing.T) {
		mockRepo := &mockCredentialRepository{}
		mockRepo.On("Get", ctx, keyID).Return(&identityDomain.ApiCredential{
			ID:       keyID,
			UserID:   uuid.Must(uuid.NewV7()),
			IsActive: true,
		}, nil).Once()

		uc := NewCredentialUseCase(&config.Config{}, mockRepo, &mockUserDirectory{}, &mockSecretService{}, nil, nil)
		output, err := uc.Rotate(ctx, userID, keyID)

		assert.Nil(t, output)
		assert.ErrorIs(t, err, identityDomain.ErrNotCredentialOwner)
	})
}

func TestCredentialUseCase_Revoke(t *testing.T) {
	ctx := context.Background()
	userID := uuid.Must(uuid.NewV7())
	keyID := uuid.Must(uuid.NewV7())

	t.Run("Success_RevokeOwnKey", func(t *testing.T) {
		mockRepo := &mockCredentialRepository{}
		recorder := audit.NewMemoryRecorder()

		credential := &identityDomain.ApiCredential{
			ID:       keyID,
			UserID:   userID,
			IsActive: true,
		}
		mockRepo.On("Get", ctx, keyID).Return(credential, nil).Once()
		mockRepo.On("Archive", ctx, credential, mock.AnythingOfType("time.Time")).
			Return(nil).Once()
		mockRepo.On("Update", ctx, credential).Return(nil).Once()

		uc := NewCredentialUseCase(&config.Config{}, mockRepo, &mockUserDirectory{}, &mockSecretService{}, nil, recorder)
		err := uc.Revoke(ctx, userID, keyID)

		assert.NoError(t, err)
		assert.False(t, credential.IsActive)
		assert.NotNil(t, credential.RevokedAt)
		assert.Len(t, recorder.EventsOfType(audit.EventAPIKeyRevoked), 1)
	})

	t.Run("Error_AlreadyRevoked", func(t *testing.T) {
		mockRepo := &mockCredentialRepository{}
		mockRepo.On("Get", ctx, keyID).Return(&identityDomain.ApiCredential{
			ID:       keyID,
			UserID:   userID,
			IsActive: false,
		}, nil).Once()

		uc := NewCredentialUseCase(&config.Config{}, mockRepo, &mockUserDirectory{}, &mockSecretService{}, nil, nil)
		err := uc.Revoke(ctx, userID, keyID)

		assert.ErrorIs(t, err, identityDomain.ErrCredentialNotFound)
	})
}

func TestCredentialUseCase_VerifySignedRequest(t *testing.T) {
	ctx := context.Background()
	userID := uuid.Must(uuid.NewV7())
	keyID := uuid.Must(uuid.NewV7())
	apiKey := identityDomain.EncodeAPIKey(keyID, "plain-secret")

	req := &request.Request{
		Method: "POST",
		Path:   "/v1/tickets/purchase",
		Body:   `{"ticket_id":"t-1"}`,
		IP:     "203.0.113.10",
	}

	t.Run("Success_ValidSignature", func(t *testing.T) {
		mockRepo := &mockCredentialRepository{}
		mockSecrets := &mockSecretService{}
		mockSignatures := &mockSignatureService{}

		mockRepo.On("Get", ctx, keyID).Return(&identityDomain.ApiCredential{
			ID:         keyID,
			UserID:     userID,
			SecretHash: "$argon2id$hashed",
			IsActive:   true,
		}, nil).Once()
		mockSecrets.On("CompareSecret", "plain-secret", "$argon2id$hashed").
			Return(true).Once()
		mockSignatures.On("Verify", req, "plain-secret", mock.AnythingOfType("time.Time")).
			Return(nil).Once()

		uc := NewCredentialUseCase(&config.Config{}, mockRepo, &mockUserDirectory{}, mockSecrets, mockSignatures, nil)
		assert.NoError(t, uc.VerifySignedRequest(ctx, apiKey, req))
		mockSignatures.AssertExpectations(t)
	})

	t.Run("Error_InvalidSignature", func(t *testing.T) {
		mockRepo := &mockCredentialRepository{}
		mockSecrets := &mockSecretService{}
		mockSignatures := &mockSignatureService{}

		mockRepo.On("Get", ctx, keyID).Return(&identityDomain.ApiCredential{
			ID:         keyID,
			UserID:     userID,
			SecretHash: "$argon2id$hashed",
			IsActive:   true,
		}, nil).Once()
		mockSecrets.On("CompareSecret", "plain-secret", "$argon2id$hashed").
			Return(true).Once()
		mockSignatures.On("Verify", req, "plain-secret", mock.AnythingOfType("time.Time")).
			Return(identityDomain.ErrSignatureInvalid).Once()

		uc := NewCredentialUseCase(&config.Config{}, mockRepo, &mockUserDirectory{}, mockSecrets, mockSignatures, nil)
		err := uc.VerifySignedRequest(ctx, apiKey, req)

		assert.ErrorIs(t, err, identityDomain.ErrSignatureInvalid)
		assert.ErrorIs(t, err, apperrors.ErrUnauthorized)
	})
}
