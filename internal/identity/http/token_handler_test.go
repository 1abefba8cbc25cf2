package http

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	identityDomain "github.com/hdtickets/admission/internal/identity/domain"
	userDomain "github.com/hdtickets/admission/internal/user/domain"
)

// MockTokenUseCase is a mock implementation of TokenUseCase for testing.
type MockTokenUseCase struct {
	mock.Mock
}

func (m *MockTokenUseCase) Issue(
	ctx context.Context,
	input *identityDomain.IssueTokenInput,
) (*identityDomain.IssueTokenOutput, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identityDomain.IssueTokenOutput), args.Error(1)
}

func (m *MockTokenUseCase) Validate(ctx context.Context, tokenString string) (*identityDomain.Principal, error) {
	args := m.Called(ctx, tokenString)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identityDomain.Principal), args.Error(1)
}

func (m *MockTokenUseCase) Revoke(ctx context.Context, jti string) error {
	args := m.Called(ctx, jti)
	return args.Error(0)
}

// setupTokenTestHandler creates a test token handler with mocked dependencies.
func setupTokenTestHandler(t *testing.T) (*TokenHandler, *MockTokenUseCase) {
	t.Helper()

	gin.SetMode(gin.TestMode)

	mockUseCase := &MockTokenUseCase{}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	handler := NewTokenHandler(mockUseCase, logger)

	return handler, mockUseCase
}

func TestTokenHandler_IssueHandler(t *testing.T) {
	t.Run("Success_ValidUser", func(t *testing.T) {
		handler, mockUseCase := setupTokenTestHandler(t)

		userID := uuid.Must(uuid.NewV7())
		jti := uuid.Must(uuid.NewV7()).String()

		mockUseCase.On("Issue", mock.Anything, mock.MatchedBy(func(input *identityDomain.IssueTokenInput) bool {
			return input.UserID == userID && input.DeviceFingerprint != ""
		})).Return(&identityDomain.IssueTokenOutput{
			AccessToken: "eyJhbGciOiJIUzI1NiJ9.payload.sig",
			TokenType:   "Bearer",
			ExpiresIn:   86400,
			JTI:         jti,
		}, nil).Once()

		c, w := createTestContext(http.MethodPost, "/v1/auth/tokens", IssueTokenRequest{
			UserID: userID.String(),
			Scopes: []string{"tickets.view"},
		})

		handler.IssueHandler(c)

		assert.Equal(t, http.StatusCreated, w.Code)

		var response IssueTokenResponse
		err := json.Unmarshal(w.Body.Bytes(), &response)
		assert.NoError(t, err)
		assert.Equal(t, "Bearer", response.TokenType)
		assert.Equal(t, jti, response.JTI)
		assert.NotEmpty(t, response.AccessToken)

		mockUseCase.AssertExpectations(t)
	})

	t.Run("Error_InvalidJSON", func(t *testing.T) {
		handler, _ := setupTokenTestHandler(t)

		c, w := createTestContext(http.MethodPost, "/v1/auth/tokens", nil)
		c.Request.Body = io.NopCloser(bytes.NewReader([]byte("invalid json")))

		handler.IssueHandler(c)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("Error_MalformedUserID", func(t *testing.T) {
		handler, _ := setupTokenTestHandler(t)

		c, w := createTestContext(http.MethodPost, "/v1/auth/tokens", IssueTokenRequest{
			UserID: "not-a-uuid",
		})

		handler.IssueHandler(c)

		assert.Equal(t, http.StatusBadRequest, w.Code)

		var response map[string]interface{}
		err := json.Unmarshal(w.Body.Bytes(), &response)
		assert.NoError(t, err)
		assert.Equal(t, "validation_error", response["error"])
	})

	t.Run("Error_UnknownUser", func(t *testing.T) {
		handler, mockUseCase := setupTokenTestHandler(t)

		userID := uuid.Must(uuid.NewV7())
		mockUseCase.On("Issue", mock.Anything, mock.Anything).
			Return(nil, userDomain.ErrUserNotFound).
			Once()

		c, w := createTestContext(http.MethodPost, "/v1/auth/tokens", IssueTokenRequest{
			UserID: userID.String(),
		})

		handler.IssueHandler(c)

		assert.Equal(t, http.StatusNotFound, w.Code)
		mockUseCase.AssertExpectations(t)
	})
}

func TestTokenHandler_RevokeHandler(t *testing.T) {
	t.Run("Success_RevokesByJTI", func(t *testing.T) {
		handler, mockUseCase := setupTokenTestHandler(t)

		jti := uuid.Must(uuid.NewV7()).String()
		mockUseCase.On("Revoke", mock.Anything, jti).
			Return(nil).
			Once()

		c, w := createTestContext(http.MethodDelete, "/v1/auth/tokens/"+jti, nil)
		c.Params = gin.Params{{Key: "jti", Value: jti}}

		handler.RevokeHandler(c)

		assert.Equal(t, http.StatusNoContent, w.Code)
		mockUseCase.AssertExpectations(t)
	})

	t.Run("Error_MalformedJTI", func(t *testing.T) {
		handler, _ := setupTokenTestHandler(t)

		c, w := createTestContext(http.MethodDelete, "/v1/auth/tokens/garbage", nil)
		c.Params = gin.Params{{Key: "jti", Value: "garbage"}}

		handler.RevokeHandler(c)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}
