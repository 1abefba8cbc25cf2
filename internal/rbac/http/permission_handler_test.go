package http

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	identityDomain "github.com/hdtickets/admission/internal/identity/domain"
	rbacDomain "github.com/hdtickets/admission/internal/rbac/domain"
)

// MockResolverUseCase is a mock implementation of ResolverUseCase for testing.
type MockResolverUseCase struct {
	mock.Mock
}

func (m *MockResolverUseCase) EffectivePermissions(ctx context.Context, principal *identityDomain.Principal) ([]string, error) {
	args := m.Called(ctx, principal)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

func (m *MockResolverUseCase) HasPermission(ctx context.Context, principal *identityDomain.Principal, permission string, rctx *rbacDomain.ResourceContext) (bool, error) {
	args := m.Called(ctx, principal, permission, rctx)
	return args.Bool(0), args.Error(1)
}

func (m *MockResolverUseCase) Require(ctx context.Context, principal *identityDomain.Principal, permission string, rctx *rbacDomain.ResourceContext) error {
	args := m.Called(ctx, principal, permission, rctx)
	return args.Error(0)
}

func (m *MockResolverUseCase) Grant(ctx context.Context, userID uuid.UUID, permission string, grantedBy uuid.UUID) error {
	args := m.Called(ctx, userID, permission, grantedBy)
	return args.Error(0)
}

func (m *MockResolverUseCase) Revoke(ctx context.Context, userID uuid.UUID, permission string, revokedBy uuid.UUID) error {
	args := m.Called(ctx, userID, permission, revokedBy)
	return args.Error(0)
}

func (m *MockResolverUseCase) AssignRole(ctx context.Context, userID uuid.UUID, role string, assignedBy uuid.UUID) error {
	args := m.Called(ctx, userID, role, assignedBy)
	return args.Error(0)
}

func (m *MockResolverUseCase) CreateDynamicRole(ctx context.Context, name string, permissions []string, createdBy uuid.UUID) error {
	args := m.Called(ctx, name, permissions, createdBy)
	return args.Error(0)
}

func (m *MockResolverUseCase) ValidateCatalog() []rbacDomain.Issue {
	args := m.Called()
	if args.Get(0) == nil {
		return nil
	}
	return args.Get(0).([]rbacDomain.Issue)
}

// setupPermissionTestHandler creates a test permission handler with mocked dependencies.
func setupPermissionTestHandler(t *testing.T, principal *identityDomain.Principal) (*PermissionHandler, *MockResolverUseCase) {
	t.Helper()

	gin.SetMode(gin.TestMode)

	mockUseCase := &MockResolverUseCase{}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	resolver := func(c *gin.Context) (*identityDomain.Principal, bool) {
		if principal == nil {
			return nil, false
		}
		return principal, true
	}

	handler := NewPermissionHandler(mockUseCase, resolver, logger)

	return handler, mockUseCase
}

// createTestContext creates a test Gin context with the given request.
func createTestContext(method, path string, body interface{}) (*gin.Context, *httptest.ResponseRecorder) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	var bodyReader io.Reader
	if body != nil {
		bodyBytes, _ := json.Marshal(body)
		bodyReader = bytes.NewReader(bodyBytes)
	}

	req := httptest.NewRequest(method, path, bodyReader)
	req.Header.Set("Content-Type", "application/json")
	c.Request = req

	return c, w
}

func TestPermissionHandler_GrantHandler(t *testing.T) {
	adminID := uuid.Must(uuid.NewV7())
	admin := &identityDomain.Principal{UserID: adminID, Role: "admin"}

	t.Run("Success_GrantsPermission", func(t *testing.T) {
		handler, mockUseCase := setupPermissionTestHandler(t, admin)

		targetID := uuid.Must(uuid.NewV7())
		mockUseCase.On("Grant", mock.Anything, targetID, "reports.export", adminID).
			Return(nil).
			Once()

		c, w := createTestContext(http.MethodPost,
			"/v1/users/"+targetID.String()+"/permissions",
			GrantPermissionRequest{Permission: "reports.export"})
		c.Params = gin.Params{{Key: "id", Value: targetID.String()}}

		handler.GrantHandler(c)

		assert.Equal(t, http.StatusNoContent, w.Code)
		mockUseCase.AssertExpectations(t)
	})

	t.Run("Error_UnknownPermission", func(t *testing.T) {
		handler, mockUseCase := setupPermissionTestHandler(t, admin)

		targetID := uuid.Must(uuid.NewV7())
		mockUseCase.On("Grant", mock.Anything, targetID, "tickets.teleport", adminID).
			Return(rbacDomain.ErrUnknownPermission).
			Once()

		c, w := createTestContext(http.MethodPost,
			"/v1/users/"+targetID.String()+"/permissions",
			GrantPermissionRequest{Permission: "tickets.teleport"})
		c.Params = gin.Params{{Key: "id", Value: targetID.String()}}

		handler.GrantHandler(c)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		mockUseCase.AssertExpectations(t)
	})

	t.Run("Error_MalformedPermission", func(t *testing.T) {
		handler, _ := setupPermissionTestHandler(t, admin)

		targetID := uuid.Must(uuid.NewV7())
		c, w := createTestContext(http.MethodPost,
			"/v1/users/"+targetID.String()+"/permissions",
			GrantPermissionRequest{Permission: "Not A Permission"})
		c.Params = gin.Params{{Key: "id", Value: targetID.String()}}

		handler.GrantHandler(c)

		assert.Equal(t, http.StatusBadRequest, w.Code)

		var response map[string]interface{}
		err := json.Unmarshal(w.Body.Bytes(), &response)
		assert.NoError(t, err)
		assert.Equal(t, "validation_error", response["error"])
	})

	t.Run("Error_MalformedUserID", func(t *testing.T) {
		handler, _ := setupPermissionTestHandler(t, admin)

		c, w := createTestContext(http.MethodPost, "/v1/users/not-a-uuid/permissions",
			GrantPermissionRequest{Permission: "reports.export"})
		c.Params = gin.Params{{Key: "id", Value: "not-a-uuid"}}

		handler.GrantHandler(c)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("Error_NoPrincipal", func(t *testing.T) {
		handler, _ := setupPermissionTestHandler(t, nil)

		targetID := uuid.Must(uuid.NewV7())
		c, w := createTestContext(http.MethodPost,
			"/v1/users/"+targetID.String()+"/permissions",
			GrantPermissionRequest{Permission: "reports.export"})
		c.Params = gin.Params{{Key: "id", Value: targetID.String()}}

		handler.GrantHandler(c)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}

func TestPermissionHandler_RevokeHandler(t *testing.T) {
	adminID := uuid.Must(uuid.NewV7())
	admin := &identityDomain.Principal{UserID: adminID, Role: "admin"}

	t.Run("Success_RevokesPermission", func(t *testing.T) {
		handler, mockUseCase := setupPermissionTestHandler(t, admin)

		targetID := uuid.Must(uuid.NewV7())
		mockUseCase.On("Revoke", mock.Anything, targetID, "reports.export", adminID).
			Return(nil).
			Once()

		c, w := createTestContext(http.MethodDelete,
			"/v1/users/"+targetID.String()+"/permissions/reports.export", nil)
		c.Params = gin.Params{
			{Key: "id", Value: targetID.String()},
			{Key: "permission", Value: "reports.export"},
		}

		handler.RevokeHandler(c)

		assert.Equal(t, http.StatusNoContent, w.Code)
		mockUseCase.AssertExpectations(t)
	})

	t.Run("Error_MalformedPermission", func(t *testing.T) {
		handler, _ := setupPermissionTestHandler(t, admin)

		targetID := uuid.Must(uuid.NewV7())
		c, w := createTestContext(http.MethodDelete,
			"/v1/users/"+targetID.String()+"/permissions/NOPE", nil)
		c.Params = gin.Params{
			{Key: "id", Value: targetID.String()},
			{Key: "permission", Value: "NOPE"},
		}

		handler.RevokeHandler(c)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestPermissionHandler_AssignRoleHandler(t *testing.T) {
	adminID := uuid.Must(uuid.NewV7())
	admin := &identityDomain.Principal{UserID: adminID, Role: "admin"}

	t.Run("Success_AssignsRole", func(t *testing.T) {
		handler, mockUseCase := setupPermissionTestHandler(t, admin)

		targetID := uuid.Must(uuid.NewV7())
		mockUseCase.On("AssignRole", mock.Anything, targetID, "support", adminID).
			Return(nil).
			Once()

		c, w := createTestContext(http.MethodPut,
			"/v1/users/"+targetID.String()+"/role",
			AssignRoleRequest{Role: "support"})
		c.Params = gin.Params{{Key: "id", Value: targetID.String()}}

		handler.AssignRoleHandler(c)

		assert.Equal(t, http.StatusNoContent, w.Code)
		mockUseCase.AssertExpectations(t)
	})

	t.Run("Error_UnknownRole", func(t *testing.T) {
		handler, mockUseCase := setupPermissionTestHandler(t, admin)

		targetID := uuid.Must(uuid.NewV7())
		mockUseCase.On("AssignRole", mock.Anything, targetID, "overlord", adminID).
			Return(rbacDomain.ErrUnknownRole).
			Once()

		c, w := createTestContext(http.MethodPut,
			"/v1/users/"+targetID.String()+"/role",
			AssignRoleRequest{Role: "overlord"})
		c.Params = gin.Params{{Key: "id", Value: targetID.String()}}

		handler.AssignRoleHandler(c)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		mockUseCase.AssertExpectations(t)
	})
}
