// Package http provides HTTP handlers for permission and role administration.
package http

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	validation "github.com/jellydator/validation"

	"github.com/hdtickets/admission/internal/httputil"
	identityDomain "github.com/hdtickets/admission/internal/identity/domain"
	rbacUseCase "github.com/hdtickets/admission/internal/rbac/usecase"
	customValidation "github.com/hdtickets/admission/internal/validation"
)

// PermissionHandler handles HTTP requests for grant, revoke, and role
// assignment. All routes sit behind the users.manage admission policy.
type PermissionHandler struct {
	resolverUseCase rbacUseCase.ResolverUseCase
	principal       func(c *gin.Context) (*identityDomain.Principal, bool)
	logger          *slog.Logger
}

// NewPermissionHandler creates a new permission handler with required dependencies.
func NewPermissionHandler(
	resolverUseCase rbacUseCase.ResolverUseCase,
	principal func(c *gin.Context) (*identityDomain.Principal, bool),
	logger *slog.Logger,
) *PermissionHandler {
	return &PermissionHandler{
		resolverUseCase: resolverUseCase,
		principal:       principal,
		logger:          logger,
	}
}

// GrantPermissionRequest contains the permission to grant.
type GrantPermissionRequest struct {
	Permission string `json:"permission"`
}

// Validate checks if the grant permission request is valid.
func (r *GrantPermissionRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.Permission,
			validation.Required,
			customValidation.PermissionIdentifier,
		),
	)
}

// GrantHandler adds a custom permission grant to a user.
// POST /v1/users/:id/permissions - Returns 204 No Content.
func (h *PermissionHandler) GrantHandler(c *gin.Context) {
	userID, principal, ok := h.parseTarget(c)
	if !ok {
		return
	}

	var req GrantPermissionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleValidationErrorGin(c, err, h.logger)
		return
	}
	if err := req.Validate(); err != nil {
		httputil.HandleValidationErrorGin(c, customValidation.WrapValidationError(err), h.logger)
		return
	}

	if err := h.resolverUseCase.Grant(c.Request.Context(), userID, req.Permission, principal.UserID); err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.Status(http.StatusNoContent)
}

// RevokeHandler removes a custom permission grant from a user.
// DELETE /v1/users/:id/permissions/:permission - Returns 204 No Content.
func (h *PermissionHandler) RevokeHandler(c *gin.Context) {
	userID, principal, ok := h.parseTarget(c)
	if !ok {
		return
	}

	permission := c.Param("permission")
	if err := customValidation.PermissionIdentifier.Validate(permission); err != nil {
		httputil.HandleValidationErrorGin(c, customValidation.WrapValidationError(err), h.logger)
		return
	}

	if err := h.resolverUseCase.Revoke(c.Request.Context(), userID, permission, principal.UserID); err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.Status(http.StatusNoContent)
}

// AssignRoleRequest contains the role to assign.
type AssignRoleRequest struct {
	Role string `json:"role"`
}

// Validate checks if the assign role request is valid.
func (r *AssignRoleRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.Role,
			validation.Required,
			customValidation.RoleIdentifier,
		),
	)
}

// AssignRoleHandler replaces a user's role.
// PUT /v1/users/:id/role - Returns 204 No Content.
func (h *PermissionHandler) AssignRoleHandler(c *gin.Context) {
	userID, principal, ok := h.parseTarget(c)
	if !ok {
		return
	}

	var req AssignRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleValidationErrorGin(c, err, h.logger)
		return
	}
	if err := req.Validate(); err != nil {
		httputil.HandleValidationErrorGin(c, customValidation.WrapValidationError(err), h.logger)
		return
	}

	if err := h.resolverUseCase.AssignRole(c.Request.Context(), userID, req.Role, principal.UserID); err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.Status(http.StatusNoContent)
}

// parseTarget extracts the target user ID and the calling principal.
func (h *PermissionHandler) parseTarget(c *gin.Context) (uuid.UUID, *identityDomain.Principal, bool) {
	principal, ok := h.principal(c)
	if !ok {
		httputil.HandleErrorGin(c, identityDomain.ErrMalformedCredential, h.logger)
		return uuid.Nil, nil, false
	}

	userID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.HandleValidationErrorGin(c,
			fmt.Errorf("invalid user ID format: must be a valid UUID"),
			h.logger)
		return uuid.Nil, nil, false
	}

	return userID, principal, true
}
