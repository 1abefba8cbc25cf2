// Package http provides HTTP handlers for credential and token operations.
package http

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	validation "github.com/jellydator/validation"

	identityDomain "github.com/hdtickets/admission/internal/identity/domain"
	identityUseCase "github.com/hdtickets/admission/internal/identity/usecase"
	"github.com/hdtickets/admission/internal/httputil"
	customValidation "github.com/hdtickets/admission/internal/validation"
)

// principalResolver fetches the resolved principal from the request context.
// The http server package owns the context keys; this indirection keeps the
// handler packages free of a dependency cycle on it.
type principalResolver func(c *gin.Context) (*identityDomain.Principal, bool)

// CredentialHandler handles HTTP requests for API key lifecycle operations.
type CredentialHandler struct {
	credentialUseCase identityUseCase.CredentialUseCase
	principal         principalResolver
	logger            *slog.Logger
}

// NewCredentialHandler creates a new credential handler with required dependencies.
func NewCredentialHandler(
	credentialUseCase identityUseCase.CredentialUseCase,
	principal func(c *gin.Context) (*identityDomain.Principal, bool),
	logger *slog.Logger,
) *CredentialHandler {
	return &CredentialHandler{
		credentialUseCase: credentialUseCase,
		principal:         principal,
		logger:            logger,
	}
}

// IssueKeyRequest contains the parameters for issuing a new API key.
type IssueKeyRequest struct {
	Name        string     `json:"name"`
	Scopes      []string   `json:"scopes"`
	Tier        string     `json:"tier"`
	IPWhitelist []string   `json:"ip_whitelist"`
	ExpiresAt   *time.Time `json:"expires_at"`
}

// Validate checks if the issue key request is valid.
func (r *IssueKeyRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.Name,
			validation.Required,
			customValidation.NotBlank,
			validation.Length(1, 255),
		),
		validation.Field(&r.Scopes,
			validation.Required,
			validation.Each(customValidation.ScopeIdentifier),
		),
		validation.Field(&r.Tier,
			validation.In(identityDomain.TierStandard, identityDomain.TierPremium, identityDomain.TierInternal),
		),
		validation.Field(&r.IPWhitelist,
			validation.Each(validation.Required, customValidation.IPWhitelistEntry),
		),
	)
}

// IssueKeyResponse carries a freshly issued API key. The api_key field is
// the only time the plain key is ever returned.
type IssueKeyResponse struct {
	ID        string    `json:"id"`
	APIKey    string    `json:"api_key"`
	Scopes    []string  `json:"scopes"`
	Tier      string    `json:"tier"`
	CreatedAt time.Time `json:"created_at"`
}

// IssueHandler issues a new API key owned by the calling principal.
// POST /v1/api-keys - Returns 201 Created with the plain key.
func (h *CredentialHandler) IssueHandler(c *gin.Context) {
	principal, ok := h.principal(c)
	if !ok {
		httputil.HandleErrorGin(c, identityDomain.ErrMalformedCredential, h.logger)
		return
	}

	var req IssueKeyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleValidationErrorGin(c, err, h.logger)
		return
	}
	if err := req.Validate(); err != nil {
		httputil.HandleValidationErrorGin(c, customValidation.WrapValidationError(err), h.logger)
		return
	}

	tier := req.Tier
	if tier == "" {
		tier = identityDomain.TierStandard
	}

	output, err := h.credentialUseCase.Issue(c.Request.Context(), &identityDomain.IssueCredentialInput{
		UserID:      principal.UserID,
		Name:        req.Name,
		Scopes:      req.Scopes,
		Tier:        tier,
		IPWhitelist: req.IPWhitelist,
		ExpiresAt:   req.ExpiresAt,
	})
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusCreated, IssueKeyResponse{
		ID:        output.ID.String(),
		APIKey:    output.PlainKey,
		Scopes:    output.Scopes,
		Tier:      output.Tier,
		CreatedAt: output.CreatedAt,
	})
}

// RotateKeyResponse carries the replacement key after a rotation.
type RotateKeyResponse struct {
	ID        string    `json:"id"`
	APIKey    string    `json:"api_key"`
	RotatedAt time.Time `json:"rotated_at"`
}

// RotateHandler replaces the secret of a credential owned by the caller.
// POST /v1/api-keys/:id/rotate - Returns 200 OK with the new plain key.
func (h *CredentialHandler) RotateHandler(c *gin.Context) {
	principal, ok := h.principal(c)
	if !ok {
		httputil.HandleErrorGin(c, identityDomain.ErrMalformedCredential, h.logger)
		return
	}

	credentialID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.HandleValidationErrorGin(c,
			fmt.Errorf("invalid credential ID format: must be a valid UUID"),
			h.logger)
		return
	}

	output, err := h.credentialUseCase.Rotate(c.Request.Context(), principal.UserID, credentialID)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, RotateKeyResponse{
		ID:        output.ID.String(),
		APIKey:    output.PlainKey,
		RotatedAt: output.RotatedAt,
	})
}

// RevokeHandler deactivates a credential owned by the caller.
// DELETE /v1/api-keys/:id - Returns 204 No Content.
func (h *CredentialHandler) RevokeHandler(c *gin.Context) {
	principal, ok := h.principal(c)
	if !ok {
		httputil.HandleErrorGin(c, identityDomain.ErrMalformedCredential, h.logger)
		return
	}

	credentialID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.HandleValidationErrorGin(c,
			fmt.Errorf("invalid credential ID format: must be a valid UUID"),
			h.logger)
		return
	}

	if err := h.credentialUseCase.Revoke(c.Request.Context(), principal.UserID, credentialID); err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.Status(http.StatusNoContent)
}
