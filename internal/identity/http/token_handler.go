package http

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	validation "github.com/jellydator/validation"

	deviceDomain "github.com/hdtickets/admission/internal/device/domain"
	"github.com/hdtickets/admission/internal/httputil"
	identityDomain "github.com/hdtickets/admission/internal/identity/domain"
	identityUseCase "github.com/hdtickets/admission/internal/identity/usecase"
	"github.com/hdtickets/admission/internal/request"
	customValidation "github.com/hdtickets/admission/internal/validation"
)

// TokenHandler handles HTTP requests for session token operations. Token
// issuance sits behind the marketplace's primary login check; this endpoint
// turns an authenticated login into a signed session token bound to the
// requesting device.
type TokenHandler struct {
	tokenUseCase identityUseCase.TokenUseCase
	logger       *slog.Logger
}

// NewTokenHandler creates a new token handler with required dependencies.
func NewTokenHandler(
	tokenUseCase identityUseCase.TokenUseCase,
	logger *slog.Logger,
) *TokenHandler {
	return &TokenHandler{
		tokenUseCase: tokenUseCase,
		logger:       logger,
	}
}

// IssueTokenRequest contains the parameters for issuing a session token.
type IssueTokenRequest struct {
	UserID string   `json:"user_id"`
	Scopes []string `json:"scopes"`
}

// Validate checks if the issue token request is valid.
func (r *IssueTokenRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.UserID,
			validation.Required,
			validation.By(func(value interface{}) error {
				s, _ := value.(string)
				if _, err := uuid.Parse(s); err != nil {
					return validation.NewError("validation_uuid", "must be a valid UUID")
				}
				return nil
			}),
		),
		validation.Field(&r.Scopes,
			validation.Required,
			validation.Each(customValidation.ScopeIdentifier),
		),
	)
}

// IssueTokenResponse carries a freshly signed session token.
type IssueTokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int64  `json:"expires_in"`
	JTI         string `json:"jti"`
}

// IssueHandler issues a session token bound to the requesting device.
// POST /v1/auth/tokens - Returns 201 Created with the signed token.
func (h *TokenHandler) IssueHandler(c *gin.Context) {
	var req IssueTokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleValidationErrorGin(c, err, h.logger)
		return
	}
	if err := req.Validate(); err != nil {
		httputil.HandleValidationErrorGin(c, customValidation.WrapValidationError(err), h.logger)
		return
	}

	userID, err := uuid.Parse(req.UserID)
	if err != nil {
		httputil.HandleValidationErrorGin(c, err, h.logger)
		return
	}

	// The token carries the fingerprint of the device that logged in, so a
	// stolen token presented from elsewhere is distinguishable.
	fingerprint := deviceDomain.Fingerprint(request.FromHTTP(c.Request, "", c.ClientIP()))

	output, err := h.tokenUseCase.Issue(c.Request.Context(), &identityDomain.IssueTokenInput{
		UserID:            userID,
		Scopes:            req.Scopes,
		DeviceFingerprint: fingerprint,
	})
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusCreated, IssueTokenResponse{
		AccessToken: output.AccessToken,
		TokenType:   output.TokenType,
		ExpiresIn:   output.ExpiresIn,
		JTI:         output.JTI,
	})
}

// RevokeHandler invalidates a session token before its natural expiry.
// DELETE /v1/auth/tokens/:jti - Returns 204 No Content.
func (h *TokenHandler) RevokeHandler(c *gin.Context) {
	jti := c.Param("jti")
	if _, err := uuid.Parse(jti); err != nil {
		httputil.HandleValidationErrorGin(c,
			validation.NewError("validation_uuid", "invalid jti format: must be a valid UUID"),
			h.logger)
		return
	}

	if err := h.tokenUseCase.Revoke(c.Request.Context(), jti); err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.Status(http.StatusNoContent)
}
