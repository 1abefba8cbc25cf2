// Package http provides HTTP handlers for trusted device management.
package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	deviceDomain "github.com/hdtickets/admission/internal/device/domain"
	deviceUseCase "github.com/hdtickets/admission/internal/device/usecase"
	"github.com/hdtickets/admission/internal/httputil"
	identityDomain "github.com/hdtickets/admission/internal/identity/domain"
)

// DeviceHandler handles HTTP requests for the caller's trusted devices.
type DeviceHandler struct {
	trustUseCase deviceUseCase.TrustUseCase
	principal    func(c *gin.Context) (*identityDomain.Principal, bool)
	logger       *slog.Logger
}

// NewDeviceHandler creates a new device handler with required dependencies.
func NewDeviceHandler(
	trustUseCase deviceUseCase.TrustUseCase,
	principal func(c *gin.Context) (*identityDomain.Principal, bool),
	logger *slog.Logger,
) *DeviceHandler {
	return &DeviceHandler{
		trustUseCase: trustUseCase,
		principal:    principal,
		logger:       logger,
	}
}

// DeviceResponse describes one trusted device. The fingerprint doubles as
// the device's identifier in revocation calls.
type DeviceResponse struct {
	Fingerprint string    `json:"fingerprint"`
	Score       int       `json:"score"`
	Level       string    `json:"level"`
	UseCount    int       `json:"use_count"`
	FirstSeenAt time.Time `json:"first_seen_at"`
	LastSeenAt  time.Time `json:"last_seen_at"`
	ExpiresAt   time.Time `json:"expires_at"`
}

// ListHandler returns the caller's live trusted devices.
// GET /v1/devices?offset=0&limit=50 - Returns 200 OK.
func (h *DeviceHandler) ListHandler(c *gin.Context) {
	principal, ok := h.principal(c)
	if !ok {
		httputil.HandleErrorGin(c, identityDomain.ErrMalformedCredential, h.logger)
		return
	}

	offset, limit, err := httputil.ParsePagination(c)
	if err != nil {
		httputil.HandleValidationErrorGin(c, err, h.logger)
		return
	}

	devices, err := h.trustUseCase.List(c.Request.Context(), principal.UserID)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	if offset >= len(devices) {
		devices = nil
	} else if offset+limit < len(devices) {
		devices = devices[offset : offset+limit]
	} else {
		devices = devices[offset:]
	}

	now := time.Now().UTC()
	response := make([]DeviceResponse, 0, len(devices))
	for _, device := range devices {
		score := device.Score(now)
		response = append(response, DeviceResponse{
			Fingerprint: device.Fingerprint,
			Score:       score,
			Level:       deviceDomain.LevelForScore(score),
			UseCount:    device.UseCount,
			FirstSeenAt: device.FirstSeenAt,
			LastSeenAt:  device.LastSeenAt,
			ExpiresAt:   device.ExpiresAt,
		})
	}

	c.JSON(http.StatusOK, gin.H{"devices": response})
}

// RevokeHandler forgets one of the caller's devices.
// DELETE /v1/devices/:fingerprint - Returns 204 No Content.
func (h *DeviceHandler) RevokeHandler(c *gin.Context) {
	principal, ok := h.principal(c)
	if !ok {
		httputil.HandleErrorGin(c, identityDomain.ErrMalformedCredential, h.logger)
		return
	}

	fingerprint := c.Param("fingerprint")
	if err := h.trustUseCase.Revoke(c.Request.Context(), principal.UserID, fingerprint); err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.Status(http.StatusNoContent)
}

// RevokeAllHandler forgets every device of the caller. Used after a
// credential compromise so every session re-earns trust.
// DELETE /v1/devices - Returns 204 No Content.
func (h *DeviceHandler) RevokeAllHandler(c *gin.Context) {
	principal, ok := h.principal(c)
	if !ok {
		httputil.HandleErrorGin(c, identityDomain.ErrMalformedCredential, h.logger)
		return
	}

	if err := h.trustUseCase.RevokeAll(c.Request.Context(), principal.UserID); err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.Status(http.StatusNoContent)
}
