// Package usecase defines business logic interfaces for device trust
// evaluation and risk assessment.
package usecase

import (
	"context"

	"github.com/google/uuid"

	deviceDomain "github.com/hdtickets/admission/internal/device/domain"
	"github.com/hdtickets/admission/internal/request"
)

// DeviceRepository defines persistence operations for a user's device set.
type DeviceRepository interface {
	// GetAll loads the full device set for a user.
	GetAll(ctx context.Context, userID uuid.UUID) (map[string]*deviceDomain.Device, error)

	// SaveAll rewrites the full device set for a user.
	SaveAll(ctx context.Context, userID uuid.UUID, devices map[string]*deviceDomain.Device) error

	// DeleteAll removes every device record for a user.
	DeleteAll(ctx context.Context, userID uuid.UUID) error
}

// IPReputation reports whether a source address is known-malicious.
// Implementations may consult external feeds; lookups that fail should
// return false rather than an error so reputation never blocks admission.
type IPReputation interface {
	IsMalicious(ctx context.Context, ip string) bool
}

// Geolocator resolves a source address to an approximate location. A nil
// point means the location is unknown.
type Geolocator interface {
	Locate(ctx context.Context, ip string) *deviceDomain.GeoPoint
}

// TrustUseCase defines business logic operations for device trust.
type TrustUseCase interface {
	// Trust upserts the request's device for the user and returns its trust
	// evaluation. New devices start at the base score; at the device cap the
	// least recently seen device is evicted.
	Trust(ctx context.Context, userID uuid.UUID, req *request.Request) (*deviceDomain.TrustResult, error)

	// AssessRisk scores the request against reputation, location history,
	// device knowledge, and client signals.
	AssessRisk(ctx context.Context, userID uuid.UUID, req *request.Request) (*deviceDomain.RiskAssessment, error)

	// List returns the user's live devices.
	List(ctx context.Context, userID uuid.UUID) ([]*deviceDomain.Device, error)

	// Revoke removes one device by fingerprint.
	Revoke(ctx context.Context, userID uuid.UUID, fingerprint string) error

	// RevokeAll removes every device for the user.
	RevokeAll(ctx context.Context, userID uuid.UUID) error
}
