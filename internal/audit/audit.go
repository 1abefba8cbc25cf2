// Package audit defines the append-only security event sink. Every
// security-relevant denial and credential lifecycle change is recorded with
// identifying context. The sink is best-effort: recording failures are logged
// and never block the request path.
package audit

import (
	"context"
	"time"
)

// Event types recorded by the admission pipeline.
const (
	EventAPIKeyIssued       = "api_key_issued"
	EventAPIKeyRotated      = "api_key_rotated"
	EventAPIKeyRevoked      = "api_key_revoked"
	EventInvalidAPIKey      = "invalid_api_key_attempt"
	EventTokenIssued        = "jwt_issued"
	EventTokenRevoked       = "jwt_revoked"
	EventDeviceTrusted      = "device_trusted"
	EventDeviceRevoked      = "device_revoked"
	EventAllDevicesRevoked  = "all_devices_revoked"
	EventPermissionGranted  = "permission_granted"
	EventPermissionRevoked  = "permission_revoked"
	EventRoleAssigned       = "role_assigned"
	EventDynamicRoleCreated = "dynamic_role_created"
	EventAdmissionDenied    = "admission_denied"
)

// Event is a single audit record.
type Event struct {
	Type      string
	Context   map[string]any
	CreatedAt time.Time
}

// Recorder appends events to the audit sink.
type Recorder interface {
	// Record appends an event. Implementations must never log secrets or
	// tokens in plaintext.
	Record(ctx context.Context, eventType string, eventContext map[string]any) error
}
