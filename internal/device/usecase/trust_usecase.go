// Package usecase implements device trust scoring and request risk analysis.
package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/hdtickets/admission/internal/audit"
	"github.com/hdtickets/admission/internal/config"
	deviceDomain "github.com/hdtickets/admission/internal/device/domain"
	"github.com/hdtickets/admission/internal/request"
)

// trustUseCase implements TrustUseCase.
type trustUseCase struct {
	config        *config.Config
	deviceRepo    DeviceRepository
	ipReputation  IPReputation
	geolocator    Geolocator
	auditRecorder audit.Recorder
}

// Trust upserts the request's device for the user and returns its trust
// evaluation.
//
// This method:
// 1. Fingerprints the request
// 2. Refreshes an existing device's usage, last-seen, and expiry
// 3. Otherwise creates the device, evicting the least recently seen one
//    when the user is at the device cap
//
// Expired devices are dropped during the upsert, so a returning device past
// its expiry is treated as new.
func (t *trustUseCase) Trust(
	ctx context.Context,
	userID uuid.UUID,
	req *request.Request,
) (*deviceDomain.TrustResult, error) {
	fingerprint := deviceDomain.Fingerprint(req)
	now := time.Now().UTC()

	devices, err := t.deviceRepo.GetAll(ctx, userID)
	if err != nil {
		return nil, err
	}
	for key, device := range devices {
		if device.IsExpired(now) {
			delete(devices, key)
		}
	}

	device, known := devices[fingerprint]
	if known {
		device.UseCount++
		device.LastSeenAt = now
		device.ExpiresAt = now.Add(t.config.DeviceTrustExpiration)
	} else {
		if len(devices) >= t.config.DeviceMaxPerUser {
			evictOldest(devices)
		}
		device = &deviceDomain.Device{
			Fingerprint: fingerprint,
			UserAgent:   req.UserAgent(),
			IP:          req.IP,
			FirstSeenAt: now,
			LastSeenAt:  now,
			ExpiresAt:   now.Add(t.config.DeviceTrustExpiration),
			UseCount:    0,
		}
		devices[fingerprint] = device
	}

	if err := t.deviceRepo.SaveAll(ctx, userID, devices); err != nil {
		return nil, err
	}

	if !known {
		t.recordAudit(ctx, audit.EventDeviceTrusted, map[string]any{
			"user_id":     userID.String(),
			"fingerprint": fingerprint,
		})
	}

	score := device.Score(now)
	return &deviceDomain.TrustResult{
		Fingerprint: fingerprint,
		Score:       score,
		Level:       deviceDomain.LevelForScore(score),
		Known:       known,
		Device:      device,
	}, nil
}

// AssessRisk scores the request against IP reputation, the user's known
// device locations, device knowledge, and client automation signals.
// Repository failures degrade to an unknown-device assessment rather than
// blocking; reputation and geolocation providers are already fail-open.
func (t *trustUseCase) AssessRisk(
	ctx context.Context,
	userID uuid.UUID,
	req *request.Request,
) (*deviceDomain.RiskAssessment, error) {
	fingerprint := deviceDomain.Fingerprint(req)
	now := time.Now().UTC()

	signals := deviceDomain.RiskSignals{
		MaliciousIP: t.ipReputation.IsMalicious(ctx, req.IP),
		Location:    t.geolocator.Locate(ctx, req.IP),
	}

	devices, err := t.deviceRepo.GetAll(ctx, userID)
	if err == nil {
		for key, device := range devices {
			if device.IsExpired(now) {
				continue
			}
			if key == fingerprint {
				signals.KnownDevice = true
			}
			if point := t.geolocator.Locate(ctx, device.IP); point != nil {
				signals.KnownLocations = append(signals.KnownLocations, *point)
			}
		}
	}

	return deviceDomain.AssessRisk(req, signals), nil
}

// List returns the user's live devices.
func (t *trustUseCase) List(ctx context.Context, userID uuid.UUID) ([]*deviceDomain.Device, error) {
	devices, err := t.deviceRepo.GetAll(ctx, userID)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	live := make([]*deviceDomain.Device, 0, len(devices))
	for _, device := range devices {
		if !device.IsExpired(now) {
			live = append(live, device)
		}
	}
	return live, nil
}

// Revoke removes one device by fingerprint.
func (t *trustUseCase) Revoke(ctx context.Context, userID uuid.UUID, fingerprint string) error {
	devices, err := t.deviceRepo.GetAll(ctx, userID)
	if err != nil {
		return err
	}
	if _, ok := devices[fingerprint]; !ok {
		return deviceDomain.ErrDeviceNotFound
	}
	delete(devices, fingerprint)

	if err := t.deviceRepo.SaveAll(ctx, userID, devices); err != nil {
		return err
	}

	t.recordAudit(ctx, audit.EventDeviceRevoked, map[string]any{
		"user_id":     userID.String(),
		"fingerprint": fingerprint,
	})
	return nil
}

// RevokeAll removes every device for the user.
func (t *trustUseCase) RevokeAll(ctx context.Context, userID uuid.UUID) error {
	if err := t.deviceRepo.DeleteAll(ctx, userID); err != nil {
		return err
	}
	t.recordAudit(ctx, audit.EventAllDevicesRevoked, map[string]any{
		"user_id": userID.String(),
	})
	return nil
}

// evictOldest removes the least recently seen device from the set.
func evictOldest(devices map[string]*deviceDomain.Device) {
	var oldestKey string
	var oldest *deviceDomain.Device
	for key, device := range devices {
		if oldest == nil || device.LastSeenAt.Before(oldest.LastSeenAt) {
			oldestKey = key
			oldest = device
		}
	}
	if oldestKey != "" {
		delete(devices, oldestKey)
	}
}

func (t *trustUseCase) recordAudit(ctx context.Context, eventType string, eventContext map[string]any) {
	if t.auditRecorder == nil {
		return
	}
	_ = t.auditRecorder.Record(ctx, eventType, eventContext)
}

// NewTrustUseCase creates a TrustUseCase with its dependencies.
func NewTrustUseCase(
	cfg *config.Config,
	deviceRepo DeviceRepository,
	ipReputation IPReputation,
	geolocator Geolocator,
	auditRecorder audit.Recorder,
) TrustUseCase {
	return &trustUseCase{
		config:        cfg,
		deviceRepo:    deviceRepo,
		ipReputation:  ipReputation,
		geolocator:    geolocator,
		auditRecorder: auditRecorder,
	}
}
