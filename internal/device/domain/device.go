// Package domain defines device trust entities: fingerprinted devices,
// trust scoring, and request risk assessment.
package domain

import (
	"time"
)

// Trust levels ordered by increasing confidence. A device's level is the
// highest threshold at or below its score.
const (
	TrustLevelUntrusted    = "untrusted"
	TrustLevelNew          = "new"
	TrustLevelRecognized   = "recognized"
	TrustLevelTrusted      = "trusted"
	TrustLevelFullyTrusted = "fully_trusted"
)

// Scoring constants. A freshly seen device starts at the base score and
// accrues points for age, usage frequency, and recency.
const (
	BaseScore         = 25
	MaxScore          = 100
	agePointsPerDay   = 2
	maxAgePoints      = 20
	maxUsagePoints    = 15
	recencyPoints     = 10
	recencyWindowDays = 7
)

// Device is a fingerprinted client device associated with a user. UseCount
// counts repeat sightings; the initial registration is not a use, so a
// brand-new device scores exactly the base.
type Device struct {
	Fingerprint string    `json:"fingerprint"`
	UserAgent   string    `json:"user_agent"`
	IP          string    `json:"ip"`
	FirstSeenAt time.Time `json:"first_seen_at"`
	LastSeenAt  time.Time `json:"last_seen_at"`
	ExpiresAt   time.Time `json:"expires_at"`
	UseCount    int       `json:"use_count"`
}

// Score computes the device's trust score at the given time.
func (d *Device) Score(now time.Time) int {
	score := BaseScore

	ageDays := int(now.Sub(d.FirstSeenAt).Hours() / 24)
	agePoints := ageDays * agePointsPerDay
	if agePoints > maxAgePoints {
		agePoints = maxAgePoints
	}
	score += agePoints

	usagePoints := d.UseCount
	if usagePoints > maxUsagePoints {
		usagePoints = maxUsagePoints
	}
	score += usagePoints

	if d.UseCount > 0 && now.Sub(d.LastSeenAt) <= recencyWindowDays*24*time.Hour {
		score += recencyPoints
	}

	if score > MaxScore {
		score = MaxScore
	}
	return score
}

// IsExpired reports whether the device's trust window has lapsed.
func (d *Device) IsExpired(now time.Time) bool {
	return d.ExpiresAt.Before(now)
}

// LevelForScore maps a trust score to its level, the highest threshold at or
// below the score.
func LevelForScore(score int) string {
	switch {
	case score >= 100:
		return TrustLevelFullyTrusted
	case score >= 75:
		return TrustLevelTrusted
	case score >= 50:
		return TrustLevelRecognized
	case score >= 25:
		return TrustLevelNew
	default:
		return TrustLevelUntrusted
	}
}

// TrustResult is the outcome of a device trust evaluation.
type TrustResult struct {
	Fingerprint string
	Score       int
	Level       string
	Known       bool
	Device      *Device
}
