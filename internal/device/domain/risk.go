package domain

import (
	"math"
	"regexp"
	"strings"

	"github.com/hdtickets/admission/internal/request"
)

// Risk levels ordered by severity.
const (
	RiskLevelLow      = "low"
	RiskLevelMedium   = "medium"
	RiskLevelHigh     = "high"
	RiskLevelCritical = "critical"
)

// Risk signal weights.
const (
	riskSuspiciousUserAgent = 30
	riskMaliciousIP         = 50
	riskLocationAnomaly     = 25
	riskUnknownDevice       = 20
	riskAutomationHeaders   = 40
)

// locationAnomalyKm is the distance beyond which a request location counts as
// anomalous relative to every known location.
const locationAnomalyKm = 100.0

// automationHeaders reveal scripted clients when present with a truthy value.
var automationHeaders = []string{
	"X-Automated",
	"X-Headless",
	"X-Selenium",
}

// suspiciousUserAgents match known automation tooling and scrapers.
var suspiciousUserAgents = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\b(bot|crawler|spider|scraper)\b`),
	regexp.MustCompile(`(?i)\b(curl|wget|httpie)\b`),
	regexp.MustCompile(`(?i)python-requests|python-urllib|go-http-client|okhttp`),
	regexp.MustCompile(`(?i)headless|phantomjs|selenium|puppeteer|playwright`),
}

// GeoPoint is a WGS84 coordinate.
type GeoPoint struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// RiskAssessment is the outcome of per-request risk analysis. Signals lists
// the names of the triggered checks.
type RiskAssessment struct {
	Score   int
	Level   string
	Signals []string
}

// Critical reports whether the assessment is at the critical level.
func (r *RiskAssessment) Critical() bool {
	return r.Level == RiskLevelCritical
}

// riskLevelForScore maps a risk score to its severity level.
func riskLevelForScore(score int) string {
	switch {
	case score >= 70:
		return RiskLevelCritical
	case score >= 50:
		return RiskLevelHigh
	case score >= 30:
		return RiskLevelMedium
	default:
		return RiskLevelLow
	}
}

// RiskSignals contains the external facts feeding an assessment.
type RiskSignals struct {
	MaliciousIP    bool
	Location       *GeoPoint
	KnownLocations []GeoPoint
	KnownDevice    bool
}

// AssessRisk scores a request additively against its signals. A user with no
// recorded locations never triggers the location anomaly.
func AssessRisk(req *request.Request, signals RiskSignals) *RiskAssessment {
	assessment := &RiskAssessment{}

	if isSuspiciousUserAgent(req.UserAgent()) {
		assessment.add(riskSuspiciousUserAgent, "suspicious_user_agent")
	}
	if signals.MaliciousIP {
		assessment.add(riskMaliciousIP, "malicious_ip")
	}
	if isLocationAnomalous(signals.Location, signals.KnownLocations) {
		assessment.add(riskLocationAnomaly, "location_anomaly")
	}
	if !signals.KnownDevice {
		assessment.add(riskUnknownDevice, "unknown_device")
	}
	if hasAutomationHeaders(req) {
		assessment.add(riskAutomationHeaders, "automation_headers")
	}

	assessment.Level = riskLevelForScore(assessment.Score)
	return assessment
}

func (r *RiskAssessment) add(points int, signal string) {
	r.Score += points
	r.Signals = append(r.Signals, signal)
}

func isSuspiciousUserAgent(userAgent string) bool {
	if strings.TrimSpace(userAgent) == "" {
		return true
	}
	for _, pattern := range suspiciousUserAgents {
		if pattern.MatchString(userAgent) {
			return true
		}
	}
	return false
}

func hasAutomationHeaders(req *request.Request) bool {
	for _, header := range automationHeaders {
		if req.HasHeader(header) {
			return true
		}
	}
	return false
}

// isLocationAnomalous reports whether the request location is farther than
// the anomaly threshold from every known location. Missing data on either
// side means no anomaly.
func isLocationAnomalous(location *GeoPoint, known []GeoPoint) bool {
	if location == nil || len(known) == 0 {
		return false
	}
	for _, point := range known {
		if HaversineKm(*location, point) <= locationAnomalyKm {
			return false
		}
	}
	return true
}

// HaversineKm computes the great-circle distance between two points in
// kilometers.
func HaversineKm(a, b GeoPoint) float64 {
	const earthRadiusKm = 6371.0

	lat1 := a.Latitude * math.Pi / 180
	lat2 := b.Latitude * math.Pi / 180
	deltaLat := (b.Latitude - a.Latitude) * math.Pi / 180
	deltaLon := (b.Longitude - a.Longitude) * math.Pi / 180

	sinLat := math.Sin(deltaLat / 2)
	sinLon := math.Sin(deltaLon / 2)
	h := sinLat*sinLat + math.Cos(lat1)*math.Cos(lat2)*sinLon*sinLon

	return 2 * earthRadiusKm * math.Asin(math.Sqrt(h))
}
