package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/hdtickets/admission/internal/request"
)

func browserRequest() *request.Request {
	return &request.Request{
		IP: "203.0.113.10",
		Headers: map[string]string{
			"User-Agent": "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) Safari/605.1.15",
		},
	}
}

func TestAssessRisk(t *testing.T) {
	t.Run("KnownDeviceCleanRequest", func(t *testing.T) {
		assessment := AssessRisk(browserRequest(), RiskSignals{KnownDevice: true})
		assert.Equal(t, 0, assessment.Score)
		assert.Equal(t, RiskLevelLow, assessment.Level)
		assert.Empty(t, assessment.Signals)
	})

	t.Run("UnknownDeviceSignal", func(t *testing.T) {
		assessment := AssessRisk(browserRequest(), RiskSignals{})
		assert.Equal(t, 20, assessment.Score)
		assert.Equal(t, RiskLevelLow, assessment.Level)
		assert.Contains(t, assessment.Signals, "unknown_device")
	})

	t.Run("SuspiciousUserAgent", func(t *testing.T) {
		agents := []string{
			"curl/8.4.0",
			"python-requests/2.31",
			"Googlebot/2.1",
			"HeadlessChrome/120.0",
			"scrapy-spider/1.0",
			"",
		}
		for _, agent := range agents {
			req := browserRequest()
			req.Headers["User-Agent"] = agent
			assessment := AssessRisk(req, RiskSignals{KnownDevice: true})
			assert.Contains(t, assessment.Signals, "suspicious_user_agent", "agent %q", agent)
			assert.Equal(t, 30, assessment.Score)
		}
	})

	t.Run("AutomationHeaders", func(t *testing.T) {
		for _, header := range []string{"X-Automated", "X-Headless", "X-Selenium"} {
			req := browserRequest()
			req.Headers[header] = "true"
			assessment := AssessRisk(req, RiskSignals{KnownDevice: true})
			assert.Equal(t, 40, assessment.Score)
			assert.Equal(t, RiskLevelMedium, assessment.Level)
		}
	})

	t.Run("MaliciousIPPlusUnknownDeviceIsCritical", func(t *testing.T) {
		assessment := AssessRisk(browserRequest(), RiskSignals{MaliciousIP: true})
		assert.Equal(t, 70, assessment.Score)
		assert.Equal(t, RiskLevelCritical, assessment.Level)
		assert.True(t, assessment.Critical())
	})

	t.Run("LocationAnomaly", func(t *testing.T) {
		london := GeoPoint{Latitude: 51.5074, Longitude: -0.1278}
		sydney := GeoPoint{Latitude: -33.8688, Longitude: 151.2093}

		assessment := AssessRisk(browserRequest(), RiskSignals{
			KnownDevice:    true,
			Location:       &sydney,
			KnownLocations: []GeoPoint{london},
		})
		assert.Equal(t, 25, assessment.Score)
		assert.Contains(t, assessment.Signals, "location_anomaly")
	})

	t.Run("NearbyLocationIsNotAnomalous", func(t *testing.T) {
		london := GeoPoint{Latitude: 51.5074, Longitude: -0.1278}
		watford := GeoPoint{Latitude: 51.6565, Longitude: -0.3903}

		assessment := AssessRisk(browserRequest(), RiskSignals{
			KnownDevice:    true,
			Location:       &watford,
			KnownLocations: []GeoPoint{london},
		})
		assert.Equal(t, 0, assessment.Score)
	})

	t.Run("NoKnownLocationsNeverAnomalous", func(t *testing.T) {
		sydney := GeoPoint{Latitude: -33.8688, Longitude: 151.2093}
		assessment := AssessRisk(browserRequest(), RiskSignals{
			KnownDevice: true,
			Location:    &sydney,
		})
		assert.Equal(t, 0, assessment.Score)
	})

	t.Run("AllSignalsStack", func(t *testing.T) {
		london := GeoPoint{Latitude: 51.5074, Longitude: -0.1278}
		sydney := GeoPoint{Latitude: -33.8688, Longitude: 151.2093}

		req := browserRequest()
		req.Headers["User-Agent"] = "curl/8.4.0"
		req.Headers["X-Automated"] = "1"

		assessment := AssessRisk(req, RiskSignals{
			MaliciousIP:    true,
			Location:       &sydney,
			KnownLocations: []GeoPoint{london},
		})
		// 30 + 50 + 25 + 20 + 40.
		assert.Equal(t, 165, assessment.Score)
		assert.Equal(t, RiskLevelCritical, assessment.Level)
	})
}

func TestHaversineKm(t *testing.T) {
	london := GeoPoint{Latitude: 51.5074, Longitude: -0.1278}
	paris := GeoPoint{Latitude: 48.8566, Longitude: 2.3522}

	distance := HaversineKm(london, paris)
	assert.InDelta(t, 344, distance, 10)

	assert.InDelta(t, 0, HaversineKm(london, london), 0.001)
	assert.InDelta(t, HaversineKm(london, paris), HaversineKm(paris, london), 0.001)
}
