// Package domain defines rate limit configuration, decisions, and errors.
package domain

import (
	"time"
)

// EndpointConfig is the limit envelope for one logical endpoint.
type EndpointConfig struct {
	// Limit is the request budget of the fixed window.
	Limit int64
	// Window is the fixed window length.
	Window time.Duration

	// BurstLimit, when non-zero, layers a shorter sub-window limit under
	// the main envelope.
	BurstLimit int64
	// BurstWindow is the burst sub-window length.
	BurstWindow time.Duration

	// ConcurrentLimit, when non-zero, caps simultaneous in-flight requests.
	ConcurrentLimit int64

	// Progressive, when set, halves the effective limit on repeated
	// violations and escalates the lockout.
	Progressive bool
}

// DefaultTable returns the per-endpoint limit configuration for the ticket
// marketplace API.
func DefaultTable() map[string]EndpointConfig {
	return map[string]EndpointConfig{
		"auth.login": {
			Limit:       5,
			Window:      15 * time.Minute,
			Progressive: true,
		},
		"tickets.search": {
			Limit:       1000,
			Window:      time.Hour,
			BurstLimit:  50,
			BurstWindow: time.Minute,
		},
		"tickets.purchase": {
			Limit:  10,
			Window: time.Hour,
		},
		"scraping.execute": {
			Limit:           500,
			Window:          time.Hour,
			ConcurrentLimit: 5,
		},
		"admin.users": {
			Limit:  100,
			Window: time.Hour,
		},
		"reports.export": {
			Limit:  20,
			Window: time.Hour,
		},
	}
}

// DefaultConfig is the envelope applied to endpoints absent from the table.
func DefaultConfig() EndpointConfig {
	return EndpointConfig{
		Limit:  1000,
		Window: time.Hour,
	}
}

// ConfigFor returns the endpoint's configuration or the default.
func ConfigFor(table map[string]EndpointConfig, endpoint string) EndpointConfig {
	if config, ok := table[endpoint]; ok {
		return config
	}
	return DefaultConfig()
}
