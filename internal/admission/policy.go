package admission

// EndpointPolicy declares what the pipeline demands of requests hitting a
// logical endpoint. The zero value requires an authenticated principal and
// no specific permission.
type EndpointPolicy struct {
	// Permission is the permission the principal must hold, directly or
	// through inheritance. Empty means authentication alone suffices.
	Permission string
	// AllowAnonymous admits requests presenting no credentials. Anonymous
	// requests are rate limited by IP only.
	AllowAnonymous bool
}

// DefaultEndpointPolicies maps the ticket marketplace endpoints to their
// admission requirements. Endpoints absent from the map fall back to the
// zero policy.
func DefaultEndpointPolicies() map[string]EndpointPolicy {
	return map[string]EndpointPolicy{
		"auth.login":       {AllowAnonymous: true},
		"tickets.search":   {Permission: "tickets.view"},
		"tickets.purchase": {Permission: "tickets.purchase"},
		"scraping.execute": {Permission: "scraping.execute"},
		"admin.users":      {Permission: "users.manage"},
		"reports.export":   {Permission: "reports.export"},
	}
}
