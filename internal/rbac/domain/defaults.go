package domain

// DefaultCatalog returns the production permission and role catalogs for the
// ticket marketplace.
func DefaultCatalog() *Catalog {
	return NewCatalog(defaultPermissions(), defaultRoles())
}

func defaultPermissions() map[string]Permission {
	return map[string]Permission{
		// System management
		"system.manage": {
			Description: "Full system management access",
			Category:    "system",
			Level:       "admin",
		},
		"system.view": {
			Description: "View system information",
			Category:    "system",
			Level:       "admin",
		},

		// User management
		"users.manage": {
			Description: "Full user management",
			Category:    "users",
			Level:       "admin",
			Inherits:    []string{"users.view", "users.create", "users.update", "users.delete"},
		},
		"users.view": {
			Description: "View users",
			Category:    "users",
			Level:       "admin",
		},
		"users.create": {
			Description: "Create new users",
			Category:    "users",
			Level:       "admin",
		},
		"users.update": {
			Description: "Update user information",
			Category:    "users",
			Level:       "admin",
		},
		"users.delete": {
			Description: "Delete users",
			Category:    "users",
			Level:       "admin",
		},

		// Ticket management
		"tickets.manage": {
			Description: "Full ticket management",
			Category:    "tickets",
			Level:       "agent",
			Inherits:    []string{"tickets.view", "tickets.create", "tickets.update", "tickets.delete", "tickets.purchase"},
		},
		"tickets.view": {
			Description: "View tickets",
			Category:    "tickets",
			Level:       "customer",
		},
		"tickets.create": {
			Description: "Create ticket alerts",
			Category:    "tickets",
			Level:       "customer",
		},
		"tickets.update": {
			Description: "Update ticket information",
			Category:    "tickets",
			Level:       "agent",
		},
		"tickets.delete": {
			Description: "Delete tickets",
			Category:    "tickets",
			Level:       "agent",
		},
		"tickets.purchase": {
			Description: "Make ticket purchases",
			Category:    "tickets",
			Level:       "agent",
			Inherits:    []string{"tickets.view"},
		},

		// Platform management
		"platforms.manage": {
			Description: "Manage scraping platforms",
			Category:    "platforms",
			Level:       "admin",
			Inherits:    []string{"platforms.view", "platforms.configure", "platforms.monitor"},
		},
		"platforms.view": {
			Description: "View platform information",
			Category:    "platforms",
			Level:       "agent",
		},
		"platforms.configure": {
			Description: "Configure platform settings",
			Category:    "platforms",
			Level:       "admin",
		},
		"platforms.monitor": {
			Description: "Monitor platform performance",
			Category:    "platforms",
			Level:       "admin",
		},

		// Scraping operations
		"scraping.manage": {
			Description: "Full scraping management",
			Category:    "scraping",
			Level:       "admin",
			Inherits:    []string{"scraping.view", "scraping.execute", "scraping.configure"},
		},
		"scraping.view": {
			Description: "View scraping results",
			Category:    "scraping",
			Level:       "agent",
		},
		"scraping.execute": {
			Description: "Execute scraping operations",
			Category:    "scraping",
			Level:       "agent",
		},
		"scraping.configure": {
			Description: "Configure scraping settings",
			Category:    "scraping",
			Level:       "admin",
		},

		// Financial operations
		"finance.view": {
			Description: "View financial information",
			Category:    "finance",
			Level:       "admin",
		},
		"finance.transactions": {
			Description: "Process financial transactions",
			Category:    "finance",
			Level:       "admin",
			Inherits:    []string{"finance.view"},
		},

		// Analytics and reporting
		"analytics.view": {
			Description: "View analytics dashboard",
			Category:    "analytics",
			Level:       "agent",
		},
		"analytics.advanced": {
			Description: "Access advanced analytics",
			Category:    "analytics",
			Level:       "admin",
			Inherits:    []string{"analytics.view"},
		},
		"reports.generate": {
			Description: "Generate reports",
			Category:    "reports",
			Level:       "agent",
		},
		"reports.export": {
			Description: "Export reports",
			Category:    "reports",
			Level:       "agent",
			Inherits:    []string{"reports.generate"},
		},

		// API access
		"api.access": {
			Description: "Basic API access",
			Category:    "api",
			Level:       "customer",
		},
		"api.admin": {
			Description: "Administrative API access",
			Category:    "api",
			Level:       "admin",
			Inherits:    []string{"api.access"},
		},

		// Bulk operations
		"bulk.operations": {
			Description: "Perform bulk operations",
			Category:    "bulk",
			Level:       "agent",
		},
		"bulk.delete": {
			Description: "Bulk delete operations",
			Category:    "bulk",
			Level:       "admin",
			Inherits:    []string{"bulk.operations"},
		},
	}
}

func defaultRoles() map[string]Role {
	return map[string]Role{
		"admin": {
			Description: "System Administrator",
			Grants: []string{
				"system.manage",
				"users.manage",
				"tickets.manage",
				"platforms.manage",
				"scraping.manage",
				"finance.view",
				"finance.transactions",
				"analytics.advanced",
				"reports.export",
				"api.admin",
				"bulk.delete",
			},
		},
		"agent": {
			Description: "Ticket Agent",
			Grants: []string{
				"tickets.manage",
				"platforms.view",
				"scraping.view",
				"scraping.execute",
				"analytics.view",
				"reports.generate",
				"api.access",
				"bulk.operations",
			},
		},
		"customer": {
			Description: "Customer",
			Grants: []string{
				"tickets.view",
				"tickets.create",
				"api.access",
			},
		},
		"scraper": {
			Description: "Scraper Bot",
			Grants: []string{
				"scraping.execute",
			},
		},
	}
}
