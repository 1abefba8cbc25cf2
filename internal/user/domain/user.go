// Package domain defines the user directory entities consumed by the
// admission pipeline. The directory itself (registration, profile management)
// is owned by the marketplace core and exposed here as an interface only.
package domain

import (
	"time"

	"github.com/google/uuid"

	"github.com/hdtickets/admission/internal/errors"
)

// Roles known to the static role catalog.
const (
	RoleAdmin    = "admin"
	RoleAgent    = "agent"
	RoleCustomer = "customer"
	RoleScraper  = "scraper"
)

// User is the directory view of a marketplace account: only the fields the
// admission pipeline needs to resolve a Principal.
type User struct {
	ID       uuid.UUID
	Email    string
	Role     string
	IsActive bool
	// CustomPermissions are grants assigned outside the role catalog. Each is
	// expanded through permission inheritance when resolving effective
	// permissions.
	CustomPermissions []string
	CreatedAt         time.Time
}

// Domain-specific errors for directory lookups.
var (
	// ErrUserNotFound indicates the requested user does not exist.
	ErrUserNotFound = errors.Wrap(errors.ErrNotFound, "user not found")
)
