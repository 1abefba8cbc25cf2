package usecase

import (
	identityDomain "github.com/hdtickets/admission/internal/identity/domain"
	rbacDomain "github.com/hdtickets/admission/internal/rbac/domain"
	userDomain "github.com/hdtickets/admission/internal/user/domain"
)

// TicketPolicy lets agents and admins act on any ticket and customers on
// tickets they own.
type TicketPolicy struct{}

func (TicketPolicy) ResourceType() string { return "tickets" }

func (TicketPolicy) Allows(principal *identityDomain.Principal, action string, rctx *rbacDomain.ResourceContext) bool {
	switch principal.Role {
	case userDomain.RoleAdmin, userDomain.RoleAgent:
		return true
	case userDomain.RoleCustomer:
		return rctx.OwnerID != "" && rctx.OwnerID == principal.UserID.String()
	default:
		return false
	}
}

// UserPolicy lets admins act on any account and everyone view or update
// their own.
type UserPolicy struct{}

func (UserPolicy) ResourceType() string { return "users" }

func (UserPolicy) Allows(principal *identityDomain.Principal, action string, rctx *rbacDomain.ResourceContext) bool {
	if principal.Role == userDomain.RoleAdmin {
		return true
	}
	if rctx.ID == "" || rctx.ID != principal.UserID.String() {
		return false
	}
	return action == "view" || action == "update"
}

// PlatformPolicy restricts platform resources to admins.
type PlatformPolicy struct{}

func (PlatformPolicy) ResourceType() string { return "platforms" }

func (PlatformPolicy) Allows(principal *identityDomain.Principal, _ string, _ *rbacDomain.ResourceContext) bool {
	return principal.Role == userDomain.RoleAdmin
}

// DefaultPolicies returns the resource policies for the ticket marketplace.
func DefaultPolicies() []ResourcePolicy {
	return []ResourcePolicy{TicketPolicy{}, UserPolicy{}, PlatformPolicy{}}
}
