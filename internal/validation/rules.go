// Package validation provides custom validation rules for the application.
package validation

import (
	"net"
	"regexp"
	"strings"

	validation "github.com/jellydator/validation"

	apperrors "github.com/hdtickets/admission/internal/errors"
)

var (
	// permissionRegex matches "resource.action" identifiers.
	permissionRegex = regexp.MustCompile(`^[a-z][a-z0-9_]*\.[a-z][a-z0-9_]*$`)
	// roleRegex matches role identifiers.
	roleRegex = regexp.MustCompile(`^[a-z][a-z0-9_]*$`)
	// ipWildcardRegex matches IPv4 patterns with * segments (e.g. 10.0.*.*).
	ipWildcardRegex = regexp.MustCompile(`^(\d{1,3}|\*)(\.(\d{1,3}|\*)){3}$`)
	// emailRegex is a basic email validation pattern
	emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)
)

// WrapValidationError wraps validation errors as domain ErrInvalidInput
func WrapValidationError(err error) error {
	if err == nil {
		return nil
	}
	return apperrors.Wrap(apperrors.ErrInvalidInput, err.Error())
}

// PermissionIdentifier validates "resource.action" permission names. Whether
// the permission exists in the catalog is checked by the resolver, not here.
var PermissionIdentifier = validation.NewStringRuleWithError(
	func(s string) bool {
		return permissionRegex.MatchString(s)
	},
	validation.NewError("validation_permission_format", "must be a resource.action identifier"),
)

// RoleIdentifier validates role names.
var RoleIdentifier = validation.NewStringRuleWithError(
	func(s string) bool {
		return roleRegex.MatchString(s)
	},
	validation.NewError("validation_role_format", "must be a lowercase role identifier"),
)

// ScopeIdentifier validates credential scopes: the wildcard "*" or a
// resource.action identifier.
var ScopeIdentifier = validation.NewStringRuleWithError(
	func(s string) bool {
		return s == "*" || permissionRegex.MatchString(s)
	},
	validation.NewError("validation_scope_format", "must be * or a resource.action identifier"),
)

// IPWhitelistEntry validates a credential whitelist entry: an exact IP, a
// CIDR block, or an IPv4 wildcard pattern.
var IPWhitelistEntry = validation.By(func(value interface{}) error {
	s, ok := value.(string)
	if !ok {
		return validation.NewError("validation_ip_entry_type", "must be a string")
	}
	if s == "" {
		return nil // Let Required handle empty strings
	}
	if net.ParseIP(s) != nil {
		return nil
	}
	if _, _, err := net.ParseCIDR(s); err == nil {
		return nil
	}
	if ipWildcardRegex.MatchString(s) {
		return nil
	}
	return validation.NewError("validation_ip_entry", "must be an IP address, CIDR block, or wildcard pattern")
})

// Email validates email format using regex
var Email = validation.NewStringRuleWithError(
	func(s string) bool {
		return emailRegex.MatchString(s)
	},
	validation.NewError("validation_email_format", "must be a valid email address"),
)

// NoWhitespace validates that string doesn't contain leading/trailing whitespace
var NoWhitespace = validation.NewStringRuleWithError(
	func(s string) bool {
		return s == strings.TrimSpace(s)
	},
	validation.NewError("validation_no_whitespace", "must not contain leading or trailing whitespace"),
)

// NotBlank validates that a string is not empty after trimming whitespace
var NotBlank = validation.NewStringRuleWithError(
	func(s string) bool {
		return strings.TrimSpace(s) != ""
	},
	validation.NewError("validation_not_blank", "must not be blank"),
)
