package domain

import (
	"github.com/hdtickets/admission/internal/errors"
)

var (
	// ErrMissingPermission indicates the principal lacks the required grant.
	ErrMissingPermission = errors.Wrap(errors.ErrForbidden, "missing permission")

	// ErrNotOwner indicates a resource policy rejected the principal.
	ErrNotOwner = errors.Wrap(errors.ErrForbidden, "not resource owner")

	// ErrStructuralViolation indicates the permission graph is malformed.
	ErrStructuralViolation = errors.Wrap(errors.ErrForbidden, "permission graph structural violation")

	// ErrUnknownPermission indicates an identifier absent from the catalog.
	ErrUnknownPermission = errors.Wrap(errors.ErrInvalidInput, "unknown permission")

	// ErrUnknownRole indicates a role absent from both catalogs.
	ErrUnknownRole = errors.Wrap(errors.ErrInvalidInput, "unknown role")
)
