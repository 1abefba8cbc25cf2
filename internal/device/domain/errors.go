package domain

import (
	"github.com/hdtickets/admission/internal/errors"
)

var (
	// ErrDeviceNotFound indicates the fingerprint has no record for the user.
	ErrDeviceNotFound = errors.Wrap(errors.ErrNotFound, "device not found")

	// ErrDeviceUntrusted indicates the request's device risk is too high to admit.
	ErrDeviceUntrusted = errors.Wrap(errors.ErrForbidden, "device untrusted")
)
