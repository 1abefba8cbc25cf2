// Package usecase implements the tiered rate limiter: per-IP fixed window,
// per-user fixed window, concurrent lease, burst sub-window, and progressive
// penalty for authentication endpoints.
package usecase

import (
	"context"

	"github.com/google/uuid"

	ratelimitDomain "github.com/hdtickets/admission/internal/ratelimit/domain"
)

// CheckInput identifies the request being admitted. A zero UserID marks an
// anonymous request, which is limited by IP only.
type CheckInput struct {
	IP     string
	UserID uuid.UUID
}

// ReleaseFunc returns a concurrency slot acquired during Check. Callers must
// invoke it exactly once after the request finishes; requests that never
// release lose the slot until the lease expires.
type ReleaseFunc func(ctx context.Context)

// LimiterUseCase defines the rate limit check applied once per admitted
// request.
type LimiterUseCase interface {
	// Check evaluates every tier configured for the endpoint in a fixed
	// order and stops at the first rejection. On rejection the returned
	// error wraps ErrRateLimited and carries the rejecting decision; the
	// decision is also returned directly so callers can emit rate limit
	// headers without unwrapping.
	Check(ctx context.Context, input CheckInput, endpoint string) (*ratelimitDomain.Decision, ReleaseFunc, error)
}
