package usecase

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/hdtickets/admission/internal/config"
	ratelimitDomain "github.com/hdtickets/admission/internal/ratelimit/domain"
	"github.com/hdtickets/admission/internal/store"
)

const (
	windowKeyPrefix     = "rate_limit"
	burstKeyPrefix      = "burst"
	concurrentKeyPrefix = "concurrent"
	violationsKeyPrefix = "rate_violations"

	violationTTL = 24 * time.Hour

	// maxPenaltyExponent caps the progressive divisor at 2^5 = 32.
	maxPenaltyExponent = 5
	// maxLockout caps the progressive lockout.
	maxLockout = time.Hour
	// baseLockout is the lockout before doubling per violation.
	baseLockout = time.Minute
)

// limiterUseCase implements LimiterUseCase.
type limiterUseCase struct {
	config *config.Config
	store  store.Store
	table  map[string]ratelimitDomain.EndpointConfig
}

// Check runs the endpoint's limit tiers in order: IP fixed window, user
// fixed window, concurrent lease, burst sub-window, progressive penalty.
// The first rejecting tier decides and later tiers never run, so a rejected
// request leaves no side effects beyond the counters already incremented.
//
// Security Notes:
// - Admission is decided by the value returned from the atomic increment,
//   never by a read-then-write sequence, so concurrent requests cannot
//   slip past the limit.
// - Store failures deny the request. A degraded store must not grant
//   unmetered access.
func (l *limiterUseCase) Check(
	ctx context.Context,
	input CheckInput,
	endpoint string,
) (*ratelimitDomain.Decision, ReleaseFunc, error) {
	endpointConfig := ratelimitDomain.ConfigFor(l.table, endpoint)

	identifier := input.IP
	if input.UserID != uuid.Nil {
		identifier = input.UserID.String()
	}

	// Tier 1: per-IP fixed window.
	decision, err := l.fixedWindow(ctx, counterKey(windowKeyPrefix, input.IP, endpoint), endpointConfig)
	if err != nil {
		return nil, nil, err
	}
	if !decision.Allowed {
		if endpointConfig.Progressive && identifier == input.IP {
			l.recordViolation(ctx, identifier, endpoint)
		}
		return decision, noopRelease, ratelimitDomain.NewLimitError(decision)
	}

	// Tier 2: per-user fixed window. The identifier window is the one the
	// success decision reports on.
	if input.UserID != uuid.Nil {
		decision, err = l.fixedWindow(ctx, counterKey(windowKeyPrefix, identifier, endpoint), endpointConfig)
		if err != nil {
			return nil, nil, err
		}
		if !decision.Allowed {
			if endpointConfig.Progressive {
				l.recordViolation(ctx, identifier, endpoint)
			}
			return decision, noopRelease, ratelimitDomain.NewLimitError(decision)
		}
	}

	// Tier 3: concurrent lease. The lease TTL bounds slots leaked by
	// requests that crash before releasing.
	release := ReleaseFunc(noopRelease)
	if endpointConfig.ConcurrentLimit > 0 {
		leaseKey := counterKey(concurrentKeyPrefix, identifier, endpoint)
		inFlight, _, err := l.store.Increment(ctx, leaseKey, 1, l.config.ConcurrentLeaseTTL)
		if err != nil {
			return nil, nil, err
		}
		if inFlight > endpointConfig.ConcurrentLimit {
			// Roll back the failed acquire so rejected requests do not
			// consume slots.
			_, _, _ = l.store.Increment(ctx, leaseKey, -1, l.config.ConcurrentLeaseTTL)
			rejected := rejectedFrom(decision, ratelimitDomain.ReasonConcurrentLimitExceeded, l.config.ConcurrentLeaseTTL)
			return rejected, noopRelease, ratelimitDomain.NewLimitError(rejected)
		}
		release = func(ctx context.Context) {
			_, _, _ = l.store.Increment(ctx, leaseKey, -1, l.config.ConcurrentLeaseTTL)
		}
	}

	// Tier 4: burst sub-window.
	if endpointConfig.BurstLimit > 0 {
		burstKey := counterKey(burstKeyPrefix, identifier, endpoint)
		count, remaining, err := l.store.Increment(ctx, burstKey, 1, endpointConfig.BurstWindow)
		if err != nil {
			release(ctx)
			return nil, nil, err
		}
		if count > endpointConfig.BurstLimit {
			release(ctx)
			if remaining <= 0 {
				remaining = endpointConfig.BurstWindow
			}
			rejected := rejectedFrom(decision, ratelimitDomain.ReasonBurstLimitExceeded, remaining)
			return rejected, noopRelease, ratelimitDomain.NewLimitError(rejected)
		}
	}

	// Tier 5: progressive penalty. Each recorded violation halves the
	// effective window limit (floor 1) and doubles the lockout (cap 1h).
	if endpointConfig.Progressive {
		violations, err := l.violationCount(ctx, identifier, endpoint)
		if err != nil {
			release(ctx)
			return nil, nil, err
		}
		if violations > 0 {
			effectiveLimit := endpointConfig.Limit / penaltyDivisor(violations)
			if effectiveLimit < 1 {
				effectiveLimit = 1
			}
			used := endpointConfig.Limit - decision.Remaining
			if used > effectiveLimit {
				release(ctx)
				lockout := lockoutFor(violations)
				l.recordViolation(ctx, identifier, endpoint)
				rejected := rejectedFrom(decision, ratelimitDomain.ReasonProgressiveRateLimitExceeded, lockout)
				rejected.Remaining = 0
				return rejected, noopRelease, ratelimitDomain.NewLimitError(rejected)
			}
		}
	}

	return decision, release, nil
}

// fixedWindow increments the window counter and decides admission from the
// returned value. The reset time comes from the TTL returned by the same
// atomic increment; a counter that somehow lost its TTL falls back to a
// full window.
func (l *limiterUseCase) fixedWindow(
	ctx context.Context,
	key string,
	endpointConfig ratelimitDomain.EndpointConfig,
) (*ratelimitDomain.Decision, error) {
	count, remainingTTL, err := l.store.Increment(ctx, key, 1, endpointConfig.Window)
	if err != nil {
		return nil, err
	}
	if remainingTTL <= 0 {
		remainingTTL = endpointConfig.Window
	}

	decision := &ratelimitDomain.Decision{
		Allowed:   count <= endpointConfig.Limit,
		Remaining: endpointConfig.Limit - count,
		ResetTime: time.Now().UTC().Add(remainingTTL),
	}
	if decision.Remaining < 0 {
		decision.Remaining = 0
	}
	if !decision.Allowed {
		decision.Reason = ratelimitDomain.ReasonRateLimitExceeded
		decision.RetryAfter = remainingTTL
	}
	return decision, nil
}

// violationCount reads the identifier's live violation counter.
func (l *limiterUseCase) violationCount(ctx context.Context, identifier, endpoint string) (int64, error) {
	raw, ok, err := l.store.Get(ctx, counterKey(violationsKeyPrefix, identifier, endpoint))
	if err != nil {
		return 0, err
	}
	if !ok {
		return 0, nil
	}
	violations, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, nil
	}
	return violations, nil
}

// recordViolation bumps the identifier's violation counter. The request is
// already being rejected, so a failed write only softens the next penalty
// and is not worth failing over.
func (l *limiterUseCase) recordViolation(ctx context.Context, identifier, endpoint string) {
	_, _, _ = l.store.Increment(ctx, counterKey(violationsKeyPrefix, identifier, endpoint), 1, violationTTL)
}

// rejectedFrom copies the window decision's quota view and marks it
// rejected with the given reason and retry hint.
func rejectedFrom(decision *ratelimitDomain.Decision, reason string, retryAfter time.Duration) *ratelimitDomain.Decision {
	return &ratelimitDomain.Decision{
		Allowed:    false,
		Remaining:  decision.Remaining,
		ResetTime:  decision.ResetTime,
		Reason:     reason,
		RetryAfter: retryAfter,
	}
}

// penaltyDivisor returns min(2^violations, 32).
func penaltyDivisor(violations int64) int64 {
	if violations > maxPenaltyExponent {
		violations = maxPenaltyExponent
	}
	return int64(1) << violations
}

// lockoutFor returns min(1h, 1m * 2^violations).
func lockoutFor(violations int64) time.Duration {
	if violations > maxPenaltyExponent {
		return maxLockout
	}
	lockout := baseLockout * time.Duration(int64(1)<<violations)
	if lockout > maxLockout {
		return maxLockout
	}
	return lockout
}

func counterKey(prefix, identifier, endpoint string) string {
	return fmt.Sprintf("%s:%s:%s", prefix, identifier, endpoint)
}

func noopRelease(context.Context) {}

// NewLimiterUseCase creates a LimiterUseCase backed by the shared store and
// the per-endpoint limit table.
func NewLimiterUseCase(
	cfg *config.Config,
	kv store.Store,
	table map[string]ratelimitDomain.EndpointConfig,
) LimiterUseCase {
	return &limiterUseCase{
		config: cfg,
		store:  kv,
		table:  table,
	}
}
