package domain

import (
	"time"
)

// Rejection reasons, one per tier.
const (
	ReasonRateLimitExceeded            = "rate_limit_exceeded"
	ReasonBurstLimitExceeded           = "burst_limit_exceeded"
	ReasonConcurrentLimitExceeded      = "concurrent_limit_exceeded"
	ReasonProgressiveRateLimitExceeded = "progressive_rate_limit_exceeded"
)

// Decision is the outcome of a rate limit check. Remaining and ResetTime
// describe the main fixed window; Reason and RetryAfter are set only on
// rejection.
type Decision struct {
	Allowed    bool
	Remaining  int64
	ResetTime  time.Time
	Reason     string
	RetryAfter time.Duration
}
