package domain

import (
	"fmt"

	"github.com/hdtickets/admission/internal/errors"
)

// LimitError reports a rejected request together with the full decision so
// callers can emit retry hints and rate limit headers.
type LimitError struct {
	Decision *Decision
}

func (e *LimitError) Error() string {
	return fmt.Sprintf("rate limited: %s (retry after %s)", e.Decision.Reason, e.Decision.RetryAfter)
}

func (e *LimitError) Unwrap() error {
	return errors.ErrRateLimited
}

// NewLimitError wraps a rejecting decision as an error.
func NewLimitError(decision *Decision) *LimitError {
	return &LimitError{Decision: decision}
}
