package completion

import (
	"fmt"
	"strconv"
	"time"
)

// RateLimitError indicates a completion provider refused the call with HTTP 429.
type RateLimitError struct {
	Err        error
	RetryAfter time.Duration
	Provider   string
	// Quota is set when the provider reported an exhausted account quota
	// rather than a transient request rate limit.
	Quota bool
}

func (e *RateLimitError) Error() string {
	if e.Quota {
		return fmt.Sprintf("%s quota exhausted: %v", e.Provider, e.Err)
	}
	return fmt.Sprintf("%s rate limited (retry after %s): %v", e.Provider, e.RetryAfter, e.Err)
}

func (e *RateLimitError) Unwrap() error {
	return e.Err
}

// NewRateLimitError creates a RateLimitError. If retryAfterSecs is 0, defaults to 60s.
func NewRateLimitError(provider string, err error, retryAfterSecs int) *RateLimitError {
	if retryAfterSecs <= 0 {
		retryAfterSecs = 60
	}
	return &RateLimitError{
		Err:        err,
		RetryAfter: time.Duration(retryAfterSecs) * time.Second,
		Provider:   provider,
	}
}

// NewQuotaError creates a RateLimitError flagged as quota exhaustion.
func NewQuotaError(provider string, err error, retryAfterSecs int) *RateLimitError {
	e := NewRateLimitError(provider, err, retryAfterSecs)
	e.Quota = true
	return e
}

// ParseRetryAfterHeader parses a Retry-After header value into seconds.
// Returns 0 if the value is empty or not a valid integer.
func ParseRetryAfterHeader(val string) int {
	if val == "" {
		return 0
	}
	secs, err := strconv.Atoi(val)
	if err != nil {
		return 0
	}
	return secs
}

// Truncate shortens s for error messages.
func Truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
