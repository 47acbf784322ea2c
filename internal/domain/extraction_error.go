package domain

import (
	"errors"
	"fmt"
	"time"
)

// ExtractionError is the classified failure returned by the invoice normalizer.
// It matches ErrEmptyInput, ErrServiceUnavailable, ErrRateLimited and
// ErrMalformedModelOutput through errors.Is.
type ExtractionError struct {
	Kind ExtractionErrorKind

	// RateLimited is set when the completion service refused the call with a
	// rate-limit or quota response. QuotaExhausted narrows that to an account quota.
	RateLimited    bool
	QuotaExhausted bool
	RetryAfter     time.Duration

	// RawOutput holds the literal model response for MalformedModelOutput.
	RawOutput string
	// Model names the model that produced RawOutput, when the provider reported it.
	Model string

	Err error
}

// NewEmptyInputError reports an empty or whitespace-only input text.
func NewEmptyInputError() *ExtractionError {
	return &ExtractionError{Kind: KindEmptyInput}
}

// NewServiceUnavailableError wraps a completion failure that was not rate limited.
func NewServiceUnavailableError(err error) *ExtractionError {
	return &ExtractionError{Kind: KindServiceUnavailable, Err: err}
}

// NewRateLimitedError wraps a rate-limit or quota failure.
func NewRateLimitedError(err error, quotaExhausted bool, retryAfter time.Duration) *ExtractionError {
	return &ExtractionError{
		Kind:           KindServiceUnavailable,
		RateLimited:    true,
		QuotaExhausted: quotaExhausted,
		RetryAfter:     retryAfter,
		Err:            err,
	}
}

// NewMalformedOutputError records a model response that could not be used, keeping the raw text.
func NewMalformedOutputError(raw string, err error) *ExtractionError {
	return &ExtractionError{Kind: KindMalformedModelOutput, RawOutput: raw, Err: err}
}

func (e *ExtractionError) Error() string {
	switch e.Kind {
	case KindEmptyInput:
		return "extraction: " + ErrEmptyInput.Error()
	case KindServiceUnavailable:
		if e.RateLimited {
			if e.QuotaExhausted {
				return fmt.Sprintf("extraction: completion quota exhausted: %v", e.Err)
			}
			return fmt.Sprintf("extraction: completion service rate limited (retry after %s): %v", e.RetryAfter, e.Err)
		}
		return fmt.Sprintf("extraction: %s: %v", ErrServiceUnavailable, e.Err)
	case KindMalformedModelOutput:
		return fmt.Sprintf("extraction: %s: %v", ErrMalformedModelOutput, e.Err)
	default:
		return fmt.Sprintf("extraction: %s: %v", e.Kind, e.Err)
	}
}

func (e *ExtractionError) Unwrap() error {
	return e.Err
}

// Is lets callers test the kind with errors.Is.
func (e *ExtractionError) Is(target error) bool {
	switch target {
	case ErrEmptyInput:
		return e.Kind == KindEmptyInput
	case ErrServiceUnavailable:
		return e.Kind == KindServiceUnavailable
	case ErrRateLimited:
		return e.Kind == KindServiceUnavailable && e.RateLimited
	case ErrMalformedModelOutput:
		return e.Kind == KindMalformedModelOutput
	}
	return false
}

// Retryable reports whether the caller may retry the same input later.
func (e *ExtractionError) Retryable() bool {
	return e.Kind == KindServiceUnavailable
}

// AsExtractionError unwraps err into an *ExtractionError when possible.
func AsExtractionError(err error) (*ExtractionError, bool) {
	var extErr *ExtractionError
	if errors.As(err, &extErr) {
		return extErr, true
	}
	return nil, false
}
