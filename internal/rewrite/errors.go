package rewrite

import (
	"errors"
	"fmt"
	"time"
)

// RateLimitError is the service's push-back signal. It is the only failure
// the retry middleware acts on. RetryAfter, when the provider supplied one,
// is a lower bound on how long to wait before the next attempt.
type RateLimitError struct {
	RetryAfter time.Duration
	Message    string
}

func (e *RateLimitError) Error() string {
	if e.Message != "" {
		return "rate limited: " + e.Message
	}
	return "rate limited"
}

// PermanentError marks a failure that must never be retried, such as a
// request the provider can structurally never accept.
type PermanentError struct {
	Err error
}

func (e *PermanentError) Error() string { return e.Err.Error() }
func (e *PermanentError) Unwrap() error { return e.Err }

func NewPermanentError(err error) *PermanentError {
	return &PermanentError{Err: err}
}

// ExhaustedError reports that every retry attempt hit the rate limit.
type ExhaustedError struct {
	Attempts int
	Last     error
}

func (e *ExhaustedError) Error() string {
	return fmt.Sprintf("rate limit retries exhausted after %d attempts: %v", e.Attempts, e.Last)
}

func (e *ExhaustedError) Unwrap() error { return e.Last }

// IsRateLimit reports whether err carries a rate-limit signal anywhere in its
// chain.
func IsRateLimit(err error) bool {
	var rl *RateLimitError
	return errors.As(err, &rl)
}
