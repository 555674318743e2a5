package rewrite

import (
	"context"
	"errors"
	"math/rand/v2"
	"time"
)

const (
	// DefaultMaxAttempts counts every try, the first call included.
	DefaultMaxAttempts = 5
	// DefaultBaseDelay is the wait before the first retry; each further
	// retry doubles it.
	DefaultBaseDelay = 60 * time.Second
)

// Retry reissues calls that failed with a rate-limit signal, up to
// maxAttempts total attempts. The delay before retry n doubles from
// baseDelay (60s, 120s, 240s, ... at the default base) with uniform jitter
// from [0, baseDelay) added so concurrent workers do not resynchronize their
// retries. Every other error returns immediately, and spending the whole
// attempt budget returns an *ExhaustedError.
func Retry(maxAttempts int, baseDelay time.Duration) Middleware {
	return retryMiddleware(maxAttempts, baseDelay, defaultJitter, sleepCtx)
}

// retryMiddleware is the seam tests use to pin jitter and observe sleeps.
func retryMiddleware(maxAttempts int, baseDelay time.Duration, jitter func(time.Duration) time.Duration, sleep func(context.Context, time.Duration) error) Middleware {
	if maxAttempts < 1 {
		maxAttempts = DefaultMaxAttempts
	}
	if baseDelay <= 0 {
		baseDelay = DefaultBaseDelay
	}
	return func(next Service) Service {
		return &retrying{next: next, max: maxAttempts, base: baseDelay, jitter: jitter, sleep: sleep}
	}
}

type retrying struct {
	next   Service
	max    int
	base   time.Duration
	jitter func(time.Duration) time.Duration
	sleep  func(context.Context, time.Duration) error
}

func (r *retrying) Name() string { return r.next.Name() }
func (r *retrying) Close() error { return r.next.Close() }

func (r *retrying) Rewrite(ctx context.Context, req Request) (string, error) {
	var last error
	for attempt := 1; attempt <= r.max; attempt++ {
		text, err := r.next.Rewrite(ctx, req)
		if err == nil {
			return text, nil
		}
		var rl *RateLimitError
		if !errors.As(err, &rl) {
			// Not a push-back signal; retrying cannot help.
			return "", err
		}
		last = err
		if attempt == r.max {
			break
		}
		delay := r.base << (attempt - 1)
		delay += r.jitter(r.base)
		if rl.RetryAfter > delay {
			delay = rl.RetryAfter
		}
		if err := r.sleep(ctx, delay); err != nil {
			return "", err
		}
	}
	return "", &ExhaustedError{Attempts: r.max, Last: last}
}

func defaultJitter(base time.Duration) time.Duration {
	if base <= 0 {
		return 0
	}
	return time.Duration(rand.Int64N(int64(base)))
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
