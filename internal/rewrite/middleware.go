package rewrite

import (
	"context"
	"log/slog"
	"time"

	"autodocs/internal/logging"
)

// Middleware decorates a Service to inject cross-cutting concerns
// (rate limiting, retries, timeouts, logging, caching).
type Middleware func(Service) Service

// Wrap applies middlewares in left-to-right order.
// Example: Wrap(inner, A, B) => A(B(inner))
func Wrap(inner Service, mws ...Middleware) Service {
	out := inner
	for i := len(mws) - 1; i >= 0; i-- {
		out = mws[i](out)
	}
	return out
}

// RateLimit throttles calls client-side with a token bucket. If rps <= 0,
// the limiter is disabled and the middleware passes through.
func RateLimit(rps float64, burst int) Middleware {
	return func(next Service) Service {
		rl := newRPSLimiter(rps, burst) // nil when disabled
		return &rateLimited{next: next, rl: rl}
	}
}

type rateLimited struct {
	next Service
	rl   *rpsLimiter
}

func (c *rateLimited) Name() string { return c.next.Name() }

func (c *rateLimited) Close() error {
	c.rl.Stop()
	return c.next.Close()
}

func (c *rateLimited) Rewrite(ctx context.Context, req Request) (string, error) {
	if err := c.rl.Acquire(ctx); err != nil {
		return "", err
	}
	return c.next.Rewrite(ctx, req)
}

// WithTimeout bounds each attempt with its own deadline so a hung call
// cannot pin a worker slot past d. Zero or negative d selects the default.
func WithTimeout(d time.Duration) Middleware {
	if d <= 0 {
		d = DefaultAttemptTimeout
	}
	return func(next Service) Service {
		return &timed{next: next, d: d}
	}
}

// DefaultAttemptTimeout is the per-attempt ceiling applied by WithTimeout.
const DefaultAttemptTimeout = 2 * time.Minute

type timed struct {
	next Service
	d    time.Duration
}

func (t *timed) Name() string { return t.next.Name() }
func (t *timed) Close() error { return t.next.Close() }

func (t *timed) Rewrite(ctx context.Context, req Request) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, t.d)
	defer cancel()
	return t.next.Rewrite(ctx, req)
}

// WithLogging records one line per call: size in, duration, and how it ended.
func WithLogging(logger *slog.Logger) Middleware {
	return func(next Service) Service {
		if logger == nil {
			logger = logging.New("rewrite")
		}
		return &logged{next: next, log: logger}
	}
}

type logged struct {
	next Service
	log  *slog.Logger
}

func (l *logged) Name() string { return l.next.Name() }
func (l *logged) Close() error { return l.next.Close() }

func (l *logged) Rewrite(ctx context.Context, req Request) (string, error) {
	start := time.Now()
	text, err := l.next.Rewrite(ctx, req)
	elapsed := time.Since(start)
	if err != nil {
		l.log.Warn("rewrite call failed",
			slog.String("service", l.next.Name()),
			slog.String("language", req.Language),
			slog.Int("bytes", len(req.Content)),
			slog.Duration("elapsed", elapsed),
			slog.Bool("rate_limited", IsRateLimit(err)),
			slog.String("error", err.Error()))
		return "", err
	}
	l.log.Debug("rewrite call ok",
		slog.String("service", l.next.Name()),
		slog.String("language", req.Language),
		slog.Int("bytes_in", len(req.Content)),
		slog.Int("bytes_out", len(text)),
		slog.Duration("elapsed", elapsed))
	return text, nil
}
