package client

import (
	"net/http"
	"strconv"
	"strings"
	"time"
)

// RateLimitHeaders carries the quota headers an OpenAI-compatible server
// attaches to its responses. Zero values mean the header was absent.
type RateLimitHeaders struct {
	RetryAfter        time.Duration
	LimitRequests     int
	LimitTokens       int
	RemainingRequests int
	RemainingTokens   int
	ResetRequests     time.Duration
	ResetTokens       time.Duration
}

func parseRateLimitHeaders(h http.Header) RateLimitHeaders {
	readInt := func(key string) int {
		v, err := strconv.Atoi(strings.TrimSpace(h.Get(key)))
		if err != nil {
			return 0
		}
		return v
	}
	readDur := func(key string) time.Duration {
		raw := strings.TrimSpace(h.Get(key))
		if raw == "" {
			return 0
		}
		if d, err := time.ParseDuration(raw); err == nil {
			return d
		}
		// Some servers send plain seconds instead of a duration string.
		if secs, err := strconv.ParseFloat(raw, 64); err == nil {
			return time.Duration(secs * float64(time.Second))
		}
		return 0
	}

	return RateLimitHeaders{
		RetryAfter:        time.Duration(readInt("Retry-After")) * time.Second,
		LimitRequests:     readInt("X-Ratelimit-Limit-Requests"),
		LimitTokens:       readInt("X-Ratelimit-Limit-Tokens"),
		RemainingRequests: readInt("X-Ratelimit-Remaining-Requests"),
		RemainingTokens:   readInt("X-Ratelimit-Remaining-Tokens"),
		ResetRequests:     readDur("X-Ratelimit-Reset-Requests"),
		ResetTokens:       readDur("X-Ratelimit-Reset-Tokens"),
	}
}

// Wait reports how long the server wants callers to hold off. An explicit
// Retry-After wins; otherwise an exhausted token or request budget defers to
// its reset horizon.
func (r RateLimitHeaders) Wait() time.Duration {
	if r.RetryAfter > 0 {
		return r.RetryAfter
	}
	if r.RemainingTokens == 0 && r.ResetTokens > 0 {
		return r.ResetTokens
	}
	if r.RemainingRequests == 0 && r.ResetRequests > 0 {
		return r.ResetRequests
	}
	return 0
}
