package runctx

import (
	"context"
	"strings"
	"time"
)

type ctxKeyRunID struct{}

// NewRunID mints the identifier for one CLI invocation. Artifact mirrors key
// their records by it, so it must sort chronologically.
func NewRunID(now time.Time) string {
	return now.UTC().Format("20060102T150405Z")
}

func WithRunID(ctx context.Context, runID string) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	runID = strings.TrimSpace(runID)
	if runID == "" {
		return ctx
	}
	return context.WithValue(ctx, ctxKeyRunID{}, runID)
}

// RunID returns the run identifier carried by ctx, or "" when none was set.
func RunID(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if v := ctx.Value(ctxKeyRunID{}); v != nil {
		if id, ok := v.(string); ok {
			return id
		}
	}
	return ""
}
