// Package artifact persists rewritten file content. Every backend keys
// records by (runID, path) so one run's output never shadows another's.
package artifact

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// Store defines operations for persisting run artifacts.
type Store interface {
	Put(ctx context.Context, runID, path string, content []byte) error
	Get(ctx context.Context, runID, path string) ([]byte, error)
	List(ctx context.Context, runID string) ([]string, error)
}

// ErrNotFound reports a key no backend holds.
var ErrNotFound = errors.New("artifact not found")

// cleanKey normalizes and validates the (runID, path) pair shared by all
// backends.
func cleanKey(runID, path string) (string, string, error) {
	runID = strings.TrimSpace(runID)
	path = strings.TrimSpace(path)
	if runID == "" {
		return "", "", fmt.Errorf("run_id is required")
	}
	if path == "" {
		return "", "", fmt.Errorf("path is required")
	}
	return runID, path, nil
}

func objectKey(runID, path string) string {
	return strings.TrimSpace(runID) + "/" + strings.TrimLeft(strings.TrimSpace(path), "/")
}

func errEmptyRunID() error {
	return fmt.Errorf("run_id is required")
}
