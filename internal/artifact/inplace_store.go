package artifact

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"sort"
	"strings"
	"sync"
)

// InPlaceStore writes each artifact back to its own path, replacing the
// source file. Selected when the caller names no output directory.
type InPlaceStore struct {
	mu      sync.Mutex
	written map[string]map[string]struct{}
}

func NewInPlaceStore() *InPlaceStore {
	return &InPlaceStore{written: make(map[string]map[string]struct{})}
}

func (s *InPlaceStore) Put(_ context.Context, runID, path string, content []byte) error {
	runID, path, err := cleanKey(runID, path)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, content, 0o644); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.written[runID] == nil {
		s.written[runID] = make(map[string]struct{})
	}
	s.written[runID][path] = struct{}{}
	return nil
}

func (s *InPlaceStore) Get(_ context.Context, runID, path string) ([]byte, error) {
	_, path, err := cleanKey(runID, path)
	if err != nil {
		return nil, err
	}
	raw, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, ErrNotFound
	}
	return raw, err
}

// List reports the paths this process wrote for the run, not the state of
// the filesystem.
func (s *InPlaceStore) List(_ context.Context, runID string) ([]string, error) {
	runID = strings.TrimSpace(runID)
	if runID == "" {
		return nil, errEmptyRunID()
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, 0, len(s.written[runID]))
	for p := range s.written[runID] {
		out = append(out, p)
	}
	sort.Strings(out)
	return out, nil
}
