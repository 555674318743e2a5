package artifact

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"
)

// DirStore mirrors artifacts under a root directory, preserving each file's
// relative layout. The run ID is not part of the on-disk layout; the caller
// chose the destination for exactly one run.
type DirStore struct {
	root string
}

func NewDirStore(root string) (*DirStore, error) {
	root = strings.TrimSpace(root)
	if root == "" {
		return nil, fmt.Errorf("output root is required")
	}
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("create output root: %w", err)
	}
	return &DirStore{root: root}, nil
}

// rooted maps an artifact path onto the store root. Volume names, leading
// separators, and ".." segments are stripped so no input can escape the root.
func (s *DirStore) rooted(p string) string {
	p = strings.ReplaceAll(strings.TrimSpace(p), "\\", "/")
	p = stripVolume(p)
	p = strings.TrimPrefix(path.Clean("/"+p), "/")
	return filepath.Join(s.root, filepath.FromSlash(p))
}

func stripVolume(p string) string {
	if len(p) >= 2 && p[1] == ':' {
		return p[2:]
	}
	return p
}

func (s *DirStore) Put(_ context.Context, runID, path string, content []byte) error {
	_, path, err := cleanKey(runID, path)
	if err != nil {
		return err
	}
	target := s.rooted(path)
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return fmt.Errorf("create artifact dir: %w", err)
	}
	return os.WriteFile(target, content, 0o644)
}

func (s *DirStore) Get(_ context.Context, runID, path string) ([]byte, error) {
	_, path, err := cleanKey(runID, path)
	if err != nil {
		return nil, err
	}
	raw, err := os.ReadFile(s.rooted(path))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, ErrNotFound
	}
	return raw, err
}

func (s *DirStore) List(_ context.Context, runID string) ([]string, error) {
	if strings.TrimSpace(runID) == "" {
		return nil, errEmptyRunID()
	}
	var paths []string
	err := filepath.WalkDir(s.root, func(p string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return err
		}
		rel, err := filepath.Rel(s.root, p)
		if err != nil {
			return err
		}
		paths = append(paths, filepath.ToSlash(rel))
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(paths)
	return paths, nil
}
