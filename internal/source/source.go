// Package source resolves the caller's input (a directory, a single file, a
// path-list file, or a git URL) into the file paths the catalog will carry.
package source

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"autodocs/internal/catalog"
	"autodocs/internal/logging"
)

// DiscoveryError reports a source that could not be resolved. Callers log
// and skip it; one bad source never aborts the run.
type DiscoveryError struct {
	Source string
	Err    error
}

func (e *DiscoveryError) Error() string { return fmt.Sprintf("resolve %s: %v", e.Source, e.Err) }
func (e *DiscoveryError) Unwrap() error { return e.Err }

// Directories never descended into. Matching is exact on the base name, so
// "tests" is skipped while "integrationtests-data" is not.
var skipDirs = map[string]bool{
	".git":             true,
	".venv":            true,
	"bin":              true,
	"build":            true,
	"dist":             true,
	"node_modules":     true,
	"obj":              true,
	"Debug":            true,
	"tst":              true,
	"tests":            true,
	"IntegrationTests": true,
}

// Files never rewritten, also by exact base name.
var skipFiles = map[string]bool{
	"__init__.py":     true,
	"Program.cs":      true,
	"AssemblyInfo.cs": true,
}

// Resolver turns source specs into concrete file paths, filtered to the
// extensions the language table knows.
type Resolver struct {
	table catalog.Table
	log   *slog.Logger
}

func NewResolver(table catalog.Table) *Resolver {
	if table == nil {
		table = catalog.DefaultTable()
	}
	return &Resolver{table: table, log: logging.New("source")}
}

// Resolve dispatches on the spec's shape: remote URLs are cloned shallowly,
// directories walked, single files taken as-is.
func (r *Resolver) Resolve(ctx context.Context, spec string) ([]string, error) {
	spec = strings.TrimSpace(spec)
	if spec == "" {
		return nil, &DiscoveryError{Source: spec, Err: fmt.Errorf("empty source")}
	}
	if isRemote(spec) {
		return r.fromGit(ctx, spec)
	}

	info, err := os.Stat(spec)
	if err != nil {
		return nil, &DiscoveryError{Source: spec, Err: err}
	}
	if info.IsDir() {
		return r.fromDir(spec)
	}
	if !r.table.Supported(spec) {
		return nil, &DiscoveryError{
			Source: spec,
			Err:    fmt.Errorf("unsupported extension %q", filepath.Ext(spec)),
		}
	}
	abs, err := filepath.Abs(spec)
	if err != nil {
		return nil, &DiscoveryError{Source: spec, Err: err}
	}
	return []string{abs}, nil
}

// ResolveAll resolves each spec independently; failures are logged and
// skipped.
func (r *Resolver) ResolveAll(ctx context.Context, specs []string) []string {
	var out []string
	for _, spec := range specs {
		paths, err := r.Resolve(ctx, spec)
		if err != nil {
			r.log.Warn("source skipped", "source", spec, "error", err)
			continue
		}
		out = append(out, paths...)
	}
	return out
}

func (r *Resolver) fromDir(root string) ([]string, error) {
	var paths []string
	err := filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		base := filepath.Base(p)
		if d.IsDir() {
			if p != root && skipDirs[base] {
				return filepath.SkipDir
			}
			return nil
		}
		if skipFiles[base] || !r.table.Supported(p) {
			return nil
		}
		abs, err := filepath.Abs(p)
		if err != nil {
			return nil
		}
		if rel, err := filepath.Rel(root, p); err == nil {
			r.log.Debug("source file", "path", filepath.ToSlash(rel))
		}
		paths = append(paths, abs)
		return nil
	})
	if err != nil {
		return nil, &DiscoveryError{Source: root, Err: err}
	}
	return paths, nil
}

// runGit is injectable in tests.
var runGit = func(ctx context.Context, args ...string) error {
	cmd := exec.CommandContext(ctx, "git", args...)
	out, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("git %s: %w: %s", strings.Join(args, " "), err, strings.TrimSpace(string(out)))
	}
	return nil
}

// fromGit clones the repository shallowly and walks the clone. The clone
// lands in the OS temp dir and lives for the rest of the run.
func (r *Resolver) fromGit(ctx context.Context, url string) ([]string, error) {
	dir, err := os.MkdirTemp("", "autodocs-src-*")
	if err != nil {
		return nil, &DiscoveryError{Source: url, Err: err}
	}
	if err := runGit(ctx, "clone", "--depth", "1", url, dir); err != nil {
		return nil, &DiscoveryError{Source: url, Err: err}
	}
	r.log.Info("cloned source", "url", url, "dir", dir)
	return r.fromDir(dir)
}

func isRemote(spec string) bool {
	return strings.HasPrefix(spec, "http://") ||
		strings.HasPrefix(spec, "https://") ||
		strings.HasPrefix(spec, "git@")
}

// FromListFile reads one source spec per line, trimming whitespace and
// skipping blank lines.
func FromListFile(path string) ([]string, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, &DiscoveryError{Source: path, Err: err}
	}
	var specs []string
	for _, line := range strings.Split(string(raw), "\n") {
		if line = strings.TrimSpace(line); line != "" {
			specs = append(specs, line)
		}
	}
	return specs, nil
}
