package source

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func write(t *testing.T, root, rel, content string) string {
	t.Helper()
	p := filepath.Join(root, filepath.FromSlash(rel))
	require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
	require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
	return p
}

func TestResolveDirectory(t *testing.T) {
	root := t.TempDir()
	keep := []string{
		write(t, root, "src/a.py", "pass"),
		write(t, root, "src/Service.cs", "class S {}"),
		write(t, root, "src/util.go", "package util"),
		write(t, root, "src/App.java", "class App {}"),
		write(t, root, "src/MyProgram.cs", "class P {}"),
		write(t, root, "tstx/keep.py", "pass"),
	}
	write(t, root, "notes/readme.md", "# hi")
	write(t, root, ".git/hidden.cs", "x")
	write(t, root, "tests/x_test.py", "x")
	write(t, root, "obj/Gen.cs", "x")
	write(t, root, "Debug/Out.cs", "x")
	write(t, root, "src/__init__.py", "")
	write(t, root, "src/Program.cs", "class Program {}")
	write(t, root, "src/AssemblyInfo.cs", "")

	r := NewResolver(nil)
	got, err := r.Resolve(context.Background(), root)
	require.NoError(t, err)
	require.ElementsMatch(t, keep, got)
}

func TestResolveRootNamedLikeSkippedDir(t *testing.T) {
	parent := t.TempDir()
	root := filepath.Join(parent, "tests")
	write(t, root, "a.py", "pass")

	r := NewResolver(nil)
	got, err := r.Resolve(context.Background(), root)
	require.NoError(t, err)
	require.Len(t, got, 1)
}

func TestResolveSingleFile(t *testing.T) {
	root := t.TempDir()
	p := write(t, root, "one.cs", "class One {}")

	r := NewResolver(nil)
	got, err := r.Resolve(context.Background(), p)
	require.NoError(t, err)
	require.Equal(t, []string{p}, got)
}

func TestResolveSingleFileUnsupported(t *testing.T) {
	root := t.TempDir()
	p := write(t, root, "one.txt", "plain")

	r := NewResolver(nil)
	_, err := r.Resolve(context.Background(), p)

	var derr *DiscoveryError
	require.ErrorAs(t, err, &derr)
	require.Equal(t, p, derr.Source)
}

func TestResolveMissingPath(t *testing.T) {
	r := NewResolver(nil)
	_, err := r.Resolve(context.Background(), filepath.Join(t.TempDir(), "nope"))

	var derr *DiscoveryError
	require.ErrorAs(t, err, &derr)
	require.ErrorIs(t, err, fs.ErrNotExist)
}

func TestResolveAllSkipsBadSources(t *testing.T) {
	root := t.TempDir()
	write(t, root, "a.py", "pass")

	r := NewResolver(nil)
	got := r.ResolveAll(context.Background(), []string{
		filepath.Join(t.TempDir(), "missing"),
		root,
	})
	require.Len(t, got, 1)
}

func TestFromListFile(t *testing.T) {
	root := t.TempDir()
	list := write(t, root, "paths.txt", "  /a/b.py  \n\n/c/d.cs\n   \n")

	specs, err := FromListFile(list)
	require.NoError(t, err)
	require.Equal(t, []string{"/a/b.py", "/c/d.cs"}, specs)

	_, err = FromListFile(filepath.Join(root, "absent.txt"))
	require.Error(t, err)
}

func TestResolveRemoteClonesShallow(t *testing.T) {
	orig := runGit
	t.Cleanup(func() { runGit = orig })

	var gotArgs []string
	runGit = func(_ context.Context, args ...string) error {
		gotArgs = args
		write(t, args[len(args)-1], "pkg/main.go", "package main")
		return nil
	}

	r := NewResolver(nil)
	paths, err := r.Resolve(context.Background(), "https://github.com/acme/widgets")
	require.NoError(t, err)
	require.Len(t, paths, 1)
	require.True(t, strings.HasSuffix(paths[0], filepath.Join("pkg", "main.go")))

	require.Equal(t, "clone", gotArgs[0])
	require.Contains(t, gotArgs, "--depth")
	require.Contains(t, gotArgs, "1")
	require.Contains(t, gotArgs, "https://github.com/acme/widgets")
}

func TestResolveRemoteCloneFailure(t *testing.T) {
	orig := runGit
	t.Cleanup(func() { runGit = orig })

	runGit = func(context.Context, ...string) error {
		return errors.New("fatal: repository not found")
	}

	r := NewResolver(nil)
	_, err := r.Resolve(context.Background(), "git@github.com:acme/gone.git")

	var derr *DiscoveryError
	require.ErrorAs(t, err, &derr)
}

func TestIsRemote(t *testing.T) {
	require.True(t, isRemote("https://github.com/a/b"))
	require.True(t, isRemote("http://git.local/a/b"))
	require.True(t, isRemote("git@github.com:a/b.git"))
	require.False(t, isRemote("/home/dev/proj"))
	require.False(t, isRemote("./relative/path"))
}
