package fsio

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// ReadText loads a file as a string. Directories are rejected rather than
// returning their unreadable contents downstream.
func ReadText(path string) (string, error) {
	if path == "" {
		return "", errors.New("fsio: empty path")
	}
	info, err := os.Stat(path)
	if err != nil {
		return "", err
	}
	if info.IsDir() {
		return "", fmt.Errorf("fsio: %s is a directory", path)
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return string(raw), nil
}

// WriteText writes text to path, creating missing parent directories.
func WriteText(path, text string) error {
	if path == "" {
		return errors.New("fsio: empty path")
	}
	if err := EnsureDir(filepath.Dir(path)); err != nil {
		return err
	}
	return os.WriteFile(path, []byte(text), 0o644)
}

// WriteTextAtomic writes via a temp file in the target directory followed by a
// rename, so readers never observe a half-written file.
func WriteTextAtomic(path, text string) error {
	if path == "" {
		return errors.New("fsio: empty path")
	}
	dir := filepath.Dir(path)
	if err := EnsureDir(dir); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(dir, ".fsio-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	if _, err := tmp.WriteString(text); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return err
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return err
	}
	return nil
}

// EnsureDir creates dir and any missing parents.
func EnsureDir(dir string) error {
	if dir == "" || dir == "." {
		return nil
	}
	return os.MkdirAll(dir, 0o755)
}
