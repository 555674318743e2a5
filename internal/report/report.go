// Package report writes the run's success/failure partition files.
package report

import (
	"fmt"
	"path/filepath"
	"strings"

	"autodocs/internal/fsio"
	"autodocs/internal/pipeline"
)

const (
	SuccessFile = "success.txt"
	FailureFile = "failure.txt"
)

// Summary counts one run's outcomes.
type Summary struct {
	Processed int
	Succeeded int
	Failed    int
}

func (s Summary) String() string {
	return fmt.Sprintf("processed=%d succeeded=%d failed=%d", s.Processed, s.Succeeded, s.Failed)
}

// Write partitions outcomes by result into success.txt and failure.txt
// under dir, one path per line, preserving outcome order. Both files are
// written even when empty, and rewriting the same outcomes produces
// identical bytes.
func Write(outcomes []pipeline.Outcome, dir string) (Summary, error) {
	var succeeded, failed []string
	for _, o := range outcomes {
		if o.Succeeded {
			succeeded = append(succeeded, o.File.Path)
		} else {
			failed = append(failed, o.File.Path)
		}
	}

	if err := fsio.WriteText(filepath.Join(dir, SuccessFile), strings.Join(succeeded, "\n")); err != nil {
		return Summary{}, fmt.Errorf("write success report: %w", err)
	}
	if err := fsio.WriteText(filepath.Join(dir, FailureFile), strings.Join(failed, "\n")); err != nil {
		return Summary{}, fmt.Errorf("write failure report: %w", err)
	}

	return Summary{
		Processed: len(outcomes),
		Succeeded: len(succeeded),
		Failed:    len(failed),
	}, nil
}
