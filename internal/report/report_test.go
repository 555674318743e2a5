package report

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"autodocs/internal/catalog"
	"autodocs/internal/pipeline"
)

func outcome(path string, ok bool) pipeline.Outcome {
	o := pipeline.Outcome{File: &catalog.File{Path: path}, Succeeded: ok}
	if !ok {
		o.Err = errors.New("rewrite failed")
	}
	return o
}

func readReport(t *testing.T, dir, name string) string {
	t.Helper()
	raw, err := os.ReadFile(filepath.Join(dir, name))
	require.NoError(t, err)
	return string(raw)
}

func TestWritePartitionsInOrder(t *testing.T) {
	dir := t.TempDir()
	outcomes := []pipeline.Outcome{
		outcome("/src/b.cs", true),
		outcome("/src/a.cs", false),
		outcome("/src/c.py", true),
		outcome("/src/d.py", false),
	}

	sum, err := Write(outcomes, dir)
	require.NoError(t, err)
	require.Equal(t, Summary{Processed: 4, Succeeded: 2, Failed: 2}, sum)

	require.Equal(t, "/src/b.cs\n/src/c.py", readReport(t, dir, SuccessFile))
	require.Equal(t, "/src/a.cs\n/src/d.py", readReport(t, dir, FailureFile))
}

func TestWriteIdempotent(t *testing.T) {
	dir := t.TempDir()
	outcomes := []pipeline.Outcome{
		outcome("/a.py", true),
		outcome("/b.py", false),
	}

	_, err := Write(outcomes, dir)
	require.NoError(t, err)
	first := readReport(t, dir, SuccessFile) + "\x00" + readReport(t, dir, FailureFile)

	_, err = Write(outcomes, dir)
	require.NoError(t, err)
	second := readReport(t, dir, SuccessFile) + "\x00" + readReport(t, dir, FailureFile)

	require.Equal(t, first, second)
}

func TestWriteEmptyPartitions(t *testing.T) {
	dir := t.TempDir()

	sum, err := Write(nil, dir)
	require.NoError(t, err)
	require.Equal(t, Summary{}, sum)
	require.Equal(t, "", readReport(t, dir, SuccessFile))
	require.Equal(t, "", readReport(t, dir, FailureFile))
}

func TestWriteCreatesDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "reports")

	_, err := Write([]pipeline.Outcome{outcome("/a.py", true)}, dir)
	require.NoError(t, err)
	require.Equal(t, "/a.py", readReport(t, dir, SuccessFile))
}

func TestSummaryString(t *testing.T) {
	s := Summary{Processed: 5, Succeeded: 3, Failed: 2}
	require.Equal(t, "processed=5 succeeded=3 failed=2", s.String())
}

func TestWritePartitionSizesAlwaysSum(t *testing.T) {
	dir := t.TempDir()
	rapid.Check(t, func(rt *rapid.T) {
		n := rapid.IntRange(0, 40).Draw(rt, "n")
		outcomes := make([]pipeline.Outcome, 0, n)
		for i := 0; i < n; i++ {
			outcomes = append(outcomes, outcome(
				fmt.Sprintf("/src/file-%d.py", i),
				rapid.Bool().Draw(rt, fmt.Sprintf("ok-%d", i)),
			))
		}

		sum, err := Write(outcomes, dir)
		if err != nil {
			rt.Fatalf("write: %v", err)
		}
		if sum.Succeeded+sum.Failed != sum.Processed || sum.Processed != n {
			rt.Fatalf("summary does not add up: %+v for %d outcomes", sum, n)
		}
	})
}
