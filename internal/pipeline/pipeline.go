// Package pipeline drives a rewrite run: a coordinator feeds descriptors
// into a bounded queue, a fixed worker pool rewrites and persists them, and
// every descriptor ends as exactly one Outcome no matter how the run goes.
package pipeline

import (
	"context"
	"log/slog"
	"os"
	"sort"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"autodocs/internal/artifact"
	"autodocs/internal/catalog"
	"autodocs/internal/fsio"
	"autodocs/internal/logging"
	"autodocs/internal/rewrite"
	"autodocs/internal/runctx"
)

// DefaultConcurrency sizes both the worker pool and the queue.
const DefaultConcurrency = 6

// Outcome records the terminal state of one descriptor.
type Outcome struct {
	File      *catalog.File
	Succeeded bool
	Err       error
}

// ReadError marks a descriptor whose content could not be loaded. The
// service is never called for it.
type ReadError struct {
	Err error
}

func (e *ReadError) Error() string { return "read source: " + e.Err.Error() }
func (e *ReadError) Unwrap() error { return e.Err }

// PersistError marks a rewrite that succeeded but could not be stored. The
// rewritten text is lost for the run; persistence failures dominate.
type PersistError struct {
	Err error
}

func (e *PersistError) Error() string { return "persist artifact: " + e.Err.Error() }
func (e *PersistError) Unwrap() error { return e.Err }

// Runner holds a run's collaborators. Zero Concurrency means
// DefaultConcurrency; a nil Logger gets the package component logger.
type Runner struct {
	Service       rewrite.Service
	Store         artifact.Store
	Concurrency   int
	Logger        *slog.Logger
	HeaviestFirst bool
}

// Run processes every descriptor and returns one outcome per input, order
// unspecified. Cancellation stops new work; descriptors that never ran are
// returned as failed outcomes carrying the cancellation error.
func (r *Runner) Run(ctx context.Context, files []*catalog.File) []Outcome {
	n := r.Concurrency
	if n <= 0 {
		n = DefaultConcurrency
	}
	log := r.Logger
	if log == nil {
		log = logging.New("pipeline")
	}
	runID := runctx.RunID(ctx)
	if runID == "" {
		runID = runctx.NewRunID(time.Now())
	}

	if r.HeaviestFirst {
		files = heaviestFirst(files)
	}

	log.Info("run started", "run_id", runID, "files", len(files), "workers", n)

	queue := make(chan int, n)
	outcomes := make([]Outcome, 0, len(files))
	done := make([]bool, len(files))
	var mu sync.Mutex
	record := func(i int, err error) {
		mu.Lock()
		done[i] = true
		outcomes = append(outcomes, Outcome{File: files[i], Succeeded: err == nil, Err: err})
		mu.Unlock()
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		defer close(queue)
		for i := range files {
			select {
			case queue <- i:
			case <-gctx.Done():
				return nil
			}
		}
		return nil
	})

	for w := 0; w < n; w++ {
		g.Go(func() error {
			for {
				select {
				case i, ok := <-queue:
					if !ok {
						return nil
					}
					err := r.processOne(gctx, runID, files[i])
					if err != nil {
						log.Warn("file failed", "path", files[i].Path, "error", err)
					} else {
						log.Debug("file rewritten", "path", files[i].Path)
					}
					record(i, err)
				case <-gctx.Done():
					return nil
				}
			}
		})
	}
	_ = g.Wait()

	// Anything still unrecorded was cut off by cancellation.
	if len(outcomes) < len(files) {
		cause := ctx.Err()
		if cause == nil {
			cause = context.Canceled
		}
		for i := range files {
			mu.Lock()
			missing := !done[i]
			mu.Unlock()
			if missing {
				record(i, cause)
			}
		}
	}

	return outcomes
}

// processOne runs read, rewrite, persist strictly in order for one file.
func (r *Runner) processOne(ctx context.Context, runID string, f *catalog.File) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	text, err := fsio.ReadText(f.Path)
	if err != nil {
		return &ReadError{Err: err}
	}
	f.Content = text

	out, err := r.Service.Rewrite(ctx, rewrite.Request{
		Content:  text,
		Language: f.Language,
		DocStyle: f.DocStyle,
		Symbols:  f.Symbols,
	})
	if err != nil {
		return err
	}
	f.Content = out

	if err := r.Store.Put(ctx, runID, f.Path, []byte(out)); err != nil {
		return &PersistError{Err: err}
	}
	return nil
}

// heaviestFirst reorders a copy of the descriptor list so the largest files
// dispatch first, shortening the tail of the run. Files that cannot be
// statted sort last; their read failure surfaces in the worker.
func heaviestFirst(files []*catalog.File) []*catalog.File {
	out := make([]*catalog.File, len(files))
	copy(out, files)
	size := make(map[*catalog.File]int64, len(files))
	for _, f := range out {
		if info, err := os.Stat(f.Path); err == nil {
			size[f] = info.Size()
		}
	}
	sort.SliceStable(out, func(a, b int) bool { return size[out[a]] > size[out[b]] })
	return out
}
