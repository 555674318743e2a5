package rewrite

import (
	"context"
	"sync"
)

// Fake is a deterministic Service for tests and dry runs. Calls consume
// Errors in order; a nil entry, or running past the script, succeeds. The
// success payload comes from Reply, defaulting to the unchanged content.
type Fake struct {
	FakeName string
	Errors   []error
	Reply    func(Request) string

	mu    sync.Mutex
	calls int
}

func (f *Fake) Name() string {
	if f.FakeName != "" {
		return f.FakeName
	}
	return "fake"
}

func (f *Fake) Close() error { return nil }

// Calls reports how many times Rewrite ran.
func (f *Fake) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func (f *Fake) Rewrite(ctx context.Context, req Request) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	f.mu.Lock()
	i := f.calls
	f.calls++
	f.mu.Unlock()

	if i < len(f.Errors) && f.Errors[i] != nil {
		return "", f.Errors[i]
	}
	if f.Reply != nil {
		return f.Reply(req), nil
	}
	return req.Content, nil
}
