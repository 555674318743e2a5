package artifact

import (
	"context"
	"errors"
	"log/slog"

	"autodocs/internal/logging"
)

// MultiStore fans writes out to a primary store plus best-effort mirrors.
// The primary's error is the Put outcome; a mirror failure is logged and
// swallowed so a down mirror never fails a run.
type MultiStore struct {
	primary Store
	mirrors []Store
	log     *slog.Logger
}

func NewMultiStore(primary Store, mirrors ...Store) *MultiStore {
	return &MultiStore{
		primary: primary,
		mirrors: mirrors,
		log:     logging.New("artifact"),
	}
}

func (s *MultiStore) Put(ctx context.Context, runID, path string, content []byte) error {
	if err := s.primary.Put(ctx, runID, path, content); err != nil {
		return err
	}
	for _, m := range s.mirrors {
		if err := m.Put(ctx, runID, path, content); err != nil {
			s.log.Warn("artifact mirror put failed",
				"run_id", runID, "path", path, "error", err)
		}
	}
	return nil
}

func (s *MultiStore) Get(ctx context.Context, runID, path string) ([]byte, error) {
	raw, err := s.primary.Get(ctx, runID, path)
	if err == nil || !errors.Is(err, ErrNotFound) {
		return raw, err
	}
	for _, m := range s.mirrors {
		raw, err = m.Get(ctx, runID, path)
		if err == nil || !errors.Is(err, ErrNotFound) {
			return raw, err
		}
	}
	return nil, ErrNotFound
}

func (s *MultiStore) List(ctx context.Context, runID string) ([]string, error) {
	return s.primary.List(ctx, runID)
}
