package artifact

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

type failingStore struct {
	err error
}

func (f *failingStore) Put(context.Context, string, string, []byte) error { return f.err }
func (f *failingStore) Get(context.Context, string, string) ([]byte, error) {
	return nil, f.err
}
func (f *failingStore) List(context.Context, string) ([]string, error) { return nil, f.err }

func TestMultiStoreMirrorFailureIsSwallowed(t *testing.T) {
	ctx := context.Background()
	primary := NewMemoryStore()
	s := NewMultiStore(primary, &failingStore{err: errors.New("mirror down")})

	require.NoError(t, s.Put(ctx, "run1", "a.cs", []byte("ok")))

	got, err := primary.Get(ctx, "run1", "a.cs")
	require.NoError(t, err)
	require.Equal(t, "ok", string(got))
}

func TestMultiStorePrimaryFailureIsTheOutcome(t *testing.T) {
	boom := errors.New("disk full")
	s := NewMultiStore(&failingStore{err: boom}, NewMemoryStore())

	err := s.Put(context.Background(), "run1", "a.cs", []byte("x"))
	require.ErrorIs(t, err, boom)
}

func TestMultiStoreGetFallsBackToMirrors(t *testing.T) {
	ctx := context.Background()
	primary := NewMemoryStore()
	mirror := NewMemoryStore()
	require.NoError(t, mirror.Put(ctx, "run1", "only-mirrored.cs", []byte("m")))

	s := NewMultiStore(primary, mirror)

	got, err := s.Get(ctx, "run1", "only-mirrored.cs")
	require.NoError(t, err)
	require.Equal(t, "m", string(got))

	_, err = s.Get(ctx, "run1", "nowhere.cs")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestMultiStoreListUsesPrimary(t *testing.T) {
	ctx := context.Background()
	primary := NewMemoryStore()
	mirror := NewMemoryStore()
	require.NoError(t, primary.Put(ctx, "run1", "p.cs", []byte("p")))
	require.NoError(t, mirror.Put(ctx, "run1", "m.cs", []byte("m")))

	s := NewMultiStore(primary, mirror)
	paths, err := s.List(ctx, "run1")
	require.NoError(t, err)
	require.Equal(t, []string{"p.cs"}, paths)
}
