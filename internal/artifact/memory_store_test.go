package artifact

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMemoryStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	require.NoError(t, s.Put(ctx, "run1", "src/a.py", []byte("print()")))

	got, err := s.Get(ctx, "run1", "src/a.py")
	require.NoError(t, err)
	require.Equal(t, "print()", string(got))

	_, err = s.Get(ctx, "run1", "src/missing.py")
	require.ErrorIs(t, err, ErrNotFound)
	_, err = s.Get(ctx, "run2", "src/a.py")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryStoreCopiesContent(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	in := []byte("original")
	require.NoError(t, s.Put(ctx, "run1", "a.go", in))
	in[0] = 'X'

	got, err := s.Get(ctx, "run1", "a.go")
	require.NoError(t, err)
	require.Equal(t, "original", string(got))

	got[0] = 'Y'
	again, err := s.Get(ctx, "run1", "a.go")
	require.NoError(t, err)
	require.Equal(t, "original", string(again))
}

func TestMemoryStoreListScopedAndSorted(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	require.NoError(t, s.Put(ctx, "run1", "b.cs", []byte("b")))
	require.NoError(t, s.Put(ctx, "run1", "a.cs", []byte("a")))
	require.NoError(t, s.Put(ctx, "run2", "c.cs", []byte("c")))

	paths, err := s.List(ctx, "run1")
	require.NoError(t, err)
	require.Equal(t, []string{"a.cs", "b.cs"}, paths)
	require.Equal(t, 3, s.Len())
}

func TestMemoryStoreOverwrite(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	require.NoError(t, s.Put(ctx, "run1", "a.cs", []byte("v1")))
	require.NoError(t, s.Put(ctx, "run1", "a.cs", []byte("v2")))

	got, err := s.Get(ctx, "run1", "a.cs")
	require.NoError(t, err)
	require.Equal(t, "v2", string(got))
	require.Equal(t, 1, s.Len())
}
