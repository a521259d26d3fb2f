package sqlite

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go.hackfix.me/rastore/store"
	"go.hackfix.me/rastore/store/storetest"
)

var discard = slog.New(slog.NewTextHandler(io.Discard, nil))

func TestSQLite(t *testing.T) {
	storetest.Run(t, func(t *testing.T) store.Engine {
		s, err := Open(context.Background(), ":memory:", discard)
		require.NoError(t, err)
		return s
	})
}

func TestSQLiteReopen(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "store.db")

	s, err := Open(ctx, path, discard)
	require.NoError(t, err)
	require.NoError(t, s.Set("k", "v"))
	require.NoError(t, s.Close())

	// Migrations were already applied, so reopening must not fail.
	s, err = Open(ctx, path, discard)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })

	val, ok, err := s.GetString("k")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "v", val)
}

func TestSQLiteOutlivesOpenContext(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	s, err := Open(ctx, ":memory:", discard)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })

	cancel()

	require.NoError(t, s.Set("k", "v"))
	val, ok, err := s.GetString("k")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "v", val)

	keys, err := s.AllKeys()
	require.NoError(t, err)
	assert.Equal(t, []string{"k"}, keys)

	require.NoError(t, s.Delete("k"))
}

func TestSQLiteOpenCanceled(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Open(ctx, ":memory:", discard)
	assert.ErrorIs(t, err, context.Canceled)
}
