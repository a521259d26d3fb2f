// Package storetest provides a behavioral test suite for store.Engine
// implementations.
package storetest

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go.hackfix.me/rastore/store"
)

// Run runs the engine test suite. newEngine must return a new, empty engine on
// every call; Run closes it when each subtest finishes.
func Run(t *testing.T, newEngine func(t *testing.T) store.Engine) {
	t.Helper()

	open := func(t *testing.T) store.Engine {
		e := newEngine(t)
		t.Cleanup(func() { _ = e.Close() })
		return e
	}

	t.Run("ok/set_get", func(t *testing.T) {
		e := open(t)

		_, ok, err := e.GetString("a")
		require.NoError(t, err)
		assert.False(t, ok)

		require.NoError(t, e.Set("a", "1"))

		val, ok, err := e.GetString("a")
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, "1", val)

		require.NoError(t, e.Set("a", "2"))
		val, _, err = e.GetString("a")
		require.NoError(t, err)
		assert.Equal(t, "2", val)
	})

	t.Run("ok/delete", func(t *testing.T) {
		e := open(t)

		require.NoError(t, e.Set("a", "1"))
		require.NoError(t, e.Delete("a"))
		_, ok, err := e.GetString("a")
		require.NoError(t, err)
		assert.False(t, ok)

		// Deleting a missing key is not an error.
		require.NoError(t, e.Delete("missing"))
	})

	t.Run("ok/all_keys", func(t *testing.T) {
		e := open(t)

		keys, err := e.AllKeys()
		require.NoError(t, err)
		assert.Empty(t, keys)

		for _, k := range []string{"x.b", "x.a", "y"} {
			require.NoError(t, e.Set(k, k))
		}
		require.NoError(t, e.Delete("y"))

		keys, err = e.AllKeys()
		require.NoError(t, err)
		assert.ElementsMatch(t, []string{"x.a", "x.b"}, keys)
	})

	t.Run("ok/listeners", func(t *testing.T) {
		e := open(t)

		var (
			mx      sync.Mutex
			changes []string
		)
		ln := e.OnValueChanged(func(key string) {
			mx.Lock()
			defer mx.Unlock()
			changes = append(changes, key)
		})

		require.NoError(t, e.Set("a", "1"))
		require.NoError(t, e.Delete("a"))
		require.NoError(t, e.Delete("missing"))

		// The change must be visible from within the listener.
		var seen string
		ln2 := e.OnValueChanged(func(key string) {
			seen, _, _ = e.GetString(key)
		})
		require.NoError(t, e.Set("b", "2"))
		assert.Equal(t, "2", seen)
		ln2.Remove()

		ln.Remove()
		ln.Remove()
		require.NoError(t, e.Set("c", "3"))

		mx.Lock()
		defer mx.Unlock()
		assert.Equal(t, []string{"a", "a", "missing", "b"}, changes)
	})
}
