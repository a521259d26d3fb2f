package app

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go.hackfix.me/rastore/store/memory"
)

func TestAppStore(t *testing.T) {
	t.Parallel()

	tctx, cancel, h := newTestContext(t, 5*time.Second)
	defer cancel()

	engine := memory.New()
	app, err := newTestApp(tctx, engine)
	h(assert.NoError(t, err))

	t.Run("ok/set_get", func(t *testing.T) {
		err = app.Run("set", "count", "5")
		h(assert.NoError(t, err))

		err = app.Run("set", "name", "plain text")
		h(assert.NoError(t, err))

		err = app.Run("set", "obj", `{"b":1,"a":[true,null]}`)
		h(assert.NoError(t, err))

		err = app.Run("get", "count")
		h(assert.NoError(t, err))
		h(assert.Equal(t, "5\n", app.stdout.String()))

		err = app.Run("get", "name")
		h(assert.NoError(t, err))
		h(assert.Equal(t, "\"plain text\"\n", app.stdout.String()))

		err = app.Run("get", "obj")
		h(assert.NoError(t, err))
		h(assert.Equal(t, "{\"a\":[true,null],\"b\":1}\n", app.stdout.String()))

		val, ok, err := engine.GetString("RaStore..name")
		h(assert.NoError(t, err))
		h(assert.True(t, ok))
		h(assert.Equal(t, `"plain text"`, val))
	})

	t.Run("ok/get_default", func(t *testing.T) {
		err = app.Run("get", "--default=0", "missing")
		h(assert.NoError(t, err))
		h(assert.Equal(t, "0\n", app.stdout.String()))
	})

	t.Run("ok/app_key", func(t *testing.T) {
		err = app.Run("set", "--app-key=admin", "count", "7")
		h(assert.NoError(t, err))

		err = app.Run("get", "--app-key=admin", "count")
		h(assert.NoError(t, err))
		h(assert.Equal(t, "7\n", app.stdout.String()))

		err = app.Run("ls", "--app-key=admin")
		h(assert.NoError(t, err))
		h(assert.Equal(t, "count\n", app.stdout.String()))
	})

	t.Run("ok/ls", func(t *testing.T) {
		err = app.Run("ls")
		h(assert.NoError(t, err))
		h(assert.Equal(t, "count\nname\nobj\n", app.stdout.String()))

		err = app.Run("ls", "n")
		h(assert.NoError(t, err))
		h(assert.Equal(t, "name\n", app.stdout.String()))

		err = app.Run("ls", "--values", "c")
		h(assert.NoError(t, err))
		h(assert.Contains(t, app.stdout.String(), "KEY"))
		h(assert.Regexp(t, `count\s+5`, app.stdout.String()))
	})

	t.Run("ok/rm", func(t *testing.T) {
		for _, k := range []string{"res.posts.list", "res.posts.one", "res.users"} {
			err = app.Run("set", k, "1")
			h(assert.NoError(t, err))
		}

		err = app.Run("rm", "--prefix", "res.posts")
		h(assert.NoError(t, err))

		err = app.Run("rm", "count")
		h(assert.NoError(t, err))

		err = app.Run("ls")
		h(assert.NoError(t, err))
		h(assert.Equal(t, "name\nobj\nres.users\n", app.stdout.String()))
	})

	t.Run("ok/setup", func(t *testing.T) {
		err = app.Run("setup")
		h(assert.NoError(t, err))

		err = app.Run("get", "version")
		h(assert.NoError(t, err))
		h(assert.Equal(t, "1\n", app.stdout.String()))

		err = app.Run("setup", "--app-version=2")
		h(assert.NoError(t, err))

		err = app.Run("ls")
		h(assert.NoError(t, err))
		h(assert.Equal(t, "version\n", app.stdout.String()))

		// The admin namespace is unaffected.
		err = app.Run("get", "--app-key=admin", "count")
		h(assert.NoError(t, err))
		h(assert.Equal(t, "7\n", app.stdout.String()))
	})

	t.Run("ok/reset", func(t *testing.T) {
		err = app.Run("reset", "--app-key=admin")
		h(assert.NoError(t, err))
		h(assert.Contains(t, app.stderr.String(), "namespace reset"))

		err = app.Run("ls", "--app-key=admin")
		h(assert.NoError(t, err))
		h(assert.Equal(t, "", app.stdout.String()))
	})

	t.Run("err/get_missing", func(t *testing.T) {
		err = app.Run("get", "missing")
		h(assert.EqualError(t, err, "key 'missing' not found"))
	})

	t.Run("err/invalid_default", func(t *testing.T) {
		err = app.Run("get", "--default=nope", "missing")
		h(assert.EqualError(t, err, "invalid default value"))

		app.FatalIfErrorf(err)
		h(assert.Equal(t, 1, app.exitCode))
		h(assert.Contains(t, app.stderr.String(), "The default must be valid JSON"))
	})
}

func TestAppEngines(t *testing.T) {
	t.Parallel()

	tctx, cancel, h := newTestContext(t, 10*time.Second)
	defer cancel()

	for _, engine := range []string{"badger", "leveldb", "sqlite", "memory"} {
		app, err := newTestApp(tctx, nil)
		h(assert.NoError(t, err))

		err = app.Run("set", "--engine="+engine, "k", "1")
		h(assert.NoError(t, err))
	}

	t.Run("ok/badger_encrypted", func(t *testing.T) {
		app, err := newTestApp(tctx, nil)
		h(assert.NoError(t, err))

		err = app.Run("set", "--encryption-passphrase=secret", "k", "1")
		h(assert.NoError(t, err))
	})

	t.Run("err/bolt_in_memory", func(t *testing.T) {
		app, err := newTestApp(tctx, nil)
		h(assert.NoError(t, err))

		err = app.Run("ls", "--engine=bolt")
		h(assert.EqualError(t, err, "the bolt engine requires a data directory"))
	})

	t.Run("err/encryption_unsupported", func(t *testing.T) {
		app, err := newTestApp(tctx, nil)
		h(assert.NoError(t, err))

		err = app.Run("ls", "--engine=sqlite", "--encryption-passphrase=secret")
		h(assert.EqualError(t, err, "encryption is not supported by the sqlite engine"))
	})

	t.Run("err/unknown_engine", func(t *testing.T) {
		app, err := newTestApp(tctx, nil)
		h(assert.NoError(t, err))

		err = app.Run("ls", "--engine=redis")
		h(assert.Error(t, err))
	})
}

func TestAppServe(t *testing.T) {
	t.Parallel()

	tctx, cancel, h := newTestContext(t, 5*time.Second)
	defer cancel()

	ctx, stop := context.WithCancel(tctx)
	app, err := newTestApp(ctx, memory.New())
	require.NoError(t, err)

	errCh := make(chan error, 1)
	go func() { errCh <- app.Run("serve", "--address=127.0.0.1:0") }()

	time.Sleep(100 * time.Millisecond)
	stop()

	select {
	case err := <-errCh:
		h(assert.NoError(t, err))
	case <-tctx.Done():
		t.Fatal("timed out waiting for the server to stop")
	}
}
