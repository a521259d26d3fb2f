package app

import (
	"bytes"
	"context"
	"sync"
	"testing"
	"time"

	"github.com/mandelsoft/vfs/pkg/memoryfs"

	actx "go.hackfix.me/rastore/app/context"
	"go.hackfix.me/rastore/store"
)

type testApp struct {
	*App
	stdout, stderr *bytes.Buffer
	env            *mockEnv
	exitCode       int
}

func newTestApp(ctx context.Context, s store.Engine, options ...Option) (*testApp, error) {
	tapp := &testApp{
		stdout:   &bytes.Buffer{},
		stderr:   &bytes.Buffer{},
		env:      &mockEnv{env: map[string]string{}},
		exitCode: -1,
	}

	opts := []Option{
		WithContext(ctx),
		WithFDs(&bytes.Buffer{}, tapp.stdout, tapp.stderr),
		WithFS(memoryfs.New()),
		WithEnv(tapp.env),
		WithLogger(false),
		WithDataDir(":memory:"),
		WithIDGenerator(func() string { return "test" }),
		WithExit(func(code int) { tapp.exitCode = code }),
	}
	if s != nil {
		opts = append(opts, WithStore(s))
	}
	opts = append(opts, options...)

	app, err := New(opts...)
	if err != nil {
		return nil, err
	}
	tapp.App = app

	return tapp, nil
}

// Run runs the command with the given arguments. The output of previous runs
// is discarded.
func (ta *testApp) Run(args ...string) error {
	ta.stdout.Reset()
	ta.stderr.Reset()
	return ta.App.Run(args)
}

type mockEnv struct {
	mx  sync.RWMutex
	env map[string]string
}

var _ actx.Environment = &mockEnv{}

func (me *mockEnv) Get(key string) string {
	me.mx.RLock()
	defer me.mx.RUnlock()
	return me.env[key]
}

func (me *mockEnv) Set(key, val string) error {
	me.mx.Lock()
	defer me.mx.Unlock()
	me.env[key] = val
	return nil
}

// newTestContext returns a context that times out after timeout, and an
// assertion handling function that cancels the context prematurely and fails
// the test if the assertion fails. This is done to avoid waiting for the
// context timeout to be reached.
func newTestContext(t *testing.T, timeout time.Duration) (
	ctx context.Context, cancelCtx func(), assertHandler func(bool),
) {
	ctx, cancelCtx = context.WithTimeout(context.Background(), timeout)
	assertHandler = func(success bool) {
		if !success {
			cancelCtx()
			t.FailNow()
		}
	}

	return
}
