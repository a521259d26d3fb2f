package context

import (
	"context"
	"io"
	"log/slog"

	"github.com/mandelsoft/vfs/pkg/vfs"

	"go.hackfix.me/rastore/adapter"
	"go.hackfix.me/rastore/store"
)

// Context contains common objects used by the application. It is passed around
// the application to avoid direct dependencies on external systems, and make
// testing easier.
type Context struct {
	Ctx     context.Context
	FS      vfs.FileSystem
	Env     Environment
	Logger  *slog.Logger
	UUIDGen func() string

	// Standard streams
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer

	Store store.Engine

	// Namespace selected on the command line, and the version adapters are
	// set up with.
	AppKey     string
	AppVersion string
}

// Environment is the interface to the process environment.
type Environment interface {
	Get(string) string
	Set(string, string) error
}

// NewAdapter returns an adapter for the namespace of appKey on the
// application store. The caller must call Teardown on it when done.
func (c *Context) NewAdapter(appKey string) *adapter.Adapter {
	return adapter.New(c.Store,
		adapter.WithAppKey(appKey),
		adapter.WithVersion(c.AppVersion),
		adapter.WithLogger(c.Logger),
	)
}
