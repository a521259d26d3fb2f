package app

import (
	"context"
	"io"
	"log/slog"

	"github.com/lmittmann/tint"
	"github.com/mandelsoft/vfs/pkg/vfs"

	actx "go.hackfix.me/rastore/app/context"
	"go.hackfix.me/rastore/store"
)

// Option is a function that allows configuring the application.
type Option func(*App)

// WithContext sets the context of the application. Long-running commands,
// such as serve, stop when it's done.
func WithContext(ctx context.Context) Option {
	return func(app *App) {
		app.ctx.Ctx = ctx
	}
}

// WithDataDir sets the default data directory. It can be overriden with the
// --data-dir flag.
func WithDataDir(dir string) Option {
	return func(app *App) {
		app.dataDir = dir
	}
}

// WithEnv sets the process environment used by the application.
func WithEnv(env actx.Environment) Option {
	return func(app *App) {
		app.ctx.Env = env
	}
}

// WithExit sets the function that stops the application.
func WithExit(fn func(int)) Option {
	return func(app *App) {
		app.Exit = fn
	}
}

// WithFDs sets the file descriptors used by the application.
func WithFDs(stdin io.Reader, stdout, stderr io.Writer) Option {
	return func(app *App) {
		app.ctx.Stdin = stdin
		app.ctx.Stdout = stdout
		app.ctx.Stderr = stderr
	}
}

// WithFS sets the filesystem used by the application.
func WithFS(fs vfs.FileSystem) Option {
	return func(app *App) {
		app.ctx.FS = fs
	}
}

// WithLogger initializes the logger used by the application. It writes to
// stderr, so it must be set after WithFDs. The level is set from the
// --log-level flag.
func WithLogger(isStderrTTY bool) Option {
	return func(app *App) {
		noColor := !isStderrTTY
		if app.ctx.Env != nil && app.ctx.Env.Get("NO_COLOR") != "" {
			noColor = true
		}
		logger := slog.New(
			tint.NewHandler(app.ctx.Stderr, &tint.Options{
				Level:      app.logLevel,
				NoColor:    noColor,
				TimeFormat: "2006-01-02 15:04:05.000",
			}),
		)
		app.ctx.Logger = logger
		slog.SetDefault(logger)
	}
}

// WithStore sets the storage engine used by the application, instead of
// opening the one selected on the command line. The application doesn't
// close it.
func WithStore(s store.Engine) Option {
	return func(app *App) {
		app.ctx.Store = s
		app.storeInjected = true
	}
}

// WithIDGenerator sets the function used to generate request IDs.
func WithIDGenerator(fn func() string) Option {
	return func(app *App) {
		app.ctx.UUIDGen = fn
	}
}
