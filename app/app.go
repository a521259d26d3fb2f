package app

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"path/filepath"

	"github.com/adrg/xdg"
	"github.com/mandelsoft/vfs/pkg/memoryfs"

	"go.hackfix.me/rastore/app/cli"
	actx "go.hackfix.me/rastore/app/context"
	aerrors "go.hackfix.me/rastore/app/errors"
)

// App is the application.
type App struct {
	ctx      *actx.Context
	cli      *cli.CLI
	logLevel *slog.LevelVar
	dataDir  string

	// Set if the store was injected, in which case the app doesn't open or
	// close it.
	storeInjected bool

	Exit func(int)
}

// New initializes a new application.
func New(opts ...Option) (*App, error) {
	defaultCtx := &actx.Context{
		Ctx:    context.Background(),
		FS:     memoryfs.New(),
		Logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
		Stdout: io.Discard,
		Stderr: io.Discard,
	}
	app := &App{
		ctx:      defaultCtx,
		logLevel: &slog.LevelVar{},
		dataDir:  filepath.Join(xdg.DataHome, "rastore"),
		Exit:     func(int) {},
	}

	for _, opt := range opts {
		opt(app)
	}

	if app.ctx.UUIDGen == nil {
		var err error
		app.ctx.UUIDGen, err = actx.NewIDGenerator(12)
		if err != nil {
			return nil, err
		}
	}

	return app, nil
}

// Run parses the command line arguments and runs the selected command.
func (app *App) Run(args []string) error {
	app.cli = &cli.CLI{}
	if err := app.cli.Parse(app.ctx, args, app.dataDir, app.Exit); err != nil {
		return err
	}

	if err := app.logLevel.UnmarshalText([]byte(app.cli.LogLevel)); err != nil {
		return err
	}
	app.ctx.AppKey = app.cli.AppKey
	app.ctx.AppVersion = app.cli.AppVersion

	if !app.storeInjected {
		s, err := openStore(app.ctx, app.cli.Engine, app.cli.DataDir, app.cli.EncryptionPassphrase)
		if err != nil {
			return err
		}
		app.ctx.Store = s
		defer func() {
			if err := s.Close(); err != nil {
				app.ctx.Logger.Warn("failed closing store", "error", err)
			}
		}()
	}

	app.ctx.Logger.Debug("running command",
		"command", app.cli.Command(), "engine", app.cli.Engine,
		"namespace", app.ctx.AppKey)

	return app.cli.Execute(app.ctx)
}

// FatalIfErrorf terminates the application with an error message if err != nil.
func (app *App) FatalIfErrorf(err error, args ...any) {
	if err == nil {
		return
	}

	var hErr aerrors.WithHint
	if errors.As(err, &hErr) && hErr.Hint() != "" {
		args = append(args, "hint", hErr.Hint())
	}
	app.ctx.Logger.Error(err.Error(), args...)
	app.Exit(1)
}
