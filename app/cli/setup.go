package cli

import (
	actx "go.hackfix.me/rastore/app/context"
)

// The Setup command runs the namespace version check.
type Setup struct{}

// Run the setup command.
func (c *Setup) Run(appCtx *actx.Context) error {
	a := appCtx.NewAdapter(appCtx.AppKey)
	defer a.Teardown()

	if err := a.Setup(); err != nil {
		return err
	}
	appCtx.Logger.Info("namespace set up",
		"namespace", a.Prefix(), "version", a.Version())

	return nil
}
