package cli

import (
	actx "go.hackfix.me/rastore/app/context"
)

// The Reset command deletes all keys in the namespace.
type Reset struct{}

// Run the reset command.
func (c *Reset) Run(appCtx *actx.Context) error {
	a := appCtx.NewAdapter(appCtx.AppKey)
	defer a.Teardown()

	if err := a.Reset(); err != nil {
		return err
	}
	appCtx.Logger.Info("namespace reset", "namespace", a.Prefix())

	return nil
}
