package cli

import (
	actx "go.hackfix.me/rastore/app/context"
)

// The Rm command deletes a key.
type Rm struct {
	Key    string `arg:"" help:"The key to delete."`
	Prefix bool   `help:"Delete all keys starting with the given key."`
}

// Run the rm command.
func (c *Rm) Run(appCtx *actx.Context) error {
	a := appCtx.NewAdapter(appCtx.AppKey)
	defer a.Teardown()

	if c.Prefix {
		return a.RemoveItems(c.Key)
	}

	return a.RemoveItem(c.Key)
}
