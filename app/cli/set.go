package cli

import (
	"encoding/json"

	actx "go.hackfix.me/rastore/app/context"
)

// The Set command stores the value of a key.
type Set struct {
	Key   string `arg:"" help:"The key that identifies the value."`
	Value string `arg:"" help:"The value. It's stored as-is if it's valid JSON, and as a JSON string otherwise."`
}

// Run the set command.
func (c *Set) Run(appCtx *actx.Context) error {
	a := appCtx.NewAdapter(appCtx.AppKey)
	defer a.Teardown()

	var val any = c.Value
	if json.Valid([]byte(c.Value)) {
		val = json.RawMessage(c.Value)
	}

	return a.SetItem(c.Key, val)
}
