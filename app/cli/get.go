package cli

import (
	"encoding/json"
	"fmt"

	actx "go.hackfix.me/rastore/app/context"
	aerrors "go.hackfix.me/rastore/app/errors"
)

// The Get command retrieves and prints the value of a key as JSON.
type Get struct {
	Key string `arg:"" help:"The key associated with the value."`

	Default string `help:"JSON value to print if the key doesn't exist."`
}

// Run the get command.
func (c *Get) Run(appCtx *actx.Context) error {
	var def any = notFound
	if c.Default != "" {
		if !json.Valid([]byte(c.Default)) {
			return aerrors.NewRuntimeError("invalid default value", nil,
				`The default must be valid JSON, e.g. '"text"', '42' or '{"a":1}'.`)
		}
		def = json.RawMessage(c.Default)
	}

	a := appCtx.NewAdapter(appCtx.AppKey)
	defer a.Teardown()

	val, err := a.GetItem(c.Key, def)
	if err != nil {
		return err
	}
	if val == notFound {
		return aerrors.NewRuntimeError(fmt.Sprintf("key '%s' not found", c.Key), nil, "")
	}

	out, err := json.Marshal(val)
	if err != nil {
		return err
	}
	printJSON(appCtx.Stdout, out)

	return nil
}

// notFound is returned by GetItem as the default, to tell a missing key apart
// from a stored null.
var notFound = &struct{ missing bool }{true}
