package cli

import (
	"encoding/json"
	"fmt"

	actx "go.hackfix.me/rastore/app/context"
)

// The Ls command prints keys.
type Ls struct {
	KeyPrefix string `arg:"" optional:"" help:"An optional key prefix."`

	Values bool `short:"v" help:"Print a table of keys and their JSON values."`
}

// Run the ls command.
func (c *Ls) Run(appCtx *actx.Context) error {
	a := appCtx.NewAdapter(appCtx.AppKey)
	defer a.Teardown()

	keys, err := a.Keys(c.KeyPrefix)
	if err != nil {
		return err
	}

	if !c.Values {
		for _, key := range keys {
			fmt.Fprintf(appCtx.Stdout, "%s\n", key)
		}
		return nil
	}

	data := make([][]string, 0, len(keys))
	for _, key := range keys {
		val, err := a.GetItem(key, nil)
		if err != nil {
			return err
		}
		out, err := json.Marshal(val)
		if err != nil {
			return err
		}
		data = append(data, []string{key, string(out)})
	}

	if len(data) > 0 {
		newTable([]string{"Key", "Value"}, data, appCtx.Stdout).Render()
	}

	return nil
}
