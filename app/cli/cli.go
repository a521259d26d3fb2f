package cli

import (
	"fmt"
	"io"

	"github.com/alecthomas/kong"

	actx "go.hackfix.me/rastore/app/context"
)

// CLI is the command line interface of rastore.
type CLI struct {
	ctx *kong.Context

	Get   Get   `kong:"cmd,help='Get the value of a key.'"`
	Set   Set   `kong:"cmd,help='Set the value of a key.'"`
	Rm    Rm    `kong:"cmd,help='Delete a key, or all keys starting with a prefix.'"`
	Ls    Ls    `kong:"cmd,help='List keys.'"`
	Reset Reset `kong:"cmd,help='Delete all keys in the namespace.'"`
	Setup Setup `kong:"cmd,help='Clear the namespace if its version changed, and store the current version.'"`
	Serve Serve `kong:"cmd,help='Start the web server.'"`

	DataDir              string `default:"${dataDir}" help:"Directory where data is stored. Use ':memory:' to keep data in memory."`
	Engine               string `enum:"badger,bolt,leveldb,sqlite,memory" default:"badger" help:"Storage engine. One of: ${enum}."`
	EncryptionPassphrase string `help:"Passphrase used to encrypt the data store. Only supported by the badger engine."`
	AppKey               string `help:"Application key that selects the namespace."`
	AppVersion           string `default:"1" help:"Version of the namespace data. Changing it clears the namespace on setup."`
	LogLevel             string `enum:"debug,info,warn,error" default:"info" help:"Minimum level of log messages. One of: ${enum}."`
}

// Parse sets up the command-line interface and parses args. The global flags
// and the selected command are available on c afterwards.
func (c *CLI) Parse(appCtx *actx.Context, args []string, dataDir string, exitFn func(int)) error {
	kparser, err := kong.New(c,
		kong.Name("rastore"),
		kong.Description("Namespaced JSON key-value store."),
		kong.UsageOnError(),
		kong.DefaultEnvars("RASTORE"),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact: true,
			Summary: true,
		}),
		kong.Vars{"dataDir": dataDir},
		kong.Writers(appCtx.Stdout, appCtx.Stderr),
		kong.Exit(exitFn),
	)
	if err != nil {
		return err
	}

	kctx, err := kparser.Parse(args)
	if err != nil {
		return err
	}
	c.ctx = kctx

	return nil
}

// Execute runs the selected command.
func (c *CLI) Execute(appCtx *actx.Context) error {
	return c.ctx.Run(appCtx)
}

// Command returns the selected command path, e.g. "get <key>".
func (c *CLI) Command() string {
	return c.ctx.Command()
}

func printJSON(w io.Writer, data []byte) {
	fmt.Fprintf(w, "%s\n", data)
}
