package cli

import (
	actx "go.hackfix.me/rastore/app/context"
	"go.hackfix.me/rastore/web/server"
)

// Serve starts the web server.
type Serve struct {
	Address string `help:"[host]:port to listen on" default:":2020"`
}

// Run the serve command. It blocks until the application context is done.
func (s *Serve) Run(appCtx *actx.Context) error {
	srv := server.New(appCtx, s.Address)
	return srv.ListenAndServe(appCtx.Ctx)
}
