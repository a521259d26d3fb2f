package server

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	actx "go.hackfix.me/rastore/app/context"
	apiv1 "go.hackfix.me/rastore/web/server/api/v1"
)

const shutdownTimeout = 10 * time.Second

// Server is a wrapper around http.Server with some custom behavior.
type Server struct {
	*http.Server
	appCtx *actx.Context
	api    *apiv1.Handler
}

// New returns a new Server instance.
func New(appCtx *actx.Context, addr string) *Server {
	api := apiv1.NewHandler(appCtx)
	return &Server{
		appCtx: appCtx,
		api:    api,
		Server: &http.Server{
			Handler:           setupRouter(appCtx, api),
			Addr:              addr,
			ReadHeaderTimeout: 10 * time.Second,
			ReadTimeout:       30 * time.Second,
			// No write timeout, since watch streams are long-lived.
		},
	}
}

// ListenAndServe is a replacement of http.ListenAndServe to ensure we set the
// correct server address to be used in URLs, templates, etc.
// This is needed when starting the server with address ':0'.
// The server is shut down when ctx is done.
func (s *Server) ListenAndServe(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.Addr)
	if err != nil {
		return err
	}

	s.Addr = ln.Addr().String()
	s.appCtx.Logger.Info("started web server", "address", s.Addr)

	return s.Serve(ctx, ln)
}

// Serve accepts connections on ln until ctx is done, and then shuts down the
// server gracefully.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	// Cancelling the base context ends open watch streams.
	s.BaseContext = func(net.Listener) context.Context { return ctx }
	defer s.api.Close()

	errCh := make(chan error, 1)
	go func() {
		errCh <- s.Server.Serve(ln)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	s.appCtx.Logger.Info("shutting down web server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := s.Shutdown(shutdownCtx); err != nil {
		return err
	}

	if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	return nil
}

func setupRouter(appCtx *actx.Context, api *apiv1.Handler) chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.RealIP)
	r.Use(middleware.Heartbeat("/ping"))
	r.Use(requestLogger(appCtx.Logger))
	r.Use(middleware.Recoverer)

	r.Mount("/api/v1", api.Router())

	return r
}
