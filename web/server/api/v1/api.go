package api

import (
	"net/http"
	"sync"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"

	"go.hackfix.me/rastore/adapter"
	actx "go.hackfix.me/rastore/app/context"
)

// Handler is the API endpoint handler. It keeps one adapter per app key,
// created and set up on first use.
type Handler struct {
	appCtx *actx.Context

	mx       sync.Mutex
	adapters map[string]*adapter.Adapter
}

// NewHandler returns a new API handler. Call Close to release its adapters.
func NewHandler(appCtx *actx.Context) *Handler {
	return &Handler{appCtx: appCtx, adapters: make(map[string]*adapter.Adapter)}
}

// Router returns the API router.
func (h *Handler) Router() chi.Router {
	r := chi.NewRouter()

	r.Use(render.SetContentType(render.ContentTypeJSON))
	// Limit request sizes to 10MB
	r.Use(middleware.RequestSize(10 << (10 * 2)))

	r.Route("/store/{appKey}", func(r chi.Router) {
		r.Get("/value/*", h.StoreGet)
		r.Put("/value/*", h.StoreSet)
		r.Delete("/value/*", h.StoreRemove)
		r.Delete("/prefix/*", h.StoreRemovePrefix)
		r.Get("/keys", h.StoreKeys)
		r.Get("/keys/*", h.StoreKeys)
		r.Post("/reset", h.StoreReset)
		r.Post("/setup", h.StoreSetup)
		r.Get("/watch/*", h.StoreWatch)
	})

	return r
}

// Close tears down all adapters.
func (h *Handler) Close() {
	h.mx.Lock()
	defer h.mx.Unlock()

	for appKey, a := range h.adapters {
		a.Teardown()
		delete(h.adapters, appKey)
	}
}

// adapter returns the adapter for appKey. New adapters are set up before
// being returned, which clears the namespace if its version changed.
func (h *Handler) adapter(appKey string) (*adapter.Adapter, error) {
	h.mx.Lock()
	defer h.mx.Unlock()

	if a, ok := h.adapters[appKey]; ok {
		return a, nil
	}

	a := h.appCtx.NewAdapter(appKey)
	if err := a.Setup(); err != nil {
		a.Teardown()
		return nil, err
	}
	h.adapters[appKey] = a

	return a, nil
}

// appKeyParam returns the app key in the request path. The empty app key is
// addressed as "_".
func appKeyParam(r *http.Request) string {
	appKey := chi.URLParam(r, "appKey")
	if appKey == "_" {
		return ""
	}
	return appKey
}
