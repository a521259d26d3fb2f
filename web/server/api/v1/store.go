package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"go.hackfix.me/rastore/web/lib"
)

// Number of pending change events buffered per watch stream. Events are
// dropped if the client doesn't keep up.
const watchBufferSize = 64

type StoreValueResponse struct {
	*lib.Response
	Data any `json:"data"`
}

type StoreKeysResponse struct {
	*lib.Response
	Data []string `json:"keys"`
}

var missing = &struct{ missing bool }{true}

// StoreGet returns the value associated to the received key.
func (h *Handler) StoreGet(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "*")
	if key == "" {
		_ = render.Render(w, r, lib.ErrBadRequest(errors.New("key not provided")))
		return
	}

	a, err := h.adapter(appKeyParam(r))
	if err != nil {
		_ = render.Render(w, r, lib.ErrInternal(err))
		return
	}

	val, err := a.GetItem(key, missing)
	if err != nil {
		_ = render.Render(w, r, lib.ErrInternal(err))
		return
	}
	if val == missing {
		_ = render.Render(w, r, lib.ErrNotFound(fmt.Errorf("key '%s' not found", key)))
		return
	}

	_ = render.Render(w, r, &StoreValueResponse{Response: lib.OK(), Data: val})
}

// StoreSet stores the JSON value in the request body under the received key.
func (h *Handler) StoreSet(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "*")
	if key == "" {
		_ = render.Render(w, r, lib.ErrBadRequest(errors.New("key not provided")))
		return
	}

	body, err := io.ReadAll(r.Body)
	if err != nil {
		_ = render.Render(w, r, lib.ErrBadRequest(err))
		return
	}
	if !json.Valid(body) {
		_ = render.Render(w, r, lib.ErrBadRequest(errors.New("request body is not valid JSON")))
		return
	}

	a, err := h.adapter(appKeyParam(r))
	if err != nil {
		_ = render.Render(w, r, lib.ErrInternal(err))
		return
	}

	if err := a.SetItem(key, json.RawMessage(body)); err != nil {
		_ = render.Render(w, r, lib.ErrInternal(err))
		return
	}

	_ = render.Render(w, r, lib.OK())
}

// StoreRemove deletes the received key.
func (h *Handler) StoreRemove(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "*")
	if key == "" {
		_ = render.Render(w, r, lib.ErrBadRequest(errors.New("key not provided")))
		return
	}

	h.mutate(w, r, func(a storeMutator) error { return a.RemoveItem(key) })
}

// StoreRemovePrefix deletes all keys starting with the received prefix.
func (h *Handler) StoreRemovePrefix(w http.ResponseWriter, r *http.Request) {
	prefix := chi.URLParam(r, "*")
	h.mutate(w, r, func(a storeMutator) error { return a.RemoveItems(prefix) })
}

// StoreReset deletes all keys in the namespace.
func (h *Handler) StoreReset(w http.ResponseWriter, r *http.Request) {
	h.mutate(w, r, storeMutator.Reset)
}

// StoreSetup runs the namespace version check.
func (h *Handler) StoreSetup(w http.ResponseWriter, r *http.Request) {
	h.mutate(w, r, storeMutator.Setup)
}

// StoreKeys returns the keys in the namespace, optionally filtered by prefix.
func (h *Handler) StoreKeys(w http.ResponseWriter, r *http.Request) {
	a, err := h.adapter(appKeyParam(r))
	if err != nil {
		_ = render.Render(w, r, lib.ErrInternal(err))
		return
	}

	keys, err := a.Keys(chi.URLParam(r, "*"))
	if err != nil {
		_ = render.Render(w, r, lib.ErrInternal(err))
		return
	}

	_ = render.Render(w, r, &StoreKeysResponse{Response: lib.OK(), Data: keys})
}

// StoreWatch streams changes of the received key as server-sent events, until
// the client disconnects. Each event carries the new JSON value, or null if
// the key was deleted.
func (h *Handler) StoreWatch(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "*")
	if key == "" {
		_ = render.Render(w, r, lib.ErrBadRequest(errors.New("key not provided")))
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		_ = render.Render(w, r, lib.ErrInternal(errors.New("streaming not supported")))
		return
	}

	a, err := h.adapter(appKeyParam(r))
	if err != nil {
		_ = render.Render(w, r, lib.ErrInternal(err))
		return
	}

	watchID := h.appCtx.UUIDGen()
	logger := h.appCtx.Logger.With("watch_id", watchID, "namespace", a.Prefix(), "key", key)

	changes := make(chan any, watchBufferSize)
	unsubscribe := a.Subscribe(key, func(value any) {
		select {
		case changes <- value:
		default:
			logger.Warn("dropped change event, client is too slow")
		}
	})
	defer unsubscribe()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("X-Watch-Id", watchID)
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	logger.Debug("watch started")
	defer logger.Debug("watch ended")

	for {
		select {
		case <-r.Context().Done():
			return
		case value := <-changes:
			data, err := json.Marshal(value)
			if err != nil {
				logger.Warn("failed encoding change event", "error", err)
				continue
			}
			if _, err := fmt.Fprintf(w, "data: %s\n\n", data); err != nil {
				return
			}
			flusher.Flush()
		}
	}
}

// storeMutator is the subset of adapter operations used by mutate.
type storeMutator interface {
	RemoveItem(key string) error
	RemoveItems(keyPrefix string) error
	Reset() error
	Setup() error
}

func (h *Handler) mutate(w http.ResponseWriter, r *http.Request, fn func(storeMutator) error) {
	a, err := h.adapter(appKeyParam(r))
	if err != nil {
		_ = render.Render(w, r, lib.ErrInternal(err))
		return
	}

	if err := fn(a); err != nil {
		_ = render.Render(w, r, lib.ErrInternal(err))
		return
	}

	_ = render.Render(w, r, lib.OK())
}
