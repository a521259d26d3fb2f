// Package lib contains helpers shared by the web API handlers.
package lib

import (
	"net/http"

	"github.com/go-chi/render"
)

// Response is the envelope of every store API response. Handlers embed it in
// their payload types, and errors are rendered as a bare Response.
type Response struct {
	StatusCode int    `json:"statusCode"`
	Status     string `json:"status"`
	Error      string `json:"error,omitempty"`
}

// Render sets the HTTP status of the response, and fills in the status text.
func (e *Response) Render(w http.ResponseWriter, r *http.Request) error {
	render.Status(r, e.StatusCode)
	if e.Status == "" {
		e.Status = http.StatusText(e.StatusCode)
	}
	return nil
}

// OK returns an empty successful response.
func OK() *Response {
	return &Response{StatusCode: http.StatusOK}
}

// ErrStatus returns an error response with the given status code.
func ErrStatus(code int, err error) render.Renderer {
	return &Response{StatusCode: code, Error: err.Error()}
}

// ErrBadRequest is returned for malformed keys or request bodies.
func ErrBadRequest(err error) render.Renderer {
	return ErrStatus(http.StatusBadRequest, err)
}

// ErrNotFound is returned when a key doesn't exist in the namespace.
func ErrNotFound(err error) render.Renderer {
	return ErrStatus(http.StatusNotFound, err)
}

// ErrInternal is returned for storage engine failures.
func ErrInternal(err error) render.Renderer {
	return ErrStatus(http.StatusInternalServerError, err)
}
