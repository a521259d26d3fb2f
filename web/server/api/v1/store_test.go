package api

import (
	"bufio"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	actx "go.hackfix.me/rastore/app/context"
	"go.hackfix.me/rastore/store/memory"
)

func newTestServer(t *testing.T) (*httptest.Server, *memory.Memory) {
	t.Helper()

	engine := memory.New()
	appCtx := &actx.Context{
		Ctx:        context.Background(),
		Logger:     slog.New(slog.NewTextHandler(io.Discard, nil)),
		UUIDGen:    func() string { return "test-watch" },
		Store:      engine,
		AppVersion: "1",
	}

	h := NewHandler(appCtx)
	srv := httptest.NewServer(h.Router())
	t.Cleanup(func() {
		srv.Close()
		h.Close()
	})

	return srv, engine
}

func doReq(t *testing.T, method, url, body string) (int, map[string]any) {
	t.Helper()

	req, err := http.NewRequest(method, url, strings.NewReader(body))
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var out map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))

	return resp.StatusCode, out
}

func TestStoreAPI(t *testing.T) {
	t.Parallel()

	srv, engine := newTestServer(t)
	base := srv.URL + "/store/admin"

	t.Run("ok/set_get", func(t *testing.T) {
		code, _ := doReq(t, http.MethodPut, base+"/value/prefs.theme", `"dark"`)
		assert.Equal(t, http.StatusOK, code)

		code, out := doReq(t, http.MethodGet, base+"/value/prefs.theme", "")
		assert.Equal(t, http.StatusOK, code)
		assert.Equal(t, "dark", out["data"])

		val, ok, err := engine.GetString("RaStore.admin.prefs.theme")
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, `"dark"`, val)

		// The adapter was set up on first use.
		val, _, err = engine.GetString("RaStore.admin.version")
		require.NoError(t, err)
		assert.Equal(t, "1", val)
	})

	t.Run("ok/keys", func(t *testing.T) {
		code, _ := doReq(t, http.MethodPut, base+"/value/prefs.size", `{"w":10}`)
		require.Equal(t, http.StatusOK, code)

		code, out := doReq(t, http.MethodGet, base+"/keys/prefs", "")
		assert.Equal(t, http.StatusOK, code)
		assert.Equal(t, []any{"prefs.size", "prefs.theme"}, out["keys"])
	})

	t.Run("ok/remove", func(t *testing.T) {
		code, _ := doReq(t, http.MethodDelete, base+"/value/prefs.size", "")
		assert.Equal(t, http.StatusOK, code)

		code, out := doReq(t, http.MethodGet, base+"/value/prefs.size", "")
		assert.Equal(t, http.StatusNotFound, code)
		assert.Equal(t, "key 'prefs.size' not found", out["error"])
	})

	t.Run("ok/remove_prefix", func(t *testing.T) {
		for _, k := range []string{"res.posts.list", "res.posts.one", "res.users"} {
			code, _ := doReq(t, http.MethodPut, base+"/value/"+k, `1`)
			require.Equal(t, http.StatusOK, code)
		}

		code, _ := doReq(t, http.MethodDelete, base+"/prefix/res.posts", "")
		assert.Equal(t, http.StatusOK, code)

		_, out := doReq(t, http.MethodGet, base+"/keys/res", "")
		assert.Equal(t, []any{"res.users"}, out["keys"])
	})

	t.Run("ok/reset", func(t *testing.T) {
		code, _ := doReq(t, http.MethodPost, base+"/reset", "")
		assert.Equal(t, http.StatusOK, code)

		_, out := doReq(t, http.MethodGet, base+"/keys", "")
		assert.Empty(t, out["keys"])

		code, _ = doReq(t, http.MethodPost, base+"/setup", "")
		assert.Equal(t, http.StatusOK, code)
		_, out = doReq(t, http.MethodGet, base+"/keys", "")
		assert.Equal(t, []any{"version"}, out["keys"])
	})

	t.Run("ok/empty_app_key", func(t *testing.T) {
		code, _ := doReq(t, http.MethodPut, srv.URL+"/store/_/value/k", `true`)
		assert.Equal(t, http.StatusOK, code)

		_, ok, err := engine.GetString("RaStore..k")
		require.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("err/invalid_json", func(t *testing.T) {
		code, out := doReq(t, http.MethodPut, base+"/value/k", `not json`)
		assert.Equal(t, http.StatusBadRequest, code)
		assert.Equal(t, "request body is not valid JSON", out["error"])
	})
}

func TestStoreWatch(t *testing.T) {
	t.Parallel()

	srv, _ := newTestServer(t)
	base := srv.URL + "/store/admin"

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, base+"/watch/theme", nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))
	assert.Equal(t, "test-watch", resp.Header.Get("X-Watch-Id"))

	code, _ := doReq(t, http.MethodPut, base+"/value/theme", `{"dark":true}`)
	require.Equal(t, http.StatusOK, code)
	code, _ = doReq(t, http.MethodPut, base+"/value/other", `1`)
	require.Equal(t, http.StatusOK, code)
	code, _ = doReq(t, http.MethodDelete, base+"/value/theme", "")
	require.Equal(t, http.StatusOK, code)

	events := []string{}
	scanner := bufio.NewScanner(resp.Body)
	for len(events) < 2 && scanner.Scan() {
		if data, ok := strings.CutPrefix(scanner.Text(), "data: "); ok {
			events = append(events, data)
		}
	}
	require.NoError(t, scanner.Err())

	assert.Equal(t, []string{`{"dark":true}`, "null"}, events)
}
