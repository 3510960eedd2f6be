package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stitch-ai/stitch-go-sdk/core"
)

// captured is what the fake service saw for one request.
type captured struct {
	method string
	path   string
	query  map[string]string
	header http.Header
	body   map[string]any
}

func newTestClient(t *testing.T, status int, reply string) (*Client, *captured) {
	t.Helper()
	got := &captured{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got.method = r.Method
		got.path = r.URL.EscapedPath()
		got.query = map[string]string{}
		for k := range r.URL.Query() {
			got.query[k] = r.URL.Query().Get(k)
		}
		got.header = r.Header.Clone()
		raw, _ := io.ReadAll(r.Body)
		if len(raw) > 0 {
			_ = json.Unmarshal(raw, &got.body)
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = io.WriteString(w, reply)
	}))
	t.Cleanup(srv.Close)

	c, err := New(core.Config{BaseURL: srv.URL + "/", APIKey: "key-1", UserID: "0xdefault"})
	require.NoError(t, err)
	return c, got
}

func TestNew_RequiresAPIKey(t *testing.T) {
	_, err := New(core.Config{})
	require.ErrorIs(t, err, core.ErrMissingAPIKey)
}

func TestDo_SetsHeadersAndAuth(t *testing.T) {
	c, got := newTestClient(t, http.StatusOK, `{"data":{"ok":true}}`)

	resp, err := c.Memory.CreateSpace(context.Background(), "0xabc", "agent")
	require.NoError(t, err)

	assert.Equal(t, http.MethodPost, got.method)
	assert.Equal(t, "/memory-space/create", got.path)
	assert.Equal(t, map[string]string{"userId": "0xabc", "apiKey": "key-1"}, got.query)
	assert.Equal(t, "application/json", got.header.Get("Content-Type"))
	assert.Equal(t, "stitch-go-sdk/"+Version, got.header.Get("User-Agent"))
	assert.NotEmpty(t, got.header.Get("X-Request-Id"))
	assert.Equal(t, "agent", got.body["repository"])
	assert.True(t, resp.Get("data.ok").Bool())
}

func TestDo_DefaultsUserID(t *testing.T) {
	c, got := newTestClient(t, http.StatusOK, `{}`)

	_, err := c.Memory.ListSpaces(context.Background(), "")
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"userId": "0xdefault"}, got.query)
}

func TestDo_StatusError(t *testing.T) {
	c, _ := newTestClient(t, http.StatusNotFound, `{"message":"no such space"}`)

	_, err := c.Memory.Pull(context.Background(), "0xabc", "missing", "")
	require.Error(t, err)

	var apiErr *Error
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusNotFound, apiErr.StatusCode)
	assert.Contains(t, apiErr.Body, "no such space")
	assert.NotEmpty(t, apiErr.RequestID)
	assert.True(t, IsNotFound(err))
	assert.False(t, IsUnauthorized(err))
}

func TestDo_TransportError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	url := srv.URL
	srv.Close()

	c, err := New(core.Config{BaseURL: url, APIKey: "k"})
	require.NoError(t, err)

	_, err = c.User.Get(context.Background(), "0xabc")
	require.ErrorIs(t, err, ErrTransport)
}

func TestDo_InvalidJSONIsTransportError(t *testing.T) {
	c, _ := newTestClient(t, http.StatusOK, `<html>`)

	_, err := c.User.Stat(context.Background(), "0xabc")
	require.ErrorIs(t, err, ErrTransport)
}

func TestDo_CanceledContext(t *testing.T) {
	c, _ := newTestClient(t, http.StatusOK, `{}`)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := c.Memory.ListSpaces(ctx, "0xabc")
	require.ErrorIs(t, err, context.Canceled)
}

func TestError_TruncatesBody(t *testing.T) {
	long := make([]byte, 500)
	for i := range long {
		long[i] = 'x'
	}
	e := &Error{Method: "GET", Path: "/user", StatusCode: 500, Body: string(long)}
	assert.Less(t, len(e.Error()), 300)
	assert.Contains(t, e.Error(), "500 Internal Server Error")
}
