package stitch

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stitch-ai/stitch-go-sdk/api"
	"github.com/stitch-ai/stitch-go-sdk/core"
	"github.com/stitch-ai/stitch-go-sdk/memory"
	"github.com/stitch-ai/stitch-go-sdk/memory/chunker"
	"github.com/stitch-ai/stitch-go-sdk/memory/source"
)

const pullBody = `{"data":{"episodic":"The user asked about the weather in Lisbon.","character":"A cheerful travel assistant."}}`

type call struct {
	method string
	path   string
	query  map[string]string
	body   string
}

type fakeService struct {
	mu     sync.Mutex
	calls  []call
	status int
	reply  string
}

func (f *fakeService) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	body, _ := io.ReadAll(r.Body)
	q := map[string]string{}
	for k := range r.URL.Query() {
		q[k] = r.URL.Query().Get(k)
	}
	f.mu.Lock()
	f.calls = append(f.calls, call{r.Method, r.URL.EscapedPath(), q, string(body)})
	status, reply := f.status, f.reply
	f.mu.Unlock()

	if status == 0 {
		status = http.StatusOK
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = io.WriteString(w, reply)
}

func (f *fakeService) last() call {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[len(f.calls)-1]
}

func newTestClient(t *testing.T, f *fakeService, opts ...Option) *Client {
	t.Helper()
	srv := httptest.NewServer(f)
	t.Cleanup(srv.Close)
	c, err := New(core.Config{BaseURL: srv.URL, APIKey: "key-1", UserID: "0xabc"}, opts...)
	require.NoError(t, err)
	return c
}

func TestNewRequiresAPIKey(t *testing.T) {
	_, err := New(core.Config{})
	require.ErrorIs(t, err, core.ErrMissingAPIKey)
}

func TestPushReadsFiles(t *testing.T) {
	f := &fakeService{reply: `{"data":{"oid":"abc123"}}`}
	c := newTestClient(t, f)

	dir := t.TempDir()
	episodic := filepath.Join(dir, "episodic.txt")
	character := filepath.Join(dir, "character.json")
	require.NoError(t, os.WriteFile(episodic, []byte("hello there"), 0o644))
	require.NoError(t, os.WriteFile(character, []byte("{\n  \"name\": \"Ada\"\n}"), 0o644))

	resp, err := c.Push(context.Background(), PushParams{
		Repository:    "agent",
		Message:       "first",
		EpisodicPath:  episodic,
		CharacterPath: character,
	})
	require.NoError(t, err)
	assert.Equal(t, "abc123", resp.Get("data.oid").String())

	got := f.last()
	assert.Equal(t, http.MethodPost, got.method)
	assert.Equal(t, "/memory/agent/create", got.path)
	assert.Equal(t, "0xabc", got.query["userId"])

	var body struct {
		Message string      `json:"message"`
		Files   []core.File `json:"files"`
	}
	require.NoError(t, json.Unmarshal([]byte(got.body), &body))
	assert.Equal(t, "first", body.Message)
	require.Len(t, body.Files, 2)
	assert.Equal(t, core.EpisodicFile, body.Files[0].FilePath)
	assert.Equal(t, "hello there", body.Files[0].Content)
	assert.Equal(t, core.CharacterFile, body.Files[1].FilePath)
	assert.Equal(t, `{"name":"Ada"}`, body.Files[1].Content)
}

func TestPushWithoutFiles(t *testing.T) {
	f := &fakeService{}
	c := newTestClient(t, f)

	_, err := c.Push(context.Background(), PushParams{Repository: "agent"})
	require.ErrorIs(t, err, source.ErrNoMemoryFiles)
	assert.Empty(t, f.calls)
}

func TestPullToJSON(t *testing.T) {
	f := &fakeService{reply: pullBody}
	c := newTestClient(t, f)
	path := filepath.Join(t.TempDir(), "out", "memory.json")

	resp, err := c.Pull(context.Background(), PullParams{Repository: "agent", Path: path})
	require.NoError(t, err)
	assert.JSONEq(t, pullBody, string(resp.Raw))

	got := f.last()
	assert.Equal(t, "/memory-space/agent", got.path)
	assert.Equal(t, api.DefaultRef, got.query["ref"])

	saved, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.JSONEq(t, pullBody, string(saved))
	assert.True(t, strings.Contains(string(saved), "\n  "), "saved json is indented")
}

func TestPullToStoreAndSearch(t *testing.T) {
	f := &fakeService{reply: pullBody}
	c := newTestClient(t, f)
	dir := filepath.Join(t.TempDir(), "store")

	_, err := c.Pull(context.Background(), PullParams{Repository: "agent", Ref: "dev", Path: dir})
	require.NoError(t, err)
	assert.Equal(t, "dev", f.last().query["ref"])

	matches, err := c.Search(context.Background(), dir, "A cheerful travel assistant.", 1)
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, "A cheerful travel assistant.", matches[0].Text)
	assert.Equal(t, memory.CategoryCharacter, matches[0].Category())

	// A second pull replaces the collection and backs up the first.
	_, err = c.Pull(context.Background(), PullParams{Repository: "agent", Path: dir})
	require.NoError(t, err)
	backups, err := memory.ListBackups(filepath.Join(dir, memory.BackupDir))
	require.NoError(t, err)
	assert.Len(t, backups, 1)
}

func TestSaveReportsCounts(t *testing.T) {
	c := newTestClient(t, &fakeService{}, WithChunkOptions(chunker.Options{Size: 20, Overlap: 5}))
	resp, err := core.NewResponse([]byte(pullBody))
	require.NoError(t, err)

	result, err := c.Save(context.Background(), resp, t.TempDir())
	require.NoError(t, err)
	require.NotNil(t, result)
	assert.Greater(t, result.Episodic, 1)
	assert.Greater(t, result.Character, 0)
	assert.Empty(t, result.BackupPath)
}

func TestPullExternalSkipsAuth(t *testing.T) {
	f := &fakeService{reply: pullBody}
	c := newTestClient(t, f)
	path := filepath.Join(t.TempDir(), "ext.json")

	_, err := c.PullExternal(context.Background(), "mem-42", path)
	require.NoError(t, err)

	got := f.last()
	assert.Equal(t, "/memory/external/mem-42", got.path)
	assert.Empty(t, got.query)
	assert.FileExists(t, path)
}

func TestPullServiceError(t *testing.T) {
	f := &fakeService{status: http.StatusNotFound, reply: `{"message":"no such space"}`}
	c := newTestClient(t, f)
	path := filepath.Join(t.TempDir(), "memory.json")

	_, err := c.Pull(context.Background(), PullParams{Repository: "missing", Path: path})
	require.Error(t, err)
	assert.True(t, api.IsNotFound(err))
	assert.NoFileExists(t, path)
}

func TestSearchMissingStore(t *testing.T) {
	c := newTestClient(t, &fakeService{})
	_, err := c.Search(context.Background(), filepath.Join(t.TempDir(), "nope"), "q", 3)
	require.ErrorIs(t, err, ErrNoStore)
}

func TestValidateAPIKey(t *testing.T) {
	ok := &fakeService{reply: `{"data":[]}`}
	assert.True(t, newTestClient(t, ok).ValidateAPIKey(context.Background(), ""))
	assert.Equal(t, "/user/memory-space", ok.last().path)

	denied := &fakeService{status: http.StatusUnauthorized, reply: `{"message":"bad key"}`}
	assert.False(t, newTestClient(t, denied).ValidateAPIKey(context.Background(), ""))
}

func TestIsJSONPath(t *testing.T) {
	assert.True(t, IsJSONPath("a/b.json"))
	assert.True(t, IsJSONPath("B.JSON"))
	assert.False(t, IsJSONPath("./memory"))
	assert.False(t, IsJSONPath("memory.json.d"))
}
