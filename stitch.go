// Package stitch is the high-level SDK for the Stitch memory service.
//
// It combines the REST client with local file handling: Push reads episodic
// and character memory from disk, Pull stores what the service returns either
// as a JSON file or as the short-term collection of a local vector store, and
// Search queries that collection.
//
//	c, err := stitch.New(core.Config{APIKey: key, UserID: wallet})
//	resp, err := c.Pull(ctx, stitch.PullParams{Repository: "agent", Path: "./memory"})
//	matches, err := c.Search(ctx, "./memory", "what did the user ask", 5)
package stitch

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"

	"github.com/stitch-ai/stitch-go-sdk/api"
	"github.com/stitch-ai/stitch-go-sdk/core"
	"github.com/stitch-ai/stitch-go-sdk/memory"
	"github.com/stitch-ai/stitch-go-sdk/memory/chunker"
	"github.com/stitch-ai/stitch-go-sdk/memory/embedder/mock"
	"github.com/stitch-ai/stitch-go-sdk/memory/source"
	"github.com/stitch-ai/stitch-go-sdk/memory/store/chromem"
)

// ErrNoStore is returned by Search when the path holds no local store.
var ErrNoStore = errors.New("no local memory store")

// Client is the SDK entry point.
type Client struct {
	// API exposes every endpoint group directly.
	API *api.Client

	embedder memory.Embedder
	chunking chunker.Options
	compress bool
	logger   zerolog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithLogger sets the logger passed to every component.
func WithLogger(logger zerolog.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithEmbedder sets the embedder used for pulls into a vector store and for
// search. The same embedder must be used for both.
func WithEmbedder(e memory.Embedder) Option {
	return func(c *Client) {
		c.embedder = e
	}
}

// WithChunkOptions overrides chunk size and overlap for pulls.
func WithChunkOptions(opts chunker.Options) Option {
	return func(c *Client) {
		c.chunking = opts
	}
}

// WithCompression gzips the local store's files.
func WithCompression(compress bool) Option {
	return func(c *Client) {
		c.compress = compress
	}
}

// New builds a client. Without WithEmbedder, the deterministic mock embedder
// is used, which is fine for exact-text lookups but not for semantic search.
func New(cfg core.Config, opts ...Option) (*Client, error) {
	c := &Client{
		chunking: chunker.DefaultOptions(),
		logger:   zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.embedder == nil {
		c.embedder = mock.New()
	}

	a, err := api.New(cfg, api.WithLogger(c.logger))
	if err != nil {
		return nil, err
	}
	c.API = a
	return c, nil
}

// Version returns the SDK version.
func (c *Client) Version() string {
	return api.Version
}

// Embedder returns the embedder in use.
func (c *Client) Embedder() memory.Embedder {
	return c.embedder
}

// CreateSpace creates a memory space.
func (c *Client) CreateSpace(ctx context.Context, userID, repository string) (*core.Response, error) {
	return c.API.Memory.CreateSpace(ctx, userID, repository)
}

// PushParams names what to upload. At least one path is required.
type PushParams struct {
	UserID        string
	Repository    string
	Message       string
	EpisodicPath  string
	CharacterPath string
}

// Push reads the memory files and commits them to the space.
func (c *Client) Push(ctx context.Context, p PushParams) (*core.Response, error) {
	files, err := source.Files(ctx, p.EpisodicPath, p.CharacterPath)
	if err != nil {
		return nil, err
	}
	c.logger.Debug().Str("repository", p.Repository).Int("files", len(files)).Msg("push")
	return c.API.Memory.Push(ctx, p.UserID, p.Repository, p.Message, files)
}

// PullParams names what to pull and where to put it.
type PullParams struct {
	UserID     string
	Repository string
	Ref        string // default api.DefaultRef

	// Path is a .json file to write the raw response to, or a directory
	// holding the local vector store.
	Path string
}

// Pull fetches memory at a ref and stores it at p.Path. The service
// response is returned unchanged.
func (c *Client) Pull(ctx context.Context, p PullParams) (*core.Response, error) {
	resp, err := c.API.Memory.Pull(ctx, p.UserID, p.Repository, p.Ref)
	if err != nil {
		return nil, err
	}
	if _, err := c.Save(ctx, resp, p.Path); err != nil {
		return resp, err
	}
	return resp, nil
}

// PullExternal fetches a published memory by id and stores it at path.
func (c *Client) PullExternal(ctx context.Context, memoryID, path string) (*core.Response, error) {
	resp, err := c.API.Memory.PullExternal(ctx, memoryID)
	if err != nil {
		return nil, err
	}
	if _, err := c.Save(ctx, resp, path); err != nil {
		return resp, err
	}
	return resp, nil
}

// IsJSONPath reports whether a pull target is a JSON file rather than a
// store directory.
func IsJSONPath(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".json")
}

// Save writes a pulled response to path. JSON targets get the raw body and a
// nil result; anything else is synced into the store at path.
func (c *Client) Save(ctx context.Context, resp *core.Response, path string) (*memory.SyncResult, error) {
	if path == "" {
		return nil, errors.New("pull target path is required")
	}
	if IsJSONPath(path) {
		raw, err := resp.MarshalJSON()
		if err != nil {
			return nil, err
		}
		if err := memory.SaveJSON(path, raw); err != nil {
			return nil, err
		}
		c.logger.Info().Str("path", path).Msg("saved memory json")
		return nil, nil
	}

	store, err := c.OpenStore(path)
	if err != nil {
		return nil, err
	}
	defer store.Close()

	syncer := memory.NewSynchronizer(store, c.embedder, filepath.Join(path, memory.BackupDir),
		memory.WithChunkOptions(c.chunking),
		memory.WithSyncLogger(c.logger),
	)
	result, err := syncer.Sync(ctx, core.ParsePayload(resp))
	if err != nil {
		return nil, fmt.Errorf("sync %s: %w", path, err)
	}
	return result, nil
}

// OpenStore opens (or creates) the vector store at dir.
func (c *Client) OpenStore(dir string) (*chromem.Store, error) {
	return chromem.Open(dir, chromem.WithLogger(c.logger), chromem.WithCompression(c.compress))
}

// Retriever returns a retriever over store using the client's embedder.
func (c *Client) Retriever(store memory.CollectionStore) *memory.Retriever {
	return memory.NewRetriever(store, c.embedder, c.logger)
}

// Search returns the n closest short-term passages to query from the store
// at path. The store must already exist.
func (c *Client) Search(ctx context.Context, path, query string, n int) ([]memory.Match, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("%w at %s: %w", ErrNoStore, path, err)
	}
	store, err := c.OpenStore(path)
	if err != nil {
		return nil, err
	}
	defer store.Close()
	return c.Retriever(store).Retrieve(ctx, query, n)
}

// ListSpaces lists the user's memory spaces.
func (c *Client) ListSpaces(ctx context.Context, userID string) (*core.Response, error) {
	return c.API.Memory.ListSpaces(ctx, userID)
}

// ListMemories lists a space's commit history.
func (c *Client) ListMemories(ctx context.Context, userID, repository string) (*core.Response, error) {
	return c.API.Memory.ListMemories(ctx, userID, repository)
}

// ValidateAPIKey reports whether the configured key can list the user's
// spaces.
func (c *Client) ValidateAPIKey(ctx context.Context, userID string) bool {
	_, err := c.API.Memory.ListSpaces(ctx, userID)
	if err != nil {
		c.logger.Debug().Err(err).Msg("api key check failed")
	}
	return err == nil
}
