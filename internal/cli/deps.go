package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/rs/zerolog"

	"github.com/stitch-ai/stitch-go-sdk"
	"github.com/stitch-ai/stitch-go-sdk/core"
	"github.com/stitch-ai/stitch-go-sdk/memory"
	"github.com/stitch-ai/stitch-go-sdk/memory/chunker"
	"github.com/stitch-ai/stitch-go-sdk/memory/embedder/cache"
	"github.com/stitch-ai/stitch-go-sdk/memory/embedder/mock"
	"github.com/stitch-ai/stitch-go-sdk/memory/embedder/onnx"
	"github.com/stitch-ai/stitch-go-sdk/memory/embedder/remote"
)

const (
	embedMock = "mock"
	embedONNX = "onnx"
)

// buildEmbedder selects the embedding backend. Everything but the mock is
// wrapped in a cache; the returned func releases both.
func buildEmbedder(s settings, logger zerolog.Logger) (memory.Embedder, func(), error) {
	var (
		inner   memory.Embedder
		scope   string
		release = func() {}
	)

	switch s.Embedder {
	case "", embedMock:
		return mock.New(), release, nil

	case remote.ProviderOllama, remote.ProviderOpenAI:
		key := s.EmbedKey
		if key == "" && s.Embedder == remote.ProviderOpenAI {
			key = os.Getenv("OPENAI_API_KEY")
		}
		r, err := remote.FromProvider(s.Embedder, s.EmbedModel, s.EmbedURL, key)
		if err != nil {
			return nil, nil, err
		}
		inner, scope = r, s.Embedder+"/"+r.Model()

	case embedONNX:
		o, err := onnx.New(onnx.Config{
			ModelPath:     s.ONNXModel,
			TokenizerPath: s.ONNXTokenizer,
			LibraryPath:   s.ONNXLibrary,
			Logger:        logger,
		})
		if err != nil {
			return nil, nil, fmt.Errorf("onnx embedder: %w", err)
		}
		inner, scope = o, "onnx/"+s.ONNXModel
		release = func() { _ = o.Close() }

	default:
		return nil, nil, fmt.Errorf("unknown embedder %q", s.Embedder)
	}

	cached, err := cache.New(inner, scope, s.CacheBytes)
	if err != nil {
		release()
		return nil, nil, err
	}
	logger.Debug().Str("embedder", s.Embedder).Str("scope", scope).Msg("embedder ready")
	return cached, func() {
		cached.Close()
		release()
	}, nil
}

// env is what a command needs: the SDK client and a logger. Local-only
// commands get a nil client.
type env struct {
	settings settings
	logger   zerolog.Logger
	embedder memory.Embedder
	client   *stitch.Client
	release  func()
}

func (e *env) Close() {
	if e.release != nil {
		e.release()
	}
}

// newEnv resolves settings and builds the embedder. With remoteCalls set, it
// also builds the API client, which needs an API key.
func newEnv(remoteCalls bool) (*env, error) {
	s := loadSettings()
	logger := newLogger(s.LogLevel, os.Stderr)

	emb, release, err := buildEmbedder(s, logger)
	if err != nil {
		return nil, err
	}
	e := &env{settings: s, logger: logger, embedder: emb, release: release}
	if !remoteCalls {
		return e, nil
	}

	c, err := stitch.New(core.Config{
		BaseURL: s.BaseURL,
		APIKey:  s.APIKey,
		UserID:  s.UserID,
		Timeout: s.Timeout,
	},
		stitch.WithLogger(logger),
		stitch.WithEmbedder(emb),
		stitch.WithChunkOptions(chunker.Options{Size: s.ChunkSize, Overlap: s.ChunkOverlap}),
		stitch.WithCompression(s.Compress),
	)
	if err != nil {
		e.Close()
		if errors.Is(err, core.ErrMissingAPIKey) {
			return nil, fmt.Errorf("%w (set STITCH_API_KEY or --api-key)", err)
		}
		return nil, err
	}
	e.client = c
	return e, nil
}
