// Package remote embeds text through an HTTP embedding service. The
// per-provider request code comes from chromem-go's embedding funcs; this
// package adapts them to batch embedding.
package remote

import (
	"context"
	"fmt"
	"sync/atomic"

	chromem "github.com/philippgille/chromem-go"
)

// Provider names accepted by FromProvider.
const (
	ProviderOllama = "ollama"
	ProviderOpenAI = "openai"
)

// DefaultOllamaModel is a small general-purpose embedding model.
const DefaultOllamaModel = "nomic-embed-text"

// Embedder calls a single-text embedding func once per input.
type Embedder struct {
	fn    chromem.EmbeddingFunc
	model string
	dims  atomic.Int64
}

// New adapts any chromem embedding func.
func New(fn chromem.EmbeddingFunc, model string) *Embedder {
	return &Embedder{fn: fn, model: model}
}

// Ollama embeds with a local Ollama server. An empty baseURL means
// http://localhost:11434/api.
func Ollama(model, baseURL string) *Embedder {
	if model == "" {
		model = DefaultOllamaModel
	}
	return New(chromem.NewEmbeddingFuncOllama(model, baseURL), model)
}

// OpenAI embeds with the OpenAI API. An empty model means text-embedding-3-small.
func OpenAI(apiKey, model string) *Embedder {
	if model == "" {
		model = string(chromem.EmbeddingModelOpenAI3Small)
	}
	return New(chromem.NewEmbeddingFuncOpenAI(apiKey, chromem.EmbeddingModelOpenAI(model)), model)
}

// OpenAICompat embeds with any OpenAI-compatible endpoint (LiteLLM, vLLM,
// Azure proxies). baseURL must include the version path, e.g. ".../v1".
func OpenAICompat(baseURL, apiKey, model string) *Embedder {
	return New(chromem.NewEmbeddingFuncOpenAICompat(baseURL, apiKey, model, nil), model)
}

// FromProvider builds an embedder by provider name.
func FromProvider(provider, model, baseURL, apiKey string) (*Embedder, error) {
	switch provider {
	case ProviderOllama:
		return Ollama(model, baseURL), nil
	case ProviderOpenAI:
		if baseURL != "" {
			return OpenAICompat(baseURL, apiKey, model), nil
		}
		return OpenAI(apiKey, model), nil
	default:
		return nil, fmt.Errorf("unknown embedding provider %q", provider)
	}
}

// Model returns the model name, used to scope caches.
func (e *Embedder) Model() string {
	return e.model
}

// Embed returns one vector per text. The first failure aborts the batch.
func (e *Embedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, text := range texts {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		vec, err := e.fn(ctx, text)
		if err != nil {
			return nil, fmt.Errorf("%s: text %d: %w", e.model, i, err)
		}
		out[i] = vec
		e.dims.CompareAndSwap(0, int64(len(vec)))
	}
	return out, nil
}

// Dimensions is 0 until the first successful call.
func (e *Embedder) Dimensions() int {
	return int(e.dims.Load())
}
