// Package cache adds an in-process vector cache in front of any embedder.
// Re-pulling the same memory space re-embeds mostly unchanged chunks, and
// remote embedders charge per call.
package cache

import (
	"context"
	"fmt"

	"github.com/dgraph-io/ristretto"

	"github.com/stitch-ai/stitch-go-sdk/memory"
)

// DefaultMaxBytes bounds the memory held by cached vectors.
const DefaultMaxBytes = 64 << 20

// Embedder wraps another embedder. Only texts missing from the cache are
// sent to it, in one batch.
type Embedder struct {
	next  memory.Embedder
	cache *ristretto.Cache
	scope string
}

// New wraps next with a cache of at most maxBytes. scope namespaces the
// keys, usually the model name, so two models never share vectors.
func New(next memory.Embedder, scope string, maxBytes int64) (*Embedder, error) {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxBytes
	}
	c, err := ristretto.NewCache(&ristretto.Config{
		NumCounters: 1e5,
		MaxCost:     maxBytes,
		BufferItems: 64,
		Metrics:     true,
	})
	if err != nil {
		return nil, fmt.Errorf("create embedding cache: %w", err)
	}
	return &Embedder{next: next, cache: c, scope: scope}, nil
}

func (e *Embedder) key(text string) string {
	return e.scope + "\x00" + text
}

// Embed serves cached vectors and embeds the rest.
func (e *Embedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))

	var missing []string
	var slots []int
	for i, text := range texts {
		if v, ok := e.cache.Get(e.key(text)); ok {
			out[i] = v.([]float32)
			continue
		}
		missing = append(missing, text)
		slots = append(slots, i)
	}
	if len(missing) == 0 {
		return out, nil
	}

	vectors, err := e.next.Embed(ctx, missing)
	if err != nil {
		return nil, err
	}
	if len(vectors) != len(missing) {
		return nil, fmt.Errorf("embedder returned %d vectors for %d texts", len(vectors), len(missing))
	}

	for j, vec := range vectors {
		out[slots[j]] = vec
		e.cache.Set(e.key(missing[j]), vec, int64(len(vec)*4))
	}
	e.cache.Wait()
	return out, nil
}

// Dimensions delegates to the wrapped embedder.
func (e *Embedder) Dimensions() int {
	return e.next.Dimensions()
}

// Hits returns the number of cache hits so far.
func (e *Embedder) Hits() uint64 {
	return e.cache.Metrics.Hits()
}

// Close releases the cache's background goroutines.
func (e *Embedder) Close() {
	e.cache.Close()
}
