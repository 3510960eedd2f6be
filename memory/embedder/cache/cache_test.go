package cache

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stitch-ai/stitch-go-sdk/memory/embedder/mock"
)

// countingEmbedder records the batches it receives.
type countingEmbedder struct {
	*mock.Embedder
	batches [][]string
}

func (c *countingEmbedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	c.batches = append(c.batches, append([]string(nil), texts...))
	return c.Embedder.Embed(ctx, texts)
}

func TestEmbed_OnlyMissesReachNext(t *testing.T) {
	ctx := context.Background()
	inner := &countingEmbedder{Embedder: mock.NewWithDimensions(8)}
	e, err := New(inner, "mock", 0)
	require.NoError(t, err)
	defer e.Close()

	first, err := e.Embed(ctx, []string{"a", "b"})
	require.NoError(t, err)
	require.Len(t, first, 2)

	second, err := e.Embed(ctx, []string{"b", "c", "a"})
	require.NoError(t, err)
	require.Len(t, second, 3)

	require.Len(t, inner.batches, 2)
	assert.Equal(t, []string{"a", "b"}, inner.batches[0])
	assert.Equal(t, []string{"c"}, inner.batches[1])

	assert.Equal(t, first[1], second[0])
	assert.Equal(t, first[0], second[2])
	assert.Equal(t, 8, e.Dimensions())
	assert.GreaterOrEqual(t, e.Hits(), uint64(2))
}

func TestEmbed_AllCachedSkipsNext(t *testing.T) {
	ctx := context.Background()
	inner := &countingEmbedder{Embedder: mock.NewWithDimensions(4)}
	e, err := New(inner, "mock", 0)
	require.NoError(t, err)
	defer e.Close()

	_, err = e.Embed(ctx, []string{"same"})
	require.NoError(t, err)
	_, err = e.Embed(ctx, []string{"same", "same"})
	require.NoError(t, err)

	assert.Len(t, inner.batches, 1)
}

func TestEmbed_ScopesDoNotShare(t *testing.T) {
	ctx := context.Background()
	a, err := New(mock.NewWithDimensions(4), "model-a", 0)
	require.NoError(t, err)
	defer a.Close()

	_, err = a.Embed(ctx, []string{"x"})
	require.NoError(t, err)
	_, ok := a.cache.Get(a.key("x"))
	assert.True(t, ok)
	_, ok = a.cache.Get("model-b\x00x")
	assert.False(t, ok)
}
