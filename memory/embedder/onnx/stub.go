//go:build !onnx

package onnx

import "context"

// Embedder is unavailable without the onnx build tag.
type Embedder struct{}

// New always fails with ErrUnavailable.
func New(cfg Config) (*Embedder, error) {
	return nil, ErrUnavailable
}

func (e *Embedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	return nil, ErrUnavailable
}

func (e *Embedder) Dimensions() int { return 0 }

func (e *Embedder) Close() error { return nil }
