// Package onnx embeds text locally with a sentence-transformer model
// (all-MiniLM-L6-v2 by default) through ONNX Runtime. Inference needs the
// "onnx" build tag and the onnxruntime shared library; the tokenizer builds
// everywhere.
package onnx

import (
	"errors"

	"github.com/rs/zerolog"
)

// ErrUnavailable is returned by New in builds without the onnx tag.
var ErrUnavailable = errors.New("onnx embedder not compiled in (build with -tags onnx)")

// Defaults for all-MiniLM-L6-v2.
const (
	DefaultDimensions = 384
	DefaultMaxLength  = 128
)

// Config configures the ONNX embedder.
type Config struct {
	ModelPath     string
	TokenizerPath string

	// LibraryPath points at libonnxruntime. Empty uses the runtime's default lookup.
	LibraryPath string

	// Dimensions is the model's hidden size. Default: 384.
	Dimensions int

	// MaxLength caps tokens per text, including [CLS] and [SEP]. Default: 128.
	MaxLength int

	Logger zerolog.Logger
}

func (c *Config) validate() error {
	if c.ModelPath == "" {
		return errors.New("onnx: ModelPath is required")
	}
	if c.TokenizerPath == "" {
		return errors.New("onnx: TokenizerPath is required")
	}
	if c.Dimensions <= 0 {
		c.Dimensions = DefaultDimensions
	}
	if c.MaxLength <= 2 {
		c.MaxLength = DefaultMaxLength
	}
	return nil
}
