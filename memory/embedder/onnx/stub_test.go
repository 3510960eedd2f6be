//go:build !onnx

package onnx

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNew_Unavailable(t *testing.T) {
	_, err := New(Config{ModelPath: "m.onnx", TokenizerPath: "t.json"})
	require.ErrorIs(t, err, ErrUnavailable)
}
