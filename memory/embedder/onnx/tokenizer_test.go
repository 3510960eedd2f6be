package onnx

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testVocab() map[string]int64 {
	return map[string]int64{
		"[PAD]": 0, "[UNK]": 100, "[CLS]": 101, "[SEP]": 102,
		"hello": 7592, "world": 2088, "!": 999, ",": 1010,
		"play": 2377, "##ing": 2075, "un": 4895, "##afford": 20961, "##able": 3085,
	}
}

func TestTokenize_WordPiece(t *testing.T) {
	tok := NewTokenizer(testVocab())

	assert.Equal(t, []int64{7592, 1010, 2088, 999}, tok.Tokenize("Hello, WORLD!"))
	assert.Equal(t, []int64{2377, 2075}, tok.Tokenize("playing"))
	assert.Equal(t, []int64{4895, 20961, 3085}, tok.Tokenize("unaffordable"))
	assert.Equal(t, []int64{100}, tok.Tokenize("xyz"))
}

func TestEncode_AddsSpecialTokensAndTruncates(t *testing.T) {
	tok := NewTokenizer(testVocab())

	ids, mask := tok.Encode("hello world", 16)
	assert.Equal(t, []int64{101, 7592, 2088, 102}, ids)
	assert.Equal(t, []int64{1, 1, 1, 1}, mask)

	ids, _ = tok.Encode("hello hello hello hello", 4)
	assert.Equal(t, []int64{101, 7592, 7592, 102}, ids)
}

func TestLoadTokenizer(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tokenizer.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"model":{"vocab":{"[CLS]":1,"[SEP]":2,"hi":5}}}`), 0o644))

	tok, err := LoadTokenizer(path)
	require.NoError(t, err)
	ids, _ := tok.Encode("hi", 8)
	assert.Equal(t, []int64{1, 5, 2}, ids)

	require.NoError(t, os.WriteFile(path, []byte(`{"model":{}}`), 0o644))
	_, err = LoadTokenizer(path)
	require.Error(t, err)
}
