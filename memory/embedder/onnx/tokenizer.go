package onnx

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"unicode"
)

// maxWordChars is the longest word WordPiece will try to split.
const maxWordChars = 100

// Tokenizer is an uncased BERT WordPiece tokenizer read from a Hugging Face
// tokenizer.json.
type Tokenizer struct {
	vocab map[string]int64
	cls   int64
	sep   int64
	unk   int64
	pad   int64
}

// LoadTokenizer reads the vocabulary from a tokenizer.json file.
func LoadTokenizer(path string) (*Tokenizer, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read tokenizer: %w", err)
	}

	var file struct {
		Model struct {
			Vocab map[string]int64 `json:"vocab"`
		} `json:"model"`
	}
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("decode tokenizer: %w", err)
	}
	if len(file.Model.Vocab) == 0 {
		return nil, fmt.Errorf("tokenizer %s has no vocabulary", path)
	}
	return NewTokenizer(file.Model.Vocab), nil
}

// NewTokenizer builds a tokenizer from a vocabulary. Special tokens missing
// from the vocabulary fall back to the standard BERT ids.
func NewTokenizer(vocab map[string]int64) *Tokenizer {
	id := func(token string, fallback int64) int64 {
		if v, ok := vocab[token]; ok {
			return v
		}
		return fallback
	}
	return &Tokenizer{
		vocab: vocab,
		cls:   id("[CLS]", 101),
		sep:   id("[SEP]", 102),
		unk:   id("[UNK]", 100),
		pad:   id("[PAD]", 0),
	}
}

// Encode returns [CLS] tokens [SEP], truncated to maxLen, and its attention
// mask.
func (t *Tokenizer) Encode(text string, maxLen int) (ids, mask []int64) {
	tokens := t.Tokenize(text)
	if limit := maxLen - 2; len(tokens) > limit {
		tokens = tokens[:max(limit, 0)]
	}

	ids = make([]int64, 0, len(tokens)+2)
	ids = append(ids, t.cls)
	ids = append(ids, tokens...)
	ids = append(ids, t.sep)

	mask = make([]int64, len(ids))
	for i := range mask {
		mask[i] = 1
	}
	return ids, mask
}

// Tokenize lowercases, splits on whitespace and punctuation, then applies
// greedy longest-match WordPiece to each word.
func (t *Tokenizer) Tokenize(text string) []int64 {
	var out []int64
	for _, word := range basicSplit(strings.ToLower(text)) {
		out = append(out, t.wordPiece(word)...)
	}
	return out
}

func (t *Tokenizer) wordPiece(word string) []int64 {
	runes := []rune(word)
	if len(runes) > maxWordChars {
		return []int64{t.unk}
	}

	var pieces []int64
	for start := 0; start < len(runes); {
		end := len(runes)
		var found int64 = -1
		for end > start {
			sub := string(runes[start:end])
			if start > 0 {
				sub = "##" + sub
			}
			if id, ok := t.vocab[sub]; ok {
				found = id
				break
			}
			end--
		}
		if found < 0 {
			// One unknown piece makes the whole word unknown.
			return []int64{t.unk}
		}
		pieces = append(pieces, found)
		start = end
	}
	return pieces
}

// basicSplit breaks text into words, emitting each punctuation rune as its
// own word.
func basicSplit(text string) []string {
	var words []string
	var cur strings.Builder
	flush := func() {
		if cur.Len() > 0 {
			words = append(words, cur.String())
			cur.Reset()
		}
	}
	for _, r := range text {
		switch {
		case unicode.IsSpace(r) || unicode.IsControl(r):
			flush()
		case unicode.IsPunct(r) || unicode.IsSymbol(r):
			flush()
			words = append(words, string(r))
		default:
			cur.WriteRune(r)
		}
	}
	flush()
	return words
}
