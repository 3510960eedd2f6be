package memory

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/rs/zerolog"
)

// DefaultMaxChars bounds the formatted output of Format.
const DefaultMaxChars = 2000

// Retriever answers similarity queries against the short-term collection.
type Retriever struct {
	store    CollectionStore
	embedder Embedder
	logger   zerolog.Logger
}

// NewRetriever creates a Retriever.
func NewRetriever(store CollectionStore, embedder Embedder, logger zerolog.Logger) *Retriever {
	return &Retriever{
		store:    store,
		embedder: embedder,
		logger:   logger.With().Str("component", "retrieve").Logger(),
	}
}

// Retrieve returns up to n records most similar to query.
// A missing or empty collection yields no matches.
func (r *Retriever) Retrieve(ctx context.Context, query string, n int) ([]Match, error) {
	if n <= 0 || strings.TrimSpace(query) == "" {
		return nil, nil
	}

	exists, err := r.store.HasCollection(ctx, ShortTermCollection)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrStorageOpen, err)
	}
	if !exists {
		r.logger.Debug().Msg("no short-term collection")
		return nil, nil
	}

	vectors, err := r.embedder.Embed(ctx, []string{query})
	if err != nil {
		return nil, fmt.Errorf("%w: query: %w", ErrEmbedding, err)
	}
	if len(vectors) != 1 {
		return nil, fmt.Errorf("%w: query: got %d vectors", ErrEmbedding, len(vectors))
	}

	matches, err := r.store.Query(ctx, ShortTermCollection, vectors[0], n)
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", ShortTermCollection, err)
	}

	r.logger.Debug().Int("matches", len(matches)).Str("query", truncate(query, 50)).Msg("retrieved")
	return matches, nil
}

// Format renders matches as a numbered list for prompt injection. Each entry
// gets an equal share of maxChars, but never less than 100 characters.
func Format(matches []Match, maxChars int) string {
	if len(matches) == 0 {
		return ""
	}
	if maxChars <= 0 {
		maxChars = DefaultMaxChars
	}
	per := maxChars / len(matches)
	if per < 100 {
		per = 100
	}

	var b strings.Builder
	b.WriteString("=== RELEVANT MEMORY ===\n")
	for i, m := range matches {
		category := m.Category()
		if category == "" {
			category = "memory"
		}
		fmt.Fprintf(&b, "\n%d. [%s %.2f] %s\n", i+1, category, m.Similarity, truncate(m.Text, per))
	}
	return b.String()
}

// truncate shortens s to at most n bytes plus an ellipsis, on a rune boundary.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	cut := n
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut] + "..."
}
