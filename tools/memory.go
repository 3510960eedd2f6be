package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/stitch-ai/stitch-go-sdk/memory"
)

// SearchMemoryName is the tool name the model sees.
const SearchMemoryName = "search_memory"

// Limits on results per search call.
const (
	DefaultSearchLimit = 5
	MaxSearchLimit     = 20
)

// Searcher finds stored memory similar to a query. *memory.Retriever
// implements it.
type Searcher interface {
	Retrieve(ctx context.Context, query string, n int) ([]memory.Match, error)
}

type searchInput struct {
	Query   string `json:"query"`
	Limit   int    `json:"limit,omitempty"`
	Thought string `json:"thought,omitempty"`
}

// SearchMemory returns the search_memory tool backed by s.
func SearchMemory(s Searcher) Tool {
	return Func{
		Def: Definition{
			Name: SearchMemoryName,
			Description: "Search the agent's pulled memory (episodic history and character profile) " +
				"for passages relevant to a query. Returns the closest passages with similarity scores. " +
				"Call it again with a different query if the first results do not answer the question.",
			InputSchema: BuildSchema(map[string]interface{}{
				"query": StringProperty("What to look for, phrased as a short description of the memory"),
				"limit": IntegerProperty(fmt.Sprintf("How many passages to return (default %d)", DefaultSearchLimit), 1, MaxSearchLimit),
			}, "query"),
		},
		Fn: func(ctx context.Context, raw json.RawMessage) (string, error) {
			var in searchInput
			if err := json.Unmarshal(raw, &in); err != nil {
				return "", fmt.Errorf("invalid input: %w", err)
			}
			if strings.TrimSpace(in.Query) == "" {
				return "", fmt.Errorf("query is required")
			}
			limit := in.Limit
			if limit <= 0 {
				limit = DefaultSearchLimit
			}
			limit = min(limit, MaxSearchLimit)

			matches, err := s.Retrieve(ctx, in.Query, limit)
			if err != nil {
				return "", err
			}
			if len(matches) == 0 {
				return "No matching memory found.", nil
			}
			return memory.Format(matches, 4000), nil
		},
	}
}
