package tools

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stitch-ai/stitch-go-sdk/memory"
)

type fakeSearcher struct {
	query string
	n     int
	out   []memory.Match
	err   error
}

func (f *fakeSearcher) Retrieve(ctx context.Context, query string, n int) ([]memory.Match, error) {
	f.query, f.n = query, n
	return f.out, f.err
}

func TestBuildSchema(t *testing.T) {
	s := BuildSchema(map[string]interface{}{"query": StringProperty("q")}, "query")

	assert.Equal(t, "object", s["type"])
	assert.Equal(t, []string{"query"}, Required(s))
	props := Properties(s)
	assert.Contains(t, props, "query")
	assert.Contains(t, props, "thought")
}

func TestWithThought_DoesNotMutateInput(t *testing.T) {
	base := ObjectSchema(map[string]interface{}{"a": StringProperty("a")})
	_ = WithThought(base)
	assert.NotContains(t, Properties(base), "thought")
}

func TestSearchMemory_Definition(t *testing.T) {
	def := SearchMemory(&fakeSearcher{}).Definition()
	assert.Equal(t, SearchMemoryName, def.Name)

	raw, err := json.Marshal(def.InputSchema)
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"type": "object",
		"required": ["query"],
		"properties": {
			"query": {"type": "string", "description": "What to look for, phrased as a short description of the memory"},
			"limit": {"type": "integer", "description": "How many passages to return (default 5)", "minimum": 1, "maximum": 20},
			"thought": {"type": "string", "description": "Why you are calling this tool and what you expect to find."}
		}
	}`, string(raw))
}

func TestSearchMemory_Execute(t *testing.T) {
	s := &fakeSearcher{out: []memory.Match{
		{Record: memory.Record{Text: "likes green tea", Metadata: map[string]string{"category": "episodic"}}, Similarity: 0.8},
	}}
	tool := SearchMemory(s)

	out, err := tool.Execute(context.Background(), json.RawMessage(`{"query":"drinks","limit":50}`))
	require.NoError(t, err)
	assert.Equal(t, "drinks", s.query)
	assert.Equal(t, MaxSearchLimit, s.n)
	assert.Contains(t, out, "likes green tea")

	_, err = tool.Execute(context.Background(), json.RawMessage(`{"query":"drinks"}`))
	require.NoError(t, err)
	assert.Equal(t, DefaultSearchLimit, s.n)
}

func TestSearchMemory_NoMatches(t *testing.T) {
	out, err := SearchMemory(&fakeSearcher{}).Execute(context.Background(), json.RawMessage(`{"query":"x"}`))
	require.NoError(t, err)
	assert.Equal(t, "No matching memory found.", out)
}

func TestSearchMemory_Errors(t *testing.T) {
	tool := SearchMemory(&fakeSearcher{err: errors.New("store closed")})

	_, err := tool.Execute(context.Background(), json.RawMessage(`{"query":"  "}`))
	require.Error(t, err)

	_, err = tool.Execute(context.Background(), json.RawMessage(`not json`))
	require.Error(t, err)

	_, err = tool.Execute(context.Background(), json.RawMessage(`{"query":"x"}`))
	require.EqualError(t, err, "store closed")
}
