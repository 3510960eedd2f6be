package memory_test

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"github.com/stitch-ai/stitch-go-sdk/core"
	"github.com/stitch-ai/stitch-go-sdk/memory"
	"github.com/stitch-ai/stitch-go-sdk/memory/chunker"
	"github.com/stitch-ai/stitch-go-sdk/memory/embedder/mock"
	"github.com/stitch-ai/stitch-go-sdk/memory/store/chromem"
)

func TestRetriever_FindsExactChunk(t *testing.T) {
	ctx := context.Background()
	store := chromem.NewInMemory()
	emb := mock.New()

	syncer := memory.NewSynchronizer(store, emb, t.TempDir(),
		memory.WithChunkOptions(chunker.Options{Size: 30, Overlap: 0}))
	episodic := "The user likes green tea. The user lives in Lisbon. The user owns a cat."
	if _, err := syncer.Sync(ctx, core.MemoryPayload{Episodic: episodic}); err != nil {
		t.Fatalf("Sync: %v", err)
	}

	records, _ := store.Records(ctx, memory.ShortTermCollection)
	if len(records) < 2 {
		t.Fatalf("want several chunks, got %d", len(records))
	}
	target := records[1].Text

	// The mock embedder maps equal text to equal vectors, so querying with a
	// chunk's exact text must rank that chunk first.
	r := memory.NewRetriever(store, emb, zerolog.Nop())
	matches, err := r.Retrieve(ctx, target, 2)
	if err != nil {
		t.Fatalf("Retrieve: %v", err)
	}
	if len(matches) != 2 {
		t.Fatalf("got %d matches, want 2", len(matches))
	}
	if matches[0].Text != target {
		t.Errorf("top match = %q, want %q", matches[0].Text, target)
	}
}

func TestRetriever_NoCollection(t *testing.T) {
	r := memory.NewRetriever(chromem.NewInMemory(), mock.New(), zerolog.Nop())
	matches, err := r.Retrieve(context.Background(), "anything", 3)
	if err != nil {
		t.Fatalf("Retrieve: %v", err)
	}
	if len(matches) != 0 {
		t.Errorf("got %d matches from a missing collection", len(matches))
	}
}

func TestRetriever_BlankQuery(t *testing.T) {
	r := memory.NewRetriever(chromem.NewInMemory(), failingEmbedder{}, zerolog.Nop())
	matches, err := r.Retrieve(context.Background(), "   ", 3)
	if err != nil || matches != nil {
		t.Errorf("blank query: matches=%v err=%v", matches, err)
	}
}

func TestFormat(t *testing.T) {
	if got := memory.Format(nil, 0); got != "" {
		t.Errorf("Format(nil) = %q", got)
	}

	matches := []memory.Match{
		{Record: memory.Record{Text: "likes tea", Metadata: map[string]string{"category": "episodic"}}, Similarity: 0.91},
		{Record: memory.Record{Text: strings.Repeat("long ", 100)}, Similarity: 0.5},
	}
	got := memory.Format(matches, 200)

	if !strings.HasPrefix(got, "=== RELEVANT MEMORY ===") {
		t.Errorf("missing header: %q", got)
	}
	if !strings.Contains(got, "1. [episodic 0.91] likes tea") {
		t.Errorf("first entry not rendered: %q", got)
	}
	if !strings.Contains(got, "2. [memory 0.50] ") || !strings.Contains(got, "...") {
		t.Errorf("second entry not truncated: %q", got)
	}
}

func TestSaveJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "rag.json")
	if err := memory.SaveJSON(path, []byte(`{"data":{"episodic":"hi"}}`)); err != nil {
		t.Fatalf("SaveJSON: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "\n  \"data\": {") {
		t.Errorf("output not indented: %s", data)
	}

	if err := memory.SaveJSON(path, []byte("not json")); err == nil {
		t.Error("expected error for invalid JSON")
	}
}
