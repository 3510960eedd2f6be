package memory

import (
	"context"
)

// ShortTermCollection is the collection every sync rebuilds.
const ShortTermCollection = "short_term"

// Memory categories, as stored in record metadata.
const (
	CategoryEpisodic  = "episodic"
	CategoryCharacter = "character"
)

// Record is one embedded chunk of pulled memory.
type Record struct {
	ID        string            `json:"id"`
	Text      string            `json:"text"`
	Embedding []float32         `json:"embedding,omitempty"`
	Metadata  map[string]string `json:"metadata,omitempty"`
}

// Category returns the record's category, or "" when unset.
func (r Record) Category() string {
	return r.Metadata["category"]
}

// Match is a record returned by a similarity query.
type Match struct {
	Record
	Similarity float32 `json:"similarity"`
}

// Embedder converts text to vectors.
// Implementations: mock (tests), onnx (local model), remote (Ollama, OpenAI),
// cache (decorator).
type Embedder interface {
	// Embed returns one vector per input, in input order.
	Embed(ctx context.Context, texts []string) ([][]float32, error)

	// Dimensions returns the vector size, or 0 when not known up front.
	Dimensions() int
}

// CollectionStore is the vector storage backend.
// Implementation: store/chromem.
type CollectionStore interface {
	HasCollection(ctx context.Context, name string) (bool, error)

	// Records returns every record of a collection, ordered by ID.
	Records(ctx context.Context, name string) ([]Record, error)

	// DeleteCollection removes a collection. Deleting a missing one is not an error.
	DeleteCollection(ctx context.Context, name string) error

	CreateCollection(ctx context.Context, name string, metadata map[string]string) error

	// Add inserts records. Embeddings must be set.
	Add(ctx context.Context, name string, records []Record) error

	// Query returns up to n records closest to vector, best first.
	Query(ctx context.Context, name string, vector []float32, n int) ([]Match, error)

	Close() error
}
