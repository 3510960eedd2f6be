// Package chromem implements memory.CollectionStore on chromem-go, a pure Go
// embedded vector database persisted as gob files in a directory.
package chromem

import (
	"bytes"
	"context"
	"encoding/gob"
	"errors"
	"fmt"
	"runtime"
	"sort"

	chromem "github.com/philippgille/chromem-go"
	"github.com/rs/zerolog"

	"github.com/stitch-ai/stitch-go-sdk/memory"
)

// errNoEmbedding is returned if chromem ever tries to embed text itself.
// Every record and query arrives with its vector already computed.
var errNoEmbedding = errors.New("chromem: embeddings must be precomputed")

func precomputed(context.Context, string) ([]float32, error) {
	return nil, errNoEmbedding
}

// Store wraps a chromem DB.
type Store struct {
	db       *chromem.DB
	dir      string
	compress bool
	logger   zerolog.Logger
}

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the logger.
func WithLogger(logger zerolog.Logger) Option {
	return func(s *Store) {
		s.logger = logger.With().Str("component", "chromem").Logger()
	}
}

// WithCompression gzips the files chromem writes.
func WithCompression(compress bool) Option {
	return func(s *Store) {
		s.compress = compress
	}
}

// Open loads or creates a persistent store in dir. Failures wrap
// memory.ErrStorageOpen.
func Open(dir string, opts ...Option) (*Store, error) {
	s := newStore(dir, opts)
	if dir == "" {
		return nil, fmt.Errorf("%w: empty storage directory", memory.ErrStorageOpen)
	}

	// Load every collection persisted under dir
	db, err := chromem.NewPersistentDB(dir, s.compress)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", memory.ErrStorageOpen, dir, err)
	}
	s.db = db

	s.logger.Debug().Str("dir", dir).Int("collections", len(db.ListCollections())).Msg("opened store")
	return s, nil
}

// NewInMemory creates a store that is never written to disk.
func NewInMemory(opts ...Option) *Store {
	s := newStore("", opts)
	s.db = chromem.NewDB()
	return s
}

func newStore(dir string, opts []Option) *Store {
	s := &Store{dir: dir, logger: zerolog.Nop()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Dir returns the storage directory, or "" for an in-memory store.
func (s *Store) Dir() string {
	return s.dir
}

func (s *Store) collection(name string) *chromem.Collection {
	return s.db.GetCollection(name, precomputed)
}

// HasCollection reports whether the named collection exists.
func (s *Store) HasCollection(ctx context.Context, name string) (bool, error) {
	return s.collection(name) != nil, nil
}

// Count returns the number of records in a collection, 0 if it is missing.
func (s *Store) Count(name string) int {
	col := s.collection(name)
	if col == nil {
		return 0
	}
	return col.Count()
}

// Metadata returns the collection's metadata, or nil if it is missing.
func (s *Store) Metadata(name string) map[string]string {
	exported, err := s.export(name)
	if err != nil || exported == nil {
		return nil
	}
	return exported.Metadata
}

// exportedCollection mirrors the gob shape chromem's exporter writes.
type exportedCollection struct {
	Name      string
	Metadata  map[string]string
	Documents map[string]*chromem.Document
}

// export snapshots one collection. chromem has no "list documents" call, so
// this goes through its uncompressed gob exporter.
func (s *Store) export(name string) (*exportedCollection, error) {
	var buf bytes.Buffer
	if err := s.db.ExportToWriter(&buf, false, "", name); err != nil {
		return nil, err
	}
	var dump struct {
		Collections map[string]*exportedCollection
	}
	if err := gob.NewDecoder(&buf).Decode(&dump); err != nil {
		return nil, fmt.Errorf("decode export: %w", err)
	}
	return dump.Collections[name], nil
}

// Records returns all records of a collection ordered by ID.
func (s *Store) Records(ctx context.Context, name string) ([]memory.Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	exported, err := s.export(name)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", name, err)
	}
	if exported == nil {
		return nil, fmt.Errorf("read %s: collection not found", name)
	}

	// Documents come back as a map; sort for a stable backup order
	records := make([]memory.Record, 0, len(exported.Documents))
	for _, doc := range exported.Documents {
		records = append(records, toRecord(*doc))
	}
	sort.Slice(records, func(i, j int) bool { return records[i].ID < records[j].ID })
	return records, nil
}

// DeleteCollection removes the collection and its files.
func (s *Store) DeleteCollection(ctx context.Context, name string) error {
	if err := s.db.DeleteCollection(name); err != nil {
		return err
	}
	s.logger.Debug().Str("collection", name).Msg("deleted collection")
	return nil
}

// CreateCollection creates an empty collection, replacing any with the same name.
func (s *Store) CreateCollection(ctx context.Context, name string, metadata map[string]string) error {
	if _, err := s.db.CreateCollection(name, metadata, precomputed); err != nil {
		return err
	}
	s.logger.Debug().Str("collection", name).Msg("created collection")
	return nil
}

// Add writes records to an existing collection.
func (s *Store) Add(ctx context.Context, name string, records []memory.Record) error {
	if len(records) == 0 {
		return nil
	}
	col := s.collection(name)
	if col == nil {
		return fmt.Errorf("add to %s: collection not found", name)
	}

	// Convert records to chromem documents
	docs := make([]chromem.Document, len(records))
	for i, r := range records {
		if len(r.Embedding) == 0 {
			return fmt.Errorf("add to %s: record %s has no embedding", name, r.ID)
		}
		docs[i] = chromem.Document{
			ID:        r.ID,
			Content:   r.Text,
			Embedding: r.Embedding,
			Metadata:  r.Metadata,
		}
	}

	// Insert in parallel; chromem persists each document as it goes
	if err := col.AddDocuments(ctx, docs, runtime.NumCPU()); err != nil {
		return fmt.Errorf("add to %s: %w", name, err)
	}
	s.logger.Debug().Str("collection", name).Int("records", len(docs)).Msg("added records")
	return nil
}

// Query returns up to n nearest records. chromem rejects n larger than the
// collection, so n is clamped.
func (s *Store) Query(ctx context.Context, name string, vector []float32, n int) ([]memory.Match, error) {
	col := s.collection(name)
	if col == nil {
		return nil, fmt.Errorf("query %s: collection not found", name)
	}
	if count := col.Count(); n > count {
		n = count
	}
	if n <= 0 {
		return nil, nil
	}

	// No metadata or content filters
	results, err := col.QueryEmbedding(ctx, vector, n, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", name, err)
	}

	matches := make([]memory.Match, len(results))
	for i, r := range results {
		matches[i] = memory.Match{
			Record: memory.Record{
				ID:        r.ID,
				Text:      r.Content,
				Embedding: r.Embedding,
				Metadata:  r.Metadata,
			},
			Similarity: r.Similarity,
		}
	}
	return matches, nil
}

// Close is a no-op. chromem writes through on every change.
func (s *Store) Close() error {
	return nil
}

func toRecord(doc chromem.Document) memory.Record {
	return memory.Record{
		ID:        doc.ID,
		Text:      doc.Content,
		Embedding: doc.Embedding,
		Metadata:  doc.Metadata,
	}
}
