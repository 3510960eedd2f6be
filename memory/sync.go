package memory

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/rs/zerolog"

	"github.com/stitch-ai/stitch-go-sdk/core"
	"github.com/stitch-ai/stitch-go-sdk/memory/chunker"
)

// SyncResult reports what a sync wrote.
type SyncResult struct {
	Episodic   int    // episodic records written
	Character  int    // character records written
	BackupPath string // empty when there was no previous collection
}

// Synchronizer rebuilds the short-term collection from a pulled payload.
type Synchronizer struct {
	store     CollectionStore
	embedder  Embedder
	backupDir string
	chunking  chunker.Options
	logger    zerolog.Logger
	now       func() time.Time
}

// SyncOption configures a Synchronizer.
type SyncOption func(*Synchronizer)

// WithChunkOptions overrides the chunk size and overlap.
func WithChunkOptions(opts chunker.Options) SyncOption {
	return func(s *Synchronizer) {
		s.chunking = opts
	}
}

// WithSyncLogger sets the logger.
func WithSyncLogger(logger zerolog.Logger) SyncOption {
	return func(s *Synchronizer) {
		s.logger = logger.With().Str("component", "sync").Logger()
	}
}

// WithClock replaces time.Now, for backup names and collection metadata.
func WithClock(now func() time.Time) SyncOption {
	return func(s *Synchronizer) {
		s.now = now
	}
}

// NewSynchronizer creates a Synchronizer. Backups go to backupDir, usually
// filepath.Join(storageDir, BackupDir).
func NewSynchronizer(store CollectionStore, embedder Embedder, backupDir string, opts ...SyncOption) *Synchronizer {
	s := &Synchronizer{
		store:     store,
		embedder:  embedder,
		backupDir: backupDir,
		chunking:  chunker.DefaultOptions(),
		logger:    zerolog.Nop(),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Sync replaces the short-term collection with the payload's content.
//
// Everything is embedded before the store is touched, so an embedding failure
// leaves the old collection in place. An existing collection is backed up
// before it is deleted; if the backup fails nothing is deleted.
func (s *Synchronizer) Sync(ctx context.Context, payload core.MemoryPayload) (*SyncResult, error) {
	episodic, err := s.embed(ctx, CategoryEpisodic, payload.Episodic)
	if err != nil {
		return nil, err
	}
	character, err := s.embed(ctx, CategoryCharacter, payload.Character)
	if err != nil {
		return nil, err
	}

	result := &SyncResult{Episodic: len(episodic), Character: len(character)}
	now := s.now()

	exists, err := s.store.HasCollection(ctx, ShortTermCollection)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrStorageOpen, err)
	}

	if exists {
		previous, err := s.store.Records(ctx, ShortTermCollection)
		if err != nil {
			return nil, fmt.Errorf("%w: read %s: %w", ErrBackupWrite, ShortTermCollection, err)
		}
		path, err := writeBackup(s.backupDir, ShortTermCollection, previous, now)
		if err != nil {
			return nil, err
		}
		result.BackupPath = path
		s.logger.Info().Str("path", path).Int("records", len(previous)).Msg("backed up collection")

		if err := s.store.DeleteCollection(ctx, ShortTermCollection); err != nil {
			return nil, fmt.Errorf("%w: delete %s: %w", ErrStorageWrite, ShortTermCollection, err)
		}
	}

	metadata := map[string]string{
		"source":    "stitch",
		"synced_at": now.UTC().Format(time.RFC3339),
	}
	if err := s.store.CreateCollection(ctx, ShortTermCollection, metadata); err != nil {
		return nil, fmt.Errorf("%w: create %s: %w", ErrStorageWrite, ShortTermCollection, err)
	}

	records := append(episodic, character...)
	if len(records) > 0 {
		if err := s.store.Add(ctx, ShortTermCollection, records); err != nil {
			return nil, fmt.Errorf("%w: add records: %w", ErrStorageWrite, err)
		}
	}

	s.logger.Info().
		Int("episodic", result.Episodic).
		Int("character", result.Character).
		Msg("rebuilt short-term memory")
	return result, nil
}

// embed chunks text and embeds all chunks in one batch.
func (s *Synchronizer) embed(ctx context.Context, category, text string) ([]Record, error) {
	chunks := chunker.Chunk(text, s.chunking)
	if len(chunks) == 0 {
		return nil, nil
	}

	vectors, err := s.embedder.Embed(ctx, chunks)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrEmbedding, category, err)
	}
	if len(vectors) != len(chunks) {
		return nil, fmt.Errorf("%w: %s: got %d vectors for %d chunks", ErrEmbedding, category, len(vectors), len(chunks))
	}

	records := make([]Record, len(chunks))
	for i, chunk := range chunks {
		records[i] = Record{
			ID:        fmt.Sprintf("%s-memory-%d", category, i),
			Text:      chunk,
			Embedding: vectors[i],
			Metadata: map[string]string{
				"category": category,
				"seq":      strconv.Itoa(i),
			},
		}
	}
	s.logger.Debug().Str("category", category).Int("chunks", len(chunks)).Msg("embedded")
	return records, nil
}
