package catalog

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/vendormatch/recommender/internal/embedder"
	"github.com/vendormatch/recommender/internal/vectorstore"
)

// upsertBatchSize bounds how many documents are embedded and upserted per
// round trip.
const upsertBatchSize = 32

// Indexer embeds vendor documents and writes them to the store.
type Indexer struct {
	store    vectorstore.Store
	embedder embedder.Embedder
	logger   *slog.Logger
}

// IndexOptions controls an indexing run.
type IndexOptions struct {
	// Dedup skips vendors whose ids are already persisted.
	Dedup bool

	// Reset drops the collection before indexing, rebuilding it from scratch.
	Reset bool
}

// IndexStats summarizes an indexing run.
type IndexStats struct {
	Loaded   int
	Indexed  int
	Skipped  int // already present (dedup)
	TooSmall int // combined text below the minimum length
}

// NewIndexer creates a vendor indexer.
func NewIndexer(store vectorstore.Store, embed embedder.Embedder, logger *slog.Logger) *Indexer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Indexer{store: store, embedder: embed, logger: logger}
}

// Index loads the vendor file and upserts every indexable vendor. With Dedup
// set, vendors already present in the store are skipped so repeated runs only
// add new records. Reset drops the collection first for a clean rebuild.
func (ix *Indexer) Index(ctx context.Context, path string, opts IndexOptions) (IndexStats, error) {
	var stats IndexStats

	vendors, err := Load(path)
	if err != nil {
		return stats, err
	}
	stats.Loaded = len(vendors)
	ix.logger.Info("loaded vendor records", "path", path, "count", len(vendors))

	if opts.Reset {
		ix.logger.Info("resetting collection before indexing")
		if err := ix.store.DeleteCollection(ctx); err != nil {
			return stats, fmt.Errorf("resetting collection: %w", err)
		}
	}

	if err := ix.store.EnsureCollection(ctx, ix.embedder.Dimension()); err != nil {
		return stats, fmt.Errorf("ensuring collection: %w", err)
	}

	existing := map[string]struct{}{}
	if opts.Dedup && !opts.Reset {
		// A freshly reset collection has nothing to dedup against.
		existing, err = ix.store.ListIDs(ctx)
		if err != nil {
			return stats, fmt.Errorf("listing persisted ids: %w", err)
		}
	}

	var batch []vectorstore.Document
	for i, vendor := range vendors {
		if !Indexable(vendor) {
			ix.logger.Warn("skipping vendor with insufficient data", "id", vendor.ID(i))
			stats.TooSmall++
			continue
		}

		doc := Document(vendor, i)
		if _, ok := existing[doc.ID]; ok {
			stats.Skipped++
			continue
		}

		batch = append(batch, doc)
		if len(batch) >= upsertBatchSize {
			if err := ix.flush(ctx, batch); err != nil {
				return stats, err
			}
			stats.Indexed += len(batch)
			batch = batch[:0]
		}
	}

	if len(batch) > 0 {
		if err := ix.flush(ctx, batch); err != nil {
			return stats, err
		}
		stats.Indexed += len(batch)
	}

	ix.logger.Info("indexing complete",
		"indexed", stats.Indexed,
		"skipped", stats.Skipped,
		"too_small", stats.TooSmall,
	)

	return stats, nil
}

// flush embeds one batch of documents and upserts it.
func (ix *Indexer) flush(ctx context.Context, docs []vectorstore.Document) error {
	texts := make([]string, len(docs))
	for i, doc := range docs {
		texts[i] = doc.Text
	}

	vectors, err := ix.embedder.EmbedBatch(ctx, texts, embedder.ModeDocument)
	if err != nil {
		return fmt.Errorf("embedding batch: %w", err)
	}

	for i := range docs {
		docs[i].Vector = vectors[i]
	}

	if err := ix.store.Upsert(ctx, docs); err != nil {
		return fmt.Errorf("upserting batch: %w", err)
	}

	return nil
}
