// Package embedder provides interfaces and implementations for text embedding.
package embedder

import "context"

// Mode distinguishes indexing-time and query-time embedding. Retrieval-tuned
// models embed documents and queries into slightly different regions of the
// vector space, so the caller must say which side of the search it is on.
type Mode int

const (
	// ModeDocument embeds text that will be stored in the index.
	ModeDocument Mode = iota

	// ModeQuery embeds a search query.
	ModeQuery
)

// Embedder defines the interface for text embedding services.
type Embedder interface {
	// Embed generates an embedding vector for a single text input.
	Embed(ctx context.Context, text string, mode Mode) ([]float32, error)

	// EmbedBatch generates embedding vectors for multiple text inputs.
	// Returns a slice of embeddings in the same order as the input texts.
	EmbedBatch(ctx context.Context, texts []string, mode Mode) ([][]float32, error)

	// Dimension returns the dimensionality of the embedding vectors.
	Dimension() int

	// ModelName returns the name of the embedding model being used.
	ModelName() string
}
