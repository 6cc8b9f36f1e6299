// Package vectorstore provides interfaces and implementations for vendor similarity search.
package vectorstore

import (
	"context"
	"errors"
)

// ErrUnavailable indicates the backing store is missing or unreachable.
// Retrieval treats this as fatal for the run: there is no alternative source
// of candidates.
var ErrUnavailable = errors.New("vector store unavailable")

// Document is a vendor record prepared for indexing: a persisted identity, the
// combined text that was embedded, and a flat metadata mapping carried in the
// store payload. Empty metadata values mean the field is absent.
type Document struct {
	ID       string
	Text     string
	Metadata map[string]string
	Vector   []float32
}

// Match pairs a stored document with its raw distance to the query.
// Distance is the store's native metric where lower is closer.
type Match struct {
	DocID    string
	Metadata map[string]string
	Distance float64
}

// Store defines the interface for the vendor candidate store.
type Store interface {
	// EnsureCollection creates the backing collection if it does not exist.
	EnsureCollection(ctx context.Context, dimension int) error

	// DeleteCollection drops the backing collection and everything in it.
	// EnsureCollection recreates it on the next indexing run.
	DeleteCollection(ctx context.Context) error

	// Upsert inserts or updates pre-embedded documents.
	Upsert(ctx context.Context, docs []Document) error

	// Query embeds the query text and returns up to k nearest documents
	// ordered by ascending distance.
	Query(ctx context.Context, text string, k int) ([]Match, error)

	// ListIDs returns the set of persisted document ids, used to skip
	// already-indexed vendors during incremental indexing.
	ListIDs(ctx context.Context) (map[string]struct{}, error)
}
