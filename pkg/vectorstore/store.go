// Package vectorstore stores document chunk embeddings and serves
// similarity search over them.
package vectorstore

import (
	"context"
	"fmt"

	"github.com/zenitsu0509/Employee-NLQ/pkg/models"
)

// ErrDimensionMismatch indicates a vector whose length differs from the
// store's configured dimension.
var ErrDimensionMismatch = fmt.Errorf("embedding dimension mismatch")

// SearchResult pairs a stored chunk with its similarity score in [0, 1]
// (1 means identical direction).
type SearchResult struct {
	Chunk models.DocumentChunk
	Score float64
}

// Filter narrows a search to one document and/or exact metadata values.
// A nil filter matches every chunk.
type Filter struct {
	DocumentID string
	Metadata   map[string]string
}

// Matches reports whether the chunk passes the filter.
func (f *Filter) Matches(chunk *models.DocumentChunk) bool {
	if f == nil {
		return true
	}
	if f.DocumentID != "" && chunk.DocumentID != f.DocumentID {
		return false
	}
	for k, v := range f.Metadata {
		if chunk.Metadata[k] != v {
			return false
		}
	}
	return true
}

// Store is the vector index shared by ingestion and query paths.
type Store interface {
	// Upsert inserts chunks, replacing any existing chunk with the same ID.
	Upsert(ctx context.Context, chunks []models.DocumentChunk) error

	// Search returns up to topK chunks most similar to the query vector,
	// ordered by descending score. Ties break by insertion order, oldest
	// first. An empty store returns an empty slice, never nil.
	Search(ctx context.Context, query []float32, topK int, filter *Filter) ([]SearchResult, error)

	// Count returns the number of stored chunks.
	Count(ctx context.Context) (int, error)
}
