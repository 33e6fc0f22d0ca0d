package models

import "time"

// DocumentChunk is a bounded span of extracted document text stored with
// its embedding. Chunks are immutable once created; Ordinal is the
// zero-based position within the source document, preserved regardless of
// embedding completion order.
type DocumentChunk struct {
	ID         string            `json:"id"`
	DocumentID string            `json:"document_id"`
	JobID      string            `json:"job_id"`
	Ordinal    int               `json:"ordinal"`
	Content    string            `json:"content"`
	Embedding  []float32         `json:"-"`
	Metadata   map[string]string `json:"metadata,omitempty"`
	CreatedAt  time.Time         `json:"created_at"`
}
