package models

// QueryType classifies how a natural-language query is answered.
type QueryType string

const (
	QueryTypeSQL      QueryType = "sql"
	QueryTypeDocument QueryType = "document"
	QueryTypeHybrid   QueryType = "hybrid"
)

// DocumentSource is one matched chunk attached to a query response.
type DocumentSource struct {
	ChunkID    string            `json:"chunk_id"`
	DocumentID string            `json:"document_id"`
	Ordinal    int               `json:"ordinal"`
	Content    string            `json:"content"`
	Score      float64           `json:"score"`
	Metadata   map[string]string `json:"metadata,omitempty"`
}

// QueryMetrics carries per-path timing and counts. Both sub-paths report
// even when they fail open, so callers can tell "no match" from a hidden
// failure via Warnings.
type QueryMetrics struct {
	TotalMs     float64  `json:"response_ms"`
	SQLMs       float64  `json:"sql_ms,omitempty"`
	DocumentMs  float64  `json:"document_ms,omitempty"`
	CacheHit    bool     `json:"cache_hit"`
	RowCount    int      `json:"row_count"`
	SourceCount int      `json:"source_count"`
	IndexSize   int      `json:"doc_index_size"`
	Warnings    []string `json:"warnings,omitempty"`
}

// QueryResult is the full response for one query. Structured rows and
// document sources are carried side by side, never fused into one table.
type QueryResult struct {
	Query   string           `json:"query"`
	Type    QueryType        `json:"query_type"`
	Rows    []map[string]any `json:"results"`
	Sources []DocumentSource `json:"sources,omitempty"`
	SQL     string           `json:"sql,omitempty"`
	Metrics QueryMetrics     `json:"metrics"`
}
