package vectorstore

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"sync"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/zenitsu0509/Employee-NLQ/pkg/models"
)

// PgVectorStore persists chunks in PostgreSQL using the pgvector
// extension. The table is created lazily on first use so connecting to a
// database without ingesting anything leaves no footprint.
type PgVectorStore struct {
	pool      *pgxpool.Pool
	table     string
	dimension int
	logger    *zap.Logger

	initOnce sync.Once
	initErr  error
}

// NewPgVectorStore creates a pgvector-backed Store on an existing pool.
func NewPgVectorStore(pool *pgxpool.Pool, table string, dimension int, logger *zap.Logger) *PgVectorStore {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PgVectorStore{
		pool:      pool,
		table:     table,
		dimension: dimension,
		logger:    logger.Named("vectorstore"),
	}
}

var _ Store = (*PgVectorStore)(nil)

func (s *PgVectorStore) ensureTable(ctx context.Context) error {
	s.initOnce.Do(func() {
		tableIdent := pgx.Identifier{s.table}.Sanitize()
		statements := []string{
			"CREATE EXTENSION IF NOT EXISTS vector",
			fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
				id text PRIMARY KEY,
				document_id text NOT NULL,
				job_id text NOT NULL,
				ordinal int NOT NULL,
				content text NOT NULL,
				metadata jsonb,
				created_at timestamptz NOT NULL DEFAULT now(),
				embedding vector(%d) NOT NULL
			)`, tableIdent, s.dimension),
		}
		for _, stmt := range statements {
			if _, err := s.pool.Exec(ctx, stmt); err != nil {
				s.initErr = fmt.Errorf("initialize vector table: %w", err)
				return
			}
		}
		s.logger.Info("vector table ready",
			zap.String("table", s.table),
			zap.Int("dimension", s.dimension))
	})
	return s.initErr
}

// Upsert implements Store.
func (s *PgVectorStore) Upsert(ctx context.Context, chunks []models.DocumentChunk) error {
	if len(chunks) == 0 {
		return nil
	}
	if err := s.ensureTable(ctx); err != nil {
		return err
	}

	tableIdent := pgx.Identifier{s.table}.Sanitize()
	query := fmt.Sprintf(`INSERT INTO %s
		(id, document_id, job_id, ordinal, content, metadata, created_at, embedding)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8::vector)
		ON CONFLICT (id) DO UPDATE SET
			content = EXCLUDED.content,
			metadata = EXCLUDED.metadata,
			embedding = EXCLUDED.embedding`, tableIdent)

	batch := &pgx.Batch{}
	for _, chunk := range chunks {
		if len(chunk.Embedding) != s.dimension {
			return fmt.Errorf("%w: chunk %s has %d dimensions, store expects %d",
				ErrDimensionMismatch, chunk.ID, len(chunk.Embedding), s.dimension)
		}

		metadata, err := json.Marshal(chunk.Metadata)
		if err != nil {
			return fmt.Errorf("marshal chunk metadata: %w", err)
		}

		batch.Queue(query,
			chunk.ID, chunk.DocumentID, chunk.JobID, chunk.Ordinal,
			chunk.Content, metadata, chunk.CreatedAt, vectorLiteral(chunk.Embedding))
	}

	results := s.pool.SendBatch(ctx, batch)
	defer results.Close()

	for range chunks {
		if _, err := results.Exec(); err != nil {
			return fmt.Errorf("upsert chunk: %w", err)
		}
	}

	return nil
}

// Search implements Store. Ordering uses the cosine distance operator;
// ties break by insertion time, oldest first. Filters push down to the
// query as document_id equality and jsonb containment.
func (s *PgVectorStore) Search(ctx context.Context, query []float32, topK int, filter *Filter) ([]SearchResult, error) {
	if len(query) != s.dimension {
		return nil, fmt.Errorf("%w: query has %d dimensions, store expects %d",
			ErrDimensionMismatch, len(query), s.dimension)
	}
	if topK <= 0 {
		return []SearchResult{}, nil
	}
	if err := s.ensureTable(ctx); err != nil {
		return nil, err
	}

	args := []any{vectorLiteral(query)}
	var conditions []string
	if filter != nil {
		if filter.DocumentID != "" {
			args = append(args, filter.DocumentID)
			conditions = append(conditions, fmt.Sprintf("document_id = $%d", len(args)))
		}
		if len(filter.Metadata) > 0 {
			encoded, err := json.Marshal(filter.Metadata)
			if err != nil {
				return nil, fmt.Errorf("marshal search filter: %w", err)
			}
			args = append(args, encoded)
			conditions = append(conditions, fmt.Sprintf("metadata @> $%d::jsonb", len(args)))
		}
	}
	where := ""
	if len(conditions) > 0 {
		where = " WHERE " + strings.Join(conditions, " AND ")
	}
	args = append(args, topK)

	tableIdent := pgx.Identifier{s.table}.Sanitize()
	sqlQuery := fmt.Sprintf(`SELECT
			id, document_id, job_id, ordinal, content, metadata, created_at,
			1 - (embedding <=> $1::vector) / 2 AS score
		FROM %s%s
		ORDER BY embedding <=> $1::vector, created_at, id
		LIMIT $%d`, tableIdent, where, len(args))

	rows, err := s.pool.Query(ctx, sqlQuery, args...)
	if err != nil {
		return nil, fmt.Errorf("vector search: %w", err)
	}
	defer rows.Close()

	results := make([]SearchResult, 0, topK)
	for rows.Next() {
		var (
			chunk    models.DocumentChunk
			metadata []byte
			score    float64
		)
		if err := rows.Scan(&chunk.ID, &chunk.DocumentID, &chunk.JobID, &chunk.Ordinal,
			&chunk.Content, &metadata, &chunk.CreatedAt, &score); err != nil {
			return nil, fmt.Errorf("scan search result: %w", err)
		}
		if len(metadata) > 0 {
			if err := json.Unmarshal(metadata, &chunk.Metadata); err != nil {
				return nil, fmt.Errorf("unmarshal chunk metadata: %w", err)
			}
		}
		results = append(results, SearchResult{Chunk: chunk, Score: score})
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate search results: %w", err)
	}

	return results, nil
}

// Count implements Store.
func (s *PgVectorStore) Count(ctx context.Context) (int, error) {
	if err := s.ensureTable(ctx); err != nil {
		return 0, err
	}

	var count int
	query := fmt.Sprintf("SELECT COUNT(*) FROM %s", pgx.Identifier{s.table}.Sanitize())
	if err := s.pool.QueryRow(ctx, query).Scan(&count); err != nil {
		return 0, fmt.Errorf("count chunks: %w", err)
	}
	return count, nil
}

// vectorLiteral renders a vector in pgvector's text input format.
func vectorLiteral(v []float32) string {
	var b strings.Builder
	b.WriteByte('[')
	for i, x := range v {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(strconv.FormatFloat(float64(x), 'f', -1, 32))
	}
	b.WriteByte(']')
	return b.String()
}
