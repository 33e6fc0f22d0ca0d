package services

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/zenitsu0509/Employee-NLQ/pkg/apperrors"
	"github.com/zenitsu0509/Employee-NLQ/pkg/cache"
	"github.com/zenitsu0509/Employee-NLQ/pkg/datasource"
	"github.com/zenitsu0509/Employee-NLQ/pkg/llm"
	"github.com/zenitsu0509/Employee-NLQ/pkg/logging"
	"github.com/zenitsu0509/Employee-NLQ/pkg/models"
	"github.com/zenitsu0509/Employee-NLQ/pkg/nl2sql"
	enginesql "github.com/zenitsu0509/Employee-NLQ/pkg/sql"
	"github.com/zenitsu0509/Employee-NLQ/pkg/vectorstore"
)

// QueryConfig tunes query execution bounds for an engine.
type QueryConfig struct {
	DefaultTopK     int
	MaxTopK         int
	SQLRowLimit     int
	SQLTimeout      time.Duration
	MaxQueryChars   int
	CacheTTL        time.Duration
	EmbedModel      string
	MaxPreviewChars int
}

// Engine is the per-connection aggregate: one discovered schema, one
// vector index partition, one job tracker, one cache namespace and one
// history. Safe for concurrent use.
type Engine struct {
	adapter    datasource.Adapter
	discovery  *SchemaDiscoveryService
	translator nl2sql.Translator
	classifier *Classifier
	client     llm.LLMClient
	store      vectorstore.Store
	ingestion  *IngestionService
	tracker    *JobTracker
	cache      cache.ResponseCache
	history    *QueryHistory
	cfg        QueryConfig
	logger     *zap.Logger

	mu     sync.RWMutex
	schema *models.SchemaModel
}

// EngineDeps carries everything an Engine needs.
type EngineDeps struct {
	Adapter    datasource.Adapter
	Discovery  *SchemaDiscoveryService
	Translator nl2sql.Translator
	Client     llm.LLMClient
	Store      vectorstore.Store
	Ingestion  *IngestionService
	Tracker    *JobTracker
	Cache      cache.ResponseCache
	History    *QueryHistory
	Config     QueryConfig
	Logger     *zap.Logger
}

// NewEngine runs initial schema discovery and assembles the aggregate.
func NewEngine(ctx context.Context, deps EngineDeps) (*Engine, error) {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	engine := &Engine{
		adapter:    deps.Adapter,
		discovery:  deps.Discovery,
		translator: deps.Translator,
		classifier: NewClassifier(),
		client:     deps.Client,
		store:      deps.Store,
		ingestion:  deps.Ingestion,
		tracker:    deps.Tracker,
		cache:      deps.Cache,
		history:    deps.History,
		cfg:        deps.Config,
		logger:     logger.Named("engine"),
	}

	schema, err := deps.Discovery.Discover(ctx, deps.Adapter)
	if err != nil {
		return nil, err
	}
	engine.schema = schema

	return engine, nil
}

// Identity returns the engine's normalized connection identity.
func (e *Engine) Identity() datasource.Identity {
	return e.adapter.Identity()
}

// Schema returns the current schema snapshot.
func (e *Engine) Schema() *models.SchemaModel {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.schema
}

// RefreshSchema re-runs discovery and swaps in the new model.
func (e *Engine) RefreshSchema(ctx context.Context) (*models.SchemaModel, error) {
	schema, err := e.discovery.Discover(ctx, e.adapter)
	if err != nil {
		return nil, err
	}

	e.mu.Lock()
	e.schema = schema
	e.mu.Unlock()

	return schema, nil
}

// Ingest queues a document batch.
func (e *Engine) Ingest(ctx context.Context, files []FileInput) (models.IngestionJob, error) {
	return e.ingestion.Ingest(ctx, files)
}

// Job returns one job snapshot.
func (e *Engine) Job(id string) (models.IngestionJob, error) {
	return e.tracker.Get(id)
}

// Jobs returns all job snapshots.
func (e *Engine) Jobs() []models.IngestionJob {
	return e.tracker.List()
}

// History returns the query history, most recent first.
func (e *Engine) History() []models.QueryHistoryRecord {
	return e.history.List()
}

// Close releases the engine's database connection. The cache is shared
// across engines and stays open.
func (e *Engine) Close() error {
	if e.adapter == nil {
		return nil
	}
	return e.adapter.Close()
}

// Query classifies and executes a natural language query.
func (e *Engine) Query(ctx context.Context, query string, topK int) (*models.QueryResult, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, apperrors.ErrEmptyQuery
	}
	if e.cfg.MaxQueryChars > 0 && len(query) > e.cfg.MaxQueryChars {
		return nil, fmt.Errorf("%w: %d characters (max %d)", apperrors.ErrQueryTooLong, len(query), e.cfg.MaxQueryChars)
	}
	if check := enginesql.CheckInputForInjection(query); check != nil {
		e.logger.Warn("suspicious query rejected",
			zap.String("query", logging.TruncateQuery(query)),
			zap.String("fingerprint", check.Fingerprint))
		return nil, apperrors.ErrSuspiciousInput
	}

	topK = e.clampTopK(topK)
	start := time.Now()

	key := cache.Fingerprint(e.adapter.Identity(), query, map[string]string{
		"top_k":     strconv.Itoa(topK),
		"row_limit": strconv.Itoa(e.cfg.SQLRowLimit),
	})

	if cached, ok, err := e.cache.Get(ctx, key); err != nil {
		e.logger.Warn("cache read failed", zap.Error(err))
	} else if ok {
		hit := *cached
		hit.Metrics.CacheHit = true
		hit.Metrics.TotalMs = float64(time.Since(start).Microseconds()) / 1000
		e.history.Add(query, hit.Type)
		return &hit, nil
	}

	classification := e.classifier.Classify(query, e.Schema())
	result := &models.QueryResult{
		Query: query,
		Type:  classification.Type,
		Rows:  []map[string]any{},
	}
	result.Metrics.Warnings = classification.Warnings

	if classification.Type == models.QueryTypeSQL || classification.Type == models.QueryTypeHybrid {
		e.runSQLPath(ctx, query, result)
	}
	if classification.Type == models.QueryTypeDocument || classification.Type == models.QueryTypeHybrid {
		e.runDocumentPath(ctx, query, topK, result)
	}

	result.Type = finalType(classification.Type, result)
	result.Metrics.RowCount = len(result.Rows)
	result.Metrics.SourceCount = len(result.Sources)
	if size, err := e.store.Count(ctx); err == nil {
		result.Metrics.IndexSize = size
	}
	result.Metrics.TotalMs = float64(time.Since(start).Microseconds()) / 1000

	if err := e.cache.Set(ctx, key, result, e.cfg.CacheTTL); err != nil {
		e.logger.Warn("cache write failed", zap.Error(err))
	}
	e.history.Add(query, result.Type)

	e.logger.Info("query processed",
		zap.String("type", string(result.Type)),
		zap.Int("rows", result.Metrics.RowCount),
		zap.Int("sources", result.Metrics.SourceCount),
		zap.Float64("total_ms", result.Metrics.TotalMs))

	return result, nil
}

// runSQLPath translates, validates and executes. Failures degrade to an
// empty row set with a warning so the document half of a hybrid query
// still answers.
func (e *Engine) runSQLPath(ctx context.Context, query string, result *models.QueryResult) {
	start := time.Now()
	defer func() {
		result.Metrics.SQLMs = float64(time.Since(start).Microseconds()) / 1000
	}()

	candidate, err := e.translator.Translate(ctx, query, e.Schema())
	if err != nil {
		if errors.Is(err, nl2sql.ErrCannotTranslate) {
			result.Metrics.Warnings = append(result.Metrics.Warnings, "sql_translation_declined")
		} else {
			result.Metrics.Warnings = append(result.Metrics.Warnings, "sql_translation_failed")
			e.logger.Warn("translation failed", zap.Error(err))
		}
		return
	}

	validated, err := enginesql.ValidateReadOnly(candidate)
	if err != nil {
		result.Metrics.Warnings = append(result.Metrics.Warnings, "sql_rejected_not_read_only")
		e.logger.Warn("generated sql rejected",
			zap.String("sql", logging.TruncateQuery(candidate)),
			zap.Error(err))
		return
	}

	execCtx := ctx
	if e.cfg.SQLTimeout > 0 {
		var cancel context.CancelFunc
		execCtx, cancel = context.WithTimeout(ctx, e.cfg.SQLTimeout)
		defer cancel()
	}

	execution, err := e.adapter.ExecuteQuery(execCtx, validated, e.cfg.SQLRowLimit)
	if err != nil {
		result.Metrics.Warnings = append(result.Metrics.Warnings, "sql_execution_failed")
		e.logger.Warn("sql execution failed", zap.Error(err))
		return
	}

	result.SQL = validated
	result.Rows = execution.Rows
}

// runDocumentPath embeds the query and searches the vector index. An
// empty index yields no sources without error.
func (e *Engine) runDocumentPath(ctx context.Context, query string, topK int, result *models.QueryResult) {
	start := time.Now()
	defer func() {
		result.Metrics.DocumentMs = float64(time.Since(start).Microseconds()) / 1000
	}()

	size, err := e.store.Count(ctx)
	if err != nil {
		result.Metrics.Warnings = append(result.Metrics.Warnings, "document_search_failed")
		e.logger.Warn("vector store unavailable", zap.Error(err))
		return
	}
	if size == 0 {
		return
	}

	embedding, err := e.client.CreateEmbedding(ctx, query, e.cfg.EmbedModel)
	if err != nil {
		result.Metrics.Warnings = append(result.Metrics.Warnings, "query_embedding_failed")
		e.logger.Warn("query embedding failed", zap.Error(err))
		return
	}

	matches, err := e.store.Search(ctx, embedding, topK, nil)
	if err != nil {
		result.Metrics.Warnings = append(result.Metrics.Warnings, "document_search_failed")
		e.logger.Warn("vector search failed", zap.Error(err))
		return
	}

	for _, match := range matches {
		result.Sources = append(result.Sources, models.DocumentSource{
			ChunkID:    match.Chunk.ID,
			DocumentID: match.Chunk.DocumentID,
			Ordinal:    match.Chunk.Ordinal,
			Content:    truncatePreview(match.Chunk.Content, e.cfg.MaxPreviewChars),
			Score:      match.Score,
			Metadata:   match.Chunk.Metadata,
		})
	}
}

// finalType downgrades the classification to the path that actually
// produced results.
func finalType(classified models.QueryType, result *models.QueryResult) models.QueryType {
	hasRows := len(result.Rows) > 0
	hasSources := len(result.Sources) > 0

	switch {
	case hasRows && hasSources:
		return models.QueryTypeHybrid
	case hasRows:
		return models.QueryTypeSQL
	case hasSources:
		return models.QueryTypeDocument
	default:
		return classified
	}
}

func (e *Engine) clampTopK(topK int) int {
	if topK <= 0 {
		topK = e.cfg.DefaultTopK
	}
	if e.cfg.MaxTopK > 0 && topK > e.cfg.MaxTopK {
		topK = e.cfg.MaxTopK
	}
	return topK
}

// truncatePreview bounds a source preview, backing the cut up to a rune
// boundary so multibyte content stays valid UTF-8.
func truncatePreview(content string, maxChars int) string {
	if maxChars <= 0 || len(content) <= maxChars {
		return content
	}
	cut := maxChars
	for cut > 0 && !utf8.RuneStart(content[cut]) {
		cut--
	}
	return content[:cut] + "..."
}
