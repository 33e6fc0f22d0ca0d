package services

import (
	"context"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/zenitsu0509/Employee-NLQ/pkg/apperrors"
	"github.com/zenitsu0509/Employee-NLQ/pkg/cache"
	"github.com/zenitsu0509/Employee-NLQ/pkg/datasource"
	"github.com/zenitsu0509/Employee-NLQ/pkg/llm"
	"github.com/zenitsu0509/Employee-NLQ/pkg/models"
	"github.com/zenitsu0509/Employee-NLQ/pkg/nl2sql"
	"github.com/zenitsu0509/Employee-NLQ/pkg/vectorstore"
)

type fakeTranslator struct {
	sql string
	err error

	calls int
}

func (f *fakeTranslator) Translate(ctx context.Context, question string, schema *models.SchemaModel) (string, error) {
	f.calls++
	if f.err != nil {
		return "", f.err
	}
	return f.sql, nil
}

type engineFixture struct {
	engine     *Engine
	adapter    *fakeAdapter
	translator *fakeTranslator
	store      *vectorstore.MemoryStore
	client     *llm.MockLLMClient
	cache      *cache.MemoryCache
}

func newEngineFixture(t *testing.T) *engineFixture {
	t.Helper()

	adapter := hrAdapter()
	translator := &fakeTranslator{sql: "SELECT d.name, AVG(e.salary) AS avg_salary FROM employees e JOIN departments d ON e.department_id = d.id GROUP BY d.name"}
	store := vectorstore.NewMemoryStore(4)
	client := embeddingMock(4)
	client.CreateEmbeddingFunc = func(ctx context.Context, input string, model string) ([]float32, error) {
		vec := make([]float32, 4)
		vec[0] = float32(len(input) % 7)
		vec[1] = 1
		return vec, nil
	}
	memCache := cache.NewMemoryCache(100, 0)
	t.Cleanup(func() { memCache.Close() })

	tracker := NewJobTracker()
	aliases, err := LoadAliases("")
	require.NoError(t, err)
	discovery := NewSchemaDiscoveryService(aliases, 5, time.Second, zap.NewNop())

	ingestion := NewIngestionService(NewDocumentReader(nil), NewChunker(200, 0, 2),
		client, store, tracker, IngestionConfig{Workers: 2, EmbedBatchSize: 4}, zap.NewNop())

	engine, err := NewEngine(context.Background(), EngineDeps{
		Adapter:    adapter,
		Discovery:  discovery,
		Translator: translator,
		Client:     client,
		Store:      store,
		Ingestion:  ingestion,
		Tracker:    tracker,
		Cache:      memCache,
		History:    NewQueryHistory(100),
		Config: QueryConfig{
			DefaultTopK:     10,
			MaxTopK:         50,
			SQLRowLimit:     100,
			SQLTimeout:      5 * time.Second,
			MaxQueryChars:   500,
			CacheTTL:        5 * time.Minute,
			MaxPreviewChars: 400,
		},
		Logger: zap.NewNop(),
	})
	require.NoError(t, err)

	return &engineFixture{
		engine:     engine,
		adapter:    adapter,
		translator: translator,
		store:      store,
		client:     client,
		cache:      memCache,
	}
}

func TestQueryAverageSalaryScenario(t *testing.T) {
	fx := newEngineFixture(t)
	fx.adapter.ExecuteQueryFunc = func(ctx context.Context, sqlQuery string, limit int) (*datasource.QueryExecutionResult, error) {
		return &datasource.QueryExecutionResult{
			Rows: []map[string]any{
				{"name": "Engineering", "avg_salary": 95000.0},
				{"name": "Sales", "avg_salary": 70000.0},
			},
			RowCount: 2,
		}, nil
	}

	result, err := fx.engine.Query(context.Background(), "What is the average salary by department?", 0)
	require.NoError(t, err)

	assert.Equal(t, models.QueryTypeSQL, result.Type)
	assert.Len(t, result.Rows, 2)
	assert.Empty(t, result.Sources)
	assert.Contains(t, result.SQL, "AVG")
	assert.False(t, result.Metrics.CacheHit)
	assert.Equal(t, 2, result.Metrics.RowCount)
	assert.Equal(t, 1, fx.translator.calls)

	// The bounded executor received the validated SQL.
	require.Len(t, fx.adapter.ExecuteQueryCalls, 1)
	assert.NotContains(t, fx.adapter.ExecuteQueryCalls[0], ";")
}

func TestQueryDocumentScenario(t *testing.T) {
	fx := newEngineFixture(t)

	job, err := fx.engine.Ingest(context.Background(), []FileInput{
		{Name: "jane-resume.txt", Content: []byte("Skills: Python, AWS, Terraform. Experience deploying cloud services.")},
	})
	require.NoError(t, err)
	waitForJob(t, fx.engine.tracker, job.ID)

	result, err := fx.engine.Query(context.Background(), "Which resumes mention cloud skills?", 5)
	require.NoError(t, err)

	assert.Equal(t, models.QueryTypeDocument, result.Type)
	assert.NotEmpty(t, result.Sources)
	assert.Equal(t, "jane-resume.txt", result.Sources[0].DocumentID)
	assert.Greater(t, result.Metrics.IndexSize, 0)
}

func TestQueryEmptyRejected(t *testing.T) {
	fx := newEngineFixture(t)

	_, err := fx.engine.Query(context.Background(), "   ", 10)
	assert.ErrorIs(t, err, apperrors.ErrEmptyQuery)

	// Nothing cached, nothing in history.
	assert.Empty(t, fx.engine.History())
}

func TestQueryTooLongRejected(t *testing.T) {
	fx := newEngineFixture(t)

	_, err := fx.engine.Query(context.Background(), strings.Repeat("a ", 300), 10)
	assert.ErrorIs(t, err, apperrors.ErrQueryTooLong)
}

func TestQueryInjectionRejected(t *testing.T) {
	fx := newEngineFixture(t)

	_, err := fx.engine.Query(context.Background(), "employees' OR 1=1 --", 10)
	assert.ErrorIs(t, err, apperrors.ErrSuspiciousInput)
	assert.Empty(t, fx.engine.History())
}

func TestQueryCacheHitOnRepeat(t *testing.T) {
	fx := newEngineFixture(t)
	fx.adapter.ExecuteQueryFunc = func(ctx context.Context, sqlQuery string, limit int) (*datasource.QueryExecutionResult, error) {
		return &datasource.QueryExecutionResult{Rows: []map[string]any{{"count": 42}}, RowCount: 1}, nil
	}

	first, err := fx.engine.Query(context.Background(), "How many employees do we have?", 10)
	require.NoError(t, err)
	assert.False(t, first.Metrics.CacheHit)

	second, err := fx.engine.Query(context.Background(), "how   many employees do we HAVE?", 10)
	require.NoError(t, err)
	assert.True(t, second.Metrics.CacheHit)
	assert.Equal(t, first.Rows, second.Rows)

	// Translator only ran for the first request.
	assert.Equal(t, 1, fx.translator.calls)

	// Both requests land in history.
	assert.Len(t, fx.engine.History(), 2)
}

func TestQuerySQLFailureDegradesHybrid(t *testing.T) {
	fx := newEngineFixture(t)
	fx.translator.err = nl2sql.ErrCannotTranslate

	job, err := fx.engine.Ingest(context.Background(), []FileInput{
		{Name: "policy.txt", Content: []byte("Remote work policy: employees may work remotely two days per week.")},
	})
	require.NoError(t, err)
	waitForJob(t, fx.engine.tracker, job.ID)

	result, err := fx.engine.Query(context.Background(), "How many documents mention the policy?", 5)
	require.NoError(t, err)

	// SQL path declined; document path still answered.
	assert.Equal(t, models.QueryTypeDocument, result.Type)
	assert.NotEmpty(t, result.Sources)
	assert.Contains(t, result.Metrics.Warnings, "sql_translation_declined")
}

func TestQueryRejectsGeneratedDML(t *testing.T) {
	fx := newEngineFixture(t)
	fx.translator.sql = "DELETE FROM employees"

	result, err := fx.engine.Query(context.Background(), "How many employees do we have?", 10)
	require.NoError(t, err)

	assert.Empty(t, result.Rows)
	assert.Contains(t, result.Metrics.Warnings, "sql_rejected_not_read_only")
	assert.Empty(t, fx.adapter.ExecuteQueryCalls)
}

func TestQueryEmptyIndexNoSources(t *testing.T) {
	fx := newEngineFixture(t)

	result, err := fx.engine.Query(context.Background(), "Show me the certificate for Jane", 5)
	require.NoError(t, err)
	assert.Empty(t, result.Sources)
	assert.Equal(t, 0, result.Metrics.IndexSize)
}

func TestRefreshSchemaSwapsModel(t *testing.T) {
	fx := newEngineFixture(t)

	before := fx.engine.Schema()
	require.NotNil(t, before)

	fx.adapter.DiscoverTablesFunc = func(ctx context.Context) ([]datasource.TableMetadata, error) {
		return []datasource.TableMetadata{{SchemaName: "public", TableName: "employees"}}, nil
	}

	after, err := fx.engine.RefreshSchema(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"employees"}, after.TableNames())
	assert.Same(t, after, fx.engine.Schema())
}

func TestTruncatePreviewKeepsValidUTF8(t *testing.T) {
	assert.Equal(t, "short", truncatePreview("short", 10))
	assert.Equal(t, "unbounded", truncatePreview("unbounded", 0))

	// An odd cap lands mid-rune on two-byte characters.
	got := truncatePreview(strings.Repeat("é", 10), 7)
	assert.True(t, utf8.ValidString(got))
	assert.True(t, strings.HasSuffix(got, "..."))
	assert.LessOrEqual(t, len(got), 10)
}
