package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/zenitsu0509/Employee-NLQ/pkg/cache"
	"github.com/zenitsu0509/Employee-NLQ/pkg/vectorstore"
)

func testFactory(t *testing.T, calls *int, mu *sync.Mutex) EngineFactory {
	t.Helper()
	return func(ctx context.Context, connString string) (*Engine, error) {
		mu.Lock()
		*calls++
		mu.Unlock()

		aliases, err := LoadAliases("")
		if err != nil {
			return nil, err
		}

		client := embeddingMock(4)
		store := vectorstore.NewMemoryStore(4)
		tracker := NewJobTracker()
		memCache := cache.NewMemoryCache(10, 0)
		t.Cleanup(func() { memCache.Close() })

		return NewEngine(ctx, EngineDeps{
			Adapter:    hrAdapter(),
			Discovery:  NewSchemaDiscoveryService(aliases, 0, time.Second, zap.NewNop()),
			Translator: &fakeTranslator{sql: "SELECT 1"},
			Client:     client,
			Store:      store,
			Ingestion: NewIngestionService(NewDocumentReader(nil), NewChunker(200, 0, 2),
				client, store, tracker, IngestionConfig{}, zap.NewNop()),
			Tracker: tracker,
			Cache:   memCache,
			History: NewQueryHistory(10),
			Config:  QueryConfig{DefaultTopK: 10, CacheTTL: time.Minute},
			Logger:  zap.NewNop(),
		})
	}
}

func TestRegistrySharesEngines(t *testing.T) {
	var (
		calls int
		mu    sync.Mutex
	)
	registry := NewRegistry(testFactory(t, &calls, &mu))
	defer registry.Close()

	first, err := registry.GetOrCreate(context.Background(), "postgres://alice:x@db:5432/hr")
	require.NoError(t, err)

	// Same database, different credentials and scheme spelling.
	second, err := registry.GetOrCreate(context.Background(), "postgresql://bob:y@db/hr")
	require.NoError(t, err)

	assert.Same(t, first, second)
	assert.Equal(t, 1, calls)

	other, err := registry.GetOrCreate(context.Background(), "postgres://db:5432/analytics")
	require.NoError(t, err)
	assert.NotSame(t, first, other)
	assert.Equal(t, 2, calls)
}

func TestRegistryConcurrentCreate(t *testing.T) {
	var (
		calls int
		mu    sync.Mutex
	)
	registry := NewRegistry(testFactory(t, &calls, &mu))
	defer registry.Close()

	var wg sync.WaitGroup
	engines := make([]*Engine, 8)
	for i := range engines {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			engine, err := registry.GetOrCreate(context.Background(), "postgres://db:5432/hr")
			assert.NoError(t, err)
			engines[i] = engine
		}(i)
	}
	wg.Wait()

	for _, engine := range engines[1:] {
		assert.Same(t, engines[0], engine)
	}
	assert.Equal(t, 1, calls)
}

func TestRegistryFailedCreateNotCached(t *testing.T) {
	attempts := 0
	registry := NewRegistry(func(ctx context.Context, connString string) (*Engine, error) {
		attempts++
		if attempts == 1 {
			return nil, errors.New("database unreachable")
		}
		return &Engine{}, nil
	})

	_, err := registry.GetOrCreate(context.Background(), "postgres://db:5432/hr")
	require.Error(t, err)

	_, err = registry.GetOrCreate(context.Background(), "postgres://db:5432/hr")
	require.NoError(t, err)
	assert.Equal(t, 2, attempts)
}

func TestRegistryRejectsBadConnString(t *testing.T) {
	registry := NewRegistry(testFactory(t, new(int), new(sync.Mutex)))

	_, err := registry.GetOrCreate(context.Background(), "mysql://db:3306/hr")
	assert.Error(t, err)
}

func TestRegistryGetAndDrop(t *testing.T) {
	var (
		calls int
		mu    sync.Mutex
	)
	registry := NewRegistry(testFactory(t, &calls, &mu))

	_, ok := registry.Get("postgres://db:5432/hr")
	assert.False(t, ok)

	created, err := registry.GetOrCreate(context.Background(), "postgres://db:5432/hr")
	require.NoError(t, err)

	got, ok := registry.Get("postgres://db:5432/hr")
	require.True(t, ok)
	assert.Same(t, created, got)

	registry.Drop("postgres://db:5432/hr")
	_, ok = registry.Get("postgres://db:5432/hr")
	assert.False(t, ok)
}
