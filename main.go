package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/zenitsu0509/Employee-NLQ/pkg/cache"
	"github.com/zenitsu0509/Employee-NLQ/pkg/config"
	"github.com/zenitsu0509/Employee-NLQ/pkg/datasource"
	"github.com/zenitsu0509/Employee-NLQ/pkg/handlers"
	"github.com/zenitsu0509/Employee-NLQ/pkg/llm"
	"github.com/zenitsu0509/Employee-NLQ/pkg/logging"
	"github.com/zenitsu0509/Employee-NLQ/pkg/nl2sql"
	"github.com/zenitsu0509/Employee-NLQ/pkg/services"
	"github.com/zenitsu0509/Employee-NLQ/pkg/vectorstore"
)

// Version is set at build time via ldflags
var Version = "dev"

func main() {
	cfg, err := config.Load(Version)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger, err := logging.NewLogger(cfg.Env, cfg.LogLevel)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("configuration loaded",
		zap.String("environment", cfg.Env),
		zap.String("llm_provider", cfg.LLM.Provider),
		zap.String("llm_model", cfg.LLM.Model),
		zap.String("embedding_model", cfg.Embeddings.Model),
		zap.String("vector_store", cfg.VectorStore.Backend),
		zap.String("redis", cfg.Redis.Host))

	client, err := llm.NewFromConfig(
		&llm.Config{
			Provider: cfg.LLM.Provider,
			Endpoint: cfg.LLM.Endpoint,
			Model:    cfg.LLM.Model,
			APIKey:   cfg.LLM.APIKey,
			Timeout:  seconds(cfg.LLM.TimeoutSeconds),
		},
		&llm.Config{
			Endpoint: cfg.Embeddings.Endpoint,
			Model:    cfg.Embeddings.Model,
			APIKey:   embeddingAPIKey(cfg),
			Timeout:  seconds(cfg.Embeddings.TimeoutSeconds),
		},
		logger)
	if err != nil {
		logger.Fatal("failed to create llm client", zap.Error(err))
	}

	responseCache, err := buildResponseCache(cfg, logger)
	if err != nil {
		logger.Fatal("failed to create response cache", zap.Error(err))
	}
	defer responseCache.Close()

	aliases, err := services.LoadAliases(cfg.Discovery.AliasesPath)
	if err != nil {
		logger.Fatal("failed to load alias dictionary", zap.Error(err))
	}

	discovery := services.NewSchemaDiscoveryService(aliases,
		cfg.Discovery.SampleRows, seconds(cfg.Discovery.TimeoutSeconds), logger)
	translator := nl2sql.NewTranslator(client, cfg.LLM.Temp, logger)

	registry := services.NewRegistry(engineFactory(cfg, logger, client, discovery, translator, responseCache))
	defer registry.Close()

	mux := http.NewServeMux()
	handlers.NewHealthHandler(cfg, logger).RegisterRoutes(mux)
	handlers.NewEngineHandler(registry, logger).RegisterRoutes(mux)
	handlers.NewIngestHandler(registry, logger).RegisterRoutes(mux)

	server := &http.Server{
		Addr:    cfg.BindAddr + ":" + cfg.Port,
		Handler: mux,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		logger.Info("starting server",
			zap.String("addr", server.Addr),
			zap.String("version", cfg.Version))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("server failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Warn("shutdown incomplete", zap.Error(err))
	}
}

// engineFactory wires a full per-connection engine. The LLM client, the
// discovery service, the translator and the response cache are shared;
// the adapter, vector index, job tracker and history are per connection.
func engineFactory(cfg *config.Config, logger *zap.Logger, client llm.LLMClient,
	discovery *services.SchemaDiscoveryService, translator nl2sql.Translator,
	responseCache cache.ResponseCache) services.EngineFactory {

	return func(ctx context.Context, connString string) (*services.Engine, error) {
		connectCtx, cancel := context.WithTimeout(ctx, seconds(cfg.Discovery.ConnectionTimeout))
		defer cancel()

		adapter, err := datasource.NewPostgresAdapter(connectCtx, connString, logger)
		if err != nil {
			return nil, err
		}

		var store vectorstore.Store
		switch cfg.VectorStore.Backend {
		case "pgvector":
			store = vectorstore.NewPgVectorStore(adapter.Pool(),
				cfg.VectorStore.Table, cfg.Embeddings.Dimension, logger)
		default:
			store = vectorstore.NewMemoryStore(cfg.Embeddings.Dimension)
		}

		tracker := services.NewJobTracker()
		ingestion := services.NewIngestionService(
			services.NewDocumentReader(nil),
			services.NewChunker(cfg.Chunking.TargetChars, cfg.Chunking.OverlapChars, cfg.Chunking.CSVRows),
			client, store, tracker,
			services.IngestionConfig{
				Workers:        cfg.Ingestion.Workers,
				EmbedModel:     cfg.Embeddings.Model,
				EmbedBatchSize: cfg.Embeddings.BatchSize,
				EmbedRetries:   cfg.Ingestion.EmbedRetries,
				EmbedTimeout:   seconds(cfg.Embeddings.TimeoutSeconds),
			},
			logger)

		engine, err := services.NewEngine(ctx, services.EngineDeps{
			Adapter:    adapter,
			Discovery:  discovery,
			Translator: translator,
			Client:     client,
			Store:      store,
			Ingestion:  ingestion,
			Tracker:    tracker,
			Cache:      responseCache,
			History:    services.NewQueryHistory(cfg.History.Capacity),
			Config: services.QueryConfig{
				DefaultTopK:     cfg.Query.DefaultTopK,
				MaxTopK:         cfg.Query.MaxTopK,
				SQLRowLimit:     cfg.Query.SQLRowLimit,
				SQLTimeout:      seconds(cfg.Query.SQLTimeoutSeconds),
				MaxQueryChars:   cfg.Query.MaxQueryChars,
				CacheTTL:        seconds(cfg.Cache.TTLSeconds),
				EmbedModel:      cfg.Embeddings.Model,
				MaxPreviewChars: cfg.Ingestion.MaxPreviewChars,
			},
			Logger: logger,
		})
		if err != nil {
			_ = adapter.Close()
			return nil, err
		}
		return engine, nil
	}
}

// buildResponseCache returns the Redis-backed cache when a Redis host is
// configured, otherwise the in-memory cache.
func buildResponseCache(cfg *config.Config, logger *zap.Logger) (cache.ResponseCache, error) {
	redisClient, err := cache.NewRedisClient(cfg.Redis.Host, cfg.Redis.Port, cfg.Redis.Password, cfg.Redis.DB)
	if err != nil {
		return nil, err
	}
	if redisClient != nil {
		logger.Info("using redis response cache",
			zap.String("host", cfg.Redis.Host), zap.Int("port", cfg.Redis.Port))
		return cache.NewRedisCache(redisClient, logger), nil
	}
	return cache.NewMemoryCache(cfg.Cache.MaxEntries, seconds(cfg.Cache.SweepSeconds)), nil
}

// embeddingAPIKey falls back to the chat key when no dedicated embedding
// key is set and both use the same endpoint style.
func embeddingAPIKey(cfg *config.Config) string {
	if cfg.Embeddings.APIKey != "" {
		return cfg.Embeddings.APIKey
	}
	return cfg.LLM.APIKey
}

func seconds(n int) time.Duration {
	return time.Duration(n) * time.Second
}
