package config

import (
	"fmt"
	"os"

	"github.com/ilyakaznacheev/cleanenv"
)

// Config holds all configuration for the query engine.
// Configuration can come from YAML file (config.yaml) or environment
// variables. Environment variables always override YAML values. Secrets
// (API keys) must only come from environment variables.
type Config struct {
	// Server configuration
	BindAddr string `yaml:"bind_addr" env:"BIND_ADDR" env-default:"127.0.0.1"`
	Port     string `yaml:"port" env:"PORT" env-default:"8080"`
	Env      string `yaml:"env" env:"ENVIRONMENT" env-default:"local"`
	LogLevel string `yaml:"log_level" env:"LOG_LEVEL" env-default:""`
	Version  string `yaml:"-"` // Set at load time, not from config

	Redis       RedisConfig       `yaml:"redis"`
	LLM         LLMConfig         `yaml:"llm"`
	Embeddings  EmbeddingsConfig  `yaml:"embeddings"`
	Chunking    ChunkingConfig    `yaml:"chunking"`
	Cache       CacheConfig       `yaml:"cache"`
	Ingestion   IngestionConfig   `yaml:"ingestion"`
	Query       QueryConfig       `yaml:"query"`
	History     HistoryConfig     `yaml:"history"`
	VectorStore VectorStoreConfig `yaml:"vector_store"`
	Discovery   DiscoveryConfig   `yaml:"discovery"`
}

// RedisConfig holds the optional Redis cache backend configuration.
// An empty host disables Redis and the engine falls back to the in-memory
// cache.
type RedisConfig struct {
	Host     string `yaml:"host" env:"REDIS_HOST" env-default:""`
	Port     int    `yaml:"port" env:"REDIS_PORT" env-default:"6379"`
	Password string `yaml:"-" env:"REDIS_PASSWORD"` // Secret - not in YAML
	DB       int    `yaml:"db" env:"REDIS_DB" env-default:"0"`
}

// LLMConfig holds the translation model endpoint configuration.
// Provider selects the client implementation: "openai" covers any
// OpenAI-compatible endpoint (including local servers), "anthropic" uses
// the Anthropic API.
type LLMConfig struct {
	Provider string  `yaml:"provider" env:"LLM_PROVIDER" env-default:"openai"`
	Endpoint string  `yaml:"endpoint" env:"LLM_ENDPOINT" env-default:"https://api.openai.com/v1"`
	Model    string  `yaml:"model" env:"LLM_MODEL" env-default:"gpt-4o-mini"`
	APIKey   string  `yaml:"-" env:"LLM_API_KEY"` // Secret - not in YAML
	Temp     float64 `yaml:"temperature" env:"LLM_TEMPERATURE" env-default:"0.1"`

	// TimeoutSeconds bounds each translation call.
	TimeoutSeconds int `yaml:"timeout_seconds" env:"LLM_TIMEOUT_SECONDS" env-default:"30"`
}

// EmbeddingsConfig holds the embedding model configuration. Embeddings
// always go through the OpenAI-compatible endpoint regardless of the chat
// provider.
type EmbeddingsConfig struct {
	Endpoint  string `yaml:"endpoint" env:"EMBEDDING_ENDPOINT" env-default:"https://api.openai.com/v1"`
	Model     string `yaml:"model" env:"EMBEDDING_MODEL" env-default:"text-embedding-3-small"`
	APIKey    string `yaml:"-" env:"EMBEDDING_API_KEY"` // Secret - not in YAML
	Dimension int    `yaml:"dimension" env:"EMBEDDING_DIMENSION" env-default:"1536"`
	BatchSize int    `yaml:"batch_size" env:"EMBEDDING_BATCH_SIZE" env-default:"32"`

	// TimeoutSeconds bounds each embedding call.
	TimeoutSeconds int `yaml:"timeout_seconds" env:"EMBEDDING_TIMEOUT_SECONDS" env-default:"30"`
}

// ChunkingConfig tunes the adaptive document splitter. These are
// deliberately configuration, not contract.
type ChunkingConfig struct {
	TargetChars  int `yaml:"target_chars" env:"CHUNK_TARGET_CHARS" env-default:"800"`
	OverlapChars int `yaml:"overlap_chars" env:"CHUNK_OVERLAP_CHARS" env-default:"120"`
	CSVRows      int `yaml:"csv_rows" env:"CHUNK_CSV_ROWS" env-default:"10"`
}

// CacheConfig tunes the query response cache.
type CacheConfig struct {
	TTLSeconds   int `yaml:"ttl_seconds" env:"CACHE_TTL_SECONDS" env-default:"300"`
	MaxEntries   int `yaml:"max_entries" env:"CACHE_MAX_ENTRIES" env-default:"1000"`
	SweepSeconds int `yaml:"sweep_seconds" env:"CACHE_SWEEP_SECONDS" env-default:"60"`
}

// IngestionConfig tunes the ingestion worker pool.
type IngestionConfig struct {
	Workers         int `yaml:"workers" env:"INGESTION_WORKERS" env-default:"4"`
	EmbedRetries    int `yaml:"embed_retries" env:"INGESTION_EMBED_RETRIES" env-default:"3"`
	MaxPreviewChars int `yaml:"max_preview_chars" env:"INGESTION_MAX_PREVIEW_CHARS" env-default:"400"`
}

// QueryConfig tunes query execution bounds.
type QueryConfig struct {
	DefaultTopK       int `yaml:"default_top_k" env:"QUERY_DEFAULT_TOP_K" env-default:"10"`
	MaxTopK           int `yaml:"max_top_k" env:"QUERY_MAX_TOP_K" env-default:"50"`
	SQLRowLimit       int `yaml:"sql_row_limit" env:"QUERY_SQL_ROW_LIMIT" env-default:"100"`
	SQLTimeoutSeconds int `yaml:"sql_timeout_seconds" env:"QUERY_SQL_TIMEOUT_SECONDS" env-default:"15"`
	MaxQueryChars     int `yaml:"max_query_chars" env:"QUERY_MAX_CHARS" env-default:"500"`
}

// HistoryConfig tunes per-connection query history retention.
type HistoryConfig struct {
	Capacity int `yaml:"capacity" env:"HISTORY_CAPACITY" env-default:"100"`
}

// VectorStoreConfig selects the vector store backend: "memory" or "pgvector".
// The pgvector backend stores chunks in the connected database itself and
// requires the pgvector extension there.
type VectorStoreConfig struct {
	Backend string `yaml:"backend" env:"VECTOR_STORE_BACKEND" env-default:"memory"`
	Table   string `yaml:"table" env:"VECTOR_STORE_TABLE" env-default:"nlq_document_chunks"`
}

// DiscoveryConfig tunes schema discovery.
type DiscoveryConfig struct {
	SampleRows        int    `yaml:"sample_rows" env:"DISCOVERY_SAMPLE_ROWS" env-default:"5"`
	TimeoutSeconds    int    `yaml:"timeout_seconds" env:"DISCOVERY_TIMEOUT_SECONDS" env-default:"10"`
	AliasesPath       string `yaml:"aliases_path" env:"DISCOVERY_ALIASES_PATH" env-default:""`
	ConnectionTimeout int    `yaml:"connection_timeout_seconds" env:"DISCOVERY_CONNECTION_TIMEOUT_SECONDS" env-default:"5"`
}

// Load reads configuration from config.yaml with environment variable
// overrides. When no config.yaml exists, configuration comes entirely from
// the environment. The version parameter is injected at build time.
func Load(version string) (*Config, error) {
	return LoadFrom("config.yaml", version)
}

// LoadFrom reads configuration from the given YAML path with environment
// variable overrides.
func LoadFrom(path, version string) (*Config, error) {
	cfg := &Config{Version: version}

	if _, err := os.Stat(path); err == nil {
		if err := cleanenv.ReadConfig(path, cfg); err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", path, err)
		}
	} else {
		if err := cleanenv.ReadEnv(cfg); err != nil {
			return nil, fmt.Errorf("failed to read environment: %w", err)
		}
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

func (c *Config) validate() error {
	if c.Embeddings.Dimension <= 0 {
		return fmt.Errorf("embeddings.dimension must be positive")
	}
	if c.Chunking.TargetChars <= 0 {
		return fmt.Errorf("chunking.target_chars must be positive")
	}
	if c.Chunking.OverlapChars < 0 || c.Chunking.OverlapChars >= c.Chunking.TargetChars {
		return fmt.Errorf("chunking.overlap_chars must be in [0, target_chars)")
	}
	if c.Query.DefaultTopK <= 0 || c.Query.DefaultTopK > c.Query.MaxTopK {
		return fmt.Errorf("query.default_top_k must be in (0, max_top_k]")
	}
	switch c.VectorStore.Backend {
	case "memory", "pgvector":
	default:
		return fmt.Errorf("vector_store.backend must be %q or %q", "memory", "pgvector")
	}
	return nil
}
