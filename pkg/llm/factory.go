package llm

import (
	"context"
	"fmt"

	"go.uber.org/zap"
)

// NewFromConfig creates the LLM client selected by cfg.Provider. The
// OpenAI-compatible client built from embeddingCfg always exists because
// both providers need it for embeddings; when the chat configuration
// diverges, chat and embedding calls are routed to separate clients so
// the embedding endpoint, key and timeout stay in effect.
func NewFromConfig(cfg *Config, embeddingCfg *Config, logger *zap.Logger) (LLMClient, error) {
	embedding, err := NewClient(embeddingCfg, logger)
	if err != nil {
		return nil, fmt.Errorf("create embedding client: %w", err)
	}

	switch cfg.Provider {
	case "", "openai":
		if *cfg == *embeddingCfg {
			return embedding, nil
		}
		chat, err := NewClient(cfg, logger)
		if err != nil {
			return nil, fmt.Errorf("create chat client: %w", err)
		}
		return &compositeClient{chat: chat, embedding: embedding}, nil
	case "anthropic":
		return NewAnthropicClient(cfg, embedding, logger)
	default:
		return nil, fmt.Errorf("unknown llm provider %q", cfg.Provider)
	}
}

// compositeClient routes chat completions to one backend and embeddings
// to another. Model and endpoint report the chat side.
type compositeClient struct {
	chat      *Client
	embedding *Client
}

var _ LLMClient = (*compositeClient)(nil)

func (c *compositeClient) GenerateResponse(ctx context.Context, prompt string, systemMessage string, temperature float64) (string, error) {
	return c.chat.GenerateResponse(ctx, prompt, systemMessage, temperature)
}

func (c *compositeClient) CreateEmbedding(ctx context.Context, input string, model string) ([]float32, error) {
	return c.embedding.CreateEmbedding(ctx, input, model)
}

func (c *compositeClient) CreateEmbeddings(ctx context.Context, inputs []string, model string) ([][]float32, error) {
	return c.embedding.CreateEmbeddings(ctx, inputs, model)
}

func (c *compositeClient) GetModel() string {
	return c.chat.GetModel()
}

func (c *compositeClient) GetEndpoint() string {
	return c.chat.GetEndpoint()
}
