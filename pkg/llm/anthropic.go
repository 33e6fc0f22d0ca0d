package llm

import (
	"context"
	"fmt"
	"time"

	anthropic "github.com/liushuangls/go-anthropic/v2"
	"go.uber.org/zap"
)

const anthropicMaxTokens = 2048

// AnthropicClient serves chat completions through the Anthropic API.
// Anthropic has no embeddings endpoint, so embedding calls delegate to an
// OpenAI-compatible client.
type AnthropicClient struct {
	client    *anthropic.Client
	model     string
	embedding *Client
	logger    *zap.Logger
}

// NewAnthropicClient creates an Anthropic chat client. The embedding
// client is required because document search still needs vectors.
func NewAnthropicClient(cfg *Config, embedding *Client, logger *zap.Logger) (*AnthropicClient, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("api key is required")
	}
	if cfg.Model == "" {
		return nil, fmt.Errorf("model is required")
	}
	if embedding == nil {
		return nil, fmt.Errorf("embedding client is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &AnthropicClient{
		client:    anthropic.NewClient(cfg.APIKey),
		model:     cfg.Model,
		embedding: embedding,
		logger:    logger.Named("llm"),
	}, nil
}

// GenerateResponse implements LLMClient.
func (c *AnthropicClient) GenerateResponse(ctx context.Context, prompt string, systemMessage string, temperature float64) (string, error) {
	c.logger.Debug("LLM request",
		zap.String("model", c.model),
		zap.Int("prompt_len", len(prompt)))

	start := time.Now()
	temp := float32(temperature)

	resp, err := c.client.CreateMessages(ctx, anthropic.MessagesRequest{
		Model:       anthropic.Model(c.model),
		System:      systemMessage,
		MaxTokens:   anthropicMaxTokens,
		Temperature: &temp,
		Messages: []anthropic.Message{
			anthropic.NewUserTextMessage(prompt),
		},
	})
	if err != nil {
		c.logger.Error("LLM request failed",
			zap.Duration("elapsed", time.Since(start)),
			zap.Error(err))
		return "", ClassifyError(err)
	}

	for _, block := range resp.Content {
		if block.Type == anthropic.MessagesContentTypeText && block.Text != nil {
			c.logger.Info("LLM request completed",
				zap.Duration("elapsed", time.Since(start)))
			return *block.Text, nil
		}
	}

	return "", fmt.Errorf("no text content in response")
}

// CreateEmbedding implements LLMClient via the embedding client.
func (c *AnthropicClient) CreateEmbedding(ctx context.Context, input string, model string) ([]float32, error) {
	return c.embedding.CreateEmbedding(ctx, input, model)
}

// CreateEmbeddings implements LLMClient via the embedding client.
func (c *AnthropicClient) CreateEmbeddings(ctx context.Context, inputs []string, model string) ([][]float32, error) {
	return c.embedding.CreateEmbeddings(ctx, inputs, model)
}

// GetModel returns the configured model name.
func (c *AnthropicClient) GetModel() string {
	return c.model
}

// GetEndpoint returns the Anthropic API endpoint.
func (c *AnthropicClient) GetEndpoint() string {
	return "https://api.anthropic.com"
}
