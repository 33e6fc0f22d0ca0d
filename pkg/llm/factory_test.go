package llm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestNewClientRequiresEndpointAndModel(t *testing.T) {
	_, err := NewClient(&Config{Model: "m"}, zap.NewNop())
	assert.Error(t, err)

	_, err = NewClient(&Config{Endpoint: "http://localhost:8000/v1"}, zap.NewNop())
	assert.Error(t, err)
}

func TestNewFromConfigSharesOpenAIClient(t *testing.T) {
	cfg := &Config{Provider: "openai", Endpoint: "http://localhost:8000/v1", Model: "qwen"}
	client, err := NewFromConfig(cfg, cfg, zap.NewNop())
	require.NoError(t, err)
	assert.Equal(t, "qwen", client.GetModel())
}

func TestNewFromConfigSplitsChatAndEmbeddingEndpoints(t *testing.T) {
	chat := &Config{Provider: "openai", Endpoint: "https://api.groq.com/openai/v1", Model: "llama-3.3-70b-versatile", APIKey: "gsk-test"}
	emb := &Config{Endpoint: "https://api.openai.com/v1", Model: "text-embedding-3-small", APIKey: "sk-test"}

	client, err := NewFromConfig(chat, emb, zap.NewNop())
	require.NoError(t, err)

	assert.Equal(t, "llama-3.3-70b-versatile", client.GetModel())
	assert.Equal(t, "https://api.groq.com/openai/v1", client.GetEndpoint())

	composite, ok := client.(*compositeClient)
	require.True(t, ok, "divergent configs should route embeddings separately")
	assert.Equal(t, "https://api.openai.com/v1", composite.embedding.GetEndpoint())
	assert.Equal(t, "text-embedding-3-small", composite.embedding.GetModel())
}

func TestNewFromConfigAnthropic(t *testing.T) {
	chat := &Config{Provider: "anthropic", Model: "claude-sonnet-4-5", APIKey: "sk-test"}
	emb := &Config{Endpoint: "https://api.openai.com/v1", Model: "text-embedding-3-small", APIKey: "sk-test"}

	client, err := NewFromConfig(chat, emb, zap.NewNop())
	require.NoError(t, err)
	assert.Equal(t, "claude-sonnet-4-5", client.GetModel())
	assert.Equal(t, "https://api.anthropic.com", client.GetEndpoint())
}

func TestNewFromConfigRejectsUnknownProvider(t *testing.T) {
	emb := &Config{Endpoint: "https://api.openai.com/v1", Model: "text-embedding-3-small"}
	_, err := NewFromConfig(&Config{Provider: "groq", Model: "m"}, emb, zap.NewNop())
	assert.Error(t, err)
}
