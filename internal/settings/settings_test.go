package settings

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memoryStore struct {
	values map[string]string
}

func newMemoryStore() *memoryStore {
	return &memoryStore{values: make(map[string]string)}
}

func (s *memoryStore) GetAll(ctx context.Context) (map[string]string, error) {
	return s.values, nil
}

func (s *memoryStore) Set(ctx context.Context, key, value string) error {
	s.values[key] = value
	return nil
}

func TestAIConfigDefaults(t *testing.T) {
	service := NewService(newMemoryStore())

	cfg, err := service.AIConfig(context.Background())

	require.NoError(t, err)
	assert.Equal(t, DefaultAIConfig(), cfg)
}

func TestAIConfigMergesStoredValues(t *testing.T) {
	store := newMemoryStore()
	store.values[KeyEmbeddingProvider] = "ollama"
	store.values[KeyEmbeddingModel] = "nomic-embed-text"
	store.values[KeyEmbeddingDimensions] = "768"

	service := NewService(store)

	cfg, err := service.AIConfig(context.Background())

	require.NoError(t, err)
	assert.Equal(t, "ollama", cfg.EmbeddingProvider)
	assert.Equal(t, "nomic-embed-text", cfg.EmbeddingModel)
	assert.Equal(t, 768, cfg.EmbeddingDimensions)
	// Untouched keys keep their defaults.
	assert.Equal(t, "openai", cfg.ChatProvider)
}

func TestAIConfigIgnoresInvalidNumerics(t *testing.T) {
	store := newMemoryStore()
	store.values[KeyEmbeddingDimensions] = "lots"
	store.values[KeyChatTemperature] = "9.5"

	service := NewService(store)

	cfg, err := service.AIConfig(context.Background())

	require.NoError(t, err)
	assert.Equal(t, DefaultAIConfig().EmbeddingDimensions, cfg.EmbeddingDimensions)
	assert.Equal(t, DefaultAIConfig().ChatTemperature, cfg.ChatTemperature)
}

func TestUpdateWritesRecognizedKeys(t *testing.T) {
	store := newMemoryStore()
	service := NewService(store)

	err := service.Update(context.Background(), map[string]string{
		KeyEmbeddingProvider: "mistral",
		KeyEmbeddingModel:    "mistral-embed",
	})

	require.NoError(t, err)
	assert.Equal(t, "mistral", store.values[KeyEmbeddingProvider])
	assert.Equal(t, "mistral-embed", store.values[KeyEmbeddingModel])
}

func TestUpdateRejectsUnknownKey(t *testing.T) {
	service := NewService(newMemoryStore())

	err := service.Update(context.Background(), map[string]string{
		"ai.secret_api_key": "nope",
	})

	assert.Error(t, err)
}
