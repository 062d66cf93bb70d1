package ai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/atriumhq/atrium/internal/settings"
)

type staticSettings struct {
	cfg settings.AIConfig
}

func (s staticSettings) AIConfig(ctx context.Context) (settings.AIConfig, error) {
	return s.cfg, nil
}

func TestEmbedTextEmptyAfterCleaning(t *testing.T) {
	cfg := settings.DefaultAIConfig()
	service := NewService(staticSettings{cfg: cfg}, Credentials{OpenAIAPIKey: "sk-test"})

	for _, input := range []string{"", "   ", "<p></p>"} {
		_, _, err := service.EmbedText(context.Background(), input)
		assert.ErrorIs(t, err, ErrEmptyInput)
	}
}

func TestEmbedTextReportsProducingModel(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(ollamaEmbedResponse{Embedding: []float64{1, 0}})
	}))
	defer server.Close()

	cfg := settings.DefaultAIConfig()
	cfg.EmbeddingProvider = "ollama"
	cfg.EmbeddingModel = "nomic-embed-text"
	cfg.OllamaBaseURL = server.URL

	service := NewService(staticSettings{cfg: cfg}, Credentials{})

	vector, model, err := service.EmbedText(context.Background(), "wifi credentials for guests")

	require.NoError(t, err)
	assert.Equal(t, []float32{1, 0}, vector)
	assert.Equal(t, "nomic-embed-text", model)
}

func TestEmbedTextMissingCredentials(t *testing.T) {
	service := NewService(staticSettings{cfg: settings.DefaultAIConfig()}, Credentials{})

	_, _, err := service.EmbedText(context.Background(), "some content")

	assert.ErrorIs(t, err, ErrMissingCredentials)
}

func TestProvidersNeverExposeKeys(t *testing.T) {
	service := NewService(staticSettings{cfg: settings.DefaultAIConfig()}, Credentials{
		OpenAIAPIKey: "sk-secret",
	})

	statuses := service.Providers()

	require.Len(t, statuses, 3)
	byName := map[string]bool{}
	for _, s := range statuses {
		byName[s.Name] = s.Configured
	}
	assert.True(t, byName["openai"])
	assert.False(t, byName["mistral"])
	assert.True(t, byName["ollama"])

	raw, err := json.Marshal(statuses)
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "sk-secret")
}
