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

func TestProviderForSelection(t *testing.T) {
	creds := Credentials{OpenAIAPIKey: "sk-test", MistralAPIKey: "mk-test"}

	tests := []struct {
		provider string
		name     string
	}{
		{provider: "openai", name: "openai"},
		{provider: "mistral", name: "mistral"},
		{provider: "ollama", name: "ollama"},
	}

	for _, tt := range tests {
		t.Run(tt.provider, func(t *testing.T) {
			cfg := settings.DefaultAIConfig()
			cfg.EmbeddingProvider = tt.provider

			provider, err := providerFor(cfg, creds, nil)

			require.NoError(t, err)
			assert.Equal(t, tt.name, provider.Name())
		})
	}
}

func TestProviderForMissingCredentials(t *testing.T) {
	for _, name := range []string{"openai", "mistral"} {
		t.Run(name, func(t *testing.T) {
			cfg := settings.DefaultAIConfig()
			cfg.EmbeddingProvider = name

			provider, err := providerFor(cfg, Credentials{}, nil)

			assert.Nil(t, provider)
			assert.ErrorIs(t, err, ErrMissingCredentials)
		})
	}
}

func TestProviderForUnknownProvider(t *testing.T) {
	cfg := settings.DefaultAIConfig()
	cfg.EmbeddingProvider = "anthropic"

	provider, err := providerFor(cfg, Credentials{}, nil)

	assert.Nil(t, provider)
	assert.ErrorIs(t, err, ErrUnknownProvider)
}

func TestOllamaProviderEmbed(t *testing.T) {
	var gotRequest ollamaEmbedRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/embeddings", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotRequest))
		json.NewEncoder(w).Encode(ollamaEmbedResponse{Embedding: []float64{0.1, 0.2, 0.3}})
	}))
	defer server.Close()

	provider := newOllamaProvider(server.URL, "nomic-embed-text", server.Client())

	vector, err := provider.Embed(context.Background(), "reset your password")

	require.NoError(t, err)
	assert.Equal(t, []float32{0.1, 0.2, 0.3}, vector)
	assert.Equal(t, "nomic-embed-text", gotRequest.Model)
	assert.Equal(t, "reset your password", gotRequest.Prompt)
}

func TestOllamaProviderEmbedServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model not found", http.StatusNotFound)
	}))
	defer server.Close()

	provider := newOllamaProvider(server.URL, "missing-model", server.Client())

	_, err := provider.Embed(context.Background(), "anything")

	var providerErr *ProviderError
	require.ErrorAs(t, err, &providerErr)
	assert.Equal(t, "ollama", providerErr.Provider)
}
