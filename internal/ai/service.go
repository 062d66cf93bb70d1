// Package ai turns text into embedding vectors and chat completions,
// abstracting over interchangeable providers. Provider selection is
// per-call configuration from the settings store, not compile-time choice.
package ai

import (
	"context"
	"net/http"
	"time"

	"github.com/atriumhq/atrium/internal/settings"
)

// SettingsSource resolves the current AI configuration. Resolved fresh on
// every call so provider switches apply without a restart.
type SettingsSource interface {
	AIConfig(ctx context.Context) (settings.AIConfig, error)
}

// Service is the embedding and chat entry point used by the indexer,
// the retriever, and the chat endpoint.
type Service struct {
	settings   SettingsSource
	creds      Credentials
	httpClient *http.Client
}

func NewService(source SettingsSource, creds Credentials) *Service {
	return &Service{
		settings:   source,
		creds:      creds,
		httpClient: &http.Client{Timeout: 60 * time.Second},
	}
}

// EmbedText cleans the text and embeds it with the currently configured
// provider. Returns the vector and the model name that produced it, so
// callers can tag stored vectors with their embedding space.
func (s *Service) EmbedText(ctx context.Context, text string) ([]float32, string, error) {
	cfg, err := s.settings.AIConfig(ctx)
	if err != nil {
		return nil, "", err
	}

	cleaned := CleanForEmbedding(text)
	if cleaned == "" {
		return nil, "", ErrEmptyInput
	}

	provider, err := providerFor(cfg, s.creds, s.httpClient)
	if err != nil {
		return nil, "", err
	}

	vector, err := provider.Embed(ctx, cleaned)
	if err != nil {
		return nil, "", err
	}

	return vector, cfg.EmbeddingModel, nil
}

// EmbeddingModel returns the currently configured embedding model name
func (s *Service) EmbeddingModel(ctx context.Context) (string, error) {
	cfg, err := s.settings.AIConfig(ctx)
	if err != nil {
		return "", err
	}
	return cfg.EmbeddingModel, nil
}

// ProviderStatus reports which providers have usable credentials. A missing
// key surfaces as configured=false here rather than as an error at call time.
type ProviderStatus struct {
	Name       string `json:"name"`
	Configured bool   `json:"configured"`
}

func (s *Service) Providers() []ProviderStatus {
	return []ProviderStatus{
		{Name: "openai", Configured: s.creds.OpenAIAPIKey != ""},
		{Name: "mistral", Configured: s.creds.MistralAPIKey != ""},
		{Name: "ollama", Configured: true}, // self-hosted, no key needed
	}
}
