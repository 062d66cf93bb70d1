package ai

import (
	"context"
	"fmt"
	"net/http"

	"github.com/atriumhq/atrium/internal/settings"
)

// Provider turns already-cleaned text into an embedding vector. One
// implementation exists per backend; instances are built per call from the
// current AIConfig and are never cached, so an administrative provider
// switch applies on the next call.
type Provider interface {
	Name() string
	Embed(ctx context.Context, text string) ([]float32, error)
}

// Credentials holds the per-provider API keys from the environment
type Credentials struct {
	OpenAIAPIKey  string
	MistralAPIKey string
}

// providerFor selects the provider implementation for the given configuration
func providerFor(cfg settings.AIConfig, creds Credentials, httpClient *http.Client) (Provider, error) {
	switch cfg.EmbeddingProvider {
	case "openai":
		if creds.OpenAIAPIKey == "" {
			return nil, fmt.Errorf("%w: OPENAI_API_KEY is not set", ErrMissingCredentials)
		}
		return newOpenAIProvider(creds.OpenAIAPIKey, cfg.EmbeddingModel), nil
	case "mistral":
		if creds.MistralAPIKey == "" {
			return nil, fmt.Errorf("%w: MISTRAL_API_KEY is not set", ErrMissingCredentials)
		}
		return newMistralProvider(creds.MistralAPIKey, cfg.EmbeddingModel), nil
	case "ollama":
		return newOllamaProvider(cfg.OllamaBaseURL, cfg.EmbeddingModel, httpClient), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownProvider, cfg.EmbeddingProvider)
	}
}
