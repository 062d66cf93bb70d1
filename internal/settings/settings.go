package settings

import (
	"context"
	"fmt"
	"log"
	"strconv"
)

// Recognized setting keys. Values live in the settings table so an
// administrator can switch providers without a redeploy.
const (
	KeyEmbeddingProvider   = "ai.embedding_provider"
	KeyEmbeddingModel      = "ai.embedding_model"
	KeyEmbeddingDimensions = "ai.embedding_dimensions"
	KeyOllamaBaseURL       = "ai.ollama_base_url"
	KeyChatProvider        = "ai.chat_provider"
	KeyChatModel           = "ai.chat_model"
	KeyChatTemperature     = "ai.chat_temperature"
)

// AIConfig is the resolved AI configuration for a single operation.
// It is never cached: every embedding or chat call resolves a fresh copy,
// so a provider switch takes effect on the next call.
type AIConfig struct {
	EmbeddingProvider   string  `json:"embedding_provider"`
	EmbeddingModel      string  `json:"embedding_model"`
	EmbeddingDimensions int     `json:"embedding_dimensions"`
	OllamaBaseURL       string  `json:"ollama_base_url"`
	ChatProvider        string  `json:"chat_provider"`
	ChatModel           string  `json:"chat_model"`
	ChatTemperature     float32 `json:"chat_temperature"`
}

// DefaultAIConfig returns the documented default for every recognized key
func DefaultAIConfig() AIConfig {
	return AIConfig{
		EmbeddingProvider:   "openai",
		EmbeddingModel:      "text-embedding-3-small",
		EmbeddingDimensions: 1536,
		OllamaBaseURL:       "http://localhost:11434",
		ChatProvider:        "openai",
		ChatModel:           "gpt-4o-mini",
		ChatTemperature:     0.7,
	}
}

// Store is the key-value settings collaborator
type Store interface {
	GetAll(ctx context.Context) (map[string]string, error)
	Set(ctx context.Context, key, value string) error
}

// Service resolves typed AI configuration from the settings store
type Service struct {
	store Store
}

func NewService(store Store) *Service {
	return &Service{store: store}
}

// AIConfig reads current settings and merges them over the defaults
func (s *Service) AIConfig(ctx context.Context) (AIConfig, error) {
	cfg := DefaultAIConfig()

	values, err := s.store.GetAll(ctx)
	if err != nil {
		return cfg, fmt.Errorf("failed to read settings: %w", err)
	}

	if v, ok := values[KeyEmbeddingProvider]; ok && v != "" {
		cfg.EmbeddingProvider = v
	}
	if v, ok := values[KeyEmbeddingModel]; ok && v != "" {
		cfg.EmbeddingModel = v
	}
	if v, ok := values[KeyEmbeddingDimensions]; ok && v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.EmbeddingDimensions = n
		} else {
			log.Printf("settings: ignoring invalid %s=%q", KeyEmbeddingDimensions, v)
		}
	}
	if v, ok := values[KeyOllamaBaseURL]; ok && v != "" {
		cfg.OllamaBaseURL = v
	}
	if v, ok := values[KeyChatProvider]; ok && v != "" {
		cfg.ChatProvider = v
	}
	if v, ok := values[KeyChatModel]; ok && v != "" {
		cfg.ChatModel = v
	}
	if v, ok := values[KeyChatTemperature]; ok && v != "" {
		if t, err := strconv.ParseFloat(v, 32); err == nil && t >= 0 && t <= 2 {
			cfg.ChatTemperature = float32(t)
		} else {
			log.Printf("settings: ignoring invalid %s=%q", KeyChatTemperature, v)
		}
	}

	return cfg, nil
}

// Update writes recognized keys; unknown keys are rejected
func (s *Service) Update(ctx context.Context, values map[string]string) error {
	for key, value := range values {
		switch key {
		case KeyEmbeddingProvider, KeyEmbeddingModel, KeyEmbeddingDimensions,
			KeyOllamaBaseURL, KeyChatProvider, KeyChatModel, KeyChatTemperature:
			if err := s.store.Set(ctx, key, value); err != nil {
				return fmt.Errorf("failed to store %s: %w", key, err)
			}
		default:
			return fmt.Errorf("unknown setting key: %s", key)
		}
	}
	return nil
}
