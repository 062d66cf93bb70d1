package ai

import (
	"context"
	"fmt"

	"github.com/sashabaranov/go-openai"
)

// Complete runs a chat completion with the currently configured chat
// provider. Ollama is reached through its OpenAI-compatible endpoint, so
// all three providers share one request shape.
func (s *Service) Complete(ctx context.Context, system, user string) (string, error) {
	cfg, err := s.settings.AIConfig(ctx)
	if err != nil {
		return "", err
	}

	var client *openai.Client
	switch cfg.ChatProvider {
	case "openai":
		if s.creds.OpenAIAPIKey == "" {
			return "", fmt.Errorf("%w: OPENAI_API_KEY is not set", ErrMissingCredentials)
		}
		client = openai.NewClient(s.creds.OpenAIAPIKey)
	case "mistral":
		if s.creds.MistralAPIKey == "" {
			return "", fmt.Errorf("%w: MISTRAL_API_KEY is not set", ErrMissingCredentials)
		}
		mc := openai.DefaultConfig(s.creds.MistralAPIKey)
		mc.BaseURL = mistralBaseURL
		client = openai.NewClientWithConfig(mc)
	case "ollama":
		oc := openai.DefaultConfig("")
		oc.BaseURL = cfg.OllamaBaseURL + "/v1"
		client = openai.NewClientWithConfig(oc)
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownProvider, cfg.ChatProvider)
	}

	resp, err := client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       cfg.ChatModel,
		Temperature: cfg.ChatTemperature,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: system},
			{Role: openai.ChatMessageRoleUser, Content: user},
		},
	})
	if err != nil {
		return "", &ProviderError{Provider: cfg.ChatProvider, Err: err}
	}

	if len(resp.Choices) == 0 {
		return "", &ProviderError{Provider: cfg.ChatProvider, Err: fmt.Errorf("empty completion response")}
	}

	return resp.Choices[0].Message.Content, nil
}
