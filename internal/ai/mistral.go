package ai

import (
	"context"
	"fmt"

	"github.com/sashabaranov/go-openai"
)

const mistralBaseURL = "https://api.mistral.ai/v1"

// mistralProvider calls the hosted Mistral embeddings API, which is
// OpenAI-compatible on the wire.
type mistralProvider struct {
	client *openai.Client
	model  string
}

func newMistralProvider(apiKey, model string) *mistralProvider {
	cfg := openai.DefaultConfig(apiKey)
	cfg.BaseURL = mistralBaseURL

	return &mistralProvider{
		client: openai.NewClientWithConfig(cfg),
		model:  model,
	}
}

func (p *mistralProvider) Name() string {
	return "mistral"
}

func (p *mistralProvider) Embed(ctx context.Context, text string) ([]float32, error) {
	resp, err := p.client.CreateEmbeddings(ctx, openai.EmbeddingRequestStrings{
		Input: []string{text},
		Model: openai.EmbeddingModel(p.model),
	})
	if err != nil {
		return nil, &ProviderError{Provider: p.Name(), Err: err}
	}

	if len(resp.Data) == 0 {
		return nil, &ProviderError{Provider: p.Name(), Err: fmt.Errorf("empty embedding response")}
	}

	return resp.Data[0].Embedding, nil
}
