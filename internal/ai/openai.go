package ai

import (
	"context"
	"fmt"

	"github.com/sashabaranov/go-openai"
)

// openaiProvider calls the hosted OpenAI embeddings API
type openaiProvider struct {
	client *openai.Client
	model  string
}

func newOpenAIProvider(apiKey, model string) *openaiProvider {
	return &openaiProvider{
		client: openai.NewClient(apiKey),
		model:  model,
	}
}

func (p *openaiProvider) Name() string {
	return "openai"
}

func (p *openaiProvider) Embed(ctx context.Context, text string) ([]float32, error) {
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
