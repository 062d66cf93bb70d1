package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// ollamaProvider calls a self-hosted Ollama instance at a configurable base URL
type ollamaProvider struct {
	baseURL    string
	model      string
	httpClient *http.Client
}

func newOllamaProvider(baseURL, model string, httpClient *http.Client) *ollamaProvider {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 60 * time.Second}
	}

	return &ollamaProvider{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		model:      model,
		httpClient: httpClient,
	}
}

func (p *ollamaProvider) Name() string {
	return "ollama"
}

type ollamaEmbedRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
}

type ollamaEmbedResponse struct {
	Embedding []float64 `json:"embedding"`
}

func (p *ollamaProvider) Embed(ctx context.Context, text string) ([]float32, error) {
	body, err := json.Marshal(ollamaEmbedRequest{Model: p.model, Prompt: text})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal embed request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+"/api/embeddings", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to build embed request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, &ProviderError{Provider: p.Name(), Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, &ProviderError{
			Provider: p.Name(),
			Err:      fmt.Errorf("unexpected status %d: %s", resp.StatusCode, strings.TrimSpace(string(msg))),
		}
	}

	var parsed ollamaEmbedResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, &ProviderError{Provider: p.Name(), Err: fmt.Errorf("failed to decode response: %w", err)}
	}

	if len(parsed.Embedding) == 0 {
		return nil, &ProviderError{Provider: p.Name(), Err: fmt.Errorf("empty embedding response")}
	}

	vector := make([]float32, len(parsed.Embedding))
	for i, v := range parsed.Embedding {
		vector[i] = float32(v)
	}

	return vector, nil
}
