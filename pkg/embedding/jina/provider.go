package jina

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sort"
	"time"

	"drheal-be/pkg/embedding"
)

type Provider struct {
	apiKey    string
	baseURL   string
	model     string
	client    *http.Client
	dimension int
}

var _ embedding.Provider = (*Provider)(nil)

type embeddingRequest struct {
	Model string   `json:"model"`
	Input []string `json:"input"`
}

type embeddingResponse struct {
	Data []struct {
		Object    string    `json:"object"`
		Index     int       `json:"index"`
		Embedding []float32 `json:"embedding"`
	} `json:"data"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

// NewProvider targets jina-embeddings-v2-base-en (768 dimensions).
func NewProvider(apiKey string, dimension int) *Provider {
	return &Provider{
		apiKey:    apiKey,
		baseURL:   "https://api.jina.ai/v1/embeddings",
		model:     "jina-embeddings-v2-base-en",
		client:    &http.Client{Timeout: 60 * time.Second},
		dimension: dimension,
	}
}

// WithBaseURL points the provider at another endpoint (tests, proxies).
func (p *Provider) WithBaseURL(baseURL string) *Provider {
	p.baseURL = baseURL
	return p
}

func (p *Provider) Dimension() int {
	return p.dimension
}

func (p *Provider) Encode(ctx context.Context, text string) ([]float32, error) {
	vectors, err := p.EncodeBatch(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vectors[0], nil
}

func (p *Provider) EncodeBatch(ctx context.Context, texts []string) ([][]float32, error) {
	return embedding.EncodeNonEmpty(ctx, texts, p.dimension, p.call)
}

func (p *Provider) call(ctx context.Context, input []string) ([][]float32, error) {
	jsonData, err := json.Marshal(embeddingRequest{
		Model: p.model,
		Input: input,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL, bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", p.apiKey))

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("jina api error (status %d): %s", resp.StatusCode, string(bodyBytes))
	}

	var jinaResp embeddingResponse
	if err := json.Unmarshal(bodyBytes, &jinaResp); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	if jinaResp.Error != nil {
		return nil, fmt.Errorf("jina api returned error: %s", jinaResp.Error.Message)
	}
	if len(jinaResp.Data) != len(input) {
		return nil, fmt.Errorf("jina api returned %d embeddings for %d inputs", len(jinaResp.Data), len(input))
	}

	// The API reports each item's input index; do not trust response order.
	sort.SliceStable(jinaResp.Data, func(i, j int) bool {
		return jinaResp.Data[i].Index < jinaResp.Data[j].Index
	})

	out := make([][]float32, len(jinaResp.Data))
	for i, item := range jinaResp.Data {
		if p.dimension > 0 && len(item.Embedding) != p.dimension {
			return nil, fmt.Errorf("%w: jina returned %d values, expected %d",
				embedding.ErrDimensionMismatch, len(item.Embedding), p.dimension)
		}
		out[i] = embedding.Normalize(item.Embedding)
	}
	return out, nil
}
