package embedding

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

const (
	geminiEmbeddingModel = "text-embedding-004"
	geminiDefaultBaseURL = "https://generativelanguage.googleapis.com/v1"
)

type GeminiProvider struct {
	ApiKey    string
	BaseURL   string
	TaskType  string
	Client    *http.Client
	dimension int
}

func NewGeminiProvider(apiKey string, dimension int) *GeminiProvider {
	return &GeminiProvider{
		ApiKey:    apiKey,
		BaseURL:   geminiDefaultBaseURL,
		TaskType:  "SEMANTIC_SIMILARITY",
		Client:    &http.Client{Timeout: 60 * time.Second},
		dimension: dimension,
	}
}

func (p *GeminiProvider) Dimension() int {
	return p.dimension
}

func (p *GeminiProvider) request(text string) EmbeddingRequest {
	return EmbeddingRequest{
		Model: "models/" + geminiEmbeddingModel,
		Content: EmbeddingRequestContent{
			Parts: []EmbeddingRequestContentPart{{Text: text}},
		},
		TaskType: p.TaskType,
	}
}

func (p *GeminiProvider) post(ctx context.Context, method string, payload interface{}, out interface{}) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	endpoint := fmt.Sprintf("%s/models/%s:%s", p.BaseURL, geminiEmbeddingModel, method)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewBuffer(body))
	if err != nil {
		return err
	}
	req.Header.Set("x-goog-api-key", p.ApiKey)
	req.Header.Set("Content-Type", "application/json")

	res, err := p.Client.Do(req)
	if err != nil {
		return fmt.Errorf("gemini embedding request failed: %w", err)
	}
	defer res.Body.Close()

	resByte, err := io.ReadAll(res.Body)
	if err != nil {
		return err
	}
	if res.StatusCode != http.StatusOK {
		return fmt.Errorf("error from gemini response, code %d, body %s", res.StatusCode, string(resByte))
	}
	return json.Unmarshal(resByte, out)
}

func (p *GeminiProvider) Encode(ctx context.Context, text string) ([]float32, error) {
	if text == "" {
		return zeroVector(p.dimension), nil
	}

	var resEmbedding EmbeddingResponse
	if err := p.post(ctx, "embedContent", p.request(text), &resEmbedding); err != nil {
		return nil, err
	}
	if err := checkDimension("gemini", len(resEmbedding.Embedding.Values), p.dimension); err != nil {
		return nil, err
	}
	return Normalize(resEmbedding.Embedding.Values), nil
}

func (p *GeminiProvider) EncodeBatch(ctx context.Context, texts []string) ([][]float32, error) {
	return EncodeNonEmpty(ctx, texts, p.dimension, func(ctx context.Context, batch []string) ([][]float32, error) {
		payload := BatchEmbeddingRequest{Requests: make([]EmbeddingRequest, len(batch))}
		for i, text := range batch {
			payload.Requests[i] = p.request(text)
		}

		var res BatchEmbeddingResponse
		if err := p.post(ctx, "batchEmbedContents", payload, &res); err != nil {
			return nil, err
		}

		out := make([][]float32, len(res.Embeddings))
		for i, emb := range res.Embeddings {
			if err := checkDimension("gemini", len(emb.Values), p.dimension); err != nil {
				return nil, err
			}
			out[i] = Normalize(emb.Values)
		}
		return out, nil
	})
}
