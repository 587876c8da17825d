package gemini

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"drheal-be/pkg/llm"
)

const defaultBaseURL = "https://generativelanguage.googleapis.com/v1beta"

type chatPart struct {
	Text string `json:"text"`
}

type chatContent struct {
	Parts []*chatPart `json:"parts"`
	Role  string      `json:"role,omitempty"`
}

type generationConfig struct {
	Temperature     float64 `json:"temperature"`
	MaxOutputTokens int     `json:"maxOutputTokens,omitempty"`
}

type chatRequest struct {
	SystemInstruction *chatContent      `json:"systemInstruction,omitempty"`
	Contents          []*chatContent    `json:"contents"`
	GenerationConfig  *generationConfig `json:"generationConfig,omitempty"`
}

type chatCandidate struct {
	Content      *chatContent `json:"content"`
	FinishReason string       `json:"finishReason"`
}

type chatResponse struct {
	Candidates []*chatCandidate `json:"candidates"`
}

type Provider struct {
	apiKey      string
	BaseURL     string
	model       string
	temperature float64
	maxTokens   int
	client      *http.Client
}

var _ llm.LLMProvider = (*Provider)(nil)

func NewProvider(apiKey, model string, temperature float64, maxTokens int) *Provider {
	if model == "" {
		model = "gemini-2.5-flash"
	}
	return &Provider{
		apiKey:      apiKey,
		BaseURL:     defaultBaseURL,
		model:       model,
		temperature: temperature,
		maxTokens:   maxTokens,
		client:      &http.Client{Timeout: 120 * time.Second},
	}
}

func (p *Provider) Chat(ctx context.Context, history []llm.Message, opts ...llm.Option) (string, error) {
	options := llm.Apply(llm.Options{
		Temperature: p.temperature,
		MaxTokens:   p.maxTokens,
		Model:       p.model,
	}, opts...)

	payload := chatRequest{
		GenerationConfig: &generationConfig{
			Temperature:     options.Temperature,
			MaxOutputTokens: options.MaxTokens,
		},
	}
	for _, msg := range history {
		part := []*chatPart{{Text: msg.Content}}
		switch msg.Role {
		case llm.RoleSystem:
			payload.SystemInstruction = &chatContent{Parts: part}
		case llm.RoleAssistant, "model":
			payload.Contents = append(payload.Contents, &chatContent{Parts: part, Role: "model"})
		default:
			payload.Contents = append(payload.Contents, &chatContent{Parts: part, Role: "user"})
		}
	}

	payloadJson, err := json.Marshal(payload)
	if err != nil {
		return "", err
	}

	endpoint := fmt.Sprintf("%s/models/%s:generateContent", p.BaseURL, options.Model)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewBuffer(payloadJson))
	if err != nil {
		return "", err
	}
	req.Header.Set("x-goog-api-key", p.apiKey)
	req.Header.Set("Content-Type", "application/json")

	res, err := p.client.Do(req)
	if err != nil {
		return "", err
	}
	defer res.Body.Close()

	resBody, err := io.ReadAll(res.Body)
	if err != nil {
		return "", err
	}
	if res.StatusCode != http.StatusOK {
		return "", &llm.StatusError{Provider: "gemini", Code: res.StatusCode, Body: string(resBody)}
	}

	var geminiRes chatResponse
	if err := json.Unmarshal(resBody, &geminiRes); err != nil {
		return "", err
	}
	if len(geminiRes.Candidates) == 0 || geminiRes.Candidates[0].Content == nil {
		return "", llm.ErrEmptyResponse
	}

	var sb strings.Builder
	for _, part := range geminiRes.Candidates[0].Content.Parts {
		sb.WriteString(part.Text)
	}
	return sb.String(), nil
}

func (p *Provider) Generate(ctx context.Context, prompt string, opts ...llm.Option) (string, error) {
	return p.Chat(ctx, []llm.Message{{Role: llm.RoleUser, Content: prompt}}, opts...)
}
