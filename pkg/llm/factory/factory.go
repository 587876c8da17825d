package factory

import (
	"fmt"

	"drheal-be/pkg/llm"
	"drheal-be/pkg/llm/gemini"
	"drheal-be/pkg/llm/huggingface"
	"drheal-be/pkg/llm/ollama"
	"drheal-be/pkg/llm/openai"
)

type Settings struct {
	Provider    string
	Model       string
	BaseURL     string
	APIKey      string
	Temperature float64
	MaxTokens   int
}

func NewLLMProvider(s Settings) (llm.LLMProvider, error) {
	switch s.Provider {
	case "gemini":
		p := gemini.NewProvider(s.APIKey, s.Model, s.Temperature, s.MaxTokens)
		if s.BaseURL != "" {
			p.BaseURL = s.BaseURL
		}
		return p, nil
	case "ollama":
		baseURL := s.BaseURL
		if baseURL == "" {
			baseURL = "http://localhost:11434" // Default
		}
		return ollama.NewOllamaProvider(baseURL, s.Model), nil
	case "openai":
		return openai.NewProvider("openai", s.APIKey, s.BaseURL, s.Model, s.Temperature, s.MaxTokens), nil
	case "huggingface":
		return huggingface.NewHuggingFaceProvider(s.APIKey, s.BaseURL, s.Model, s.Temperature, s.MaxTokens), nil
	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s", s.Provider)
	}
}
