package huggingface

import (
	"drheal-be/pkg/llm/openai"
)

// DefaultBaseURL is the OpenAI-compatible Hugging Face inference router.
const DefaultBaseURL = "https://router.huggingface.co/v1"

// NewHuggingFaceProvider returns a chat provider for models served by the
// Hugging Face router.
func NewHuggingFaceProvider(apiKey, baseURL, model string, temperature float64, maxTokens int) *openai.Provider {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if maxTokens <= 0 {
		maxTokens = 500
	}
	return openai.NewProvider("huggingface", apiKey, baseURL, model, temperature, maxTokens)
}
