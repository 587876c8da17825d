package factory

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLLMProvider(t *testing.T) {
	for _, name := range []string{"gemini", "ollama", "openai", "huggingface"} {
		t.Run(name, func(t *testing.T) {
			p, err := NewLLMProvider(Settings{Provider: name, APIKey: "key", Model: "m"})
			require.NoError(t, err)
			assert.NotNil(t, p)
		})
	}

	_, err := NewLLMProvider(Settings{Provider: "nope"})
	assert.ErrorContains(t, err, "unsupported LLM provider")
}
