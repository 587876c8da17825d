package openai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"drheal-be/pkg/llm"

	goopenai "github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProviderGenerate(t *testing.T) {
	var got goopenai.ChatCompletionRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer token", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"1","object":"chat.completion","choices":[{"index":0,"message":{"role":"assistant","content":"Drink fluids."},"finish_reason":"stop"}]}`))
	}))
	defer srv.Close()

	p := NewProvider("test", "token", srv.URL, "medical-model", 0.2, 300)
	out, err := p.Generate(context.Background(), "I have a cold")
	require.NoError(t, err)
	assert.Equal(t, "Drink fluids.", out)

	assert.Equal(t, "medical-model", got.Model)
	assert.Equal(t, 300, got.MaxTokens)
	require.Len(t, got.Messages, 1)
	assert.Equal(t, llm.RoleUser, got.Messages[0].Role)
	assert.Equal(t, "I have a cold", got.Messages[0].Content)
}

func TestProviderTranslatesStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte(`{"error":{"message":"overloaded","type":"server_error"}}`))
	}))
	defer srv.Close()

	p := NewProvider("test", "token", srv.URL, "", 0, 0)
	_, err := p.Generate(context.Background(), "hello")

	var status *llm.StatusError
	require.ErrorAs(t, err, &status)
	assert.Equal(t, http.StatusServiceUnavailable, status.Code)
	assert.Equal(t, "test", status.Provider)
	assert.True(t, status.Retryable())
}

func TestProviderEmptyChoices(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"1","choices":[]}`))
	}))
	defer srv.Close()

	p := NewProvider("test", "token", srv.URL, "", 0, 0)
	_, err := p.Generate(context.Background(), "hello")
	assert.ErrorIs(t, err, llm.ErrEmptyResponse)
}
