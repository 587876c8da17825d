package jina

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeBatchReordersByIndex(t *testing.T) {
	var got embeddingRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer key", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = w.Write([]byte(`{"data":[
			{"index":1,"embedding":[0,2]},
			{"index":0,"embedding":[3,0]}
		]}`))
	}))
	defer srv.Close()

	p := NewProvider("key", 2).WithBaseURL(srv.URL)
	out, err := p.EncodeBatch(context.Background(), []string{"first", "", "second"})
	require.NoError(t, err)

	assert.Equal(t, []string{"first", "second"}, got.Input)
	assert.Equal(t, [][]float32{{1, 0}, {0, 0}, {0, 1}}, out)
}

func TestEncodeSurfacesAPIErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"detail":"slow down"}`))
	}))
	defer srv.Close()

	_, err := NewProvider("key", 2).WithBaseURL(srv.URL).Encode(context.Background(), "fever")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "429")
}

func TestEncodeRejectsWrongDimension(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"data":[{"index":0,"embedding":[1,2,3]}]}`))
	}))
	defer srv.Close()

	_, err := NewProvider("key", 2).WithBaseURL(srv.URL).Encode(context.Background(), "fever")
	assert.Error(t, err)
}
