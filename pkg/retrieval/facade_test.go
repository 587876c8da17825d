package retrieval

import (
	"context"
	"errors"
	"testing"
	"time"

	"drheal-be/pkg/embedding"
	"drheal-be/pkg/metrics"
	"drheal-be/pkg/vectorstore"

	"github.com/alicebob/miniredis/v2"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type failingProvider struct{}

func (failingProvider) Dimension() int { return 16 }

func (failingProvider) Encode(context.Context, string) ([]float32, error) {
	return nil, errors.New("model offline")
}

func (failingProvider) EncodeBatch(context.Context, []string) ([][]float32, error) {
	return nil, errors.New("model offline")
}

type failingIndex struct{ *vectorstore.MemoryIndex }

func (failingIndex) Query(context.Context, []float32, int, map[string]string) ([]vectorstore.Candidate, error) {
	return nil, errors.New("connection refused")
}

func newFacade(t *testing.T) (*Facade, embedding.Provider) {
	t.Helper()
	ctx := context.Background()
	provider := embedding.NewHashingProvider(128)
	idx := vectorstore.NewMemoryIndex(128)

	docs := []struct{ id, kind, name, text string }{
		{"symptom_headache", "symptom", "Headache", "Symptom: headache\nDescription: Pain in the head"},
		{"symptom_cough", "symptom", "Cough", "Symptom: cough\nDescription: Reflex that clears the airways"},
		{"disease_migraine", "disease", "Migraine", "Disease: Migraine\nDescription: Recurring headache with nausea"},
		{"disease_pneumonia", "disease", "Pneumonia", "Disease: Pneumonia\nDescription: Lung infection with cough and fever"},
	}
	for _, d := range docs {
		vec, err := provider.Encode(ctx, d.text)
		require.NoError(t, err)
		require.NoError(t, idx.Upsert(ctx, []vectorstore.Record{{
			ID: d.id, Vector: vec, Text: d.text,
			Metadata: map[string]string{"type": d.kind, "name": d.name, "id": d.id[len(d.kind)+1:]},
		}}))
	}
	return NewFacade(provider, idx, nil, nil), provider
}

func TestFacadeSearch(t *testing.T) {
	ctx := context.Background()
	facade, _ := newFacade(t)

	t.Run("at most n results with non-increasing similarity", func(t *testing.T) {
		results, err := facade.Search(ctx, "headache", 3, "")
		require.NoError(t, err)
		require.Len(t, results, 3)
		for i := 1; i < len(results); i++ {
			assert.LessOrEqual(t, results[i].Similarity, results[i-1].Similarity)
		}
		assert.InDelta(t, 1-results[0].Distance/2, results[0].Similarity, 1e-12)
	})

	t.Run("exact text ranks first", func(t *testing.T) {
		results, err := facade.Search(ctx, "Disease: Pneumonia\nDescription: Lung infection with cough and fever", 4, "")
		require.NoError(t, err)
		assert.Equal(t, "disease_pneumonia", results[0].ID)
		assert.Equal(t, "pneumonia", results[0].SourceID())
		assert.GreaterOrEqual(t, results[0].Similarity, 0.9)
	})

	t.Run("disease narrowing only returns diseases", func(t *testing.T) {
		results, err := facade.SearchDiseases(ctx, "headache", 5)
		require.NoError(t, err)
		require.Len(t, results, 2)
		for _, r := range results {
			assert.Equal(t, "disease", r.Type())
		}
	})

	t.Run("symptom narrowing", func(t *testing.T) {
		results, err := facade.SearchSymptoms(ctx, "cough", 1)
		require.NoError(t, err)
		require.Len(t, results, 1)
		assert.Equal(t, "Cough", results[0].Name())
	})
}

func TestFacadeEmptyIndex(t *testing.T) {
	facade := NewFacade(embedding.NewHashingProvider(16), vectorstore.NewMemoryIndex(16), nil, nil)

	results, err := facade.Search(context.Background(), "fever", 5, "")
	require.NoError(t, err)
	assert.Empty(t, results)
	assert.Equal(t, "No relevant information found.", FormatContext(results, "No relevant information found."))
}

func TestFacadeWrapsFailures(t *testing.T) {
	ctx := context.Background()
	rec := metrics.New()

	facade := NewFacade(failingProvider{}, vectorstore.NewMemoryIndex(16), rec, nil)
	_, err := facade.Search(ctx, "fever", 5, "")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrRetrieval)
	var rerr *Error
	require.ErrorAs(t, err, &rerr)
	assert.Equal(t, "embed", rerr.Op)

	facade = NewFacade(embedding.NewHashingProvider(16), failingIndex{vectorstore.NewMemoryIndex(16)}, rec, nil)
	_, err = facade.Search(ctx, "fever", 5, "")
	assert.ErrorIs(t, err, ErrRetrieval)
	require.ErrorAs(t, err, &rerr)
	assert.Equal(t, "query", rerr.Op)

	// both failures land in the single result="error" series
	count, err := testutil.GatherAndCount(rec.Registry(), "drheal_retrieval_duration_seconds")
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestFormatContext(t *testing.T) {
	results := []SearchResult{
		{Text: "Symptom: fever", Metadata: map[string]string{"name": "Fever", "type": "symptom"}, Similarity: 0.874},
		{Text: "Disease: Flu", Metadata: map[string]string{"name": "Flu", "type": "disease"}, Similarity: 0.5},
	}
	want := "1. Fever (symptom, 87% match)\nSymptom: fever\n\n2. Flu (disease, 50% match)\nDisease: Flu\n"
	assert.Equal(t, want, FormatContext(results, "unused"))
	assert.Equal(t, 0.874, Round3(0.87449))
}

type countingSearcher struct {
	calls int
}

func (c *countingSearcher) Search(_ context.Context, query string, n int, filterType string) ([]SearchResult, error) {
	c.calls++
	return []SearchResult{{ID: "symptom_" + query, Text: filterType, Similarity: 0.9}}, nil
}

func TestCachedSearcher(t *testing.T) {
	ctx := context.Background()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})

	inner := &countingSearcher{}
	cached := NewCachedSearcher(inner, rdb, time.Minute, nil)

	first, err := cached.Search(ctx, "fever", 5, "symptom")
	require.NoError(t, err)
	second, err := cached.Search(ctx, "fever", 5, "symptom")
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Equal(t, 1, inner.calls)

	_, err = cached.Search(ctx, "fever", 3, "symptom")
	require.NoError(t, err)
	assert.Equal(t, 2, inner.calls)

	require.NoError(t, cached.Invalidate(ctx))
	assert.Empty(t, mr.Keys())

	_, err = cached.Search(ctx, "fever", 5, "symptom")
	require.NoError(t, err)
	assert.Equal(t, 3, inner.calls)
}

func TestCachedSearcherWithoutRedis(t *testing.T) {
	inner := &countingSearcher{}
	cached := NewCachedSearcher(inner, nil, time.Minute, nil)

	_, _ = cached.Search(context.Background(), "fever", 5, "")
	_, _ = cached.Search(context.Background(), "fever", 5, "")
	assert.Equal(t, 2, inner.calls)
	assert.NoError(t, cached.Invalidate(context.Background()))
}
