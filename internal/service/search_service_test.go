package service

import (
	"context"
	"errors"
	"testing"

	"drheal-be/internal/dto"
	"drheal-be/pkg/ragchain"
	"drheal-be/pkg/retrieval"
	"drheal-be/pkg/websearch"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubSearcher struct {
	results []retrieval.SearchResult
	err     error
	calls   []string
}

func (s *stubSearcher) Search(_ context.Context, query string, n int, filterType string) ([]retrieval.SearchResult, error) {
	s.calls = append(s.calls, filterType)
	if s.err != nil {
		return nil, s.err
	}
	if n < len(s.results) {
		return s.results[:n], nil
	}
	return s.results, nil
}

type stubStats struct {
	count int64
	err   error
}

func (s stubStats) Count(context.Context) (int64, error) { return s.count, s.err }
func (s stubStats) Dimension() int                       { return 768 }

type stubWeb struct {
	outcome websearch.Outcome
}

func (s stubWeb) Search(context.Context, string, int) websearch.Outcome { return s.outcome }

func sampleResults() []retrieval.SearchResult {
	return []retrieval.SearchResult{
		{
			ID:         "symptom_fever",
			Text:       "Symptom: Fever",
			Metadata:   map[string]string{"name": "Fever", "type": "symptom", "id": "fever"},
			Similarity: 0.87654,
		},
		{
			ID:         "disease_flu",
			Text:       "Disease: Influenza",
			Metadata:   map[string]string{"name": "Influenza", "type": "disease", "id": "flu"},
			Similarity: 0.5,
		},
	}
}

func TestSearchServiceSearch(t *testing.T) {
	searcher := &stubSearcher{results: sampleResults()}
	svc := NewSearchService(searcher, stubStats{count: 2}, "memory", stubWeb{})

	res, err := svc.Search(context.Background(), &dto.SearchRequest{Query: "fever", NResults: 5, FilterType: "symptom"})
	require.NoError(t, err)
	assert.Equal(t, "fever", res.Query)
	assert.Equal(t, 2, res.Count)
	assert.Equal(t, dto.SearchResultItem{Name: "Fever", Type: "symptom", Id: "fever", Similarity: 0.877, Text: "Symptom: Fever"}, res.Results[0])
	assert.Equal(t, []string{"symptom"}, searcher.calls)
}

func TestSearchServicePropagatesRetrievalFailure(t *testing.T) {
	failure := &retrieval.Error{Op: "encode", Err: errors.New("provider down")}
	svc := NewSearchService(&stubSearcher{err: failure}, stubStats{}, "memory", stubWeb{})

	_, err := svc.Search(context.Background(), &dto.SearchRequest{Query: "fever", NResults: 5})
	assert.ErrorIs(t, err, retrieval.ErrRetrieval)
}

func TestSearchServiceStats(t *testing.T) {
	svc := NewSearchService(&stubSearcher{}, stubStats{count: 42}, "pgvector", stubWeb{})
	res, err := svc.Stats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, &dto.StatsResponse{TotalDocuments: 42, EmbeddingDimension: 768, VectorStore: "pgvector"}, res)

	svc = NewSearchService(&stubSearcher{}, stubStats{err: errors.New("db down")}, "pgvector", stubWeb{})
	_, err = svc.Stats(context.Background())
	assert.ErrorIs(t, err, retrieval.ErrRetrieval)
}

func TestSearchServiceWebSearch(t *testing.T) {
	t.Run("results", func(t *testing.T) {
		web := stubWeb{outcome: websearch.Outcome{Results: []websearch.Result{
			{Title: "Flu", Snippet: "Influenza overview", Link: "https://www.cdc.gov/flu", Source: "www.cdc.gov"},
		}}}
		res := NewSearchService(&stubSearcher{}, stubStats{}, "memory", web).
			WebSearch(context.Background(), &dto.WebSearchRequest{Query: "flu", MaxResults: 3})
		require.Len(t, res.Results, 1)
		assert.Empty(t, res.Reason)
		assert.Contains(t, res.Formatted, "Latest Medical Information from Web")
	})

	t.Run("unavailable", func(t *testing.T) {
		web := stubWeb{outcome: websearch.Outcome{Reason: websearch.ReasonUnavailable}}
		res := NewSearchService(&stubSearcher{}, stubStats{}, "memory", web).
			WebSearch(context.Background(), &dto.WebSearchRequest{Query: "flu", MaxResults: 3})
		assert.Empty(t, res.Results)
		assert.Equal(t, websearch.ReasonUnavailable, res.Reason)
		assert.Equal(t, "No web search results found.", res.Formatted)
	})
}

type stubChain struct {
	chatType string
	result   *ragchain.Result
	err      error
}

func (s *stubChain) Run(_ context.Context, chatType, _ string, _ int) (*ragchain.Result, error) {
	s.chatType = chatType
	return s.result, s.err
}

func TestChatService(t *testing.T) {
	results := sampleResults()
	chain := &stubChain{result: &ragchain.Result{
		Query:      "I have a fever",
		Response:   "Fever is usually caused by infection.",
		RAGResults: results,
		NResults:   len(results),
	}}

	res, err := NewChatService(chain).Chat(context.Background(), &dto.ChatRequest{Query: "I have a fever", NResults: 5, ChatType: "symptoms"})
	require.NoError(t, err)
	assert.Equal(t, "symptoms", chain.chatType)
	assert.Equal(t, "Fever is usually caused by infection.", res.Response)
	assert.Equal(t, 2, res.NResults)
	assert.Equal(t, dto.RAGResultItem{Name: "Fever", Type: "symptom", Similarity: 0.877}, res.RAGResults[0])

	chain.err = errors.New("boom")
	_, err = NewChatService(chain).Chat(context.Background(), &dto.ChatRequest{Query: "x", NResults: 5})
	assert.Error(t, err)
}
