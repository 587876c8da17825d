package service

import (
	"context"

	"drheal-be/internal/dto"
	"drheal-be/pkg/retrieval"
	"drheal-be/pkg/websearch"
)

// KnowledgeStats reports the size and shape of the similarity index.
type KnowledgeStats interface {
	Count(ctx context.Context) (int64, error)
	Dimension() int
}

type ISearchService interface {
	Search(ctx context.Context, req *dto.SearchRequest) (*dto.SearchResponse, error)
	Stats(ctx context.Context) (*dto.StatsResponse, error)
	WebSearch(ctx context.Context, req *dto.WebSearchRequest) *dto.WebSearchResponse
}

type searchService struct {
	searcher    retrieval.Searcher
	stats       KnowledgeStats
	vectorStore string
	web         websearch.Searcher
}

func NewSearchService(searcher retrieval.Searcher, stats KnowledgeStats, vectorStore string, web websearch.Searcher) ISearchService {
	return &searchService{
		searcher:    searcher,
		stats:       stats,
		vectorStore: vectorStore,
		web:         web,
	}
}

func (s *searchService) Search(ctx context.Context, req *dto.SearchRequest) (*dto.SearchResponse, error) {
	results, err := s.searcher.Search(ctx, req.Query, req.NResults, req.FilterType)
	if err != nil {
		return nil, err
	}

	items := make([]dto.SearchResultItem, 0, len(results))
	for _, r := range results {
		items = append(items, dto.SearchResultItem{
			Name:       r.Name(),
			Type:       r.Type(),
			Id:         r.SourceID(),
			Similarity: retrieval.Round3(r.Similarity),
			Text:       r.Text,
		})
	}

	return &dto.SearchResponse{
		Query:   req.Query,
		Results: items,
		Count:   len(items),
	}, nil
}

func (s *searchService) Stats(ctx context.Context) (*dto.StatsResponse, error) {
	count, err := s.stats.Count(ctx)
	if err != nil {
		return nil, &retrieval.Error{Op: "count", Err: err}
	}
	return &dto.StatsResponse{
		TotalDocuments:     count,
		EmbeddingDimension: s.stats.Dimension(),
		VectorStore:        s.vectorStore,
	}, nil
}

func (s *searchService) WebSearch(ctx context.Context, req *dto.WebSearchRequest) *dto.WebSearchResponse {
	outcome := s.web.Search(ctx, req.Query, req.MaxResults)

	results := make([]dto.WebSearchResult, 0, len(outcome.Results))
	for _, r := range outcome.Results {
		results = append(results, dto.WebSearchResult{
			Title:   r.Title,
			Snippet: r.Snippet,
			Link:    r.Link,
			Source:  r.Source,
		})
	}

	return &dto.WebSearchResponse{
		Query:     req.Query,
		Results:   results,
		Reason:    outcome.Reason,
		Formatted: websearch.FormatResults(outcome.Results),
	}
}
