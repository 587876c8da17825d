package retrieval

import (
	"context"
	"errors"
	"fmt"
	"time"

	"drheal-be/internal/pkg/logger"
	"drheal-be/pkg/embedding"
	"drheal-be/pkg/metrics"
	"drheal-be/pkg/vectorstore"
)

var ErrRetrieval = errors.New("retrieval failed")

// Error wraps an embedding or index failure. It matches ErrRetrieval with errors.Is.
type Error struct {
	Op  string
	Err error
}

func (e *Error) Error() string {
	return fmt.Sprintf("retrieval %s: %v", e.Op, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func (e *Error) Is(target error) bool {
	return target == ErrRetrieval
}

type SearchResult struct {
	ID         string            `json:"id"`
	Text       string            `json:"text"`
	Metadata   map[string]string `json:"metadata"`
	Distance   float64           `json:"distance"`
	Similarity float64           `json:"similarity"`
}

func (r SearchResult) Name() string     { return r.Metadata["name"] }
func (r SearchResult) Type() string     { return r.Metadata["type"] }
func (r SearchResult) SourceID() string { return r.Metadata["id"] }

// Searcher is what handlers and endpoints depend on.
type Searcher interface {
	Search(ctx context.Context, query string, n int, filterType string) ([]SearchResult, error)
}

type Facade struct {
	provider embedding.Provider
	index    vectorstore.Index
	metrics  *metrics.Recorder
	logger   logger.ILogger
}

func NewFacade(provider embedding.Provider, index vectorstore.Index, rec *metrics.Recorder, log logger.ILogger) *Facade {
	if log == nil {
		log = logger.NewNopLogger()
	}
	return &Facade{provider: provider, index: index, metrics: rec, logger: log}
}

// Similarity maps cosine distance in [0,2] onto [0,1].
func Similarity(distance float64) float64 {
	return 1 - distance/2
}

// Search embeds the query and returns at most n results, best first. An
// empty filterType searches every record type.
func (f *Facade) Search(ctx context.Context, query string, n int, filterType string) (results []SearchResult, err error) {
	start := time.Now()
	defer func() { f.metrics.ObserveRetrieval(time.Since(start), err) }()

	vec, err := f.provider.Encode(ctx, query)
	if err != nil {
		f.logger.Error("RETRIEVAL", "Query embedding failed", map[string]interface{}{"error": err.Error()})
		return nil, &Error{Op: "embed", Err: err}
	}

	var filter map[string]string
	if filterType != "" {
		filter = map[string]string{"type": filterType}
	}

	candidates, err := f.index.Query(ctx, vec, n, filter)
	if err != nil {
		f.logger.Error("RETRIEVAL", "Index query failed", map[string]interface{}{"error": err.Error()})
		return nil, &Error{Op: "query", Err: err}
	}

	results = make([]SearchResult, len(candidates))
	for i, c := range candidates {
		results[i] = SearchResult{
			ID:         c.ID,
			Text:       c.Text,
			Metadata:   c.Metadata,
			Distance:   c.Distance,
			Similarity: Similarity(c.Distance),
		}
	}

	f.logger.Debug("RETRIEVAL", "Search complete", map[string]interface{}{
		"n_results": n,
		"filter":    filterType,
		"found":     len(results),
	})
	return results, nil
}

func (f *Facade) SearchSymptoms(ctx context.Context, query string, n int) ([]SearchResult, error) {
	return f.Search(ctx, query, n, "symptom")
}

func (f *Facade) SearchDiseases(ctx context.Context, query string, n int) ([]SearchResult, error) {
	return f.Search(ctx, query, n, "disease")
}

func (f *Facade) Count(ctx context.Context) (int64, error) {
	return f.index.Count(ctx)
}

func (f *Facade) Dimension() int {
	return f.provider.Dimension()
}
