package ragchain

import (
	"context"

	"drheal-be/internal/pkg/logger"
	"drheal-be/pkg/agent"
	"drheal-be/pkg/llm"
	"drheal-be/pkg/retrieval"
)

const (
	ChatTypeSymptoms = "symptoms"
	ChatTypeDisease  = "disease"

	noContextPlaceholder = "No relevant medical information found in the knowledge base."
)

type Result struct {
	Query      string
	Response   string
	Context    string
	RAGResults []retrieval.SearchResult
	NResults   int
}

// Chain answers with a single retrieval and a single prompt, without routing.
type Chain struct {
	searcher  retrieval.Searcher
	generator llm.Generator
	logger    logger.ILogger
}

func NewChain(searcher retrieval.Searcher, generator llm.Generator, log logger.ILogger) *Chain {
	if log == nil {
		log = logger.NewNopLogger()
	}
	return &Chain{searcher: searcher, generator: generator, logger: log}
}

// Run dispatches on chatType; unknown types get the general template.
func (c *Chain) Run(ctx context.Context, chatType, query string, n int) (*Result, error) {
	switch chatType {
	case ChatTypeSymptoms:
		return c.AnalyzeSymptoms(ctx, query, n)
	case ChatTypeDisease:
		return c.DiseaseInfo(ctx, query, n)
	default:
		return c.AnswerQuestion(ctx, query, n)
	}
}

func (c *Chain) AnalyzeSymptoms(ctx context.Context, query string, n int) (*Result, error) {
	return c.run(ctx, "symptom_analysis", symptomAnalysisTemplate, query, n, "")
}

func (c *Chain) DiseaseInfo(ctx context.Context, query string, n int) (*Result, error) {
	return c.run(ctx, "disease_info", diseaseInfoTemplate, query, n, "disease")
}

func (c *Chain) AnswerQuestion(ctx context.Context, query string, n int) (*Result, error) {
	return c.run(ctx, "general", generalMedicalTemplate, query, n, "")
}

func (c *Chain) run(ctx context.Context, name, template, query string, n int, filterType string) (*Result, error) {
	results, err := c.searcher.Search(ctx, query, n, filterType)
	if err != nil {
		c.logger.Error("RAG_CHAIN", "Retrieval failed", map[string]interface{}{
			"chain": name,
			"error": err.Error(),
		})
		return nil, err
	}

	contextBlock := retrieval.FormatContext(results, noContextPlaceholder)
	response, err := c.generator.Generate(ctx, agent.RenderPrompt(template, contextBlock, query))
	if err != nil {
		c.logger.Error("RAG_CHAIN", "Generation failed", map[string]interface{}{
			"chain": name,
			"error": err.Error(),
		})
		return nil, err
	}

	c.logger.Info("RAG_CHAIN", "Generated response", map[string]interface{}{
		"chain":           name,
		"retrieved":       len(results),
		"response_length": len(response),
	})
	return &Result{
		Query:      query,
		Response:   response,
		Context:    contextBlock,
		RAGResults: results,
		NResults:   len(results),
	}, nil
}
