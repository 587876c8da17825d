package agent

import (
	"context"
	"fmt"

	"drheal-be/internal/pkg/logger"
	"drheal-be/pkg/llm"
	"drheal-be/pkg/retrieval"
)

const noContextPlaceholder = "No relevant information found."

type Handler interface {
	ID() HandlerID
	OutputKey() string
	DisplayName() string
	Handle(ctx context.Context, state *AgentState) error
}

// HandlerError is a failed handler step. The state is left untouched.
type HandlerError struct {
	Handler            HandlerID
	PotentialEmergency bool
	Err                error
}

func (e *HandlerError) Error() string {
	return fmt.Sprintf("%s: %v", e.Handler, e.Err)
}

func (e *HandlerError) Unwrap() error {
	return e.Err
}

type specialist struct {
	id          HandlerID
	displayName string
	outputKey   string
	countKey    string
	k           int
	filterType  string
	template    string
	detect      bool

	searcher  retrieval.Searcher
	generator llm.Generator
	logger    logger.ILogger
}

func NewSymptomAnalyzer(searcher retrieval.Searcher, generator llm.Generator, log logger.ILogger) Handler {
	return newSpecialist(specialist{
		id:          SymptomAnalyzer,
		displayName: "SymptomAnalyzer",
		outputKey:   OutputSymptomAnalysis,
		countKey:    MetaSymptomsRetrieved,
		k:           5,
		template:    symptomAnalyzerPrompt,
	}, searcher, generator, log)
}

func NewDiseaseExpert(searcher retrieval.Searcher, generator llm.Generator, log logger.ILogger) Handler {
	return newSpecialist(specialist{
		id:          DiseaseExpert,
		displayName: "DiseaseExpert",
		outputKey:   OutputDiseaseInfo,
		countKey:    MetaDiseasesRetrieved,
		k:           3,
		filterType:  "disease",
		template:    diseaseExpertPrompt,
	}, searcher, generator, log)
}

func NewTreatmentAdvisor(searcher retrieval.Searcher, generator llm.Generator, log logger.ILogger) Handler {
	return newSpecialist(specialist{
		id:          TreatmentAdvisor,
		displayName: "TreatmentAdvisor",
		outputKey:   OutputTreatmentAdvice,
		countKey:    MetaTreatmentsRetrieved,
		k:           5,
		template:    treatmentAdvisorPrompt,
	}, searcher, generator, log)
}

// NewEmergencyTriage also flags the query with DetectEmergency, independently
// of the routing decision.
func NewEmergencyTriage(searcher retrieval.Searcher, generator llm.Generator, log logger.ILogger) Handler {
	return newSpecialist(specialist{
		id:          EmergencyTriage,
		displayName: "EmergencyTriage",
		outputKey:   OutputEmergencyTriage,
		k:           3,
		template:    emergencyTriagePrompt,
		detect:      true,
	}, searcher, generator, log)
}

func newSpecialist(s specialist, searcher retrieval.Searcher, generator llm.Generator, log logger.ILogger) *specialist {
	if log == nil {
		log = logger.NewNopLogger()
	}
	s.searcher = searcher
	s.generator = generator
	s.logger = log
	return &s
}

func (s *specialist) ID() HandlerID       { return s.id }
func (s *specialist) OutputKey() string   { return s.outputKey }
func (s *specialist) DisplayName() string { return s.displayName }

func (s *specialist) Handle(ctx context.Context, state *AgentState) error {
	s.logger.Info("AGENT", fmt.Sprintf("[%s] Processing query", s.displayName), map[string]interface{}{
		"query": state.Query,
	})

	potentialEmergency := s.detect && DetectEmergency(state.Query)

	results, err := s.searcher.Search(ctx, state.Query, s.k, s.filterType)
	if err != nil {
		return &HandlerError{Handler: s.id, PotentialEmergency: potentialEmergency, Err: err}
	}

	contextBlock := retrieval.FormatContext(results, noContextPlaceholder)
	prompt := RenderPrompt(s.template, contextBlock, state.Query)

	output, err := s.generator.Generate(ctx, prompt)
	if err != nil {
		return &HandlerError{Handler: s.id, PotentialEmergency: potentialEmergency, Err: err}
	}

	state.RAGResults = results
	state.AgentOutputs[s.outputKey] = output
	if s.countKey != "" {
		state.Metadata[s.countKey] = len(results)
	}
	if s.detect {
		state.Metadata[MetaIsPotentialEmergency] = potentialEmergency
		state.Metadata[MetaEmergencyKeywordsDetected] = potentialEmergency
	}

	s.logger.Info("AGENT", fmt.Sprintf("[%s] Complete", s.displayName), map[string]interface{}{
		"retrieved":           len(results),
		"response_length":     len(output),
		"potential_emergency": potentialEmergency,
	})
	return nil
}
