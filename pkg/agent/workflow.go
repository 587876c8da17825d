package agent

import (
	"context"
	"errors"
	"fmt"

	"drheal-be/internal/pkg/logger"
	"drheal-be/pkg/llm"
	"drheal-be/pkg/metrics"
	"drheal-be/pkg/retrieval"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

const fallbackResponse = "No response generated"

var tracer = otel.Tracer("drheal-be/pkg/agent")

// Workflow routes a query to one handler and formats its output.
type Workflow struct {
	handlers map[HandlerID]Handler
	metrics  *metrics.Recorder
	logger   logger.ILogger
}

func NewWorkflow(searcher retrieval.Searcher, generator llm.Generator, rec *metrics.Recorder, log logger.ILogger) *Workflow {
	return NewWorkflowWithHandlers(rec, log,
		NewSymptomAnalyzer(searcher, generator, log),
		NewDiseaseExpert(searcher, generator, log),
		NewTreatmentAdvisor(searcher, generator, log),
		NewEmergencyTriage(searcher, generator, log),
	)
}

func NewWorkflowWithHandlers(rec *metrics.Recorder, log logger.ILogger, handlers ...Handler) *Workflow {
	if log == nil {
		log = logger.NewNopLogger()
	}
	w := &Workflow{
		handlers: make(map[HandlerID]Handler, len(handlers)),
		metrics:  rec,
		logger:   log,
	}
	for _, h := range handlers {
		w.handlers[h.ID()] = h
	}
	return w
}

// Process runs routing, exactly one handler, then formatting. A handler
// failure is returned as is and no response is formatted.
func (w *Workflow) Process(ctx context.Context, query string) (*AgentState, error) {
	ctx, span := tracer.Start(ctx, "agent.Workflow.Process")
	defer span.End()

	state := NewAgentState(query)

	handlerID := Route(query)
	state.QueryType = handlerID
	state.Metadata[MetaHandler] = string(handlerID)
	w.metrics.RouteDecision(string(handlerID))
	span.SetAttributes(attribute.String("agent.handler", string(handlerID)))

	w.logger.Info("WORKFLOW", "Routed query", map[string]interface{}{
		"handler": handlerID,
	})

	handler, ok := w.handlers[handlerID]
	if !ok {
		err := fmt.Errorf("no handler registered for %s", handlerID)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	if err := handler.Handle(ctx, state); err != nil {
		w.recordEmergency(err)
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		w.logger.Error("WORKFLOW", "Handler failed", map[string]interface{}{
			"handler": handlerID,
			"error":   err.Error(),
		})
		return nil, err
	}

	if state.IsPotentialEmergency() {
		w.metrics.EmergencyDetected()
	}

	state.FinalResponse = formatResponse(state.AgentOutputs)
	w.logger.Info("WORKFLOW", "Workflow complete", map[string]interface{}{
		"handler":         handlerID,
		"response_length": len(state.FinalResponse),
	})
	return state, nil
}

func (w *Workflow) recordEmergency(err error) {
	var herr *HandlerError
	if errors.As(err, &herr) && herr.PotentialEmergency {
		w.metrics.EmergencyDetected()
	}
}

func formatResponse(outputs map[string]string) string {
	for _, key := range outputPrecedence {
		if v := outputs[key]; v != "" {
			return v
		}
	}
	return fallbackResponse
}

// DisplayName returns the name recorded as agent_used for a routed handler.
func (w *Workflow) DisplayName(id HandlerID) string {
	if h, ok := w.handlers[id]; ok {
		return h.DisplayName()
	}
	return string(id)
}
