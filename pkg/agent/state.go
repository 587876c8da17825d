package agent

import "drheal-be/pkg/retrieval"

// Output keys written by the handlers, in formatting precedence order.
const (
	OutputSymptomAnalysis = "symptom_analysis"
	OutputDiseaseInfo     = "disease_info"
	OutputTreatmentAdvice = "treatment_advice"
	OutputEmergencyTriage = "emergency_triage"
)

var outputPrecedence = []string{
	OutputSymptomAnalysis,
	OutputDiseaseInfo,
	OutputTreatmentAdvice,
	OutputEmergencyTriage,
}

const (
	MetaHandler                   = "handler"
	MetaSymptomsRetrieved         = "symptoms_retrieved"
	MetaDiseasesRetrieved         = "diseases_retrieved"
	MetaTreatmentsRetrieved       = "treatments_retrieved"
	MetaIsPotentialEmergency      = "is_potential_emergency"
	MetaEmergencyKeywordsDetected = "emergency_keywords_detected"
)

// AgentState is owned by a single request.
type AgentState struct {
	Query         string                   `json:"query"`
	QueryType     HandlerID                `json:"query_type"`
	RAGResults    []retrieval.SearchResult `json:"rag_results"`
	AgentOutputs  map[string]string        `json:"agent_outputs"`
	FinalResponse string                   `json:"final_response"`
	Metadata      map[string]any           `json:"metadata"`
}

func NewAgentState(query string) *AgentState {
	return &AgentState{
		Query:        query,
		RAGResults:   []retrieval.SearchResult{},
		AgentOutputs: map[string]string{},
		Metadata:     map[string]any{},
	}
}

// IsPotentialEmergency reports the triage detector's flag, false when the
// emergency handler did not run.
func (s *AgentState) IsPotentialEmergency() bool {
	v, _ := s.Metadata[MetaIsPotentialEmergency].(bool)
	return v
}
