package agent

import "strings"

type HandlerID string

const (
	SymptomAnalyzer  HandlerID = "symptom_analyzer"
	DiseaseExpert    HandlerID = "disease_expert"
	TreatmentAdvisor HandlerID = "treatment_advisor"
	EmergencyTriage  HandlerID = "emergency_triage"
)

var (
	routeEmergencyKeywords = []string{
		"chest pain", "difficulty breathing", "can't breathe",
		"severe bleeding", "unconscious", "seizure",
		"severe headache", "sudden weakness", "stroke",
		"heart attack", "severe", "emergency",
	}

	routeDiseaseKeywords = []string{
		"what is", "tell me about", "explain", "information about",
		"what are the symptoms of", "causes of", "how does",
	}

	routeTreatmentKeywords = []string{
		"how to treat", "treatment for", "what should i do",
		"how to cure", "remedy", "medication", "medicine",
	}

	// triageKeywords is the emergency handler's own detector. It overlaps
	// with routeEmergencyKeywords but is not the same list.
	triageKeywords = []string{
		"chest pain", "difficulty breathing", "can't breathe",
		"severe bleeding", "unconscious", "seizure",
		"severe headache", "sudden weakness", "stroke",
		"heart attack", "allergic reaction", "anaphylaxis",
		"severe burn", "poisoning", "overdose",
		"suicidal", "severe injury", "broken bone",
	}
)

// Route picks exactly one handler. Emergency signals win over everything else.
func Route(query string) HandlerID {
	q := strings.ToLower(query)
	switch {
	case containsAny(q, routeEmergencyKeywords):
		return EmergencyTriage
	case containsAny(q, routeDiseaseKeywords):
		return DiseaseExpert
	case containsAny(q, routeTreatmentKeywords):
		return TreatmentAdvisor
	default:
		return SymptomAnalyzer
	}
}

// DetectEmergency runs the triage keyword detector.
func DetectEmergency(query string) bool {
	return containsAny(strings.ToLower(query), triageKeywords)
}

func containsAny(s string, keywords []string) bool {
	for _, k := range keywords {
		if strings.Contains(s, k) {
			return true
		}
	}
	return false
}
