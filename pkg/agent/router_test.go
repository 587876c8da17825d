package agent

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRoute(t *testing.T) {
	tests := []struct {
		query string
		want  HandlerID
	}{
		{"Severe chest pain and difficulty breathing", EmergencyTriage},
		{"What is pneumonia?", DiseaseExpert},
		{"How to treat a headache?", TreatmentAdvisor},
		{"I have fever and cough for 3 days", SymptomAnalyzer},
		{"EMERGENCY: my friend collapsed", EmergencyTriage},
		{"Tell me about diabetes", DiseaseExpert},
		{"Which medicine helps with a cold", TreatmentAdvisor},
		{"", SymptomAnalyzer},
	}

	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			assert.Equal(t, tt.want, Route(tt.query))
		})
	}
}

func TestRouteEmergencyPreemptsOtherIntents(t *testing.T) {
	for _, q := range []string{
		"What is a stroke?",
		"How to treat a seizure",
		"what should i do about severe bleeding",
		"Explain heart attack medication",
	} {
		assert.Equal(t, EmergencyTriage, Route(q), q)
	}
}

func TestRouteDiseaseBeforeTreatment(t *testing.T) {
	assert.Equal(t, DiseaseExpert, Route("What is the best medication for migraine?"))
}

func TestDetectEmergency(t *testing.T) {
	assert.True(t, DetectEmergency("Possible ANAPHYLAXIS after a bee sting"))
	assert.True(t, DetectEmergency("I think I have a broken bone"))
	assert.False(t, DetectEmergency("I have a mild cough"))

	// The two detectors disagree on purpose.
	assert.Equal(t, EmergencyTriage, Route("severe cough"))
	assert.False(t, DetectEmergency("severe cough"))
	assert.Equal(t, SymptomAnalyzer, Route("maybe an allergic reaction"))
	assert.True(t, DetectEmergency("maybe an allergic reaction"))
}

func TestRenderPrompt(t *testing.T) {
	out := RenderPrompt("ctx={context} q={query}", "has {query} inside", "my question")
	assert.Equal(t, "ctx=has {query} inside q=my question", out)
}
