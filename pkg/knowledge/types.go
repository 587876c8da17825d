package knowledge

// Optional fields use pointers and nil slices so that an absent field can be
// told apart from an empty one.

type SeverityIndicators struct {
	Mild     *string `json:"mild,omitempty"`
	Moderate *string `json:"moderate,omitempty"`
	Severe   *string `json:"severe,omitempty"`
}

type Symptom struct {
	Description        *string             `json:"description,omitempty"`
	PossibleDiseases   []string            `json:"possible_diseases,omitempty"`
	SeverityIndicators *SeverityIndicators `json:"severity_indicators,omitempty"`
	EmergencySigns     []string            `json:"emergency_signs,omitempty"`
	CommonCauses       []string            `json:"common_causes,omitempty"`
	RelatedSymptoms    []string            `json:"related_symptoms,omitempty"`
}

type Disease struct {
	Name             *string  `json:"name,omitempty"`
	Description      *string  `json:"description,omitempty"`
	CommonSymptoms   []string `json:"common_symptoms,omitempty"`
	Causes           []string `json:"causes,omitempty"`
	RiskFactors      []string `json:"risk_factors,omitempty"`
	DiagnosisMethods []string `json:"diagnosis_methods,omitempty"`
	TreatmentOptions []string `json:"treatment_options,omitempty"`
	Prevention       []string `json:"prevention,omitempty"`
	WhenToSeeDoctor  *string  `json:"when_to_see_doctor,omitempty"`
	Complications    []string `json:"complications,omitempty"`
}

type ICD10Entry struct {
	Code     string `json:"code"`
	Category string `json:"category"`
	Text     string `json:"text"`
}

type Medication struct {
	Name     string `json:"name"`
	Category string `json:"category"`
	Text     string `json:"text"`
}

type SymptomMapping struct {
	Symptoms string `json:"symptoms"`
	Diseases string `json:"diseases"`
	Text     string `json:"text"`
}

type EmergencyProtocol struct {
	Emergency string `json:"emergency"`
	Text      string `json:"text"`
}

// ReferenceFacts is the optional reference_facts.json payload.
type ReferenceFacts struct {
	ICD10              []ICD10Entry        `json:"icd10"`
	Medications        []Medication        `json:"medications"`
	SymptomMappings    []SymptomMapping    `json:"symptom_mappings"`
	EmergencyProtocols []EmergencyProtocol `json:"emergency_protocols"`
}

const (
	CategorySymptom           = "symptom"
	CategoryDisease           = "disease"
	CategoryICD10             = "icd10"
	CategoryMedication        = "medication"
	CategorySymptomMapping    = "symptom_mapping"
	CategoryEmergencyProtocol = "emergency_protocol"
)

// Document is one record ready to be embedded.
type Document struct {
	ID       string
	Text     string
	Metadata map[string]string
}
