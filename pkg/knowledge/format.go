package knowledge

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"unicode"
)

func joinList(items []string) string {
	return strings.Join(items, ", ")
}

func orNA(s *string) string {
	if s == nil {
		return "N/A"
	}
	return *s
}

// FormatSymptom renders a symptom in a fixed section order. Absent sections
// are skipped; a missing severity tier inside present indicators prints N/A.
func FormatSymptom(id string, s Symptom) string {
	parts := []string{"Symptom: " + id}

	if s.Description != nil {
		parts = append(parts, "Description: "+*s.Description)
	}
	if s.PossibleDiseases != nil {
		parts = append(parts, "Possible diseases: "+joinList(s.PossibleDiseases))
	}
	if s.SeverityIndicators != nil {
		parts = append(parts,
			"Mild: "+orNA(s.SeverityIndicators.Mild),
			"Moderate: "+orNA(s.SeverityIndicators.Moderate),
			"Severe: "+orNA(s.SeverityIndicators.Severe),
		)
	}
	if s.EmergencySigns != nil {
		parts = append(parts, "Emergency signs: "+joinList(s.EmergencySigns))
	}
	if s.CommonCauses != nil {
		parts = append(parts, "Common causes: "+joinList(s.CommonCauses))
	}
	if s.RelatedSymptoms != nil {
		parts = append(parts, "Related symptoms: "+joinList(s.RelatedSymptoms))
	}
	return strings.Join(parts, "\n")
}

func FormatDisease(id string, d Disease) string {
	parts := []string{"Disease: " + diseaseName(id, d)}

	if d.Description != nil {
		parts = append(parts, "Description: "+*d.Description)
	}
	lists := []struct {
		label string
		items []string
	}{
		{"Common symptoms", d.CommonSymptoms},
		{"Causes", d.Causes},
		{"Risk factors", d.RiskFactors},
		{"Diagnosis methods", d.DiagnosisMethods},
		{"Treatment options", d.TreatmentOptions},
		{"Prevention", d.Prevention},
	}
	for _, l := range lists {
		if l.items != nil {
			parts = append(parts, l.label+": "+joinList(l.items))
		}
	}
	if d.WhenToSeeDoctor != nil {
		parts = append(parts, "When to see doctor: "+*d.WhenToSeeDoctor)
	}
	if d.Complications != nil {
		parts = append(parts, "Possible complications: "+joinList(d.Complications))
	}
	return strings.Join(parts, "\n")
}

func diseaseName(id string, d Disease) string {
	if d.Name != nil {
		return *d.Name
	}
	return id
}

// DisplayName turns "chest_pain" into "Chest Pain": underscores become
// spaces and every letter following a non-letter is upper-cased.
func DisplayName(id string) string {
	var b strings.Builder
	prevLetter := false
	for _, r := range strings.ReplaceAll(id, "_", " ") {
		if unicode.IsLetter(r) {
			if prevLetter {
				b.WriteRune(unicode.ToLower(r))
			} else {
				b.WriteRune(unicode.ToUpper(r))
			}
			prevLetter = true
			continue
		}
		b.WriteRune(r)
		prevLetter = false
	}
	return b.String()
}

func sortedKeys[T any](m map[string]T) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func SymptomDocuments(symptoms map[string]Symptom) []Document {
	docs := make([]Document, 0, len(symptoms))
	for _, id := range sortedKeys(symptoms) {
		docs = append(docs, Document{
			ID:   "symptom_" + id,
			Text: FormatSymptom(id, symptoms[id]),
			Metadata: map[string]string{
				"type": CategorySymptom,
				"id":   id,
				"name": DisplayName(id),
			},
		})
	}
	return docs
}

func DiseaseDocuments(diseases map[string]Disease) []Document {
	docs := make([]Document, 0, len(diseases))
	for _, id := range sortedKeys(diseases) {
		d := diseases[id]
		docs = append(docs, Document{
			ID:   "disease_" + id,
			Text: FormatDisease(id, d),
			Metadata: map[string]string{
				"type": CategoryDisease,
				"id":   id,
				"name": diseaseName(id, d),
			},
		})
	}
	return docs
}

// ReferenceDocuments keeps file order within each fact group.
func ReferenceDocuments(facts ReferenceFacts) map[string][]Document {
	out := map[string][]Document{}

	for i, f := range facts.ICD10 {
		out[CategoryICD10] = append(out[CategoryICD10], Document{
			ID:   "icd10_" + strconv.Itoa(i),
			Text: f.Text,
			Metadata: map[string]string{
				"type": CategoryICD10, "id": f.Code, "name": f.Category, "code": f.Code, "category": f.Category,
			},
		})
	}
	for i, f := range facts.Medications {
		out[CategoryMedication] = append(out[CategoryMedication], Document{
			ID:   "medication_" + strconv.Itoa(i),
			Text: f.Text,
			Metadata: map[string]string{
				"type": CategoryMedication, "id": strconv.Itoa(i), "name": f.Name, "category": f.Category,
			},
		})
	}
	for i, f := range facts.SymptomMappings {
		out[CategorySymptomMapping] = append(out[CategorySymptomMapping], Document{
			ID:   "mapping_" + strconv.Itoa(i),
			Text: f.Text,
			Metadata: map[string]string{
				"type": CategorySymptomMapping, "id": strconv.Itoa(i), "name": f.Symptoms, "diseases": f.Diseases,
			},
		})
	}
	for i, f := range facts.EmergencyProtocols {
		out[CategoryEmergencyProtocol] = append(out[CategoryEmergencyProtocol], Document{
			ID:   fmt.Sprintf("emergency_%d", i),
			Text: f.Text,
			Metadata: map[string]string{
				"type": CategoryEmergencyProtocol, "id": strconv.Itoa(i), "name": f.Emergency,
			},
		})
	}
	return out
}
