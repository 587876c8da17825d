package mapper

import (
	"drheal-be/internal/entity"
	"drheal-be/internal/model"
)

type MedicalHistoryMapper struct{}

func NewMedicalHistoryMapper() *MedicalHistoryMapper {
	return &MedicalHistoryMapper{}
}

func (m *MedicalHistoryMapper) ToEntity(h *model.MedicalHistory) *entity.MedicalHistory {
	if h == nil {
		return nil
	}
	return &entity.MedicalHistory{
		Id:                h.Id,
		UserId:            h.UserId,
		Symptoms:          h.Symptoms,
		Diagnosis:         h.Diagnosis,
		Severity:          h.Severity,
		AgentAssessment:   h.AgentAssessment,
		EmergencyDetected: h.EmergencyDetected,
		Date:              h.Date,
	}
}

func (m *MedicalHistoryMapper) ToModel(h *entity.MedicalHistory) *model.MedicalHistory {
	if h == nil {
		return nil
	}
	return &model.MedicalHistory{
		Id:                h.Id,
		UserId:            h.UserId,
		Symptoms:          h.Symptoms,
		Diagnosis:         h.Diagnosis,
		Severity:          h.Severity,
		AgentAssessment:   h.AgentAssessment,
		EmergencyDetected: h.EmergencyDetected,
		Date:              h.Date,
	}
}
