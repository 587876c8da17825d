package entity

import (
	"time"

	"github.com/google/uuid"
)

type MedicalHistory struct {
	Id                uuid.UUID
	UserId            uuid.UUID
	Symptoms          *string
	Diagnosis         *string
	Severity          *string
	AgentAssessment   *string
	EmergencyDetected *string
	Date              time.Time
}
