package model

import (
	"time"

	"github.com/google/uuid"
)

type MedicalHistory struct {
	Id                uuid.UUID `gorm:"type:uuid;primaryKey"`
	UserId            uuid.UUID `gorm:"type:uuid;not null;index"`
	Symptoms          *string   `gorm:"type:text"`
	Diagnosis         *string   `gorm:"type:text"`
	Severity          *string   `gorm:"type:varchar(50)"`
	AgentAssessment   *string   `gorm:"type:text"`
	EmergencyDetected *string   `gorm:"type:varchar(10)"`
	Date              time.Time `gorm:"autoCreateTime;index"`
}

func (MedicalHistory) TableName() string {
	return "medical_history"
}

// All lists every relational table, in creation order.
func All() []interface{} {
	return []interface{}{
		&User{},
		&Conversation{},
		&Message{},
		&MedicalHistory{},
	}
}
