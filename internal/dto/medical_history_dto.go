package dto

type MedicalHistoryResponse struct {
	Id                string  `json:"id"`
	Symptoms          *string `json:"symptoms"`
	Diagnosis         *string `json:"diagnosis"`
	Severity          *string `json:"severity"`
	AgentAssessment   *string `json:"agent_assessment"`
	EmergencyDetected *string `json:"emergency_detected"`
	Date              string  `json:"date"`
}

// RecordEmergencyMessage is the payload of a medical_history.record bus message.
type RecordEmergencyMessage struct {
	UserId         string `json:"user_id"`
	ConversationId string `json:"conversation_id"`
	Query          string `json:"query"`
	Assessment     string `json:"assessment"`
}

// EmergencyAlertNotification is pushed to the user's open alert streams once
// an emergency turn has been recorded.
type EmergencyAlertNotification struct {
	HistoryId      string `json:"history_id"`
	ConversationId string `json:"conversation_id"`
	Query          string `json:"query"`
	Advisory       string `json:"advisory"`
	DetectedAt     string `json:"detected_at"`
}
