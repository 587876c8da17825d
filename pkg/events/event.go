package events

import (
	"context"
	"time"
)

const (
	TypeEmergencyDetected = "emergency.detected"
	TypeKnowledgeIngested = "knowledge.ingested"
)

// Event is anything published on the event bus.
type Event interface {
	EventType() string
	Payload() map[string]interface{}
	Timestamp() time.Time
}

// Publisher is implemented by the NATS publisher. A nil Publisher is valid
// for callers that guard with Enabled.
type Publisher interface {
	Publish(ctx context.Context, event Event) error
}

type BaseEvent struct {
	Type       string
	Data       map[string]interface{}
	OccurredAt time.Time
}

func (e BaseEvent) EventType() string {
	return e.Type
}

func (e BaseEvent) Payload() map[string]interface{} {
	return e.Data
}

func (e BaseEvent) Timestamp() time.Time {
	return e.OccurredAt
}

// NewEmergencyDetected is raised after an emergency triage turn is recorded.
func NewEmergencyDetected(userID, conversationID, historyID, query string) BaseEvent {
	return BaseEvent{
		Type: TypeEmergencyDetected,
		Data: map[string]interface{}{
			"user_id":         userID,
			"conversation_id": conversationID,
			"history_id":      historyID,
			"query":           query,
		},
		OccurredAt: time.Now(),
	}
}

// NewKnowledgeIngested carries the per-category counts of a completed load.
func NewKnowledgeIngested(summary map[string]int64) BaseEvent {
	data := make(map[string]interface{}, len(summary))
	for k, v := range summary {
		data[k] = v
	}
	return BaseEvent{
		Type:       TypeKnowledgeIngested,
		Data:       data,
		OccurredAt: time.Now(),
	}
}
