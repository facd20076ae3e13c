package events

import "time"

// Event defines the contract for all analytics/system events.
type Event interface {
	// EventType returns the unique code for this event (e.g., "enhance_start").
	EventType() string

	// Payload returns the data associated with the event.
	Payload() map[string]interface{}

	// Timestamp returns when the event occurred.
	Timestamp() time.Time
}

// BaseEvent helps embed common logic if needed,
// strictly creating valid implementations is preferred though.
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

// --- Enhancement analytics events ---

func NewEnhanceStarted(userId, sessionId string, onboarding bool) Event {
	eventType := "normal_enhance_start"
	if onboarding {
		eventType = "onboarding_enhance_start"
	}
	return BaseEvent{
		Type: eventType,
		Data: map[string]interface{}{
			"distinct_id": userId,
			"session_id":  sessionId,
		},
		OccurredAt: time.Now(),
	}
}

func NewEnhanceDone(userId, sessionId string, onboarding bool) Event {
	eventType := "normal_enhance_done"
	if onboarding {
		eventType = "onboarding_enhance_done"
	}
	return BaseEvent{
		Type: eventType,
		Data: map[string]interface{}{
			"distinct_id": userId,
			"session_id":  sessionId,
		},
		OccurredAt: time.Now(),
	}
}

func NewAutoEnhanceTriggered(userId, sessionId string) Event {
	return BaseEvent{
		Type: "auto_enhance_triggered",
		Data: map[string]interface{}{
			"distinct_id": userId,
			"session_id":  sessionId,
		},
		OccurredAt: time.Now(),
	}
}
