// Package events defines event types for session lifecycle notifications.
package events

import (
	"time"

	"github.com/brandforge/brandforge/pkg/models"
)

type EventType string

// Kafka topics.
const Topic = "brandforge.sessions" // Topic for session lifecycle events

const EventMetadataKey = "key"
const EventTypeMetadataKey = "event_type"

const (
	// Session lifecycle events.
	SessionCreatedEvent   EventType = "session.created"
	SessionCompletedEvent EventType = "session.completed"
	SessionFailedEvent    EventType = "session.failed"
	SessionExpiredEvent   EventType = "session.expired"

	// Step lifecycle events.
	StepStartedEvent   EventType = "step.started"
	StepCompletedEvent EventType = "step.completed"
	StepDegradedEvent  EventType = "step.degraded"
	StepFailedEvent    EventType = "step.failed"
)

type BaseEvent struct {
	ID        string         `json:"id"`
	Type      EventType      `json:"type"`
	Timestamp time.Time      `json:"timestamp"`
	SessionID string         `json:"session_id"`
	Metadata  map[string]any `json:"metadata,omitempty"`
}

type SessionCreated struct {
	BaseEvent

	BusinessInfo models.BusinessInfo `json:"business_info"`
	ExpiresAt    time.Time           `json:"expires_at"`
}

func (s SessionCreated) GetType() EventType {
	return SessionCreatedEvent
}

type SessionCompleted struct {
	BaseEvent

	BusinessName string        `json:"business_name"`
	Duration     time.Duration `json:"duration"`
}

func (s SessionCompleted) GetType() EventType {
	return SessionCompletedEvent
}

type SessionFailed struct {
	BaseEvent

	Step  models.Step `json:"step"`
	Error string      `json:"error"`
}

func (s SessionFailed) GetType() EventType {
	return SessionFailedEvent
}

type SessionExpired struct {
	BaseEvent

	ExpiredAt time.Time   `json:"expired_at"`
	LastStep  models.Step `json:"last_step"`
}

func (s SessionExpired) GetType() EventType {
	return SessionExpiredEvent
}

type StepStarted struct {
	BaseEvent

	Step models.Step `json:"step"`
}

func (s StepStarted) GetType() EventType {
	return StepStartedEvent
}

type StepCompleted struct {
	BaseEvent

	Step       models.Step `json:"step"`
	DurationMs int64       `json:"duration_ms"`
}

func (s StepCompleted) GetType() EventType {
	return StepCompletedEvent
}

// StepDegraded is emitted when every provider branch of a fan-out settled on
// fallback content.
type StepDegraded struct {
	BaseEvent

	Step      models.Step `json:"step"`
	Providers []string    `json:"providers"`
}

func (s StepDegraded) GetType() EventType {
	return StepDegradedEvent
}

type StepFailed struct {
	BaseEvent

	Step     models.Step `json:"step"`
	Error    string      `json:"error"`
	Attempts int         `json:"attempts"`
}

func (s StepFailed) GetType() EventType {
	return StepFailedEvent
}
