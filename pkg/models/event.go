package models

import (
	"time"

	"github.com/google/uuid"
)

// EventStatus classifies the outcome a workflow event records.
type EventStatus string

const (
	EventStatusSuccess  EventStatus = "success"
	EventStatusError    EventStatus = "error"
	EventStatusTimeout  EventStatus = "timeout"
	EventStatusRetry    EventStatus = "retry"
	EventStatusFallback EventStatus = "fallback"
)

// WorkflowEvent is one append-only observability record. Events are never
// mutated after emission; the supervisor reads them to detect failing or
// slow steps.
type WorkflowEvent struct {
	ID        string      `json:"id"`
	SessionID string      `json:"session_id"`
	Step      Step        `json:"step"`
	Component string      `json:"component"`
	Tool      string      `json:"tool"`
	LatencyMs int64       `json:"latency_ms"`
	Status    EventStatus `json:"status"`
	Message   string      `json:"message,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
}

// NewWorkflowEvent creates an event with a fresh ID and the current time.
func NewWorkflowEvent(sessionID string, step Step, component, tool string, latencyMs int64, status EventStatus, message string) *WorkflowEvent {
	return &WorkflowEvent{
		ID:        uuid.New().String(),
		SessionID: sessionID,
		Step:      step,
		Component: component,
		Tool:      tool,
		LatencyMs: latencyMs,
		Status:    status,
		Message:   message,
		Timestamp: time.Now().UTC(),
	}
}
