// Package models defines the core domain models for the branding pipeline.
package models

import (
	"time"

	"github.com/google/uuid"
)

// SessionStatus represents the lifecycle state of a pipeline session.
type SessionStatus string

const (
	SessionStatusActive    SessionStatus = "active"
	SessionStatusCompleted SessionStatus = "completed"
	SessionStatusFailed    SessionStatus = "failed"
	SessionStatusExpired   SessionStatus = "expired"
)

// Step identifies one stage of the pipeline. Steps are strictly ordered and
// a session's current step never moves backwards while the session is active.
type Step string

const (
	StepCreated   Step = "created"
	StepAnalysis  Step = "analysis"
	StepNaming    Step = "naming"
	StepSignboard Step = "signboard"
	StepInterior  Step = "interior"
	StepReport    Step = "report"
	StepCompleted Step = "completed"
)

var stepOrder = []Step{
	StepCreated,
	StepAnalysis,
	StepNaming,
	StepSignboard,
	StepInterior,
	StepReport,
	StepCompleted,
}

// Ordinal returns the position of the step in the pipeline, or -1 for an
// unknown step. Created is 0, analysis is 1, report is 5, completed is 6.
func (s Step) Ordinal() int {
	for i, step := range stepOrder {
		if step == s {
			return i
		}
	}

	return -1
}

// Next returns the step that follows s in the pipeline. The second return
// value is false when s is the last step or unknown.
func (s Step) Next() (Step, bool) {
	ord := s.Ordinal()
	if ord < 0 || ord >= len(stepOrder)-1 {
		return s, false
	}

	return stepOrder[ord+1], true
}

func (s Step) Valid() bool {
	return s.Ordinal() >= 0
}

// Steps returns the pipeline steps in execution order.
func Steps() []Step {
	steps := make([]Step, len(stepOrder))
	copy(steps, stepOrder)

	return steps
}

// StepStatus represents the execution state of a single pipeline step.
type StepStatus string

const (
	StepStatusPending           StepStatus = "pending"
	StepStatusRunning           StepStatus = "running"
	StepStatusAwaitingSelection StepStatus = "awaiting_selection"
	StepStatusCompleted         StepStatus = "completed"
	StepStatusDegraded          StepStatus = "degraded"
	StepStatusFailed            StepStatus = "failed"
)

// StepState tracks per-step execution bookkeeping on the session. A step
// that completed with every fan-out branch falling back is degraded, not
// failed.
type StepState struct {
	Status        StepStatus `json:"status"`
	IsFallback    bool       `json:"is_fallback"`
	LatencyMs     int64      `json:"latency_ms"`
	Attempts      int        `json:"attempts"`
	AwaitingSince *time.Time `json:"awaiting_since,omitempty"`
	CompletedAt   *time.Time `json:"completed_at,omitempty"`
}

// Session is one end-to-end run of the pipeline. It is owned exclusively by
// the workflow controller; every other component reads it through the
// repository.
type Session struct {
	ID          string        `json:"id"`
	CurrentStep Step          `json:"current_step"`
	Status      SessionStatus `json:"status"`
	CreatedAt   time.Time     `json:"created_at"`
	UpdatedAt   time.Time     `json:"updated_at"`
	ExpiresAt   time.Time     `json:"expires_at"`

	BusinessInfo *BusinessInfo   `json:"business_info,omitempty"`
	Analysis     *AnalysisResult `json:"analysis,omitempty"`
	Names        *BusinessNames  `json:"names,omitempty"`
	Signboards   *ImageSet       `json:"signboards,omitempty"`
	Interiors    *ImageSet       `json:"interiors,omitempty"`
	Report       *Report         `json:"report,omitempty"`

	StepStates map[Step]*StepState `json:"step_states"`
}

// DefaultSessionTTL bounds a session's lifetime.
const DefaultSessionTTL = 24 * time.Hour

// NewSession creates an active session positioned at the created step.
func NewSession(info BusinessInfo, ttl time.Duration) *Session {
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}

	now := time.Now().UTC()

	return &Session{
		ID:           uuid.New().String(),
		CurrentStep:  StepCreated,
		Status:       SessionStatusActive,
		CreatedAt:    now,
		UpdatedAt:    now,
		ExpiresAt:    now.Add(ttl),
		BusinessInfo: &info,
		Names:        &BusinessNames{},
		Signboards:   &ImageSet{},
		Interiors:    &ImageSet{},
		StepStates:   make(map[Step]*StepState),
	}
}

// Expired reports whether the session's TTL has lapsed at the given instant.
func (s *Session) Expired(now time.Time) bool {
	return now.After(s.ExpiresAt)
}

// Terminal reports whether the session can no longer be advanced.
func (s *Session) Terminal() bool {
	return s.Status != SessionStatusActive
}

// StepState returns the bookkeeping entry for a step, creating it on first
// access.
func (s *Session) StepState(step Step) *StepState {
	if s.StepStates == nil {
		s.StepStates = make(map[Step]*StepState)
	}

	state, ok := s.StepStates[step]
	if !ok {
		state = &StepState{Status: StepStatusPending}
		s.StepStates[step] = state
	}

	return state
}
