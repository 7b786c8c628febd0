// Package supervisor provides the reactive monitor over sessions. It keeps
// no state of its own: every judgment is derived from the stored session and
// its append-only event log, so any number of supervisor instances can run
// concurrently.
package supervisor

import (
	"context"
	"log/slog"
	"time"

	"github.com/brandforge/brandforge/pkg/eventbus"
	"github.com/brandforge/brandforge/pkg/events"
	"github.com/brandforge/brandforge/pkg/log"
	"github.com/brandforge/brandforge/pkg/models"
	"github.com/brandforge/brandforge/pkg/persistence"
	"github.com/brandforge/brandforge/pkg/workflow"
)

// StepView is one step's status in the aggregate view.
type StepView struct {
	Step       models.Step       `json:"step"`
	Status     models.StepStatus `json:"status"`
	IsFallback bool              `json:"is_fallback"`
	LatencyMs  int64             `json:"latency_ms"`
	Attempts   int               `json:"attempts"`
}

// StatusView is the aggregate answer to a status query.
type StatusView struct {
	SessionID         string                  `json:"session_id"`
	Status            models.SessionStatus    `json:"status"`
	CurrentStep       models.Step             `json:"current_step"`
	StepOrdinal       int                     `json:"step_ordinal"`
	ElapsedSeconds    float64                 `json:"elapsed_seconds"`
	ExpiresAt         time.Time               `json:"expires_at"`
	Recoverable       bool                    `json:"recoverable"`
	SelectedName      string                  `json:"selected_name,omitempty"`
	RegenerationCount int                     `json:"regeneration_count"`
	Steps             []StepView              `json:"steps"`
	RecentEvents      []*models.WorkflowEvent `json:"recent_events,omitempty"`
}

// Stats aggregates session counts for operational visibility.
type Stats struct {
	Total    int                          `json:"total"`
	ByStatus map[models.SessionStatus]int `json:"by_status"`
	ByStep   map[models.Step]int          `json:"by_step"`
}

const recentEventLimit = 10

// Supervisor observes sessions and nudges stuck ones back into shape through
// the controller.
type Supervisor struct {
	controller  *workflow.Controller
	persistence persistence.Persistence
	logger      *slog.Logger
}

func NewSupervisor(controller *workflow.Controller, p persistence.Persistence) *Supervisor {
	return &Supervisor{
		controller:  controller,
		persistence: p,
		logger:      log.WithModule("supervisor"),
	}
}

// HandleEvents subscribes the supervisor to the bus events that can require
// corrective action, so every degraded or failed fan-out is observed without
// the controller calling back into the supervisor.
func (s *Supervisor) HandleEvents(bus eventbus.EventSubscriber) error {
	handler := func(ctx context.Context, event interface{}) error {
		switch e := event.(type) {
		case *events.StepDegraded:
			return s.Observe(ctx, e.SessionID)
		case *events.StepFailed:
			return s.Observe(ctx, e.SessionID)
		}

		return nil
	}

	for _, eventType := range []events.EventType{events.StepDegradedEvent, events.StepFailedEvent} {
		if err := bus.Handle(eventType, handler); err != nil {
			return err
		}
	}

	return nil
}

// Observe inspects a session after a transition or fan-out and drives any
// unhealthy image step back to a stable state: a step left running or failed,
// or one that settled all-fallback with retry allowance remaining, gets
// restarted until it either produces real content or spends the allowance and
// stays degraded. Observing a healthy session changes nothing.
func (s *Supervisor) Observe(ctx context.Context, sessionID string) error {
	logger := log.WithSession(s.logger, sessionID)

	for {
		session, err := s.controller.GetState(ctx, sessionID)
		if workflow.IsSessionExpired(err) {
			// GetState already settled the expiry.
			return nil
		}

		if err != nil {
			return err
		}

		if session.Terminal() {
			return nil
		}

		step, ok := s.actionableStep(session)
		if !ok {
			return nil
		}

		state := session.StepState(step)
		logger.WarnContext(ctx, "Restarting unhealthy step",
			"step", step, "status", state.Status, "attempts", state.Attempts)

		if err := s.controller.Restart(ctx, sessionID, step); err != nil {
			return err
		}
	}
}

// actionableStep finds the first image step that needs a restart. An
// all-fallback batch still awaiting selection counts as unhealthy while the
// attempt allowance lasts; once it is spent the step stays degraded.
func (s *Supervisor) actionableStep(session *models.Session) (models.Step, bool) {
	for _, step := range []models.Step{models.StepSignboard, models.StepInterior} {
		state, ok := session.StepStates[step]
		if !ok {
			continue
		}

		switch {
		case state.Status == models.StepStatusRunning || state.Status == models.StepStatusFailed:
			return step, true
		case state.Status == models.StepStatusAwaitingSelection && state.IsFallback &&
			state.Attempts < s.controller.MaxStepAttempts():
			return step, true
		}
	}

	return "", false
}

// QueryStatus builds the aggregate view of one session. Unknown and expired
// sessions surface the workflow error taxonomy so callers can map them to
// transport semantics.
func (s *Supervisor) QueryStatus(ctx context.Context, sessionID string) (*StatusView, error) {
	session, err := s.controller.GetState(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	view := &StatusView{
		SessionID:      session.ID,
		Status:         session.Status,
		CurrentStep:    session.CurrentStep,
		StepOrdinal:    session.CurrentStep.Ordinal(),
		ElapsedSeconds: time.Since(session.CreatedAt).Seconds(),
		ExpiresAt:      session.ExpiresAt,
		Recoverable:    session.Status == models.SessionStatusActive,
	}

	if session.Names != nil {
		view.SelectedName = session.Names.SelectedName
		view.RegenerationCount = session.Names.RegenerationCount
	}

	for _, step := range models.Steps() {
		state, ok := session.StepStates[step]
		if !ok {
			continue
		}

		view.Steps = append(view.Steps, StepView{
			Step:       step,
			Status:     state.Status,
			IsFallback: state.IsFallback,
			LatencyMs:  state.LatencyMs,
			Attempts:   state.Attempts,
		})
	}

	events, eventsErr := s.persistence.Events().ListBySession(ctx, sessionID)
	if eventsErr != nil {
		s.logger.WarnContext(ctx, "Failed to read event log",
			"session_id", sessionID, "error", eventsErr)
	} else if len(events) > recentEventLimit {
		view.RecentEvents = events[len(events)-recentEventLimit:]
	} else {
		view.RecentEvents = events
	}

	return view, nil
}

// CollectStats counts sessions by status and, for active ones, by step.
func (s *Supervisor) CollectStats(ctx context.Context) (*Stats, error) {
	stats := &Stats{
		ByStatus: make(map[models.SessionStatus]int),
		ByStep:   make(map[models.Step]int),
	}

	for _, status := range []models.SessionStatus{
		models.SessionStatusActive,
		models.SessionStatusCompleted,
		models.SessionStatusFailed,
		models.SessionStatusExpired,
	} {
		sessions, err := s.persistence.Sessions().ListByStatus(ctx, status, 0)
		if err != nil {
			return nil, err
		}

		stats.ByStatus[status] = len(sessions)
		stats.Total += len(sessions)

		if status == models.SessionStatusActive {
			for _, session := range sessions {
				stats.ByStep[session.CurrentStep]++
			}
		}
	}

	return stats, nil
}
