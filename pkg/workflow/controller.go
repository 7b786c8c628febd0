// Package workflow implements the session step state machine. The controller
// is the single writer of session state: every transition goes through a
// conditional update on the stored current step, so concurrent advances of
// one session settle to exactly one winner and the step only moves forward.
package workflow

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/trace"

	"github.com/brandforge/brandforge/pkg/analysis"
	"github.com/brandforge/brandforge/pkg/eventbus"
	"github.com/brandforge/brandforge/pkg/events"
	"github.com/brandforge/brandforge/pkg/fanout"
	"github.com/brandforge/brandforge/pkg/log"
	"github.com/brandforge/brandforge/pkg/models"
	"github.com/brandforge/brandforge/pkg/naming"
	"github.com/brandforge/brandforge/pkg/otelhelper"
	"github.com/brandforge/brandforge/pkg/persistence"
	"github.com/brandforge/brandforge/pkg/provider"
	"github.com/brandforge/brandforge/pkg/report"
)

// Config tunes the controller's timeouts and provider fan-out.
type Config struct {
	PerBranchTimeout time.Duration
	OverallBudget    time.Duration
	SessionTTL       time.Duration
	MaxStepAttempts  int
	Providers        []string
	Styles           []string
}

func DefaultConfig() Config {
	return Config{
		PerBranchTimeout: 30 * time.Second,
		OverallBudget:    90 * time.Second,
		SessionTTL:       models.DefaultSessionTTL,
		MaxStepAttempts:  3,
		Providers:        []string{"dalle", "sdxl", "gemini"},
		Styles:           []string{"modern", "classic", "minimal"},
	}
}

// Controller drives sessions through the pipeline.
type Controller struct {
	persistence persistence.Persistence
	bus         eventbus.EventPublisher
	executor    *fanout.Executor
	generator   *naming.Generator
	fallbacks   *provider.FallbackRegistry
	analyzer    *analysis.Analyzer
	builder     *report.Builder
	validator   *validator.Validate
	tracer      trace.Tracer
	logger      *slog.Logger
	config      Config
}

func NewController(
	p persistence.Persistence,
	bus eventbus.EventPublisher,
	executor *fanout.Executor,
	generator *naming.Generator,
	fallbacks *provider.FallbackRegistry,
	tracer trace.Tracer,
	config Config,
) *Controller {
	if config.MaxStepAttempts <= 0 {
		config.MaxStepAttempts = DefaultConfig().MaxStepAttempts
	}

	return &Controller{
		persistence: p,
		bus:         bus,
		executor:    executor,
		generator:   generator,
		fallbacks:   fallbacks,
		analyzer:    analysis.NewAnalyzer(),
		builder:     report.NewBuilder(),
		validator:   validator.New(),
		tracer:      tracer,
		logger:      log.WithModule("workflow"),
		config:      config,
	}
}

// MaxStepAttempts is the retry allowance for restartable steps.
func (c *Controller) MaxStepAttempts() int {
	return c.config.MaxStepAttempts
}

// CreateSession validates the intake and persists a fresh session at the
// created step.
func (c *Controller) CreateSession(ctx context.Context, info models.BusinessInfo) (*models.Session, error) {
	if err := c.validator.Struct(info); err != nil {
		return nil, NewError("CreateSession", "", fmt.Errorf("%w: %s", ErrValidation, err))
	}

	session := models.NewSession(info, c.config.SessionTTL)

	ctx, span := otelhelper.SessionSpan(ctx, c.tracer, "workflow.create_session", session.ID)
	defer span.End()

	if err := c.persistence.Sessions().Create(ctx, session); err != nil {
		otelhelper.SetError(span, err)

		return nil, NewError("CreateSession", session.ID, err)
	}

	c.recordEvent(ctx, session.ID, models.StepCreated, "controller", "create_session", 0, models.EventStatusSuccess, "")
	c.publish(ctx, session.ID, events.SessionCreated{
		BaseEvent:    c.baseEvent(events.SessionCreatedEvent, session.ID),
		BusinessInfo: info,
		ExpiresAt:    session.ExpiresAt,
	})

	c.logger.InfoContext(ctx, "Session created",
		"session_id", session.ID, "industry", info.Industry, "region", info.Region)

	return session, nil
}

// GetState returns the session, mapping lifecycle conditions to the workflow
// error taxonomy. Reading an expired session marks it expired as a side
// effect so subsequent reads are consistent.
func (c *Controller) GetState(ctx context.Context, sessionID string) (*models.Session, error) {
	session, err := c.persistence.Sessions().GetByID(ctx, sessionID)
	if persistence.IsSessionNotFound(err) {
		return nil, NewError("GetState", sessionID, ErrSessionNotFound)
	}

	if err != nil {
		return nil, NewError("GetState", sessionID, err)
	}

	if session.Status == models.SessionStatusExpired {
		return session, NewError("GetState", sessionID, ErrSessionExpired)
	}

	if session.Status == models.SessionStatusActive && session.Expired(time.Now().UTC()) {
		c.expire(ctx, session)

		return session, NewError("GetState", sessionID, ErrSessionExpired)
	}

	return session, nil
}

// Expire marks a TTL-lapsed session expired. The sweeper calls this; it is a
// no-op for sessions that are not actually past their deadline.
func (c *Controller) Expire(ctx context.Context, session *models.Session) bool {
	if session.Status != models.SessionStatusActive || !session.Expired(time.Now().UTC()) {
		return false
	}

	return c.expire(ctx, session)
}

func (c *Controller) expire(ctx context.Context, session *models.Session) bool {
	expected := session.CurrentStep
	session.Status = models.SessionStatusExpired
	session.UpdatedAt = time.Now().UTC()

	err := c.persistence.Sessions().ConditionalUpdate(ctx, session, expected)
	if err != nil {
		// Lost a race with another writer; the winner settles the state.
		c.logger.WarnContext(ctx, "Failed to mark session expired",
			"session_id", session.ID, "error", err)

		return false
	}

	c.recordEvent(ctx, session.ID, session.CurrentStep, "controller", "expire", 0, models.EventStatusSuccess, "session TTL lapsed")
	c.publish(ctx, session.ID, events.SessionExpired{
		BaseEvent: c.baseEvent(events.SessionExpiredEvent, session.ID),
		ExpiredAt: session.ExpiresAt,
		LastStep:  session.CurrentStep,
	})

	return true
}

// loadActive fetches a session that must still be advanceable.
func (c *Controller) loadActive(ctx context.Context, op, sessionID string) (*models.Session, error) {
	session, err := c.GetState(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	if session.Terminal() {
		return nil, NewError(op, sessionID, ErrSessionTerminal)
	}

	return session, nil
}

// save writes the session back, expecting the stored step to still be
// expectedStep. A lost race surfaces as ErrStaleStep.
func (c *Controller) save(ctx context.Context, op string, session *models.Session, expectedStep models.Step) error {
	session.UpdatedAt = time.Now().UTC()

	err := c.persistence.Sessions().ConditionalUpdate(ctx, session, expectedStep)

	switch {
	case persistence.IsStepConflict(err):
		return NewError(op, session.ID, ErrStaleStep)
	case persistence.IsSessionNotFound(err):
		return NewError(op, session.ID, ErrSessionNotFound)
	case err != nil:
		return NewError(op, session.ID, err)
	}

	return nil
}

func (c *Controller) baseEvent(eventType events.EventType, sessionID string) events.BaseEvent {
	return events.BaseEvent{
		ID:        uuid.New().String(),
		Type:      eventType,
		Timestamp: time.Now().UTC(),
		SessionID: sessionID,
	}
}

// recordEvent appends to the append-only event log. Failures are logged, not
// propagated: observability must never fail a transition.
func (c *Controller) recordEvent(ctx context.Context, sessionID string, step models.Step, component, tool string, latencyMs int64, status models.EventStatus, message string) {
	event := models.NewWorkflowEvent(sessionID, step, component, tool, latencyMs, status, message)

	if err := c.persistence.Events().Append(ctx, event); err != nil {
		c.logger.WarnContext(ctx, "Failed to append workflow event",
			"session_id", sessionID, "tool", tool, "error", err)
	}
}

func (c *Controller) publish(ctx context.Context, key string, event eventbus.Event) {
	if c.bus == nil {
		return
	}

	if err := c.bus.Publish(ctx, key, event); err != nil {
		c.logger.WarnContext(ctx, "Failed to publish event",
			"event_type", event.GetType(), "error", err)
	}
}

// markFailed transitions the session to failed after unrecoverable errors.
func (c *Controller) markFailed(ctx context.Context, session *models.Session, step models.Step, cause error) {
	expected := session.CurrentStep
	session.Status = models.SessionStatusFailed
	state := session.StepState(step)
	state.Status = models.StepStatusFailed

	if err := c.save(ctx, "markFailed", session, expected); err != nil {
		c.logger.WarnContext(ctx, "Failed to mark session failed",
			"session_id", session.ID, "error", err)

		return
	}

	c.publish(ctx, session.ID, events.StepFailed{
		BaseEvent: c.baseEvent(events.StepFailedEvent, session.ID),
		Step:      step,
		Error:     cause.Error(),
		Attempts:  state.Attempts,
	})
	c.publish(ctx, session.ID, events.SessionFailed{
		BaseEvent: c.baseEvent(events.SessionFailedEvent, session.ID),
		Step:      step,
		Error:     cause.Error(),
	})
}

func errorStatus(err error) models.EventStatus {
	if errors.Is(err, context.DeadlineExceeded) {
		return models.EventStatusTimeout
	}

	return models.EventStatusError
}
