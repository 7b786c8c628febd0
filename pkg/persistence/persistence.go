// Package persistence provides the data storage abstraction for sessions and
// workflow events.
package persistence

import (
	"context"

	"github.com/brandforge/brandforge/pkg/models"
)

// SessionRepository persists pipeline sessions. Implementations must provide
// atomic compare-and-swap semantics on the session's current step: the
// workflow controller relies on ConditionalUpdate to serialize concurrent
// advances of the same session.
type SessionRepository interface {
	Create(ctx context.Context, session *models.Session) error
	GetByID(ctx context.Context, id string) (*models.Session, error)

	// ConditionalUpdate writes the session only if the stored current step
	// still equals expectedStep. It returns ErrStepConflict when another
	// writer advanced the session first.
	ConditionalUpdate(ctx context.Context, session *models.Session, expectedStep models.Step) error

	Delete(ctx context.Context, id string) error
	ListByStatus(ctx context.Context, status models.SessionStatus, limit int) ([]*models.Session, error)
	HealthCheck(ctx context.Context) error
}

// EventRepository persists the append-only workflow event log.
type EventRepository interface {
	Append(ctx context.Context, event *models.WorkflowEvent) error
	ListBySession(ctx context.Context, sessionID string) ([]*models.WorkflowEvent, error)
}

// Persistence bundles the repositories of one storage backend.
type Persistence interface {
	Sessions() SessionRepository
	Events() EventRepository
	HealthCheck(ctx context.Context) error
	Close(ctx context.Context) error
}
