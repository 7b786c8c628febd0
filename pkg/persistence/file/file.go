// Package file provides a file-based persistence implementation for local
// development and tests. Conditional updates are serialized with an
// in-process lock, which is sufficient for the single-writer deployments
// this backend targets.
package file

import (
	"context"
	"os"
	"strings"

	"github.com/brandforge/brandforge/pkg/persistence"
)

// Persistence implements persistence.Persistence on the local file system.
type Persistence struct {
	root     string
	sessions *SessionRepository
	events   *EventRepository
}

// NewPersistence creates a file persistence layer rooted at the given
// directory. A "file://" prefix is stripped so database URLs can be passed
// through unchanged.
func NewPersistence(root string) *Persistence {
	cleanRoot := strings.Replace(root, "file://", "", 1)

	return &Persistence{
		root:     cleanRoot,
		sessions: NewSessionRepository(cleanRoot),
		events:   NewEventRepository(cleanRoot),
	}
}

func (p *Persistence) Sessions() persistence.SessionRepository {
	return p.sessions
}

func (p *Persistence) Events() persistence.EventRepository {
	return p.events
}

// HealthCheck verifies the root directory exists.
func (p *Persistence) HealthCheck(_ context.Context) error {
	if _, err := os.Stat(p.root); os.IsNotExist(err) {
		return os.ErrNotExist
	}

	return nil
}

// Close performs any necessary cleanup. Nothing to do for files.
func (p *Persistence) Close(_ context.Context) error {
	return nil
}
