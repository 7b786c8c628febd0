package file

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/brandforge/brandforge/pkg/models"
	"github.com/brandforge/brandforge/pkg/persistence"
)

// SessionRepository stores each session as one JSON file under
// <root>/sessions/<id>.json.
type SessionRepository struct {
	root string
	mu   sync.Mutex
}

func NewSessionRepository(root string) *SessionRepository {
	return &SessionRepository{root: root}
}

func (r *SessionRepository) sessionPath(id string) string {
	return filepath.Join(r.root, "sessions", id+".json")
}

func (r *SessionRepository) Create(_ context.Context, session *models.Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	path := r.sessionPath(session.ID)
	if _, err := os.Stat(path); err == nil {
		return persistence.NewSessionError("Create", session.ID, persistence.ErrSessionAlreadyExists)
	}

	return r.write(session)
}

func (r *SessionRepository) GetByID(_ context.Context, id string) (*models.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.read(id)
}

// ConditionalUpdate persists the session only when the stored current step
// still matches expectedStep. The repository lock makes the read-compare-write
// sequence atomic within the process.
func (r *SessionRepository) ConditionalUpdate(_ context.Context, session *models.Session, expectedStep models.Step) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, err := r.read(session.ID)
	if err != nil {
		return err
	}

	if stored.CurrentStep != expectedStep {
		return persistence.NewSessionError("ConditionalUpdate", session.ID, persistence.ErrStepConflict)
	}

	return r.write(session)
}

func (r *SessionRepository) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	err := os.Remove(r.sessionPath(id))
	if os.IsNotExist(err) {
		return persistence.NewSessionError("Delete", id, persistence.ErrSessionNotFound)
	}

	return err
}

func (r *SessionRepository) ListByStatus(_ context.Context, status models.SessionStatus, limit int) ([]*models.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	dir := filepath.Join(r.root, "sessions")

	entries, err := os.ReadDir(dir)
	if os.IsNotExist(err) {
		return nil, nil
	}

	if err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}

	var sessions []*models.Session

	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".json" {
			continue
		}

		id := entry.Name()[:len(entry.Name())-len(".json")]

		session, err := r.read(id)
		if err != nil {
			continue
		}

		if session.Status != status {
			continue
		}

		sessions = append(sessions, session)
		if limit > 0 && len(sessions) >= limit {
			break
		}
	}

	return sessions, nil
}

func (r *SessionRepository) HealthCheck(_ context.Context) error {
	if _, err := os.Stat(r.root); os.IsNotExist(err) {
		return os.ErrNotExist
	}

	return nil
}

func (r *SessionRepository) read(id string) (*models.Session, error) {
	data, err := os.ReadFile(r.sessionPath(id))
	if os.IsNotExist(err) {
		return nil, persistence.NewSessionError("GetByID", id, persistence.ErrSessionNotFound)
	}

	if err != nil {
		return nil, fmt.Errorf("failed to read session %s: %w", id, err)
	}

	var session models.Session
	if err := json.Unmarshal(data, &session); err != nil {
		return nil, fmt.Errorf("failed to decode session %s: %w", id, err)
	}

	return &session, nil
}

func (r *SessionRepository) write(session *models.Session) error {
	dir := filepath.Join(r.root, "sessions")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create sessions directory: %w", err)
	}

	data, err := json.MarshalIndent(session, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode session %s: %w", session.ID, err)
	}

	return os.WriteFile(r.sessionPath(session.ID), data, 0o644)
}
