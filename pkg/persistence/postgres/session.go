package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"github.com/brandforge/brandforge/pkg/models"
	"github.com/brandforge/brandforge/pkg/persistence"
)

// SessionRepository stores sessions in the sessions table. The full session
// document lives in the payload column; current_step and status are lifted
// into columns so conditional updates and status listing stay in SQL.
type SessionRepository struct {
	db *sql.DB
}

func NewSessionRepository(db *sql.DB) *SessionRepository {
	return &SessionRepository{db: db}
}

func (r *SessionRepository) Create(ctx context.Context, session *models.Session) error {
	payload, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("failed to encode session %s: %w", session.ID, err)
	}

	insertSQL := `
		INSERT INTO sessions (id, current_step, status, payload, created_at, updated_at, expires_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err = r.db.ExecContext(ctx, insertSQL,
		session.ID,
		string(session.CurrentStep),
		string(session.Status),
		payload,
		session.CreatedAt,
		session.UpdatedAt,
		session.ExpiresAt,
	)

	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code.Name() == "unique_violation" {
		return persistence.NewSessionError("Create", session.ID, persistence.ErrSessionAlreadyExists)
	}

	if err != nil {
		return fmt.Errorf("failed to create session %s: %w", session.ID, err)
	}

	return nil
}

func (r *SessionRepository) GetByID(ctx context.Context, id string) (*models.Session, error) {
	var payload []byte

	err := r.db.QueryRowContext(ctx, "SELECT payload FROM sessions WHERE id = $1", id).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, persistence.NewSessionError("GetByID", id, persistence.ErrSessionNotFound)
	}

	if err != nil {
		return nil, fmt.Errorf("failed to get session %s: %w", id, err)
	}

	var session models.Session
	if err := json.Unmarshal(payload, &session); err != nil {
		return nil, fmt.Errorf("failed to decode session %s: %w", id, err)
	}

	return &session, nil
}

// ConditionalUpdate writes the session only when the stored current step still
// matches expectedStep. The guard runs inside the UPDATE itself so concurrent
// advances of one session settle to exactly one winner.
func (r *SessionRepository) ConditionalUpdate(ctx context.Context, session *models.Session, expectedStep models.Step) error {
	payload, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("failed to encode session %s: %w", session.ID, err)
	}

	updateSQL := `
		UPDATE sessions
		SET current_step = $1, status = $2, payload = $3, updated_at = $4, expires_at = $5
		WHERE id = $6 AND current_step = $7
	`

	result, err := r.db.ExecContext(ctx, updateSQL,
		string(session.CurrentStep),
		string(session.Status),
		payload,
		session.UpdatedAt,
		session.ExpiresAt,
		session.ID,
		string(expectedStep),
	)
	if err != nil {
		return fmt.Errorf("failed to update session %s: %w", session.ID, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check update result for session %s: %w", session.ID, err)
	}

	if affected == 0 {
		exists, err := r.exists(ctx, session.ID)
		if err != nil {
			return err
		}

		if !exists {
			return persistence.NewSessionError("ConditionalUpdate", session.ID, persistence.ErrSessionNotFound)
		}

		return persistence.NewSessionError("ConditionalUpdate", session.ID, persistence.ErrStepConflict)
	}

	return nil
}

func (r *SessionRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, "DELETE FROM sessions WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("failed to delete session %s: %w", id, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check delete result for session %s: %w", id, err)
	}

	if affected == 0 {
		return persistence.NewSessionError("Delete", id, persistence.ErrSessionNotFound)
	}

	return nil
}

func (r *SessionRepository) ListByStatus(ctx context.Context, status models.SessionStatus, limit int) ([]*models.Session, error) {
	listSQL := "SELECT payload FROM sessions WHERE status = $1 ORDER BY created_at"
	args := []any{string(status)}

	if limit > 0 {
		listSQL += " LIMIT $2"
		args = append(args, limit)
	}

	rows, err := r.db.QueryContext(ctx, listSQL, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions by status %s: %w", status, err)
	}
	defer rows.Close()

	var sessions []*models.Session

	for rows.Next() {
		var payload []byte
		if err := rows.Scan(&payload); err != nil {
			return nil, fmt.Errorf("failed to scan session row: %w", err)
		}

		var session models.Session
		if err := json.Unmarshal(payload, &session); err != nil {
			return nil, fmt.Errorf("failed to decode session row: %w", err)
		}

		sessions = append(sessions, &session)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate session rows: %w", err)
	}

	return sessions, nil
}

func (r *SessionRepository) HealthCheck(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

func (r *SessionRepository) exists(ctx context.Context, id string) (bool, error) {
	var exists bool

	err := r.db.QueryRowContext(ctx, "SELECT EXISTS(SELECT 1 FROM sessions WHERE id = $1)", id).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check session %s: %w", id, err)
	}

	return exists, nil
}
