package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/brandforge/brandforge/pkg/models"
)

// EventRepository appends workflow events to the session_events table.
type EventRepository struct {
	db *sql.DB
}

func NewEventRepository(db *sql.DB) *EventRepository {
	return &EventRepository{db: db}
}

func (r *EventRepository) Append(ctx context.Context, event *models.WorkflowEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to encode event: %w", err)
	}

	insertSQL := `
		INSERT INTO session_events (id, session_id, payload, created_at)
		VALUES ($1, $2, $3, $4)
	`

	_, err = r.db.ExecContext(ctx, insertSQL, event.ID, event.SessionID, payload, event.Timestamp)
	if err != nil {
		return fmt.Errorf("failed to append event for session %s: %w", event.SessionID, err)
	}

	return nil
}

func (r *EventRepository) ListBySession(ctx context.Context, sessionID string) ([]*models.WorkflowEvent, error) {
	listSQL := "SELECT payload FROM session_events WHERE session_id = $1 ORDER BY created_at"

	rows, err := r.db.QueryContext(ctx, listSQL, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to read event log for session %s: %w", sessionID, err)
	}
	defer rows.Close()

	var events []*models.WorkflowEvent

	for rows.Next() {
		var payload []byte
		if err := rows.Scan(&payload); err != nil {
			return nil, fmt.Errorf("failed to scan event row: %w", err)
		}

		var event models.WorkflowEvent
		if err := json.Unmarshal(payload, &event); err != nil {
			return nil, fmt.Errorf("failed to decode event log for session %s: %w", sessionID, err)
		}

		events = append(events, &event)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate event rows: %w", err)
	}

	return events, nil
}
