package redis

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/brandforge/brandforge/pkg/models"
	goredis "github.com/redis/go-redis/v9"
)

const eventKeyPrefix = "brandforge:events:"

// EventRepository appends workflow events to one Redis list per session.
type EventRepository struct {
	client *goredis.Client
}

func NewEventRepository(client *goredis.Client) *EventRepository {
	return &EventRepository{client: client}
}

func eventKey(sessionID string) string {
	return eventKeyPrefix + sessionID
}

func (r *EventRepository) Append(ctx context.Context, event *models.WorkflowEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to encode event: %w", err)
	}

	if err := r.client.RPush(ctx, eventKey(event.SessionID), payload).Err(); err != nil {
		return fmt.Errorf("failed to append event for session %s: %w", event.SessionID, err)
	}

	return nil
}

func (r *EventRepository) ListBySession(ctx context.Context, sessionID string) ([]*models.WorkflowEvent, error) {
	entries, err := r.client.LRange(ctx, eventKey(sessionID), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read event log for session %s: %w", sessionID, err)
	}

	events := make([]*models.WorkflowEvent, 0, len(entries))

	for _, entry := range entries {
		var event models.WorkflowEvent
		if err := json.Unmarshal([]byte(entry), &event); err != nil {
			return nil, fmt.Errorf("failed to decode event log for session %s: %w", sessionID, err)
		}

		events = append(events, &event)
	}

	return events, nil
}
