package file

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/brandforge/brandforge/pkg/models"
)

// EventRepository appends workflow events to one JSON-lines file per session
// under <root>/events/<sessionID>.jsonl.
type EventRepository struct {
	root string
	mu   sync.Mutex
}

func NewEventRepository(root string) *EventRepository {
	return &EventRepository{root: root}
}

func (r *EventRepository) eventPath(sessionID string) string {
	return filepath.Join(r.root, "events", sessionID+".jsonl")
}

func (r *EventRepository) Append(_ context.Context, event *models.WorkflowEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	dir := filepath.Join(r.root, "events")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create events directory: %w", err)
	}

	file, err := os.OpenFile(r.eventPath(event.SessionID), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("failed to open event log for session %s: %w", event.SessionID, err)
	}
	defer file.Close()

	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to encode event: %w", err)
	}

	if _, err := file.Write(append(data, '\n')); err != nil {
		return fmt.Errorf("failed to append event: %w", err)
	}

	return nil
}

func (r *EventRepository) ListBySession(_ context.Context, sessionID string) ([]*models.WorkflowEvent, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	file, err := os.Open(r.eventPath(sessionID))
	if os.IsNotExist(err) {
		return nil, nil
	}

	if err != nil {
		return nil, fmt.Errorf("failed to open event log for session %s: %w", sessionID, err)
	}
	defer file.Close()

	var events []*models.WorkflowEvent

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		var event models.WorkflowEvent
		if err := json.Unmarshal(scanner.Bytes(), &event); err != nil {
			return nil, fmt.Errorf("failed to decode event log for session %s: %w", sessionID, err)
		}

		events = append(events, &event)
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read event log for session %s: %w", sessionID, err)
	}

	return events, nil
}
