// Package redis provides a Redis persistence implementation. Sessions are
// stored as JSON values with the session TTL mapped onto key expiry, and
// conditional updates use WATCH-based optimistic transactions so concurrent
// advances of one session race safely across processes.
package redis

import (
	"context"
	"fmt"

	"github.com/brandforge/brandforge/pkg/persistence"
	goredis "github.com/redis/go-redis/v9"
)

// Persistence implements persistence.Persistence on Redis.
type Persistence struct {
	client   *goredis.Client
	sessions *SessionRepository
	events   *EventRepository
}

// NewPersistence creates a Redis persistence layer from a redis:// URL.
func NewPersistence(databaseURL string) (*Persistence, error) {
	opts, err := goredis.ParseURL(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis URL: %w", err)
	}

	client := goredis.NewClient(opts)

	return &Persistence{
		client:   client,
		sessions: NewSessionRepository(client),
		events:   NewEventRepository(client),
	}, nil
}

// NewPersistenceWithClient wraps an existing client. Used by tests running
// against miniredis.
func NewPersistenceWithClient(client *goredis.Client) *Persistence {
	return &Persistence{
		client:   client,
		sessions: NewSessionRepository(client),
		events:   NewEventRepository(client),
	}
}

func (p *Persistence) Sessions() persistence.SessionRepository {
	return p.sessions
}

func (p *Persistence) Events() persistence.EventRepository {
	return p.events
}

func (p *Persistence) HealthCheck(ctx context.Context) error {
	return p.client.Ping(ctx).Err()
}

func (p *Persistence) Close(_ context.Context) error {
	return p.client.Close()
}
