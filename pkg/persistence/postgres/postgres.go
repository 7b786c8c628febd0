// Package postgres provides a PostgreSQL persistence implementation for
// sessions and workflow events. Session payloads are stored as JSONB with the
// current step lifted into its own column so conditional updates can run as a
// single guarded UPDATE.
package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	// PostgreSQL driver.
	_ "github.com/lib/pq"

	"github.com/brandforge/brandforge/pkg/persistence"
	"github.com/brandforge/brandforge/pkg/persistence/sqlbase"
)

// Persistence implements persistence.Persistence on PostgreSQL.
type Persistence struct {
	db       *sql.DB
	logger   *slog.Logger
	sessions *SessionRepository
	events   *EventRepository
}

// NewPersistence opens the database, runs migrations and returns a ready
// persistence layer.
func NewPersistence(ctx context.Context, logger *slog.Logger, databaseURL string) (*Persistence, error) {
	database, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to PostgreSQL database: %w", err)
	}

	err = database.PingContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	migrationManager := sqlbase.NewMigrationManager(logger, database, migrations())

	err = migrationManager.RunMigrations(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return &Persistence{
		db:       database,
		logger:   logger,
		sessions: NewSessionRepository(database),
		events:   NewEventRepository(database),
	}, nil
}

func (p *Persistence) Sessions() persistence.SessionRepository {
	return p.sessions
}

func (p *Persistence) Events() persistence.EventRepository {
	return p.events
}

// HealthCheck verifies the database connection is healthy.
func (p *Persistence) HealthCheck(ctx context.Context) error {
	err := p.db.PingContext(ctx)
	if err != nil {
		return fmt.Errorf("failed to ping database: %w", err)
	}

	return nil
}

// Close closes the database connection.
func (p *Persistence) Close(_ context.Context) error {
	if p.db != nil {
		err := p.db.Close()
		if err != nil {
			return fmt.Errorf("failed to close database connection: %w", err)
		}
	}

	return nil
}
