// Package cmd holds shared wiring helpers for the binaries.
package cmd

import (
	"context"
	"log/slog"
	"strings"

	"github.com/brandforge/brandforge/pkg/persistence"
	"github.com/brandforge/brandforge/pkg/persistence/file"
	"github.com/brandforge/brandforge/pkg/persistence/postgres"
	"github.com/brandforge/brandforge/pkg/persistence/redis"
)

// NewPersistence selects the storage backend from the database URL scheme.
// Anything that is not postgres or redis falls back to the file backend.
func NewPersistence(ctx context.Context, logger *slog.Logger, databaseURL string) persistence.Persistence {
	switch parsePersistenceProvider(databaseURL) {
	case "postgres":
		p, err := postgres.NewPersistence(ctx, logger, databaseURL)
		if err != nil {
			logger.ErrorContext(ctx, "Failed to initialize PostgreSQL persistence", "error", err)
			panic(err)
		}

		return p
	case "redis":
		p, err := redis.NewPersistence(databaseURL)
		if err != nil {
			logger.ErrorContext(ctx, "Failed to initialize Redis persistence", "error", err)
			panic(err)
		}

		return p
	default:
		return file.NewPersistence(databaseURL)
	}
}

func parsePersistenceProvider(databaseURL string) string {
	scheme, _, found := strings.Cut(databaseURL, "://")
	if !found {
		return "file"
	}

	switch scheme {
	case "postgres", "postgresql":
		return "postgres"
	case "redis", "rediss":
		return "redis"
	default:
		return "file"
	}
}
