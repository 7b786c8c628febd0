package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/brandforge/brandforge/pkg/models"
	"github.com/brandforge/brandforge/pkg/persistence"
	goredis "github.com/redis/go-redis/v9"
)

const (
	sessionKeyPrefix = "brandforge:session:"
	statusKeyPrefix  = "brandforge:sessions:status:"

	// expiredRetention keeps a session's record readable past its logical
	// expiry, so callers can tell an expired session apart from an unknown
	// one. The key self-deletes only after the grace window.
	expiredRetention = 24 * time.Hour
)

// SessionRepository stores sessions as JSON values keyed by session ID, plus
// one index set per status for ListByStatus.
type SessionRepository struct {
	client *goredis.Client
}

func NewSessionRepository(client *goredis.Client) *SessionRepository {
	return &SessionRepository{client: client}
}

func sessionKey(id string) string {
	return sessionKeyPrefix + id
}

func statusKey(status models.SessionStatus) string {
	return statusKeyPrefix + string(status)
}

func (r *SessionRepository) Create(ctx context.Context, session *models.Session) error {
	payload, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("failed to encode session %s: %w", session.ID, err)
	}

	ok, err := r.client.SetNX(ctx, sessionKey(session.ID), payload, 0).Result()
	if err != nil {
		return fmt.Errorf("failed to create session %s: %w", session.ID, err)
	}

	if !ok {
		return persistence.NewSessionError("Create", session.ID, persistence.ErrSessionAlreadyExists)
	}

	pipe := r.client.Pipeline()
	pipe.ExpireAt(ctx, sessionKey(session.ID), session.ExpiresAt.Add(expiredRetention))
	pipe.SAdd(ctx, statusKey(session.Status), session.ID)

	_, err = pipe.Exec(ctx)

	return err
}

func (r *SessionRepository) GetByID(ctx context.Context, id string) (*models.Session, error) {
	data, err := r.client.Get(ctx, sessionKey(id)).Bytes()
	if errors.Is(err, goredis.Nil) {
		return nil, persistence.NewSessionError("GetByID", id, persistence.ErrSessionNotFound)
	}

	if err != nil {
		return nil, fmt.Errorf("failed to get session %s: %w", id, err)
	}

	var session models.Session
	if err := json.Unmarshal(data, &session); err != nil {
		return nil, fmt.Errorf("failed to decode session %s: %w", id, err)
	}

	return &session, nil
}

// ConditionalUpdate performs an optimistic WATCH transaction: the write only
// commits when the stored current step still matches expectedStep and no
// other writer touched the key in between.
func (r *SessionRepository) ConditionalUpdate(ctx context.Context, session *models.Session, expectedStep models.Step) error {
	key := sessionKey(session.ID)

	err := r.client.Watch(ctx, func(tx *goredis.Tx) error {
		data, err := tx.Get(ctx, key).Bytes()
		if errors.Is(err, goredis.Nil) {
			return persistence.ErrSessionNotFound
		}

		if err != nil {
			return err
		}

		var stored models.Session
		if err := json.Unmarshal(data, &stored); err != nil {
			return fmt.Errorf("failed to decode session %s: %w", session.ID, err)
		}

		if stored.CurrentStep != expectedStep {
			return persistence.ErrStepConflict
		}

		payload, err := json.Marshal(session)
		if err != nil {
			return fmt.Errorf("failed to encode session %s: %w", session.ID, err)
		}

		_, err = tx.TxPipelined(ctx, func(pipe goredis.Pipeliner) error {
			pipe.Set(ctx, key, payload, 0)
			pipe.ExpireAt(ctx, key, session.ExpiresAt.Add(expiredRetention))

			if stored.Status != session.Status {
				pipe.SRem(ctx, statusKey(stored.Status), session.ID)
				pipe.SAdd(ctx, statusKey(session.Status), session.ID)
			}

			return nil
		})

		return err
	}, key)

	switch {
	case errors.Is(err, goredis.TxFailedErr):
		// Another writer modified the key mid-transaction.
		return persistence.NewSessionError("ConditionalUpdate", session.ID, persistence.ErrStepConflict)
	case errors.Is(err, persistence.ErrStepConflict):
		return persistence.NewSessionError("ConditionalUpdate", session.ID, persistence.ErrStepConflict)
	case errors.Is(err, persistence.ErrSessionNotFound):
		return persistence.NewSessionError("ConditionalUpdate", session.ID, persistence.ErrSessionNotFound)
	}

	return err
}

func (r *SessionRepository) Delete(ctx context.Context, id string) error {
	deleted, err := r.client.Del(ctx, sessionKey(id)).Result()
	if err != nil {
		return fmt.Errorf("failed to delete session %s: %w", id, err)
	}

	if deleted == 0 {
		return persistence.NewSessionError("Delete", id, persistence.ErrSessionNotFound)
	}

	for _, status := range []models.SessionStatus{
		models.SessionStatusActive,
		models.SessionStatusCompleted,
		models.SessionStatusFailed,
		models.SessionStatusExpired,
	} {
		r.client.SRem(ctx, statusKey(status), id)
	}

	return nil
}

func (r *SessionRepository) ListByStatus(ctx context.Context, status models.SessionStatus, limit int) ([]*models.Session, error) {
	ids, err := r.client.SMembers(ctx, statusKey(status)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions by status %s: %w", status, err)
	}

	var sessions []*models.Session

	for _, id := range ids {
		session, err := r.GetByID(ctx, id)
		if persistence.IsSessionNotFound(err) {
			// Key expired out from under the index; drop the stale entry.
			r.client.SRem(ctx, statusKey(status), id)

			continue
		}

		if err != nil {
			return nil, err
		}

		sessions = append(sessions, session)
		if limit > 0 && len(sessions) >= limit {
			break
		}
	}

	return sessions, nil
}

func (r *SessionRepository) HealthCheck(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}
