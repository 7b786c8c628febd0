package redis_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/brandforge/brandforge/pkg/models"
	"github.com/brandforge/brandforge/pkg/persistence"
	"github.com/brandforge/brandforge/pkg/persistence/redis"
)

func setupPersistence(t *testing.T) *redis.Persistence {
	t.Helper()

	server := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: server.Addr()})

	t.Cleanup(func() {
		_ = client.Close()
	})

	return redis.NewPersistenceWithClient(client)
}

func newSession() *models.Session {
	return models.NewSession(models.BusinessInfo{
		Industry: "retail",
		Region:   "busan",
		Size:     "medium",
	}, time.Hour)
}

func TestSessionLifecycle(t *testing.T) {
	p := setupPersistence(t)
	ctx := context.Background()

	session := newSession()
	require.NoError(t, p.Sessions().Create(ctx, session))

	stored, err := p.Sessions().GetByID(ctx, session.ID)
	require.NoError(t, err)
	assert.Equal(t, session.ID, stored.ID)
	assert.Equal(t, models.StepCreated, stored.CurrentStep)

	err = p.Sessions().Create(ctx, session)
	assert.True(t, persistence.IsSessionAlreadyExists(err))

	require.NoError(t, p.Sessions().Delete(ctx, session.ID))

	_, err = p.Sessions().GetByID(ctx, session.ID)
	assert.True(t, persistence.IsSessionNotFound(err))
}

func TestConditionalUpdate(t *testing.T) {
	p := setupPersistence(t)
	ctx := context.Background()

	session := newSession()
	require.NoError(t, p.Sessions().Create(ctx, session))

	session.CurrentStep = models.StepAnalysis
	require.NoError(t, p.Sessions().ConditionalUpdate(ctx, session, models.StepCreated))

	// A stale writer expecting the old step loses.
	err := p.Sessions().ConditionalUpdate(ctx, session, models.StepCreated)
	assert.True(t, persistence.IsStepConflict(err))

	stored, err := p.Sessions().GetByID(ctx, session.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StepAnalysis, stored.CurrentStep)
}

func TestConditionalUpdate_UnknownSession(t *testing.T) {
	p := setupPersistence(t)

	err := p.Sessions().ConditionalUpdate(context.Background(), newSession(), models.StepCreated)
	assert.True(t, persistence.IsSessionNotFound(err))
}

func TestListByStatus_TracksStatusChanges(t *testing.T) {
	p := setupPersistence(t)
	ctx := context.Background()

	first := newSession()
	second := newSession()
	require.NoError(t, p.Sessions().Create(ctx, first))
	require.NoError(t, p.Sessions().Create(ctx, second))

	active, err := p.Sessions().ListByStatus(ctx, models.SessionStatusActive, 0)
	require.NoError(t, err)
	assert.Len(t, active, 2)

	// Completing a session moves it between the status indexes.
	first.CurrentStep = models.StepAnalysis
	first.Status = models.SessionStatusCompleted
	require.NoError(t, p.Sessions().ConditionalUpdate(ctx, first, models.StepCreated))

	active, err = p.Sessions().ListByStatus(ctx, models.SessionStatusActive, 0)
	require.NoError(t, err)
	assert.Len(t, active, 1)

	completed, err := p.Sessions().ListByStatus(ctx, models.SessionStatusCompleted, 0)
	require.NoError(t, err)
	require.Len(t, completed, 1)
	assert.Equal(t, first.ID, completed[0].ID)
}

func TestSessionTTL_RetainsExpiredRecordForGraceWindow(t *testing.T) {
	ctx := context.Background()

	server := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: server.Addr()})
	p := redis.NewPersistenceWithClient(client)

	session := newSession()
	require.NoError(t, p.Sessions().Create(ctx, session))

	// Past the logical TTL the record is still readable, so an expired
	// session is distinguishable from an unknown one.
	server.FastForward(2 * time.Hour)

	stored, err := p.Sessions().GetByID(ctx, session.ID)
	require.NoError(t, err)
	assert.Equal(t, session.ID, stored.ID)

	// Past the grace window the key is gone and the stale index entry is
	// dropped.
	server.FastForward(25 * time.Hour)

	_, err = p.Sessions().GetByID(ctx, session.ID)
	assert.True(t, persistence.IsSessionNotFound(err))

	active, err := p.Sessions().ListByStatus(ctx, models.SessionStatusActive, 0)
	require.NoError(t, err)
	assert.Empty(t, active)
}

func TestEventLog(t *testing.T) {
	p := setupPersistence(t)
	ctx := context.Background()

	session := newSession()
	require.NoError(t, p.Sessions().Create(ctx, session))

	require.NoError(t, p.Events().Append(ctx,
		models.NewWorkflowEvent(session.ID, models.StepCreated, "controller", "create_session", 0, models.EventStatusSuccess, "")))
	require.NoError(t, p.Events().Append(ctx,
		models.NewWorkflowEvent(session.ID, models.StepAnalysis, "analyzer", "market_analysis", 8, models.EventStatusSuccess, "")))

	events, err := p.Events().ListBySession(ctx, session.ID)
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, "create_session", events[0].Tool)
	assert.Equal(t, "market_analysis", events[1].Tool)
}
