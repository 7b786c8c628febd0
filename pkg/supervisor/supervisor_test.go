package supervisor

import (
	"context"
	"testing"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/brandforge/brandforge/pkg/channels/gochannel"
	"github.com/brandforge/brandforge/pkg/eventbus"
	"github.com/brandforge/brandforge/pkg/fanout"
	"github.com/brandforge/brandforge/pkg/mocks"
	"github.com/brandforge/brandforge/pkg/models"
	"github.com/brandforge/brandforge/pkg/naming"
	"github.com/brandforge/brandforge/pkg/persistence"
	filepersistence "github.com/brandforge/brandforge/pkg/persistence/file"
	"github.com/brandforge/brandforge/pkg/provider"
	"github.com/brandforge/brandforge/pkg/workflow"
)

func newFixture(t *testing.T, config workflow.Config) (*workflow.Controller, *Supervisor, persistence.Persistence) {
	return newFixtureWith(t, config, nil,
		provider.NewStaticClient("dalle", "https://img.test", 0),
		provider.NewStaticClient("sdxl", "https://img.test", 0),
		provider.NewStaticClient("gemini", "https://img.test", 0),
	)
}

func newFixtureWith(t *testing.T, config workflow.Config, bus eventbus.EventBus, clients ...provider.Client) (*workflow.Controller, *Supervisor, persistence.Persistence) {
	t.Helper()

	p := filepersistence.NewPersistence(t.TempDir())
	tracer := noop.NewTracerProvider().Tracer("test")
	fallbacks := provider.NewFallbackRegistry()
	registry := provider.NewRegistry(clients...)
	executor := fanout.NewExecutor(registry, fallbacks, tracer)
	generator := naming.NewGeneratorWithSeed(naming.DefaultScoringConfig(), 42)

	controller := workflow.NewController(p, bus, executor, generator, fallbacks, tracer, config)

	return controller, NewSupervisor(controller, p), p
}

// flakyClient fails its first generation and succeeds afterwards.
func flakyClient(name string) *mocks.MockProviderClient {
	client := &mocks.MockProviderClient{}
	client.On("Name").Return(name)
	client.On("Generate", mock.Anything, mock.Anything).Return(nil, provider.ErrProviderFailure).Once()
	client.On("Generate", mock.Anything, mock.Anything).Return(&provider.Result{
		URL:         "https://img.test/" + name,
		Provider:    name,
		GeneratedAt: time.Now().UTC(),
	}, nil)

	return client
}

// brokenClient fails every generation.
func brokenClient(name string) *mocks.MockProviderClient {
	client := &mocks.MockProviderClient{}
	client.On("Name").Return(name)
	client.On("Generate", mock.Anything, mock.Anything).Return(nil, provider.ErrProviderFailure)

	return client
}

func advanceToNaming(t *testing.T, controller *workflow.Controller) *models.Session {
	t.Helper()
	ctx := context.Background()

	session, err := controller.CreateSession(ctx, models.BusinessInfo{
		Industry: "restaurant",
		Region:   "seoul",
		Size:     "small",
	})
	require.NoError(t, err)

	_, err = controller.RunAnalysis(ctx, session.ID)
	require.NoError(t, err)

	suggestions, err := controller.SuggestNames(ctx, session.ID)
	require.NoError(t, err)

	session, err = controller.SelectName(ctx, session.ID, suggestions[0].Name)
	require.NoError(t, err)

	return session
}

func TestQueryStatus_AggregateView(t *testing.T) {
	controller, supervisor, _ := newFixture(t, workflow.DefaultConfig())
	ctx := context.Background()

	session, err := controller.CreateSession(ctx, models.BusinessInfo{
		Industry: "restaurant",
		Region:   "seoul",
		Size:     "small",
	})
	require.NoError(t, err)

	_, err = controller.RunAnalysis(ctx, session.ID)
	require.NoError(t, err)

	_, err = controller.SuggestNames(ctx, session.ID)
	require.NoError(t, err)

	suggestions, err := controller.RegenerateNames(ctx, session.ID)
	require.NoError(t, err)

	_, err = controller.SelectName(ctx, session.ID, suggestions[0].Name)
	require.NoError(t, err)

	view, err := supervisor.QueryStatus(ctx, session.ID)
	require.NoError(t, err)

	assert.Equal(t, session.ID, view.SessionID)
	assert.Equal(t, models.SessionStatusActive, view.Status)
	assert.Equal(t, models.StepNaming, view.CurrentStep)
	assert.Equal(t, models.StepNaming.Ordinal(), view.StepOrdinal)
	assert.True(t, view.Recoverable)
	assert.Equal(t, suggestions[0].Name, view.SelectedName)
	assert.Equal(t, 1, view.RegenerationCount)
	assert.NotEmpty(t, view.Steps)
	assert.NotEmpty(t, view.RecentEvents)
	assert.GreaterOrEqual(t, view.ElapsedSeconds, 0.0)
}

func TestQueryStatus_UnknownSession(t *testing.T) {
	_, supervisor, _ := newFixture(t, workflow.DefaultConfig())

	_, err := supervisor.QueryStatus(context.Background(), "does-not-exist")
	assert.True(t, workflow.IsSessionNotFound(err))
}

func TestQueryStatus_ExpiredSession(t *testing.T) {
	config := workflow.DefaultConfig()
	config.SessionTTL = time.Millisecond

	controller, supervisor, _ := newFixture(t, config)
	ctx := context.Background()

	session, err := controller.CreateSession(ctx, models.BusinessInfo{
		Industry: "restaurant",
		Region:   "seoul",
		Size:     "small",
	})
	require.NoError(t, err)

	time.Sleep(5 * time.Millisecond)

	_, err = supervisor.QueryStatus(ctx, session.ID)
	assert.True(t, workflow.IsSessionExpired(err))
}

func TestObserve_RestartsStuckImageStep(t *testing.T) {
	controller, supervisor, p := newFixture(t, workflow.DefaultConfig())
	ctx := context.Background()

	session := advanceToNaming(t, controller)

	_, err := controller.GenerateSignboards(ctx, session.ID)
	require.NoError(t, err)

	// Simulate a crash mid-generation: the step is left running in storage.
	stored, err := p.Sessions().GetByID(ctx, session.ID)
	require.NoError(t, err)
	stored.StepStates[models.StepSignboard].Status = models.StepStatusRunning
	require.NoError(t, p.Sessions().ConditionalUpdate(ctx, stored, stored.CurrentStep))

	require.NoError(t, supervisor.Observe(ctx, session.ID))

	recovered, err := p.Sessions().GetByID(ctx, session.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StepStatusAwaitingSelection, recovered.StepStates[models.StepSignboard].Status)
	assert.NotEmpty(t, recovered.Signboards.Images)
}

func TestObserve_RetriesDegradedFanOut(t *testing.T) {
	controller, supervisor, p := newFixtureWith(t, workflow.DefaultConfig(), nil,
		flakyClient("dalle"), flakyClient("sdxl"), flakyClient("gemini"))
	ctx := context.Background()

	session := advanceToNaming(t, controller)

	set, err := controller.GenerateSignboards(ctx, session.ID)
	require.NoError(t, err)
	require.True(t, set.AllFallback())

	require.NoError(t, supervisor.Observe(ctx, session.ID))

	recovered, err := p.Sessions().GetByID(ctx, session.ID)
	require.NoError(t, err)

	state := recovered.StepStates[models.StepSignboard]
	assert.Equal(t, models.StepStatusAwaitingSelection, state.Status)
	assert.False(t, state.IsFallback)
	assert.Equal(t, 2, state.Attempts)
	assert.False(t, recovered.Signboards.AllFallback())
}

func TestObserve_StopsRetryingAtAllowance(t *testing.T) {
	controller, supervisor, p := newFixtureWith(t, workflow.DefaultConfig(), nil,
		brokenClient("dalle"), brokenClient("sdxl"), brokenClient("gemini"))
	ctx := context.Background()

	session := advanceToNaming(t, controller)

	_, err := controller.GenerateSignboards(ctx, session.ID)
	require.NoError(t, err)

	require.NoError(t, supervisor.Observe(ctx, session.ID))

	settled, err := p.Sessions().GetByID(ctx, session.ID)
	require.NoError(t, err)

	// The allowance is spent; the step stays degraded but selectable.
	state := settled.StepStates[models.StepSignboard]
	assert.Equal(t, models.StepStatusAwaitingSelection, state.Status)
	assert.True(t, state.IsFallback)
	assert.Equal(t, controller.MaxStepAttempts(), state.Attempts)
	assert.True(t, settled.Signboards.AllFallback())
}

func TestHandleEvents_RestartsDegradedFanOut(t *testing.T) {
	pub, sub, err := gochannel.CreateChannel(watermill.NopLogger{})
	require.NoError(t, err)

	bus := eventbus.NewWatermillEventBus(pub, sub)
	t.Cleanup(func() {
		_ = bus.Close()
	})

	controller, supervisor, p := newFixtureWith(t, workflow.DefaultConfig(), bus,
		flakyClient("dalle"), flakyClient("sdxl"), flakyClient("gemini"))
	ctx := context.Background()

	require.NoError(t, supervisor.HandleEvents(bus))
	require.NoError(t, bus.Subscribe(ctx))

	session := advanceToNaming(t, controller)

	set, err := controller.GenerateSignboards(ctx, session.ID)
	require.NoError(t, err)
	require.True(t, set.AllFallback())

	// The degraded fan-out event reaches the supervisor through the bus and
	// the retry produces real content.
	assert.Eventually(t, func() bool {
		stored, err := p.Sessions().GetByID(ctx, session.ID)
		if err != nil {
			return false
		}

		state := stored.StepStates[models.StepSignboard]

		return state != nil && !state.IsFallback && state.Attempts == 2
	}, 5*time.Second, 10*time.Millisecond)
}

func TestObserve_HealthySessionUntouched(t *testing.T) {
	controller, supervisor, p := newFixture(t, workflow.DefaultConfig())
	ctx := context.Background()

	session := advanceToNaming(t, controller)

	before, err := p.Sessions().GetByID(ctx, session.ID)
	require.NoError(t, err)

	require.NoError(t, supervisor.Observe(ctx, session.ID))

	after, err := p.Sessions().GetByID(ctx, session.ID)
	require.NoError(t, err)
	assert.Equal(t, before.UpdatedAt, after.UpdatedAt)
	assert.Equal(t, before.CurrentStep, after.CurrentStep)
}

func TestCollectStats(t *testing.T) {
	controller, supervisor, _ := newFixture(t, workflow.DefaultConfig())
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, err := controller.CreateSession(ctx, models.BusinessInfo{
			Industry: "restaurant",
			Region:   "seoul",
			Size:     "small",
		})
		require.NoError(t, err)
	}

	stats, err := supervisor.CollectStats(ctx)
	require.NoError(t, err)

	assert.Equal(t, 3, stats.Total)
	assert.Equal(t, 3, stats.ByStatus[models.SessionStatusActive])
	assert.Equal(t, 3, stats.ByStep[models.StepCreated])
}

func TestSweep_ExpiresLapsedSessions(t *testing.T) {
	config := workflow.DefaultConfig()
	config.SessionTTL = time.Millisecond

	controller, _, p := newFixture(t, config)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		_, err := controller.CreateSession(ctx, models.BusinessInfo{
			Industry: "retail",
			Region:   "busan",
			Size:     "medium",
		})
		require.NoError(t, err)
	}

	time.Sleep(5 * time.Millisecond)

	sweeper := NewSweeper(controller, p)

	count, err := sweeper.Sweep(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	expired, err := p.Sessions().ListByStatus(ctx, models.SessionStatusExpired, 0)
	require.NoError(t, err)
	assert.Len(t, expired, 2)

	// A second sweep finds nothing left to expire.
	count, err = sweeper.Sweep(ctx)
	require.NoError(t, err)
	assert.Zero(t, count)
}
