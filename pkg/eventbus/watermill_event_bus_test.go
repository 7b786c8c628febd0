package eventbus_test

import (
	"context"
	"testing"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/brandforge/brandforge/pkg/channels/gochannel"
	"github.com/brandforge/brandforge/pkg/eventbus"
	"github.com/brandforge/brandforge/pkg/events"
	"github.com/brandforge/brandforge/pkg/models"
)

func setupBus(t *testing.T) eventbus.EventBus {
	t.Helper()

	pub, sub, err := gochannel.CreateTestChannel(watermill.NopLogger{})
	require.NoError(t, err)

	bus := eventbus.NewWatermillEventBus(pub, sub)

	t.Cleanup(func() {
		_ = bus.Close()
	})

	return bus
}

func TestPublishAndSubscribeRoundTrip(t *testing.T) {
	bus := setupBus(t)
	ctx := context.Background()

	received := make(chan *events.SessionCreated, 1)

	require.NoError(t, bus.Handle(events.SessionCreatedEvent, func(_ context.Context, event interface{}) error {
		created, ok := event.(*events.SessionCreated)
		require.True(t, ok)

		received <- created

		return nil
	}))
	require.NoError(t, bus.Subscribe(ctx))

	published := events.SessionCreated{
		BaseEvent: events.BaseEvent{
			ID:        bus.GenerateID(),
			Type:      events.SessionCreatedEvent,
			Timestamp: time.Now().UTC(),
			SessionID: "session-1",
		},
		BusinessInfo: models.BusinessInfo{
			Industry: "restaurant",
			Region:   "seoul",
			Size:     "small",
		},
	}

	require.NoError(t, bus.Publish(ctx, "session-1", published))

	select {
	case got := <-received:
		assert.Equal(t, published.ID, got.ID)
		assert.Equal(t, "session-1", got.SessionID)
		assert.Equal(t, "restaurant", got.BusinessInfo.Industry)
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for event")
	}
}

func TestSubscribe_IgnoresUnhandledEventTypes(t *testing.T) {
	bus := setupBus(t)
	ctx := context.Background()

	received := make(chan *events.StepCompleted, 1)

	require.NoError(t, bus.Handle(events.StepCompletedEvent, func(_ context.Context, event interface{}) error {
		received <- event.(*events.StepCompleted)

		return nil
	}))
	require.NoError(t, bus.Subscribe(ctx))

	// No handler registered for this type; it is acked and dropped.
	require.NoError(t, bus.Publish(ctx, "session-1", events.SessionExpired{
		BaseEvent: events.BaseEvent{
			ID:        bus.GenerateID(),
			Type:      events.SessionExpiredEvent,
			SessionID: "session-1",
		},
	}))

	require.NoError(t, bus.Publish(ctx, "session-1", events.StepCompleted{
		BaseEvent: events.BaseEvent{
			ID:        bus.GenerateID(),
			Type:      events.StepCompletedEvent,
			SessionID: "session-1",
		},
		Step: models.StepAnalysis,
	}))

	select {
	case got := <-received:
		assert.Equal(t, models.StepAnalysis, got.Step)
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for event")
	}
}

func TestGenerateID_Unique(t *testing.T) {
	bus := setupBus(t)

	first := bus.GenerateID()
	second := bus.GenerateID()

	assert.NotEmpty(t, first)
	assert.NotEqual(t, first, second)
}
