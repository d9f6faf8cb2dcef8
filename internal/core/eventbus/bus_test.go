package eventbus_test

import (
	"testing"

	"github.com/colonyops/tabula/internal/core/eventbus"
	"github.com/colonyops/tabula/internal/core/eventbus/testbus"
	"github.com/colonyops/tabula/internal/core/table"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEventBus_DeliversInOrder(t *testing.T) {
	bus := eventbus.New()

	var got []int
	bus.SubscribeLoadProgress(func(p eventbus.LoadProgressPayload) {
		got = append(got, p.Percent)
	})

	for _, pct := range []int{0, 25, 50, 100} {
		bus.PublishLoadProgress(eventbus.LoadProgressPayload{Percent: pct})
	}

	assert.Equal(t, []int{0, 25, 50, 100}, got)
}

func TestEventBus_MultipleSubscribers(t *testing.T) {
	bus := eventbus.New()

	var a, b []string
	bus.SubscribeSchemaReady(func(p eventbus.SchemaReadyPayload) { a = p.Columns })
	bus.SubscribeSchemaReady(func(p eventbus.SchemaReadyPayload) { b = p.Columns })

	bus.PublishSchemaReady(eventbus.SchemaReadyPayload{Columns: table.Schema{"id", "name"}})

	assert.Equal(t, []string{"id", "name"}, a)
	assert.Equal(t, []string{"id", "name"}, b)
}

func TestEventBus_PanicDoesNotStopDelivery(t *testing.T) {
	bus := eventbus.New()

	var panicked []eventbus.Event
	bus.OnPanic(func(ev eventbus.Event, _ any, _ any) { panicked = append(panicked, ev) })

	delivered := false
	bus.SubscribeLoadFailed(func(eventbus.LoadFailedPayload) { panic("first") })
	bus.SubscribeLoadFailed(func(eventbus.LoadFailedPayload) { delivered = true })

	require.NotPanics(t, func() {
		bus.PublishLoadFailed(eventbus.LoadFailedPayload{})
	})

	assert.True(t, delivered)
	assert.Equal(t, []eventbus.Event{eventbus.EventLoadFailed}, panicked)
}

func TestEventBus_NoSubscribers(t *testing.T) {
	tb := testbus.New(t)

	tb.PublishWindowChanged(eventbus.WindowChangedPayload{})

	assert.Equal(t, []eventbus.Event{eventbus.EventWindowChanged}, tb.Names())
	tb.AssertNotPublished(t, eventbus.EventLoadStarted)

	tb.Reset()
	assert.Empty(t, tb.Events())
}

func TestEvents_CoversEveryPayload(t *testing.T) {
	assert.Len(t, eventbus.Events, 8)
	for ev, payload := range eventbus.Events {
		assert.NotEmpty(t, string(ev))
		assert.NotNil(t, payload)
	}
}
