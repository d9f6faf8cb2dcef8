package eventbus

import (
	"slices"
	"sync"
)

type handler func(payload any)

// EventBus dispatches events synchronously to subscribers on the publishing
// goroutine. When the publisher is the Bubble Tea Update loop, subscribers run
// on it too and may touch model state.
type EventBus struct {
	mu    sync.RWMutex
	subs  map[Event][]handler
	hooks hooks
}

// New creates an empty bus.
func New() *EventBus {
	return &EventBus{subs: make(map[Event][]handler)}
}

func subscribe[T any](bus *EventBus, event Event, fn func(T)) {
	bus.mu.Lock()
	bus.subs[event] = append(bus.subs[event], func(p any) { fn(p.(T)) })
	bus.mu.Unlock()

	bus.runOnSubscribe(event)
}

// send delivers payload to every subscriber of event. A panicking subscriber
// does not stop delivery to the rest.
func (bus *EventBus) send(event Event, payload any) {
	bus.mu.RLock()
	handlers := slices.Clone(bus.subs[event])
	bus.mu.RUnlock()

	bus.runOnPublish(event, payload)

	for _, h := range handlers {
		bus.dispatch(event, payload, h)
	}
}

func (bus *EventBus) dispatch(event Event, payload any, h handler) {
	defer func() {
		if r := recover(); r != nil {
			bus.runOnPanic(event, payload, r)
		}
	}()
	h(payload)
}

// PublishLoadStarted publishes a load.started event.
func (bus *EventBus) PublishLoadStarted(p LoadStartedPayload) { bus.send(EventLoadStarted, p) }

// SubscribeLoadStarted registers fn for load.started events.
func (bus *EventBus) SubscribeLoadStarted(fn func(LoadStartedPayload)) {
	subscribe(bus, EventLoadStarted, fn)
}

// PublishLoadProgress publishes a load.progress event.
func (bus *EventBus) PublishLoadProgress(p LoadProgressPayload) { bus.send(EventLoadProgress, p) }

// SubscribeLoadProgress registers fn for load.progress events.
func (bus *EventBus) SubscribeLoadProgress(fn func(LoadProgressPayload)) {
	subscribe(bus, EventLoadProgress, fn)
}

// PublishLoadCompleted publishes a load.completed event.
func (bus *EventBus) PublishLoadCompleted(p LoadCompletedPayload) {
	bus.send(EventLoadCompleted, p)
}

// SubscribeLoadCompleted registers fn for load.completed events.
func (bus *EventBus) SubscribeLoadCompleted(fn func(LoadCompletedPayload)) {
	subscribe(bus, EventLoadCompleted, fn)
}

// PublishLoadFailed publishes a load.failed event.
func (bus *EventBus) PublishLoadFailed(p LoadFailedPayload) { bus.send(EventLoadFailed, p) }

// SubscribeLoadFailed registers fn for load.failed events.
func (bus *EventBus) SubscribeLoadFailed(fn func(LoadFailedPayload)) {
	subscribe(bus, EventLoadFailed, fn)
}

// PublishSchemaReady publishes a schema.ready event.
func (bus *EventBus) PublishSchemaReady(p SchemaReadyPayload) { bus.send(EventSchemaReady, p) }

// SubscribeSchemaReady registers fn for schema.ready events.
func (bus *EventBus) SubscribeSchemaReady(fn func(SchemaReadyPayload)) {
	subscribe(bus, EventSchemaReady, fn)
}

// PublishWindowChanged publishes a window.changed event.
func (bus *EventBus) PublishWindowChanged(p WindowChangedPayload) {
	bus.send(EventWindowChanged, p)
}

// SubscribeWindowChanged registers fn for window.changed events.
func (bus *EventBus) SubscribeWindowChanged(fn func(WindowChangedPayload)) {
	subscribe(bus, EventWindowChanged, fn)
}

// PublishSearchCompleted publishes a search.completed event.
func (bus *EventBus) PublishSearchCompleted(p SearchCompletedPayload) {
	bus.send(EventSearchCompleted, p)
}

// SubscribeSearchCompleted registers fn for search.completed events.
func (bus *EventBus) SubscribeSearchCompleted(fn func(SearchCompletedPayload)) {
	subscribe(bus, EventSearchCompleted, fn)
}

// PublishStatusChanged publishes a status.changed event.
func (bus *EventBus) PublishStatusChanged(p StatusChangedPayload) {
	bus.send(EventStatusChanged, p)
}

// SubscribeStatusChanged registers fn for status.changed events.
func (bus *EventBus) SubscribeStatusChanged(fn func(StatusChangedPayload)) {
	subscribe(bus, EventStatusChanged, fn)
}
