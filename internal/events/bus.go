package events

import (
	"sync/atomic"

	"github.com/kelindar/event"
)

// Bus wraps kelindar/event dispatcher for event broadcasting
type Bus struct {
	dispatcher *event.Dispatcher
	dropped    atomic.Uint64
}

// New creates a new event bus
func New() *Bus {
	return &Bus{
		dispatcher: event.NewDispatcher(),
	}
}

// Publish publishes an event to all subscribers
// Usage: bus.Publish(ColorChangedEvent{...})
func (b *Bus) Publish(ev Event) {
	switch e := ev.(type) {
	case ColorChangedEvent:
		event.Publish(b.dispatcher, e)
	case ActuationFailedEvent:
		event.Publish(b.dispatcher, e)
	case LogEntryEvent:
		event.Publish(b.dispatcher, e)
	}
}

// Subscribe subscribes to events with a handler function.
// The handler type determines which events it receives.
// Returns an unsubscribe function; unknown handler types get a no-op.
func (b *Bus) Subscribe(handler any) func() {
	switch h := handler.(type) {
	case func(ColorChangedEvent):
		return event.Subscribe(b.dispatcher, h)
	case func(ActuationFailedEvent):
		return event.Subscribe(b.dispatcher, h)
	case func(LogEntryEvent):
		return event.Subscribe(b.dispatcher, h)
	default:
		return func() {}
	}
}

// SubscribeToChannel forwards events of type T into ch for select loops such
// as SSE handlers. A full channel drops the event and counts it in Dropped.
func SubscribeToChannel[T Event](bus *Bus, ch chan<- any) func() {
	return event.Subscribe(bus.dispatcher, func(e T) {
		select {
		case ch <- e:
		default:
			bus.dropped.Add(1)
		}
	})
}

// Dropped returns how many events SubscribeToChannel could not deliver.
func (b *Bus) Dropped() uint64 {
	return b.dropped.Load()
}
