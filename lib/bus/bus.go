package bus

import (
	"sync/atomic"

	"github.com/puzpuzpuz/xsync/v3"
)

// EventName is the application-level name of the in-process change
// broadcast.
const EventName = "localStorageChange"

// Event carries the already-decoded new and old values of a write. OldValue
// is best effort and may be nil when the previous value could not be read.
type Event struct {
	Key      string
	NewValue any
	OldValue any
}

// Handler receives change events. Handlers run synchronously on the
// publisher's goroutine, so the delivery order equals the write order.
type Handler func(evt Event)

// --------------------------------------------------------------------------
// Bus Implementation
// --------------------------------------------------------------------------

type subscription struct {
	key     string // exact key filter, "" = all keys
	handler Handler
}

// Bus is the in-process change broadcast. The storage manager publishes an
// event after every successful, sync-enabled write; bindings on the same key
// apply the decoded value directly, skipping a re-read round trip.
type Bus struct {
	subs   *xsync.MapOf[uint64, subscription]
	nextID atomic.Uint64
}

// New creates a new bus instance.
func New() *Bus {
	return &Bus{
		subs: xsync.NewMapOf[uint64, subscription](),
	}
}

// Subscribe registers a handler for change events on an exact key.
// The returned function cancels the subscription.
func (b *Bus) Subscribe(key string, handler Handler) (cancel func()) {
	id := b.nextID.Add(1)
	b.subs.Store(id, subscription{key: key, handler: handler})
	return func() {
		b.subs.Delete(id)
	}
}

// SubscribeAll registers a handler for change events on every key.
func (b *Bus) SubscribeAll(handler Handler) (cancel func()) {
	return b.Subscribe("", handler)
}

// Publish delivers an event synchronously to all matching subscribers.
func (b *Bus) Publish(evt Event) {
	b.subs.Range(func(_ uint64, sub subscription) bool {
		if sub.key == "" || sub.key == evt.Key {
			sub.handler(evt)
		}
		return true
	})
}
