// bus.go is the in-process publish/subscribe channel for error events.

package report

import "sync"

// Bus delivers published error events to every subscriber. It is a
// constructed, explicitly-owned object with no package-level instance, so
// two runtimes never share subscribers by accident.
//
// All methods are safe for concurrent use. Subscribers are invoked
// synchronously, outside the bus lock, in subscription order.
type Bus struct {
	mu   sync.Mutex
	subs map[int]func(Event)
	next int
}

// NewBus creates an empty bus.
func NewBus() *Bus {
	return &Bus{subs: make(map[int]func(Event))}
}

// Subscribe registers fn for every future publication and returns its
// cancel function. Cancelling twice is harmless.
func (b *Bus) Subscribe(fn func(Event)) (cancel func()) {
	b.mu.Lock()
	id := b.next
	b.next++
	b.subs[id] = fn
	b.mu.Unlock()

	return func() {
		b.mu.Lock()
		delete(b.subs, id)
		b.mu.Unlock()
	}
}

// Publish delivers an event to all current subscribers.
func (b *Bus) Publish(e Event) {
	b.mu.Lock()
	fns := make([]func(Event), 0, len(b.subs))
	for i := 0; i < b.next; i++ {
		if fn, ok := b.subs[i]; ok {
			fns = append(fns, fn)
		}
	}
	b.mu.Unlock()

	for _, fn := range fns {
		fn(e)
	}
}
