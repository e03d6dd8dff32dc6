// breadcrumbs.go records recent UI and network actions in a bounded ring.

package beacon

import (
	"sync"
	"time"
)

// DefaultBreadcrumbCapacity is the ring buffer size.
const DefaultBreadcrumbCapacity = 50

// BreadcrumbRecorder is a fixed-capacity ring buffer of recent breadcrumbs,
// oldest evicted first. Every append scrubs the entry; reads return a
// chronological snapshot so later appends never retroactively appear on an
// already-built envelope.
//
// All methods are safe for concurrent use.
type BreadcrumbRecorder struct {
	scrubber *Scrubber
	now      func() time.Time

	mu       sync.Mutex
	entries  []Breadcrumb
	capacity int
	next     int
	full     bool
}

// NewBreadcrumbRecorder creates a recorder. A non-positive capacity uses the
// default of 50.
func NewBreadcrumbRecorder(capacity int, scrubber *Scrubber) *BreadcrumbRecorder {
	if capacity <= 0 {
		capacity = DefaultBreadcrumbCapacity
	}
	if scrubber == nil {
		scrubber = NewScrubber(DefaultScrubberConfig())
	}
	return &BreadcrumbRecorder{
		scrubber: scrubber,
		now:      time.Now,
		entries:  make([]Breadcrumb, capacity),
		capacity: capacity,
	}
}

// Add scrubs and appends a breadcrumb, evicting the oldest when full.
// A zero timestamp is assigned at append time.
func (r *BreadcrumbRecorder) Add(b Breadcrumb) {
	b.Message = r.scrubber.String(b.Message)
	b.Data = r.scrubber.Map(b.Data)

	r.mu.Lock()
	defer r.mu.Unlock()

	if b.Timestamp.IsZero() {
		b.Timestamp = r.now()
	}
	r.entries[r.next] = b
	r.next = (r.next + 1) % r.capacity
	if r.next == 0 {
		r.full = true
	}
}

// Snapshot returns the recorded breadcrumbs in chronological order. The
// result is a copy; mutating it does not affect the recorder.
func (r *BreadcrumbRecorder) Snapshot() []Breadcrumb {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.full {
		if r.next == 0 {
			return nil
		}
		out := make([]Breadcrumb, r.next)
		copy(out, r.entries[:r.next])
		return out
	}

	out := make([]Breadcrumb, 0, r.capacity)
	out = append(out, r.entries[r.next:]...)
	out = append(out, r.entries[:r.next]...)
	return out
}

// Len returns the number of recorded breadcrumbs.
func (r *BreadcrumbRecorder) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.full {
		return r.capacity
	}
	return r.next
}
