// dedupe.go suppresses repeated identical events inside a time window.

package beacon

import (
	"sync"
	"time"
)

// DefaultDedupeWindow is how long an accepted fingerprint suppresses
// identical events.
const DefaultDedupeWindow = 120 * time.Second

// dedupeSweepThreshold bounds the map: once it grows past this many entries,
// expired entries are swept eagerly instead of lazily.
const dedupeSweepThreshold = 1024

// Deduper rejects events whose fingerprint was accepted within the window.
// Expiry is lazy: entries are checked on lookup, not on a timer.
type Deduper struct {
	window time.Duration
	now    func() time.Time

	mu   sync.Mutex
	seen map[string]time.Time
}

// NewDeduper creates a deduper. A non-positive window uses the default.
func NewDeduper(window time.Duration) *Deduper {
	if window <= 0 {
		window = DefaultDedupeWindow
	}
	return &Deduper{
		window: window,
		now:    time.Now,
		seen:   make(map[string]time.Time),
	}
}

// Admit reports whether an event with the given fingerprint may proceed.
// Acceptance records the current timestamp for that fingerprint.
func (d *Deduper) Admit(fingerprint string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	now := d.now()
	if last, ok := d.seen[fingerprint]; ok && now.Sub(last) <= d.window {
		return false
	}

	if len(d.seen) >= dedupeSweepThreshold {
		d.sweep(now)
	}
	d.seen[fingerprint] = now
	return true
}

func (d *Deduper) sweep(now time.Time) {
	for fp, last := range d.seen {
		if now.Sub(last) > d.window {
			delete(d.seen, fp)
		}
	}
}
