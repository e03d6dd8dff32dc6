package beacon

import (
	"fmt"
	"testing"
	"time"
)

func TestDeduper_SuppressesWithinWindow(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	d := NewDeduper(120 * time.Second)
	d.now = func() time.Time { return now }

	if !d.Admit("fp-1") {
		t.Fatal("first occurrence should be accepted")
	}

	now = now.Add(119 * time.Second)
	if d.Admit("fp-1") {
		t.Error("occurrence inside the window should be rejected")
	}
}

func TestDeduper_AcceptsBeyondWindow(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	d := NewDeduper(120 * time.Second)
	d.now = func() time.Time { return now }

	if !d.Admit("fp-1") {
		t.Fatal("first occurrence should be accepted")
	}

	now = now.Add(121 * time.Second)
	if !d.Admit("fp-1") {
		t.Error("occurrence beyond the window should be accepted again")
	}
}

func TestDeduper_IndependentFingerprints(t *testing.T) {
	d := NewDeduper(0)
	if !d.Admit("fp-a") || !d.Admit("fp-b") {
		t.Error("distinct fingerprints should not suppress each other")
	}
}

func TestDeduper_SweepBoundsMap(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	d := NewDeduper(time.Second)
	d.now = func() time.Time { return now }

	for i := 0; i < dedupeSweepThreshold; i++ {
		d.Admit(fmt.Sprintf("fp-%d", i))
	}
	now = now.Add(time.Hour)
	d.Admit("fresh")

	if len(d.seen) > 2 {
		t.Errorf("expired entries not swept, map size %d", len(d.seen))
	}
}
