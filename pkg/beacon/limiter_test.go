package beacon

import (
	"testing"
	"time"
)

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func TestLimiter_PerLevelCeiling(t *testing.T) {
	l := NewLimiter(LimiterConfig{
		GlobalPerMinute:   100,
		PerLevelPerMinute: map[Level]int{LevelWarn: 5},
		DefaultLevelCap:   100,
	})
	l.now = fixedClock(time.Date(2026, 3, 1, 10, 30, 0, 0, time.UTC))

	accepted := 0
	for i := 0; i < 12; i++ {
		e := &Envelope{EventType: EventLog, Level: LevelWarn, Message: "m"}
		if ok, reason := l.Admit(e); ok {
			accepted++
		} else if reason != DropRateLimit {
			t.Fatalf("unexpected drop reason %q", reason)
		}
	}
	if accepted != 5 {
		t.Errorf("accepted = %d, want exactly the per-level cap of 5", accepted)
	}
}

func TestLimiter_GlobalCeiling(t *testing.T) {
	l := NewLimiter(LimiterConfig{
		GlobalPerMinute: 3,
		DefaultLevelCap: 100,
	})
	l.now = fixedClock(time.Date(2026, 3, 1, 10, 30, 0, 0, time.UTC))

	accepted := 0
	for i := 0; i < 10; i++ {
		// Spread across levels so only the global counter can stop us.
		level := LevelInfo
		if i%2 == 0 {
			level = LevelWarn
		}
		if ok, _ := l.Admit(&Envelope{EventType: EventLog, Level: level, Message: "m"}); ok {
			accepted++
		}
	}
	if accepted != 3 {
		t.Errorf("accepted = %d, want global cap of 3", accepted)
	}
}

func TestLimiter_MinuteRolloverResets(t *testing.T) {
	now := time.Date(2026, 3, 1, 10, 30, 59, 0, time.UTC)
	l := NewLimiter(LimiterConfig{GlobalPerMinute: 1, DefaultLevelCap: 10})
	l.now = func() time.Time { return now }

	if ok, _ := l.Admit(&Envelope{EventType: EventLog, Level: LevelInfo, Message: "m"}); !ok {
		t.Fatal("first event should be accepted")
	}
	if ok, _ := l.Admit(&Envelope{EventType: EventLog, Level: LevelInfo, Message: "m"}); ok {
		t.Fatal("second event in the same minute should be rejected")
	}

	// Crossing the wall-clock minute boundary resets all counters.
	now = now.Add(time.Second)
	if ok, _ := l.Admit(&Envelope{EventType: EventLog, Level: LevelInfo, Message: "m"}); !ok {
		t.Error("event in the next minute should be accepted")
	}
}

func TestLimiter_SamplingRunsBeforeQuota(t *testing.T) {
	l := NewLimiter(LimiterConfig{
		GlobalPerMinute: 2,
		DefaultLevelCap: 2,
		Sampling:        map[EventType]float64{EventPerformance: 0},
	})
	l.now = fixedClock(time.Date(2026, 3, 1, 10, 30, 0, 0, time.UTC))
	l.randFloat = func() float64 { return 0.5 }

	// Sampled-out events are rejected without consuming quota.
	for i := 0; i < 5; i++ {
		ok, reason := l.Admit(&Envelope{EventType: EventPerformance, Level: LevelInfo, Message: "m"})
		if ok || reason != DropSampleRate {
			t.Fatalf("sampled-out event: ok=%v reason=%q", ok, reason)
		}
	}
	for i := 0; i < 2; i++ {
		if ok, _ := l.Admit(&Envelope{EventType: EventLog, Level: LevelInfo, Message: "m"}); !ok {
			t.Fatal("quota should be untouched by sampled-out events")
		}
	}
}

func TestLimiter_SamplingDraw(t *testing.T) {
	l := NewLimiter(LimiterConfig{
		GlobalPerMinute: 100,
		DefaultLevelCap: 100,
		Sampling:        map[EventType]float64{EventLog: 0.4},
	})
	l.now = fixedClock(time.Date(2026, 3, 1, 10, 30, 0, 0, time.UTC))

	l.randFloat = func() float64 { return 0.39 }
	if ok, _ := l.Admit(&Envelope{EventType: EventLog, Level: LevelInfo, Message: "m"}); !ok {
		t.Error("draw below the keep-probability should be kept")
	}

	l.randFloat = func() float64 { return 0.4 }
	if ok, reason := l.Admit(&Envelope{EventType: EventLog, Level: LevelInfo, Message: "m"}); ok || reason != DropSampleRate {
		t.Error("draw at or above the keep-probability should be sampled out")
	}

	// Unmapped categories keep everything.
	l.randFloat = func() float64 { return 0.999 }
	if ok, _ := l.Admit(&Envelope{EventType: EventAudit, Level: LevelInfo, Message: "m"}); !ok {
		t.Error("unmapped category should default to keep-probability 1.0")
	}
}
