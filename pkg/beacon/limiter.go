// limiter.go gates events through category sampling and per-minute quotas.

package beacon

import (
	"math/rand"
	"sync"
	"time"
)

// DropReason explains why the pipeline rejected an event. Callers cannot
// distinguish a dropped event from a delivered one; reasons exist for the
// diagnostic snapshot and for tests.
type DropReason string

const (
	DropNone       DropReason = ""
	DropDisabled   DropReason = "disabled"
	DropInvalid    DropReason = "invalid"
	DropSampleRate DropReason = "sample_rate"
	DropRateLimit  DropReason = "rate_limit"
	DropDuplicate  DropReason = "duplicate"
)

// LimiterConfig controls sampling and rate limiting.
type LimiterConfig struct {
	// GlobalPerMinute caps accepted events per wall-clock minute across
	// all levels (default: 240).
	GlobalPerMinute int `yaml:"global_per_minute"`

	// PerLevelPerMinute caps accepted events per level per minute.
	// Levels absent from the map use DefaultLevelCap.
	PerLevelPerMinute map[Level]int `yaml:"per_level_per_minute"`

	// DefaultLevelCap applies to levels without an explicit cap
	// (default: 120).
	DefaultLevelCap int `yaml:"default_level_cap"`

	// Sampling maps an event type to a keep-probability in [0,1].
	// Unmapped types default to 1.0 (keep everything).
	Sampling map[EventType]float64 `yaml:"sampling"`
}

// DefaultLimiterConfig returns production defaults.
func DefaultLimiterConfig() LimiterConfig {
	return LimiterConfig{
		GlobalPerMinute: 240,
		DefaultLevelCap: 120,
		PerLevelPerMinute: map[Level]int{
			LevelFatal: 60,
			LevelError: 120,
			LevelDebug: 60,
		},
	}
}

// Limiter admits or rejects events. Two independent gates run in order:
// category sampling first (a sampled-out event never consumes quota), then
// wall-clock-minute-aligned global and per-level counters.
type Limiter struct {
	cfg LimiterConfig

	now       func() time.Time
	randFloat func() float64

	mu        sync.Mutex
	minuteKey string
	global    int
	byLevel   map[Level]int
}

// NewLimiter creates a limiter. Zero config values fall back to defaults.
func NewLimiter(cfg LimiterConfig) *Limiter {
	def := DefaultLimiterConfig()
	if cfg.GlobalPerMinute <= 0 {
		cfg.GlobalPerMinute = def.GlobalPerMinute
	}
	if cfg.DefaultLevelCap <= 0 {
		cfg.DefaultLevelCap = def.DefaultLevelCap
	}
	if cfg.PerLevelPerMinute == nil {
		cfg.PerLevelPerMinute = def.PerLevelPerMinute
	}
	return &Limiter{
		cfg:       cfg,
		now:       time.Now,
		randFloat: rand.Float64,
		byLevel:   make(map[Level]int),
	}
}

// Admit reports whether the event passes both gates. Acceptance increments
// the global and the per-level counter.
func (l *Limiter) Admit(e *Envelope) (bool, DropReason) {
	if rate, ok := l.cfg.Sampling[e.EventType]; ok {
		if rate <= 0 || l.randFloat() >= rate {
			return false, DropSampleRate
		}
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	// The minute boundary is wall-clock-aligned; crossing it resets all
	// counters atomically.
	key := l.now().UTC().Format("200601021504")
	if key != l.minuteKey {
		l.minuteKey = key
		l.global = 0
		l.byLevel = make(map[Level]int)
	}

	limit := l.levelCap(e.Level)
	if l.global >= l.cfg.GlobalPerMinute || l.byLevel[e.Level] >= limit {
		return false, DropRateLimit
	}

	l.global++
	l.byLevel[e.Level]++
	return true, DropNone
}

func (l *Limiter) levelCap(level Level) int {
	if c, ok := l.cfg.PerLevelPerMinute[level]; ok && c > 0 {
		return c
	}
	return l.cfg.DefaultLevelCap
}
