// envelope.go defines the canonical telemetry envelope and its enums.

package beacon

import "time"

// Source identifies which client surface produced an event.
type Source string

const (
	// SourceWeb is the browser client.
	SourceWeb Source = "web"

	// SourceEdge is an edge function acting on behalf of a client.
	SourceEdge Source = "edge"

	// SourceWorker is a background worker (service worker, job runner).
	SourceWorker Source = "worker"

	// SourceMobile is the native mobile client.
	SourceMobile Source = "mobile"
)

// EventType categorizes an event.
type EventType string

const (
	EventError       EventType = "error"
	EventLog         EventType = "log"
	EventPerformance EventType = "performance"
	EventSecurity    EventType = "security"
	EventAudit       EventType = "audit"
)

// Level indicates event severity, ordered by severity descending.
type Level string

const (
	LevelFatal Level = "fatal"
	LevelError Level = "error"
	LevelWarn  Level = "warn"
	LevelInfo  Level = "info"
	LevelDebug Level = "debug"
)

// levelRank orders levels for severity comparisons. Lower is more severe.
var levelRank = map[Level]int{
	LevelFatal: 0,
	LevelError: 1,
	LevelWarn:  2,
	LevelInfo:  3,
	LevelDebug: 4,
}

// IsHighSeverity reports whether the level warrants an immediate flush
// attempt instead of waiting for the flush timer.
func (l Level) IsHighSeverity() bool {
	return l == LevelFatal || l == LevelError
}

// ParseSource returns the Source for s, or the given fallback for unknown
// values. Unknown enum values never reject an event by themselves.
func ParseSource(s string, fallback Source) Source {
	switch Source(s) {
	case SourceWeb, SourceEdge, SourceWorker, SourceMobile:
		return Source(s)
	}
	return fallback
}

// ParseEventType returns the EventType for s, falling back to EventLog.
func ParseEventType(s string) EventType {
	switch EventType(s) {
	case EventError, EventLog, EventPerformance, EventSecurity, EventAudit:
		return EventType(s)
	}
	return EventLog
}

// ParseLevel returns the Level for s, falling back to LevelInfo.
func ParseLevel(s string) Level {
	switch Level(s) {
	case LevelFatal, LevelError, LevelWarn, LevelInfo, LevelDebug:
		return Level(s)
	}
	return LevelInfo
}

// Release identifies the build that produced an event.
type Release struct {
	AppID      string `json:"app_id" yaml:"app_id"`
	AppVersion string `json:"app_version" yaml:"app_version"`
	BuildID    string `json:"build_id" yaml:"build_id"`
	Env        string `json:"env" yaml:"env"`
}

// ErrorInfo carries the structured error attached to an envelope.
type ErrorInfo struct {
	// Code is the stable machine classification, e.g. "session_revoked".
	Code string `json:"code,omitempty"`

	// Name is the error type or class name.
	Name string `json:"name,omitempty"`

	// Detail is free text, scrubbed like any other message field.
	Detail string `json:"detail,omitempty"`
}

// Breadcrumb is a lightweight record of a recent UI or network action.
type Breadcrumb struct {
	Type      string         `json:"type"`
	Timestamp time.Time      `json:"timestamp"`
	Message   string         `json:"message"`
	Data      map[string]any `json:"data,omitempty"`
}

// Envelope is the normalized, scrubbed telemetry record queued for delivery.
// Envelopes are produced by the Builder; application code never constructs
// one directly.
type Envelope struct {
	// EventID is a unique identifier for this event (UUID).
	EventID string `json:"event_id"`

	Source    Source    `json:"source"`
	EventType EventType `json:"event_type"`
	Level     Level     `json:"level"`

	// Message is the scrubbed, length-clamped human-readable text.
	// An envelope with an empty message is never built.
	Message string `json:"message"`

	// Fingerprint groups similar events for deduplication and policy keys.
	Fingerprint string `json:"fingerprint"`

	// Route, Screen and Role locate the event inside the application.
	Route  string `json:"route,omitempty"`
	Screen string `json:"screen,omitempty"`
	Role   string `json:"role,omitempty"`

	// Nested attachments. Always scrubbed and depth-capped.
	Context map[string]any `json:"context,omitempty"`
	Extras  map[string]any `json:"extras,omitempty"`
	Device  map[string]any `json:"device,omitempty"`
	UserRef map[string]any `json:"user_ref,omitempty"`
	Tags    map[string]any `json:"tags,omitempty"`

	Error *ErrorInfo `json:"error,omitempty"`

	Release Release `json:"release"`

	// Breadcrumbs is a snapshot taken at build time, most recent last.
	Breadcrumbs []Breadcrumb `json:"breadcrumbs,omitempty"`

	// Correlation identifiers. SessionID is stable for one runtime session.
	RequestID string `json:"request_id,omitempty"`
	TraceID   string `json:"trace_id,omitempty"`
	SessionID string `json:"session_id,omitempty"`

	// Timestamp is when the event occurred; CreatedAt is when it was
	// normalized. Both are assigned at build time.
	Timestamp time.Time `json:"timestamp"`
	CreatedAt time.Time `json:"created_at"`
}

// Valid reports whether the envelope passes structural validation. An
// envelope that fails validation is never enqueued.
func (e *Envelope) Valid() bool {
	if e == nil || e.Message == "" {
		return false
	}
	if _, ok := levelRank[e.Level]; !ok {
		return false
	}
	switch e.EventType {
	case EventError, EventLog, EventPerformance, EventSecurity, EventAudit:
	default:
		return false
	}
	switch e.Source {
	case SourceWeb, SourceEdge, SourceWorker, SourceMobile:
	default:
		return false
	}
	return true
}
