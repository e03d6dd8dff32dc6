// builder.go normalizes loose capture requests into canonical envelopes.

package beacon

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// DefaultMaxMessageLen clamps envelope messages after scrubbing.
const DefaultMaxMessageLen = 1200

// CaptureRequest is the loosely-typed input to Track. String enum fields
// tolerate unknown values (they fall back to safe defaults); only an empty
// message rejects the request.
type CaptureRequest struct {
	Source    string `json:"source,omitempty"`
	EventType string `json:"event_type,omitempty"`
	Level     string `json:"level,omitempty"`

	Message string `json:"message"`

	// Fingerprint, when set, overrides the derived grouping key.
	Fingerprint string `json:"fingerprint,omitempty"`

	Route  string `json:"route,omitempty"`
	Screen string `json:"screen,omitempty"`
	Role   string `json:"role,omitempty"`

	Context map[string]any `json:"context,omitempty"`
	Extras  map[string]any `json:"extras,omitempty"`
	Device  map[string]any `json:"device,omitempty"`
	UserRef map[string]any `json:"user_ref,omitempty"`
	Tags    map[string]any `json:"tags,omitempty"`

	Error *ErrorInfo `json:"error,omitempty"`

	RequestID string `json:"request_id,omitempty"`
	TraceID   string `json:"trace_id,omitempty"`
	SessionID string `json:"session_id,omitempty"`

	// Timestamp is advisory; absent or future-dated values are replaced
	// at normalization time.
	Timestamp time.Time `json:"timestamp,omitempty"`
}

// BuilderConfig carries the process-wide defaults stamped onto envelopes.
type BuilderConfig struct {
	DefaultSource Source
	Release       Release
	MaxMessageLen int
}

// buildDefaults is the per-call state the client resolves before building:
// the session id, the merged runtime context, and the breadcrumb snapshot.
type buildDefaults struct {
	now         time.Time
	sessionID   string
	baseContext map[string]any
	breadcrumbs []Breadcrumb
	device      map[string]any
}

// Builder turns capture requests into canonical envelopes.
type Builder struct {
	cfg      BuilderConfig
	scrubber *Scrubber
}

// NewBuilder creates a builder. Zero config values fall back to defaults.
func NewBuilder(cfg BuilderConfig, scrubber *Scrubber) *Builder {
	if cfg.DefaultSource == "" {
		cfg.DefaultSource = SourceWeb
	}
	if cfg.MaxMessageLen <= 0 {
		cfg.MaxMessageLen = DefaultMaxMessageLen
	}
	if scrubber == nil {
		scrubber = NewScrubber(DefaultScrubberConfig())
	}
	return &Builder{cfg: cfg, scrubber: scrubber}
}

// Build normalizes a capture request, or returns nil if the message is empty
// after trimming and scrubbing. Free text is scrubbed before clamping so a
// secret never leaks across a truncation boundary.
func (b *Builder) Build(req CaptureRequest, d buildDefaults) *Envelope {
	msg := b.scrubber.String(strings.TrimSpace(req.Message))
	if msg == "" {
		return nil
	}
	if len(msg) > b.cfg.MaxMessageLen {
		msg = msg[:b.cfg.MaxMessageLen]
	}

	now := d.now
	if now.IsZero() {
		now = time.Now()
	}
	ts := req.Timestamp
	if ts.IsZero() || ts.After(now) {
		ts = now
	}

	var errInfo *ErrorInfo
	if req.Error != nil {
		errInfo = &ErrorInfo{
			Code:   req.Error.Code,
			Name:   req.Error.Name,
			Detail: b.scrubber.String(req.Error.Detail),
		}
	}

	e := &Envelope{
		EventID:     uuid.NewString(),
		Source:      ParseSource(req.Source, b.cfg.DefaultSource),
		EventType:   ParseEventType(req.EventType),
		Level:       ParseLevel(req.Level),
		Message:     msg,
		Fingerprint: req.Fingerprint,
		Route:       req.Route,
		Screen:      req.Screen,
		Role:        req.Role,
		Context:     b.scrubber.Map(mergeShallow(d.baseContext, req.Context)),
		Extras:      b.scrubber.Map(req.Extras),
		Device:      b.scrubber.Map(mergeShallow(d.device, req.Device)),
		UserRef:     b.scrubber.Map(req.UserRef),
		Tags:        b.scrubber.Map(req.Tags),
		Error:       errInfo,
		Release:     b.cfg.Release,
		Breadcrumbs: d.breadcrumbs,
		RequestID:   req.RequestID,
		TraceID:     req.TraceID,
		SessionID:   d.sessionID,
		Timestamp:   ts,
		CreatedAt:   now,
	}
	e.Fingerprint = Fingerprint(e)
	return e
}

// mergeShallow overlays b on top of a without mutating either.
func mergeShallow(a, b map[string]any) map[string]any {
	if a == nil && b == nil {
		return nil
	}
	out := make(map[string]any, len(a)+len(b))
	for k, v := range a {
		out[k] = v
	}
	for k, v := range b {
		out[k] = v
	}
	return out
}
