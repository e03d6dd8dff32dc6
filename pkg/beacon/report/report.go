// report.go orchestrates error capture, policy evaluation and publication.

package report

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/rewardly/observe-go/pkg/beacon"
	"github.com/rewardly/observe-go/pkg/beacon/policy"
)

// Event is the immutable record published on the bus for every reported
// error. Multiple independent UI subscribers react to it without being
// coupled to the call site.
type Event struct {
	// Type is always "error".
	Type string `json:"type"`

	At          time.Time      `json:"at"`
	Code        string         `json:"code"`
	Route       string         `json:"route,omitempty"`
	Fingerprint string         `json:"fingerprint,omitempty"`
	Message     string         `json:"message,omitempty"`
	Context     map[string]any `json:"context,omitempty"`

	// Policy is the merged local+remote decision.
	Policy policy.Decision `json:"policy"`

	// Captured reports whether the telemetry pipeline accepted the
	// underlying envelope. A gated rejection still produces a decision.
	Captured bool `json:"captured"`
}

// ErrorReport is the input to Report.
type ErrorReport struct {
	// Code is the machine classification driving the policy decision.
	Code string

	// Message is free text for the telemetry envelope. When empty and
	// Err is set, the error text is used.
	Message string

	Route  string
	Screen string
	Role   string

	// Fingerprint overrides the derived grouping key.
	Fingerprint string

	Context map[string]any

	// Err is the underlying Go error, if one exists.
	Err error
}

// ReporterOption configures a Reporter.
type ReporterOption func(*Reporter)

// WithBus sets the bus decisions are published on. The default is a fresh
// bus owned by the reporter.
func WithBus(bus *Bus) ReporterOption {
	return func(r *Reporter) {
		if bus != nil {
			r.bus = bus
		}
	}
}

// WithLogger sets the internal diagnostic logger.
func WithLogger(logger *zap.Logger) ReporterOption {
	return func(r *Reporter) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// Reporter is the error runtime facade: it captures the error through the
// observability client, evaluates local policy, fetches remote policy,
// merges the two conservatively, and publishes the result.
type Reporter struct {
	client  *beacon.Client
	runtime *policy.Runtime
	bus     *Bus
	logger  *zap.Logger
	now     func() time.Time
}

// NewReporter creates a reporter. Missing collaborators are construction-time
// misconfiguration and fail immediately.
func NewReporter(client *beacon.Client, runtime *policy.Runtime, opts ...ReporterOption) (*Reporter, error) {
	if client == nil {
		return nil, fmt.Errorf("report: client is required")
	}
	if runtime == nil {
		return nil, fmt.Errorf("report: policy runtime is required")
	}
	r := &Reporter{
		client:  client,
		runtime: runtime,
		bus:     NewBus(),
		logger:  zap.NewNop(),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r, nil
}

// Bus returns the bus this reporter publishes on.
func (r *Reporter) Bus() *Bus {
	return r.bus
}

// Runtime returns the policy runtime, for callers that need the
// single-flight guard around the UX actions a decision permits.
func (r *Reporter) Runtime() *policy.Runtime {
	return r.runtime
}

// Report runs the full error path: capture, local decision, remote decision,
// conservative merge, publication. It never returns an error; a broken
// backend degrades to the local-only decision.
func (r *Reporter) Report(ctx context.Context, rep ErrorReport) policy.Decision {
	message := rep.Message
	if message == "" && rep.Err != nil {
		message = rep.Err.Error()
	}

	req := beacon.CaptureRequest{
		EventType:   string(beacon.EventError),
		Level:       string(beacon.LevelError),
		Message:     message,
		Fingerprint: rep.Fingerprint,
		Route:       rep.Route,
		Screen:      rep.Screen,
		Role:        rep.Role,
		Context:     rep.Context,
		Error:       &beacon.ErrorInfo{Code: rep.Code},
	}
	if rep.Err != nil {
		req.Error.Name = fmt.Sprintf("%T", rep.Err)
		req.Error.Detail = rep.Err.Error()
	}
	captured := r.client.Track(ctx, req)

	fingerprint := rep.Fingerprint
	if fingerprint == "" {
		fingerprint = captured.Fingerprint
	}
	key := policy.Key{Code: rep.Code, Fingerprint: fingerprint, Route: rep.Route}

	// The remote lookup runs alongside the local decision; neither waits
	// on the other's outcome.
	remoteCh := make(chan *policy.RemoteAction, 1)
	go func() {
		remoteCh <- r.fetchRemote(ctx, key, rep)
	}()

	local := r.runtime.DecideLocal(key)
	merged := policy.Merge(local, <-remoteCh)

	event := Event{
		Type:        "error",
		At:          r.now(),
		Code:        rep.Code,
		Route:       rep.Route,
		Fingerprint: fingerprint,
		Message:     message,
		Context:     rep.Context,
		Policy:      merged,
		Captured:    captured.Accepted,
	}
	r.bus.Publish(event)

	return merged
}

// fetchRemote asks the policy endpoint for a partial decision. Every failure
// mode (unreachable endpoint, structured error, garbled action) resolves to
// nil, which Merge treats as "no remote opinion".
func (r *Reporter) fetchRemote(ctx context.Context, key policy.Key, rep ErrorReport) *policy.RemoteAction {
	resp := r.client.FetchPolicy(ctx, beacon.PolicyQuery{
		ErrorCode:   key.Code,
		Fingerprint: key.Fingerprint,
		Route:       key.Route,
		Role:        rep.Role,
		Context:     rep.Context,
	})
	if !resp.OK || len(resp.Action) == 0 {
		return nil
	}

	var action policy.RemoteAction
	if err := json.Unmarshal(resp.Action, &action); err != nil {
		r.logger.Debug("remote policy action garbled, ignoring", zap.Error(err))
		return nil
	}
	return &action
}
