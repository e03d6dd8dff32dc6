// client.go composes the pipeline into the observability client facade.

package beacon

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// drainDelay paces the follow-up flush scheduled when a successful delivery
// leaves envelopes behind.
const drainDelay = time.Second

// Option configures a Client.
type Option func(*Client)

// WithStore enables best-effort persistence of the queue and session id.
func WithStore(store Store) Option {
	return func(c *Client) { c.store = store }
}

// WithLogger sets the internal diagnostic logger. The SDK never logs above
// debug for its own failures; the default is a no-op logger.
func WithLogger(logger *zap.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithScrubberConfig replaces the default redaction rule set.
func WithScrubberConfig(cfg ScrubberConfig) Option {
	return func(c *Client) { c.scrubber = NewScrubber(cfg) }
}

// WithSessionProvider sets the session id callback, consulted after the call
// argument and request context but before the process session id.
func WithSessionProvider(fn SessionProvider) Option {
	return func(c *Client) { c.sessionFn = fn }
}

// TrackResult reports what happened to one capture request. Rejections are
// silent by design; the result exists for diagnostics and tests, and a
// caller must never branch user-visible behavior on it.
type TrackResult struct {
	Accepted    bool
	Reason      DropReason
	EventID     string
	Fingerprint string
	QueueSize   int
}

// FlushStatus classifies the outcome of a Flush call.
type FlushStatus string

const (
	// FlushDelivered means a batch was removed and delivered.
	FlushDelivered FlushStatus = "delivered"

	// FlushEmpty means there was nothing to deliver.
	FlushEmpty FlushStatus = "empty"

	// FlushOffline means connectivity is down and the flush was a no-op.
	FlushOffline FlushStatus = "offline"

	// FlushBusy means another flush was already in flight.
	FlushBusy FlushStatus = "busy"

	// FlushFailed means delivery failed and the batch was requeued.
	FlushFailed FlushStatus = "failed"
)

// FlushResult reports the outcome of one Flush call.
type FlushResult struct {
	Status    FlushStatus
	Delivered int
	Remaining int
}

// State is the diagnostic snapshot returned by GetState.
type State struct {
	QueueSize int
	SessionID string
	Context   map[string]any
	Enabled   bool
	Online    bool
}

// Client is the observability facade: it normalizes, scrubs, gates, buffers
// and ships telemetry, and answers policy lookups through the same invoker.
//
// All state is owned by the instance; two clients share nothing, so tests
// and multi-tenant processes can run several side by side.
type Client struct {
	cfg     Config
	invoker Invoker
	store   Store
	logger  *zap.Logger

	scrubber *Scrubber
	builder  *Builder
	limiter  *Limiter
	deduper  *Deduper
	crumbs   *BreadcrumbRecorder
	queue    *Queue

	sessionFn SessionProvider
	sessionID string
	startTime time.Time
	now       func() time.Time

	ctxMu      sync.Mutex
	runtimeCtx map[string]any

	enabled  atomic.Bool
	online   atomic.Bool
	flushing atomic.Bool

	timerMu sync.Mutex
	timer   *time.Timer
}

// NewClient creates a client. A nil invoker is construction-time
// misconfiguration and fails immediately; everything else degrades at
// runtime instead of failing.
func NewClient(cfg Config, invoker Invoker, opts ...Option) (*Client, error) {
	if invoker == nil {
		return nil, fmt.Errorf("beacon: invoker is required")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if cfg.MaxBatch <= 0 {
		cfg.MaxBatch = DefaultMaxBatch
	}
	if cfg.FlushInterval <= 0 {
		cfg.FlushInterval = DefaultFlushInterval
	}

	c := &Client{
		cfg:        cfg,
		invoker:    invoker,
		logger:     zap.NewNop(),
		startTime:  time.Now(),
		now:        time.Now,
		runtimeCtx: make(map[string]any),
	}
	for _, opt := range opts {
		opt(c)
	}

	if c.scrubber == nil {
		c.scrubber = NewScrubber(DefaultScrubberConfig())
	}
	c.builder = NewBuilder(BuilderConfig{
		DefaultSource: ParseSource(cfg.DefaultSource, SourceWeb),
		Release:       cfg.Release,
		MaxMessageLen: cfg.MaxMessageLen,
	}, c.scrubber)
	c.limiter = NewLimiter(cfg.Limits)
	c.deduper = NewDeduper(cfg.DedupeWindow)
	c.crumbs = NewBreadcrumbRecorder(cfg.BreadcrumbCapacity, c.scrubber)
	c.queue = NewQueue(cfg.QueueCapacity, c.store, c.logger)

	ctx := context.Background()
	c.queue.Load(ctx)
	c.sessionID = c.restoreSession(ctx)

	c.enabled.Store(true)
	c.online.Store(true)
	return c, nil
}

// restoreSession loads the persisted session id for this runtime session,
// minting and persisting a fresh one when absent. Best-effort on both sides.
func (c *Client) restoreSession(ctx context.Context) string {
	if c.store != nil {
		if raw, ok, err := c.store.Get(ctx, SessionStoreKey); err == nil && ok && len(raw) > 0 {
			return string(raw)
		}
	}
	id := uuid.NewString()
	if c.store != nil {
		if err := c.store.Set(ctx, SessionStoreKey, []byte(id)); err != nil {
			c.logger.Debug("session persist failed", zap.Error(err))
		}
	}
	return id
}

// Track runs the full pipeline for one capture request: normalize, scrub,
// sample, rate-limit, dedupe, enqueue, and maybe flush. It never returns an
// error and never panics; telemetry must not crash the host application.
func (c *Client) Track(ctx context.Context, req CaptureRequest) TrackResult {
	if !c.enabled.Load() {
		return TrackResult{Reason: DropDisabled, QueueSize: c.queue.Len()}
	}

	if req.Route == "" {
		if route, ok := RouteFromContext(ctx); ok {
			req.Route = route
		}
	}

	env := c.builder.Build(req, buildDefaults{
		now:         c.now(),
		sessionID:   c.resolveSession(ctx, req.SessionID),
		baseContext: c.contextSnapshot(),
		breadcrumbs: c.crumbs.Snapshot(),
		device:      CaptureRuntimeState(c.startTime),
	})
	if env == nil || !env.Valid() {
		return TrackResult{Reason: DropInvalid, QueueSize: c.queue.Len()}
	}

	// Gated rejections still report the fingerprint so the policy layer
	// can key decisions for events it never gets to deliver.
	if ok, reason := c.limiter.Admit(env); !ok {
		return TrackResult{Reason: reason, Fingerprint: env.Fingerprint, QueueSize: c.queue.Len()}
	}
	if !c.deduper.Admit(env.Fingerprint) {
		return TrackResult{Reason: DropDuplicate, Fingerprint: env.Fingerprint, QueueSize: c.queue.Len()}
	}

	c.queue.Enqueue(ctx, env)

	// High-severity events are buffered first, then flushed immediately,
	// so a failed immediate flush still leaves them durably queued.
	if env.Level.IsHighSeverity() || c.queue.Len() >= c.cfg.MaxBatch {
		c.Flush(ctx)
	} else {
		c.scheduleFlush(c.cfg.FlushInterval)
	}

	return TrackResult{
		Accepted:    true,
		EventID:     env.EventID,
		Fingerprint: env.Fingerprint,
		QueueSize:   c.queue.Len(),
	}
}

// CaptureError is a convenience wrapper that fills a capture request from a
// Go error before tracking it.
func (c *Client) CaptureError(ctx context.Context, err error, req CaptureRequest) TrackResult {
	if err == nil {
		return TrackResult{Reason: DropInvalid, QueueSize: c.queue.Len()}
	}
	if req.Message == "" {
		req.Message = err.Error()
	}
	if req.EventType == "" {
		req.EventType = string(EventError)
	}
	if req.Level == "" {
		req.Level = string(LevelError)
	}
	if req.Error == nil {
		req.Error = &ErrorInfo{Name: fmt.Sprintf("%T", err), Detail: err.Error()}
	}
	return c.Track(ctx, req)
}

// AddBreadcrumb records a scrubbed breadcrumb for attachment to later events.
func (c *Client) AddBreadcrumb(b Breadcrumb) {
	c.crumbs.Add(b)
}

// Flush delivers up to MaxBatch envelopes from the head of the queue.
// It is idempotent and re-entrant-safe: a concurrent call while one flush is
// in flight reports FlushBusy without double-sending, and a failed delivery
// reinserts the batch at the head so nothing is lost or reordered.
func (c *Client) Flush(ctx context.Context) FlushResult {
	if !c.flushing.CompareAndSwap(false, true) {
		return FlushResult{Status: FlushBusy, Remaining: c.queue.Len()}
	}
	defer c.flushing.Store(false)

	if !c.online.Load() {
		return FlushResult{Status: FlushOffline, Remaining: c.queue.Len()}
	}

	batch := c.queue.RemoveBatch(ctx, c.cfg.MaxBatch)
	if len(batch) == 0 {
		return FlushResult{Status: FlushEmpty}
	}

	res := c.invoker.Invoke(ctx, MethodIngest, IngestRequest{
		TenantHint: c.cfg.TenantHint,
		AppID:      c.cfg.AppID,
		Events:     batch,
	})
	if !res.OK {
		c.queue.PushFront(ctx, batch)
		c.logger.Debug("ingest batch failed, requeued",
			zap.Int("batch", len(batch)), zap.String("code", res.Code), zap.Error(res.Err))
		return FlushResult{Status: FlushFailed, Remaining: c.queue.Len()}
	}

	remaining := c.queue.Len()
	if remaining > 0 {
		c.scheduleFlush(drainDelay)
	}
	return FlushResult{Status: FlushDelivered, Delivered: len(batch), Remaining: remaining}
}

// scheduleFlush arms the single flush timer. Scheduling while a timer is
// already pending is a documented no-op, not a race.
func (c *Client) scheduleFlush(d time.Duration) {
	c.timerMu.Lock()
	defer c.timerMu.Unlock()
	if c.timer != nil {
		return
	}
	c.timer = time.AfterFunc(d, func() {
		c.timerMu.Lock()
		c.timer = nil
		c.timerMu.Unlock()
		c.Flush(context.Background())
	})
}

// SetContext shallow-merges key/value pairs into the runtime context
// consulted by the envelope builder.
func (c *Client) SetContext(kv map[string]any) {
	c.ctxMu.Lock()
	defer c.ctxMu.Unlock()
	for k, v := range kv {
		c.runtimeCtx[k] = v
	}
}

// SetEnabled is the global kill switch. When disabled, Track is a no-op.
func (c *Client) SetEnabled(enabled bool) {
	c.enabled.Store(enabled)
}

// SetOnline records the environment's connectivity. Transitioning back
// online triggers a flush of everything buffered while offline.
func (c *Client) SetOnline(online bool) {
	was := c.online.Swap(online)
	if online && !was {
		c.Flush(context.Background())
	}
}

// NotifyHidden signals that the app is going to background; the client makes
// a best-effort final flush before suspension.
func (c *Client) NotifyHidden(ctx context.Context) {
	c.Flush(ctx)
}

// FetchPolicy asks the policy endpoint to classify an error. Network failure
// is tolerated: the result is ok=false with CodePolicyUnavailable, never an
// error or a panic.
func (c *Client) FetchPolicy(ctx context.Context, q PolicyQuery) PolicyResponse {
	q.AppID = c.cfg.AppID
	q.TenantHint = c.cfg.TenantHint

	res := c.invoker.Invoke(ctx, MethodResolvePolicy, q)
	if !res.OK {
		code := res.Code
		if code == "" {
			code = CodePolicyUnavailable
		}
		return PolicyResponse{OK: false, Code: code}
	}

	var resp PolicyResponse
	if err := json.Unmarshal(res.Data, &resp); err != nil {
		c.logger.Debug("policy response decode failed", zap.Error(err))
		return PolicyResponse{OK: false, Code: CodePolicyUnavailable}
	}
	return resp
}

// GetState returns a diagnostic snapshot of the client.
func (c *Client) GetState() State {
	return State{
		QueueSize: c.queue.Len(),
		SessionID: c.sessionID,
		Context:   c.contextSnapshot(),
		Enabled:   c.enabled.Load(),
		Online:    c.online.Load(),
	}
}

// SessionID returns the process session id.
func (c *Client) SessionID() string {
	return c.sessionID
}

// Shutdown clears any pending flush timer and makes a final delivery
// attempt. The client must not be used afterwards.
func (c *Client) Shutdown(ctx context.Context) {
	c.timerMu.Lock()
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
	c.timerMu.Unlock()

	c.Flush(ctx)
}

// resolveSession applies the session resolution order: explicit call
// argument, request context, session provider callback, process session id.
func (c *Client) resolveSession(ctx context.Context, explicit string) string {
	if explicit != "" {
		return explicit
	}
	if id, ok := SessionIDFromContext(ctx); ok {
		return id
	}
	if c.sessionFn != nil {
		if id := c.sessionFn(); id != "" {
			return id
		}
	}
	return c.sessionID
}

func (c *Client) contextSnapshot() map[string]any {
	c.ctxMu.Lock()
	defer c.ctxMu.Unlock()
	if len(c.runtimeCtx) == 0 {
		return nil
	}
	out := make(map[string]any, len(c.runtimeCtx))
	for k, v := range c.runtimeCtx {
		out[k] = v
	}
	return out
}
