// runtime.go holds the local policy state machine: budgets, suppression
// windows, cooldowns, and the single-flight action guard.

package policy

import (
	"sync"
	"time"
)

// Config controls the budgets and windows of the local runtime.
type Config struct {
	// LogoutCooldown spaces forced sign-outs per error code (default: 60s).
	LogoutCooldown time.Duration `yaml:"logout_cooldown"`

	// ModalWindow suppresses repeat modals per decision key (default: 60s).
	ModalWindow time.Duration `yaml:"modal_window"`

	// RetryWindow bounds the retry budget period (default: 60s).
	RetryWindow time.Duration `yaml:"retry_window"`

	// RetryBudget is the max retry attempts per key per window (default: 2).
	RetryBudget int `yaml:"retry_budget"`

	// BackoffStep scales the per-attempt backoff (default: 800ms).
	BackoffStep time.Duration `yaml:"backoff_step"`
}

// DefaultConfig returns production defaults.
func DefaultConfig() Config {
	return Config{
		LogoutCooldown: time.Minute,
		ModalWindow:    time.Minute,
		RetryWindow:    time.Minute,
		RetryBudget:    2,
		BackoffStep:    800 * time.Millisecond,
	}
}

// DegradeReauthSensitive forces re-authentication of sensitive actions only,
// not a full logout.
const DegradeReauthSensitive = "reauth_sensitive"

type retryBudget struct {
	count       int
	windowStart time.Time
}

// Runtime computes local policy decisions. All state is per-instance and
// process-lifetime; it is rebuilt empty on start and is never authoritative
// truth, only the safe default when the policy endpoint is unreachable.
//
// All methods are safe for concurrent use.
type Runtime struct {
	cfg Config
	now func() time.Time

	mu         sync.Mutex
	retries    map[string]*retryBudget
	modalShown map[string]time.Time
	logoutAt   map[string]time.Time
	flights    map[string]bool
}

// NewRuntime creates a runtime. Zero config values fall back to defaults.
func NewRuntime(cfg Config) *Runtime {
	def := DefaultConfig()
	if cfg.LogoutCooldown <= 0 {
		cfg.LogoutCooldown = def.LogoutCooldown
	}
	if cfg.ModalWindow <= 0 {
		cfg.ModalWindow = def.ModalWindow
	}
	if cfg.RetryWindow <= 0 {
		cfg.RetryWindow = def.RetryWindow
	}
	if cfg.RetryBudget <= 0 {
		cfg.RetryBudget = def.RetryBudget
	}
	if cfg.BackoffStep <= 0 {
		cfg.BackoffStep = def.BackoffStep
	}
	return &Runtime{
		cfg:        cfg,
		now:        time.Now,
		retries:    make(map[string]*retryBudget),
		modalShown: make(map[string]time.Time),
		logoutAt:   make(map[string]time.Time),
		flights:    make(map[string]bool),
	}
}

// DecideLocal computes the local decision for one error occurrence.
// Calling it consumes budget: a transient call spends a retry attempt, an
// authoritative call may claim the logout cooldown and the modal window.
func (r *Runtime) DecideLocal(key Key) Decision {
	r.mu.Lock()
	defer r.mu.Unlock()

	switch Classify(key.Code) {
	case ClassAuthoritativeLogout:
		return r.decideAuthoritative(key)
	case ClassTransient:
		return r.decideTransient(key)
	default:
		// Observe but do not interrupt.
		return Decision{Auth: AuthDecision{SignOut: SignOutNone}}
	}
}

func (r *Runtime) decideAuthoritative(key Key) Decision {
	now := r.now()

	// At most one forced sign-out per error code per cooldown window.
	// The cooldown is keyed by code only, across routes.
	signOut := SignOutNone
	if onceEvery(r.logoutAt, key.Code, r.cfg.LogoutCooldown, now) {
		signOut = SignOutLocal
	}

	show := onceEvery(r.modalShown, key.String(), r.cfg.ModalWindow, now)

	return Decision{
		UI: UIDecision{
			Type:       "modal",
			Severity:   "critical",
			MessageKey: "errors." + key.Code,
			Show:       show,
		},
		Auth:  AuthDecision{SignOut: signOut, Authoritative: true},
		Retry: RetryDecision{Allowed: false},
	}
}

func (r *Runtime) decideTransient(key Key) Decision {
	now := r.now()

	b := r.retries[key.String()]
	if b == nil || now.Sub(b.windowStart) > r.cfg.RetryWindow {
		b = &retryBudget{windowStart: now}
		r.retries[key.String()] = b
	}
	b.count++

	if b.count <= r.cfg.RetryBudget {
		return Decision{
			UI:    UIDecision{Type: "modal", Severity: "warning", MessageKey: "errors.transient"},
			Auth:  AuthDecision{SignOut: SignOutNone},
			Retry: RetryDecision{Allowed: true, BackoffMS: int64(b.count) * r.cfg.BackoffStep.Milliseconds()},
		}
	}

	// Budget exhausted: refuse retry and degrade sensitive actions to
	// re-authentication instead of forcing a logout.
	show := onceEvery(r.modalShown, key.String(), r.cfg.ModalWindow, now)
	return Decision{
		UI: UIDecision{
			Type:       "modal",
			Severity:   "warning",
			MessageKey: "errors.transient_exhausted",
			Show:       show,
		},
		Auth:  AuthDecision{SignOut: SignOutNone},
		Retry: RetryDecision{Allowed: false},
		UAM:   UAMDecision{DegradeTo: DegradeReauthSensitive, SensitiveOnly: true},
	}
}

// BeginFlight claims the single-flight lock for an action key so only one
// concrete UX action (e.g. one logout sequence) runs at a time. Returns
// false if the action is already in flight. A successful BeginFlight must
// always be paired with an EndFlight.
func (r *Runtime) BeginFlight(action string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.flights[action] {
		return false
	}
	r.flights[action] = true
	return true
}

// EndFlight releases the single-flight lock for an action key.
func (r *Runtime) EndFlight(action string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.flights, action)
}

// onceEvery claims the window for key: it returns true and records now if
// the last claim is older than the window, false otherwise.
func onceEvery(m map[string]time.Time, key string, window time.Duration, now time.Time) bool {
	if last, ok := m[key]; ok && now.Sub(last) < window {
		return false
	}
	m[key] = now
	return true
}
