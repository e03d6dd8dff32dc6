// decision.go defines the policy decision types returned to the UI layer.

package policy

// SignOut names the auth action a decision permits.
type SignOut string

const (
	// SignOutNone permits no auth action.
	SignOutNone SignOut = "none"

	// SignOutLocal forces a local sign-out.
	SignOutLocal SignOut = "local"
)

// UIDecision tells the UI layer whether and how to surface the error.
type UIDecision struct {
	// Type is the surface kind, e.g. "modal". Empty means no surface.
	Type string `json:"type,omitempty"`

	// Severity is the visual severity: "critical" or "warning".
	Severity string `json:"severity,omitempty"`

	// MessageKey selects the localized copy to render.
	MessageKey string `json:"message_key,omitempty"`

	// Show is the suppression-window verdict. Only the local runtime
	// holds the window state, so merges always take this from local.
	Show bool `json:"show"`
}

// AuthDecision tells the UI layer what auth action is permitted.
type AuthDecision struct {
	SignOut SignOut `json:"sign_out"`

	// Authoritative marks a decision that a remote policy response must
	// never downgrade.
	Authoritative bool `json:"authoritative"`
}

// RetryDecision tells the caller whether the failed operation may retry.
type RetryDecision struct {
	Allowed   bool  `json:"allowed"`
	BackoffMS int64 `json:"backoff_ms"`
}

// UAMDecision carries the degraded-access verdict: which re-authentication
// target to force, and whether it applies to sensitive actions only.
type UAMDecision struct {
	// DegradeTo names the degradation target, e.g. "reauth_sensitive".
	// Empty means no degradation.
	DegradeTo string `json:"degrade_to,omitempty"`

	SensitiveOnly bool `json:"sensitive_only"`
}

// Decision is the complete UX instruction computed for a classified error.
type Decision struct {
	UI    UIDecision    `json:"ui"`
	Auth  AuthDecision  `json:"auth"`
	Retry RetryDecision `json:"retry"`
	UAM   UAMDecision   `json:"uam"`
}

// RemoteAction is the partial decision returned by the policy endpoint.
// Nil groups mean "no remote opinion"; Merge applies the rest field group by
// field group under the conservative rules.
type RemoteAction struct {
	UI    *UIDecision    `json:"ui,omitempty"`
	Auth  *AuthDecision  `json:"auth,omitempty"`
	Retry *RetryDecision `json:"retry,omitempty"`
	UAM   *UAMDecision   `json:"uam,omitempty"`
}

// Key identifies the budget/cooldown scope of a decision.
type Key struct {
	Code        string
	Fingerprint string
	Route       string
}

// String renders the composite key used for retry budgets and modal windows.
func (k Key) String() string {
	return k.Code + "|" + k.Fingerprint + "|" + k.Route
}
