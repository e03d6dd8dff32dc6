// invoke.go defines the remote collaborator boundary.

package beacon

import (
	"context"
	"encoding/json"
)

// Remote method names understood by the backend.
const (
	// MethodIngest accepts a batch of event envelopes.
	MethodIngest = "ingest_events"

	// MethodResolvePolicy classifies an error and returns a partial
	// policy decision.
	MethodResolvePolicy = "resolve_policy"
)

// Result codes produced on this side of the boundary.
const (
	// CodeOffline is reported when a flush is skipped because the
	// environment says connectivity is down.
	CodeOffline = "offline"

	// CodePolicyUnavailable is reported when the policy endpoint cannot
	// be reached; callers treat it as a transient classification.
	CodePolicyUnavailable = "policy_unavailable"
)

// Result is the uniform outcome of a remote invocation. Failures are values,
// never panics: an Invoker must not let an error escape past this boundary.
type Result struct {
	// OK reports whether the call succeeded.
	OK bool

	// Data is the raw JSON response body on success.
	Data json.RawMessage

	// Code is a stable machine classification of the failure.
	Code string

	// Err carries the underlying cause for diagnostics. Never shown to
	// end users.
	Err error
}

// Invoker is the single abstraction through which the SDK reaches the
// backend: a named method plus a JSON-serializable body. The SDK depends on
// this interface but does not choose the transport.
//
// Implementations must be safe for concurrent use.
type Invoker interface {
	Invoke(ctx context.Context, name string, body any) Result
}

// IngestRequest is the body sent to MethodIngest.
type IngestRequest struct {
	TenantHint string      `json:"tenant_hint,omitempty"`
	AppID      string      `json:"app_id"`
	Events     []*Envelope `json:"events"`
}

// PolicyQuery is the body sent to MethodResolvePolicy.
type PolicyQuery struct {
	TenantHint  string         `json:"tenant_hint,omitempty"`
	AppID       string         `json:"app_id"`
	ErrorCode   string         `json:"error_code"`
	Fingerprint string         `json:"fingerprint,omitempty"`
	Route       string         `json:"route,omitempty"`
	Role        string         `json:"role,omitempty"`
	Context     map[string]any `json:"context,omitempty"`
}

// PolicyResponse is the decoded policy endpoint reply. Action stays raw so
// the policy layer owns its schema; this package only carries it.
type PolicyResponse struct {
	OK     bool            `json:"ok"`
	Code   string          `json:"code,omitempty"`
	Action json.RawMessage `json:"action,omitempty"`
}
