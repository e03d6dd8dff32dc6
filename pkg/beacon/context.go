// context.go propagates routes and session ids through context.Context.

package beacon

import "context"

type routeKey struct{}
type sessionIDKey struct{}

// WithRoute returns a context carrying the active route. Track uses it when
// the capture request does not name one.
func WithRoute(ctx context.Context, route string) context.Context {
	return context.WithValue(ctx, routeKey{}, route)
}

// RouteFromContext extracts the route from context. Returns empty string and
// false if not set.
func RouteFromContext(ctx context.Context) (string, bool) {
	v, ok := ctx.Value(routeKey{}).(string)
	return v, ok && v != ""
}

// WithSessionID returns a context carrying a session id, overriding the
// client's own session for captures made with this context.
func WithSessionID(ctx context.Context, sessionID string) context.Context {
	return context.WithValue(ctx, sessionIDKey{}, sessionID)
}

// SessionIDFromContext extracts the session id from context. Returns empty
// string and false if not set.
func SessionIDFromContext(ctx context.Context) (string, bool) {
	v, ok := ctx.Value(sessionIDKey{}).(string)
	return v, ok && v != ""
}

// SessionProvider supplies a session id on demand, consulted after the call
// argument and the request context but before the process session id.
type SessionProvider func() string
