// classify.go sorts error codes into the three policy classes.

package policy

// Class is the policy classification of an error code.
type Class int

const (
	// ClassDefault covers unclassified or benign codes: observe but do
	// not interrupt.
	ClassDefault Class = iota

	// ClassAuthoritativeLogout covers token/session invalidation: the
	// session is gone and only a local sign-out is safe.
	ClassAuthoritativeLogout

	// ClassTransient covers reachability failures that a bounded retry
	// may resolve.
	ClassTransient
)

// The three sets are disjoint; a code appears in at most one.
var (
	authoritativeLogoutCodes = map[string]bool{
		"session_revoked": true,
		"session_invalid": true,
		"token_invalid":   true,
		"token_revoked":   true,
		"refresh_revoked": true,
	}

	transientCodes = map[string]bool{
		"network_error":       true,
		"fetch_failed":        true,
		"timeout":             true,
		"edge_unreachable":    true,
		"policy_unavailable":  true,
		"service_unavailable": true,
	}
)

// Classify returns the policy class for an error code.
func Classify(code string) Class {
	switch {
	case authoritativeLogoutCodes[code]:
		return ClassAuthoritativeLogout
	case transientCodes[code]:
		return ClassTransient
	default:
		return ClassDefault
	}
}
