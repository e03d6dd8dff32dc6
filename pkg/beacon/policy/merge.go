// merge.go combines the local decision with a remote policy response.

package policy

// Merge applies a remote partial decision over the local one, field group by
// field group, under conservative rules: a remote outage or a garbled remote
// response can restrict further but can never loosen what the local
// classifier decided.
//
//   - ui.show is always local: only the local runtime holds the
//     suppression-window state
//   - auth: local sign_out=none stays none, and an authoritative local
//     decision is never downgraded
//   - retry: local allowed=false forces {allowed:false, backoff_ms:0}
//   - uam: remote overrides when present
func Merge(local Decision, remote *RemoteAction) Decision {
	merged := local
	if remote == nil {
		return merged
	}

	if remote.UI != nil {
		if remote.UI.Type != "" {
			merged.UI.Type = remote.UI.Type
		}
		if remote.UI.Severity != "" {
			merged.UI.Severity = remote.UI.Severity
		}
		if remote.UI.MessageKey != "" {
			merged.UI.MessageKey = remote.UI.MessageKey
		}
		merged.UI.Show = local.UI.Show
	}

	if remote.Auth != nil {
		// Remote can never grant a sign-out the local classifier did
		// not also grant, and never downgrades an authoritative one.
		if !local.Auth.Authoritative && local.Auth.SignOut != SignOutNone {
			merged.Auth.SignOut = remote.Auth.SignOut
		}
	}

	if remote.Retry != nil {
		if local.Retry.Allowed {
			merged.Retry = *remote.Retry
		} else {
			merged.Retry = RetryDecision{Allowed: false, BackoffMS: 0}
		}
	}

	if remote.UAM != nil {
		merged.UAM = *remote.UAM
	}

	return merged
}
