package policy

import "testing"

func localTransientExhausted() Decision {
	return Decision{
		UI:    UIDecision{Type: "modal", Severity: "warning", MessageKey: "errors.transient_exhausted", Show: true},
		Auth:  AuthDecision{SignOut: SignOutNone},
		Retry: RetryDecision{Allowed: false},
		UAM:   UAMDecision{DegradeTo: DegradeReauthSensitive, SensitiveOnly: true},
	}
}

func TestMerge_NilRemoteKeepsLocal(t *testing.T) {
	local := localTransientExhausted()
	if got := Merge(local, nil); got != local {
		t.Errorf("Merge(local, nil) = %+v, want local unchanged", got)
	}
}

func TestMerge_RemoteCannotGrantRetry(t *testing.T) {
	local := localTransientExhausted()
	remote := &RemoteAction{Retry: &RetryDecision{Allowed: true, BackoffMS: 100}}

	got := Merge(local, remote)
	if got.Retry.Allowed || got.Retry.BackoffMS != 0 {
		t.Errorf("retry = %+v, remote must not loosen a local refusal", got.Retry)
	}
}

func TestMerge_RemoteRetryWinsWhenLocalAllows(t *testing.T) {
	local := Decision{Retry: RetryDecision{Allowed: true, BackoffMS: 800}}
	remote := &RemoteAction{Retry: &RetryDecision{Allowed: true, BackoffMS: 3000}}

	got := Merge(local, remote)
	if !got.Retry.Allowed || got.Retry.BackoffMS != 3000 {
		t.Errorf("retry = %+v, want the remote schedule", got.Retry)
	}
}

func TestMerge_ShowIsAlwaysLocal(t *testing.T) {
	local := Decision{UI: UIDecision{Type: "modal", Severity: "warning", Show: false}}
	remote := &RemoteAction{UI: &UIDecision{Type: "banner", Severity: "critical", MessageKey: "errors.custom", Show: true}}

	got := Merge(local, remote)
	if got.UI.Show {
		t.Error("remote must not override the suppression-window verdict")
	}
	if got.UI.Type != "banner" || got.UI.Severity != "critical" || got.UI.MessageKey != "errors.custom" {
		t.Errorf("UI = %+v, presentation fields should take the remote values", got.UI)
	}
}

func TestMerge_RemoteCannotGrantSignOut(t *testing.T) {
	local := Decision{Auth: AuthDecision{SignOut: SignOutNone}}
	remote := &RemoteAction{Auth: &AuthDecision{SignOut: SignOutLocal}}

	if got := Merge(local, remote); got.Auth.SignOut != SignOutNone {
		t.Errorf("SignOut = %q, remote must not force a sign-out", got.Auth.SignOut)
	}
}

func TestMerge_AuthoritativeLocalIsNeverDowngraded(t *testing.T) {
	local := Decision{Auth: AuthDecision{SignOut: SignOutLocal, Authoritative: true}}
	remote := &RemoteAction{Auth: &AuthDecision{SignOut: SignOutNone}}

	if got := Merge(local, remote); got.Auth.SignOut != SignOutLocal {
		t.Errorf("SignOut = %q, authoritative local must stand", got.Auth.SignOut)
	}
}

func TestMerge_RemoteMayRestrictNonAuthoritativeSignOut(t *testing.T) {
	local := Decision{Auth: AuthDecision{SignOut: SignOutLocal, Authoritative: false}}
	remote := &RemoteAction{Auth: &AuthDecision{SignOut: SignOutNone}}

	if got := Merge(local, remote); got.Auth.SignOut != SignOutNone {
		t.Errorf("SignOut = %q, remote may restrict a tentative sign-out", got.Auth.SignOut)
	}
}

func TestMerge_RemoteUAMOverrides(t *testing.T) {
	local := localTransientExhausted()
	remote := &RemoteAction{UAM: &UAMDecision{DegradeTo: "read_only", SensitiveOnly: false}}

	got := Merge(local, remote)
	if got.UAM.DegradeTo != "read_only" || got.UAM.SensitiveOnly {
		t.Errorf("UAM = %+v, want the remote verdict", got.UAM)
	}
}
