// Package policy decides, locally and safely, how the user interface should
// react to a classified error: silently retry, show a warning, or force a
// logout.
//
// The runtime is a pure-local state machine over per-key budgets,
// suppression windows and cooldowns. It needs no network to produce a usable
// decision, which is exactly the point: when the policy endpoint is
// unreachable, the local decision is the safe default, and Merge guarantees
// a remote response can only ever restrict it further.
package policy
