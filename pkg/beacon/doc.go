// Package beacon provides the client-side observability pipeline for the
// loyalty application: it turns raw runtime signals into rate-limited,
// deduplicated, scrubbed telemetry batches and ships them to the ingestion
// backend.
//
// # Core Components
//
// The package is organized around these concepts:
//
//   - Envelope: the canonical, size-bounded telemetry record
//   - Builder: normalizes loose capture requests into envelopes
//   - Scrubber: rule-driven redaction of secrets and PII
//   - Limiter / Deduper: sampling, per-minute quotas, duplicate suppression
//   - Queue: durable FIFO buffer with at-least-once batch delivery
//   - Client: the facade composing all of the above
//
// The adaptive error-policy runtime lives in the policy and report
// subpackages; pluggable persistence and transports live under stores/ and
// invokers/.
//
// # Quick Start
//
//	client, err := beacon.NewClient(cfg, httprpc.New(endpoint, token),
//	    beacon.WithStore(memory.New()),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer client.Shutdown(context.Background())
//
//	client.AddBreadcrumb(beacon.Breadcrumb{Type: "ui", Message: "opened rewards tab"})
//	client.Track(ctx, beacon.CaptureRequest{Level: "info", Message: "referral code applied"})
//
// # Design Principles
//
//   - Telemetry never crashes the host: nothing in this package panics or
//     returns an error to application code after construction
//   - Scrub first, clamp second: a secret never leaks across a truncation
//     boundary
//   - Gated rejections are silent and indistinguishable from delivery, so
//     callers cannot couple behavior to telemetry outcomes
//   - All state lives on constructed instances; two clients share nothing
package beacon
