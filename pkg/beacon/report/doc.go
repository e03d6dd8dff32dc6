// Package report is the error runtime facade. It ties the pieces together
// for application code: one Report call captures the error as telemetry,
// computes the local policy decision, fetches the remote one, merges them
// conservatively, and publishes the result on a bus that UI subscribers
// listen to.
//
// # Quick Start
//
//	client, _ := beacon.NewClient(cfg, invoker)
//	reporter, _ := report.NewReporter(client, policy.NewRuntime(policy.DefaultConfig()))
//
//	reporter.Bus().Subscribe(func(e report.Event) {
//	    // surface e.Policy.UI, honor e.Policy.Auth, schedule e.Policy.Retry
//	})
//
//	decision := reporter.Report(ctx, report.ErrorReport{
//	    Code: "network_error",
//	    Err:  err,
//	})
//
// Report never returns an error: a broken policy endpoint degrades to the
// local decision, and a gated telemetry capture still produces a decision.
package report
