// Package console provides an Invoker that logs invocations instead of
// shipping them. Useful for development and debugging.
package console

import (
	"context"
	"encoding/json"
	"strconv"

	"go.uber.org/zap"

	"github.com/rewardly/observe-go/pkg/beacon"
)

// InvokerOption configures the console invoker.
type InvokerOption func(*Invoker)

// WithVerbose logs full request bodies instead of a summary line.
func WithVerbose() InvokerOption {
	return func(i *Invoker) { i.verbose = true }
}

// Invoker logs every invocation and reports success. Policy lookups resolve
// to an empty ok response, so the local decision always stands.
type Invoker struct {
	logger  *zap.Logger
	verbose bool
}

// New creates a console invoker. A nil logger falls back to zap's
// development logger.
func New(logger *zap.Logger, opts ...InvokerOption) *Invoker {
	if logger == nil {
		logger, _ = zap.NewDevelopment()
	}
	inv := &Invoker{logger: logger}
	for _, opt := range opts {
		opt(inv)
	}
	return inv
}

// Invoke logs the call and succeeds.
func (i *Invoker) Invoke(ctx context.Context, name string, body any) beacon.Result {
	if i.verbose {
		raw, err := json.Marshal(body)
		if err != nil {
			return beacon.Result{Code: "encode_failed", Err: err}
		}
		i.logger.Info("invoke", zap.String("method", name), zap.ByteString("body", raw))
	} else {
		i.logger.Info("invoke", zap.String("method", name), zap.String("summary", summarize(name, body)))
	}

	return beacon.Result{OK: true, Data: json.RawMessage(`{"ok":true}`)}
}

func summarize(name string, body any) string {
	switch b := body.(type) {
	case beacon.IngestRequest:
		return "events=" + strconv.Itoa(len(b.Events))
	case beacon.PolicyQuery:
		return "code=" + b.ErrorCode
	default:
		return name
	}
}
