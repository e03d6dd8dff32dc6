// Package httprpc implements the Invoker over an authenticated HTTP JSON
// endpoint: one POST per method name, bounded retries with exponential
// backoff for transport-level failures.
package httprpc

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v4"
	"go.uber.org/zap"

	"github.com/rewardly/observe-go/pkg/beacon"
)

// InvokerOption configures the invoker.
type InvokerOption func(*Invoker)

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(hc *http.Client) InvokerOption {
	return func(i *Invoker) {
		if hc != nil {
			i.hc = hc
		}
	}
}

// WithLogger sets the diagnostic logger.
func WithLogger(logger *zap.Logger) InvokerOption {
	return func(i *Invoker) {
		if logger != nil {
			i.logger = logger
		}
	}
}

// WithMaxElapsed bounds total retry time per invocation (default: 10s).
func WithMaxElapsed(d time.Duration) InvokerOption {
	return func(i *Invoker) {
		if d > 0 {
			i.maxElapsed = d
		}
	}
}

// errorBody is the structured error shape the backend returns alongside a
// non-2xx status.
type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Invoker calls `POST {base}/{name}` with a JSON body and a bearer token.
// Transport failures and 5xx responses are retried with exponential backoff;
// 4xx responses are terminal (retrying a rejected payload cannot help).
// Every failure mode resolves to a Result value; nothing escapes the
// boundary as a panic or raw error.
type Invoker struct {
	base       string
	token      string
	hc         *http.Client
	logger     *zap.Logger
	maxElapsed time.Duration
}

// New creates an invoker for the given base URL and bearer token.
func New(base, token string, opts ...InvokerOption) *Invoker {
	inv := &Invoker{
		base:       base,
		token:      token,
		hc:         &http.Client{Timeout: 15 * time.Second},
		logger:     zap.NewNop(),
		maxElapsed: 10 * time.Second,
	}
	for _, opt := range opts {
		opt(inv)
	}
	return inv
}

// Invoke posts the body to the named method and decodes the outcome.
func (i *Invoker) Invoke(ctx context.Context, name string, body any) beacon.Result {
	payload, err := json.Marshal(body)
	if err != nil {
		return beacon.Result{Code: "encode_failed", Err: err}
	}

	var result beacon.Result
	bo := backoff.WithContext(backoff.NewExponentialBackOff(
		backoff.WithMaxElapsedTime(i.maxElapsed),
	), ctx)

	err = backoff.Retry(func() error {
		result = i.post(ctx, name, payload)
		if result.OK {
			return nil
		}
		if result.Code == "network_error" || result.Code == "server_error" {
			return fmt.Errorf("retryable: %s", result.Code)
		}
		return backoff.Permanent(fmt.Errorf("terminal: %s", result.Code))
	}, bo)
	if err != nil && result.Code == "" {
		result = beacon.Result{Code: "network_error", Err: err}
	}
	return result
}

func (i *Invoker) post(ctx context.Context, name string, payload []byte) beacon.Result {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, i.base+"/"+name, bytes.NewReader(payload))
	if err != nil {
		return beacon.Result{Code: "network_error", Err: err}
	}
	req.Header.Set("Content-Type", "application/json")
	if i.token != "" {
		req.Header.Set("Authorization", "Bearer "+i.token)
	}

	resp, err := i.hc.Do(req)
	if err != nil {
		i.logger.Debug("invoke transport failure", zap.String("method", name), zap.Error(err))
		return beacon.Result{Code: "network_error", Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return beacon.Result{Code: "network_error", Err: err}
	}

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		return beacon.Result{OK: true, Data: raw}
	case resp.StatusCode >= 500:
		return beacon.Result{Code: "server_error", Err: fmt.Errorf("status %d", resp.StatusCode)}
	default:
		code := "request_rejected"
		var eb errorBody
		if json.Unmarshal(raw, &eb) == nil && eb.Code != "" {
			code = eb.Code
		}
		return beacon.Result{Code: code, Err: fmt.Errorf("status %d", resp.StatusCode)}
	}
}
