package notify

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/oshokin/door-sentry/internal/logger"
)

const (
	// DefaultEndpoint is the notification service the device posts to.
	DefaultEndpoint = "https://notify-api.line.me/api/notify"
	// DefaultTriggerURL is the companion trigger server on the local network.
	DefaultTriggerURL = "http://127.0.0.1:5000/trigger"
	// DefaultTimeout bounds each outbound call.
	DefaultTimeout = 5 * time.Second

	// maxLoggedBody limits how much of a response body ends up in the logs.
	maxLoggedBody = 512
)

// Result is the outcome of one outbound call.
type Result struct {
	// StatusCode is the HTTP status, zero when the request never completed.
	StatusCode int
	// Body is the start of the response body, for diagnostics only.
	Body string
	// Err is the transport error, if any.
	Err error
	// Skipped is set when the call was disabled by configuration.
	Skipped bool
}

// OK reports a completed call with a 2xx status.
func (r Result) OK() bool {
	return r.Err == nil && r.StatusCode >= http.StatusOK && r.StatusCode < http.StatusMultipleChoices
}

// Label classifies the result for metrics.
func (r Result) Label() string {
	switch {
	case r.Skipped:
		return "skipped"
	case r.Err != nil:
		return "transport_error"
	case r.OK():
		return "ok"
	default:
		return "rejected"
	}
}

// Dispatcher sends notifications and trigger pulses.
type Dispatcher struct {
	// client performs the HTTP calls.
	client *http.Client
	// endpoint receives notification POSTs.
	endpoint string
	// triggerURL receives the Detector-mode GET; empty disables it.
	triggerURL string
	// timeout bounds each call.
	timeout time.Duration
}

// Option configures a Dispatcher.
type Option func(*Dispatcher)

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(d *Dispatcher) {
		if client != nil {
			d.client = client
		}
	}
}

// WithEndpoint overrides DefaultEndpoint.
func WithEndpoint(endpoint string) Option {
	return func(d *Dispatcher) {
		if endpoint != "" {
			d.endpoint = endpoint
		}
	}
}

// WithTriggerURL overrides DefaultTriggerURL. An empty URL disables trigger pulses.
func WithTriggerURL(triggerURL string) Option {
	return func(d *Dispatcher) {
		d.triggerURL = triggerURL
	}
}

// WithTimeout overrides DefaultTimeout.
func WithTimeout(timeout time.Duration) Option {
	return func(d *Dispatcher) {
		if timeout > 0 {
			d.timeout = timeout
		}
	}
}

// NewDispatcher creates a Dispatcher with defaults applied before opts.
func NewDispatcher(opts ...Option) *Dispatcher {
	d := &Dispatcher{
		client:     http.DefaultClient,
		endpoint:   DefaultEndpoint,
		triggerURL: DefaultTriggerURL,
		timeout:    DefaultTimeout,
	}

	for _, opt := range opts {
		opt(d)
	}

	return d
}

// Notify posts message to the notification endpoint using credential as the bearer token.
func (d *Dispatcher) Notify(ctx context.Context, credential, message string) Result {
	ctx = logger.WithName(ctx, "notify")

	callCtx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()

	body := url.Values{"message": {message}}.Encode()

	req, err := http.NewRequestWithContext(callCtx, http.MethodPost, d.endpoint, strings.NewReader(body))
	if err != nil {
		result := Result{Err: fmt.Errorf("build notification request: %w", err)}
		logResult(ctx, "Notification", result, "message", message)

		return result
	}

	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Authorization", "Bearer "+credential)

	result := d.do(req)
	logResult(ctx, "Notification", result, "message", message)

	return result
}

// Trigger pulses the local trigger server.
func (d *Dispatcher) Trigger(ctx context.Context) Result {
	ctx = logger.WithName(ctx, "trigger")

	if d.triggerURL == "" {
		logger.Debug(ctx, "Trigger URL not configured, skipping pulse")
		return Result{Skipped: true}
	}

	callCtx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(callCtx, http.MethodGet, d.triggerURL, http.NoBody)
	if err != nil {
		result := Result{Err: fmt.Errorf("build trigger request: %w", err)}
		logResult(ctx, "Trigger", result, "url", d.triggerURL)

		return result
	}

	result := d.do(req)
	logResult(ctx, "Trigger", result, "url", d.triggerURL)

	return result
}

// do performs req and captures the status and the start of the body.
func (d *Dispatcher) do(req *http.Request) Result {
	resp, err := d.client.Do(req)
	if err != nil {
		return Result{Err: err}
	}

	defer func() {
		_ = resp.Body.Close()
	}()

	head, err := io.ReadAll(io.LimitReader(resp.Body, maxLoggedBody))
	if err != nil {
		return Result{StatusCode: resp.StatusCode, Err: fmt.Errorf("read response: %w", err)}
	}

	return Result{
		StatusCode: resp.StatusCode,
		Body:       string(head),
	}
}

// logResult writes one line per outbound call at a level matching its outcome.
func logResult(ctx context.Context, what string, r Result, kvs ...any) {
	kvs = append(kvs, "status", r.StatusCode)

	switch {
	case r.Err != nil:
		logger.ErrorKV(ctx, what+" failed", append(kvs, "error", r.Err)...)
	case r.OK():
		logger.InfoKV(ctx, what+" delivered", append(kvs, "body", r.Body)...)
	default:
		logger.WarnKV(ctx, what+" rejected", append(kvs, "body", r.Body)...)
	}
}
