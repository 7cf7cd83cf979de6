package observability

import (
	"fmt"
	"time"

	"github.com/getsentry/sentry-go"

	"github.com/lanewayhq/laneway/engine"
)

// SentryReporter sends CycleError and UserFunctionError to Sentry with
// the failing key and live-call stack attached as tags/extras, using
// Sentry's Hub API for thread-safe reporting.
//
// Thread-safe: all methods are safe for concurrent use.
type SentryReporter struct {
	hub *sentry.Hub
}

var _ engine.Reporter = (*SentryReporter)(nil)

// SentryOption configures the underlying sentry.ClientOptions.
type SentryOption func(*sentry.ClientOptions)

// WithDebug enables Sentry's own debug logging.
func WithDebug(debug bool) SentryOption {
	return func(o *sentry.ClientOptions) { o.Debug = debug }
}

// WithEnvironment sets the environment tag attached to every event.
func WithEnvironment(environment string) SentryOption {
	return func(o *sentry.ClientOptions) { o.Environment = environment }
}

// WithRelease sets the release identifier attached to every event.
func WithRelease(release string) SentryOption {
	return func(o *sentry.ClientOptions) { o.Release = release }
}

// NewSentryReporter initializes the Sentry SDK with dsn and returns a
// reporter bound to the resulting hub. An empty dsn disables sending
// events, which is useful in tests.
func NewSentryReporter(dsn string, opts ...SentryOption) (*SentryReporter, error) {
	clientOpts := sentry.ClientOptions{Dsn: dsn}
	for _, opt := range opts {
		opt(&clientOpts)
	}
	if err := sentry.Init(clientOpts); err != nil {
		return nil, fmt.Errorf("observability: failed to initialize sentry: %w", err)
	}
	return &SentryReporter{hub: sentry.CurrentHub()}, nil
}

func (r *SentryReporter) ReportCycle(err *engine.CycleError) {
	r.hub.WithScope(func(scope *sentry.Scope) {
		scope.SetTag("engine.failure_kind", "cycle")
		scope.SetTag("engine.diagnostic_id", err.ID.String())
		stack := make([]string, len(err.Stack))
		for i, k := range err.Stack {
			stack[i] = k.String()
		}
		scope.SetExtra("live_call_stack", stack)
		r.hub.CaptureException(err)
	})
}

func (r *SentryReporter) ReportUserFunctionFailure(err *engine.UserFunctionError) {
	r.hub.WithScope(func(scope *sentry.Scope) {
		scope.SetTag("engine.failure_kind", "user_function")
		scope.SetTag("engine.key", err.Key.String())
		scope.SetTag("engine.diagnostic_id", err.ID.String())
		stack := make([]string, len(err.Stack))
		for i, k := range err.Stack {
			stack[i] = k.String()
		}
		scope.SetExtra("live_call_stack", stack)
		r.hub.CaptureException(err)
	})
}

// Flush blocks until pending events are sent or timeout elapses.
func (r *SentryReporter) Flush(timeout time.Duration) error {
	sentry.Flush(timeout)
	return nil
}
