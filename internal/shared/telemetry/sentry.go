package telemetry

import (
	"context"
	"time"

	"github.com/getsentry/sentry-go"
)

// SentryConfig enables error reporting when DSN is set.
type SentryConfig struct {
	DSN         string
	Environment string
	Release     string
	SampleRate  float64
}

// InitSentry sets up the Sentry SDK. An empty DSN leaves reporting disabled
// and returns nil.
func InitSentry(cfg SentryConfig) error {
	if cfg.DSN == "" {
		return nil
	}
	rate := cfg.SampleRate
	if rate <= 0 {
		rate = 1.0
	}
	return sentry.Init(sentry.ClientOptions{
		Dsn:              cfg.DSN,
		Environment:      cfg.Environment,
		Release:          cfg.Release,
		SampleRate:       rate,
		AttachStacktrace: true,
	})
}

// SentryEnabled reports whether a Sentry client is configured.
func SentryEnabled() bool {
	return sentry.CurrentHub().Client() != nil
}

// FlushSentry waits up to timeout for buffered events.
func FlushSentry(timeout time.Duration) bool {
	if !SentryEnabled() {
		return true
	}
	return sentry.Flush(timeout)
}

// CaptureError logs err and, when enabled, sends it to Sentry with fields as
// extra context. The hub bound to ctx is preferred.
func CaptureError(ctx context.Context, msg string, err error, fields map[string]any) {
	if err == nil {
		return
	}
	logged := make(map[string]any, len(fields)+1)
	for k, v := range fields {
		logged[k] = v
	}
	logged["error"] = err.Error()
	Error(msg, logged)

	if !SentryEnabled() {
		return
	}
	hub := sentry.GetHubFromContext(ctx)
	if hub == nil {
		hub = sentry.CurrentHub()
	}
	hub.WithScope(func(scope *sentry.Scope) {
		scope.SetTag("event", msg)
		if len(fields) > 0 {
			scope.SetContext("fields", sentry.Context(fields))
		}
		hub.CaptureException(err)
	})
}
