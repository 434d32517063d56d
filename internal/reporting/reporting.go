// internal/reporting/reporting.go
//
// Sentry error reporting.
//
// Context
// -------
// The settings assembler decides whether reporting is on (SENTRY_DSN is
// present) and calls Client.Init with the resolved DSN, release, and
// environment.  The two integrations it records are wired here:
//
//   - HTTP()     – wraps the router with sentryhttp so handler panics are
//                  captured and re-raised.
//   - TaskHook() – passed to tasks.Options.OnError so failed background
//                  tasks are captured with a `task` tag.
//
// When Init was never called both helpers are no-ops, so callers do not
// need to branch on ErrorReporting.Enabled.
//
// Notes
// -----
//   - Flush before exit, or buffered events are lost.
//   - Oxford commas, two spaces after periods.
package reporting

import (
	"fmt"
	"net/http"
	"time"

	"github.com/getsentry/sentry-go"
	sentryhttp "github.com/getsentry/sentry-go/http"

	"github.com/yanizio/promgen/internal/config"
)

const flushTimeout = 2 * time.Second

// Client owns the process-wide Sentry hub.  Create one with New and pass
// it to config.Options.Reporter.
type Client struct {
	enabled bool
}

// New returns a disabled client.
func New() *Client { return &Client{} }

// Init configures the Sentry SDK.  It implements config.Reporter.
func (c *Client) Init(r config.ErrorReporting) error {
	if err := sentry.Init(sentry.ClientOptions{
		Dsn:              r.DSN,
		Release:          r.Release,
		Environment:      r.Environment,
		AttachStacktrace: true,
	}); err != nil {
		return fmt.Errorf("sentry init: %w", err)
	}
	c.enabled = true
	return nil
}

// Enabled reports whether Init succeeded.
func (c *Client) Enabled() bool { return c.enabled }

// HTTP wraps next with the Sentry HTTP integration.
func (c *Client) HTTP(next http.Handler) http.Handler {
	if !c.enabled {
		return next
	}
	return sentryhttp.New(sentryhttp.Options{Repanic: true}).Handle(next)
}

// TaskHook returns the task-queue integration, or nil when disabled.
func (c *Client) TaskHook() func(name string, err error) {
	if !c.enabled {
		return nil
	}
	return func(name string, err error) {
		hub := sentry.CurrentHub().Clone()
		hub.WithScope(func(scope *sentry.Scope) {
			scope.SetTag("task", name)
			hub.CaptureException(err)
		})
	}
}

// Flush waits briefly for buffered events to be sent.
func (c *Client) Flush() {
	if c.enabled {
		sentry.Flush(flushTimeout)
	}
}
