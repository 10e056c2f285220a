package sentry

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/getsentry/sentry-go"

	"nova-assistant/internal/application"
	"nova-assistant/internal/domain"
)

type Options struct {
	DSN         string
	Environment string
	Release     string
	// Transport overrides the HTTP transport; tests pass sentry.MockTransport.
	Transport sentry.Transport
}

// Observer reports failed command executions to Sentry. Recognition misses
// and validation failures are user-level outcomes and are not sent.
type Observer struct {
	hub *sentry.Hub
}

func NewObserver(opts Options) (*Observer, error) {
	client, err := sentry.NewClient(sentry.ClientOptions{
		Dsn:         opts.DSN,
		Environment: opts.Environment,
		Release:     opts.Release,
		Transport:   opts.Transport,
	})
	if err != nil {
		return nil, fmt.Errorf("creating sentry client: %w", err)
	}
	return &Observer{hub: sentry.NewHub(client, sentry.NewScope())}, nil
}

func (o *Observer) Observe(_ context.Context, report application.CycleReport) {
	if report.Outcome != domain.KindExecution || report.Err == nil {
		return
	}

	o.hub.WithScope(func(scope *sentry.Scope) {
		scope.SetTag("cycle_id", report.CycleID)
		scope.SetTag("action", string(report.Command.Action))

		var execErr *domain.ExecutionError
		if errors.As(report.Err, &execErr) && execErr.Platform != "" {
			scope.SetTag("platform", string(execErr.Platform))
		}

		scope.SetContext("command", sentry.Context{
			"text":     report.Text,
			"command":  report.Command.String(),
			"duration": report.Duration.String(),
		})
		o.hub.CaptureException(report.Err)
	})
}

// Flush waits up to timeout for queued events to be delivered.
func (o *Observer) Flush(timeout time.Duration) bool {
	return o.hub.Flush(timeout)
}
