package application

import (
	"context"
	"time"

	"nova-assistant/internal/domain"
)

// CycleReport summarizes one wake, listen, interpret and execute pass.
type CycleReport struct {
	CycleID  string
	Text     string
	Command  domain.Command
	Outcome  domain.ErrorKind
	Err      error
	Duration time.Duration
}

// Recognized reports whether an extractor produced the report's Command.
func (r CycleReport) Recognized() bool {
	return r.Command.Action != ""
}

// Observer receives every finished cycle. Implementations must not block.
type Observer interface {
	Observe(ctx context.Context, report CycleReport)
}

// Observers fans a report out to each observer in order.
type Observers []Observer

func (o Observers) Observe(ctx context.Context, report CycleReport) {
	for _, observer := range o {
		observer.Observe(ctx, report)
	}
}
