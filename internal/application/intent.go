package application

import (
	"context"
	"log/slog"

	"nova-assistant/internal/domain"
)

// IntentExtractor turns transcribed text into a Command. A false result means
// the text was not understood; implementations never return partial commands.
type IntentExtractor interface {
	Name() string
	Interpret(ctx context.Context, text string) (domain.Command, bool)
}

// FallbackExtractor asks primary first and escalates to secondary only on a
// miss. Exactly one strategy produces the returned Command.
type FallbackExtractor struct {
	primary   IntentExtractor
	secondary IntentExtractor
	logger    *slog.Logger
}

func NewFallbackExtractor(primary, secondary IntentExtractor, logger *slog.Logger) *FallbackExtractor {
	return &FallbackExtractor{
		primary:   primary,
		secondary: secondary,
		logger:    logger,
	}
}

func (f *FallbackExtractor) Name() string {
	return f.primary.Name() + "+" + f.secondary.Name()
}

func (f *FallbackExtractor) Interpret(ctx context.Context, text string) (domain.Command, bool) {
	if cmd, ok := f.primary.Interpret(ctx, text); ok {
		return cmd, true
	}

	f.logger.Debug("escalating interpretation", "from", f.primary.Name(), "to", f.secondary.Name())
	return f.secondary.Interpret(ctx, text)
}
