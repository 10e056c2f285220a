package intent

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/sony/gobreaker"

	"nova-assistant/internal/domain"
)

// CompletionRequest is a single schema-constrained model call.
type CompletionRequest struct {
	SystemPrompt string
	Text         string
	SchemaName   string
	Schema       map[string]any
}

// Completer is a language-model back-end that answers with JSON matching
// the request schema.
type Completer interface {
	Name() string
	Complete(ctx context.Context, req CompletionRequest) (string, error)
}

// BreakerConfig controls when the extractor stops calling a failing model.
type BreakerConfig struct {
	MaxFailures uint32
	OpenTimeout time.Duration
}

func DefaultBreakerConfig() BreakerConfig {
	return BreakerConfig{
		MaxFailures: 3,
		OpenTimeout: 30 * time.Second,
	}
}

// SchemaExtractor is the model-backed interpretation strategy. Every failure
// (transport, open breaker, malformed output) resolves to no command.
type SchemaExtractor struct {
	model   Completer
	breaker *gobreaker.CircuitBreaker
	logger  *slog.Logger
}

func NewSchemaExtractor(model Completer, cfg BreakerConfig, logger *slog.Logger) *SchemaExtractor {
	settings := gobreaker.Settings{
		Name:        "intent-" + model.Name(),
		MaxRequests: 1,
		Timeout:     cfg.OpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= cfg.MaxFailures
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("model circuit breaker state changed", "breaker", name, "from", from.String(), "to", to.String())
		},
	}

	return &SchemaExtractor{
		model:   model,
		breaker: gobreaker.NewCircuitBreaker(settings),
		logger:  logger,
	}
}

func (e *SchemaExtractor) Name() string {
	return "model:" + e.model.Name()
}

func (e *SchemaExtractor) Interpret(ctx context.Context, text string) (domain.Command, bool) {
	text = strings.TrimSpace(text)
	if text == "" {
		return domain.Command{}, false
	}

	cmd, err := e.extract(ctx, text)
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			e.logger.Warn("model unavailable, skipping extraction", "model", e.model.Name())
		} else {
			e.logger.Warn("model extraction failed", "model", e.model.Name(), "error", err)
		}
		return domain.Command{}, false
	}

	e.logger.Debug("model extracted command", "model", e.model.Name(), "command", cmd)
	return cmd, true
}

func (e *SchemaExtractor) extract(ctx context.Context, text string) (domain.Command, error) {
	req := CompletionRequest{
		SystemPrompt: SystemPrompt,
		Text:         text,
		SchemaName:   SchemaName,
		Schema:       CommandSchema(),
	}

	out, err := e.breaker.Execute(func() (interface{}, error) {
		return e.model.Complete(ctx, req)
	})
	if err != nil {
		return domain.Command{}, err
	}

	raw, _ := out.(string)
	cmd, err := DecodeCommand(raw)
	if err != nil {
		return domain.Command{}, fmt.Errorf("invalid model output: %w", err)
	}

	return cmd, nil
}
