package application

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"nova-assistant/internal/domain"
)

// failureBackoff keeps a broken audio source from spinning the loop.
const failureBackoff = 500 * time.Millisecond

type Assistant struct {
	wake      WakeDetector
	audio     AudioSource
	stt       SpeechToText
	extractor IntentExtractor
	executor  CommandExecutor
	notifier  Notifier
	observer  Observer
	logger    *slog.Logger
}

func NewAssistant(
	wake WakeDetector,
	audio AudioSource,
	stt SpeechToText,
	extractor IntentExtractor,
	executor CommandExecutor,
	notifier Notifier,
	observer Observer,
	logger *slog.Logger,
) *Assistant {
	if observer == nil {
		observer = Observers{}
	}
	return &Assistant{
		wake:      wake,
		audio:     audio,
		stt:       stt,
		extractor: extractor,
		executor:  executor,
		notifier:  notifier,
		observer:  observer,
		logger:    logger,
	}
}

// Run loops over cycles until ctx is cancelled. Interpretation and execution
// errors are reported per cycle and never end the loop.
func (a *Assistant) Run(ctx context.Context) error {
	a.logger.Info("starting audio source", "source", a.audio.Name())
	if err := a.audio.Start(ctx); err != nil {
		return fmt.Errorf("starting audio: %w", err)
	}
	defer a.audio.Stop()

	a.logger.Info("assistant ready, listening for commands", "intent", a.extractor.Name())

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		if err := a.runCycle(ctx); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			a.logger.Error("waiting for command", "error", err)

			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(failureBackoff):
			}
		}
	}
}

// runCycle returns an error only when no utterance could be obtained.
func (a *Assistant) runCycle(ctx context.Context) error {
	if err := a.wake.WaitForWakeWord(ctx); err != nil {
		return fmt.Errorf("waiting for wake word: %w", err)
	}

	data, err := a.audio.NextCommand(ctx)
	if err != nil {
		return fmt.Errorf("getting audio: %w", err)
	}

	if len(data) == 0 {
		return nil
	}

	start := time.Now()
	cycleID := uuid.NewString()
	logger := a.logger.With("cycle_id", cycleID)

	report := a.handle(ctx, logger, data)
	report.CycleID = cycleID
	report.Outcome = domain.KindOf(report.Err)
	report.Duration = time.Since(start)

	a.finish(ctx, logger, report)
	return nil
}

func (a *Assistant) handle(ctx context.Context, logger *slog.Logger, data []byte) CycleReport {
	var report CycleReport

	text, err := a.transcribe(ctx, logger, data)
	if err != nil {
		report.Err = fmt.Errorf("%w: %v", domain.ErrRecognitionMiss, err)
		return report
	}
	report.Text = text

	if text == "" {
		report.Err = fmt.Errorf("%w: empty transcription", domain.ErrRecognitionMiss)
		return report
	}

	cmd, ok := a.extractor.Interpret(ctx, text)
	if !ok {
		report.Err = domain.ErrRecognitionMiss
		return report
	}
	report.Command = cmd

	logger.Info("recognized command", "text", text, "command", cmd)

	report.Err = a.executor.Execute(ctx, cmd)
	return report
}

func (a *Assistant) transcribe(ctx context.Context, logger *slog.Logger, data []byte) (string, error) {
	if directText, isText := isTextCommand(data); isText {
		logger.Info("received text command directly", "text", directText)
		return strings.TrimSpace(directText), nil
	}

	logger.Info("received audio", "bytes", len(data))

	text, err := a.stt.Transcribe(ctx, data)
	if err != nil {
		return "", fmt.Errorf("transcribing: %w", err)
	}

	logger.Info("transcribed", "text", text)
	return strings.TrimSpace(text), nil
}

func (a *Assistant) finish(ctx context.Context, logger *slog.Logger, report CycleReport) {
	switch report.Outcome {
	case domain.KindNone:
		logger.Info("command executed", "command", report.Command, "duration", report.Duration)
	case domain.KindRecognitionMiss:
		logger.Warn("command not understood", "text", report.Text, "error", report.Err)
	default:
		logger.Error("command failed", "outcome", report.Outcome, "command", report.Command, "error", report.Err)
	}

	if err := a.notifier.Notify(ctx, MessageFor(report.Command, report.Err)); err != nil {
		logger.Error("notifying result", "error", err)
	}

	a.observer.Observe(ctx, report)
}

func isTextCommand(data []byte) (string, bool) {
	if len(data) > len(domain.TextCommandPrefix) && string(data[:len(domain.TextCommandPrefix)]) == domain.TextCommandPrefix {
		return string(data[len(domain.TextCommandPrefix):]), true
	}
	return "", false
}
