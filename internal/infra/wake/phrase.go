package wake

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"
	"unicode"

	"nova-assistant/internal/infra/audio"
)

const (
	DefaultPhrase    = "hey nova"
	DefaultWindow    = 2 * time.Second
	DefaultThreshold = 500.0
)

type Recorder interface {
	Record(ctx context.Context, d time.Duration) ([]byte, error)
}

type Transcriber interface {
	Transcribe(ctx context.Context, audio []byte) (string, error)
}

type Config struct {
	Phrase    string
	Window    time.Duration
	Threshold float64 // RMS below which a window counts as silence
}

func (c Config) withDefaults() Config {
	if strings.TrimSpace(c.Phrase) == "" {
		c.Phrase = DefaultPhrase
	}
	if c.Window <= 0 {
		c.Window = DefaultWindow
	}
	if c.Threshold < 0 {
		c.Threshold = 0
	}
	return c
}

// PhraseDetector listens in short windows and transcribes each one that
// carries speech until the wake phrase shows up in the transcript.
type PhraseDetector struct {
	recorder    Recorder
	transcriber Transcriber
	phrase      string
	window      time.Duration
	threshold   float64
	logger      *slog.Logger
}

func NewPhraseDetector(recorder Recorder, transcriber Transcriber, cfg Config, logger *slog.Logger) *PhraseDetector {
	cfg = cfg.withDefaults()
	return &PhraseDetector{
		recorder:    recorder,
		transcriber: transcriber,
		phrase:      normalize(cfg.Phrase),
		window:      cfg.Window,
		threshold:   cfg.Threshold,
		logger:      logger,
	}
}

func (d *PhraseDetector) WaitForWakeWord(ctx context.Context) error {
	d.logger.Info("waiting for wake phrase", "phrase", d.phrase)

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		clip, err := d.recorder.Record(ctx, d.window)
		if err != nil {
			return fmt.Errorf("recording wake window: %w", err)
		}

		if d.silent(clip) {
			continue
		}

		text, err := d.transcriber.Transcribe(ctx, clip)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			d.logger.Debug("wake window transcription failed", "error", err)
			continue
		}

		if strings.Contains(normalize(text), d.phrase) {
			d.logger.Info("wake phrase detected")
			return nil
		}
		d.logger.Debug("no wake phrase", "heard", text)
	}
}

// silent reports whether clip is quiet enough to skip transcription.
// Clips that are not PCM WAV are never considered silent.
func (d *PhraseDetector) silent(clip []byte) bool {
	if d.threshold == 0 {
		return false
	}
	samples, err := audio.DecodePCM(clip)
	if err != nil {
		return false
	}
	return audio.RMS(samples) < d.threshold
}

// normalize lowercases s, drops punctuation and collapses whitespace, so
// "Hey, Nova!" matches "hey nova".
func normalize(s string) string {
	s = strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.IsSpace(r) {
			return unicode.ToLower(r)
		}
		return ' '
	}, s)
	return strings.Join(strings.Fields(s), " ")
}
