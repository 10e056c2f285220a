//go:build !portaudio
// +build !portaudio

package audio

import (
	"context"
	"errors"
	"log/slog"
	"time"
)

var errNoPortaudio = errors.New("microphone source not available: rebuild with -tags portaudio")

// MicrophoneSource is a placeholder for builds without portaudio. Every
// operation except Stop fails.
type MicrophoneSource struct {
	logger *slog.Logger
}

func NewMicrophoneSource(_ int, _ time.Duration, logger *slog.Logger) *MicrophoneSource {
	return &MicrophoneSource{logger: logger}
}

func (m *MicrophoneSource) Name() string { return "microphone" }

func (m *MicrophoneSource) Start(_ context.Context) error { return errNoPortaudio }

func (m *MicrophoneSource) Stop() error { return nil }

func (m *MicrophoneSource) NextCommand(_ context.Context) ([]byte, error) {
	return nil, errNoPortaudio
}

func (m *MicrophoneSource) Record(_ context.Context, _ time.Duration) ([]byte, error) {
	return nil, errNoPortaudio
}
