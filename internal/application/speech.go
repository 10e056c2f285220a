package application

import (
	"context"
	"fmt"
)

type SpeechToText interface {
	Transcribe(ctx context.Context, audio []byte) (string, error)
}

// NoopSTT is used with text-only sources. It fails if handed real audio.
type NoopSTT struct{}

func (n *NoopSTT) Transcribe(_ context.Context, _ []byte) (string, error) {
	return "", fmt.Errorf("speech-to-text not configured: set stt.provider to enable audio transcription")
}

// WakeDetector blocks until the trigger phrase is heard.
type WakeDetector interface {
	WaitForWakeWord(ctx context.Context) error
}

// AlwaysAwake never waits. Push sources like the HTTP server use it since
// every request is already an explicit trigger.
type AlwaysAwake struct{}

func (AlwaysAwake) WaitForWakeWord(ctx context.Context) error {
	return ctx.Err()
}
