package application

import "context"

// AudioSource yields one utterance per call. Text-capable sources return
// domain.TextCommandPrefix followed by the command text instead of audio.
type AudioSource interface {
	Start(ctx context.Context) error
	Stop() error
	NextCommand(ctx context.Context) ([]byte, error)
	Name() string
}
