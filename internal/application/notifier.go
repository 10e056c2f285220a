package application

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"nova-assistant/internal/domain"
)

type Notifier interface {
	Notify(ctx context.Context, message string) error
}

type NoopNotifier struct{}

func (n *NoopNotifier) Notify(_ context.Context, _ string) error {
	return nil
}

const (
	MessageNotUnderstood = "Sorry, I didn't understand that command."
	MessageFailed        = "Sorry, I couldn't execute that command."
)

// MessageFor is the user-facing outcome of a cycle.
func MessageFor(cmd domain.Command, err error) string {
	switch domain.KindOf(err) {
	case domain.KindNone:
		return confirmation(cmd)
	case domain.KindRecognitionMiss:
		return MessageNotUnderstood
	case domain.KindValidation:
		var validationErr *domain.ValidationError
		if errors.As(err, &validationErr) {
			return fmt.Sprintf("Sorry, I need a %s for that command.", strings.ReplaceAll(validationErr.Field, "_", " "))
		}
		return MessageFailed
	default:
		return MessageFailed
	}
}

func confirmation(cmd domain.Command) string {
	switch cmd.Action {
	case domain.ActionPlay:
		return fmt.Sprintf("Playing %s on %s.", cmd.Song, platformName(cmd.Platform))
	case domain.ActionPause:
		return fmt.Sprintf("Paused %s.", platformName(cmd.Platform))
	case domain.ActionResume:
		return fmt.Sprintf("Resumed %s.", platformName(cmd.Platform))
	case domain.ActionNext:
		return fmt.Sprintf("Skipped to the next track on %s.", platformName(cmd.Platform))
	case domain.ActionPrevious:
		return fmt.Sprintf("Went back to the previous track on %s.", platformName(cmd.Platform))
	case domain.ActionVolumeUp:
		return "Volume up."
	case domain.ActionVolumeDown:
		return "Volume down."
	case domain.ActionSetVolume:
		level, _ := cmd.Level()
		return fmt.Sprintf("Volume set to %d%%.", domain.ClampVolume(level))
	}
	return "Done."
}

func platformName(p domain.Platform) string {
	switch p {
	case domain.PlatformSpotify:
		return "Spotify"
	case domain.PlatformYouTube:
		return "YouTube"
	}
	return string(p)
}
