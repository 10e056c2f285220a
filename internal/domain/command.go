package domain

import (
	"fmt"
	"log/slog"
	"strings"
)

type Action string

const (
	ActionPlay       Action = "play"
	ActionPause      Action = "pause"
	ActionResume     Action = "resume"
	ActionNext       Action = "next"
	ActionPrevious   Action = "previous"
	ActionVolumeUp   Action = "volume_up"
	ActionVolumeDown Action = "volume_down"
	ActionSetVolume  Action = "set_volume"
)

// Actions lists every action a Command may carry, in schema order.
var Actions = []Action{
	ActionPlay,
	ActionPause,
	ActionResume,
	ActionNext,
	ActionPrevious,
	ActionVolumeUp,
	ActionVolumeDown,
	ActionSetVolume,
}

func (a Action) Valid() bool {
	for _, known := range Actions {
		if a == known {
			return true
		}
	}
	return false
}

// TargetsPlatform reports whether the action is routed to a media platform.
func (a Action) TargetsPlatform() bool {
	switch a {
	case ActionPlay, ActionPause, ActionResume, ActionNext, ActionPrevious:
		return true
	}
	return false
}

type Platform string

const (
	PlatformSpotify Platform = "spotify"
	PlatformYouTube Platform = "youtube"
)

// DefaultPlatform is applied at recognition time when a media action names no platform.
const DefaultPlatform = PlatformSpotify

var Platforms = []Platform{PlatformSpotify, PlatformYouTube}

func (p Platform) Valid() bool {
	return p == PlatformSpotify || p == PlatformYouTube
}

// TextCommandPrefix is the marker used to indicate text commands (vs audio)
const TextCommandPrefix = "__TEXT__:"

// Command is a recognized intent. Only the fields relevant to Action are set;
// build it with NewCommand and treat it as read-only afterwards.
type Command struct {
	Action      Action   `json:"action"`
	Platform    Platform `json:"platform,omitempty"`
	Song        string   `json:"song,omitempty"`
	VolumeLevel *int     `json:"volume_level,omitempty"`
}

// NewCommand normalizes the raw fields for action: the platform defaults to
// spotify for media actions and is dropped for volume actions, song survives
// only on play and volume level only on set_volume.
func NewCommand(action Action, platform Platform, song string, volumeLevel *int) (Command, error) {
	if !action.Valid() {
		return Command{}, fmt.Errorf("unknown action %q", action)
	}

	cmd := Command{Action: action}

	if action.TargetsPlatform() {
		if platform == "" {
			platform = DefaultPlatform
		}
		if !platform.Valid() {
			return Command{}, fmt.Errorf("unknown platform %q", platform)
		}
		cmd.Platform = platform
	}

	if action == ActionPlay {
		cmd.Song = strings.TrimSpace(song)
	}

	if action == ActionSetVolume && volumeLevel != nil {
		level := *volumeLevel
		cmd.VolumeLevel = &level
	}

	return cmd, nil
}

// Level returns the requested volume level, if any.
func (c Command) Level() (int, bool) {
	if c.VolumeLevel == nil {
		return 0, false
	}
	return *c.VolumeLevel, true
}

func (c Command) String() string {
	var sb strings.Builder
	sb.WriteString(string(c.Action))
	if c.Platform != "" {
		sb.WriteString(" platform=" + string(c.Platform))
	}
	if c.Song != "" {
		sb.WriteString(fmt.Sprintf(" song=%q", c.Song))
	}
	if level, ok := c.Level(); ok {
		sb.WriteString(fmt.Sprintf(" volume_level=%d", level))
	}
	return sb.String()
}

func (c Command) LogValue() slog.Value {
	attrs := []slog.Attr{slog.String("action", string(c.Action))}
	if c.Platform != "" {
		attrs = append(attrs, slog.String("platform", string(c.Platform)))
	}
	if c.Song != "" {
		attrs = append(attrs, slog.String("song", c.Song))
	}
	if level, ok := c.Level(); ok {
		attrs = append(attrs, slog.Int("volume_level", level))
	}
	return slog.GroupValue(attrs...)
}
