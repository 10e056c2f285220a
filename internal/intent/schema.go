package intent

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"strings"

	"nova-assistant/internal/domain"
)

// SchemaName identifies CommandSchema in structured-output requests.
const SchemaName = "media_command"

// SystemPrompt instructs a language model to classify one utterance. The
// worked examples mirror the defaults of KeywordMatcher.
const SystemPrompt = `You are Nova, a voice assistant that controls music playback and system volume.
Classify the user's utterance into exactly one command object.

Fields:
- action: one of play, pause, resume, next, previous, volume_up, volume_down, set_volume
- platform: spotify or youtube for play, pause, resume, next and previous; null for volume actions
- song: the search query for play; null for every other action
- volume_level: an integer from 0 to 100 for set_volume; null for every other action

Rules:
- If a media action names no platform, use spotify.
- Volume actions never carry a platform.
- Only play carries a song. Only set_volume carries a volume_level.
- Use null for every field that does not apply.

Examples:
"play hotel california on spotify" -> {"action": "play", "platform": "spotify", "song": "hotel california", "volume_level": null}
"play bohemian rhapsody on youtube" -> {"action": "play", "platform": "youtube", "song": "bohemian rhapsody", "volume_level": null}
"pause the music" -> {"action": "pause", "platform": "spotify", "song": null, "volume_level": null}
"next song" -> {"action": "next", "platform": "spotify", "song": null, "volume_level": null}
"volume up" -> {"action": "volume_up", "platform": null, "song": null, "volume_level": null}
"set volume to 75%" -> {"action": "set_volume", "platform": null, "song": null, "volume_level": 75}

Respond only with the JSON object.`

// CommandSchema returns the JSON schema every model-backed strategy is
// constrained to. All properties are required and nullable, as strict
// structured output demands.
func CommandSchema() map[string]any {
	actions := make([]any, 0, len(domain.Actions))
	for _, action := range domain.Actions {
		actions = append(actions, string(action))
	}

	platforms := make([]any, 0, len(domain.Platforms)+1)
	for _, platform := range domain.Platforms {
		platforms = append(platforms, string(platform))
	}
	platforms = append(platforms, nil)

	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"action": map[string]any{
				"type": "string",
				"enum": actions,
			},
			"platform": map[string]any{
				"type": []any{"string", "null"},
				"enum": platforms,
			},
			"song": map[string]any{
				"type": []any{"string", "null"},
			},
			"volume_level": map[string]any{
				"type":        []any{"integer", "null"},
				"description": "Percentage from 0 to 100",
			},
		},
		"required":             []any{"action", "platform", "song", "volume_level"},
		"additionalProperties": false,
	}
}

type wireCommand struct {
	Action      *string  `json:"action"`
	Platform    *string  `json:"platform"`
	Song        *string  `json:"song"`
	VolumeLevel *float64 `json:"volume_level"`
}

// DecodeCommand turns raw model output into a Command. Anything that is not
// exactly one well-typed command object is rejected.
func DecodeCommand(raw string) (domain.Command, error) {
	text := stripCodeFence(raw)
	if text == "" {
		return domain.Command{}, errors.New("empty model output")
	}

	dec := json.NewDecoder(strings.NewReader(text))
	dec.DisallowUnknownFields()

	var wire wireCommand
	if err := dec.Decode(&wire); err != nil {
		return domain.Command{}, fmt.Errorf("decoding command (%s): %w", text, err)
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return domain.Command{}, fmt.Errorf("trailing data after command: %s", text)
	}

	if wire.Action == nil {
		return domain.Command{}, errors.New("command has no action")
	}

	var platform, song string
	if wire.Platform != nil {
		platform = *wire.Platform
	}
	if wire.Song != nil {
		song = *wire.Song
	}

	var level *int
	if wire.VolumeLevel != nil {
		v := *wire.VolumeLevel
		if v != math.Trunc(v) || v < math.MinInt32 || v > math.MaxInt32 {
			return domain.Command{}, fmt.Errorf("volume_level %v is not an integer", v)
		}
		n := int(v)
		level = &n
	}

	return domain.NewCommand(domain.Action(*wire.Action), domain.Platform(platform), song, level)
}

func stripCodeFence(raw string) string {
	text := strings.TrimSpace(raw)
	if !strings.HasPrefix(text, "```") {
		return text
	}

	text = strings.TrimPrefix(text, "```")
	if i := strings.IndexByte(text, '\n'); i >= 0 {
		text = text[i+1:]
	} else {
		text = strings.TrimPrefix(text, "json")
	}
	text = strings.TrimSuffix(strings.TrimSpace(text), "```")
	return strings.TrimSpace(text)
}
