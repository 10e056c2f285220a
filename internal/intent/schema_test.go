package intent_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nova-assistant/internal/domain"
	"nova-assistant/internal/intent"
)

func TestDecodeCommand(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want domain.Command
	}{
		{
			name: "play",
			raw:  `{"action":"play","platform":"youtube","song":"hotel california","volume_level":null}`,
			want: domain.Command{Action: domain.ActionPlay, Platform: domain.PlatformYouTube, Song: "hotel california"},
		},
		{
			name: "missing platform defaults to spotify",
			raw:  `{"action":"next","platform":null,"song":null,"volume_level":null}`,
			want: domain.Command{Action: domain.ActionNext, Platform: domain.PlatformSpotify},
		},
		{
			name: "irrelevant fields dropped",
			raw:  `{"action":"volume_up","platform":"spotify","song":"x","volume_level":40}`,
			want: domain.Command{Action: domain.ActionVolumeUp},
		},
		{
			name: "set volume",
			raw:  `{"action":"set_volume","platform":null,"song":null,"volume_level":75}`,
			want: domain.Command{Action: domain.ActionSetVolume, VolumeLevel: level(75)},
		},
		{
			name: "fenced",
			raw:  "```json\n{\"action\":\"pause\",\"platform\":\"spotify\",\"song\":null,\"volume_level\":null}\n```",
			want: domain.Command{Action: domain.ActionPause, Platform: domain.PlatformSpotify},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := intent.DecodeCommand(tt.raw)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDecodeCommand_Rejects(t *testing.T) {
	tests := map[string]string{
		"empty":            "   ",
		"not json":         "I think you want to pause",
		"unknown action":   `{"action":"shuffle","platform":"spotify"}`,
		"unknown platform": `{"action":"pause","platform":"soundcloud"}`,
		"missing action":   `{"platform":"spotify"}`,
		"unknown field":    `{"action":"pause","confidence":0.9}`,
		"wrong level type": `{"action":"set_volume","volume_level":"75"}`,
		"fractional level": `{"action":"set_volume","volume_level":75.5}`,
		"wrong song type":  `{"action":"play","song":42}`,
		"two objects":      `{"action":"pause"}{"action":"next"}`,
		"array":            `[{"action":"pause"}]`,
	}

	for name, raw := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := intent.DecodeCommand(raw)
			assert.Error(t, err)
		})
	}
}

func TestDecodeCommand_IntegralFloatLevel(t *testing.T) {
	cmd, err := intent.DecodeCommand(`{"action":"set_volume","platform":null,"song":null,"volume_level":75.0}`)
	require.NoError(t, err)

	level, ok := cmd.Level()
	require.True(t, ok)
	assert.Equal(t, 75, level)
}

// Commands from the model path satisfy the same field-relevance rules as
// commands built by the keyword matcher.
func TestDecodeCommand_MatchesKeywordShape(t *testing.T) {
	m := intent.NewKeywordMatcher(intent.DefaultRules(), discardLogger())

	pairs := map[string]string{
		"play hotel california on spotify": `{"action":"play","platform":"spotify","song":"hotel california","volume_level":null}`,
		"pause the music":                  `{"action":"pause","platform":null,"song":null,"volume_level":null}`,
		"next song":                        `{"action":"next","platform":"spotify","song":null,"volume_level":null}`,
		"volume up":                        `{"action":"volume_up","platform":null,"song":null,"volume_level":null}`,
		"set volume to 75%":                `{"action":"set_volume","platform":null,"song":null,"volume_level":75}`,
	}

	for text, raw := range pairs {
		fromKeywords, _, ok := m.Match(text)
		require.True(t, ok, text)

		fromModel, err := intent.DecodeCommand(raw)
		require.NoError(t, err, text)

		assert.Equal(t, fromKeywords, fromModel, text)
	}
}

func TestCommandSchema(t *testing.T) {
	schema := intent.CommandSchema()

	assert.Equal(t, false, schema["additionalProperties"])
	assert.ElementsMatch(t, []any{"action", "platform", "song", "volume_level"}, schema["required"])

	props := schema["properties"].(map[string]any)
	action := props["action"].(map[string]any)
	assert.Len(t, action["enum"], len(domain.Actions))
}
