package application_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nova-assistant/internal/application"
	"nova-assistant/internal/domain"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func level(v int) *int { return &v }

type mockPlayer struct {
	calls []string
	err   error
}

func (m *mockPlayer) record(call string) error {
	m.calls = append(m.calls, call)
	return m.err
}

func (m *mockPlayer) Play(_ context.Context, query string) error { return m.record("play:" + query) }
func (m *mockPlayer) Pause(_ context.Context) error              { return m.record("pause") }
func (m *mockPlayer) Resume(_ context.Context) error             { return m.record("resume") }
func (m *mockPlayer) Next(_ context.Context) error               { return m.record("next") }
func (m *mockPlayer) Previous(_ context.Context) error           { return m.record("previous") }

type mockVolume struct {
	current  int
	readErr  error
	writeErr error
	writes   []int
}

func (m *mockVolume) Volume(_ context.Context) (int, error) {
	if m.readErr != nil {
		return 0, m.readErr
	}
	return m.current, nil
}

func (m *mockVolume) SetVolume(_ context.Context, level int) error {
	m.writes = append(m.writes, level)
	if m.writeErr != nil {
		return m.writeErr
	}
	m.current = level
	return nil
}

func newDispatcher() (*application.Dispatcher, *mockPlayer, *mockPlayer, *mockVolume) {
	spotify := &mockPlayer{}
	youtube := &mockPlayer{}
	volume := &mockVolume{current: 50}

	d := application.NewDispatcher(map[domain.Platform]application.MediaPlayer{
		domain.PlatformSpotify: spotify,
		domain.PlatformYouTube: youtube,
	}, volume, discardLogger())

	return d, spotify, youtube, volume
}

func TestDispatcher_RoutesMediaActions(t *testing.T) {
	tests := []struct {
		cmd      domain.Command
		wantCall string
	}{
		{domain.Command{Action: domain.ActionPlay, Platform: domain.PlatformYouTube, Song: "hotel california"}, "play:hotel california"},
		{domain.Command{Action: domain.ActionPause, Platform: domain.PlatformYouTube}, "pause"},
		{domain.Command{Action: domain.ActionResume, Platform: domain.PlatformYouTube}, "resume"},
		{domain.Command{Action: domain.ActionNext, Platform: domain.PlatformYouTube}, "next"},
		{domain.Command{Action: domain.ActionPrevious, Platform: domain.PlatformYouTube}, "previous"},
	}

	for _, tt := range tests {
		t.Run(tt.cmd.String(), func(t *testing.T) {
			d, spotify, youtube, _ := newDispatcher()

			require.NoError(t, d.Execute(context.Background(), tt.cmd))
			assert.Equal(t, []string{tt.wantCall}, youtube.calls)
			assert.Empty(t, spotify.calls)
		})
	}
}

func TestDispatcher_PlayWithoutSongIsValidationFailure(t *testing.T) {
	d, spotify, _, _ := newDispatcher()

	err := d.Execute(context.Background(), domain.Command{Action: domain.ActionPlay, Platform: domain.PlatformSpotify, Song: "  "})

	var validationErr *domain.ValidationError
	require.ErrorAs(t, err, &validationErr)
	assert.Equal(t, "song", validationErr.Field)
	assert.Empty(t, spotify.calls)
}

func TestDispatcher_UnregisteredPlatformIsNoop(t *testing.T) {
	volume := &mockVolume{}
	d := application.NewDispatcher(map[domain.Platform]application.MediaPlayer{}, volume, discardLogger())

	err := d.Execute(context.Background(), domain.Command{Action: domain.ActionPause, Platform: domain.Platform("winamp")})
	assert.NoError(t, err)
}

func TestDispatcher_AdapterFailureIsExecutionError(t *testing.T) {
	d, spotify, _, _ := newDispatcher()
	spotify.err = errors.New("osascript exited 1")

	err := d.Execute(context.Background(), domain.Command{Action: domain.ActionNext, Platform: domain.PlatformSpotify})

	var execErr *domain.ExecutionError
	require.ErrorAs(t, err, &execErr)
	assert.Equal(t, domain.ActionNext, execErr.Action)
	assert.Equal(t, domain.PlatformSpotify, execErr.Platform)
	assert.ErrorIs(t, err, spotify.err)
	assert.Len(t, spotify.calls, 1, "no automatic retry")
}

func TestDispatcher_StepVolume(t *testing.T) {
	tests := []struct {
		name    string
		action  domain.Action
		current int
		want    int
	}{
		{"up", domain.ActionVolumeUp, 50, 60},
		{"up clamps", domain.ActionVolumeUp, 95, 100},
		{"down", domain.ActionVolumeDown, 50, 40},
		{"down clamps", domain.ActionVolumeDown, 3, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, _, _, volume := newDispatcher()
			volume.current = tt.current

			require.NoError(t, d.Execute(context.Background(), domain.Command{Action: tt.action}))
			assert.Equal(t, []int{tt.want}, volume.writes)
		})
	}
}

func TestDispatcher_UnknownVolumeSkipsWrite(t *testing.T) {
	d, _, _, volume := newDispatcher()
	volume.readErr = domain.ErrVolumeUnknown

	err := d.Execute(context.Background(), domain.Command{Action: domain.ActionVolumeUp})

	var execErr *domain.ExecutionError
	require.ErrorAs(t, err, &execErr)
	assert.ErrorIs(t, err, domain.ErrVolumeUnknown)
	assert.Empty(t, volume.writes)
}

func TestDispatcher_SetVolume(t *testing.T) {
	tests := []struct {
		level int
		want  int
	}{
		{75, 75},
		{150, 100},
		{-20, 0},
	}

	for _, tt := range tests {
		d, _, _, volume := newDispatcher()

		require.NoError(t, d.Execute(context.Background(), domain.Command{Action: domain.ActionSetVolume, VolumeLevel: level(tt.level)}))
		assert.Equal(t, []int{tt.want}, volume.writes)
	}
}

func TestDispatcher_SetVolumeWithoutLevel(t *testing.T) {
	d, _, _, volume := newDispatcher()

	err := d.Execute(context.Background(), domain.Command{Action: domain.ActionSetVolume})

	var validationErr *domain.ValidationError
	require.ErrorAs(t, err, &validationErr)
	assert.Equal(t, "volume_level", validationErr.Field)
	assert.Empty(t, volume.writes)
}

func TestDispatcher_SetVolumeWriteFailure(t *testing.T) {
	d, _, _, volume := newDispatcher()
	volume.writeErr = errors.New("osascript exited 1")

	err := d.Execute(context.Background(), domain.Command{Action: domain.ActionSetVolume, VolumeLevel: level(30)})
	assert.Equal(t, domain.KindExecution, domain.KindOf(err))
}
