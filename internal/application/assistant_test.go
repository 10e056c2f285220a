package application_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nova-assistant/internal/application"
	"nova-assistant/internal/domain"
	"nova-assistant/internal/intent"
)

type mockAudioSource struct {
	commands [][]byte
	index    int
	startErr error
}

func (m *mockAudioSource) Start(_ context.Context) error { return m.startErr }
func (m *mockAudioSource) Stop() error                   { return nil }
func (m *mockAudioSource) Name() string                  { return "mock" }

func (m *mockAudioSource) NextCommand(ctx context.Context) ([]byte, error) {
	if m.index >= len(m.commands) {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	audio := m.commands[m.index]
	m.index++
	return audio, nil
}

type mockSTT struct {
	transcriptions map[string]string
	err            error
	calls          int
}

func (m *mockSTT) Transcribe(_ context.Context, audio []byte) (string, error) {
	m.calls++
	if m.err != nil {
		return "", m.err
	}
	return m.transcriptions[string(audio)], nil
}

type countingWake struct {
	calls int
}

func (c *countingWake) WaitForWakeWord(ctx context.Context) error {
	c.calls++
	return ctx.Err()
}

type recordingNotifier struct {
	messages chan string
}

func newRecordingNotifier() *recordingNotifier {
	return &recordingNotifier{messages: make(chan string, 16)}
}

func (r *recordingNotifier) Notify(_ context.Context, message string) error {
	r.messages <- message
	return nil
}

type recordingObserver struct {
	reports []application.CycleReport
}

func (r *recordingObserver) Observe(_ context.Context, report application.CycleReport) {
	r.reports = append(r.reports, report)
}

type harness struct {
	source   *mockAudioSource
	stt      *mockSTT
	wake     *countingWake
	spotify  *mockPlayer
	youtube  *mockPlayer
	volume   *mockVolume
	notifier *recordingNotifier
	observer *recordingObserver
}

func newHarness(commands ...string) *harness {
	h := &harness{
		source:   &mockAudioSource{},
		stt:      &mockSTT{transcriptions: map[string]string{}},
		wake:     &countingWake{},
		spotify:  &mockPlayer{},
		youtube:  &mockPlayer{},
		volume:   &mockVolume{current: 50},
		notifier: newRecordingNotifier(),
		observer: &recordingObserver{},
	}
	for _, c := range commands {
		h.source.commands = append(h.source.commands, []byte(c))
	}
	return h
}

func (h *harness) assistant() *application.Assistant {
	logger := discardLogger()
	dispatcher := application.NewDispatcher(map[domain.Platform]application.MediaPlayer{
		domain.PlatformSpotify: h.spotify,
		domain.PlatformYouTube: h.youtube,
	}, h.volume, logger)

	return application.NewAssistant(
		h.wake,
		h.source,
		h.stt,
		intent.NewKeywordMatcher(intent.DefaultRules(), logger),
		dispatcher,
		h.notifier,
		h.observer,
		logger,
	)
}

// run drives the assistant until n messages were sent, then stops it.
func (h *harness) run(t *testing.T, n int) []string {
	t.Helper()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- h.assistant().Run(ctx)
	}()

	var messages []string
	timeout := time.After(5 * time.Second)
	for len(messages) < n {
		select {
		case msg := <-h.notifier.messages:
			messages = append(messages, msg)
		case <-timeout:
			cancel()
			t.Fatal("timeout waiting for cycles")
		}
	}

	cancel()
	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(5 * time.Second):
		t.Fatal("assistant did not stop")
	}

	return messages
}

func TestAssistant_ProcessesCommands(t *testing.T) {
	h := newHarness(domain.TextCommandPrefix+"pause the music", "clip-1")
	h.stt.transcriptions["clip-1"] = "play hotel california on youtube"

	messages := h.run(t, 2)

	assert.Equal(t, []string{"Paused Spotify.", "Playing hotel california on YouTube."}, messages)
	assert.Equal(t, []string{"pause"}, h.spotify.calls)
	assert.Equal(t, []string{"play:hotel california"}, h.youtube.calls)
	assert.Equal(t, 1, h.stt.calls, "text commands skip transcription")
	assert.GreaterOrEqual(t, h.wake.calls, 2)

	require.Len(t, h.observer.reports, 2)
	for _, report := range h.observer.reports {
		assert.Equal(t, domain.KindNone, report.Outcome)
		assert.NotEmpty(t, report.CycleID)
		assert.True(t, report.Recognized())
	}
	assert.NotEqual(t, h.observer.reports[0].CycleID, h.observer.reports[1].CycleID)
}

func TestAssistant_RecognitionMiss(t *testing.T) {
	h := newHarness(domain.TextCommandPrefix+"what time is it", "silence")
	h.stt.transcriptions["silence"] = "   "

	messages := h.run(t, 2)

	assert.Equal(t, []string{application.MessageNotUnderstood, application.MessageNotUnderstood}, messages)
	require.Len(t, h.observer.reports, 2)
	for _, report := range h.observer.reports {
		assert.Equal(t, domain.KindRecognitionMiss, report.Outcome)
		assert.False(t, report.Recognized())
	}
}

func TestAssistant_TranscriptionFailureIsMiss(t *testing.T) {
	h := newHarness("clip")
	h.stt.err = errors.New("whisper unavailable")

	messages := h.run(t, 1)

	assert.Equal(t, []string{application.MessageNotUnderstood}, messages)
	require.Len(t, h.observer.reports, 1)
	assert.ErrorIs(t, h.observer.reports[0].Err, domain.ErrRecognitionMiss)
}

func TestAssistant_ValidationFailureSkipsExecution(t *testing.T) {
	h := newHarness(domain.TextCommandPrefix + "set volume to loud")

	messages := h.run(t, 1)

	assert.Equal(t, []string{"Sorry, I need a volume level for that command."}, messages)
	assert.Empty(t, h.volume.writes)
	require.Len(t, h.observer.reports, 1)
	assert.Equal(t, domain.KindValidation, h.observer.reports[0].Outcome)
}

func TestAssistant_ExecutionErrorContinues(t *testing.T) {
	h := newHarness(domain.TextCommandPrefix+"next track", domain.TextCommandPrefix+"volume up")
	h.spotify.err = errors.New("spotify is not running")

	messages := h.run(t, 2)

	assert.Equal(t, []string{application.MessageFailed, "Volume up."}, messages)
	assert.Equal(t, []int{60}, h.volume.writes)
	require.Len(t, h.observer.reports, 2)
	assert.Equal(t, domain.KindExecution, h.observer.reports[0].Outcome)
	assert.Equal(t, domain.KindNone, h.observer.reports[1].Outcome)
}

func TestAssistant_StartFailure(t *testing.T) {
	h := newHarness()
	h.source.startErr = errors.New("no input device")

	err := h.assistant().Run(context.Background())
	assert.ErrorIs(t, err, h.source.startErr)
}
