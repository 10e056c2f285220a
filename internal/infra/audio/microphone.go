//go:build portaudio
// +build portaudio

package audio

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/gordonklaus/portaudio"
)

const framesPerBuffer = 1024

// MicrophoneSource records fixed-length utterances from the default input device.
type MicrophoneSource struct {
	stream     *portaudio.Stream
	frame      []int16
	sampleRate int
	duration   time.Duration
	logger     *slog.Logger

	mu sync.Mutex
}

func NewMicrophoneSource(sampleRate int, duration time.Duration, logger *slog.Logger) *MicrophoneSource {
	return &MicrophoneSource{
		sampleRate: sampleRate,
		duration:   duration,
		logger:     logger,
		frame:      make([]int16, framesPerBuffer),
	}
}

func (m *MicrophoneSource) Name() string {
	return "microphone"
}

func (m *MicrophoneSource) Start(_ context.Context) error {
	if err := portaudio.Initialize(); err != nil {
		return fmt.Errorf("initializing portaudio: %w", err)
	}

	stream, err := portaudio.OpenDefaultStream(1, 0, float64(m.sampleRate), len(m.frame), m.frame)
	if err != nil {
		portaudio.Terminate()
		return fmt.Errorf("opening stream: %w", err)
	}

	if err := stream.Start(); err != nil {
		stream.Close()
		portaudio.Terminate()
		return fmt.Errorf("starting stream: %w", err)
	}

	m.stream = stream
	m.logger.Info("microphone started", "sampleRate", m.sampleRate, "duration", m.duration)
	return nil
}

func (m *MicrophoneSource) Stop() error {
	if m.stream != nil {
		m.stream.Stop()
		m.stream.Close()
	}
	portaudio.Terminate()
	return nil
}

// NextCommand records one utterance of the configured duration.
func (m *MicrophoneSource) NextCommand(ctx context.Context) ([]byte, error) {
	m.logger.Info("listening for command", "duration", m.duration)
	return m.Record(ctx, m.duration)
}

// Record captures d of audio and returns it as WAV.
func (m *MicrophoneSource) Record(ctx context.Context, d time.Duration) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.stream == nil {
		return nil, fmt.Errorf("microphone not started")
	}

	want := int(float64(m.sampleRate) * d.Seconds())
	samples := make([]int16, 0, want+len(m.frame))

	for len(samples) < want {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		if err := m.stream.Read(); err != nil {
			return nil, fmt.Errorf("reading from stream: %w", err)
		}
		samples = append(samples, m.frame...)
	}

	return EncodeWAV(samples[:want], m.sampleRate), nil
}
