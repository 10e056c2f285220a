package volume

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"

	"nova-assistant/internal/domain"
)

const (
	getScript = "output volume of (get volume settings)"
	setScript = "set volume output volume %d"
)

type ScriptRunner interface {
	Run(ctx context.Context, script string) (string, error)
}

// System controls the macOS output volume.
type System struct {
	runner ScriptRunner
	logger *slog.Logger
}

func NewSystem(runner ScriptRunner, logger *slog.Logger) *System {
	return &System{
		runner: runner,
		logger: logger,
	}
}

// Volume reads the current output level. Any failure, including the
// "missing value" answer of devices without a software volume, wraps
// domain.ErrVolumeUnknown.
func (s *System) Volume(ctx context.Context) (int, error) {
	out, err := s.runner.Run(ctx, getScript)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", domain.ErrVolumeUnknown, err)
	}

	level, err := strconv.Atoi(out)
	if err != nil {
		return 0, fmt.Errorf("%w: unexpected output %q", domain.ErrVolumeUnknown, out)
	}

	s.logger.Debug("current volume", "level", level)
	return level, nil
}

func (s *System) SetVolume(ctx context.Context, level int) error {
	if level < domain.MinVolume || level > domain.MaxVolume {
		return fmt.Errorf("%w: %d", domain.ErrInvalidVolume, level)
	}

	if _, err := s.runner.Run(ctx, fmt.Sprintf(setScript, level)); err != nil {
		return fmt.Errorf("setting volume: %w", err)
	}

	s.logger.Info("volume set", "level", level)
	return nil
}
