package application

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"nova-assistant/internal/domain"
)

// CommandExecutor runs one Command to completion.
type CommandExecutor interface {
	Execute(ctx context.Context, cmd domain.Command) error
}

// Dispatcher routes a Command to the matching platform adapter. It validates
// the command fully before any adapter is called and never retries.
type Dispatcher struct {
	players map[domain.Platform]MediaPlayer
	volume  VolumeControl
	logger  *slog.Logger
}

func NewDispatcher(players map[domain.Platform]MediaPlayer, volume VolumeControl, logger *slog.Logger) *Dispatcher {
	return &Dispatcher{
		players: players,
		volume:  volume,
		logger:  logger,
	}
}

// Execute returns a *domain.ValidationError when cmd lacks a required field
// and a *domain.ExecutionError when an adapter call fails.
func (d *Dispatcher) Execute(ctx context.Context, cmd domain.Command) error {
	switch cmd.Action {
	case domain.ActionPlay:
		query := strings.TrimSpace(cmd.Song)
		if query == "" {
			return &domain.ValidationError{Action: cmd.Action, Field: "song"}
		}
		return d.media(ctx, cmd, func(p MediaPlayer) error {
			return p.Play(ctx, query)
		})

	case domain.ActionPause:
		return d.media(ctx, cmd, func(p MediaPlayer) error { return p.Pause(ctx) })
	case domain.ActionResume:
		return d.media(ctx, cmd, func(p MediaPlayer) error { return p.Resume(ctx) })
	case domain.ActionNext:
		return d.media(ctx, cmd, func(p MediaPlayer) error { return p.Next(ctx) })
	case domain.ActionPrevious:
		return d.media(ctx, cmd, func(p MediaPlayer) error { return p.Previous(ctx) })

	case domain.ActionVolumeUp:
		return d.stepVolume(ctx, cmd.Action, domain.VolumeStep)
	case domain.ActionVolumeDown:
		return d.stepVolume(ctx, cmd.Action, -domain.VolumeStep)

	case domain.ActionSetVolume:
		level, ok := cmd.Level()
		if !ok {
			return &domain.ValidationError{Action: cmd.Action, Field: "volume_level"}
		}
		return d.setVolume(ctx, cmd.Action, domain.ClampVolume(level))

	default:
		d.logger.Warn("ignoring command with unknown action", "command", cmd)
		return nil
	}
}

func (d *Dispatcher) media(ctx context.Context, cmd domain.Command, op func(MediaPlayer) error) error {
	player, ok := d.players[cmd.Platform]
	if !ok {
		d.logger.Warn("no player for platform, skipping", "command", cmd)
		return nil
	}

	d.logger.Info("dispatching", "command", cmd)
	if err := op(player); err != nil {
		return &domain.ExecutionError{Action: cmd.Action, Platform: cmd.Platform, Err: err}
	}
	return nil
}

func (d *Dispatcher) stepVolume(ctx context.Context, action domain.Action, delta int) error {
	current, err := d.volume.Volume(ctx)
	if err != nil {
		d.logger.Warn("current volume unknown, not adjusting", "action", action, "error", err)
		return &domain.ExecutionError{Action: action, Err: fmt.Errorf("reading volume: %w", err)}
	}

	return d.setVolume(ctx, action, domain.ClampVolume(current+delta))
}

func (d *Dispatcher) setVolume(ctx context.Context, action domain.Action, level int) error {
	d.logger.Info("setting volume", "action", action, "level", level)
	if err := d.volume.SetVolume(ctx, level); err != nil {
		return &domain.ExecutionError{Action: action, Err: fmt.Errorf("setting volume to %d: %w", level, err)}
	}
	return nil
}
