package spotify

import (
	"context"
	"fmt"
	"log/slog"

	"nova-assistant/internal/infra/osascript"
)

type ScriptRunner interface {
	Run(ctx context.Context, script string) (string, error)
}

// Player drives the Spotify desktop app through AppleScript.
type Player struct {
	runner ScriptRunner
	logger *slog.Logger
}

func NewPlayer(runner ScriptRunner, logger *slog.Logger) *Player {
	return &Player{
		runner: runner,
		logger: logger,
	}
}

func (p *Player) Play(ctx context.Context, query string) error {
	uri := "spotify:search:" + query
	p.logger.Info("playing on spotify", "query", query, "uri", uri)

	script := fmt.Sprintf("tell application \"Spotify\"\n\tactivate\n\tplay track %s\nend tell", osascript.Quote(uri))
	return p.tell(ctx, "play", script)
}

func (p *Player) Pause(ctx context.Context) error {
	return p.tell(ctx, "pause", `tell application "Spotify" to pause`)
}

func (p *Player) Resume(ctx context.Context) error {
	return p.tell(ctx, "resume", `tell application "Spotify" to play`)
}

func (p *Player) Next(ctx context.Context) error {
	return p.tell(ctx, "next", `tell application "Spotify" to next track`)
}

func (p *Player) Previous(ctx context.Context) error {
	return p.tell(ctx, "previous", `tell application "Spotify" to previous track`)
}

func (p *Player) tell(ctx context.Context, op, script string) error {
	if _, err := p.runner.Run(ctx, script); err != nil {
		return fmt.Errorf("spotify %s: %w", op, err)
	}
	p.logger.Debug("spotify command sent", "op", op)
	return nil
}
