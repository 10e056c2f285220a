package youtube

import (
	"context"
	"fmt"
	"log/slog"

	"nova-assistant/internal/infra/osascript"
)

type Searcher interface {
	Search(ctx context.Context, query string) (string, error)
}

type URLOpener interface {
	Open(ctx context.Context, url string) error
}

type ScriptRunner interface {
	Run(ctx context.Context, script string) (string, error)
}

const (
	jsPause    = "document.querySelector('video').pause()"
	jsResume   = "document.querySelector('video').play()"
	jsNext     = "document.querySelector('.ytp-next-button').click()"
	jsPrevious = "document.querySelector('.ytp-prev-button').click()"
)

// Player opens search results in the default browser and controls the
// playing video through JavaScript in Chrome's active tab.
type Player struct {
	search Searcher
	opener URLOpener
	runner ScriptRunner
	logger *slog.Logger
}

func NewPlayer(search Searcher, opener URLOpener, runner ScriptRunner, logger *slog.Logger) *Player {
	return &Player{
		search: search,
		opener: opener,
		runner: runner,
		logger: logger,
	}
}

func (p *Player) Play(ctx context.Context, query string) error {
	p.logger.Info("searching youtube", "query", query)

	link, err := p.search.Search(ctx, query)
	if err != nil {
		return fmt.Errorf("youtube play: %w", err)
	}

	p.logger.Info("opening youtube video", "url", link)
	if err := p.opener.Open(ctx, link); err != nil {
		return fmt.Errorf("youtube play: %w", err)
	}
	return nil
}

func (p *Player) Pause(ctx context.Context) error {
	return p.execute(ctx, "pause", jsPause)
}

func (p *Player) Resume(ctx context.Context) error {
	return p.execute(ctx, "resume", jsResume)
}

func (p *Player) Next(ctx context.Context) error {
	return p.execute(ctx, "next", jsNext)
}

func (p *Player) Previous(ctx context.Context) error {
	return p.execute(ctx, "previous", jsPrevious)
}

func (p *Player) execute(ctx context.Context, op, js string) error {
	script := fmt.Sprintf("tell application \"Google Chrome\" to execute front window's active tab javascript %s", osascript.Quote(js))
	if _, err := p.runner.Run(ctx, script); err != nil {
		return fmt.Errorf("youtube %s: %w", op, err)
	}
	p.logger.Debug("youtube command sent", "op", op)
	return nil
}
