package browser

import (
	"context"
	"fmt"
	"log/slog"
	"os/exec"
	"runtime"
)

// Launcher opens URLs in the user's default browser.
type Launcher struct {
	command string
	logger  *slog.Logger
}

func NewLauncher(logger *slog.Logger) *Launcher {
	return NewLauncherWithCommand(defaultCommand(runtime.GOOS), logger)
}

func NewLauncherWithCommand(command string, logger *slog.Logger) *Launcher {
	return &Launcher{
		command: command,
		logger:  logger,
	}
}

func defaultCommand(goos string) string {
	switch goos {
	case "darwin":
		return "open"
	case "windows":
		return "explorer"
	default:
		return "xdg-open"
	}
}

func (l *Launcher) Open(ctx context.Context, url string) error {
	l.logger.Debug("opening url", "command", l.command, "url", url)

	out, err := exec.CommandContext(ctx, l.command, url).CombinedOutput()
	if err != nil {
		return fmt.Errorf("opening %s with %s: %w (%s)", url, l.command, err, out)
	}
	return nil
}
