package osascript

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os/exec"
	"strings"
)

// Runner executes AppleScript source through the osascript binary.
type Runner struct {
	binary string
	logger *slog.Logger
}

func NewRunner(logger *slog.Logger) *Runner {
	return NewRunnerWithBinary("osascript", logger)
}

func NewRunnerWithBinary(binary string, logger *slog.Logger) *Runner {
	return &Runner{
		binary: binary,
		logger: logger,
	}
}

// Run executes script and returns its trimmed stdout. A non-zero exit is an
// error carrying stderr.
func (r *Runner) Run(ctx context.Context, script string) (string, error) {
	r.logger.Debug("executing applescript", "script", script)

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, r.binary, "-e", script)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		msg := strings.TrimSpace(stderr.String())
		if msg == "" {
			return "", fmt.Errorf("running %s: %w", r.binary, err)
		}
		return "", fmt.Errorf("running %s: %w: %s", r.binary, err, msg)
	}

	return strings.TrimSpace(stdout.String()), nil
}

// Quote returns s as an AppleScript string literal.
func Quote(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, `"`, `\"`)
	return `"` + s + `"`
}
