package osascript_test

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nova-assistant/internal/infra/osascript"
)

func fakeBinary(t *testing.T, body string) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("shell scripts not supported")
	}

	path := filepath.Join(t.TempDir(), "osascript")
	require.NoError(t, os.WriteFile(path, []byte("#!/bin/sh\n"+body+"\n"), 0o755))
	return path
}

func TestRunner_Run(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	runner := osascript.NewRunnerWithBinary(fakeBinary(t, `printf '  %s\n' "$2"`), logger)

	out, err := runner.Run(context.Background(), `output volume of (get volume settings)`)
	require.NoError(t, err)
	assert.Equal(t, "output volume of (get volume settings)", out)
}

func TestRunner_NonZeroExit(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	runner := osascript.NewRunnerWithBinary(fakeBinary(t, `echo "Spotify got an error" >&2; exit 1`), logger)

	_, err := runner.Run(context.Background(), `tell application "Spotify" to pause`)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Spotify got an error")
}

func TestQuote(t *testing.T) {
	assert.Equal(t, `"hotel california"`, osascript.Quote("hotel california"))
	assert.Equal(t, `"say \"hi\" \\ bye"`, osascript.Quote(`say "hi" \ bye`))
}
