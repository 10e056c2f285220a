package audio

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"nova-assistant/internal/domain"
)

const processedSuffix = ".processed"

var audioExtensions = []string{".wav", ".mp3", ".m4a", ".webm"}

// FileSource polls a directory. Audio files are returned as recorded
// utterances and .txt files as text commands. A file is claimed by renaming
// it with a .processed suffix, in name order.
type FileSource struct {
	dir      string
	interval time.Duration
	seen     map[string]struct{}
	logger   *slog.Logger
}

func NewFileSource(dir string, logger *slog.Logger) *FileSource {
	return &FileSource{
		dir:      dir,
		interval: 500 * time.Millisecond,
		seen:     make(map[string]struct{}),
		logger:   logger,
	}
}

func (f *FileSource) Name() string {
	return "file"
}

func (f *FileSource) Start(_ context.Context) error {
	if err := os.MkdirAll(f.dir, 0755); err != nil {
		return fmt.Errorf("creating audio dir: %w", err)
	}
	f.logger.Info("watching directory for commands", "dir", f.dir)
	return nil
}

func (f *FileSource) Stop() error {
	return nil
}

func (f *FileSource) NextCommand(ctx context.Context) ([]byte, error) {
	ticker := time.NewTicker(f.interval)
	defer ticker.Stop()

	for {
		path, err := f.nextPending()
		if err != nil {
			return nil, err
		}
		if path != "" {
			return f.claim(path)
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-ticker.C:
		}
	}
}

// nextPending returns the first unclaimed command file, or "" when none.
func (f *FileSource) nextPending() (string, error) {
	entries, err := os.ReadDir(f.dir)
	if err != nil {
		return "", fmt.Errorf("reading dir: %w", err)
	}

	for _, entry := range entries {
		if entry.IsDir() || !isCommandFile(entry.Name()) {
			continue
		}
		path := filepath.Join(f.dir, entry.Name())
		if _, ok := f.seen[path]; !ok {
			return path, nil
		}
	}
	return "", nil
}

func (f *FileSource) claim(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading file %s: %w", path, err)
	}

	f.seen[path] = struct{}{}
	if err := os.Rename(path, path+processedSuffix); err != nil {
		f.logger.Warn("could not mark file processed", "path", path, "error", err)
	}
	f.logger.Info("picked up command file", "path", path, "bytes", len(data))

	if strings.EqualFold(filepath.Ext(path), ".txt") {
		return []byte(domain.TextCommandPrefix + strings.TrimSpace(string(data))), nil
	}
	return data, nil
}

func isCommandFile(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	return ext == ".txt" || slices.Contains(audioExtensions, ext)
}
