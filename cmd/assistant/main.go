package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"nova-assistant/config"
	"nova-assistant/internal/application"
	"nova-assistant/internal/domain"
	"nova-assistant/internal/infra/anthropic"
	"nova-assistant/internal/infra/audio"
	"nova-assistant/internal/infra/browser"
	"nova-assistant/internal/infra/console"
	"nova-assistant/internal/infra/elevenlabs"
	"nova-assistant/internal/infra/gemini"
	"nova-assistant/internal/infra/metrics"
	"nova-assistant/internal/infra/openai"
	"nova-assistant/internal/infra/osascript"
	"nova-assistant/internal/infra/pushover"
	novasentry "nova-assistant/internal/infra/sentry"
	"nova-assistant/internal/infra/spotify"
	"nova-assistant/internal/infra/volume"
	"nova-assistant/internal/infra/wake"
	"nova-assistant/internal/infra/youtube"
	"nova-assistant/internal/intent"
)

var version = "dev"

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("loading config", "error", err)
		os.Exit(1)
	}

	if err := cfg.Validate(); err != nil {
		slog.Error("invalid configuration", "error", err, "kind", domain.KindOf(err))
		os.Exit(1)
	}

	logger, closeLog, err := setupLogger(cfg.Log)
	if err != nil {
		slog.Error("setting up logger", "error", err)
		os.Exit(1)
	}
	defer closeLog()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		logger.Info("shutting down")
		cancel()
	}()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Error("assistant error", "error", err)
		closeLog()
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	audioSource := createAudioSource(cfg.Audio, logger)

	stt := createSpeechToText(cfg)

	extractor, err := createExtractor(ctx, cfg, logger)
	if err != nil {
		return err
	}

	dispatcher := createDispatcher(cfg.Platforms, logger)

	var wakeDetector application.WakeDetector = application.AlwaysAwake{}
	if cfg.Wake.Enabled {
		if mic, ok := audioSource.(*audio.MicrophoneSource); ok {
			wakeDetector = wake.NewPhraseDetector(mic, stt, wake.Config{
				Phrase:    cfg.Wake.Phrase,
				Window:    cfg.Wake.Window,
				Threshold: cfg.Wake.Threshold,
			}, logger)
		}
	}

	var notifier application.Notifier = console.NewNotifier(os.Stdout)
	if cfg.Pushover.Enabled {
		notifier = pushover.NewClient(cfg.Pushover.Token, cfg.Pushover.UserKey)
	}

	var observers application.Observers

	if cfg.Metrics.Enabled {
		registry := prometheus.NewRegistry()
		registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
		observers = append(observers, metrics.NewObserver(registry))

		server := metrics.NewServer(cfg.Metrics.Addr, registry, logger)
		server.Start()
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := server.Stop(shutdownCtx); err != nil {
				logger.Warn("stopping metrics server", "error", err)
			}
		}()
	}

	if cfg.Sentry.DSN != "" {
		sentryObserver, err := novasentry.NewObserver(novasentry.Options{
			DSN:         cfg.Sentry.DSN,
			Environment: cfg.Sentry.Environment,
			Release:     "nova-assistant@" + version,
		})
		if err != nil {
			return err
		}
		observers = append(observers, sentryObserver)
		defer sentryObserver.Flush(2 * time.Second)
	}

	assistant := application.NewAssistant(
		wakeDetector,
		audioSource,
		stt,
		extractor,
		dispatcher,
		notifier,
		observers,
		logger,
	)

	logger.Info("starting nova assistant",
		"version", version,
		"audio_source", cfg.Audio.Source,
		"stt", cfg.STT.Provider,
		"intent", extractor.Name(),
		"wake", cfg.Wake.Enabled,
	)

	if err := assistant.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

func createAudioSource(cfg config.AudioConfig, logger *slog.Logger) application.AudioSource {
	switch cfg.Source {
	case config.SourceFile:
		return audio.NewFileSource(cfg.FileDir, logger)
	case config.SourceMicrophone:
		return audio.NewMicrophoneSource(cfg.SampleRate, cfg.CommandDuration, logger)
	default:
		return audio.NewHTTPSource(cfg.HTTPAddr, cfg.AuthToken, cfg.RateLimit, logger)
	}
}

func createSpeechToText(cfg *config.Config) application.SpeechToText {
	switch cfg.STT.Provider {
	case config.STTOpenAI:
		return openai.NewWhisperClient(cfg.OpenAI.APIKey, cfg.STT.Language)
	case config.STTElevenLabs:
		return elevenlabs.NewScribeClient(cfg.ElevenLabs.APIKey, cfg.STT.Language)
	default:
		return &application.NoopSTT{}
	}
}

func createExtractor(ctx context.Context, cfg *config.Config, logger *slog.Logger) (application.IntentExtractor, error) {
	rules, err := intent.LoadRules(cfg.Intent.RulesFile)
	if err != nil {
		return nil, &domain.ConfigError{Field: "intent.rules_file", Message: err.Error()}
	}
	keyword := intent.NewKeywordMatcher(rules, logger)

	if !cfg.UsesModel() {
		return keyword, nil
	}

	completer, err := createCompleter(ctx, cfg)
	if err != nil {
		return nil, err
	}

	model := intent.NewSchemaExtractor(completer, intent.BreakerConfig{
		MaxFailures: cfg.Intent.Breaker.MaxFailures,
		OpenTimeout: cfg.Intent.Breaker.OpenTimeout,
	}, logger)

	if cfg.Intent.Strategy == config.StrategyModel {
		return model, nil
	}
	return application.NewFallbackExtractor(keyword, model, logger), nil
}

func createCompleter(ctx context.Context, cfg *config.Config) (intent.Completer, error) {
	switch cfg.Intent.Provider {
	case config.ProviderGemini:
		completer, err := gemini.NewCompleter(ctx, cfg.Gemini.APIKey, cfg.Gemini.Model)
		if err != nil {
			return nil, fmt.Errorf("creating gemini completer: %w", err)
		}
		return completer, nil
	case config.ProviderAnthropic:
		return anthropic.NewClaudeClient(cfg.Anthropic.APIKey, cfg.Anthropic.Model), nil
	default:
		return openai.NewCompleter(cfg.OpenAI.APIKey, cfg.OpenAI.Model), nil
	}
}

func createDispatcher(cfg config.PlatformsConfig, logger *slog.Logger) *application.Dispatcher {
	runner := osascript.NewRunnerWithBinary(cfg.Osascript, logger)

	players := make(map[domain.Platform]application.MediaPlayer)
	if cfg.Spotify.On() {
		players[domain.PlatformSpotify] = spotify.NewPlayer(runner, logger)
	}
	if cfg.YouTube.On() {
		players[domain.PlatformYouTube] = youtube.NewPlayer(
			youtube.NewSearchClient(),
			browser.NewLauncher(logger),
			runner,
			logger,
		)
	}

	return application.NewDispatcher(players, volume.NewSystem(runner, logger), logger)
}

// setupLogger writes to stdout and, unless disabled, to a per-run file under cfg.Dir.
func setupLogger(cfg config.LogConfig) (*slog.Logger, func(), error) {
	var level slog.Level
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}

	var out io.Writer = os.Stdout
	closeFn := func() {}

	if cfg.Dir != "" && cfg.Dir != config.LogDirDisabled {
		if err := os.MkdirAll(cfg.Dir, 0755); err != nil {
			return nil, nil, fmt.Errorf("creating log dir: %w", err)
		}
		name := filepath.Join(cfg.Dir, fmt.Sprintf("nova_%s.log", time.Now().Format("20060102_150405")))
		file, err := os.OpenFile(name, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			return nil, nil, fmt.Errorf("opening log file: %w", err)
		}
		out = io.MultiWriter(os.Stdout, file)
		closeFn = func() { _ = file.Close() }
	}

	var handler slog.Handler
	if cfg.Format == "json" {
		handler = slog.NewJSONHandler(out, opts)
	} else {
		handler = slog.NewTextHandler(out, opts)
	}

	return slog.New(handler), closeFn, nil
}
