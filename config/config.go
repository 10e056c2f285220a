package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"nova-assistant/internal/domain"
)

type Config struct {
	Audio      AudioConfig      `yaml:"audio"`
	Wake       WakeConfig       `yaml:"wake"`
	STT        STTConfig        `yaml:"stt"`
	Intent     IntentConfig     `yaml:"intent"`
	OpenAI     OpenAIConfig     `yaml:"openai"`
	Gemini     GeminiConfig     `yaml:"gemini"`
	Anthropic  AnthropicConfig  `yaml:"anthropic"`
	ElevenLabs ElevenLabsConfig `yaml:"elevenlabs"`
	Platforms  PlatformsConfig  `yaml:"platforms"`
	Pushover   PushoverConfig   `yaml:"pushover"`
	Metrics    MetricsConfig    `yaml:"metrics"`
	Sentry     SentryConfig     `yaml:"sentry"`
	Log        LogConfig        `yaml:"log"`
}

type AudioConfig struct {
	Source          string        `yaml:"source"`
	HTTPAddr        string        `yaml:"http_addr"`
	FileDir         string        `yaml:"file_dir"`
	SampleRate      int           `yaml:"sample_rate"`
	CommandDuration time.Duration `yaml:"command_duration"`
	AuthToken       string        `yaml:"auth_token"`
	RateLimit       int           `yaml:"rate_limit"`
}

type WakeConfig struct {
	Enabled   bool          `yaml:"enabled"`
	Phrase    string        `yaml:"phrase"`
	Window    time.Duration `yaml:"window"`
	Threshold float64       `yaml:"threshold"`
}

type STTConfig struct {
	Provider string `yaml:"provider"`
	Language string `yaml:"language"`
}

type IntentConfig struct {
	Strategy  string        `yaml:"strategy"`
	Provider  string        `yaml:"provider"`
	RulesFile string        `yaml:"rules_file"`
	Breaker   BreakerConfig `yaml:"breaker"`
}

type BreakerConfig struct {
	MaxFailures uint32        `yaml:"max_failures"`
	OpenTimeout time.Duration `yaml:"open_timeout"`
}

type OpenAIConfig struct {
	APIKey string `yaml:"api_key"`
	Model  string `yaml:"model"`
}

type GeminiConfig struct {
	APIKey string `yaml:"api_key"`
	Model  string `yaml:"model"`
}

type AnthropicConfig struct {
	APIKey string `yaml:"api_key"`
	Model  string `yaml:"model"`
}

type ElevenLabsConfig struct {
	APIKey string `yaml:"api_key"`
}

type PlatformsConfig struct {
	Spotify PlatformConfig `yaml:"spotify"`
	YouTube PlatformConfig `yaml:"youtube"`
	// Osascript is the automation binary, "osascript" unless overridden.
	Osascript string `yaml:"osascript"`
}

type PlatformConfig struct {
	Enabled *bool `yaml:"enabled"`
}

// On reports whether the platform is enabled. Platforms default to on.
func (p PlatformConfig) On() bool {
	return p.Enabled == nil || *p.Enabled
}

type PushoverConfig struct {
	Token   string `yaml:"token"`
	UserKey string `yaml:"user_key"`
	Enabled bool   `yaml:"enabled"`
}

type MetricsConfig struct {
	Enabled bool   `yaml:"enabled"`
	Addr    string `yaml:"addr"`
}

type SentryConfig struct {
	DSN         string `yaml:"dsn"`
	Environment string `yaml:"environment"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	// Dir receives a timestamped log file per run. "-" disables file logging.
	Dir string `yaml:"dir"`
}

const LogDirDisabled = "-"

const (
	SourceHTTP       = "http"
	SourceFile       = "file"
	SourceMicrophone = "microphone"

	STTNone       = "none"
	STTOpenAI     = "openai"
	STTElevenLabs = "elevenlabs"

	StrategyKeyword  = "keyword"
	StrategyModel    = "model"
	StrategyFallback = "fallback"

	ProviderOpenAI    = "openai"
	ProviderGemini    = "gemini"
	ProviderAnthropic = "anthropic"
)

// Load reads an optional .env next to the process, then the YAML file at path
// with environment variables expanded.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("loading .env: %w", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	return Parse(data)
}

func Parse(data []byte) (*Config, error) {
	expanded := os.ExpandEnv(string(data))

	var cfg Config
	if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	cfg.setDefaults()

	return &cfg, nil
}

func (c *Config) setDefaults() {
	if c.Audio.Source == "" {
		c.Audio.Source = SourceHTTP
	}
	if c.Audio.HTTPAddr == "" {
		c.Audio.HTTPAddr = ":8080"
	}
	if c.Audio.FileDir == "" {
		c.Audio.FileDir = "./audio"
	}
	if c.Audio.SampleRate == 0 {
		c.Audio.SampleRate = 16000
	}
	if c.Audio.CommandDuration == 0 {
		c.Audio.CommandDuration = 5 * time.Second
	}
	if c.Audio.RateLimit == 0 {
		c.Audio.RateLimit = 30
	}
	if c.Wake.Phrase == "" {
		c.Wake.Phrase = "hey nova"
	}
	if c.Wake.Window == 0 {
		c.Wake.Window = 2 * time.Second
	}
	if c.Wake.Threshold == 0 {
		c.Wake.Threshold = 500
	}
	if c.STT.Provider == "" {
		c.STT.Provider = STTOpenAI
	}
	if c.STT.Language == "" {
		c.STT.Language = "en"
	}
	if c.Intent.Strategy == "" {
		c.Intent.Strategy = StrategyKeyword
	}
	if c.Intent.Provider == "" {
		c.Intent.Provider = ProviderOpenAI
	}
	if c.Intent.Breaker.MaxFailures == 0 {
		c.Intent.Breaker.MaxFailures = 3
	}
	if c.Intent.Breaker.OpenTimeout == 0 {
		c.Intent.Breaker.OpenTimeout = 30 * time.Second
	}
	if c.OpenAI.Model == "" {
		c.OpenAI.Model = "gpt-4o-mini"
	}
	if c.Gemini.Model == "" {
		c.Gemini.Model = "gemini-2.0-flash"
	}
	if c.Anthropic.Model == "" {
		c.Anthropic.Model = "claude-sonnet-4-20250514"
	}
	if c.Platforms.Osascript == "" {
		c.Platforms.Osascript = "osascript"
	}
	if c.Metrics.Addr == "" {
		c.Metrics.Addr = ":9090"
	}
	if c.Sentry.Environment == "" {
		c.Sentry.Environment = "development"
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "text"
	}
	if c.Log.Dir == "" {
		c.Log.Dir = "logs"
	}
}

// UsesModel reports whether the selected strategy calls a language model.
func (c *Config) UsesModel() bool {
	return c.Intent.Strategy == StrategyModel || c.Intent.Strategy == StrategyFallback
}

// Validate checks enum values and that every selected back-end has its
// credentials. Any failure is a *domain.ConfigError.
func (c *Config) Validate() error {
	switch c.Audio.Source {
	case SourceHTTP, SourceFile, SourceMicrophone:
	default:
		return invalid("audio.source", c.Audio.Source)
	}

	switch c.STT.Provider {
	case STTNone:
		if c.Audio.Source == SourceMicrophone {
			return &domain.ConfigError{Field: "stt.provider", Message: "microphone source needs a speech-to-text provider"}
		}
	case STTOpenAI:
		if c.OpenAI.APIKey == "" {
			return missing("openai.api_key", "stt.provider=openai")
		}
	case STTElevenLabs:
		if c.ElevenLabs.APIKey == "" {
			return missing("elevenlabs.api_key", "stt.provider=elevenlabs")
		}
	default:
		return invalid("stt.provider", c.STT.Provider)
	}

	if c.Wake.Enabled && c.Audio.Source != SourceMicrophone {
		return &domain.ConfigError{Field: "wake.enabled", Message: "wake phrase detection needs the microphone source"}
	}

	switch c.Intent.Strategy {
	case StrategyKeyword, StrategyModel, StrategyFallback:
	default:
		return invalid("intent.strategy", c.Intent.Strategy)
	}

	if c.UsesModel() {
		switch c.Intent.Provider {
		case ProviderOpenAI:
			if c.OpenAI.APIKey == "" {
				return missing("openai.api_key", "intent.provider=openai")
			}
		case ProviderGemini:
			if c.Gemini.APIKey == "" {
				return missing("gemini.api_key", "intent.provider=gemini")
			}
		case ProviderAnthropic:
			if c.Anthropic.APIKey == "" {
				return missing("anthropic.api_key", "intent.provider=anthropic")
			}
		default:
			return invalid("intent.provider", c.Intent.Provider)
		}
	}

	if c.Pushover.Enabled && (c.Pushover.Token == "" || c.Pushover.UserKey == "") {
		return missing("pushover.token/pushover.user_key", "pushover.enabled")
	}

	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		return invalid("log.level", c.Log.Level)
	}
	switch c.Log.Format {
	case "text", "json":
	default:
		return invalid("log.format", c.Log.Format)
	}

	return nil
}

func missing(field, requiredBy string) error {
	return &domain.ConfigError{Field: field, Message: "required by " + requiredBy}
}

func invalid(field, value string) error {
	return &domain.ConfigError{Field: field, Message: fmt.Sprintf("unknown value %q", value)}
}
