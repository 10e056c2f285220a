package intent

import (
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"nova-assistant/internal/domain"
)

// Stage is one category of keyword rules.
type Stage string

const (
	StageVolume    Stage = "volume"
	StageTransport Stage = "transport"
	StagePlay      Stage = "play"
)

// Priority is the order in which stages are tried; the first stage that
// matches decides the command. Volume beats transport beats play because
// transport words show up inside song requests ("turn up the volume on
// spotify", "play back in black").
var Priority = []Stage{StageVolume, StageTransport, StagePlay}

// set_volume goes last: "volume to" also occurs in "turn up the volume to 80".
var (
	volumeOrder    = []domain.Action{domain.ActionVolumeUp, domain.ActionVolumeDown, domain.ActionSetVolume}
	transportOrder = []domain.Action{domain.ActionPause, domain.ActionResume, domain.ActionNext, domain.ActionPrevious}
)

// PlayTrigger is the literal that opens the play stage.
const PlayTrigger = "play"

//go:embed rules.yaml
var defaultRules []byte

// Rules holds the phrase sets used by KeywordMatcher.
type Rules struct {
	Volume    map[domain.Action][]string   `yaml:"volume"`
	Transport map[domain.Action][]string   `yaml:"transport"`
	Play      []string                     `yaml:"play"`
	Platforms map[domain.Platform][]string `yaml:"platforms"`
}

// DefaultRules returns the built-in phrase sets.
func DefaultRules() Rules {
	rules, err := ParseRules(defaultRules)
	if err != nil {
		panic(fmt.Sprintf("embedded keyword rules: %v", err))
	}
	return rules
}

// LoadRules reads phrase sets from a YAML file. An empty path yields DefaultRules.
func LoadRules(path string) (Rules, error) {
	if path == "" {
		return DefaultRules(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return Rules{}, fmt.Errorf("reading keyword rules: %w", err)
	}

	return ParseRules(data)
}

func ParseRules(data []byte) (Rules, error) {
	var rules Rules
	if err := yaml.Unmarshal(data, &rules); err != nil {
		return Rules{}, fmt.Errorf("parsing keyword rules: %w", err)
	}

	if err := rules.validate(); err != nil {
		return Rules{}, err
	}

	return rules, nil
}

func (r Rules) validate() error {
	for action := range r.Volume {
		if !contains(volumeOrder, action) {
			return fmt.Errorf("keyword rules: %q is not a volume action", action)
		}
	}
	for action := range r.Transport {
		if !contains(transportOrder, action) {
			return fmt.Errorf("keyword rules: %q is not a transport action", action)
		}
	}
	for platform := range r.Platforms {
		if !platform.Valid() {
			return fmt.Errorf("keyword rules: unknown platform %q", platform)
		}
	}
	if len(r.Play) == 0 {
		return fmt.Errorf("keyword rules: play triggers are required")
	}
	return nil
}

func contains[T comparable](items []T, v T) bool {
	for _, item := range items {
		if item == v {
			return true
		}
	}
	return false
}
