package intent

import (
	"context"
	"log/slog"
	"sort"
	"strings"

	"nova-assistant/internal/domain"
)

// KeywordMatcher is the deterministic, rule-based interpretation strategy.
// It never touches the network and returns the same Command for the same text.
type KeywordMatcher struct {
	rules  Rules
	logger *slog.Logger
}

func NewKeywordMatcher(rules Rules, logger *slog.Logger) *KeywordMatcher {
	return &KeywordMatcher{
		rules:  rules,
		logger: logger,
	}
}

func (m *KeywordMatcher) Name() string {
	return "keyword"
}

func (m *KeywordMatcher) Interpret(_ context.Context, text string) (domain.Command, bool) {
	cmd, stage, ok := m.Match(text)
	if !ok {
		m.logger.Debug("no keyword rule matched", "text", text)
		return domain.Command{}, false
	}

	m.logger.Debug("keyword rule matched", "stage", stage, "command", cmd)
	return cmd, true
}

// Match runs the stages in Priority order and reports which one matched.
func (m *KeywordMatcher) Match(text string) (domain.Command, Stage, bool) {
	normalized := strings.ToLower(strings.TrimSpace(text))
	if normalized == "" {
		return domain.Command{}, "", false
	}

	for _, stage := range Priority {
		var (
			cmd domain.Command
			ok  bool
		)
		switch stage {
		case StageVolume:
			cmd, ok = m.matchVolume(normalized)
		case StageTransport:
			cmd, ok = m.matchTransport(normalized)
		case StagePlay:
			cmd, ok = m.matchPlay(normalized)
		}
		if ok {
			return cmd, stage, true
		}
	}

	return domain.Command{}, "", false
}

func (m *KeywordMatcher) matchVolume(text string) (domain.Command, bool) {
	for _, action := range volumeOrder {
		phrase, ok := firstPhrase(text, m.rules.Volume[action])
		if !ok {
			continue
		}

		var level *int
		if action == domain.ActionSetVolume {
			level = volumeAfter(text, phrase)
		}

		cmd, err := domain.NewCommand(action, "", "", level)
		return cmd, err == nil
	}
	return domain.Command{}, false
}

func (m *KeywordMatcher) matchTransport(text string) (domain.Command, bool) {
	for _, action := range transportOrder {
		if _, ok := firstPhrase(text, m.rules.Transport[action]); !ok {
			continue
		}

		cmd, err := domain.NewCommand(action, m.detectPlatform(text), "", nil)
		return cmd, err == nil
	}
	return domain.Command{}, false
}

func (m *KeywordMatcher) matchPlay(text string) (domain.Command, bool) {
	if !strings.Contains(text, PlayTrigger) {
		return domain.Command{}, false
	}

	platform := m.detectPlatform(text)
	song := stripPhrases(text, m.rules.Play, m.rules.Platforms[platform])

	cmd, err := domain.NewCommand(domain.ActionPlay, platform, song, nil)
	return cmd, err == nil
}

func (m *KeywordMatcher) detectPlatform(text string) domain.Platform {
	for _, platform := range domain.Platforms {
		if _, ok := firstPhrase(text, m.rules.Platforms[platform]); ok {
			return platform
		}
	}
	return domain.DefaultPlatform
}

func firstPhrase(text string, phrases []string) (string, bool) {
	for _, phrase := range phrases {
		if phrase != "" && strings.Contains(text, phrase) {
			return phrase, true
		}
	}
	return "", false
}

// volumeAfter parses the first word following phrase. A word that is not a
// number leaves the level unset, which the dispatcher reports as invalid.
func volumeAfter(text, phrase string) *int {
	idx := strings.Index(text, phrase)
	fields := strings.Fields(text[idx+len(phrase):])
	if len(fields) == 0 {
		return nil
	}

	level, err := domain.ParseVolumeLevel(fields[0])
	if err != nil {
		return nil
	}
	return &level
}

// stripPhrases removes every occurrence of every phrase, longest first so
// "on youtube" goes before "youtube" gets a chance to orphan the "on".
// Phrases are removed even inside words and only the ends are trimmed.
func stripPhrases(text string, phraseSets ...[]string) string {
	var phrases []string
	for _, set := range phraseSets {
		phrases = append(phrases, set...)
	}
	sort.SliceStable(phrases, func(i, j int) bool {
		return len(phrases[i]) > len(phrases[j])
	})

	for _, phrase := range phrases {
		if phrase == "" {
			continue
		}
		text = strings.ReplaceAll(text, phrase, "")
	}

	return strings.TrimSpace(text)
}
