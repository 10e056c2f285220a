package domain

import (
	"fmt"
	"strconv"
	"strings"
)

const (
	MinVolume  = 0
	MaxVolume  = 100
	VolumeStep = 10
)

func ClampVolume(level int) int {
	if level < MinVolume {
		return MinVolume
	}
	if level > MaxVolume {
		return MaxVolume
	}
	return level
}

// ParseVolumeLevel strips everything but digits and periods from s and then
// requires the remainder to be a well-formed number. "75%" yields 75, "1.2.3"
// is rejected rather than guessed at. Fractions are truncated.
func ParseVolumeLevel(s string) (int, error) {
	sanitized := strings.Map(func(r rune) rune {
		if (r >= '0' && r <= '9') || r == '.' {
			return r
		}
		return -1
	}, s)

	if sanitized == "" {
		return 0, fmt.Errorf("%w: %q has no digits", ErrInvalidVolume, s)
	}

	value, err := strconv.ParseFloat(sanitized, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidVolume, s)
	}

	return int(value), nil
}
