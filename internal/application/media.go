package application

import "context"

// MediaPlayer is the transport surface of one media platform.
type MediaPlayer interface {
	Play(ctx context.Context, query string) error
	Pause(ctx context.Context) error
	Resume(ctx context.Context) error
	Next(ctx context.Context) error
	Previous(ctx context.Context) error
}

// VolumeControl reads and writes the system output volume as a percentage.
// Volume returns an error wrapping domain.ErrVolumeUnknown when the level
// cannot be determined.
type VolumeControl interface {
	Volume(ctx context.Context) (int, error)
	SetVolume(ctx context.Context, level int) error
}
