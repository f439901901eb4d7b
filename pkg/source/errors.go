package source

import "errors"

// Sentinel errors returned by frame sources.
var (
	// ErrEndOfStream is returned when a frame past the last one is requested.
	ErrEndOfStream = errors.New("source: end of stream")

	// ErrFrameNotFound is returned when an in-range frame cannot be found.
	ErrFrameNotFound = errors.New("source: frame not found")

	// ErrUnsupported is returned by Open for paths it cannot play.
	ErrUnsupported = errors.New("source: unsupported source")
)
