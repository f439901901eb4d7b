package detection

import "errors"

// Sentinel errors for detector construction and inference.
var (
	// ErrModelNotFound is returned when a model file does not exist.
	ErrModelNotFound = errors.New("detection: model file not found")

	// ErrUnavailable is returned when a backend is not compiled in or cannot be reached.
	ErrUnavailable = errors.New("detection: backend unavailable")

	// ErrUnknownBackend is returned by Open for an unrecognized backend name.
	ErrUnknownBackend = errors.New("detection: unknown backend")
)
