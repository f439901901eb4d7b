package control

import "errors"

// Sentinel errors for rejected commands. State is never modified when one is returned.
var (
	// ErrUnknownCommand is returned for a command kind the store does not handle.
	ErrUnknownCommand = errors.New("control: unknown command")

	// ErrInvalidValue is returned when a command carries a missing or out-of-range value.
	ErrInvalidValue = errors.New("control: invalid value")
)
