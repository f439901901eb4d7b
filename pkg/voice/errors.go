package voice

import "errors"

// ErrSpeakerClosed is returned by Speak after Close.
var ErrSpeakerClosed = errors.New("voice: speaker closed")
