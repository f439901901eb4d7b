package bus

import "errors"

// ErrClosed is returned by Publish and Next once a channel has been closed
// and, for Next, every buffered item has been delivered.
var ErrClosed = errors.New("bus: closed")
