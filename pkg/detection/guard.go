package detection

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"

	"github.com/teslashibe/go-wayfinder/internal/log"
	"github.com/teslashibe/go-wayfinder/pkg/protocol"
)

// Guard wraps a Detector so that errors, panics and malformed output never
// reach the pipeline. A failed frame yields an empty DetectionResult.
type Guard struct {
	inner    Detector
	log      *slog.Logger
	failures atomic.Uint64
}

// NewGuard wraps d. A nil logger uses the package component logger.
func NewGuard(d Detector, logger *slog.Logger) *Guard {
	if logger == nil {
		logger = log.Component("detector")
	}
	return &Guard{inner: d, log: logger}
}

// Detect implements Detector. The returned error is always nil.
func (g *Guard) Detect(ctx context.Context, frame protocol.FramePacket) (res protocol.DetectionResult, _ error) {
	defer func() {
		if r := recover(); r != nil {
			g.failures.Add(1)
			g.log.Warn("detector panicked", "frame_id", frame.FrameID, "panic", fmt.Sprint(r))
			res = resultFor(frame, nil)
		}
	}()

	out, err := g.inner.Detect(ctx, frame)
	if err != nil {
		g.failures.Add(1)
		g.log.Warn("detector failed", "frame_id", frame.FrameID, "error", err)
		return resultFor(frame, nil), nil
	}

	// Backends may not stamp the frame; the pipeline relies on it.
	return resultFor(frame, Sanitize(out.Objects)), nil
}

// Close closes the wrapped detector.
func (g *Guard) Close() error {
	return g.inner.Close()
}

// Failures returns how many frames failed.
func (g *Guard) Failures() uint64 {
	return g.failures.Load()
}
