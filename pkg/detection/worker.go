package detection

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/teslashibe/go-wayfinder/internal/log"
	"github.com/teslashibe/go-wayfinder/pkg/bus"
	"github.com/teslashibe/go-wayfinder/pkg/control"
	"github.com/teslashibe/go-wayfinder/pkg/protocol"
	"github.com/teslashibe/go-wayfinder/pkg/stats"
)

// StageName identifies the detector stage in logs and stats.
const StageName = "detect"

// Worker consumes frames, runs the detector and publishes one
// DetectionResult per frame.
type Worker struct {
	frames *bus.FrameSubscription
	events *bus.EventChannel
	det    *Guard
	ctrl   *control.Store
	stats  *stats.Recorder
	log    *slog.Logger
}

// NewWorker creates a detector stage. The frame subscription must be taken
// before the frame source starts publishing.
func NewWorker(frames *bus.FrameSubscription, events *bus.EventChannel, det Detector, ctrl *control.Store, rec *stats.Recorder) *Worker {
	logger := log.Component(StageName)
	return &Worker{
		frames: frames,
		events: events,
		det:    NewGuard(det, logger),
		ctrl:   ctrl,
		stats:  rec,
		log:    logger,
	}
}

// Process detects objects in frame and applies the current confidence
// threshold. It never fails.
func (w *Worker) Process(ctx context.Context, frame protocol.FramePacket) protocol.DetectionResult {
	start := time.Now()
	res, _ := w.det.Detect(ctx, frame)
	res.Objects = FilterConfidence(res.Objects, w.ctrl.Load().DetectionConfThreshold)
	w.stats.Since(StageName, start)
	return res
}

// Run processes frames until ctx is canceled or the frame channel closes.
func (w *Worker) Run(ctx context.Context) error {
	w.log.Info("detector stage started")
	defer w.log.Info("detector stage stopped", "failures", w.det.Failures())

	for {
		frame, err := w.frames.Next(ctx)
		if err != nil {
			if errors.Is(err, bus.ErrClosed) || ctx.Err() != nil {
				return nil
			}
			return err
		}

		res := w.Process(ctx, frame)
		if ctx.Err() != nil {
			return nil
		}
		if err := w.events.Publish(res); err != nil {
			return nil
		}
		w.log.Debug("frame processed", "frame_id", frame.FrameID, "objects", len(res.Objects))
	}
}

// Failures returns how many frames the detector failed on.
func (w *Worker) Failures() uint64 {
	return w.det.Failures()
}

// Close releases the frame subscription. The detector itself is owned by
// the caller.
func (w *Worker) Close() {
	w.frames.Close()
}
