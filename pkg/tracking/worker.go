package tracking

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

// StageName identifies the tracker stage in logs and stats.
const StageName = "track"

// Worker runs a Tracker as a pipeline stage.
type Worker struct {
	in      *bus.Subscription[protocol.DetectionResult]
	events  *bus.EventChannel
	tracker *Tracker
	ctrl    *control.Store
	stats   *stats.Recorder
	log     *slog.Logger
}

// NewWorker creates a tracker stage reading detection results from events.
// The subscription is taken immediately.
func NewWorker(events *bus.EventChannel, cfg Config, ctrl *control.Store, rec *stats.Recorder) *Worker {
	return &Worker{
		in:      bus.Subscribe[protocol.DetectionResult](events, StageName),
		events:  events,
		tracker: New(cfg),
		ctrl:    ctrl,
		stats:   rec,
		log:     log.Component(StageName),
	}
}

// Process updates the tracker with res using the current IoU threshold.
func (w *Worker) Process(res protocol.DetectionResult) []protocol.TrackUpdate {
	start := time.Now()
	updates := w.tracker.Update(res, w.ctrl.Load().TrackerIoUThreshold)
	w.stats.Since(StageName, start)
	return updates
}

// Run consumes detection results until ctx is canceled or the bus closes.
// A frame's updates are published together after the whole frame is
// processed, or not at all.
func (w *Worker) Run(ctx context.Context) error {
	w.log.Info("tracker stage started")
	defer w.log.Info("tracker stage stopped", "live", w.tracker.Live(), "removed", w.tracker.Removed())

	for {
		res, err := w.in.Next(ctx)
		if err != nil {
			if errors.Is(err, bus.ErrClosed) || ctx.Err() != nil {
				return nil
			}
			return err
		}

		updates := w.Process(res)
		if ctx.Err() != nil {
			return nil
		}
		if err := bus.PublishBatch(w.events, updates); err != nil {
			return nil
		}
	}
}

// Close releases the subscription.
func (w *Worker) Close() {
	w.in.Close()
}
