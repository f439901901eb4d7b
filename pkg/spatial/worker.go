package spatial

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/teslashibe/go-wayfinder/internal/log"
	"github.com/teslashibe/go-wayfinder/pkg/bus"
	"github.com/teslashibe/go-wayfinder/pkg/protocol"
	"github.com/teslashibe/go-wayfinder/pkg/stats"
)

// StageName identifies the classifier stage in logs and stats.
const StageName = "classify"

// Worker runs a Classifier as a pipeline stage.
type Worker struct {
	in         *bus.Subscription[protocol.TrackUpdate]
	events     *bus.EventChannel
	classifier *Classifier
	stats      *stats.Recorder
	log        *slog.Logger
}

// NewWorker creates a classifier stage reading track updates from events.
func NewWorker(events *bus.EventChannel, cfg Config, rec *stats.Recorder) *Worker {
	return &Worker{
		in:         bus.Subscribe[protocol.TrackUpdate](events, StageName),
		events:     events,
		classifier: New(cfg),
		stats:      rec,
		log:        log.Component(StageName),
	}
}

// Run consumes track updates until ctx is canceled or the bus closes.
func (w *Worker) Run(ctx context.Context) error {
	w.log.Info("classifier stage started")
	defer w.log.Info("classifier stage stopped")

	for {
		u, err := w.in.Next(ctx)
		if err != nil {
			if errors.Is(err, bus.ErrClosed) || ctx.Err() != nil {
				return nil
			}
			return err
		}

		start := time.Now()
		g, ok := w.classifier.Classify(u)
		w.stats.Since(StageName, start)
		if !ok {
			continue
		}
		if ctx.Err() != nil {
			return nil
		}
		if err := w.events.Publish(g); err != nil {
			return nil
		}
	}
}

// Close releases the subscription.
func (w *Worker) Close() {
	w.in.Close()
}
