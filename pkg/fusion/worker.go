package fusion

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

// StageName identifies the fusion stage in logs and stats.
const StageName = "fuse"

// Worker runs a Policy as a pipeline stage.
type Worker struct {
	in     *bus.Subscription[protocol.SpatialGuidance]
	events *bus.EventChannel
	policy *Policy
	ctrl   *control.Store
	stats  *stats.Recorder
	log    *slog.Logger
}

// NewWorker creates a fusion stage reading guidance from events.
func NewWorker(events *bus.EventChannel, cfg Config, ctrl *control.Store, rec *stats.Recorder) *Worker {
	return &Worker{
		in:     bus.Subscribe[protocol.SpatialGuidance](events, StageName),
		events: events,
		policy: New(cfg),
		ctrl:   ctrl,
		stats:  rec,
		log:    log.Component(StageName),
	}
}

// Policy returns the worker's policy.
func (w *Worker) Policy() *Policy {
	return w.policy
}

// Run consumes guidance until ctx is canceled or the bus closes.
func (w *Worker) Run(ctx context.Context) error {
	w.log.Info("fusion stage started")
	defer func() {
		announced, suppressed := w.policy.Counts()
		w.log.Info("fusion stage stopped", "announced", announced, "suppressed", suppressed)
	}()

	for {
		g, err := w.in.Next(ctx)
		if err != nil {
			if errors.Is(err, bus.ErrClosed) || ctx.Err() != nil {
				return nil
			}
			return err
		}

		start := time.Now()
		a, ok := w.policy.Decide(g, w.ctrl.Load().FusionCooldown)
		w.stats.Since(StageName, start)
		if !ok {
			w.log.Debug("guidance suppressed", "track_id", g.TrackID, "urgency", g.Urgency)
			continue
		}
		if ctx.Err() != nil {
			return nil
		}
		if err := w.events.Publish(a); err != nil {
			return nil
		}
		w.log.Debug("announcement", "track_id", a.TrackID, "kind", a.Kind, "priority", a.Priority, "text", a.Text)
	}
}

// Close releases the subscription.
func (w *Worker) Close() {
	w.in.Close()
}
