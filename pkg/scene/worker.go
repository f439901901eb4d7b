package scene

import (
	"context"
	"errors"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/teslashibe/go-wayfinder/internal/log"
	"github.com/teslashibe/go-wayfinder/internal/timeutil"
	"github.com/teslashibe/go-wayfinder/pkg/bus"
	"github.com/teslashibe/go-wayfinder/pkg/control"
	"github.com/teslashibe/go-wayfinder/pkg/protocol"
)

// Worker feeds a Summarizer from the event bus and publishes a
// SceneDescription every Interval while playback is not paused.
type Worker struct {
	in         *bus.Subscription[protocol.SpatialGuidance]
	events     *bus.EventChannel
	summarizer *Summarizer
	ctrl       *control.Store
	clock      timeutil.Clock
	config     Config
	log        *slog.Logger
}

// NewWorker creates a scene stage. Zero config fields take their defaults
// and a nil clock uses the real clock.
func NewWorker(events *bus.EventChannel, cfg Config, ctrl *control.Store, clock timeutil.Clock) *Worker {
	if clock == nil {
		clock = timeutil.RealClock{}
	}
	cfg = cfg.withDefaults()
	return &Worker{
		in:         bus.Subscribe[protocol.SpatialGuidance](events, "scene"),
		events:     events,
		summarizer: NewSummarizer(cfg, clock),
		ctrl:       ctrl,
		clock:      clock,
		config:     cfg,
		log:        log.Component("scene"),
	}
}

// Summarizer returns the worker's summarizer.
func (w *Worker) Summarizer() *Summarizer {
	return w.summarizer
}

// Run observes guidance and publishes summaries until ctx is canceled.
func (w *Worker) Run(ctx context.Context) error {
	w.log.Info("scene stage started", "interval", w.config.Interval)
	defer w.log.Info("scene stage stopped")

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error { return w.observe(ctx) })
	g.Go(func() error { return w.publish(ctx) })
	return g.Wait()
}

func (w *Worker) observe(ctx context.Context) error {
	for {
		g, err := w.in.Next(ctx)
		if err != nil {
			if errors.Is(err, bus.ErrClosed) || ctx.Err() != nil {
				return nil
			}
			return err
		}
		w.summarizer.Observe(g)
	}
}

func (w *Worker) publish(ctx context.Context) error {
	ticker := w.clock.NewTicker(w.config.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C():
		}

		if w.ctrl.Load().Paused {
			continue
		}
		d, ok := w.summarizer.Describe()
		if !ok {
			continue
		}
		if err := w.events.Publish(d); err != nil {
			return nil
		}
		w.log.Debug("scene", "description", d.Description)
	}
}

// Close releases the subscription.
func (w *Worker) Close() {
	w.in.Close()
}
