// Package pipeline wires the perception stages onto the frame and event
// channels and runs them as one unit.
//
// Frames flow source -> detector over the FrameChannel; everything after
// that travels the EventChannel:
//
//	DetectionResult -> tracker -> TrackUpdate -> classifier ->
//	SpatialGuidance -> fusion -> FusionAnnouncement -> voice
//
// The scene stage also reads SpatialGuidance and publishes
// SceneDescription. Control state is shared by every stage through a
// control.Store.
package pipeline

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/teslashibe/go-wayfinder/internal/log"
	"github.com/teslashibe/go-wayfinder/internal/timeutil"
	"github.com/teslashibe/go-wayfinder/pkg/bus"
	"github.com/teslashibe/go-wayfinder/pkg/control"
	"github.com/teslashibe/go-wayfinder/pkg/detection"
	"github.com/teslashibe/go-wayfinder/pkg/fusion"
	"github.com/teslashibe/go-wayfinder/pkg/protocol"
	"github.com/teslashibe/go-wayfinder/pkg/scene"
	"github.com/teslashibe/go-wayfinder/pkg/source"
	"github.com/teslashibe/go-wayfinder/pkg/spatial"
	"github.com/teslashibe/go-wayfinder/pkg/stats"
	"github.com/teslashibe/go-wayfinder/pkg/tracking"
	"github.com/teslashibe/go-wayfinder/pkg/voice"
)

// Status announcement texts.
const (
	StatusPaused  = "Guidance paused"
	StatusResumed = "Guidance resumed"
)

// Pipeline owns the channels, control state and stage workers.
type Pipeline struct {
	id     string
	config Config
	clock  timeutil.Clock
	log    *slog.Logger

	frames *bus.FrameChannel
	events *bus.EventChannel
	ctrl   *control.Store
	stats  *stats.Recorder

	src     source.Source
	det     detection.Detector
	speaker voice.Speaker

	player     *source.Player
	detector   *detection.Worker
	tracker    *tracking.Worker
	classifier *spatial.Worker
	fusion     *fusion.Worker
	scene      *scene.Worker
	announcer  *voice.Announcer

	mu      sync.Mutex
	cancel  context.CancelFunc
	stopped chan struct{}
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithClock sets the clock used for frame pacing, scene intervals and
// status timestamps.
func WithClock(c timeutil.Clock) Option {
	return func(p *Pipeline) { p.clock = c }
}

// New builds a pipeline over src, det and speaker. Every subscription is
// taken here, so nothing published after New is missed. The pipeline
// owns src, det and speaker and closes them in Close.
func New(src source.Source, det detection.Detector, speaker voice.Speaker, cfg Config, opts ...Option) *Pipeline {
	p := &Pipeline{
		id:      uuid.NewString(),
		config:  cfg,
		clock:   timeutil.RealClock{},
		src:     src,
		det:     det,
		speaker: speaker,
	}
	for _, opt := range opts {
		opt(p)
	}
	p.log = log.Component("pipeline").With("run", p.id)

	p.frames = bus.NewFrameChannel(cfg.FrameCapacity)
	p.events = bus.NewEventChannel(
		bus.WithHighWater(cfg.EventHighWater),
		bus.WithLogger(log.Component("events")),
	)
	p.ctrl = control.NewStore(cfg.Control)
	p.stats = stats.NewRecorder(cfg.StatsWindow)

	p.detector = detection.NewWorker(p.frames.Subscribe(), p.events, det, p.ctrl, p.stats)
	p.tracker = tracking.NewWorker(p.events, cfg.Tracking, p.ctrl, p.stats)
	p.classifier = spatial.NewWorker(p.events, cfg.Spatial, p.stats)
	p.fusion = fusion.NewWorker(p.events, cfg.Fusion, p.ctrl, p.stats)
	p.scene = scene.NewWorker(p.events, cfg.Scene, p.ctrl, p.clock)
	if speaker != nil {
		p.announcer = voice.NewAnnouncer(p.events, speaker, p.ctrl)
	}
	if src != nil {
		p.player = source.NewPlayer(src, p.frames, p.ctrl, cfg.Player, source.WithClock(p.clock))
	}
	return p
}

// ID returns the pipeline's run id.
func (p *Pipeline) ID() string { return p.id }

// Frames returns the frame channel.
func (p *Pipeline) Frames() *bus.FrameChannel { return p.frames }

// Events returns the event channel.
func (p *Pipeline) Events() *bus.EventChannel { return p.events }

// Snapshot returns the current control state.
func (p *Pipeline) Snapshot() control.Snapshot { return p.ctrl.Load() }

// Control applies cmd. Play and pause also publish a status announcement.
// Rejected commands leave the state unchanged and publish nothing.
func (p *Pipeline) Control(cmd control.Command) (control.Snapshot, error) {
	snap, err := p.ctrl.Apply(cmd)
	if err != nil {
		p.log.Debug("control command rejected", "kind", cmd.Kind, "error", err)
		return snap, err
	}
	p.log.Info("control command applied", "kind", cmd.Kind)

	var text string
	switch cmd.Kind {
	case control.KindPause:
		text = StatusPaused
	case control.KindPlay:
		text = StatusResumed
	}
	if text != "" {
		_ = p.events.Publish(fusion.Status(text, p.clock.Now().UnixMilli()))
	}
	return snap, nil
}

// Scene returns the current scene summary.
func (p *Pipeline) Scene() (protocol.SceneDescription, bool) {
	return p.scene.Summarizer().Describe()
}

// Run starts every stage and blocks until ctx is canceled or a stage
// fails. The end of a finite source does not stop the pipeline.
func (p *Pipeline) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	stopped := make(chan struct{})
	p.mu.Lock()
	p.cancel, p.stopped = cancel, stopped
	p.mu.Unlock()
	defer close(stopped)
	defer cancel()

	p.log.Info("pipeline started")
	defer p.log.Info("pipeline stopped")

	g, ctx := errgroup.WithContext(ctx)
	if p.player != nil {
		g.Go(func() error { return p.player.Run(ctx) })
	}
	g.Go(func() error { return p.detector.Run(ctx) })
	g.Go(func() error { return p.tracker.Run(ctx) })
	g.Go(func() error { return p.classifier.Run(ctx) })
	g.Go(func() error { return p.fusion.Run(ctx) })
	g.Go(func() error { return p.scene.Run(ctx) })
	if p.announcer != nil {
		g.Go(func() error { return p.announcer.Run(ctx) })
	}
	err := g.Wait()

	p.frames.Close()
	p.events.Close()
	return err
}

// Close releases the workers and the source, detector and speaker. If Run
// is active it is canceled first and Close waits for it to return.
func (p *Pipeline) Close() error {
	p.mu.Lock()
	cancel, stopped := p.cancel, p.stopped
	p.mu.Unlock()
	if cancel != nil {
		cancel()
		<-stopped
	}

	p.frames.Close()
	p.events.Close()

	p.detector.Close()
	p.tracker.Close()
	p.classifier.Close()
	p.fusion.Close()
	p.scene.Close()
	if p.announcer != nil {
		p.announcer.Close()
	}

	var errs []error
	if p.src != nil {
		errs = append(errs, p.src.Close())
	}
	if p.det != nil {
		errs = append(errs, p.det.Close())
	}
	if p.speaker != nil {
		errs = append(errs, p.speaker.Close())
	}
	return errors.Join(errs...)
}
