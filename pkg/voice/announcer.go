package voice

import (
	"context"
	"errors"
	"log/slog"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"github.com/teslashibe/go-wayfinder/internal/log"
	"github.com/teslashibe/go-wayfinder/pkg/bus"
	"github.com/teslashibe/go-wayfinder/pkg/control"
	"github.com/teslashibe/go-wayfinder/pkg/protocol"
)

// StageName identifies the announcer in logs.
const StageName = "voice"

// AnnouncerStats counts utterances.
type AnnouncerStats struct {
	Spoken  uint64 `json:"spoken"`
	Skipped uint64 `json:"skipped"`
	Failed  uint64 `json:"failed"`
}

// Announcer speaks announcements and scene descriptions through a Speaker.
//
// At most one utterance waits behind the one being spoken. Announcements
// that arrive while the speaker is busy are skipped; a scene description
// replaces whatever is waiting. Nothing is spoken while paused except
// status announcements.
type Announcer struct {
	anns    *bus.Subscription[protocol.FusionAnnouncement]
	scenes  *bus.Subscription[protocol.SceneDescription]
	speaker Speaker
	ctrl    *control.Store
	log     *slog.Logger

	slot     chan string
	speaking atomic.Bool

	spoken  atomic.Uint64
	skipped atomic.Uint64
	failed  atomic.Uint64
}

// NewAnnouncer subscribes to events and speaks through speaker.
func NewAnnouncer(events *bus.EventChannel, speaker Speaker, ctrl *control.Store) *Announcer {
	return &Announcer{
		anns:    bus.Subscribe[protocol.FusionAnnouncement](events, StageName),
		scenes:  bus.Subscribe[protocol.SceneDescription](events, StageName+"-scene"),
		speaker: speaker,
		ctrl:    ctrl,
		log:     log.Component(StageName),
		slot:    make(chan string, 1),
	}
}

// Stats returns utterance counters.
func (a *Announcer) Stats() AnnouncerStats {
	return AnnouncerStats{
		Spoken:  a.spoken.Load(),
		Skipped: a.skipped.Load(),
		Failed:  a.failed.Load(),
	}
}

// Run speaks until ctx is canceled or the event channel closes.
func (a *Announcer) Run(ctx context.Context) error {
	a.log.Info("announcer started")
	defer func() {
		s := a.Stats()
		a.log.Info("announcer stopped", "spoken", s.Spoken, "skipped", s.Skipped, "failed", s.Failed)
	}()

	speakCtx, stop := context.WithCancel(ctx)
	defer stop()
	spoke := make(chan struct{})
	go func() {
		defer close(spoke)
		a.speak(speakCtx)
	}()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return a.listenAnnouncements(gctx) })
	g.Go(func() error { return a.listenScenes(gctx) })
	err := g.Wait()

	stop()
	<-spoke
	return err
}

func (a *Announcer) listenAnnouncements(ctx context.Context) error {
	for {
		ann, err := a.anns.Next(ctx)
		if err != nil {
			return stopErr(ctx, err)
		}
		if ann.Kind != protocol.KindStatus && a.ctrl.Load().Paused {
			a.skipped.Add(1)
			continue
		}
		if a.speaking.Load() {
			a.skipped.Add(1)
			a.log.Debug("speaker busy, announcement skipped", "text", ann.Text)
			continue
		}
		select {
		case a.slot <- ann.Text:
		default:
			a.skipped.Add(1)
		}
	}
}

func (a *Announcer) listenScenes(ctx context.Context) error {
	for {
		d, err := a.scenes.Next(ctx)
		if err != nil {
			return stopErr(ctx, err)
		}
		if a.ctrl.Load().Paused {
			a.skipped.Add(1)
			continue
		}
		select {
		case <-a.slot:
			a.skipped.Add(1)
		default:
		}
		select {
		case a.slot <- d.Description:
		default:
			a.skipped.Add(1)
		}
	}
}

func (a *Announcer) speak(ctx context.Context) {
	for {
		var text string
		select {
		case <-ctx.Done():
			return
		case text = <-a.slot:
		}

		a.speaking.Store(true)
		err := a.speaker.Speak(ctx, text)
		a.speaking.Store(false)

		switch {
		case err == nil:
			a.spoken.Add(1)
		case errors.Is(err, ErrSpeakerClosed):
			a.log.Warn("speaker closed")
			return
		case ctx.Err() != nil:
			return
		default:
			a.failed.Add(1)
			a.log.Warn("speak failed", "error", err)
		}
	}
}

func stopErr(ctx context.Context, err error) error {
	if errors.Is(err, bus.ErrClosed) || ctx.Err() != nil {
		return nil
	}
	return err
}

// Close releases the subscriptions.
func (a *Announcer) Close() {
	a.anns.Close()
	a.scenes.Close()
}
