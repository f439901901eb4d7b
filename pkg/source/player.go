package source

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"sync/atomic"
	"time"

	"github.com/teslashibe/go-wayfinder/internal/log"
	"github.com/teslashibe/go-wayfinder/internal/timeutil"
	"github.com/teslashibe/go-wayfinder/pkg/bus"
	"github.com/teslashibe/go-wayfinder/pkg/control"
	"github.com/teslashibe/go-wayfinder/pkg/protocol"
)

// StageName identifies the frame source in logs.
const StageName = "source"

// PlayerConfig configures playback pacing.
type PlayerConfig struct {
	// FPS overrides the source's frame rate when positive.
	FPS float64

	// PausePoll is how often a paused player rechecks control state.
	PausePoll time.Duration

	// Loop restarts from frame 0 at the end of the source.
	Loop bool
}

// DefaultPlayerConfig plays at the source's rate without looping.
func DefaultPlayerConfig() PlayerConfig {
	return PlayerConfig{PausePoll: 100 * time.Millisecond}
}

// FrameDelay is the wall time between frames at fps and speed. A
// non-positive speed counts as 1; others are clamped to the range the
// control store accepts.
func FrameDelay(fps, speed float64) time.Duration {
	if !(speed > 0) {
		speed = 1
	}
	speed = min(max(speed, control.MinSpeed), control.MaxSpeed)
	if fps <= 0 {
		fps = DefaultFPS
	}
	d := float64(time.Second) / fps / speed
	if d >= math.MaxInt64 {
		return time.Duration(math.MaxInt64)
	}
	return time.Duration(d)
}

// TimestampMs is the capture time of frame id for a stream that started
// at startMs.
func TimestampMs(startMs, id int64, fps float64) int64 {
	if fps <= 0 {
		fps = DefaultFPS
	}
	return startMs + int64(float64(id)*1000/fps)
}

// Player publishes a Source onto a FrameChannel in real time.
type Player struct {
	src    Source
	frames *bus.FrameChannel
	ctrl   *control.Store
	clock  timeutil.Clock
	config PlayerConfig
	fps    float64
	log    *slog.Logger

	position atomic.Int64
}

// PlayerOption configures a Player.
type PlayerOption func(*Player)

// WithClock sets the clock used for pacing and timestamps.
func WithClock(c timeutil.Clock) PlayerOption {
	return func(p *Player) { p.clock = c }
}

// NewPlayer creates a player for src.
func NewPlayer(src Source, frames *bus.FrameChannel, ctrl *control.Store, cfg PlayerConfig, opts ...PlayerOption) *Player {
	if cfg.PausePoll <= 0 {
		cfg.PausePoll = DefaultPlayerConfig().PausePoll
	}
	fps := cfg.FPS
	if fps <= 0 {
		fps = src.Info().FPS
	}
	if fps <= 0 {
		fps = DefaultFPS
	}

	p := &Player{
		src:    src,
		frames: frames,
		ctrl:   ctrl,
		clock:  timeutil.RealClock{},
		config: cfg,
		fps:    fps,
		log:    log.Component(StageName),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// FPS returns the effective playback rate at speed 1.
func (p *Player) FPS() float64 { return p.fps }

// Position returns the id of the next frame to publish.
func (p *Player) Position() int64 { return p.position.Load() }

// Run plays until the source ends, ctx is canceled or the frame channel
// closes. Reaching the end of a non-looping source is not an error.
func (p *Player) Run(ctx context.Context) error {
	info := p.src.Info()
	startMs := p.clock.Now().UnixMilli()
	p.log.Info("playback started", "fps", p.fps, "frames", info.TotalFrames, "loop", p.config.Loop)

	var id int64
	for {
		if ctx.Err() != nil {
			return nil
		}

		if target, ok := p.ctrl.TakeSeek(); ok {
			if info.TotalFrames > 0 && target >= info.TotalFrames {
				p.log.Warn("seek past end ignored", "frame_id", target, "frames", info.TotalFrames)
			} else {
				id = target
				p.log.Info("seeked", "frame_id", id)
			}
		}
		p.position.Store(id)

		snap := p.ctrl.Load()
		if snap.Paused {
			if !p.wait(ctx, p.config.PausePoll) {
				return nil
			}
			continue
		}

		jpg, err := p.src.Frame(id)
		switch {
		case errors.Is(err, ErrEndOfStream):
			if p.config.Loop && id > 0 {
				id = 0
				continue
			}
			p.log.Info("playback finished", "frames", id)
			return nil
		case errors.Is(err, ErrFrameNotFound):
			p.log.Warn("frame missing, stopping playback", "frame_id", id, "error", err)
			return nil
		case err != nil:
			return fmt.Errorf("read frame %d: %w", id, err)
		}

		frame := protocol.FramePacket{
			FrameID:     id,
			TimestampMs: TimestampMs(startMs, id, p.fps),
			Width:       info.Width,
			Height:      info.Height,
			JPEG:        jpg,
		}
		if err := p.frames.Publish(frame); err != nil {
			return nil
		}
		id++
		p.position.Store(id)

		if !p.wait(ctx, FrameDelay(p.fps, snap.Speed)) {
			return nil
		}
	}
}

func (p *Player) wait(ctx context.Context, d time.Duration) bool {
	select {
	case <-ctx.Done():
		return false
	case <-p.clock.After(d):
		return true
	}
}
