package scene

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teslashibe/go-wayfinder/internal/log"
	"github.com/teslashibe/go-wayfinder/internal/timeutil"
	"github.com/teslashibe/go-wayfinder/pkg/bus"
	"github.com/teslashibe/go-wayfinder/pkg/control"
	"github.com/teslashibe/go-wayfinder/pkg/protocol"
)

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatal("condition not met")
		}
		time.Sleep(time.Millisecond)
	}
}

func TestWorker_PublishesOnIntervalUnlessPaused(t *testing.T) {
	clock := timeutil.NewManualClock(time.Unix(0, 0))
	events := bus.NewEventChannel(bus.WithLogger(log.Discard()))
	scenes := bus.Subscribe[protocol.SceneDescription](events, "test")
	store := control.NewStore(control.Defaults())

	cfg := Config{Interval: 5 * time.Second, StaleAfter: time.Minute}
	w := NewWorker(events, cfg, store, clock)
	defer w.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()
	waitFor(t, func() bool { return clock.Tickers() == 1 })

	require.NoError(t, events.Publish(g(1, "chair", protocol.DirectionLeft, protocol.ZoneFar)))
	waitFor(t, func() bool {
		_, ok := w.Summarizer().Describe()
		return ok
	})

	_, err := store.Apply(control.Command{Kind: control.KindPause})
	require.NoError(t, err)
	clock.Advance(5 * time.Second)
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, 0, scenes.Depth(), "no summary while paused")

	_, err = store.Apply(control.Command{Kind: control.KindPlay})
	require.NoError(t, err)
	clock.Advance(5 * time.Second)

	waitCtx, waitCancel := context.WithTimeout(ctx, time.Second)
	defer waitCancel()
	d, err := scenes.Next(waitCtx)
	require.NoError(t, err)
	assert.Equal(t, "One object detected: a chair on the left", d.Description)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("worker did not stop")
	}
}

func TestWorker_ZeroConfigUsesDefaults(t *testing.T) {
	events := bus.NewEventChannel(bus.WithLogger(log.Discard()))
	w := NewWorker(events, Config{}, control.NewStore(control.Defaults()), nil)
	defer w.Close()
	assert.Equal(t, DefaultConfig(), w.config)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	assert.NoError(t, w.Run(ctx))
}
