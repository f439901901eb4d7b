package pipeline

import (
	"github.com/teslashibe/go-wayfinder/pkg/bus"
	"github.com/teslashibe/go-wayfinder/pkg/control"
	"github.com/teslashibe/go-wayfinder/pkg/fusion"
	"github.com/teslashibe/go-wayfinder/pkg/scene"
	"github.com/teslashibe/go-wayfinder/pkg/source"
	"github.com/teslashibe/go-wayfinder/pkg/spatial"
	"github.com/teslashibe/go-wayfinder/pkg/stats"
	"github.com/teslashibe/go-wayfinder/pkg/tracking"
)

// Config holds the parameters of every stage.
type Config struct {
	Control  control.Snapshot
	Player   source.PlayerConfig
	Tracking tracking.Config
	Spatial  spatial.Config
	Fusion   fusion.Config
	Scene    scene.Config

	// FrameCapacity is the per-subscriber frame buffer.
	FrameCapacity int

	// EventHighWater is the queue depth at which a slow event subscriber
	// is reported.
	EventHighWater int

	// StatsWindow is the number of latency samples kept per stage.
	StatsWindow int
}

// DefaultConfig returns the production configuration.
func DefaultConfig() Config {
	return Config{
		Control:        control.Defaults(),
		Player:         source.DefaultPlayerConfig(),
		Tracking:       tracking.DefaultConfig(),
		Spatial:        spatial.DefaultConfig(),
		Fusion:         fusion.DefaultConfig(),
		Scene:          scene.DefaultConfig(),
		FrameCapacity:  bus.DefaultFrameCapacity,
		EventHighWater: bus.DefaultHighWater,
		StatsWindow:    stats.DefaultWindow,
	}
}
