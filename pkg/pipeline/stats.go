package pipeline

import (
	"github.com/teslashibe/go-wayfinder/pkg/bus"
	"github.com/teslashibe/go-wayfinder/pkg/stats"
	"github.com/teslashibe/go-wayfinder/pkg/voice"
)

// Stats is a point-in-time view of a running pipeline.
type Stats struct {
	RunID            string                      `json:"run_id"`
	Position         int64                       `json:"position"`
	Frames           bus.FrameStats              `json:"frames"`
	Events           bus.EventStats              `json:"events"`
	Stages           map[string]stats.StageStats `json:"stages"`
	DetectorFailures uint64                      `json:"detector_failures"`
	Announced        uint64                      `json:"announced"`
	Suppressed       uint64                      `json:"suppressed"`
	Voice            *voice.AnnouncerStats       `json:"voice,omitempty"`
}

// Stats collects counters from the channels and stages.
func (p *Pipeline) Stats() Stats {
	announced, suppressed := p.fusion.Policy().Counts()
	s := Stats{
		RunID:            p.id,
		Frames:           p.frames.Stats(),
		Events:           p.events.Stats(),
		Stages:           p.stats.Snapshot(),
		DetectorFailures: p.detector.Failures(),
		Announced:        announced,
		Suppressed:       suppressed,
	}
	if p.player != nil {
		s.Position = p.player.Position()
	}
	if p.announcer != nil {
		v := p.announcer.Stats()
		s.Voice = &v
	}
	return s
}
