// Package fusion decides which spatial guidance becomes a spoken
// announcement, applying per-track cooldowns and urgency priority.
package fusion

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/teslashibe/go-wayfinder/pkg/protocol"
)

// Config holds label classification and bookkeeping parameters.
type Config struct {
	HazardLabels   []string      // labels announced as hazards
	LandmarkLabels []string      // labels announced as navigation cues
	RetainFor      time.Duration // minimum age before a track's history may be pruned
	PruneAbove     int           // history size that triggers pruning
}

// DefaultConfig returns the production label sets.
func DefaultConfig() Config {
	return Config{
		HazardLabels: []string{"hazard", "obstacle"},
		LandmarkLabels: []string{
			"door", "stairs", "elevator", "exit", "crosswalk",
			"stop sign", "traffic light", "bench",
		},
		RetainFor:  time.Minute,
		PruneAbove: 256,
	}
}

// Priority of each urgency, 1 is highest.
var priorities = map[protocol.Urgency]int{
	protocol.UrgencyCritical: 1,
	protocol.UrgencyHigh:     2,
	protocol.UrgencyMedium:   3,
	protocol.UrgencyLow:      4,
}

// StatusPriority is the priority of status announcements.
const StatusPriority = 5

// Priority maps an urgency to an announcement priority.
func Priority(u protocol.Urgency) int {
	if p, ok := priorities[u]; ok {
		return p
	}
	return StatusPriority
}

// Policy is the cooldown state machine. Safe for concurrent use.
type Policy struct {
	mu       sync.Mutex
	config   Config
	hazards  map[string]bool
	landmark map[string]bool
	last     map[int]int64 // track id -> timestamp of last announcement (ms)

	announced  uint64
	suppressed uint64
}

// New creates a policy with no announcement history.
func New(config Config) *Policy {
	p := &Policy{
		config:   config,
		hazards:  make(map[string]bool),
		landmark: make(map[string]bool),
		last:     make(map[int]int64),
	}
	for _, l := range config.HazardLabels {
		p.hazards[l] = true
	}
	for _, l := range config.LandmarkLabels {
		p.landmark[l] = true
	}
	return p
}

// Kind classifies a label.
func (p *Policy) Kind(label string) protocol.Kind {
	switch {
	case p.hazards[label]:
		return protocol.KindHazard
	case p.landmark[label]:
		return protocol.KindNavigation
	default:
		return protocol.KindObject
	}
}

// Decide applies the policy to g. It returns the announcement and true, or
// false when g is suppressed. Suppressed guidance is never retried.
//
// Critical urgency always announces. Otherwise a track announces the first
// time it is seen and again once cooldown has elapsed since its previous
// announcement, measured on guidance timestamps.
func (p *Policy) Decide(g protocol.SpatialGuidance, cooldown time.Duration) (protocol.FusionAnnouncement, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.shouldAnnounce(g, cooldown) {
		p.suppressed++
		return protocol.FusionAnnouncement{}, false
	}

	p.last[g.TrackID] = g.TimestampMs
	p.announced++
	if len(p.last) > p.config.PruneAbove {
		p.prune(g.TimestampMs, cooldown)
	}

	return protocol.FusionAnnouncement{
		ID:          uuid.NewString(),
		TimestampMs: g.TimestampMs,
		Text:        g.Text,
		Kind:        p.Kind(g.Label),
		Priority:    Priority(g.Urgency),
		TrackID:     g.TrackID,
	}, true
}

func (p *Policy) shouldAnnounce(g protocol.SpatialGuidance, cooldown time.Duration) bool {
	if g.Urgency == protocol.UrgencyCritical {
		return true
	}
	last, seen := p.last[g.TrackID]
	if !seen {
		return true
	}
	return g.TimestampMs-last >= cooldown.Milliseconds()
}

// prune drops history old enough that it can no longer suppress anything.
func (p *Policy) prune(nowMs int64, cooldown time.Duration) {
	horizon := max(cooldown, p.config.RetainFor).Milliseconds()
	for id, ts := range p.last {
		if nowMs-ts >= horizon {
			delete(p.last, id)
		}
	}
}

// Counts returns how many guidance events were announced and suppressed.
func (p *Policy) Counts() (announced, suppressed uint64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.announced, p.suppressed
}

// Status builds a system status announcement. Status announcements bypass
// the cooldown policy.
func Status(text string, timestampMs int64) protocol.FusionAnnouncement {
	return protocol.FusionAnnouncement{
		ID:          uuid.NewString(),
		TimestampMs: timestampMs,
		Text:        text,
		Kind:        protocol.KindStatus,
		Priority:    StatusPriority,
	}
}
