// Package scene produces periodic natural-language summaries of every
// object currently guided, grouped by direction.
package scene

import (
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/teslashibe/go-wayfinder/internal/timeutil"
	"github.com/teslashibe/go-wayfinder/pkg/protocol"
)

// Config holds summary timing.
type Config struct {
	Interval   time.Duration // time between published summaries
	StaleAfter time.Duration // objects not seen for this long are dropped
}

// DefaultConfig returns the production timing.
func DefaultConfig() Config {
	return Config{
		Interval:   5 * time.Second,
		StaleAfter: 3 * time.Second,
	}
}

func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.Interval <= 0 {
		c.Interval = d.Interval
	}
	if c.StaleAfter <= 0 {
		c.StaleAfter = d.StaleAfter
	}
	return c
}

type entry struct {
	g    protocol.SpatialGuidance
	seen time.Time
}

// Summarizer keeps the latest guidance per track. Safe for concurrent use.
type Summarizer struct {
	mu     sync.Mutex
	config Config
	clock  timeutil.Clock
	active map[int]entry
}

// NewSummarizer creates a summarizer. Zero config fields take their
// defaults and a nil clock uses the real clock.
func NewSummarizer(config Config, clock timeutil.Clock) *Summarizer {
	if clock == nil {
		clock = timeutil.RealClock{}
	}
	return &Summarizer{
		config: config.withDefaults(),
		clock:  clock,
		active: make(map[int]entry),
	}
}

// Observe records g as the current state of its track.
func (s *Summarizer) Observe(g protocol.SpatialGuidance) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.active[g.TrackID] = entry{g: g, seen: s.clock.Now()}
}

// Describe drops stale tracks and summarizes the rest. It returns false
// when nothing is in view.
func (s *Summarizer) Describe() (protocol.SceneDescription, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.clock.Now()
	for id, e := range s.active {
		if now.Sub(e.seen) > s.config.StaleAfter {
			delete(s.active, id)
		}
	}
	if len(s.active) == 0 {
		return protocol.SceneDescription{}, false
	}

	ids := make([]int, 0, len(s.active))
	for id := range s.active {
		ids = append(ids, id)
	}
	slices.Sort(ids)

	current := make([]protocol.SpatialGuidance, len(ids))
	for i, id := range ids {
		current[i] = s.active[id].g
	}

	return protocol.SceneDescription{
		TimestampMs: now.UnixMilli(),
		Description: Describe(current),
		ObjectCount: len(ids),
		TrackIDs:    ids,
	}, true
}

// Describe summarizes guidance, for example
// "3 objects detected: a person ahead, a door on the right. A person nearby".
func Describe(objs []protocol.SpatialGuidance) string {
	var b strings.Builder
	if len(objs) == 1 {
		b.WriteString("One object detected")
	} else {
		fmt.Fprintf(&b, "%d objects detected", len(objs))
	}

	byDir := map[protocol.Direction][]string{}
	var near []string
	for _, g := range objs {
		byDir[g.Direction] = append(byDir[g.Direction], g.Label)
		if g.Zone == protocol.ZoneNear {
			near = append(near, g.Label)
		}
	}

	var parts []string
	for _, dir := range []protocol.Direction{protocol.DirectionCenter, protocol.DirectionLeft, protocol.DirectionRight} {
		labels, ok := byDir[dir]
		if !ok {
			continue
		}
		if dir == protocol.DirectionCenter {
			parts = append(parts, summarize(labels)+" ahead")
		} else {
			parts = append(parts, summarize(labels)+" on the "+string(dir))
		}
	}
	if len(parts) > 0 {
		b.WriteString(": ")
		b.WriteString(strings.Join(parts, ", "))
	}

	if len(near) > 0 {
		s := summarize(near)
		b.WriteString(". ")
		b.WriteString(strings.ToUpper(s[:1]) + s[1:])
		b.WriteString(" nearby")
	}
	return b.String()
}

// summarize counts labels in first-seen order: "a chair", "2 persons",
// "a chair and a door", "a cup, a book, and 2 chairs".
func summarize(labels []string) string {
	counts := map[string]int{}
	var order []string
	for _, l := range labels {
		if counts[l] == 0 {
			order = append(order, l)
		}
		counts[l]++
	}

	items := make([]string, len(order))
	for i, l := range order {
		if counts[l] == 1 {
			items[i] = "a " + l
		} else {
			items[i] = fmt.Sprintf("%d %ss", counts[l], l)
		}
	}

	switch len(items) {
	case 1:
		return items[0]
	case 2:
		return items[0] + " and " + items[1]
	default:
		return strings.Join(items[:len(items)-1], ", ") + ", and " + items[len(items)-1]
	}
}
