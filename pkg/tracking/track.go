package tracking

import "github.com/teslashibe/go-wayfinder/pkg/protocol"

// TrackState represents the lifecycle state of a track.
type TrackState string

const (
	TrackTentative TrackState = "tentative" // Seen, not yet stable
	TrackConfirmed TrackState = "confirmed" // Reached StableHits consecutive matches
	TrackRemoved   TrackState = "removed"   // Exceeded MaxMisses; id is retired
)

type point struct{ x, y float64 }

// Track is the tracker's state for one object. It is owned by a single
// Tracker; callers only ever see copies.
type Track struct {
	ID     int
	Label  string
	Box    protocol.Box
	State  TrackState
	Hits   int // consecutive matches, reset by a miss
	Misses int // consecutive misses, reset by a match

	centers []point // last two box centers, oldest first
}

func newTrack(id int, det protocol.Detection) *Track {
	t := &Track{ID: id, Label: det.Label, State: TrackTentative}
	t.observe(det.Box)
	t.Hits = 1
	return t
}

// Stable reports whether the track has ever been confirmed.
func (t *Track) Stable() bool {
	return t.State == TrackConfirmed
}

// Velocity returns the center displacement between the last two
// observations, or nil with fewer than two.
func (t *Track) Velocity() *protocol.Velocity {
	if len(t.centers) < 2 {
		return nil
	}
	prev, cur := t.centers[0], t.centers[1]
	return &protocol.Velocity{DX: cur.x - prev.x, DY: cur.y - prev.y}
}

func (t *Track) observe(b protocol.Box) {
	t.Box = b
	cx, cy := b.Center()
	t.centers = append(t.centers, point{cx, cy})
	if len(t.centers) > 2 {
		t.centers = t.centers[len(t.centers)-2:]
	}
}

func (t *Track) hit(b protocol.Box, stableHits int) {
	t.observe(b)
	t.Hits++
	t.Misses = 0
	if t.Hits >= stableHits {
		t.State = TrackConfirmed
	}
}

func (t *Track) miss() {
	t.Misses++
	t.Hits = 0
}

func (t *Track) snapshot(res protocol.DetectionResult) protocol.TrackUpdate {
	return protocol.TrackUpdate{
		TrackID:     t.ID,
		FrameID:     res.FrameID,
		TimestampMs: res.TimestampMs,
		Label:       t.Label,
		Box:         t.Box,
		Stable:      t.Stable(),
		Velocity:    t.Velocity(),
	}
}
