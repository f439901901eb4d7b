// Package tracking assigns persistent identities to detections across frames.
package tracking

import (
	"log/slog"

	"github.com/teslashibe/go-wayfinder/internal/log"
	"github.com/teslashibe/go-wayfinder/pkg/protocol"
)

// Tracker maintains live tracks. It is not safe for concurrent use; the
// tracker stage owns one instance.
type Tracker struct {
	config Config
	log    *slog.Logger

	nextID  int
	tracks  []*Track // ascending id
	removed int
}

// New creates a tracker. Track ids start at 1.
func New(config Config) *Tracker {
	return &Tracker{
		config: config.withDefaults(),
		log:    log.Component("tracker"),
		nextID: 1,
	}
}

// Update folds one frame of detections into the tracks and returns one
// update per track matched or created by this frame, in ascending id order.
func (t *Tracker) Update(res protocol.DetectionResult, iouThreshold float64) []protocol.TrackUpdate {
	pairs, newDets, missed := Greedy(t.tracks, res.Objects, iouThreshold)

	touched := make(map[int]bool, len(pairs)+len(newDets))
	for _, p := range pairs {
		tr := t.tracks[p.Track]
		tr.hit(res.Objects[p.Detection].Box, t.config.StableHits)
		touched[tr.ID] = true
	}
	for _, ti := range missed {
		t.tracks[ti].miss()
	}
	t.prune(res.FrameID)

	for _, di := range newDets {
		tr := newTrack(t.nextID, res.Objects[di])
		t.nextID++
		if tr.Hits >= t.config.StableHits {
			tr.State = TrackConfirmed
		}
		t.tracks = append(t.tracks, tr)
		touched[tr.ID] = true
		t.log.Debug("track created", "track_id", tr.ID, "label", tr.Label, "frame_id", res.FrameID)
	}

	updates := make([]protocol.TrackUpdate, 0, len(touched))
	for _, tr := range t.tracks {
		if touched[tr.ID] {
			updates = append(updates, tr.snapshot(res))
		}
	}
	return updates
}

func (t *Tracker) prune(frameID int64) {
	kept := t.tracks[:0]
	for _, tr := range t.tracks {
		if tr.Misses > t.config.MaxMisses {
			tr.State = TrackRemoved
			t.removed++
			t.log.Debug("track removed", "track_id", tr.ID, "label", tr.Label, "frame_id", frameID)
			continue
		}
		kept = append(kept, tr)
	}
	clear(t.tracks[len(kept):])
	t.tracks = kept
}

// Tracks returns copies of the live tracks in ascending id order.
func (t *Tracker) Tracks() []Track {
	out := make([]Track, len(t.tracks))
	for i, tr := range t.tracks {
		out[i] = *tr
		out[i].centers = append([]point(nil), tr.centers...)
	}
	return out
}

// Live returns the number of live tracks.
func (t *Tracker) Live() int {
	return len(t.tracks)
}

// Removed returns how many tracks have been retired.
func (t *Tracker) Removed() int {
	return t.removed
}
