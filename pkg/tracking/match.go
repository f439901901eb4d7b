package tracking

import (
	"cmp"
	"slices"

	"github.com/teslashibe/go-wayfinder/pkg/protocol"
)

// IoU returns the intersection over union of two normalized boxes.
func IoU(a, b protocol.Box) float64 {
	ix1, iy1 := max(a.X, b.X), max(a.Y, b.Y)
	ix2, iy2 := min(a.X+a.W, b.X+b.W), min(a.Y+a.H, b.Y+b.H)
	if ix2 <= ix1 || iy2 <= iy1 {
		return 0
	}
	inter := (ix2 - ix1) * (iy2 - iy1)
	union := a.Area() + b.Area() - inter
	if union <= 0 {
		return 0
	}
	return inter / union
}

// Pair is an accepted track/detection assignment by index.
type Pair struct {
	Track     int // index into the tracks slice
	Detection int // index into the detections slice
	IoU       float64
}

// Greedy assigns detections to tracks with the same label, highest IoU
// first. A pair is accepted only when IoU >= threshold and neither side is
// already taken. Ties go to the lower track id, then the lower detection
// index. The result is deterministic but not a globally optimal matching.
func Greedy(tracks []*Track, dets []protocol.Detection, threshold float64) (pairs []Pair, unmatchedDets, unmatchedTracks []int) {
	var cands []Pair
	for ti, t := range tracks {
		for di, d := range dets {
			if d.Label != t.Label {
				continue
			}
			if iou := IoU(t.Box, d.Box); iou >= threshold {
				cands = append(cands, Pair{Track: ti, Detection: di, IoU: iou})
			}
		}
	}

	slices.SortFunc(cands, func(a, b Pair) int {
		if c := cmp.Compare(b.IoU, a.IoU); c != 0 {
			return c
		}
		if c := cmp.Compare(tracks[a.Track].ID, tracks[b.Track].ID); c != 0 {
			return c
		}
		return cmp.Compare(a.Detection, b.Detection)
	})

	trackTaken := make([]bool, len(tracks))
	detTaken := make([]bool, len(dets))
	for _, c := range cands {
		if trackTaken[c.Track] || detTaken[c.Detection] {
			continue
		}
		trackTaken[c.Track] = true
		detTaken[c.Detection] = true
		pairs = append(pairs, c)
	}

	for di, taken := range detTaken {
		if !taken {
			unmatchedDets = append(unmatchedDets, di)
		}
	}
	for ti, taken := range trackTaken {
		if !taken {
			unmatchedTracks = append(unmatchedTracks, ti)
		}
	}
	return pairs, unmatchedDets, unmatchedTracks
}
