package tracking

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teslashibe/go-wayfinder/pkg/protocol"
)

const iou = 0.3

func frameOf(id int64, dets ...protocol.Detection) protocol.DetectionResult {
	return protocol.DetectionResult{FrameID: id, TimestampMs: id * 33, Objects: dets}
}

func det(label string, b protocol.Box) protocol.Detection {
	return protocol.Detection{Label: label, Confidence: 0.9, Box: b}
}

func TestTracker_StableFromThirdMatch(t *testing.T) {
	tr := New(DefaultConfig())
	chair := det("chair", box(0.1, 0.5, 0.05, 0.05))

	var stable []bool
	for f := int64(0); f < 4; f++ {
		ups := tr.Update(frameOf(f, chair), iou)
		require.Len(t, ups, 1)
		assert.Equal(t, 1, ups[0].TrackID)
		stable = append(stable, ups[0].Stable)
	}
	assert.Equal(t, []bool{false, false, true, true}, stable)
}

func TestTracker_MovingObjectKeepsIdentity(t *testing.T) {
	tr := New(DefaultConfig())

	const frames = 20
	var xs []float64
	for f := 0; f < frames; f++ {
		x := 0.1 + float64(f)*(0.8/float64(frames-1))
		ups := tr.Update(frameOf(int64(f), det("person", box(x, 0.3, 0.1, 0.2))), iou)
		require.Len(t, ups, 1, "frame %d", f)
		assert.Equal(t, 1, ups[0].TrackID, "frame %d", f)
		xs = append(xs, ups[0].Box.X)

		if f == 0 {
			assert.Nil(t, ups[0].Velocity)
		} else {
			require.NotNil(t, ups[0].Velocity)
			assert.InDelta(t, 0.8/float64(frames-1), ups[0].Velocity.DX, 1e-9)
			assert.InDelta(t, 0, ups[0].Velocity.DY, 1e-9)
		}
	}

	for i := 1; i < len(xs); i++ {
		assert.Greater(t, xs[i], xs[i-1])
	}
	assert.Equal(t, 1, tr.Live())
}

func TestTracker_JumpCreatesNewTrack(t *testing.T) {
	tr := New(DefaultConfig())
	tr.Update(frameOf(0, det("person", box(0.1, 0.3, 0.1, 0.2))), iou)
	ups := tr.Update(frameOf(1, det("person", box(0.6, 0.3, 0.1, 0.2))), iou)

	require.Len(t, ups, 1)
	assert.Equal(t, 2, ups[0].TrackID)
	assert.Equal(t, 2, tr.Live(), "old track survives its first miss")
}

func TestTracker_MissTolerance(t *testing.T) {
	chair := det("chair", box(0.4, 0.4, 0.1, 0.1))

	tests := []struct {
		name    string
		misses  int
		wantID  int
		wantNew bool
	}{
		{"five misses keeps the track", 5, 1, false},
		{"six misses removes the track", 6, 2, true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			tr := New(DefaultConfig())
			f := int64(0)
			for ; f < 3; f++ {
				tr.Update(frameOf(f, chair), iou)
			}
			for i := 0; i < tc.misses; i++ {
				ups := tr.Update(frameOf(f), iou)
				assert.Empty(t, ups, "no updates while missing")
				f++
			}

			ups := tr.Update(frameOf(f, chair), iou)
			require.Len(t, ups, 1)
			assert.Equal(t, tc.wantID, ups[0].TrackID)
			if tc.wantNew {
				assert.False(t, ups[0].Stable)
				assert.Equal(t, 1, tr.Removed())
			}
		})
	}
}

func TestTracker_MissResetsConsecutiveHits(t *testing.T) {
	tr := New(DefaultConfig())
	chair := det("chair", box(0.4, 0.4, 0.1, 0.1))

	tr.Update(frameOf(0, chair), iou)
	tr.Update(frameOf(1, chair), iou)
	tr.Update(frameOf(2), iou)
	ups := tr.Update(frameOf(3, chair), iou)
	require.Len(t, ups, 1)
	assert.False(t, ups[0].Stable, "hits restart after a miss")

	tr.Update(frameOf(4, chair), iou)
	ups = tr.Update(frameOf(5, chair), iou)
	assert.True(t, ups[0].Stable)

	tr.Update(frameOf(6), iou)
	ups = tr.Update(frameOf(7, chair), iou)
	assert.True(t, ups[0].Stable, "confirmed tracks stay stable")
}

func TestTracker_IDsNeverReused(t *testing.T) {
	tr := New(Config{StableHits: 3, MaxMisses: 0})
	seen := map[int]bool{}

	for f := int64(0); f < 10; f++ {
		// Alternate between two far-apart positions so every frame
		// retires the previous track and creates a new one.
		x := 0.1
		if f%2 == 1 {
			x = 0.7
		}
		ups := tr.Update(frameOf(f, det("cup", box(x, 0.1, 0.1, 0.1))), iou)
		require.Len(t, ups, 1)
		assert.False(t, seen[ups[0].TrackID], "id %d reused", ups[0].TrackID)
		seen[ups[0].TrackID] = true
	}
}

func TestTracker_EmptyBatch(t *testing.T) {
	tr := New(DefaultConfig())
	assert.Empty(t, tr.Update(frameOf(0), iou))

	tr.Update(frameOf(1, det("door", box(0.75, 0.25, 0.12, 0.4))), iou)
	assert.Empty(t, tr.Update(frameOf(2), iou))

	tracks := tr.Tracks()
	require.Len(t, tracks, 1)
	assert.Equal(t, 1, tracks[0].Misses)
	assert.Equal(t, TrackTentative, tracks[0].State)
}

func TestTracker_UpdatesCarryFrameStamp(t *testing.T) {
	tr := New(DefaultConfig())
	ups := tr.Update(frameOf(42, det("door", box(0.75, 0.25, 0.12, 0.4))), iou)
	require.Len(t, ups, 1)
	assert.Equal(t, int64(42), ups[0].FrameID)
	assert.Equal(t, int64(42*33), ups[0].TimestampMs)
	assert.Equal(t, "door", ups[0].Label)
}

func TestTracker_StableHitsOfOne(t *testing.T) {
	tr := New(Config{StableHits: 1, MaxMisses: 5})
	ups := tr.Update(frameOf(0, det("door", box(0.75, 0.25, 0.12, 0.4))), iou)
	require.Len(t, ups, 1)
	assert.True(t, ups[0].Stable)
}
