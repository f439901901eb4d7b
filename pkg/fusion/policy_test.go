package fusion

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teslashibe/go-wayfinder/pkg/protocol"
)

const cooldown = 3 * time.Second

func guidance(track int, ts int64, urgency protocol.Urgency) protocol.SpatialGuidance {
	return protocol.SpatialGuidance{
		TimestampMs: ts,
		TrackID:     track,
		Label:       "chair",
		Urgency:     urgency,
		Text:        "chair on your left, in the distance",
	}
}

func TestDecide_FirstGuidanceAnnounces(t *testing.T) {
	p := New(DefaultConfig())
	a, ok := p.Decide(guidance(1, 0, protocol.UrgencyLow), cooldown)
	require.True(t, ok)
	assert.Equal(t, 1, a.TrackID)
	assert.Equal(t, 4, a.Priority)
	assert.Equal(t, protocol.KindObject, a.Kind)
	assert.NotEmpty(t, a.ID)
	assert.Equal(t, "chair on your left, in the distance", a.Text)
}

func TestDecide_Cooldown(t *testing.T) {
	tests := []struct {
		name    string
		second  protocol.SpatialGuidance
		wantAnn bool
	}{
		{"low within cooldown is suppressed", guidance(1, 1000, protocol.UrgencyLow), false},
		{"high within cooldown is suppressed", guidance(1, 1000, protocol.UrgencyHigh), false},
		{"critical within cooldown announces", guidance(1, 100, protocol.UrgencyCritical), true},
		{"exactly at cooldown announces", guidance(1, 3000, protocol.UrgencyLow), true},
		{"after cooldown announces", guidance(1, 3500, protocol.UrgencyLow), true},
		{"other track is independent", guidance(2, 1000, protocol.UrgencyLow), true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			p := New(DefaultConfig())
			_, ok := p.Decide(guidance(1, 0, protocol.UrgencyLow), cooldown)
			require.True(t, ok)

			_, ok = p.Decide(tc.second, cooldown)
			assert.Equal(t, tc.wantAnn, ok)
		})
	}
}

func TestDecide_CriticalRefreshesTimestamp(t *testing.T) {
	p := New(DefaultConfig())
	p.Decide(guidance(1, 0, protocol.UrgencyLow), cooldown)
	_, ok := p.Decide(guidance(1, 2000, protocol.UrgencyCritical), cooldown)
	require.True(t, ok)

	_, ok = p.Decide(guidance(1, 3500, protocol.UrgencyLow), cooldown)
	assert.False(t, ok, "cooldown restarts at the critical announcement")

	_, ok = p.Decide(guidance(1, 5000, protocol.UrgencyLow), cooldown)
	assert.True(t, ok)
}

func TestDecide_SuppressionIsNotQueued(t *testing.T) {
	p := New(DefaultConfig())
	p.Decide(guidance(1, 0, protocol.UrgencyLow), cooldown)
	for ts := int64(33); ts < 1000; ts += 33 {
		_, ok := p.Decide(guidance(1, ts, protocol.UrgencyLow), cooldown)
		assert.False(t, ok)
	}

	announced, suppressed := p.Counts()
	assert.Equal(t, uint64(1), announced)
	assert.Equal(t, uint64(30), suppressed)
}

func TestDecide_ZeroCooldownAnnouncesEverything(t *testing.T) {
	p := New(DefaultConfig())
	for ts := int64(0); ts < 5; ts++ {
		_, ok := p.Decide(guidance(1, ts, protocol.UrgencyLow), 0)
		assert.True(t, ok)
	}
}

func TestKind(t *testing.T) {
	p := New(DefaultConfig())
	tests := map[string]protocol.Kind{
		"hazard":   protocol.KindHazard,
		"obstacle": protocol.KindHazard,
		"door":     protocol.KindNavigation,
		"stairs":   protocol.KindNavigation,
		"person":   protocol.KindObject,
		"chair":    protocol.KindObject,
	}
	for label, want := range tests {
		assert.Equal(t, want, p.Kind(label), label)
	}
}

func TestPriority(t *testing.T) {
	assert.Equal(t, 1, Priority(protocol.UrgencyCritical))
	assert.Equal(t, 2, Priority(protocol.UrgencyHigh))
	assert.Equal(t, 3, Priority(protocol.UrgencyMedium))
	assert.Equal(t, 4, Priority(protocol.UrgencyLow))
	assert.Equal(t, 5, Priority(""))
}

func TestStatus(t *testing.T) {
	a := Status("Guidance paused", 1234)
	assert.Equal(t, protocol.KindStatus, a.Kind)
	assert.Equal(t, StatusPriority, a.Priority)
	assert.Equal(t, int64(1234), a.TimestampMs)
	assert.Zero(t, a.TrackID)
}

func TestPrune_KeepsRecentHistory(t *testing.T) {
	cfg := DefaultConfig()
	cfg.PruneAbove = 2
	cfg.RetainFor = time.Second
	p := New(cfg)

	p.Decide(guidance(1, 0, protocol.UrgencyLow), cooldown)
	p.Decide(guidance(2, 0, protocol.UrgencyLow), cooldown)
	p.Decide(guidance(3, 5000, protocol.UrgencyLow), cooldown) // prunes 1 and 2

	assert.Len(t, p.last, 1)
	_, ok := p.Decide(guidance(3, 6000, protocol.UrgencyLow), cooldown)
	assert.False(t, ok, "recent history survives pruning")
}
