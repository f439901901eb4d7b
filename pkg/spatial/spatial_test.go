package spatial

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teslashibe/go-wayfinder/pkg/protocol"
)

func TestDirection(t *testing.T) {
	c := New(DefaultConfig())
	tests := []struct {
		cx   float64
		want protocol.Direction
	}{
		{0.1, protocol.DirectionLeft},
		{0.33, protocol.DirectionLeft},
		{0.34, protocol.DirectionCenter},
		{0.5, protocol.DirectionCenter},
		{0.66, protocol.DirectionCenter},
		{0.67, protocol.DirectionRight},
		{0.9, protocol.DirectionRight},
	}
	for _, tc := range tests {
		assert.Equal(t, tc.want, c.Direction(tc.cx), "cx=%v", tc.cx)
	}
}

func TestZone(t *testing.T) {
	c := New(DefaultConfig())
	tests := []struct {
		area float64
		want protocol.Zone
	}{
		{0.35, protocol.ZoneNear},
		{0.3, protocol.ZoneMid},
		{0.15, protocol.ZoneMid},
		{0.1, protocol.ZoneFar},
		{0.02, protocol.ZoneFar},
	}
	for _, tc := range tests {
		assert.Equal(t, tc.want, c.Zone(tc.area), "area=%v", tc.area)
	}
}

func TestMovement(t *testing.T) {
	c := New(DefaultConfig())
	tests := []struct {
		name string
		v    *protocol.Velocity
		want protocol.Movement
	}{
		{"nil", nil, protocol.MovementStationary},
		{"down the frame", &protocol.Velocity{DY: 0.02}, protocol.MovementApproaching},
		{"up the frame", &protocol.Velocity{DY: -0.02}, protocol.MovementReceding},
		{"within epsilon", &protocol.Velocity{DX: 0.5, DY: 0.005}, protocol.MovementStationary},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, c.Movement(tc.v))
		})
	}
}

func TestUrgency(t *testing.T) {
	tests := []struct {
		dir  protocol.Direction
		zone protocol.Zone
		mov  protocol.Movement
		want protocol.Urgency
	}{
		{protocol.DirectionCenter, protocol.ZoneNear, protocol.MovementReceding, protocol.UrgencyCritical},
		{protocol.DirectionCenter, protocol.ZoneNear, protocol.MovementStationary, protocol.UrgencyCritical},
		{protocol.DirectionLeft, protocol.ZoneNear, protocol.MovementApproaching, protocol.UrgencyHigh},
		{protocol.DirectionRight, protocol.ZoneNear, protocol.MovementStationary, protocol.UrgencyHigh},
		{protocol.DirectionLeft, protocol.ZoneMid, protocol.MovementApproaching, protocol.UrgencyMedium},
		{protocol.DirectionCenter, protocol.ZoneMid, protocol.MovementStationary, protocol.UrgencyLow},
		{protocol.DirectionCenter, protocol.ZoneFar, protocol.MovementApproaching, protocol.UrgencyLow},
	}
	for _, tc := range tests {
		got := Urgency(tc.dir, tc.zone, tc.mov)
		assert.Equal(t, tc.want, got, "%s/%s/%s", tc.dir, tc.zone, tc.mov)
	}
}

func TestText(t *testing.T) {
	tests := []struct {
		label string
		dir   protocol.Direction
		zone  protocol.Zone
		mov   protocol.Movement
		want  string
	}{
		{"chair", protocol.DirectionLeft, protocol.ZoneFar, protocol.MovementStationary, "chair on your left, in the distance"},
		{"person", protocol.DirectionCenter, protocol.ZoneNear, protocol.MovementApproaching, "person ahead, very close, approaching"},
		{"door", protocol.DirectionRight, protocol.ZoneMid, protocol.MovementReceding, "door on your right, a few steps away, moving away"},
	}
	for _, tc := range tests {
		assert.Equal(t, tc.want, Text(tc.label, tc.dir, tc.zone, tc.mov))
	}
}

func TestClassify(t *testing.T) {
	c := New(DefaultConfig())

	_, ok := c.Classify(protocol.TrackUpdate{TrackID: 1, Label: "chair", Stable: false})
	assert.False(t, ok, "unstable tracks produce no guidance")

	g, ok := c.Classify(protocol.TrackUpdate{
		TrackID:     1,
		TimestampMs: 66,
		Label:       "chair",
		Box:         protocol.Box{X: 0.1, Y: 0.5, W: 0.05, H: 0.05},
		Stable:      true,
		Velocity:    &protocol.Velocity{},
	})
	require.True(t, ok)
	assert.Equal(t, protocol.SpatialGuidance{
		TimestampMs: 66,
		TrackID:     1,
		Label:       "chair",
		Direction:   protocol.DirectionLeft,
		Zone:        protocol.ZoneFar,
		Movement:    protocol.MovementStationary,
		Urgency:     protocol.UrgencyLow,
		Text:        "chair on your left, in the distance",
	}, g)
}

func TestClassify_NearCenterIsCritical(t *testing.T) {
	c := New(DefaultConfig())
	g, ok := c.Classify(protocol.TrackUpdate{
		TrackID:  4,
		Label:    "obstacle",
		Box:      protocol.Box{X: 0.2, Y: 0.2, W: 0.6, H: 0.6},
		Stable:   true,
		Velocity: &protocol.Velocity{DY: -0.2},
	})
	require.True(t, ok)
	assert.Equal(t, protocol.ZoneNear, g.Zone)
	assert.Equal(t, protocol.DirectionCenter, g.Direction)
	assert.Equal(t, protocol.UrgencyCritical, g.Urgency)
}
