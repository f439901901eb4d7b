// Package spatial classifies stable tracks into direction, distance zone,
// movement and urgency, and phrases the result as spoken guidance.
package spatial

import (
	"github.com/teslashibe/go-wayfinder/pkg/protocol"
)

// Config holds the classification thresholds. All values are in
// normalized frame units.
type Config struct {
	LeftBound     float64 // center x below this is left
	RightBound    float64 // center x at or above this is right
	NearArea      float64 // box area above this is near
	MidArea       float64 // box area above this is mid
	MotionEpsilon float64 // |dy| per frame below this is stationary
}

// DefaultConfig returns the production thresholds.
func DefaultConfig() Config {
	return Config{
		LeftBound:     1.0 / 3.0,
		RightBound:    2.0 / 3.0,
		NearArea:      0.3,
		MidArea:       0.1,
		MotionEpsilon: 0.01,
	}
}

// Classifier turns track updates into guidance. It holds no per-track
// state and is safe for concurrent use.
type Classifier struct {
	config Config
}

// New creates a classifier.
func New(config Config) *Classifier {
	return &Classifier{config: config}
}

// Classify returns guidance for u. Non-stable updates yield false.
func (c *Classifier) Classify(u protocol.TrackUpdate) (protocol.SpatialGuidance, bool) {
	if !u.Stable {
		return protocol.SpatialGuidance{}, false
	}

	cx, _ := u.Box.Center()
	dir := c.Direction(cx)
	zone := c.Zone(u.Box.Area())
	mov := c.Movement(u.Velocity)

	return protocol.SpatialGuidance{
		TimestampMs: u.TimestampMs,
		TrackID:     u.TrackID,
		Label:       u.Label,
		Direction:   dir,
		Zone:        zone,
		Movement:    mov,
		Urgency:     Urgency(dir, zone, mov),
		Text:        Text(u.Label, dir, zone, mov),
	}, true
}

// Direction buckets a box-center x coordinate.
func (c *Classifier) Direction(cx float64) protocol.Direction {
	switch {
	case cx < c.config.LeftBound:
		return protocol.DirectionLeft
	case cx < c.config.RightBound:
		return protocol.DirectionCenter
	default:
		return protocol.DirectionRight
	}
}

// Zone buckets a box area.
func (c *Classifier) Zone(area float64) protocol.Zone {
	switch {
	case area > c.config.NearArea:
		return protocol.ZoneNear
	case area > c.config.MidArea:
		return protocol.ZoneMid
	default:
		return protocol.ZoneFar
	}
}

// Movement reads the vertical component of v. Objects moving down the
// frame are approaching. A nil velocity is stationary.
func (c *Classifier) Movement(v *protocol.Velocity) protocol.Movement {
	switch {
	case v == nil:
		return protocol.MovementStationary
	case v.DY > c.config.MotionEpsilon:
		return protocol.MovementApproaching
	case v.DY < -c.config.MotionEpsilon:
		return protocol.MovementReceding
	default:
		return protocol.MovementStationary
	}
}

// Urgency ranks a classified position, first rule wins.
func Urgency(dir protocol.Direction, zone protocol.Zone, mov protocol.Movement) protocol.Urgency {
	switch {
	case zone == protocol.ZoneNear && dir == protocol.DirectionCenter:
		return protocol.UrgencyCritical
	case zone == protocol.ZoneNear:
		return protocol.UrgencyHigh
	case zone == protocol.ZoneMid && mov == protocol.MovementApproaching:
		return protocol.UrgencyMedium
	default:
		return protocol.UrgencyLow
	}
}
