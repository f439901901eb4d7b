package protocol

import (
	"encoding/json"
	"fmt"
)

// =============================================================================
// Geometry
// =============================================================================

// Box is a bounding box normalized to [0,1] by frame width and height.
// X and Y are the top-left corner. It encodes as [x, y, w, h].
type Box struct {
	X, Y, W, H float64
}

// Center returns the box center.
func (b Box) Center() (cx, cy float64) {
	return b.X + b.W/2, b.Y + b.H/2
}

// Area returns w*h.
func (b Box) Area() float64 {
	return b.W * b.H
}

// MarshalJSON encodes the box as a 4-element array.
func (b Box) MarshalJSON() ([]byte, error) {
	return json.Marshal([4]float64{b.X, b.Y, b.W, b.H})
}

// UnmarshalJSON decodes a 4-element array.
func (b *Box) UnmarshalJSON(data []byte) error {
	var v []float64
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	if len(v) != 4 {
		return fmt.Errorf("box must have 4 elements, got %d", len(v))
	}
	*b = Box{X: v[0], Y: v[1], W: v[2], H: v[3]}
	return nil
}

// Velocity is the per-frame center displacement in normalized units.
// It encodes as [dx, dy].
type Velocity struct {
	DX, DY float64
}

// MarshalJSON encodes the velocity as a 2-element array.
func (v Velocity) MarshalJSON() ([]byte, error) {
	return json.Marshal([2]float64{v.DX, v.DY})
}

// UnmarshalJSON decodes a 2-element array.
func (v *Velocity) UnmarshalJSON(data []byte) error {
	var a []float64
	if err := json.Unmarshal(data, &a); err != nil {
		return err
	}
	if len(a) != 2 {
		return fmt.Errorf("velocity must have 2 elements, got %d", len(a))
	}
	*v = Velocity{DX: a[0], DY: a[1]}
	return nil
}

// =============================================================================
// Frames and detections
// =============================================================================

// FramePacket is one encoded video frame. Frames are immutable once published.
type FramePacket struct {
	FrameID     int64  `json:"frame_id"`
	TimestampMs int64  `json:"timestamp_ms"`
	Width       int    `json:"width"`
	Height      int    `json:"height"`
	JPEG        []byte `json:"-"`
}

// Meta returns the frame without its image payload.
func (f FramePacket) Meta() FrameMeta {
	return FrameMeta{FrameID: f.FrameID, TimestampMs: f.TimestampMs, Width: f.Width, Height: f.Height}
}

// FrameMeta describes a frame for UI clients.
type FrameMeta struct {
	FrameID     int64 `json:"frame_id"`
	TimestampMs int64 `json:"timestamp_ms"`
	Width       int   `json:"width"`
	Height      int   `json:"height"`
}

// Detection is a single raw detector output.
type Detection struct {
	Label      string  `json:"label"`
	Confidence float64 `json:"confidence"`
	Box        Box     `json:"bbox"`
}

// DetectionResult holds every detection for one frame. Objects may be empty.
type DetectionResult struct {
	FrameID     int64       `json:"frame_id"`
	TimestampMs int64       `json:"timestamp_ms"`
	Objects     []Detection `json:"objects"`
}

// =============================================================================
// Tracking and guidance
// =============================================================================

// TrackUpdate is a snapshot of one live track after a frame.
type TrackUpdate struct {
	TrackID     int       `json:"track_id"`
	FrameID     int64     `json:"frame_id"`
	TimestampMs int64     `json:"timestamp_ms"`
	Label       string    `json:"label"`
	Box         Box       `json:"bbox"`
	Stable      bool      `json:"stable"`
	Velocity    *Velocity `json:"velocity"` // nil until two observations exist
}

// Direction is the horizontal position relative to the viewer.
type Direction string

const (
	DirectionLeft   Direction = "left"
	DirectionCenter Direction = "center"
	DirectionRight  Direction = "right"
)

// Zone is a coarse distance bucket inferred from box area.
type Zone string

const (
	ZoneNear Zone = "near"
	ZoneMid  Zone = "mid"
	ZoneFar  Zone = "far"
)

// Movement is the vertical motion trend of a track.
type Movement string

const (
	MovementApproaching Movement = "approaching"
	MovementReceding    Movement = "receding"
	MovementStationary  Movement = "stationary"
)

// Urgency drives announcement priority.
type Urgency string

const (
	UrgencyLow      Urgency = "low"
	UrgencyMedium   Urgency = "medium"
	UrgencyHigh     Urgency = "high"
	UrgencyCritical Urgency = "critical"
)

// SpatialGuidance is the classified position of a stable track.
type SpatialGuidance struct {
	TimestampMs int64     `json:"timestamp_ms"`
	TrackID     int       `json:"track_id"`
	Label       string    `json:"label"`
	Direction   Direction `json:"direction"`
	Zone        Zone      `json:"zone"`
	Movement    Movement  `json:"movement"`
	Urgency     Urgency   `json:"urgency"`
	Text        string    `json:"guidance_text"`
}

// =============================================================================
// Announcements
// =============================================================================

// Kind categorizes an announcement.
type Kind string

const (
	KindObject     Kind = "object"
	KindHazard     Kind = "hazard"
	KindNavigation Kind = "navigation"
	KindStatus     Kind = "status"
)

// FusionAnnouncement is a user-facing message selected by the fusion policy.
// Priority runs from 1 (highest) to 5. TrackID is 0 for status announcements.
type FusionAnnouncement struct {
	ID          string `json:"id"`
	TimestampMs int64  `json:"timestamp_ms"`
	Text        string `json:"text"`
	Kind        Kind   `json:"kind"`
	Priority    int    `json:"priority"`
	TrackID     int    `json:"track_id,omitempty"`
}

// SceneDescription is a periodic summary of everything currently in view.
type SceneDescription struct {
	TimestampMs int64  `json:"timestamp_ms"`
	Description string `json:"description"`
	ObjectCount int    `json:"object_count"`
	TrackIDs    []int  `json:"track_ids"`
}
