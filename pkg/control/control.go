// Package control holds the process-wide playback and tuning state.
//
// State is an immutable Snapshot swapped atomically on every accepted
// command. Readers call Load and never block; writers are serialized.
package control

import (
	"encoding/json"
	"fmt"
	"math"
	"sync"
	"sync/atomic"
	"time"
)

// Snapshot is one consistent view of the control state. Never mutate a
// Snapshot returned by Load.
type Snapshot struct {
	Paused                 bool          `json:"paused"`
	Speed                  float64       `json:"speed"`
	DetectionConfThreshold float64       `json:"detection_conf_threshold"`
	TrackerIoUThreshold    float64       `json:"tracker_iou_threshold"`
	FusionCooldown         time.Duration `json:"-"`
}

// CooldownSeconds returns FusionCooldown in seconds.
func (s Snapshot) CooldownSeconds() float64 {
	return s.FusionCooldown.Seconds()
}

// MarshalJSON reports the cooldown in seconds.
func (s Snapshot) MarshalJSON() ([]byte, error) {
	type plain Snapshot
	return json.Marshal(struct {
		plain
		FusionCooldownSeconds float64 `json:"fusion_cooldown_seconds"`
	}{plain(s), s.CooldownSeconds()})
}

// Defaults returns the startup state.
func Defaults() Snapshot {
	return Snapshot{
		Paused:                 false,
		Speed:                  1.0,
		DetectionConfThreshold: 0.5,
		TrackerIoUThreshold:    0.3,
		FusionCooldown:         3 * time.Second,
	}
}

// Accepted ranges for speed and cooldown.
const (
	MinSpeed = 0.01
	MaxSpeed = 100.0

	MaxFusionCooldown = time.Hour
)

// Command kinds.
const (
	KindPlay         = "play"
	KindPause        = "pause"
	KindSpeed        = "speed"
	KindSeek         = "seek"
	KindSetThreshold = "set_threshold"
)

// Value keys.
const (
	KeySpeed                  = "speed"
	KeyFrameID                = "frame_id"
	KeyDetectionConfThreshold = "detection_conf_threshold"
	KeyTrackerIoUThreshold    = "tracker_iou_threshold"
	KeyFusionCooldownSeconds  = "fusion_cooldown_seconds"
)

// Command is an external control request.
type Command struct {
	Kind  string             `json:"kind"`
	Value map[string]float64 `json:"value,omitempty"`
}

// Store owns the control state.
type Store struct {
	mu   sync.Mutex // serializes writers
	snap atomic.Pointer[Snapshot]
	seek atomic.Int64 // pending seek frame, -1 when none
}

// NewStore creates a store holding initial.
func NewStore(initial Snapshot) *Store {
	s := &Store{}
	s.snap.Store(&initial)
	s.seek.Store(-1)
	return s
}

// Load returns the current snapshot.
func (s *Store) Load() Snapshot {
	return *s.snap.Load()
}

// TakeSeek returns and clears the pending seek target.
func (s *Store) TakeSeek() (int64, bool) {
	v := s.seek.Swap(-1)
	return v, v >= 0
}

// Apply validates cmd and, if valid, replaces the state. The returned
// snapshot is the state after the command. On error the state is unchanged
// and the previous snapshot is returned.
func (s *Store) Apply(cmd Command) (Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cur := *s.snap.Load()
	next := cur

	switch cmd.Kind {
	case KindPlay:
		next.Paused = false
	case KindPause:
		next.Paused = true
	case KindSpeed:
		v, ok := cmd.Value[KeySpeed]
		if !ok || !(v >= MinSpeed && v <= MaxSpeed) {
			return cur, fmt.Errorf("%w: speed must be in [%g,%g]", ErrInvalidValue, MinSpeed, MaxSpeed)
		}
		next.Speed = v
	case KindSeek:
		v, ok := cmd.Value[KeyFrameID]
		if !ok || v < 0 || v != math.Trunc(v) || v > math.MaxInt32 {
			return cur, fmt.Errorf("%w: frame_id must be a non-negative integer", ErrInvalidValue)
		}
		s.seek.Store(int64(v))
		return cur, nil
	case KindSetThreshold:
		var err error
		if next, err = applyThresholds(next, cmd.Value); err != nil {
			return cur, err
		}
	default:
		return cur, fmt.Errorf("%w: %q", ErrUnknownCommand, cmd.Kind)
	}

	s.snap.Store(&next)
	return next, nil
}

func applyThresholds(next Snapshot, values map[string]float64) (Snapshot, error) {
	if len(values) == 0 {
		return next, fmt.Errorf("%w: set_threshold needs at least one value", ErrInvalidValue)
	}
	for k, v := range values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return next, fmt.Errorf("%w: %s is not a finite number", ErrInvalidValue, k)
		}
		switch k {
		case KeyDetectionConfThreshold:
			if v < 0 || v > 1 {
				return next, fmt.Errorf("%w: %s must be in [0,1]", ErrInvalidValue, k)
			}
			next.DetectionConfThreshold = v
		case KeyTrackerIoUThreshold:
			if v < 0 || v > 1 {
				return next, fmt.Errorf("%w: %s must be in [0,1]", ErrInvalidValue, k)
			}
			next.TrackerIoUThreshold = v
		case KeyFusionCooldownSeconds:
			if v < 0 || v > MaxFusionCooldown.Seconds() {
				return next, fmt.Errorf("%w: %s must be in [0,%g]", ErrInvalidValue, k, MaxFusionCooldown.Seconds())
			}
			next.FusionCooldown = time.Duration(v * float64(time.Second))
		default:
			return next, fmt.Errorf("%w: unknown threshold %q", ErrInvalidValue, k)
		}
	}
	return next, nil
}
