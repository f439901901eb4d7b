package detection

import (
	"context"
	"math"

	"github.com/teslashibe/go-wayfinder/pkg/protocol"
)

// Stub generates deterministic detections from the frame id alone:
//
//   - a person crossing left to right, seen every 3rd frame
//   - a stationary door
//   - an obstacle growing in front of the viewer, frames 50-200
//   - a second person walking right to left from frame 150
//   - a hazard on the floor, frames 200-250
type Stub struct{}

// NewStub creates a stub detector.
func NewStub() *Stub {
	return &Stub{}
}

// Detect implements Detector.
func (s *Stub) Detect(ctx context.Context, frame protocol.FramePacket) (protocol.DetectionResult, error) {
	return resultFor(frame, StubPattern(frame.FrameID)), nil
}

// Close implements Detector.
func (s *Stub) Close() error { return nil }

// StubPattern returns the stub detections for frame f.
func StubPattern(f int64) []protocol.Detection {
	var dets []protocol.Detection

	if f%3 == 0 {
		progress := math.Mod(float64(f)*0.005, 1.0)
		dets = append(dets, protocol.Detection{
			Label:      "person",
			Confidence: 0.85,
			Box:        protocol.Box{X: 0.05 + progress*0.7, Y: 0.35, W: 0.10, H: 0.25},
		})
	}

	dets = append(dets, protocol.Detection{
		Label:      "door",
		Confidence: 0.92,
		Box:        protocol.Box{X: 0.75, Y: 0.25, W: 0.12, H: 0.40},
	})

	if f >= 50 && f <= 200 {
		size := 0.05 + float64(f-50)/150*0.15
		dets = append(dets, protocol.Detection{
			Label:      "obstacle",
			Confidence: 0.78,
			Box:        protocol.Box{X: 0.40, Y: 0.50, W: size, H: size},
		})
	}

	if f >= 150 {
		if x := 0.85 - float64(f-150)*0.003; x > 0.1 {
			dets = append(dets, protocol.Detection{
				Label:      "person",
				Confidence: 0.80,
				Box:        protocol.Box{X: x, Y: 0.40, W: 0.08, H: 0.20},
			})
		}
	}

	if f >= 200 && f <= 250 {
		dets = append(dets, protocol.Detection{
			Label:      "hazard",
			Confidence: 0.75,
			Box:        protocol.Box{X: 0.20, Y: 0.60, W: 0.12, H: 0.08},
		})
	}

	return dets
}
