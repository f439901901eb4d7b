// Package detection turns frames into raw object detections.
//
// Backends implement Detector: a deterministic Stub for demos and tests,
// a YOLO model through gocv (build tag gocv), and a Remote HTTP inference
// service. Guard makes any backend safe to call from the pipeline, and
// Worker runs detection as a pipeline stage.
package detection

import (
	"context"
	"fmt"
	"math"

	"github.com/teslashibe/go-wayfinder/pkg/protocol"
)

// Detector is the interface for detection backends.
type Detector interface {
	// Detect returns every object found in frame.
	Detect(ctx context.Context, frame protocol.FramePacket) (protocol.DetectionResult, error)

	// Close releases resources.
	Close() error
}

// Backend names accepted by Open.
const (
	BackendStub   = "stub"
	BackendYOLO   = "yolo"
	BackendRemote = "remote"
)

// Config selects and configures a backend.
type Config struct {
	Backend   string
	ModelPath string // yolo
	URL       string // remote
}

// Open creates the detector named by cfg.Backend.
func Open(cfg Config) (Detector, error) {
	switch cfg.Backend {
	case BackendStub, "":
		return NewStub(), nil
	case BackendYOLO:
		yc := DefaultYOLOConfig()
		if cfg.ModelPath != "" {
			yc.ModelPath = cfg.ModelPath
		}
		d, err := NewYOLO(yc)
		if err != nil {
			return nil, err
		}
		return d, nil
	case BackendRemote:
		d, err := NewRemote(cfg.URL)
		if err != nil {
			return nil, err
		}
		return d, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownBackend, cfg.Backend)
	}
}

// resultFor builds a DetectionResult stamped with frame's id and time.
func resultFor(frame protocol.FramePacket, objs []protocol.Detection) protocol.DetectionResult {
	if objs == nil {
		objs = []protocol.Detection{}
	}
	return protocol.DetectionResult{
		FrameID:     frame.FrameID,
		TimestampMs: frame.TimestampMs,
		Objects:     objs,
	}
}

// Sanitize drops malformed detections and clamps boxes to the frame.
// A detection is malformed if it has no label, a non-finite field, a
// confidence outside [0,1], or no area left after clamping.
func Sanitize(objs []protocol.Detection) []protocol.Detection {
	out := make([]protocol.Detection, 0, len(objs))
	for _, d := range objs {
		if d.Label == "" || !finite(d.Confidence, d.Box.X, d.Box.Y, d.Box.W, d.Box.H) {
			continue
		}
		if d.Confidence < 0 || d.Confidence > 1 {
			continue
		}
		x1, y1 := clamp01(d.Box.X), clamp01(d.Box.Y)
		x2, y2 := clamp01(d.Box.X+d.Box.W), clamp01(d.Box.Y+d.Box.H)
		if x2 <= x1 || y2 <= y1 {
			continue
		}
		d.Box = protocol.Box{X: x1, Y: y1, W: x2 - x1, H: y2 - y1}
		out = append(out, d)
	}
	return out
}

// FilterConfidence keeps detections with confidence >= threshold.
func FilterConfidence(objs []protocol.Detection, threshold float64) []protocol.Detection {
	out := make([]protocol.Detection, 0, len(objs))
	for _, d := range objs {
		if d.Confidence >= threshold {
			out = append(out, d)
		}
	}
	return out
}

func finite(vs ...float64) bool {
	for _, v := range vs {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

func clamp01(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}
