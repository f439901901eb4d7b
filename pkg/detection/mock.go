package detection

import (
	"context"
	"sync"

	"github.com/teslashibe/go-wayfinder/pkg/protocol"
)

// Scripted implements Detector for testing.
// Frames are answered from Script by frame id; DetectFunc, when set, wins.
type Scripted struct {
	// Script maps frame id to the detections returned for it.
	Script map[int64][]protocol.Detection

	// Default is returned for frames missing from Script.
	Default []protocol.Detection

	// DetectFunc overrides Script. It may return an error or panic.
	DetectFunc func(ctx context.Context, frame protocol.FramePacket) ([]protocol.Detection, error)

	mu     sync.Mutex
	calls  []int64
	closed bool
}

// NewScripted creates a detector that returns the same detections for every frame.
func NewScripted(dets ...protocol.Detection) *Scripted {
	return &Scripted{Default: dets}
}

// Detect implements Detector.
func (s *Scripted) Detect(ctx context.Context, frame protocol.FramePacket) (protocol.DetectionResult, error) {
	s.mu.Lock()
	s.calls = append(s.calls, frame.FrameID)
	fn := s.DetectFunc
	s.mu.Unlock()

	if fn != nil {
		objs, err := fn(ctx, frame)
		if err != nil {
			return protocol.DetectionResult{}, err
		}
		return resultFor(frame, objs), nil
	}

	objs, ok := s.Script[frame.FrameID]
	if !ok {
		objs = s.Default
	}
	return resultFor(frame, append([]protocol.Detection(nil), objs...)), nil
}

// Close implements Detector.
func (s *Scripted) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

// Calls returns the frame ids seen so far.
func (s *Scripted) Calls() []int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]int64(nil), s.calls...)
}

// Closed reports whether Close was called.
func (s *Scripted) Closed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}
