//go:build !gocv

package detection

import (
	"context"
	"fmt"

	"github.com/teslashibe/go-wayfinder/pkg/protocol"
)

// YOLO is unavailable without the gocv build tag.
type YOLO struct{}

// NewYOLO returns ErrUnavailable. Build with -tags gocv to enable it.
func NewYOLO(cfg YOLOConfig) (*YOLO, error) {
	return nil, fmt.Errorf("%w: yolo requires building with -tags gocv", ErrUnavailable)
}

// Detect implements Detector.
func (d *YOLO) Detect(ctx context.Context, frame protocol.FramePacket) (protocol.DetectionResult, error) {
	return protocol.DetectionResult{}, ErrUnavailable
}

// Close implements Detector.
func (d *YOLO) Close() error { return nil }
