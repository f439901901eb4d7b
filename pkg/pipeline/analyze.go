package pipeline

import (
	"context"
	"errors"
	"fmt"

	"github.com/teslashibe/go-wayfinder/pkg/control"
	"github.com/teslashibe/go-wayfinder/pkg/detection"
	"github.com/teslashibe/go-wayfinder/pkg/fusion"
	"github.com/teslashibe/go-wayfinder/pkg/protocol"
	"github.com/teslashibe/go-wayfinder/pkg/source"
	"github.com/teslashibe/go-wayfinder/pkg/spatial"
	"github.com/teslashibe/go-wayfinder/pkg/tracking"
)

// StepResult is everything one frame produced.
type StepResult struct {
	Detections    protocol.DetectionResult
	Updates       []protocol.TrackUpdate
	Guidance      []protocol.SpatialGuidance
	Announcements []protocol.FusionAnnouncement
}

// Analyzer runs the detector, tracker, classifier and fusion policy
// synchronously, one frame at a time, without dropping frames.
type Analyzer struct {
	det        *detection.Guard
	tracker    *tracking.Tracker
	classifier *spatial.Classifier
	policy     *fusion.Policy
	control    control.Snapshot
}

// NewAnalyzer creates an analyzer. Thresholds and cooldown come from
// cfg.Control.
func NewAnalyzer(det detection.Detector, cfg Config) *Analyzer {
	return &Analyzer{
		det:        detection.NewGuard(det, nil),
		tracker:    tracking.New(cfg.Tracking),
		classifier: spatial.New(cfg.Spatial),
		policy:     fusion.New(cfg.Fusion),
		control:    cfg.Control,
	}
}

// Step pushes one frame through every stage.
func (a *Analyzer) Step(ctx context.Context, frame protocol.FramePacket) StepResult {
	res, _ := a.det.Detect(ctx, frame)
	res.Objects = detection.FilterConfidence(res.Objects, a.control.DetectionConfThreshold)

	out := StepResult{Detections: res}
	out.Updates = a.tracker.Update(res, a.control.TrackerIoUThreshold)
	for _, u := range out.Updates {
		g, ok := a.classifier.Classify(u)
		if !ok {
			continue
		}
		out.Guidance = append(out.Guidance, g)
		if ann, ok := a.policy.Decide(g, a.control.FusionCooldown); ok {
			out.Announcements = append(out.Announcements, ann)
		}
	}
	return out
}

// Report summarizes an offline analysis.
type Report struct {
	Frames           int64                         `json:"frames"`
	Detections       int                           `json:"detections"`
	Tracks           int                           `json:"tracks"` // created over the run
	Guidance         int                           `json:"guidance"`
	DetectorFailures uint64                        `json:"detector_failures"`
	Announcements    []protocol.FusionAnnouncement `json:"announcements"`
}

// Analyze steps through every frame of src. Frame timestamps start at 0
// and follow the source's frame rate. progress, when non-nil, is called
// after each frame.
func (a *Analyzer) Analyze(ctx context.Context, src source.Source, progress func(done int64)) (Report, error) {
	info := src.Info()
	var rep Report

	for id := int64(0); info.TotalFrames <= 0 || id < info.TotalFrames; id++ {
		if err := ctx.Err(); err != nil {
			return rep, err
		}

		jpg, err := src.Frame(id)
		if errors.Is(err, source.ErrEndOfStream) {
			break
		}
		if err != nil {
			return rep, fmt.Errorf("read frame %d: %w", id, err)
		}

		step := a.Step(ctx, protocol.FramePacket{
			FrameID:     id,
			TimestampMs: source.TimestampMs(0, id, info.FPS),
			Width:       info.Width,
			Height:      info.Height,
			JPEG:        jpg,
		})
		rep.Frames++
		rep.Detections += len(step.Detections.Objects)
		rep.Guidance += len(step.Guidance)
		rep.Announcements = append(rep.Announcements, step.Announcements...)
		if progress != nil {
			progress(rep.Frames)
		}
	}

	rep.Tracks = a.tracker.Live() + a.tracker.Removed()
	rep.DetectorFailures = a.det.Failures()
	return rep, nil
}
