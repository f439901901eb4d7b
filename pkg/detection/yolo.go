//go:build gocv

package detection

import (
	"context"
	"errors"
	"fmt"
	"image"
	"os"
	"sync"

	"gocv.io/x/gocv"

	"github.com/teslashibe/go-wayfinder/pkg/protocol"
)

// YOLO runs a YOLOv8 ONNX model through OpenCV's DNN module.
type YOLO struct {
	net       gocv.Net
	config    YOLOConfig
	mu        sync.Mutex // protects inference
	inputSize image.Point
}

// NewYOLO loads the model at cfg.ModelPath.
func NewYOLO(cfg YOLOConfig) (*YOLO, error) {
	if _, err := os.Stat(cfg.ModelPath); errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrModelNotFound, cfg.ModelPath)
	}

	net := gocv.ReadNetFromONNX(cfg.ModelPath)
	if net.Empty() {
		return nil, fmt.Errorf("failed to load YOLO model from %s", cfg.ModelPath)
	}
	net.SetPreferableBackend(gocv.NetBackendDefault)
	net.SetPreferableTarget(gocv.NetTargetCPU)

	return &YOLO{
		net:       net,
		config:    cfg,
		inputSize: image.Pt(cfg.InputWidth, cfg.InputHeight),
	}, nil
}

// Detect implements Detector.
func (d *YOLO) Detect(ctx context.Context, frame protocol.FramePacket) (protocol.DetectionResult, error) {
	if err := ctx.Err(); err != nil {
		return protocol.DetectionResult{}, err
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	img, err := gocv.IMDecode(frame.JPEG, gocv.IMReadColor)
	if err != nil {
		return protocol.DetectionResult{}, fmt.Errorf("decode image: %w", err)
	}
	defer img.Close()

	if img.Empty() {
		return protocol.DetectionResult{}, fmt.Errorf("empty image")
	}

	blob := gocv.BlobFromImage(img, 1.0/255.0, d.inputSize, gocv.NewScalar(0, 0, 0, 0), true, false)
	defer blob.Close()

	d.net.SetInput(blob, "")
	output := d.net.Forward("")
	defer output.Close()

	objs := d.parseOutput(output, float32(img.Cols()), float32(img.Rows()))
	return resultFor(frame, objs), nil
}

// parseOutput decodes the [1, 84, 8400] YOLOv8 tensor: 4 box values
// (cx, cy, w, h in input pixels) followed by 80 class scores per column.
func (d *YOLO) parseOutput(output gocv.Mat, imgW, imgH float32) []protocol.Detection {
	rows := output.Cols()
	cols := output.Rows()

	data, err := output.DataPtrFloat32()
	if err != nil {
		return nil
	}

	var (
		boxes       []image.Rectangle
		confidences []float32
		classIDs    []int
	)
	sx := imgW / float32(d.config.InputWidth)
	sy := imgH / float32(d.config.InputHeight)

	for i := 0; i < rows; i++ {
		maxScore := float32(0)
		maxClassID := 0
		for c := 4; c < cols; c++ {
			if score := data[c*rows+i]; score > maxScore {
				maxScore = score
				maxClassID = c - 4
			}
		}
		if maxScore < d.config.ConfidenceThresh {
			continue
		}

		cx, cy := data[i], data[rows+i]
		w, h := data[2*rows+i], data[3*rows+i]
		boxes = append(boxes, image.Rect(
			int((cx-w/2)*sx), int((cy-h/2)*sy),
			int((cx+w/2)*sx), int((cy+h/2)*sy),
		))
		confidences = append(confidences, maxScore)
		classIDs = append(classIDs, maxClassID)
	}

	if len(boxes) == 0 {
		return nil
	}

	indices := gocv.NMSBoxes(boxes, confidences, d.config.ConfidenceThresh, d.config.NMSThresh)
	objs := make([]protocol.Detection, 0, len(indices))
	for _, idx := range indices {
		box := boxes[idx]
		objs = append(objs, protocol.Detection{
			Label:      ClassName(classIDs[idx]),
			Confidence: float64(confidences[idx]),
			Box: protocol.Box{
				X: float64(box.Min.X) / float64(imgW),
				Y: float64(box.Min.Y) / float64(imgH),
				W: float64(box.Dx()) / float64(imgW),
				H: float64(box.Dy()) / float64(imgH),
			},
		})
	}
	return objs
}

// Close releases the network.
func (d *YOLO) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.net.Close()
}
