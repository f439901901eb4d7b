//go:build gocv

package source

import (
	"errors"
	"fmt"
	"sync"

	"gocv.io/x/gocv"
)

// VideoFile reads frames from a video container through OpenCV.
type VideoFile struct {
	mu   sync.Mutex // protects cap and next
	cap  *gocv.VideoCapture
	mat  gocv.Mat
	info Info
	next int64
}

// OpenVideoFile opens path and reads its properties.
func OpenVideoFile(path string) (*VideoFile, error) {
	vc, err := gocv.VideoCaptureFile(path)
	if err != nil {
		return nil, fmt.Errorf("open video %s: %w", path, err)
	}
	if !vc.IsOpened() {
		vc.Close()
		return nil, fmt.Errorf("open video %s: not readable", path)
	}

	info := Info{
		FPS:         vc.Get(gocv.VideoCaptureFPS),
		Width:       int(vc.Get(gocv.VideoCaptureFrameWidth)),
		Height:      int(vc.Get(gocv.VideoCaptureFrameHeight)),
		TotalFrames: int64(vc.Get(gocv.VideoCaptureFrameCount)),
	}
	if info.FPS <= 0 {
		info.FPS = DefaultFPS
	}
	return &VideoFile{cap: vc, mat: gocv.NewMat(), info: info}, nil
}

// Info implements Source.
func (v *VideoFile) Info() Info { return v.info }

// Frame implements Source. Sequential reads avoid a seek.
func (v *VideoFile) Frame(id int64) ([]byte, error) {
	v.mu.Lock()
	defer v.mu.Unlock()

	if id < 0 || (v.info.TotalFrames > 0 && id >= v.info.TotalFrames) {
		return nil, ErrEndOfStream
	}
	if id != v.next {
		v.cap.Set(gocv.VideoCapturePosFrames, float64(id))
	}
	if ok := v.cap.Read(&v.mat); !ok || v.mat.Empty() {
		return nil, ErrEndOfStream
	}
	v.next = id + 1

	buf, err := gocv.IMEncodeWithParams(gocv.JPEGFileExt, v.mat, []int{gocv.IMWriteJpegQuality, 85})
	if err != nil {
		return nil, fmt.Errorf("encode frame %d: %w", id, err)
	}
	defer buf.Close()
	return append([]byte(nil), buf.GetBytes()...), nil
}

// Close implements Source.
func (v *VideoFile) Close() error {
	v.mu.Lock()
	defer v.mu.Unlock()
	return errors.Join(v.mat.Close(), v.cap.Close())
}
