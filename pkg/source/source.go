// Package source provides frame sources and a Player that paces them onto
// a FrameChannel while honoring pause, speed and seek commands.
package source

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// DefaultFPS is used when a source does not report a frame rate.
const DefaultFPS = 30

// Info describes a source.
type Info struct {
	FPS         float64 `json:"fps"`
	Width       int     `json:"width"`
	Height      int     `json:"height"`
	TotalFrames int64   `json:"total_frames"`
}

// Source yields JPEG-encoded frames by index.
type Source interface {
	// Info returns the source's frame rate, geometry and length.
	Info() Info

	// Frame returns the JPEG bytes of frame id. Requests past the end
	// return ErrEndOfStream.
	Frame(id int64) ([]byte, error)

	// Close releases resources.
	Close() error
}

// Open selects a source for path. An empty path yields a synthetic source
// built from synth; a directory is replayed as a frame directory and a
// video file is read through gocv.
func Open(path string, synth SyntheticConfig) (Source, error) {
	if path == "" {
		return NewSynthetic(synth)
	}

	st, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("open source: %w", err)
	}
	if st.IsDir() {
		d, err := OpenFrameDir(path)
		if err != nil {
			return nil, err
		}
		return d, nil
	}

	if IsVideoFile(path) {
		v, err := OpenVideoFile(path)
		if err != nil {
			return nil, err
		}
		return v, nil
	}
	return nil, fmt.Errorf("%w: %s", ErrUnsupported, path)
}

// IsVideoFile reports whether path has a video container extension Open
// accepts.
func IsVideoFile(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".mp4", ".avi", ".mov", ".mkv":
		return true
	}
	return false
}
