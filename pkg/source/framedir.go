package source

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// MetadataFile is the file describing a frame directory.
const MetadataFile = "metadata.json"

// FrameName returns the file name of frame id inside a frame directory.
func FrameName(id int64) string {
	return fmt.Sprintf("frame_%04d.jpg", id)
}

// FrameDir replays a directory of numbered JPEG files.
type FrameDir struct {
	dir  string
	info Info
}

// OpenFrameDir reads dir's metadata file.
func OpenFrameDir(dir string) (*FrameDir, error) {
	raw, err := os.ReadFile(filepath.Join(dir, MetadataFile))
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", MetadataFile, err)
	}

	var info Info
	if err := json.Unmarshal(raw, &info); err != nil {
		return nil, fmt.Errorf("parse %s: %w", MetadataFile, err)
	}
	if info.TotalFrames <= 0 {
		return nil, fmt.Errorf("parse %s: total_frames must be positive", MetadataFile)
	}
	if info.FPS <= 0 {
		info.FPS = DefaultFPS
	}
	return &FrameDir{dir: dir, info: info}, nil
}

// Info implements Source.
func (d *FrameDir) Info() Info { return d.info }

// Frame implements Source.
func (d *FrameDir) Frame(id int64) ([]byte, error) {
	if id < 0 || id >= d.info.TotalFrames {
		return nil, ErrEndOfStream
	}
	name := FrameName(id)
	b, err := os.ReadFile(filepath.Join(d.dir, name))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrFrameNotFound, name)
	}
	return b, err
}

// Close implements Source.
func (d *FrameDir) Close() error { return nil }

// WriteFrameDir writes frames and a metadata file into dir, creating it if
// needed. It is the inverse of OpenFrameDir.
func WriteFrameDir(dir string, info Info, frames [][]byte) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	for i, f := range frames {
		if err := os.WriteFile(filepath.Join(dir, FrameName(int64(i))), f, 0o644); err != nil {
			return err
		}
	}
	info.TotalFrames = int64(len(frames))
	raw, err := json.MarshalIndent(info, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(dir, MetadataFile), raw, 0o644)
}
