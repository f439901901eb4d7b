package source

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
)

// Kinds reported by List.
const (
	KindVideo  = "video"
	KindFrames = "frames"
)

// Entry is a replayable source found by List.
type Entry struct {
	Name string `json:"name"`
	Path string `json:"path"`
	Kind string `json:"kind"`
}

// List returns the video files and frame directories directly under dir,
// sorted by name. A missing dir yields no entries.
func List(dir string) ([]Entry, error) {
	entries := []Entry{}
	if dir == "" {
		return entries, nil
	}

	des, err := os.ReadDir(dir)
	if errors.Is(err, fs.ErrNotExist) {
		return entries, nil
	}
	if err != nil {
		return nil, err
	}

	for _, de := range des {
		path := filepath.Join(dir, de.Name())
		switch {
		case de.IsDir():
			if _, err := os.Stat(filepath.Join(path, MetadataFile)); err == nil {
				entries = append(entries, Entry{Name: de.Name(), Path: path, Kind: KindFrames})
			}
		case IsVideoFile(path):
			entries = append(entries, Entry{Name: de.Name(), Path: path, Kind: KindVideo})
		}
	}
	return entries, nil
}
