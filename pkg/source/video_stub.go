//go:build !gocv

package source

import "fmt"

// VideoFile is unavailable without the gocv build tag.
type VideoFile struct{}

// OpenVideoFile returns ErrUnsupported. Build with -tags gocv to enable it.
func OpenVideoFile(path string) (*VideoFile, error) {
	return nil, fmt.Errorf("%w: video files require building with -tags gocv", ErrUnsupported)
}

// Info implements Source.
func (v *VideoFile) Info() Info { return Info{} }

// Frame implements Source.
func (v *VideoFile) Frame(id int64) ([]byte, error) { return nil, ErrUnsupported }

// Close implements Source.
func (v *VideoFile) Close() error { return nil }
