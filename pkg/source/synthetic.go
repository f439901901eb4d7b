package source

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"
)

// SyntheticConfig configures a Synthetic source.
type SyntheticConfig struct {
	Width       int
	Height      int
	FPS         float64
	TotalFrames int64
}

// DefaultSyntheticConfig returns ten seconds of 640x480 video at 30 fps.
func DefaultSyntheticConfig() SyntheticConfig {
	return SyntheticConfig{
		Width:       640,
		Height:      480,
		FPS:         DefaultFPS,
		TotalFrames: 300,
	}
}

// Synthetic yields the same solid gray frame TotalFrames times. It pairs
// with the stub detector, which derives objects from the frame id alone.
type Synthetic struct {
	info Info
	jpeg []byte
}

// NewSynthetic encodes the frame once. Zero fields take their defaults.
func NewSynthetic(cfg SyntheticConfig) (*Synthetic, error) {
	def := DefaultSyntheticConfig()
	if cfg.Width <= 0 {
		cfg.Width = def.Width
	}
	if cfg.Height <= 0 {
		cfg.Height = def.Height
	}
	if cfg.FPS <= 0 {
		cfg.FPS = def.FPS
	}
	if cfg.TotalFrames <= 0 {
		cfg.TotalFrames = def.TotalFrames
	}

	img := image.NewGray(image.Rect(0, 0, cfg.Width, cfg.Height))
	for i := range img.Pix {
		img.Pix[i] = 0x80
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: 85}); err != nil {
		return nil, fmt.Errorf("encode synthetic frame: %w", err)
	}

	return &Synthetic{
		info: Info{
			FPS:         cfg.FPS,
			Width:       cfg.Width,
			Height:      cfg.Height,
			TotalFrames: cfg.TotalFrames,
		},
		jpeg: buf.Bytes(),
	}, nil
}

// Info implements Source.
func (s *Synthetic) Info() Info { return s.info }

// Frame implements Source.
func (s *Synthetic) Frame(id int64) ([]byte, error) {
	if id < 0 || id >= s.info.TotalFrames {
		return nil, ErrEndOfStream
	}
	return s.jpeg, nil
}

// Close implements Source.
func (s *Synthetic) Close() error { return nil }
