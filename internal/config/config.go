// Package config provides configuration helpers for wayfinder commands.
//
// Settings come from the process environment, optionally seeded from a
// .env file in the working directory. Flags set on the command line win
// over both.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/teslashibe/go-wayfinder/internal/log"
)

// Environment variable names.
const (
	EnvLogLevel    = "WAYFINDER_LOG_LEVEL"
	EnvPort        = "WAYFINDER_PORT"
	EnvSource      = "WAYFINDER_SOURCE"
	EnvFPS         = "WAYFINDER_FPS"
	EnvDetector    = "WAYFINDER_DETECTOR"
	EnvDetectorURL = "WAYFINDER_DETECTOR_URL"
	EnvModel       = "WAYFINDER_MODEL"
	EnvCooldown    = "WAYFINDER_COOLDOWN"
	EnvSpeaker     = "WAYFINDER_SPEAKER"
)

// Default settings.
const (
	DefaultPort      = "8080"
	DefaultFPS       = 30
	DefaultDetector  = "stub"
	DefaultModelPath = "models/yolov8n.onnx"
	DefaultCooldown  = 3 * time.Second
	DefaultSpeaker   = "log"
)

// Detector backends accepted by Settings.Detector.
var detectorKinds = map[string]bool{
	"stub":   true,
	"yolo":   true,
	"remote": true,
}

// Settings holds process-level configuration.
type Settings struct {
	LogLevel    string
	Port        string
	Source      string // frame directory; empty selects the synthetic source
	FPS         int
	Detector    string
	DetectorURL string
	ModelPath   string
	Cooldown    time.Duration
	Speaker     string // "log", "none", or a text-to-speech command such as espeak
}

// Defaults returns settings with every field at its default.
func Defaults() Settings {
	return Settings{
		LogLevel:  "info",
		Port:      DefaultPort,
		FPS:       DefaultFPS,
		Detector:  DefaultDetector,
		ModelPath: DefaultModelPath,
		Cooldown:  DefaultCooldown,
		Speaker:   DefaultSpeaker,
	}
}

// Load reads .env (when present) and the WAYFINDER_* environment.
// Malformed numeric values fall back to their defaults.
func Load() Settings {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Warn("could not read .env file", "error", err)
	}
	return FromEnv(os.Getenv)
}

// FromEnv builds settings from a lookup function.
func FromEnv(getenv func(string) string) Settings {
	s := Defaults()

	if v := getenv(EnvLogLevel); v != "" {
		s.LogLevel = v
	}
	if v := getenv(EnvPort); v != "" {
		s.Port = v
	}
	s.Source = getenv(EnvSource)
	if v := getenv(EnvFPS); v != "" {
		fps, err := strconv.Atoi(v)
		if err != nil || fps <= 0 {
			log.Warn("ignoring invalid fps", "value", v)
		} else {
			s.FPS = fps
		}
	}
	if v := getenv(EnvDetector); v != "" {
		s.Detector = strings.ToLower(v)
	}
	s.DetectorURL = getenv(EnvDetectorURL)
	if v := getenv(EnvModel); v != "" {
		s.ModelPath = v
	}
	if v := getenv(EnvCooldown); v != "" {
		d, err := parseDuration(v)
		if err != nil || d < 0 {
			log.Warn("ignoring invalid cooldown", "value", v)
		} else {
			s.Cooldown = d
		}
	}
	if v := getenv(EnvSpeaker); v != "" {
		s.Speaker = v
	}
	return s
}

// parseDuration accepts Go durations ("3s") and bare seconds ("2.5").
func parseDuration(v string) (time.Duration, error) {
	if d, err := time.ParseDuration(v); err == nil {
		return d, nil
	}
	secs, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, err
	}
	return time.Duration(secs * float64(time.Second)), nil
}

// Validate checks settings that cannot be defaulted.
func (s Settings) Validate() error {
	if !detectorKinds[s.Detector] {
		return fmt.Errorf("unknown detector %q (want stub, yolo or remote)", s.Detector)
	}
	if s.Detector == "remote" && s.DetectorURL == "" {
		return fmt.Errorf("%s is required for the remote detector", EnvDetectorURL)
	}
	if s.FPS <= 0 {
		return fmt.Errorf("fps must be positive, got %d", s.FPS)
	}
	if s.Cooldown < 0 {
		return fmt.Errorf("cooldown must not be negative, got %v", s.Cooldown)
	}
	return nil
}

// ListenAddr returns the HTTP listen address for the configured port.
func (s Settings) ListenAddr() string {
	return ":" + s.Port
}
