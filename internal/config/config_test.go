package config

import (
	"testing"
	"time"
)

func envMap(m map[string]string) func(string) string {
	return func(k string) string { return m[k] }
}

func TestFromEnv_Defaults(t *testing.T) {
	s := FromEnv(envMap(nil))

	if s != Defaults() {
		t.Errorf("FromEnv with empty env = %+v, want defaults %+v", s, Defaults())
	}
	if s.ListenAddr() != ":8080" {
		t.Errorf("ListenAddr = %q, want :8080", s.ListenAddr())
	}
}

func TestFromEnv_Overrides(t *testing.T) {
	s := FromEnv(envMap(map[string]string{
		EnvLogLevel:    "debug",
		EnvPort:        "9000",
		EnvSource:      "data/samples/sample_frames",
		EnvFPS:         "15",
		EnvDetector:    "REMOTE",
		EnvDetectorURL: "http://localhost:9001/detect",
		EnvModel:       "m.onnx",
		EnvCooldown:    "1.5",
		EnvSpeaker:     "espeak",
	}))

	if s.LogLevel != "debug" || s.Port != "9000" || s.FPS != 15 {
		t.Errorf("unexpected settings: %+v", s)
	}
	if s.Speaker != "espeak" {
		t.Errorf("Speaker = %q, want espeak", s.Speaker)
	}
	if s.Detector != "remote" {
		t.Errorf("Detector = %q, want remote", s.Detector)
	}
	if s.Cooldown != 1500*time.Millisecond {
		t.Errorf("Cooldown = %v, want 1.5s", s.Cooldown)
	}
	if err := s.Validate(); err != nil {
		t.Errorf("Validate() = %v", err)
	}
}

func TestFromEnv_InvalidNumbersFallBack(t *testing.T) {
	s := FromEnv(envMap(map[string]string{
		EnvFPS:      "fast",
		EnvCooldown: "-2s",
	}))

	if s.FPS != DefaultFPS {
		t.Errorf("FPS = %d, want default %d", s.FPS, DefaultFPS)
	}
	if s.Cooldown != DefaultCooldown {
		t.Errorf("Cooldown = %v, want default %v", s.Cooldown, DefaultCooldown)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Settings)
		wantErr bool
	}{
		{"defaults", func(*Settings) {}, false},
		{"unknown detector", func(s *Settings) { s.Detector = "magic" }, true},
		{"remote without url", func(s *Settings) { s.Detector = "remote" }, true},
		{"zero fps", func(s *Settings) { s.FPS = 0 }, true},
		{"negative cooldown", func(s *Settings) { s.Cooldown = -time.Second }, true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			s := Defaults()
			tc.mutate(&s)
			err := s.Validate()
			if (err != nil) != tc.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tc.wantErr)
			}
		})
	}
}
