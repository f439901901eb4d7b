package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/teslashibe/go-wayfinder/internal/config"
	"github.com/teslashibe/go-wayfinder/internal/log"
	"github.com/teslashibe/go-wayfinder/pkg/detection"
	"github.com/teslashibe/go-wayfinder/pkg/pipeline"
	"github.com/teslashibe/go-wayfinder/pkg/source"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

// settings is loaded once per invocation, before any subcommand runs.
var settings config.Settings

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "wayfinder",
		Short:         "Real-time spatial guidance from video",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			settings = config.Load()
			if err := applyFlags(cmd, &settings); err != nil {
				return err
			}
			log.Init(settings.LogLevel)
			return settings.Validate()
		},
	}
	root.SetVersionTemplate("{{printf \"%s\\n\" .Version}}")

	f := root.PersistentFlags()
	f.String("log-level", "", "log level: debug, info, warn, error")
	f.String("source", "", "frame directory or video file (default: synthetic frames)")
	f.Int("fps", 0, "frame rate of the synthetic source")
	f.String("detector", "", "detector backend: stub, yolo, remote")
	f.String("detector-url", "", "inference endpoint for the remote detector")
	f.String("model", "", "ONNX model path for the yolo detector")
	f.Duration("cooldown", 0, "per-track announcement cooldown")
	f.String("speaker", "", `voice output: "log", "none", or a TTS command such as "espeak"`)

	root.AddCommand(newRunCmd(), newAnalyzeCmd(), newSampleCmd(), newVersionCmd())
	return root
}

// applyFlags overrides settings with every flag set on the command line.
func applyFlags(cmd *cobra.Command, s *config.Settings) error {
	flags := cmd.Flags()
	var err error
	str := func(name string, dst *string) {
		if err == nil && flags.Changed(name) {
			*dst, err = flags.GetString(name)
		}
	}
	str("log-level", &s.LogLevel)
	str("source", &s.Source)
	str("detector", &s.Detector)
	str("detector-url", &s.DetectorURL)
	str("model", &s.ModelPath)
	str("speaker", &s.Speaker)
	if err == nil && flags.Changed("fps") {
		s.FPS, err = flags.GetInt("fps")
	}
	if err == nil && flags.Changed("cooldown") {
		s.Cooldown, err = flags.GetDuration("cooldown")
	}
	return err
}

func openSource() (source.Source, error) {
	synth := source.DefaultSyntheticConfig()
	synth.FPS = float64(settings.FPS)
	src, err := source.Open(settings.Source, synth)
	if err != nil {
		return nil, fmt.Errorf("open source: %w", err)
	}
	return src, nil
}

func openDetector() (detection.Detector, error) {
	det, err := detection.Open(detection.Config{
		Backend:   settings.Detector,
		ModelPath: settings.ModelPath,
		URL:       settings.DetectorURL,
	})
	if err != nil {
		return nil, fmt.Errorf("open detector: %w", err)
	}
	return det, nil
}

func pipelineConfig() pipeline.Config {
	cfg := pipeline.DefaultConfig()
	cfg.Control.FusionCooldown = settings.Cooldown
	return cfg
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return nil
		},
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), "wayfinder", version)
		},
	}
}

// formatOffset renders a stream timestamp as m:ss.mmm.
func formatOffset(ms int64) string {
	d := time.Duration(ms) * time.Millisecond
	return fmt.Sprintf("%d:%06.3f", int(d.Minutes()), (d % time.Minute).Seconds())
}
