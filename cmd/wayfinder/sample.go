package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/teslashibe/go-wayfinder/pkg/source"
)

func newSampleCmd() *cobra.Command {
	var (
		out    string
		frames int64
	)

	cmd := &cobra.Command{
		Use:   "sample",
		Short: "Write a synthetic frame directory for replay",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := source.DefaultSyntheticConfig()
			cfg.FPS = float64(settings.FPS)
			cfg.TotalFrames = frames
			synth, err := source.NewSynthetic(cfg)
			if err != nil {
				return err
			}

			info := synth.Info()
			data := make([][]byte, 0, info.TotalFrames)
			for id := int64(0); id < info.TotalFrames; id++ {
				b, err := synth.Frame(id)
				if err != nil {
					return err
				}
				data = append(data, b)
			}
			if err := source.WriteFrameDir(out, info, data); err != nil {
				return fmt.Errorf("write %s: %w", out, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %d frames to %s\n", len(data), out)
			return nil
		},
	}

	cmd.Flags().StringVar(&out, "out", "data/sample_frames", "output directory")
	cmd.Flags().Int64Var(&frames, "frames", 300, "number of frames")
	return cmd
}
