package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/teslashibe/go-wayfinder/pkg/pipeline"
)

func newAnalyzeCmd() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "analyze",
		Short: "Process every frame of the source offline and print the announcements",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			src, err := openSource()
			if err != nil {
				return err
			}
			defer src.Close()

			det, err := openDetector()
			if err != nil {
				return err
			}
			defer det.Close()

			total := src.Info().TotalFrames
			if total <= 0 {
				total = -1
			}
			bar := progressbar.NewOptions64(total,
				progressbar.OptionSetDescription("analyzing"),
				progressbar.OptionSetWriter(os.Stderr),
				progressbar.OptionShowCount(),
				progressbar.OptionClearOnFinish(),
			)

			a := pipeline.NewAnalyzer(det, pipelineConfig())
			rep, err := a.Analyze(cmd.Context(), src, func(done int64) {
				_ = bar.Set64(done)
			})
			_ = bar.Finish()
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(rep)
			}

			for _, ann := range rep.Announcements {
				fmt.Fprintf(out, "%s  [%s p%d] %s\n", formatOffset(ann.TimestampMs), ann.Kind, ann.Priority, ann.Text)
			}
			fmt.Fprintf(out, "\n%d frames, %d detections, %d tracks, %d announcements",
				rep.Frames, rep.Detections, rep.Tracks, len(rep.Announcements))
			if rep.DetectorFailures > 0 {
				fmt.Fprintf(out, ", %d detector failures", rep.DetectorFailures)
			}
			fmt.Fprintln(out)
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "print the full report as JSON")
	return cmd
}
