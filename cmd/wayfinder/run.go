package main

import (
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/teslashibe/go-wayfinder/internal/log"
	"github.com/teslashibe/go-wayfinder/pkg/pipeline"
	"github.com/teslashibe/go-wayfinder/pkg/voice"
	"github.com/teslashibe/go-wayfinder/pkg/web"
)

func newRunCmd() *cobra.Command {
	var (
		port       string
		loop       bool
		frameEvery int
		static     string
		samples    string
	)

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the live pipeline and web API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Flags().Changed("port") {
				settings.Port = port
			}

			src, err := openSource()
			if err != nil {
				return err
			}
			det, err := openDetector()
			if err != nil {
				src.Close()
				return err
			}
			speaker, err := voice.Open(settings.Speaker, log.Component(voice.StageName))
			if err != nil {
				src.Close()
				det.Close()
				return err
			}

			cfg := pipelineConfig()
			cfg.Player.Loop = loop
			p := pipeline.New(src, det, speaker, cfg)
			defer p.Close()

			srv := web.NewServer(p, web.Config{
				Addr:       settings.ListenAddr(),
				FrameEvery: frameEvery,
				StaticDir:  static,
				SamplesDir: samples,
			})
			defer srv.Close()

			log.Info("wayfinder starting",
				"version", version,
				"run", p.ID(),
				"source", settings.Source,
				"detector", settings.Detector,
				"addr", settings.ListenAddr(),
			)

			g, ctx := errgroup.WithContext(cmd.Context())
			g.Go(func() error { return p.Run(ctx) })
			g.Go(func() error { return srv.Run(ctx) })
			return g.Wait()
		},
	}

	f := cmd.Flags()
	f.StringVar(&port, "port", "", "HTTP port (default from WAYFINDER_PORT or 8080)")
	f.BoolVar(&loop, "loop", false, "restart the source when it ends")
	f.IntVar(&frameEvery, "frame-every", web.DefaultFrameEvery, "stream one frame in N on /ws/frames")
	f.StringVar(&static, "static", "", "directory of static files served at /")
	f.StringVar(&samples, "samples", "data/samples", "directory listed by /api/sources")
	return cmd
}
