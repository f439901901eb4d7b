// Package web serves the control API and live websocket streams.
package web

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"time"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"golang.org/x/sync/errgroup"

	"github.com/teslashibe/go-wayfinder/internal/log"
	"github.com/teslashibe/go-wayfinder/pkg/bus"
	"github.com/teslashibe/go-wayfinder/pkg/control"
	"github.com/teslashibe/go-wayfinder/pkg/hub"
	"github.com/teslashibe/go-wayfinder/pkg/pipeline"
	"github.com/teslashibe/go-wayfinder/pkg/protocol"
)

// DefaultFrameEvery is the default frame stream decimation.
const DefaultFrameEvery = 6

// shutdownTimeout bounds graceful shutdown.
const shutdownTimeout = 5 * time.Second

// Backend is the pipeline surface the server exposes.
// *pipeline.Pipeline implements it.
type Backend interface {
	Snapshot() control.Snapshot
	Control(cmd control.Command) (control.Snapshot, error)
	Stats() pipeline.Stats
	Scene() (protocol.SceneDescription, bool)
	Events() *bus.EventChannel
	Frames() *bus.FrameChannel
}

var _ Backend = (*pipeline.Pipeline)(nil)

// Config configures a Server.
type Config struct {
	// Addr is the listen address, e.g. ":8080".
	Addr string

	// FrameEvery streams one frame out of every FrameEvery on /ws/frames.
	FrameEvery int

	// StaticDir, when set, is served at /.
	StaticDir string

	// SamplesDir is scanned by GET /api/sources.
	SamplesDir string
}

// Server is the HTTP and websocket front end.
type Server struct {
	app     *fiber.App
	backend Backend
	config  Config
	log     *slog.Logger

	eventHub *hub.Hub
	frameHub *hub.Hub

	events *bus.Subscription[any]
	frames *bus.FrameSubscription
}

// NewServer creates a server for b. Its event and frame subscriptions are
// taken immediately.
func NewServer(b Backend, cfg Config) *Server {
	if cfg.FrameEvery <= 0 {
		cfg.FrameEvery = DefaultFrameEvery
	}

	s := &Server{
		backend:  b,
		config:   cfg,
		log:      log.Component("web"),
		eventHub: hub.New("events"),
		frameHub: hub.New("frames"),
		events:   bus.SubscribeAll(b.Events(), "web"),
		frames:   b.Frames().Subscribe(),
	}

	app := fiber.New(fiber.Config{
		AppName:               "wayfinder",
		DisableStartupMessage: true,
	})
	app.Use(recover.New())
	app.Use(cors.New())

	api := app.Group("/api")
	api.Get("/health", s.handleHealth)
	api.Get("/control", s.handleGetControl)
	api.Post("/control", s.handleControl)
	api.Get("/stats", s.handleStats)
	api.Get("/scene", s.handleScene)
	api.Get("/sources", s.handleSources)

	// WebSocket upgrade middleware
	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	app.Get("/ws/events", websocket.New(s.serveHub(s.eventHub)))
	app.Get("/ws/frames", websocket.New(s.serveHub(s.frameHub)))

	if cfg.StaticDir != "" {
		app.Static("/", cfg.StaticDir)
	}

	s.app = app
	return s
}

// App returns the fiber application.
func (s *Server) App() *fiber.App { return s.app }

// Run listens on the configured address and serves until ctx is canceled.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.config.Addr)
	if err != nil {
		return err
	}
	return s.Serve(ctx, ln)
}

// Serve serves on ln until ctx is canceled, then shuts down gracefully.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	s.log.Info("web server listening", "addr", ln.Addr().String())

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error { return s.eventHub.Run(ctx) })
	g.Go(func() error { return s.frameHub.Run(ctx) })
	g.Go(func() error { return s.forwardEvents(ctx) })
	g.Go(func() error { return s.forwardFrames(ctx) })
	g.Go(func() error { return s.app.Listener(ln) })
	g.Go(func() error {
		<-ctx.Done()
		return s.app.ShutdownWithTimeout(shutdownTimeout)
	})
	return g.Wait()
}

// Close releases the bus subscriptions.
func (s *Server) Close() {
	s.events.Close()
	s.frames.Close()
}

func (s *Server) serveHub(h *hub.Hub) func(*websocket.Conn) {
	return func(conn *websocket.Conn) {
		client := hub.NewClient(h, conn)
		if client == nil {
			return
		}
		client.Run()
	}
}

func (s *Server) forwardEvents(ctx context.Context) error {
	for {
		ev, err := s.events.Next(ctx)
		if err != nil {
			return stopErr(ctx, err)
		}
		if s.eventHub.ClientCount() == 0 {
			continue
		}
		if err := s.eventHub.BroadcastEvent(ev); err != nil {
			s.log.Debug("event not forwarded", "error", err)
		}
	}
}

func (s *Server) forwardFrames(ctx context.Context) error {
	for {
		f, err := s.frames.Next(ctx)
		if err != nil {
			return stopErr(ctx, err)
		}
		if f.FrameID%int64(s.config.FrameEvery) != 0 || s.frameHub.ClientCount() == 0 {
			continue
		}
		s.frameHub.BroadcastBinary(f.JPEG)
	}
}

func stopErr(ctx context.Context, err error) error {
	if errors.Is(err, bus.ErrClosed) || ctx.Err() != nil {
		return nil
	}
	return err
}
