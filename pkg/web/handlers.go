package web

import (
	"github.com/gofiber/fiber/v2"

	"github.com/teslashibe/go-wayfinder/pkg/control"
	"github.com/teslashibe/go-wayfinder/pkg/hub"
	"github.com/teslashibe/go-wayfinder/pkg/pipeline"
	"github.com/teslashibe/go-wayfinder/pkg/source"
)

// HealthResponse is returned by GET /api/health.
type HealthResponse struct {
	Status  string           `json:"status"`
	RunID   string           `json:"run_id"`
	Control control.Snapshot `json:"control"`
}

// StatsResponse is returned by GET /api/stats.
type StatsResponse struct {
	Pipeline pipeline.Stats       `json:"pipeline"`
	Hubs     map[string]hub.Stats `json:"hubs"`
}

// SourcesResponse is returned by GET /api/sources.
type SourcesResponse struct {
	Sources []source.Entry `json:"sources"`
}

// handleHealth reports liveness and the current control state
func (s *Server) handleHealth(c *fiber.Ctx) error {
	return c.JSON(HealthResponse{
		Status:  "ok",
		RunID:   s.backend.Stats().RunID,
		Control: s.backend.Snapshot(),
	})
}

// handleGetControl returns the current control state
func (s *Server) handleGetControl(c *fiber.Ctx) error {
	return c.JSON(s.backend.Snapshot())
}

// handleControl applies a control command
func (s *Server) handleControl(c *fiber.Ctx) error {
	var cmd control.Command
	if err := c.BodyParser(&cmd); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid command body: " + err.Error(),
		})
	}

	snap, err := s.backend.Control(cmd)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error":   err.Error(),
			"control": snap,
		})
	}
	return c.JSON(snap)
}

// handleStats returns pipeline and websocket counters
func (s *Server) handleStats(c *fiber.Ctx) error {
	return c.JSON(StatsResponse{
		Pipeline: s.backend.Stats(),
		Hubs: map[string]hub.Stats{
			s.eventHub.Name(): s.eventHub.Stats(),
			s.frameHub.Name(): s.frameHub.Stats(),
		},
	})
}

// handleScene returns the current scene summary, or 204 when nothing is in view
func (s *Server) handleScene(c *fiber.Ctx) error {
	d, ok := s.backend.Scene()
	if !ok {
		return c.SendStatus(fiber.StatusNoContent)
	}
	return c.JSON(d)
}

// handleSources lists replayable sources in the samples directory
func (s *Server) handleSources(c *fiber.Ctx) error {
	entries, err := source.List(s.config.SamplesDir)
	if err != nil {
		s.log.Warn("list sources failed", "dir", s.config.SamplesDir, "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": err.Error(),
		})
	}
	return c.JSON(SourcesResponse{Sources: entries})
}
