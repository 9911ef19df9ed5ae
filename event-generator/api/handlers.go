// Package api exposes the generator's control surface.
package api

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	log "github.com/sirupsen/logrus"

	"events-pipeline/event-generator/generator"
	"events-pipeline/event-generator/registry"
)

// Publisher sends fabricated events to the bus.
type Publisher interface {
	Enqueue(ctx context.Context, body string) error
}

// Server handles generator API requests.
type Server struct {
	gen         *generator.Generator
	publisher   Publisher
	runs        registry.Registry
	environment string
}

func NewServer(gen *generator.Generator, publisher Publisher, runs registry.Registry, environment string) *Server {
	return &Server{gen: gen, publisher: publisher, runs: runs, environment: environment}
}

// Register wires all generator endpoints onto e.
func Register(e *echo.Echo, s *Server) {
	e.GET("/health", s.handleHealth)
	e.POST("/generate/single/:event_type", s.handleSingle)
	e.POST("/generate/batch", s.handleBatch)
	e.POST("/generate/start", s.handleStart)
	e.GET("/generate/status", s.handleStatusAll)
	e.GET("/generate/status/:id", s.handleStatus)
	e.DELETE("/generate/stop", s.handleStopAll)
	e.DELETE("/generate/stop/:id", s.handleStop)
	e.GET("/sample/:event_type", s.handleSample)
	e.GET("/scenarios", s.handleScenarios)
	e.GET("/scenarios/:name", s.handleScenario)
	e.POST("/scenarios/:name/start", s.handleScenarioStart)
}

func (s *Server) handleHealth(c echo.Context) error {
	active := 0
	if runs, err := s.runs.List(c.Request().Context()); err == nil {
		for _, run := range runs {
			if run.Status == registry.StatusRunning {
				active++
			}
		}
	}
	return c.JSON(http.StatusOK, map[string]any{
		"status":      "healthy",
		"service":     "event-generator",
		"environment": s.environment,
		"active_runs": active,
		"timestamp":   time.Now().UTC().Format(time.RFC3339),
	})
}

func (s *Server) handleSingle(c echo.Context) error {
	eventType := c.Param("event_type")
	raw, err := s.gen.Event(eventType)
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}
	if err := s.publisher.Enqueue(c.Request().Context(), string(raw)); err != nil {
		log.WithError(err).Error("publish failed")
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "failed to publish event"})
	}
	return c.JSON(http.StatusOK, map[string]any{
		"status":     "success",
		"event_type": eventType,
		"event":      json.RawMessage(raw),
	})
}

func (s *Server) handleBatch(c echo.Context) error {
	var cfg generator.Config
	if err := c.Bind(&cfg); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid config"})
	}
	cfg = withDefaults(cfg)

	type result struct {
		EventType string `json:"event_type"`
		Success   bool   `json:"success"`
		Error     string `json:"error,omitempty"`
	}
	var results []result
	successful := 0
	perType := cfg.EventsPerMinute / len(cfg.EventTypes)
	if perType < 1 {
		perType = 1
	}
	for _, eventType := range cfg.EventTypes {
		for i := 0; i < perType; i++ {
			raw, err := s.gen.Event(eventType)
			if err == nil {
				err = s.publisher.Enqueue(c.Request().Context(), string(raw))
			}
			r := result{EventType: eventType, Success: err == nil}
			if err != nil {
				log.WithError(err).WithField("event_type", eventType).Error("batch event failed")
				r.Error = err.Error()
			} else {
				successful++
			}
			results = append(results, r)
		}
	}
	return c.JSON(http.StatusOK, map[string]any{
		"status":            "completed",
		"total_events":      len(results),
		"successful_events": successful,
		"failed_events":     len(results) - successful,
		"results":           results,
	})
}

func (s *Server) handleStart(c echo.Context) error {
	var cfg generator.Config
	if err := c.Bind(&cfg); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid config"})
	}
	return s.startRun(c, withDefaults(cfg), "")
}

func (s *Server) handleStatus(c echo.Context) error {
	run, err := s.runs.Get(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	if run == nil {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "run not found"})
	}
	return c.JSON(http.StatusOK, run)
}

func (s *Server) handleStatusAll(c echo.Context) error {
	runs, err := s.runs.List(c.Request().Context())
	if err != nil {
		return err
	}
	active := 0
	for _, run := range runs {
		if run.Status == registry.StatusRunning {
			active++
		}
	}
	return c.JSON(http.StatusOK, map[string]any{"active_runs": active, "runs": runs})
}

func (s *Server) handleStop(c echo.Context) error {
	ctx := c.Request().Context()
	run, err := s.runs.Get(ctx, c.Param("id"))
	if err != nil {
		return err
	}
	if run == nil {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "run not found"})
	}
	s.markStopped(ctx, run)
	return c.JSON(http.StatusOK, map[string]any{"status": "stopped", "run": run})
}

func (s *Server) handleStopAll(c echo.Context) error {
	ctx := c.Request().Context()
	runs, err := s.runs.List(ctx)
	if err != nil {
		return err
	}
	var stopped []string
	for i := range runs {
		if runs[i].Status != registry.StatusRunning {
			continue
		}
		s.markStopped(ctx, &runs[i])
		stopped = append(stopped, runs[i].ID)
	}
	return c.JSON(http.StatusOK, map[string]any{"status": "all_stopped", "stopped_runs": stopped})
}

func (s *Server) handleSample(c echo.Context) error {
	eventType := c.Param("event_type")
	raw, err := s.gen.Event(eventType)
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}
	return c.JSON(http.StatusOK, map[string]any{
		"event_type":   eventType,
		"sample_event": json.RawMessage(raw),
	})
}

func (s *Server) handleScenarios(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]any{
		"scenarios":           generator.Scenarios(),
		"available_scenarios": generator.ScenarioNames(),
	})
}

func (s *Server) handleScenario(c echo.Context) error {
	scenario, err := generator.GetScenario(c.Param("name"))
	if err != nil {
		return c.JSON(http.StatusNotFound, map[string]string{"error": err.Error()})
	}
	return c.JSON(http.StatusOK, scenario)
}

func (s *Server) handleScenarioStart(c echo.Context) error {
	name := c.Param("name")
	scenario, err := generator.GetScenario(name)
	if err != nil {
		return c.JSON(http.StatusNotFound, map[string]string{"error": err.Error()})
	}
	return s.startRun(c, scenario.Config, name)
}

func (s *Server) startRun(c echo.Context, cfg generator.Config, scenario string) error {
	id := "task-" + strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
	if scenario != "" {
		id = "scenario-" + scenario + "-" + strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
	}
	run := registry.Run{
		ID:        id,
		Scenario:  scenario,
		Status:    registry.StatusRunning,
		Config:    cfg,
		StartTime: time.Now().UTC(),
	}
	if err := s.runs.Put(c.Request().Context(), run); err != nil {
		return err
	}
	go s.runGeneration(id, cfg)
	return c.JSON(http.StatusOK, map[string]any{
		"status":                 "started",
		"run_id":                 id,
		"config":                 cfg,
		"estimated_total_events": cfg.EventsPerMinute * cfg.DurationMinutes,
	})
}

func (s *Server) markStopped(ctx context.Context, run *registry.Run) {
	now := time.Now().UTC()
	run.Status = registry.StatusStopped
	run.EndTime = &now
	if err := s.runs.Put(ctx, *run); err != nil {
		log.WithError(err).WithField("run", run.ID).Error("unable to record stop")
	}
}

func withDefaults(cfg generator.Config) generator.Config {
	def := generator.DefaultConfig()
	if cfg.EventsPerMinute <= 0 {
		cfg.EventsPerMinute = def.EventsPerMinute
	}
	if cfg.DurationMinutes <= 0 {
		cfg.DurationMinutes = def.DurationMinutes
	}
	if len(cfg.EventTypes) == 0 {
		cfg.EventTypes = def.EventTypes
	}
	if cfg.Environment == "" {
		cfg.Environment = def.Environment
	}
	return cfg
}
