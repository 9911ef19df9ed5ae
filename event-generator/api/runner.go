package api

import (
	"context"
	"time"

	log "github.com/sirupsen/logrus"

	"events-pipeline/event-generator/generator"
	"events-pipeline/event-generator/registry"
)

// runGeneration fabricates and publishes events at the configured rate
// until the run duration elapses or the registry no longer marks the
// run as running. It owns the run's lifecycle record from here on.
func (s *Server) runGeneration(id string, cfg generator.Config) {
	ctx := context.Background()
	interval := time.Minute / time.Duration(cfg.EventsPerMinute)
	deadline := time.Now().Add(time.Duration(cfg.DurationMinutes) * time.Minute)

	logger := log.WithField("run", id)
	logger.WithFields(log.Fields{
		"events_per_minute": cfg.EventsPerMinute,
		"duration_minutes":  cfg.DurationMinutes,
	}).Info("generation started")

	generated := 0
	typeIdx := 0
	for time.Now().Before(deadline) {
		run, err := s.runs.Get(ctx, id)
		if err != nil {
			logger.WithError(err).Error("registry lookup failed")
			time.Sleep(interval)
			continue
		}
		if run == nil || run.Status != registry.StatusRunning {
			logger.Info("generation stopped")
			return
		}

		eventType := cfg.EventTypes[typeIdx%len(cfg.EventTypes)]
		typeIdx++
		raw, err := s.gen.Event(eventType)
		if err != nil {
			s.finishRun(ctx, id, registry.StatusFailed, generated, err)
			return
		}
		if err := s.publisher.Enqueue(ctx, string(raw)); err != nil {
			logger.WithError(err).WithField("event_type", eventType).Error("publish failed")
		} else {
			generated++
			now := time.Now().UTC()
			run.EventsGenerated = generated
			run.LastEventTime = &now
			if err := s.runs.Put(ctx, *run); err != nil {
				logger.WithError(err).Error("unable to record progress")
			}
		}
		time.Sleep(interval)
	}

	s.finishRun(ctx, id, registry.StatusCompleted, generated, nil)
	logger.WithField("events", generated).Info("generation completed")
}

func (s *Server) finishRun(ctx context.Context, id string, status string, generated int, cause error) {
	run, err := s.runs.Get(ctx, id)
	if err != nil || run == nil {
		return
	}
	now := time.Now().UTC()
	run.Status = status
	run.EndTime = &now
	run.EventsGenerated = generated
	if cause != nil {
		run.Error = cause.Error()
		log.WithError(cause).WithField("run", id).Error("generation failed")
	}
	if err := s.runs.Put(ctx, *run); err != nil {
		log.WithError(err).WithField("run", id).Error("unable to record completion")
	}
}
