// Package registry tracks generation runs in a dedicated state store
// instead of process-global bookkeeping, so the generator itself stays
// stateless.
package registry

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"events-pipeline/event-generator/generator"
)

const (
	StatusRunning   = "running"
	StatusCompleted = "completed"
	StatusStopped   = "stopped"
	StatusFailed    = "failed"
)

// Run is the recorded state of one generation run.
type Run struct {
	ID              string           `json:"id"`
	Scenario        string           `json:"scenario_name,omitempty"`
	Status          string           `json:"status"`
	Config          generator.Config `json:"config"`
	StartTime       time.Time        `json:"start_time"`
	EndTime         *time.Time       `json:"end_time,omitempty"`
	EventsGenerated int              `json:"events_generated"`
	LastEventTime   *time.Time       `json:"last_event_time,omitempty"`
	Error           string           `json:"error,omitempty"`
}

// Registry stores generation runs.
type Registry interface {
	Put(ctx context.Context, run Run) error
	// Get returns nil when the run is unknown.
	Get(ctx context.Context, id string) (*Run, error)
	List(ctx context.Context) ([]Run, error)
	Delete(ctx context.Context, id string) (bool, error)
}

// RedisRegistry implements Registry on Redis, one key per run with a TTL
// so finished runs age out on their own.
type RedisRegistry struct {
	rc  *redis.Client
	ttl time.Duration
}

const keyPrefix = "genrun:"

func NewRedisRegistry(rc *redis.Client, ttl time.Duration) *RedisRegistry {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &RedisRegistry{rc: rc, ttl: ttl}
}

func (r *RedisRegistry) Put(ctx context.Context, run Run) error {
	payload, err := json.Marshal(run)
	if err != nil {
		return err
	}
	return r.rc.Set(ctx, keyPrefix+run.ID, payload, r.ttl).Err()
}

func (r *RedisRegistry) Get(ctx context.Context, id string) (*Run, error) {
	payload, err := r.rc.Get(ctx, keyPrefix+id).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var run Run
	if err := json.Unmarshal(payload, &run); err != nil {
		return nil, err
	}
	return &run, nil
}

func (r *RedisRegistry) List(ctx context.Context) ([]Run, error) {
	var runs []Run
	iter := r.rc.Scan(ctx, 0, keyPrefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		payload, err := r.rc.Get(ctx, iter.Val()).Bytes()
		if errors.Is(err, redis.Nil) {
			continue
		}
		if err != nil {
			return nil, err
		}
		var run Run
		if err := json.Unmarshal(payload, &run); err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	if err := iter.Err(); err != nil {
		return nil, err
	}
	return runs, nil
}

func (r *RedisRegistry) Delete(ctx context.Context, id string) (bool, error) {
	n, err := r.rc.Del(ctx, keyPrefix+id).Result()
	return n > 0, err
}
