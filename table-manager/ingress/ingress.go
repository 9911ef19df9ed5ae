// Package ingress unifies the two delivery paths for table provisioning
// messages. The HTTP push binding and the queue binding both decode their
// envelope into the same raw message and invoke one shared Handler.
package ingress

import (
	"context"
	"encoding/json"
	"fmt"

	log "github.com/sirupsen/logrus"

	"events-pipeline/domain"
)

// Provisioner ensures a category's destination table exists.
type Provisioner interface {
	EnsureTable(ctx context.Context, category domain.Category, environment string) error
}

// Handler is the shared provisioning core behind both bindings.
type Handler struct {
	provisioner Provisioner
	environment string
}

func NewHandler(p Provisioner, environment string) *Handler {
	return &Handler{provisioner: p, environment: environment}
}

// Handle decodes one raw bus message and ensures the table for its
// category. Messages without an event_type or with an unmapped category
// are dropped with a log line; that is deliberate, not an error.
func (h *Handler) Handle(ctx context.Context, raw []byte) error {
	var probe struct {
		EventType string `json:"event_type"`
	}
	if err := json.Unmarshal(raw, &probe); err != nil {
		return fmt.Errorf("decode message: %w", err)
	}
	if probe.EventType == "" {
		log.Warn("no event_type found in message")
		return nil
	}
	category := domain.Category(probe.EventType)
	if _, ok := domain.WarehouseTable(category); !ok {
		log.WithField("event_type", probe.EventType).Info("no table mapping for event type")
		return nil
	}
	return h.provisioner.EnsureTable(ctx, category, h.environment)
}
