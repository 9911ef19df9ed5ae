package ingress

import (
	"context"
	"time"

	log "github.com/sirupsen/logrus"

	"events-pipeline/bus"
)

// Consume runs the queue binding until ctx is cancelled. It reads the same
// event stream the pipeline consumes, delivered on the table manager's own
// subscription queue, and reacts only to the category field. Failed
// provisioning leaves the message for redelivery; the bus is the retry
// scheduler.
func Consume(ctx context.Context, queue bus.Queue, h *Handler) {
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}
		msg, err := queue.Dequeue(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			log.WithError(err).Error("receive failed")
			idle(ctx, time.Second)
			continue
		}
		if msg == nil {
			idle(ctx, time.Second)
			continue
		}
		if err := h.Handle(ctx, []byte(msg.Body)); err != nil {
			log.WithError(err).Error("provisioning failed, message will be redelivered")
			continue
		}
		if err := queue.Delete(ctx, msg); err != nil {
			log.WithError(err).Error("delete failed")
		}
	}
}

func idle(ctx context.Context, d time.Duration) {
	select {
	case <-ctx.Done():
	case <-time.After(d):
	}
}
