package main

import (
	"context"
	"errors"

	"github.com/bytedance/sonic"
	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"events-pipeline/domain"
	"events-pipeline/pipeline/sink"
	"events-pipeline/warehouse"
)

type rowAppender interface {
	Append(ctx context.Context, table string, ev *domain.EnrichedEvent) error
}

type objectWriter interface {
	Write(ctx context.Context, rec sink.Record) error
}

// processor runs one message through enrich, route and the dual-sink
// fan-out. Destination computation is pure, so a redelivered message lands
// in the same places; there is no per-event dedup state.
type processor struct {
	enricher      *domain.Enricher
	wh            rowAppender
	obj           objectWriter
	rc            *redis.Client
	channelPrefix string
}

// process returns nil when the message is finished with, including every
// deliberate drop; an error means the message should become visible again.
func (p *processor) process(ctx context.Context, body []byte) error {
	ev, err := p.enricher.Enrich(body)
	if err != nil {
		if errors.Is(err, domain.ErrNoCategory) || errors.Is(err, domain.ErrMalformedPayload) {
			log.WithError(err).Warn("dropping message")
			return nil
		}
		return err
	}

	whDest, objDest := domain.Route(ev)
	content, err := sonic.ConfigStd.Marshal(ev)
	if err != nil {
		return err
	}

	g, gctx := errgroup.WithContext(ctx)
	if whDest != nil {
		g.Go(func() error {
			err := p.wh.Append(gctx, whDest.Table, ev)
			if errors.Is(err, warehouse.ErrTableNotFound) {
				// The provisioner has not won its race yet. Early
				// events of a category are lost by design; the
				// object store still gets them.
				log.WithFields(log.Fields{
					"table":    whDest.Table,
					"category": ev.Event.Category(),
				}).Error("warehouse table missing, row dropped")
				return nil
			}
			return err
		})
	}
	g.Go(func() error {
		return p.obj.Write(gctx, sink.Record{Path: objDest.Path(), Content: content})
	})
	if err := g.Wait(); err != nil {
		return err
	}

	p.notify(ctx, ev, content)
	return nil
}

// notify publishes a change notification per category channel. Failures
// are logged only; notifications are advisory.
func (p *processor) notify(ctx context.Context, ev *domain.EnrichedEvent, content []byte) {
	if p.rc == nil {
		return
	}
	channel := p.channelPrefix + ":" + string(ev.Event.Category())
	if err := p.rc.Publish(ctx, channel, content).Err(); err != nil {
		log.WithError(err).WithField("channel", channel).Error("unable to publish update")
	}
}
