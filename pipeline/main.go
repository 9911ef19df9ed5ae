package main

import (
	"context"
	"os"
	"os/signal"
	"strconv"
	"sync"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"

	"events-pipeline/bus"
	"events-pipeline/domain"
	"events-pipeline/objectstore"
	"events-pipeline/pipeline/sink"
	"events-pipeline/warehouse"
)

func main() {
	if dbg, err := strconv.ParseBool(os.Getenv("DEBUG")); err == nil && dbg {
		log.SetLevel(log.DebugLevel)
	}
	log.Info("pipeline service starting")

	connStr := os.Getenv("STORAGE_CONNECTION_STRING")
	eventsQueue := os.Getenv("PIPELINE_EVENTS_QUEUE")
	container := os.Getenv("OUTPUT_CONTAINER")
	if connStr == "" || eventsQueue == "" || container == "" {
		log.Fatal("missing storage config")
	}
	environment := os.Getenv("ENVIRONMENT")
	if environment == "" {
		environment = "dev"
	}
	prefix := os.Getenv("OUTPUT_PREFIX")
	window := envDur("OUTPUT_WINDOW", 60*time.Second)
	workers := envInt("PIPELINE_WORKERS", 4)

	queue, err := bus.NewAzureQueue(connStr, eventsQueue)
	if err != nil {
		log.Fatalf("queue client: %v", err)
	}
	whClient, err := warehouse.NewAzureClient(connStr)
	if err != nil {
		log.Fatalf("warehouse client: %v", err)
	}
	store, err := objectstore.NewAzureStore(connStr, container)
	if err != nil {
		log.Fatalf("object store client: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := store.EnsureContainer(ctx); err != nil {
		log.Fatalf("ensure container: %v", err)
	}

	writer := sink.NewObjectStoreWriter(store, prefix, window)
	var writerWG sync.WaitGroup
	writerWG.Add(1)
	go func() {
		defer writerWG.Done()
		writer.Run(ctx)
	}()

	var rc *redis.Client
	if redisConn := os.Getenv("REDIS_CONNECTION_STRING"); redisConn != "" {
		redisOpts, err := redis.ParseURL(redisConn)
		if err != nil {
			log.Fatalf("redis config: %v", err)
		}
		rc = redis.NewClient(redisOpts)
	}

	proc := &processor{
		enricher:      domain.NewEnricher(),
		wh:            sink.NewWarehouseSink(whClient, environment),
		obj:           writer,
		rc:            rc,
		channelPrefix: envString("EVENTS_CHANNEL_PREFIX", "events"),
	}

	log.WithFields(log.Fields{"workers": workers, "queue": eventsQueue, "window": window}).Info("consuming events")
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			runWorker(ctx, id, queue, proc)
		}(i)
	}
	wg.Wait()
	writerWG.Wait()
	log.Info("pipeline service stopped")
}

// runWorker is one dequeue loop. A bad message never stops the loop:
// deliberate drops are acknowledged, transient failures leave the message
// for redelivery.
func runWorker(ctx context.Context, id int, queue bus.Queue, proc *processor) {
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
			log.WithError(err).WithField("worker", id).Error("receive failed")
			idle(ctx, time.Second)
			continue
		}
		if msg == nil {
			idle(ctx, time.Second)
			continue
		}
		if err := proc.process(ctx, []byte(msg.Body)); err != nil {
			log.WithError(err).WithField("worker", id).Error("processing failed, message will be redelivered")
			continue
		}
		if err := queue.Delete(ctx, msg); err != nil {
			log.WithError(err).WithField("worker", id).Error("delete failed")
		}
	}
}

func idle(ctx context.Context, d time.Duration) {
	select {
	case <-ctx.Done():
	case <-time.After(d):
	}
}
