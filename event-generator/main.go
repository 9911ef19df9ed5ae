package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"

	"events-pipeline/bus"
	"events-pipeline/event-generator/api"
	"events-pipeline/event-generator/generator"
	"events-pipeline/event-generator/registry"
)

func main() {
	if dbg, err := strconv.ParseBool(os.Getenv("DEBUG")); err == nil && dbg {
		log.SetLevel(log.DebugLevel)
	}
	log.Info("event generator starting")

	connStr := os.Getenv("STORAGE_CONNECTION_STRING")
	if connStr == "" {
		log.Fatal("missing STORAGE_CONNECTION_STRING")
	}
	queueName := os.Getenv("PIPELINE_EVENTS_QUEUE")
	if queueName == "" {
		log.Fatal("missing PIPELINE_EVENTS_QUEUE")
	}
	redisURL := os.Getenv("REDIS_CONNECTION_STRING")
	if redisURL == "" {
		log.Fatal("missing REDIS_CONNECTION_STRING")
	}
	environment := os.Getenv("ENVIRONMENT")
	if environment == "" {
		environment = "dev"
	}

	queue, err := bus.NewAzureQueue(connStr, queueName)
	if err != nil {
		log.Fatalf("queue client: %v", err)
	}
	if err := queue.EnsureCreated(context.Background()); err != nil {
		log.Fatalf("queue create: %v", err)
	}

	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		log.Fatalf("redis url: %v", err)
	}
	rc := redis.NewClient(opts)
	defer rc.Close()

	runTTL := 24 * time.Hour
	if val, ok := os.LookupEnv("RUN_TTL_HOURS"); ok {
		if hours, err := strconv.Atoi(val); err == nil && hours > 0 {
			runTTL = time.Duration(hours) * time.Hour
		}
	}

	server := api.NewServer(generator.New(), queue, registry.NewRedisRegistry(rc, runTTL), environment)

	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.Recover())
	api.Register(e, server)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	listenAddr := ":8080"
	if val, ok := os.LookupEnv("PORT"); ok {
		listenAddr = ":" + val
	}
	go func() {
		if err := e.Start(listenAddr); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server: %v", err)
		}
	}()

	<-ctx.Done()
	if err := e.Shutdown(context.Background()); err != nil {
		log.WithError(err).Error("server shutdown")
	}
	log.Info("event generator stopped")
}
