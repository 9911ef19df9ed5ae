package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/MicahParks/keyfunc"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	log "github.com/sirupsen/logrus"

	"events-pipeline/bus"
	"events-pipeline/table-manager/ingress"
	"events-pipeline/warehouse"
)

func main() {
	if dbg, err := strconv.ParseBool(os.Getenv("DEBUG")); err == nil && dbg {
		log.SetLevel(log.DebugLevel)
	}
	log.Info("table manager starting")

	connStr := os.Getenv("STORAGE_CONNECTION_STRING")
	if connStr == "" {
		log.Fatal("missing STORAGE_CONNECTION_STRING")
	}
	environment := os.Getenv("ENVIRONMENT")
	if environment == "" {
		environment = "dev"
	}

	whClient, err := warehouse.NewAzureClient(connStr)
	if err != nil {
		log.Fatalf("warehouse client: %v", err)
	}
	handler := ingress.NewHandler(warehouse.NewProvisioner(whClient), environment)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Queue binding, on the table manager's own subscription queue.
	if queueName := os.Getenv("TABLE_MANAGER_EVENTS_QUEUE"); queueName != "" {
		queue, err := bus.NewAzureQueue(connStr, queueName)
		if err != nil {
			log.Fatalf("queue client: %v", err)
		}
		if err := queue.EnsureCreated(ctx); err != nil {
			log.Fatalf("queue create: %v", err)
		}
		go ingress.Consume(ctx, queue, handler)
	}

	// Push binding.
	var auth ingress.Verifier
	if jwksURL := os.Getenv("PUSH_JWKS_URL"); jwksURL != "" {
		jwks, err := keyfunc.Get(jwksURL, keyfunc.Options{})
		if err != nil {
			log.Fatalf("jwks: %v", err)
		}
		auth = ingress.NewAuth(jwks, os.Getenv("PUSH_AUDIENCE"), os.Getenv("PUSH_ISSUER"))
	}

	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.Recover())
	ingress.Register(e, handler, auth)

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
	log.Info("table manager stopped")
}
