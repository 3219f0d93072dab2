// Package main is the entry point for the webhook receiver service.
package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"

	"github.com/oremus-labs/webhook-receiver/config"
	"github.com/oremus-labs/webhook-receiver/internal/api"
	"github.com/oremus-labs/webhook-receiver/internal/events"
	"github.com/oremus-labs/webhook-receiver/internal/handlers"
	"github.com/oremus-labs/webhook-receiver/internal/logutil"
	"github.com/oremus-labs/webhook-receiver/internal/redisx"
	"github.com/oremus-labs/webhook-receiver/internal/store"
)

const version = "0.1.0-go"

func main() {
	// Initialize logging
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	log.Printf("Starting Webhook Receiver v%s", version)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg := config.Load()
	logutil.Info("server_bootstrap", logutil.Fields{
		"version":         version,
		"port":            cfg.ServerPort,
		"webhookPath":     cfg.WebhookPath,
		"dataStoreDriver": cfg.DataStoreDriver,
		"redisAddr":       cfg.RedisAddr,
		"eventsChannel":   cfg.EventsChannel,
	})

	eventStore, err := store.Open(cfg.DataStoreDriver)
	if err != nil {
		log.Fatalf("Failed to initialize event store: %v", err)
	}
	defer eventStore.Close()

	redisClient, err := redisx.NewClient(ctx, redisx.Config{
		Addr:        cfg.RedisAddr,
		Username:    cfg.RedisUsername,
		Password:    cfg.RedisPassword,
		DB:          cfg.RedisDB,
		TLSEnabled:  cfg.RedisTLSEnabled,
		TLSInsecure: cfg.RedisTLSInsecure,
	})
	if err != nil {
		log.Fatalf("Failed to connect to redis: %v", err)
	}
	if redisClient != nil {
		defer redisClient.Close()
	} else {
		log.Println("Redis fan-out disabled (REDIS_ADDR not set)")
	}

	bus := events.NewBus(events.Options{
		Client:  redisClient,
		Logger:  log.Default(),
		Channel: cfg.EventsChannel,
	})

	h := handlers.New(eventStore, bus, handlers.Options{
		LogPayloads: cfg.LogPayloads,
	})

	server := api.NewServer(h, api.Options{
		WebhookPath:  cfg.WebhookPath,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
	})
	srv, errCh := server.Start(cfg.Addr())
	log.Printf("Server listening on %s (webhook %s)", cfg.Addr(), cfg.WebhookPath)

	select {
	case <-ctx.Done():
	case err, ok := <-errCh:
		if ok && err != nil {
			log.Fatalf("Failed to start server: %v", err)
		}
	}

	log.Println("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server forced to shutdown: %v", err)
	}
	h.Wait()

	log.Println("Server stopped")
}
