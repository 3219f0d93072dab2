package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{"SERVER_PORT", "WEBHOOK_PATH", "DATASTORE_DRIVER", "LOG_PAYLOADS", "REDIS_ADDR", "REDIS_DB", "EVENTS_CHANNEL", "SHUTDOWN_TIMEOUT"} {
		t.Setenv(key, "")
	}

	cfg := Load()
	if cfg.Addr() != ":8080" {
		t.Fatalf("unexpected addr %q", cfg.Addr())
	}
	if cfg.WebhookPath != "/api/webhook" {
		t.Fatalf("unexpected webhook path %q", cfg.WebhookPath)
	}
	if cfg.DataStoreDriver != "memory" {
		t.Fatalf("unexpected driver %q", cfg.DataStoreDriver)
	}
	if !cfg.LogPayloads {
		t.Fatalf("payload logging should default on")
	}
	if cfg.RedisAddr != "" || cfg.EventsChannel != "webhook-events" {
		t.Fatalf("unexpected redis defaults: %+v", cfg)
	}
	if cfg.ShutdownTimeout != 5*time.Second {
		t.Fatalf("unexpected shutdown timeout %s", cfg.ShutdownTimeout)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("WEBHOOK_PATH", "hooks/inbound/")
	t.Setenv("DATASTORE_DRIVER", "SQLite")
	t.Setenv("LOG_PAYLOADS", "no")
	t.Setenv("REDIS_ADDR", "localhost:6379")
	t.Setenv("REDIS_DB", "3")
	t.Setenv("SHUTDOWN_TIMEOUT", "10s")

	cfg := Load()
	if cfg.Addr() != ":9090" {
		t.Fatalf("unexpected addr %q", cfg.Addr())
	}
	if cfg.WebhookPath != "/hooks/inbound" {
		t.Fatalf("unexpected webhook path %q", cfg.WebhookPath)
	}
	if cfg.DataStoreDriver != "sqlite" {
		t.Fatalf("unexpected driver %q", cfg.DataStoreDriver)
	}
	if cfg.LogPayloads {
		t.Fatalf("expected payload logging disabled")
	}
	if cfg.RedisAddr != "localhost:6379" || cfg.RedisDB != 3 {
		t.Fatalf("unexpected redis config: %+v", cfg)
	}
	if cfg.ShutdownTimeout != 10*time.Second {
		t.Fatalf("unexpected shutdown timeout %s", cfg.ShutdownTimeout)
	}
}

func TestInvalidValuesFallBack(t *testing.T) {
	t.Setenv("REDIS_DB", "three")
	t.Setenv("READ_TIMEOUT", "soon")
	t.Setenv("REDIS_TLS_ENABLED", "maybe")

	cfg := Load()
	if cfg.RedisDB != 0 {
		t.Fatalf("expected default db, got %d", cfg.RedisDB)
	}
	if cfg.ReadTimeout != 15*time.Second {
		t.Fatalf("expected default read timeout, got %s", cfg.ReadTimeout)
	}
	if cfg.RedisTLSEnabled {
		t.Fatalf("expected TLS default off")
	}
}
