package config_test

import (
	"testing"
	"time"

	"github.com/finbridge/remit/internal/infrastructure/config"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	t.Setenv("PAYSTACK_SECRET_KEY", "")

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("unexpected error loading config: %v", err)
	}

	if cfg.DatabaseURL == "" {
		t.Fatalf("expected default database URL to be set")
	}

	if cfg.PaystackSecretKey != "" {
		t.Fatalf("expected paystack secret default to be empty, got %q", cfg.PaystackSecretKey)
	}

	if cfg.HTTPPort != "8080" {
		t.Fatalf("expected default HTTP port 8080, got %s", cfg.HTTPPort)
	}

	if cfg.ExpiryWindow != 10*time.Minute {
		t.Fatalf("expected default expiry window 10m, got %s", cfg.ExpiryWindow)
	}

	if cfg.SchedulerInterval != 5*time.Minute {
		t.Fatalf("expected default scheduler interval 5m, got %s", cfg.SchedulerInterval)
	}

	if cfg.RateCacheTTL != 10*time.Hour {
		t.Fatalf("expected default rate cache TTL 10h, got %s", cfg.RateCacheTTL)
	}

	if cfg.MigrationsPath != "internal/infrastructure/postgres/migrations" {
		t.Fatalf("expected default migrations path, got %s", cfg.MigrationsPath)
	}

	if cfg.MetricsPort != "9091" {
		t.Fatalf("expected default metrics port 9091, got %s", cfg.MetricsPort)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://example")
	t.Setenv("REDIS_URL", "redis://example")
	t.Setenv("HTTP_PORT", "9090")
	t.Setenv("TRANSACTION_EXPIRY_WINDOW", "15m")
	t.Setenv("WORKER_PROCESS_CONCURRENCY", "12")
	t.Setenv("STRIPE_SECRET_KEY", "sk_test_example")

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("unexpected error loading config: %v", err)
	}

	if cfg.DatabaseURL != "postgres://example" {
		t.Fatalf("expected custom database URL, got %s", cfg.DatabaseURL)
	}

	if cfg.RedisURL != "redis://example" {
		t.Fatalf("expected custom redis URL, got %s", cfg.RedisURL)
	}

	if cfg.HTTPPort != "9090" {
		t.Fatalf("expected HTTP port override, got %s", cfg.HTTPPort)
	}

	if cfg.ExpiryWindow != 15*time.Minute {
		t.Fatalf("expected expiry window override, got %s", cfg.ExpiryWindow)
	}

	if cfg.ProcessConcurrency != 12 {
		t.Fatalf("expected worker concurrency override, got %d", cfg.ProcessConcurrency)
	}

	if cfg.StripeSecretKey != "sk_test_example" {
		t.Fatalf("expected stripe secret override, got %s", cfg.StripeSecretKey)
	}
}

func TestLoadInvalidDuration(t *testing.T) {
	t.Setenv("TRANSACTION_EXPIRY_WINDOW", "not-a-duration")

	if _, err := config.Load(); err == nil {
		t.Fatalf("expected error for invalid duration")
	}
}
