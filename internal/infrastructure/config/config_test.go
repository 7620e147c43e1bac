package config_test

import (
	"strings"
	"testing"
	"time"

	"github.com/iho/expensetracker/internal/infrastructure/config"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("STORAGE_DRIVER", "")
	t.Setenv("JWT_SECRET", "")

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("unexpected error loading config: %v", err)
	}

	if cfg.StorageDriver != config.StorageSQLite {
		t.Fatalf("expected default storage driver sqlite, got %q", cfg.StorageDriver)
	}

	if cfg.SQLitePath == "" {
		t.Fatalf("expected default sqlite path to be set")
	}

	if cfg.RedisURL != "" {
		t.Fatalf("expected redis to be disabled by default, got %q", cfg.RedisURL)
	}

	if cfg.HTTPPort != "8080" {
		t.Fatalf("expected default HTTP port 8080, got %s", cfg.HTTPPort)
	}

	if !cfg.SeedSampleData {
		t.Fatalf("expected sample data seeding to default on")
	}

	if cfg.EventsBuffer != 256 {
		t.Fatalf("expected default events buffer 256, got %d", cfg.EventsBuffer)
	}

	if cfg.RedisPoolSize != 10 || cfg.RedisDialTimeout != 5*time.Second {
		t.Fatalf("unexpected redis pool defaults: size=%d dial=%s", cfg.RedisPoolSize, cfg.RedisDialTimeout)
	}

	if cfg.IdempotencyPendingTTL != 30*time.Second {
		t.Fatalf("expected pending idempotency TTL 30s, got %s", cfg.IdempotencyPendingTTL)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("STORAGE_DRIVER", "postgres")
	t.Setenv("DATABASE_URL", "postgres://example")
	t.Setenv("REDIS_URL", "redis://example")
	t.Setenv("EVENTS_PUBLISHER", "redis")
	t.Setenv("HTTP_PORT", "9090")
	t.Setenv("SUMMARY_CACHE_TTL", "45s")
	t.Setenv("JWT_SECRET", "top-secret")
	t.Setenv("AUTH_ENABLED", "true")
	t.Setenv("RATE_LIMIT_RPS", "2.5")

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("unexpected error loading config: %v", err)
	}

	if cfg.StorageDriver != config.StoragePostgres || cfg.DatabaseURL != "postgres://example" {
		t.Fatalf("expected postgres storage, got %s %s", cfg.StorageDriver, cfg.DatabaseURL)
	}

	if cfg.RedisURL != "redis://example" {
		t.Fatalf("expected custom redis URL, got %s", cfg.RedisURL)
	}

	if cfg.HTTPPort != "9090" {
		t.Fatalf("expected HTTP port override, got %s", cfg.HTTPPort)
	}

	if cfg.SummaryCacheTTL != 45*time.Second {
		t.Fatalf("expected cache ttl override, got %s", cfg.SummaryCacheTTL)
	}

	if !cfg.AuthEnabled || cfg.JWTSecret != "top-secret" {
		t.Fatalf("expected auth overrides to apply, got enabled=%v secret=%q", cfg.AuthEnabled, cfg.JWTSecret)
	}

	if cfg.RateLimitRPS != 2.5 {
		t.Fatalf("expected rate limit override, got %v", cfg.RateLimitRPS)
	}
}

func TestLoadRejectsInvalidCombinations(t *testing.T) {
	tests := []struct {
		name    string
		env     map[string]string
		wantErr string
	}{
		{
			name:    "unknown storage driver",
			env:     map[string]string{"STORAGE_DRIVER": "mysql"},
			wantErr: "invalid storage driver",
		},
		{
			name:    "redis publisher without redis",
			env:     map[string]string{"EVENTS_PUBLISHER": "redis", "REDIS_URL": ""},
			wantErr: "REDIS_URL is required",
		},
		{
			name:    "auth without secret",
			env:     map[string]string{"AUTH_ENABLED": "true", "JWT_SECRET": ""},
			wantErr: "JWT_SECRET is required",
		},
		{
			name:    "no dispatch workers",
			env:     map[string]string{"DISPATCH_WORKERS": "0"},
			wantErr: "DISPATCH_WORKERS",
		},
		{
			name:    "negative events buffer",
			env:     map[string]string{"EVENTS_BUFFER": "-1"},
			wantErr: "EVENTS_BUFFER must not be negative",
		},
		{
			name:    "negative dispatch queue",
			env:     map[string]string{"DISPATCH_QUEUE_SIZE": "-5"},
			wantErr: "DISPATCH_QUEUE_SIZE must not be negative",
		},
		{
			name:    "empty redis pool",
			env:     map[string]string{"REDIS_POOL_SIZE": "0"},
			wantErr: "REDIS_POOL_SIZE",
		},
		{
			name:    "pending idempotency claim outlives the record",
			env:     map[string]string{"IDEMPOTENCY_TTL": "1m", "IDEMPOTENCY_PENDING_TTL": "2m"},
			wantErr: "IDEMPOTENCY_PENDING_TTL",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			_, err := config.Load()
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("expected error containing %q, got %v", tt.wantErr, err)
			}
		})
	}
}
