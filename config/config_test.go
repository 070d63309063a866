package config

import (
	"testing"
	"time"
)

// TestFromEnvDefaults verifies defaults when nothing is set.
func TestFromEnvDefaults(t *testing.T) {
	for _, key := range []string{"TABLE_NAME", "STORE_BACKEND", "IDEMPOTENCY_BACKEND", "DEV_ADDR", "DELETE_GRACE", "CORS_ORIGINS"} {
		t.Setenv(key, "")
	}
	cfg := FromEnv()
	if cfg.TableName != "questions" {
		t.Fatalf("expected default table, got %q", cfg.TableName)
	}
	if cfg.StoreBackend != BackendDynamoDB || cfg.IdempotencyBackend != BackendDynamoDB {
		t.Fatalf("expected dynamodb backends, got %q/%q", cfg.StoreBackend, cfg.IdempotencyBackend)
	}
	if cfg.DeleteGrace != 24*time.Hour {
		t.Fatalf("expected 24h grace, got %v", cfg.DeleteGrace)
	}
	if cfg.DevAddr != ":8080" {
		t.Fatalf("expected :8080, got %q", cfg.DevAddr)
	}
	if len(cfg.CORSOrigins) != 0 {
		t.Fatalf("expected no origins, got %v", cfg.CORSOrigins)
	}
}

// TestFromEnvOverrides verifies explicit values win over defaults.
func TestFromEnvOverrides(t *testing.T) {
	t.Setenv("TABLE_NAME", "quiz-table")
	t.Setenv("STORE_BACKEND", "memory")
	t.Setenv("IDEMPOTENCY_BACKEND", "redis")
	t.Setenv("DELETE_GRACE", "2h")
	t.Setenv("CORS_ORIGINS", "http://localhost:5173, https://quiz.example.com ,")

	cfg := FromEnv()
	if cfg.TableName != "quiz-table" {
		t.Fatalf("unexpected table %q", cfg.TableName)
	}
	if cfg.StoreBackend != BackendMemory || cfg.IdempotencyBackend != BackendRedis {
		t.Fatalf("unexpected backends %q/%q", cfg.StoreBackend, cfg.IdempotencyBackend)
	}
	if cfg.DeleteGrace != 2*time.Hour {
		t.Fatalf("unexpected grace %v", cfg.DeleteGrace)
	}
	if len(cfg.CORSOrigins) != 2 || cfg.CORSOrigins[1] != "https://quiz.example.com" {
		t.Fatalf("unexpected origins %v", cfg.CORSOrigins)
	}
}

// TestIdempotencyBackendFollowsStore verifies the replay store defaults to the question store.
func TestIdempotencyBackendFollowsStore(t *testing.T) {
	t.Setenv("STORE_BACKEND", "memory")
	t.Setenv("IDEMPOTENCY_BACKEND", "")
	if got := FromEnv().IdempotencyBackend; got != BackendMemory {
		t.Fatalf("expected memory, got %q", got)
	}
}
