package config

import (
	"os"
	"strings"
	"time"
)

type Backend string

const (
	BackendDynamoDB Backend = "dynamodb"
	BackendMemory   Backend = "memory"
	BackendMomento  Backend = "momento"
	BackendRedis    Backend = "redis"
)

type Config struct {
	TableName string

	// StoreBackend selects where questions live: dynamodb or memory.
	StoreBackend Backend
	// IdempotencyBackend selects where grading responses are kept for replay.
	IdempotencyBackend Backend

	MomentoTokenEnv  string
	MomentoCacheName string
	RedisURL         string

	DeleteGrace time.Duration

	DevAddr     string
	SeedFile    string
	CORSOrigins []string
}

func FromEnv() Config {
	cfg := Config{
		TableName:          getenv("TABLE_NAME", "questions"),
		StoreBackend:       Backend(getenv("STORE_BACKEND", string(BackendDynamoDB))),
		IdempotencyBackend: Backend(getenv("IDEMPOTENCY_BACKEND", "")),
		MomentoTokenEnv:    "MOMENTO_AUTH_TOKEN",
		MomentoCacheName:   getenv("MOMENTO_CACHE_NAME", "aws-or-amazon"),
		RedisURL:           os.Getenv("REDIS_URL"),
		DeleteGrace:        24 * time.Hour,
		DevAddr:            getenv("DEV_ADDR", ":8080"),
		SeedFile:           os.Getenv("SEED_FILE"),
		CORSOrigins:        splitCSV(os.Getenv("CORS_ORIGINS")),
	}
	if d, err := time.ParseDuration(os.Getenv("DELETE_GRACE")); err == nil && d > 0 {
		cfg.DeleteGrace = d
	}
	// Grading responses follow the question store unless told otherwise.
	if cfg.IdempotencyBackend == "" {
		cfg.IdempotencyBackend = cfg.StoreBackend
	}
	return cfg
}

func getenv(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

func splitCSV(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
