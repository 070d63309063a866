package main

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/joho/godotenv"

	"awsoramazon/backend/config"
	"awsoramazon/backend/devserver"
	"awsoramazon/backend/handlers"
	"awsoramazon/backend/seed"
	"awsoramazon/backend/types"
)

func init() {
	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: No .env file found: %v", err)
	}
}

func main() {
	cfg := config.FromEnv()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	h, err := handlers.Bootstrap(ctx, cfg)
	if err != nil {
		log.Fatalf("bootstrap failed: %v", err)
	}

	// An in-memory table starts empty, so give it something to quiz on.
	if cfg.SeedFile != "" || cfg.StoreBackend == config.BackendMemory {
		questions, err := loadBank(cfg.SeedFile)
		if err != nil {
			log.Fatalf("question bank: %v", err)
		}
		if _, err := seed.Apply(ctx, h.Store, questions, time.Now()); err != nil {
			log.Fatalf("seed failed: %v", err)
		}
	}

	srv := &http.Server{
		Addr:              cfg.DevAddr,
		Handler:           devserver.NewRouter(h, cfg.CORSOrigins),
		ReadHeaderTimeout: 10 * time.Second,
	}
	log.Printf("Dev server listening on %s", cfg.DevAddr)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatalf("server error: %v", err)
	}
}

func loadBank(path string) ([]types.QuestionInput, error) {
	if path == "" {
		return seed.Starter()
	}
	return seed.Load(path)
}
