package main

import (
	"context"
	"flag"
	"log"
	"time"

	"github.com/joho/godotenv"

	"awsoramazon/backend/config"
	"awsoramazon/backend/db"
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
	file := flag.String("file", cfg.SeedFile, "question bank YAML; the bundled starter bank when empty")
	table := flag.String("table", cfg.TableName, "DynamoDB table name")
	flag.Parse()

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	var (
		questions []types.QuestionInput
		err       error
	)
	if *file == "" {
		questions, err = seed.Starter()
	} else {
		questions, err = seed.Load(*file)
	}
	if err != nil {
		log.Fatalf("question bank: %v", err)
	}

	store, err := db.NewDynamoStoreFromEnv(ctx, *table)
	if err != nil {
		log.Fatalf("dynamodb: %v", err)
	}
	res, err := seed.Apply(ctx, store, questions, time.Now())
	if err != nil {
		log.Fatalf("seed failed: %v", err)
	}
	log.Printf("Table %s: %d created, %d already present", *table, res.Created, res.Skipped)
}
