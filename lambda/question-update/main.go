package main

import (
	"context"
	"log"

	"github.com/aws/aws-lambda-go/lambda"

	"awsoramazon/backend/config"
	"awsoramazon/backend/handlers"
)

var h *handlers.Handler

func init() {
	var err error
	h, err = handlers.Bootstrap(context.Background(), config.FromEnv())
	if err != nil {
		log.Fatalf("failed to bootstrap question-update: %v", err)
	}
}

func main() {
	lambda.Start(h.UpdateQuestion)
}
