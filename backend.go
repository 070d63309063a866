package main

import (
	"log"
	"os"

	"github.com/aws/aws-cdk-go/awscdk/v2"
	"github.com/aws/jsii-runtime-go"
	"github.com/joho/godotenv"

	"awsoramazon/backend/lib"
)

func init() {
	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: No .env file found: %v", err)
	}
}

func main() {
	defer jsii.Close()
	app := awscdk.NewApp(nil)

	stackName := os.Getenv("STACK_NAME")
	if stackName == "" {
		stackName = "AwsOrAmazonQuizStack"
	}
	log.Printf("Synthesizing %s", stackName)

	lib.NewQuizStack(app, stackName, &lib.QuizStackProps{
		StackProps: awscdk.StackProps{
			Env: &awscdk.Environment{
				Account: jsii.String(os.Getenv("CDK_DEFAULT_ACCOUNT")),
				Region:  jsii.String(os.Getenv("CDK_DEFAULT_REGION")),
			},
		},
	})

	app.Synth(nil)
}
