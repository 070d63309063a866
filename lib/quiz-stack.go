package lib

import (
	"os"

	"github.com/aws/aws-cdk-go/awscdk/v2"
	"github.com/aws/aws-cdk-go/awscdk/v2/awscloudfront"
	"github.com/aws/aws-cdk-go/awscdk/v2/awscloudfrontorigins"
	"github.com/aws/aws-cdk-go/awscdk/v2/awsdynamodb"
	"github.com/aws/aws-cdk-go/awscdk/v2/awsiam"
	"github.com/aws/aws-cdk-go/awscdk/v2/awslambda"
	"github.com/aws/aws-cdk-go/awscdk/v2/awss3"
	"github.com/aws/aws-cdk-go/awscdk/v2/awss3deployment"
	"github.com/aws/aws-cdk-go/awscdkapigatewayv2alpha/v2"
	"github.com/aws/aws-cdk-go/awscdkapigatewayv2integrationsalpha/v2"
	"github.com/aws/aws-cdk-go/awscdklambdagoalpha/v2"
	"github.com/aws/constructs-go/constructs/v10"
	"github.com/aws/jsii-runtime-go"
)

type QuizStackProps struct {
	awscdk.StackProps
}

// apiRoute is one Lambda behind one HTTP API route.
type apiRoute struct {
	id          string
	entry       string
	path        string
	method      awscdkapigatewayv2alpha.HttpMethod
	description string
}

var apiRoutes = []apiRoute{
	{"QuizRandom", "lambda/quiz-random", "/api/quizzes", awscdkapigatewayv2alpha.HttpMethod_GET, "Return random quiz set"},
	{"QuizIds", "lambda/quiz-ids", "/api/quizzes/ids", awscdkapigatewayv2alpha.HttpMethod_GET, "Return random quiz ids only"},
	{"QuizGet", "lambda/quiz-get", "/api/quizzes/{quizId}", awscdkapigatewayv2alpha.HttpMethod_GET, "Return quiz set by seed"},
	{"QuizAnswer", "lambda/quiz-answer", "/api/quizzes/{quizId}", awscdkapigatewayv2alpha.HttpMethod_POST, "Grade quiz answers"},
	{"QuestionList", "lambda/question-list", "/api/questions", awscdkapigatewayv2alpha.HttpMethod_GET, "List questions"},
	{"QuestionCreate", "lambda/question-create", "/api/questions", awscdkapigatewayv2alpha.HttpMethod_POST, "Create question"},
	{"QuestionGet", "lambda/question-get", "/api/questions/{id}", awscdkapigatewayv2alpha.HttpMethod_GET, "Get question detail"},
	{"QuestionUpdate", "lambda/question-update", "/api/questions/{id}", awscdkapigatewayv2alpha.HttpMethod_PUT, "Update question"},
	{"QuestionDelete", "lambda/question-delete", "/api/questions/{id}", awscdkapigatewayv2alpha.HttpMethod_DELETE, "Delete question (TTL mark)"},
}

// forwardedHeaders reach the API through CloudFront and take part in its cache key.
var forwardedHeaders = []*string{
	jsii.String("Content-Type"),
	jsii.String("If-None-Match"),
	jsii.String("If-Match"),
	jsii.String("Idempotency-Key"),
	jsii.String("Origin"),
}

func NewQuizStack(scope constructs.Construct, id string, props *QuizStackProps) awscdk.Stack {
	var sprops awscdk.StackProps
	if props != nil {
		sprops = props.StackProps
	}
	stack := awscdk.NewStack(scope, &id, &sprops)

	// Single table: questions and idempotency records under PK=QUESTION
	questionsTable := awsdynamodb.NewTable(stack, jsii.String("QuestionsTable"), &awsdynamodb.TableProps{
		PartitionKey: &awsdynamodb.Attribute{
			Name: jsii.String("PK"),
			Type: awsdynamodb.AttributeType_STRING,
		},
		SortKey: &awsdynamodb.Attribute{
			Name: jsii.String("SK"),
			Type: awsdynamodb.AttributeType_STRING,
		},
		BillingMode:         awsdynamodb.BillingMode_PAY_PER_REQUEST,
		TimeToLiveAttribute: jsii.String("ttl"),
		Encryption:          awsdynamodb.TableEncryption_AWS_MANAGED,
		RemovalPolicy:       awscdk.RemovalPolicy_DESTROY,
	})

	// Lambda execution role
	lambdaRole := awsiam.NewRole(stack, jsii.String("LambdaExecutionRole"), &awsiam.RoleProps{
		AssumedBy: awsiam.NewServicePrincipal(jsii.String("lambda.amazonaws.com"), nil),
		ManagedPolicies: &[]awsiam.IManagedPolicy{
			awsiam.ManagedPolicy_FromAwsManagedPolicyName(jsii.String("service-role/AWSLambdaBasicExecutionRole")),
		},
	})
	questionsTable.GrantReadWriteData(lambdaRole)

	idempotencyBackend := os.Getenv("IDEMPOTENCY_BACKEND")
	if idempotencyBackend == "" {
		idempotencyBackend = "dynamodb"
	}
	environment := map[string]*string{
		"TABLE_NAME":          questionsTable.TableName(),
		"STORE_BACKEND":       jsii.String("dynamodb"),
		"IDEMPOTENCY_BACKEND": jsii.String(idempotencyBackend),
		"MOMENTO_AUTH_TOKEN":  jsii.String(os.Getenv("MOMENTO_AUTH_TOKEN")),
		"MOMENTO_CACHE_NAME":  jsii.String(os.Getenv("MOMENTO_CACHE_NAME")),
		"REDIS_URL":           jsii.String(os.Getenv("REDIS_URL")),
	}

	// HTTP API
	httpApi := awscdkapigatewayv2alpha.NewHttpApi(stack, jsii.String("QuizApi"), &awscdkapigatewayv2alpha.HttpApiProps{
		ApiName: jsii.String("AwsOrAmazonQuizApi"),
		CorsPreflight: &awscdkapigatewayv2alpha.CorsPreflightOptions{
			AllowHeaders: jsii.Strings("Content-Type", "If-Match", "If-None-Match", "Idempotency-Key"),
			AllowMethods: &[]awscdkapigatewayv2alpha.CorsHttpMethod{
				awscdkapigatewayv2alpha.CorsHttpMethod_GET,
				awscdkapigatewayv2alpha.CorsHttpMethod_POST,
				awscdkapigatewayv2alpha.CorsHttpMethod_PUT,
				awscdkapigatewayv2alpha.CorsHttpMethod_DELETE,
				awscdkapigatewayv2alpha.CorsHttpMethod_OPTIONS,
			},
			AllowOrigins:  jsii.Strings("*"),
			ExposeHeaders: jsii.Strings("ETag"),
		},
	})

	// Lambda Functions, one per route
	for _, route := range apiRoutes {
		fn := awscdklambdagoalpha.NewGoFunction(stack, jsii.String(route.id+"Function"), &awscdklambdagoalpha.GoFunctionProps{
			Runtime:     awslambda.Runtime_PROVIDED_AL2023(),
			Entry:       jsii.String(route.entry),
			Role:        lambdaRole,
			Description: jsii.String(route.description),
			MemorySize:  jsii.Number(256),
			Timeout:     awscdk.Duration_Seconds(jsii.Number(10)),
			Bundling: &awscdklambdagoalpha.BundlingOptions{
				Environment: &map[string]*string{
					"GOOS":   jsii.String("linux"),
					"GOARCH": jsii.String("amd64"),
				},
			},
			Environment: &environment,
		})

		httpApi.AddRoutes(&awscdkapigatewayv2alpha.AddRoutesOptions{
			Path:    jsii.String(route.path),
			Methods: &[]awscdkapigatewayv2alpha.HttpMethod{route.method},
			Integration: awscdkapigatewayv2integrationsalpha.NewHttpLambdaIntegration(
				jsii.String(route.id+"Integration"),
				fn,
				&awscdkapigatewayv2integrationsalpha.HttpLambdaIntegrationProps{
					// Handlers take the REST-style proxy event.
					PayloadFormatVersion: awscdkapigatewayv2alpha.PayloadFormatVersion_VERSION_1_0(),
				},
			),
		})
	}

	// Static site
	siteBucket := awss3.NewBucket(stack, jsii.String("SiteBucket"), &awss3.BucketProps{
		BlockPublicAccess: awss3.BlockPublicAccess_BLOCK_ALL(),
		Encryption:        awss3.BucketEncryption_S3_MANAGED,
		EnforceSSL:        jsii.Bool(true),
		Versioned:         jsii.Bool(false),
		RemovalPolicy:     awscdk.RemovalPolicy_DESTROY,
		AutoDeleteObjects: jsii.Bool(true),
	})

	apiCachePolicy := awscloudfront.NewCachePolicy(stack, jsii.String("ApiCachePolicy"), &awscloudfront.CachePolicyProps{
		DefaultTtl:                 awscdk.Duration_Seconds(jsii.Number(60)),
		MinTtl:                     awscdk.Duration_Seconds(jsii.Number(0)),
		MaxTtl:                     awscdk.Duration_Minutes(jsii.Number(5)),
		EnableAcceptEncodingBrotli: jsii.Bool(true),
		EnableAcceptEncodingGzip:   jsii.Bool(true),
		CookieBehavior:             awscloudfront.CacheCookieBehavior_None(),
		HeaderBehavior:             awscloudfront.CacheHeaderBehavior_AllowList(forwardedHeaders...),
		QueryStringBehavior:        awscloudfront.CacheQueryStringBehavior_All(),
	})

	apiOriginRequestPolicy := awscloudfront.NewOriginRequestPolicy(stack, jsii.String("ApiOriginRequestPolicy"), &awscloudfront.OriginRequestPolicyProps{
		Comment:             jsii.String("Forward required headers and all query strings to the HTTP API (without Host)"),
		CookieBehavior:      awscloudfront.OriginRequestCookieBehavior_None(),
		HeaderBehavior:      awscloudfront.OriginRequestHeaderBehavior_AllowList(forwardedHeaders...),
		QueryStringBehavior: awscloudfront.OriginRequestQueryStringBehavior_All(),
	})

	// ApiEndpoint is https://<id>.execute-api.<region>.amazonaws.com
	apiDomain := awscdk.Fn_Select(jsii.Number(2), awscdk.Fn_Split(jsii.String("/"), httpApi.ApiEndpoint(), nil))

	distribution := awscloudfront.NewDistribution(stack, jsii.String("Distribution"), &awscloudfront.DistributionProps{
		DefaultRootObject: jsii.String("index.html"),
		HttpVersion:       awscloudfront.HttpVersion_HTTP2_AND_3,
		PriceClass:        awscloudfront.PriceClass_PRICE_CLASS_100,
		DefaultBehavior: &awscloudfront.BehaviorOptions{
			Origin:               awscloudfrontorigins.S3BucketOrigin_WithOriginAccessControl(siteBucket, nil),
			ViewerProtocolPolicy: awscloudfront.ViewerProtocolPolicy_REDIRECT_TO_HTTPS,
			Compress:             jsii.Bool(true),
			AllowedMethods:       awscloudfront.AllowedMethods_ALLOW_GET_HEAD_OPTIONS(),
			CachedMethods:        awscloudfront.CachedMethods_CACHE_GET_HEAD(),
			CachePolicy:          awscloudfront.CachePolicy_CACHING_OPTIMIZED(),
		},
		AdditionalBehaviors: &map[string]*awscloudfront.BehaviorOptions{
			"/api/*": {
				Origin: awscloudfrontorigins.NewHttpOrigin(apiDomain, &awscloudfrontorigins.HttpOriginProps{
					ProtocolPolicy:     awscloudfront.OriginProtocolPolicy_HTTPS_ONLY,
					OriginSslProtocols: &[]awscloudfront.OriginSslPolicy{awscloudfront.OriginSslPolicy_TLS_V1_2},
				}),
				ViewerProtocolPolicy: awscloudfront.ViewerProtocolPolicy_REDIRECT_TO_HTTPS,
				Compress:             jsii.Bool(true),
				AllowedMethods:       awscloudfront.AllowedMethods_ALLOW_ALL(),
				CachedMethods:        awscloudfront.CachedMethods_CACHE_GET_HEAD(),
				CachePolicy:          apiCachePolicy,
				OriginRequestPolicy:  apiOriginRequestPolicy,
			},
		},
	})

	// Upload the site and invalidate the distribution on every deploy
	awss3deployment.NewBucketDeployment(stack, jsii.String("DeployStaticSite"), &awss3deployment.BucketDeploymentProps{
		DestinationBucket: siteBucket,
		Sources: &[]awss3deployment.ISource{
			awss3deployment.Source_Asset(jsii.String("web"), nil),
		},
		Distribution:      distribution,
		DistributionPaths: jsii.Strings("/*"),
	})

	// Stack Outputs
	awscdk.NewCfnOutput(stack, jsii.String("ApiEndpoint"), &awscdk.CfnOutputProps{
		Value: httpApi.Url(),
	})
	awscdk.NewCfnOutput(stack, jsii.String("SiteUrl"), &awscdk.CfnOutputProps{
		Value: jsii.String("https://" + *distribution.DistributionDomainName()),
	})
	awscdk.NewCfnOutput(stack, jsii.String("QuestionsTableName"), &awscdk.CfnOutputProps{
		Value: questionsTable.TableName(),
	})

	return stack
}
