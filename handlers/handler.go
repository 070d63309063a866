package handlers

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/aws/aws-lambda-go/events"

	"awsoramazon/backend/api"
	"awsoramazon/backend/cache"
	"awsoramazon/backend/config"
	"awsoramazon/backend/db"
	"awsoramazon/backend/quiz"
	"awsoramazon/backend/types"
)

// QuestionStore is everything the routes need from the question table.
type QuestionStore interface {
	quiz.Bank
	GetQuestion(ctx context.Context, idOrSlug string) (*types.Question, error)
	ListQuestions(ctx context.Context, query db.ListQuery) (*types.QuestionPage, error)
	CreateQuestion(ctx context.Context, q types.Question) error
	ReplaceQuestion(ctx context.Context, q types.Question, expectedETag string) error
	MarkDeleted(ctx context.Context, id string, expiresAt time.Time) error
}

// HandlerFunc is the API Gateway proxy signature every route implements.
type HandlerFunc func(ctx context.Context, req events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error)

// Handler serves all routes. It holds no per-request state.
type Handler struct {
	Store       QuestionStore
	Composer    *quiz.Composer
	Replayer    *quiz.Replayer
	DeleteGrace time.Duration
	Now         func() time.Time
}

func New(store QuestionStore, responses quiz.ResponseStore, deleteGrace time.Duration) *Handler {
	return &Handler{
		Store:       store,
		Composer:    quiz.NewComposer(store),
		Replayer:    quiz.NewReplayer(responses),
		DeleteGrace: deleteGrace,
		Now:         time.Now,
	}
}

// Bootstrap builds the store clients named by cfg. Lambdas call it once per
// cold start and reuse the handler for every invocation.
func Bootstrap(ctx context.Context, cfg config.Config) (*Handler, error) {
	var store QuestionStore
	switch cfg.StoreBackend {
	case config.BackendMemory:
		store = db.NewMemoryStore()
	case config.BackendDynamoDB:
		dynamo, err := db.NewDynamoStoreFromEnv(ctx, cfg.TableName)
		if err != nil {
			return nil, err
		}
		store = dynamo
	default:
		return nil, fmt.Errorf("unknown store backend %q", cfg.StoreBackend)
	}

	var responses quiz.ResponseStore
	switch cfg.IdempotencyBackend {
	case config.BackendMemory, config.BackendDynamoDB:
		// Both table stores keep idempotency records next to the questions.
		rs, ok := store.(quiz.ResponseStore)
		if !ok || cfg.IdempotencyBackend != cfg.StoreBackend {
			return nil, fmt.Errorf("idempotency backend %q requires the same store backend, got %q", cfg.IdempotencyBackend, cfg.StoreBackend)
		}
		responses = rs
	case config.BackendMomento:
		responses = cache.NewMomentoStore(cfg.MomentoTokenEnv, cfg.MomentoCacheName, quiz.IdempotencyRetention)
	case config.BackendRedis:
		rs, err := cache.NewRedisStore(cfg.RedisURL)
		if err != nil {
			return nil, err
		}
		responses = rs
	default:
		return nil, fmt.Errorf("unknown idempotency backend %q", cfg.IdempotencyBackend)
	}

	log.Printf("Handlers ready: store=%s idempotency=%s table=%s", cfg.StoreBackend, cfg.IdempotencyBackend, cfg.TableName)
	return New(store, responses, cfg.DeleteGrace), nil
}

// Route binds a method and path template to a handler.
type Route struct {
	Name   string
	Method string
	Path   string
	Handle HandlerFunc
}

// Routes lists every API route. Path parameters use {name} templates.
func (h *Handler) Routes() []Route {
	return []Route{
		{Name: "quiz-random", Method: http.MethodGet, Path: "/api/quizzes", Handle: h.RandomQuiz},
		{Name: "quiz-ids", Method: http.MethodGet, Path: "/api/quizzes/ids", Handle: h.QuizIDs},
		{Name: "quiz-get", Method: http.MethodGet, Path: "/api/quizzes/{quizId}", Handle: h.GetQuiz},
		{Name: "quiz-answer", Method: http.MethodPost, Path: "/api/quizzes/{quizId}", Handle: h.AnswerQuiz},
		{Name: "question-list", Method: http.MethodGet, Path: "/api/questions", Handle: h.ListQuestions},
		{Name: "question-create", Method: http.MethodPost, Path: "/api/questions", Handle: h.CreateQuestion},
		{Name: "question-get", Method: http.MethodGet, Path: "/api/questions/{id}", Handle: h.GetQuestion},
		{Name: "question-update", Method: http.MethodPut, Path: "/api/questions/{id}", Handle: h.UpdateQuestion},
		{Name: "question-delete", Method: http.MethodDelete, Path: "/api/questions/{id}", Handle: h.DeleteQuestion},
	}
}

func (h *Handler) now() time.Time {
	if h.Now == nil {
		return time.Now()
	}
	return h.Now()
}

func reply(req events.APIGatewayProxyRequest, resp events.APIGatewayProxyResponse) (events.APIGatewayProxyResponse, error) {
	return api.WithCORS(resp, api.Origin(req)), nil
}

func fail(req events.APIGatewayProxyRequest, err *api.Error) (events.APIGatewayProxyResponse, error) {
	return reply(req, api.Fail(err))
}

// fault logs a server-side failure and hides its details from the caller.
func fault(req events.APIGatewayProxyRequest, route string, err error) (events.APIGatewayProxyResponse, error) {
	log.Printf("%s %s (%s) failed: %v", req.HTTPMethod, req.Path, route, err)
	return fail(req, api.NewError(api.KindInternal, "Internal server error"))
}

func respondJSON(req events.APIGatewayProxyRequest, route string, status int, body interface{}, headers map[string]string) (events.APIGatewayProxyResponse, error) {
	resp, err := api.JSON(status, body, headers)
	if err != nil {
		return fault(req, route, err)
	}
	return reply(req, resp)
}

func etagHeader(etag string) map[string]string {
	if etag == "" {
		return nil
	}
	return map[string]string{"ETag": etag}
}
