package handlers

import (
	"context"
	"errors"
	"log"
	"net/http"

	"github.com/aws/aws-lambda-go/events"

	"awsoramazon/backend/api"
	"awsoramazon/backend/quiz"
	"awsoramazon/backend/types"
)

const noQuestionsMessage = "No questions available. Seed DynamoDB first."

// RandomQuiz serves GET /api/quizzes with a fresh seed.
func (h *Handler) RandomQuiz(ctx context.Context, req events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	q, err := h.Composer.Compose(ctx, "", api.IntQuery(req, "count"))
	if errors.Is(err, quiz.ErrNoQuestions) {
		return fail(req, api.NotFound(noQuestionsMessage))
	}
	if err != nil {
		return fault(req, "quiz-random", err)
	}
	return respondJSON(req, "quiz-random", http.StatusOK, q.View(), nil)
}

// QuizIDs serves GET /api/quizzes/ids: a random quiz reduced to its question ids.
func (h *Handler) QuizIDs(ctx context.Context, req events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	q, err := h.Composer.Compose(ctx, "", api.IntQuery(req, "count"))
	if errors.Is(err, quiz.ErrNoQuestions) {
		return fail(req, api.NotFound(noQuestionsMessage))
	}
	if err != nil {
		return fault(req, "quiz-ids", err)
	}
	return respondJSON(req, "quiz-ids", http.StatusOK, q.IDs(), nil)
}

// GetQuiz serves GET /api/quizzes/{quizId}. The quiz id is the shuffle seed.
func (h *Handler) GetQuiz(ctx context.Context, req events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	quizID := req.PathParameters["quizId"]
	if quizID == "" {
		return fail(req, api.BadRequest("quizId is required"))
	}
	q, err := h.Composer.Compose(ctx, quizID, api.IntQuery(req, "count"))
	if errors.Is(err, quiz.ErrNoQuestions) {
		return fail(req, api.NotFound(noQuestionsMessage))
	}
	if err != nil {
		return fault(req, "quiz-get", err)
	}
	return respondJSON(req, "quiz-get", http.StatusOK, q.View(), nil)
}

// AnswerQuiz serves POST /api/quizzes/{quizId}. With an Idempotency-Key the
// first successful grading is replayed verbatim for later requests.
func (h *Handler) AnswerQuiz(ctx context.Context, req events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	quizID := req.PathParameters["quizId"]
	if quizID == "" {
		return fail(req, api.BadRequest("quizId is required"))
	}
	answers, verr := decodeAnswers(req.Body)
	if verr != nil {
		return fail(req, verr)
	}
	count := api.IntQuery(req, "count")

	stored, replayed, err := h.Replayer.Do(ctx, api.Header(req, "Idempotency-Key"), func(ctx context.Context) (types.StoredResponse, error) {
		q, err := h.Composer.Compose(ctx, quizID, count)
		if errors.Is(err, quiz.ErrNoQuestions) {
			return api.Stored(api.Fail(api.NotFound(noQuestionsMessage))), nil
		}
		if err != nil {
			return types.StoredResponse{}, err
		}
		result, err := quiz.Grade(answers, q.Questions)
		var gradeErr *quiz.GradeError
		if errors.As(err, &gradeErr) {
			return api.Stored(api.Fail(api.BadRequest("%s", gradeErr.Message))), nil
		}
		if err != nil {
			return types.StoredResponse{}, err
		}
		resp, err := api.JSON(http.StatusOK, result, nil)
		if err != nil {
			return types.StoredResponse{}, err
		}
		return api.Stored(resp), nil
	})
	if err != nil {
		return fault(req, "quiz-answer", err)
	}
	if replayed {
		log.Printf("Replaying graded response for quiz %s", quizID)
	}
	return reply(req, api.FromStored(stored))
}
