package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/aws/aws-lambda-go/events"

	"awsoramazon/backend/api"
	"awsoramazon/backend/db"
)

func (h *Handler) ListQuestions(ctx context.Context, req events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	page, err := h.Store.ListQuestions(ctx, db.ListQuery{
		Limit:     api.IntQuery(req, "limit"),
		Cursor:    req.QueryStringParameters["cursor"],
		Namespace: req.QueryStringParameters["namespace"],
	})
	if err != nil {
		return fault(req, "question-list", err)
	}
	return respondJSON(req, "question-list", http.StatusOK, page, nil)
}

// GetQuestion looks the question up by id, then by slug or namespace.
// A matching If-None-Match answers 304 without a body.
func (h *Handler) GetQuestion(ctx context.Context, req events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	id := req.PathParameters["id"]
	if id == "" {
		return fail(req, api.BadRequest("id is required"))
	}
	q, err := h.Store.GetQuestion(ctx, id)
	if errors.Is(err, db.ErrNotFound) {
		return fail(req, api.NotFound("Question not found"))
	}
	if err != nil {
		return fault(req, "question-get", err)
	}
	if q.ETag != "" && api.Header(req, "If-None-Match") == q.ETag {
		return reply(req, events.APIGatewayProxyResponse{
			StatusCode: http.StatusNotModified,
			Headers:    etagHeader(q.ETag),
		})
	}
	return respondJSON(req, "question-get", http.StatusOK, q, etagHeader(q.ETag))
}

func (h *Handler) CreateQuestion(ctx context.Context, req events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	in, verr := decodeQuestion(req.Body)
	if verr == nil {
		verr = validateQuestion(in, true)
	}
	if verr != nil {
		return fail(req, verr)
	}

	q := in.Revision(in.ID, h.now())
	err := h.Store.CreateQuestion(ctx, q)
	if errors.Is(err, db.ErrConflict) {
		return fail(req, api.NewError(api.KindConflict, "Question already exists"))
	}
	if err != nil {
		return fault(req, "question-create", err)
	}
	return respondJSON(req, "question-create", http.StatusCreated, q, etagHeader(q.ETag))
}

// UpdateQuestion replaces a question. The caller must send the current ETag
// in If-Match; the write itself is conditional on that ETag too.
func (h *Handler) UpdateQuestion(ctx context.Context, req events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	id := req.PathParameters["id"]
	if id == "" {
		return fail(req, api.BadRequest("id is required"))
	}
	in, verr := decodeQuestion(req.Body)
	if verr == nil {
		verr = validateQuestion(in, false)
	}
	if verr != nil {
		return fail(req, verr)
	}
	ifMatch := api.Header(req, "If-Match")
	if ifMatch == "" {
		return fail(req, api.NewError(api.KindPreconditionRequired, "If-Match header is required"))
	}

	existing, err := h.Store.GetQuestion(ctx, id)
	if errors.Is(err, db.ErrNotFound) {
		return fail(req, api.NotFound("Question not found"))
	}
	if err != nil {
		return fault(req, "question-update", err)
	}
	if existing.ETag != "" && existing.ETag != ifMatch {
		return fail(req, api.NewError(api.KindPreconditionFailed, "ETag does not match"))
	}

	q := in.Revision(existing.ID, h.now())
	err = h.Store.ReplaceQuestion(ctx, q, existing.ETag)
	if errors.Is(err, db.ErrPreconditionFailed) {
		return fail(req, api.NewError(api.KindPreconditionFailed, "ETag does not match"))
	}
	if err != nil {
		return fault(req, "question-update", err)
	}
	return respondJSON(req, "question-update", http.StatusOK, q, etagHeader(q.ETag))
}

// DeleteQuestion flags the question and leaves removal to the table's expiry
// sweep after the grace period.
func (h *Handler) DeleteQuestion(ctx context.Context, req events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	id := req.PathParameters["id"]
	if id == "" {
		return fail(req, api.BadRequest("id is required"))
	}
	existing, err := h.Store.GetQuestion(ctx, id)
	if errors.Is(err, db.ErrNotFound) {
		return fail(req, api.NotFound("Question not found"))
	}
	if err != nil {
		return fault(req, "question-delete", err)
	}
	if existing.Deleted {
		// Already pending removal; keep the original expiry.
		return reply(req, api.NoContent())
	}

	err = h.Store.MarkDeleted(ctx, existing.ID, h.now().Add(h.DeleteGrace))
	if errors.Is(err, db.ErrNotFound) {
		return fail(req, api.NotFound("Question not found"))
	}
	if err != nil {
		return fault(req, "question-delete", err)
	}
	return reply(req, api.NoContent())
}
