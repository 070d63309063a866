package handlers

import (
	"encoding/json"
	"strings"

	"awsoramazon/backend/api"
	"awsoramazon/backend/types"
)

// decodeQuestion reads a create/replace body. Fields of the wrong JSON type
// are treated as missing so validation reports them by name.
func decodeQuestion(body string) (types.QuestionInput, *api.Error) {
	var raw map[string]interface{}
	if strings.TrimSpace(body) == "" || json.Unmarshal([]byte(body), &raw) != nil || raw == nil {
		return types.QuestionInput{}, api.BadRequest("Request body is required")
	}
	return types.QuestionInput{
		ID:        stringField(raw, "id"),
		Slug:      stringField(raw, "slug"),
		Text:      stringField(raw, "text"),
		Answer:    types.Choice(stringField(raw, "answer")),
		Namespace: stringField(raw, "namespace"),
	}, nil
}

func stringField(raw map[string]interface{}, name string) string {
	s, _ := raw[name].(string)
	return s
}

// validateQuestion checks a decoded payload; the id is only required on create.
func validateQuestion(in types.QuestionInput, requireID bool) *api.Error {
	if requireID && in.ID == "" {
		return api.BadRequest("id is required")
	}
	if in.Text == "" {
		return api.BadRequest("text is required")
	}
	if !in.Answer.Valid() {
		return api.BadRequest(`answer must be "aws" or "amazon"`)
	}
	return nil
}

// decodeAnswers reads a grading body. Anything but an object holding an
// answers array is rejected.
func decodeAnswers(body string) ([]types.SubmittedAnswer, *api.Error) {
	var payload struct {
		Answers []json.RawMessage `json:"answers"`
	}
	if err := json.Unmarshal([]byte(body), &payload); err != nil || payload.Answers == nil {
		return nil, api.BadRequest("answers array is required")
	}
	answers := make([]types.SubmittedAnswer, 0, len(payload.Answers))
	for _, entry := range payload.Answers {
		var fields map[string]interface{}
		_ = json.Unmarshal(entry, &fields)
		answers = append(answers, types.SubmittedAnswer{
			QuestionID: stringField(fields, "questionId"),
			Choice:     types.Choice(stringField(fields, "choice")),
		})
	}
	return answers, nil
}
