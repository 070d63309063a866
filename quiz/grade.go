package quiz

import (
	"fmt"

	"awsoramazon/backend/types"
)

// GradeError rejects a submission as a whole; nothing is scored.
type GradeError struct {
	Message string
}

func (e *GradeError) Error() string {
	return e.Message
}

// Grade scores answers against the questions of a resolved quiz. Total is the
// quiz length, so a partial submission still reports the full question count.
func Grade(answers []types.SubmittedAnswer, questions []types.Question) (types.GradeResult, error) {
	byID := make(map[string]types.Question, len(questions))
	for _, q := range questions {
		byID[q.ID] = q
	}

	result := types.GradeResult{
		Total:   len(questions),
		Results: make([]types.AnswerResult, 0, len(answers)),
	}
	for _, entry := range answers {
		target, ok := byID[entry.QuestionID]
		if !ok {
			return types.GradeResult{}, &GradeError{Message: fmt.Sprintf("Unknown questionId: %s", entry.QuestionID)}
		}
		if !entry.Choice.Valid() {
			return types.GradeResult{}, &GradeError{Message: fmt.Sprintf("Invalid choice for %s", entry.QuestionID)}
		}
		correct := target.Answer == entry.Choice
		if correct {
			result.Score++
		}
		result.Results = append(result.Results, types.AnswerResult{
			QuestionID:    entry.QuestionID,
			Answer:        entry.Choice,
			Correct:       correct,
			CorrectAnswer: target.Answer,
		})
	}
	return result, nil
}
