package types

// ClientQuestion is the player-facing view of a question; the answer is withheld.
type ClientQuestion struct {
	ID        string   `json:"id"`
	Slug      string   `json:"slug"`
	Text      string   `json:"text"`
	Namespace string   `json:"namespace,omitempty"`
	Choices   []Choice `json:"choices"`
}

type QuizView struct {
	QuizID    string           `json:"quizId"`
	Questions []ClientQuestion `json:"questions"`
	Total     int              `json:"total"`
}

type QuizIDs struct {
	QuizID string   `json:"quizId"`
	IDs    []string `json:"ids"`
	Total  int      `json:"total"`
}

type SubmittedAnswer struct {
	QuestionID string `json:"questionId"`
	Choice     Choice `json:"choice"`
}

type AnswerRequest struct {
	Answers []SubmittedAnswer `json:"answers"`
}

type AnswerResult struct {
	QuestionID    string `json:"questionId"`
	Answer        Choice `json:"answer"`
	Correct       bool   `json:"correct"`
	CorrectAnswer Choice `json:"correctAnswer"`
}

type GradeResult struct {
	Score   int            `json:"score"`
	Total   int            `json:"total"`
	Results []AnswerResult `json:"results"`
}

// StoredResponse is a complete response kept for idempotent replay.
type StoredResponse struct {
	StatusCode int               `json:"statusCode" dynamodbav:"statusCode"`
	Headers    map[string]string `json:"headers" dynamodbav:"headers"`
	Body       string            `json:"body" dynamodbav:"body"`
}
