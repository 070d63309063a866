package quiz

import (
	"context"
	"errors"
	"fmt"
	"time"

	"awsoramazon/backend/types"
)

const (
	DefaultCount = 10
	MinCount     = 1
	MaxCount     = 20
)

// ErrNoQuestions means the bank is empty, usually because it was never seeded.
var ErrNoQuestions = errors.New("no questions available")

// seedLayout matches JavaScript's Date.prototype.toISOString.
const seedLayout = "2006-01-02T15:04:05.000Z"

var now = time.Now

// Bank supplies the active question set in stable store order.
type Bank interface {
	LoadBank(ctx context.Context) ([]types.Question, error)
}

// Quiz is a seed paired with the questions it selects.
type Quiz struct {
	Seed      string
	Questions []types.Question
}

// ClampCount bounds count to [MinCount, MaxCount], DefaultCount when absent.
func ClampCount(count *int) int {
	if count == nil {
		return DefaultCount
	}
	switch {
	case *count < MinCount:
		return MinCount
	case *count > MaxCount:
		return MaxCount
	default:
		return *count
	}
}

// NewSeed returns the seed used when the caller supplied none.
func NewSeed() string {
	return now().UTC().Format(seedLayout)
}

// Assemble selects the quiz for seed from bank. For a fixed seed and bank order
// the result is always the same; an empty seed draws a fresh one.
func Assemble(bank []types.Question, seed string, count *int) (Quiz, error) {
	if len(bank) == 0 {
		return Quiz{}, ErrNoQuestions
	}
	if seed == "" {
		seed = NewSeed()
	}
	shuffled := Shuffle(bank, seed)
	if n := ClampCount(count); n < len(shuffled) {
		shuffled = shuffled[:n]
	}
	return Quiz{Seed: seed, Questions: shuffled}, nil
}

// Composer assembles quizzes from whatever the bank holds at call time.
type Composer struct {
	Bank Bank
}

func NewComposer(bank Bank) *Composer {
	return &Composer{Bank: bank}
}

func (c *Composer) Compose(ctx context.Context, seed string, count *int) (Quiz, error) {
	bank, err := c.Bank.LoadBank(ctx)
	if err != nil {
		return Quiz{}, fmt.Errorf("failed to load question bank: %w", err)
	}
	return Assemble(bank, seed, count)
}

// View is the player-facing rendering; answers are withheld.
func (q Quiz) View() types.QuizView {
	out := make([]types.ClientQuestion, 0, len(q.Questions))
	for _, question := range q.Questions {
		out = append(out, types.ClientQuestion{
			ID:        question.ID,
			Slug:      question.Slug,
			Text:      question.Text,
			Namespace: question.Namespace,
			Choices:   types.Choices,
		})
	}
	return types.QuizView{QuizID: q.Seed, Questions: out, Total: len(out)}
}

func (q Quiz) IDs() types.QuizIDs {
	ids := make([]string, 0, len(q.Questions))
	for _, question := range q.Questions {
		ids = append(ids, question.ID)
	}
	return types.QuizIDs{QuizID: q.Seed, IDs: ids, Total: len(ids)}
}
