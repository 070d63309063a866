package quiz

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"awsoramazon/backend/types"
)

func bankOf(n int) []types.Question {
	bank := make([]types.Question, n)
	for i := range bank {
		id := fmt.Sprintf("q%02d", i+1)
		bank[i] = types.Question{ID: id, Slug: id, Text: "text " + id, Answer: types.ChoiceAWS}
	}
	return bank
}

func intPtr(n int) *int { return &n }

type staticBank struct {
	questions []types.Question
	err       error
}

func (b staticBank) LoadBank(context.Context) ([]types.Question, error) {
	return b.questions, b.err
}

// TestAssembleScenario pins the two-question reference quiz.
func TestAssembleScenario(t *testing.T) {
	bank := []types.Question{
		{ID: "q1", Answer: types.ChoiceAWS},
		{ID: "q2", Answer: types.ChoiceAmazon},
	}
	quiz, err := Assemble(bank, "s1", nil)
	if err != nil {
		t.Fatalf("assemble: %v", err)
	}
	if quiz.Seed != "s1" {
		t.Fatalf("expected seed s1, got %q", quiz.Seed)
	}
	if len(quiz.Questions) != 2 || quiz.Questions[0].ID != "q2" || quiz.Questions[1].ID != "q1" {
		t.Fatalf("unexpected order %v", quiz.IDs().IDs)
	}
}

// TestAssembleEmptyBank verifies the empty bank error.
func TestAssembleEmptyBank(t *testing.T) {
	_, err := Assemble(nil, "s1", nil)
	if !errors.Is(err, ErrNoQuestions) {
		t.Fatalf("expected ErrNoQuestions, got %v", err)
	}
}

// TestAssembleBounds verifies the result length is min(clamped count, bank size).
func TestAssembleBounds(t *testing.T) {
	cases := []struct {
		bank  int
		count *int
		want  int
	}{
		{bank: 30, count: nil, want: 10},
		{bank: 30, count: intPtr(0), want: 1},
		{bank: 30, count: intPtr(-4), want: 1},
		{bank: 30, count: intPtr(5), want: 5},
		{bank: 30, count: intPtr(25), want: 20},
		{bank: 3, count: intPtr(10), want: 3},
		{bank: 3, count: nil, want: 3},
	}
	for _, tc := range cases {
		quiz, err := Assemble(bankOf(tc.bank), "seed", tc.count)
		if err != nil {
			t.Fatalf("assemble: %v", err)
		}
		if len(quiz.Questions) != tc.want {
			t.Fatalf("bank %d count %v: expected %d, got %d", tc.bank, tc.count, tc.want, len(quiz.Questions))
		}
	}
}

// TestAssemblePrefixStable verifies a smaller count selects a prefix of a larger one.
func TestAssemblePrefixStable(t *testing.T) {
	big, _ := Assemble(bankOf(30), "prefix", intPtr(20))
	small, _ := Assemble(bankOf(30), "prefix", intPtr(5))
	for i, q := range small.Questions {
		if big.Questions[i].ID != q.ID {
			t.Fatalf("position %d: %s != %s", i, big.Questions[i].ID, q.ID)
		}
	}
}

// TestAssembleDefaultSeed verifies a missing seed becomes an ISO timestamp.
func TestAssembleDefaultSeed(t *testing.T) {
	restore := now
	now = func() time.Time { return time.Date(2026, 10, 17, 9, 30, 0, 123000000, time.FixedZone("JST", 9*3600)) }
	defer func() { now = restore }()

	quiz, err := Assemble(bankOf(3), "", nil)
	if err != nil {
		t.Fatalf("assemble: %v", err)
	}
	if quiz.Seed != "2026-10-17T00:30:00.123Z" {
		t.Fatalf("unexpected seed %q", quiz.Seed)
	}
}

// TestClampCount verifies bounds and the default.
func TestClampCount(t *testing.T) {
	low, high := 0, 99
	if got := ClampCount(nil); got != DefaultCount {
		t.Fatalf("expected default %d, got %d", DefaultCount, got)
	}
	if got := ClampCount(&low); got != MinCount {
		t.Fatalf("expected clamp to %d, got %d", MinCount, got)
	}
	if got := ClampCount(&high); got != MaxCount {
		t.Fatalf("expected clamp to %d, got %d", MaxCount, got)
	}
}

// TestQuizViewWithholdsAnswers verifies the player view.
func TestQuizViewWithholdsAnswers(t *testing.T) {
	quiz := Quiz{Seed: "s", Questions: []types.Question{{ID: "q1", Slug: "first", Text: "EC2", Answer: types.ChoiceAWS, Namespace: "compute"}}}
	view := quiz.View()
	if view.QuizID != "s" || view.Total != 1 {
		t.Fatalf("unexpected view %+v", view)
	}
	got := view.Questions[0]
	if got.ID != "q1" || got.Slug != "first" || got.Namespace != "compute" {
		t.Fatalf("unexpected question %+v", got)
	}
	if len(got.Choices) != 2 || got.Choices[0] != types.ChoiceAWS || got.Choices[1] != types.ChoiceAmazon {
		t.Fatalf("unexpected choices %v", got.Choices)
	}
	ids := quiz.IDs()
	if ids.Total != 1 || ids.IDs[0] != "q1" {
		t.Fatalf("unexpected ids %+v", ids)
	}
}

// TestComposerPropagatesBankErrors verifies store faults are wrapped, not swallowed.
func TestComposerPropagatesBankErrors(t *testing.T) {
	boom := errors.New("throttled")
	_, err := NewComposer(staticBank{err: boom}).Compose(context.Background(), "s", nil)
	if !errors.Is(err, boom) {
		t.Fatalf("expected wrapped store error, got %v", err)
	}
	_, err = NewComposer(staticBank{}).Compose(context.Background(), "s", nil)
	if !errors.Is(err, ErrNoQuestions) {
		t.Fatalf("expected ErrNoQuestions, got %v", err)
	}
}
