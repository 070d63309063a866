package seed

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"awsoramazon/backend/db"
	"awsoramazon/backend/types"
)

// TestStarterBank verifies the bundled bank parses and is balanced across both answers.
func TestStarterBank(t *testing.T) {
	qs, err := Starter()
	if err != nil {
		t.Fatalf("starter: %v", err)
	}
	if len(qs) != 10 {
		t.Fatalf("expected 10 questions, got %d", len(qs))
	}
	counts := map[types.Choice]int{}
	for _, q := range qs {
		counts[q.Answer]++
	}
	if counts[types.ChoiceAWS] == 0 || counts[types.ChoiceAmazon] == 0 {
		t.Fatalf("expected both answers, got %v", counts)
	}
}

// TestParseRejectsBadBanks verifies validation messages.
func TestParseRejectsBadBanks(t *testing.T) {
	cases := []struct {
		input string
		want  string
	}{
		{"questions:\n  - text: x\n    answer: aws\n", "id is required"},
		{"questions:\n  - id: a\n    answer: aws\n", "text is required"},
		{"questions:\n  - id: a\n    text: x\n    answer: gcp\n", "answer must be"},
		{"questions:\n  - id: a\n    text: x\n    answer: aws\n  - id: a\n    text: y\n    answer: aws\n", "duplicate id"},
		{"questions:\n  - id: a\n    text: x\n    answer: aws\n    fact: extra\n", "field fact not found"},
		{"questions: []\n---\n{}\n", "multiple documents"},
	}
	for _, tc := range cases {
		_, err := Parse([]byte(tc.input))
		if err == nil || !strings.Contains(err.Error(), tc.want) {
			t.Fatalf("input %q: expected error containing %q, got %v", tc.input, tc.want, err)
		}
	}
}

// TestLoadFromFile verifies banks are read from disk.
func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bank.yaml")
	content := "questions:\n  - id: a\n    text: Lambda\n    answer: aws\n    namespace: compute\n"
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	qs, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(qs) != 1 || qs[0].Namespace != "compute" {
		t.Fatalf("unexpected questions %+v", qs)
	}
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatalf("expected error for missing file")
	}
}

// TestApplyIsRepeatable verifies existing questions are skipped.
func TestApplyIsRepeatable(t *testing.T) {
	store := db.NewMemoryStore()
	qs, _ := Starter()
	now := time.Date(2026, 10, 17, 0, 0, 0, 0, time.UTC)

	res, err := Apply(context.Background(), store, qs, now)
	if err != nil || res.Created != 10 || res.Skipped != 0 {
		t.Fatalf("first apply: %+v %v", res, err)
	}
	res, err = Apply(context.Background(), store, qs, now)
	if err != nil || res.Created != 0 || res.Skipped != 10 {
		t.Fatalf("second apply: %+v %v", res, err)
	}
	q, err := store.GetQuestion(context.Background(), "route53")
	if err != nil || q.ID != "q10" || q.ETag == "" {
		t.Fatalf("expected q10 by slug, got %+v %v", q, err)
	}
}

type failingCreator struct{}

func (failingCreator) CreateQuestion(context.Context, types.Question) error {
	return errors.New("throttled")
}

// TestApplyStopsOnFault verifies store faults abort seeding.
func TestApplyStopsOnFault(t *testing.T) {
	qs, _ := Starter()
	if _, err := Apply(context.Background(), failingCreator{}, qs, time.Now()); err == nil {
		t.Fatalf("expected error")
	}
}
