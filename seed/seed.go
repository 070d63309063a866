// Package seed loads question banks from YAML and writes them to a store.
package seed

import (
	"bytes"
	"context"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"awsoramazon/backend/db"
	"awsoramazon/backend/types"
)

//go:embed questions.yaml
var starterBank []byte

// File is the on-disk layout of a question bank.
type File struct {
	Questions []types.QuestionInput `yaml:"questions"`
}

// Creator is the store operation seeding needs.
type Creator interface {
	CreateQuestion(ctx context.Context, q types.Question) error
}

// Result counts what Apply did.
type Result struct {
	Created int
	Skipped int
}

// Starter returns the bundled starter bank.
func Starter() ([]types.QuestionInput, error) {
	return Parse(starterBank)
}

// Load reads and validates a bank file.
func Load(path string) ([]types.QuestionInput, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read question bank: %w", err)
	}
	return Parse(data)
}

// Parse decodes a single YAML document and validates every question.
func Parse(data []byte) ([]types.QuestionInput, error) {
	var file File
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&file); err != nil {
		return nil, fmt.Errorf("parse yaml: %w", err)
	}
	if err := decoder.Decode(&struct{}{}); err != io.EOF {
		if err == nil {
			return nil, fmt.Errorf("parse yaml: multiple documents are not supported")
		}
		return nil, fmt.Errorf("parse yaml: %w", err)
	}

	seen := make(map[string]bool, len(file.Questions))
	for i, q := range file.Questions {
		switch {
		case q.ID == "":
			return nil, fmt.Errorf("question %d: id is required", i+1)
		case seen[q.ID]:
			return nil, fmt.Errorf("question %s: duplicate id", q.ID)
		case q.Text == "":
			return nil, fmt.Errorf("question %s: text is required", q.ID)
		case !q.Answer.Valid():
			return nil, fmt.Errorf("question %s: answer must be \"aws\" or \"amazon\"", q.ID)
		}
		seen[q.ID] = true
	}
	return file.Questions, nil
}

// Apply creates each question at now. Questions that already exist are left
// untouched, so seeding twice is harmless.
func Apply(ctx context.Context, store Creator, questions []types.QuestionInput, now time.Time) (Result, error) {
	var res Result
	for _, in := range questions {
		err := store.CreateQuestion(ctx, in.Revision(in.ID, now))
		if errors.Is(err, db.ErrConflict) {
			res.Skipped++
			continue
		}
		if err != nil {
			return res, fmt.Errorf("seed question %s: %w", in.ID, err)
		}
		res.Created++
	}
	log.Printf("Seeded question bank: %d created, %d skipped", res.Created, res.Skipped)
	return res, nil
}
